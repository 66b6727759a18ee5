package vitebridge

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// TagKind identifies the HTML element a Tag serializes to.
type TagKind int

const (
	// KindScript is a <script> element.
	KindScript TagKind = iota
	// KindStylesheet is a <link rel="stylesheet"> element.
	KindStylesheet
	// KindModulePreload is a <link rel="modulepreload"> element.
	KindModulePreload
)

// Attribute is one HTML attribute on a Tag. A bool value renders as a bare
// attribute when true and is omitted when false; a string renders as
// name="value" with the value escaped, empty strings omitted.
type Attribute struct {
	Name  string
	Value any
}

// Tag describes one HTML element to emit. Attribute order is insertion
// order; setting an existing attribute updates its value in place. Once a
// Tag has been recorded for a physical file path it is reused, never
// rebuilt, for the rest of the render lifecycle.
type Tag struct {
	Kind TagKind

	attrs []Attribute
	body  string
}

// ScriptTag creates an empty script tag descriptor.
func ScriptTag() *Tag { return &Tag{Kind: KindScript} }

// StylesheetTag creates a stylesheet link tag descriptor.
func StylesheetTag() *Tag {
	t := &Tag{Kind: KindStylesheet}
	return t.SetAttr("rel", "stylesheet")
}

// ModulePreloadTag creates a modulepreload link tag descriptor.
func ModulePreloadTag() *Tag {
	t := &Tag{Kind: KindModulePreload}
	return t.SetAttr("rel", "modulepreload")
}

// SetAttr sets one attribute, overwriting a previous value for the same name
// without changing its position.
func (t *Tag) SetAttr(name string, value any) *Tag {
	for i := range t.attrs {
		if t.attrs[i].Name == name {
			t.attrs[i].Value = value
			return t
		}
	}
	t.attrs = append(t.attrs, Attribute{Name: name, Value: value})
	return t
}

// Attr returns the value of the named attribute.
func (t *Tag) Attr(name string) (any, bool) {
	for i := range t.attrs {
		if t.attrs[i].Name == name {
			return t.attrs[i].Value, true
		}
	}
	return nil, false
}

// Attrs returns a copy of the attribute list in emission order.
func (t *Tag) Attrs() []Attribute {
	out := make([]Attribute, len(t.attrs))
	copy(out, t.attrs)
	return out
}

// MergeAttrs applies attrs on top of the existing attributes; caller values
// win on conflict. New names are appended in sorted order so serialization
// stays deterministic.
func (t *Tag) MergeAttrs(attrs map[string]any) *Tag {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.SetAttr(name, attrs[name])
	}
	return t
}

// SetBody sets the inline element content. Only script tags carry a body.
func (t *Tag) SetBody(body string) *Tag {
	t.body = body
	return t
}

// Body returns the inline element content.
func (t *Tag) Body() string { return t.body }

// String serializes the tag to HTML. Attribute values are escaped; the body
// is emitted verbatim (it is generated JS, not user input).
func (t *Tag) String() string {
	var b strings.Builder
	element := "link"
	if t.Kind == KindScript {
		element = "script"
	}
	b.WriteByte('<')
	b.WriteString(element)
	for _, a := range t.attrs {
		switch v := a.Value.(type) {
		case nil:
		case bool:
			if v {
				b.WriteByte(' ')
				b.WriteString(a.Name)
			}
		case string:
			if v != "" {
				fmt.Fprintf(&b, ` %s="%s"`, a.Name, html.EscapeString(v))
			}
		default:
			fmt.Fprintf(&b, ` %s="%s"`, a.Name, html.EscapeString(fmt.Sprint(v)))
		}
	}
	b.WriteByte('>')
	if t.Kind == KindScript {
		b.WriteString(t.body)
		b.WriteString("</script>")
	}
	return b.String()
}

// renderHTML concatenates tags in list order.
func renderHTML(tags []*Tag) string {
	var b strings.Builder
	for _, t := range tags {
		b.WriteString(t.String())
	}
	return b.String()
}
