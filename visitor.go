package vitebridge

// TagVisitor observes every tag during post-processing, after the tag is
// built and before it is serialized. Visitors may mutate the tag in place
// (SetAttr, SetBody); mutations are visible in the rendered output. Setting
// an attribute to the empty string effectively removes it.
type TagVisitor interface {
	VisitTag(tag *Tag, build bool)
}

// TagVisitorFunc adapts a function to the TagVisitor interface.
type TagVisitorFunc func(tag *Tag, build bool)

func (f TagVisitorFunc) VisitTag(tag *Tag, build bool) { f(tag, build) }
