// Package vitebridge renders the HTML asset tags of a Vite front end from
// server-side Go: module scripts, stylesheet links, modulepreload hints and
// legacy-browser fallbacks, resolved from a build-tool entrypoints manifest.
//
// An Engine owns the dedup state of one page-render lifecycle: every
// physical asset file is referenced at most once across all render calls
// until Reset. In a long-lived server, call Reset once at the start of each
// page render.
package vitebridge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"unicode"
)

// Engine resolves entry points against a ManifestResolver and produces the
// tags each entry needs, deduplicated across the render lifecycle. An Engine
// is not safe for concurrent renders; one lifecycle must finish (or be
// Reset) before the next begins.
type Engine struct {
	resolver     ManifestResolver
	visitors     []TagVisitor
	policy       PreloadPolicy
	defaultBuild string
	absoluteURL  bool
	origin       string
	styles       fs.FS
	log          *slog.Logger

	state renderState
}

// renderState is the per-lifecycle dedup state. It is owned exclusively by
// the Engine and cleared only by Reset, never implicitly.
type renderState struct {
	// scripts maps file path to the tag already emitted for it. Script and
	// modulepreload tags share this space: a preloaded file is never
	// re-emitted as a script and vice versa.
	scripts map[string]*Tag
	// styles is the set of stylesheet paths already linked.
	styles map[string]struct{}

	// One-time bootstrap tags, keyed by build name.
	viteClients  map[string]bool
	reactRefresh map[string]bool
	legacyBoot   map[string]bool
}

func newRenderState() renderState {
	return renderState{
		scripts:      map[string]*Tag{},
		styles:       map[string]struct{}{},
		viteClients:  map[string]bool{},
		reactRefresh: map[string]bool{},
		legacyBoot:   map[string]bool{},
	}
}

// NewEngine creates an Engine over the given resolver.
func NewEngine(resolver ManifestResolver, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:     resolver,
		defaultBuild: DefaultBuild,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:        newRenderState(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// EngineOption configures an Engine at construction.
type EngineOption func(*Engine)

// WithTagVisitor registers a visitor invoked once per tag during
// post-processing, in registration order.
func WithTagVisitor(v TagVisitor) EngineOption {
	return func(e *Engine) { e.visitors = append(e.visitors, v) }
}

// WithPreloadPolicy selects how modulepreload hints are signaled.
func WithPreloadPolicy(p PreloadPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithDefaultBuild sets the build name used when a render call names none.
func WithDefaultBuild(name string) EngineOption {
	return func(e *Engine) { e.defaultBuild = name }
}

// WithAbsoluteURLDefault makes generated URLs absolute unless a render call
// overrides it. Never applies while a dev server is serving the assets.
func WithAbsoluteURLDefault(on bool) EngineOption {
	return func(e *Engine) { e.absoluteURL = on }
}

// WithOrigin sets the origin (scheme and host, no trailing slash) prefixed
// to absolute URLs.
func WithOrigin(origin string) EngineOption {
	return func(e *Engine) { e.origin = origin }
}

// WithStyleFS sets the filesystem RenderInlineStyles reads stylesheets from,
// rooted at the public document root. An embed.FS works as well as os.DirFS.
func WithStyleFS(fsys fs.FS) EngineOption {
	return func(e *Engine) { e.styles = fsys }
}

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// ===== per-call options =====

type renderOptions struct {
	build          string
	absoluteURL    *bool
	dependency     string
	attrs          map[string]any
	preloadDynamic bool
}

// RenderOption configures a single render call.
type RenderOption func(*renderOptions)

// WithBuild selects the build configuration the entry is resolved against.
func WithBuild(name string) RenderOption {
	return func(o *renderOptions) { o.build = name }
}

// WithAbsoluteURL overrides the engine's absolute-URL default for this call.
func WithAbsoluteURL(on bool) RenderOption {
	return func(o *renderOptions) { o.absoluteURL = &on }
}

// WithDependency declares a framework dependency of the entry. "react"
// triggers the fast-refresh preamble when a dev server is active.
func WithDependency(name string) RenderOption {
	return func(o *renderOptions) { o.dependency = name }
}

// WithAttrs merges extra attributes into every generated tag; caller values
// win over generated ones.
func WithAttrs(attrs map[string]any) RenderOption {
	return func(o *renderOptions) { o.attrs = attrs }
}

// WithPreloadDynamicImports also preloads dynamically imported dependencies
// in RenderLinks. Build mode only.
func WithPreloadDynamicImports() RenderOption {
	return func(o *renderOptions) { o.preloadDynamic = true }
}

func (e *Engine) options(opts []RenderOption) renderOptions {
	o := renderOptions{build: e.defaultBuild}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ===== script rendering =====

// RenderScripts returns the script tags entry needs, in emission order,
// skipping every file already rendered in this lifecycle. While a dev server
// is active it also emits the dev client bootstrap (and react-refresh
// preamble when requested) once per build; in a legacy-enabled production
// build it emits the legacy bootstrap protocol once per build.
func (e *Engine) RenderScripts(entry string, opts ...RenderOption) []*Tag {
	o := e.options(opts)
	m := e.resolver.Lookup(o.build)
	if !m.HasEntries() {
		return nil
	}

	absolute := e.useAbsolute(m, o)
	var tags []*Tag

	if dev := m.DevServerURL(); dev != "" {
		if !e.state.viteClients[o.build] {
			e.state.viteClients[o.build] = true
			tags = append(tags, ScriptTag().
				SetAttr("type", "module").
				SetAttr("src", joinURL(dev, m.BasePath(), viteClientPath)))
		}
		if o.dependency == "react" && !e.state.reactRefresh[o.build] {
			e.state.reactRefresh[o.build] = true
			tags = append(tags, ScriptTag().
				SetAttr("type", "module").
				SetBody(reactRefreshPreamble(joinURL(dev, m.BasePath(), reactRefreshPath))))
		}
	} else if m.LegacyPluginEnabled() && !e.state.legacyBoot[o.build] {
		e.state.legacyBoot[o.build] = true
		tags = append(tags, e.legacyBootstrap(m, absolute)...)
	}

	for _, file := range m.JSFiles(entry) {
		if _, done := e.state.scripts[file]; done {
			continue
		}
		tag := ScriptTag().
			SetAttr("type", "module").
			SetAttr("src", e.completeURL(m, file, absolute)).
			SetAttr("integrity", m.Hash(file)).
			MergeAttrs(o.attrs)
		e.state.scripts[file] = tag
		tags = append(tags, tag)
	}

	if m.HasLegacyEntry(entry) {
		if tag := e.legacyEntryTag(m, entry, absolute, o.attrs); tag != nil {
			tags = append(tags, tag)
		}
	}

	return e.postProcess(tags, m.IsBuild())
}

// RenderScriptsHTML is RenderScripts serialized to markup.
func (e *Engine) RenderScriptsHTML(entry string, opts ...RenderOption) string {
	return renderHTML(e.RenderScripts(entry, opts...))
}

// legacyBootstrap emits the legacy-browser protocol, in fixed order: the
// modernity probe, the dynamic fallback loader, the Safari nomodule fix,
// then one nomodule script per polyfill file.
func (e *Engine) legacyBootstrap(m Manifest, absolute bool) []*Tag {
	tags := []*Tag{
		ScriptTag().SetAttr("type", "module").SetBody(detectModernBrowser),
		ScriptTag().SetAttr("nomodule", true).SetBody(dynamicFallback),
		ScriptTag().SetAttr("nomodule", true).SetBody(safariNomoduleFix),
	}
	for _, file := range m.JSFiles(legacyPolyfillsEntry) {
		if _, done := e.state.scripts[file]; done {
			continue
		}
		tag := ScriptTag().
			SetAttr("nomodule", true).
			SetAttr("crossorigin", true).
			SetAttr("src", e.completeURL(m, file, absolute)).
			SetAttr("id", legacyPolyfillID).
			SetAttr("integrity", m.Hash(file))
		e.state.scripts[file] = tag
		tags = append(tags, tag)
	}
	return tags
}

// legacyEntryTag builds the nomodule tag for entry's legacy twin. The file
// URL goes into data-src so non-legacy browsers never fetch it; the inline
// SystemJS loader resolves it through the tag's derived id.
func (e *Engine) legacyEntryTag(m Manifest, entry string, absolute bool, attrs map[string]any) *Tag {
	file := m.LegacyFile(entry)
	if file == "" {
		return nil
	}
	if _, done := e.state.scripts[file]; done {
		return nil
	}
	id := kebabCase("vite-legacy-entry-" + entry)
	tag := ScriptTag().
		SetAttr("nomodule", true).
		SetAttr("crossorigin", true).
		SetAttr("data-src", e.completeURL(m, file, absolute)).
		SetAttr("id", id).
		SetAttr("class", legacyEntryClass).
		SetAttr("integrity", m.Hash(file)).
		SetBody(legacyEntryBootstrap(id)).
		MergeAttrs(attrs)
	e.state.scripts[file] = tag
	return tag
}

// ===== link rendering =====

// RenderLinks returns the stylesheet links of entry plus, in build mode, the
// modulepreload hints for its JS dependencies. Preloaded files share dedup
// state with script tags.
func (e *Engine) RenderLinks(entry string, opts ...RenderOption) []*Tag {
	o := e.options(opts)
	m := e.resolver.Lookup(o.build)
	if !m.HasEntries() {
		return nil
	}

	absolute := e.useAbsolute(m, o)
	var tags []*Tag

	for _, file := range m.CSSFiles(entry) {
		if _, done := e.state.styles[file]; done {
			continue
		}
		e.state.styles[file] = struct{}{}
		tags = append(tags, StylesheetTag().
			SetAttr("href", e.completeURL(m, file, absolute)).
			SetAttr("integrity", m.Hash(file)).
			MergeAttrs(o.attrs))
	}

	if m.IsBuild() {
		tags = append(tags, e.preloadTags(m, m.Preloads(entry), absolute, o.attrs)...)
		if o.preloadDynamic {
			tags = append(tags, e.preloadTags(m, m.DynamicPreloads(entry), absolute, o.attrs)...)
		}
	}

	return e.postProcess(tags, m.IsBuild())
}

// RenderLinksHTML is RenderLinks serialized to markup.
func (e *Engine) RenderLinksHTML(entry string, opts ...RenderOption) string {
	return renderHTML(e.RenderLinks(entry, opts...))
}

func (e *Engine) preloadTags(m Manifest, files []string, absolute bool, attrs map[string]any) []*Tag {
	var tags []*Tag
	for _, file := range files {
		if _, done := e.state.scripts[file]; done {
			continue
		}
		tag := ModulePreloadTag().
			SetAttr("href", e.completeURL(m, file, absolute)).
			SetAttr("integrity", m.Hash(file)).
			MergeAttrs(attrs)
		e.state.scripts[file] = tag
		tags = append(tags, tag)
	}
	return tags
}

// RenderLazyLinks emits, for each stylesheet of entry not yet rendered, a
// preload link that promotes itself to a stylesheet on load, plus a noscript
// fallback. The output is a fixed literal (lazyStylesheetPattern), bypassing
// tag building and post-processing, and only exists in string form.
func (e *Engine) RenderLazyLinks(entry string, opts ...RenderOption) string {
	o := e.options(opts)
	m := e.resolver.Lookup(o.build)
	if !m.HasEntries() {
		return ""
	}

	absolute := e.useAbsolute(m, o)
	var b strings.Builder
	for _, file := range m.CSSFiles(entry) {
		if _, done := e.state.styles[file]; done {
			continue
		}
		e.state.styles[file] = struct{}{}
		href := e.completeURL(m, file, absolute)
		fmt.Fprintf(&b, lazyStylesheetPattern, href, href)
	}
	return b.String()
}

// RenderInlineStyles concatenates the contents of entry's stylesheets inside
// one <style> element, read from the style filesystem (WithStyleFS). It does
// not consume dedup state and is a no-op while a dev server serves the
// assets. A failing read aborts the call: inlined CSS must be complete or
// absent, never silently truncated.
func (e *Engine) RenderInlineStyles(entry string, opts ...RenderOption) (string, error) {
	o := e.options(opts)
	m := e.resolver.Lookup(o.build)
	if !m.HasEntries() || !m.IsBuild() {
		return "", nil
	}

	files := m.CSSFiles(entry)
	if len(files) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("<style>")
	for _, file := range files {
		data, err := e.readStyle(file)
		if err != nil {
			return "", err
		}
		b.Write(data)
	}
	b.WriteString("</style>")
	return b.String(), nil
}

func (e *Engine) readStyle(file string) ([]byte, error) {
	if e.styles == nil {
		return nil, NewStyleReadError(file, errors.New("no style filesystem configured (WithStyleFS)"))
	}
	data, err := fs.ReadFile(e.styles, strings.TrimPrefix(file, "/"))
	if err != nil {
		return nil, NewStyleReadError(file, err)
	}
	return data, nil
}

// ===== mode & lifecycle =====

// Mode reports how a build's assets are served.
type Mode string

const (
	// ModeNone means no manifest data is available.
	ModeNone Mode = ""
	// ModeBuild means assets are a static production build.
	ModeBuild Mode = "build"
	// ModeDev means a dev server is serving the assets.
	ModeDev Mode = "dev"
)

// Mode reports the serving mode of the selected build.
func (e *Engine) Mode(opts ...RenderOption) Mode {
	o := e.options(opts)
	m := e.resolver.Lookup(o.build)
	switch {
	case !m.HasEntries():
		return ModeNone
	case m.IsBuild():
		return ModeBuild
	default:
		return ModeDev
	}
}

// Reset wipes all dedup state: every file path and every one-time bootstrap
// becomes eligible again. Call once at the start of each page render when
// the Engine outlives a single render lifecycle.
func (e *Engine) Reset() {
	e.state = newRenderState()
}

// ===== post-processing =====

// postProcess runs every visitor over every tag, then applies the preload
// policy: under PreloadExternal, modulepreload tags are dropped from the
// output (their paths stay recorded as rendered). Visitor mutations are
// visible in the serialized result.
func (e *Engine) postProcess(tags []*Tag, build bool) []*Tag {
	for _, tag := range tags {
		for _, v := range e.visitors {
			v.VisitTag(tag, build)
		}
	}
	if e.policy == PreloadLinkTag {
		return tags
	}
	kept := tags[:0]
	for _, tag := range tags {
		if tag.Kind == KindModulePreload {
			continue
		}
		kept = append(kept, tag)
	}
	return kept
}

// ===== util =====

// useAbsolute decides whether URLs are completed against the origin.
// Absolute URLs are never forced while a dev server serves the assets.
func (e *Engine) useAbsolute(m Manifest, o renderOptions) bool {
	if m.DevServerURL() != "" {
		return false
	}
	if o.absoluteURL != nil {
		return *o.absoluteURL
	}
	return e.absoluteURL
}

// completeURL turns a manifest-reported path into the URL to reference. Dev
// paths are served from the dev-server origin; build paths stay as-is unless
// an absolute URL was requested and an origin is configured.
func (e *Engine) completeURL(m Manifest, path string, absolute bool) string {
	if dev := m.DevServerURL(); dev != "" {
		return joinURL(dev, path)
	}
	if absolute && e.origin != "" {
		return joinURL(e.origin, path)
	}
	return path
}

func joinURL(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		out = strings.TrimSuffix(out, "/") + "/" + strings.TrimPrefix(p, "/")
	}
	return out
}

// kebabCase lowercases s, inserting a dash where an uppercase letter follows
// a lowercase letter or digit: "MyEntry" becomes "my-entry".
func kebabCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
