package vitebridge

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/tidwall/jsonc"
)

// DefaultBuild is the configuration name used when a render call does not
// select one.
const DefaultBuild = "_default"

// Manifest exposes the build-tool output for one named build configuration.
type Manifest interface {
	// HasEntries reports whether any manifest data is available. Render
	// operations treat false as "nothing to render", never as an error.
	HasEntries() bool
	// IsBuild reports whether the assets are a static production build.
	IsBuild() bool
	// DevServerURL returns the origin of the dev server currently serving
	// the assets, or "" when none is active.
	DevServerURL() string
	// BasePath returns the public base path the assets are served under.
	BasePath() string
	// LegacyPluginEnabled reports whether the legacy-browser plugin
	// contributed fallback bundles to this build.
	LegacyPluginEnabled() bool

	// JSFiles returns the module scripts of an entry, in manifest order.
	JSFiles(entry string) []string
	// CSSFiles returns the stylesheets of an entry, in manifest order.
	CSSFiles(entry string) []string
	// Preloads returns the statically imported JS dependencies of an entry
	// (modulepreload candidates).
	Preloads(entry string) []string
	// DynamicPreloads returns the dynamically imported JS dependencies of
	// an entry.
	DynamicPreloads(entry string) []string
	// HasLegacyEntry reports whether entry has a legacy twin.
	HasLegacyEntry(entry string) bool
	// LegacyFile returns the script file of entry's legacy twin, or "".
	LegacyFile(entry string) string
	// Hash returns the subresource-integrity digest recorded for a file
	// path, or "" when none was recorded.
	Hash(path string) string
}

// ManifestResolver maps a build configuration name to its Manifest.
type ManifestResolver interface {
	Lookup(build string) Manifest
}

// ===== entrypoints file =====

// entrypointsFile mirrors the JSON emitted by the build integration: one
// entry per logical bundle, plus build-wide metadata.
type entrypointsFile struct {
	Base        string                  `json:"base"`
	EntryPoints map[string]entryPoint   `json:"entryPoints"`
	Legacy      bool                    `json:"legacy"`
	ViteServer  string                  `json:"viteServer"`
	Metadatas   map[string]fileMetadata `json:"metadatas"`
}

type entryPoint struct {
	JS      []string `json:"js"`
	CSS     []string `json:"css"`
	Preload []string `json:"preload"`
	Dynamic []string `json:"dynamic"`
	// Legacy names the twin entry holding the non-module fallback bundle,
	// empty when the build has none.
	Legacy string `json:"legacy"`
}

type fileMetadata struct {
	Hash string `json:"hash"`
}

// fileManifest is a Manifest backed by a parsed entrypoints file.
type fileManifest struct {
	data entrypointsFile
}

// ParseManifest parses entrypoints JSON into a Manifest. Comments and
// trailing commas are tolerated (JSONC): manifests are tool-generated but
// get hand-patched in dev setups.
func ParseManifest(data []byte) (Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var f entrypointsFile
	if err := json.Unmarshal(stripped, &f); err != nil {
		return nil, NewManifestError("", err)
	}
	return &fileManifest{data: f}, nil
}

// ReadManifestFile reads an entrypoints file from disk and parses it.
func ReadManifestFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewManifestError(path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, NewManifestError(path, err.(*ManifestError).Err)
	}
	return m, nil
}

func (m *fileManifest) entry(name string) (entryPoint, bool) {
	e, ok := m.data.EntryPoints[name]
	return e, ok
}

func (m *fileManifest) HasEntries() bool          { return len(m.data.EntryPoints) > 0 }
func (m *fileManifest) IsBuild() bool             { return m.data.ViteServer == "" }
func (m *fileManifest) DevServerURL() string      { return m.data.ViteServer }
func (m *fileManifest) BasePath() string          { return m.data.Base }
func (m *fileManifest) LegacyPluginEnabled() bool { return m.data.Legacy }

func (m *fileManifest) JSFiles(entry string) []string {
	e, _ := m.entry(entry)
	return e.JS
}

func (m *fileManifest) CSSFiles(entry string) []string {
	e, _ := m.entry(entry)
	return e.CSS
}

func (m *fileManifest) Preloads(entry string) []string {
	e, _ := m.entry(entry)
	return e.Preload
}

func (m *fileManifest) DynamicPreloads(entry string) []string {
	e, _ := m.entry(entry)
	return e.Dynamic
}

func (m *fileManifest) HasLegacyEntry(entry string) bool {
	e, ok := m.entry(entry)
	return ok && e.Legacy != ""
}

func (m *fileManifest) LegacyFile(entry string) string {
	e, ok := m.entry(entry)
	if !ok || e.Legacy == "" {
		return ""
	}
	twin, ok := m.entry(e.Legacy)
	if !ok || len(twin.JS) == 0 {
		return ""
	}
	return twin.JS[0]
}

func (m *fileManifest) Hash(path string) string {
	return m.data.Metadatas[path].Hash
}

// ===== resolvers =====

// emptyManifest stands in when no manifest data is available; every render
// operation degrades to an empty result against it.
type emptyManifest struct{}

func (emptyManifest) HasEntries() bool                { return false }
func (emptyManifest) IsBuild() bool                   { return true }
func (emptyManifest) DevServerURL() string            { return "" }
func (emptyManifest) BasePath() string                { return "" }
func (emptyManifest) LegacyPluginEnabled() bool       { return false }
func (emptyManifest) JSFiles(string) []string         { return nil }
func (emptyManifest) CSSFiles(string) []string        { return nil }
func (emptyManifest) Preloads(string) []string        { return nil }
func (emptyManifest) DynamicPreloads(string) []string { return nil }
func (emptyManifest) HasLegacyEntry(string) bool      { return false }
func (emptyManifest) LegacyFile(string) string        { return "" }
func (emptyManifest) Hash(string) string              { return "" }

// StaticResolver serves pre-built Manifests keyed by build name. Unknown
// names resolve to an empty manifest.
type StaticResolver map[string]Manifest

// Lookup implements ManifestResolver.
func (r StaticResolver) Lookup(build string) Manifest {
	if m, ok := r[build]; ok {
		return m
	}
	return emptyManifest{}
}

// FileResolver lazily reads one entrypoints file per build name and caches
// the parsed result for the lifetime of the resolver. A missing or
// unparsable file resolves to an empty manifest so a page render degrades
// to empty markup instead of failing.
type FileResolver struct {
	paths map[string]string
	cache map[string]Manifest
	log   *slog.Logger
}

// NewFileResolver creates a resolver over build name to entrypoints file
// path mappings.
func NewFileResolver(paths map[string]string, opts ...func(*FileResolver)) *FileResolver {
	r := &FileResolver{
		paths: paths,
		cache: make(map[string]Manifest, len(paths)),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// WithResolverLogger sets the logger used for manifest resolution.
func WithResolverLogger(log *slog.Logger) func(*FileResolver) {
	return func(r *FileResolver) { r.log = log }
}

// Lookup implements ManifestResolver.
func (r *FileResolver) Lookup(build string) Manifest {
	if m, ok := r.cache[build]; ok {
		return m
	}

	var m Manifest = emptyManifest{}
	if path, ok := r.paths[build]; ok {
		parsed, err := ReadManifestFile(path)
		if err != nil {
			r.log.Warn("entrypoints file unavailable, rendering nothing",
				"build", build, "path", path, "error", err)
		} else {
			r.log.Debug("entrypoints file loaded", "build", build, "path", path)
			m = parsed
		}
	} else {
		r.log.Debug("no entrypoints file configured", "build", build)
	}
	r.cache[build] = m
	return m
}
