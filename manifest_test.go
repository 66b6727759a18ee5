package vitebridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseManifest(t *testing.T) {
	t.Run("should tolerate comments and trailing commas", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{
			// dev setups patch these files by hand
			"base": "/build/",
			"entryPoints": {
				"app": {"js": ["/build/app.js"], "css": [], "preload": [], "dynamic": [], "legacy": ""},
			},
		}`))
		require.NoError(t, err)
		assert.True(t, m.HasEntries())
		assert.Equal(t, []string{"/build/app.js"}, m.JSFiles("app"))
		assert.Equal(t, "/build/", m.BasePath())
	})

	t.Run("should return a ManifestError for malformed JSON", func(t *testing.T) {
		_, err := ParseManifest([]byte(`{"entryPoints": [`))
		var manifestErr *ManifestError
		require.ErrorAs(t, err, &manifestErr)
		assert.Empty(t, manifestErr.Path)
	})

	t.Run("should report build mode when no dev server is recorded", func(t *testing.T) {
		m := mustManifest(t, buildEntrypoints)
		assert.True(t, m.IsBuild())
		assert.Empty(t, m.DevServerURL())

		dev := mustManifest(t, devEntrypoints)
		assert.False(t, dev.IsBuild())
		assert.Equal(t, "http://localhost:5173", dev.DevServerURL())
	})

	t.Run("should return empty file lists for unknown entries", func(t *testing.T) {
		m := mustManifest(t, buildEntrypoints)
		assert.Empty(t, m.JSFiles("nope"))
		assert.Empty(t, m.CSSFiles("nope"))
		assert.Empty(t, m.Preloads("nope"))
		assert.Empty(t, m.DynamicPreloads("nope"))
	})

	t.Run("should resolve the legacy twin entry to its script file", func(t *testing.T) {
		m := mustManifest(t, legacyEntrypoints)
		assert.True(t, m.HasLegacyEntry("MyEntry"))
		assert.Equal(t, "/build/assets/MyEntry-legacy-33bb44.js", m.LegacyFile("MyEntry"))

		assert.False(t, m.HasLegacyEntry("other"))
		assert.Empty(t, m.LegacyFile("other"))
	})

	t.Run("should return an empty legacy file when the twin is missing", func(t *testing.T) {
		m, err := ParseManifest([]byte(`{
			"entryPoints": {
				"app": {"js": ["/a.js"], "css": [], "preload": [], "dynamic": [], "legacy": "gone"}
			}
		}`))
		require.NoError(t, err)
		assert.True(t, m.HasLegacyEntry("app"))
		assert.Empty(t, m.LegacyFile("app"))
	})

	t.Run("should return an empty hash for unrecorded files", func(t *testing.T) {
		m := mustManifest(t, buildEntrypoints)
		assert.Equal(t, "sha384-oqVuAfXRKap7fdgc", m.Hash("/build/assets/app-4a5bd3.js"))
		assert.Empty(t, m.Hash("/build/assets/unknown.js"))
	})
}

func Test_ReadManifestFile(t *testing.T) {
	t.Run("should read an entrypoints file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "entrypoints.json")
		require.NoError(t, os.WriteFile(path, []byte(buildEntrypoints), 0o644))

		m, err := ReadManifestFile(path)
		require.NoError(t, err)
		assert.True(t, m.HasEntries())
	})

	t.Run("should wrap read failures with the file path", func(t *testing.T) {
		_, err := ReadManifestFile(filepath.Join(t.TempDir(), "missing.json"))
		var manifestErr *ManifestError
		require.ErrorAs(t, err, &manifestErr)
		assert.Contains(t, manifestErr.Path, "missing.json")
	})
}

func Test_Resolvers(t *testing.T) {
	t.Run("static resolver should fall back to an empty manifest", func(t *testing.T) {
		r := StaticResolver{"main": mustManifest(t, buildEntrypoints)}
		assert.True(t, r.Lookup("main").HasEntries())
		assert.False(t, r.Lookup("unknown").HasEntries())
	})

	t.Run("file resolver should load and cache per build", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "entrypoints.json")
		require.NoError(t, os.WriteFile(path, []byte(buildEntrypoints), 0o644))

		r := NewFileResolver(map[string]string{DefaultBuild: path})
		require.True(t, r.Lookup(DefaultBuild).HasEntries())

		// Cached: deleting the file must not affect later lookups.
		require.NoError(t, os.Remove(path))
		assert.True(t, r.Lookup(DefaultBuild).HasEntries())
	})

	t.Run("file resolver should degrade to empty for unreadable files", func(t *testing.T) {
		r := NewFileResolver(map[string]string{DefaultBuild: filepath.Join(t.TempDir(), "missing.json")})
		assert.False(t, r.Lookup(DefaultBuild).HasEntries())
	})

	t.Run("file resolver should degrade to empty for unconfigured builds", func(t *testing.T) {
		r := NewFileResolver(nil)
		assert.False(t, r.Lookup("anything").HasEntries())
	})
}
