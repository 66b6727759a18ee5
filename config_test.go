package vitebridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vitebridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_LoadConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
builds:
  _default:
    entrypoints: public/build/entrypoints.json
    public_dir: public
`))
		require.NoError(t, err)
		assert.Equal(t, DefaultBuild, cfg.DefaultBuild)
		assert.Equal(t, "link-tag", cfg.Preload)
		assert.Equal(t, "public", cfg.Builds[DefaultBuild].PublicDir)
	})

	t.Run("should load a full configuration", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
default_build: storefront
use_absolute_url: true
origin: https://shop.example.com
preload: none
builds:
  storefront:
    entrypoints: public/build/entrypoints.json
  admin:
    entrypoints: public/admin/entrypoints.json
`))
		require.NoError(t, err)
		assert.Equal(t, "storefront", cfg.DefaultBuild)
		assert.True(t, cfg.UseAbsoluteURL)
		assert.Equal(t, "https://shop.example.com", cfg.Origin)
		assert.Len(t, cfg.Builds, 2)
	})

	t.Run("should reject a configuration without builds", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `preload: link-tag`))
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "no builds")
	})

	t.Run("should reject an unknown default build", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `
default_build: nope
builds:
  main:
    entrypoints: e.json
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `default build "nope"`)
	})

	t.Run("should reject an unknown preload channel", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `
preload: http2-push
builds:
  _default:
    entrypoints: e.json
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "preload channel")
	})

	t.Run("should reject a build without an entrypoints path", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `
builds:
  _default:
    public_dir: public
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entrypoints path is required")
	})

	t.Run("should reject absolute URLs without an origin", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, `
use_absolute_url: true
builds:
  _default:
    entrypoints: e.json
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "origin")
	})

	t.Run("should wrap unreadable files", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func Test_NewEngineFromConfig(t *testing.T) {
	t.Run("should wire resolver, styles and options from the file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "public", "build", "assets"), 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "public", "build", "entrypoints.json"),
			[]byte(buildEntrypoints), 0o644))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "public", "build", "assets", "theme-22ab40.css"),
			[]byte("body{margin:0}"), 0o644))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "public", "build", "assets", "fonts-d18a0c.css"),
			[]byte("i{}"), 0o644))

		cfg, err := LoadConfig(writeConfig(t, `
preload: none
builds:
  _default:
    entrypoints: `+filepath.Join(dir, "public", "build", "entrypoints.json")+`
    public_dir: `+filepath.Join(dir, "public")+`
`))
		require.NoError(t, err)

		e := NewEngineFromConfig(cfg)
		assert.Equal(t, ModeBuild, e.Mode())

		// preload: none suppresses the modulepreload tag for app's vendor dep.
		tags := e.RenderLinks("app")
		require.Len(t, tags, 1)
		assert.Equal(t, KindStylesheet, tags[0].Kind)

		inline, err := e.RenderInlineStyles("theme")
		require.NoError(t, err)
		assert.Equal(t, "<style>body{margin:0}i{}</style>", inline)
	})

	t.Run("should report no mode when the entrypoints file is absent", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
builds:
  _default:
    entrypoints: `+filepath.Join(t.TempDir(), "absent.json")+`
`))
		require.NoError(t, err)
		assert.Equal(t, ModeNone, NewEngineFromConfig(cfg).Mode())
	})
}
