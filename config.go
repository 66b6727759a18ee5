package vitebridge

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preload channel names accepted in configuration.
const (
	preloadLinkTagName  = "link-tag"
	preloadExternalName = "none"
)

// Config is the file-based configuration of an Engine. There is no
// automatic discovery: the caller says which file to load.
type Config struct {
	// DefaultBuild names the build used when a render call selects none.
	// Defaults to "_default".
	DefaultBuild string `yaml:"default_build"`

	// UseAbsoluteURL makes generated URLs absolute by default. Requires
	// Origin; ignored while a dev server serves the assets.
	UseAbsoluteURL bool `yaml:"use_absolute_url"`

	// Origin is the scheme and host prefixed to absolute URLs,
	// e.g. "https://example.com". No trailing slash.
	Origin string `yaml:"origin"`

	// Preload selects the modulepreload channel: "link-tag" (default)
	// inlines link tags, "none" leaves signaling to an external channel
	// such as a Link response header.
	Preload string `yaml:"preload"`

	// Builds maps build configuration names to their locations.
	Builds map[string]BuildConfig `yaml:"builds"`
}

// BuildConfig locates the artifacts of one build configuration.
type BuildConfig struct {
	// Entrypoints is the path of the entrypoints file written by the build
	// integration.
	Entrypoints string `yaml:"entrypoints"`

	// PublicDir is the public document root stylesheets are read from when
	// inlining. Optional; inline styles then need WithStyleFS.
	PublicDir string `yaml:"public_dir"`
}

// LoadConfig reads, defaults, and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, NewConfigError(path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigError(path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DefaultBuild == "" {
		c.DefaultBuild = DefaultBuild
	}
	if c.Preload == "" {
		c.Preload = preloadLinkTagName
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if len(c.Builds) == 0 {
		return errors.New("no builds configured")
	}
	if _, ok := c.Builds[c.DefaultBuild]; !ok {
		return fmt.Errorf("default build %q has no builds entry", c.DefaultBuild)
	}
	switch c.Preload {
	case preloadLinkTagName, preloadExternalName:
	default:
		return fmt.Errorf("unknown preload channel %q", c.Preload)
	}
	for name, b := range c.Builds {
		if b.Entrypoints == "" {
			return fmt.Errorf("build %q: entrypoints path is required", name)
		}
	}
	if c.UseAbsoluteURL && c.Origin == "" {
		return errors.New("use_absolute_url requires origin")
	}
	return nil
}

// NewEngineFromConfig wires an Engine per cfg: a FileResolver over the
// configured entrypoints files, the default build's public directory as
// style filesystem, and the preload/URL settings. opts are applied last and
// may override any of it.
func NewEngineFromConfig(cfg *Config, opts ...EngineOption) *Engine {
	paths := make(map[string]string, len(cfg.Builds))
	for name, b := range cfg.Builds {
		paths[name] = b.Entrypoints
	}

	base := []EngineOption{WithDefaultBuild(cfg.DefaultBuild)}
	if cfg.UseAbsoluteURL {
		base = append(base, WithAbsoluteURLDefault(true))
	}
	if cfg.Origin != "" {
		base = append(base, WithOrigin(cfg.Origin))
	}
	if cfg.Preload == preloadExternalName {
		base = append(base, WithPreloadPolicy(PreloadExternal))
	}
	if b, ok := cfg.Builds[cfg.DefaultBuild]; ok && b.PublicDir != "" {
		base = append(base, WithStyleFS(os.DirFS(b.PublicDir)))
	}

	return NewEngine(NewFileResolver(paths), append(base, opts...)...)
}
