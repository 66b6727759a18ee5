package vitebridge

import "fmt"

// ManifestError is returned when an entrypoints file cannot be read or
// parsed. Note that render operations never surface it: an unusable manifest
// degrades to an empty render. It is visible to callers loading manifests
// directly via ReadManifestFile or ParseManifest.
type ManifestError struct {
	Path string // file path, empty when parsing raw bytes
	Err  error  // underlying read or parse error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing entrypoints: %v", e.Err)
	}
	return fmt.Sprintf("entrypoints file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ManifestError) Unwrap() error { return e.Err }

// NewManifestError creates a new ManifestError.
func NewManifestError(path string, err error) *ManifestError {
	return &ManifestError{Path: path, Err: err}
}

// StyleReadError is returned when a stylesheet cannot be read for inlining.
// It is fatal to the render call: an incomplete <style> body would ship a
// visually broken page, so the failure must reach the caller.
type StyleReadError struct {
	File string // manifest-reported stylesheet path
	Err  error  // underlying read error
}

// Error implements the error interface.
func (e *StyleReadError) Error() string {
	return fmt.Sprintf("inlining stylesheet %s: %v", e.File, e.Err)
}

// Unwrap returns the underlying error.
func (e *StyleReadError) Unwrap() error { return e.Err }

// NewStyleReadError creates a new StyleReadError.
func NewStyleReadError(file string, err error) *StyleReadError {
	return &StyleReadError{File: file, Err: err}
}

// ConfigError is returned when a configuration file cannot be read, parsed,
// or validated.
type ConfigError struct {
	Path string // config file path
	Err  error  // underlying error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}
