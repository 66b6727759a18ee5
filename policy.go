package vitebridge

// PreloadPolicy selects the channel used to signal modulepreload hints.
type PreloadPolicy int

const (
	// PreloadLinkTag inlines <link rel="modulepreload"> tags in the markup.
	PreloadLinkTag PreloadPolicy = iota
	// PreloadExternal signals preloads through an out-of-band channel (for
	// example a Link response header). Modulepreload tags are dropped from
	// the rendered output, but dedup state still records their paths so the
	// same files are not re-emitted as script tags later.
	PreloadExternal
)
