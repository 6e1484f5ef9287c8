package fieldview

import (
	"image/color"

	"github.com/gogpu/fieldview/interop"
	"github.com/gogpu/fieldview/window"
)

// Option configures a Viewer during Open.
//
// Example:
//
//	// Default: best available backend, headless host
//	v, err := fieldview.Open(800, 600)
//
//	// Explicit backend and a real window host
//	v, err := fieldview.Open(800, 600,
//	    fieldview.WithBackendName(interop.BackendSoftware),
//	    fieldview.WithHost(host))
type Option func(*viewerOptions)

// viewerOptions holds optional configuration for Open.
type viewerOptions struct {
	title       string
	clearColor  color.RGBA
	backend     interop.Backend
	backendName string
	host        window.Host
	validate    bool
}

// defaultOptions returns the default viewer options.
func defaultOptions() viewerOptions {
	return viewerOptions{
		title:      "fieldview",
		clearColor: color.RGBA{A: 0xff},
		validate:   true,
	}
}

// WithTitle sets the window title, for hosts that display one.
func WithTitle(title string) Option {
	return func(o *viewerOptions) {
		o.title = title
	}
}

// WithClearColor sets the color the surface is cleared to outside the field
// quad. The default is opaque black.
func WithClearColor(c color.RGBA) Option {
	return func(o *viewerOptions) {
		o.clearColor = c
	}
}

// WithBackend injects a specific interop backend instance. The Viewer does
// not close an injected backend; the caller keeps ownership.
func WithBackend(b interop.Backend) Option {
	return func(o *viewerOptions) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name instead of taking the
// highest-priority available one.
func WithBackendName(name string) Option {
	return func(o *viewerOptions) {
		o.backendName = name
	}
}

// WithHost sets the window host. The default is a headless host of the
// requested size, useful for tests and off-screen rendering; pass a
// gogpuwin host to draw into a real window.
func WithHost(h window.Host) Option {
	return func(o *viewerOptions) {
		o.host = h
	}
}

// WithSizeValidation controls whether Draw checks the field element count
// against the declared dimensions. Validation is on by default; disabling it
// makes a mismatched draw undefined behavior.
func WithSizeValidation(enabled bool) Option {
	return func(o *viewerOptions) {
		o.validate = enabled
	}
}
