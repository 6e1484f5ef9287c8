package fieldview

import "errors"

// Top-level error taxonomy. Callers branch with errors.Is; the wrapped chain
// carries the backend detail.
var (
	// ErrWindowInit means the window surface or graphics context could not
	// be established. Open returns it and yields no usable Viewer.
	ErrWindowInit = errors.New("fieldview: window initialization failed")

	// ErrInterop means a buffer create, registration, map, unmap, or
	// present operation failed at the runtime boundary. The current frame
	// is dropped; the Viewer stays usable.
	ErrInterop = errors.New("fieldview: interop operation failed")

	// ErrSizeMismatch means the field element count does not match the
	// declared width×height.
	ErrSizeMismatch = errors.New("fieldview: field size does not match dimensions")

	// ErrViewerClosed is returned when drawing on a closed Viewer.
	ErrViewerClosed = errors.New("fieldview: viewer is closed")
)
