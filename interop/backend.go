// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import (
	"github.com/gogpu/gputypes"
)

// BufferID identifies a graphics-runtime buffer owned by a Backend.
type BufferID uint64

// RegistrationID identifies a compute-side shared registration of a buffer.
type RegistrationID uint64

// InvalidID is the zero value for all resource IDs. Backends never issue it.
const InvalidID = 0

// Viewport is the window region a frame is drawn into, in pixels.
// X, Y is the lower-left corner, matching the field coordinate convention
// (element 0 is the bottom-left pixel, rows proceed bottom to top).
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Target is the presentation sink for one frame. Hosts hand a Target to the
// Viewer for every draw; what a backend can do with it is discovered by
// interface assertion, so targets and backends pair up without this package
// depending on any windowing runtime.
type Target interface {
	// TargetSize returns the drawable size in pixels.
	TargetSize() (width, height int)
}

// SharedUsage is the usage a shared buffer is created with: written every
// frame by the compute runtime, consumed for rendering by the graphics
// runtime.
const SharedUsage = gputypes.BufferUsageStorage |
	gputypes.BufferUsageCopyDst |
	gputypes.BufferUsageCopySrc

// Backend is the cross-runtime contract the interop pipeline runs on.
//
// A Backend owns buffers on the graphics side and mediates the compute side's
// mapped access to them. Implementations are not required to be safe for
// concurrent use; the pipeline is single-threaded by design.
//
// Resource discipline: every BufferID returned by CreateBuffer must be
// released with DestroyBuffer, and every RegistrationID from RegisterShared
// with UnregisterShared. Destroying a buffer that is still registered or
// mapped is a caller bug; backends may panic or return errors on later use of
// the stale handle but must not crash the process on the destroy itself.
type Backend interface {
	// Name returns the registry name of this backend.
	Name() string

	// CreateBuffer allocates a graphics buffer holding elementCount float32
	// values with the given usage.
	CreateBuffer(elementCount int, usage gputypes.BufferUsage) (BufferID, error)

	// DestroyBuffer releases a graphics buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// RegisterShared registers a buffer for shared compute access and
	// returns the compute-side handle. The buffer itself is untouched; on
	// failure ownership of the buffer stays with the caller.
	RegisterShared(id BufferID) (RegistrationID, error)

	// UnregisterShared removes a shared registration. The underlying buffer
	// is not destroyed.
	UnregisterShared(reg RegistrationID) error

	// Map maps the registered buffer into compute address space under a
	// write-discard policy and returns the writable element slice. The call
	// may block until the graphics runtime has finished pending reads of the
	// buffer. Previous contents are not preserved.
	Map(reg RegistrationID) ([]float32, error)

	// Unmap returns the buffer to the graphics runtime. The slice returned
	// by Map is invalid afterwards.
	Unmap(reg RegistrationID) error

	// Sync blocks until all compute work issued against mapped buffers has
	// completed. The pipeline calls it between the transform and Unmap so
	// the graphics runtime observes finished writes.
	Sync() error

	// ReadBuffer reads the buffer's graphics-side contents. This stalls on
	// GPU backends and exists for verification and debugging, not the frame
	// path.
	ReadBuffer(id BufferID) ([]float32, error)

	// Present binds the buffer as a width×height 3-channel float image and
	// draws a textured quad covering vp on the target. This is the sole
	// point at which a frame becomes externally observable.
	Present(id BufferID, width, height int, vp Viewport, t Target) error

	// Close releases all backend resources. Buffers still alive at Close
	// are destroyed.
	Close()
}
