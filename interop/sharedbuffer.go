// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import "fmt"

// OwnerState says which runtime currently owns a SharedBuffer.
//
// The buffer is owned by exactly one runtime at any instant: either mapped
// for compute write or available for graphics read, never both. Map and
// Unmap are the only legal transitions.
type OwnerState int

const (
	// OwnerGraphics means the buffer is available to the graphics runtime.
	OwnerGraphics OwnerState = iota

	// OwnerCompute means the buffer is mapped into compute address space.
	OwnerCompute
)

// String returns the string representation of OwnerState.
func (s OwnerState) String() string {
	switch s {
	case OwnerGraphics:
		return "AvailableForGraphics"
	case OwnerCompute:
		return "MappedForCompute"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// SharedBuffer is a single allocation visible to both the compute and the
// graphics runtime.
//
// It pairs a graphics-side buffer handle with a compute-side registration
// handle and tracks which runtime owns the memory. The mapped element slice
// is reachable only between Map and Unmap; holding it across an Unmap is a
// caller bug.
//
// SharedBuffer is not safe for concurrent use. The draw path that owns it is
// single-threaded by design.
type SharedBuffer struct {
	backend Backend

	// buffer is the graphics-side handle.
	buffer BufferID

	// reg is the compute-side registration handle.
	reg RegistrationID

	// capacity is the element count (3 floats per pixel).
	capacity int

	// state tracks the owning runtime.
	state OwnerState

	// mapped holds the compute-visible slice while state is OwnerCompute.
	mapped []float32

	// released indicates the buffer has been torn down.
	released bool
}

// Handle returns the graphics-side buffer handle.
func (b *SharedBuffer) Handle() BufferID { return b.buffer }

// Registration returns the compute-side registration handle.
func (b *SharedBuffer) Registration() RegistrationID { return b.reg }

// Capacity returns the buffer capacity in float32 elements.
func (b *SharedBuffer) Capacity() int { return b.capacity }

// State returns the current owner state.
func (b *SharedBuffer) State() OwnerState { return b.state }

// Released reports whether the buffer has been released.
func (b *SharedBuffer) Released() bool { return b.released }

// Map transitions the buffer to the compute runtime and returns the writable
// element slice. The mapping is write-discard: previous contents are
// undefined. May block until the graphics runtime has finished pending reads.
func (b *SharedBuffer) Map() ([]float32, error) {
	if b.released {
		return nil, ErrBufferReleased
	}
	if b.state != OwnerGraphics {
		return nil, ErrAlreadyMapped
	}

	data, err := b.backend.Map(b.reg)
	if err != nil {
		return nil, fmt.Errorf("interop: map failed: %w", err)
	}

	b.state = OwnerCompute
	b.mapped = data
	return data, nil
}

// Unmap returns ownership to the graphics runtime. The slice returned by Map
// is invalid afterwards. Unmap must be called even when the compute transform
// failed, so the buffer never leaks in a half-mapped state.
func (b *SharedBuffer) Unmap() error {
	if b.released {
		return ErrBufferReleased
	}
	if b.state != OwnerCompute {
		return ErrNotMapped
	}

	// Hand back to graphics even if the backend unmap reports a fault; a
	// stuck OwnerCompute state would wedge every following frame.
	b.state = OwnerGraphics
	b.mapped = nil

	if err := b.backend.Unmap(b.reg); err != nil {
		return fmt.Errorf("interop: unmap failed: %w", err)
	}
	return nil
}

// Release unregisters the buffer from the compute runtime and destroys the
// graphics buffer. Idempotent. A mapped buffer is unmapped first.
func (b *SharedBuffer) Release() {
	if b.released {
		return
	}

	if b.state == OwnerCompute {
		// Best effort; the handles are going away regardless.
		b.state = OwnerGraphics
		b.mapped = nil
		if err := b.backend.Unmap(b.reg); err != nil {
			slogger().Warn("unmap during release failed", "err", err)
		}
	}

	if err := b.backend.UnregisterShared(b.reg); err != nil {
		slogger().Warn("unregister during release failed", "err", err)
	}
	b.backend.DestroyBuffer(b.buffer)

	b.released = true
	b.mapped = nil
}
