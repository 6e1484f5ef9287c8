// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, 10, func() (Backend, error) {
		return NewSoftwareBackend(), nil
	}, nil)
}

// RGBATarget is the presentation sink the software backend can draw to.
// window.Headless implements it; any target exposing an RGBA back buffer
// works.
type RGBATarget interface {
	Target

	// BackBuffer returns the frame being composed. Present draws into it;
	// the host makes it visible on frame completion.
	BackBuffer() *image.RGBA
}

// SoftwareBackend is the pure-CPU interop backend.
//
// Both "runtimes" are host memory: the graphics side of a buffer is a
// float32 store, the compute side a separate staging slice handed out by
// Map. Unmap commits staging to the store, modelling the upload a GPU
// backend performs. The backend counts every create/destroy and
// register/unregister so tests can assert zero leaks.
type SoftwareBackend struct {
	nextID atomic.Uint64

	// store holds the graphics-side contents per buffer.
	store map[BufferID][]float32

	// regs maps registration handles to buffers.
	regs map[RegistrationID]BufferID

	// staging holds the compute-side mapping while a registration is mapped.
	staging map[RegistrationID][]float32

	createCount     int
	destroyCount    int
	registerCount   int
	unregisterCount int

	closed bool
}

// NewSoftwareBackend creates a software interop backend.
func NewSoftwareBackend() *SoftwareBackend {
	b := &SoftwareBackend{
		store:   make(map[BufferID][]float32),
		regs:    make(map[RegistrationID]BufferID),
		staging: make(map[RegistrationID][]float32),
	}
	b.nextID.Store(1)
	return b
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string { return BackendSoftware }

// CreateBuffer allocates a host-memory buffer of elementCount float32 values.
func (b *SoftwareBackend) CreateBuffer(elementCount int, usage gputypes.BufferUsage) (BufferID, error) {
	if b.closed {
		return InvalidID, fmt.Errorf("software: backend closed")
	}
	if elementCount <= 0 {
		return InvalidID, fmt.Errorf("%w: %d", ErrInvalidElementCount, elementCount)
	}
	_ = usage // all host memory is mappable and drawable

	id := BufferID(b.nextID.Add(1) - 1)
	b.store[id] = make([]float32, elementCount)
	b.createCount++
	return id, nil
}

// DestroyBuffer releases a buffer. Unknown IDs are ignored.
func (b *SoftwareBackend) DestroyBuffer(id BufferID) {
	if _, ok := b.store[id]; !ok {
		return
	}
	delete(b.store, id)
	b.destroyCount++
}

// RegisterShared registers a buffer for shared access.
func (b *SoftwareBackend) RegisterShared(id BufferID) (RegistrationID, error) {
	if _, ok := b.store[id]; !ok {
		return InvalidID, fmt.Errorf("%w: buffer %d", ErrUnknownBuffer, id)
	}
	reg := RegistrationID(b.nextID.Add(1) - 1)
	b.regs[reg] = id
	b.registerCount++
	return reg, nil
}

// UnregisterShared removes a registration.
func (b *SoftwareBackend) UnregisterShared(reg RegistrationID) error {
	if _, ok := b.regs[reg]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegistration, reg)
	}
	delete(b.regs, reg)
	delete(b.staging, reg)
	b.unregisterCount++
	return nil
}

// Registered reports whether a registration handle is still live.
// Tests use it to verify a resize fully invalidated the old buffer.
func (b *SoftwareBackend) Registered(reg RegistrationID) bool {
	_, ok := b.regs[reg]
	return ok
}

// Map hands out the compute-side staging slice for a registered buffer.
// Write-discard: the slice contents are undefined, not the buffer's previous
// data.
func (b *SoftwareBackend) Map(reg RegistrationID) ([]float32, error) {
	id, ok := b.regs[reg]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRegistration, reg)
	}
	if _, mapped := b.staging[reg]; mapped {
		return nil, ErrAlreadyMapped
	}

	s := make([]float32, len(b.store[id]))
	b.staging[reg] = s
	return s, nil
}

// Unmap commits the staging slice to the graphics-side store.
func (b *SoftwareBackend) Unmap(reg RegistrationID) error {
	id, ok := b.regs[reg]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRegistration, reg)
	}
	s, mapped := b.staging[reg]
	if !mapped {
		return ErrNotMapped
	}
	copy(b.store[id], s)
	delete(b.staging, reg)
	return nil
}

// Sync is a no-op: the CPU transform has already joined by the time the
// pipeline calls it.
func (b *SoftwareBackend) Sync() error { return nil }

// ReadBuffer returns a copy of the buffer's graphics-side contents.
func (b *SoftwareBackend) ReadBuffer(id BufferID) ([]float32, error) {
	data, ok := b.store[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", ErrUnknownBuffer, id)
	}
	out := make([]float32, len(data))
	copy(out, data)
	return out, nil
}

// Present draws the buffer as a width×height RGB image into the target's
// back buffer, scaled to the viewport. Element 0 lands at the bottom-left of
// the drawn quad.
func (b *SoftwareBackend) Present(id BufferID, width, height int, vp Viewport, t Target) error {
	data, ok := b.store[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownBuffer, id)
	}
	if width <= 0 || height <= 0 || len(data) < width*height*3 {
		return fmt.Errorf("%w: %d elements for %dx%d", ErrCapacityMismatch, len(data), width, height)
	}

	rt, ok := t.(RGBATarget)
	if !ok {
		return fmt.Errorf("%w: software backend needs an RGBA back buffer", ErrTargetMismatch)
	}
	dst := rt.BackBuffer()
	if dst == nil {
		return fmt.Errorf("%w: target has no back buffer", ErrTargetMismatch)
	}

	// Buffer rows run bottom to top; image rows run top to bottom.
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		row := (height - 1 - y) * width * 3
		off := img.PixOffset(0, y)
		for x := range width {
			p := row + x*3
			img.Pix[off+0] = clampByte(data[p+0])
			img.Pix[off+1] = clampByte(data[p+1])
			img.Pix[off+2] = clampByte(data[p+2])
			img.Pix[off+3] = 0xff
			off += 4
		}
	}

	tw, th := t.TargetSize()
	rect := image.Rect(vp.X, th-vp.Y-vp.Height, vp.X+vp.Width, th-vp.Y)
	rect = rect.Intersect(image.Rect(0, 0, tw, th))
	if rect.Empty() {
		return nil
	}

	xdraw.NearestNeighbor.Scale(dst, rect, img, img.Bounds(), xdraw.Src, nil)
	return nil
}

// Close discards all resources.
func (b *SoftwareBackend) Close() {
	if b.closed {
		return
	}
	b.destroyCount += len(b.store)
	b.unregisterCount += len(b.regs)
	b.store = nil
	b.regs = nil
	b.staging = nil
	b.closed = true
}

// Leak accounting, used by lifecycle tests.

// CreateCount returns the number of buffers created.
func (b *SoftwareBackend) CreateCount() int { return b.createCount }

// DestroyCount returns the number of buffers destroyed.
func (b *SoftwareBackend) DestroyCount() int { return b.destroyCount }

// RegisterCount returns the number of shared registrations made.
func (b *SoftwareBackend) RegisterCount() int { return b.registerCount }

// UnregisterCount returns the number of registrations removed.
func (b *SoftwareBackend) UnregisterCount() int { return b.unregisterCount }

// Live returns the number of buffers currently alive.
func (b *SoftwareBackend) Live() int { return len(b.store) }

func clampByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	default:
		return uint8(v*255 + 0.5)
	}
}
