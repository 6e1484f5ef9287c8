// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import "fmt"

// Allocate creates a graphics buffer holding elementCount float32 values and
// registers it with the compute runtime for shared access.
//
// Callers size the buffer for a field: elementCount is 3×width×height, one
// RGB triple per pixel. The buffer is created with SharedUsage (written every
// frame, consumed for rendering) and registered write-discard.
//
// If registration fails the already-created graphics buffer is destroyed
// before the error returns, so no handle leaks on the failure path. The
// returned SharedBuffer starts in the OwnerGraphics state.
func Allocate(b Backend, elementCount int) (*SharedBuffer, error) {
	if elementCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidElementCount, elementCount)
	}

	buf, err := b.CreateBuffer(elementCount, SharedUsage)
	if err != nil {
		return nil, fmt.Errorf("interop: buffer creation failed: %w", err)
	}

	reg, err := b.RegisterShared(buf)
	if err != nil {
		// Ownership of the buffer transferred back to us; release it.
		b.DestroyBuffer(buf)
		return nil, fmt.Errorf("interop: shared registration failed: %w", err)
	}

	slogger().Debug("allocated shared buffer",
		"backend", b.Name(), "elements", elementCount, "buffer", buf, "registration", reg)

	return &SharedBuffer{
		backend:  b,
		buffer:   buf,
		reg:      reg,
		capacity: elementCount,
		state:    OwnerGraphics,
	}, nil
}
