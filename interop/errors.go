// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import "errors"

// Pipeline errors.
var (
	// ErrBufferReleased is returned when operating on a released SharedBuffer.
	ErrBufferReleased = errors.New("interop: shared buffer has been released")

	// ErrAlreadyMapped is returned when mapping a buffer that is already
	// owned by the compute runtime.
	ErrAlreadyMapped = errors.New("interop: buffer is already mapped for compute")

	// ErrNotMapped is returned when unmapping a buffer the graphics runtime
	// already owns.
	ErrNotMapped = errors.New("interop: buffer is not mapped")

	// ErrInvalidElementCount is returned when allocating with a non-positive
	// element count.
	ErrInvalidElementCount = errors.New("interop: element count must be positive")

	// ErrCapacityMismatch is returned when a field does not fit the buffer
	// it is being transformed into.
	ErrCapacityMismatch = errors.New("interop: field size does not match buffer capacity")

	// ErrUnknownRegistration is returned for operations on a registration
	// handle the backend does not know.
	ErrUnknownRegistration = errors.New("interop: unknown registration handle")

	// ErrUnknownBuffer is returned for operations on a buffer handle the
	// backend does not know.
	ErrUnknownBuffer = errors.New("interop: unknown buffer handle")

	// ErrTargetMismatch is returned when a backend is asked to present into
	// a target type it cannot draw to.
	ErrTargetMismatch = errors.New("interop: target is not drawable by this backend")

	// ErrNoBackend is returned when no interop backend is registered or
	// available.
	ErrNoBackend = errors.New("interop: no backend available")
)
