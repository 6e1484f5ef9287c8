// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import "github.com/gogpu/fieldview/interop"

// Host is the window surface a viewer draws into.
//
// The viewer owns the frame loop; the host owns the surface. Per frame the
// viewer acquires a target, presents into it, and finishes the frame, at
// which point the host makes the frame visible (its buffer swap).
//
// Hosts deliver resize callbacks between frames, never during a frame.
type Host interface {
	// Size returns the current drawable size in pixels.
	Size() (width, height int)

	// SetResizeCallback installs fn to be invoked when the drawable size
	// changes. Passing nil removes the callback.
	SetResizeCallback(fn func(width, height int))

	// AcquireTarget returns the presentation target for the next frame.
	AcquireTarget() (interop.Target, error)

	// FinishFrame completes the frame acquired by AcquireTarget and makes
	// it visible.
	FinishFrame() error

	// Terminate releases the surface. The host is unusable afterwards.
	Terminate()
}
