// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"errors"
	"image"

	"github.com/gogpu/fieldview/interop"
)

// ErrHostTerminated is returned when using a host after Terminate.
var ErrHostTerminated = errors.New("window: host has been terminated")

// headlessTarget exposes the Headless back buffer to the software backend.
type headlessTarget struct {
	back *image.RGBA
}

func (t *headlessTarget) TargetSize() (int, int) {
	b := t.back.Bounds()
	return b.Dx(), b.Dy()
}

func (t *headlessTarget) BackBuffer() *image.RGBA { return t.back }

var _ interop.RGBATarget = (*headlessTarget)(nil)

// Headless is a windowless host backed by a pair of RGBA images.
//
// Frames are composed into the back image; FinishFrame swaps it to the
// front, where Front exposes it for inspection. Resize takes effect before
// the next AcquireTarget and fires the installed callback, mirroring how a
// real window delivers size events between frames.
//
// Headless is not safe for concurrent use.
type Headless struct {
	width, height int
	back, front   *image.RGBA
	onResize      func(width, height int)
	inFrame       bool
	terminated    bool
	frames        int
}

// NewHeadless creates a headless host with the given drawable size.
func NewHeadless(width, height int) *Headless {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Headless{
		width:  width,
		height: height,
		back:   image.NewRGBA(image.Rect(0, 0, width, height)),
		front:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Size returns the current drawable size.
func (h *Headless) Size() (int, int) { return h.width, h.height }

// SetResizeCallback installs the resize callback.
func (h *Headless) SetResizeCallback(fn func(width, height int)) {
	h.onResize = fn
}

// AcquireTarget returns the back buffer target for the next frame.
func (h *Headless) AcquireTarget() (interop.Target, error) {
	if h.terminated {
		return nil, ErrHostTerminated
	}
	h.inFrame = true
	return &headlessTarget{back: h.back}, nil
}

// FinishFrame swaps the back buffer to the front.
func (h *Headless) FinishFrame() error {
	if h.terminated {
		return ErrHostTerminated
	}
	if !h.inFrame {
		return errors.New("window: FinishFrame without AcquireTarget")
	}
	h.back, h.front = h.front, h.back
	h.inFrame = false
	h.frames++
	return nil
}

// Terminate releases the host.
func (h *Headless) Terminate() {
	h.terminated = true
	h.back = nil
	h.front = nil
}

// Resize changes the drawable size and fires the resize callback. Both
// buffers are reallocated; the previous front contents are dropped, as a
// real swapchain drops its images on reconfigure.
func (h *Headless) Resize(width, height int) {
	if h.terminated || width < 1 || height < 1 {
		return
	}
	if width == h.width && height == h.height {
		return
	}
	h.width, h.height = width, height
	h.back = image.NewRGBA(image.Rect(0, 0, width, height))
	h.front = image.NewRGBA(image.Rect(0, 0, width, height))
	if h.onResize != nil {
		h.onResize(width, height)
	}
}

// Front returns the last completed frame.
func (h *Headless) Front() *image.RGBA { return h.front }

// Frames returns the number of completed frames.
func (h *Headless) Frames() int { return h.frames }
