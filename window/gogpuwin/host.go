// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gogpuwin hosts a field viewer inside a gogpu window.
//
// gogpu owns the frame loop: the application binds the draw context at the
// top of its OnDraw callback and the host exposes it as the viewer's frame
// target. The frame is presented by gogpu when OnDraw returns, so
// FinishFrame only releases the binding.
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    host.BindFrame(dc)
//	    fieldview.Draw(v, field, w, h, fieldview.Heat)
//	})
package gogpuwin

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fieldview/interop"
	"github.com/gogpu/fieldview/window"
)

// ErrNoFrame is returned when acquiring a target with no frame bound.
var ErrNoFrame = errors.New("gogpuwin: no frame bound, call BindFrame first")

// FrameContext is the slice of gogpu.Context the host needs. *gogpu.Context
// satisfies it.
type FrameContext interface {
	Width() int
	Height() int
	AsTextureDrawer() gpucontext.TextureDrawer
}

// frameTarget exposes one bound frame as a presentation target.
type frameTarget struct {
	dc FrameContext
}

func (t *frameTarget) TargetSize() (int, int) {
	return t.dc.Width(), t.dc.Height()
}

// TextureDrawer returns the frame's texture drawer. The native interop
// backend presents through it.
func (t *frameTarget) TextureDrawer() gpucontext.TextureDrawer {
	return t.dc.AsTextureDrawer()
}

// Host adapts a gogpu draw loop to the window.Host contract.
//
// Host is not safe for concurrent use; bind and draw on the render thread.
type Host struct {
	dc            FrameContext
	width, height int
	onResize      func(width, height int)
	terminated    bool
}

// New creates an unbound host. Size reports 0×0 until the first BindFrame.
func New() *Host {
	return &Host{}
}

// BindFrame makes dc the current frame context and delivers a resize
// callback if the drawable size changed since the previous frame.
func (h *Host) BindFrame(dc FrameContext) {
	if h.terminated || dc == nil {
		return
	}
	h.dc = dc

	w, ht := dc.Width(), dc.Height()
	if w == h.width && ht == h.height {
		return
	}
	first := h.width == 0 && h.height == 0
	h.width, h.height = w, ht
	if !first && h.onResize != nil {
		h.onResize(w, ht)
	}
}

// Size returns the drawable size of the last bound frame.
func (h *Host) Size() (int, int) { return h.width, h.height }

// SetResizeCallback installs the resize callback.
func (h *Host) SetResizeCallback(fn func(width, height int)) {
	h.onResize = fn
}

// AcquireTarget returns the bound frame as a presentation target.
func (h *Host) AcquireTarget() (interop.Target, error) {
	if h.terminated {
		return nil, window.ErrHostTerminated
	}
	if h.dc == nil {
		return nil, ErrNoFrame
	}
	return &frameTarget{dc: h.dc}, nil
}

// FinishFrame releases the frame binding. gogpu presents the frame itself
// when the draw callback returns.
func (h *Host) FinishFrame() error {
	if h.terminated {
		return window.ErrHostTerminated
	}
	if h.dc == nil {
		return ErrNoFrame
	}
	h.dc = nil
	return nil
}

// Terminate detaches the host from the draw loop. The gogpu app itself
// stays with its owner.
func (h *Host) Terminate() {
	h.terminated = true
	h.dc = nil
}

var _ window.Host = (*Host)(nil)
