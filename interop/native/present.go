// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fieldview/interop"
)

// TextureTarget is the presentation sink the native backend draws to. The
// gogpuwin host's frame targets implement it by exposing the gogpu draw
// context's texture drawer.
type TextureTarget interface {
	interop.Target

	// TextureDrawer returns the drawer for the current frame.
	TextureDrawer() gpucontext.TextureDrawer
}

// textureDestroyer matches textures that support explicit destruction.
type textureDestroyer interface {
	Destroy()
}

// textureSource matches gpucontext.TextureCreator's creation method.
type textureSource interface {
	NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error)
}

// presenter owns the texture the field quad samples from, recreating it on
// dimension changes and updating it in place otherwise.
type presenter struct {
	texture any
	width   int
	height  int
}

func (p *presenter) destroy() {
	if d, ok := p.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	p.texture = nil
	p.width, p.height = 0, 0
}

// ensure makes the cached texture hold pixels at width×height, updating it in
// place when possible and recreating it otherwise.
func (p *presenter) ensure(creator textureSource, width, height int, pixels []byte) error {
	if p.texture != nil && p.width == width && p.height == height {
		if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(pixels); err != nil {
				return fmt.Errorf("native: texture update: %w", err)
			}
			return nil
		}
		// A texture with no in-place update path would keep showing the
		// previous frame. Drop it and recreate.
		p.destroy()
	}

	if creator == nil {
		return fmt.Errorf("%w: target cannot create textures", interop.ErrTargetMismatch)
	}
	// NewTextureFromRGBA waits for the GPU internally, so the old texture
	// is no longer referenced when we destroy it.
	tex, err := creator.NewTextureFromRGBA(width, height, pixels)
	if err != nil {
		return fmt.Errorf("native: create texture: %w", err)
	}
	p.destroy()
	p.texture = tex
	p.width, p.height = width, height
	return nil
}

// Present uploads the buffer's contents as a width×height texture and draws
// it at the viewport origin.
func (b *Backend) Present(id interop.BufferID, width, height int, vp interop.Viewport, t interop.Target) error {
	nb, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", interop.ErrUnknownBuffer, id)
	}
	if width <= 0 || height <= 0 || len(nb.shadow) < width*height*3 {
		return fmt.Errorf("%w: %d elements for %dx%d",
			interop.ErrCapacityMismatch, len(nb.shadow), width, height)
	}

	tt, ok := t.(TextureTarget)
	if !ok {
		return fmt.Errorf("%w: native backend needs a texture drawer", interop.ErrTargetMismatch)
	}
	dc := tt.TextureDrawer()
	if dc == nil {
		return fmt.Errorf("%w: target has no texture drawer", interop.ErrTargetMismatch)
	}

	pixels := rgbaFromTriples(nb.shadow, width, height)

	if err := b.presenter.ensure(dc.TextureCreator(), width, height, pixels); err != nil {
		return err
	}

	tex, ok := b.presenter.texture.(gpucontext.Texture)
	if !ok {
		return fmt.Errorf("%w: created texture is not drawable", interop.ErrTargetMismatch)
	}

	// The drawer's origin is the top-left; the viewport's is the
	// bottom-left.
	_, th := t.TargetSize()
	y := float32(th - vp.Y - vp.Height)
	if err := dc.DrawTexture(tex, float32(vp.X), y); err != nil {
		return fmt.Errorf("native: draw texture: %w", err)
	}
	return nil
}
