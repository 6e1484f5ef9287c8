// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import (
	"errors"
	"image"
	"testing"
)

// testTarget is a minimal RGBA presentation sink.
type testTarget struct {
	back *image.RGBA
}

func newTestTarget(w, h int) *testTarget {
	return &testTarget{back: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (t *testTarget) TargetSize() (int, int) {
	b := t.back.Bounds()
	return b.Dx(), b.Dy()
}

func (t *testTarget) BackBuffer() *image.RGBA { return t.back }

// bareTarget has a size but no back buffer, so the software backend cannot
// draw to it.
type bareTarget struct{}

func (bareTarget) TargetSize() (int, int) { return 64, 64 }

func TestPresentFlipsRows(t *testing.T) {
	const w, h = 2, 2
	b := NewSoftwareBackend()
	defer b.Close()

	id, err := b.CreateBuffer(3*w*h, SharedUsage)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	reg, err := b.RegisterShared(id)
	if err != nil {
		t.Fatalf("RegisterShared: %v", err)
	}

	// Element 0 red, element 3 (top-right in field terms) white.
	data, _ := b.Map(reg)
	data[0] = 1                           // pixel 0: red
	data[9], data[10], data[11] = 1, 1, 1 // pixel 3: white
	if err := b.Unmap(reg); err != nil {
		t.Fatalf("Unmap: %v", err)
	}

	tgt := newTestTarget(w, h)
	vp := Viewport{X: 0, Y: 0, Width: w, Height: h}
	if err := b.Present(id, w, h, vp, tgt); err != nil {
		t.Fatalf("Present: %v", err)
	}

	// Element 0 is the bottom-left pixel of the image, element 3 the
	// top-right.
	r, _, _, _ := tgt.back.At(0, h-1).RGBA()
	if r>>8 != 0xff {
		t.Errorf("bottom-left red = %#x, want 0xff", r>>8)
	}
	r, g, bl, _ := tgt.back.At(1, 0).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || bl>>8 != 0xff {
		t.Errorf("top-right = (%#x, %#x, %#x), want white", r>>8, g>>8, bl>>8)
	}
}

func TestPresentScalesToViewport(t *testing.T) {
	const w, h = 2, 2
	b := NewSoftwareBackend()
	defer b.Close()

	id, _ := b.CreateBuffer(3*w*h, SharedUsage)
	reg, _ := b.RegisterShared(id)
	data, _ := b.Map(reg)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = 0, 1, 0
	}
	if err := b.Unmap(reg); err != nil {
		t.Fatalf("Unmap: %v", err)
	}

	tgt := newTestTarget(8, 8)
	vp := Viewport{X: 0, Y: 0, Width: 8, Height: 8}
	if err := b.Present(id, w, h, vp, tgt); err != nil {
		t.Fatalf("Present: %v", err)
	}

	_, g, _, _ := tgt.back.At(7, 7).RGBA()
	if g>>8 != 0xff {
		t.Errorf("scaled corner green = %#x, want 0xff", g>>8)
	}
}

func TestPresentRejectsUndersizedBuffer(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	id, _ := b.CreateBuffer(3*4, SharedUsage)
	tgt := newTestTarget(4, 4)
	err := b.Present(id, 4, 4, Viewport{Width: 4, Height: 4}, tgt)
	if !errors.Is(err, ErrCapacityMismatch) {
		t.Errorf("Present = %v, want ErrCapacityMismatch", err)
	}
}

func TestPresentRejectsForeignTarget(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	id, _ := b.CreateBuffer(3, SharedUsage)
	err := b.Present(id, 1, 1, Viewport{Width: 1, Height: 1}, bareTarget{})
	if !errors.Is(err, ErrTargetMismatch) {
		t.Errorf("Present = %v, want ErrTargetMismatch", err)
	}
}

func TestPresentUnknownBuffer(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	err := b.Present(BufferID(99), 1, 1, Viewport{Width: 1, Height: 1}, newTestTarget(1, 1))
	if !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("Present = %v, want ErrUnknownBuffer", err)
	}
}

func TestRegisterUnknownBuffer(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	if _, err := b.RegisterShared(BufferID(1234)); !errors.Is(err, ErrUnknownBuffer) {
		t.Errorf("RegisterShared = %v, want ErrUnknownBuffer", err)
	}
}

func TestUnregisterInvalidatesMapping(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	id, _ := b.CreateBuffer(3, SharedUsage)
	reg, _ := b.RegisterShared(id)
	if err := b.UnregisterShared(reg); err != nil {
		t.Fatalf("UnregisterShared: %v", err)
	}

	if b.Registered(reg) {
		t.Error("Registered() = true after unregister")
	}
	if _, err := b.Map(reg); !errors.Is(err, ErrUnknownRegistration) {
		t.Errorf("Map after unregister = %v, want ErrUnknownRegistration", err)
	}
	if err := b.UnregisterShared(reg); !errors.Is(err, ErrUnknownRegistration) {
		t.Errorf("double unregister = %v, want ErrUnknownRegistration", err)
	}
}

func TestCloseAccountsForLiveResources(t *testing.T) {
	b := NewSoftwareBackend()

	id, _ := b.CreateBuffer(3, SharedUsage)
	if _, err := b.RegisterShared(id); err != nil {
		t.Fatalf("RegisterShared: %v", err)
	}
	b.Close()

	if b.CreateCount() != b.DestroyCount() {
		t.Errorf("create %d != destroy %d after Close", b.CreateCount(), b.DestroyCount())
	}
	if b.RegisterCount() != b.UnregisterCount() {
		t.Errorf("register %d != unregister %d after Close", b.RegisterCount(), b.UnregisterCount())
	}
}

func TestHandleIdentityAcrossFrames(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	buf, err := Allocate(b, 3*16)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer buf.Release()

	handle, reg := buf.Handle(), buf.Registration()
	for range 5 {
		if _, err := buf.Map(); err != nil {
			t.Fatalf("Map: %v", err)
		}
		if err := buf.Unmap(); err != nil {
			t.Fatalf("Unmap: %v", err)
		}
	}
	if buf.Handle() != handle || buf.Registration() != reg {
		t.Error("handles changed across frames without reallocation")
	}
}

func TestClampByte(t *testing.T) {
	cases := []struct {
		in   float32
		want uint8
	}{
		{-0.5, 0}, {0, 0}, {0.5, 128}, {1, 255}, {2.5, 255},
	}
	for _, c := range cases {
		if got := clampByte(c.in); got != c.want {
			t.Errorf("clampByte(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
