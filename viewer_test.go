package fieldview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fieldview/interop"
	"github.com/gogpu/fieldview/window"
)

func openTestViewer(t *testing.T, w, h int, opts ...Option) (*Viewer, *interop.SoftwareBackend, *window.Headless) {
	t.Helper()
	b := interop.NewSoftwareBackend()
	host := window.NewHeadless(w, h)
	opts = append([]Option{WithBackend(b), WithHost(host)}, opts...)
	v, err := Open(w, h, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return v, b, host
}

func rampField(n int) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = float64(i) / float64(n)
	}
	return f
}

func TestOpenRejectsInvalidSize(t *testing.T) {
	if _, err := Open(0, 600); !errors.Is(err, ErrWindowInit) {
		t.Errorf("Open(0,600) = %v, want ErrWindowInit", err)
	}
	if _, err := Open(800, -1); !errors.Is(err, ErrWindowInit) {
		t.Errorf("Open(800,-1) = %v, want ErrWindowInit", err)
	}
}

func TestOpenUnknownBackendName(t *testing.T) {
	_, err := Open(64, 64, WithBackendName("no-such-backend"))
	if !errors.Is(err, ErrWindowInit) {
		t.Errorf("Open = %v, want ErrWindowInit", err)
	}
}

func TestDrawRecordsDimensions(t *testing.T) {
	v, _, _ := openTestViewer(t, 64, 64)
	defer v.Close()

	if w, h := v.Dimensions(); w != 0 || h != 0 {
		t.Errorf("Dimensions() before first draw = %dx%d, want 0x0", w, h)
	}

	if err := Draw(v, rampField(16*8), 16, 8, Grayscale); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if w, h := v.Dimensions(); w != 16 || h != 8 {
		t.Errorf("Dimensions() = %dx%d, want 16x8", w, h)
	}
}

func TestSameSizeDrawsReuseBuffer(t *testing.T) {
	v, b, _ := openTestViewer(t, 64, 64)
	defer v.Close()

	field := rampField(32 * 32)
	if err := Draw(v, field, 32, 32, Heat); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	handle := v.buf.Handle()
	reg := v.buf.Registration()

	for range 4 {
		if err := Draw(v, field, 32, 32, Heat); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}

	if v.buf.Handle() != handle || v.buf.Registration() != reg {
		t.Error("handles changed across same-size draws")
	}
	if b.CreateCount() != 1 {
		t.Errorf("CreateCount() = %d, want 1", b.CreateCount())
	}
}

func TestDimensionChangeReallocates(t *testing.T) {
	v, b, _ := openTestViewer(t, 64, 64)
	defer v.Close()

	if err := Draw(v, rampField(32*32), 32, 32, Grayscale); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	oldHandle := v.buf.Handle()
	oldReg := v.buf.Registration()

	if err := Draw(v, rampField(16*16), 16, 16, Grayscale); err != nil {
		t.Fatalf("Draw after resize: %v", err)
	}

	if v.buf.Handle() == oldHandle {
		t.Error("buffer handle unchanged after dimension change")
	}
	if b.Registered(oldReg) {
		t.Error("old registration still live after dimension change")
	}
	if b.CreateCount() != 2 || b.DestroyCount() != 1 {
		t.Errorf("create/destroy = %d/%d, want 2/1", b.CreateCount(), b.DestroyCount())
	}
	if w, h := v.Dimensions(); w != 16 || h != 16 {
		t.Errorf("Dimensions() = %dx%d, want 16x16", w, h)
	}
}

func TestWindowResizeDoesNotReallocate(t *testing.T) {
	v, b, host := openTestViewer(t, 64, 64)
	defer v.Close()

	field := rampField(32 * 32)
	if err := Draw(v, field, 32, 32, Heat); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	host.Resize(128, 96)
	if err := Draw(v, field, 32, 32, Heat); err != nil {
		t.Fatalf("Draw after window resize: %v", err)
	}

	// The viewport follows the window; the buffer follows the field.
	if b.CreateCount() != 1 {
		t.Errorf("CreateCount() = %d after window resize, want 1", b.CreateCount())
	}
	if v.vpW != 128 || v.vpH != 96 {
		t.Errorf("viewport = %dx%d, want 128x96", v.vpW, v.vpH)
	}
}

func TestDrawSizeMismatch(t *testing.T) {
	v, b, _ := openTestViewer(t, 64, 64)
	defer v.Close()

	err := Draw(v, rampField(10), 4, 4, Grayscale)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Draw = %v, want ErrSizeMismatch", err)
	}
	if b.CreateCount() != 0 {
		t.Errorf("CreateCount() = %d, mismatched draw allocated", b.CreateCount())
	}

	if err := Draw(v, rampField(5), 0, 5, Grayscale); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Draw with zero width = %v, want ErrSizeMismatch", err)
	}
}

func TestDrawValidationDisabled(t *testing.T) {
	v, _, _ := openTestViewer(t, 64, 64, WithSizeValidation(false))
	defer v.Close()

	// With validation off the count check is skipped; the mismatch still
	// surfaces at the interop boundary instead of as ErrSizeMismatch.
	err := Draw(v, rampField(10), 4, 4, Grayscale)
	if errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Draw = %v, validation ran while disabled", err)
	}
	if err == nil {
		t.Error("mismatched draw succeeded")
	}
}

func TestDrawPresentsToFrontBuffer(t *testing.T) {
	const w, h = 8, 8
	v, _, host := openTestViewer(t, w, h)
	defer v.Close()

	field := make([]float64, w*h)
	for i := range field {
		field[i] = 1 // white field
	}
	if err := Draw(v, field, w, h, Grayscale); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if host.Frames() != 1 {
		t.Fatalf("Frames() = %d, want 1", host.Frames())
	}
	r, g, b, _ := host.Front().At(3, 3).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("front pixel = (%#x, %#x, %#x), want white", r>>8, g>>8, b>>8)
	}
}

func TestDrawFailureLeavesViewerUsable(t *testing.T) {
	v, _, _ := openTestViewer(t, 64, 64)
	defer v.Close()

	if err := Draw(v, rampField(7), 7, 7, Grayscale); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("mismatched draw = %v, want ErrSizeMismatch", err)
	}
	if err := Draw(v, rampField(7*7), 7, 7, Grayscale); err != nil {
		t.Fatalf("Draw after failed frame: %v", err)
	}
}

// flakyBackend wraps the software backend and fails one buffer allocation on
// demand.
type flakyBackend struct {
	*interop.SoftwareBackend
	failNext bool
}

func (b *flakyBackend) CreateBuffer(elementCount int, usage gputypes.BufferUsage) (interop.BufferID, error) {
	if b.failNext {
		b.failNext = false
		return interop.InvalidID, fmt.Errorf("device out of memory")
	}
	return b.SoftwareBackend.CreateBuffer(elementCount, usage)
}

func TestFailedReallocationReleasesOldBuffer(t *testing.T) {
	b := &flakyBackend{SoftwareBackend: interop.NewSoftwareBackend()}
	host := window.NewHeadless(64, 64)
	v, err := Open(64, 64, WithBackend(b), WithHost(host))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v.Close()

	if err := Draw(v, rampField(8*8), 8, 8, Grayscale); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	oldReg := v.buf.Registration()

	b.failNext = true
	if err := Draw(v, rampField(4*4), 4, 4, Grayscale); !errors.Is(err, ErrInterop) {
		t.Fatalf("Draw with failing allocation = %v, want ErrInterop", err)
	}

	// The failed reallocation must release the old buffer completely and
	// leave the viewer uninitialized, not holding a stale handle.
	if b.Registered(oldReg) {
		t.Error("old registration still live after failed reallocation")
	}
	if b.Live() != 0 {
		t.Errorf("Live() = %d after failed reallocation, want 0", b.Live())
	}
	if w, h := v.Dimensions(); w != 0 || h != 0 {
		t.Errorf("Dimensions() = %dx%d after failed reallocation, want 0x0", w, h)
	}

	// The next draw retries the allocation from scratch.
	if err := Draw(v, rampField(4*4), 4, 4, Grayscale); err != nil {
		t.Fatalf("Draw after failed reallocation: %v", err)
	}
	if w, h := v.Dimensions(); w != 4 || h != 4 {
		t.Errorf("Dimensions() = %dx%d, want 4x4", w, h)
	}
	if b.Live() != 1 {
		t.Errorf("Live() = %d after retry, want 1", b.Live())
	}
}

func TestLifecycleScenario(t *testing.T) {
	// Open 800x600, draw at full size, draw again (no realloc), draw at
	// 400x300 (one realloc), close, and verify zero leaks.
	v, b, host := openTestViewer(t, 800, 600)

	if err := Draw(v, rampField(800*600), 800, 600, Heat); err != nil {
		t.Fatalf("first draw: %v", err)
	}
	if host.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", host.Frames())
	}
	firstHandle := v.buf.Handle()

	if err := Draw(v, rampField(800*600), 800, 600, Heat); err != nil {
		t.Fatalf("second draw: %v", err)
	}
	if v.buf.Handle() != firstHandle {
		t.Error("same-size draw reallocated")
	}
	firstReg := v.buf.Registration()

	if err := Draw(v, rampField(400*300), 400, 300, Heat); err != nil {
		t.Fatalf("resized draw: %v", err)
	}
	if b.CreateCount() != 2 {
		t.Errorf("CreateCount() = %d, want 2", b.CreateCount())
	}
	if b.Registered(firstReg) {
		t.Error("old registration survived the resize")
	}

	v.Close()
	v.Close() // idempotent

	if b.Live() != 0 {
		t.Errorf("Live() = %d after Close, want 0", b.Live())
	}
	if b.CreateCount() != b.DestroyCount() {
		t.Errorf("create %d != destroy %d", b.CreateCount(), b.DestroyCount())
	}
	if b.RegisterCount() != b.UnregisterCount() {
		t.Errorf("register %d != unregister %d", b.RegisterCount(), b.UnregisterCount())
	}

	if err := Draw(v, rampField(4), 2, 2, Heat); !errors.Is(err, ErrViewerClosed) {
		t.Errorf("Draw after Close = %v, want ErrViewerClosed", err)
	}
}

func TestDrawLUTFallsBackToCPU(t *testing.T) {
	const w, h = 4, 4
	v, _, host := openTestViewer(t, w, h)
	defer v.Close()

	var lut LUT
	for i := range lut {
		lut[i] = RGB{G: 1} // constant green
	}

	field := make([]float32, w*h)
	if err := DrawLUT(v, field, w, h, &lut); err != nil {
		t.Fatalf("DrawLUT: %v", err)
	}

	_, g, _, _ := host.Front().At(1, 1).RGBA()
	if g>>8 != 0xff {
		t.Errorf("front pixel green = %#x, want 0xff", g>>8)
	}

	if err := DrawLUT(v, field[:3], w, h, &lut); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("mismatched DrawLUT = %v, want ErrSizeMismatch", err)
	}
}

func TestOwnedBackendClosedWithViewer(t *testing.T) {
	host := window.NewHeadless(32, 32)
	v, err := Open(32, 32, WithHost(host), WithBackendName(interop.BackendSoftware))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := Draw(v, rampField(32*32), 32, 32, Grayscale); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	b := v.Backend().(*interop.SoftwareBackend)
	v.Close()

	if b.Live() != 0 {
		t.Errorf("Live() = %d after Close, want 0", b.Live())
	}
}
