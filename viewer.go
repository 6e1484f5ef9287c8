package fieldview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/fieldview/interop"
	"github.com/gogpu/fieldview/window"
	xdraw "golang.org/x/image/draw"
)

// Viewer owns a window surface and the shared buffer drawn into it.
//
// A Viewer starts uninitialized: no buffer exists until the first Draw, which
// allocates one sized to the field. Subsequent same-size draws reuse it;
// drawing a field with different dimensions releases the old buffer
// completely before allocating the replacement. Close tears everything down.
//
// Viewer is not safe for concurrent use. Open, Draw, and Close must run on
// one goroutine, on the host's thread where the host requires it.
type Viewer struct {
	host    window.Host
	backend interop.Backend

	// ownsBackend is false for backends injected via WithBackend.
	ownsBackend bool

	// buf is the live shared buffer, nil while uninitialized.
	buf *interop.SharedBuffer

	// fieldW, fieldH are the dimensions buf was allocated for.
	fieldW, fieldH int

	// vpW, vpH track the drawable size; updated by the resize callback.
	vpW, vpH int

	clearColor color.RGBA
	validate   bool
	closed     bool
}

// Open creates a Viewer on a surface of the given size.
//
// Without options it uses a headless host and the best available backend
// from the registry. Failures wrap ErrWindowInit.
func Open(width, height int, opts ...Option) (*Viewer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrWindowInit, width, height)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	host := o.host
	if host == nil {
		host = window.NewHeadless(width, height)
	}

	backend := o.backend
	ownsBackend := false
	if backend == nil {
		var err error
		if o.backendName != "" {
			backend, err = interop.New(o.backendName)
		} else {
			backend, err = interop.Default()
		}
		if err != nil {
			host.Terminate()
			return nil, fmt.Errorf("%w: no interop backend: %w", ErrWindowInit, err)
		}
		ownsBackend = true
	}

	if st, ok := host.(interface{ SetTitle(string) }); ok {
		st.SetTitle(o.title)
	}

	v := &Viewer{
		host:        host,
		backend:     backend,
		ownsBackend: ownsBackend,
		clearColor:  o.clearColor,
		validate:    o.validate,
	}
	v.vpW, v.vpH = host.Size()
	host.SetResizeCallback(func(w, h int) {
		// Only the viewport follows the window. Buffer reallocation is
		// driven by field dimensions at the next Draw.
		v.vpW, v.vpH = w, h
	})

	Logger().Info("viewer opened",
		"backend", backend.Name(), "width", v.vpW, "height", v.vpH)
	return v, nil
}

// Dimensions returns the field dimensions of the live buffer, or (0, 0)
// while uninitialized.
func (v *Viewer) Dimensions() (width, height int) {
	return v.fieldW, v.fieldH
}

// Backend returns the interop backend the viewer draws through.
func (v *Viewer) Backend() interop.Backend { return v.backend }

// Closed reports whether the viewer has been closed.
func (v *Viewer) Closed() bool { return v.closed }

// ensureBuffer makes the live buffer match width×height, allocating on the
// first draw and reallocating on a dimension change.
//
// The old buffer is fully released before the new allocation. If allocation
// fails the viewer is left uninitialized, so the next draw retries.
func (v *Viewer) ensureBuffer(width, height int) error {
	if v.buf != nil && width == v.fieldW && height == v.fieldH {
		return nil
	}

	if v.buf != nil {
		Logger().Debug("dimensions changed, releasing buffer",
			"old", fmt.Sprintf("%dx%d", v.fieldW, v.fieldH),
			"new", fmt.Sprintf("%dx%d", width, height))
		v.buf.Release()
		v.buf = nil
	}
	v.fieldW, v.fieldH = 0, 0

	buf, err := interop.Allocate(v.backend, 3*width*height)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInterop, err)
	}
	v.buf = buf
	v.fieldW, v.fieldH = width, height
	return nil
}

// present draws the live buffer into the host's frame target and completes
// the frame.
func (v *Viewer) present() error {
	target, err := v.host.AcquireTarget()
	if err != nil {
		return fmt.Errorf("%w: acquire target: %w", ErrInterop, err)
	}

	if rt, ok := target.(interop.RGBATarget); ok {
		if dst := rt.BackBuffer(); dst != nil {
			xdraw.Draw(dst, dst.Bounds(), image.NewUniform(v.clearColor), image.Point{}, xdraw.Src)
		}
	}

	if v.vpW < 1 || v.vpH < 1 {
		// Hosts bound to an external frame loop report 0x0 until their
		// first frame.
		v.vpW, v.vpH = v.host.Size()
	}
	vp := interop.Viewport{Width: v.vpW, Height: v.vpH}
	if err := v.backend.Present(v.buf.Handle(), v.fieldW, v.fieldH, vp, target); err != nil {
		return fmt.Errorf("%w: present: %w", ErrInterop, err)
	}
	if err := v.host.FinishFrame(); err != nil {
		return fmt.Errorf("%w: finish frame: %w", ErrInterop, err)
	}
	return nil
}

// Close releases the shared buffer, shuts down an owned backend, and
// terminates the host. Idempotent.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true

	if v.buf != nil {
		v.buf.Release()
		v.buf = nil
	}
	v.fieldW, v.fieldH = 0, 0

	if v.ownsBackend {
		v.backend.Close()
	}
	v.host.Terminate()
	Logger().Info("viewer closed")
}
