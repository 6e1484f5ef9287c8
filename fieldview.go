package fieldview

import (
	"fmt"

	"github.com/gogpu/fieldview/interop"
)

// Draw renders one frame: field is colormapped into the viewer's shared
// buffer and presented as a width×height quad filling the window.
//
// Draw is the sole per-frame entry point. It is a top-level function rather
// than a method because Go methods cannot carry type parameters.
//
// The first draw, and any draw whose dimensions differ from the previous
// one, (re)allocates the shared buffer; same-size draws reuse it. A failed
// frame returns an error wrapping ErrInterop and leaves the viewer usable;
// the next Draw retries from whatever state remains.
func Draw[T interop.Number](v *Viewer, field []T, width, height int, cm ColorMap[T]) error {
	if v == nil {
		return fmt.Errorf("fieldview: nil viewer")
	}
	if v.closed {
		return ErrViewerClosed
	}
	if cm == nil {
		return fmt.Errorf("fieldview: nil colormap")
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrSizeMismatch, width, height)
	}
	if v.validate && len(field) != width*height {
		return fmt.Errorf("%w: %d elements for %dx%d",
			ErrSizeMismatch, len(field), width, height)
	}

	if err := v.ensureBuffer(width, height); err != nil {
		return err
	}

	err := interop.WriteColors(v.buf, field, func(t T) (r, g, b float32) {
		c := cm(t)
		return c.R, c.G, c.B
	})
	if err != nil {
		return fmt.Errorf("%w: transform: %w", ErrInterop, err)
	}

	return v.present()
}
