package fieldview

import (
	"fmt"

	"github.com/gogpu/fieldview/interop"
)

// lutTransformer is implemented by backends that can apply a colormap table
// on the device, skipping the CPU transform entirely.
type lutTransformer interface {
	TransformLUT(reg interop.RegistrationID, field []float32, lut *[256][3]float32) error
}

// DrawLUT renders one frame through a colormap table. Backends that support
// device-side lookup apply the table on the GPU; otherwise the frame goes
// through the regular CPU transform. Field values are expected in [0, 1]
// and clamp outside it.
func DrawLUT(v *Viewer, field []float32, width, height int, lut *LUT) error {
	if v == nil {
		return fmt.Errorf("fieldview: nil viewer")
	}
	if v.closed {
		return ErrViewerClosed
	}
	if lut == nil {
		return fmt.Errorf("fieldview: nil lut")
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

	if tr, ok := v.backend.(lutTransformer); ok {
		var table [256][3]float32
		for i, c := range lut {
			table[i] = [3]float32{c.R, c.G, c.B}
		}
		err := tr.TransformLUT(v.buf.Registration(), field, &table)
		if err == nil {
			return v.present()
		}
		Logger().Debug("device lut transform failed, using cpu path", "err", err)
	}

	err := interop.WriteColors(v.buf, field, func(t float32) (r, g, b float32) {
		c := lut.At(float64(t))
		return c.R, c.G, c.B
	})
	if err != nil {
		return fmt.Errorf("%w: transform: %w", ErrInterop, err)
	}
	return v.present()
}
