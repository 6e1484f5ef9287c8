package fieldview

import (
	"image"

	"github.com/gogpu/fieldview/interop"
	xdraw "golang.org/x/image/draw"
)

// RGB is a linear color triple in [0, 1].
type RGB struct {
	R, G, B float32
}

// ColorMap converts one field element to a color. Maps must be stateless:
// the transform stage may call them from multiple goroutines.
type ColorMap[T interop.Number] func(T) RGB

// Grayscale maps values in [0, 1] to a linear gray ramp. Values outside the
// range clamp.
func Grayscale[T interop.Number](v T) RGB {
	f := clamp01(float64(v))
	g := float32(f)
	return RGB{R: g, G: g, B: g}
}

// Heat maps values in [0, 1] through a black-red-yellow-white heat ramp.
// Values outside the range clamp.
func Heat[T interop.Number](v T) RGB {
	f := clamp01(float64(v))
	switch {
	case f < 1.0/3:
		return RGB{R: float32(f * 3)}
	case f < 2.0/3:
		return RGB{R: 1, G: float32(f*3 - 1)}
	default:
		return RGB{R: 1, G: 1, B: float32(f*3 - 2)}
	}
}

// LUT is a 256-entry colormap lookup table. The native backend can apply a
// LUT on the GPU instead of transforming on the CPU.
type LUT [256]RGB

// At samples the table for a value in [0, 1], clamping outside the range.
func (l *LUT) At(v float64) RGB {
	i := int(clamp01(v) * 255)
	return l[i]
}

// Ramp adapts a LUT into a ColorMap over any numeric element type.
func Ramp[T interop.Number](l *LUT) ColorMap[T] {
	return func(v T) RGB { return l.At(float64(v)) }
}

// FromImage builds a LUT by sampling a horizontal gradient image: the table
// entry for value v is the pixel at fraction v across the image width. Any
// image works; it is resampled to 256×1 first.
func FromImage(img image.Image) *LUT {
	strip := image.NewRGBA(image.Rect(0, 0, 256, 1))
	xdraw.ApproxBiLinear.Scale(strip, strip.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var l LUT
	for i := range l {
		off := i * 4
		l[i] = RGB{
			R: float32(strip.Pix[off+0]) / 255,
			G: float32(strip.Pix[off+1]) / 255,
			B: float32(strip.Pix[off+2]) / 255,
		}
	}
	return &l
}

func clamp01(v float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 1
	default:
		return v
	}
}
