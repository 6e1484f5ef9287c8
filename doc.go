// Package fieldview renders live numeric fields to a window.
//
// # Overview
//
// fieldview is a pure Go visualization surface for fields produced by a
// compute runtime (a simulation step, a GPU kernel, a decoder). Each frame
// the field is colormapped into a buffer shared between the compute and the
// graphics runtime and drawn as a textured quad, without copying the pixels
// through an intermediate image on the hot path.
//
// # Quick Start
//
//	import "github.com/gogpu/fieldview"
//
//	v, err := fieldview.Open(800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	for running {
//	    step(field) // advance the simulation
//	    if err := fieldview.Draw(v, field, 800, 600, fieldview.Heat); err != nil {
//	        log.Print(err)
//	    }
//	}
//
// Draw is a top-level generic function because Go methods cannot carry type
// parameters; it accepts any integer or float field.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Viewer, Draw, ColorMap presets
//   - interop: shared buffer allocation, map/transform/unmap pipeline,
//     backend registry (software reference backend included)
//   - interop/native: gogpu/wgpu HAL backend with a GPU colormap path
//   - window: host surfaces (headless double buffer, gogpu windows)
//
// Sizes are validated on every draw. Field element 0 maps to the bottom-left
// pixel of the quad; rows proceed bottom to top.
package fieldview
