// fvdemo renders an animated wave-interference field into a gogpu window.
//
// Usage:
//
//	fvdemo [-size 800x600] [-field 320x240] [-backend name] [-v]
//
// The field is recomputed every frame on the CPU and drawn through the
// highest-priority interop backend (GPU when available, software otherwise).
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/gogpu"

	"github.com/gogpu/fieldview"
	_ "github.com/gogpu/fieldview/interop/native" // register the GPU backend
	"github.com/gogpu/fieldview/window/gogpuwin"
)

func main() {
	var (
		sizeFlag    = flag.String("size", "800x600", "window size as WxH")
		fieldFlag   = flag.String("field", "320x240", "field resolution as WxH")
		backendFlag = flag.String("backend", "", "interop backend name (default: best available)")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		fieldview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	winW, winH, err := parseSize(*sizeFlag)
	if err != nil {
		log.Fatalf("invalid -size: %v", err)
	}
	fieldW, fieldH, err := parseSize(*fieldFlag)
	if err != nil {
		log.Fatalf("invalid -field: %v", err)
	}

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle("fieldview: wave interference").
		WithSize(winW, winH))

	host := gogpuwin.New()
	field := make([]float64, fieldW*fieldH)
	start := time.Now()

	var viewer *fieldview.Viewer
	app.OnDraw(func(dc *gogpu.Context) {
		host.BindFrame(dc)

		if viewer == nil {
			opts := []fieldview.Option{fieldview.WithHost(host)}
			if *backendFlag != "" {
				opts = append(opts, fieldview.WithBackendName(*backendFlag))
			}
			viewer, err = fieldview.Open(winW, winH, opts...)
			if err != nil {
				log.Fatalf("open viewer: %v", err)
			}
			log.Printf("backend: %s, field: %dx%d", viewer.Backend().Name(), fieldW, fieldH)
		}

		step(field, fieldW, fieldH, time.Since(start).Seconds())
		if err := fieldview.Draw(viewer, field, fieldW, fieldH, fieldview.Heat); err != nil {
			log.Printf("draw: %v", err)
		}
	})

	if err := app.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
	if viewer != nil {
		viewer.Close()
	}
}

// step fills field with two interfering circular waves, normalized to [0, 1].
func step(field []float64, w, h int, t float64) {
	cx1 := float64(w) * (0.5 + 0.3*math.Cos(t*0.7))
	cy1 := float64(h) * (0.5 + 0.3*math.Sin(t*0.9))
	cx2 := float64(w) * (0.5 + 0.3*math.Cos(t*1.1+math.Pi))
	cy2 := float64(h) * (0.5 + 0.3*math.Sin(t*0.5+math.Pi))

	for y := range h {
		for x := range w {
			dx1, dy1 := float64(x)-cx1, float64(y)-cy1
			dx2, dy2 := float64(x)-cx2, float64(y)-cy2
			v := math.Sin(math.Hypot(dx1, dy1)*0.15-t*3) +
				math.Sin(math.Hypot(dx2, dy2)*0.15-t*3)
			field[y*w+x] = v/4 + 0.5
		}
	}
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, err
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("size %dx%d out of range", w, h)
	}
	return w, h, nil
}
