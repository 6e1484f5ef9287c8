// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import (
	"fmt"
	"sync"

	"github.com/gogpu/fieldview/internal/parallel"
)

// Number constrains field element types the transform can colormap.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// minTransformChunk is the smallest per-worker index range worth
// dispatching; smaller fields transform inline.
const minTransformChunk = 4096

var (
	transformPool     *parallel.WorkerPool
	transformPoolOnce sync.Once
)

func pool() *parallel.WorkerPool {
	transformPoolOnce.Do(func() {
		transformPool = parallel.NewWorkerPool(0)
	})
	return transformPool
}

// WriteColors runs the frame transform stage: it maps buf into compute
// address space, writes cm(field[i]) as the interleaved RGB triple at pixel
// i for every element, synchronizes, and unmaps.
//
// Preconditions: buf is in the OwnerGraphics state and len(field)×3 equals
// the buffer capacity. Capacity is checked here unconditionally; the Viewer
// decides whether the field/dimension check above it is enforced.
//
// The map call may block until the graphics runtime has finished reading the
// buffer, and Sync blocks until the transform's writes are complete — those
// are the pipeline's only two suspension points. On any failure after a
// successful map the buffer is still unmapped, so it never leaks in a
// half-mapped state. Postcondition: buf is back in OwnerGraphics.
func WriteColors[T Number](buf *SharedBuffer, field []T, cm func(T) (r, g, b float32)) error {
	if buf == nil || cm == nil {
		return fmt.Errorf("interop: nil buffer or colormap")
	}
	if len(field)*3 != buf.Capacity() {
		return fmt.Errorf("%w: %d elements into capacity %d",
			ErrCapacityMismatch, len(field), buf.Capacity())
	}

	dst, err := buf.Map()
	if err != nil {
		return err
	}

	pool().For(len(field), minTransformChunk, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			r, g, b := cm(field[i])
			dst[i*3+0] = r
			dst[i*3+1] = g
			dst[i*3+2] = b
		}
	})

	// The graphics runtime takes the buffer back at Unmap; it must observe a
	// finished write.
	syncErr := buf.backend.Sync()
	unmapErr := buf.Unmap()

	if syncErr != nil {
		return fmt.Errorf("interop: transform sync failed: %w", syncErr)
	}
	return unmapErr
}
