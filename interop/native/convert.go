// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"encoding/binary"
	"math"
)

// floatsToBytes serializes float32 values little-endian for queue upload.
func floatsToBytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// bytesToFloats deserializes a little-endian float32 buffer.
func bytesToFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

// rgbaFromTriples converts interleaved RGB float triples to 8-bit RGBA rows,
// flipping vertically: triple 0 is the bottom-left field element, byte row 0
// is the top image row.
func rgbaFromTriples(data []float32, width, height int) []byte {
	out := make([]byte, width*height*4)
	for y := range height {
		row := (height - 1 - y) * width * 3
		off := y * width * 4
		for x := range width {
			p := row + x*3
			out[off+0] = clampByte(data[p+0])
			out[off+1] = clampByte(data[p+1])
			out[off+2] = clampByte(data[p+2])
			out[off+3] = 0xff
			off += 4
		}
	}
	return out
}

func clampByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	default:
		return uint8(v*255 + 0.5)
	}
}
