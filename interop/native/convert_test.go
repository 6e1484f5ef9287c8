// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import "testing"

func TestFloatBytesRoundTrip(t *testing.T) {
	in := []float32{0, 1, -2.5, 3.14159, 1e-7, -1e7}
	out := bytesToFloats(floatsToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("round trip length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("element %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestRGBAFromTriplesFlips(t *testing.T) {
	// 2x2 field: element 0 red, element 3 white.
	data := make([]float32, 12)
	data[0] = 1
	data[9], data[10], data[11] = 1, 1, 1

	px := rgbaFromTriples(data, 2, 2)

	// Element 0 lands at the bottom-left: image row 1, column 0.
	bl := (1*2 + 0) * 4
	if px[bl] != 0xff || px[bl+1] != 0 || px[bl+3] != 0xff {
		t.Errorf("bottom-left = %v, want opaque red", px[bl:bl+4])
	}
	// Element 3 lands at the top-right: image row 0, column 1.
	tr := (0*2 + 1) * 4
	if px[tr] != 0xff || px[tr+1] != 0xff || px[tr+2] != 0xff {
		t.Errorf("top-right = %v, want white", px[tr:tr+4])
	}
}

func TestLUTBytesPadsToVec4(t *testing.T) {
	var lut [256][3]float32
	lut[0] = [3]float32{1, 0.5, 0.25}

	raw := lutBytes(&lut)
	if len(raw) != 256*16 {
		t.Fatalf("len = %d, want %d", len(raw), 256*16)
	}
	got := bytesToFloats(raw[:16])
	if got[0] != 1 || got[1] != 0.5 || got[2] != 0.25 || got[3] != 1 {
		t.Errorf("entry 0 = %v, want [1 0.5 0.25 1]", got)
	}
}
