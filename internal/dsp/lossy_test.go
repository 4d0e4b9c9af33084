package dsp

import (
	"testing"
)

// newBlockBuffer returns a reconstruction buffer with a flat block of value
// v at offset BPS+8, leaving room for the reference samples.
func newBlockBuffer(v byte) ([]byte, int) {
	buf := make([]byte, 20*BPS)
	for i := range buf {
		buf[i] = v
	}
	return buf, BPS + 8
}

func TestTransformDC(t *testing.T) {
	buf, off := newBlockBuffer(100)
	in := make([]int16, 16)
	in[0] = 80 // (80+4)>>3 = 10
	TransformDC(in, buf[off:])
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := buf[off+x+y*BPS]; got != 110 {
				t.Fatalf("pixel (%d,%d) = %d, want 110", x, y, got)
			}
		}
	}
	if buf[off+4] != 100 || buf[off+4*BPS] != 100 {
		t.Error("TransformDC wrote outside its block")
	}
}

func TestTransform_MatchesShortcuts(t *testing.T) {
	for seed := 0; seed < 50; seed++ {
		in := make([]int16, 16)
		in[0] = int16(seed*37%512 - 256)
		in[1] = int16(seed*53%300 - 150)
		in[4] = int16(seed*71%300 - 150)

		full, off := newBlockBuffer(byte(seed * 5))
		ac3, _ := newBlockBuffer(byte(seed * 5))
		Transform(in, full[off:])
		TransformAC3(in, ac3[off:])
		if string(full) != string(ac3) {
			t.Fatalf("seed %d: TransformAC3 differs from Transform", seed)
		}

		in[1], in[4] = 0, 0
		full, _ = newBlockBuffer(byte(seed * 5))
		dc, _ := newBlockBuffer(byte(seed * 5))
		Transform(in, full[off:])
		TransformDC(in, dc[off:])
		if string(full) != string(dc) {
			t.Fatalf("seed %d: TransformDC differs from Transform", seed)
		}
	}
}

func TestTransform_Clips(t *testing.T) {
	buf, off := newBlockBuffer(250)
	in := make([]int16, 16)
	in[0] = 2000
	Transform(in, buf[off:])
	if buf[off] != 255 {
		t.Errorf("pixel = %d, want 255", buf[off])
	}
	buf, off = newBlockBuffer(5)
	in[0] = -2000
	Transform(in, buf[off:])
	if buf[off] != 0 {
		t.Errorf("pixel = %d, want 0", buf[off])
	}
}

func TestTransformUV(t *testing.T) {
	buf, off := newBlockBuffer(50)
	in := make([]int16, 64)
	in[0], in[16], in[32], in[48] = 8, 16, 24, 32 // adds 1, 2, 3, 4
	TransformDCUV(in, buf[off:])
	want := [2][2]byte{{51, 52}, {53, 54}}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := buf[off+x+y*BPS]; got != want[y/4][x/4] {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want[y/4][x/4])
			}
		}
	}

	full, _ := newBlockBuffer(50)
	TransformUV(in, full[off:])
	if string(full) != string(buf) {
		t.Error("TransformUV and TransformDCUV disagree on DC-only input")
	}
}

func TestTransformWHT_DCOnly(t *testing.T) {
	in := make([]int16, 16)
	out := make([]int16, 256)
	in[0] = 85
	TransformWHT(in, out)
	for i := 0; i < 16; i++ {
		if got := out[16*i]; got != (85+3)>>3 {
			t.Fatalf("block %d DC = %d, want %d", i, got, (85+3)>>3)
		}
	}
}

// setEdges writes a top row and left column around the block at off.
func setEdges(buf []byte, off, size int, top, left func(i int) byte, corner byte) {
	buf[off-BPS-1] = corner
	for i := 0; i < size; i++ {
		buf[off-BPS+i] = top(i)
	}
	for j := 0; j < size; j++ {
		buf[off-1+j*BPS] = left(j)
	}
}

func TestPredictors16(t *testing.T) {
	top := func(i int) byte { return byte(10 * i) }
	left := func(j int) byte { return byte(200 - j) }

	tests := []struct {
		mode int
		want func(x, y int) byte
	}{
		{0, func(x, y int) byte { return 134 }}, // (1200 + 3080 + 16) >> 5
		{1, func(x, y int) byte { return Clip8b(10*x + 200 - y - 7) }},
		{2, func(x, y int) byte { return byte(10 * x) }},
		{3, func(x, y int) byte { return byte(200 - y) }},
		{DCPredNoTop, func(x, y int) byte { return 193 }},  // (3080 + 8) >> 4
		{DCPredNoLeft, func(x, y int) byte { return 75 }},  // (1200 + 8) >> 4
		{DCPredNoTopLeft, func(x, y int) byte { return 128 }},
	}
	for _, tt := range tests {
		buf, off := newBlockBuffer(0)
		setEdges(buf, off, 16, top, left, 7)
		PredLuma16[tt.mode](buf, off)
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if got, want := buf[off+x+y*BPS], tt.want(x, y); got != want {
					t.Fatalf("mode %d: pixel (%d,%d) = %d, want %d", tt.mode, x, y, got, want)
				}
			}
		}
	}
}

func TestPredictorsChroma(t *testing.T) {
	buf, off := newBlockBuffer(0)
	setEdges(buf, off, 8, func(i int) byte { return 40 }, func(j int) byte { return 80 }, 0)
	PredChroma8[0](buf, off)
	if got := buf[off+7+7*BPS]; got != 60 {
		t.Errorf("DC = %d, want 60", got)
	}
	PredChroma8[DCPredNoTop](buf, off)
	if got := buf[off]; got != 80 {
		t.Errorf("DC without top = %d, want 80", got)
	}
	PredChroma8[DCPredNoLeft](buf, off)
	if got := buf[off]; got != 40 {
		t.Errorf("DC without left = %d, want 40", got)
	}
}

func TestPredictors4_Flat(t *testing.T) {
	// With every reference sample equal, every 4x4 mode predicts that value.
	for mode, pred := range PredLuma4 {
		buf, off := newBlockBuffer(77)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				buf[off+x+y*BPS] = 0
			}
		}
		pred(buf, off)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				if got := buf[off+x+y*BPS]; got != 77 {
					t.Fatalf("mode %d: pixel (%d,%d) = %d, want 77", mode, x, y, got)
				}
			}
		}
	}
}

func TestPredictors4_Directions(t *testing.T) {
	buf, off := newBlockBuffer(0)
	for i := 0; i < 8; i++ {
		buf[off-BPS+i] = byte(20 + 16*i)
	}
	for j := 0; j < 4; j++ {
		buf[off-1+j*BPS] = byte(200 - 30*j)
	}
	buf[off-BPS-1] = 100

	at := func(x, y int) byte { return buf[off+x+y*BPS] }

	PredLuma4[4](buf, off) // RD: constant along down-right diagonals
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if at(x, y) != at(x+1, y+1) {
				t.Fatalf("RD: (%d,%d)=%d, (%d,%d)=%d", x, y, at(x, y), x+1, y+1, at(x+1, y+1))
			}
		}
	}
	if want := avg3(100, 20, 36); at(1, 0) != want {
		t.Errorf("RD (1,0) = %d, want %d", at(1, 0), want)
	}

	PredLuma4[6](buf, off) // LD: constant along down-left diagonals
	for y := 0; y < 3; y++ {
		for x := 1; x < 4; x++ {
			if at(x, y) != at(x-1, y+1) {
				t.Fatalf("LD: (%d,%d)=%d, (%d,%d)=%d", x, y, at(x, y), x-1, y+1, at(x-1, y+1))
			}
		}
	}
	if want := avg3(116, 132, 132); at(3, 3) != want {
		t.Errorf("LD (3,3) = %d, want %d", at(3, 3), want)
	}

	PredLuma4[9](buf, off) // HU: bottom rows fall back to the last left sample
	if at(3, 3) != 110 || at(0, 3) != 110 || at(2, 2) != 110 {
		t.Errorf("HU bottom samples = %d %d %d, want 110", at(3, 3), at(0, 3), at(2, 2))
	}
	if want := avg2(200, 170); at(0, 0) != want {
		t.Errorf("HU (0,0) = %d, want %d", at(0, 0), want)
	}

	PredLuma4[2](buf, off) // VE smooths the top row
	if want := avg3(100, 20, 36); at(0, 2) != want {
		t.Errorf("VE (0,2) = %d, want %d", at(0, 2), want)
	}
	PredLuma4[3](buf, off) // HE smooths the left column
	if want := avg3(170, 140, 110); at(3, 2) != want {
		t.Errorf("HE (3,2) = %d, want %d", at(3, 2), want)
	}
}

func TestSimpleFilter(t *testing.T) {
	const stride = 16
	plane := make([]byte, 8*stride)
	for y := 0; y < 8; y++ {
		for x := 0; x < stride; x++ {
			if y < 4 {
				plane[y*stride+x] = 100
			} else {
				plane[y*stride+x] = 108
			}
		}
	}
	// 4*|p0-q0| + |p1-q1| = 40 is within 2*20+1.
	SimpleVFilter16(plane, 4*stride, stride, 20)
	if p0, q0 := plane[3*stride], plane[4*stride]; p0 != 102 || q0 != 106 {
		t.Errorf("filtered edge = %d|%d, want 102|106", p0, q0)
	}
	if plane[2*stride] != 100 || plane[5*stride] != 108 {
		t.Error("simple filter touched samples beyond p0 and q0")
	}

	// A step above the threshold is a real edge and stays untouched.
	for x := 0; x < stride; x++ {
		plane[3*stride+x], plane[4*stride+x] = 100, 200
	}
	SimpleVFilter16(plane, 4*stride, stride, 20)
	if plane[3*stride] != 100 || plane[4*stride] != 200 {
		t.Errorf("strong edge filtered to %d|%d", plane[3*stride], plane[4*stride])
	}
}

func TestNormalFilter_Smooths(t *testing.T) {
	const stride = 24
	plane := make([]byte, 24*stride)
	for y := 0; y < 24; y++ {
		for x := 0; x < stride; x++ {
			plane[y*stride+x] = 100
			if x >= 8 {
				plane[y*stride+x] = 108
			}
		}
	}
	before := append([]byte(nil), plane...)
	HFilter16(plane, 4*stride+8, stride, 40, 10, 0)

	p0, q0 := plane[4*stride+7], plane[4*stride+8]
	if p0 <= 100 || q0 >= 108 || p0 > q0 {
		t.Errorf("macroblock edge = %d|%d, want values pulled together", p0, q0)
	}
	if plane[4*stride+5] == 100 {
		t.Error("6-tap filter left p2 untouched")
	}
	for y := 0; y < 4; y++ {
		if string(plane[y*stride:(y+1)*stride]) != string(before[y*stride:(y+1)*stride]) {
			t.Fatalf("row %d outside the 16 filtered rows changed", y)
		}
	}
}

func TestFilters_StayInBounds(t *testing.T) {
	const stride = 32
	luma := make([]byte, 32*stride)
	u := make([]byte, 16*16)
	v := make([]byte, 16*16)
	for i := range luma {
		luma[i] = byte(i * 7)
	}
	for i := range u {
		u[i], v[i] = byte(i*3), byte(i*5)
	}
	// Inner filters of a macroblock at (8, 8) must stay inside the planes.
	off := 8*stride + 8
	SimpleVFilter16i(luma, off, stride, 30)
	SimpleHFilter16i(luma, off, stride, 30)
	VFilter16i(luma, off, stride, 30, 5, 1)
	HFilter16i(luma, off, stride, 30, 5, 1)
	VFilter16(luma, off, stride, 30, 5, 1)
	VFilter8(u, v, 4*16+4, 16, 30, 5, 1)
	HFilter8(u, v, 4*16+4, 16, 30, 5, 1)
	VFilter8i(u, v, 4*16+4, 16, 30, 5, 1)
	HFilter8i(u, v, 4*16+4, 16, 30, 5, 1)
}
