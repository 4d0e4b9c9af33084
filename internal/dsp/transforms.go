package dsp

// Inverse transforms of the VP8 decoder. Residuals are added to the
// prediction already in dst, whose rows are BPS bytes apart.

const (
	kC1 = 20091 + (1 << 16) // cos(pi/8) * sqrt(2), in 16.16
	kC2 = 35468             // sin(pi/8) * sqrt(2), in 16.16
)

func mul1(a int) int { return (a * kC1) >> 16 }
func mul2(a int) int { return (a * kC2) >> 16 }

// store adds v>>3 to the pixel at dst[off].
func store(dst []byte, off, v int) {
	dst[off] = Clip8b(int(dst[off]) + v>>3)
}

// Transform applies the full 4x4 inverse DCT of in to the block at dst.
func Transform(in []int16, dst []byte) {
	_ = in[15]
	_ = dst[3+3*BPS]
	var tmp [16]int
	for i := 0; i < 4; i++ {
		a := int(in[i]) + int(in[8+i])
		b := int(in[i]) - int(in[8+i])
		c := mul2(int(in[4+i])) - mul1(int(in[12+i]))
		d := mul1(int(in[4+i])) + mul2(int(in[12+i]))
		tmp[4*i+0] = a + d
		tmp[4*i+1] = b + c
		tmp[4*i+2] = b - c
		tmp[4*i+3] = a - d
	}
	for i := 0; i < 4; i++ {
		dc := tmp[i] + 4
		a := dc + tmp[8+i]
		b := dc - tmp[8+i]
		c := mul2(tmp[4+i]) - mul1(tmp[12+i])
		d := mul1(tmp[4+i]) + mul2(tmp[12+i])
		row := i * BPS
		store(dst, row+0, a+d)
		store(dst, row+1, b+c)
		store(dst, row+2, b-c)
		store(dst, row+3, a-d)
	}
}

// TransformAC3 is Transform for blocks whose only non-zero coefficients
// are in[0], in[1] and in[4].
func TransformAC3(in []int16, dst []byte) {
	a := int(in[0]) + 4
	c4 := mul2(int(in[4]))
	d4 := mul1(int(in[4]))
	c1 := mul2(int(in[1]))
	d1 := mul1(int(in[1]))
	for y, dc := range [4]int{a + d4, a + c4, a - c4, a - d4} {
		row := y * BPS
		store(dst, row+0, dc+d1)
		store(dst, row+1, dc+c1)
		store(dst, row+2, dc-c1)
		store(dst, row+3, dc-d1)
	}
}

// TransformDC is Transform for blocks with only a DC coefficient.
func TransformDC(in []int16, dst []byte) {
	dc := int(in[0]) + 4
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			store(dst, x+y*BPS, dc)
		}
	}
}

// uvBlocks are the offsets of the four 4x4 blocks of an 8x8 chroma block.
var uvBlocks = [4]int{0, 4, 4 * BPS, 4*BPS + 4}

// TransformUV applies Transform to the four blocks of an 8x8 chroma block,
// whose coefficients are stored consecutively in in.
func TransformUV(in []int16, dst []byte) {
	for i, off := range uvBlocks {
		Transform(in[16*i:], dst[off:])
	}
}

// TransformDCUV applies TransformDC to the chroma blocks with a non-zero DC.
func TransformDCUV(in []int16, dst []byte) {
	for i, off := range uvBlocks {
		if in[16*i] != 0 {
			TransformDC(in[16*i:], dst[off:])
		}
	}
}

// TransformWHT inverts the Walsh-Hadamard transform of the sixteen luma DC
// coefficients and stores each result as coefficient 0 of its block in out.
func TransformWHT(in []int16, out []int16) {
	var tmp [16]int
	for i := 0; i < 4; i++ {
		a0 := int(in[0+i]) + int(in[12+i])
		a1 := int(in[4+i]) + int(in[8+i])
		a2 := int(in[4+i]) - int(in[8+i])
		a3 := int(in[0+i]) - int(in[12+i])
		tmp[0+i] = a0 + a1
		tmp[8+i] = a0 - a1
		tmp[4+i] = a3 + a2
		tmp[12+i] = a3 - a2
	}
	for i := 0; i < 4; i++ {
		dc := tmp[0+i*4] + 3
		a0 := dc + tmp[3+i*4]
		a1 := tmp[1+i*4] + tmp[2+i*4]
		a2 := tmp[1+i*4] - tmp[2+i*4]
		a3 := dc - tmp[3+i*4]
		base := 64 * i
		out[base+0] = int16((a0 + a1) >> 3)
		out[base+16] = int16((a3 + a2) >> 3)
		out[base+32] = int16((a0 - a1) >> 3)
		out[base+48] = int16((a3 - a2) >> 3)
	}
}
