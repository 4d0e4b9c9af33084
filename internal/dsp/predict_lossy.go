package dsp

// Intra predictors of the VP8 decoder. A block at buf[off] reads the row
// above at off-BPS, the column to its left at off-1 and the corner at
// off-BPS-1. 4x4 blocks also read four samples above and to the right.

func avg3(a, b, c uint8) uint8 {
	return uint8((int(a) + 2*int(b) + int(c) + 2) >> 2)
}

func avg2(a, b uint8) uint8 {
	return uint8((int(a) + int(b) + 1) >> 1)
}

func fill(buf []byte, off, size int, v uint8) {
	for y := 0; y < size; y++ {
		row := buf[off+y*BPS : off+y*BPS+size]
		for x := range row {
			row[x] = v
		}
	}
}

func sumTop(buf []byte, off, size int) int {
	s := 0
	for _, v := range buf[off-BPS : off-BPS+size] {
		s += int(v)
	}
	return s
}

func sumLeft(buf []byte, off, size int) int {
	s := 0
	for y := 0; y < size; y++ {
		s += int(buf[off-1+y*BPS])
	}
	return s
}

func predVE(buf []byte, off, size int) {
	top := buf[off-BPS : off-BPS+size]
	for y := 0; y < size; y++ {
		copy(buf[off+y*BPS:], top)
	}
}

func predHE(buf []byte, off, size int) {
	for y := 0; y < size; y++ {
		row := off + y*BPS
		left := buf[row-1]
		for x := 0; x < size; x++ {
			buf[row+x] = left
		}
	}
}

// predTM is TrueMotion: top + left - corner, clipped.
func predTM(buf []byte, off, size int) {
	corner := int(buf[off-BPS-1])
	top := buf[off-BPS : off-BPS+size]
	for y := 0; y < size; y++ {
		row := off + y*BPS
		d := int(buf[row-1]) - corner
		for x, t := range top {
			buf[row+x] = clip1[clip1Offset+int(t)+d]
		}
	}
}

// predDC averages the samples above and to the left; shift is log2 of
// twice the block size.
func predDC(buf []byte, off, size, shift int) {
	s := sumTop(buf, off, size) + sumLeft(buf, off, size)
	fill(buf, off, size, uint8((s+1<<(shift-1))>>shift))
}

func predDCNoTop(buf []byte, off, size, shift int) {
	fill(buf, off, size, uint8((sumLeft(buf, off, size)+1<<(shift-1))>>shift))
}

func predDCNoLeft(buf []byte, off, size, shift int) {
	fill(buf, off, size, uint8((sumTop(buf, off, size)+1<<(shift-1))>>shift))
}

// 16x16 luma.

func dc16(buf []byte, off int)          { predDC(buf, off, 16, 5) }
func tm16(buf []byte, off int)          { predTM(buf, off, 16) }
func ve16(buf []byte, off int)          { predVE(buf, off, 16) }
func he16(buf []byte, off int)          { predHE(buf, off, 16) }
func dc16NoTop(buf []byte, off int)     { predDCNoTop(buf, off, 16, 4) }
func dc16NoLeft(buf []byte, off int)    { predDCNoLeft(buf, off, 16, 4) }
func dc16NoTopLeft(buf []byte, off int) { fill(buf, off, 16, 0x80) }

// 8x8 chroma.

func dc8uv(buf []byte, off int)          { predDC(buf, off, 8, 4) }
func tm8uv(buf []byte, off int)          { predTM(buf, off, 8) }
func ve8uv(buf []byte, off int)          { predVE(buf, off, 8) }
func he8uv(buf []byte, off int)          { predHE(buf, off, 8) }
func dc8uvNoTop(buf []byte, off int)     { predDCNoTop(buf, off, 8, 3) }
func dc8uvNoLeft(buf []byte, off int)    { predDCNoLeft(buf, off, 8, 3) }
func dc8uvNoTopLeft(buf []byte, off int) { fill(buf, off, 8, 0x80) }

// 4x4 luma. edge4 gathers the neighbours of a 4x4 block as
// L K J I X A B C D E F G H: the left column bottom-up, the corner, then
// the eight samples above.
func edge4(buf []byte, off int) (e [13]uint8) {
	for i := 0; i < 4; i++ {
		e[3-i] = buf[off-1+i*BPS]
	}
	copy(e[4:], buf[off-BPS-1:off-BPS+8])
	return e
}

func dc4(buf []byte, off int) { predDC(buf, off, 4, 3) }
func tm4(buf []byte, off int) { predTM(buf, off, 4) }

// ve4 smooths the row above before copying it down.
func ve4(buf []byte, off int) {
	e := edge4(buf, off)
	var vals [4]uint8
	for x := range vals {
		vals[x] = avg3(e[4+x], e[5+x], e[6+x])
	}
	for y := 0; y < 4; y++ {
		copy(buf[off+y*BPS:], vals[:])
	}
}

// he4 smooths the left column before copying it across.
func he4(buf []byte, off int) {
	e := edge4(buf, off)
	// X, I, J, K, L, L
	col := [6]uint8{e[4], e[3], e[2], e[1], e[0], e[0]}
	for y := 0; y < 4; y++ {
		v := avg3(col[y], col[y+1], col[y+2])
		row := buf[off+y*BPS : off+y*BPS+4]
		for x := range row {
			row[x] = v
		}
	}
}

// rd4 predicts down and to the right along the edge.
func rd4(buf []byte, off int) {
	e := edge4(buf, off)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			k := 4 + x - y
			buf[off+x+y*BPS] = avg3(e[k-1], e[k], e[k+1])
		}
	}
}

// ld4 predicts down and to the left from the eight samples above.
func ld4(buf []byte, off int) {
	e := edge4(buf, off)
	var t [9]uint8
	copy(t[:], e[5:])
	t[8] = t[7]
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			k := x + y
			buf[off+x+y*BPS] = avg3(t[k], t[k+1], t[k+2])
		}
	}
}

func vr4(buf []byte, off int) {
	e := edge4(buf, off)
	I, J, K := e[3], e[2], e[1]
	X, A, B, C, D := e[4], e[5], e[6], e[7], e[8]
	set := func(x, y int, v uint8) { buf[off+x+y*BPS] = v }

	set(0, 0, avg2(X, A))
	set(1, 2, avg2(X, A))
	set(1, 0, avg2(A, B))
	set(2, 2, avg2(A, B))
	set(2, 0, avg2(B, C))
	set(3, 2, avg2(B, C))
	set(3, 0, avg2(C, D))

	set(0, 3, avg3(K, J, I))
	set(0, 2, avg3(J, I, X))
	set(0, 1, avg3(I, X, A))
	set(1, 3, avg3(I, X, A))
	set(1, 1, avg3(X, A, B))
	set(2, 3, avg3(X, A, B))
	set(2, 1, avg3(A, B, C))
	set(3, 3, avg3(A, B, C))
	set(3, 1, avg3(B, C, D))
}

func vl4(buf []byte, off int) {
	e := edge4(buf, off)
	A, B, C, D := e[5], e[6], e[7], e[8]
	E, F, G, H := e[9], e[10], e[11], e[12]
	set := func(x, y int, v uint8) { buf[off+x+y*BPS] = v }

	set(0, 0, avg2(A, B))
	set(1, 0, avg2(B, C))
	set(0, 2, avg2(B, C))
	set(2, 0, avg2(C, D))
	set(1, 2, avg2(C, D))
	set(3, 0, avg2(D, E))
	set(2, 2, avg2(D, E))

	set(0, 1, avg3(A, B, C))
	set(1, 1, avg3(B, C, D))
	set(0, 3, avg3(B, C, D))
	set(2, 1, avg3(C, D, E))
	set(1, 3, avg3(C, D, E))
	set(3, 1, avg3(D, E, F))
	set(2, 3, avg3(D, E, F))
	set(3, 2, avg3(E, F, G))
	set(3, 3, avg3(F, G, H))
}

func hd4(buf []byte, off int) {
	e := edge4(buf, off)
	L, K, J, I := e[0], e[1], e[2], e[3]
	X, A, B, C := e[4], e[5], e[6], e[7]
	set := func(x, y int, v uint8) { buf[off+x+y*BPS] = v }

	set(0, 0, avg2(I, X))
	set(2, 1, avg2(I, X))
	set(0, 1, avg2(J, I))
	set(2, 2, avg2(J, I))
	set(0, 2, avg2(K, J))
	set(2, 3, avg2(K, J))
	set(0, 3, avg2(L, K))

	set(3, 0, avg3(A, B, C))
	set(2, 0, avg3(X, A, B))
	set(1, 0, avg3(I, X, A))
	set(3, 1, avg3(I, X, A))
	set(1, 1, avg3(J, I, X))
	set(3, 2, avg3(J, I, X))
	set(1, 2, avg3(K, J, I))
	set(3, 3, avg3(K, J, I))
	set(1, 3, avg3(L, K, J))
}

func hu4(buf []byte, off int) {
	e := edge4(buf, off)
	L, K, J, I := e[0], e[1], e[2], e[3]
	set := func(x, y int, v uint8) { buf[off+x+y*BPS] = v }

	set(0, 0, avg2(I, J))
	set(2, 0, avg2(J, K))
	set(0, 1, avg2(J, K))
	set(2, 1, avg2(K, L))
	set(0, 2, avg2(K, L))
	set(1, 0, avg3(I, J, K))
	set(3, 0, avg3(J, K, L))
	set(1, 1, avg3(J, K, L))
	set(3, 1, avg3(K, L, L))
	set(1, 2, avg3(K, L, L))
	for _, p := range [][2]int{{3, 2}, {2, 2}, {0, 3}, {1, 3}, {2, 3}, {3, 3}} {
		set(p[0], p[1], L)
	}
}

func initPredictors() {
	PredLuma16 = [NumPredModes]PredFunc{dc16, tm16, ve16, he16, dc16NoTop, dc16NoLeft, dc16NoTopLeft}
	PredChroma8 = [NumPredModes]PredFunc{dc8uv, tm8uv, ve8uv, he8uv, dc8uvNoTop, dc8uvNoLeft, dc8uvNoTopLeft}
	PredLuma4 = [10]PredFunc{dc4, tm4, ve4, he4, rd4, vr4, ld4, vl4, hd4, hu4}
}
