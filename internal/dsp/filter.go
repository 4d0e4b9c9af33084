package dsp

// VP8 loop filters. Every function takes the whole plane, the offset of the
// first sample on the far side of the edge and the plane stride. For a
// vertical edge filter (VFilter*) the edge is horizontal: samples above
// it are at negative multiples of the stride.

func absDiff(a, b int) int { return int(abs0[abs0Offset+a-b]) }

func sclip1At(v int) int { return int(sclip1[sclip1Offset+v]) }
func sclip2At(v int) int { return int(sclip2[sclip2Offset+v]) }
func clip1At(v int) uint8 { return clip1[clip1Offset+v] }

// edge reads the four samples on each side of an edge crossing p[off]
// along step.
type edge struct{ p3, p2, p1, p0, q0, q1, q2, q3 int }

func loadEdge(p []byte, off, step int) edge {
	return edge{
		int(p[off-4*step]), int(p[off-3*step]), int(p[off-2*step]), int(p[off-step]),
		int(p[off]), int(p[off+step]), int(p[off+2*step]), int(p[off+3*step]),
	}
}

func needsFilter(p1, p0, q0, q1, thresh2 int) bool {
	return 4*absDiff(p0, q0)+absDiff(p1, q1) <= thresh2
}

func (e *edge) needsFilter2(thresh2, ithresh int) bool {
	if !needsFilter(e.p1, e.p0, e.q0, e.q1, thresh2) {
		return false
	}
	return absDiff(e.p3, e.p2) <= ithresh && absDiff(e.p2, e.p1) <= ithresh &&
		absDiff(e.p1, e.p0) <= ithresh && absDiff(e.q3, e.q2) <= ithresh &&
		absDiff(e.q2, e.q1) <= ithresh && absDiff(e.q1, e.q0) <= ithresh
}

// hev reports high edge variance.
func (e *edge) hev(thresh int) bool {
	return absDiff(e.p1, e.p0) > thresh || absDiff(e.q1, e.q0) > thresh
}

// filter2 adjusts p0 and q0.
func filter2(p []byte, off, step int) {
	p1, p0 := int(p[off-2*step]), int(p[off-step])
	q0, q1 := int(p[off]), int(p[off+step])
	a := 3*(q0-p0) + sclip1At(p1-q1)
	a1 := sclip2At((a + 4) >> 3)
	a2 := sclip2At((a + 3) >> 3)
	p[off-step] = clip1At(p0 + a2)
	p[off] = clip1At(q0 - a1)
}

// filter4 adjusts p1, p0, q0 and q1 on inner edges.
func filter4(p []byte, off, step int) {
	p1, p0 := int(p[off-2*step]), int(p[off-step])
	q0, q1 := int(p[off]), int(p[off+step])
	a := 3 * (q0 - p0)
	a1 := sclip2At((a + 4) >> 3)
	a2 := sclip2At((a + 3) >> 3)
	a3 := (a1 + 1) >> 1
	p[off-2*step] = clip1At(p1 + a3)
	p[off-step] = clip1At(p0 + a2)
	p[off] = clip1At(q0 - a1)
	p[off+step] = clip1At(q1 - a3)
}

// filter6 adjusts three samples on each side of a macroblock edge.
func filter6(p []byte, off, step int) {
	p2, p1, p0 := int(p[off-3*step]), int(p[off-2*step]), int(p[off-step])
	q0, q1, q2 := int(p[off]), int(p[off+step]), int(p[off+2*step])
	a := sclip1At(3*(q0-p0) + sclip1At(p1-q1))
	a1 := (27*a + 63) >> 7
	a2 := (18*a + 63) >> 7
	a3 := (9*a + 63) >> 7
	p[off-3*step] = clip1At(p2 + a3)
	p[off-2*step] = clip1At(p1 + a2)
	p[off-step] = clip1At(p0 + a1)
	p[off] = clip1At(q0 - a1)
	p[off+step] = clip1At(q1 - a2)
	p[off+2*step] = clip1At(q2 - a3)
}

// simpleFilter runs the simple filter over size samples of one edge. hstride
// crosses the edge, vstride moves along it.
func simpleFilter(p []byte, off, hstride, vstride, size, thresh int) {
	thresh2 := 2*thresh + 1
	for i := 0; i < size; i++ {
		p1, p0 := int(p[off-2*hstride]), int(p[off-hstride])
		q0, q1 := int(p[off]), int(p[off+hstride])
		if needsFilter(p1, p0, q0, q1, thresh2) {
			filter2(p, off, hstride)
		}
		off += vstride
	}
}

// normalFilter runs the normal filter over size samples of one edge, with
// the 6-tap filter on macroblock edges and the 4-tap one on inner edges.
func normalFilter(p []byte, off, hstride, vstride, size, thresh, ithresh, hevThresh int, mbEdge bool) {
	thresh2 := 2*thresh + 1
	for i := 0; i < size; i++ {
		e := loadEdge(p, off, hstride)
		if e.needsFilter2(thresh2, ithresh) {
			switch {
			case e.hev(hevThresh):
				filter2(p, off, hstride)
			case mbEdge:
				filter6(p, off, hstride)
			default:
				filter4(p, off, hstride)
			}
		}
		off += vstride
	}
}

// SimpleVFilter16 filters the horizontal edge above the 16 samples at off.
func SimpleVFilter16(p []byte, off, stride, thresh int) {
	simpleFilter(p, off, stride, 1, 16, thresh)
}

// SimpleHFilter16 filters the vertical edge left of the 16 rows at off.
func SimpleHFilter16(p []byte, off, stride, thresh int) {
	simpleFilter(p, off, 1, stride, 16, thresh)
}

// SimpleVFilter16i filters the three inner horizontal edges of a macroblock.
func SimpleVFilter16i(p []byte, off, stride, thresh int) {
	for k := 1; k <= 3; k++ {
		SimpleVFilter16(p, off+4*k*stride, stride, thresh)
	}
}

// SimpleHFilter16i filters the three inner vertical edges of a macroblock.
func SimpleHFilter16i(p []byte, off, stride, thresh int) {
	for k := 1; k <= 3; k++ {
		SimpleHFilter16(p, off+4*k, stride, thresh)
	}
}

// VFilter16 filters the top edge of a luma macroblock.
func VFilter16(p []byte, off, stride, thresh, ithresh, hevThresh int) {
	normalFilter(p, off, stride, 1, 16, thresh, ithresh, hevThresh, true)
}

// HFilter16 filters the left edge of a luma macroblock.
func HFilter16(p []byte, off, stride, thresh, ithresh, hevThresh int) {
	normalFilter(p, off, 1, stride, 16, thresh, ithresh, hevThresh, true)
}

// VFilter16i filters the inner horizontal edges of a luma macroblock.
func VFilter16i(p []byte, off, stride, thresh, ithresh, hevThresh int) {
	for k := 1; k <= 3; k++ {
		normalFilter(p, off+4*k*stride, stride, 1, 16, thresh, ithresh, hevThresh, false)
	}
}

// HFilter16i filters the inner vertical edges of a luma macroblock.
func HFilter16i(p []byte, off, stride, thresh, ithresh, hevThresh int) {
	for k := 1; k <= 3; k++ {
		normalFilter(p, off+4*k, 1, stride, 16, thresh, ithresh, hevThresh, false)
	}
}

// VFilter8 filters the top edge of both chroma macroblocks.
func VFilter8(u, v []byte, off, stride, thresh, ithresh, hevThresh int) {
	normalFilter(u, off, stride, 1, 8, thresh, ithresh, hevThresh, true)
	normalFilter(v, off, stride, 1, 8, thresh, ithresh, hevThresh, true)
}

// HFilter8 filters the left edge of both chroma macroblocks.
func HFilter8(u, v []byte, off, stride, thresh, ithresh, hevThresh int) {
	normalFilter(u, off, 1, stride, 8, thresh, ithresh, hevThresh, true)
	normalFilter(v, off, 1, stride, 8, thresh, ithresh, hevThresh, true)
}

// VFilter8i filters the middle horizontal edge of both chroma macroblocks.
func VFilter8i(u, v []byte, off, stride, thresh, ithresh, hevThresh int) {
	normalFilter(u, off+4*stride, stride, 1, 8, thresh, ithresh, hevThresh, false)
	normalFilter(v, off+4*stride, stride, 1, 8, thresh, ithresh, hevThresh, false)
}

// HFilter8i filters the middle vertical edge of both chroma macroblocks.
func HFilter8i(u, v []byte, off, stride, thresh, ithresh, hevThresh int) {
	normalFilter(u, off+4, 1, stride, 8, thresh, ithresh, hevThresh, false)
	normalFilter(v, off+4, 1, stride, 8, thresh, ithresh, hevThresh, false)
}
