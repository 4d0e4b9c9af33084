package dsp

// Fancy upsampling of 4:2:0 chroma. Each output pixel mixes the four
// nearest chroma samples with weights 9, 3, 3 and 1 (the nearest weighs 9).
// U and V are interpolated together, packed in the low and high halves of
// a uint32.

func loadUV(u, v byte) uint32 {
	return uint32(u) | uint32(v)<<16
}

func putBGR(y int, uv uint32, dst []byte) {
	YUVToBGR(y, int(uv&0xff), int(uv>>16), dst)
}

// UpsampleLinePair converts two luma rows that sit between the chroma rows
// topU/topV and botU/botV into BGR pixels bpp bytes apart. Only the B, G and
// R bytes of each pixel are written. botY may be nil, in which case only
// topDst is written.
func UpsampleLinePair(topY, botY, topU, topV, botU, botV, topDst, botDst []byte, width, bpp int) {
	if width <= 0 {
		return
	}
	lastPair := (width - 1) >> 1
	tlUV := loadUV(topU[0], topV[0])
	lUV := loadUV(botU[0], botV[0])

	putBGR(int(topY[0]), (3*tlUV+lUV+0x00020002)>>2, topDst)
	if botY != nil {
		putBGR(int(botY[0]), (3*lUV+tlUV+0x00020002)>>2, botDst)
	}

	for x := 1; x <= lastPair; x++ {
		tUV := loadUV(topU[x], topV[x])
		uv := loadUV(botU[x], botV[x])
		avg := tlUV + tUV + lUV + uv + 0x00080008
		diag12 := (avg + 2*(tUV+lUV)) >> 3
		diag03 := (avg + 2*(tlUV+uv)) >> 3

		putBGR(int(topY[2*x-1]), (diag12+tlUV)>>1, topDst[(2*x-1)*bpp:])
		putBGR(int(topY[2*x]), (diag03+tUV)>>1, topDst[2*x*bpp:])
		if botY != nil {
			putBGR(int(botY[2*x-1]), (diag03+lUV)>>1, botDst[(2*x-1)*bpp:])
			putBGR(int(botY[2*x]), (diag12+uv)>>1, botDst[2*x*bpp:])
		}
		tlUV, lUV = tUV, uv
	}

	if width&1 == 0 {
		putBGR(int(topY[width-1]), (3*tlUV+lUV+0x00020002)>>2, topDst[(width-1)*bpp:])
		if botY != nil {
			putBGR(int(botY[width-1]), (3*lUV+tlUV+0x00020002)>>2, botDst[(width-1)*bpp:])
		}
	}
}
