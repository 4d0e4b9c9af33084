package lossy

import (
	"github.com/dany5639/webp/internal/dsp"
	"github.com/dany5639/webp/internal/vp8tab"
)

// checkMode replaces DC prediction by its border variant for macroblocks on
// the top row or left column.
func checkMode(mbX, mbY, mode int) int {
	if mode == vp8tab.DCPred {
		if mbX == 0 {
			if mbY == 0 {
				return dsp.DCPredNoTopLeft
			}
			return dsp.DCPredNoLeft
		}
		if mbY == 0 {
			return dsp.DCPredNoTop
		}
	}
	return mode
}

// doTransform adds the residual of one luma block, selected by the top two
// bits of bits.
func doTransform(bits uint32, src []int16, dst []byte) {
	switch bits >> 30 {
	case 3:
		dsp.Transform(src, dst)
	case 2:
		dsp.TransformAC3(src, dst)
	case 1:
		dsp.TransformDC(src, dst)
	}
}

func doUVTransform(bits uint32, src []int16, dst []byte) {
	if bits&0xff != 0 {
		if bits&0xaa != 0 {
			dsp.TransformUV(src, dst)
		} else {
			dsp.TransformDCUV(src, dst)
		}
	}
}

// reconstructRow predicts and reconstructs the current macroblock row into
// the output planes.
func (dec *Decoder) reconstructRow() {
	mbY := dec.mbY
	buf := dec.yuvB

	// Left border of the image.
	for j := 0; j < 16; j++ {
		buf[YOff+j*BPS-1] = 129
	}
	for j := 0; j < 8; j++ {
		buf[UOff+j*BPS-1] = 129
		buf[VOff+j*BPS-1] = 129
	}

	// Top-left corner, or the whole row above the image.
	if mbY > 0 {
		buf[YOff-1-BPS] = 129
		buf[UOff-1-BPS] = 129
		buf[VOff-1-BPS] = 129
	} else {
		fillBytes(buf[YOff-BPS-1:], 127, 16+4+1)
		fillBytes(buf[UOff-BPS-1:], 127, 8+1)
		fillBytes(buf[VOff-BPS-1:], 127, 8+1)
	}

	for mbX := 0; mbX < dec.mbW; mbX++ {
		block := &dec.mbData[mbX]

		// The right columns of the previous macroblock become the left
		// samples of this one.
		if mbX > 0 {
			for j := -1; j < 16; j++ {
				row := YOff + j*BPS
				copy(buf[row-4:row], buf[row+12:row+16])
			}
			for j := -1; j < 8; j++ {
				row := UOff + j*BPS
				copy(buf[row-4:row], buf[row+4:row+8])
				row = VOff + j*BPS
				copy(buf[row-4:row], buf[row+4:row+8])
			}
		}

		topYUV := &dec.yuvT[mbX]
		coeffs := block.Coeffs[:]
		bits := block.NonZeroY

		if mbY > 0 {
			copy(buf[YOff-BPS:], topYUV.Y[:])
			copy(buf[UOff-BPS:], topYUV.U[:])
			copy(buf[VOff-BPS:], topYUV.V[:])
		}

		if block.IsI4x4 {
			topRight := buf[YOff-BPS+16:]
			if mbY > 0 {
				if mbX >= dec.mbW-1 {
					fillBytes(topRight, topYUV.Y[15], 4)
				} else {
					copy(topRight[:4], dec.yuvT[mbX+1].Y[:4])
				}
			}
			// Blocks on the right column of rows 1 to 3 see the same
			// top-right samples as the first row.
			for r := 1; r <= 3; r++ {
				off := r * 4 * BPS
				copy(topRight[off:off+4], topRight[:4])
			}

			for n := 0; n < 16; n++ {
				off := YOff + kScan[n]
				dsp.PredLuma4[block.IModes[n]](buf, off)
				doTransform(bits, coeffs[n*16:], buf[off:])
				bits <<= 2
			}
		} else {
			mode := checkMode(mbX, mbY, int(block.IModes[0]))
			dsp.PredLuma16[mode](buf, YOff)
			if bits != 0 {
				for n := 0; n < 16; n++ {
					doTransform(bits, coeffs[n*16:], buf[YOff+kScan[n]:])
					bits <<= 2
				}
			}
		}

		bitsUV := block.NonZeroUV
		mode := checkMode(mbX, mbY, int(block.UVMode))
		dsp.PredChroma8[mode](buf, UOff)
		dsp.PredChroma8[mode](buf, VOff)
		doUVTransform(bitsUV, coeffs[16*16:], buf[UOff:])
		doUVTransform(bitsUV>>8, coeffs[20*16:], buf[VOff:])

		if mbY < dec.mbH-1 {
			copy(topYUV.Y[:], buf[YOff+15*BPS:YOff+15*BPS+16])
			copy(topYUV.U[:], buf[UOff+7*BPS:UOff+7*BPS+8])
			copy(topYUV.V[:], buf[VOff+7*BPS:VOff+7*BPS+8])
		}

		yOut := dec.cacheY[mbY*16*dec.cacheYStride+mbX*16:]
		uOut := dec.cacheU[mbY*8*dec.cacheUVStride+mbX*8:]
		vOut := dec.cacheV[mbY*8*dec.cacheUVStride+mbX*8:]
		for j := 0; j < 16; j++ {
			copy(yOut[j*dec.cacheYStride:j*dec.cacheYStride+16], buf[YOff+j*BPS:])
		}
		for j := 0; j < 8; j++ {
			copy(uOut[j*dec.cacheUVStride:j*dec.cacheUVStride+8], buf[UOff+j*BPS:])
			copy(vOut[j*dec.cacheUVStride:j*dec.cacheUVStride+8], buf[VOff+j*BPS:])
		}
	}
}

// precomputeFilterStrengths computes the filter parameters per segment,
// for i16 (index 0) and i4 (index 1) macroblocks.
func (dec *Decoder) precomputeFilterStrengths() {
	if dec.filterType <= 0 {
		return
	}
	hdr := &dec.filterHdr
	for s := 0; s < NumMBSegments; s++ {
		baseLevel := hdr.Level
		if dec.segHdr.UseSegment {
			baseLevel = int(dec.segHdr.FilterStrength[s])
			if !dec.segHdr.AbsoluteDelta {
				baseLevel += hdr.Level
			}
		}

		for i4x4 := 0; i4x4 <= 1; i4x4++ {
			info := &dec.fstrengths[s][i4x4]
			level := baseLevel
			if hdr.UseLFDelta {
				level += hdr.RefLFDelta[0]
				if i4x4 != 0 {
					level += hdr.ModeLFDelta[0]
				}
			}
			level = clip(level, 63)
			if level > 0 {
				ilevel := level
				if hdr.Sharpness > 0 {
					if hdr.Sharpness > 4 {
						ilevel >>= 2
					} else {
						ilevel >>= 1
					}
					if ilevel > 9-hdr.Sharpness {
						ilevel = 9 - hdr.Sharpness
					}
				}
				if ilevel < 1 {
					ilevel = 1
				}
				info.FILevel = uint8(ilevel)
				info.FLimit = uint8(2*level + ilevel)
				switch {
				case level >= 40:
					info.HevThresh = 2
				case level >= 15:
					info.HevThresh = 1
				default:
					info.HevThresh = 0
				}
			} else {
				info.FLimit = 0
			}
			info.FInner = i4x4 != 0
		}
	}
}

// filterRow applies the loop filter to the current macroblock row.
func (dec *Decoder) filterRow() {
	for mbX := 0; mbX < dec.mbW; mbX++ {
		dec.doFilter(mbX, dec.mbY)
	}
}

// doFilter filters the left and top edges of one macroblock, then its
// inner edges.
func (dec *Decoder) doFilter(mbX, mbY int) {
	finfo := &dec.fInfo[mbX]
	limit := int(finfo.FLimit)
	if limit == 0 {
		return
	}
	ilevel := int(finfo.FILevel)
	yBPS := dec.cacheYStride
	yOff := mbY*16*yBPS + mbX*16
	y := dec.cacheY

	if dec.filterType == 1 {
		if mbX > 0 {
			dsp.SimpleHFilter16(y, yOff, yBPS, limit+4)
		}
		if finfo.FInner {
			dsp.SimpleHFilter16i(y, yOff, yBPS, limit)
		}
		if mbY > 0 {
			dsp.SimpleVFilter16(y, yOff, yBPS, limit+4)
		}
		if finfo.FInner {
			dsp.SimpleVFilter16i(y, yOff, yBPS, limit)
		}
		return
	}

	uvBPS := dec.cacheUVStride
	uvOff := mbY*8*uvBPS + mbX*8
	u, v := dec.cacheU, dec.cacheV
	hevT := int(finfo.HevThresh)

	if mbX > 0 {
		dsp.HFilter16(y, yOff, yBPS, limit+4, ilevel, hevT)
		dsp.HFilter8(u, v, uvOff, uvBPS, limit+4, ilevel, hevT)
	}
	if finfo.FInner {
		dsp.HFilter16i(y, yOff, yBPS, limit, ilevel, hevT)
		dsp.HFilter8i(u, v, uvOff, uvBPS, limit, ilevel, hevT)
	}
	if mbY > 0 {
		dsp.VFilter16(y, yOff, yBPS, limit+4, ilevel, hevT)
		dsp.VFilter8(u, v, uvOff, uvBPS, limit+4, ilevel, hevT)
	}
	if finfo.FInner {
		dsp.VFilter16i(y, yOff, yBPS, limit, ilevel, hevT)
		dsp.VFilter8i(u, v, uvOff, uvBPS, limit, ilevel, hevT)
	}
}

func fillBytes(dst []byte, v byte, n int) {
	for i := 0; i < n; i++ {
		dst[i] = v
	}
}
