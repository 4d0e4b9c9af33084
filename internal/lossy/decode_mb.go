package lossy

import (
	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/dsp"
	"github.com/dany5639/webp/internal/vp8tab"
	"github.com/dany5639/webp/internal/webperr"
)

var kCat3456 = [4][]uint8{vp8tab.Cat3, vp8tab.Cat4, vp8tab.Cat5, vp8tab.Cat6}

// getLargeValue decodes the magnitude of a coefficient known to be at
// least 2.
func getLargeValue(br *bitio.BoolReader, p []uint8) int {
	var v int
	if br.GetBit(p[3]) == 0 {
		if br.GetBit(p[4]) == 0 {
			v = 2
		} else {
			v = 3 + br.GetBit(p[5])
		}
	} else {
		if br.GetBit(p[6]) == 0 {
			if br.GetBit(p[7]) == 0 {
				v = 5 + br.GetBit(159)
			} else {
				v = 7 + 2*br.GetBit(165)
				v += br.GetBit(145)
			}
		} else {
			bit1 := br.GetBit(p[8])
			bit0 := br.GetBit(p[9+bit1])
			cat := 2*bit1 + bit0
			v = 0
			for _, tabProb := range kCat3456[cat] {
				if tabProb == 0 {
					break
				}
				v += v + br.GetBit(tabProb)
			}
			v += 3 + (8 << uint(cat))
		}
	}
	return v
}

// getCoeffs decodes the dequantized coefficients of one block, starting at
// scan position n, into out. It returns the scan position following the
// last non-zero coefficient.
func getCoeffs(br *bitio.BoolReader, bands *[16 + 1]*BandProbas, ctx int, dq [2]int, n int, out []int16) int {
	p := bands[n].Probas[ctx][:]
	for ; n < 16; n++ {
		if br.GetBit(p[0]) == 0 {
			return n // end of block
		}
		for br.GetBit(p[1]) == 0 { // zero coefficient
			n++
			if n == 16 {
				return 16
			}
			p = bands[n].Probas[0][:]
		}
		pCtx := &bands[n+1].Probas
		var v int
		if br.GetBit(p[2]) == 0 {
			v = 1
			p = pCtx[1][:]
		} else {
			v = getLargeValue(br, p)
			p = pCtx[2][:]
		}
		dqIdx := 0
		if n > 0 {
			dqIdx = 1
		}
		out[vp8tab.Zigzag[n]] = int16(br.GetSigned(v) * dq[dqIdx])
	}
	return 16
}

// nzCodeBits appends the 2-bit transform code of a block: 3 for a full
// transform, 2 when only the first three coefficients can be non-zero,
// dcNz for a DC-only block.
func nzCodeBits(nzCoeffs uint32, nz int, dcNz int) uint32 {
	nzCoeffs <<= 2
	switch {
	case nz > 3:
		nzCoeffs |= 3
	case nz > 1:
		nzCoeffs |= 2
	default:
		nzCoeffs |= uint32(dcNz)
	}
	return nzCoeffs
}

// decodeMB reads the coefficients of the current macroblock and records its
// filter strength.
func (dec *Decoder) decodeMB(tokenBR *bitio.BoolReader) error {
	left := &dec.mbInfo[0]
	mb := &dec.mbInfo[dec.mbX+1]
	block := &dec.mbData[dec.mbX]

	skip := block.Skip
	if !skip {
		skip = dec.parseResiduals(mb, left, block, tokenBR)
	} else {
		left.Nz = 0
		mb.Nz = 0
		if !block.IsI4x4 {
			left.NzDC = 0
			mb.NzDC = 0
		}
		block.NonZeroY = 0
		block.NonZeroUV = 0
	}

	if dec.filterType > 0 {
		finfo := &dec.fInfo[dec.mbX]
		*finfo = dec.fstrengths[block.Segment][b2i(block.IsI4x4)]
		finfo.FInner = finfo.FInner || !skip
	}

	if tokenBR.EOF() {
		return webperr.BitstreamError.Errorf("vp8", "token partition ends at macroblock (%d, %d)", dec.mbX, dec.mbY)
	}
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseResiduals decodes the coefficients of one macroblock and updates the
// non-zero contexts. It reports whether every coefficient is zero.
func (dec *Decoder) parseResiduals(mb, leftMB *MB, block *MBData, tokenBR *bitio.BoolReader) bool {
	bands := &dec.proba.BandsPtr
	q := &dec.dqm[block.Segment]
	block.Coeffs = [384]int16{}
	dst := block.Coeffs[:]

	var nonZeroY, nonZeroUV uint32
	var first int
	var acProba *[16 + 1]*BandProbas

	if !block.IsI4x4 {
		var dc [16]int16
		ctx := int(mb.NzDC) + int(leftMB.NzDC)
		nz := getCoeffs(tokenBR, &bands[typeI16DC], ctx, q.Y2Mat, 0, dc[:])
		mb.NzDC = uint8(b2i(nz > 0))
		leftMB.NzDC = mb.NzDC
		if nz > 1 {
			dsp.TransformWHT(dc[:], dst)
		} else {
			dc0 := int16((int(dc[0]) + 3) >> 3)
			for i := 0; i < 16*16; i += 16 {
				dst[i] = dc0
			}
		}
		first = 1
		acProba = &bands[typeI16AC]
	} else {
		first = 0
		acProba = &bands[typeI4]
	}

	tnz := mb.Nz & 0x0f
	lnz := leftMB.Nz & 0x0f
	for y := 0; y < 4; y++ {
		l := lnz & 1
		var nzCoeffs uint32
		for x := 0; x < 4; x++ {
			ctx := int(l) + int(tnz&1)
			nz := getCoeffs(tokenBR, acProba, ctx, q.Y1Mat, first, dst)
			l = uint8(b2i(nz > first))
			tnz = (tnz >> 1) | (l << 7)
			nzCoeffs = nzCodeBits(nzCoeffs, nz, b2i(dst[0] != 0))
			dst = dst[16:]
		}
		tnz >>= 4
		lnz = (lnz >> 1) | (l << 7)
		nonZeroY = (nonZeroY << 8) | nzCoeffs
	}
	outTNz := tnz
	outLNz := lnz >> 4

	for ch := 0; ch < 4; ch += 2 {
		var nzCoeffs uint32
		tnz = mb.Nz >> (4 + uint(ch))
		lnz = leftMB.Nz >> (4 + uint(ch))
		for y := 0; y < 2; y++ {
			l := lnz & 1
			for x := 0; x < 2; x++ {
				ctx := int(l) + int(tnz&1)
				nz := getCoeffs(tokenBR, &bands[typeUV], ctx, q.UVMat, 0, dst)
				l = uint8(b2i(nz > 0))
				tnz = (tnz >> 1) | (l << 3)
				nzCoeffs = nzCodeBits(nzCoeffs, nz, b2i(dst[0] != 0))
				dst = dst[16:]
			}
			tnz >>= 2
			lnz = (lnz >> 1) | (l << 5)
		}
		// U codes land in bits 0-7, V codes in bits 8-15.
		nonZeroUV |= nzCoeffs << uint(4*ch)
		outTNz |= (tnz << 4) << uint(ch)
		outLNz |= (lnz & 0xf0) << uint(ch)
	}

	mb.Nz = outTNz
	leftMB.Nz = outLNz
	block.NonZeroY = nonZeroY
	block.NonZeroUV = nonZeroUV
	return nonZeroY|nonZeroUV == 0
}
