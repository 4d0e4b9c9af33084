package lossy

import (
	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/vp8tab"
)

// QuantMatrix holds the dequantization factors for one segment.
// Each matrix is a [DC, AC] pair.
type QuantMatrix struct {
	Y1Mat [2]int
	Y2Mat [2]int // second-order luma DC block
	UVMat [2]int
}

func clip(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// parseQuant reads the quantizer indices and fills the per-segment
// dequantization matrices.
func parseQuant(br *bitio.BoolReader, segHdr *SegmentHeader, dqm []QuantMatrix) {
	baseQ0 := int(br.GetValue(7))
	dqy1DC := br.GetOptionalSigned(4)
	dqy2DC := br.GetOptionalSigned(4)
	dqy2AC := br.GetOptionalSigned(4)
	dquvDC := br.GetOptionalSigned(4)
	dquvAC := br.GetOptionalSigned(4)

	for i := 0; i < NumMBSegments; i++ {
		var q int
		if segHdr.UseSegment {
			q = int(segHdr.Quantizer[i])
			if !segHdr.AbsoluteDelta {
				q += baseQ0
			}
		} else {
			if i > 0 {
				dqm[i] = dqm[0]
				continue
			}
			q = baseQ0
		}

		m := &dqm[i]
		m.Y1Mat[0] = int(vp8tab.DcTable[clip(q+dqy1DC, 127)])
		m.Y1Mat[1] = int(vp8tab.AcTable[clip(q, 127)])

		m.Y2Mat[0] = int(vp8tab.DcTable[clip(q+dqy2DC, 127)]) * 2
		// x * 155 / 100 as (x * 101581) >> 16
		m.Y2Mat[1] = (int(vp8tab.AcTable[clip(q+dqy2AC, 127)]) * 101581) >> 16
		if m.Y2Mat[1] < 8 {
			m.Y2Mat[1] = 8
		}

		m.UVMat[0] = int(vp8tab.DcTable[clip(q+dquvDC, 117)])
		m.UVMat[1] = int(vp8tab.AcTable[clip(q+dquvAC, 127)])
	}
}
