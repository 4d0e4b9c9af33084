package lossy

import (
	"github.com/dany5639/webp/internal/dsp"
	"github.com/dany5639/webp/internal/vp8tab"
)

// Bitstream limits of the VP8 key frame header.
const (
	NumMBSegments      = 4
	MBFeatureTreeProbs = 3
	NumRefLFDeltas     = 4
	NumModeLFDeltas    = 4
	MaxNumPartitions   = 8

	// frameHeaderSize is the frame tag plus the key frame start code and
	// dimensions.
	frameHeaderSize = 10
)

// Layout of the reconstruction buffer: a 16x16 luma block and two 8x8
// chroma blocks, each with one row of top samples and room on the left for
// the previous macroblock's last columns.
const (
	BPS     = dsp.BPS
	YUVSize = BPS*17 + BPS*9
	YOff    = BPS*1 + 8
	UOff    = YOff + BPS*16 + BPS
	VOff    = UOff + 16
)

// BandProbas holds the token probabilities of one band, per context.
type BandProbas struct {
	Probas [vp8tab.NumCTX][vp8tab.NumProbas]uint8
}

// Proba holds the probabilities of one frame.
type Proba struct {
	Segments [MBFeatureTreeProbs]uint8
	Bands    [vp8tab.NumTypes][vp8tab.NumBands]BandProbas
	// BandsPtr maps each coefficient position (plus the sentinel) to its
	// band, per block type.
	BandsPtr [vp8tab.NumTypes][16 + 1]*BandProbas
}

// ResetProba sets the segment probabilities to their defaults.
func ResetProba(p *Proba) {
	for i := range p.Segments {
		p.Segments[i] = 255
	}
}

// Residual block types.
const (
	typeI16AC = 0
	typeI16DC = 1
	typeUV    = 2
	typeI4    = 3
)
