package lossy

import (
	"github.com/dany5639/webp/internal/vp8tab"
	"github.com/dany5639/webp/internal/webperr"
)

// parseProba reads the coefficient probability updates and the skip
// probability from the first partition.
func (dec *Decoder) parseProba() {
	br := dec.br
	p := &dec.proba

	for t := 0; t < vp8tab.NumTypes; t++ {
		for b := 0; b < vp8tab.NumBands; b++ {
			for c := 0; c < vp8tab.NumCTX; c++ {
				for i := 0; i < vp8tab.NumProbas; i++ {
					if br.GetFlag(vp8tab.CoeffsUpdateProba[t][b][c][i]) {
						p.Bands[t][b].Probas[c][i] = uint8(br.GetValue(8))
					} else {
						p.Bands[t][b].Probas[c][i] = vp8tab.CoeffsProba0[t][b][c][i]
					}
				}
			}
		}
		for b := 0; b < 16+1; b++ {
			p.BandsPtr[t][b] = &p.Bands[t][vp8tab.Bands[b]]
		}
	}

	dec.useSkipProba = br.GetFlag(0x80)
	if dec.useSkipProba {
		dec.skipP = uint8(br.GetValue(8))
	}
}

// parseIntraModeRow parses the modes of one macroblock row.
func (dec *Decoder) parseIntraModeRow() error {
	for mbX := 0; mbX < dec.mbW; mbX++ {
		dec.parseIntraMode(mbX)
	}
	if dec.br.EOF() {
		return webperr.BitstreamError.Errorf("vp8", "first partition ends in macroblock row %d", dec.mbY)
	}
	return nil
}

func (dec *Decoder) parseIntraMode(mbX int) {
	br := dec.br
	top := dec.intraT[4*mbX : 4*mbX+4]
	left := dec.intraL[:]
	block := &dec.mbData[mbX]

	if dec.segHdr.UpdateMap {
		if br.GetBit(dec.proba.Segments[0]) == 0 {
			block.Segment = uint8(br.GetBit(dec.proba.Segments[1]))
		} else {
			block.Segment = uint8(br.GetBit(dec.proba.Segments[2])) + 2
		}
	} else {
		block.Segment = 0
	}

	block.Skip = dec.useSkipProba && br.GetFlag(dec.skipP)

	block.IsI4x4 = !br.GetFlag(145)
	if !block.IsI4x4 {
		var ymode uint8
		if br.GetFlag(156) {
			if br.GetFlag(128) {
				ymode = vp8tab.TMPred
			} else {
				ymode = vp8tab.HPred
			}
		} else {
			if br.GetFlag(163) {
				ymode = vp8tab.VPred
			} else {
				ymode = vp8tab.DCPred
			}
		}
		block.IModes[0] = ymode
		for i := 0; i < 4; i++ {
			top[i] = ymode
			left[i] = ymode
		}
	} else {
		modes := block.IModes[:]
		for y := 0; y < 4; y++ {
			ymode := left[y]
			for x := 0; x < 4; x++ {
				prob := &vp8tab.BModesProba[top[x]][ymode]
				i := int(vp8tab.YModesIntra4[br.GetBit(prob[0])])
				for i > 0 {
					i = int(vp8tab.YModesIntra4[2*i+br.GetBit(prob[i])])
				}
				ymode = uint8(-i)
				top[x] = ymode
				modes[y*4+x] = ymode
			}
			left[y] = ymode
		}
	}

	switch {
	case !br.GetFlag(142):
		block.UVMode = vp8tab.DCPred
	case !br.GetFlag(114):
		block.UVMode = vp8tab.VPred
	case br.GetFlag(183):
		block.UVMode = vp8tab.TMPred
	default:
		block.UVMode = vp8tab.HPred
	}
}
