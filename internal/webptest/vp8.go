package webptest

import (
	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/vp8tab"
)

// Macroblock describes the prediction modes and quantized coefficient
// levels of one VP8 macroblock. Levels are in zig-zag scan order.
type Macroblock struct {
	Segment int
	I4      bool
	YMode   int     // 16x16 mode (vp8tab.DCPred, TMPred, VPred, HPred) when !I4
	BModes  [16]int // 4x4 modes in raster order when I4
	UVMode  int
	Y2      [16]int     // second-order luma DC levels, !I4 only
	Y       [16][16]int // luma levels; position 0 is ignored when !I4
	U, V    [4][16]int
}

// VP8Segments enables segmentation with an explicit segment map.
type VP8Segments struct {
	Absolute bool
	Quant    [4]int // 7-bit signed
	Filter   [4]int // 6-bit signed
	MapProbs [3]uint8
}

// VP8Options describes a VP8 key frame for EncodeVP8. Zero values give a
// 128-gray frame with no loop filter and a single token partition.
type VP8Options struct {
	Width, Height int
	Profile       int
	BaseQ         int
	QuantDeltas   [5]int // y1 dc, y2 dc, y2 ac, uv dc, uv ac; 4-bit signed
	FilterLevel   int
	Sharpness     int
	SimpleFilter  bool
	LFDeltas      *[8]int // 4 reference frame deltas, then 4 mode deltas
	PartitionBits int     // log2 of the token partition count
	Segments      *VP8Segments
	SkipProba     uint8 // 0 disables the per-macroblock skip flag
	UpdateProbas  bool  // replace part of the default token probabilities
	Macroblock    func(x, y int) Macroblock
}

// nzContext tracks which blocks had non-zero coefficients: entries 0-3 are
// the luma columns or rows, 4-5 U, 6-7 V and 8 the second-order block.
type nzContext [9]uint8

type vp8Encoder struct {
	opts   VP8Options
	probas [vp8tab.NumTypes][vp8tab.NumBands][vp8tab.NumCTX][vp8tab.NumProbas]uint8
	intraT []int
	intraL [4]int
	topNz  []nzContext
	leftNz nzContext
}

// EncodeVP8 returns a VP8 chunk payload for a key frame built from opts.
func EncodeVP8(opts VP8Options) []byte {
	mbW := (opts.Width + 15) / 16
	mbH := (opts.Height + 15) / 16
	e := &vp8Encoder{
		opts:   opts,
		probas: vp8tab.CoeffsProba0,
		intraT: make([]int, 4*mbW),
		topNz:  make([]nzContext, mbW),
	}

	hdr := bitio.NewBoolWriter()
	e.writeHeader(hdr)

	numParts := 1 << opts.PartitionBits
	parts := make([]*bitio.BoolWriter, numParts)
	for i := range parts {
		parts[i] = bitio.NewBoolWriter()
	}
	for y := 0; y < mbH; y++ {
		e.intraL = [4]int{}
		e.leftNz = nzContext{}
		for x := 0; x < mbW; x++ {
			mb := Macroblock{}
			if opts.Macroblock != nil {
				mb = opts.Macroblock(x, y)
			}
			e.writeMacroblock(hdr, parts[y&(numParts-1)], x, mb)
		}
	}

	first := hdr.Finish()
	out := make([]byte, 10, 10+len(first))
	tag := uint32(opts.Profile)<<1 | 1<<4 | uint32(len(first))<<5
	putLE24(out, int(tag))
	out[3], out[4], out[5] = 0x9d, 0x01, 0x2a
	out[6], out[7] = byte(opts.Width), byte(opts.Width>>8)
	out[8], out[9] = byte(opts.Height), byte(opts.Height>>8)
	out = append(out, first...)

	data := make([][]byte, numParts)
	for i, p := range parts {
		data[i] = p.Finish()
	}
	for _, d := range data[:numParts-1] {
		var sz [3]byte
		putLE24(sz[:], len(d))
		out = append(out, sz[:]...)
	}
	for _, d := range data {
		out = append(out, d...)
	}
	return out
}

// Lossy returns a simple-format file holding a VP8 key frame.
func Lossy(opts VP8Options) []byte {
	return RIFF(Chunk("VP8 ", EncodeVP8(opts)))
}

func (e *vp8Encoder) writeHeader(bw *bitio.BoolWriter) {
	o := &e.opts
	bw.PutBit(0, 0x80) // color space
	bw.PutBit(0, 0x80) // clamping type

	bw.PutFlag(o.Segments != nil, 0x80)
	if s := o.Segments; s != nil {
		bw.PutFlag(true, 0x80) // update map
		bw.PutFlag(true, 0x80) // update data
		bw.PutFlag(s.Absolute, 0x80)
		for _, q := range s.Quant {
			bw.PutOptionalSigned(q, 7)
		}
		for _, f := range s.Filter {
			bw.PutOptionalSigned(f, 6)
		}
		for _, p := range s.MapProbs {
			bw.PutFlag(p != 255, 0x80)
			if p != 255 {
				bw.PutValue(uint32(p), 8)
			}
		}
	}

	bw.PutFlag(o.SimpleFilter, 0x80)
	bw.PutValue(uint32(o.FilterLevel), 6)
	bw.PutValue(uint32(o.Sharpness), 3)
	bw.PutFlag(o.LFDeltas != nil, 0x80)
	if o.LFDeltas != nil {
		bw.PutFlag(true, 0x80)
		for _, d := range o.LFDeltas {
			bw.PutOptionalSigned(d, 6)
		}
	}

	bw.PutValue(uint32(o.PartitionBits), 2)

	bw.PutValue(uint32(o.BaseQ), 7)
	for _, d := range o.QuantDeltas {
		bw.PutOptionalSigned(d, 4)
	}

	bw.PutBit(0, 0x80) // refresh entropy probabilities

	for t := range e.probas {
		for b := range e.probas[t] {
			for c := range e.probas[t][b] {
				for i := range e.probas[t][b][c] {
					upd := vp8tab.CoeffsUpdateProba[t][b][c][i]
					if o.UpdateProbas && (t+b+c+i)%5 == 0 {
						p := uint8(1 + (t*67+b*31+c*17+i*7)%254)
						e.probas[t][b][c][i] = p
						bw.PutBit(1, upd)
						bw.PutValue(uint32(p), 8)
					} else {
						bw.PutBit(0, upd)
					}
				}
			}
		}
	}

	bw.PutFlag(o.SkipProba != 0, 0x80)
	if o.SkipProba != 0 {
		bw.PutValue(uint32(o.SkipProba), 8)
	}
}

func (mb *Macroblock) empty() bool {
	for i := range mb.Y {
		for j, l := range mb.Y[i] {
			if l != 0 && (mb.I4 || j > 0) {
				return false
			}
		}
	}
	for i := range mb.U {
		for j := range mb.U[i] {
			if mb.U[i][j] != 0 || mb.V[i][j] != 0 {
				return false
			}
		}
	}
	if !mb.I4 {
		for _, l := range mb.Y2 {
			if l != 0 {
				return false
			}
		}
	}
	return true
}

func (e *vp8Encoder) writeMacroblock(hdr, tokens *bitio.BoolWriter, x int, mb Macroblock) {
	o := &e.opts
	if o.Segments != nil {
		p := o.Segments.MapProbs
		s := mb.Segment
		if s < 2 {
			hdr.PutBit(0, p[0])
			hdr.PutBit(s, p[1])
		} else {
			hdr.PutBit(1, p[0])
			hdr.PutBit(s-2, p[2])
		}
	}

	skip := o.SkipProba != 0 && mb.empty()
	if o.SkipProba != 0 {
		hdr.PutFlag(skip, o.SkipProba)
	}

	top := e.intraT[4*x : 4*x+4]
	hdr.PutFlag(!mb.I4, 145)
	if !mb.I4 {
		switch mb.YMode {
		case vp8tab.TMPred:
			hdr.PutBit(1, 156)
			hdr.PutBit(1, 128)
		case vp8tab.HPred:
			hdr.PutBit(1, 156)
			hdr.PutBit(0, 128)
		case vp8tab.VPred:
			hdr.PutBit(0, 156)
			hdr.PutBit(1, 163)
		default:
			hdr.PutBit(0, 156)
			hdr.PutBit(0, 163)
		}
		for i := 0; i < 4; i++ {
			top[i] = mb.YMode
			e.intraL[i] = mb.YMode
		}
	} else {
		for by := 0; by < 4; by++ {
			left := e.intraL[by]
			for bx := 0; bx < 4; bx++ {
				mode := mb.BModes[4*by+bx]
				prob := &vp8tab.BModesProba[top[bx]][left]
				bits, idx := modePath(mode)
				for i, b := range bits {
					hdr.PutBit(b, prob[idx[i]])
				}
				top[bx] = mode
				left = mode
			}
			e.intraL[by] = left
		}
	}

	switch mb.UVMode {
	case vp8tab.VPred:
		hdr.PutBit(1, 142)
		hdr.PutBit(0, 114)
	case vp8tab.TMPred:
		hdr.PutBit(1, 142)
		hdr.PutBit(1, 114)
		hdr.PutBit(1, 183)
	case vp8tab.HPred:
		hdr.PutBit(1, 142)
		hdr.PutBit(1, 114)
		hdr.PutBit(0, 183)
	default:
		hdr.PutBit(0, 142)
	}

	tnz := &e.topNz[x]
	lnz := &e.leftNz
	if skip {
		for i := 0; i < 8; i++ {
			tnz[i], lnz[i] = 0, 0
		}
		if !mb.I4 {
			tnz[8], lnz[8] = 0, 0
		}
		return
	}

	first, yType := 0, 3
	if !mb.I4 {
		nz := e.writeCoeffs(tokens, 1, int(tnz[8]+lnz[8]), &mb.Y2, 0)
		tnz[8] = b2u(nz > 0)
		lnz[8] = tnz[8]
		first, yType = 1, 0
	}
	for by := 0; by < 4; by++ {
		for bx := 0; bx < 4; bx++ {
			nz := e.writeCoeffs(tokens, yType, int(tnz[bx]+lnz[by]), &mb.Y[4*by+bx], first)
			tnz[bx] = b2u(nz > first)
			lnz[by] = tnz[bx]
		}
	}
	for c, blocks := range [2]*[4][16]int{&mb.U, &mb.V} {
		base := 4 + 2*c
		for by := 0; by < 2; by++ {
			for bx := 0; bx < 2; bx++ {
				nz := e.writeCoeffs(tokens, 2, int(tnz[base+bx]+lnz[base+by]), &blocks[2*by+bx], 0)
				tnz[base+bx] = b2u(nz > 0)
				lnz[base+by] = tnz[base+bx]
			}
		}
	}
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// modePath returns the branch bits and probability indices leading to mode
// in the 4x4 mode tree.
func modePath(mode int) (bits, idx []int) {
	var walk func(node int) bool
	walk = func(node int) bool {
		for b := 0; b < 2; b++ {
			bits = append(bits, b)
			idx = append(idx, node)
			next := int(vp8tab.YModesIntra4[2*node+b])
			if next <= 0 {
				if -next == mode {
					return true
				}
			} else if walk(next) {
				return true
			}
			bits, idx = bits[:len(bits)-1], idx[:len(idx)-1]
		}
		return false
	}
	walk(0)
	return bits, idx
}

// writeCoeffs writes the levels of one block from scan position first and
// returns the position after the last non-zero level, or first if there is
// none.
func (e *vp8Encoder) writeCoeffs(bw *bitio.BoolWriter, typ, ctx int, levels *[16]int, first int) int {
	last, nz := -1, first
	for n := 15; n >= first; n-- {
		if levels[n] != 0 {
			last, nz = n, n+1
			break
		}
	}
	proba := func(n, c int) []uint8 {
		return e.probas[typ][vp8tab.Bands[n]][c][:]
	}

	p := proba(first, ctx)
	for n := first; n < 16; n++ {
		if n > last {
			bw.PutBit(0, p[0])
			return nz
		}
		bw.PutBit(1, p[0])
		for levels[n] == 0 {
			bw.PutBit(0, p[1])
			n++
			p = proba(n, 0)
		}
		bw.PutBit(1, p[1])
		v := levels[n]
		if v < 0 {
			v = -v
		}
		if v == 1 {
			bw.PutBit(0, p[2])
			p = proba(n+1, 1)
		} else {
			bw.PutBit(1, p[2])
			putLargeValue(bw, v, p)
			p = proba(n+1, 2)
		}
		bw.PutFlag(levels[n] < 0, 0x80)
	}
	return 16
}

var catTables = [4][]uint8{vp8tab.Cat3, vp8tab.Cat4, vp8tab.Cat5, vp8tab.Cat6}

// putLargeValue writes a magnitude of at least 2.
func putLargeValue(bw *bitio.BoolWriter, v int, p []uint8) {
	switch {
	case v == 2:
		bw.PutBit(0, p[3])
		bw.PutBit(0, p[4])
	case v <= 4:
		bw.PutBit(0, p[3])
		bw.PutBit(1, p[4])
		bw.PutBit(v-3, p[5])
	case v <= 6:
		bw.PutBit(1, p[3])
		bw.PutBit(0, p[6])
		bw.PutBit(0, p[7])
		bw.PutBit(v-5, 159)
	case v <= 10:
		bw.PutBit(1, p[3])
		bw.PutBit(0, p[6])
		bw.PutBit(1, p[7])
		bw.PutBit((v-7)>>1, 165)
		bw.PutBit((v-7)&1, 145)
	default:
		bw.PutBit(1, p[3])
		bw.PutBit(1, p[6])
		cat := 3
		for c := 0; c < 3; c++ {
			if v < 3+(8<<(c+1)) {
				cat = c
				break
			}
		}
		bit1, bit0 := cat>>1, cat&1
		bw.PutBit(bit1, p[8])
		bw.PutBit(bit0, p[9+bit1])
		extra := v - (3 + (8 << cat))
		tab := catTables[cat]
		nbits := len(tab) - 1
		for i, prob := range tab[:nbits] {
			bw.PutBit((extra>>(nbits-1-i))&1, prob)
		}
	}
}
