// Package webptest builds small, deterministic WebP bitstreams for tests:
// VP8L images exercising every coding tool, flat VP8 key frames, ALPH
// payloads and RIFF containers.
package webptest

import (
	"math/bits"

	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/dsp"
)

// VP8LOptions selects the VP8L coding tools used by EncodeVP8L. The zero
// value writes plain literals with one group of prefix codes.
type VP8LOptions struct {
	Palette        bool // color indexing; the image must have at most 256 colors
	SubtractGreen  bool
	PredictorBits  int // tile size exponent of a predictor transform, 0 for none
	CrossColorBits int // tile size exponent of a cross-color transform, 0 for none
	ColorCacheBits int // 0 disables the color cache
	BackwardRefs   bool
	MetaBits       int // tile size exponent of meta prefix codes, 0 for none
}

const (
	numLiteralCodes  = 256
	numLengthCodes   = 24
	numDistanceCodes = 40
	maxCopyLength    = 4096
	distanceOnePlane = 2 // plane code of the left neighbour
)

var codeLengthOrder = [19]int{17, 18, 0, 1, 2, 3, 4, 5, 16, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

// EncodeVP8L returns a VP8L chunk payload (header included) for the ARGB
// pixels argb of a width x height image.
func EncodeVP8L(width, height int, argb []uint32, opts VP8LOptions) []byte {
	bw := bitio.NewLosslessWriter()
	bw.WriteBits(0x2f, 8)
	bw.WriteBits(uint32(width-1), 14)
	bw.WriteBits(uint32(height-1), 14)
	alpha := uint32(0)
	for _, p := range argb {
		if p>>24 != 0xff {
			alpha = 1
			break
		}
	}
	bw.WriteBits(alpha, 1)
	bw.WriteBits(0, 3)
	e := &encoder{bw: bw, opts: opts}
	e.writeImage(width, height, argb)
	return bw.Bytes()
}

// EncodeVP8LStream returns a VP8L image stream without header, as stored
// in lossless ALPH chunks.
func EncodeVP8LStream(width, height int, argb []uint32, opts VP8LOptions) []byte {
	bw := bitio.NewLosslessWriter()
	e := &encoder{bw: bw, opts: opts}
	e.writeImage(width, height, argb)
	return bw.Bytes()
}

type encoder struct {
	bw   *bitio.LosslessWriter
	opts VP8LOptions
}

// writeImage applies the forward transforms, in the order they are
// written, then writes the top level entropy-coded image.
func (e *encoder) writeImage(width, height int, argb []uint32) {
	pix := append([]uint32(nil), argb...)
	xsize := width

	if e.opts.Palette {
		e.bw.WriteBits(1, 1)
		e.bw.WriteBits(3, 2)
		pix, xsize = e.writePalette(xsize, height, pix)
	}
	if e.opts.SubtractGreen {
		e.bw.WriteBits(1, 1)
		e.bw.WriteBits(2, 2)
		for i, p := range pix {
			g := (p >> 8) & 0xff
			r := ((p >> 16) - g) & 0xff
			b := (p - g) & 0xff
			pix[i] = p&0xff00ff00 | r<<16 | b
		}
	}
	if e.opts.PredictorBits > 0 {
		e.bw.WriteBits(1, 1)
		e.bw.WriteBits(0, 2)
		pix = e.writePredictor(xsize, height, pix)
	}
	if e.opts.CrossColorBits > 0 {
		e.bw.WriteBits(1, 1)
		e.bw.WriteBits(1, 2)
		pix = e.writeCrossColor(xsize, height, pix)
	}
	e.bw.WriteBits(0, 1)
	e.writeImageStream(xsize, height, pix, true)
}

func subSampleSize(size, bits int) int {
	return (size + 1<<bits - 1) >> bits
}

func subPixels(a, b uint32) uint32 {
	ag := 0x00ff00ff + (a & 0xff00ff00) - (b & 0xff00ff00)
	rb := 0xff00ff00 + (a & 0x00ff00ff) - (b & 0x00ff00ff)
	return ag&0xff00ff00 | rb&0x00ff00ff
}

func (e *encoder) writePalette(width, height int, pix []uint32) ([]uint32, int) {
	var palette []uint32
	index := map[uint32]int{}
	for _, p := range pix {
		if _, ok := index[p]; !ok {
			index[p] = len(palette)
			palette = append(palette, p)
		}
	}
	if len(palette) > 256 {
		panic("webptest: more than 256 colors")
	}
	e.bw.WriteBits(uint32(len(palette)-1), 8)
	delta := make([]uint32, len(palette))
	delta[0] = palette[0]
	for i := 1; i < len(palette); i++ {
		delta[i] = subPixels(palette[i], palette[i-1])
	}
	e.writeImageStream(len(palette), 1, delta, false)

	xbits := 0
	switch n := len(palette); {
	case n <= 2:
		xbits = 3
	case n <= 4:
		xbits = 2
	case n <= 16:
		xbits = 1
	}
	packedWidth := subSampleSize(width, xbits)
	bitsPerPixel := 8 >> xbits
	out := make([]uint32, packedWidth*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := uint32(index[pix[y*width+x]])
			shift := uint(bitsPerPixel * (x & (1<<xbits - 1)))
			out[y*packedWidth+x>>xbits] |= 0xff000000 | idx<<(8+shift)
		}
	}
	return out, packedWidth
}

// PredictorMode returns the predictor mode EncodeVP8L uses for tile
// (tx, ty). Every mode appears in images of at least 14 tiles.
func PredictorMode(tx, ty int) int {
	return (tx + 3*ty) % 14
}

func (e *encoder) writePredictor(width, height int, pix []uint32) []uint32 {
	tbits := e.opts.PredictorBits
	e.bw.WriteBits(uint32(tbits-2), 3)
	tw, th := subSampleSize(width, tbits), subSampleSize(height, tbits)
	modes := make([]uint32, tw*th)
	for ty := 0; ty < th; ty++ {
		for tx := 0; tx < tw; tx++ {
			modes[ty*tw+tx] = 0xff000000 | uint32(PredictorMode(tx, ty))<<8
		}
	}
	e.writeImageStream(tw, th, modes, false)

	res := make([]uint32, len(pix))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			var pred uint32
			switch {
			case i == 0:
				pred = dsp.ARGBBlack
			case y == 0:
				pred = pix[i-1]
			case x == 0:
				pred = pix[i-width]
			default:
				mode := PredictorMode(x>>tbits, y>>tbits)
				pred = dsp.LosslessPredictors[mode](pix[i-1], pix[i-width-1:])
			}
			res[i] = subPixels(pix[i], pred)
		}
	}
	return res
}

// CrossColorMultipliers returns the multipliers EncodeVP8L uses for tile
// (tx, ty).
func CrossColorMultipliers(tx, ty int) dsp.Multipliers {
	return dsp.Multipliers{
		GreenToRed:  int8(17*tx + 5*ty - 40),
		GreenToBlue: int8(-23*tx + 9*ty + 3),
		RedToBlue:   int8(31*tx - 13*ty + 7),
	}
}

func colorDelta(mult, color int8) int32 {
	return (int32(mult) * int32(color)) >> 5
}

func (e *encoder) writeCrossColor(width, height int, pix []uint32) []uint32 {
	tbits := e.opts.CrossColorBits
	e.bw.WriteBits(uint32(tbits-2), 3)
	tw, th := subSampleSize(width, tbits), subSampleSize(height, tbits)
	codes := make([]uint32, tw*th)
	for ty := 0; ty < th; ty++ {
		for tx := 0; tx < tw; tx++ {
			m := CrossColorMultipliers(tx, ty)
			codes[ty*tw+tx] = 0xff000000 | uint32(uint8(m.RedToBlue))<<16 | uint32(uint8(m.GreenToBlue))<<8 | uint32(uint8(m.GreenToRed))
		}
	}
	e.writeImageStream(tw, th, codes, false)

	out := make([]uint32, len(pix))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pix[y*width+x]
			m := CrossColorMultipliers(x>>tbits, y>>tbits)
			green := int8(p >> 8)
			red := int32(p>>16) & 0xff
			blue := int32(p) & 0xff
			newRed := (red - colorDelta(m.GreenToRed, green)) & 0xff
			newBlue := (blue - colorDelta(m.GreenToBlue, green) - colorDelta(m.RedToBlue, int8(red))) & 0xff
			out[y*width+x] = p&0xff00ff00 | uint32(newRed)<<16 | uint32(newBlue)
		}
	}
	return out
}

// token is one element of the entropy-coded pixel stream.
type token struct {
	pos    int
	kind   int // tokenLiteral, tokenCache or tokenCopy
	argb   uint32
	key    int
	length int
}

const (
	tokenLiteral = iota
	tokenCache
	tokenCopy
)

func hashPix(argb uint32, cacheBits int) int {
	return int((argb * 0x1e35a7bd) >> uint(32-cacheBits))
}

func tokenize(pix []uint32, cacheBits int, backwardRefs bool) []token {
	var cache []uint32
	if cacheBits > 0 {
		cache = make([]uint32, 1<<cacheBits)
	}
	insert := func(p uint32) {
		if cache != nil {
			cache[hashPix(p, cacheBits)] = p
		}
	}

	var tokens []token
	for i := 0; i < len(pix); {
		if backwardRefs && i > 0 {
			run := 0
			for i+run < len(pix) && run < maxCopyLength && pix[i+run] == pix[i-1] {
				run++
			}
			if run >= 3 {
				tokens = append(tokens, token{pos: i, kind: tokenCopy, length: run})
				for j := 0; j < run; j++ {
					insert(pix[i+j])
				}
				i += run
				continue
			}
		}
		p := pix[i]
		if cache != nil && cache[hashPix(p, cacheBits)] == p {
			tokens = append(tokens, token{pos: i, kind: tokenCache, key: hashPix(p, cacheBits)})
		} else {
			tokens = append(tokens, token{pos: i, kind: tokenLiteral, argb: p})
		}
		insert(p)
		i++
	}
	return tokens
}

// prefixEncode splits a copy length or distance code into its prefix
// symbol and extra bits.
func prefixEncode(v int) (symbol, extraBits, extra int) {
	d := v - 1
	if d < 2 {
		return d, 0, 0
	}
	highest := bits.Len(uint(d)) - 1
	second := (d >> (highest - 1)) & 1
	extraBits = highest - 1
	return 2*highest + second, extraBits, d & (1<<extraBits - 1)
}

// writeImageStream writes the color cache flag, the prefix codes and the
// pixels of one image level.
func (e *encoder) writeImageStream(width, height int, pix []uint32, level0 bool) {
	cacheBits, backwardRefs, metaBits := 0, false, 0
	if level0 {
		cacheBits, backwardRefs, metaBits = e.opts.ColorCacheBits, e.opts.BackwardRefs, e.opts.MetaBits
	}
	if cacheBits > 0 {
		e.bw.WriteBits(1, 1)
		e.bw.WriteBits(uint32(cacheBits), 4)
	} else {
		e.bw.WriteBits(0, 1)
	}

	groupOf := func(pos int) int { return 0 }
	numGroups := 1
	if level0 {
		if metaBits > 0 {
			e.bw.WriteBits(1, 1)
			e.bw.WriteBits(uint32(metaBits-2), 3)
			tw, th := subSampleSize(width, metaBits), subSampleSize(height, metaBits)
			groups := make([]uint32, tw*th)
			for ty := 0; ty < th; ty++ {
				for tx := 0; tx < tw; tx++ {
					groups[ty*tw+tx] = uint32((tx+ty)&1) << 8
				}
			}
			e.writeImageStream(tw, th, groups, false)
			if tw*th > 1 {
				numGroups = 2
			}
			groupOf = func(pos int) int {
				x, y := pos%width, pos/width
				return int(groups[(y>>metaBits)*tw+x>>metaBits] >> 8)
			}
		} else {
			e.bw.WriteBits(0, 1)
		}
	}

	tokens := tokenize(pix, cacheBits, backwardRefs)
	greenSize := numLiteralCodes + numLengthCodes
	if cacheBits > 0 {
		greenSize += 1 << cacheBits
	}
	sizes := [5]int{greenSize, numLiteralCodes, numLiteralCodes, numLiteralCodes, numDistanceCodes}
	hists := make([][5][]int, numGroups)
	for g := range hists {
		for i, n := range sizes {
			hists[g][i] = make([]int, n)
		}
	}
	for _, t := range tokens {
		h := &hists[groupOf(t.pos)]
		switch t.kind {
		case tokenLiteral:
			h[0][(t.argb>>8)&0xff]++
			h[1][(t.argb>>16)&0xff]++
			h[2][t.argb&0xff]++
			h[3][t.argb>>24]++
		case tokenCache:
			h[0][numLiteralCodes+numLengthCodes+t.key]++
		case tokenCopy:
			ls, _, _ := prefixEncode(t.length)
			ds, _, _ := prefixEncode(distanceOnePlane)
			h[0][numLiteralCodes+ls]++
			h[4][ds]++
		}
	}

	codes := make([][5]prefixCode, numGroups)
	for g := range codes {
		for i := range sizes {
			codes[g][i] = e.writePrefixCode(hists[g][i])
		}
	}

	for _, t := range tokens {
		c := &codes[groupOf(t.pos)]
		switch t.kind {
		case tokenLiteral:
			c[0].write(e.bw, int(t.argb>>8)&0xff)
			c[1].write(e.bw, int(t.argb>>16)&0xff)
			c[2].write(e.bw, int(t.argb)&0xff)
			c[3].write(e.bw, int(t.argb>>24))
		case tokenCache:
			c[0].write(e.bw, numLiteralCodes+numLengthCodes+t.key)
		case tokenCopy:
			ls, lbits, lextra := prefixEncode(t.length)
			c[0].write(e.bw, numLiteralCodes+ls)
			e.bw.WriteBits(uint32(lextra), lbits)
			ds, dbits, dextra := prefixEncode(distanceOnePlane)
			c[4].write(e.bw, ds)
			e.bw.WriteBits(uint32(dextra), dbits)
		}
	}
}
