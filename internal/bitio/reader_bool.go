// Package bitio provides the bit-level readers used by the WebP decoders.
//
// BoolReader implements the VP8 boolean arithmetic decoder and
// LosslessReader the little-endian bit packing of VP8L. The writer
// counterparts produce streams the readers accept and are used to build
// test bitstreams.
package bitio

import (
	"encoding/binary"
	"math/bits"
)

// boolWindow is the number of look-ahead bits loaded at once (7 bytes).
const boolWindow = 56

// BoolReader decodes symbols from a VP8 boolean-coded partition.
//
// The decoder keeps the current interval width minus one in rng, which stays
// in [127, 254] after normalisation, and up to 56 not yet consumed bits of the
// input in value.
type BoolReader struct {
	buf   []byte
	pos   int
	value uint64
	rng   uint32
	bits  int // position of the next undecoded bit in value, minus 8
	eof   bool
}

// NewBoolReader returns a reader positioned at the start of data.
func NewBoolReader(data []byte) *BoolReader {
	br := &BoolReader{buf: data, rng: 255 - 1, bits: -8}
	br.load()
	return br
}

// load refills value, 7 bytes at a time while possible.
func (br *BoolReader) load() {
	if br.pos+8 <= len(br.buf) {
		in := bits.ReverseBytes64(binary.LittleEndian.Uint64(br.buf[br.pos:]))
		br.value = br.value<<boolWindow | in>>(64-boolWindow)
		br.pos += boolWindow / 8
		br.bits += boolWindow
		return
	}
	switch {
	case br.pos < len(br.buf):
		br.value = br.value<<8 | uint64(br.buf[br.pos])
		br.pos++
		br.bits += 8
	case !br.eof:
		// One implicit zero byte is allowed past the end.
		br.value <<= 8
		br.bits += 8
		br.eof = true
	default:
		br.bits = 0
	}
}

// GetBit decodes one symbol whose probability of being 0 is prob/256.
func (br *BoolReader) GetBit(prob uint8) int {
	rng := br.rng
	if br.bits < 0 {
		br.load()
	}
	pos := uint(br.bits)
	split := (rng * uint32(prob)) >> 8
	value := uint32(br.value >> pos)
	bit := 0
	if value > split {
		bit = 1
		rng -= split
		br.value -= uint64(split+1) << pos
	} else {
		rng = split + 1
	}
	shift := 7 ^ (bits.Len32(rng) - 1)
	rng <<= uint(shift)
	br.bits -= shift
	br.rng = rng - 1
	return bit
}

// GetFlag is GetBit(prob) as a bool.
func (br *BoolReader) GetFlag(prob uint8) bool {
	return br.GetBit(prob) != 0
}

// GetValue reads an n-bit unsigned literal, most significant bit first.
func (br *BoolReader) GetValue(n int) uint32 {
	var v uint32
	for ; n > 0; n-- {
		v = v<<1 | uint32(br.GetBit(0x80))
	}
	return v
}

// GetSignedValue reads an n-bit magnitude followed by a sign bit.
func (br *BoolReader) GetSignedValue(n int) int32 {
	v := int32(br.GetValue(n))
	if br.GetBit(0x80) != 0 {
		return -v
	}
	return v
}

// GetSigned returns v or -v depending on one evenly distributed bit.
func (br *BoolReader) GetSigned(v int) int {
	if br.GetBit(0x80) != 0 {
		return -v
	}
	return v
}

// GetOptionalSigned reads a presence flag and, if set, an n-bit signed value.
func (br *BoolReader) GetOptionalSigned(n int) int {
	if br.GetBit(0x80) == 0 {
		return 0
	}
	return int(br.GetSignedValue(n))
}

// EOF reports whether decoding needed bits past the end of the input.
func (br *BoolReader) EOF() bool {
	return br.eof
}
