package lossless

import (
	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/webperr"
)

// HuffmanCode is a single entry in a prefix code lookup table. In the root
// table an entry whose Bits exceeds the root size links to a second-level
// table: Value is the table's offset and Bits minus the root size its width.
// Otherwise Bits is the code length consumed at this level and Value the
// decoded symbol.
type HuffmanCode struct {
	Bits  uint8
	Value uint16
}

// HuffmanTable is a two-level lookup table for one prefix code.
type HuffmanTable struct {
	codes    []HuffmanCode
	rootBits int
}

// HTreeGroup bundles the 5 prefix codes used for one meta code group.
type HTreeGroup struct {
	HTrees [HuffmanCodesPerMetaCode]HuffmanTable
}

// BuildHuffmanTable constructs a two-level lookup table from code lengths
// indexed by symbol. The lengths must describe a complete prefix code,
// except that a single used symbol is accepted and decodes with zero bits.
func BuildHuffmanTable(rootBits int, codeLengths []int) (HuffmanTable, error) {
	var count [MaxAllowedCodeLength + 1]int
	numUsed, lastUsed := 0, 0
	for symbol, l := range codeLengths {
		if l < 0 || l > MaxAllowedCodeLength {
			return HuffmanTable{}, webperr.BitstreamError.Errorf("vp8l", "code length %d out of range", l)
		}
		if l > 0 {
			count[l]++
			numUsed++
			lastUsed = symbol
		}
	}

	rootSize := 1 << rootBits
	switch numUsed {
	case 0:
		return HuffmanTable{}, webperr.BitstreamError.Errorf("vp8l", "prefix code has no symbols")
	case 1:
		codes := make([]HuffmanCode, rootSize)
		for i := range codes {
			codes[i] = HuffmanCode{Value: uint16(lastUsed)}
		}
		return HuffmanTable{codes: codes, rootBits: rootBits}, nil
	}

	// Kraft sum: every level must leave a non-negative number of open
	// slots, and none may remain at the end.
	open := 1
	for l := 1; l <= MaxAllowedCodeLength; l++ {
		open = open<<1 - count[l]
		if open < 0 {
			return HuffmanTable{}, webperr.BitstreamError.Errorf("vp8l", "over-subscribed prefix code")
		}
	}
	if open != 0 {
		return HuffmanTable{}, webperr.BitstreamError.Errorf("vp8l", "incomplete prefix code")
	}

	// Canonical codes, assigned in symbol order within each length.
	var next [MaxAllowedCodeLength + 1]int
	code := 0
	for l := 1; l <= MaxAllowedCodeLength; l++ {
		next[l] = code
		code = (code + count[l]) << 1
	}

	// Codes are stored bit-reversed since the reader yields the first code
	// bit in the least significant position.
	reversed := make([]uint16, len(codeLengths))
	subBits := make([]int, rootSize)
	rootMask := rootSize - 1
	for symbol, l := range codeLengths {
		if l == 0 {
			continue
		}
		r := reverseBits(next[l], l)
		next[l]++
		reversed[symbol] = uint16(r)
		if l > rootBits {
			if w := l - rootBits; w > subBits[r&rootMask] {
				subBits[r&rootMask] = w
			}
		}
	}

	total := rootSize
	offsets := make([]int, rootSize)
	for i, w := range subBits {
		if w > 0 {
			offsets[i] = total
			total += 1 << w
		}
	}

	codes := make([]HuffmanCode, total)
	for i, w := range subBits {
		if w > 0 {
			codes[i] = HuffmanCode{Bits: uint8(rootBits + w), Value: uint16(offsets[i])}
		}
	}
	for symbol, l := range codeLengths {
		if l == 0 {
			continue
		}
		r := int(reversed[symbol])
		if l <= rootBits {
			for i := r; i < rootSize; i += 1 << l {
				codes[i] = HuffmanCode{Bits: uint8(l), Value: uint16(symbol)}
			}
			continue
		}
		root := r & rootMask
		w := subBits[root]
		for i := r >> rootBits; i < 1<<w; i += 1 << (l - rootBits) {
			codes[offsets[root]+i] = HuffmanCode{Bits: uint8(l - rootBits), Value: uint16(symbol)}
		}
	}
	return HuffmanTable{codes: codes, rootBits: rootBits}, nil
}

func reverseBits(code, length int) int {
	r := 0
	for i := 0; i < length; i++ {
		r = r<<1 | (code>>i)&1
	}
	return r
}

// IsTrivial reports whether the code has a single symbol and consumes no
// bits.
func (t *HuffmanTable) IsTrivial() bool {
	return t.codes[0].Bits == 0
}

// ReadSymbol decodes the next symbol from br.
func (t *HuffmanTable) ReadSymbol(br *bitio.LosslessReader) int {
	bits := br.PrefetchBits()
	rootMask := uint32(1)<<t.rootBits - 1
	entry := t.codes[bits&rootMask]
	if int(entry.Bits) > t.rootBits {
		sub := uint32(1)<<(int(entry.Bits)-t.rootBits) - 1
		br.SkipBits(t.rootBits)
		entry = t.codes[int(entry.Value)+int((bits>>t.rootBits)&sub)]
	}
	br.SkipBits(int(entry.Bits))
	return int(entry.Value)
}
