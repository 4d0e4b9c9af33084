package webptest

import (
	"math/bits"

	"github.com/dany5639/webp/internal/bitio"
)

// prefixCode is a canonical prefix code. A code with a single symbol
// writes no bits.
type prefixCode struct {
	lengths []int
	codes   []uint32
	single  bool
}

func (c *prefixCode) write(bw *bitio.LosslessWriter, symbol int) {
	if c.single {
		return
	}
	if c.lengths[symbol] == 0 {
		panic("webptest: symbol without code")
	}
	bw.WriteCode(c.codes[symbol], c.lengths[symbol])
}

// newPrefixCode assigns canonical codes to lengths: shorter codes first,
// ties broken by symbol order.
func newPrefixCode(lengths []int) prefixCode {
	c := prefixCode{lengths: lengths, codes: make([]uint32, len(lengths))}
	var count [16]int
	used := 0
	for _, l := range lengths {
		if l > 0 {
			count[l]++
			used++
		}
	}
	c.single = used == 1
	var next [16]uint32
	code := uint32(0)
	for l := 1; l < 16; l++ {
		next[l] = code
		code = (code + uint32(count[l])) << 1
	}
	for s, l := range lengths {
		if l > 0 {
			c.codes[s] = next[l]
			next[l]++
		}
	}
	return c
}

// flatLengths returns complete code lengths for the symbols with a non-zero
// count: with k = ceil(log2(n)) for n used symbols, the first 2^k-n get
// length k-1 and the rest length k.
func flatLengths(hist []int) []int {
	lengths := make([]int, len(hist))
	var used []int
	for s, n := range hist {
		if n > 0 {
			used = append(used, s)
		}
	}
	switch len(used) {
	case 0:
		lengths[0] = 1
		return lengths
	case 1:
		lengths[used[0]] = 1
		return lengths
	}
	k := bits.Len(uint(len(used) - 1))
	short := 1<<k - len(used)
	for i, s := range used {
		if i < short {
			lengths[s] = k - 1
		} else {
			lengths[s] = k
		}
	}
	return lengths
}

// clToken is one symbol of the code-length code with its repeat bits.
type clToken struct {
	symbol    int
	extraBits int
	extra     int
}

// codeLengthTokens run-length codes lengths with symbols 16, 17 and 18.
func codeLengthTokens(lengths []int) []clToken {
	var tokens []clToken
	for i := 0; i < len(lengths); {
		l := lengths[i]
		run := 1
		for i+run < len(lengths) && lengths[i+run] == l {
			run++
		}
		if l == 0 {
			for run > 0 {
				switch {
				case run >= 11:
					n := min(run, 138)
					tokens = append(tokens, clToken{18, 7, n - 11})
					run -= n
					i += n
				case run >= 3:
					tokens = append(tokens, clToken{17, 3, run - 3})
					i += run
					run = 0
				default:
					tokens = append(tokens, clToken{0, 0, 0})
					run--
					i++
				}
			}
			continue
		}
		tokens = append(tokens, clToken{l, 0, 0})
		i++
		run--
		for run > 0 {
			if run < 3 {
				tokens = append(tokens, clToken{l, 0, 0})
				run--
				i++
				continue
			}
			n := min(run, 6)
			tokens = append(tokens, clToken{16, 2, n - 3})
			run -= n
			i += n
		}
	}
	return tokens
}

// writePrefixCode writes a prefix code covering the symbols counted in hist
// and returns it. Up to two literal-sized symbols use the simple form.
func (e *encoder) writePrefixCode(hist []int) prefixCode {
	lengths := flatLengths(hist)
	var used []int
	for s, l := range lengths {
		if l > 0 {
			used = append(used, s)
		}
	}

	if len(used) <= 2 && used[len(used)-1] < 256 {
		e.bw.WriteBits(1, 1)
		e.bw.WriteBits(uint32(len(used)-1), 1)
		if used[0] < 2 {
			e.bw.WriteBits(0, 1)
			e.bw.WriteBits(uint32(used[0]), 1)
		} else {
			e.bw.WriteBits(1, 1)
			e.bw.WriteBits(uint32(used[0]), 8)
		}
		if len(used) == 2 {
			e.bw.WriteBits(uint32(used[1]), 8)
		}
		return newPrefixCode(lengths)
	}

	e.bw.WriteBits(0, 1)
	tokens := codeLengthTokens(lengths)

	// Trailing zero runs are dropped and announced through max_symbol.
	trimmed := len(tokens)
	for trimmed > 2 && (tokens[trimmed-1].symbol == 0 || tokens[trimmed-1].symbol == 17 || tokens[trimmed-1].symbol == 18) {
		trimmed--
	}

	clHist := make([]int, 19)
	for _, t := range tokens[:trimmed] {
		clHist[t.symbol]++
	}
	clLengths := flatLengths(clHist)
	numCodes := 4
	for i, s := range codeLengthOrder {
		if clLengths[s] > 0 && i+1 > numCodes {
			numCodes = i + 1
		}
	}
	e.bw.WriteBits(uint32(numCodes-4), 4)
	for _, s := range codeLengthOrder[:numCodes] {
		e.bw.WriteBits(uint32(clLengths[s]), 3)
	}

	if trimmed < len(tokens) {
		e.bw.WriteBits(1, 1)
		v := trimmed - 2
		n3 := 0
		for v >= 1<<(2+2*n3) {
			n3++
		}
		e.bw.WriteBits(uint32(n3), 3)
		e.bw.WriteBits(uint32(v), 2+2*n3)
	} else {
		e.bw.WriteBits(0, 1)
	}

	clCode := newPrefixCode(clLengths)
	for _, t := range tokens[:trimmed] {
		clCode.write(e.bw, t.symbol)
		e.bw.WriteBits(uint32(t.extra), t.extraBits)
	}
	return newPrefixCode(lengths)
}
