package bitio

// BoolWriter is the encoding counterpart of BoolReader. It emits symbols
// with the carry-propagating byte output of the VP8 reference encoder.
type BoolWriter struct {
	buf      []byte
	rng      uint32 // interval width, in [128, 255] after each symbol
	bottom   uint32
	bitCount int
}

// NewBoolWriter returns an empty writer.
func NewBoolWriter() *BoolWriter {
	return &BoolWriter{rng: 255, bitCount: 24}
}

// PutBit writes bit with probability prob/256 of being 0.
func (bw *BoolWriter) PutBit(bit int, prob uint8) {
	split := 1 + ((bw.rng - 1) * uint32(prob) >> 8)
	if bit != 0 {
		bw.bottom += split
		bw.rng -= split
	} else {
		bw.rng = split
	}
	for bw.rng < 128 {
		bw.rng <<= 1
		if bw.bottom&(1<<31) != 0 {
			bw.carry()
		}
		bw.bottom <<= 1
		bw.bitCount--
		if bw.bitCount == 0 {
			bw.buf = append(bw.buf, byte(bw.bottom>>24))
			bw.bottom &= 1<<24 - 1
			bw.bitCount = 8
		}
	}
}

// PutFlag writes a boolean with the given probability.
func (bw *BoolWriter) PutFlag(flag bool, prob uint8) {
	if flag {
		bw.PutBit(1, prob)
	} else {
		bw.PutBit(0, prob)
	}
}

// PutValue writes the n low bits of v, most significant first.
func (bw *BoolWriter) PutValue(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		bw.PutBit(int(v>>uint(i))&1, 0x80)
	}
}

// PutSignedValue writes an n-bit magnitude and a sign bit.
func (bw *BoolWriter) PutSignedValue(v int, n int) {
	if v < 0 {
		bw.PutValue(uint32(-v), n)
		bw.PutBit(1, 0x80)
		return
	}
	bw.PutValue(uint32(v), n)
	bw.PutBit(0, 0x80)
}

// PutOptionalSigned writes a presence flag followed, when v is non-zero,
// by v as a signed n-bit value.
func (bw *BoolWriter) PutOptionalSigned(v int, n int) {
	if v == 0 {
		bw.PutBit(0, 0x80)
		return
	}
	bw.PutBit(1, 0x80)
	bw.PutSignedValue(v, n)
}

func (bw *BoolWriter) carry() {
	for i := len(bw.buf) - 1; i >= 0; i-- {
		if bw.buf[i] != 0xff {
			bw.buf[i]++
			return
		}
		bw.buf[i] = 0
	}
}

// Finish flushes the pending state and returns the encoded bytes.
func (bw *BoolWriter) Finish() []byte {
	c := bw.bitCount
	v := bw.bottom
	if v&(1<<uint(32-c)) != 0 {
		bw.carry()
	}
	v <<= uint(c & 7)
	for c >>= 3; c > 0; c-- {
		v <<= 8
	}
	for i := 0; i < 4; i++ {
		bw.buf = append(bw.buf, byte(v>>24))
		v <<= 8
	}
	return bw.buf
}
