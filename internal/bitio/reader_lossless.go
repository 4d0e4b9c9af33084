package bitio

// maxReadBits is the widest field ReadBits accepts.
const maxReadBits = 24

// LosslessReader reads VP8L bit fields, least significant bit first.
//
// A 64-bit window holds the bits not yet consumed; it is refilled a byte at a
// time from the source buffer. Reading past the end of the input sets the
// end-of-stream flag and yields zero bits, so callers check IsEndOfStream at
// convenient points instead of after every field.
type LosslessReader struct {
	buf   []byte
	pos   int
	val   uint64
	nbits uint
	eos   bool
}

// NewLosslessReader returns a reader positioned at the start of data.
func NewLosslessReader(data []byte) *LosslessReader {
	br := &LosslessReader{buf: data}
	br.fill()
	return br
}

func (br *LosslessReader) fill() {
	for br.nbits <= 56 && br.pos < len(br.buf) {
		br.val |= uint64(br.buf[br.pos]) << br.nbits
		br.pos++
		br.nbits += 8
	}
}

func (br *LosslessReader) setEndOfStream() {
	br.eos = true
	br.val = 0
	br.nbits = 0
}

// ReadBits consumes n (0..24) bits and returns them.
func (br *LosslessReader) ReadBits(n int) uint32 {
	if br.eos || n < 0 || n > maxReadBits {
		br.setEndOfStream()
		return 0
	}
	if br.nbits < uint(n) {
		br.fill()
		if br.nbits < uint(n) {
			br.setEndOfStream()
			return 0
		}
	}
	v := uint32(br.val) & (1<<uint(n) - 1)
	br.val >>= uint(n)
	br.nbits -= uint(n)
	return v
}

// ReadBit consumes one bit and reports whether it was set.
func (br *LosslessReader) ReadBit() bool {
	return br.ReadBits(1) != 0
}

// PrefetchBits returns at least 32 upcoming bits without consuming them.
// Bits beyond the end of the input read as zero.
func (br *LosslessReader) PrefetchBits() uint32 {
	if br.nbits < 32 {
		br.fill()
	}
	return uint32(br.val)
}

// SkipBits consumes n bits previously inspected with PrefetchBits.
func (br *LosslessReader) SkipBits(n int) {
	if uint(n) > br.nbits {
		br.setEndOfStream()
		return
	}
	br.val >>= uint(n)
	br.nbits -= uint(n)
}

// IsEndOfStream reports whether a read went past the end of the input.
func (br *LosslessReader) IsEndOfStream() bool {
	return br.eos
}
