package bitio

// LosslessWriter packs VP8L bit fields, least significant bit first. It is
// the counterpart of LosslessReader.
type LosslessWriter struct {
	buf  []byte
	acc  uint64
	used uint
}

// NewLosslessWriter returns an empty writer.
func NewLosslessWriter() *LosslessWriter {
	return &LosslessWriter{}
}

// WriteBits appends the n (0..32) low bits of v.
func (bw *LosslessWriter) WriteBits(v uint32, n int) {
	if n == 0 {
		return
	}
	bw.acc |= uint64(v&uint32(1<<uint(n)-1)) << bw.used
	bw.used += uint(n)
	for bw.used >= 8 {
		bw.buf = append(bw.buf, byte(bw.acc))
		bw.acc >>= 8
		bw.used -= 8
	}
}

// WriteBit appends a single bit.
func (bw *LosslessWriter) WriteBit(b bool) {
	if b {
		bw.WriteBits(1, 1)
	} else {
		bw.WriteBits(0, 1)
	}
}

// WriteCode appends a prefix code of the given length. Codes are stored most
// significant bit first, which is the reverse of the field order.
func (bw *LosslessWriter) WriteCode(code uint32, length int) {
	var rev uint32
	for i := 0; i < length; i++ {
		rev = rev<<1 | (code>>uint(i))&1
	}
	bw.WriteBits(rev, length)
}

// Bytes returns the written bytes, zero-padding the final partial byte.
func (bw *LosslessWriter) Bytes() []byte {
	out := append([]byte(nil), bw.buf...)
	if bw.used > 0 {
		out = append(out, byte(bw.acc))
	}
	return out
}

// Len returns the number of bits written.
func (bw *LosslessWriter) Len() int {
	return len(bw.buf)*8 + int(bw.used)
}
