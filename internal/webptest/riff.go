package webptest

import "encoding/binary"

// VP8X feature flags.
const (
	AnimationFlag = 0x02
	XMPFlag       = 0x04
	EXIFFlag      = 0x08
	AlphaFlag     = 0x10
	ICCPFlag      = 0x20
)

// Chunk returns a RIFF chunk with its header and padding byte.
func Chunk(fourcc string, payload []byte) []byte {
	b := make([]byte, 8, 8+len(payload)+1)
	copy(b, fourcc)
	binary.LittleEndian.PutUint32(b[4:], uint32(len(payload)))
	b = append(b, payload...)
	if len(payload)&1 == 1 {
		b = append(b, 0)
	}
	return b
}

// RIFF wraps chunks into a RIFF/WEBP file.
func RIFF(chunks ...[]byte) []byte {
	size := 4
	for _, c := range chunks {
		size += len(c)
	}
	b := make([]byte, 12, 8+size)
	copy(b, "RIFF")
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	copy(b[8:], "WEBP")
	for _, c := range chunks {
		b = append(b, c...)
	}
	return b
}

// VP8X returns a VP8X chunk for a canvas of width x height.
func VP8X(flags byte, width, height int) []byte {
	p := make([]byte, 10)
	p[0] = flags
	putLE24(p[4:], width-1)
	putLE24(p[7:], height-1)
	return Chunk("VP8X", p)
}

func putLE24(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Lossless returns a simple-format file holding a VP8L image.
func Lossless(width, height int, argb []uint32, opts VP8LOptions) []byte {
	return RIFF(Chunk("VP8L", EncodeVP8L(width, height, argb, opts)))
}

// LossyWithAlpha returns an extended-format file holding a VP8 frame and
// an ALPH chunk.
func LossyWithAlpha(width, height int, alph, vp8 []byte) []byte {
	return RIFF(VP8X(AlphaFlag, width, height), Chunk("ALPH", alph), Chunk("VP8 ", vp8))
}
