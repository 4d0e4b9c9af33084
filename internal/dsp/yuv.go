package dsp

// BT.601 YUV to RGB conversion in 14-bit fixed point. The bias constants
// absorb the 16 luma and 128 chroma offsets.
const (
	yuvFix2 = 6
	yuvMask = 256<<yuvFix2 - 1

	kYScale = 19077
	kVToR   = 26149
	kUToG   = 6419
	kVToG   = 13320
	kUToB   = 33050

	kRBias = 14234
	kGBias = 8708
	kBBias = 17685
)

// MultHi returns (v * coeff) >> 8.
func MultHi(v, coeff int) int {
	return (v * coeff) >> 8
}

func clip8(v int) uint8 {
	if v&^yuvMask == 0 {
		return uint8(v >> yuvFix2)
	}
	if v < 0 {
		return 0
	}
	return 255
}

// YUVToR returns the red component of (y, v).
func YUVToR(y, v int) uint8 {
	return clip8(MultHi(y, kYScale) + MultHi(v, kVToR) - kRBias)
}

// YUVToG returns the green component of (y, u, v).
func YUVToG(y, u, v int) uint8 {
	return clip8(MultHi(y, kYScale) - MultHi(u, kUToG) - MultHi(v, kVToG) + kGBias)
}

// YUVToB returns the blue component of (y, u).
func YUVToB(y, u int) uint8 {
	return clip8(MultHi(y, kYScale) + MultHi(u, kUToB) - kBBias)
}

// YUVToBGR writes the B, G and R bytes of one pixel to bgr.
func YUVToBGR(y, u, v int, bgr []byte) {
	_ = bgr[2]
	bgr[0] = YUVToB(y, u)
	bgr[1] = YUVToG(y, u, v)
	bgr[2] = YUVToR(y, v)
}
