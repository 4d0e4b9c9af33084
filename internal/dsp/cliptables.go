package dsp

// Lookup tables for the loop filter. Each table is indexed with a signed
// value shifted by its offset.
var (
	sclip1 [1020 + 1020 + 1]int8 // [-1020, 1020] clipped to [-128, 127]
	sclip2 [112 + 112 + 1]int8   // [-112, 112] clipped to [-16, 15]
	clip1  [255 + 511 + 1]uint8  // [-255, 511] clipped to [0, 255]
	abs0   [255 + 255 + 1]uint8  // |v| for v in [-255, 255]
)

const (
	sclip1Offset = 1020
	sclip2Offset = 112
	clip1Offset  = 255
	abs0Offset   = 255
)

func initClipTables() {
	for i := range sclip1 {
		sclip1[i] = int8(clamp(i-sclip1Offset, -128, 127))
	}
	for i := range sclip2 {
		sclip2[i] = int8(clamp(i-sclip2Offset, -16, 15))
	}
	for i := range clip1 {
		clip1[i] = uint8(clamp(i-clip1Offset, 0, 255))
	}
	for i := range abs0 {
		v := i - abs0Offset
		if v < 0 {
			v = -v
		}
		abs0[i] = uint8(v)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clip8b clips v to [0, 255].
func Clip8b(v int) uint8 {
	if uint(v) <= 255 {
		return uint8(v)
	}
	if v < 0 {
		return 0
	}
	return 255
}
