package webptest

// Alpha filter methods.
const (
	FilterNone = iota
	FilterHorizontal
	FilterVertical
	FilterGradient
)

// FilterAlpha applies the forward prediction filter method to a
// width x height plane and returns the residuals.
func FilterAlpha(method int, plane []byte, width, height int) []byte {
	out := make([]byte, len(plane))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			var pred byte
			switch {
			case method == FilterNone:
			case x == 0 && y == 0:
			case y == 0:
				pred = plane[i-1]
			case x == 0:
				pred = plane[i-width]
			case method == FilterHorizontal:
				pred = plane[i-1]
			case method == FilterVertical:
				pred = plane[i-width]
			default:
				g := int(plane[i-1]) + int(plane[i-width]) - int(plane[i-width-1])
				pred = byte(min(max(g, 0), 255))
			}
			out[i] = plane[i] - pred
		}
	}
	return out
}

// AlphaRaw returns an uncompressed ALPH payload.
func AlphaRaw(method int, plane []byte, width, height int) []byte {
	return append([]byte{byte(method << 2)}, FilterAlpha(method, plane, width, height)...)
}

// AlphaLossless returns an ALPH payload compressed as a VP8L stream.
func AlphaLossless(method int, plane []byte, width, height int, opts VP8LOptions) []byte {
	res := FilterAlpha(method, plane, width, height)
	argb := make([]uint32, len(res))
	for i, a := range res {
		argb[i] = 0xff000000 | uint32(a)<<8
	}
	return append([]byte{byte(method<<2 | 1)}, EncodeVP8LStream(width, height, argb, opts)...)
}
