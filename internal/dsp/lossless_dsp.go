package dsp

// VP8L inverse colour transforms. These operate on slices of ARGB pixels.

// AddGreenToBlueAndRed adds the green channel to the red and blue channels
// of every pixel. This undoes the subtract-green transform.
func AddGreenToBlueAndRed(argb []uint32) {
	for i, p := range argb {
		green := (p >> 8) & 0xff
		redBlue := ((p & 0x00ff00ff) + green*0x00010001) & 0x00ff00ff
		argb[i] = (p & 0xff00ff00) | redBlue
	}
}

// Multipliers holds the VP8L colour-space transform multipliers of one tile.
type Multipliers struct {
	GreenToRed  int8
	GreenToBlue int8
	RedToBlue   int8
}

// MultipliersFromCode unpacks the multipliers stored in a transform pixel:
// green-to-red in the blue byte, green-to-blue in the green byte and
// red-to-blue in the red byte.
func MultipliersFromCode(code uint32) Multipliers {
	return Multipliers{
		GreenToRed:  int8(code),
		GreenToBlue: int8(code >> 8),
		RedToBlue:   int8(code >> 16),
	}
}

func colorTransformDelta(mult, color int8) int32 {
	return (int32(mult) * int32(color)) >> 5
}

// TransformColorInverse undoes the colour-space transform on src, writing
// the result to dst. The red-to-blue term uses the restored red value.
func TransformColorInverse(m Multipliers, src, dst []uint32) {
	for i, argb := range src {
		green := int8(argb >> 8)
		red := int32(argb>>16) & 0xff
		blue := int32(argb) & 0xff

		red = (red + colorTransformDelta(m.GreenToRed, green)) & 0xff
		blue += colorTransformDelta(m.GreenToBlue, green)
		blue = (blue + colorTransformDelta(m.RedToBlue, int8(red))) & 0xff

		dst[i] = (argb & 0xff00ff00) | uint32(red)<<16 | uint32(blue)
	}
}

// MapColor32b replaces every pixel with the palette entry selected by its
// green channel.
func MapColor32b(src, colorMap, dst []uint32) {
	for i, p := range src {
		dst[i] = colorMap[(p>>8)&0xff]
	}
}
