package lossless

// decode_transform.go reads VP8L transforms from the bitstream and applies
// their inverses to the decoded pixels.

import (
	"github.com/dany5639/webp/internal/dsp"
	"github.com/dany5639/webp/internal/webperr"
)

// transform is one VP8L image transform.
type transform struct {
	kind  TransformType
	bits  int      // tile size exponent, or pixel bundling exponent for color indexing
	xsize int      // width of the image the inverse transform produces
	ysize int      // height of that image
	data  []uint32 // tile data, or the 256-entry palette
}

// readTransform reads a single transform. It returns the width of the
// image that follows, which color indexing may reduce by bundling.
func (dec *Decoder) readTransform(xsize, ysize int) (int, error) {
	kind := TransformType(dec.br.ReadBits(2))
	if dec.transformsSeen&(1<<uint(kind)) != 0 {
		return 0, webperr.BitstreamError.Errorf("vp8l", "%s transform repeated", kind)
	}
	dec.transformsSeen |= 1 << uint(kind)

	t := transform{kind: kind, xsize: xsize, ysize: ysize}
	switch kind {
	case PredictorTransform, CrossColorTransform:
		t.bits = MinTransformBits + int(dec.br.ReadBits(NumTransformBits))
		data, err := dec.decodeImageStream(SubSampleSize(xsize, t.bits), SubSampleSize(ysize, t.bits), false)
		if err != nil {
			return 0, err
		}
		t.data = data

	case ColorIndexingTransform:
		numColors := int(dec.br.ReadBits(8)) + 1
		switch {
		case numColors > 16:
			t.bits = 0
		case numColors > 4:
			t.bits = 1
		case numColors > 2:
			t.bits = 2
		default:
			t.bits = 3
		}
		palette, err := dec.decodeImageStream(numColors, 1, false)
		if err != nil {
			return 0, err
		}
		t.data = expandColorMap(palette)
		xsize = SubSampleSize(xsize, t.bits)
	}

	dec.transforms = append(dec.transforms, t)
	return xsize, nil
}

// expandColorMap undoes the delta coding of a palette, adding each entry to
// the previous one per component. Indices past the palette map to
// transparent black.
func expandColorMap(palette []uint32) []uint32 {
	colorMap := make([]uint32, MaxPaletteSize)
	colorMap[0] = palette[0]
	for i := 1; i < len(palette); i++ {
		colorMap[i] = dsp.AddPixels(palette[i], colorMap[i-1])
	}
	return colorMap
}

// applyInverseTransforms inverts the transforms in reverse reading order.
func (dec *Decoder) applyInverseTransforms(pix []uint32) []uint32 {
	for i := len(dec.transforms) - 1; i >= 0; i-- {
		pix = dec.transforms[i].inverse(pix)
	}
	return pix
}

// inverse applies the inverse of t to pix and returns the result. All
// transforms but color indexing work in place.
func (t *transform) inverse(pix []uint32) []uint32 {
	switch t.kind {
	case SubtractGreenTransform:
		dsp.AddGreenToBlueAndRed(pix)
	case PredictorTransform:
		t.inversePredictor(pix)
	case CrossColorTransform:
		t.inverseCrossColor(pix)
	case ColorIndexingTransform:
		return t.inverseColorIndexing(pix)
	}
	return pix
}

// inversePredictor adds the predicted value to every residual. The first
// row predicts from black then the left pixel, the first column from the
// pixel above, and other pixels use the mode of their tile.
func (t *transform) inversePredictor(pix []uint32) {
	width := t.xsize
	pix[0] = dsp.AddPixels(pix[0], dsp.ARGBBlack)
	for x := 1; x < width; x++ {
		pix[x] = dsp.AddPixels(pix[x], pix[x-1])
	}

	tilesPerRow := SubSampleSize(width, t.bits)
	for y := 1; y < t.ysize; y++ {
		row := y * width
		pix[row] = dsp.AddPixels(pix[row], pix[row-width])
		modes := t.data[(y>>t.bits)*tilesPerRow:]
		for x := 1; x < width; x++ {
			pred := dsp.LosslessPredictors[(modes[x>>t.bits]>>8)&0xf]
			i := row + x
			pix[i] = dsp.AddPixels(pix[i], pred(pix[i-1], pix[i-width-1:]))
		}
	}
}

// inverseCrossColor undoes the color-space transform tile by tile.
func (t *transform) inverseCrossColor(pix []uint32) {
	width := t.xsize
	tileWidth := 1 << t.bits
	tilesPerRow := SubSampleSize(width, t.bits)
	for y := 0; y < t.ysize; y++ {
		codes := t.data[(y>>t.bits)*tilesPerRow:]
		row := pix[y*width : (y+1)*width]
		for x := 0; x < width; x += tileWidth {
			end := x + tileWidth
			if end > width {
				end = width
			}
			m := dsp.MultipliersFromCode(codes[x>>t.bits])
			dsp.TransformColorInverse(m, row[x:end], row[x:end])
		}
	}
}

// inverseColorIndexing maps palette indices to colors, unbundling rows that
// pack 2, 4 or 8 indices per pixel.
func (t *transform) inverseColorIndexing(pix []uint32) []uint32 {
	width := t.xsize
	out := make([]uint32, width*t.ysize)
	if t.bits == 0 {
		dsp.MapColor32b(pix[:len(out)], t.data, out)
		return out
	}

	packedWidth := SubSampleSize(width, t.bits)
	bitsPerPixel := uint(8 >> t.bits)
	countMask := 1<<t.bits - 1
	indexMask := uint32(1)<<bitsPerPixel - 1
	for y := 0; y < t.ysize; y++ {
		src := pix[y*packedWidth : (y+1)*packedWidth]
		dst := out[y*width : (y+1)*width]
		var packed uint32
		for x := range dst {
			if x&countMask == 0 {
				packed = (src[x>>t.bits] >> 8) & 0xff
			}
			dst[x] = t.data[packed&indexMask]
			packed >>= bitsPerPixel
		}
	}
	return out
}
