// Package lossless decodes VP8L bitstreams: the lossless image format of
// WebP and the entropy-coded form of lossy images' alpha planes.
package lossless

import (
	"github.com/dany5639/webp/internal/bitio"
	"github.com/dany5639/webp/internal/container"
	"github.com/dany5639/webp/internal/webperr"
)

// Image is a decoded VP8L image. Pix holds one ARGB value per pixel in
// row-major order (alpha in bits 31..24, blue in bits 7..0).
type Image struct {
	Width    int
	Height   int
	HasAlpha bool // alpha hint from the header
	Pix      []uint32
}

// Decoder holds the state of one VP8L decode.
type Decoder struct {
	br *bitio.LosslessReader

	// Transforms in the order they were read; inverted in reverse order.
	transforms     []transform
	transformsSeen uint32
}

// metadata holds the prefix codes and color cache of one image level.
type metadata struct {
	colorCache   *ColorCache
	huffmanImage []uint32 // group index per tile, nil without meta codes
	huffmanBits  int
	huffmanXSize int
	huffmanMask  int
	groups       []HTreeGroup
}

func newDecoder(data []byte) *Decoder {
	return &Decoder{br: bitio.NewLosslessReader(data)}
}

// DecodeVP8L decodes a VP8L bitstream (the payload of a VP8L chunk,
// starting with the signature byte).
func DecodeVP8L(data []byte) (*Image, error) {
	width, height, hasAlpha, err := container.ParseVP8LHeader(data)
	if err != nil {
		return nil, err
	}
	dec := newDecoder(data[container.VP8LFrameHeaderSize:])
	pix, err := dec.decodeImage(width, height)
	if err != nil {
		return nil, err
	}
	return &Image{Width: width, Height: height, HasAlpha: hasAlpha, Pix: pix}, nil
}

// DecodeAlphaStream decodes a VP8L image stream without header, of the
// given dimensions, and returns the green channel of every pixel.
func DecodeAlphaStream(data []byte, width, height int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, webperr.DimensionOutOfRange.Errorf("vp8l", "alpha plane %dx%d", width, height)
	}
	pix, err := newDecoder(data).decodeImage(width, height)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(pix))
	for i, p := range pix {
		out[i] = uint8(p >> 8)
	}
	return out, nil
}

// decodeImage reads the transforms and the entropy-coded image of the
// top level and returns the reconstructed ARGB pixels.
func (dec *Decoder) decodeImage(width, height int) ([]uint32, error) {
	xsize := width
	for dec.br.ReadBit() {
		var err error
		if xsize, err = dec.readTransform(xsize, height); err != nil {
			return nil, err
		}
	}
	if dec.br.IsEndOfStream() {
		return nil, errTruncated()
	}

	pix, err := dec.decodeImageStream(xsize, height, true)
	if err != nil {
		return nil, err
	}
	return dec.applyInverseTransforms(pix), nil
}

// decodeImageStream reads the color cache configuration and prefix codes
// of one image level, then its pixels. Only the top level may carry meta
// prefix codes.
func (dec *Decoder) decodeImageStream(xsize, ysize int, isLevel0 bool) ([]uint32, error) {
	colorCacheBits := 0
	if dec.br.ReadBit() {
		colorCacheBits = int(dec.br.ReadBits(4))
		if colorCacheBits < 1 || colorCacheBits > MaxCacheBits {
			return nil, webperr.BitstreamError.Errorf("vp8l", "invalid color cache bits %d", colorCacheBits)
		}
	}

	hdr, err := dec.readHuffmanCodes(xsize, ysize, colorCacheBits, isLevel0)
	if err != nil {
		return nil, err
	}
	if colorCacheBits > 0 {
		hdr.colorCache = NewColorCache(colorCacheBits)
	}

	data := make([]uint32, xsize*ysize)
	if err := dec.decodeImageData(data, xsize, ysize, hdr); err != nil {
		return nil, err
	}
	return data, nil
}

// group returns the prefix code group for pixel (x, y).
func (hdr *metadata) group(x, y int) *HTreeGroup {
	if hdr.huffmanImage == nil {
		return &hdr.groups[0]
	}
	idx := hdr.huffmanXSize*(y>>hdr.huffmanBits) + (x >> hdr.huffmanBits)
	return &hdr.groups[hdr.huffmanImage[idx]]
}

func errTruncated() error {
	return webperr.BitstreamError.Errorf("vp8l", "unexpected end of data")
}
