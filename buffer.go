package webp

import (
	"fmt"
	"image"
)

// PixelFormat is the byte layout of decoded pixels.
type PixelFormat int

const (
	BGR  PixelFormat = iota // 3 bytes per pixel: blue, green, red
	BGRA                    // 4 bytes per pixel: blue, green, red, alpha
)

// BytesPerPixel returns the pixel size of f.
func (f PixelFormat) BytesPerPixel() int {
	if f == BGRA {
		return 4
	}
	return 3
}

func (f PixelFormat) String() string {
	switch f {
	case BGR:
		return "BGR"
	case BGRA:
		return "BGRA"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

func (f PixelFormat) valid() bool {
	return f == BGR || f == BGRA
}

// PixelBuffer is a decoded image. Row y starts at Pix[y*Stride]; bytes
// past Width*BytesPerPixel in a row are zero.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
	Format PixelFormat
}

// Image returns a copy of the buffer as an *image.NRGBA. BGR buffers are
// opaque.
func (b *PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	bpp := b.Format.BytesPerPixel()
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			s := src[x*bpp : x*bpp+bpp]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2] = s[2], s[1], s[0]
			if bpp == 4 {
				d[3] = s[3]
			} else {
				d[3] = 0xff
			}
		}
	}
	return img
}

// checkBuffer validates an output layout for a width x height image. The
// last row does not need its padding.
func checkBuffer(format PixelFormat, width, height, stride, size int) error {
	if !format.valid() {
		return fmt.Errorf("%w: unknown pixel format %d", ErrInvalidBuffer, int(format))
	}
	rowSize := width * format.BytesPerPixel()
	if stride < rowSize {
		return fmt.Errorf("%w: stride %d below row size %d", ErrInvalidBuffer, stride, rowSize)
	}
	if need := stride*(height-1) + rowSize; size < need {
		return fmt.Errorf("%w: %d bytes, need %d", ErrInvalidBuffer, size, need)
	}
	return nil
}
