package webp

import (
	"github.com/dany5639/webp/internal/alpha"
	"github.com/dany5639/webp/internal/container"
	"github.com/dany5639/webp/internal/lossless"
	"github.com/dany5639/webp/internal/lossy"
	"github.com/dany5639/webp/internal/webperr"
)

// frame holds the decoded planes of a still image, before conversion to
// the output layout.
type frame struct {
	width, height int

	argb []uint32 // lossless pixels

	planes *lossy.Planes // lossy YUV 4:2:0
	alpha  []byte        // lossy alpha plane, nil when opaque
}

// decodeFrame runs the decoder selected by the container's image chunk.
func decodeFrame(img *container.Image) (*frame, error) {
	f := &img.Features
	switch f.Format {
	case container.FormatLossless:
		pic, err := lossless.DecodeVP8L(img.Bitstream)
		if err != nil {
			return nil, err
		}
		return &frame{width: pic.Width, height: pic.Height, argb: pic.Pix}, nil
	case container.FormatLossy:
		planes, err := lossy.DecodeFrame(img.Bitstream, f.Width, f.Height)
		if err != nil {
			return nil, err
		}
		fr := &frame{width: f.Width, height: f.Height, planes: planes}
		if img.Alpha != nil {
			if fr.alpha, err = alpha.Decode(img.Alpha, f.Width, f.Height); err != nil {
				return nil, err
			}
		}
		return fr, nil
	}
	if f.HasAnimation {
		return nil, webperr.UnsupportedFeature.Errorf("webp", "animated images are not decoded")
	}
	return nil, webperr.UnsupportedFeature.Errorf("webp", "no still image")
}

// DecodeBuffer decodes a WebP file into a new buffer with rows of exactly
// Width*BytesPerPixel bytes.
func DecodeBuffer(data []byte, format PixelFormat) (*PixelBuffer, error) {
	feat, err := GetFeatures(data)
	if err != nil {
		return nil, err
	}
	return DecodeBufferStride(data, format, feat.Width*format.BytesPerPixel())
}

// DecodeBufferStride is like DecodeBuffer with rows stride bytes apart.
// The padding at the end of each row is zero.
func DecodeBufferStride(data []byte, format PixelFormat, stride int) (*PixelBuffer, error) {
	img, err := container.Parse(data)
	if err != nil {
		return nil, err
	}
	w, h := img.Features.Width, img.Features.Height
	if err := checkBuffer(format, w, h, stride, stride*h); err != nil {
		return nil, err
	}
	fr, err := decodeFrame(img)
	if err != nil {
		return nil, err
	}
	buf := &PixelBuffer{
		Pix:    make([]byte, stride*h),
		Width:  w,
		Height: h,
		Stride: stride,
		Format: format,
	}
	fr.compose(buf.Pix, stride, format.BytesPerPixel())
	return buf, nil
}

// DecodeInto decodes a WebP file into dst, whose rows are stride bytes
// apart. Padding bytes between rows are set to zero. dst is not modified
// when an error is returned.
func DecodeInto(data []byte, format PixelFormat, dst []byte, stride int) error {
	img, err := container.Parse(data)
	if err != nil {
		return err
	}
	if err := checkBuffer(format, img.Features.Width, img.Features.Height, stride, len(dst)); err != nil {
		return err
	}
	fr, err := decodeFrame(img)
	if err != nil {
		return err
	}
	fr.compose(dst, stride, format.BytesPerPixel())
	return nil
}
