package webp

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/dany5639/webp/internal/container"
)

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", Decode, DecodeConfig)
}

// Format identifies the elementary stream of a WebP file.
type Format int

const (
	// FormatUndefined is reported for files without a still image, such as
	// animations.
	FormatUndefined Format = iota
	FormatLossy            // VP8
	FormatLossless         // VP8L
)

func (f Format) String() string {
	switch f {
	case FormatLossy:
		return "lossy"
	case FormatLossless:
		return "lossless"
	default:
		return "undefined"
	}
}

// Features describes a WebP file's properties.
type Features struct {
	Width        int
	Height       int
	HasAlpha     bool
	HasAnimation bool
	Format       Format
}

func featuresOf(f *container.Features) *Features {
	out := &Features{
		Width:        f.Width,
		Height:       f.Height,
		HasAlpha:     f.HasAlpha,
		HasAnimation: f.HasAnimation,
	}
	switch f.Format {
	case container.FormatLossy:
		out.Format = FormatLossy
	case container.FormatLossless:
		out.Format = FormatLossless
	}
	return out
}

// GetFeatures reads the features of a WebP file from its container and
// stream headers, without decoding pixel data.
func GetFeatures(data []byte) (*Features, error) {
	img, err := container.Parse(data)
	if err != nil {
		return nil, err
	}
	return featuresOf(&img.Features), nil
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a WebP image from r and returns it as an *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("webp: reading data: %w", err)
	}
	buf, err := DecodeBuffer(data, BGRA)
	if err != nil {
		return nil, err
	}
	return buf.Image(), nil
}

// DecodeConfig returns the color model and dimensions of a WebP image
// without decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("webp: reading data: %w", err)
	}
	feat, err := GetFeatures(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      feat.Width,
		Height:     feat.Height,
	}, nil
}
