// Package alpha decodes the payload of an ALPH chunk into a plane of 8-bit
// alpha values, one per pixel of the lossy image it accompanies.
package alpha

import (
	"github.com/dany5639/webp/internal/lossless"
	"github.com/dany5639/webp/internal/webperr"
)

// Compression methods.
const (
	CompressionNone     = 0
	CompressionLossless = 1
)

// Filtering methods.
const (
	FilterNone       = 0
	FilterHorizontal = 1
	FilterVertical   = 2
	FilterGradient   = 3
)

// Header is the first byte of an ALPH payload.
type Header struct {
	Compression   int
	Filter        int
	Preprocessing int // level reduction hint, ignored when decoding
}

// PreprocessingLevels is the highest pre-processing value a header may carry.
const PreprocessingLevels = 1

// ParseHeader splits the header byte b into its fields.
func ParseHeader(b byte) (Header, error) {
	if b>>6 != 0 {
		return Header{}, webperr.BitstreamError.Errorf("alph", "reserved bits set in header 0x%02x", b)
	}
	h := Header{
		Compression:   int(b & 0x03),
		Filter:        int(b>>2) & 0x03,
		Preprocessing: int(b>>4) & 0x03,
	}
	if h.Compression > CompressionLossless {
		return Header{}, webperr.BitstreamError.Errorf("alph", "unknown compression method %d", h.Compression)
	}
	if h.Preprocessing > PreprocessingLevels {
		return Header{}, webperr.BitstreamError.Errorf("alph", "unknown pre-processing %d", h.Preprocessing)
	}
	return h, nil
}

// Decode returns the width*height alpha plane stored in payload.
func Decode(payload []byte, width, height int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, webperr.DimensionOutOfRange.Errorf("alph", "plane %dx%d", width, height)
	}
	if len(payload) < 1 {
		return nil, webperr.TruncatedChunk.Errorf("alph", "empty payload")
	}
	hdr, err := ParseHeader(payload[0])
	if err != nil {
		return nil, err
	}
	data := payload[1:]

	var plane []byte
	switch hdr.Compression {
	case CompressionNone:
		if len(data) != width*height {
			return nil, webperr.TruncatedChunk.Errorf("alph",
				"raw plane holds %d bytes, want %d", len(data), width*height)
		}
		plane = make([]byte, len(data))
		copy(plane, data)
	case CompressionLossless:
		plane, err = lossless.DecodeAlphaStream(data, width, height)
		if err != nil {
			return nil, err
		}
	}

	unfilter(hdr.Filter, plane, width, height)
	return plane, nil
}
