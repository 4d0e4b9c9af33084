package webp

import (
	"errors"

	"github.com/dany5639/webp/internal/webperr"
)

// Error kinds. Every decoding failure matches exactly one of them with
// errors.Is.
var (
	ErrMalformedContainer  error = webperr.MalformedContainer
	ErrTruncatedChunk      error = webperr.TruncatedChunk
	ErrBitstream           error = webperr.BitstreamError
	ErrUnsupportedFeature  error = webperr.UnsupportedFeature
	ErrDimensionOutOfRange error = webperr.DimensionOutOfRange
)

// ErrInvalidBuffer is returned when the output stride or destination
// buffer cannot hold the decoded image.
var ErrInvalidBuffer = errors.New("webp: invalid output buffer")
