// Package webperr defines the error kinds reported by every decoding stage.
//
// A stage reports a failure with Kind.Errorf, which yields an *Error that
// unwraps to its Kind, so callers can test the category with errors.Is.
package webperr

import (
	"errors"
	"fmt"
)

// Kind classifies a decoding failure.
type Kind uint8

const (
	// MalformedContainer reports a bad RIFF/WEBP header or chunk layout.
	MalformedContainer Kind = iota + 1
	// TruncatedChunk reports a declared length exceeding the available bytes.
	TruncatedChunk
	// BitstreamError reports an entropy, prefix-code or arithmetic decoding
	// inconsistency, including running out of data mid-stream.
	BitstreamError
	// UnsupportedFeature reports valid input this decoder does not handle
	// (animation, inter frames, unknown versions).
	UnsupportedFeature
	// DimensionOutOfRange reports a width or height outside [1, 16383].
	DimensionOutOfRange
)

var kindNames = [...]string{
	MalformedContainer:  "malformed container",
	TruncatedChunk:      "truncated chunk",
	BitstreamError:      "bitstream error",
	UnsupportedFeature:  "unsupported feature",
	DimensionOutOfRange: "dimension out of range",
}

// Error implements error so that a Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return "webp: " + kindNames[k]
	}
	return fmt.Sprintf("webp: error kind %d", uint8(k))
}

// String returns the kind name without the package prefix.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Errorf returns an *Error of kind k for operation op.
func (k Kind) Errorf(op, format string, args ...any) error {
	return &Error{Kind: k, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Error is a decoding failure attributed to one stage.
type Error struct {
	Kind Kind
	Op   string // stage that failed, e.g. "vp8l", "riff"
	Msg  string
}

func (e *Error) Error() string {
	return "webp: " + e.Op + ": " + e.Msg
}

// Unwrap returns the kind so errors.Is(err, kind) holds.
func (e *Error) Unwrap() error { return e.Kind }

// KindOf returns the kind carried by err, or 0 if err has none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
