// Package webp implements a pure Go decoder for still WebP images.
//
// Both elementary formats are supported: lossy VP8 key frames, with an
// optional ALPH alpha plane, and lossless VP8L images. Files may use the
// simple or the extended (VP8X) container. Animations are recognised by
// GetFeatures but not decoded.
//
// Pixels are produced as interleaved BGR or BGRA rows:
//
//	buf, err := webp.DecodeBuffer(data, webp.BGRA)
//
// The package also registers itself with the standard library's image
// package, so image.Decode reads WebP files as *image.NRGBA.
//
// Errors carry one of five kinds (ErrMalformedContainer, ErrTruncatedChunk,
// ErrBitstream, ErrUnsupportedFeature, ErrDimensionOutOfRange), which can
// be tested with errors.Is.
package webp
