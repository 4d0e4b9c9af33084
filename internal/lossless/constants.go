package lossless

// VP8L bitstream constants.

const (
	// NumLiteralCodes is the number of literal codes (256 byte values).
	NumLiteralCodes = 256
	// NumLengthCodes is the number of length prefix codes.
	NumLengthCodes = 24
	// NumDistanceCodes is the number of distance prefix codes.
	NumDistanceCodes = 40
	// CodeLengthCodes is the number of code-length codes.
	CodeLengthCodes = 19

	// MaxAllowedCodeLength is the maximum prefix code length.
	MaxAllowedCodeLength = 15
	// DefaultCodeLength is the code length repeated by code 16 before any
	// non-zero length has been read.
	DefaultCodeLength = 8

	// HuffmanTableBits is the number of bits for the first-level table.
	HuffmanTableBits = 8
	// LengthsTableBits is the root size of the code-length code table.
	LengthsTableBits = 7

	// HuffmanCodesPerMetaCode is the number of prefix codes per group
	// (green+length, red, blue, alpha, distance).
	HuffmanCodesPerMetaCode = 5

	// MaxCacheBits is the maximum color cache bit size.
	MaxCacheBits = 11

	// MaxPaletteSize is the maximum palette size for color indexing.
	MaxPaletteSize = 256

	// NumTransforms is the maximum number of transforms in a bitstream.
	NumTransforms = 4

	// MinHuffmanBits is the minimum meta prefix code tile size exponent.
	MinHuffmanBits = 2
	// NumHuffmanBits is the number of bits encoding that exponent.
	NumHuffmanBits = 3

	// MinTransformBits is the minimum transform tile size exponent.
	MinTransformBits = 2
	// NumTransformBits is the number of bits encoding that exponent.
	NumTransformBits = 3

	// CodeToPlaneCodesCount is the number of entries in the distance map table.
	CodeToPlaneCodesCount = 120
)

// HuffIndex enumerates the 5 prefix codes of a group.
type HuffIndex int

const (
	HuffGreen HuffIndex = iota
	HuffRed
	HuffBlue
	HuffAlpha
	HuffDist
)

// TransformType enumerates the VP8L image transform types.
type TransformType int

const (
	PredictorTransform     TransformType = 0
	CrossColorTransform    TransformType = 1
	SubtractGreenTransform TransformType = 2
	ColorIndexingTransform TransformType = 3
)

var transformNames = [NumTransforms]string{"predictor", "cross-color", "subtract-green", "color-indexing"}

// String returns the transform name.
func (t TransformType) String() string {
	return transformNames[t&3]
}

// CodeLengthCodeOrder is the order in which code length code lengths are
// transmitted.
var CodeLengthCodeOrder = [CodeLengthCodes]int{
	17, 18, 0, 1, 2, 3, 4, 5, 16, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// codeLengthLiterals is the number of literal code-length values (0..15);
// symbols 16, 17 and 18 are repeat codes.
const codeLengthLiterals = 16

// codeLengthExtraBits gives the number of extra bits for repeat codes 16, 17, 18.
var codeLengthExtraBits = [3]int{2, 3, 7}

// codeLengthRepeatOffsets gives the repeat offset for codes 16, 17, 18.
var codeLengthRepeatOffsets = [3]int{3, 3, 11}

// alphabetSize returns the alphabet size of prefix code i for the given
// number of color-cache bits. Cache entries extend the green alphabet.
func alphabetSize(i HuffIndex, colorCacheBits int) int {
	switch i {
	case HuffGreen:
		size := NumLiteralCodes + NumLengthCodes
		if colorCacheBits > 0 {
			size += 1 << colorCacheBits
		}
		return size
	case HuffDist:
		return NumDistanceCodes
	default:
		return NumLiteralCodes
	}
}

// CodeToPlane maps distance codes (1-based index into the table) to
// packed (yoffset, xoffset) values used by PlaneCodeToDistance.
// Entry i encodes: yoffset = value >> 4, xoffset = 8 - (value & 0xf).
var CodeToPlane = [CodeToPlaneCodesCount]uint8{
	0x18, 0x07, 0x17, 0x19, 0x28, 0x06, 0x27, 0x29, 0x16, 0x1a,
	0x26, 0x2a, 0x38, 0x05, 0x37, 0x39, 0x15, 0x1b, 0x36, 0x3a,
	0x25, 0x2b, 0x48, 0x04, 0x47, 0x49, 0x14, 0x1c, 0x35, 0x3b,
	0x46, 0x4a, 0x24, 0x2c, 0x58, 0x45, 0x4b, 0x34, 0x3c, 0x03,
	0x57, 0x59, 0x13, 0x1d, 0x56, 0x5a, 0x23, 0x2d, 0x44, 0x4c,
	0x55, 0x5b, 0x33, 0x3d, 0x68, 0x02, 0x67, 0x69, 0x12, 0x1e,
	0x66, 0x6a, 0x22, 0x2e, 0x54, 0x5c, 0x43, 0x4d, 0x65, 0x6b,
	0x32, 0x3e, 0x78, 0x01, 0x77, 0x79, 0x53, 0x5d, 0x11, 0x1f,
	0x64, 0x6c, 0x42, 0x4e, 0x76, 0x7a, 0x21, 0x2f, 0x75, 0x7b,
	0x31, 0x3f, 0x63, 0x6d, 0x52, 0x5e, 0x00, 0x74, 0x7c, 0x41,
	0x4f, 0x10, 0x20, 0x62, 0x6e, 0x30, 0x73, 0x7d, 0x51, 0x5f,
	0x40, 0x72, 0x7e, 0x61, 0x6f, 0x50, 0x71, 0x7f, 0x60, 0x70,
}

// PlaneCodeToDistance converts a VP8L distance code to a pixel distance in
// an image xsize pixels wide. Codes 1..120 address a neighbourhood of the
// current pixel, larger codes are linear distances offset by 120.
func PlaneCodeToDistance(xsize int, planeCode int) int {
	if planeCode > CodeToPlaneCodesCount {
		return planeCode - CodeToPlaneCodesCount
	}
	distCode := CodeToPlane[planeCode-1]
	yoffset := int(distCode >> 4)
	xoffset := 8 - int(distCode&0xf)
	if dist := yoffset*xsize + xoffset; dist >= 1 {
		return dist
	}
	return 1
}

// SubSampleSize returns ceil(size / (1 << samplingBits)).
func SubSampleSize(size, samplingBits int) int {
	return (size + (1 << samplingBits) - 1) >> samplingBits
}
