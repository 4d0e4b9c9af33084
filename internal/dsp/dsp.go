// Package dsp holds the pixel arithmetic of the WebP decoders: VP8 inverse
// transforms, intra predictors and loop filters, VP8L predictors and color
// transforms, and YUV to RGB conversion with fancy upsampling.
//
// Lossy block routines work on a reconstruction buffer with a fixed stride
// of BPS bytes. They take the whole buffer and the offset of the block's
// top-left pixel; the reference samples (row above, column to the left) live
// at smaller offsets, so every index stays non-negative.
package dsp

// BPS is the stride of the lossy reconstruction buffer.
const BPS = 32

// DC prediction variants used on the image border, numbered after the four
// regular 16x16 and chroma modes.
const (
	DCPredNoTop     = 4
	DCPredNoLeft    = 5
	DCPredNoTopLeft = 6
	NumPredModes    = 7
)

// PredFunc fills a block in buf at off from the samples above and to the
// left of it.
type PredFunc func(buf []byte, off int)

// Prediction functions indexed by mode. PredLuma4 follows the 4x4 mode
// numbering (DC, TM, VE, HE, RD, VR, LD, VL, HD, HU). The 16x16 and chroma
// tables use DC, TM, V, H followed by the three border DC variants.
var (
	PredLuma16  [NumPredModes]PredFunc
	PredChroma8 [NumPredModes]PredFunc
	PredLuma4   [10]PredFunc
)

func init() {
	initClipTables()
	initPredictors()
}
