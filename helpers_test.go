package webp

import (
	"github.com/dany5639/webp/internal/webptest"
)

func gradientARGB(w, h int, alpha bool) []uint32 {
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint32(0xff)
			if alpha {
				a = uint32(x*y*7) & 0xff
			}
			r := uint32(x*9) & 0xff
			g := uint32(y*5) & 0xff
			b := uint32(x+y) & 0xff
			pix[y*w+x] = a<<24 | r<<16 | g<<8 | b
		}
	}
	return pix
}

// texturedMacroblocks mixes 16x16 and 4x4 prediction with a few residual
// levels per block, deterministically from the macroblock position.
func texturedMacroblocks(x, y int) webptest.Macroblock {
	var mb webptest.Macroblock
	k := x*7 + y*13
	mb.UVMode = k % 4
	if k%3 == 0 {
		mb.I4 = true
		for i := range mb.BModes {
			mb.BModes[i] = (k + i) % 10
		}
	} else {
		mb.YMode = k % 4
		mb.Y2[0] = k%9 - 4
		mb.Y2[1] = k%5 - 2
	}
	for i := range mb.Y {
		mb.Y[i][(i+k)%16] = (i+k)%7 - 3
		mb.Y[i][1] = k % 3
	}
	for i := range mb.U {
		mb.U[i][0] = (k+i)%5 - 2
		mb.V[i][2] = (k*i)%3 - 1
	}
	return mb
}

func lossyOptions(w, h int) webptest.VP8Options {
	return webptest.VP8Options{
		Width:       w,
		Height:      h,
		BaseQ:       30,
		FilterLevel: 20,
		Sharpness:   2,
		SkipProba:   200,
		Macroblock:  texturedMacroblocks,
	}
}

func alphaPlane(w, h int) []byte {
	plane := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane[y*w+x] = byte(x*17 + y*29)
		}
	}
	return plane
}

// sampleFiles returns one file per decoding path.
func sampleFiles() map[string][]byte {
	return map[string][]byte{
		"lossless 1x1":   webptest.Lossless(1, 1, []uint32{0xff0a141e}, webptest.VP8LOptions{}),
		"lossless plain": webptest.Lossless(13, 9, gradientARGB(13, 9, false), webptest.VP8LOptions{}),
		"lossless tools": webptest.Lossless(37, 21, gradientARGB(37, 21, true), webptest.VP8LOptions{
			SubtractGreen: true, PredictorBits: 2, CrossColorBits: 3,
			ColorCacheBits: 5, BackwardRefs: true, MetaBits: 2,
		}),
		"lossless extended": webptest.RIFF(
			webptest.VP8X(webptest.AlphaFlag, 5, 4),
			webptest.Chunk("VP8L", webptest.EncodeVP8L(5, 4, gradientARGB(5, 4, true), webptest.VP8LOptions{})),
		),
		"lossy":      webptest.Lossy(lossyOptions(35, 20)),
		"lossy tiny": webptest.Lossy(webptest.VP8Options{Width: 1, Height: 1}),
		"lossy alpha raw": webptest.LossyWithAlpha(19, 6,
			webptest.AlphaRaw(webptest.FilterHorizontal, alphaPlane(19, 6), 19, 6),
			webptest.EncodeVP8(lossyOptions(19, 6))),
		"lossy alpha lossless": webptest.LossyWithAlpha(19, 6,
			webptest.AlphaLossless(webptest.FilterGradient, alphaPlane(19, 6), 19, 6, webptest.VP8LOptions{BackwardRefs: true}),
			webptest.EncodeVP8(lossyOptions(19, 6))),
	}
}
