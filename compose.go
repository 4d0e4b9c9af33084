package webp

import "github.com/dany5639/webp/internal/dsp"

// compose writes the frame into dst as BGR (bpp 3) or BGRA (bpp 4) rows
// stride bytes apart, zeroing the padding of every row.
func (fr *frame) compose(dst []byte, stride, bpp int) {
	if fr.argb != nil {
		fr.composeARGB(dst, stride, bpp)
	} else {
		fr.composeYUV(dst, stride, bpp)
		if bpp == 4 {
			fr.composeAlpha(dst, stride)
		}
	}

	rowSize := fr.width * bpp
	for y := 0; y < fr.height; y++ {
		start := y*stride + rowSize
		end := min(y*stride+stride, len(dst))
		clear(dst[start:end])
	}
}

func (fr *frame) composeARGB(dst []byte, stride, bpp int) {
	for y := 0; y < fr.height; y++ {
		src := fr.argb[y*fr.width : (y+1)*fr.width]
		row := dst[y*stride:]
		for x, argb := range src {
			p := row[x*bpp : x*bpp+bpp]
			p[0] = uint8(argb)
			p[1] = uint8(argb >> 8)
			p[2] = uint8(argb >> 16)
			if bpp == 4 {
				p[3] = uint8(argb >> 24)
			}
		}
	}
}

// composeYUV upsamples the chroma planes and converts to BGR. Luma rows are
// processed in pairs sharing the two nearest chroma rows: row 0 alone, then
// (1, 2), (3, 4) and so on, and the last row alone when the height is even.
func (fr *frame) composeYUV(dst []byte, stride, bpp int) {
	p := fr.planes
	w, h := fr.width, fr.height
	yRow := func(y int) []byte { return p.Y[y*p.YStride:] }
	uRow := func(y int) []byte { return p.U[y*p.UVStride:] }
	vRow := func(y int) []byte { return p.V[y*p.UVStride:] }
	dRow := func(y int) []byte { return dst[y*stride:] }

	dsp.UpsampleLinePair(yRow(0), nil, uRow(0), vRow(0), uRow(0), vRow(0), dRow(0), nil, w, bpp)

	for y := 1; y+1 < h; y += 2 {
		top, bot := (y-1)/2, (y+1)/2
		dsp.UpsampleLinePair(yRow(y), yRow(y+1),
			uRow(top), vRow(top), uRow(bot), vRow(bot),
			dRow(y), dRow(y+1), w, bpp)
	}

	if h > 1 && h&1 == 0 {
		last := (h - 1) / 2
		dsp.UpsampleLinePair(yRow(h-1), nil, uRow(last), vRow(last), uRow(last), vRow(last), dRow(h-1), nil, w, bpp)
	}
}

// composeAlpha fills the alpha bytes of a BGRA buffer from the alpha plane,
// or with 255 when the frame has none.
func (fr *frame) composeAlpha(dst []byte, stride int) {
	for y := 0; y < fr.height; y++ {
		row := dst[y*stride:]
		if fr.alpha == nil {
			for x := 0; x < fr.width; x++ {
				row[4*x+3] = 0xff
			}
			continue
		}
		a := fr.alpha[y*fr.width : (y+1)*fr.width]
		for x, v := range a {
			row[4*x+3] = v
		}
	}
}
