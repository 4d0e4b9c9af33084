package lossy

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/vp8"

	"github.com/dany5639/webp/internal/vp8tab"
	"github.com/dany5639/webp/internal/webperr"
	"github.com/dany5639/webp/internal/webptest"
)

// lcg is a small deterministic pseudo-random source.
type lcg uint32

func (r *lcg) intn(n int) int {
	*r = *r*1664525 + 1013904223
	return int(uint32(*r>>8) % uint32(n))
}

// levels fills a block with sparse levels; roughly density of 16 are
// non-zero, most of them small.
func (r *lcg) levels(b *[16]int, density, maxLevel int) {
	for i := range b {
		if r.intn(16) >= density {
			continue
		}
		v := r.intn(3) + 1
		if r.intn(4) == 0 {
			v = r.intn(maxLevel) + 1
		}
		if r.intn(2) == 0 {
			v = -v
		}
		b[i] = v
	}
}

type mbGen struct {
	seed     uint32
	i4       int // out of 4: share of i4 macroblocks
	density  int
	maxLevel int
	segments int
	empty    int // out of 4: share of macroblocks without residuals
}

// macroblocks returns a deterministic macroblock source for EncodeVP8.
func (g mbGen) macroblocks() func(x, y int) webptest.Macroblock {
	r := lcg(g.seed)
	return func(x, y int) webptest.Macroblock {
		var mb webptest.Macroblock
		if g.segments > 0 {
			mb.Segment = r.intn(g.segments)
		}
		mb.UVMode = r.intn(4)
		mb.I4 = r.intn(4) < g.i4
		if mb.I4 {
			for i := range mb.BModes {
				mb.BModes[i] = r.intn(vp8tab.NumBModes)
			}
		} else {
			mb.YMode = r.intn(4)
		}
		if r.intn(4) < g.empty {
			return mb
		}
		if !mb.I4 {
			r.levels(&mb.Y2, g.density, g.maxLevel)
		}
		for i := range mb.Y {
			r.levels(&mb.Y[i], g.density, g.maxLevel)
		}
		for i := range mb.U {
			r.levels(&mb.U[i], g.density, g.maxLevel)
			r.levels(&mb.V[i], g.density, g.maxLevel)
		}
		return mb
	}
}

func referenceDecode(t *testing.T, payload []byte) *image.YCbCr {
	t.Helper()
	d := vp8.NewDecoder()
	d.Init(bytes.NewReader(payload), len(payload))
	_, err := d.DecodeFrameHeader()
	require.NoError(t, err)
	img, err := d.DecodeFrame()
	require.NoError(t, err)
	return img
}

// requirePlanesEqual compares the visible samples of p with img.
func requirePlanesEqual(t *testing.T, img *image.YCbCr, p *Planes) {
	t.Helper()
	require.Equal(t, img.Rect.Dx(), p.Width)
	require.Equal(t, img.Rect.Dy(), p.Height)
	for y := 0; y < p.Height; y++ {
		got := p.Y[y*p.YStride : y*p.YStride+p.Width]
		want := img.Y[y*img.YStride : y*img.YStride+p.Width]
		require.Equal(t, want, got, "luma row %d", y)
	}
	cw, ch := (p.Width+1)/2, (p.Height+1)/2
	for y := 0; y < ch; y++ {
		require.Equal(t, img.Cb[y*img.CStride:y*img.CStride+cw], p.U[y*p.UVStride:y*p.UVStride+cw], "U row %d", y)
		require.Equal(t, img.Cr[y*img.CStride:y*img.CStride+cw], p.V[y*p.UVStride:y*p.UVStride+cw], "V row %d", y)
	}
}

func TestDecodeFrame_Flat(t *testing.T) {
	const w, h = 35, 20
	p, err := DecodeFrame(webptest.EncodeVP8(webptest.VP8Options{Width: w, Height: h}), w, h)
	require.NoError(t, err)
	assert.Equal(t, 48, p.YStride)
	assert.Equal(t, 24, p.UVStride)
	for _, b := range p.Y {
		require.Equal(t, byte(128), b)
	}
	for i := range p.U {
		require.Equal(t, byte(128), p.U[i])
		require.Equal(t, byte(128), p.V[i])
	}
}

func TestDecodeFrame_DCResidual(t *testing.T) {
	// At quantizer index 0 the second-order DC step is 8, so a level of 80
	// becomes a luma DC of 80 in every block, adding (80+4)>>3 to the 128
	// prediction.
	frame := webptest.EncodeVP8(webptest.VP8Options{
		Width: 16, Height: 16,
		Macroblock: func(x, y int) webptest.Macroblock {
			return webptest.Macroblock{Y2: [16]int{80}}
		},
	})
	p, err := DecodeFrame(frame, 16, 16)
	require.NoError(t, err)
	for i, b := range p.Y {
		require.Equal(t, byte(138), b, "luma sample %d", i)
	}
	for _, b := range p.U {
		require.Equal(t, byte(128), b)
	}
}

func TestDecodeFrame_MatchesReference(t *testing.T) {
	tests := []struct {
		name string
		opts webptest.VP8Options
		gen  mbGen
	}{
		{"i16", webptest.VP8Options{Width: 48, Height: 32, BaseQ: 30},
			mbGen{seed: 1, density: 3, maxLevel: 20}},
		{"i4", webptest.VP8Options{Width: 48, Height: 32, BaseQ: 30},
			mbGen{seed: 2, i4: 4, density: 3, maxLevel: 20}},
		{"mixed odd size", webptest.VP8Options{Width: 37, Height: 29, BaseQ: 50},
			mbGen{seed: 3, i4: 2, density: 4, maxLevel: 30}},
		{"single column", webptest.VP8Options{Width: 7, Height: 50, BaseQ: 10},
			mbGen{seed: 4, i4: 2, density: 2, maxLevel: 10}},
		{"large levels", webptest.VP8Options{Width: 32, Height: 32},
			mbGen{seed: 5, i4: 2, density: 6, maxLevel: 2000}},
		{"quantizer deltas", webptest.VP8Options{Width: 32, Height: 32, BaseQ: 120, QuantDeltas: [5]int{-3, 7, -8, 15, -15}},
			mbGen{seed: 6, i4: 2, density: 4, maxLevel: 40}},
		{"simple filter", webptest.VP8Options{Width: 48, Height: 48, BaseQ: 60, FilterLevel: 20, SimpleFilter: true},
			mbGen{seed: 7, i4: 2, density: 3, maxLevel: 30, empty: 1}},
		{"normal filter", webptest.VP8Options{Width: 48, Height: 48, BaseQ: 60, FilterLevel: 40},
			mbGen{seed: 8, i4: 2, density: 3, maxLevel: 30, empty: 1}},
		{"normal filter sharp", webptest.VP8Options{Width: 41, Height: 35, BaseQ: 60, FilterLevel: 12, Sharpness: 6},
			mbGen{seed: 9, i4: 2, density: 3, maxLevel: 30}},
		{"filter deltas", webptest.VP8Options{Width: 48, Height: 32, BaseQ: 40, FilterLevel: 30,
			LFDeltas: &[8]int{5, 0, 0, 0, -9, 0, 0, 0}},
			mbGen{seed: 10, i4: 2, density: 3, maxLevel: 30}},
		{"segments relative", webptest.VP8Options{Width: 64, Height: 48, BaseQ: 40, FilterLevel: 20,
			Segments: &relativeSegments},
			mbGen{seed: 11, i4: 2, density: 3, maxLevel: 30, segments: 4}},
		{"segments absolute", webptest.VP8Options{Width: 64, Height: 48, BaseQ: 40, FilterLevel: 20,
			Segments: &webptest.VP8Segments{Absolute: true, Quant: [4]int{10, 40, 80, 127}, Filter: [4]int{0, 10, 30, 63}, MapProbs: [3]uint8{128, 255, 40}}},
			mbGen{seed: 12, i4: 2, density: 3, maxLevel: 30, segments: 4}},
		{"two partitions", webptest.VP8Options{Width: 40, Height: 80, BaseQ: 30, PartitionBits: 1},
			mbGen{seed: 13, i4: 2, density: 3, maxLevel: 20}},
		{"eight partitions", webptest.VP8Options{Width: 40, Height: 160, BaseQ: 30, PartitionBits: 3, FilterLevel: 8},
			mbGen{seed: 14, i4: 2, density: 3, maxLevel: 20}},
		{"skip flags", webptest.VP8Options{Width: 64, Height: 64, BaseQ: 30, FilterLevel: 25, SkipProba: 100},
			mbGen{seed: 15, i4: 1, density: 3, maxLevel: 20, empty: 3}},
		{"probability updates", webptest.VP8Options{Width: 48, Height: 32, BaseQ: 30, UpdateProbas: true},
			mbGen{seed: 16, i4: 2, density: 5, maxLevel: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Macroblock = tt.gen.macroblocks()
			frame := webptest.EncodeVP8(opts)

			p, err := DecodeFrame(frame, opts.Width, opts.Height)
			require.NoError(t, err)
			requirePlanesEqual(t, referenceDecode(t, frame), p)
		})
	}
}

// relativeSegments uses every segment with quantizer and filter deltas.
var relativeSegments = webptest.VP8Segments{
	Quant:    [4]int{0, -20, 15, 60},
	Filter:   [4]int{0, -20, 10, 30},
	MapProbs: [3]uint8{100, 150, 200},
}

func TestDecodeFrame_Deterministic(t *testing.T) {
	frame := webptest.EncodeVP8(webptest.VP8Options{
		Width: 33, Height: 17, BaseQ: 40, FilterLevel: 30,
		Macroblock: mbGen{seed: 99, i4: 2, density: 4, maxLevel: 50}.macroblocks(),
	})
	a, err := DecodeFrame(frame, 33, 17)
	require.NoError(t, err)
	b, err := DecodeFrame(frame, 33, 17)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeFrame_Errors(t *testing.T) {
	valid := webptest.EncodeVP8(webptest.VP8Options{
		Width: 32, Height: 32, BaseQ: 10,
		Macroblock: mbGen{seed: 7, i4: 2, density: 8, maxLevel: 200}.macroblocks(),
	})
	firstLen := int(uint32(valid[0])|uint32(valid[1])<<8|uint32(valid[2])<<16) >> 5

	patch := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), valid...))
	}
	tests := []struct {
		name string
		data []byte
		w, h int
		kind webperr.Kind
	}{
		{"short", valid[:9], 32, 32, webperr.BitstreamError},
		{"bad profile", patch(func(b []byte) []byte { b[0] |= 4 << 1; return b }), 32, 32, webperr.BitstreamError},
		{"inter frame", patch(func(b []byte) []byte { b[0] |= 1; return b }), 32, 32, webperr.UnsupportedFeature},
		{"invisible", patch(func(b []byte) []byte { b[0] &^= 1 << 4; return b }), 32, 32, webperr.UnsupportedFeature},
		{"bad start code", patch(func(b []byte) []byte { b[3] = 0; return b }), 32, 32, webperr.BitstreamError},
		{"zero width", patch(func(b []byte) []byte { b[6], b[7] = 0, 0; return b }), 0, 32, webperr.DimensionOutOfRange},
		{"size mismatch", valid, 31, 32, webperr.BitstreamError},
		{"first partition overrun", valid[:10+firstLen-1], 32, 32, webperr.BitstreamError},
		{"tokens truncated", valid[:10+firstLen+(len(valid)-10-firstLen)/3], 32, 32, webperr.BitstreamError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeFrame(tt.data, tt.w, tt.h)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, tt.kind, webperr.KindOf(err), "%v", err)
		})
	}
}

func TestDecodeFrame_PartitionSizeOverrun(t *testing.T) {
	frame := webptest.EncodeVP8(webptest.VP8Options{Width: 16, Height: 32, PartitionBits: 1})
	firstLen := int(uint32(frame[0])|uint32(frame[1])<<8|uint32(frame[2])<<16) >> 5
	sizes := 10 + firstLen
	frame[sizes], frame[sizes+1], frame[sizes+2] = 0xff, 0xff, 0x00

	_, err := DecodeFrame(frame, 16, 32)
	require.Error(t, err)
	assert.Equal(t, webperr.BitstreamError, webperr.KindOf(err))
}

func TestCheckMode(t *testing.T) {
	tests := []struct {
		x, y, mode, want int
	}{
		{0, 0, vp8tab.DCPred, 6},
		{0, 3, vp8tab.DCPred, 5},
		{2, 0, vp8tab.DCPred, 4},
		{2, 3, vp8tab.DCPred, vp8tab.DCPred},
		{0, 0, vp8tab.TMPred, vp8tab.TMPred},
		{0, 0, vp8tab.HPred, vp8tab.HPred},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, checkMode(tt.x, tt.y, tt.mode), "mb (%d,%d) mode %d", tt.x, tt.y, tt.mode)
	}
}

func TestNzCodeBits(t *testing.T) {
	assert.Equal(t, uint32(0b0111), nzCodeBits(0b01, 5, 0))
	assert.Equal(t, uint32(0b10), nzCodeBits(0, 3, 1))
	assert.Equal(t, uint32(0b01), nzCodeBits(0, 1, 1))
	assert.Equal(t, uint32(0b00), nzCodeBits(0, 0, 0))
}

func TestPrecomputeFilterStrengths(t *testing.T) {
	tests := []struct {
		level, sharpness int
		want             FInfo
	}{
		{40, 0, FInfo{FLimit: 120, FILevel: 40, HevThresh: 2}},
		{40, 5, FInfo{FLimit: 84, FILevel: 4, HevThresh: 2}},
		{20, 2, FInfo{FLimit: 47, FILevel: 7, HevThresh: 1}},
		{10, 2, FInfo{FLimit: 25, FILevel: 5}},
		{1, 7, FInfo{FLimit: 3, FILevel: 1}},
	}
	for _, tt := range tests {
		dec := &Decoder{filterType: 2}
		dec.filterHdr.Level = tt.level
		dec.filterHdr.Sharpness = tt.sharpness
		dec.precomputeFilterStrengths()
		assert.Equal(t, tt.want, dec.fstrengths[0][0], "level %d sharpness %d", tt.level, tt.sharpness)
		i4 := tt.want
		i4.FInner = true
		assert.Equal(t, i4, dec.fstrengths[3][1])
	}
}
