package main

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dany5639/webp"
	"github.com/dany5639/webp/internal/webptest"
)

func gradient(w, h int) []uint32 {
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = 0xff000000 | uint32(x*20)<<16 | uint32(y*20)<<8 | 0x40
		}
	}
	return pix
}

func solid(w, h int, argb uint32) []uint32 {
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = argb
	}
	return pix
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeLossless(t *testing.T, path string, w, h int, pix []uint32) string {
	t.Helper()
	return writeFile(t, path, webptest.Lossless(w, h, pix, webptest.VP8LOptions{}))
}

// run executes the command line in-process and returns its output.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func readJPEG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	return img
}

func TestConvert_WritesJPEG(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "photo.webp"), 12, 7, gradient(12, 7))
	lossy := writeFile(t, filepath.Join(dir, "flat.WEBP"), webptest.Lossy(webptest.VP8Options{Width: 20, Height: 18}))

	_, stderr, err := run(t, in, lossy)
	require.NoError(t, err, stderr)

	img := readJPEG(t, filepath.Join(dir, "photo_c.jpg"))
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())
	img = readJPEG(t, filepath.Join(dir, "flat_c.jpg"))
	assert.Equal(t, image.Rect(0, 0, 20, 18), img.Bounds())
	assert.Contains(t, stderr, "converted")
}

func TestConvert_ConvertSubcommand(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "a.webp"), 3, 3, gradient(3, 3))

	_, stderr, err := run(t, "convert", in)
	require.NoError(t, err, stderr)
	assert.FileExists(t, filepath.Join(dir, "a_c.jpg"))
}

func TestConvert_SkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "a.webp"), 4, 4, gradient(4, 4))
	out := writeFile(t, filepath.Join(dir, "a_c.jpg"), []byte("keep"))

	_, stderr, err := run(t, in)
	require.NoError(t, err)
	assert.Contains(t, stderr, "output exists")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), data)

	_, _, err = run(t, "--overwrite", in)
	require.NoError(t, err)
	readJPEG(t, out)
}

func TestConvert_SkipsNonWebP(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, filepath.Join(dir, "notes.txt"), []byte("hello"))

	_, stderr, err := run(t, txt)
	require.NoError(t, err)
	assert.Contains(t, stderr, "not a WebP file")
	assert.NoFileExists(t, filepath.Join(dir, "notes_c.jpg"))
}

func TestConvert_SniffsContent(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "download.bin"), 5, 5, gradient(5, 5))

	_, _, err := run(t, in)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "download_c.jpg"))
}

func TestConvert_Directory(t *testing.T) {
	dir := t.TempDir()
	writeLossless(t, filepath.Join(dir, "one.webp"), 4, 4, gradient(4, 4))
	writeLossless(t, filepath.Join(dir, "two.webp"), 6, 2, gradient(6, 2))
	writeFile(t, filepath.Join(dir, "readme.md"), []byte("# images"))

	_, _, err := run(t, "--workers", "2", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "one_c.jpg"))
	assert.FileExists(t, filepath.Join(dir, "two_c.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "readme_c.jpg"))
}

func TestConvert_OutputDirAndSuffix(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "a.webp"), 4, 4, gradient(4, 4))
	outDir := filepath.Join(dir, "out", "jpg")

	_, _, err := run(t, "-o", outDir, "--suffix", "", in)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "a.jpg"))
}

func TestConvert_Failure(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "broken.webp"), []byte("RIFF\x04\x00\x00\x00WEBP"))
	good := writeLossless(t, filepath.Join(dir, "good.webp"), 4, 4, gradient(4, 4))

	_, stderr, err := run(t, bad, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, stderr, "broken.webp")
	assert.Contains(t, stderr, "truncated chunk")
	assert.FileExists(t, filepath.Join(dir, "good_c.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "broken_c.jpg"))
}

func TestConvert_NoArgs(t *testing.T) {
	stdout, _, err := run(t)
	assert.ErrorIs(t, err, errNoInput)
	assert.Contains(t, stdout, "Usage:")
}

func TestConvert_Background(t *testing.T) {
	transparent := solid(8, 8, 0x00ff0000)
	tests := []struct {
		name string
		args []string
		want uint8
	}{
		{"default white", nil, 255},
		{"black", []string{"--background", "000000"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeLossless(t, filepath.Join(dir, "clear.webp"), 8, 8, transparent)

			_, _, err := run(t, append(tt.args, in)...)
			require.NoError(t, err)

			img := readJPEG(t, filepath.Join(dir, "clear_c.jpg"))
			r, g, b, _ := img.At(4, 4).RGBA()
			assert.InDelta(t, tt.want, r>>8, 3)
			assert.InDelta(t, tt.want, g>>8, 3)
			assert.InDelta(t, tt.want, b>>8, 3)
		})
	}
}

func TestConvert_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "a.webp"), 4, 4, gradient(4, 4))
	cfg := writeFile(t, filepath.Join(dir, "webp2jpg.yaml"), []byte("suffix: _small\nquality: 40\nlog_level: warn\n"))

	_, _, err := run(t, "--config", cfg, in)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a_small.jpg"))

	// Flags win over the file.
	_, _, err = run(t, "--config", cfg, "--suffix", "_flag", in)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a_flag.jpg"))
}

func TestConvert_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeLossless(t, filepath.Join(dir, "a.webp"), 4, 4, gradient(4, 4))
	unknownKey := writeFile(t, filepath.Join(dir, "bad.yaml"), []byte("colour: red\n"))

	tests := []struct {
		name string
		args []string
	}{
		{"quality", []string{"--quality", "0"}},
		{"workers", []string{"--workers", "0"}},
		{"log level", []string{"--log-level", "loud"}},
		{"background", []string{"--background", "fff"}},
		{"suffix", []string{"--suffix", "a/b"}},
		{"unknown config key", []string{"--config", unknownKey}},
		{"missing config", []string{"--config", filepath.Join(dir, "missing.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append(tt.args, in)...)
			assert.Error(t, err)
		})
	}
	assert.NoFileExists(t, filepath.Join(dir, "a_c.jpg"))
}

func TestInfo(t *testing.T) {
	dir := t.TempDir()
	lossless := writeLossless(t, filepath.Join(dir, "a.webp"), 12, 7, solid(12, 7, 0x80102030))
	lossy := writeFile(t, filepath.Join(dir, "b.webp"), webptest.Lossy(webptest.VP8Options{Width: 33, Height: 9}))

	stdout, _, err := run(t, "info", lossless, lossy)
	require.NoError(t, err)
	assert.Contains(t, stdout, "File:          "+lossless+"\n"+
		"Width:         12\n"+
		"Height:        7\n"+
		"Has alpha:     true\n"+
		"Has animation: false\n"+
		"Format:        lossless\n")
	assert.Contains(t, stdout, "Width:         33\n")
	assert.Contains(t, stdout, "Format:        lossy\n")
}

func TestInfo_Error(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, filepath.Join(dir, "bad.webp"), []byte("RIFF"))

	_, stderr, err := run(t, "info", bad)
	require.Error(t, err)
	assert.Contains(t, stderr, "malformed container")
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "webp2jpg "+Version)
}

func TestParseBackground(t *testing.T) {
	c, err := parseBackground("#1a2B3c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}, c)

	for _, s := range []string{"", "fff", "gggggg", "1234567"} {
		_, err := parseBackground(s)
		assert.Error(t, err, s)
	}
}

func TestFlatten(t *testing.T) {
	bgra := []byte{
		10, 20, 30, 255, // opaque
		10, 20, 30, 0, // transparent
		200, 100, 0, 128, // half
	}
	dst := image.NewRGBA(image.Rect(0, 0, 3, 1))
	flatten(dst, bgra, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	assert.Equal(t, []byte{
		30, 20, 10, 255,
		0, 0, 255, 255,
		0, 50, 227, 255,
	}, dst.Pix)
}

func TestErrorKind(t *testing.T) {
	_, err := webp.GetFeatures([]byte("RIFF"))
	assert.Equal(t, "malformed container", errorKind(err))
	assert.Equal(t, "io", errorKind(os.ErrNotExist))
}
