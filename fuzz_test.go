package webp

import (
	"bytes"
	"sort"
	"testing"

	"github.com/dany5639/webp/internal/webperr"
	"github.com/dany5639/webp/internal/webptest"
)

// addSeedCorpus adds one generated file per decoding path to the corpus.
func addSeedCorpus(f *testing.F) {
	f.Helper()
	files := sampleFiles()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Add(files[name])
	}
	f.Add(animationFile())
}

// checkKind fails the test unless err is nil or carries one of the
// decoder's error kinds.
func checkKind(t *testing.T, err error) {
	t.Helper()
	if err != nil && webperr.KindOf(err) == 0 {
		t.Fatalf("error without kind: %v", err)
	}
}

// FuzzDecode ensures that no input can cause a panic in the decoder and
// that every failure is classified.
func FuzzDecode(f *testing.F) {
	addSeedCorpus(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		buf, err := DecodeBuffer(data, BGRA)
		checkKind(t, err)
		if err != nil {
			return
		}
		feat, err := GetFeatures(data)
		if err != nil {
			t.Fatalf("decode succeeded but GetFeatures failed: %v", err)
		}
		if feat.Width != buf.Width || feat.Height != buf.Height {
			t.Fatalf("features %dx%d, decoded %dx%d", feat.Width, feat.Height, buf.Width, buf.Height)
		}
	})
}

// FuzzDecodeConfig ensures config parsing never panics on arbitrary input.
func FuzzDecodeConfig(f *testing.F) {
	addSeedCorpus(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		DecodeConfig(bytes.NewReader(data)) //nolint:errcheck
	})
}

// FuzzGetFeatures ensures feature extraction never panics on arbitrary input.
func FuzzGetFeatures(f *testing.F) {
	addSeedCorpus(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		_, err := GetFeatures(data)
		checkKind(t, err)
	})
}

// FuzzRoundtrip builds a small lossless image from fuzzer input and checks
// that every pixel survives encoding and decoding.
func FuzzRoundtrip(f *testing.F) {
	seed := make([]byte, 8*8*4)
	for i := range seed {
		seed[i] = byte(i * 3)
	}
	f.Add(seed, uint8(0))
	f.Add(seed, uint8(0x3f))

	f.Fuzz(func(t *testing.T, data []byte, tools uint8) {
		if len(data) < 4 {
			return
		}
		w := int(data[0]%32) + 1
		h := int(data[1]%32) + 1
		pixData := data[2:]
		argb := make([]uint32, w*h)
		for i := range argb {
			var p [4]byte
			if 4*i < len(pixData) {
				copy(p[:], pixData[4*i:])
			}
			argb[i] = uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
		}
		opts := webptest.VP8LOptions{
			SubtractGreen: tools&1 != 0,
			BackwardRefs:  tools&2 != 0,
		}
		if tools&4 != 0 {
			opts.PredictorBits = 2
		}
		if tools&8 != 0 {
			opts.CrossColorBits = 3
		}
		if tools&16 != 0 {
			opts.ColorCacheBits = 4
		}
		if tools&32 != 0 {
			opts.MetaBits = 2
		}

		buf, err := DecodeBuffer(webptest.Lossless(w, h, argb, opts), BGRA)
		if err != nil {
			t.Fatalf("roundtrip: decode failed: %v", err)
		}
		for i, want := range argb {
			p := buf.Pix[4*i:]
			got := uint32(p[3])<<24 | uint32(p[2])<<16 | uint32(p[1])<<8 | uint32(p[0])
			if got != want {
				t.Fatalf("roundtrip: pixel %d = %08x, want %08x", i, got, want)
			}
		}
	})
}

// TestTruncatedPrefixes decodes every proper prefix of the sample files.
// None may succeed, and every error must carry a kind.
func TestTruncatedPrefixes(t *testing.T) {
	for name, data := range sampleFiles() {
		for n := 0; n < len(data); n++ {
			prefix := data[:n]
			if _, err := GetFeatures(prefix); err == nil {
				t.Fatalf("%s: GetFeatures of %d-byte prefix succeeded", name, n)
			} else {
				checkKind(t, err)
			}
			if _, err := DecodeBuffer(prefix, BGRA); err == nil {
				t.Fatalf("%s: DecodeBuffer of %d-byte prefix succeeded", name, n)
			} else {
				checkKind(t, err)
			}
		}
	}
}

// TestCorruptedBytes flips each byte of the sample files in turn. Decoding
// may succeed, but it must not panic and failures must be classified.
func TestCorruptedBytes(t *testing.T) {
	for name, data := range sampleFiles() {
		for i := range data {
			corrupt := bytes.Clone(data)
			corrupt[i] ^= 0x5a
			if _, err := DecodeBuffer(corrupt, BGR); err != nil && webperr.KindOf(err) == 0 {
				t.Fatalf("%s: byte %d: error without kind: %v", name, i, err)
			}
		}
	}
}
