package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dany5639/webp"
	"github.com/dany5639/webp/internal/pool"
)

// converter turns WebP files into JPEG files.
type converter struct {
	cfg        Config
	background color.RGBA
	log        *logrus.Logger

	converted, skipped, failed atomic.Int32
}

func newConverter(cfg Config, log *logrus.Logger) (*converter, error) {
	bg, err := parseBackground(cfg.Background)
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	return &converter{cfg: cfg, background: bg, log: log}, nil
}

// expandInputs replaces directories by the WebP files they contain.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil || !fi.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".webp") {
				inputs = append(inputs, filepath.Join(arg, e.Name()))
			}
		}
	}
	return inputs, nil
}

// run converts every input with at most cfg.Workers conversions in flight.
// It returns the first failure after all inputs have been processed.
func (c *converter) run(inputs []string) error {
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for _, in := range inputs {
		g.Go(func() error {
			return c.convertFile(in)
		})
	}
	err := g.Wait()

	c.log.WithFields(logrus.Fields{
		"converted": c.converted.Load(),
		"skipped":   c.skipped.Load(),
		"failed":    c.failed.Load(),
	}).Info("done")
	if err != nil {
		return fmt.Errorf("%d of %d files failed, first: %w", c.failed.Load(), len(inputs), err)
	}
	return nil
}

// outputPath returns <dir>/<name><suffix>.jpg for input.
func (c *converter) outputPath(input string) string {
	dir := c.cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+c.cfg.Suffix+".jpg")
}

func isWebP(name string, data []byte) bool {
	if strings.Contains(strings.ToLower(filepath.Ext(name)), "webp") {
		return true
	}
	return mimetype.Detect(data).Is("image/webp")
}

func (c *converter) convertFile(input string) error {
	log := c.log.WithField("file", input)
	start := time.Now()

	data, err := os.ReadFile(input)
	if err != nil {
		c.failed.Add(1)
		log.WithError(err).Error("cannot read input")
		return fmt.Errorf("%s: %w", input, err)
	}
	if !isWebP(input, data) {
		c.skipped.Add(1)
		log.Info("skipping, not a WebP file")
		return nil
	}

	output := c.outputPath(input)
	log = log.WithField("output", output)
	if !c.cfg.Overwrite {
		if _, err := os.Stat(output); err == nil {
			c.skipped.Add(1)
			log.Info("skipping, output exists")
			return nil
		}
	}

	feat, err := c.convert(data, output)
	if err != nil {
		c.failed.Add(1)
		log.WithError(err).WithField("kind", errorKind(err)).Error("conversion failed")
		return fmt.Errorf("%s: %w", input, err)
	}
	c.converted.Add(1)
	log.WithFields(logrus.Fields{
		"width":   feat.Width,
		"height":  feat.Height,
		"format":  feat.Format,
		"elapsed": time.Since(start).Round(time.Microsecond),
	}).Info("converted")
	return nil
}

// convert decodes data and writes it to output as a JPEG.
func (c *converter) convert(data []byte, output string) (*webp.Features, error) {
	feat, err := webp.GetFeatures(data)
	if err != nil {
		return nil, err
	}
	w, h := feat.Width, feat.Height

	bgra := pool.Get(w * h * 4)
	defer pool.Put(bgra)
	if err := webp.DecodeInto(data, webp.BGRA, bgra, w*4); err != nil {
		return nil, err
	}

	img := &image.RGBA{Pix: pool.Get(w * h * 4), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	defer pool.Put(img.Pix)
	flatten(img, bgra, c.background)

	if err := writeJPEG(output, img, c.cfg.Quality); err != nil {
		return nil, err
	}
	return feat, nil
}

// flatten blends BGRA pixels onto an opaque background color.
func flatten(dst *image.RGBA, bgra []byte, bg color.RGBA) {
	for i := 0; i+3 < len(dst.Pix) && i+3 < len(bgra); i += 4 {
		a := uint32(bgra[i+3])
		blend := func(c, b uint8) uint8 {
			return uint8((uint32(c)*a + uint32(b)*(255-a) + 127) / 255)
		}
		dst.Pix[i+0] = blend(bgra[i+2], bg.R)
		dst.Pix[i+1] = blend(bgra[i+1], bg.G)
		dst.Pix[i+2] = blend(bgra[i+0], bg.B)
		dst.Pix[i+3] = 0xff
	}
}

// writeJPEG encodes img into a temporary file in the directory of path,
// then renames it to path.
func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".webp2jpg-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding JPEG: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// errorKind names the decoder error kind of err, or "io" for other errors.
func errorKind(err error) string {
	for _, kind := range []error{
		webp.ErrMalformedContainer,
		webp.ErrTruncatedChunk,
		webp.ErrBitstream,
		webp.ErrUnsupportedFeature,
		webp.ErrDimensionOutOfRange,
		webp.ErrInvalidBuffer,
	} {
		if errors.Is(err, kind) {
			return strings.TrimPrefix(kind.Error(), "webp: ")
		}
	}
	return "io"
}
