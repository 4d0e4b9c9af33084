package container

import (
	"encoding/binary"

	"github.com/dany5639/webp/internal/webperr"
)

// Features describes the high-level properties of a WebP file, extracted from
// its RIFF header, the optional VP8X extended header and the elementary
// stream header.
type Features struct {
	Width        int
	Height       int
	HasAlpha     bool
	HasAnimation bool
	Format       Format
	Extended     bool  // the file starts with a VP8X chunk
	Flags        uint8 // VP8X feature flags, 0 for simple files
	CanvasWidth  int   // VP8X canvas width, or Width for simple files
	CanvasHeight int   // VP8X canvas height, or Height for simple files
}

// Image is a parsed container. Bitstream and Alpha alias the input buffer.
type Image struct {
	Features  Features
	Chunks    []Chunk // every chunk visited, in file order
	Bitstream []byte  // VP8 or VP8L payload, nil for animations
	Alpha     []byte  // ALPH payload of a lossy still, or nil
}

// Parse validates the container in data and locates the still image in it.
// Animated files parse successfully with FormatUndefined and no bitstream;
// decoding them is the caller's decision.
func Parse(data []byte) (*Image, error) {
	end, err := parseRIFFHeader(data)
	if err != nil {
		return nil, err
	}

	first, next, err := readChunk(data, RIFFHeaderSize, end)
	if err != nil {
		return nil, err
	}

	img := &Image{Chunks: []Chunk{first}}
	switch first.FourCC {
	case FourCCVP8, FourCCVP8L:
		if err := img.setBitstream(first); err != nil {
			return nil, err
		}
		img.Features.CanvasWidth = img.Features.Width
		img.Features.CanvasHeight = img.Features.Height
		return img, nil
	case FourCCVP8X:
		if err := img.parseVP8X(first.Payload); err != nil {
			return nil, err
		}
		if err := img.parseExtendedChunks(data, next, end); err != nil {
			return nil, err
		}
		return img, nil
	default:
		return nil, webperr.MalformedContainer.Errorf("riff", "unexpected first chunk %q", first.Tag())
	}
}

// parseVP8X reads the flags and canvas size of an extended file.
func (img *Image) parseVP8X(payload []byte) error {
	if len(payload) < VP8XChunkSize {
		return webperr.MalformedContainer.Errorf("vp8x", "chunk needs %d bytes, have %d", VP8XChunkSize, len(payload))
	}
	f := &img.Features
	f.Extended = true
	f.Flags = payload[0]
	f.HasAnimation = f.Flags&AnimationFlag != 0
	f.HasAlpha = f.Flags&AlphaFlag != 0

	// Canvas dimensions: 24-bit LE, stored as value-1.
	f.CanvasWidth = 1 + readLE24(payload[4:7])
	f.CanvasHeight = 1 + readLE24(payload[7:10])
	if uint64(f.CanvasWidth)*uint64(f.CanvasHeight) >= 1<<32 {
		return webperr.DimensionOutOfRange.Errorf("vp8x", "canvas %dx%d too large", f.CanvasWidth, f.CanvasHeight)
	}
	return nil
}

// parseExtendedChunks walks the chunks following VP8X up to and including
// the image chunk of a still, or to the end of the file for animations.
func (img *Image) parseExtendedChunks(data []byte, off, end int) error {
	f := &img.Features
	var alpha []byte
	for off < end {
		c, next, err := readChunk(data, off, end)
		if err != nil {
			return err
		}
		img.Chunks = append(img.Chunks, c)
		off = next

		switch c.FourCC {
		case FourCCANIM, FourCCANMF:
			f.HasAnimation = true
		case FourCCALPH:
			if alpha == nil && !f.HasAnimation {
				alpha = c.Payload
			}
		case FourCCVP8, FourCCVP8L:
			if f.HasAnimation {
				continue
			}
			if c.FourCC == FourCCVP8 {
				img.Alpha = alpha
			}
			if err := img.setBitstream(c); err != nil {
				return err
			}
			if f.Width != f.CanvasWidth || f.Height != f.CanvasHeight {
				return webperr.MalformedContainer.Errorf("vp8x", "canvas %dx%d does not match image %dx%d",
					f.CanvasWidth, f.CanvasHeight, f.Width, f.Height)
			}
			return nil
		}
		// ICCP, EXIF, XMP and unknown chunks are skipped.
	}

	if !f.HasAnimation {
		return webperr.MalformedContainer.Errorf("vp8x", "no image chunk")
	}
	f.Width = f.CanvasWidth
	f.Height = f.CanvasHeight
	f.Format = FormatUndefined
	return nil
}

// setBitstream records the elementary stream chunk c and reads its header.
func (img *Image) setBitstream(c Chunk) error {
	f := &img.Features
	img.Bitstream = c.Payload
	if c.FourCC == FourCCVP8L {
		w, h, alpha, err := ParseVP8LHeader(c.Payload)
		if err != nil {
			return err
		}
		f.Format = FormatLossless
		f.Width, f.Height = w, h
		f.HasAlpha = f.HasAlpha || alpha
		return nil
	}

	w, h, err := ParseVP8Header(c.Payload)
	if err != nil {
		return err
	}
	f.Format = FormatLossy
	f.Width, f.Height = w, h
	f.HasAlpha = f.HasAlpha || img.Alpha != nil
	return nil
}

// ParseVP8Header extracts width and height from a VP8 key frame header:
// a 3-byte frame tag, the 3-byte signature and two 16-bit fields holding a
// 14-bit dimension and a 2-bit scale.
func ParseVP8Header(data []byte) (width, height int, err error) {
	if len(data) < VP8FrameHeaderSize {
		return 0, 0, webperr.BitstreamError.Errorf("vp8", "frame header needs %d bytes, have %d", VP8FrameHeaderSize, len(data))
	}

	frameTag := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	if frameTag&1 != 0 {
		return 0, 0, webperr.UnsupportedFeature.Errorf("vp8", "not a key frame")
	}

	// Bytes 3-5: VP8 signature (0x9D 0x01 0x2A), read as big-endian.
	sig := uint32(data[3])<<16 | uint32(data[4])<<8 | uint32(data[5])
	if sig != VP8Signature {
		return 0, 0, webperr.BitstreamError.Errorf("vp8", "invalid signature 0x%06x", sig)
	}

	width = int(binary.LittleEndian.Uint16(data[6:8])) & 0x3fff
	height = int(binary.LittleEndian.Uint16(data[8:10])) & 0x3fff
	if err := checkDimensions("vp8", width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// ParseVP8LHeader extracts width, height and the alpha hint from the 5-byte
// VP8L header.
func ParseVP8LHeader(data []byte) (width, height int, hasAlpha bool, err error) {
	if len(data) < VP8LFrameHeaderSize {
		return 0, 0, false, webperr.BitstreamError.Errorf("vp8l", "header needs %d bytes, have %d", VP8LFrameHeaderSize, len(data))
	}
	if data[0] != VP8LMagicByte {
		return 0, 0, false, webperr.BitstreamError.Errorf("vp8l", "invalid signature 0x%02x", data[0])
	}

	bits := binary.LittleEndian.Uint32(data[1:5])
	const mask = 1<<VP8LImageSizeBits - 1
	width = int(bits&mask) + 1
	height = int((bits>>VP8LImageSizeBits)&mask) + 1
	hasAlpha = (bits>>(2*VP8LImageSizeBits))&1 != 0
	if version := bits >> (2*VP8LImageSizeBits + 1); version != VP8LVersion {
		return 0, 0, false, webperr.UnsupportedFeature.Errorf("vp8l", "version %d", version)
	}
	if err := checkDimensions("vp8l", width, height); err != nil {
		return 0, 0, false, err
	}
	return width, height, hasAlpha, nil
}

func checkDimensions(op string, width, height int) error {
	if width < 1 || height < 1 || width > MaxDimension || height > MaxDimension {
		return webperr.DimensionOutOfRange.Errorf(op, "%dx%d outside [1, %d]", width, height, MaxDimension)
	}
	return nil
}
