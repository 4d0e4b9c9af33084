package container

import (
	"encoding/binary"

	"github.com/dany5639/webp/internal/webperr"
)

// Format identifies the elementary stream of a still image.
type Format int

const (
	FormatUndefined Format = iota
	FormatLossy            // VP8
	FormatLossless         // VP8L
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatLossy:
		return "lossy"
	case FormatLossless:
		return "lossless"
	default:
		return "undefined"
	}
}

// Chunk is one RIFF chunk. Payload aliases the parsed buffer and excludes
// the padding byte.
type Chunk struct {
	FourCC  uint32
	Offset  int // offset of the chunk header in the file
	Payload []byte
}

// Tag returns the chunk's FourCC as a string.
func (c Chunk) Tag() string {
	return FourCCString(c.FourCC)
}

// parseRIFFHeader validates the 12-byte RIFF/WEBP header and returns the end
// offset of the RIFF payload.
func parseRIFFHeader(data []byte) (int, error) {
	if len(data) < RIFFHeaderSize {
		return 0, webperr.MalformedContainer.Errorf("riff", "header needs %d bytes, have %d", RIFFHeaderSize, len(data))
	}
	if binary.LittleEndian.Uint32(data[0:4]) != FourCCRIFF {
		return 0, webperr.MalformedContainer.Errorf("riff", "missing RIFF tag")
	}
	if binary.LittleEndian.Uint32(data[8:12]) != FourCCWEBP {
		return 0, webperr.MalformedContainer.Errorf("riff", "form type is %q, not WEBP", FourCCString(binary.LittleEndian.Uint32(data[8:12])))
	}

	size := binary.LittleEndian.Uint32(data[4:8])
	if size < TagSize {
		return 0, webperr.MalformedContainer.Errorf("riff", "declared size %d too small", size)
	}
	if size > MaxChunkPayload || uint64(size) > uint64(len(data)-ChunkHeaderSize) {
		return 0, webperr.MalformedContainer.Errorf("riff", "declared size %d exceeds the %d available bytes", size, len(data)-ChunkHeaderSize)
	}
	return ChunkHeaderSize + int(size), nil
}

// readChunk reads the chunk starting at off. end bounds the RIFF payload.
// It returns the chunk and the offset of the next one. A missing padding
// byte after the last chunk is tolerated.
func readChunk(data []byte, off, end int) (Chunk, int, error) {
	if end-off < ChunkHeaderSize {
		return Chunk{}, 0, webperr.TruncatedChunk.Errorf("riff", "chunk header at offset %d needs %d bytes, have %d", off, ChunkHeaderSize, end-off)
	}
	fourcc := binary.LittleEndian.Uint32(data[off : off+4])
	size := binary.LittleEndian.Uint32(data[off+4 : off+8])
	start := off + ChunkHeaderSize
	if uint64(size) > uint64(end-start) {
		return Chunk{}, 0, webperr.TruncatedChunk.Errorf("riff", "chunk %q at offset %d declares %d bytes, have %d", FourCCString(fourcc), off, size, end-start)
	}
	next := start + int(PaddedSize(size))
	if next > end {
		next = end
	}
	return Chunk{FourCC: fourcc, Offset: off, Payload: data[start : start+int(size)]}, next, nil
}

// PaddedSize returns the payload size padded to an even number of bytes,
// as required by the RIFF format.
func PaddedSize(size uint32) uint32 {
	return size + (size & 1)
}

// FourCCString returns a human-readable string for a FourCC value.
func FourCCString(fourcc uint32) string {
	b := [4]byte{
		byte(fourcc),
		byte(fourcc >> 8),
		byte(fourcc >> 16),
		byte(fourcc >> 24),
	}
	return string(b[:])
}

// readLE24 reads a 24-bit little-endian integer from 3 bytes.
func readLE24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}
