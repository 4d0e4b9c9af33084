// Package container parses the RIFF/WebP container: it validates the file
// header, walks the chunk list and locates the elementary stream of a still
// image together with its optional alpha chunk.
package container

// FourCC creates a FourCC value from four bytes (little-endian).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// Container FourCC values.
var (
	FourCCRIFF = FourCC('R', 'I', 'F', 'F')
	FourCCWEBP = FourCC('W', 'E', 'B', 'P')
	FourCCVP8  = FourCC('V', 'P', '8', ' ')
	FourCCVP8L = FourCC('V', 'P', '8', 'L')
	FourCCVP8X = FourCC('V', 'P', '8', 'X')
	FourCCALPH = FourCC('A', 'L', 'P', 'H')
	FourCCANIM = FourCC('A', 'N', 'I', 'M')
	FourCCANMF = FourCC('A', 'N', 'M', 'F')
	FourCCICCP = FourCC('I', 'C', 'C', 'P')
	FourCCEXIF = FourCC('E', 'X', 'I', 'F')
	FourCCXMP  = FourCC('X', 'M', 'P', ' ')
)

// Container structure sizes.
const (
	TagSize         = 4  // Size of a chunk tag (e.g. "VP8L")
	ChunkHeaderSize = 8  // Size of a chunk header
	RIFFHeaderSize  = 12 // Size of the RIFF header ("RIFFnnnnWEBP")
	VP8XChunkSize   = 10 // Size of a VP8X chunk
)

// VP8 elementary stream constants.
const (
	VP8Signature       = 0x9d012a // Signature in VP8 data
	VP8FrameHeaderSize = 10       // Size of the key frame header within VP8 data
)

// VP8L elementary stream constants.
const (
	VP8LMagicByte       = 0x2f // VP8L signature byte
	VP8LImageSizeBits   = 14   // Number of bits used to store width and height
	VP8LVersion         = 0    // version 0
	VP8LFrameHeaderSize = 5    // Size of the VP8L frame header
)

// VP8X feature flags (from the first byte of VP8X chunk payload).
const (
	AnimationFlag = 0x02
	XMPFlag       = 0x04
	EXIFFlag      = 0x08
	AlphaFlag     = 0x10
	ICCPFlag      = 0x20
)

// Limits.
const (
	MaxDimension    = 16383 // largest width or height a still image may have
	MaxChunkPayload = ^uint32(0) - ChunkHeaderSize - 1
)
