package container

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/dany5639/webp/internal/webperr"
)

func riffHeader(size uint32) []byte {
	data := make([]byte, RIFFHeaderSize)
	binary.LittleEndian.PutUint32(data[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(data[4:8], size)
	binary.LittleEndian.PutUint32(data[8:12], FourCCWEBP)
	return data
}

func TestParseRIFFHeader_Valid(t *testing.T) {
	data := append(riffHeader(20), make([]byte, 16)...)
	end, err := parseRIFFHeader(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end != 28 {
		t.Fatalf("end = %d, want 28", end)
	}
}

func TestParseRIFFHeader_Errors(t *testing.T) {
	badTag := riffHeader(4)
	copy(badTag[0:4], "JUNK")
	badForm := riffHeader(4)
	copy(badForm[8:12], "AVI ")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("RIFF")},
		{"bad tag", badTag},
		{"bad form", badForm},
		{"size too small", riffHeader(3)},
		{"size beyond buffer", riffHeader(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRIFFHeader(tt.data)
			if !errors.Is(err, webperr.MalformedContainer) {
				t.Fatalf("err = %v, want MalformedContainer", err)
			}
		})
	}
}

func TestReadChunk(t *testing.T) {
	data := make([]byte, 8+3+1+8)
	binary.LittleEndian.PutUint32(data[0:4], FourCCEXIF)
	binary.LittleEndian.PutUint32(data[4:8], 3)
	copy(data[8:11], "abc")
	binary.LittleEndian.PutUint32(data[12:16], FourCCXMP)

	c, next, err := readChunk(data, 0, len(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Tag() != "EXIF" || string(c.Payload) != "abc" || c.Offset != 0 {
		t.Fatalf("chunk = %+v", c)
	}
	if next != 12 {
		t.Fatalf("next = %d, want 12 (padded)", next)
	}

	c, next, err = readChunk(data, next, len(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.FourCC != FourCCXMP || len(c.Payload) != 0 || next != len(data) {
		t.Fatalf("second chunk = %+v, next %d", c, next)
	}
}

func TestReadChunk_Truncated(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], FourCCVP8L)
	binary.LittleEndian.PutUint32(data[4:8], 5)

	if _, _, err := readChunk(data, 0, len(data)); !errors.Is(err, webperr.TruncatedChunk) {
		t.Fatalf("payload overrun: err = %v, want TruncatedChunk", err)
	}
	if _, _, err := readChunk(data, 6, len(data)); !errors.Is(err, webperr.TruncatedChunk) {
		t.Fatalf("short header: err = %v, want TruncatedChunk", err)
	}
}

func TestReadChunk_MissingFinalPad(t *testing.T) {
	data := make([]byte, 9)
	binary.LittleEndian.PutUint32(data[0:4], FourCCICCP)
	binary.LittleEndian.PutUint32(data[4:8], 1)

	_, next, err := readChunk(data, 0, len(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != len(data) {
		t.Fatalf("next = %d, want %d", next, len(data))
	}
}

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 0},
		{1, 2},
		{2, 2},
		{3, 4},
		{100, 100},
		{101, 102},
	}
	for _, tt := range tests {
		if got := PaddedSize(tt.in); got != tt.want {
			t.Errorf("PaddedSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFourCCString(t *testing.T) {
	if got := FourCCString(FourCCVP8); got != "VP8 " {
		t.Fatalf("FourCCString(VP8) = %q", got)
	}
	if FourCC('V', 'P', '8', 'X') != FourCCVP8X {
		t.Fatal("FourCC mismatch for VP8X")
	}
}

func TestFormatString(t *testing.T) {
	for f, want := range map[Format]string{
		FormatUndefined: "undefined",
		FormatLossy:     "lossy",
		FormatLossless:  "lossless",
		Format(9):       "undefined",
	} {
		if got := f.String(); got != want {
			t.Errorf("Format(%d).String() = %q, want %q", f, got, want)
		}
	}
}
