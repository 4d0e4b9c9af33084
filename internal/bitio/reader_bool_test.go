package bitio

import (
	"math/rand"
	"testing"
)

func TestBoolReader_AllZeroData(t *testing.T) {
	br := NewBoolReader(make([]byte, 16))
	for i := 0; i < 40; i++ {
		if bit := br.GetBit(0x80); bit != 0 {
			t.Fatalf("bit %d: got %d, want 0", i, bit)
		}
	}
	if br.EOF() {
		t.Error("unexpected EOF")
	}
}

func TestBoolReader_AllOnesData(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = 0xff
	}
	br := NewBoolReader(data)
	for i := 0; i < 40; i++ {
		if bit := br.GetBit(0x80); bit != 1 {
			t.Fatalf("bit %d: got %d, want 1", i, bit)
		}
	}
}

func TestBoolReader_EOF(t *testing.T) {
	br := NewBoolReader([]byte{0x12})
	for i := 0; i < 64; i++ {
		br.GetBit(0x80)
	}
	if !br.EOF() {
		t.Error("EOF not reported after reading far past a 1-byte input")
	}
}

func TestBoolRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		seed int64
		n    int
		prob func(r *rand.Rand) uint8
	}{
		{"uniform", 1, 500, func(*rand.Rand) uint8 { return 0x80 }},
		{"varied", 2, 2000, func(r *rand.Rand) uint8 { return uint8(r.Intn(256)) }},
		{"skewed", 3, 2000, func(r *rand.Rand) uint8 { return 250 + uint8(r.Intn(6)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(tt.seed))
			bits := make([]int, tt.n)
			probs := make([]uint8, tt.n)
			bw := NewBoolWriter()
			for i := range bits {
				bits[i] = rng.Intn(2)
				probs[i] = tt.prob(rng)
				bw.PutBit(bits[i], probs[i])
			}
			br := NewBoolReader(bw.Finish())
			for i := range bits {
				if got := br.GetBit(probs[i]); got != bits[i] {
					t.Fatalf("symbol %d (prob %d): got %d, want %d", i, probs[i], got, bits[i])
				}
			}
			if br.EOF() {
				t.Error("reader hit EOF on a complete stream")
			}
		})
	}
}

func TestBoolRoundTrip_Values(t *testing.T) {
	bw := NewBoolWriter()
	bw.PutValue(0x5a, 7)
	bw.PutSignedValue(-9, 4)
	bw.PutSignedValue(6, 4)
	bw.PutOptionalSigned(0, 6)
	bw.PutOptionalSigned(-33, 6)
	bw.PutFlag(true, 10)

	br := NewBoolReader(bw.Finish())
	if v := br.GetValue(7); v != 0x5a {
		t.Errorf("GetValue(7) = %#x, want 0x5a", v)
	}
	if v := br.GetSignedValue(4); v != -9 {
		t.Errorf("GetSignedValue = %d, want -9", v)
	}
	if v := br.GetSignedValue(4); v != 6 {
		t.Errorf("GetSignedValue = %d, want 6", v)
	}
	if v := br.GetOptionalSigned(6); v != 0 {
		t.Errorf("GetOptionalSigned = %d, want 0", v)
	}
	if v := br.GetOptionalSigned(6); v != -33 {
		t.Errorf("GetOptionalSigned = %d, want -33", v)
	}
	if !br.GetFlag(10) {
		t.Error("GetFlag = false, want true")
	}
}

func TestBoolReader_GetSigned(t *testing.T) {
	bw := NewBoolWriter()
	bw.PutBit(1, 0x80)
	bw.PutBit(0, 0x80)
	br := NewBoolReader(bw.Finish())
	if v := br.GetSigned(7); v != -7 {
		t.Errorf("GetSigned = %d, want -7", v)
	}
	if v := br.GetSigned(7); v != 7 {
		t.Errorf("GetSigned = %d, want 7", v)
	}
}
