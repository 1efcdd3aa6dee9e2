package audio

import (
	"math"
	"testing"
)

func TestEncodeDecodeWAV(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768}
	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("unexpected wav size %d", len(data))
	}

	decoded, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rate != 16000 {
		t.Fatalf("expected rate 16000, got %d", rate)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded))
	}
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, samples[i], decoded[i])
		}
	}
}

func TestEncodeWAVRejectsEmpty(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Fatalf("expected error for empty samples")
	}
	if _, err := EncodeWAV([]int16{1}, 0); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("short")); err == nil {
		t.Fatalf("expected error for truncated data")
	}
	junk := make([]byte, 64)
	if _, _, err := DecodeWAV(junk); err == nil {
		t.Fatalf("expected error for non RIFF data")
	}
}

func TestFloatToPCM16Truncates(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1.0, -1.0, 2.0, -2.0}
	out := FloatToPCM16(in)
	want := []int16{0, 16383, -16383, 32767, -32767, 32767, -32768}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}
}

func TestPCMRoundTripStaysClose(t *testing.T) {
	in := []float32{0.25, -0.75, 0.999}
	back := PCM16ToFloat(FloatToPCM16(in))
	for i := range in {
		if math.Abs(float64(back[i]-in[i])) > 1e-3 {
			t.Fatalf("sample %d drifted: %f vs %f", i, in[i], back[i])
		}
	}
}

func TestBytesToFloat32(t *testing.T) {
	// 1.0 little endian IEEE 754 is 00 00 80 3f.
	data := []byte{0x00, 0x00, 0x80, 0x3f, 0xaa}
	out := BytesToFloat32(data)
	if len(out) != 1 {
		t.Fatalf("expected one sample, got %d", len(out))
	}
	if out[0] != 1.0 {
		t.Fatalf("expected 1.0, got %f", out[0])
	}
}
