package audio

import (
	"encoding/base64"
	"errors"
	"math"
	"testing"
)

// encodePCM16 builds the provider wire format from int16 samples.
func encodePCM16(samples []int16) string {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		raw[2*i] = byte(uint16(s))
		raw[2*i+1] = byte(uint16(s) >> 8)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecodePCM16Base64(t *testing.T) {
	t.Run("round-trips known samples", func(t *testing.T) {
		in := []int16{0, 1, -1, 1000, -1000, 32767, -32768}
		s, err := DecodePCM16Base64(encodePCM16(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Rate != VoiceSampleRate {
			t.Errorf("rate = %d, want %d", s.Rate, VoiceSampleRate)
		}
		if s.Channels() != 1 {
			t.Errorf("channels = %d, want 1", s.Channels())
		}
		if s.Frames() != len(in) {
			t.Fatalf("frames = %d, want %d", s.Frames(), len(in))
		}
		for i, v := range in {
			want := float64(v) / 32768.0
			got := float64(s.Data[0][i])
			if math.Abs(got-want) > 1e-7 {
				t.Errorf("sample[%d] = %f, want %f", i, got, want)
			}
		}
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		_, err := DecodePCM16Base64("")
		if !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("rejects malformed base64", func(t *testing.T) {
		_, err := DecodePCM16Base64("not!!valid@@base64")
		if !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("rejects odd byte count", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
		_, err := DecodePCM16Base64(payload)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("rejects base64 of zero bytes", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString(nil)
		_, err := DecodePCM16Base64(payload)
		if !errors.Is(err, ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})
}
