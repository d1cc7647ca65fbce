package audio

import (
	"math"
	"testing"
)

func TestResampleLinear(t *testing.T) {
	t.Run("halves length at double speed", func(t *testing.T) {
		src, _ := NewMono(24000, make([]float32, 24000))
		out := ResampleLinear(src, 24000, 2.0)
		if out.Frames() != 12000 {
			t.Errorf("frames = %d, want 12000", out.Frames())
		}
	})

	t.Run("converts rate preserving duration", func(t *testing.T) {
		src, _ := NewMono(24000, make([]float32, 24000))
		out := ResampleLinear(src, 44100, 1.0)
		if math.Abs(out.Duration()-1.0) > 0.001 {
			t.Errorf("duration = %f, want ~1.0", out.Duration())
		}
		if out.Rate != 44100 {
			t.Errorf("rate = %d, want 44100", out.Rate)
		}
	})

	t.Run("interpolates between neighbors", func(t *testing.T) {
		src, _ := NewMono(4, []float32{0, 1, 0, 1})
		out := ResampleLinear(src, 8, 1.0)
		if got := out.Data[0][1]; math.Abs(float64(got)-0.5) > 1e-6 {
			t.Errorf("interpolated sample = %f, want 0.5", got)
		}
	})
}

func TestLoopAt(t *testing.T) {
	data := []float32{0, 1, 2, 3}

	if got := LoopAt(data, 5); got != 1 {
		t.Errorf("LoopAt(5) = %f, want 1", got)
	}
	// Wrap interpolation between last and first sample.
	if got := LoopAt(data, 3.5); math.Abs(float64(got)-1.5) > 1e-6 {
		t.Errorf("LoopAt(3.5) = %f, want 1.5", got)
	}
	if got := LoopAt(nil, 2); got != 0 {
		t.Errorf("LoopAt(nil) = %f, want 0", got)
	}
}

func TestMono(t *testing.T) {
	s, err := NewSamples(44100, [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("NewSamples: %v", err)
	}
	m := s.Mono()
	if len(m) != 2 || math.Abs(float64(m[0])-0.5) > 1e-6 || math.Abs(float64(m[1])-0.5) > 1e-6 {
		t.Errorf("Mono() = %v, want [0.5 0.5]", m)
	}
}

func TestNewSamplesValidation(t *testing.T) {
	if _, err := NewSamples(0, [][]float32{{0}}); err == nil {
		t.Error("expected error for zero rate")
	}
	if _, err := NewSamples(44100, nil); err == nil {
		t.Error("expected error for no channels")
	}
	if _, err := NewSamples(44100, [][]float32{{0, 0}, {0}}); err == nil {
		t.Error("expected error for ragged channels")
	}
}
