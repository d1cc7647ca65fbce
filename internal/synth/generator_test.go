package synth

import (
	"math"
	"math/rand"
	"testing"
)

const testRate = 8000

func testParams(duration, volume float64) Params {
	return Params{
		Profile:  ProfileFor("calm"),
		Duration: duration,
		Tempo:    1,
		Volume:   volume,
	}
}

func TestRenderLength(t *testing.T) {
	out := Render(testParams(5, 0.5), testRate)
	want := int((5 + 3.0) * testRate)
	if out.Frames() != want {
		t.Errorf("frames = %d, want %d (duration + 3s tail)", out.Frames(), want)
	}
	if out.Channels() != 1 || out.Rate != testRate {
		t.Errorf("shape = %d ch @ %d Hz, want mono @ %d", out.Channels(), out.Rate, testRate)
	}
}

func TestRenderEnvelope(t *testing.T) {
	out := Render(testParams(6, 0.8), testRate)
	data := out.Data[0]

	t.Run("starts silent", func(t *testing.T) {
		if data[0] != 0 {
			t.Errorf("first sample = %f, want 0", data[0])
		}
	})

	t.Run("audible mid-voice", func(t *testing.T) {
		var peak float64
		for _, v := range data[3*testRate : 4*testRate] {
			if a := math.Abs(float64(v)); a > peak {
				peak = a
			}
		}
		if peak < 0.01 {
			t.Errorf("mid-voice peak = %f, expected audible signal", peak)
		}
	})

	t.Run("silent after nominal end", func(t *testing.T) {
		for i, v := range data[6*testRate:] {
			if v != 0 {
				t.Fatalf("tail sample %d = %f, want 0 after master fade", i, v)
			}
		}
	})

	t.Run("fade-in is monotonic at block scale", func(t *testing.T) {
		// Compare RMS of consecutive 0.25s windows across the 2s fade.
		window := testRate / 4
		prev := -1.0
		for w := 0; w < 8; w++ {
			var sum float64
			for _, v := range data[w*window : (w+1)*window] {
				sum += float64(v) * float64(v)
			}
			rms := math.Sqrt(sum / float64(window))
			if rms < prev*0.9 {
				t.Fatalf("window %d rms %f fell below previous %f during fade-in", w, rms, prev)
			}
			prev = rms
		}
	})
}

func TestRenderZeroVolumeIsSilence(t *testing.T) {
	out := Render(testParams(3, 0), testRate)
	for i, v := range out.Data[0] {
		if v != 0 {
			t.Fatalf("sample %d = %f, want 0 at zero volume", i, v)
		}
	}
}

func TestRenderDeterministicWithSeed(t *testing.T) {
	params := func() Params {
		p := testParams(2, 0.5)
		p.Rand = rand.New(rand.NewSource(42))
		return p
	}
	a := Render(params(), testRate)
	b := Render(params(), testRate)
	for i := range a.Data[0] {
		if a.Data[0][i] != b.Data[0][i] {
			t.Fatalf("sample %d differs between equally seeded renders", i)
		}
	}
}

func TestRenderUnknownMoodNeverPanics(t *testing.T) {
	p := Params{Profile: ProfileFor("definitely-not-a-mood"), Duration: 1, Volume: 0.4}
	out := Render(p, testRate)
	if out.Frames() == 0 {
		t.Error("fallback profile rendered no samples")
	}
}

func TestGeneratorNextExhausts(t *testing.T) {
	g := NewGenerator(testParams(1, 0.5), testRate)
	block := make([]float32, 1024)
	var total int
	for {
		n := g.Next(block)
		if n == 0 {
			break
		}
		total += n
	}
	want := int((1 + 3.0) * testRate)
	if total != want {
		t.Errorf("streamed %d samples, want %d", total, want)
	}
	if g.Remaining() != 0 {
		t.Errorf("Remaining() = %d after exhaustion", g.Remaining())
	}
}

func TestOscillateShapes(t *testing.T) {
	cases := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{WaveSine, 0.25, 1},
		{WaveSquare, 0.25, 1},
		{WaveSquare, 0.75, -1},
		{WaveSawtooth, 0, -1},
		{WaveSawtooth, 0.75, 0.5},
		{WaveTriangle, 0.5, 1},
		{WaveTriangle, 0, -1},
	}
	for _, tc := range cases {
		if got := oscillate(tc.w, tc.phase); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("oscillate(%s, %f) = %f, want %f", tc.w, tc.phase, got, tc.want)
		}
	}
}
