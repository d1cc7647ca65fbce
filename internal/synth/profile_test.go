package synth

import "testing"

func TestProfileFor(t *testing.T) {
	t.Run("known moods resolve", func(t *testing.T) {
		for _, mood := range Moods() {
			p := ProfileFor(mood)
			if len(p.Frequencies) == 0 {
				t.Errorf("mood %q: empty frequency list", mood)
			}
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		if got, want := ProfileFor("  Calm "), ProfileFor("calm"); got.Waveform != want.Waveform {
			t.Errorf("normalized lookup mismatch: %+v vs %+v", got, want)
		}
	})

	t.Run("unknown tags fall back without failing", func(t *testing.T) {
		for _, tag := range []string{"", "zesty", "🎸", "not-a-mood"} {
			p := ProfileFor(tag)
			if len(p.Frequencies) != 3 {
				t.Errorf("tag %q: fallback has %d partials, want 3", tag, len(p.Frequencies))
			}
			if p.Waveform != WaveSine {
				t.Errorf("tag %q: fallback waveform = %q, want sine", tag, p.Waveform)
			}
		}
	})

	t.Run("all profiles keep modulation in range", func(t *testing.T) {
		check := func(name string, p Profile) {
			if p.LFODepth < 0 || p.LFODepth > 1 {
				t.Errorf("%s: LFO depth %f out of [0,1]", name, p.LFODepth)
			}
			if p.LFOFrequency <= 0 {
				t.Errorf("%s: LFO frequency %f not positive", name, p.LFOFrequency)
			}
			for _, f := range p.Frequencies {
				if f <= 20 || f >= 2000 {
					t.Errorf("%s: partial %f Hz outside the bed register", name, f)
				}
			}
		}
		for name, p := range profiles {
			check(name, p)
		}
		check("default", defaultProfile)
	})
}
