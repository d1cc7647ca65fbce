package synth

import "strings"

// Waveform names the oscillator shape of a mood profile.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveTriangle Waveform = "triangle"
	WaveSawtooth Waveform = "sawtooth"
	WaveSquare   Waveform = "square"
)

// Profile is an additive-synthesis recipe for one ambient bed: the partial
// frequencies, their shared waveform, detune drift range in cents, and the
// tempo-synced pulse LFO. Profiles are derived values, never stored.
type Profile struct {
	Frequencies  []float64
	Waveform     Waveform
	DetuneCents  float64
	LFOFrequency float64
	LFODepth     float64
}

// profiles maps mood and music-preset tags to recipes. Tags arrive from
// AI classification, so lookups are case-insensitive and misses fall back to
// a default rather than failing.
var profiles = map[string]Profile{
	"calm": {
		Frequencies:  []float64{220.00, 277.18, 329.63},
		Waveform:     WaveSine,
		DetuneCents:  4,
		LFOFrequency: 0.10,
		LFODepth:     0.15,
	},
	"upbeat": {
		Frequencies:  []float64{261.63, 329.63, 392.00, 523.25},
		Waveform:     WaveTriangle,
		DetuneCents:  6,
		LFOFrequency: 0.25,
		LFODepth:     0.20,
	},
	"dramatic": {
		Frequencies:  []float64{110.00, 130.81, 164.81},
		Waveform:     WaveSawtooth,
		DetuneCents:  10,
		LFOFrequency: 0.15,
		LFODepth:     0.30,
	},
	"mysterious": {
		Frequencies:  []float64{146.83, 174.61, 220.00, 233.08},
		Waveform:     WaveSine,
		DetuneCents:  12,
		LFOFrequency: 0.08,
		LFODepth:     0.25,
	},
	"happy": {
		Frequencies:  []float64{293.66, 369.99, 440.00},
		Waveform:     WaveTriangle,
		DetuneCents:  5,
		LFOFrequency: 0.30,
		LFODepth:     0.15,
	},
	"sad": {
		Frequencies:  []float64{196.00, 233.08, 293.66},
		Waveform:     WaveSine,
		DetuneCents:  8,
		LFOFrequency: 0.07,
		LFODepth:     0.20,
	},
	"epic": {
		Frequencies:  []float64{87.31, 130.81, 174.61, 261.63},
		Waveform:     WaveSquare,
		DetuneCents:  7,
		LFOFrequency: 0.20,
		LFODepth:     0.35,
	},
	"tense": {
		Frequencies:  []float64{123.47, 155.56, 185.00},
		Waveform:     WaveSawtooth,
		DetuneCents:  14,
		LFOFrequency: 0.18,
		LFODepth:     0.30,
	},
	"chill": {
		Frequencies:  []float64{174.61, 220.00, 261.63},
		Waveform:     WaveSine,
		DetuneCents:  3,
		LFOFrequency: 0.12,
		LFODepth:     0.12,
	},
	"ambient": {
		Frequencies:  []float64{130.81, 196.00, 246.94, 329.63},
		Waveform:     WaveSine,
		DetuneCents:  9,
		LFOFrequency: 0.05,
		LFODepth:     0.18,
	},
}

// defaultProfile is the fallback for unrecognized tags: three sine partials,
// gentle drift.
var defaultProfile = Profile{
	Frequencies:  []float64{220.00, 275.00, 330.00},
	Waveform:     WaveSine,
	DetuneCents:  5,
	LFOFrequency: 0.10,
	LFODepth:     0.20,
}

// ProfileFor maps a mood or preset tag to its recipe. Unknown tags return
// the default profile; this never fails since tags come from less-trusted
// classification output.
func ProfileFor(mood string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(mood))]; ok {
		return p
	}
	return defaultProfile
}

// Moods lists the known preset tags in no particular order.
func Moods() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	return out
}
