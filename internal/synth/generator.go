package synth

import (
	"math"
	"math/rand"

	"github.com/example/go-storyreel/internal/audio"
)

// Timing constants of the bed envelope, in seconds.
const (
	releaseTail   = 3.0 // rendered past the nominal duration
	bedFade       = 2.0 // master fade-in and fade-out length
	partialAttack = 1.0 // per-partial gain ramp
	partialOffset = 0.1 // cascade stagger between partials
)

// partialLevel is the summed headroom budget: each partial ramps to
// 0.15/partialCount so a full stack peaks around 0.15 before bed gain.
const partialLevel = 0.15

// Params describes one atmosphere voice. Two generators with equal Params
// and an equally seeded Rand produce identical output.
type Params struct {
	Profile  Profile
	Duration float64 // narration length; output runs Duration+3s
	Tempo    float64 // narration tempo multiplier, 1.0 when unset
	Volume   float64 // target bed gain
	Rand     *rand.Rand // one-shot detune source; nil disables the random offset
}

// Generator realizes a Params recipe as a streaming mono source. The same
// generator drives live playback (pulled block by block) and offline export
// (drained via Render).
type Generator struct {
	rate     float64
	duration float64
	tempo    float64
	volume   float64
	profile  Profile
	partials []partial
	pos      int
	total    int
}

type partial struct {
	freq        float64 // base frequency, Hz
	phase       float64 // [0, 1)
	randomCents float64 // one-shot detune offset
	driftFreq   float64 // detune LFO frequency, Hz
	driftCents  float64 // detune LFO depth, cents
	attackStart float64 // cascade entry time, seconds
	level       float64 // gain plateau
}

// NewGenerator builds the oscillator bank for a recipe at the given output
// sample rate.
func NewGenerator(p Params, rate int) *Generator {
	tempo := p.Tempo
	if tempo <= 0 {
		tempo = 1
	}

	n := len(p.Profile.Frequencies)
	parts := make([]partial, n)
	for i, f := range p.Profile.Frequencies {
		var cents float64
		if p.Rand != nil {
			cents = (p.Rand.Float64()*2 - 1) * p.Profile.DetuneCents
		}
		parts[i] = partial{
			freq:        f,
			randomCents: cents,
			driftFreq:   0.2 * float64(i+1) * tempo,
			driftCents:  p.Profile.DetuneCents * 2,
			attackStart: partialOffset * float64(i),
			level:       partialLevel / float64(n),
		}
	}

	return &Generator{
		rate:     float64(rate),
		duration: p.Duration,
		tempo:    tempo,
		volume:   p.Volume,
		profile:  p.Profile,
		partials: parts,
		total:    int((p.Duration + releaseTail) * float64(rate)),
	}
}

// Remaining reports how many samples the generator will still produce.
func (g *Generator) Remaining() int {
	if g.pos >= g.total {
		return 0
	}
	return g.total - g.pos
}

// Next fills dst with the following block of bed samples and returns the
// count written. It returns 0 once the voice (including its release tail)
// is exhausted.
func (g *Generator) Next(dst []float32) int {
	n := len(dst)
	if rem := g.total - g.pos; n > rem {
		n = rem
	}
	if n <= 0 {
		return 0
	}

	for i := 0; i < n; i++ {
		t := float64(g.pos) / g.rate

		var sum float64
		for pi := range g.partials {
			p := &g.partials[pi]

			cents := p.randomCents + p.driftCents*math.Sin(2*math.Pi*p.driftFreq*t)
			freq := p.freq * math.Exp2(cents/1200)
			p.phase += freq / g.rate
			p.phase -= math.Floor(p.phase)

			sum += oscillate(g.profile.Waveform, p.phase) * g.partialGain(p, t)
		}

		dst[i] = float32(sum * g.bedGain(t))
		g.pos++
	}

	return n
}

// partialGain combines the staggered linear attack, the hold plateau, and
// the exponential release that begins 2s before the nominal end and decays
// toward (never reaching) zero.
func (g *Generator) partialGain(p *partial, t float64) float64 {
	attack := (t - p.attackStart) / partialAttack
	if attack <= 0 {
		return 0
	}
	if attack > 1 {
		attack = 1
	}

	release := 1.0
	if relStart := g.duration - bedFade; t > relStart {
		release = math.Pow(1e-4, (t-relStart)/bedFade)
	}

	return p.level * attack * release
}

// bedGain is the shared output stage: a 2s fade-in, a 2s fade-out ending at
// the nominal duration, and the tempo-synced pulse LFO on top. The LFO is
// multiplicative so the fades stay silent at the edges.
func (g *Generator) bedGain(t float64) float64 {
	if t >= g.duration {
		return 0
	}

	env := 1.0
	if in := t / bedFade; in < env {
		env = in
	}
	if out := (g.duration - t) / bedFade; out < env {
		env = out
	}
	if env < 0 {
		env = 0
	}

	pulse := 1 + g.profile.LFODepth*math.Sin(2*math.Pi*g.profile.LFOFrequency*g.tempo*t)
	if pulse < 0 {
		pulse = 0
	}

	return g.volume * env * pulse
}

// Render drains a fresh copy of the voice into a complete buffer, for
// offline mixing.
func Render(p Params, rate int) *audio.Samples {
	g := NewGenerator(p, rate)
	data := make([]float32, g.total)
	for off := 0; off < len(data); {
		n := g.Next(data[off:])
		if n == 0 {
			break
		}
		off += n
	}
	return &audio.Samples{Rate: rate, Data: [][]float32{data}}
}

func oscillate(w Waveform, phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		return 1 - 4*math.Abs(phase-0.5)
	default: // sine
		return math.Sin(2 * math.Pi * phase)
	}
}
