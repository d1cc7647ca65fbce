// Package mix performs the non-real-time render of voice plus background
// bed into a single stereo buffer at the export sample rate.
package mix

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/synth"
)

// ExportSampleRate is the fixed stereo rate of every offline render.
const ExportSampleRate = 44100

// bedSeed keeps the one-shot partial detunes of an export reproducible:
// identical Params must render identical buffers.
const bedSeed = 0x5eed

const blockFrames = 4096

// Params is the complete, order-independent description of one export.
type Params struct {
	Voice       *audio.Samples // decoded voice payload, required
	Mood        string         // bed recipe tag; ignored when CustomBed is set
	CustomBed   *audio.Samples // looped pre-recorded background, optional
	Duration    float64        // output length, seconds
	VoiceVolume float64
	MusicVolume float64
	Tempo       float64 // bed pulse multiplier
	Speed       float64 // voice playback speed, 1.0 when unset
}

// Render evaluates the whole graph to completion and returns the finished
// stereo buffer. It is blocking and shares no state with live playback;
// callers serialize their own export requests. The context is honored
// between processing blocks.
func Render(ctx context.Context, p Params) (*audio.Samples, error) {
	if p.Voice == nil || p.Voice.Frames() == 0 {
		return nil, errors.New("mix: missing voice samples")
	}
	if p.Duration <= 0 {
		return nil, fmt.Errorf("mix: invalid duration %f", p.Duration)
	}
	speed := p.Speed
	if speed <= 0 {
		speed = 1
	}

	frames := int(p.Duration * ExportSampleRate)
	left := make([]float32, frames)
	right := make([]float32, frames)

	mono, err := audio.NewMono(p.Voice.Rate, p.Voice.Mono())
	if err != nil {
		return nil, fmt.Errorf("mix: %w", err)
	}
	voice := audio.ResampleLinear(mono, ExportSampleRate, speed).Data[0]

	bed, bedStep := renderBed(p)

	for off := 0; off < frames; off += blockFrames {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mix: %w", err)
		}
		end := off + blockFrames
		if end > frames {
			end = frames
		}
		for i := off; i < end; i++ {
			var v float32
			if i < len(voice) {
				v = voice[i] * float32(p.VoiceVolume)
			}
			if bed != nil {
				v += audio.LoopAt(bed, float64(i)*bedStep) * float32(bedMixGain(p))
			}
			left[i] = v
			right[i] = v
		}
	}

	return audio.NewSamples(ExportSampleRate, [][]float32{left, right})
}

// renderBed produces the background stem source: either the user-supplied
// loop or a deterministic one-shot synthesis of the mood recipe. The
// synthesized bed carries its volume inside the envelope; the custom bed is
// scaled at mix time.
func renderBed(p Params) (data []float32, step float64) {
	if p.CustomBed != nil && p.CustomBed.Frames() > 0 {
		return p.CustomBed.Mono(), float64(p.CustomBed.Rate) / ExportSampleRate
	}

	rendered := synth.Render(synth.Params{
		Profile:  synth.ProfileFor(p.Mood),
		Duration: p.Duration,
		Tempo:    p.Tempo,
		Volume:   p.MusicVolume,
		Rand:     rand.New(rand.NewSource(bedSeed)),
	}, ExportSampleRate)
	return rendered.Data[0], 1
}

// bedMixGain is the scale applied to the bed stem at sum time. The
// synthesized bed already applied MusicVolume in its envelope, so only
// custom loops are scaled here.
func bedMixGain(p Params) float64 {
	if p.CustomBed != nil && p.CustomBed.Frames() > 0 {
		return p.MusicVolume
	}
	return 1
}
