package audio

import "fmt"

// Samples holds decoded or rendered PCM audio as per-channel float32 data
// in [-1, 1]. A Samples value is never mutated after construction; every
// processing step returns a fresh value.
type Samples struct {
	Rate int
	Data [][]float32
}

// NewSamples validates shape and wraps channel data.
// All channels must have equal length.
func NewSamples(rate int, data [][]float32) (*Samples, error) {
	if rate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", rate)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no channels")
	}
	frames := len(data[0])
	for i, ch := range data {
		if len(ch) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", i, len(ch), frames)
		}
	}
	return &Samples{Rate: rate, Data: data}, nil
}

// NewMono wraps a single channel of samples.
func NewMono(rate int, data []float32) (*Samples, error) {
	return NewSamples(rate, [][]float32{data})
}

// Channels returns the channel count.
func (s *Samples) Channels() int { return len(s.Data) }

// Frames returns the per-channel sample count.
func (s *Samples) Frames() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

// Duration returns the playback length in seconds.
func (s *Samples) Duration() float64 {
	return float64(s.Frames()) / float64(s.Rate)
}

// Mono collapses all channels to a single channel by averaging.
// A mono input returns its channel data unchanged (no copy).
func (s *Samples) Mono() []float32 {
	if s.Channels() == 1 {
		return s.Data[0]
	}
	out := make([]float32, s.Frames())
	inv := 1.0 / float32(s.Channels())
	for _, ch := range s.Data {
		for i, v := range ch {
			out[i] += v * inv
		}
	}
	return out
}
