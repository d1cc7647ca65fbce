// Package playback manages real-time preview of voice and atmosphere:
// seeking, live volume and speed changes, and coordinated teardown.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/synth"
)

// Smoothing time constants. Live parameter changes glide instead of jumping
// so they never click; the bed gets a faster ramp on stop.
const (
	paramTau   = 0.1  // seconds, volume/speed changes
	stopTau    = 0.05 // seconds, bed fade on stop
	stopGrace  = 250 * time.Millisecond
	outputRate = 44100
	channels   = 2
)

// PlayOptions describes one playback request.
type PlayOptions struct {
	Voice       *audio.Samples // decoded voice payload, required
	Offset      float64        // start position in seconds
	Mood        string
	Tempo       float64
	Duration    float64 // bed length; defaults to the voice duration
	VoiceVolume float64
	MusicVolume float64
	Speed       float64
	SuppressBed bool
	CustomBed   *audio.Samples // looped instead of synthesizing, optional
	OnComplete  func()         // fired once on natural end of voice
}

// Session owns at most one active voice and one background bed. Starting a
// new playback replaces the previous graph wholesale; there is never doubled
// audio. A Session is an explicit owned object rather than package state so
// tests can run several independently.
type Session struct {
	dev OutputDevice
	log *slog.Logger

	mu       sync.Mutex
	voice    *voiceStream
	bed      *bedStream
	started  bool
	stopping bool
}

// NewSession wraps an output device. The zero logger defaults to slog's
// process logger.
func NewSession(dev OutputDevice, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{dev: dev, log: logger}
}

// voiceStream plays decoded voice samples with a resampling read head.
type voiceStream struct {
	data       []float32
	srcRate    float64
	pos        float64 // source frames
	gain       *ramp
	speed      *ramp
	onComplete func()
	completed  bool
}

// bedStream is either a streaming synthesis voice or a looped custom buffer,
// behind one post-gain stage used for live volume and the stop ramp.
type bedStream struct {
	gen   *synth.Generator
	loop  []float32
	rate  float64 // loop source rate
	pos   float64 // loop read head
	gain  *ramp
	block []float32
	used  int
}

// Play starts (or restarts) playback from opts.Offset. Any prior graph is
// torn down first.
func (s *Session) Play(opts PlayOptions) error {
	if opts.Voice == nil || opts.Voice.Frames() == 0 {
		return errors.New("playback: missing voice samples")
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}
	duration := opts.Duration
	if duration <= 0 {
		duration = opts.Voice.Duration()
	}

	s.mu.Lock()
	s.voice = &voiceStream{
		data:       opts.Voice.Mono(),
		srcRate:    float64(opts.Voice.Rate),
		pos:        opts.Offset * float64(opts.Voice.Rate),
		gain:       newRamp(opts.VoiceVolume, paramTau, outputRate),
		speed:      newRamp(speed, paramTau, outputRate),
		onComplete: opts.OnComplete,
	}
	s.bed = buildBed(opts, duration)
	s.stopping = false
	needStart := !s.started
	s.started = true
	s.mu.Unlock()

	if needStart {
		if err := s.dev.Start(outputRate, channels, s.pull); err != nil {
			s.mu.Lock()
			s.voice = nil
			s.bed = nil
			s.started = false
			s.mu.Unlock()
			return fmt.Errorf("playback: %w", err)
		}
	}
	return nil
}

func buildBed(opts PlayOptions, duration float64) *bedStream {
	if opts.SuppressBed {
		return nil
	}
	if opts.CustomBed != nil && opts.CustomBed.Frames() > 0 {
		return &bedStream{
			loop: opts.CustomBed.Mono(),
			rate: float64(opts.CustomBed.Rate),
			gain: newRamp(opts.MusicVolume, paramTau, outputRate),
		}
	}
	// Volume is held at unity inside the generator so the live gain stage
	// keeps full control of it.
	gen := synth.NewGenerator(synth.Params{
		Profile:  synth.ProfileFor(opts.Mood),
		Duration: duration,
		Tempo:    opts.Tempo,
		Volume:   1,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, outputRate)
	return &bedStream{
		gen:   gen,
		gain:  newRamp(opts.MusicVolume, paramTau, outputRate),
		block: make([]float32, 0, 512),
	}
}

// Seek restarts only the voice from a new offset; the atmosphere keeps
// playing uninterrupted. Volume, speed, and the completion callback carry
// over.
func (s *Session) Seek(offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == nil {
		return errors.New("playback: nothing playing")
	}
	if offset < 0 {
		offset = 0
	}
	s.voice.pos = offset * s.voice.srcRate
	s.voice.completed = false
	return nil
}

// SetVoiceVolume glides the voice gain to a new target.
func (s *Session) SetVoiceVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice != nil {
		s.voice.gain.setTarget(v)
	}
}

// SetMusicVolume glides the bed gain to a new target.
func (s *Session) SetMusicVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bed != nil {
		s.bed.gain.setTarget(v)
	}
}

// SetSpeed glides the voice playback rate without restarting it.
func (s *Session) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice != nil {
		s.voice.speed.setTarget(speed)
	}
}

// Playing reports whether a graph is active (including the stop grace
// period).
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stop removes the voice immediately and ramps the bed toward silence, then
// tears the graph down after a short grace delay so stopping never clicks.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.started || s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	s.voice = nil
	if s.bed != nil {
		s.bed.gain.retarget(0, stopTau, outputRate)
	}
	s.mu.Unlock()

	time.AfterFunc(stopGrace, s.teardown)
}

func (s *Session) teardown() {
	s.mu.Lock()
	if !s.stopping {
		s.mu.Unlock()
		return
	}
	s.voice = nil
	s.bed = nil
	s.started = false
	s.stopping = false
	s.mu.Unlock()

	if err := s.dev.Stop(); err != nil {
		s.log.Warn("playback device stop failed", "error", err)
	}
}

// Close tears down the graph and releases the device.
func (s *Session) Close() {
	s.mu.Lock()
	s.voice = nil
	s.bed = nil
	s.started = false
	s.stopping = false
	s.mu.Unlock()

	if err := s.dev.Stop(); err != nil {
		s.log.Warn("playback device stop failed", "error", err)
	}
	if err := s.dev.Close(); err != nil {
		s.log.Warn("playback device close failed", "error", err)
	}
}

// pull is the device callback: it mixes voice and bed into an interleaved
// stereo block. It holds the session lock for the duration of one block so
// live parameter changes are ordered against sample generation.
func (s *Session) pull(out []float32) {
	s.mu.Lock()
	voice := s.voice
	bed := s.bed
	defer s.mu.Unlock()

	frames := len(out) / channels
	var done func()

	for i := 0; i < frames; i++ {
		var v float64

		if voice != nil && !voice.completed {
			if voice.pos < float64(len(voice.data)) {
				v += float64(lerpSample(voice.data, voice.pos)) * voice.gain.next()
				voice.pos += voice.srcRate * voice.speed.next() / outputRate
			}
			if voice.pos >= float64(len(voice.data)) {
				voice.completed = true
				done = voice.onComplete
			}
		}

		if bed != nil {
			v += bed.sample() * bed.gain.next()
		}

		out[i*channels] = float32(v)
		out[i*channels+1] = float32(v)
	}

	if done != nil {
		go done()
	}
}

// sample produces the next mono bed value: streamed synthesis blocks or a
// wrapped read of the custom loop.
func (b *bedStream) sample() float64 {
	if b.loop != nil {
		v := audio.LoopAt(b.loop, b.pos)
		b.pos += b.rate / outputRate
		if n := float64(len(b.loop)); b.pos >= n {
			b.pos -= n
		}
		return float64(v)
	}

	if b.used >= len(b.block) {
		n := b.gen.Next(b.block[:cap(b.block)])
		if n == 0 {
			return 0
		}
		b.block = b.block[:n]
		b.used = 0
	}
	v := b.block[b.used]
	b.used++
	return float64(v)
}

func lerpSample(data []float32, pos float64) float32 {
	i := int(pos)
	if i >= len(data)-1 {
		return data[len(data)-1]
	}
	frac := float32(pos - float64(i))
	return data[i] + (data[i+1]-data[i])*frac
}

// ramp is a one-pole smoother used for click-free parameter changes.
type ramp struct {
	value  float64
	target float64
	coeff  float64
}

// newRamp starts settled at the target; smoothing applies only to later
// changes.
func newRamp(target, tau float64, rate int) *ramp {
	return &ramp{value: target, target: target, coeff: rampCoeff(tau, rate)}
}

func rampCoeff(tau float64, rate int) float64 {
	return 1 - math.Exp(-1/(tau*float64(rate)))
}

func (r *ramp) setTarget(v float64) { r.target = v }

// retarget changes both the destination and the glide speed, used by the
// stop ramp.
func (r *ramp) retarget(v, tau float64, rate int) {
	r.target = v
	r.coeff = rampCoeff(tau, rate)
}

func (r *ramp) next() float64 {
	r.value += (r.target - r.value) * r.coeff
	return r.value
}
