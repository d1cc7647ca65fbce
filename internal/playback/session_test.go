package playback

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/example/go-storyreel/internal/audio"
)

// pumpDevice drives the session's pull function manually instead of through
// an audio thread.
type pumpDevice struct {
	mu      sync.Mutex
	pull    PullFunc
	rate    int
	starts  int
	stops   int
	closes  int
	running bool
}

func (d *pumpDevice) Start(rate, channels int, pull PullFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pull = pull
	d.rate = rate
	d.starts++
	d.running = true
	return nil
}

func (d *pumpDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	d.stops++
	return nil
}

func (d *pumpDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

// pump renders the requested number of stereo frames through the session.
func (d *pumpDevice) pump(frames int) []float32 {
	d.mu.Lock()
	pull := d.pull
	d.mu.Unlock()
	out := make([]float32, frames*2)
	pull(out)
	return out
}

func constantVoice(seconds, level float64) *audio.Samples {
	data := make([]float32, int(seconds*audio.VoiceSampleRate))
	for i := range data {
		data[i] = float32(level)
	}
	s, _ := audio.NewMono(audio.VoiceSampleRate, data)
	return s
}

func peak(block []float32) float64 {
	var p float64
	for _, v := range block {
		if a := math.Abs(float64(v)); a > p {
			p = a
		}
	}
	return p
}

func baseOpts(voice *audio.Samples) PlayOptions {
	return PlayOptions{
		Voice:       voice,
		Mood:        "calm",
		Tempo:       1,
		VoiceVolume: 1,
		MusicVolume: 0.5,
		Speed:       1,
		SuppressBed: true,
	}
}

func TestSessionPlayProducesVoice(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	if err := s.Play(baseOpts(constantVoice(1, 0.5))); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !s.Playing() {
		t.Error("expected session to report playing")
	}

	block := dev.pump(1024)
	if p := peak(block); math.Abs(p-0.5) > 1e-3 {
		t.Errorf("peak = %f, want ~0.5 (voice level × unity gain)", p)
	}

	// Stereo duplication.
	if block[0] != block[1] {
		t.Errorf("left/right differ: %f vs %f", block[0], block[1])
	}
}

func TestSessionPlayRejectsMissingVoice(t *testing.T) {
	s := NewSession(&pumpDevice{}, nil)
	if err := s.Play(PlayOptions{}); err == nil {
		t.Error("expected error for missing voice")
	}
}

func TestSessionExclusivity(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	if err := s.Play(baseOpts(constantVoice(1, 0.4))); err != nil {
		t.Fatalf("first play: %v", err)
	}
	// Second request replaces the graph wholesale; levels must not stack.
	if err := s.Play(baseOpts(constantVoice(1, 0.4))); err != nil {
		t.Fatalf("second play: %v", err)
	}

	block := dev.pump(1024)
	if p := peak(block); p > 0.45 {
		t.Errorf("peak = %f after replay, want single voice (~0.4)", p)
	}
	if dev.starts != 1 {
		t.Errorf("device started %d times, want 1", dev.starts)
	}
}

func TestSessionCompletionCallback(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	doneCh := make(chan struct{}, 2)
	opts := baseOpts(constantVoice(0.01, 0.4)) // 240 source frames
	opts.OnComplete = func() { doneCh <- struct{}{} }
	if err := s.Play(opts); err != nil {
		t.Fatalf("play: %v", err)
	}

	dev.pump(4096)
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("completion callback never fired")
	}

	// Further pumping must not fire it again.
	dev.pump(4096)
	select {
	case <-doneCh:
		t.Fatal("completion callback fired twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionSeekKeepsBed(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	opts := baseOpts(constantVoice(1, 0.4))
	opts.SuppressBed = false
	opts.Duration = 10
	if err := s.Play(opts); err != nil {
		t.Fatalf("play: %v", err)
	}

	dev.pump(4096)
	if err := s.Seek(0.5); err != nil {
		t.Fatalf("seek: %v", err)
	}
	block := dev.pump(4096)
	if peak(block) == 0 {
		t.Error("silence after seek; expected voice to restart at offset")
	}

	if err := s.Seek(0.25); err != nil {
		t.Fatalf("second seek: %v", err)
	}
	if !s.Playing() {
		t.Error("session stopped playing across seeks")
	}
}

func TestSessionSeekWithoutPlayback(t *testing.T) {
	s := NewSession(&pumpDevice{}, nil)
	if err := s.Seek(1); err == nil {
		t.Error("expected error seeking an idle session")
	}
}

func TestSessionLiveParameterChanges(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)
	if err := s.Play(baseOpts(constantVoice(2, 0.5))); err != nil {
		t.Fatalf("play: %v", err)
	}

	s.SetVoiceVolume(0)
	// The ~0.1s ramp settles well within half a second of audio.
	dev.pump(outputRate / 2)
	block := dev.pump(1024)
	if p := peak(block); p > 0.01 {
		t.Errorf("peak = %f after volume ramp to 0, want ~0", p)
	}

	s.SetVoiceVolume(0.5)
	dev.pump(outputRate / 2)
	block = dev.pump(1024)
	if p := peak(block); math.Abs(p-0.25) > 0.01 {
		t.Errorf("peak = %f after volume ramp to 0.5, want ~0.25", p)
	}
}

func TestSessionSpeedChangeAdvancesFaster(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	done := make(chan struct{}, 1)
	opts := baseOpts(constantVoice(0.5, 0.4))
	opts.OnComplete = func() { done <- struct{}{} }
	if err := s.Play(opts); err != nil {
		t.Fatalf("play: %v", err)
	}

	s.SetSpeed(4)
	// At 4x, a 0.5s voice ends within ~0.13s of output once the ramp
	// settles; pump a generous 0.4s.
	dev.pump(int(0.4 * outputRate))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("voice never completed at 4x speed")
	}
}

func TestSessionStopTeardown(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	opts := baseOpts(constantVoice(1, 0.4))
	opts.SuppressBed = false
	opts.Duration = 10
	if err := s.Play(opts); err != nil {
		t.Fatalf("play: %v", err)
	}

	s.Stop()

	// Voice is removed immediately; only the decaying bed remains.
	block := dev.pump(1024)
	if p := peak(block); p > 0.4 {
		t.Errorf("peak = %f right after stop, want voice gone", p)
	}

	// After the grace delay the whole graph is torn down.
	time.Sleep(stopGrace + 100*time.Millisecond)
	if s.Playing() {
		t.Error("session still playing after stop grace period")
	}
	if dev.stops == 0 {
		t.Error("device was never stopped")
	}

	// Stopping again is a no-op.
	s.Stop()
}

func TestSessionPlayDuringStopGraceSurvives(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)

	if err := s.Play(baseOpts(constantVoice(1, 0.4))); err != nil {
		t.Fatalf("play: %v", err)
	}
	s.Stop()

	// Replacing playback during the grace window must cancel the pending
	// teardown.
	if err := s.Play(baseOpts(constantVoice(1, 0.4))); err != nil {
		t.Fatalf("replay during grace: %v", err)
	}
	time.Sleep(stopGrace + 100*time.Millisecond)
	if !s.Playing() {
		t.Error("pending teardown killed the replacement session")
	}
}

func TestSessionClose(t *testing.T) {
	dev := &pumpDevice{}
	s := NewSession(dev, nil)
	if err := s.Play(baseOpts(constantVoice(1, 0.4))); err != nil {
		t.Fatalf("play: %v", err)
	}
	s.Close()
	if dev.closes != 1 {
		t.Errorf("device closed %d times, want 1", dev.closes)
	}
	if s.Playing() {
		t.Error("session playing after close")
	}
}
