// Package story wires the external providers to the rendering engine. It
// is the single entry point shared by the CLI commands and the HTTP
// server.
package story

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/captions"
	"github.com/example/go-storyreel/internal/mix"
	"github.com/example/go-storyreel/internal/providers"
	"github.com/example/go-storyreel/internal/synth"
	"github.com/example/go-storyreel/internal/video"
)

// Service orchestrates one narration pipeline. Speech is required;
// Transcriber and Images are optional refinements.
type Service struct {
	speech      providers.Speech
	transcriber providers.Transcriber
	images      providers.ImageGen
}

// NewService builds a Service. A nil speech provider is rejected because
// nothing downstream can run without a voice track.
func NewService(speech providers.Speech, transcriber providers.Transcriber, images providers.ImageGen) (*Service, error) {
	if speech == nil {
		return nil, fmt.Errorf("speech provider is required")
	}
	return &Service{speech: speech, transcriber: transcriber, images: images}, nil
}

// NarrateRequest carries everything needed to turn a script into audio.
type NarrateRequest struct {
	Script      string
	Voice       string
	Mood        string
	Tempo       float64 // 1.0 when zero
	Speed       float64 // voice playback speed, 1.0 when zero
	VoiceVolume float64
	MusicVolume float64
	CustomBed   *audio.Samples // replaces the synthesized bed when set
}

// NarrateResult is the rendered outcome plus the intermediates later
// stages (captions, video) reuse.
type NarrateResult struct {
	WAV      []byte
	Voice    *audio.Samples
	Timings  []captions.WordTiming
	Duration float64 // effective narration length after speed, seconds
}

func (r *NarrateRequest) normalize() error {
	if strings.TrimSpace(r.Script) == "" {
		return fmt.Errorf("script is empty")
	}
	if r.Tempo <= 0 {
		r.Tempo = 1.0
	}
	if r.Speed <= 0 {
		r.Speed = 1.0
	}
	return nil
}

// Narrate synthesizes the voice, derives word timings, mixes in the
// atmosphere bed, and encodes the result as WAV bytes. Transcription
// failures fall back to heuristic timing; speech failures abort.
func (s *Service) Narrate(ctx context.Context, req NarrateRequest) (*NarrateResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	payload, err := s.speech.Synthesize(ctx, providers.SpeechRequest{
		Text:  req.Script,
		Voice: req.Voice,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize narration: %w", err)
	}

	voice, err := audio.DecodePCM16Base64(payload)
	if err != nil {
		return nil, fmt.Errorf("decode narration: %w", err)
	}

	duration := voice.Duration() / req.Speed
	timings := s.timings(ctx, payload, req.Script, req.Speed, duration)

	mixed, err := mix.Render(ctx, mix.Params{
		Voice:       voice,
		Mood:        req.Mood,
		CustomBed:   req.CustomBed,
		Duration:    duration,
		VoiceVolume: req.VoiceVolume,
		MusicVolume: req.MusicVolume,
		Tempo:       req.Tempo,
		Speed:       req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("mix narration: %w", err)
	}

	wav, err := audio.EncodeWAV(mixed)
	if err != nil {
		return nil, fmt.Errorf("encode narration: %w", err)
	}

	return &NarrateResult{
		WAV:      wav,
		Voice:    voice,
		Timings:  timings,
		Duration: duration,
	}, nil
}

// timings prefers provider timestamps and falls back to the weighted
// heuristic. Provider times describe the raw voice, so they are rescaled
// by the playback speed.
func (s *Service) timings(ctx context.Context, payload, script string, speed, duration float64) []captions.WordTiming {
	if s.transcriber != nil {
		words, err := s.transcriber.Transcribe(ctx, payload, script)
		if err == nil {
			if speed != 1.0 {
				for i := range words {
					words[i].Start /= speed
					words[i].End /= speed
				}
			}
			return captions.FromTranscript(words)
		}
		slog.Warn("transcription failed, using fallback timing", "error", err)
	}
	return captions.WeightedFallback(script, duration)
}

// SRT renders timings as an SRT document chunked for the given aspect.
func SRT(timings []captions.WordTiming, aspect captions.Aspect) ([]byte, error) {
	chunks := captions.ChunkWords(timings, captions.ChunkSizeForAspect(aspect))
	var buf bytes.Buffer
	if err := captions.WriteSRT(&buf, chunks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Captions derives heuristic timings for a script and renders SRT without
// touching any provider.
func Captions(script string, duration float64, aspect captions.Aspect) ([]byte, error) {
	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("script is empty")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	return SRT(captions.WeightedFallback(script, duration), aspect)
}

// Moods lists the atmosphere presets.
func Moods() []string {
	return synth.Moods()
}

// VideoRequest extends a narration with composition parameters.
type VideoRequest struct {
	NarrateRequest
	Aspect       captions.Aspect
	Style        video.Style
	ScenePrompts []string // one generated image per prompt; empty uses a placeholder
	Captions     bool
	Zoom         bool
	OutPath      string
	BitrateKbps  int
	FontPath     string
	FFmpegBinary string
	Progress     func(pct float64)
}

// Video runs the full pipeline: narrate, generate scene stills, composite
// frames, and encode a WebM beside the mixed audio track. Image failures
// shrink the scene list instead of aborting.
func (s *Service) Video(ctx context.Context, req VideoRequest) error {
	if req.OutPath == "" {
		return fmt.Errorf("output path is required")
	}

	res, err := s.Narrate(ctx, req.NarrateRequest)
	if err != nil {
		return err
	}

	images := s.sceneImages(ctx, req.ScenePrompts)

	w, h := video.FrameSize(req.Aspect)
	enc, err := video.StartFFmpeg(ctx, video.FFmpegOptions{
		Width:       w,
		Height:      h,
		FPS:         video.FPS,
		BitrateKbps: req.BitrateKbps,
		AudioWAV:    res.WAV,
		OutPath:     req.OutPath,
		Binary:      req.FFmpegBinary,
	})
	if err != nil {
		return err
	}

	err = video.Compose(ctx, video.Options{
		Images:   images,
		Timings:  res.Timings,
		Aspect:   req.Aspect,
		Duration: res.Duration,
		Style:    req.Style,
		Captions: req.Captions,
		Zoom:     req.Zoom,
		FontPath: req.FontPath,
		Progress: req.Progress,
	}, enc)
	if err != nil {
		enc.Abort()
		return err
	}
	return enc.Close()
}

// sceneImages generates one still per prompt, dropping any the provider
// declines or fails. With no provider the compositor's placeholder is
// used.
func (s *Service) sceneImages(ctx context.Context, prompts []string) []image.Image {
	if s.images == nil || len(prompts) == 0 {
		return nil
	}
	out := make([]image.Image, 0, len(prompts))
	for i, prompt := range prompts {
		img, err := s.images.GenerateImage(ctx, prompt)
		if err != nil {
			slog.Warn("scene image failed, skipping", "scene", i, "error", err)
			continue
		}
		if img == nil {
			slog.Debug("scene image declined", "scene", i)
			continue
		}
		out = append(out, img)
	}
	return out
}
