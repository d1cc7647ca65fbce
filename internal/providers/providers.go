// Package providers holds the external-service contracts the generation
// pipeline consumes: speech synthesis, transcription, and scene image
// generation. Adapters here do no retrying; transient provider conditions
// are the caller's concern.
package providers

import (
	"context"
	"errors"
	"image"

	"github.com/example/go-storyreel/internal/captions"
)

// ErrProvider marks failures originating in an external provider.
var ErrProvider = errors.New("provider request failed")

// SpeechRequest describes one narration synthesis call.
type SpeechRequest struct {
	Text  string
	Voice string
	Speed float64
}

// Speech turns a script into a base64-encoded headerless 16-bit mono
// 24 kHz PCM payload, the wire format audio.DecodePCM16Base64 consumes.
type Speech interface {
	Synthesize(ctx context.Context, req SpeechRequest) (string, error)
}

// Transcriber returns word-level timestamps for a rendered narration.
// Callers absorb any failure by falling back to heuristic timing, so
// implementations should not bother with elaborate recovery.
type Transcriber interface {
	Transcribe(ctx context.Context, pcmBase64 string, script string) ([]captions.TranscriptWord, error)
}

// ImageGen produces one scene illustration per prompt. A nil image with a
// nil error means the provider declined the prompt; callers skip the scene.
type ImageGen interface {
	GenerateImage(ctx context.Context, prompt string) (image.Image, error)
}
