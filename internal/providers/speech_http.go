package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM"
	defaultModelID      = "eleven_multilingual_v2"
	defaultOutputFormat = "pcm_24000"
	defaultStability    = 0.5
	defaultClarity      = 0.75
	speechTimeout       = 60 * time.Second
)

// HTTPSpeechConfig configures the hosted speech endpoint. APIKey is
// required; everything else has a sensible default.
type HTTPSpeechConfig struct {
	BaseURL   string
	APIKey    string
	VoiceID   string
	ModelID   string
	Stability float64
	Clarity   float64
}

// HTTPSpeech synthesizes narration through an ElevenLabs-compatible
// text-to-speech API, requesting raw PCM at the pipeline's native rate.
type HTTPSpeech struct {
	cfg    HTTPSpeechConfig
	client *http.Client
}

var _ Speech = (*HTTPSpeech)(nil)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewHTTPSpeech validates the config and applies defaults.
func NewHTTPSpeech(cfg HTTPSpeechConfig) (*HTTPSpeech, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: speech base URL is required", ErrProvider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: speech API key is required", ErrProvider)
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = defaultVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = defaultModelID
	}
	if cfg.Stability == 0 {
		cfg.Stability = defaultStability
	}
	if cfg.Clarity == 0 {
		cfg.Clarity = defaultClarity
	}
	return &HTTPSpeech{
		cfg:    cfg,
		client: &http.Client{Timeout: speechTimeout},
	}, nil
}

// Synthesize posts the script and returns the response body, which the
// endpoint emits as headerless little-endian int16 PCM, re-encoded to
// base64 for the decoder.
func (s *HTTPSpeech) Synthesize(ctx context.Context, req SpeechRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", fmt.Errorf("%w: empty script", ErrProvider)
	}
	voice := req.Voice
	if voice == "" {
		voice = s.cfg.VoiceID
	}

	body, err := json.Marshal(speechPayload{
		Text:    req.Text,
		ModelID: s.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       s.cfg.Stability,
			SimilarityBoost: s.cfg.Clarity,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrProvider, err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), voice, defaultOutputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/pcm")
	httpReq.Header.Set("xi-api-key", s.cfg.APIKey)

	slog.Debug("speech synthesis request", "voice", voice, "chars", len(req.Text))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: speech endpoint returned %d: %s",
			ErrProvider, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrProvider, err)
	}
	if len(pcm) == 0 {
		return "", fmt.Errorf("%w: speech endpoint returned no audio", ErrProvider)
	}

	slog.Debug("speech synthesis complete", "bytes", len(pcm))
	return base64.StdEncoding.EncodeToString(pcm), nil
}
