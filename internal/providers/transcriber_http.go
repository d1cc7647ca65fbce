package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/captions"
)

const (
	defaultTranscribeModel = "scribe_v1"
	transcribeTimeout      = 120 * time.Second
)

// HTTPTranscriber fetches word-level timestamps from an ElevenLabs-style
// speech-to-text endpoint. Failures here are expected to be absorbed by
// the caller via fallback timing, so no retries happen at this level.
type HTTPTranscriber struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ Transcriber = (*HTTPTranscriber)(nil)

// NewHTTPTranscriber builds the adapter. BaseURL and APIKey are required.
func NewHTTPTranscriber(baseURL, apiKey, model string) (*HTTPTranscriber, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("%w: transcriber base URL and API key are required", ErrProvider)
	}
	if model == "" {
		model = defaultTranscribeModel
	}
	return &HTTPTranscriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: transcribeTimeout},
	}, nil
}

type transcriptResponse struct {
	Words []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Type  string  `json:"type"`
	} `json:"words"`
}

// Transcribe uploads the narration as a WAV file and maps the returned
// word events onto caption timings. Spacing events are dropped.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, pcmBase64 string, script string) ([]captions.TranscriptWord, error) {
	voice, err := audio.DecodePCM16Base64(pcmBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	wavBytes, err := audio.EncodeWAV(voice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "narration.wav")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if _, err := part.Write(wavBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if err := mw.WriteField("model_id", t.model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	url := t.baseURL + "/speech-to-text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("xi-api-key", t.apiKey)

	slog.Debug("transcription request", "bytes", body.Len(), "model", t.model)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: transcription endpoint returned %d: %s",
			ErrProvider, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode transcript: %v", ErrProvider, err)
	}

	words := make([]captions.TranscriptWord, 0, len(parsed.Words))
	for _, w := range parsed.Words {
		if w.Type != "" && w.Type != "word" {
			continue
		}
		words = append(words, captions.TranscriptWord{Word: w.Text, Start: w.Start, End: w.End})
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: transcript contained no words", ErrProvider)
	}
	return words, nil
}
