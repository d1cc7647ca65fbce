package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/config"
	"github.com/example/go-storyreel/internal/providers"
	"github.com/example/go-storyreel/internal/story"
)

// buildService assembles the provider stack from config. The stub speech
// provider is selected explicitly or when no API key is available, so the
// CLI stays usable offline.
func buildService(ctx context.Context, cfg config.Config) (*story.Service, error) {
	var speech providers.Speech
	if cfg.Providers.Stub || cfg.Providers.SpeechKey == "" {
		speech = &providers.StubSpeech{}
	} else {
		httpSpeech, err := providers.NewHTTPSpeech(providers.HTTPSpeechConfig{
			BaseURL: cfg.Providers.SpeechURL,
			APIKey:  cfg.Providers.SpeechKey,
			VoiceID: cfg.Providers.Voice,
		})
		if err != nil {
			return nil, err
		}
		speech = httpSpeech
	}

	var transcriber providers.Transcriber
	if cfg.Providers.Transcribe && cfg.Providers.SpeechKey != "" {
		tr, err := providers.NewHTTPTranscriber(cfg.Providers.SpeechURL, cfg.Providers.SpeechKey, "")
		if err != nil {
			return nil, err
		}
		transcriber = tr
	}

	var images providers.ImageGen
	if cfg.Providers.GeminiKey != "" {
		gen, err := providers.NewGeminiImages(ctx, cfg.Providers.GeminiKey, cfg.Providers.GeminiModel)
		if err != nil {
			return nil, err
		}
		images = gen
	}

	return story.NewService(speech, transcriber, images)
}

// readScript resolves the narration text from --text, --file, or piped
// stdin, in that order.
func readScript(text, file string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read script: %w", err)
		}
		script := strings.TrimSpace(string(data))
		if script == "" {
			return "", fmt.Errorf("script file %s is empty", file)
		}
		return script, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	script := strings.TrimSpace(string(b))
	if script == "" {
		return "", fmt.Errorf("either provide --text, --file, or pipe text on stdin")
	}
	return script, nil
}

// loadCustomBed reads an optional background WAV.
func loadCustomBed(path string) (*audio.Samples, error) {
	if path == "" {
		return nil, nil
	}
	bed, err := audio.DecodeWAVFile(path)
	if err != nil {
		return nil, fmt.Errorf("load background track: %w", err)
	}
	return bed, nil
}

// narrateRequest maps the configured synth settings onto a request.
func narrateRequest(cfg config.Config, script string, bed *audio.Samples) story.NarrateRequest {
	return story.NarrateRequest{
		Script:      script,
		Voice:       cfg.Providers.Voice,
		Mood:        cfg.Synth.Mood,
		Tempo:       cfg.Synth.Tempo,
		Speed:       cfg.Synth.Speed,
		VoiceVolume: cfg.Synth.VoiceVolume,
		MusicVolume: cfg.Synth.MusicVolume,
		CustomBed:   bed,
	}
}
