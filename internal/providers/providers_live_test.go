package providers

import (
	"context"
	"testing"
	"time"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/testutil"
)

// Live round trip against the real speech API. Gated on the key so the
// suite stays green offline.
func TestHTTPSpeechLive(t *testing.T) {
	key := testutil.RequireEnv(t, "ELEVEN_LABS_API_KEY")

	speech, err := NewHTTPSpeech(HTTPSpeechConfig{
		BaseURL: "https://api.elevenlabs.io/v1",
		APIKey:  key,
	})
	if err != nil {
		t.Fatalf("NewHTTPSpeech: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	payload, err := speech.Synthesize(ctx, SpeechRequest{Text: "Hello from the integration suite."})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	samples, err := audio.DecodePCM16Base64(payload)
	if err != nil {
		t.Fatalf("DecodePCM16Base64: %v", err)
	}
	if samples.Duration() < 0.2 {
		t.Fatalf("suspiciously short narration: %.3fs", samples.Duration())
	}
}
