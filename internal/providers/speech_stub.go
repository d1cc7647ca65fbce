package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"github.com/example/go-storyreel/internal/audio"
)

// StubSpeech is a local, deterministic speech provider for offline runs
// and tests. Each word becomes a short sine burst followed by a gap, so
// downstream timing and mixing code sees a realistically shaped payload
// without a network dependency.
type StubSpeech struct {
	// WordSeconds is the burst length per word; 0.3s when unset.
	WordSeconds float64
}

var _ Speech = (*StubSpeech)(nil)

const (
	stubGapSeconds = 0.1
	stubBaseFreq   = 220.0
	stubAmplitude  = 0.4
)

// Synthesize emits base64 headerless int16 mono 24 kHz PCM. The tone
// frequency walks up with the word index so segments are tellable apart.
func (s *StubSpeech) Synthesize(_ context.Context, req SpeechRequest) (string, error) {
	words := strings.Fields(req.Text)
	if len(words) == 0 {
		return "", fmt.Errorf("%w: empty script", ErrProvider)
	}

	wordSec := s.WordSeconds
	if wordSec <= 0 {
		wordSec = 0.3
	}
	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}
	wordSec /= speed

	rate := float64(audio.VoiceSampleRate)
	burst := int(wordSec * rate)
	gap := int(stubGapSeconds / speed * rate)

	raw := make([]byte, 0, len(words)*(burst+gap)*2)
	for i := range words {
		freq := stubBaseFreq * math.Pow(2, float64(i%8)/12)
		for n := 0; n < burst; n++ {
			t := float64(n) / rate
			env := 1.0
			if edge := int(0.01 * rate); n < edge {
				env = float64(n) / float64(edge)
			} else if burst-n < edge {
				env = float64(burst-n) / float64(edge)
			}
			v := int16(stubAmplitude * env * math.Sin(2*math.Pi*freq*t) * 32767)
			raw = append(raw, byte(uint16(v)), byte(uint16(v)>>8))
		}
		for n := 0; n < gap; n++ {
			raw = append(raw, 0, 0)
		}
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}
