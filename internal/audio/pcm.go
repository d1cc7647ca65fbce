package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Voice payload format. The speech provider always returns headerless
// little-endian 16-bit mono PCM at 24 kHz; this is a wire contract, not a
// negotiated format.
const (
	VoiceSampleRate = 24000
	VoiceChannels   = 1
	VoiceBitDepth   = 16
)

// ErrDecode marks a malformed or empty voice payload. Decode failures are
// fatal to the current generation request.
var ErrDecode = errors.New("voice payload decode failed")

// DecodePCM16Base64 converts a base64-encoded raw PCM voice payload into
// playable samples: 1 channel, 24 kHz, each sample = int16/32768.
// No resampling is performed; consumers handle the fixed rate.
func DecodePCM16Base64(payload string) (*Samples, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count %d", ErrDecode, len(raw))
	}

	data := make([]float32, len(raw)/2)
	for i := range data {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		data[i] = float32(v) / 32768.0
	}

	return &Samples{Rate: VoiceSampleRate, Data: [][]float32{data}}, nil
}
