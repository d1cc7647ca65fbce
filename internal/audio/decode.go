package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

// DecodeWAV decodes a PCM WAV byte slice into samples. Unlike the voice
// payload path this accepts any sample rate and channel count, since it
// serves user-supplied background tracks.
func DecodeWAV(data []byte) (*Samples, error) {
	if len(data) == 0 {
		return nil, errors.New("empty WAV input")
	}

	r := bytes.NewReader(data)
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	return FromBuffer(buf)
}

// FromBuffer de-interleaves a go-audio float buffer into per-channel samples.
func FromBuffer(buf *goaudio.Float32Buffer) (*Samples, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("nil PCM buffer")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels

	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = buf.Data[i*channels+ch]
		}
	}

	return NewSamples(buf.Format.SampleRate, out)
}

// DecodeWAVFile reads and decodes a WAV file from disk.
func DecodeWAVFile(path string) (*Samples, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s, nil
}
