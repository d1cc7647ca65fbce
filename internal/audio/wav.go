package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeWAV serializes rendered samples into an uncompressed RIFF/WAVE
// container: 44-byte header followed by interleaved 16-bit PCM.
//
// Quantization is asymmetric on purpose: negative samples scale by 32768,
// non-negative by 32767, truncating toward zero. Standard players depend on
// this exact header layout, so it is built by hand rather than through a
// codec library.
func EncodeWAV(s *Samples) ([]byte, error) {
	if s == nil || s.Frames() == 0 {
		return nil, fmt.Errorf("no samples to encode")
	}
	if s.Rate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", s.Rate)
	}

	channels := s.Channels()
	frames := s.Frames()
	const bitsPerSample = 16
	byteRate := s.Rate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := frames * channels * 2
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataSize)
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(s.Rate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			_ = binary.Write(buf, binary.LittleEndian, quantize16(s.Data[ch][i]))
		}
	}

	return buf.Bytes(), nil
}

func quantize16(v float32) int16 {
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	if v < 0 {
		return int16(v * 32768)
	}
	return int16(v * 32767)
}
