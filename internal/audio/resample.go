package audio

// ResampleLinear converts samples to a new rate using linear interpolation.
// The step may additionally be scaled by a playback-speed factor: a speed
// of 2.0 halves the output length. Speed must be > 0.
func ResampleLinear(src *Samples, rate int, speed float64) *Samples {
	if speed <= 0 {
		speed = 1
	}
	step := float64(src.Rate) * speed / float64(rate)
	frames := int(float64(src.Frames()) / step)

	out := make([][]float32, src.Channels())
	for ch := range out {
		out[ch] = make([]float32, frames)
		for i := 0; i < frames; i++ {
			out[ch][i] = lerpAt(src.Data[ch], float64(i)*step)
		}
	}
	return &Samples{Rate: rate, Data: out}
}

// lerpAt reads a fractional position from a channel with linear
// interpolation, clamping at the final sample.
func lerpAt(data []float32, pos float64) float32 {
	if len(data) == 0 {
		return 0
	}
	i := int(pos)
	if i >= len(data)-1 {
		return data[len(data)-1]
	}
	frac := float32(pos - float64(i))
	return data[i] + (data[i+1]-data[i])*frac
}

// LoopAt reads a fractional position from a channel, wrapping around the
// end. Used for looped background beds.
func LoopAt(data []float32, pos float64) float32 {
	if len(data) == 0 {
		return 0
	}
	n := float64(len(data))
	for pos >= n {
		pos -= n
	}
	i := int(pos)
	j := i + 1
	if j >= len(data) {
		j = 0
	}
	frac := float32(pos - float64(i))
	return data[i] + (data[j]-data[i])*frac
}
