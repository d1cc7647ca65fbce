package captions

import (
	"strings"
	"unicode/utf8"
)

// WordTiming is one narrated word with its on-screen window. Index is a
// stable identity assigned in reading order, kept independent of position so
// later manual timing edits can reference a word.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Index int     `json:"index"`
}

// TranscriptWord is the shape returned by an external transcription
// provider.
type TranscriptWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FromTranscript adopts provider timestamps verbatim, assigning sequential
// indices.
func FromTranscript(words []TranscriptWord) []WordTiming {
	out := make([]WordTiming, len(words))
	for i, w := range words {
		out[i] = WordTiming{Word: w.Word, Start: w.Start, End: w.End, Index: i}
	}
	return out
}

// WeightedFallback derives word timings from the script text alone. Each
// word gets a weight from its length and punctuation, and the total audio
// duration is split proportionally. The result is a pure function of script
// and duration: the last word always ends at exactly totalDuration.
func WeightedFallback(script string, totalDuration float64) []WordTiming {
	words := strings.Fields(script)
	if len(words) == 0 || totalDuration <= 0 {
		return nil
	}

	weights := make([]float64, len(words))
	var sum float64
	for i, w := range words {
		weights[i] = wordWeight(w)
		sum += weights[i]
	}

	// Cumulative-ratio form instead of running addition, so the final end
	// lands on totalDuration with no float drift.
	out := make([]WordTiming, len(words))
	var cum float64
	for i, w := range words {
		start := totalDuration * cum / sum
		cum += weights[i]
		end := totalDuration * cum / sum
		out[i] = WordTiming{Word: w, Start: start, End: end, Index: i}
	}
	out[len(out)-1].End = totalDuration

	return out
}

// wordWeight scores a word's spoken duration share: base length, a bonus for
// very short words, and pauses after commas and sentence terminators.
func wordWeight(w string) float64 {
	weight := float64(utf8.RuneCountInString(w))
	if utf8.RuneCountInString(w) < 3 {
		weight++
	}
	if strings.Contains(w, ",") {
		weight += 4
	}
	switch {
	case strings.HasSuffix(w, "."), strings.HasSuffix(w, "!"), strings.HasSuffix(w, "?"):
		weight += 8
	}
	return weight
}
