package captions

import (
	"fmt"
	"strings"
)

// Aspect selects the output frame orientation. Wider frames fit more caption
// words per chunk.
type Aspect string

const (
	AspectVertical   Aspect = "9:16"
	AspectHorizontal Aspect = "16:9"
)

// ParseAspect validates an aspect string.
func ParseAspect(s string) (Aspect, error) {
	switch Aspect(strings.TrimSpace(s)) {
	case AspectVertical:
		return AspectVertical, nil
	case AspectHorizontal:
		return AspectHorizontal, nil
	default:
		return "", fmt.Errorf("unknown aspect %q (want 9:16|16:9)", s)
	}
}

// ChunkSizeForAspect returns the caption window in words.
func ChunkSizeForAspect(a Aspect) int {
	if a == AspectHorizontal {
		return 6
	}
	return 4
}

// Chunk is a fixed-size window of consecutive words shown together as one
// on-screen subtitle unit. Its span is [Start, End) taken from the first and
// last word.
type Chunk struct {
	Words []WordTiming
	Start float64
	End   float64
}

// ChunkWords partitions timings into windows of size words, preserving
// order. The final chunk may be shorter.
func ChunkWords(timings []WordTiming, size int) []Chunk {
	if size < 1 {
		size = 1
	}
	chunks := make([]Chunk, 0, (len(timings)+size-1)/size)
	for i := 0; i < len(timings); i += size {
		end := i + size
		if end > len(timings) {
			end = len(timings)
		}
		window := timings[i:end]
		chunks = append(chunks, Chunk{
			Words: window,
			Start: window[0].Start,
			End:   window[len(window)-1].End,
		})
	}
	return chunks
}

// ActiveChunk finds the chunk to display at elapsed seconds: the first chunk
// whose [Start, End) contains elapsed, the first chunk before any caption
// starts, and none once elapsed passes the total audio duration.
func ActiveChunk(chunks []Chunk, elapsed, total float64) (Chunk, bool) {
	if len(chunks) == 0 || elapsed >= total {
		return Chunk{}, false
	}
	if elapsed < chunks[0].Start {
		return chunks[0], true
	}
	for _, c := range chunks {
		if elapsed >= c.Start && elapsed < c.End {
			return c, true
		}
	}
	return Chunk{}, false
}
