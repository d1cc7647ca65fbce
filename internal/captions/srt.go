package captions

import (
	"fmt"
	"io"
	"strings"
)

// WriteSRT renders chunks as a SubRip subtitle stream, one entry per chunk.
func WriteSRT(w io.Writer, chunks []Chunk) error {
	for i, c := range chunks {
		words := make([]string, len(c.Words))
		for j, wt := range c.Words {
			words[j] = wt.Word
		}
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTimestamp(c.Start), srtTimestamp(c.End), strings.Join(words, " "))
		if err != nil {
			return fmt.Errorf("write SRT entry %d: %w", i+1, err)
		}
	}
	return nil
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(seconds*1000 + 0.5)
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
