package video

import (
	"github.com/fogleman/gg"

	"github.com/example/go-storyreel/internal/captions"
)

// Caption colors: neutral words in white, the word being spoken in a
// highlight yellow, both over a dark shadow/stroke pass.
var (
	captionNeutral   = [3]float64{1, 1, 1}
	captionHighlight = [3]float64{1, 0.84, 0.2}
)

// captionLine is one laid-out row of words.
type captionLine struct {
	words []captions.WordTiming
	width float64
}

// drawCaptions paints the active chunk: words wrap at a max-width fraction
// of the frame, the block centers vertically around a baseline in the
// bottom third, and each word gets a shadow/stroke pass before its fill.
func drawCaptions(dc *gg.Context, chunks []captions.Chunk, elapsed, total, w, h float64) {
	chunk, ok := captions.ActiveChunk(chunks, elapsed, total)
	if !ok {
		return
	}

	maxWidth := w * 0.85
	spaceW, lineH := dc.MeasureString(" ")
	lineH *= 2.0

	lines := layoutLines(dc, chunk.Words, maxWidth, spaceW)

	baseline := h * 0.72
	blockH := float64(len(lines)-1) * lineH
	y := baseline - blockH/2

	for _, line := range lines {
		x := (w - line.width) / 2
		for _, word := range line.words {
			wordW, _ := dc.MeasureString(word.Word)
			paintWord(dc, word.Word, x, y, active(word, elapsed))
			x += wordW + spaceW
		}
		y += lineH
	}
}

func active(word captions.WordTiming, elapsed float64) bool {
	return elapsed >= word.Start && elapsed < word.End
}

// layoutLines wraps words greedily left to right.
func layoutLines(dc *gg.Context, words []captions.WordTiming, maxWidth, spaceW float64) []captionLine {
	var lines []captionLine
	var current captionLine

	for _, word := range words {
		wordW, _ := dc.MeasureString(word.Word)
		needed := wordW
		if len(current.words) > 0 {
			needed += spaceW
		}
		if len(current.words) > 0 && current.width+needed > maxWidth {
			lines = append(lines, current)
			current = captionLine{}
			needed = wordW
		}
		current.words = append(current.words, word)
		current.width += needed
	}
	if len(current.words) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// paintWord draws the stroke/shadow pass then the fill pass.
func paintWord(dc *gg.Context, word string, x, y float64, highlighted bool) {
	dc.SetRGBA(0, 0, 0, 0.85)
	for _, off := range [][2]float64{{-2, 0}, {2, 0}, {0, -2}, {0, 2}, {3, 3}} {
		dc.DrawString(word, x+off[0], y+off[1])
	}

	c := captionNeutral
	if highlighted {
		c = captionHighlight
	}
	dc.SetRGB(c[0], c[1], c[2])
	dc.DrawString(word, x, y)
}
