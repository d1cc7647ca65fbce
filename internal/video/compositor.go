// Package video renders caption-burned scene frames and feeds them, with
// the mixed audio track, to a platform encoder.
package video

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/example/go-storyreel/internal/captions"
)

// FPS is the fixed capture rate of the compositor.
const FPS = 30

// FrameSize returns the canvas dimensions for an aspect.
func FrameSize(a captions.Aspect) (w, h int) {
	if a == captions.AspectHorizontal {
		return 1920, 1080
	}
	return 1080, 1920
}

// Options describe one composition run.
type Options struct {
	Images   []image.Image // scene stills in display order; empty shows a placeholder
	Timings  []captions.WordTiming
	Aspect   captions.Aspect
	Duration float64 // seconds
	Style    Style
	Captions bool
	Zoom     bool // slow zoom across each image's display segment
	FontPath string
	FontSize float64
	Progress func(pct float64) // per-frame percentage, monotonically non-decreasing
}

// Compose drives the frame loop. Elapsed time is derived from the frame
// index, so the visuals stay phase-locked to the audio regardless of how
// long each frame takes to draw. Setup failures reject the whole operation;
// per-frame drawing never fails for valid inputs.
func Compose(ctx context.Context, opts Options, enc Encoder) error {
	if opts.Duration <= 0 {
		return fmt.Errorf("%w: invalid duration %f", ErrEncoding, opts.Duration)
	}

	w, h := FrameSize(opts.Aspect)
	dc := gg.NewContext(w, h)
	if opts.FontPath != "" {
		size := opts.FontSize
		if size <= 0 {
			size = float64(h) / 22
		}
		if err := dc.LoadFontFace(opts.FontPath, size); err != nil {
			return fmt.Errorf("%w: load font %s: %v", ErrEncoding, opts.FontPath, err)
		}
	}

	chunks := captions.ChunkWords(opts.Timings, captions.ChunkSizeForAspect(opts.Aspect))
	var field []particle
	if opts.Style.particles() {
		field = newParticleField(float64(w), float64(h))
	}

	frames := int(math.Ceil(opts.Duration * FPS))
	for f := 0; f < frames; f++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("compose: %w", err)
		}

		elapsed := float64(f) / FPS
		drawFrame(dc, opts, chunks, field, elapsed)

		if err := enc.WriteFrame(dc.Image()); err != nil {
			return err
		}
		if opts.Progress != nil {
			pct := elapsed / opts.Duration * 100
			if pct > 100 {
				pct = 100
			}
			opts.Progress(pct)
		}
	}

	if opts.Progress != nil {
		opts.Progress(100)
	}
	return nil
}

func drawFrame(dc *gg.Context, opts Options, chunks []captions.Chunk, field []particle, elapsed float64) {
	w := float64(dc.Width())
	h := float64(dc.Height())

	if len(opts.Images) == 0 {
		drawPlaceholder(dc, w, h)
	} else {
		idx, segProgress := imageAt(elapsed, opts.Duration, len(opts.Images))
		zoom := 1.0
		if opts.Zoom {
			zoom = 1.0 + 0.08*segProgress
		}
		drawCover(dc, opts.Images[idx], w, h, zoom)
	}

	if opts.Style.lightLeak() {
		drawLightLeak(dc, w, h, elapsed)
	}
	if opts.Style.pulse() {
		drawPulse(dc, w, h, elapsed)
	}
	if opts.Style.particles() {
		drawParticles(dc, field, w, h, elapsed)
	}
	if opts.Style.vignette() {
		drawVignette(dc, w, h)
	}

	if opts.Captions {
		drawCaptions(dc, chunks, elapsed, opts.Duration, w, h)
	}
}

// imageAt maps elapsed time to a scene index and progress through that
// scene's display segment, clamping to the last image.
func imageAt(elapsed, duration float64, count int) (idx int, segProgress float64) {
	segment := duration / float64(count)
	idx = int(elapsed / segment)
	if idx >= count {
		idx = count - 1
	}
	segProgress = (elapsed - float64(idx)*segment) / segment
	if segProgress > 1 {
		segProgress = 1
	}
	return idx, segProgress
}

// drawCover paints an image scaled to fill the frame, preserving aspect and
// cropping overflow, optionally zoomed about the center.
func drawCover(dc *gg.Context, img image.Image, w, h, zoom float64) {
	b := img.Bounds()
	iw := float64(b.Dx())
	ih := float64(b.Dy())
	if iw == 0 || ih == 0 {
		drawPlaceholder(dc, w, h)
		return
	}

	scale := math.Max(w/iw, h/ih) * zoom
	dc.Push()
	dc.Translate(w/2, h/2)
	dc.Scale(scale, scale)
	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
	dc.Pop()
}

// drawPlaceholder fills the frame with a dark gradient when image
// generation yielded no scenes.
func drawPlaceholder(dc *gg.Context, w, h float64) {
	grad := gg.NewLinearGradient(0, 0, 0, h)
	grad.AddColorStop(0, color.RGBA{33, 33, 40, 255})
	grad.AddColorStop(1, color.RGBA{10, 10, 14, 255})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}
