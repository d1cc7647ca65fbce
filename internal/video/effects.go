package video

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

// Style selects which overlay effects decorate the frames.
type Style string

const (
	StyleClean     Style = "clean"
	StyleCinematic Style = "cinematic" // vignette + light leak
	StyleEnergetic Style = "energetic" // color pulse + particles
	StyleDreamy    Style = "dreamy"    // everything, softened
)

func (s Style) vignette() bool {
	return s == StyleCinematic || s == StyleDreamy
}

func (s Style) pulse() bool {
	return s == StyleEnergetic || s == StyleDreamy
}

func (s Style) particles() bool {
	return s == StyleEnergetic || s == StyleDreamy
}

func (s Style) lightLeak() bool {
	return s == StyleCinematic || s == StyleDreamy
}

// particle is one drifting overlay speck. Positions are a pure function of
// elapsed time so frames can be re-rendered identically.
type particle struct {
	x, y   float64 // origin, pixels
	vx, vy float64 // drift, pixels/second
	radius float64
	alpha  float64
}

const particleCount = 40

// particleSeed fixes the particle field across renders of the same project.
const particleSeed = 0xd1f7

func newParticleField(w, h float64) []particle {
	rng := rand.New(rand.NewSource(particleSeed))
	field := make([]particle, particleCount)
	for i := range field {
		field[i] = particle{
			x:      rng.Float64() * w,
			y:      rng.Float64() * h,
			vx:     (rng.Float64() - 0.5) * w * 0.04,
			vy:     -rng.Float64() * h * 0.03,
			radius: 1.5 + rng.Float64()*3.5,
			alpha:  0.1 + rng.Float64()*0.2,
		}
	}
	return field
}

func drawVignette(dc *gg.Context, w, h float64) {
	r := math.Hypot(w, h) / 2
	grad := gg.NewRadialGradient(w/2, h/2, r*0.55, w/2, h/2, r*1.05)
	grad.AddColorStop(0, color.RGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.RGBA{0, 0, 0, 170})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

func drawPulse(dc *gg.Context, w, h, elapsed float64) {
	alpha := 0.04 + 0.04*math.Sin(2*math.Pi*0.5*elapsed)
	if alpha < 0 {
		alpha = 0
	}
	// Slow hue rotation between warm and cool.
	phase := 2 * math.Pi * 0.08 * elapsed
	dc.SetRGBA(0.6+0.4*math.Sin(phase), 0.4, 0.6+0.4*math.Cos(phase), alpha)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

func drawParticles(dc *gg.Context, field []particle, w, h, elapsed float64) {
	for _, p := range field {
		x := math.Mod(p.x+p.vx*elapsed, w)
		if x < 0 {
			x += w
		}
		y := math.Mod(p.y+p.vy*elapsed, h)
		if y < 0 {
			y += h
		}
		dc.SetRGBA(1, 1, 1, p.alpha)
		dc.DrawCircle(x, y, p.radius)
		dc.Fill()
	}
}

func drawLightLeak(dc *gg.Context, w, h, elapsed float64) {
	cx := w * (0.35 + 0.25*math.Sin(2*math.Pi*0.05*elapsed))
	cy := h * (0.25 + 0.10*math.Cos(2*math.Pi*0.03*elapsed))
	r := math.Max(w, h) * 0.7
	grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, r)
	grad.AddColorStop(0, color.RGBA{255, 200, 130, 70})
	grad.AddColorStop(1, color.RGBA{255, 200, 130, 0})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}
