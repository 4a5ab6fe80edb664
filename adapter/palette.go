package adapter

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/tiltwater/tiltwater/fluid"
)

// dyeIntensity matches the dim dye the upstream engine generates so that
// overlapping splats do not saturate to white.
const dyeIntensity = 0.15

// Palette yields dye colours whose hue drifts along a 1D Perlin curve, so
// consecutive seeds are related rather than uniformly random.
type Palette struct {
	noise *perlin.Perlin
	t     float64
	step  float64
}

// NewPalette returns a palette seeded with seed.
func NewPalette(seed int64) *Palette {
	return &Palette{
		noise: perlin.NewPerlin(2, 2, 3, seed),
		step:  0.37,
	}
}

// Next returns the next colour on the curve.
func (p *Palette) Next() fluid.Color {
	n := p.noise.Noise1D(p.t)
	p.t += p.step
	hue := math.Mod((n+1)*180*3, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b := hsvToRGB(hue, 1, 1)
	return fluid.Color{R: r * dyeIntensity, G: g * dyeIntensity, B: b * dyeIntensity}
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
