package adapter

import (
	"math"
	"math/rand"

	"github.com/tiltwater/tiltwater/fluid"
)

const (
	// GravityScale bounds each gravity axis to [-GravityScale, GravityScale].
	GravityScale = 4.0
	// MotionForceScale converts m/s² into splat force.
	MotionForceScale = 150.0
	// MotionSplatRadius is the radius of acceleration impulses.
	MotionSplatRadius = 5.0
	// PointerForceScale converts pointer movement in pixels into splat force.
	PointerForceScale = 2.0
	// PointerSplatRadius is the radius of pointer strokes.
	PointerSplatRadius = 0.5

	DefaultSeedAmount = 20
	DefaultSeedRadius = 0.25
	seedBand          = 0.25
)

// ForceSample is one impulse for the engine's Splat primitive. Color nil
// means force without dye.
type ForceSample struct {
	X, Y           float64
	ForceX, ForceY float64
	Color          *fluid.Color
	Radius         float64
}

// Gravity is the tilt-derived body force, clamped per axis.
type Gravity struct {
	X, Y float64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GravityFromOrientation maps tilt angles to a gravity vector. The y axis is
// inverted so tilting the top of the device away pulls the fluid up the
// screen. It reports false when either angle is missing or not finite.
func GravityFromOrientation(e OrientationEvent) (Gravity, bool) {
	if e.Beta == nil || e.Gamma == nil {
		return Gravity{}, false
	}
	beta, gamma := *e.Beta, *e.Gamma
	if !finite(beta) || !finite(gamma) {
		return Gravity{}, false
	}
	return Gravity{
		X: clamp(gamma/90*GravityScale, -GravityScale, GravityScale),
		Y: clamp(-beta/90*GravityScale, -GravityScale, GravityScale),
	}, true
}

// MotionSample turns an acceleration reading into an undyed impulse at the
// canvas centre. Missing components drop the sample; they are never treated
// as zero force.
func MotionSample(e MotionEvent) (ForceSample, bool) {
	a := e.AccelerationIncludingGravity
	if a == nil || a.X == nil || a.Y == nil {
		return ForceSample{}, false
	}
	x, y := *a.X, *a.Y
	if !finite(x) || !finite(y) {
		return ForceSample{}, false
	}
	black := fluid.Black
	return ForceSample{
		X:      0.5,
		Y:      0.5,
		ForceX: x * MotionForceScale,
		ForceY: y * -MotionForceScale,
		Color:  &black,
		Radius: MotionSplatRadius,
	}, true
}

// PointerSample maps a pointer move in a width×height viewport to a white
// stroke. Viewport y grows downward, texture y grows upward.
func PointerSample(e PointerEvent, width, height float64) (ForceSample, bool) {
	if width <= 0 || height <= 0 {
		return ForceSample{}, false
	}
	for _, v := range [...]float64{e.ClientX, e.ClientY, e.MovementX, e.MovementY, width, height} {
		if !finite(v) {
			return ForceSample{}, false
		}
	}
	white := fluid.White
	return ForceSample{
		X:      e.ClientX / width,
		Y:      1 - e.ClientY/height,
		ForceX: e.MovementX * PointerForceScale,
		ForceY: -e.MovementY * PointerForceScale,
		Color:  &white,
		Radius: PointerSplatRadius,
	}, true
}

// SeedSamples builds the resting pool: amount zero-force dyed samples spread
// across the width and confined to the bottom quarter of the canvas.
func SeedSamples(rng *rand.Rand, palette *Palette, amount int, radius float64) []ForceSample {
	if amount <= 0 {
		return nil
	}
	samples := make([]ForceSample, 0, amount)
	for i := 0; i < amount; i++ {
		c := palette.Next()
		samples = append(samples, ForceSample{
			X:      rng.Float64(),
			Y:      rng.Float64() * seedBand,
			Color:  &c,
			Radius: radius,
		})
	}
	return samples
}
