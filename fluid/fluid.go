// Package fluid describes the capability surface a simulation engine exposes
// to the input adapter and keeps the registry of named engine constructors.
package fluid

import "image"

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R, G, B float64
}

var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// Engine is the forcing and stepping surface of a simulation.
//
// Splat injects a localized impulse at (x, y) in [0,1]² with the origin at the
// bottom-left. A nil color injects force without dye. Step advances the
// simulation by one frame and renders it onto the engine's surface.
type Engine interface {
	Splat(x, y, forceX, forceY float64, c *Color, radius float64)
	Step()
}

// BodyForcer is implemented by engines that accept a uniform body force
// (the tilt vector) applied before each step.
type BodyForcer interface {
	ApplyBodyForce(gx, gy float64)
}

// Reconfigurer is implemented by engines that can pick up a changed
// configuration record while running.
type Reconfigurer interface {
	Configure(cfg Config)
}

// Sampler exposes the surface value at the canvas centre.
type Sampler interface {
	CenterSample() float32
}

// Surface is the rendering target handed to an engine at construction.
// *ebiten.Image satisfies it.
type Surface interface {
	Bounds() image.Rectangle
	WritePixels(pixels []byte)
}

// Constructor builds an engine on a surface from a configuration record.
type Constructor func(surface Surface, cfg Config) (Engine, error)
