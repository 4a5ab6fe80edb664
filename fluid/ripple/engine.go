// Package ripple is a reference engine: a damped wave-equation heightfield
// carrying a dye layer. It registers itself as "ripple".
package ripple

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/tiltwater/tiltwater/fluid"
)

// Name is the registry name of this engine.
const Name = "ripple"

const (
	frameDT           = 1.0 / 60
	waveSpeed         = 0.5
	boundaryReflect   = 0.9
	defaultSplatForce = 6000.0
	minResolution     = 16
	maxResolution     = 1024

	// heightPerForce converts splat force into surface displacement at the
	// default SPLAT_FORCE.
	heightPerForce = 0.002
	// tiltCellsPerStep is the dye drift in cells per step per unit of
	// gravity.
	tiltCellsPerStep = 0.25
	// slopeDrift is the dye drift per unit of surface slope.
	slopeDrift = 40.0
)

func init() {
	fluid.Register(Name, New)
}

// settings is the subset of the configuration record the engine reads.
type settings struct {
	resolution   int
	densityDiss  float64
	velocityDiss float64
	splatForce   float64
	shading      bool
	paused       bool
	transparent  bool
	back         fluid.Color
}

func readSettings(cfg fluid.Config) settings {
	res := cfg.Int(fluid.SimResolution, 128)
	if res < minResolution {
		res = minResolution
	} else if res > maxResolution {
		res = maxResolution
	}
	force := cfg.Float(fluid.SplatForce, defaultSplatForce)
	if force <= 0 {
		force = defaultSplatForce
	}
	return settings{
		resolution:   res,
		densityDiss:  math.Max(0, cfg.Float(fluid.DensityDissipation, 1)),
		velocityDiss: math.Max(0, cfg.Float(fluid.VelocityDissipation, 0.2)),
		splatForce:   force,
		shading:      cfg.Bool(fluid.Shading, true),
		paused:       cfg.Bool(fluid.Paused, false),
		transparent:  cfg.Bool(fluid.Transparent, false),
		back:         cfg.Color(fluid.BackColor, fluid.Black),
	}
}

// Engine is the ripple simulation bound to one surface.
type Engine struct {
	mu        sync.Mutex
	surface   fluid.Surface
	surfW     int
	surfH     int
	field     *waveField
	stepper   stepper
	footprint footprintCache
	set       settings
	gx, gy    float64
	pixels    []byte
	cellOf    []int32
	closed    bool
}

// New builds a ripple engine sized from SIM_RESOLUTION on the short side
// of the surface. It prefers the OpenCL backend when compiled in and falls
// back to the CPU worker pool.
func New(surface fluid.Surface, cfg fluid.Config) (fluid.Engine, error) {
	return newEngine(surface, cfg, true)
}

func newEngine(surface fluid.Surface, cfg fluid.Config, allowGPU bool) (*Engine, error) {
	if surface == nil {
		return nil, errors.New("ripple: nil surface")
	}
	b := surface.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, fmt.Errorf("ripple: surface too small (%dx%d)", b.Dx(), b.Dy())
	}
	set := readSettings(cfg)
	gw, gh := gridSize(set.resolution, b.Dx(), b.Dy())

	e := &Engine{
		surface: surface,
		surfW:   b.Dx(),
		surfH:   b.Dy(),
		field:   newWaveField(gw, gh),
		set:     set,
		pixels:  make([]byte, b.Dx()*b.Dy()*4),
	}
	e.cellOf = buildCellMap(e.surfW, e.surfH, gw, gh)

	if allowGPU {
		if gpu, err := newOpenCLStepper(gw, gh); err == nil {
			e.stepper = gpu
		}
	}
	if e.stepper == nil {
		e.stepper = newCPUStepper(gw, gh, runtime.NumCPU())
	}
	return e, nil
}

// gridSize keeps the surface aspect ratio with res cells on the short side.
func gridSize(res, w, h int) (int, int) {
	if w >= h {
		gw := int(math.Round(float64(res) * float64(w) / float64(h)))
		return max(gw, 3), max(res, 3)
	}
	gh := int(math.Round(float64(res) * float64(h) / float64(w)))
	return max(res, 3), max(gh, 3)
}

// Backend names the solver backend in use.
func (e *Engine) Backend() string {
	return e.stepper.name()
}

// GridSize returns the simulation grid dimensions.
func (e *Engine) GridSize() (int, int) {
	return e.field.width, e.field.height
}

// Splat displaces the surface along the force direction and, when c is not
// nil, deposits dye. A zero force deposits dye only.
func (e *Engine) Splat(x, y, forceX, forceY float64, c *fluid.Color, radius float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	f := e.field
	cx := int(math.Round(x * float64(f.width-1)))
	cy := int(math.Round((1 - y) * float64(f.height-1)))
	cells := e.footprint.get(radius, f.width, f.height)
	k := float32(heightPerForce * defaultSplatForce / e.set.splatForce)
	fx, fy := float32(forceX)*k, float32(forceY)*k
	push := fx != 0 || fy != 0
	for _, cell := range cells {
		gx := cx + cell.dx
		gy := cy + cell.dy
		if gx < 0 || gx >= f.width || gy < 0 || gy >= f.height {
			continue
		}
		idx := f.index(gx, gy)
		if push {
			f.addHeight(idx, (fx*cell.px+fy*cell.py)*cell.weight*8-float32(math.Hypot(float64(fx), float64(fy)))*cell.weight*0.25)
		}
		if c != nil {
			f.dye[0][idx] += float32(c.R) * cell.weight
			f.dye[1][idx] += float32(c.G) * cell.weight
			f.dye[2][idx] += float32(c.B) * cell.weight
		}
	}
}

// ApplyBodyForce sets the tilt vector used by the next Step. Positive y
// points up the screen.
func (e *Engine) ApplyBodyForce(gx, gy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gx, e.gy = gx, gy
}

// Step advances the surface and the dye one tick and renders to the surface.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if !e.set.paused {
		damp := float32(1 / (1 + e.set.velocityDiss*frameDT))
		if err := e.stepper.step(e.field, damp, waveSpeed, boundaryReflect); err != nil {
			// A failed device step falls back to the CPU pool for good.
			e.stepper.close()
			e.stepper = newCPUStepper(e.field.width, e.field.height, runtime.NumCPU())
		}
		e.advectDye()
	}
	e.render()
	e.surface.WritePixels(e.pixels)
}

// advectDye moves dye semi-Lagrangian along the tilt vector plus the
// surface slope, then fades it by DENSITY_DISSIPATION.
func (e *Engine) advectDye() {
	f := e.field
	fade := float32(1 / (1 + e.set.densityDiss*frameDT))
	vx := float32(e.gx * tiltCellsPerStep)
	vy := float32(-e.gy * tiltCellsPerStep)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			sx, sy := f.gradient(x, y)
			ux := vx - sx*slopeDrift
			uy := vy - sy*slopeDrift
			px := float32(x) - ux
			py := float32(y) - uy
			idx := f.index(x, y)
			for c := 0; c < 3; c++ {
				f.dyeNext[c][idx] = f.sampleDye(c, px, py) * fade
			}
		}
	}
	f.swapDye()
}

// CenterSample returns the surface height at the grid centre.
func (e *Engine) CenterSample() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := e.field
	return f.curr[f.index(f.width/2, f.height/2)]
}

// Configure applies a changed configuration record. The grid resolution is
// fixed at construction.
func (e *Engine) Configure(cfg fluid.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := e.set.resolution
	e.set = readSettings(cfg)
	e.set.resolution = res
}

// Close stops the solver backend.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.stepper.close()
	return nil
}
