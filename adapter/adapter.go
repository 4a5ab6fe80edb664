// Package adapter turns device orientation, device motion and pointer input
// into forcing calls on a simulation engine and drives the engine's per-frame
// step.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tiltwater/tiltwater/fluid"
)

const defaultMailboxSize = 256

// User-facing status lines, one per outcome.
const (
	StatusAwaiting      = "Tap the screen to begin and grant sensor access."
	StatusRequesting    = "Waiting for motion sensor access..."
	StatusDenied        = "Motion sensor access was denied."
	StatusFailed        = "Could not request motion sensor access."
	StatusEngineMissing = "The simulation engine could not be started."
)

// Options configures an Adapter.
type Options struct {
	// Engine names the registered engine to construct.
	Engine string

	// Lookup resolves Engine; fluid.Lookup when nil.
	Lookup func(name string) (fluid.Constructor, error)

	Surface fluid.Surface

	// Config is handed to the engine verbatim.
	Config fluid.Config

	// Source supplies orientation and motion events. If it implements
	// PermissionRequester, Start asks for permission before subscribing.
	Source Source

	SeedAmount  int
	SeedRadius  float64
	Rand        *rand.Rand
	Palette     *Palette
	MailboxSize int
	Logger      *zap.Logger
}

// Adapter owns the gravity vector, the permission state and the engine
// handle. Start may be called from any goroutine; the remaining methods are
// meant for the frame loop.
type Adapter struct {
	construct fluid.Constructor
	surface   fluid.Surface
	cfg       fluid.Config
	source    Source
	rng       *rand.Rand
	palette   *Palette
	seedCount int
	seedRad   float64
	log       *zap.Logger
	inbox     *mailbox

	startMu sync.Mutex

	mu          sync.Mutex
	state       PermissionState
	stateErr    error
	engineErr   error
	engine      fluid.Engine
	gravity     Gravity
	unsubscribe func()
	steps       uint64
}

// New resolves the engine entry point. It fails with ErrEngineUnavailable
// before any listener is attached if the engine is not registered.
func New(opts Options) (*Adapter, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = fluid.Lookup
	}
	ctor, err := lookup(opts.Engine)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	if ctor == nil {
		return nil, fmt.Errorf("%w: %q has no constructor", ErrEngineUnavailable, opts.Engine)
	}

	a := &Adapter{
		construct: ctor,
		surface:   opts.Surface,
		cfg:       opts.Config,
		source:    opts.Source,
		rng:       opts.Rand,
		palette:   opts.Palette,
		seedCount: opts.SeedAmount,
		seedRad:   opts.SeedRadius,
		log:       opts.Logger,
	}
	if a.cfg == nil {
		a.cfg = fluid.DefaultConfig()
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.palette == nil {
		a.palette = NewPalette(a.rng.Int63())
	}
	if a.seedCount == 0 {
		a.seedCount = DefaultSeedAmount
	}
	if a.seedRad <= 0 {
		a.seedRad = DefaultSeedRadius
	}
	if opts.MailboxSize > 0 {
		a.inbox = newMailbox(opts.MailboxSize)
	} else {
		a.inbox = newMailbox(defaultMailboxSize)
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	a.log = a.log.With(zap.String("component", "adapter"), zap.String("engine", opts.Engine))
	return a, nil
}

// Start consumes the start gesture: it requests sensor permission when the
// source needs it, constructs the engine, subscribes to the source and seeds
// the resting pool. After a successful start further calls are no-ops; after
// a denial or failure they return the same error without asking again.
func (a *Adapter) Start(ctx context.Context) error {
	a.startMu.Lock()
	defer a.startMu.Unlock()

	a.mu.Lock()
	switch {
	case a.engine != nil:
		a.mu.Unlock()
		return nil
	case a.engineErr != nil:
		err := a.engineErr
		a.mu.Unlock()
		return err
	case a.state.Terminal():
		err := a.stateErr
		a.mu.Unlock()
		return err
	}
	a.state = StateRequesting
	a.mu.Unlock()

	var req PermissionRequester
	if r, ok := a.source.(PermissionRequester); ok {
		req = r
	}
	state, err := ask(ctx, req)
	if err != nil {
		a.mu.Lock()
		a.state, a.stateErr = state, err
		a.mu.Unlock()
		if errors.Is(err, ErrPermissionDenied) {
			a.log.Info("motion sensor permission denied")
		} else {
			a.log.Error("motion sensor permission request failed", zap.Error(err))
		}
		return err
	}

	a.mu.Lock()
	cfg := a.cfg
	a.mu.Unlock()
	engine, err := a.construct(a.surface, cfg)
	if err == nil && engine == nil {
		err = errors.New("constructor returned no engine")
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		a.mu.Lock()
		a.state = state
		a.engineErr = err
		a.mu.Unlock()
		a.log.Error("engine construction failed", zap.Error(err))
		return err
	}

	// The engine is private until published, so the pool is seeded and the
	// source subscribed before Running reports true.
	seeds := SeedSamples(a.rng, a.palette, a.seedCount, a.seedRad)
	for _, s := range seeds {
		splat(engine, s)
	}
	var cancel func()
	if a.source != nil {
		cancel = a.source.Subscribe(a.inbox)
	}

	a.mu.Lock()
	a.state = state
	a.engine = engine
	a.unsubscribe = cancel
	a.mu.Unlock()

	a.log.Info("simulation started", zap.Int("seeds", len(seeds)))
	return nil
}

// Running reports whether the engine has been started.
func (a *Adapter) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine != nil
}

// State returns the permission state.
func (a *Adapter) State() PermissionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Status returns the message to show in place of the start prompt. It is
// empty once the simulation is running.
func (a *Adapter) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.engine != nil:
		return ""
	case a.engineErr != nil:
		return StatusEngineMissing
	}
	switch a.state {
	case StateRequesting, StateGranted:
		return StatusRequesting
	case StateDenied:
		return StatusDenied
	case StateFailed:
		return StatusFailed
	}
	return StatusAwaiting
}

// Gravity returns the current tilt vector.
func (a *Adapter) Gravity() Gravity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gravity
}

// Dropped returns the number of sensor events lost to a full mailbox.
func (a *Adapter) Dropped() uint64 {
	return a.inbox.dropped.Load()
}

// Steps returns the number of engine steps taken.
func (a *Adapter) Steps() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.steps
}

// Engine returns the running engine, or nil before Start succeeds.
func (a *Adapter) Engine() fluid.Engine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine
}

// HandleOrientation updates the gravity vector. Readings with a missing
// angle leave it unchanged.
func (a *Adapter) HandleOrientation(e OrientationEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orientationLocked(e)
}

// HandleMotion forwards an acceleration impulse while running.
func (a *Adapter) HandleMotion(e MotionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.motionLocked(e)
}

// HandlePointer forwards a pointer stroke for a width×height viewport while
// running.
func (a *Adapter) HandlePointer(e PointerEvent, width, height float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return
	}
	if s, ok := PointerSample(e, width, height); ok {
		a.splatLocked(s)
	}
}

// Step drains queued sensor events, applies the gravity vector through the
// engine's body force when supported, then advances the engine once.
func (a *Adapter) Step() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return
	}
	a.inbox.drain(func(ev sensorEvent) {
		switch {
		case ev.orientation != nil:
			a.orientationLocked(*ev.orientation)
		case ev.motion != nil:
			a.motionLocked(*ev.motion)
		}
	})
	if bf, ok := a.engine.(fluid.BodyForcer); ok {
		bf.ApplyBodyForce(a.gravity.X, a.gravity.Y)
	}
	a.engine.Step()
	a.steps++
}

// Configure hands a new configuration record to an engine that supports
// live reconfiguration.
func (a *Adapter) Configure(cfg fluid.Config) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	if rc, ok := a.engine.(fluid.Reconfigurer); ok {
		rc.Configure(cfg)
		return true
	}
	return false
}

// Close unsubscribes from the source and releases the engine.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if c, ok := a.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *Adapter) orientationLocked(e OrientationEvent) {
	g, ok := GravityFromOrientation(e)
	if !ok {
		a.log.Debug("orientation reading dropped")
		return
	}
	a.gravity = g
}

func (a *Adapter) motionLocked(e MotionEvent) {
	if a.engine == nil {
		return
	}
	s, ok := MotionSample(e)
	if !ok {
		a.log.Debug("motion reading dropped")
		return
	}
	a.splatLocked(s)
}

func (a *Adapter) splatLocked(s ForceSample) {
	splat(a.engine, s)
}

func splat(e fluid.Engine, s ForceSample) {
	e.Splat(s.X, s.Y, s.ForceX, s.ForceY, s.Color, s.Radius)
}
