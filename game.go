package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/config"
	"github.com/tiltwater/tiltwater/fluid"
	"github.com/tiltwater/tiltwater/sensor/gamepad"
	"github.com/tiltwater/tiltwater/sensor/relay"
)

// Game hosts the adapter in the Ebitengine loop: it turns input into
// pointer events, forwards the start gesture and steps the adapter once per
// frame.
type Game struct {
	ctx context.Context
	log *zap.Logger
	cfg config.File

	width, height int

	adapter *adapter.Adapter
	surface *ebiten.Image
	prompt  *startPrompt
	source  adapter.Source

	// sim is only touched on the game loop; reloads carries file changes
	// from the watcher goroutine to it.
	sim     liveSimulation
	reloads chan fluid.Config

	gamepad *gamepad.Source
	relay   *relay.Server

	startOnce sync.Once
	pointer   pointerTracker

	lastStepDuration time.Duration
	debug            bool

	pgoStop     func()
	pgoDeadline time.Time

	audioCtx    *audio.Context
	audioStream *heightAudio
	audioPlayer *audio.Player
}

// newGame wires the sensor source, the adapter and the host surface. It
// fails with adapter.ErrEngineUnavailable when the configured engine is not
// registered, before any listener is attached.
func newGame(ctx context.Context, cfg config.File, log *zap.Logger) (*Game, error) {
	g := &Game{
		ctx:    ctx,
		log:    log,
		cfg:    cfg,
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		debug:  *debugFlag,

		sim:     newLiveSimulation(cfg.Simulation),
		reloads: make(chan fluid.Config, 1),
	}

	var source adapter.Source
	switch cfg.Sensors.Source {
	case config.SourceGamepad:
		g.gamepad = gamepad.New()
		source = g.gamepad
	case config.SourceRelay:
		g.relay = relay.New(log.With(zap.String("component", "relay")))
		source = g.relay
	case config.SourceBrowser:
		src, err := browserSource()
		if err != nil {
			return nil, err
		}
		source = src
	default:
		return nil, fmt.Errorf("unknown sensor source %q", cfg.Sensors.Source)
	}

	g.source = source

	sw := max(g.width/surfaceScale, 2)
	sh := max(g.height/surfaceScale, 2)
	g.surface = ebiten.NewImage(sw, sh)

	a, err := adapter.New(adapter.Options{
		Engine:     cfg.Engine,
		Surface:    g.surface,
		Config:     g.sim.cfg,
		Source:     source,
		SeedAmount: cfg.Seed.Amount,
		SeedRadius: cfg.Seed.Radius,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	g.adapter = a
	g.prompt = newStartPrompt(cfg.Window.Title, a.Status())

	if *enableAudioFlag || cfg.Audio {
		g.startAudio()
	}
	return g, nil
}

func (g *Game) startAudio() {
	g.audioCtx = audio.NewContext(audioSampleRate)
	g.audioStream = newHeightAudio()
	player, err := g.audioCtx.NewPlayer(g.audioStream)
	if err != nil {
		g.log.Warn("audio player creation failed", zap.Error(err))
		return
	}
	g.audioPlayer = player
	g.audioPlayer.SetBufferSize(audioPlayerBufferLatency)
	g.audioPlayer.Play()
}

// recordProfile drives the simulation with scripted gamepad input and
// writes a CPU profile until the run ends.
func (g *Game) recordProfile(path string, d time.Duration) error {
	if g.gamepad == nil {
		return errors.New("profile recording needs the gamepad source")
	}
	stop, err := startCPUProfile(path)
	if err != nil {
		return err
	}
	g.pgoStop = stop
	g.pgoDeadline = time.Now().Add(d)
	g.gamepad.SetWander(gamepad.NewWander(time.Now().UnixNano(), d))
	g.begin()
	return nil
}

// begin consumes the start gesture. Start may block on a permission prompt,
// so it runs off the game loop; the adapter keeps later calls no-ops.
func (g *Game) begin() {
	g.startOnce.Do(func() {
		go func() {
			ctx := g.ctx
			if t := g.cfg.Sensors.PermissionTimeout; t > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, t)
				defer cancel()
			}
			if err := g.adapter.Start(ctx); err != nil {
				g.log.Warn("start gesture did not start the simulation",
					zap.Stringer("state", g.adapter.State()), zap.Error(err))
			}
		}()
	})
}

// Update polls input and advances the simulation one step.
func (g *Game) Update() error {
	if g.pgoStop != nil && time.Now().After(g.pgoDeadline) {
		g.pgoStop()
		g.log.Info("profile written", zap.String("path", pgoProfilePath))
		return ebiten.Termination
	}
	if err := g.handleKeys(); err != nil {
		return err
	}

	g.applyReloads()

	if !g.adapter.Running() && startGesture() {
		g.begin()
	}
	g.prompt.update(g.adapter.Status(), g.adapter.Running())

	if g.gamepad != nil {
		g.gamepad.Poll()
	}
	for _, e := range g.pointer.poll() {
		g.adapter.HandlePointer(e, float64(g.width), float64(g.height))
	}

	if g.adapter.Running() {
		start := time.Now()
		g.adapter.Step()
		g.lastStepDuration = time.Since(start)
		if g.audioStream != nil {
			if s, ok := g.adapter.Engine().(fluid.Sampler); ok {
				g.audioStream.Push(s.CenterSample())
			}
		}
	}
	return nil
}

// queueReload hands a reloaded configuration file to the game loop. It is
// called from the watcher goroutine; only the newest pending reload is kept.
func (g *Game) queueReload(f config.File) {
	for {
		select {
		case g.reloads <- f.Simulation:
			return
		default:
		}
		select {
		case <-g.reloads:
		default:
		}
	}
}

// applyReloads applies a pending simulation block. Only that block takes
// effect while running.
func (g *Game) applyReloads() {
	select {
	case cfg := <-g.reloads:
		if g.adapter.Configure(g.sim.reload(cfg)) {
			g.log.Info("simulation settings applied")
		}
	default:
	}
}

func (g *Game) togglePause() {
	g.adapter.Configure(g.sim.togglePause())
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return g.width, g.height }

// Close releases the engine, the sensor source and the audio player.
func (g *Game) Close() error {
	if g.audioPlayer != nil {
		_ = g.audioPlayer.Close()
	}
	if g.pgoStop != nil {
		g.pgoStop()
	}
	err := g.adapter.Close()
	if c, ok := g.source.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}
