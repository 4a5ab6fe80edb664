package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/config"
	"github.com/tiltwater/tiltwater/fluid"
)

type recordingEngine struct {
	cfg fluid.Config
}

func (e *recordingEngine) Splat(x, y, fx, fy float64, c *fluid.Color, r float64) {}
func (e *recordingEngine) Step()                                                 {}
func (e *recordingEngine) Configure(cfg fluid.Config)                            { e.cfg = cfg }

type closingSource struct {
	closed int
}

func (s *closingSource) Subscribe(adapter.Listener) func() { return func() {} }

func (s *closingSource) Close() error {
	s.closed++
	return nil
}

func newTestGame(t *testing.T, src adapter.Source) (*Game, *recordingEngine) {
	t.Helper()
	eng := &recordingEngine{}
	a, err := adapter.New(adapter.Options{
		Engine: "recording",
		Lookup: func(string) (fluid.Constructor, error) {
			return func(fluid.Surface, fluid.Config) (fluid.Engine, error) { return eng, nil }, nil
		},
		Source: src,
	})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	return &Game{
		log:     zap.NewNop(),
		adapter: a,
		source:  src,
		sim:     newLiveSimulation(fluid.DefaultConfig()),
		reloads: make(chan fluid.Config, 1),
	}, eng
}

func reloaded(sim fluid.Config) config.File {
	f := config.Default()
	f.Simulation = fluid.DefaultConfig().Merge(sim)
	return f
}

func TestReloadThenPauseKeepsBoth(t *testing.T) {
	g, eng := newTestGame(t, nil)

	g.queueReload(reloaded(fluid.Config{fluid.SplatForce: 3000}))
	g.applyReloads()
	assert.Equal(t, 3000.0, eng.cfg.Float(fluid.SplatForce, 0))

	g.togglePause()
	assert.Equal(t, 3000.0, eng.cfg.Float(fluid.SplatForce, 0))
	assert.True(t, eng.cfg.Bool(fluid.Paused, false))
}

func TestPauseOutlastsReload(t *testing.T) {
	g, eng := newTestGame(t, nil)
	g.togglePause()

	g.queueReload(reloaded(fluid.Config{fluid.SplatForce: 4000, fluid.Paused: false}))
	g.applyReloads()
	assert.Equal(t, 4000.0, eng.cfg.Float(fluid.SplatForce, 0))
	assert.True(t, eng.cfg.Bool(fluid.Paused, false))

	g.togglePause()
	assert.False(t, eng.cfg.Bool(fluid.Paused, true))
	assert.Equal(t, 4000.0, eng.cfg.Float(fluid.SplatForce, 0))
}

func TestQueueReloadKeepsNewest(t *testing.T) {
	g, eng := newTestGame(t, nil)
	g.queueReload(reloaded(fluid.Config{fluid.SplatForce: 1000}))
	g.queueReload(reloaded(fluid.Config{fluid.SplatForce: 2000}))

	g.applyReloads()
	assert.Equal(t, 2000.0, eng.cfg.Float(fluid.SplatForce, 0))

	eng.cfg = nil
	g.applyReloads()
	assert.Nil(t, eng.cfg)
}

func TestLiveSimulationDoesNotAliasCallerRecord(t *testing.T) {
	base := fluid.DefaultConfig()
	sim := newLiveSimulation(base)
	sim.togglePause()
	assert.False(t, base.Bool(fluid.Paused, true))

	next := fluid.DefaultConfig()
	sim.reload(next)
	assert.False(t, next.Bool(fluid.Paused, true))
}

func TestCloseReleasesSource(t *testing.T) {
	src := &closingSource{}
	g, _ := newTestGame(t, src)
	require.NoError(t, g.Close())
	assert.Equal(t, 1, src.closed)
}

func TestApplyFlagsRejectsTwoProfiles(t *testing.T) {
	prevPGO, prevProfile := *recordDefaultPGO, *cpuProfileFlag
	t.Cleanup(func() {
		*recordDefaultPGO, *cpuProfileFlag = prevPGO, prevProfile
	})

	*recordDefaultPGO = true
	*cpuProfileFlag = "cpu.out"
	cfg := config.Default()
	assert.Error(t, applyFlags(&cfg))

	*cpuProfileFlag = ""
	cfg = config.Default()
	cfg.Sensors.Source = config.SourceRelay
	require.NoError(t, applyFlags(&cfg))
	assert.Equal(t, config.SourceGamepad, cfg.Sensors.Source)
}
