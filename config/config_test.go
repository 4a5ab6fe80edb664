package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltwater/tiltwater/fluid"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func TestParseOverridesDefaults(t *testing.T) {
	f, err := Parse([]byte(`
engine: ripple
window:
  width: 400
seed:
  amount: 5
sensors:
  source: relay
  relay_addr: 127.0.0.1:9000
  permission_timeout: 15s
log:
  level: debug
simulation:
  SIM_RESOLUTION: 64
  PAUSED: true
  BACK_COLOR: {r: 0, g: 0, b: 255}
`))
	require.NoError(t, err)

	assert.Equal(t, 400, f.Window.Width)
	assert.Equal(t, 640, f.Window.Height)
	assert.Equal(t, "Fluid Simulation", f.Window.Title)
	assert.Equal(t, 5, f.Seed.Amount)
	assert.Equal(t, 0.25, f.Seed.Radius)
	assert.Equal(t, SourceRelay, f.Sensors.Source)
	assert.Equal(t, "127.0.0.1:9000", f.Sensors.RelayAddr)
	assert.Equal(t, 15*time.Second, f.Sensors.PermissionTimeout)
	assert.Equal(t, "debug", f.Log.Level)
	assert.Equal(t, "console", f.Log.Format)

	assert.Equal(t, 64, f.Simulation.Int(fluid.SimResolution, 0))
	assert.True(t, f.Simulation.Bool(fluid.Paused, false))
	assert.Equal(t, fluid.Color{B: 1}, f.Simulation.Color(fluid.BackColor, fluid.White))
	// Keys not in the file keep their defaults.
	assert.Equal(t, 6000.0, f.Simulation.Float(fluid.SplatForce, 0))
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "window: [1, 2"},
		{"empty engine", `engine: ""`},
		{"window", "window: {width: 0}"},
		{"seed radius", "seed: {radius: -1}"},
		{"source", "sensors: {source: keyboard}"},
		{"timeout", "sensors: {permission_timeout: -1s}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: {height: -3}"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiltwater.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: {PAUSED: false}\n"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu   sync.Mutex
		got  []File
		done = make(chan error, 1)
	)
	go func() {
		done <- w.Run(ctx, func(f File) {
			mu.Lock()
			got = append(got, f)
			mu.Unlock()
		})
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("simulation: {PAUSED: true}\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1].Simulation.Bool(fluid.Paused, false)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
