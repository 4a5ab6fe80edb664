// Package config loads tiltwater.yaml and watches it for changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/fluid"
	"github.com/tiltwater/tiltwater/logger"
)

// Sensor source names accepted in sensors.source.
const (
	SourceGamepad = "gamepad"
	SourceRelay   = "relay"
	SourceBrowser = "browser"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Seed struct {
	Amount int     `yaml:"amount"`
	Radius float64 `yaml:"radius"`
}

type Sensors struct {
	Source    string `yaml:"source"`
	RelayAddr string `yaml:"relay_addr"`
	// PermissionTimeout bounds how long the start gesture waits for the
	// source to answer a permission request.
	PermissionTimeout time.Duration `yaml:"permission_timeout"`
}

// File is the on-disk configuration.
type File struct {
	Engine  string        `yaml:"engine"`
	Window  Window        `yaml:"window"`
	Seed    Seed          `yaml:"seed"`
	Sensors Sensors       `yaml:"sensors"`
	Log     logger.Config `yaml:"log"`
	Audio   bool          `yaml:"audio"`

	// Simulation is handed to the engine verbatim, layered over
	// fluid.DefaultConfig.
	Simulation fluid.Config `yaml:"simulation"`
}

// Default returns the configuration used when no file exists.
func Default() File {
	return File{
		Engine: "ripple",
		Window: Window{Width: 960, Height: 640, Title: "Fluid Simulation"},
		Seed:   Seed{Amount: adapter.DefaultSeedAmount, Radius: adapter.DefaultSeedRadius},
		Sensors: Sensors{
			Source:            SourceGamepad,
			RelayAddr:         ":8080",
			PermissionTimeout: time.Minute,
		},
		Log:        logger.DefaultConfig(),
		Simulation: fluid.DefaultConfig(),
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return File{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (File, error) {
	f := Default()
	f.Simulation = nil
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("unmarshal: %w", err)
	}
	f.Simulation = fluid.DefaultConfig().Merge(f.Simulation)
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate reports the first invalid setting.
func (f File) Validate() error {
	if f.Engine == "" {
		return errors.New("engine must be set")
	}
	if f.Window.Width <= 0 || f.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", f.Window.Width, f.Window.Height)
	}
	if f.Seed.Radius < 0 {
		return fmt.Errorf("seed radius %v must not be negative", f.Seed.Radius)
	}
	switch f.Sensors.Source {
	case SourceGamepad, SourceRelay, SourceBrowser:
	default:
		return fmt.Errorf("sensors.source %q: want %s, %s or %s", f.Sensors.Source, SourceGamepad, SourceRelay, SourceBrowser)
	}
	if f.Sensors.PermissionTimeout < 0 {
		return fmt.Errorf("sensors.permission_timeout %v must not be negative", f.Sensors.PermissionTimeout)
	}
	return nil
}
