package fluid

import (
	"math"
	"strings"
)

// Config is the flat configuration record handed to an engine. Keys follow
// the upstream WebGL fluid option names and are passed through untouched.
type Config map[string]any

// Recognized option keys.
const (
	SimResolution       = "SIM_RESOLUTION"
	DyeResolution       = "DYE_RESOLUTION"
	CaptureResolution   = "CAPTURE_RESOLUTION"
	DensityDissipation  = "DENSITY_DISSIPATION"
	VelocityDissipation = "VELOCITY_DISSIPATION"
	Pressure            = "PRESSURE"
	PressureIterations  = "PRESSURE_ITERATIONS"
	Curl                = "CURL"
	SplatRadius         = "SPLAT_RADIUS"
	SplatForce          = "SPLAT_FORCE"
	Shading             = "SHADING"
	Colorful            = "COLORFUL"
	ColorUpdateSpeed    = "COLOR_UPDATE_SPEED"
	Paused              = "PAUSED"
	BackColor           = "BACK_COLOR"
	Transparent         = "TRANSPARENT"
	Bloom               = "BLOOM"
	BloomIterations     = "BLOOM_ITERATIONS"
	BloomResolution     = "BLOOM_RESOLUTION"
	BloomIntensity      = "BLOOM_INTENSITY"
	BloomThreshold      = "BLOOM_THRESHOLD"
	BloomSoftKnee       = "BLOOM_SOFT_KNEE"
	Sunrays             = "SUNRAYS"
	SunraysResolution   = "SUNRAYS_RESOLUTION"
	SunraysWeight       = "SUNRAYS_WEIGHT"
)

// DefaultConfig returns the upstream defaults for every recognized key.
func DefaultConfig() Config {
	return Config{
		SimResolution:       128,
		DyeResolution:       1024,
		CaptureResolution:   512,
		DensityDissipation:  1.0,
		VelocityDissipation: 0.2,
		Pressure:            0.8,
		PressureIterations:  20,
		Curl:                30,
		SplatRadius:         0.25,
		SplatForce:          6000,
		Shading:             true,
		Colorful:            true,
		ColorUpdateSpeed:    10,
		Paused:              false,
		BackColor:           Color{0, 0, 0},
		Transparent:         false,
		Bloom:               true,
		BloomIterations:     8,
		BloomResolution:     256,
		BloomIntensity:      0.8,
		BloomThreshold:      0.6,
		BloomSoftKnee:       0.7,
		Sunrays:             true,
		SunraysResolution:   196,
		SunraysWeight:       1.0,
	}
}

// Clone returns a shallow copy of c.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a copy of c with every key of other applied on top.
func (c Config) Merge(other Config) Config {
	out := c.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Float reads a numeric option, returning def when the key is missing, not a
// number, or not finite.
func (c Config) Float(key string, def float64) float64 {
	var f float64
	switch v := c[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Int reads a numeric option truncated to an int.
func (c Config) Int(key string, def int) int {
	if _, ok := c[key]; !ok {
		return def
	}
	return int(c.Float(key, float64(def)))
}

// Bool reads a boolean option.
func (c Config) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "on":
			return true
		case "false", "no", "off":
			return false
		}
	}
	return def
}

// Color reads a colour option. Besides Color values it accepts the
// {r, g, b} mappings produced by YAML decoding, with channels either in
// [0,1] or in [0,255].
func (c Config) Color(key string, def Color) Color {
	switch v := c[key].(type) {
	case Color:
		return v
	case *Color:
		if v != nil {
			return *v
		}
	case map[string]any:
		m := Config{}
		for k, val := range v {
			m[strings.ToLower(k)] = val
		}
		col := Color{R: m.Float("r", def.R), G: m.Float("g", def.G), B: m.Float("b", def.B)}
		if col.R > 1 || col.G > 1 || col.B > 1 {
			col = Color{R: col.R / 255, G: col.G / 255, B: col.B / 255}
		}
		return col
	}
	return def
}
