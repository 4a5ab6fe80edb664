// Package gamepad turns gamepad sticks and the keyboard into orientation
// and motion events, for machines without motion sensors.
package gamepad

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/sensor"
)

const (
	// maxTiltDegrees is the tilt reported for a fully deflected stick.
	maxTiltDegrees = 90.0
	// standardGravity is the acceleration reported for a fully deflected
	// right stick, in m/s².
	standardGravity = 9.81
	deadzone        = 0.15
	diagonal        = 0.7071
)

// Sticks is one frame of input, each axis in [-1, 1] with y growing down
// the screen.
type Sticks struct {
	LX, LY float64
	RX, RY float64
}

// Orientation maps the left stick to tilt angles. Pushing the stick right
// tilts the device right, pushing it down tilts the top edge up.
func Orientation(s Sticks) adapter.OrientationEvent {
	return adapter.OrientationEvent{
		Beta:  adapter.Float(clampAxis(s.LY) * maxTiltDegrees),
		Gamma: adapter.Float(clampAxis(s.LX) * maxTiltDegrees),
	}
}

// Motion maps the right stick to an acceleration reading. It reports false
// while the stick rests inside the deadzone.
func Motion(s Sticks) (adapter.MotionEvent, bool) {
	x, y := clampAxis(s.RX), clampAxis(s.RY)
	if math.Hypot(x, y) < deadzone {
		return adapter.MotionEvent{}, false
	}
	return adapter.MotionEvent{AccelerationIncludingGravity: &adapter.Vector3{
		X: adapter.Float(x * standardGravity),
		Y: adapter.Float(y * standardGravity),
		Z: adapter.Float(0),
	}}, true
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// Source polls the first standard-layout gamepad and the arrow/WASD keys
// once per frame. It needs no permission.
type Source struct {
	sensor.Hub

	ids    []ebiten.GamepadID
	wander *Wander
}

func New() *Source {
	return &Source{}
}

// SetWander replaces live input with w until w expires. A nil w restores
// live input.
func (s *Source) SetWander(w *Wander) {
	s.wander = w
}

// Poll reads the current input and publishes it. It must be called from the
// game loop.
func (s *Source) Poll() {
	s.Feed(s.read())
}

// Feed publishes one frame of input.
func (s *Source) Feed(st Sticks) {
	s.PublishOrientation(Orientation(st))
	if m, ok := Motion(st); ok {
		s.PublishMotion(m)
	}
}

func (s *Source) read() Sticks {
	if s.wander != nil {
		if st, ok := s.wander.Next(); ok {
			return st
		}
		s.wander = nil
	}
	var st Sticks
	s.ids = ebiten.AppendGamepadIDs(s.ids[:0])
	for _, id := range s.ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		st.LX = stick(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal))
		st.LY = stick(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical))
		st.RX = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		st.RY = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		break
	}
	kx, ky := keyTilt()
	if kx != 0 || ky != 0 {
		st.LX, st.LY = kx, ky
	}
	return st
}

// stick zeroes small deflections so a resting stick reads level.
func stick(v float64) float64 {
	if math.Abs(v) < deadzone {
		return 0
	}
	return v
}

func keyTilt() (float64, float64) {
	dx, dy := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx++
	}
	if dx != 0 && dy != 0 {
		dx *= diagonal
		dy *= diagonal
	}
	return dx, dy
}
