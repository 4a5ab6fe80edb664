package relay

import "github.com/tiltwater/tiltwater/adapter"

// Frame types exchanged over /ws.
const (
	frameHello             = "hello"
	frameOrientation       = "orientation"
	frameMotion            = "motion"
	framePermission        = "permission"
	framePermissionRequest = "permission_request"
)

type vector struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// frame is the JSON message format of the phone page. Only the fields of
// the given type are set.
type frame struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`

	Alpha *float64 `json:"alpha,omitempty"`
	Beta  *float64 `json:"beta,omitempty"`
	Gamma *float64 `json:"gamma,omitempty"`

	AccelerationIncludingGravity *vector `json:"accelerationIncludingGravity,omitempty"`

	State string `json:"state,omitempty"`
}

func (f frame) orientation() adapter.OrientationEvent {
	return adapter.OrientationEvent{Alpha: f.Alpha, Beta: f.Beta, Gamma: f.Gamma}
}

func (f frame) motion() adapter.MotionEvent {
	var e adapter.MotionEvent
	if v := f.AccelerationIncludingGravity; v != nil {
		e.AccelerationIncludingGravity = &adapter.Vector3{X: v.X, Y: v.Y, Z: v.Z}
	}
	return e
}
