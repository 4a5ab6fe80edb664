package adapter

import "context"

// OrientationEvent carries device tilt angles in degrees. A nil angle means
// the sensor reported no value.
type OrientationEvent struct {
	Alpha *float64 // compass heading, unused
	Beta  *float64 // front/back tilt, [-180, 180]
	Gamma *float64 // left/right tilt, [-90, 90]
}

// Vector3 is a nullable 3D sensor reading.
type Vector3 struct {
	X, Y, Z *float64
}

// MotionEvent carries acceleration including gravity in m/s².
type MotionEvent struct {
	AccelerationIncludingGravity *Vector3
}

// PointerEvent is a pointer move in viewport pixels.
type PointerEvent struct {
	ClientX, ClientY     float64
	MovementX, MovementY float64
}

// Listener receives sensor events from a Source.
type Listener interface {
	OnOrientation(OrientationEvent)
	OnMotion(MotionEvent)
}

// Source produces orientation and motion events. Subscribe registers l and
// returns a function that removes it. Listeners may be called from any
// goroutine.
type Source interface {
	Subscribe(l Listener) (cancel func())
}

// PermissionResponse is the platform's answer to a sensor permission request.
type PermissionResponse string

const (
	PermissionGranted PermissionResponse = "granted"
	PermissionDenied  PermissionResponse = "denied"
)

// PermissionRequester is implemented by sources that need explicit user
// authorization before they may be subscribed to.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (PermissionResponse, error)
}

// Float is a convenience for building nullable readings.
func Float(v float64) *float64 { return &v }
