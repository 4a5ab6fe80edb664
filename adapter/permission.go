package adapter

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable means the named simulation engine could not be
	// resolved or constructed.
	ErrEngineUnavailable = errors.New("simulation engine unavailable")
	// ErrPermissionDenied means the user refused motion sensor access.
	ErrPermissionDenied = errors.New("motion sensor permission denied")
	// ErrPermissionRequest means the permission request itself failed.
	ErrPermissionRequest = errors.New("motion sensor permission request failed")
)

// PermissionState tracks the sensor authorization flow. Denied and Failed
// are terminal.
type PermissionState int

const (
	StateNotRequested PermissionState = iota
	StateRequesting
	StateGranted
	StateDenied
	StateFailed
)

func (s PermissionState) String() string {
	switch s {
	case StateNotRequested:
		return "not-requested"
	case StateRequesting:
		return "requesting"
	case StateGranted:
		return "granted"
	case StateDenied:
		return "denied"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("PermissionState(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s PermissionState) Terminal() bool {
	return s == StateDenied || s == StateFailed
}

// ask performs one permission request. A nil requester means the platform
// needs no authorization. Panics from the platform call count as request
// failures.
func ask(ctx context.Context, req PermissionRequester) (state PermissionState, err error) {
	if req == nil {
		return StateGranted, nil
	}
	defer func() {
		if r := recover(); r != nil {
			state = StateFailed
			err = fmt.Errorf("%w: %v", ErrPermissionRequest, r)
		}
	}()
	resp, rerr := req.RequestPermission(ctx)
	if rerr != nil {
		return StateFailed, fmt.Errorf("%w: %w", ErrPermissionRequest, rerr)
	}
	switch resp {
	case PermissionGranted:
		return StateGranted, nil
	case PermissionDenied:
		return StateDenied, ErrPermissionDenied
	}
	return StateFailed, fmt.Errorf("%w: unexpected response %q", ErrPermissionRequest, resp)
}
