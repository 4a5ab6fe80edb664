//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"sync"
	"syscall/js"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/sensor"
)

// Source listens on window for device sensor events. Listeners are attached
// on the first Subscribe.
type Source struct {
	hub sensor.Hub

	once   sync.Once
	window js.Value
	funcs  []js.Func
}

func New() *Source {
	return &Source{window: js.Global()}
}

// NeedsPermission reports whether the browser gates sensors behind
// DeviceOrientationEvent.requestPermission.
func (s *Source) NeedsPermission() bool {
	doe := s.window.Get("DeviceOrientationEvent")
	return doe.Truthy() && doe.Get("requestPermission").Type() == js.TypeFunction
}

// RequestPermission resolves the browser's permission promise. Browsers
// without the API grant implicitly.
func (s *Source) RequestPermission(ctx context.Context) (adapter.PermissionResponse, error) {
	if !s.NeedsPermission() {
		return adapter.PermissionGranted, nil
	}
	type result struct {
		state string
		err   error
	}
	done := make(chan result, 1)
	then := js.FuncOf(func(this js.Value, args []js.Value) any {
		state := ""
		if len(args) > 0 {
			state = args[0].String()
		}
		done <- result{state: state}
		return nil
	})
	catch := js.FuncOf(func(this js.Value, args []js.Value) any {
		msg := "permission request rejected"
		if len(args) > 0 && args[0].Truthy() {
			msg = args[0].Call("toString").String()
		}
		done <- result{err: errors.New(msg)}
		return nil
	})

	s.window.Get("DeviceOrientationEvent").Call("requestPermission").Call("then", then).Call("catch", catch)

	// The callbacks must outlive ctx: the browser prompt stays open and
	// settles the promise later.
	settled := make(chan result, 1)
	go func() {
		r := <-done
		then.Release()
		catch.Release()
		settled <- r
	}()

	select {
	case r := <-settled:
		if r.err != nil {
			return "", r.err
		}
		return adapter.PermissionResponse(r.state), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Subscribe implements adapter.Source.
func (s *Source) Subscribe(l adapter.Listener) (cancel func()) {
	s.once.Do(s.attach)
	return s.hub.Subscribe(l)
}

func (s *Source) attach() {
	orientation := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		e := args[0]
		s.hub.PublishOrientation(adapter.OrientationEvent{
			Alpha: number(e.Get("alpha")),
			Beta:  number(e.Get("beta")),
			Gamma: number(e.Get("gamma")),
		})
		return nil
	})
	motion := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		var ev adapter.MotionEvent
		if a := args[0].Get("accelerationIncludingGravity"); a.Truthy() {
			ev.AccelerationIncludingGravity = &adapter.Vector3{
				X: number(a.Get("x")),
				Y: number(a.Get("y")),
				Z: number(a.Get("z")),
			}
		}
		s.hub.PublishMotion(ev)
		return nil
	})
	s.window.Call("addEventListener", "deviceorientation", orientation)
	s.window.Call("addEventListener", "devicemotion", motion)
	s.funcs = append(s.funcs, orientation, motion)
}

// Close removes the window listeners.
func (s *Source) Close() error {
	if len(s.funcs) == 2 {
		s.window.Call("removeEventListener", "deviceorientation", s.funcs[0])
		s.window.Call("removeEventListener", "devicemotion", s.funcs[1])
	}
	for _, f := range s.funcs {
		f.Release()
	}
	s.funcs = nil
	return nil
}

func number(v js.Value) *float64 {
	if v.Type() != js.TypeNumber {
		return nil
	}
	f := v.Float()
	return &f
}
