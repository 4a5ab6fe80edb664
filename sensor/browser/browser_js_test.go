//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"syscall/js"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltwater/tiltwater/adapter"
)

// fakeWindow stands in for window: requestPermission returns a promise the
// test settles, and listener calls are counted per event type.
type fakeWindow struct {
	value   js.Value
	resolve js.Value
	added   map[string]int
	removed map[string]int
	funcs   []js.Func
}

func newFakeWindow(t *testing.T) *fakeWindow {
	t.Helper()
	w := &fakeWindow{
		value:   js.Global().Get("Object").New(),
		added:   map[string]int{},
		removed: map[string]int{},
	}
	fn := func(f func(args []js.Value) any) js.Func {
		jf := js.FuncOf(func(_ js.Value, args []js.Value) any { return f(args) })
		w.funcs = append(w.funcs, jf)
		return jf
	}
	executor := fn(func(args []js.Value) any {
		w.resolve = args[0]
		return nil
	})
	doe := js.Global().Get("Object").New()
	doe.Set("requestPermission", fn(func([]js.Value) any {
		return js.Global().Get("Promise").New(executor)
	}))
	w.value.Set("DeviceOrientationEvent", doe)
	w.value.Set("addEventListener", fn(func(args []js.Value) any {
		w.added[args[0].String()]++
		return nil
	}))
	w.value.Set("removeEventListener", fn(func(args []js.Value) any {
		w.removed[args[0].String()]++
		return nil
	}))
	t.Cleanup(func() {
		for _, f := range w.funcs {
			f.Release()
		}
	})
	return w
}

type nopListener struct{}

func (nopListener) OnOrientation(adapter.OrientationEvent) {}
func (nopListener) OnMotion(adapter.MotionEvent)           {}

func TestRequestPermissionGranted(t *testing.T) {
	w := newFakeWindow(t)
	s := &Source{window: w.value}
	require.True(t, s.NeedsPermission())

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.resolve.Invoke("granted")
	}()
	resp, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, adapter.PermissionGranted, resp)
}

func TestRequestPermissionLateAnswerAfterTimeout(t *testing.T) {
	w := newFakeWindow(t)
	s := &Source{window: w.value}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.RequestPermission(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	// The prompt answers after the caller gave up; the callbacks are still
	// live and release themselves once the promise settles.
	w.resolve.Invoke("granted")
	time.Sleep(20 * time.Millisecond)
}

func TestCloseRemovesListeners(t *testing.T) {
	w := newFakeWindow(t)
	s := &Source{window: w.value}

	cancel := s.Subscribe(nopListener{})
	s.Subscribe(nopListener{})
	assert.Equal(t, 1, w.added["deviceorientation"])
	assert.Equal(t, 1, w.added["devicemotion"])

	cancel()
	require.NoError(t, s.Close())
	assert.Equal(t, 1, w.removed["deviceorientation"])
	assert.Equal(t, 1, w.removed["devicemotion"])
	assert.Empty(t, s.funcs)
}
