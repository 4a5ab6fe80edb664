package gamepad

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiltwater/tiltwater/adapter"
)

func TestOrientation(t *testing.T) {
	tests := []struct {
		name        string
		in          Sticks
		beta, gamma float64
	}{
		{"level", Sticks{}, 0, 0},
		{"right", Sticks{LX: 1}, 0, 90},
		{"down", Sticks{LY: 0.5}, 45, 0},
		{"clamped", Sticks{LX: -3, LY: -2}, -90, -90},
		{"nan", Sticks{LX: math.NaN()}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Orientation(tt.in)
			require.NotNil(t, e.Beta)
			require.NotNil(t, e.Gamma)
			assert.Equal(t, tt.beta, *e.Beta)
			assert.Equal(t, tt.gamma, *e.Gamma)
		})
	}
}

func TestOrientationDrivesGravity(t *testing.T) {
	g, ok := adapter.GravityFromOrientation(Orientation(Sticks{LX: 1, LY: 1}))
	require.True(t, ok)
	assert.Equal(t, adapter.Gravity{X: 4, Y: -4}, g)
}

func TestMotionDeadzone(t *testing.T) {
	_, ok := Motion(Sticks{RX: 0.05, RY: -0.05})
	assert.False(t, ok)

	m, ok := Motion(Sticks{RX: 1, RY: -0.5})
	require.True(t, ok)
	a := m.AccelerationIncludingGravity
	require.NotNil(t, a)
	assert.InDelta(t, 9.81, *a.X, 1e-9)
	assert.InDelta(t, -4.905, *a.Y, 1e-9)
}

type recorder struct {
	orientations int
	motions      int
}

func (r *recorder) OnOrientation(adapter.OrientationEvent) { r.orientations++ }
func (r *recorder) OnMotion(adapter.MotionEvent)           { r.motions++ }

func TestFeedPublishes(t *testing.T) {
	s := New()
	rec := &recorder{}
	cancel := s.Subscribe(rec)

	s.Feed(Sticks{LX: 0.2})
	s.Feed(Sticks{RX: 1})
	assert.Equal(t, 2, rec.orientations)
	assert.Equal(t, 1, rec.motions)

	cancel()
	s.Feed(Sticks{RX: 1})
	assert.Equal(t, 2, rec.orientations)
}

func TestWanderRunsUntilDeadline(t *testing.T) {
	now := time.Unix(0, 0)
	w := newWander(rand.New(rand.NewSource(1)), func() time.Time { return now }, time.Second)

	for i := 0; i < 200; i++ {
		st, ok := w.Next()
		require.True(t, ok)
		assert.InDelta(t, 1, math.Hypot(st.LX, st.LY), 1e-9)
	}

	now = now.Add(2 * time.Second)
	_, ok := w.Next()
	assert.False(t, ok)
}
