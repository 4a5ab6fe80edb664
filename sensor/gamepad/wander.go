package gamepad

import (
	"math"
	"math/rand"
	"time"
)

// Wander produces scripted input: the left stick drifts between random
// headings and the right stick flicks now and then. It is used for
// unattended runs such as profile recording.
type Wander struct {
	rng      *rand.Rand
	now      func() time.Time
	deadline time.Time

	dirX, dirY float64
	frames     int
	flick      int
}

// NewWander returns a Wander that runs for d.
func NewWander(seed int64, d time.Duration) *Wander {
	return newWander(rand.New(rand.NewSource(seed)), time.Now, d)
}

func newWander(rng *rand.Rand, now func() time.Time, d time.Duration) *Wander {
	return &Wander{rng: rng, now: now, deadline: now().Add(d)}
}

// Next returns the next frame of input, or false once the run is over.
func (w *Wander) Next() (Sticks, bool) {
	if w.now().After(w.deadline) {
		return Sticks{}, false
	}
	if w.frames <= 0 {
		w.randomize()
	}
	w.frames--
	st := Sticks{LX: w.dirX, LY: w.dirY}
	if w.flick > 0 {
		w.flick--
		st.RX, st.RY = -w.dirX, -w.dirY
	}
	return st, true
}

func (w *Wander) randomize() {
	angle := w.rng.Float64() * 2 * math.Pi
	w.dirX = math.Cos(angle)
	w.dirY = math.Sin(angle)
	w.frames = 20 + w.rng.Intn(50)
	if w.rng.Intn(3) == 0 {
		w.flick = 3
	}
}
