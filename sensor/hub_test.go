package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tiltwater/tiltwater/adapter"
)

type recorder struct {
	orientations []adapter.OrientationEvent
	motions      []adapter.MotionEvent
}

func (r *recorder) OnOrientation(e adapter.OrientationEvent) { r.orientations = append(r.orientations, e) }
func (r *recorder) OnMotion(e adapter.MotionEvent)           { r.motions = append(r.motions, e) }

func TestHubFanOut(t *testing.T) {
	var h Hub
	a, b := &recorder{}, &recorder{}
	cancelA := h.Subscribe(a)
	h.Subscribe(b)
	assert.Equal(t, 2, h.Len())

	h.PublishOrientation(adapter.OrientationEvent{Beta: adapter.Float(10)})
	h.PublishMotion(adapter.MotionEvent{})
	assert.Len(t, a.orientations, 1)
	assert.Len(t, b.motions, 1)

	cancelA()
	cancelA()
	assert.Equal(t, 1, h.Len())

	h.PublishOrientation(adapter.OrientationEvent{})
	assert.Len(t, a.orientations, 1)
	assert.Len(t, b.orientations, 2)
}
