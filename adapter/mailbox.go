package adapter

import "sync/atomic"

type sensorEvent struct {
	orientation *OrientationEvent
	motion      *MotionEvent
}

// mailbox hands events from source goroutines to the stepping goroutine.
// When full, new events are dropped and counted.
type mailbox struct {
	ch      chan sensorEvent
	dropped atomic.Uint64
}

func newMailbox(size int) *mailbox {
	if size < 1 {
		size = 1
	}
	return &mailbox{ch: make(chan sensorEvent, size)}
}

func (m *mailbox) OnOrientation(e OrientationEvent) {
	m.post(sensorEvent{orientation: &e})
}

func (m *mailbox) OnMotion(e MotionEvent) {
	m.post(sensorEvent{motion: &e})
}

func (m *mailbox) post(ev sensorEvent) {
	select {
	case m.ch <- ev:
	default:
		m.dropped.Add(1)
	}
}

// drain calls fn for every queued event without blocking.
func (m *mailbox) drain(fn func(sensorEvent)) {
	for {
		select {
		case ev := <-m.ch:
			fn(ev)
		default:
			return
		}
	}
}
