// Package sensor holds what the sensor sources share: a listener fan-out.
package sensor

import (
	"sync"

	"github.com/tiltwater/tiltwater/adapter"
)

// Hub fans events out to subscribed listeners. It is safe for concurrent
// use; listeners are called on the publishing goroutine.
type Hub struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]adapter.Listener
}

// Subscribe implements adapter.Source.
func (h *Hub) Subscribe(l adapter.Listener) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[uint64]adapter.Listener)
	}
	h.nextID++
	id := h.nextID
	h.listeners[id] = l
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

// Len reports the number of subscribed listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

func (h *Hub) snapshot() []adapter.Listener {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]adapter.Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		out = append(out, l)
	}
	return out
}

// PublishOrientation delivers e to every listener.
func (h *Hub) PublishOrientation(e adapter.OrientationEvent) {
	for _, l := range h.snapshot() {
		l.OnOrientation(e)
	}
}

// PublishMotion delivers e to every listener.
func (h *Hub) PublishMotion(e adapter.MotionEvent) {
	for _, l := range h.snapshot() {
		l.OnMotion(e)
	}
}
