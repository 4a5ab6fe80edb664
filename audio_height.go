package main

import (
	"encoding/binary"
	"sync"
)

// restFollow is how quickly heightAudio tracks the resting surface level,
// per pushed sample.
const restFollow = 0.001

// heightAudio plays the engine's centre height as 16-bit stereo PCM. Heights
// arrive in [-1, 1]; the slowly moving resting level is subtracted so a
// tilted pool is silent, and the remainder is clamped back to [-1, 1].
type heightAudio struct {
	mu    sync.Mutex
	rest  float32
	level float32
}

func newHeightAudio() *heightAudio {
	return &heightAudio{}
}

func clampUnit(v float32) float32 {
	return max(-1, min(1, v))
}

// Push records the latest centre height.
func (a *heightAudio) Push(h float32) {
	h = clampUnit(h)
	a.mu.Lock()
	a.rest += restFollow * (h - a.rest)
	a.level = clampUnit(h - a.rest)
	a.mu.Unlock()
}

// Read fills p with whole stereo frames holding the current level.
func (a *heightAudio) Read(p []byte) (int, error) {
	n := len(p) &^ 3
	a.mu.Lock()
	pcm := int16(a.level * pcm16MaxValue)
	a.mu.Unlock()
	for i := 0; i < n; i += 4 {
		binary.LittleEndian.PutUint16(p[i:], uint16(pcm))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(pcm))
	}
	return n, nil
}

func (a *heightAudio) Close() error { return nil }
