package main

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFrame(t *testing.T, a *heightAudio) (int16, int16) {
	t.Helper()
	buf := make([]byte, 4)
	n, err := a.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return int16(binary.LittleEndian.Uint16(buf[0:2])), int16(binary.LittleEndian.Uint16(buf[2:4]))
}

func TestHeightAudioWritesWholeFrames(t *testing.T) {
	a := newHeightAudio()
	a.Push(0.5)

	buf := make([]byte, 10)
	n, err := a.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, buf[0:4], buf[4:8])

	left, right := readFrame(t, a)
	assert.Equal(t, left, right)
	assert.Greater(t, left, int16(0))

	n, err = a.Read(buf[:3])
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHeightAudioSilencesRestingLevel(t *testing.T) {
	a := newHeightAudio()
	for i := 0; i < 20000; i++ {
		a.Push(0.5)
	}
	left, _ := readFrame(t, a)
	assert.Less(t, left, int16(100))
}

func TestHeightAudioClampsSwingAfterSettling(t *testing.T) {
	tests := []struct {
		name   string
		settle float32
		peak   float32
		want   int16
	}{
		{"rising", -1, 1, pcm16MaxValue},
		{"falling", 1, -1, -pcm16MaxValue},
		{"out of range", -1, 5, pcm16MaxValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newHeightAudio()
			for i := 0; i < 20000; i++ {
				a.Push(tt.settle)
			}
			a.Push(tt.peak)
			left, right := readFrame(t, a)
			assert.Equal(t, tt.want, left)
			assert.Equal(t, tt.want, right)
		})
	}
}
