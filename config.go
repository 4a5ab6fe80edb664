package main

import "time"

// Host configuration constants. Simulation tunables live in the config file.
const (
	// surfaceScale is how many screen pixels one surface pixel covers.
	surfaceScale             = 2
	pgoRecordDuration        = 15 * time.Second
	pgoProfilePath           = "default.pgo"
	audioSampleRate          = 48000
	audioPlayerBufferLatency = 80 * time.Millisecond
	pcm16MaxValue            = 32767
)
