package main

import "flag"

// Command-line flags. Empty string flags leave the config file value in
// place.
var (
	// configPathFlag names the YAML configuration file.
	configPathFlag = flag.String("config", "tiltwater.yaml", "path to the YAML configuration file")

	// engineFlag selects a registered simulation engine.
	engineFlag = flag.String("engine", "", "simulation engine to construct (overrides config)")

	// sensorsFlag selects the orientation and motion source.
	sensorsFlag = flag.String("sensors", "", "sensor source: gamepad, relay or browser (overrides config)")

	relayAddrFlag = flag.String("relay-addr", "", "listen address of the phone sensor relay (overrides config)")

	// debugFlag enables the FPS and adapter overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and adapter state overlay")

	// enableAudioFlag toggles audio output driven by the surface centre.
	enableAudioFlag = flag.Bool("enable-audio", false, "play the surface height at the centre as audio")

	watchConfigFlag = flag.Bool("watch-config", true, "re-apply the simulation block when the config file changes")

	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")

	// recordDefaultPGO drives the simulation with scripted input to produce
	// default.pgo.
	recordDefaultPGO = flag.Bool("record-default-pgo", false, "wander for 15s while capturing default.pgo")
)
