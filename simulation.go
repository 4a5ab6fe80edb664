package main

import "github.com/tiltwater/tiltwater/fluid"

// liveSimulation is the simulation record the running engine was last
// given. File reloads replace it wholesale, except that a pause toggled from
// the keyboard outlasts them until toggled again.
type liveSimulation struct {
	cfg    fluid.Config
	paused *bool
}

func newLiveSimulation(cfg fluid.Config) liveSimulation {
	return liveSimulation{cfg: cfg.Clone()}
}

// reload adopts a freshly loaded record and returns what the engine should
// run with.
func (s *liveSimulation) reload(cfg fluid.Config) fluid.Config {
	s.cfg = cfg.Clone()
	if s.paused != nil {
		s.cfg[fluid.Paused] = *s.paused
	}
	return s.cfg
}

// togglePause flips PAUSED and returns the updated record.
func (s *liveSimulation) togglePause() fluid.Config {
	paused := !s.cfg.Bool(fluid.Paused, false)
	s.paused = &paused
	s.cfg = s.cfg.Merge(fluid.Config{fluid.Paused: paused})
	return s.cfg
}
