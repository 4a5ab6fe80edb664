// Command tiltwater renders a fluid surface driven by device tilt, device
// motion and the pointer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tiltwater/tiltwater/adapter"
	"github.com/tiltwater/tiltwater/config"
	"github.com/tiltwater/tiltwater/fluid"
	_ "github.com/tiltwater/tiltwater/fluid/ripple"
	"github.com/tiltwater/tiltwater/logger"
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPathFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := applyFlags(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag)
		if err != nil {
			log.Fatal("cpu profile", zap.Error(err))
		}
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := newGame(ctx, cfg, log)
	if errors.Is(err, adapter.ErrEngineUnavailable) {
		log.Fatal("simulation engine unavailable",
			zap.String("engine", cfg.Engine), zap.Strings("registered", fluid.Engines()), zap.Error(err))
	}
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	if *recordDefaultPGO {
		if err := g.recordProfile(pgoProfilePath, pgoRecordDuration); err != nil {
			log.Fatal("profile recording", zap.Error(err))
		}
		log.Info("recording profile", zap.String("path", pgoProfilePath), zap.Duration("duration", pgoRecordDuration))
	}

	grp, gctx := errgroup.WithContext(ctx)
	if g.relay != nil {
		grp.Go(func() error {
			err := g.relay.ListenAndServe(gctx, cfg.Sensors.RelayAddr)
			if err != nil {
				log.Error("sensor relay stopped", zap.Error(err))
			}
			return err
		})
	}
	if *watchConfigFlag {
		if w, err := config.NewWatcher(*configPathFlag, logger.Component(log, "config")); err != nil {
			log.Warn("config watcher unavailable", zap.Error(err))
		} else {
			grp.Go(func() error { return w.Run(gctx, g.queueReload) })
		}
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	// Display-synchronised: Update runs once per refresh.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("game loop stopped", zap.Error(err))
	}

	cancel()
	if err := grp.Wait(); err != nil {
		log.Warn("background service error", zap.Error(err))
	}
	if err := g.Close(); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}

// applyFlags lets non-empty flags override the config file. Only one CPU
// profile can be recorded at a time.
func applyFlags(cfg *config.File) error {
	if *recordDefaultPGO && *cpuProfileFlag != "" {
		return errors.New("-cpuprofile and -record-default-pgo both record a CPU profile; pass one")
	}
	if *engineFlag != "" {
		cfg.Engine = *engineFlag
	}
	if *sensorsFlag != "" {
		cfg.Sensors.Source = *sensorsFlag
	}
	if *relayAddrFlag != "" {
		cfg.Sensors.RelayAddr = *relayAddrFlag
	}
	if *recordDefaultPGO {
		cfg.Sensors.Source = config.SourceGamepad
	}
	return nil
}
