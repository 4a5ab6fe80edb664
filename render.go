package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/tiltwater/tiltwater/fluid"
)

// Draw blits the engine surface, the start prompt and the optional overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	sw, sh := g.surface.Bounds().Dx(), g.surface.Bounds().Dy()
	op.GeoM.Scale(float64(g.width)/float64(sw), float64(g.height)/float64(sh))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.surface, op)

	g.prompt.draw(screen)

	if g.debug {
		ebitenutil.DebugPrint(screen, g.debugText())
	}
}

func (g *Game) debugText() string {
	tps := ebiten.ActualTPS()
	if tps < 0 {
		tps = 0
	}
	grav := g.adapter.Gravity()
	msg := fmt.Sprintf("FPS: %.1f (%.1f TPS)\nState: %s\nSteps: %d (%.2f ms)\nGravity: %+.2f %+.2f\nDropped events: %d",
		ebiten.ActualFPS(), tps, g.adapter.State(), g.adapter.Steps(),
		g.lastStepDuration.Seconds()*1000, grav.X, grav.Y, g.adapter.Dropped())
	if b, ok := g.adapter.Engine().(interface{ Backend() string }); ok {
		msg += "\nBackend: " + b.Backend()
	}
	if s, ok := g.adapter.Engine().(fluid.Sampler); ok {
		msg += fmt.Sprintf("\nCentre: %+.3f", s.CenterSample())
	}
	if g.relay != nil {
		msg += fmt.Sprintf("\nPhones: %d", g.relay.Sessions())
	}
	return msg
}
