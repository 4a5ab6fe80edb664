package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tiltwater/tiltwater/adapter"
)

// startGesture reports a click, a tap, or Enter/Space this frame.
func startGesture() bool {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return true
	}
	if len(inpututil.AppendJustPressedTouchIDs(nil)) > 0 {
		return true
	}
	return inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace)
}

// pointerTracker turns cursor and touch positions into pointer-move events
// carrying the per-frame movement.
type pointerTracker struct {
	cursorX, cursorY int
	cursorSeen       bool

	touchIDs []ebiten.TouchID
	touches  map[ebiten.TouchID][2]int
	events   []adapter.PointerEvent
}

// poll returns the pointer moves since the previous frame. The returned
// slice is reused by the next call.
func (p *pointerTracker) poll() []adapter.PointerEvent {
	p.events = p.events[:0]

	x, y := ebiten.CursorPosition()
	if p.cursorSeen && (x != p.cursorX || y != p.cursorY) {
		p.events = append(p.events, pointerMove(x, y, x-p.cursorX, y-p.cursorY))
	}
	p.cursorX, p.cursorY, p.cursorSeen = x, y, true

	if p.touches == nil {
		p.touches = make(map[ebiten.TouchID][2]int)
	}
	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	live := make(map[ebiten.TouchID]struct{}, len(p.touchIDs))
	for _, id := range p.touchIDs {
		live[id] = struct{}{}
		tx, ty := ebiten.TouchPosition(id)
		if prev, ok := p.touches[id]; ok && (tx != prev[0] || ty != prev[1]) {
			p.events = append(p.events, pointerMove(tx, ty, tx-prev[0], ty-prev[1]))
		}
		p.touches[id] = [2]int{tx, ty}
	}
	for id := range p.touches {
		if _, ok := live[id]; !ok {
			delete(p.touches, id)
		}
	}
	return p.events
}

func pointerMove(x, y, dx, dy int) adapter.PointerEvent {
	return adapter.PointerEvent{
		ClientX:   float64(x),
		ClientY:   float64(y),
		MovementX: float64(dx),
		MovementY: float64(dy),
	}
}

// handleKeys processes the debug and pause hotkeys.
func (g *Game) handleKeys() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.togglePause()
	}
	return nil
}
