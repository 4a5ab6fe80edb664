package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// startPrompt is the centred panel shown until the simulation runs. Its
// status line is replaced by the denial or failure message when the start
// gesture does not succeed.
type startPrompt struct {
	ui     *ebitenui.UI
	status *widget.Text
	shown  bool
}

func newStartPrompt(title, status string) *startPrompt {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	titleText := widget.NewText(
		widget.TextOpts.Text(title, &face, colornames.White),
		widget.TextOpts.WidgetOpts(center),
	)
	statusText := widget.NewText(
		widget.TextOpts.Text(status, &face, colornames.Lightgray),
		widget.TextOpts.WidgetOpts(center),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)
	panel.AddChild(titleText)
	panel.AddChild(statusText)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &startPrompt{
		ui:     &ebitenui.UI{Container: root},
		status: statusText,
		shown:  true,
	}
}

// update hides the prompt once running and otherwise mirrors status.
func (p *startPrompt) update(status string, running bool) {
	p.shown = !running
	if !p.shown {
		return
	}
	if p.status.Label != status {
		p.status.Label = status
	}
	p.ui.Update()
}

func (p *startPrompt) draw(screen *ebiten.Image) {
	if p.shown {
		p.ui.Draw(screen)
	}
}
