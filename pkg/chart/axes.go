package chart

import (
	"image/color"

	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/scale"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

// Palette.
var (
	ColorBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ColorAxis       = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xff}
	ColorGrid       = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	ColorThreshold  = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	ColorText       = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	ColorDensity    = color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}
	ColorBox        = color.RGBA{R: 0x69, G: 0xb3, B: 0xa2, A: 0xff}
	ColorHighlight  = color.RGBA{R: 0xff, G: 0x99, B: 0x00, A: 0xff}
	ColorVennA      = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x80}
	ColorVennB      = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0x80}
)

const (
	tickSize     = 6
	fontSize     = 11
	fontSizeAxis = 12
)

// plotRect returns the plot area in scene coordinates.
func plotRect(cfg Config) zoom.Rect {
	return zoom.Rect{
		X0: cfg.Margin.Left,
		Y0: cfg.Margin.Top,
		X1: cfg.Width - cfg.Margin.Right,
		Y1: cfg.Height - cfg.Margin.Bottom,
	}
}

// newScene starts a scene with background and plot rect set.
func newScene(cfg Config) *Scene {
	return &Scene{
		Title:      cfg.Title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Plot:       plotRect(cfg),
		Background: ColorBackground,
	}
}

// grid draws light gridlines at the tick positions of both scales.
func (s *Scene) grid(x, y scale.Linear, xt, yt int) {
	p := s.Plot
	for _, v := range x.Ticks(xt) {
		px := p.X0 + x.Map(v)
		s.Add(Line{X1: px, Y1: p.Y0, X2: px, Y2: p.Y1, Stroke: ColorGrid, Width: 1, Class: "grid", Clip: true})
	}
	for _, v := range y.Ticks(yt) {
		py := p.Y0 + y.Map(v)
		s.Add(Line{X1: p.X0, Y1: py, X2: p.X1, Y2: py, Stroke: ColorGrid, Width: 1, Class: "grid", Clip: true})
	}
}

// bottomAxis draws the x axis along the bottom edge of the plot area.
func (s *Scene) bottomAxis(x scale.Linear, n int, label string) {
	p := s.Plot
	s.Add(Line{X1: p.X0, Y1: p.Y1, X2: p.X1, Y2: p.Y1, Stroke: ColorAxis, Width: 1, Class: "axis"})
	ticks := x.Ticks(n)
	for _, v := range ticks {
		px := p.X0 + x.Map(v)
		if px < p.X0-0.5 || px > p.X1+0.5 {
			continue
		}
		s.Add(
			Line{X1: px, Y1: p.Y1, X2: px, Y2: p.Y1 + tickSize, Stroke: ColorAxis, Width: 1, Class: "tick"},
			Text{X: px, Y: p.Y1 + tickSize + fontSize + 1, Text: scale.TickLabel(v, ticks), Anchor: AnchorMiddle, Size: fontSize, Color: ColorText, Class: "tick"},
		)
	}
	if label != "" {
		s.Add(Text{
			X: (p.X0 + p.X1) / 2, Y: s.Height - 6,
			Text: label, Anchor: AnchorMiddle, Size: fontSizeAxis, Color: ColorText, Bold: true, Class: "label",
		})
	}
}

// leftAxis draws the y axis along the left edge of the plot area.
func (s *Scene) leftAxis(y scale.Linear, n int, label string) {
	p := s.Plot
	s.Add(Line{X1: p.X0, Y1: p.Y0, X2: p.X0, Y2: p.Y1, Stroke: ColorAxis, Width: 1, Class: "axis"})
	ticks := y.Ticks(n)
	for _, v := range ticks {
		py := p.Y0 + y.Map(v)
		if py < p.Y0-0.5 || py > p.Y1+0.5 {
			continue
		}
		s.Add(
			Line{X1: p.X0 - tickSize, Y1: py, X2: p.X0, Y2: py, Stroke: ColorAxis, Width: 1, Class: "tick"},
			Text{X: p.X0 - tickSize - 2, Y: py + fontSize/3, Text: scale.TickLabel(v, ticks), Anchor: AnchorEnd, Size: fontSize, Color: ColorText, Class: "tick"},
		)
	}
	if label != "" {
		s.Add(Text{
			X: 14, Y: (p.Y0 + p.Y1) / 2,
			Text: label, Anchor: AnchorMiddle, Size: fontSizeAxis, Rotate: -90, Color: ColorText, Bold: true, Class: "label",
		})
	}
}

// legend draws the category key in the top-right corner.
func (s *Scene) legend() {
	x := s.Plot.X1 - 110
	y := s.Plot.Y0 + 12
	s.Add(Rect{X: x - 12, Y: y - 12, W: 112, H: 66, Fill: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xd8}, Stroke: ColorGrid, StrokeWidth: 1, Class: "legend"})
	for i, c := range model.Categories {
		cy := y + float64(i)*20
		s.Add(
			Circle{X: x, Y: cy, R: 5, Fill: c.Color(), Class: "legend"},
			Text{X: x + 10, Y: cy + 4, Text: c.Label(), Size: fontSize, Color: ColorText, Class: "legend"},
		)
	}
}
