package ui

import (
	"image/color"
	"math"
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

// chrome colours are drawn in the theme's axis colour instead of their
// light-background values.
var chrome = map[color.RGBA]bool{
	chart.ColorAxis:      true,
	chart.ColorText:      true,
	chart.ColorThreshold: true,
	chart.ColorGrid:      true,
}

func terminalInk(c color.RGBA) color.RGBA {
	if chrome[c] {
		return color.RGBA{}
	}
	c.A = 0xff
	return c
}

// Viewport maps between scene pixels and canvas dots and cells.
type Viewport struct {
	SceneW, SceneH float64
	Cols, Rows     int
}

func (v Viewport) dotsX(x float64) int {
	return int(math.Floor(x / v.SceneW * float64(v.Cols*2)))
}

func (v Viewport) dotsY(y float64) int {
	return int(math.Floor(y / v.SceneH * float64(v.Rows*4)))
}

// Cell returns the cell holding scene point (x, y).
func (v Viewport) Cell(x, y float64) (col, row int) {
	return int(math.Floor(x / v.SceneW * float64(v.Cols))), int(math.Floor(y / v.SceneH * float64(v.Rows)))
}

// Scene returns the scene point at the centre of cell (col, row).
func (v Viewport) Scene(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * v.SceneW / float64(v.Cols), (float64(row) + 0.5) * v.SceneH / float64(v.Rows)
}

// CellWidth is the width of one cell in scene pixels.
func (v Viewport) CellWidth() float64 { return v.SceneW / float64(v.Cols) }

// CellHeight is the height of one cell in scene pixels.
func (v Viewport) CellHeight() float64 { return v.SceneH / float64(v.Rows) }

// Rasterize draws s onto a new canvas of cols x rows cells. Gridlines and
// the in-chart legend are skipped: the status bar carries the legend and
// gridlines swamp a braille plot. Rotated text is dropped.
func Rasterize(s *chart.Scene, cols, rows int) (*Canvas, Viewport) {
	c := NewCanvas(cols, rows)
	vp := Viewport{SceneW: s.Width, SceneH: s.Height, Cols: c.Cols(), Rows: c.Rows()}
	r := rasterizer{c: c, vp: vp, plot: s.Plot}

	var texts []chart.Text
	for _, it := range s.Items {
		switch it := it.(type) {
		case chart.Line:
			if it.Class == "grid" {
				continue
			}
			r.line(it.X1, it.Y1, it.X2, it.Y2, terminalInk(it.Stroke), it.Dashed, it.Clip)
		case chart.Circle:
			if it.Class == "legend" {
				continue
			}
			ink := it.Fill
			if ink.A == 0 {
				ink = it.Stroke
			}
			r.circle(it, terminalInk(ink))
		case chart.Rect:
			if it.Class == "legend" {
				continue
			}
			r.rect(it)
		case chart.Polyline:
			r.polyline(it)
		case chart.Text:
			if it.Class == "legend" || it.Rotate != 0 {
				continue
			}
			texts = append(texts, it)
		}
	}
	// Text goes on top of every dot.
	for _, t := range texts {
		r.text(t)
	}
	return c, vp
}

type rasterizer struct {
	c    *Canvas
	vp   Viewport
	plot zoom.Rect
}

func (r rasterizer) line(x1, y1, x2, y2 float64, ink color.RGBA, dashed, clip bool) {
	if clip {
		var ok bool
		if x1, y1, x2, y2, ok = clipLine(r.plot, x1, y1, x2, y2); !ok {
			return
		}
	}
	r.c.Line(r.vp.dotsX(x1), r.vp.dotsY(y1), r.vp.dotsX(x2), r.vp.dotsY(y2), ink, dashed)
}

// circle draws markers as a single dot and larger circles (Venn sets) as
// outlines. Data points stay one dot at any zoom.
func (r rasterizer) circle(it chart.Circle, ink color.RGBA) {
	if it.Clip && !inRect(r.plot, it.X, it.Y) {
		return
	}
	rx := it.R / r.vp.SceneW * float64(r.vp.Cols*2)
	if rx < 2 || strings.HasPrefix(it.Class, "point") {
		r.c.Set(r.vp.dotsX(it.X), r.vp.dotsY(it.Y), ink)
		return
	}
	steps := int(math.Max(24, 4*rx))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		r.c.Set(r.vp.dotsX(it.X+it.R*math.Cos(a)), r.vp.dotsY(it.Y+it.R*math.Sin(a)), ink)
	}
}

func (r rasterizer) rect(it chart.Rect) {
	ink := it.Stroke
	if ink.A == 0 {
		ink = it.Fill
	}
	ink = terminalInk(ink)
	x0, y0, x1, y1 := it.X, it.Y, it.X+it.W, it.Y+it.H
	r.line(x0, y0, x1, y0, ink, false, it.Clip)
	r.line(x1, y0, x1, y1, ink, false, it.Clip)
	r.line(x1, y1, x0, y1, ink, false, it.Clip)
	r.line(x0, y1, x0, y0, ink, false, it.Clip)
}

func (r rasterizer) polyline(it chart.Polyline) {
	ink := terminalInk(it.Stroke)
	pts := it.Points
	for i := 1; i < len(pts); i++ {
		r.line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, ink, false, it.Clip)
	}
	if it.Closed && len(pts) > 2 {
		r.line(pts[len(pts)-1].X, pts[len(pts)-1].Y, pts[0].X, pts[0].Y, ink, false, it.Clip)
	}
}

func (r rasterizer) text(t chart.Text) {
	s := strings.TrimSpace(t.Text)
	if s == "" {
		return
	}
	col, row := r.vp.Cell(t.X, t.Y-t.Size/2)
	switch t.Anchor {
	case chart.AnchorMiddle:
		col -= len([]rune(s)) / 2
	case chart.AnchorEnd:
		col -= len([]rune(s))
	}
	r.c.Text(col, row, s, terminalInk(t.Color))
}

func inRect(p zoom.Rect, x, y float64) bool {
	return x >= p.X0 && x <= p.X1 && y >= p.Y0 && y <= p.Y1
}

// clipLine clips a segment to p (Liang-Barsky). ok is false when nothing
// of the segment is inside.
func clipLine(p zoom.Rect, x1, y1, x2, y2 float64) (cx1, cy1, cx2, cy2 float64, ok bool) {
	dx, dy := x2-x1, y2-y1
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x1 - p.X0},
		{dx, p.X1 - x1},
		{-dy, y1 - p.Y0},
		{dy, p.Y1 - y1},
	}
	for _, e := range edges {
		pe, qe := e[0], e[1]
		if pe == 0 {
			if qe < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := qe / pe
		if pe < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x1 + t0*dx, y1 + t0*dy, x1 + t1*dx, y1 + t1*dy, true
}
