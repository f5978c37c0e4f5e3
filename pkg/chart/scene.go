package chart

import (
	"image/color"
	"math"

	"github.com/vanderheijden86/proteoview/pkg/tooltip"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

// Anchor is the horizontal alignment of a text item.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Item is one drawing primitive. Coordinates are absolute scene pixels.
type Item interface {
	item()
}

// Circle is a filled and/or stroked circle.
type Circle struct {
	X, Y, R     float64
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
	Class       string
	Clip        bool
}

// Line is a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         color.RGBA
	Width          float64
	Dashed         bool
	Class          string
	Clip           bool
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H  float64
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
	Class       string
	Clip        bool
}

// Text is a single line of text. Rotate is in degrees around (X, Y).
type Text struct {
	X, Y   float64
	Text   string
	Anchor Anchor
	Size   float64
	Rotate float64
	Color  color.RGBA
	Bold   bool
	Class  string
}

// Polyline is an open or closed path through points.
type Polyline struct {
	Points []zoom.Point
	Stroke color.RGBA
	Width  float64
	Fill   color.RGBA
	Closed bool
	Class  string
	Clip   bool
}

func (Circle) item() {}
func (Line) item() {}
func (Rect) item() {}
func (Text) item() {}
func (Polyline) item() {}

// HitShape is the interactive area of a target.
type HitShape int

const (
	HitCircle HitShape = iota
	HitRect
	HitRegion
)

// Hit is an interactive target: hovering shows Fields, clicking opens Link.
type Hit struct {
	Shape  HitShape
	X, Y   float64 // centre for circles, top-left for rects, label for regions
	R      float64
	W, H   float64
	Index  int // row, box or region index in the chart's own data
	Fields []tooltip.Field
	Link   string
	// Contains decides membership for HitRegion targets.
	Contains func(x, y float64) bool
}

// Anchor is where a tooltip for h points: the centre of a circle or rect,
// the label position of a region.
func (h Hit) Anchor() (x, y float64) {
	if h.Shape == HitRect {
		return h.X + h.W/2, h.Y + h.H/2
	}
	return h.X, h.Y
}

func (h Hit) contains(x, y float64) bool {
	switch h.Shape {
	case HitRegion:
		return h.Contains != nil && h.Contains(x, y)
	case HitRect:
		return x >= h.X && x <= h.X+h.W && y >= h.Y && y <= h.Y+h.H
	default:
		dx, dy := x-h.X, y-h.Y
		return dx*dx+dy*dy <= h.R*h.R
	}
}

// Scene is a complete, backend-neutral drawing of one chart.
type Scene struct {
	Title  string
	Width  float64
	Height float64
	// Plot is the clip rectangle for items with Clip set.
	Plot       zoom.Rect
	Background color.RGBA
	Items      []Item
	Hits       []Hit
}

// Add appends items.
func (s *Scene) Add(items ...Item) {
	s.Items = append(s.Items, items...)
}

func (s *Scene) inPlot(x, y float64) bool {
	return x >= s.Plot.X0 && x <= s.Plot.X1 && y >= s.Plot.Y0 && y <= s.Plot.Y1
}

// HitTest returns the index into Hits of the target under (x, y), or -1.
// Circles match within their radius plus slop pixels and only inside the
// plot area; the nearest centre wins. Rects and regions match exactly.
// Later targets win ties, so the top-most item is preferred.
func (s *Scene) HitTest(x, y, slop float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, h := range s.Hits {
		var d float64
		switch h.Shape {
		case HitCircle:
			if !s.inPlot(x, y) {
				continue
			}
			d = math.Hypot(x-h.X, y-h.Y)
			if d > h.R+slop {
				continue
			}
		default:
			if !h.contains(x, y) {
				continue
			}
		}
		if d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
