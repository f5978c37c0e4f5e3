package ui

import (
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

func testScene() *chart.Scene {
	return &chart.Scene{
		Width:  100,
		Height: 40,
		Plot:   zoom.Rect{X0: 10, Y0: 0, X1: 90, Y1: 30},
	}
}

func TestClipLine(t *testing.T) {
	p := zoom.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		ok             bool
		want           [4]float64
	}{
		{"inside", 1, 1, 9, 9, true, [4]float64{1, 1, 9, 9}},
		{"crosses left", -5, 5, 5, 5, true, [4]float64{0, 5, 5, 5}},
		{"crosses both", -5, 5, 15, 5, true, [4]float64{0, 5, 10, 5}},
		{"outside above", 1, -5, 9, -1, false, [4]float64{}},
		{"vertical outside", 11, 0, 11, 10, false, [4]float64{}},
		{"diagonal corner", -10, -10, 20, 20, true, [4]float64{0, 0, 10, 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x1, y1, x2, y2, ok := clipLine(p, tc.x1, tc.y1, tc.x2, tc.y2)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			for i, v := range [4]float64{x1, y1, x2, y2} {
				if math.Abs(v-tc.want[i]) > 1e-9 {
					t.Errorf("got %v, want %v", [4]float64{x1, y1, x2, y2}, tc.want)
					break
				}
			}
		})
	}
}

func TestRasterize_PointsAndClip(t *testing.T) {
	s := testScene()
	up := model.Up.Color()
	s.Add(
		chart.Circle{X: 50, Y: 15, R: 1, Fill: up, Clip: true},
		// Outside the plot area: dropped.
		chart.Circle{X: 95, Y: 15, R: 1, Fill: up, Clip: true},
	)
	c, vp := Rasterize(s, 50, 10)
	if vp.Cols != 50 || vp.Rows != 10 {
		t.Fatalf("viewport = %+v", vp)
	}
	if !c.IsSet(50, 15) {
		t.Error("point in plot not drawn")
	}
	if c.IsSet(95, 15) {
		t.Error("clipped point was drawn")
	}
}

func TestRasterize_ZoomedMarkerStaysADot(t *testing.T) {
	s := testScene()
	s.Add(chart.Circle{X: 50, Y: 15, R: 10, Fill: model.Up.Color(), Class: "point up", Clip: true})
	c, _ := Rasterize(s, 50, 10)
	if !c.IsSet(50, 15) {
		t.Error("marker centre not drawn")
	}
	if c.IsSet(60, 15) {
		t.Error("marker drawn as an outline")
	}
}

func TestRasterize_SkipsGridAndLegend(t *testing.T) {
	s := testScene()
	s.Add(
		chart.Line{X1: 10, Y1: 10, X2: 90, Y2: 10, Stroke: chart.ColorGrid, Class: "grid", Clip: true},
		chart.Circle{X: 80, Y: 5, R: 5, Fill: model.Up.Color(), Class: "legend"},
		chart.Text{X: 80, Y: 5, Text: "UP", Class: "legend"},
	)
	c, _ := Rasterize(s, 50, 10)
	for _, l := range c.Lines() {
		if strings.TrimSpace(l) != "" {
			t.Fatalf("expected empty canvas, got %q", c.Lines())
		}
	}
}

func TestRasterize_TextAnchors(t *testing.T) {
	s := testScene()
	s.Add(
		chart.Text{X: 50, Y: 22, Text: "mid", Anchor: chart.AnchorMiddle, Size: 4},
		chart.Text{X: 50, Y: 34, Text: "end", Anchor: chart.AnchorEnd, Size: 4},
		chart.Text{X: 5, Y: 10, Text: "rotated", Rotate: -90, Size: 4},
	)
	c, _ := Rasterize(s, 100, 10)
	lines := c.Lines()
	// Cells are 1x4 scene pixels; y-size/2 picks the row.
	if !strings.Contains(lines[5], "mid") || strings.Index(lines[5], "mid") != 49 {
		t.Errorf("middle-anchored text at wrong place: %q", lines[5])
	}
	if strings.Index(lines[8], "end") != 47 {
		t.Errorf("end-anchored text at wrong place: %q", lines[8])
	}
	for _, l := range lines {
		if strings.Contains(l, "rotated") {
			t.Error("rotated text should be skipped")
		}
	}
}

func TestRasterize_VennOutline(t *testing.T) {
	s := testScene()
	s.Add(chart.Circle{X: 50, Y: 15, R: 10, Fill: chart.ColorVennA})
	// 100 cells give two dots per scene pixel horizontally.
	c, _ := Rasterize(s, 100, 10)
	if c.IsSet(100, 15) {
		t.Error("large circles are drawn as outlines")
	}
	right := c.IsSet(120, 15) || c.IsSet(119, 15)
	left := c.IsSet(80, 15) || c.IsSet(79, 15)
	if !right || !left {
		t.Error("outline missing at the left or right extreme")
	}
}

func TestTerminalInk(t *testing.T) {
	if got := terminalInk(chart.ColorAxis); got != (color.RGBA{}) {
		t.Errorf("axis ink = %v, want zero", got)
	}
	vennA := terminalInk(chart.ColorVennA)
	if vennA.A != 0xff || vennA.R != chart.ColorVennA.R {
		t.Errorf("venn ink = %v", vennA)
	}
}

func TestViewport_CellRoundTrip(t *testing.T) {
	vp := Viewport{SceneW: 960, SceneH: 500, Cols: 120, Rows: 25}
	for _, cell := range [][2]int{{0, 0}, {60, 12}, {119, 24}} {
		x, y := vp.Scene(cell[0], cell[1])
		col, row := vp.Cell(x, y)
		if col != cell[0] || row != cell[1] {
			t.Errorf("Cell(Scene(%v)) = (%d, %d)", cell, col, row)
		}
	}
	if vp.CellWidth() != 8 || vp.CellHeight() != 20 {
		t.Errorf("cell size = %vx%v", vp.CellWidth(), vp.CellHeight())
	}
}
