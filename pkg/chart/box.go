package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/scale"
	"github.com/vanderheijden86/proteoview/pkg/stats"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
)

// BoxMaxZoom bounds zooming on box charts, which only zoom horizontally.
const BoxMaxZoom = 10

// Box draws one horizontal box per row of a wide table: the first column is
// the label and every other numeric cell is a sample.
type Box struct {
	frame
	boxes []stats.Box
	baseX scale.Linear
}

// NewBox summarises each row of ds and keeps the cfg.BoxTop rows with the
// highest medians.
func NewBox(cfg Config, ds *model.Dataset) (*Box, error) {
	cfg.Kind = KindBox
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(ds.Columns) < 2 {
		return nil, fmt.Errorf("box chart: need a label column and at least one sample column, got %d columns", len(ds.Columns))
	}
	label := ds.Columns[0]
	var all []stats.Box
	for _, r := range ds.Rows {
		values := make([]float64, 0, len(ds.Columns)-1)
		for _, col := range ds.Columns[1:] {
			values = append(values, r.Float(col))
		}
		if b, ok := stats.Summarize(r.Text(label), values); ok {
			all = append(all, b)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("box chart: %w", scale.ErrNoFiniteValues)
	}

	b := &Box{frame: frame{cfg: cfg}, boxes: stats.TopByMedian(all, cfg.BoxTop)}
	if err := b.newController(BoxMaxZoom); err != nil {
		return nil, err
	}
	ext := scale.Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, bx := range b.boxes {
		ext = ext.Union(scale.Extent{Min: bx.Min, Max: bx.Max})
	}
	b.baseX = scale.Project(ext.Pad(cfg.Padding), scale.Extent{Min: 0, Max: cfg.InnerWidth()})
	return b, nil
}

// Kind returns KindBox.
func (b *Box) Kind() Kind { return KindBox }

// Boxes returns the summaries in drawing order, highest median first.
func (b *Box) Boxes() []stats.Box { return b.boxes }

// whiskers returns the most extreme samples inside the fences.
func whiskers(bx stats.Box) (lo, hi float64) {
	lo, hi = bx.Median, bx.Median
	for _, v := range bx.Values {
		if v >= bx.LowerFence && v < lo {
			lo = v
		}
		if v <= bx.UpperFence && v > hi {
			hi = v
		}
	}
	return lo, hi
}

// BoxFields returns the hover lines for one summary. The fences are the
// whisker bounds at 1.5 IQR; Min and Max are the sample extremes.
func BoxFields(bx stats.Box) []tooltip.Field {
	f := func(v float64) string { return fmt.Sprintf("%.2f", v) }
	return []tooltip.Field{
		{Label: "Label", Value: bx.Label},
		{Label: "Q1", Value: f(bx.Q1)},
		{Label: "Median", Value: f(bx.Median)},
		{Label: "Q3", Value: f(bx.Q3)},
		{Label: "IQR", Value: f(bx.IQR)},
		{Label: "Lower fence", Value: f(bx.LowerFence)},
		{Label: "Upper fence", Value: f(bx.UpperFence)},
		{Label: "Min", Value: f(bx.Min)},
		{Label: "Max", Value: f(bx.Max)},
		{Label: "Outliers", Value: strconv.Itoa(len(bx.Outliers))},
	}
}

// Scene draws the boxes. Zoom rescales the value axis only.
func (b *Box) Scene() *Scene {
	defer metrics.Timer(metrics.Project)()

	cfg := b.cfg
	s := newScene(cfg)
	x := b.ctrl.Transform().RescaleX(b.baseX)
	p := s.Plot

	for _, v := range x.Ticks(cfg.XTicks) {
		px := p.X0 + x.Map(v)
		s.Add(Line{X1: px, Y1: p.Y0, X2: px, Y2: p.Y1, Stroke: ColorGrid, Width: 1, Class: "grid", Clip: true})
	}

	band := p.Height() / float64(len(b.boxes))
	h := math.Max(band*0.7, 1)
	for i, bx := range b.boxes {
		top := p.Y0 + float64(i)*band + (band-h)/2
		mid := top + h/2
		lo, hi := whiskers(bx)
		q1, q3 := p.X0+x.Map(bx.Q1), p.X0+x.Map(bx.Q3)

		s.Add(
			Line{X1: p.X0 + x.Map(lo), Y1: mid, X2: p.X0 + x.Map(hi), Y2: mid, Stroke: ColorAxis, Width: 1, Class: "whisker", Clip: true},
			Line{X1: p.X0 + x.Map(lo), Y1: top, X2: p.X0 + x.Map(lo), Y2: top + h, Stroke: ColorAxis, Width: 1, Class: "whisker", Clip: true},
			Line{X1: p.X0 + x.Map(hi), Y1: top, X2: p.X0 + x.Map(hi), Y2: top + h, Stroke: ColorAxis, Width: 1, Class: "whisker", Clip: true},
			Rect{X: q1, Y: top, W: q3 - q1, H: h, Fill: ColorBox, Stroke: ColorAxis, StrokeWidth: 1, Class: "box", Clip: true},
			Line{X1: p.X0 + x.Map(bx.Median), Y1: top, X2: p.X0 + x.Map(bx.Median), Y2: top + h, Stroke: ColorAxis, Width: 2, Class: "median", Clip: true},
		)
		for _, o := range bx.Outliers {
			s.Add(Circle{X: p.X0 + x.Map(o), Y: mid, R: 2, Stroke: ColorAxis, StrokeWidth: 1, Class: "outlier", Clip: true})
		}
		s.Add(Text{X: p.X0 - 4, Y: mid + fontSize/3, Text: bx.Label, Anchor: AnchorEnd, Size: fontSize, Color: ColorText, Class: "tick"})

		// Hover targets the visible part of the box.
		hx0, hx1 := math.Max(q1, p.X0), math.Min(q3, p.X1)
		if hx1 > hx0 {
			s.Hits = append(s.Hits, Hit{
				Shape: HitRect, X: hx0, Y: top, W: hx1 - hx0, H: h, Index: i,
				Fields: BoxFields(bx),
				Link:   tooltip.RecordURL(cfg.RecordBase, bx.Label),
			})
		}
	}

	xl := cfg.XLabel
	if xl == "" {
		xl = "Value"
	}
	s.bottomAxis(x, cfg.XTicks, xl)
	s.Add(Line{X1: p.X0, Y1: p.Y0, X2: p.X0, Y2: p.Y1, Stroke: ColorAxis, Width: 1, Class: "axis"})
	return s
}
