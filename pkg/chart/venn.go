package chart

import (
	"fmt"

	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/venn"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

const vennPadding = 10

// Venn draws a two-set comparison. It does not zoom.
type Venn struct {
	frame
	cmp    venn.Comparison
	sets   []venn.Set
	layout venn.Layout
}

// NewVenn reads a comparison table from ds.
func NewVenn(cfg Config, ds *model.Dataset) (*Venn, error) {
	c, err := venn.ParseComparison(ds)
	if err != nil {
		return nil, err
	}
	return NewVennFromComparison(cfg, c)
}

// NewVennFromComparison lays out an already derived comparison.
func NewVennFromComparison(cfg Config, c venn.Comparison) (*Venn, error) {
	cfg.Kind = KindVenn
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Venn{
		frame:  frame{cfg: cfg},
		cmp:    c,
		sets:   c.Sets(cfg.RecordBase),
		layout: venn.Solve(c, cfg.InnerWidth(), cfg.InnerHeight(), vennPadding),
	}, nil
}

// Kind returns KindVenn.
func (v *Venn) Kind() Kind { return KindVenn }

// Comparison returns the underlying regions.
func (v *Venn) Comparison() venn.Comparison { return v.cmp }

// Sets returns the three regions: unique A, unique B, shared.
func (v *Venn) Sets() []venn.Set { return v.sets }

// Layout returns the circle geometry in plot-local pixels.
func (v *Venn) Layout() venn.Layout { return v.layout }

// Scene draws both circles, their labels and one target per region.
func (v *Venn) Scene() *Scene {
	defer metrics.Timer(metrics.Project)()

	cfg := v.cfg
	s := newScene(cfg)
	ox, oy := s.Plot.X0, s.Plot.Y0
	l := v.layout

	for i, c := range []venn.Circle{l.A, l.B} {
		fill := ColorVennA
		if i == 1 {
			fill = ColorVennB
		}
		s.Add(Circle{X: ox + c.CX, Y: oy + c.CY, R: c.R, Fill: fill, Stroke: ColorAxis, StrokeWidth: 1, Class: "venn"})
	}

	names := []string{v.cmp.NameA, v.cmp.NameB, "Common " + v.cmp.NameA + " " + v.cmp.NameB}
	for i, set := range v.sets {
		region := set.Region
		lx, ly := l.LabelPos(region)
		s.Add(Text{
			X: ox + lx, Y: oy + ly,
			Text: fmt.Sprintf("%s (%d)", names[i], set.Size), Anchor: AnchorMiddle,
			Size: fontSizeAxis, Color: ColorText, Bold: true, Class: "label",
		})
		s.Hits = append(s.Hits, Hit{
			Shape:  HitRegion,
			X:      ox + lx,
			Y:      oy + ly,
			Index:  i,
			Fields: set.Tooltip(),
			Link:   set.Link,
			Contains: func(x, y float64) bool {
				return l.Hit(x-ox, y-oy) == region
			},
		})
	}
	return s
}

// Controller returns nil; Venn diagrams are static.
func (v *Venn) Controller() *zoom.Controller { return nil }
