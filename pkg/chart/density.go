package chart

import (
	"fmt"

	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/scale"
	"github.com/vanderheijden86/proteoview/pkg/stats"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

// Density draws the estimated distribution of one numeric column.
type Density struct {
	frame
	col    string
	points []stats.DensityPoint

	baseX, baseY scale.Linear
}

// NewDensity estimates the density of cfg.XColumn.
func NewDensity(cfg Config, ds *model.Dataset) (*Density, error) {
	cfg.Kind = KindDensity
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cols, err := loader.RequireColumns(ds, cfg.XColumn)
	if err != nil {
		return nil, fmt.Errorf("density chart: %w", err)
	}
	pts, err := stats.Density(ds.Floats(cols[0]), cfg.Density)
	if err != nil {
		return nil, fmt.Errorf("density chart: column %q: %w", cols[0], err)
	}

	d := &Density{frame: frame{cfg: cfg}, col: cols[0], points: pts}
	if err := d.newController(0); err != nil {
		return nil, err
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	xExt, err := scale.ExtentOf(xs)
	if err != nil {
		return nil, fmt.Errorf("density chart: %w", err)
	}
	yExt, _ := scale.ExtentOf(ys)
	yExt.Min = 0
	if yExt.Max <= 0 {
		yExt.Max = 1
	}
	d.baseX = scale.Project(xExt, scale.Extent{Min: 0, Max: cfg.InnerWidth()})
	d.baseY = scale.Project(yExt.Pad(cfg.Padding), scale.Extent{Min: cfg.InnerHeight(), Max: 0})
	return d, nil
}

// Kind returns KindDensity.
func (d *Density) Kind() Kind { return KindDensity }

// Points returns the density samples ordered by X.
func (d *Density) Points() []stats.DensityPoint { return d.points }

// Scene draws the curve and one hover target per sample.
func (d *Density) Scene() *Scene {
	defer metrics.Timer(metrics.Project)()

	cfg := d.cfg
	s := newScene(cfg)
	x, y := d.ctrl.Scales(d.baseX, d.baseY)
	p := s.Plot

	s.grid(x, y, cfg.XTicks, cfg.YTicks)

	line := Polyline{Stroke: ColorDensity, Width: 1.5, Class: "density", Clip: true}
	for _, pt := range d.points {
		line.Points = append(line.Points, zoom.Point{X: p.X0 + x.Map(pt.X), Y: p.Y0 + y.Map(pt.Y)})
	}
	s.Add(line)

	for i, pt := range d.points {
		cx, cy := line.Points[i].X, line.Points[i].Y
		if !s.inPlot(cx, cy) {
			continue
		}
		s.Hits = append(s.Hits, Hit{
			Shape: HitCircle, X: cx, Y: cy, R: 4, Index: i,
			Fields: []tooltip.Field{
				{Label: "Value", Value: fmt.Sprintf("%.2f", pt.X)},
				{Label: "Density", Value: fmt.Sprintf("%.2f", pt.Y)},
			},
		})
	}

	xl := cfg.XLabel
	if xl == "" {
		xl = "Value"
	}
	yl := cfg.YLabel
	if yl == "" {
		yl = "Density"
	}
	s.bottomAxis(x, cfg.XTicks, xl)
	s.leftAxis(y, cfg.YTicks, yl)
	return s
}
