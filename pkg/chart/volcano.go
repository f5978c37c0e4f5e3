package chart

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/proteoview/pkg/classify"
	"github.com/vanderheijden86/proteoview/pkg/debug"
	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/scale"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
)

// Point is one plotted row in data coordinates.
type Point struct {
	Index    int             `json:"index"`
	ID       string          `json:"id"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Category model.Category  `json:"-"`
	Class    string          `json:"category"`
	Fields   []tooltip.Field `json:"fields"`
	Link     string          `json:"link"`
}

// Volcano plots effect size against significance. The scatter variant
// shares the type: it has no threshold lines, keeps a fixed marker radius
// and only colours points when Config.Classify is set.
type Volcano struct {
	frame
	kind Kind
	ds   *model.Dataset

	xCol, yCol, idCol string
	classified        bool
	result            classify.Result
	points            []Point

	baseX, baseY scale.Linear
}

// NewVolcano builds a volcano chart over ds. Every configured column must
// exist; rows whose effect or significance is not numeric are not plotted.
func NewVolcano(cfg Config, ds *model.Dataset) (*Volcano, error) {
	cfg.Kind = KindVolcano
	return newPointChart(cfg, ds, true)
}

// NewScatter builds a scatter chart over ds.
func NewScatter(cfg Config, ds *model.Dataset) (*Volcano, error) {
	cfg.Kind = KindScatter
	return newPointChart(cfg, ds, cfg.Classify)
}

func newPointChart(cfg Config, ds *model.Dataset, classified bool) (*Volcano, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cols, err := loader.RequireColumns(ds, append([]string{cfg.XColumn, cfg.YColumn, cfg.IDColumn}, cfg.DetailFields...)...)
	if err != nil {
		return nil, fmt.Errorf("%s chart: %w", cfg.Kind, err)
	}

	v := &Volcano{
		frame:      frame{cfg: cfg},
		kind:       cfg.Kind,
		ds:         ds,
		xCol:       cols[0],
		yCol:       cols[1],
		idCol:      cols[2],
		classified: classified,
	}
	if err := v.newController(0); err != nil {
		return nil, err
	}

	clf := classify.Classifier{Effect: v.xCol, Significance: v.yCol, Thresholds: cfg.Thresholds}
	v.result = clf.Dataset(ds)

	tips := tooltip.Builder{IDColumn: v.idCol, IDLabel: cfg.IDLabel, Details: cols[3:]}
	for i, r := range ds.Rows {
		x, y := r.Float(v.xCol), r.Float(v.yCol)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		p := Point{
			Index:    i,
			ID:       r.Text(v.idCol),
			X:        x,
			Y:        y,
			Category: model.NonSignificant,
			Fields:   tips.Content(r),
		}
		if classified {
			p.Category = v.result.Categories[i]
		}
		p.Class = p.Category.String()
		p.Link = tooltip.RecordURL(cfg.RecordBase, p.ID)
		v.points = append(v.points, p)
	}
	if len(v.points) == 0 {
		return nil, fmt.Errorf("%s chart: columns %q and %q: %w", cfg.Kind, v.xCol, v.yCol, scale.ErrNoFiniteValues)
	}

	xs := make([]float64, len(v.points))
	ys := make([]float64, len(v.points))
	for i, p := range v.points {
		xs[i], ys[i] = p.X, p.Y
	}
	xExt, _ := scale.ExtentOf(xs)
	yExt, _ := scale.ExtentOf(ys)
	v.baseX = scale.Project(xExt.Pad(cfg.Padding), scale.Extent{Min: 0, Max: cfg.InnerWidth()})
	v.baseY = scale.Project(yExt.Pad(cfg.Padding), scale.Extent{Min: cfg.InnerHeight(), Max: 0})

	debug.Log("%s chart: %d of %d rows plotted, counts %v", cfg.Kind, len(v.points), ds.Len(), v.result.Counts)
	return v, nil
}

// Kind returns KindVolcano or KindScatter.
func (v *Volcano) Kind() Kind { return v.kind }

// Dataset returns the source rows.
func (v *Volcano) Dataset() *model.Dataset { return v.ds }

// Columns returns the resolved x, y and id column names.
func (v *Volcano) Columns() (x, y, id string) { return v.xCol, v.yCol, v.idCol }

// Points returns the plotted rows in dataset order.
func (v *Volcano) Points() []Point { return v.points }

// Counts returns the classification tally over all rows.
func (v *Volcano) Counts() classify.Counts { return v.result.Counts }

// Classified reports whether points are coloured by category.
func (v *Volcano) Classified() bool { return v.classified }

// BaseScales returns the unzoomed scales in plot-local pixels.
func (v *Volcano) BaseScales() (x, y scale.Linear) { return v.baseX, v.baseY }

// Scene draws the chart at the current zoom.
func (v *Volcano) Scene() *Scene {
	defer metrics.Timer(metrics.Project)()

	cfg := v.cfg
	s := newScene(cfg)
	x, y := v.ctrl.Scales(v.baseX, v.baseY)
	p := s.Plot

	s.grid(x, y, cfg.XTicks, cfg.YTicks)

	if v.kind == KindVolcano {
		w := v.ctrl.ScreenStrokeWidth(1)
		t := cfg.Thresholds
		for _, fx := range []float64{-t.FoldChange, t.FoldChange} {
			px := p.X0 + x.Map(fx)
			s.Add(Line{X1: px, Y1: p.Y0, X2: px, Y2: p.Y1, Stroke: ColorThreshold, Width: w, Dashed: true, Class: "threshold", Clip: true})
		}
		py := p.Y0 + y.Map(t.Significance)
		s.Add(Line{X1: p.X0, Y1: py, X2: p.X1, Y2: py, Stroke: ColorThreshold, Width: w, Dashed: true, Class: "threshold", Clip: true})
	}

	r := cfg.PointRadius
	if v.kind == KindVolcano {
		r = v.ctrl.ScreenRadius(r)
	}
	for _, pt := range v.points {
		cx, cy := p.X0+x.Map(pt.X), p.Y0+y.Map(pt.Y)
		s.Add(Circle{X: cx, Y: cy, R: r, Fill: pt.Category.Color(), Class: "point " + pt.Class, Clip: true})
		if s.inPlot(cx, cy) {
			s.Hits = append(s.Hits, Hit{Shape: HitCircle, X: cx, Y: cy, R: r, Index: pt.Index, Fields: pt.Fields, Link: pt.Link})
		}
	}

	s.bottomAxis(x, cfg.XTicks, cfg.xLabel(v.xCol))
	s.leftAxis(y, cfg.YTicks, cfg.yLabel(v.yCol))
	if v.classified && !cfg.HideLegend {
		s.legend()
	}
	return s
}
