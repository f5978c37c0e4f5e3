package chart

import (
	"fmt"

	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

// Chart is a built chart. Scene redraws from the current zoom state, so it
// must be called again after every gesture.
type Chart interface {
	Kind() Kind
	Config() Config
	// Controller is nil for charts that do not zoom.
	Controller() *zoom.Controller
	Scene() *Scene
}

// Build constructs the chart named by cfg.Kind.
func Build(cfg Config, ds *model.Dataset) (Chart, error) {
	switch cfg.Kind {
	case KindVolcano:
		return NewVolcano(cfg, ds)
	case KindScatter:
		return NewScatter(cfg, ds)
	case KindDensity:
		return NewDensity(cfg, ds)
	case KindBox:
		return NewBox(cfg, ds)
	case KindVenn:
		return NewVenn(cfg, ds)
	default:
		return nil, fmt.Errorf("%w: unknown chart kind %q", ErrInvalidConfig, cfg.Kind)
	}
}

// frame holds what every chart kind shares.
type frame struct {
	cfg  Config
	ctrl *zoom.Controller
}

func (f *frame) Config() Config               { return f.cfg }
func (f *frame) Controller() *zoom.Controller { return f.ctrl }

// newController builds a controller over the plot area with the configured
// scale extent. maxZoom overrides cfg.MaxZoom when positive.
func (f *frame) newController(maxZoom float64) error {
	maxK := f.cfg.MaxZoom
	if maxZoom > 0 {
		maxK = maxZoom
	}
	ctrl, err := zoom.New(zoom.Options{
		Viewport: zoom.Rect{X1: f.cfg.InnerWidth(), Y1: f.cfg.InnerHeight()},
		MinScale: f.cfg.MinZoom,
		MaxScale: maxK,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	f.ctrl = ctrl
	return nil
}

// PlotPoint converts scene coordinates into the plot-local coordinates the
// zoom controller works in.
func PlotPoint(c Chart, x, y float64) zoom.Point {
	m := c.Config().Margin
	return zoom.Point{X: x - m.Left, Y: y - m.Top}
}
