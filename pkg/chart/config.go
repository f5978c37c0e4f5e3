// Package chart turns classified, projected datasets into backend-neutral
// scenes. Each chart is built once from an immutable Config and a dataset;
// interaction only changes its zoom controller, and Scene() redraws from
// that state.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/stats"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
)

// Kind names a chart type.
type Kind string

const (
	KindVolcano Kind = "volcano"
	KindScatter Kind = "scatter"
	KindDensity Kind = "density"
	KindBox     Kind = "box"
	KindVenn    Kind = "venn"
)

// Kinds lists every supported chart kind.
var Kinds = []Kind{KindVolcano, KindScatter, KindDensity, KindBox, KindVenn}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q", s)
}

// Margin is the space around the plot area, in pixels.
type Margin struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// Config describes one chart. It is validated once by the constructors
// and never changed afterwards.
type Config struct {
	Kind  Kind   `yaml:"kind" json:"kind"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Column references: a header name or "#N" for the N-th column.
	XColumn      string   `yaml:"x_column" json:"x_column"`
	YColumn      string   `yaml:"y_column" json:"y_column"`
	IDColumn     string   `yaml:"id_column" json:"id_column"`
	IDLabel      string   `yaml:"id_label,omitempty" json:"id_label,omitempty"`
	DetailFields []string `yaml:"detail_fields,omitempty" json:"detail_fields,omitempty"`
	XLabel       string   `yaml:"x_label,omitempty" json:"x_label,omitempty"`
	YLabel       string   `yaml:"y_label,omitempty" json:"y_label,omitempty"`

	Thresholds model.Thresholds `yaml:",inline" json:"thresholds"`

	// Classify colours scatter points by the threshold rule. Volcano
	// charts always classify.
	Classify bool `yaml:"classify,omitempty" json:"classify,omitempty"`

	Width       float64 `yaml:"width" json:"width"`
	Height      float64 `yaml:"height" json:"height"`
	Margin      Margin  `yaml:"margin" json:"margin"`
	Padding     float64 `yaml:"padding" json:"padding"`
	PointRadius float64 `yaml:"point_radius" json:"point_radius"`
	XTicks      int     `yaml:"x_ticks" json:"x_ticks"`
	YTicks      int     `yaml:"y_ticks" json:"y_ticks"`
	MinZoom     float64 `yaml:"min_zoom" json:"min_zoom"`
	MaxZoom     float64 `yaml:"max_zoom" json:"max_zoom"`
	HideLegend  bool    `yaml:"hide_legend,omitempty" json:"hide_legend,omitempty"`

	RecordBase string `yaml:"record_base" json:"record_base"`

	Density stats.DensityOptions `yaml:"density" json:"density"`
	// BoxTop limits box charts to the rows with the highest medians.
	BoxTop int `yaml:"box_top" json:"box_top"`
}

// DefaultConfig returns a volcano configuration with the usual layout.
func DefaultConfig() Config {
	return Config{
		Kind:        KindVolcano,
		XColumn:     "log2FoldChange",
		YColumn:     "-log10(p)",
		IDColumn:    "#0",
		Thresholds:  model.DefaultThresholds(),
		Width:       960,
		Height:      500,
		Margin:      Margin{Top: 20, Right: 20, Bottom: 40, Left: 50},
		Padding:     0.1,
		PointRadius: 3,
		XTicks:      8,
		YTicks:      6,
		MinZoom:     1,
		MaxZoom:     2000,
		RecordBase:  tooltip.DefaultRecordBase,
		Density:     stats.DensityOptions{Kernel: stats.Epanechnikov, Bandwidth: stats.DefaultBandwidth, Points: stats.DefaultPoints},
		BoxTop:      30,
	}
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid chart config")

// Validate checks the fields the chart kind depends on.
func (c Config) Validate() error {
	var problems []string
	if _, err := ParseKind(string(c.Kind)); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Width <= 0 || c.Height <= 0 {
		problems = append(problems, fmt.Sprintf("size must be positive, got %vx%v", c.Width, c.Height))
	}
	if c.InnerWidth() <= 0 || c.InnerHeight() <= 0 {
		problems = append(problems, "margins leave no room for the plot area")
	}
	if c.Padding < 0 {
		problems = append(problems, "padding must not be negative")
	}
	if c.PointRadius <= 0 {
		problems = append(problems, "point radius must be positive")
	}
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		problems = append(problems, fmt.Sprintf("invalid zoom extent [%v, %v]", c.MinZoom, c.MaxZoom))
	}
	switch c.Kind {
	case KindVolcano, KindScatter:
		if c.XColumn == "" || c.YColumn == "" {
			problems = append(problems, "x_column and y_column are required")
		}
		if c.IDColumn == "" {
			problems = append(problems, "id_column is required")
		}
		if err := c.Thresholds.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	case KindDensity:
		if c.XColumn == "" {
			problems = append(problems, "x_column is required")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// InnerWidth is the plot area width.
func (c Config) InnerWidth() float64 { return c.Width - c.Margin.Left - c.Margin.Right }

// InnerHeight is the plot area height.
func (c Config) InnerHeight() float64 { return c.Height - c.Margin.Top - c.Margin.Bottom }

func (c Config) xLabel(col string) string {
	if c.XLabel != "" {
		return c.XLabel
	}
	return col
}

func (c Config) yLabel(col string) string {
	if c.YLabel != "" {
		return c.YLabel
	}
	return col
}
