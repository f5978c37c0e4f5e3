package model

import (
	"fmt"
	"image/color"
	"math"
)

// Category is the regulation class of a data point.
type Category int

const (
	NonSignificant Category = iota
	Down
	Up
)

// Categories lists every category in legend order.
var Categories = []Category{Down, NonSignificant, Up}

// String returns the canonical upper-case name.
func (c Category) String() string {
	switch c {
	case Down:
		return "DOWN"
	case Up:
		return "UP"
	case NonSignificant:
		return "NON_SIGNIFICANT"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Label is the short legend text.
func (c Category) Label() string {
	if c == NonSignificant {
		return "Non-SIG"
	}
	return c.String()
}

// IsValid reports whether c is one of the defined categories.
func (c Category) IsValid() bool {
	return c == Down || c == Up || c == NonSignificant
}

// Color is the fill used for points of this category.
func (c Category) Color() color.RGBA {
	switch c {
	case Down:
		return color.RGBA{R: 0x1f, G: 0x4e, B: 0xd8, A: 0xff}
	case Up:
		return color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	default:
		return color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	}
}

// ParseCategory is the inverse of String.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "DOWN":
		return Down, nil
	case "UP":
		return Up, nil
	case "NON_SIGNIFICANT", "Non-SIG":
		return NonSignificant, nil
	}
	return NonSignificant, fmt.Errorf("unknown category %q", s)
}

// Thresholds parameterise classification. Significance is compared against
// the significance column (typically -log10 p); FoldChange is the absolute
// effect-size cutoff applied symmetrically.
type Thresholds struct {
	Significance float64 `yaml:"significance_threshold" json:"significance_threshold"`
	FoldChange   float64 `yaml:"fold_change_threshold" json:"fold_change_threshold"`
}

// DefaultThresholds matches the usual volcano defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Significance: 0.05, FoldChange: 2}
}

// Validate rejects thresholds that cannot produce a meaningful split.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Significance) || math.IsInf(t.Significance, 0) {
		return fmt.Errorf("significance threshold must be finite, got %v", t.Significance)
	}
	if math.IsNaN(t.FoldChange) || math.IsInf(t.FoldChange, 0) {
		return fmt.Errorf("fold change threshold must be finite, got %v", t.FoldChange)
	}
	if t.FoldChange < 0 {
		return fmt.Errorf("fold change threshold must be non-negative, got %v", t.FoldChange)
	}
	return nil
}
