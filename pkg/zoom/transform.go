// Package zoom implements the pan/zoom state machine of an interactive chart.
//
// A Transform is the affine view transform (uniform scale K, then
// translation X,Y) applied to the plot area. A Controller owns exactly one
// Transform, mutates it in response to gestures while keeping it inside the
// configured scale and translate extents, and animates it back to identity
// on reset. Base scales are never modified; RescaleX/RescaleY derive the
// zoomed domains from them.
package zoom

import (
	"math"
	"strconv"

	"github.com/vanderheijden86/proteoview/pkg/scale"
)

// Point is a pixel position in plot-area coordinates.
type Point struct {
	X, Y float64
}

// Transform maps a point p to p*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform that leaves every point in place.
var Identity = Transform{K: 1}

// IsIdentity reports whether t equals Identity exactly.
func (t Transform) IsIdentity() bool {
	return t == Identity
}

// Apply transforms a point.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// ApplyX transforms an x coordinate.
func (t Transform) ApplyX(x float64) float64 { return x*t.K + t.X }

// ApplyY transforms a y coordinate.
func (t Transform) ApplyY(y float64) float64 { return y*t.K + t.Y }

// Invert is the inverse of Apply.
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// InvertX is the inverse of ApplyX.
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }

// InvertY is the inverse of ApplyY.
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

// Scale multiplies K, keeping the translation.
func (t Transform) Scale(k float64) Transform {
	if k == 1 {
		return t
	}
	return Transform{K: t.K * k, X: t.X, Y: t.Y}
}

// Translate moves by (x, y) in the transform's own (scaled) units.
func (t Transform) Translate(x, y float64) Transform {
	if x == 0 && y == 0 {
		return t
	}
	return Transform{K: t.K, X: t.X + t.K*x, Y: t.Y + t.K*y}
}

// RescaleX returns s with the domain visible through t. The range is kept.
func (t Transform) RescaleX(s scale.Linear) scale.Linear {
	return s.WithDomain(scale.Extent{
		Min: s.Invert(t.InvertX(s.Range.Min)),
		Max: s.Invert(t.InvertX(s.Range.Max)),
	})
}

// RescaleY is RescaleX for the vertical axis.
func (t Transform) RescaleY(s scale.Linear) scale.Linear {
	return s.WithDomain(scale.Extent{
		Min: s.Invert(t.InvertY(s.Range.Min)),
		Max: s.Invert(t.InvertY(s.Range.Max)),
	})
}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return "translate(" + ftoa(t.X) + "," + ftoa(t.Y) + ") scale(" + ftoa(t.K) + ")"
}

func ftoa(f float64) string {
	if f == 0 || math.Abs(f) < 1e-12 {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
