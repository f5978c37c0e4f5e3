// Package stats holds the descriptive statistics behind the box and density
// charts: quantiles, five-number box summaries and kernel density estimates.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quantile returns the p-quantile of an ascending sample by linear
// interpolation between closest ranks (R type 7). p is clamped to [0,1].
// It returns NaN for an empty sample or NaN p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 || n < 2 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	i := int(math.Floor(h))
	lo, hi := sorted[i], sorted[i+1]
	return lo + (hi-lo)*(h-float64(i))
}

// Finite returns the non-NaN, non-infinite values of xs in a new slice.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Box is the five-number summary of one sample. LowerFence and UpperFence
// are the 1.5×IQR whisker bounds; values beyond them are outliers.
type Box struct {
	Label      string    `json:"label"`
	N          int       `json:"n"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	IQR        float64   `json:"iqr"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	Outliers   []float64 `json:"outliers"`
	Values     []float64 `json:"-"`
}

// Summarize computes the box summary of values, ignoring non-finite
// entries. ok is false when no finite value remains.
func Summarize(label string, values []float64) (Box, bool) {
	xs := Finite(values)
	if len(xs) == 0 {
		return Box{Label: label}, false
	}
	sort.Float64s(xs)

	b := Box{
		Label:  label,
		N:      len(xs),
		Q1:     Quantile(xs, 0.25),
		Median: Quantile(xs, 0.5),
		Q3:     Quantile(xs, 0.75),
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   stat.Mean(xs, nil),
		Values: xs,
	}
	b.IQR = b.Q3 - b.Q1
	b.LowerFence = b.Q1 - 1.5*b.IQR
	b.UpperFence = b.Q3 + 1.5*b.IQR
	for _, x := range xs {
		if x < b.LowerFence || x > b.UpperFence {
			b.Outliers = append(b.Outliers, x)
		}
	}
	return b, true
}

// TopByMedian sorts boxes by median, highest first, and keeps at most n.
// Ties keep their input order. n <= 0 keeps everything.
func TopByMedian(boxes []Box, n int) []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Median > out[j].Median })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
