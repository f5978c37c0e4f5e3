// Package classify assigns regulation categories to data points.
//
// One rule serves every chart. A point is significant only when its
// significance value is strictly above the threshold, and it is regulated
// only when its effect size is at or beyond ±FoldChange:
//
//	significance <= t.Significance  -> NonSignificant
//	effect <= -t.FoldChange         -> Down
//	effect >=  t.FoldChange         -> Up
//	otherwise                       -> NonSignificant
//
// NaN inputs fail every comparison and therefore classify as NonSignificant.
package classify

import (
	"math"

	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
)

// Classify is a pure function of its arguments.
func Classify(effect, significance float64, t model.Thresholds) model.Category {
	if !(significance > t.Significance) {
		return model.NonSignificant
	}
	switch {
	case effect <= -t.FoldChange:
		return model.Down
	case effect >= t.FoldChange:
		return model.Up
	default:
		return model.NonSignificant
	}
}

// Classifier binds the rule to named columns of a dataset.
type Classifier struct {
	Effect       string
	Significance string
	Thresholds   model.Thresholds
}

// Row classifies a single row. Missing or non-numeric cells read as NaN.
func (c Classifier) Row(r model.Row) model.Category {
	return Classify(r.Float(c.Effect), r.Float(c.Significance), c.Thresholds)
}

// Counts tallies rows per category.
type Counts map[model.Category]int

// Total sums all categories.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Result holds per-row categories aligned with the dataset rows.
type Result struct {
	Categories []model.Category
	Counts     Counts
	// Skipped counts rows whose effect or significance was not numeric.
	Skipped int
}

// Dataset classifies every row of ds.
func (c Classifier) Dataset(ds *model.Dataset) Result {
	defer metrics.Timer(metrics.Classify)()

	res := Result{
		Categories: make([]model.Category, ds.Len()),
		Counts:     Counts{model.Down: 0, model.NonSignificant: 0, model.Up: 0},
	}
	for i, r := range ds.Rows {
		e, s := r.Float(c.Effect), r.Float(c.Significance)
		if math.IsNaN(e) || math.IsNaN(s) {
			res.Skipped++
		}
		cat := Classify(e, s, c.Thresholds)
		res.Categories[i] = cat
		res.Counts[cat]++
	}
	return res
}
