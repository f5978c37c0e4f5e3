package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/classify"
	"github.com/vanderheijden86/proteoview/pkg/model"
)

// Side is one dataset in a comparison together with the columns and
// thresholds used to classify it.
type Side struct {
	Name       string
	Dataset    *model.Dataset
	IDColumn   string
	Classifier classify.Classifier
}

// SourceDiff represents differences between two classified datasets.
type SourceDiff struct {
	SourceA string
	SourceB string
	// MissingInA contains identifiers present in B but not in A
	MissingInA []string
	// MissingInB contains identifiers present in A but not in B
	MissingInB []string
	// CategoryMismatch lists identifiers classified differently
	CategoryMismatch []CategoryDifference
	CountA           int
	CountB           int
	// Truncated is set when MaxDifferences cut the lists short.
	Truncated bool
}

// CategoryDifference is a category mismatch for a single identifier.
type CategoryDifference struct {
	ID        string         `json:"id"`
	CategoryA model.Category `json:"-"`
	CategoryB model.Category `json:"-"`
	A         string         `json:"category_a"`
	B         string         `json:"category_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.CategoryMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Classifications match (%d proteins each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Differences between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}
	writeIDs(&sb, d.MissingInA, fmt.Sprintf("in %s but not %s", d.SourceB, d.SourceA))
	writeIDs(&sb, d.MissingInB, fmt.Sprintf("in %s but not %s", d.SourceA, d.SourceB))
	if len(d.CategoryMismatch) > 0 {
		fmt.Fprintf(&sb, "  - %d proteins classified differently\n", len(d.CategoryMismatch))
		if len(d.CategoryMismatch) <= 5 {
			for _, m := range d.CategoryMismatch {
				fmt.Fprintf(&sb, "    - %s: %s vs %s\n", m.ID, m.A, m.B)
			}
		}
	}
	if d.Truncated {
		sb.WriteString("  (list truncated)\n")
	}
	return sb.String()
}

func writeIDs(sb *strings.Builder, ids []string, where string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(sb, "  - %d proteins %s\n", len(ids), where)
	if len(ids) <= 5 {
		for _, id := range ids {
			fmt.Fprintf(sb, "    - %s\n", id)
		}
	}
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// MaxDifferences limits each list (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{MaxDifferences: 100}
}

// DetectInconsistencies classifies both sides and reports identifiers that
// are missing on one side or land in a different category. Rows with an
// empty identifier are ignored; for duplicate identifiers the first row
// wins. Lists are sorted by identifier.
func DetectInconsistencies(a, b Side, opts DiffOptions) SourceDiff {
	diff := SourceDiff{SourceA: a.Name, SourceB: b.Name}

	catsA := categoriesByID(a)
	catsB := categoriesByID(b)
	diff.CountA, diff.CountB = len(catsA), len(catsB)

	limit := func(n int) bool {
		if opts.MaxDifferences > 0 && n >= opts.MaxDifferences {
			diff.Truncated = true
			return true
		}
		return false
	}

	for _, id := range sortedKeys(catsA) {
		ca := catsA[id]
		cb, ok := catsB[id]
		switch {
		case !ok:
			if !limit(len(diff.MissingInB)) {
				diff.MissingInB = append(diff.MissingInB, id)
			}
		case ca != cb:
			if !limit(len(diff.CategoryMismatch)) {
				diff.CategoryMismatch = append(diff.CategoryMismatch, CategoryDifference{
					ID: id, CategoryA: ca, CategoryB: cb, A: ca.String(), B: cb.String(),
				})
			}
		}
	}
	for _, id := range sortedKeys(catsB) {
		if _, ok := catsA[id]; !ok && !limit(len(diff.MissingInA)) {
			diff.MissingInA = append(diff.MissingInA, id)
		}
	}
	return diff
}

func categoriesByID(s Side) map[string]model.Category {
	out := make(map[string]model.Category, s.Dataset.Len())
	if s.Dataset == nil {
		return out
	}
	for _, r := range s.Dataset.Rows {
		id := r.Text(s.IDColumn)
		if id == "" {
			continue
		}
		if _, dup := out[id]; dup {
			continue
		}
		out[id] = s.Classifier.Row(r)
	}
	return out
}

func sortedKeys(m map[string]model.Category) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
