package classify

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/proteoview/pkg/model"
)

func TestClassifyExamples(t *testing.T) {
	th := model.Thresholds{Significance: 1, FoldChange: 1}
	tests := []struct {
		name        string
		effect, sig float64
		want        model.Category
	}{
		{"up", 2, 5, model.Up},
		{"down", -2, 5, model.Down},
		{"small effect", 0.5, 5, model.NonSignificant},
		{"not significant", 5, 0.5, model.NonSignificant},
		{"boundary both", 1, 1, model.NonSignificant},
		{"boundary effect only", 1, 5, model.Up},
		{"boundary negative effect", -1, 5, model.Down},
		{"boundary significance only", 5, 1, model.NonSignificant},
		{"nan effect", math.NaN(), 5, model.NonSignificant},
		{"nan significance", 5, math.NaN(), model.NonSignificant},
		{"infinite significance", 3, math.Inf(1), model.Up},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.effect, tt.sig, th); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.effect, tt.sig, got, tt.want)
			}
		})
	}
}

func TestClassifyZeroFoldChange(t *testing.T) {
	th := model.Thresholds{Significance: 0, FoldChange: 0}
	// With a zero cutoff, zero effect satisfies the Down test first.
	if got := Classify(0, 1, th); got != model.Down {
		t.Errorf("Classify(0,1) = %v, want DOWN", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := rapid.Float64Range(-50, 50).Draw(t, "effect")
		s := rapid.Float64Range(0, 50).Draw(t, "sig")
		th := model.Thresholds{
			Significance: rapid.Float64Range(0, 10).Draw(t, "sigT"),
			FoldChange:   rapid.Float64Range(0, 10).Draw(t, "foldT"),
		}
		first := Classify(e, s, th)
		for i := 0; i < 3; i++ {
			if got := Classify(e, s, th); got != first {
				t.Fatalf("Classify not deterministic: %v then %v", first, got)
			}
		}
		if !first.IsValid() {
			t.Fatalf("invalid category %v", first)
		}
		if s <= th.Significance && first != model.NonSignificant {
			t.Fatalf("insignificant point classified %v", first)
		}
		if first == model.Up && e < th.FoldChange {
			t.Fatalf("UP with effect %v below %v", e, th.FoldChange)
		}
		if first == model.Down && e > -th.FoldChange {
			t.Fatalf("DOWN with effect %v above %v", e, -th.FoldChange)
		}
	})
}

func TestClassifyMirrorSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := rapid.Float64Range(0.001, 50).Draw(t, "effect")
		s := rapid.Float64Range(0, 50).Draw(t, "sig")
		th := model.Thresholds{Significance: 1, FoldChange: rapid.Float64Range(0.001, 10).Draw(t, "fold")}
		up, down := Classify(e, s, th), Classify(-e, s, th)
		switch up {
		case model.Up:
			if down != model.Down {
				t.Fatalf("mirror of UP is %v", down)
			}
		case model.NonSignificant:
			if down != model.NonSignificant {
				t.Fatalf("mirror of NON_SIGNIFICANT is %v", down)
			}
		default:
			t.Fatalf("positive effect classified %v", up)
		}
	})
}

func TestClassifierDataset(t *testing.T) {
	ds := &model.Dataset{
		Columns: []string{"id", "fc", "p"},
		Rows: []model.Row{
			{"id": model.ParseValue("A"), "fc": model.ParseValue("3"), "p": model.ParseValue("4")},
			{"id": model.ParseValue("B"), "fc": model.ParseValue("-3"), "p": model.ParseValue("4")},
			{"id": model.ParseValue("C"), "fc": model.ParseValue("0.1"), "p": model.ParseValue("4")},
			{"id": model.ParseValue("D"), "fc": model.ParseValue("x"), "p": model.ParseValue("4")},
		},
	}
	c := Classifier{Effect: "fc", Significance: "p", Thresholds: model.Thresholds{Significance: 1.3, FoldChange: 1}}
	res := c.Dataset(ds)

	want := []model.Category{model.Up, model.Down, model.NonSignificant, model.NonSignificant}
	for i, w := range want {
		if res.Categories[i] != w {
			t.Errorf("row %d = %v, want %v", i, res.Categories[i], w)
		}
	}
	if res.Counts[model.Up] != 1 || res.Counts[model.Down] != 1 || res.Counts[model.NonSignificant] != 2 {
		t.Errorf("unexpected counts: %v", res.Counts)
	}
	if res.Counts.Total() != 4 {
		t.Errorf("Total = %d", res.Counts.Total())
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if got := c.Row(ds.Rows[0]); got != model.Up {
		t.Errorf("Row = %v", got)
	}
}
