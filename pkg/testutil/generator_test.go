package testutil

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/model"
)

func TestVolcanoDeterministic(t *testing.T) {
	a := NewDefault().Volcano(50)
	b := NewDefault().Volcano(50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestVolcanoMix(t *testing.T) {
	rows := NewDefault().Volcano(100)
	counts := map[model.Category]int{}
	for _, r := range rows {
		counts[r.Want]++
	}
	tests := []struct {
		cat  model.Category
		want int
	}{
		{model.Up, 20},
		{model.Down, 20},
		{model.NonSignificant, 60},
	}
	for _, tt := range tests {
		if counts[tt.cat] != tt.want {
			t.Errorf("%v: got %d rows, want %d", tt.cat, counts[tt.cat], tt.want)
		}
	}
}

func TestToDataset(t *testing.T) {
	ds := QuickVolcano(10)
	AssertColumns(t, ds, ColID, ColEffect, ColSig, ColGene)
	if ds.Len() != 10 {
		t.Fatalf("expected 10 rows, got %d", ds.Len())
	}
	if !ds.Rows[0][ColEffect].IsNum {
		t.Error("effect should be numeric")
	}
	if ds.Rows[0][ColID].IsNum {
		t.Error("identifier should stay a string")
	}
}

func TestToDelimited(t *testing.T) {
	out := ToDelimited(NewDefault().Volcano(3), "\t")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "P00001\t") {
		t.Errorf("unexpected first row %q", lines[1])
	}
}

func TestWide(t *testing.T) {
	ds := NewDefault().Wide(5, 8)
	if len(ds.Columns) != 9 || ds.Len() != 5 {
		t.Fatalf("got %d columns x %d rows", len(ds.Columns), ds.Len())
	}
}
