package venn

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/loader"
)

const comparisonTSV = "Unique A\tUnique B\tCommon A B\n" +
	"P1\tP4\tP6\n" +
	"P2\tP5\tP7\n" +
	"P3\tNA\tP8\n" +
	"NA\tNA\tP9\n"

func TestParseComparison(t *testing.T) {
	ds, err := loader.Parse(strings.NewReader(comparisonTSV), loader.ParseOptions{Delimiter: '\t'})
	if err != nil {
		t.Fatal(err)
	}
	c, err := ParseComparison(ds)
	if err != nil {
		t.Fatalf("ParseComparison: %v", err)
	}
	if len(c.UniqueA) != 3 || len(c.UniqueB) != 2 || len(c.Common) != 4 {
		t.Errorf("region sizes = %d/%d/%d", len(c.UniqueA), len(c.UniqueB), len(c.Common))
	}
	if c.SizeA() != 7 || c.SizeB() != 6 {
		t.Errorf("set sizes = %d/%d", c.SizeA(), c.SizeB())
	}

	sets := c.Sets("")
	if sets[0].Label() != "A" || sets[2].Label() != "A & B" {
		t.Errorf("labels = %q %q", sets[0].Label(), sets[2].Label())
	}
	if sets[0].Link != "https://salivaryproteome.org/protein/P1" {
		t.Errorf("link = %q", sets[0].Link)
	}
	if sets[2].Size != 4 || sets[2].Link != "https://salivaryproteome.org/protein/P6" {
		t.Errorf("common set = %+v", sets[2])
	}
	tt := sets[1].Tooltip()
	if tt[0].Value != "B" || tt[1].Value != "2" {
		t.Errorf("tooltip = %+v", tt)
	}
}

func TestParseComparisonMissingColumn(t *testing.T) {
	ds, err := loader.Parse(strings.NewReader("Unique A\tUnique B\nP1\tP2\n"), loader.ParseOptions{Delimiter: '\t'})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseComparison(ds); !errors.Is(err, loader.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestEmptySetHasNoLink(t *testing.T) {
	c := Comparison{NameA: "A", NameB: "B", UniqueA: []string{"X"}}
	sets := c.Sets("https://example.org/")
	if sets[1].Link != "" || sets[2].Link != "" {
		t.Errorf("empty regions should have no link: %+v", sets)
	}
}

func TestCompare(t *testing.T) {
	c := Compare("saliva", []string{"P1", "P2", "P2", "P3", "NA"}, "plasma", []string{"P3", "P4", "P1"})
	if strings.Join(c.UniqueA, ",") != "P2" {
		t.Errorf("UniqueA = %v", c.UniqueA)
	}
	if strings.Join(c.Common, ",") != "P1,P3" {
		t.Errorf("Common = %v", c.Common)
	}
	if strings.Join(c.UniqueB, ",") != "P4" {
		t.Errorf("UniqueB = %v", c.UniqueB)
	}
	if c.Sets("")[2].Label() != "saliva & plasma" {
		t.Errorf("label = %q", c.Sets("")[2].Label())
	}
}

func TestLensArea(t *testing.T) {
	if LensArea(1, 1, 2) != 0 {
		t.Error("tangent circles should not overlap")
	}
	if got := LensArea(1, 2, 0.5); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("contained circle overlap = %v, want pi", got)
	}
	prev := math.Inf(1)
	for d := 0.1; d < 2; d += 0.1 {
		a := LensArea(1, 1, d)
		if a > prev {
			t.Fatalf("lens area should decrease with distance")
		}
		prev = a
	}
}

func TestSolveOverlapProportional(t *testing.T) {
	c := Comparison{
		UniqueA: make([]string, 30),
		UniqueB: make([]string, 10),
		Common:  make([]string, 20),
	}
	l := Solve(c, 600, 400, 10)
	k2 := l.A.R * l.A.R * math.Pi / float64(c.SizeA())
	overlap := LensArea(l.A.R, l.B.R, l.B.CX-l.A.CX) / k2
	if math.Abs(overlap-20) > 0.01 {
		t.Errorf("overlap = %v, want 20", overlap)
	}
	if l.A.CX-l.A.R < 10-1e-9 || l.B.CX+l.B.R > 590+1e-9 {
		t.Errorf("layout exceeds padding: %+v", l)
	}
	if got := l.Hit(l.A.CX-l.A.R+1, l.A.CY); got != RegionA {
		t.Errorf("left edge hit = %v", got)
	}
	x, y := l.LabelPos(RegionAB)
	if l.Hit(x, y) != RegionAB {
		t.Errorf("AB label at (%v,%v) not inside lens", x, y)
	}
	if l.Hit(0, 0) != RegionNone {
		t.Error("corner should be outside both circles")
	}
}

func TestSolveDisjoint(t *testing.T) {
	c := Comparison{UniqueA: []string{"a"}, UniqueB: []string{"b"}}
	l := Solve(c, 300, 200, 0)
	if l.B.CX-l.A.CX <= l.A.R+l.B.R {
		t.Errorf("disjoint sets should not touch: %+v", l)
	}
}
