package chart

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/stats"
	"github.com/vanderheijden86/proteoview/pkg/testutil"
	"github.com/vanderheijden86/proteoview/pkg/venn"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

func volcanoConfig() Config {
	cfg := DefaultConfig()
	cfg.XColumn = testutil.ColEffect
	cfg.YColumn = testutil.ColSig
	cfg.IDColumn = testutil.ColID
	cfg.DetailFields = []string{testutil.ColGene, testutil.ColEffect}
	return cfg
}

func countClass(s *Scene, class string) int {
	n := 0
	for _, it := range s.Items {
		switch v := it.(type) {
		case Circle:
			if v.Class == class {
				n++
			}
		case Line:
			if v.Class == class {
				n++
			}
		}
	}
	return n
}

func TestNewVolcano(t *testing.T) {
	rows := testutil.NewDefault().Volcano(40)
	v, err := NewVolcano(volcanoConfig(), testutil.ToDataset(rows))
	if err != nil {
		t.Fatalf("NewVolcano: %v", err)
	}
	if v.Kind() != KindVolcano {
		t.Errorf("kind = %v", v.Kind())
	}
	if len(v.Points()) != 40 {
		t.Fatalf("expected 40 points, got %d", len(v.Points()))
	}
	for i, p := range v.Points() {
		if p.Category != rows[i].Want {
			t.Errorf("point %d: category %v, want %v", i, p.Category, rows[i].Want)
		}
	}
	if v.Counts()[model.Up] != 8 || v.Counts()[model.Down] != 8 {
		t.Errorf("counts = %v", v.Counts())
	}

	p := v.Points()[0]
	if p.Fields[0].Label != testutil.ColID || p.Fields[0].Value != rows[0].ID {
		t.Errorf("first tooltip field = %+v", p.Fields[0])
	}
	if len(p.Fields) != 3 || p.Fields[1].Label != testutil.ColGene {
		t.Errorf("fields = %+v", p.Fields)
	}
	if p.Link != "https://salivaryproteome.org/protein/"+rows[0].ID {
		t.Errorf("link = %q", p.Link)
	}
}

func TestNewVolcanoMissingColumn(t *testing.T) {
	cfg := volcanoConfig()
	cfg.YColumn = "padj"
	_, err := NewVolcano(cfg, testutil.QuickVolcano(5))
	if !errors.Is(err, loader.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestNewVolcanoInvalidConfig(t *testing.T) {
	cfg := volcanoConfig()
	cfg.Width = 10
	if _, err := NewVolcano(cfg, testutil.QuickVolcano(5)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewVolcanoPositionalColumns(t *testing.T) {
	cfg := volcanoConfig()
	cfg.XColumn, cfg.YColumn, cfg.IDColumn = "#1", "#2", "#0"
	v, err := NewVolcano(cfg, testutil.QuickVolcano(5))
	if err != nil {
		t.Fatal(err)
	}
	x, y, id := v.Columns()
	if x != testutil.ColEffect || y != testutil.ColSig || id != testutil.ColID {
		t.Errorf("resolved columns = %q %q %q", x, y, id)
	}
}

func TestVolcanoSkipsNonNumericRows(t *testing.T) {
	ds := testutil.QuickVolcano(3)
	ds.Rows[1][testutil.ColSig] = model.ParseValue("n/a")
	v, err := NewVolcano(volcanoConfig(), ds)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Points()) != 2 {
		t.Errorf("expected 2 plotted points, got %d", len(v.Points()))
	}
}

func TestVolcanoSceneIdentity(t *testing.T) {
	v, err := NewVolcano(volcanoConfig(), testutil.QuickVolcano(20))
	if err != nil {
		t.Fatal(err)
	}
	s := v.Scene()
	if got := countClass(s, "threshold"); got != 3 {
		t.Errorf("expected 3 threshold lines, got %d", got)
	}
	if len(s.Hits) != 20 {
		t.Errorf("expected 20 hit targets, got %d", len(s.Hits))
	}

	// Unzoomed positions come straight from the base scales.
	bx, by := v.BaseScales()
	pt := v.Points()[0]
	h := s.Hits[0]
	if math.Abs(h.X-(s.Plot.X0+bx.Map(pt.X))) > 1e-9 || math.Abs(h.Y-(s.Plot.Y0+by.Map(pt.Y))) > 1e-9 {
		t.Errorf("hit at (%v,%v) does not match base projection", h.X, h.Y)
	}
	if h.R != 3 {
		t.Errorf("radius = %v, want 3", h.R)
	}
	if got := s.HitTest(h.X+1, h.Y, 0); got < 0 {
		t.Errorf("HitTest next to the first point found nothing")
	}
}

func TestVolcanoZoomAndReset(t *testing.T) {
	v, err := NewVolcano(volcanoConfig(), testutil.QuickVolcano(20))
	if err != nil {
		t.Fatal(err)
	}
	before := v.Scene()
	ctrl := v.Controller()
	ctrl.ZoomAt(4, zoom.Point{X: 100, Y: 100})
	ctrl.Pan(30, -10)

	zoomed := v.Scene()
	for _, it := range zoomed.Items {
		if c, ok := it.(Circle); ok && c.Class != "legend" {
			if math.Abs(c.R-6) > 1e-9 {
				t.Fatalf("zoomed radius = %v, want 4 * 3/sqrt(4)", c.R)
			}
			break
		}
	}
	for _, it := range zoomed.Items {
		if l, ok := it.(Line); ok && l.Class == "threshold" && math.Abs(l.Width-1) > 1e-9 {
			t.Fatalf("threshold width = %v, want 1", l.Width)
		}
	}

	start := time.Unix(0, 0)
	ctrl.Reset(start)
	for !ctrl.Step(start.Add(time.Second)) {
	}
	after := v.Scene()
	if ctrl.State() != zoom.StateIdentity {
		t.Fatalf("state after reset = %v", ctrl.State())
	}
	if len(after.Hits) != len(before.Hits) {
		t.Fatalf("hit count changed: %d vs %d", len(after.Hits), len(before.Hits))
	}
	for i := range before.Hits {
		if before.Hits[i].X != after.Hits[i].X || before.Hits[i].Y != after.Hits[i].Y {
			t.Fatalf("hit %d moved after reset", i)
		}
	}
}

func TestScatterFixedRadiusNoThresholds(t *testing.T) {
	cfg := volcanoConfig()
	s, err := NewScatter(cfg, testutil.QuickVolcano(10))
	if err != nil {
		t.Fatal(err)
	}
	s.Controller().ZoomAt(9, zoom.Point{X: 10, Y: 10})
	sc := s.Scene()
	if countClass(sc, "threshold") != 0 {
		t.Error("scatter should not draw threshold lines")
	}
	for _, h := range sc.Hits {
		if h.R != cfg.PointRadius {
			t.Fatalf("scatter radius = %v, want %v", h.R, cfg.PointRadius)
		}
	}
	if s.Classified() {
		t.Error("scatter is unclassified unless configured")
	}
}

func TestDensityChart(t *testing.T) {
	ds := testutil.NewDefault().Wide(1, 1)
	ds.Rows = nil
	for _, v := range testutil.NewDefault().Normal(200, 0, 1) {
		ds.Rows = append(ds.Rows, model.Row{"S1": {Num: v, IsNum: true}})
	}
	cfg := DefaultConfig()
	cfg.Kind = KindDensity
	cfg.XColumn = "S1"
	d, err := NewDensity(cfg, ds)
	if err != nil {
		t.Fatal(err)
	}
	s := d.Scene()
	if len(s.Hits) == 0 {
		t.Fatal("expected hover targets")
	}
	if s.Hits[0].Fields[0].Label != "Value" || s.Hits[0].Fields[1].Label != "Density" {
		t.Errorf("fields = %+v", s.Hits[0].Fields)
	}
	var line *Polyline
	for _, it := range s.Items {
		if p, ok := it.(Polyline); ok {
			line = &p
		}
	}
	if line == nil || len(line.Points) != len(d.Points()) {
		t.Fatal("expected one polyline through every density point")
	}
}

func TestBoxChart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindBox
	cfg.BoxTop = 3
	b, err := NewBox(cfg, testutil.NewDefault().Wide(5, 10))
	if err != nil {
		t.Fatal(err)
	}
	boxes := b.Boxes()
	if len(boxes) != 3 {
		t.Fatalf("expected 3 boxes, got %d", len(boxes))
	}
	if boxes[0].Label != "P00005" {
		t.Errorf("highest median first, got %s", boxes[0].Label)
	}
	s := b.Scene()
	if len(s.Hits) != 3 {
		t.Fatalf("expected 3 hit targets, got %d", len(s.Hits))
	}
	if s.Hits[0].Link != "https://salivaryproteome.org/protein/P00005" {
		t.Errorf("link = %q", s.Hits[0].Link)
	}
	if got := b.Controller().Options().MaxScale; got != BoxMaxZoom {
		t.Errorf("max zoom = %v", got)
	}
}

func TestBoxFieldsShowFencesAndExtremes(t *testing.T) {
	bx, ok := stats.Summarize("S1", []float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	if !ok {
		t.Fatal("Summarize failed")
	}
	got := map[string]string{}
	for _, f := range BoxFields(bx) {
		got[f.Label] = f.Value
	}
	want := map[string]string{
		"Q1":          "3.00",
		"Q3":          "7.00",
		"IQR":         "4.00",
		"Lower fence": "-3.00",
		"Upper fence": "13.00",
		"Min":         "1.00",
		"Max":         "100.00",
		"Outliers":    "1",
	}
	for label, v := range want {
		if got[label] != v {
			t.Errorf("%s = %q, want %q", label, got[label], v)
		}
	}
}

func TestBoxChartNeedsSamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindBox
	ds := &model.Dataset{Columns: []string{"only"}}
	if _, err := NewBox(cfg, ds); err == nil {
		t.Fatal("expected error for single-column table")
	}
}

func TestVennChart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindVenn
	c := venn.Compare("A", []string{"P1", "P2", "P3"}, "B", []string{"P3", "P4"})
	v, err := NewVennFromComparison(cfg, c)
	if err != nil {
		t.Fatal(err)
	}
	if v.Controller() != nil {
		t.Error("venn charts do not zoom")
	}
	s := v.Scene()
	if len(s.Hits) != 3 {
		t.Fatalf("expected 3 regions, got %d", len(s.Hits))
	}
	l := v.Layout()
	lx, ly := l.LabelPos(venn.RegionAB)
	idx := s.HitTest(s.Plot.X0+lx, s.Plot.Y0+ly, 0)
	if idx != 2 {
		t.Fatalf("lens hit = %d, want 2", idx)
	}
	if s.Hits[idx].Fields[0].Value != "A & B" || s.Hits[idx].Fields[1].Value != "1" {
		t.Errorf("lens tooltip = %+v", s.Hits[idx].Fields)
	}
	if s.Hits[idx].Link != "https://salivaryproteome.org/protein/P3" {
		t.Errorf("lens link = %q", s.Hits[idx].Link)
	}
}

func TestBuild(t *testing.T) {
	cfg := volcanoConfig()
	for _, k := range []Kind{KindVolcano, KindScatter} {
		cfg.Kind = k
		c, err := Build(cfg, testutil.QuickVolcano(5))
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if c.Kind() != k {
			t.Errorf("Build(%s) kind = %s", k, c.Kind())
		}
	}
	cfg.Kind = "pie"
	if _, err := Build(cfg, testutil.QuickVolcano(5)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Volcano "); err != nil || k != KindVolcano {
		t.Errorf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("pie"); err == nil {
		t.Error("expected error")
	}
}

func TestHitTestOutsidePlot(t *testing.T) {
	s := &Scene{Plot: zoom.Rect{X0: 10, Y0: 10, X1: 100, Y1: 100}}
	s.Hits = []Hit{{Shape: HitCircle, X: 10, Y: 10, R: 5}}
	if s.HitTest(8, 8, 0) != -1 {
		t.Error("points outside the plot area must not be hit")
	}
	if s.HitTest(12, 12, 0) != 0 {
		t.Error("expected hit inside plot")
	}
}
