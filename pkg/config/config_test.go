package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/chart"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chart.Kind != chart.KindVolcano {
		t.Errorf("expected volcano, got %q", cfg.Chart.Kind)
	}
	if cfg.Chart.Thresholds.FoldChange != 2 {
		t.Errorf("expected fold threshold 2, got %v", cfg.Chart.Thresholds.FoldChange)
	}
	if !cfg.UI.Mouse || !cfg.UI.AnimateReset {
		t.Error("expected mouse and animated reset on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Chart.Width != 960 {
		t.Errorf("expected default config, got width %v", cfg.Chart.Width)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
chart:
  kind: scatter
  x_column: FDR
  y_column: "-log10(p)"
  id_column: Accession
  detail_fields: [Gene, Description]
  significance_threshold: 1.3
  fold_change_threshold: 1
  classify: true
delimiter: '\t'
ui:
  mouse: false
recent:
  - ~/data/a.csv
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Chart.Kind != chart.KindScatter || cfg.Chart.XColumn != "FDR" || !cfg.Chart.Classify {
		t.Errorf("chart section not applied: %+v", cfg.Chart)
	}
	if len(cfg.Chart.DetailFields) != 2 || cfg.Chart.DetailFields[1] != "Description" {
		t.Errorf("detail fields = %v", cfg.Chart.DetailFields)
	}
	if cfg.Chart.Thresholds.Significance != 1.3 || cfg.Chart.Thresholds.FoldChange != 1 {
		t.Errorf("thresholds = %+v", cfg.Chart.Thresholds)
	}
	// Unset keys keep defaults.
	if cfg.Chart.Width != 960 || cfg.Chart.PointRadius != 3 {
		t.Errorf("defaults lost: width=%v radius=%v", cfg.Chart.Width, cfg.Chart.PointRadius)
	}
	if cfg.UI.Mouse {
		t.Error("expected mouse disabled")
	}
	r, err := cfg.DelimiterRune()
	if err != nil || r != '\t' {
		t.Errorf("delimiter = %q, %v", r, err)
	}
	home, _ := os.UserHomeDir()
	if cfg.Recent[0] != filepath.Join(home, "data/a.csv") {
		t.Errorf("recent path not expanded: %q", cfg.Recent[0])
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("chart: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Chart.Thresholds.Significance = 2
	cfg.Chart.DetailFields = []string{"Gene"}
	cfg.AddRecent("/tmp/x.csv")
	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Chart.Thresholds.Significance != 2 || got.Chart.DetailFields[0] != "Gene" {
		t.Errorf("round trip lost chart fields: %+v", got.Chart)
	}
	if len(got.Recent) != 1 || got.Recent[0] != "/tmp/x.csv" {
		t.Errorf("recent = %v", got.Recent)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	if got := ConfigPath(); got != "/xdg/config/proteoview/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := StateDir(); got != "/xdg/state/proteoview" {
		t.Errorf("StateDir = %q", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chart.Thresholds.FoldChange = -1
	if err := cfg.Validate(); !errors.Is(err, chart.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Delimiter = ";;"
	if err := cfg.Validate(); err == nil {
		t.Error("expected delimiter error")
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{",", ',', false},
		{";", ';', false},
		{`\t`, '\t', false},
		{"tab", '\t', false},
		{"TAB", '\t', false},
		{"comma", ',', false},
		{"\t", '\t', false},
		{"ab", 0, true},
		{`"`, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDelimiter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddRecent(t *testing.T) {
	var cfg Config
	for i := 0; i < 12; i++ {
		cfg.AddRecent(filepath.Join("/data", string(rune('a'+i))))
	}
	cfg.AddRecent("/data/c")

	if len(cfg.Recent) != maxRecent {
		t.Fatalf("expected %d entries, got %d", maxRecent, len(cfg.Recent))
	}
	if cfg.Recent[0] != "/data/c" || cfg.Recent[1] != "/data/l" {
		t.Errorf("unexpected order: %v", cfg.Recent)
	}
	seen := map[string]bool{}
	for _, p := range cfg.Recent {
		if seen[p] {
			t.Errorf("duplicate %s", p)
		}
		seen[p] = true
	}
}

func TestWizardAnswers(t *testing.T) {
	base := DefaultConfig()
	a := answersFrom(base)
	if a.Sig != "0.05" || a.Fold != "2" || a.Kind != "volcano" {
		t.Fatalf("answersFrom = %+v", a)
	}

	a.Kind = "Scatter"
	a.Details = " Gene , ,Description"
	a.Sig = "1.3"
	got, err := a.apply(base)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Chart.Kind != chart.KindScatter || got.Chart.Thresholds.Significance != 1.3 {
		t.Errorf("apply result: %+v", got.Chart)
	}
	if len(got.Chart.DetailFields) != 2 || got.Chart.DetailFields[0] != "Gene" {
		t.Errorf("details = %q", got.Chart.DetailFields)
	}

	a.Fold = "wide"
	if _, err := a.apply(base); err == nil {
		t.Error("expected error for non-numeric fold")
	}
}
