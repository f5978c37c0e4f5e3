package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/config"
	"github.com/vanderheijden86/proteoview/pkg/testutil"
	"github.com/vanderheijden86/proteoview/pkg/version"
)

func TestMain(m *testing.M) {
	// Prevent any test from accidentally opening a browser
	os.Setenv("PV_NO_BROWSER", "1")
	os.Setenv("PV_TEST_MODE", "1")

	os.Exit(m.Run())
}

type env struct {
	dir    string
	config string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return env{dir: dir, config: filepath.Join(dir, "config.yaml")}
}

func (e env) volcano(t *testing.T, name string, edit func([]testutil.VolcanoRow)) string {
	t.Helper()
	rows := testutil.NewDefault().Volcano(40)
	if edit != nil {
		edit(rows)
	}
	return testutil.WriteFile(t, e.dir, name, testutil.ToDelimited(rows, ","))
}

// pv runs the command in-process with the env's config file.
func (e env) pv(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(append([]string{"--config", e.config}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_VersionAndHelp(t *testing.T) {
	e := newEnv(t)
	code, out, _ := e.pv(t, "--version")
	if code != 0 || !strings.Contains(out, version.Version) {
		t.Errorf("--version: code %d, out %q", code, out)
	}
	code, out, _ = e.pv(t, "--help")
	if code != 0 || !strings.Contains(out, "Usage: pv") || !strings.Contains(out, "-export") {
		t.Errorf("--help: code %d, out %q", code, out)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)
	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no source", nil, 2, "no data source"},
		{"unknown kind", []string{"--kind", "pie", data}, 2, "unknown chart kind"},
		{"bad delimiter", []string{"--delimiter", "ab", data}, 2, "delimiter"},
		{"two sources", []string{data, data}, 2, "only --kind venn"},
		{"unknown flag", []string{"--bogus"}, 2, "bogus"},
		{"missing file", []string{"--json", filepath.Join(e.dir, "nope.csv")}, 1, "Error"},
		{"missing column", []string{"--json", "--x", "nope", data}, 1, "nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := e.pv(t, tc.args...)
			if code != tc.code {
				t.Errorf("exit code %d, want %d (stderr %q)", code, tc.code, stderr)
			}
			if !strings.Contains(stderr, tc.msg) {
				t.Errorf("stderr %q does not mention %q", stderr, tc.msg)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	o := options{
		kind: "scatter", x: "FDR", details: "Gene, Description",
		sig: 1.3, delimiter: `\t`,
		set: map[string]bool{"kind": true, "x": true, "details": true, "sig": true, "delimiter": true},
	}
	if err := applyOverrides(&cfg, o); err != nil {
		t.Fatal(err)
	}
	if cfg.Chart.Kind != chart.KindScatter || cfg.Chart.XColumn != "FDR" {
		t.Errorf("kind/x = %s/%s", cfg.Chart.Kind, cfg.Chart.XColumn)
	}
	if got := cfg.Chart.DetailFields; len(got) != 2 || got[1] != "Description" {
		t.Errorf("details = %q", got)
	}
	if cfg.Chart.Thresholds.Significance != 1.3 {
		t.Errorf("sig = %v", cfg.Chart.Thresholds.Significance)
	}
	// Unset flags keep the config value.
	if cfg.Chart.Thresholds.FoldChange != 2 || cfg.Chart.YColumn != chart.DefaultConfig().YColumn {
		t.Errorf("unset flags changed the config: %+v", cfg.Chart)
	}
	if r, _ := cfg.DelimiterRune(); r != '\t' {
		t.Errorf("delimiter = %q", r)
	}

	bad := config.DefaultConfig()
	if err := applyOverrides(&bad, options{fold: -1, set: map[string]bool{"fold": true}}); err == nil {
		t.Error("negative fold change accepted")
	}
}

func TestRun_JSON(t *testing.T) {
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)

	code, out, stderr := e.pv(t, "--json", "--fold", "1.5", data)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var got struct {
		Kind       string         `json:"kind"`
		Rows       int            `json:"rows"`
		Counts     map[string]int `json:"counts"`
		Thresholds struct {
			Fold float64 `json:"fold_change_threshold"`
		} `json:"thresholds"`
		Points []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
			Link     string `json:"link"`
		} `json:"points"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Kind != "volcano" || got.Rows != 40 || len(got.Points) != 40 {
		t.Errorf("kind %s rows %d points %d", got.Kind, got.Rows, len(got.Points))
	}
	if got.Thresholds.Fold != 1.5 {
		t.Errorf("fold = %v", got.Thresholds.Fold)
	}
	total := 0
	for _, n := range got.Counts {
		total += n
	}
	if total != 40 {
		t.Errorf("counts %v sum to %d", got.Counts, total)
	}
	if got.Points[0].ID != "P00001" || !strings.HasSuffix(got.Points[0].Link, "/P00001") {
		t.Errorf("first point = %+v", got.Points[0])
	}
}

func TestRun_NonTerminalFallsBackToJSON(t *testing.T) {
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)
	code, out, _ := e.pv(t, data)
	if code != 0 || !json.Valid([]byte(out)) {
		t.Errorf("exit %d, output %q", code, out)
	}
}

func TestRun_Export(t *testing.T) {
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)
	for _, name := range []string{"out.svg", "out.png", "out.html"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(e.dir, name)
			code, _, stderr := e.pv(t, "--export", path, "--no-browser", data)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, stderr)
			}
			testutil.AssertFileNotEmpty(t, path)
			if !strings.Contains(stderr, "Wrote "+path) {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}

	code, _, stderr := e.pv(t, "--export", filepath.Join(e.dir, "out.gif"), data)
	if code != 1 || !strings.Contains(stderr, "unsupported output format") {
		t.Errorf("gif export: exit %d, stderr %q", code, stderr)
	}
}

func TestRun_RemembersSource(t *testing.T) {
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)
	if code, _, stderr := e.pv(t, "--json", "--sig", "3", data); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	cfg, err := config.LoadFrom(e.config)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Recent) != 1 || cfg.Recent[0] != data {
		t.Errorf("recent = %q, want [%s]", cfg.Recent, data)
	}
	if cfg.Chart.Thresholds.Significance != 0.05 {
		t.Errorf("flag override was persisted: sig = %v", cfg.Chart.Thresholds.Significance)
	}
}

func TestRun_SummaryAndSQLite(t *testing.T) {
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)

	code, out, stderr := e.pv(t, "--markdown", data)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, "| ") || !strings.Contains(out, "UP") {
		t.Errorf("markdown summary = %q", out)
	}

	db := filepath.Join(e.dir, "points.sqlite")
	if code, _, stderr := e.pv(t, "--sqlite", db, data); code != 0 {
		t.Fatalf("sqlite exit %d: %s", code, stderr)
	}
	testutil.AssertFileNotEmpty(t, db)

	// The database is itself a source.
	code, out, stderr = e.pv(t, "--json", db)
	if code != 0 {
		t.Fatalf("reload exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, `"P00001"`) {
		t.Errorf("reloaded points missing: %.200s", out)
	}

	code, _, stderr = e.pv(t, "--kind", "density", "--summary", data)
	if code != 1 || !strings.Contains(stderr, "volcano or scatter") {
		t.Errorf("density summary: exit %d, stderr %q", code, stderr)
	}
}

func TestRun_VennFromTwoSources(t *testing.T) {
	e := newEnv(t)
	a := testutil.WriteFile(t, e.dir, "saliva.csv", "Protein\nP1\nP2\nP3\nNA\n")
	b := testutil.WriteFile(t, e.dir, "plasma.csv", "Protein\nP3\nP4\n")

	code, out, stderr := e.pv(t, "--kind", "venn", "--json", a, b)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"saliva", "plasma", "saliva & plasma"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestRun_Compare(t *testing.T) {
	e := newEnv(t)
	setUp := func(rows []testutil.VolcanoRow) { rows[0].Effect, rows[0].Sig = 5, 10 }
	a := e.volcano(t, "a.csv", setUp)
	same := e.volcano(t, "same.csv", setUp)
	flipped := e.volcano(t, "b.csv", func(rows []testutil.VolcanoRow) {
		rows[0].Effect, rows[0].Sig = -5, 10
	})

	if code, out, stderr := e.pv(t, "--compare", same, a); code != 0 {
		t.Errorf("identical sources: exit %d\n%s%s", code, out, stderr)
	}

	code, out, _ := e.pv(t, "--compare", flipped, "--json", a)
	if code != 1 {
		t.Errorf("exit %d, want 1", code)
	}
	var got diffOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Consistent || len(got.CategoryMismatch) != 1 {
		t.Fatalf("diff = %+v", got)
	}
	if m := got.CategoryMismatch[0]; m.ID != "P00001" || m.A != "UP" || m.B != "DOWN" {
		t.Errorf("mismatch = %+v", m)
	}
}

func TestRun_Workspace(t *testing.T) {
	e := newEnv(t)
	e.volcano(t, "a.csv", nil)
	ws := testutil.WriteFile(t, e.dir, "charts.yaml", `
output_dir: out
charts:
  - name: volcano
    source: a.csv
    output: volcano.svg
  - name: broken
    source: missing.csv
    output: broken.svg
`)
	code, out, stderr := e.pv(t, "--workspace", ws)
	if code != 1 {
		t.Errorf("exit %d, want 1 when a chart fails", code)
	}
	if !strings.Contains(out, "1 of 2 charts rendered") || !strings.Contains(out, "failed: broken") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(stderr, `chart "broken" failed`) {
		t.Errorf("stderr = %q", stderr)
	}
	testutil.AssertFileNotEmpty(t, filepath.Join(e.dir, "out", "volcano.svg"))
}

func TestRun_ExportHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hooks use sh")
	}
	e := newEnv(t)
	data := e.volcano(t, "a.csv", nil)
	testutil.WriteFile(t, e.dir, "hooks.yaml", `
hooks:
  pre-export:
    - name: no-png
      command: test "$PV_EXPORT_FORMAT" != png
  post-export:
    - command: echo "$PV_CHART_NAME $PV_ROW_COUNT" > "$PV_EXPORT_PATH.log"
`)
	svg := filepath.Join(e.dir, "a.svg")
	if code, _, stderr := e.pv(t, "--export", svg, data); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	logged, err := os.ReadFile(svg + ".log")
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if got := strings.TrimSpace(string(logged)); got != "a 40" {
		t.Errorf("hook saw %q", got)
	}

	png := filepath.Join(e.dir, "a.png")
	code, _, stderr := e.pv(t, "--export", png, data)
	if code != 1 || !strings.Contains(stderr, "no-png") {
		t.Errorf("vetoed export: exit %d, stderr %q", code, stderr)
	}
	if _, err := os.Stat(png); !os.IsNotExist(err) {
		t.Error("png written despite the failing pre-export hook")
	}

	if code, _, stderr := e.pv(t, "--no-hooks", "--export", png, data); code != 0 {
		t.Errorf("--no-hooks: exit %d: %s", code, stderr)
	}
}
