package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/model"
)

// AssertCategories verifies got against the categories rows were built for.
func AssertCategories(t *testing.T, rows []VolcanoRow, got []model.Category) {
	t.Helper()
	if len(got) != len(rows) {
		t.Fatalf("expected %d categories, got %d", len(rows), len(got))
	}
	for i, r := range rows {
		if got[i] != r.Want {
			t.Errorf("row %d (%s, effect=%v sig=%v): got %v, want %v", i, r.ID, r.Effect, r.Sig, got[i], r.Want)
		}
	}
}

// AssertColumns verifies the header of ds.
func AssertColumns(t *testing.T, ds *model.Dataset, want ...string) {
	t.Helper()
	if len(ds.Columns) != len(want) {
		t.Fatalf("expected columns %v, got %v", want, ds.Columns)
	}
	for i := range want {
		if ds.Columns[i] != want[i] {
			t.Errorf("column %d: got %q, want %q", i, ds.Columns[i], want[i])
		}
	}
}

// AssertFileNotEmpty verifies path exists and has content.
func AssertFileNotEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

// WriteFile writes content under dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
