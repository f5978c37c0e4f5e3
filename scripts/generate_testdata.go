//go:build ignore

// generate_testdata.go creates sample datasets for demos and benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates, under testdata/samples:
//
//	volcano-small.csv   (100 proteins)
//	volcano-medium.csv  (2000 proteins)
//	volcano-large.tsv   (20000 proteins, tab separated)
//	box.tsv             (wide table: 60 proteins x 12 samples)
//	venn.tsv            (Unique A / Unique B / Common A B)
//	charts.yaml         (workspace rendering all of the above)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/testutil"
	"github.com/vanderheijden86/proteoview/pkg/venn"
)

type datasetSpec struct {
	file string
	size int
	sep  string
}

var volcanoes = []datasetSpec{
	{"volcano-small.csv", 100, ","},
	{"volcano-medium.csv", 2000, ","},
	{"volcano-large.tsv", 20000, "\t"},
}

const workspaceYAML = `output_dir: out
charts:
  - name: small
    source: volcano-small.csv
    output: small.html
  - name: medium
    source: volcano-medium.csv
    output: medium.svg
  - name: large
    source: volcano-large.tsv
    output: large.png
  - name: scatter
    source: volcano-medium.csv
    kind: scatter
    output: scatter.svg
    chart:
      classify: true
  - name: density
    source: volcano-medium.csv
    kind: density
    output: density.svg
  - name: box
    source: box.tsv
    kind: box
    output: box.svg
  - name: venn
    source: venn.tsv
    kind: venn
    output: venn.html
`

func main() {
	outputDir := "testdata/samples"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fail("Failed to create output directory: %v", err)
	}

	for _, spec := range volcanoes {
		// Reproducible per size
		gen := testutil.New(testutil.GeneratorConfig{
			Seed:         int64(spec.size),
			IDPrefix:     "P",
			UpFraction:   0.08,
			DownFraction: 0.06,
		})
		write(filepath.Join(outputDir, spec.file), testutil.ToDelimited(gen.Volcano(spec.size), spec.sep))
	}

	write(filepath.Join(outputDir, "box.tsv"), delimited(testutil.NewDefault().Wide(60, 12), "\t"))
	write(filepath.Join(outputDir, "venn.tsv"), vennTable(400, 250, 120))
	write(filepath.Join(outputDir, "charts.yaml"), workspaceYAML)

	fmt.Println("\nDone! Sample datasets created in", outputDir)
	fmt.Println("Render them with: pv --workspace", filepath.Join(outputDir, "charts.yaml"))
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fail("Failed to write %s: %v", path, err)
	}
	fmt.Printf("  Written %s (%d bytes)\n", path, len(content))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func delimited(ds *model.Dataset, sep string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(ds.Columns, sep))
	sb.WriteByte('\n')
	cells := make([]string, len(ds.Columns))
	for _, r := range ds.Rows {
		for i, col := range ds.Columns {
			cells[i] = r.Text(col)
		}
		sb.WriteString(strings.Join(cells, sep))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// vennTable pads the shorter region columns with NA, the way comparison
// tables exported from R look.
func vennTable(uniqueA, uniqueB, common int) string {
	id := 0
	next := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			id++
			out[i] = fmt.Sprintf("P%05d", id)
		}
		return out
	}
	cols := [][]string{next(uniqueA), next(uniqueB), next(common)}
	rows := max(uniqueA, uniqueB, common)

	var sb strings.Builder
	sb.WriteString(strings.Join([]string{venn.ColumnUniqueA, venn.ColumnUniqueB, venn.ColumnCommon}, "\t"))
	sb.WriteByte('\n')
	for i := range rows {
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = "NA"
			if i < len(col) {
				cells[j] = col[i]
			}
		}
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}
