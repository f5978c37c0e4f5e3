package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/proteoview/internal/datasource"
	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
	"github.com/vanderheijden86/proteoview/pkg/workspace"
)

type itemOutput struct {
	Index  int             `json:"index"`
	Fields []tooltip.Field `json:"fields"`
	Link   string          `json:"link,omitempty"`
}

type chartOutput struct {
	Kind       chart.Kind        `json:"kind"`
	Title      string            `json:"title,omitempty"`
	Source     string            `json:"source"`
	Rows       int               `json:"rows"`
	Thresholds *model.Thresholds `json:"thresholds,omitempty"`
	Counts     map[string]int    `json:"counts,omitempty"`
	Points     []chart.Point     `json:"points,omitempty"`
	Items      []itemOutput      `json:"items,omitempty"`
}

type diffOutput struct {
	SourceA          string                          `json:"source_a"`
	SourceB          string                          `json:"source_b"`
	CountA           int                             `json:"count_a"`
	CountB           int                             `json:"count_b"`
	MissingInA       []string                        `json:"missing_in_a"`
	MissingInB       []string                        `json:"missing_in_b"`
	CategoryMismatch []datasource.CategoryDifference `json:"category_mismatch"`
	Truncated        bool                            `json:"truncated,omitempty"`
	Consistent       bool                            `json:"consistent"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// buildChartOutput describes c for machine consumers. Volcano and scatter
// charts list their points; the other kinds list their hover targets.
func buildChartOutput(c chart.Chart, source string) chartOutput {
	cfg := c.Config()
	out := chartOutput{Kind: c.Kind(), Title: cfg.Title, Source: source}

	if v, ok := c.(*chart.Volcano); ok {
		out.Rows = v.Dataset().Len()
		out.Points = v.Points()
		if v.Classified() {
			t := cfg.Thresholds
			out.Thresholds = &t
			out.Counts = make(map[string]int, len(model.Categories))
			for _, cat := range model.Categories {
				out.Counts[cat.String()] = v.Counts()[cat]
			}
		}
		return out
	}

	hits := c.Scene().Hits
	out.Rows = len(hits)
	for _, h := range hits {
		out.Items = append(out.Items, itemOutput{Index: h.Index, Fields: h.Fields, Link: h.Link})
	}
	sort.SliceStable(out.Items, func(i, j int) bool { return out.Items[i].Index < out.Items[j].Index })
	return out
}

func buildDiffOutput(d datasource.SourceDiff) diffOutput {
	return diffOutput{
		SourceA:          d.SourceA,
		SourceB:          d.SourceB,
		CountA:           d.CountA,
		CountB:           d.CountB,
		MissingInA:       nonNil(d.MissingInA),
		MissingInB:       nonNil(d.MissingInB),
		CategoryMismatch: d.CategoryMismatch,
		Truncated:        d.Truncated,
		Consistent:       !d.HasInconsistencies(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// printWorkspaceResults writes one line per chart followed by the totals.
func printWorkspaceResults(w io.Writer, results []workspace.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "  ✗ %-20s %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "  ✓ %-20s %-8s %6d rows  %s (%s)\n",
			r.Name, r.Kind, r.Rows, r.Output, r.Took.Round(time.Millisecond))
	}
	s := workspace.Summarize(results)
	fmt.Fprintf(w, "\n%d of %d charts rendered", s.Succeeded, s.Total)
	if s.Failed > 0 {
		fmt.Fprintf(w, ", failed: %s", strings.Join(s.FailedNames, ", "))
	}
	fmt.Fprintln(w)
}
