package export

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
)

// DefaultSummaryTop is the number of rows listed per regulated category.
const DefaultSummaryTop = 10

// SummaryMarkdown reports category counts, the thresholds in effect and the
// most significant UP and DOWN rows of a volcano or scatter chart.
func SummaryMarkdown(v *chart.Volcano, topN int) string {
	if topN <= 0 {
		topN = DefaultSummaryTop
	}
	cfg := v.Config()
	xCol, yCol, idCol := v.Columns()
	counts := v.Counts()

	var sb strings.Builder
	title := cfg.Title
	if title == "" {
		title = fmt.Sprintf("%s summary", strings.ToUpper(string(v.Kind()[:1]))+string(v.Kind()[1:]))
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "*Source: %s, generated %s*\n\n", v.Dataset().Source, summaryNow().Format(time.RFC1123))

	sb.WriteString("## Classification\n\n")
	sb.WriteString("| Category | Count |\n|----------|-------|\n")
	fmt.Fprintf(&sb, "| **Total** | %d |\n", v.Dataset().Len())
	for _, cat := range model.Categories {
		fmt.Fprintf(&sb, "| %s | %d |\n", cat.Label(), counts[cat])
	}
	if skipped := v.Dataset().Len() - len(v.Points()); skipped > 0 {
		fmt.Fprintf(&sb, "| Not plotted | %d |\n", skipped)
	}
	sb.WriteString("\n")

	sb.WriteString("## Thresholds\n\n")
	fmt.Fprintf(&sb, "- Significance (`%s`) > %g\n", yCol, cfg.Thresholds.Significance)
	fmt.Fprintf(&sb, "- Fold change (`%s`) at or beyond ±%g\n\n", xCol, cfg.Thresholds.FoldChange)

	for _, cat := range []model.Category{model.Up, model.Down} {
		top := topBySignificance(v.Points(), cat, topN)
		fmt.Fprintf(&sb, "## Top %s\n\n", cat.Label())
		if len(top) == 0 {
			sb.WriteString("_None._\n\n")
			continue
		}
		writeTopTable(&sb, top, idCol, xCol, yCol)
	}
	return sb.String()
}

// summaryNow is replaced in tests.
var summaryNow = time.Now

func topBySignificance(points []chart.Point, cat model.Category, n int) []chart.Point {
	var out []chart.Point
	for _, p := range points {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y > out[j].Y })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func writeTopTable(sb *strings.Builder, points []chart.Point, idCol, xCol, yCol string) {
	// Detail columns come from the tooltip fields after the identifier.
	var details []string
	if len(points[0].Fields) > 1 {
		for _, f := range points[0].Fields[1:] {
			details = append(details, f.Label)
		}
	}

	header := append([]string{"#", idCol, xCol, yCol}, details...)
	sb.WriteString("| " + strings.Join(escapeCells(header), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for i, p := range points {
		id := p.ID
		if p.Link != "" {
			id = fmt.Sprintf("[%s](%s)", escapeCell(p.ID), p.Link)
		} else {
			id = escapeCell(id)
		}
		cells := []string{fmt.Sprint(i + 1), id, fmt.Sprintf("%.2f", p.X), fmt.Sprintf("%.2f", p.Y)}
		if len(p.Fields) > 1 {
			cells = append(cells, escapeCells(fieldValues(p.Fields[1:]))...)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

func fieldValues(fields []tooltip.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Value
	}
	return out
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeCell(c)
	}
	return out
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// SaveMarkdownToFile writes the summary to filename.
func SaveMarkdownToFile(v *chart.Volcano, topN int, filename string) error {
	return os.WriteFile(filename, []byte(SummaryMarkdown(v, topN)), 0o644)
}

// RenderMarkdown styles markdown for the terminal.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
