package workspace

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/proteoview/internal/datasource"
	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/export"
	"github.com/vanderheijden86/proteoview/pkg/hooks"
)

// MaxParallel bounds how many charts load and render at once.
const MaxParallel = 8

// Result is the outcome of rendering one chart.
type Result struct {
	Name   string
	Source string
	Output string
	Kind   chart.Kind
	Rows   int
	Took   time.Duration
	Err    error
}

// Renderer renders every enabled chart of a workspace.
type Renderer struct {
	config  *Config
	base    chart.Config
	delim   rune
	logger  *log.Logger
	noHooks bool
}

// NewRenderer creates a renderer. base supplies every chart setting the
// workspace entry does not override; delim is the fallback delimiter (zero
// to infer it from each source).
func NewRenderer(cfg *Config, base chart.Config, delim rune) *Renderer {
	return &Renderer{
		config: cfg,
		base:   base,
		delim:  delim,
		// Silent unless the caller opts in, so --json output stays clean.
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger used for per-chart failures.
func (r *Renderer) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// DisableHooks skips the workspace's export hooks.
func (r *Renderer) DisableHooks() {
	r.noHooks = true
}

// RenderAll renders the enabled charts concurrently. A failing chart is
// logged and reported in its Result; it does not stop the others. The
// returned error is only set for problems with the workspace itself.
func (r *Renderer) RenderAll(ctx context.Context) ([]Result, error) {
	if r.config == nil {
		return nil, fmt.Errorf("workspace config is nil")
	}
	charts := r.config.Enabled()
	if len(charts) == 0 {
		return nil, fmt.Errorf("%w: no enabled charts", ErrInvalidWorkspace)
	}

	for _, w := range r.config.Warnings {
		r.logger.Printf("WARNING: %s", w)
	}

	results := make([]Result, len(charts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallel)

	for i, spec := range charts {
		g.Go(func() error {
			results[i] = r.render(ctx, spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	for _, res := range results {
		if res.Err != nil {
			r.logger.Printf("WARNING: chart %q failed: %v", res.Name, res.Err)
		}
	}
	r.logger.Printf("Rendered %d charts", len(charts))
	return results, nil
}

func (r *Renderer) render(ctx context.Context, spec ChartSpec) Result {
	start := time.Now()
	res := Result{
		Name:   spec.GetName(),
		Source: r.config.SourcePath(spec),
		Output: r.config.OutputPath(spec),
	}
	fail := func(err error) Result {
		res.Err = err
		res.Took = time.Since(start)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	cfg, err := spec.ChartConfig(r.base)
	if err != nil {
		return fail(err)
	}
	res.Kind = cfg.Kind

	opts, err := spec.ParseOptions(r.delim)
	if err != nil {
		return fail(err)
	}
	opts.Source = res.Source
	opts.WarningHandler = func(msg string) { r.logger.Printf("%s: %s", res.Name, msg) }

	ds, err := datasource.Load(ctx, res.Source, opts)
	if err != nil {
		return fail(fmt.Errorf("load %s: %w", res.Source, err))
	}
	res.Rows = len(ds.Rows)

	c, err := chart.Build(cfg, ds)
	if err != nil {
		return fail(err)
	}
	format, err := export.FormatFor(res.Output)
	if err != nil {
		return fail(err)
	}

	var run *hooks.Executor
	if !r.noHooks && !r.config.Hooks.Empty() {
		run = hooks.NewExecutor(&hooks.Config{Hooks: r.config.Hooks}, hooks.ExportContext{
			ExportPath:   res.Output,
			ExportFormat: string(format),
			ChartName:    res.Name,
			ChartKind:    string(cfg.Kind),
			RowCount:     res.Rows,
			Timestamp:    start,
		})
		if err := run.RunPreExport(ctx); err != nil {
			return fail(err)
		}
	}
	if err := export.SaveChart(c, res.Output); err != nil {
		return fail(err)
	}
	if run != nil {
		err := run.RunPostExport(ctx)
		if summary := run.Summary(); summary != "" {
			r.logger.Printf("%s: %s", res.Name, strings.TrimRight(summary, "\n"))
		}
		if err != nil {
			return fail(err)
		}
	}
	res.Took = time.Since(start)
	return res
}

// RenderFile loads the workspace at path and renders it.
func RenderFile(ctx context.Context, path string, base chart.Config, logger *log.Logger) ([]Result, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	r := NewRenderer(cfg, base, 0)
	if logger != nil {
		r.SetLogger(logger)
	}
	return r.RenderAll(ctx)
}

// Summary counts render outcomes.
type Summary struct {
	Total       int      `json:"total"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	TotalRows   int      `json:"total_rows"`
	FailedNames []string `json:"failed_names,omitempty"`
	Outputs     []string `json:"outputs,omitempty"`
}

// Summarize returns a summary of results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
			s.FailedNames = append(s.FailedNames, res.Name)
			continue
		}
		s.Succeeded++
		s.TotalRows += res.Rows
		s.Outputs = append(s.Outputs, res.Output)
	}
	return s
}
