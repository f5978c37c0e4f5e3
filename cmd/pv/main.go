package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/proteoview/internal/datasource"
	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/classify"
	"github.com/vanderheijden86/proteoview/pkg/config"
	"github.com/vanderheijden86/proteoview/pkg/debug"
	"github.com/vanderheijden86/proteoview/pkg/export"
	"github.com/vanderheijden86/proteoview/pkg/hooks"
	"github.com/vanderheijden86/proteoview/pkg/loader"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/ui"
	"github.com/vanderheijden86/proteoview/pkg/venn"
	"github.com/vanderheijden86/proteoview/pkg/version"
	"github.com/vanderheijden86/proteoview/pkg/watcher"
	"github.com/vanderheijden86/proteoview/pkg/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

// options holds the parsed command line. set records which flags were
// given explicitly so that only those override the config file.
type options struct {
	kind, title        string
	x, y, id, details  string
	sig, fold          float64
	delimiter          string
	exportPath         string
	sqlitePath         string
	summary, markdown  bool
	jsonOut            bool
	workspace          string
	compare            string
	configure          bool
	configPath         string
	timings, noBrowser bool
	noHooks            bool
	help, versionFlag  bool
	cpuProfile         string
	set                map[string]bool
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	def := chart.DefaultConfig()
	fs := flag.NewFlagSet("pv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.kind, "kind", string(def.Kind), "Chart kind: volcano|scatter|density|box|venn")
	fs.StringVar(&o.title, "title", "", "Chart title")
	fs.StringVar(&o.x, "x", def.XColumn, "Effect size (x) column: header name or #N")
	fs.StringVar(&o.y, "y", def.YColumn, "Significance (y) column: header name or #N")
	fs.StringVar(&o.id, "id", def.IDColumn, "Identifier column: header name or #N")
	fs.StringVar(&o.details, "details", "", "Comma separated tooltip detail columns")
	fs.Float64Var(&o.sig, "sig", def.Thresholds.Significance, "Significance threshold")
	fs.Float64Var(&o.fold, "fold", def.Thresholds.FoldChange, "Fold change threshold (applied as ±value)")
	fs.StringVar(&o.delimiter, "delimiter", "", `Field delimiter (default: from the extension; \t for tab)`)
	fs.StringVar(&o.exportPath, "export", "", "Write the chart to a .svg, .png or .html file")
	fs.StringVar(&o.sqlitePath, "sqlite", "", "Write classified points to a SQLite database")
	fs.BoolVar(&o.summary, "summary", false, "Print a summary report of the classification")
	fs.BoolVar(&o.markdown, "markdown", false, "Print the summary report as raw markdown")
	fs.BoolVar(&o.jsonOut, "json", false, "Print the chart (or workspace/compare result) as JSON")
	fs.StringVar(&o.workspace, "workspace", "", "Render every chart listed in a workspace YAML file")
	fs.StringVar(&o.compare, "compare", "", "Compare classifications against a second data source")
	fs.BoolVar(&o.configure, "configure", false, "Edit the saved configuration interactively")
	fs.StringVar(&o.configPath, "config", "", "Config file (default: "+config.ConfigPath()+")")
	fs.BoolVar(&o.timings, "timings", false, "Print timing metrics to stderr on exit")
	fs.BoolVar(&o.noBrowser, "no-browser", false, "Never open a browser")
	fs.BoolVar(&o.noHooks, "no-hooks", false, "Skip the export hooks in hooks.yaml")
	fs.BoolVar(&o.versionFlag, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	return fs
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Usage: pv [options] <data-file|URL|db.sqlite> [second-source]")
	fmt.Fprintln(w, "\nInteractive volcano, scatter, density, box and Venn charts for proteomics tables.")
	fmt.Fprintln(w, "Two sources with --kind venn compare their identifier columns.")
	fmt.Fprintln(w)
	out := fs.Output()
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(out)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	// CPU profiling support
	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if o.help {
		usage(fs, stdout)
		return 0
	}
	if o.versionFlag {
		fmt.Fprintf(stdout, "pv %s\n", version.Version)
		return 0
	}

	if o.noBrowser {
		_ = os.Setenv("PV_NO_BROWSER", "1")
	}
	if o.timings {
		metrics.SetEnabled(true)
		defer metrics.WriteReport(stderr)
	}

	cfgPath := o.configPath
	if cfgPath == "" {
		cfgPath = config.ConfigPath()
	}
	saved, cfgErr := loadConfig(cfgPath)
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", cfgErr)
		saved = config.DefaultConfig()
	}
	cfg := saved
	if err := applyOverrides(&cfg, o); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if o.workspace != "" {
		return runWorkspace(ctx, cfg, o, stdout, stderr)
	}

	sources := fs.Args()
	if o.configure {
		return runConfigure(ctx, cfg, cfgPath, sources, stdout, stderr)
	}
	if len(sources) == 0 {
		fmt.Fprintln(stderr, "Error: no data source given")
		usage(fs, stderr)
		return 2
	}
	if len(sources) > 2 || (len(sources) == 2 && cfg.Chart.Kind != chart.KindVenn) {
		fmt.Fprintln(stderr, "Error: only --kind venn takes two sources")
		return 2
	}

	if o.compare != "" {
		return runCompare(ctx, cfg, sources[0], o.compare, o.jsonOut, stdout, stderr)
	}

	c, err := loadChart(ctx, cfg, sources)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if cfgErr == nil && cfgPath != "" {
		rememberSources(saved, cfgPath, sources)
	}

	wrote, err := writeOutputs(ctx, c, o, filepath.Dir(cfgPath), sources, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if wrote {
		return 0
	}

	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		if err := writeJSON(stdout, buildChartOutput(c, strings.Join(sources, ", "))); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runTUI(cfg, o, cfgPath, sources, c); err != nil {
		fmt.Fprintf(stderr, "Error running proteoview: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// applyOverrides copies explicitly given flags onto cfg and validates the
// result.
func applyOverrides(cfg *config.Config, o options) error {
	set := o.set
	if set["kind"] {
		k, err := chart.ParseKind(o.kind)
		if err != nil {
			return err
		}
		cfg.Chart.Kind = k
	}
	if set["title"] {
		cfg.Chart.Title = o.title
	}
	if set["x"] {
		cfg.Chart.XColumn = o.x
	}
	if set["y"] {
		cfg.Chart.YColumn = o.y
	}
	if set["id"] {
		cfg.Chart.IDColumn = o.id
	}
	if set["details"] {
		cfg.Chart.DetailFields = config.SplitList(o.details)
	}
	if set["sig"] {
		cfg.Chart.Thresholds.Significance = o.sig
	}
	if set["fold"] {
		cfg.Chart.Thresholds.FoldChange = o.fold
	}
	if set["delimiter"] {
		cfg.Delimiter = o.delimiter
	}
	return cfg.Validate()
}

// rememberSources records local sources in the saved config's recent list.
// Flag overrides are not persisted.
func rememberSources(saved config.Config, path string, sources []string) {
	changed := false
	for _, src := range sources {
		if loader.IsURL(src) {
			saved.AddRecent(src)
			changed = true
			continue
		}
		if abs, err := filepath.Abs(src); err == nil {
			saved.AddRecent(abs)
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := config.SaveTo(saved, path); err != nil {
		debug.Log("saving recent sources: %v", err)
	}
}

func loadDataset(ctx context.Context, cfg config.Config, src string) (*model.Dataset, error) {
	delim, err := cfg.DelimiterRune()
	if err != nil {
		return nil, err
	}
	if delim == 0 {
		delim = loader.DelimiterFor(src)
	}
	return datasource.Load(ctx, src, loader.ParseOptions{Delimiter: delim, Source: src})
}

func loadDatasets(ctx context.Context, cfg config.Config, sources []string) ([]*model.Dataset, error) {
	datasets := make([]*model.Dataset, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			ds, err := loadDataset(gctx, cfg, src)
			if err != nil {
				return err
			}
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return datasets, nil
}

// loadChart loads every source and builds the configured chart. Two
// sources make a Venn diagram of their identifier columns.
func loadChart(ctx context.Context, cfg config.Config, sources []string) (chart.Chart, error) {
	datasets, err := loadDatasets(ctx, cfg, sources)
	if err != nil {
		return nil, err
	}
	if len(datasets) == 2 {
		return vennFromSources(cfg.Chart, datasets, sources)
	}
	return chart.Build(cfg.Chart, datasets[0])
}

func vennFromSources(cfg chart.Config, datasets []*model.Dataset, sources []string) (chart.Chart, error) {
	var ids [2][]string
	for i, ds := range datasets {
		col, err := ds.ResolveColumn(cfg.IDColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sources[i], err)
		}
		for _, r := range ds.Rows {
			ids[i] = append(ids[i], r.Text(col))
		}
	}
	cmp := venn.Compare(setName(sources[0]), ids[0], setName(sources[1]), ids[1])
	return chart.NewVennFromComparison(cfg, cmp)
}

// setName labels a Venn set after its source file.
func setName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeOutputs handles the file and report flags. It reports whether any
// output was requested. File exports run the hooks found in hooksDir.
func writeOutputs(ctx context.Context, c chart.Chart, o options, hooksDir string, sources []string, stdout, stderr io.Writer) (bool, error) {
	wrote := false
	ectx := hooks.ExportContext{
		ChartName: setName(sources[0]),
		ChartKind: string(c.Kind()),
		RowCount:  rowCount(c),
		Timestamp: time.Now(),
	}

	if o.exportPath != "" {
		format, err := export.FormatFor(o.exportPath)
		if err != nil {
			return wrote, err
		}
		ectx.ExportPath, ectx.ExportFormat = o.exportPath, string(format)
		err = exportWithHooks(ctx, hooksDir, o.noHooks, ectx, stderr, func() error {
			return export.SaveChart(c, o.exportPath)
		})
		if err != nil {
			return wrote, err
		}
		fmt.Fprintf(stderr, "Wrote %s\n", o.exportPath)
		if format == export.FormatHTML {
			if abs, err := filepath.Abs(o.exportPath); err == nil {
				if err := export.OpenInBrowser("file://" + abs); err != nil {
					fmt.Fprintf(stderr, "Warning: could not open browser: %v\n", err)
				}
			}
		}
		wrote = true
	}

	if o.sqlitePath != "" {
		v, ok := c.(*chart.Volcano)
		if !ok {
			return wrote, fmt.Errorf("--sqlite needs a volcano or scatter chart, got %s", c.Kind())
		}
		ectx.ExportPath, ectx.ExportFormat = o.sqlitePath, "sqlite"
		err := exportWithHooks(ctx, hooksDir, o.noHooks, ectx, stderr, func() error {
			return export.NewSQLiteExporter(v).Export(o.sqlitePath)
		})
		if err != nil {
			return wrote, err
		}
		fmt.Fprintf(stderr, "Wrote %s (%d points)\n", o.sqlitePath, len(v.Points()))
		wrote = true
	}

	if o.summary || o.markdown {
		v, ok := c.(*chart.Volcano)
		if !ok {
			return wrote, fmt.Errorf("--summary needs a volcano or scatter chart, got %s", c.Kind())
		}
		md := export.SummaryMarkdown(v, export.DefaultSummaryTop)
		if o.markdown {
			fmt.Fprint(stdout, md)
		} else {
			out, err := export.RenderMarkdown(md, terminalWidth())
			if err != nil {
				return wrote, err
			}
			fmt.Fprint(stdout, out)
		}
		wrote = true
	}

	if o.jsonOut {
		if err := writeJSON(stdout, buildChartOutput(c, strings.Join(sources, ", "))); err != nil {
			return wrote, err
		}
		wrote = true
	}
	return wrote, nil
}

// exportWithHooks runs write between the pre- and post-export hooks.
func exportWithHooks(ctx context.Context, dir string, noHooks bool, ectx hooks.ExportContext, stderr io.Writer, write func() error) error {
	run, err := hooks.RunHooks(dir, ectx, noHooks)
	if err != nil {
		return err
	}
	if run == nil {
		return write()
	}
	if err := run.RunPreExport(ctx); err != nil {
		fmt.Fprint(stderr, run.Summary())
		return err
	}
	if err := write(); err != nil {
		return err
	}
	err = run.RunPostExport(ctx)
	fmt.Fprint(stderr, run.Summary())
	return err
}

func rowCount(c chart.Chart) int {
	if v, ok := c.(*chart.Volcano); ok {
		return v.Dataset().Len()
	}
	return len(c.Scene().Hits)
}

func runWorkspace(ctx context.Context, cfg config.Config, o options, stdout, stderr io.Writer) int {
	ws, err := workspace.LoadConfig(o.workspace)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	delim, _ := cfg.DelimiterRune()
	r := workspace.NewRenderer(ws, cfg.Chart, delim)
	r.SetLogger(log.New(stderr, "", log.LstdFlags))
	if o.noHooks {
		r.DisableHooks()
	}

	results, err := r.RenderAll(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	summary := workspace.Summarize(results)
	if o.jsonOut {
		if err := writeJSON(stdout, summary); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		printWorkspaceResults(stdout, results)
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// runCompare classifies both sources with the same thresholds and reports
// identifiers that disagree. Exits 1 when they do.
func runCompare(ctx context.Context, cfg config.Config, a, b string, asJSON bool, stdout, stderr io.Writer) int {
	datasets, err := loadDatasets(ctx, cfg, []string{a, b})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	sideA, err := sideFor(cfg.Chart, a, datasets[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	sideB, err := sideFor(cfg.Chart, b, datasets[1])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	diff := datasource.DetectInconsistencies(sideA, sideB, datasource.DefaultDiffOptions())
	if asJSON {
		if err := writeJSON(stdout, buildDiffOutput(diff)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintln(stdout, strings.TrimRight(diff.Summary(), "\n"))
	}
	if diff.HasInconsistencies() {
		return 1
	}
	return 0
}

func sideFor(cfg chart.Config, name string, ds *model.Dataset) (datasource.Side, error) {
	var cols [3]string
	for i, ref := range []string{cfg.IDColumn, cfg.XColumn, cfg.YColumn} {
		col, err := ds.ResolveColumn(ref)
		if err != nil {
			return datasource.Side{}, fmt.Errorf("%s: %w", name, err)
		}
		cols[i] = col
	}
	return datasource.Side{
		Name:     name,
		Dataset:  ds,
		IDColumn: cols[0],
		Classifier: classify.Classifier{
			Effect:       cols[1],
			Significance: cols[2],
			Thresholds:   cfg.Thresholds,
		},
	}, nil
}

func runConfigure(ctx context.Context, cfg config.Config, path string, sources []string, stdout, stderr io.Writer) int {
	var columns []string
	if len(sources) > 0 {
		ds, err := loadDataset(ctx, cfg, sources[0])
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v (column names unavailable)\n", err)
		} else {
			columns = ds.Columns
		}
	}

	edited, err := config.NewWizard(cfg, columns).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(stdout, "Cancelled")
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if path == "" {
		fmt.Fprintln(stderr, "Error: cannot determine config directory")
		return 1
	}
	if err := config.SaveTo(edited, path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Saved %s\n", path)
	return 0
}

func runTUI(cfg config.Config, o options, cfgPath string, sources []string, c chart.Chart) error {
	reload := func(ctx context.Context) (chart.Chart, error) {
		fresh := cfg
		if loaded, err := loadConfig(cfgPath); err == nil {
			if err := applyOverrides(&loaded, o); err == nil {
				fresh = loaded
			}
		}
		return loadChart(ctx, fresh, sources)
	}

	var paths []string
	for _, src := range sources {
		if !loader.IsURL(src) {
			paths = append(paths, src)
		}
	}
	if cfgPath != "" {
		paths = append(paths, cfgPath)
	}

	var w *watcher.Watcher
	if len(paths) > 0 {
		var err error
		w, err = watcher.New(paths)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("live reload disabled: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	m := ui.NewModel(c, ui.Options{
		Source:       strings.Join(sources, " ∩ "),
		Reload:       reload,
		Watcher:      w,
		TooltipWidth: cfg.UI.TooltipWidth,
		AnimateReset: cfg.UI.AnimateReset,
	})
	return runTUIProgram(m, cfg.UI.Mouse)
}

func runTUIProgram(m ui.Model, mouse bool) error {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, opts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set PV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("PV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return min(w, 120)
	}
	return 100
}
