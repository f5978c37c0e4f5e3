package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/proteoview/pkg/chart"
)

// Wizard edits a Config interactively with a huh form.
type Wizard struct {
	cfg     Config
	columns []string
}

// NewWizard starts from cfg. When columns is non-empty (the header of the
// file pv was pointed at) column prompts become pick lists.
func NewWizard(cfg Config, columns []string) *Wizard {
	return &Wizard{cfg: cfg, columns: columns}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// answers holds the form fields as text so huh inputs can bind to them.
type answers struct {
	Kind       string
	XColumn    string
	YColumn    string
	IDColumn   string
	Details    string
	Sig        string
	Fold       string
	RecordBase string
	Delimiter  string
	Mouse      bool
}

func answersFrom(cfg Config) answers {
	return answers{
		Kind:       string(cfg.Chart.Kind),
		XColumn:    cfg.Chart.XColumn,
		YColumn:    cfg.Chart.YColumn,
		IDColumn:   cfg.Chart.IDColumn,
		Details:    strings.Join(cfg.Chart.DetailFields, ","),
		Sig:        strconv.FormatFloat(cfg.Chart.Thresholds.Significance, 'g', -1, 64),
		Fold:       strconv.FormatFloat(cfg.Chart.Thresholds.FoldChange, 'g', -1, 64),
		RecordBase: cfg.Chart.RecordBase,
		Delimiter:  cfg.Delimiter,
		Mouse:      cfg.UI.Mouse,
	}
}

// apply copies the answers onto cfg and validates the result.
func (a answers) apply(cfg Config) (Config, error) {
	kind, err := chart.ParseKind(a.Kind)
	if err != nil {
		return cfg, err
	}
	sig, err := parseFloat(a.Sig)
	if err != nil {
		return cfg, fmt.Errorf("significance threshold: %w", err)
	}
	fold, err := parseFloat(a.Fold)
	if err != nil {
		return cfg, fmt.Errorf("fold change threshold: %w", err)
	}

	cfg.Chart.Kind = kind
	cfg.Chart.XColumn = strings.TrimSpace(a.XColumn)
	cfg.Chart.YColumn = strings.TrimSpace(a.YColumn)
	cfg.Chart.IDColumn = strings.TrimSpace(a.IDColumn)
	cfg.Chart.DetailFields = SplitList(a.Details)
	cfg.Chart.Thresholds.Significance = sig
	cfg.Chart.Thresholds.FoldChange = fold
	cfg.Chart.RecordBase = strings.TrimSpace(a.RecordBase)
	cfg.Delimiter = a.Delimiter
	cfg.UI.Mouse = a.Mouse
	return cfg, cfg.Validate()
}

// Run shows the form and returns the edited config. The wizard's own
// config is left unchanged when the user aborts or the answers are invalid.
func (w *Wizard) Run() (Config, error) {
	a := answersFrom(w.cfg)

	kinds := make([]string, len(chart.Kinds))
	for i, k := range chart.Kinds {
		kinds[i] = string(k)
	}

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Chart kind").
				Options(huh.NewOptions(kinds...)...).
				Value(&a.Kind),
			w.columnField("Effect size column (x)", &a.XColumn),
			w.columnField("Significance column (y)", &a.YColumn),
			w.columnField("Identifier column", &a.IDColumn),
			huh.NewInput().
				Title("Tooltip detail columns").
				Description("Comma separated, shown after the identifier").
				Value(&a.Details),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Significance threshold").
				Description("Points at or below are not significant").
				Value(&a.Sig).
				Validate(validateFloat),
			huh.NewInput().
				Title("Fold change threshold").
				Description("Applied symmetrically as ±value").
				Value(&a.Fold).
				Validate(validateFloat),
			huh.NewInput().
				Title("Record base URL").
				Description("Clicking a point opens this URL plus the identifier").
				Value(&a.RecordBase),
			huh.NewInput().
				Title("Delimiter").
				Description(`Empty to infer from the extension, \t for tab`).
				Value(&a.Delimiter).
				Validate(func(s string) error {
					_, err := ParseDelimiter(s)
					return err
				}),
			huh.NewConfirm().
				Title("Enable mouse in the terminal viewer?").
				Value(&a.Mouse),
		),
	)

	if err := form.Run(); err != nil {
		return w.cfg, err
	}
	cfg, err := a.apply(w.cfg)
	if err != nil {
		return w.cfg, err
	}
	w.cfg = cfg
	return cfg, nil
}

func (w *Wizard) columnField(title string, value *string) huh.Field {
	if len(w.columns) == 0 {
		return huh.NewInput().
			Title(title).
			Description(`Header name, or #N for the N-th column (0-based)`).
			Value(value)
	}
	opts := huh.NewOptions(w.columns...)
	return huh.NewSelect[string]().Title(title).Options(opts...).Value(value)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func validateFloat(s string) error {
	if _, err := parseFloat(s); err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	return nil
}

// SplitList splits a comma separated flag or form value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
