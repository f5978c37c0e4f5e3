// Package workspace renders a batch of charts described in one YAML file.
//
// A workspace file looks like:
//
//	output_dir: out
//	charts:
//	  - name: saliva
//	    source: data/saliva.csv
//	    output: saliva.svg
//	  - source: https://example.org/plasma.tsv
//	    kind: scatter
//	    output: plasma.html
//	    chart:
//	      significance_threshold: 0.01
//	      classify: true
//	hooks:
//	  post-export:
//	    - command: cp "$PV_EXPORT_PATH" /srv/figures/
//
// Relative sources and outputs resolve against the directory holding the
// workspace file (outputs against output_dir when set).
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/config"
	"github.com/vanderheijden86/proteoview/pkg/hooks"
	"github.com/vanderheijden86/proteoview/pkg/loader"
)

// ErrInvalidWorkspace wraps every validation failure.
var ErrInvalidWorkspace = errors.New("invalid workspace")

// Config is the parsed workspace file.
type Config struct {
	OutputDir string      `yaml:"output_dir,omitempty"`
	Charts    []ChartSpec `yaml:"charts"`
	// Hooks run around every chart's export.
	Hooks hooks.HooksByPhase `yaml:"hooks,omitempty"`

	// Warnings collects problems that did not invalidate the file.
	Warnings []string `yaml:"-"`

	// dir is the directory of the file the config was read from.
	dir string
}

// ChartSpec is one chart to render.
type ChartSpec struct {
	Name      string `yaml:"name,omitempty"`
	Source    string `yaml:"source"`
	Kind      string `yaml:"kind,omitempty"`
	Output    string `yaml:"output"`
	Delimiter string `yaml:"delimiter,omitempty"`
	Enabled   *bool  `yaml:"enabled,omitempty"`

	// Chart holds overrides applied on top of the base chart config.
	Chart yaml.Node `yaml:"chart,omitempty"`
}

// IsEnabled reports whether the chart should be rendered (default true).
func (c ChartSpec) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// GetName returns the explicit name, or the output file name without its
// extension.
func (c ChartSpec) GetName() string {
	if c.Name != "" {
		return c.Name
	}
	base := filepath.Base(c.Output)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ChartConfig returns base with the spec's kind and overrides applied, and
// validates the result.
func (c ChartSpec) ChartConfig(base chart.Config) (chart.Config, error) {
	cfg := base
	if c.Chart.Kind != 0 {
		if err := c.Chart.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("chart %q: decode overrides: %w", c.GetName(), err)
		}
	}
	if c.Kind != "" {
		kind, err := chart.ParseKind(c.Kind)
		if err != nil {
			return cfg, fmt.Errorf("chart %q: %w", c.GetName(), err)
		}
		cfg.Kind = kind
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("chart %q: %w", c.GetName(), err)
	}
	return cfg, nil
}

// ParseOptions returns the loader options for the chart's source.
func (c ChartSpec) ParseOptions(fallback rune) (loader.ParseOptions, error) {
	opts := loader.ParseOptions{Delimiter: fallback, Source: c.Source}
	if c.Delimiter != "" {
		r, err := config.ParseDelimiter(c.Delimiter)
		if err != nil {
			return opts, fmt.Errorf("chart %q: %w", c.GetName(), err)
		}
		opts.Delimiter = r
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = loader.DelimiterFor(c.Source)
	}
	return opts, nil
}

// LoadConfig reads and validates a workspace file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(abs)
	return cfg, nil
}

// ParseConfig parses workspace YAML. Paths stay relative to the working
// directory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkspace, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Hooks, cfg.Warnings = hooks.Normalize(cfg.Hooks)
	return &cfg, nil
}

// Validate checks that every chart has a source and an output and that
// names and outputs are unique.
func (c *Config) Validate() error {
	if len(c.Charts) == 0 {
		return fmt.Errorf("%w: no charts", ErrInvalidWorkspace)
	}
	var problems []string
	names := map[string]int{}
	outputs := map[string]int{}
	for i, ch := range c.Charts {
		label := fmt.Sprintf("charts[%d]", i)
		if ch.Source == "" {
			problems = append(problems, label+": source is required")
		}
		if ch.Output == "" {
			problems = append(problems, label+": output is required")
			continue
		}
		name := ch.GetName()
		if j, dup := names[name]; dup {
			problems = append(problems, fmt.Sprintf("%s: name %q already used by charts[%d]", label, name, j))
		}
		names[name] = i
		out := filepath.Clean(ch.Output)
		if j, dup := outputs[out]; dup {
			problems = append(problems, fmt.Sprintf("%s: output %q already used by charts[%d]", label, ch.Output, j))
		}
		outputs[out] = i
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidWorkspace, strings.Join(problems, "; "))
	}
	return nil
}

// Dir is the directory relative paths resolve against.
func (c *Config) Dir() string { return c.dir }

// SourcePath resolves a chart source. URLs are returned unchanged.
func (c *Config) SourcePath(ch ChartSpec) string {
	if loader.IsURL(ch.Source) {
		return ch.Source
	}
	return c.resolve(config.ExpandHome(ch.Source))
}

// OutputPath resolves a chart output against output_dir.
func (c *Config) OutputPath(ch ChartSpec) string {
	out := config.ExpandHome(ch.Output)
	if filepath.IsAbs(out) {
		return out
	}
	if c.OutputDir != "" {
		return filepath.Join(c.resolve(config.ExpandHome(c.OutputDir)), out)
	}
	return c.resolve(out)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Enabled returns the charts to render, in file order.
func (c *Config) Enabled() []ChartSpec {
	var out []ChartSpec
	for _, ch := range c.Charts {
		if ch.IsEnabled() {
			out = append(out, ch)
		}
	}
	return out
}
