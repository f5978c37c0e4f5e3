// Package hooks runs user commands around chart exports.
// Hooks are configured in hooks.yaml next to the pv config file, or in the
// hooks section of a workspace file, and run before and after each export
// is written.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the hooks file looked up by Loader.
const FileName = "hooks.yaml"

// HookPhase represents when a hook runs
type HookPhase string

const (
	// PreExport runs before the export is written. Failure cancels it.
	PreExport HookPhase = "pre-export"
	// PostExport runs after the export is written. Failure is reported but
	// the file stays.
	PostExport HookPhase = "post-export"
)

// OnError values.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// Hook defines a single hook configuration
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"`                       // run by sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`   // default 30s
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`           // values are $-expanded
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"` // "fail" or "continue"
}

// Config holds all hook configurations
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// HooksByPhase organizes hooks by their execution phase
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// Empty reports whether no hook is configured.
func (h HooksByPhase) Empty() bool {
	return len(h.PreExport) == 0 && len(h.PostExport) == 0
}

// ExportContext describes the export; hooks see it as PV_* variables.
type ExportContext struct {
	ExportPath   string    // PV_EXPORT_PATH
	ExportFormat string    // PV_EXPORT_FORMAT: svg, png, html or sqlite
	ChartName    string    // PV_CHART_NAME
	ChartKind    string    // PV_CHART_KIND
	RowCount     int       // PV_ROW_COUNT
	Timestamp    time.Time // PV_TIMESTAMP (RFC3339)
}

// ToEnv converts export context to environment variables
func (c ExportContext) ToEnv() []string {
	return []string{
		"PV_EXPORT_PATH=" + c.ExportPath,
		"PV_EXPORT_FORMAT=" + c.ExportFormat,
		"PV_CHART_NAME=" + c.ChartName,
		"PV_CHART_KIND=" + c.ChartKind,
		fmt.Sprintf("PV_ROW_COUNT=%d", c.RowCount),
		"PV_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// DefaultTimeout is the default hook execution timeout
const DefaultTimeout = 30 * time.Second

// Loader loads hooks.yaml from a directory.
type Loader struct {
	dir      string
	config   *Config
	warnings []string
}

// LoaderOption configures the loader
type LoaderOption func(*Loader)

// WithDir sets the directory holding hooks.yaml (default: current directory).
func WithDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dir = dir
	}
}

// NewLoader creates a new hook loader with options
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.dir == "" {
		l.dir, _ = os.Getwd()
	}
	return l
}

// Path is the file Load reads.
func (l *Loader) Path() string {
	return filepath.Join(l.dir, FileName)
}

// Load reads hooks.yaml. A missing file means no hooks.
func (l *Loader) Load() error {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.config = &Config{}
			return nil
		}
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	config.Hooks, l.warnings = Normalize(config.Hooks)
	l.config = &config
	return nil
}

// Normalize applies defaults and drops hooks without a command, returning
// a warning for each dropped hook.
func Normalize(h HooksByPhase) (HooksByPhase, []string) {
	var warnings []string
	h.PreExport, warnings = normalizeHooks(h.PreExport, PreExport, warnings)
	h.PostExport, warnings = normalizeHooks(h.PostExport, PostExport, warnings)
	return h, warnings
}

func normalizeHooks(hooks []Hook, phase HookPhase, warnings []string) ([]Hook, []string) {
	var out []Hook
	for i, hook := range hooks {
		if strings.TrimSpace(hook.Command) == "" {
			warnings = append(warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if hook.Timeout == 0 {
			hook.Timeout = DefaultTimeout
		}
		if hook.OnError == "" {
			if phase == PreExport {
				hook.OnError = OnErrorFail
			} else {
				hook.OnError = OnErrorContinue
			}
		}
		if hook.Name == "" {
			hook.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, hook)
	}
	return out, warnings
}

// Config returns the loaded configuration (or empty if not loaded)
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks returns true if any hooks are configured
func (l *Loader) HasHooks() bool {
	return l.config != nil && !l.config.Hooks.Empty()
}

// GetHooks returns hooks for a specific phase
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	if l.config == nil {
		return nil
	}
	return l.config.Hooks.forPhase(phase)
}

func (h HooksByPhase) forPhase(phase HookPhase) []Hook {
	switch phase {
	case PreExport:
		return h.PreExport
	case PostExport:
		return h.PostExport
	default:
		return nil
	}
}

// Warnings returns any warnings from loading
func (l *Loader) Warnings() []string {
	return l.warnings
}

// UnmarshalYAML accepts timeouts as durations ("5s") or plain seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	// Must mirror Hook except for Timeout.
	type hookDTO struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout,omitempty"`
		Env     map[string]string `yaml:"env,omitempty"`
		OnError string            `yaml:"on_error,omitempty"`
	}

	var dto hookDTO
	if err := node.Decode(&dto); err != nil {
		return err
	}
	switch dto.OnError {
	case "", OnErrorFail, OnErrorContinue:
	default:
		return fmt.Errorf("hook %q: on_error must be %q or %q, got %q", dto.Name, OnErrorFail, OnErrorContinue, dto.OnError)
	}

	*h = Hook{Name: dto.Name, Command: dto.Command, Env: dto.Env, OnError: dto.OnError}
	if dto.Timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(dto.Timeout)
	if err == nil {
		h.Timeout = d
		return nil
	}
	var seconds float64
	if _, scanErr := fmt.Sscanf(dto.Timeout, "%f", &seconds); scanErr != nil {
		return fmt.Errorf("invalid timeout %q: %w", dto.Timeout, err)
	}
	h.Timeout = time.Duration(seconds * float64(time.Second))
	return nil
}
