// Package config handles loading and saving pv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/proteoview/config.yaml
//   - State:   ~/.local/state/proteoview/ (recent files)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/proteoview/pkg/chart"
)

const appDir = "proteoview"

// maxRecent bounds the recent file list.
const maxRecent = 10

// Chart is the per-chart configuration: thresholds, column references,
// layout and zoom extents.
type Chart = chart.Config

// UIConfig holds terminal viewer preferences.
type UIConfig struct {
	Mouse        bool `yaml:"mouse"`
	TooltipWidth int  `yaml:"tooltip_width,omitempty"`
	// AnimateReset plays the reset transition instead of jumping.
	AnimateReset bool `yaml:"animate_reset"`
}

// Config is the top-level configuration for pv.
type Config struct {
	Chart     Chart    `yaml:"chart"`
	Delimiter string   `yaml:"delimiter,omitempty"` // forces the field separator; "\t" for tab
	UI        UIConfig `yaml:"ui,omitempty"`
	Recent    []string `yaml:"recent,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Chart: chart.DefaultConfig(),
		UI: UIConfig{
			Mouse:        true,
			TooltipWidth: 40,
			AnimateReset: true,
		},
	}
}

// ConfigDir returns the XDG config directory for pv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDir)
}

// StateDir returns the XDG state directory for pv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appDir)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file
// keep their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Recent {
		cfg.Recent[i] = ExpandHome(cfg.Recent[i])
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks the chart section and the delimiter.
func (c Config) Validate() error {
	if err := c.Chart.Validate(); err != nil {
		return err
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the forced delimiter, or 0 when the extension
// decides. The two-character escape `\t` is accepted for tab.
func (c Config) DelimiterRune() (rune, error) {
	return ParseDelimiter(c.Delimiter)
}

// ParseDelimiter accepts a single character, `\t`, or the names "tab" and
// "comma".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '\n' || r == '\r' || r == '"' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// AddRecent moves path to the front of the recent list.
func (c *Config) AddRecent(path string) {
	if path == "" {
		return
	}
	out := []string{path}
	for _, p := range c.Recent {
		if p != path && len(out) < maxRecent {
			out = append(out, p)
		}
	}
	c.Recent = out
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
