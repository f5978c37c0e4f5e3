package ui

import (
	"fmt"
	"image/color"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/model"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// categoryFg keeps the three categories apart even on 16-color terminals,
// where ThemeFg would collapse them to white.
func categoryFg(c model.Category) lipgloss.TerminalColor {
	if TermProfile >= colorprofile.ANSI256 {
		return lipgloss.Color(hex(c.Color()))
	}
	switch c {
	case model.Up:
		return lipgloss.ANSIColor(9)
	case model.Down:
		return lipgloss.ANSIColor(12)
	default:
		return lipgloss.ANSIColor(8)
	}
}

// Theme holds the styles of the chart viewer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Header  lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Tooltip lipgloss.Style
	Axis    lipgloss.Style
	Panel   lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"},
		Muted:     lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
	}

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Status = r.NewStyle().Foreground(t.Subtext)
	t.Error = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Tooltip = r.NewStyle().
		Background(t.Highlight).
		Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})
	t.Axis = r.NewStyle().Foreground(t.Subtext)
	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

// cellStyle maps a canvas cell to a style. A zero ink means "chart chrome"
// (axes, ticks, labels), drawn in the theme's axis colour so it stays
// readable on dark terminals.
func (t Theme) cellStyle(c cellStyle) lipgloss.Style {
	switch c.layer {
	case layerTip:
		return t.Tooltip
	}
	if c.ink == (color.RGBA{}) {
		return t.Axis
	}
	for _, cat := range model.Categories {
		if c.ink == cat.Color() {
			return t.Renderer.NewStyle().Foreground(categoryFg(cat))
		}
	}
	if c.ink == chart.ColorHighlight {
		return t.Renderer.NewStyle().Foreground(ThemeFg(hex(c.ink))).Bold(true)
	}
	return t.Renderer.NewStyle().Foreground(ThemeFg(hex(c.ink)))
}

// CategoryStyle is the foreground style for a category label.
func (t Theme) CategoryStyle(c model.Category) lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(categoryFg(c)).Bold(true)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
