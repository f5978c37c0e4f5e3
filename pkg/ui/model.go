// Package ui is the terminal chart viewer: a braille rendering of the chart
// scene with mouse and keyboard zoom, hover tooltips and click-through to
// the protein record.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/proteoview/pkg/chart"
	"github.com/vanderheijden86/proteoview/pkg/debug"
	"github.com/vanderheijden86/proteoview/pkg/export"
	"github.com/vanderheijden86/proteoview/pkg/metrics"
	"github.com/vanderheijden86/proteoview/pkg/model"
	"github.com/vanderheijden86/proteoview/pkg/tooltip"
	"github.com/vanderheijden86/proteoview/pkg/watcher"
	"github.com/vanderheijden86/proteoview/pkg/zoom"
)

const (
	defaultWidth  = 100
	defaultHeight = 32

	// panFraction of the plot area is moved per pan key press.
	panFraction = 0.1
	// keyZoomFactor is applied per zoom key press.
	keyZoomFactor = 1.5
	// wheelDelta is the pixel delta a browser reports for one wheel notch.
	wheelDelta = 100

	resetFrame = 16 * time.Millisecond
)

// Options configures the viewer.
type Options struct {
	// Source is shown in the header.
	Source string
	// Reload rebuilds the chart from its source. Nil disables reloading.
	Reload func(ctx context.Context) (chart.Chart, error)
	// Watcher triggers Reload when the source changes.
	Watcher *watcher.Watcher
	// TooltipWidth caps the tooltip width in cells.
	TooltipWidth int
	// AnimateReset eases back to the unzoomed view instead of jumping.
	AnimateReset bool
	// Open opens a record URL. Defaults to export.OpenInBrowser.
	Open func(url string) error
	// Copy writes to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(text string) error
}

// FileChangedMsg is sent when the watcher reports a change.
type FileChangedMsg struct {
	Event watcher.Event
}

// ChartReloadedMsg carries the result of a reload.
type ChartReloadedMsg struct {
	Chart chart.Chart
	Err   error
}

type resetTickMsg struct{ now time.Time }

type statusMsg struct {
	text string
	err  bool
}

type drag struct {
	active, moved bool
	x, y          float64
}

// Model is the Bubble Tea model for the chart viewer.
type Model struct {
	chart chart.Chart
	scene *chart.Scene
	opts  Options

	theme Theme
	keys  keyMap
	help  help.Model

	width, height int

	hover    int // index into scene.Hits, -1 for none
	selected int // Hit.Index of the keyboard selection, -1 for none
	tip      tooltip.State
	drag     drag

	searching bool
	search    textinput.Model

	showSummary bool
	summary     viewport.Model

	status    string
	statusErr bool
}

// NewModel creates a viewer for c.
func NewModel(c chart.Chart, opts Options) Model {
	if opts.TooltipWidth <= 0 {
		opts.TooltipWidth = 40
	}
	if opts.Open == nil {
		opts.Open = export.OpenInBrowser
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Placeholder = "protein id"
	ti.Prompt = "/ "
	ti.CharLimit = 128

	m := Model{
		chart:    c,
		opts:     opts,
		theme:    DefaultTheme(lipgloss.DefaultRenderer()),
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    defaultWidth,
		height:   defaultHeight,
		hover:    -1,
		selected: -1,
		search:   ti,
		summary:  viewport.New(defaultWidth, defaultHeight-2),
	}
	m.redraw()
	return m
}

// Init starts watching the source when a watcher is configured.
func (m Model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return WatchFileCmd(m.opts.Watcher)
	}
	return nil
}

// WatchFileCmd waits for the next change and sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		return FileChangedMsg{Event: <-w.Events()}
	}
}

func reloadCmd(reload func(context.Context) (chart.Chart, error)) tea.Cmd {
	return func() tea.Msg {
		c, err := reload(context.Background())
		return ChartReloadedMsg{Chart: c, Err: err}
	}
}

func resetTickCmd() tea.Cmd {
	return tea.Tick(resetFrame, func(t time.Time) tea.Msg { return resetTickMsg{now: t} })
}

// Chart returns the chart being shown.
func (m Model) Chart() chart.Chart { return m.chart }

// Status returns the status line message.
func (m Model) Status() string { return m.status }

// Tooltip returns the current tooltip.
func (m Model) Tooltip() tooltip.State { return m.tip }

func (m *Model) redraw() {
	m.scene = m.chart.Scene()
	if m.hover >= len(m.scene.Hits) {
		m.hover = -1
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.summary.Width = msg.Width
		m.summary.Height = max(msg.Height-2, 1)
		if m.showSummary {
			m.loadSummary()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.showSummary {
			var cmd tea.Cmd
			m.summary, cmd = m.summary.Update(msg)
			return m, cmd
		}
		return m.handleMouse(msg), nil

	case resetTickMsg:
		ctrl := m.chart.Controller()
		if ctrl == nil {
			return m, nil
		}
		done := ctrl.Step(msg.now)
		m.redraw()
		m.refreshTip()
		if done {
			return m, nil
		}
		return m, resetTickCmd()

	case FileChangedMsg:
		var next tea.Cmd
		if m.opts.Watcher != nil {
			next = WatchFileCmd(m.opts.Watcher)
		}
		if msg.Event.Err != nil {
			m.setStatus(fmt.Sprintf("%s: %v", msg.Event.Path, msg.Event.Err), true)
			return m, next
		}
		if m.opts.Reload == nil {
			return m, next
		}
		m.setStatus("Reloading…", false)
		return m, tea.Batch(next, reloadCmd(m.opts.Reload))

	case ChartReloadedMsg:
		if msg.Err != nil {
			m.setStatus("Reload failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.swapChart(msg.Chart)
		m.setStatus("Reloaded", false)
		return m, nil

	case statusMsg:
		m.setStatus(msg.text, msg.err)
		return m, nil
	}
	return m, nil
}

// swapChart replaces the chart, carrying the zoom over when the new chart
// can zoom.
func (m *Model) swapChart(c chart.Chart) {
	if old, next := m.chart.Controller(), c.Controller(); old != nil && next != nil && old.State() == zoom.StateTransformed {
		next.SetTransform(old.Transform())
	}
	m.chart = c
	m.hover = -1
	m.tip.Leave()
	m.redraw()
	m.refreshTip()
	if m.showSummary {
		m.loadSummary()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.showSummary {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Summary), msg.String() == "esc":
			m.showSummary = false
			return m, nil
		}
		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)
		return m, cmd
	}

	ctrl := m.chart.Controller()
	cfg := m.chart.Config()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case msg.String() == "esc":
		m.selected = -1
		m.tip.Leave()
		m.help.ShowAll = false

	case key.Matches(msg, m.keys.ZoomIn), key.Matches(msg, m.keys.ZoomOut):
		if ctrl == nil {
			break
		}
		f := keyZoomFactor
		if key.Matches(msg, m.keys.ZoomOut) {
			f = 1 / f
		}
		ctrl.ZoomCenter(f)
		m.redraw()
		m.refreshTip()

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right),
		key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		if ctrl == nil {
			break
		}
		dx, dy := panFraction*cfg.InnerWidth(), panFraction*cfg.InnerHeight()
		switch {
		case key.Matches(msg, m.keys.Left):
			ctrl.Pan(dx, 0)
		case key.Matches(msg, m.keys.Right):
			ctrl.Pan(-dx, 0)
		case key.Matches(msg, m.keys.Up):
			ctrl.Pan(0, dy)
		default:
			ctrl.Pan(0, -dy)
		}
		m.redraw()
		m.refreshTip()

	case key.Matches(msg, m.keys.Reset):
		if ctrl == nil {
			break
		}
		if !m.opts.AnimateReset {
			ctrl.ResetNow()
			m.redraw()
			m.refreshTip()
			break
		}
		ctrl.Reset(time.Now())
		m.redraw()
		if ctrl.Animating() {
			return m, resetTickCmd()
		}

	case key.Matches(msg, m.keys.Next):
		m.step(1)
	case key.Matches(msg, m.keys.Prev):
		m.step(-1)

	case key.Matches(msg, m.keys.Open):
		if h, ok := m.target(); ok && h.Link != "" {
			return m, m.openCmd(h.Link)
		}
		m.setStatus("Nothing selected", false)

	case key.Matches(msg, m.keys.Copy), key.Matches(msg, m.keys.CopyLink):
		h, ok := m.target()
		if !ok || len(h.Fields) == 0 {
			m.setStatus("Nothing selected", false)
			break
		}
		text := h.Fields[0].Value
		if key.Matches(msg, m.keys.CopyLink) {
			text = h.Link
		}
		if err := m.opts.Copy(text); err != nil {
			m.setStatus("Clipboard error: "+err.Error(), true)
		} else {
			m.setStatus("Copied "+text, false)
		}

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue("")
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Summary):
		if _, ok := m.chart.(*chart.Volcano); !ok {
			m.setStatus("Summary is available for volcano and scatter charts", false)
			break
		}
		m.showSummary = true
		m.loadSummary()

	case key.Matches(msg, m.keys.Reload):
		if m.opts.Reload == nil {
			m.setStatus("Reload is not available", false)
			break
		}
		m.setStatus("Reloading…", false)
		return m, reloadCmd(m.opts.Reload)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		m.find(m.search.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// find selects the first target whose identifier matches q: an exact
// (case-insensitive) match wins over a substring match. When nothing in
// view matches, the zoom is reset and the search repeated.
func (m *Model) find(q string) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return
	}
	i := m.match(q)
	if i < 0 {
		if ctrl := m.chart.Controller(); ctrl != nil && ctrl.State() == zoom.StateTransformed {
			ctrl.ResetNow()
			m.redraw()
			i = m.match(q)
		}
	}
	if i < 0 {
		m.setStatus(fmt.Sprintf("No match for %q", q), true)
		return
	}
	m.selectHit(i)
}

func (m *Model) match(q string) int {
	partial := -1
	for i, h := range m.scene.Hits {
		if len(h.Fields) == 0 {
			continue
		}
		id := strings.ToLower(h.Fields[0].Value)
		if id == q {
			return i
		}
		if partial < 0 && strings.Contains(id, q) {
			partial = i
		}
	}
	return partial
}

// step moves the keyboard selection through the targets in view.
func (m *Model) step(dir int) {
	n := len(m.scene.Hits)
	if n == 0 {
		return
	}
	cur := m.selectedHit()
	next := 0
	switch {
	case cur >= 0:
		next = (cur + dir + n) % n
	case dir < 0:
		next = n - 1
	}
	m.selectHit(next)
}

func (m *Model) selectHit(i int) {
	h := m.scene.Hits[i]
	m.selected = h.Index
	x, y := h.Anchor()
	m.tip.Enter(h.Fields, x, y)
	if len(h.Fields) > 0 {
		m.setStatus("Selected "+h.Fields[0].Value, false)
	}
}

// selectedHit returns the index into scene.Hits of the selection, or -1.
func (m Model) selectedHit() int {
	if m.selected < 0 {
		return -1
	}
	for i, h := range m.scene.Hits {
		if h.Index == m.selected {
			return i
		}
	}
	return -1
}

// target is what open and copy act on: the hovered target, else the
// keyboard selection.
func (m Model) target() (chart.Hit, bool) {
	if m.hover >= 0 && m.hover < len(m.scene.Hits) {
		return m.scene.Hits[m.hover], true
	}
	if i := m.selectedHit(); i >= 0 {
		return m.scene.Hits[i], true
	}
	return chart.Hit{}, false
}

// refreshTip keeps the keyboard tooltip attached to its point after the
// view changes, and hides it when the point leaves the plot area.
func (m *Model) refreshTip() {
	if m.hover >= 0 {
		return
	}
	i := m.selectedHit()
	if i < 0 {
		m.tip.Leave()
		return
	}
	h := m.scene.Hits[i]
	x, y := h.Anchor()
	m.tip.Enter(h.Fields, x, y)
}

func (m Model) openCmd(link string) tea.Cmd {
	open := m.opts.Open
	return func() tea.Msg {
		if err := open(link); err != nil {
			return statusMsg{text: "Open failed: " + err.Error(), err: true}
		}
		return statusMsg{text: "Opened " + link}
	}
}

func (m *Model) loadSummary() {
	v, ok := m.chart.(*chart.Volcano)
	if !ok {
		return
	}
	md := export.SummaryMarkdown(v, export.DefaultSummaryTop)
	out, err := export.RenderMarkdown(md, m.summary.Width)
	if err != nil {
		debug.Log("ui: render summary: %v", err)
		out = md
	}
	m.summary.SetContent(out)
}

// Layout.

const headerHeight = 1

func (m Model) helpView() string {
	return m.help.View(m.keys)
}

func (m Model) canvasRows() int {
	footer := 1 + lipgloss.Height(m.helpView())
	return max(m.height-headerHeight-footer, 1)
}

func (m Model) layout() Viewport {
	return Viewport{SceneW: m.scene.Width, SceneH: m.scene.Height, Cols: max(m.width, 1), Rows: m.canvasRows()}
}

// hitSlop is how far from a marker, in scene pixels, the pointer still
// counts as over it: about half a cell.
func (m Model) hitSlop() float64 {
	vp := m.layout()
	return max(vp.CellWidth(), vp.CellHeight()) * 0.6
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	vp := m.layout()
	col, row := msg.X, msg.Y-headerHeight
	inside := row >= 0 && row < vp.Rows && col >= 0 && col < vp.Cols
	sx, sy := vp.Scene(col, row)
	ctrl := m.chart.Controller()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			if ctrl == nil || !inside {
				return m
			}
			delta := float64(-wheelDelta)
			if msg.Button == tea.MouseButtonWheelDown {
				delta = wheelDelta
			}
			ctrl.ZoomAt(zoom.WheelFactor(delta), chart.PlotPoint(m.chart, sx, sy))
			m.redraw()
			m.hoverAt(sx, sy, inside)
		case tea.MouseButtonLeft:
			if inside {
				m.drag = drag{active: true, x: sx, y: sy}
			}
		}

	case tea.MouseActionMotion:
		if m.drag.active && ctrl != nil {
			ctrl.Pan(sx-m.drag.x, sy-m.drag.y)
			m.drag.x, m.drag.y, m.drag.moved = sx, sy, true
			m.redraw()
			m.refreshTip()
			return m
		}
		m.hoverAt(sx, sy, inside)

	case tea.MouseActionRelease:
		wasClick := m.drag.active && !m.drag.moved
		m.drag = drag{}
		if !wasClick || !inside {
			return m
		}
		if i := m.scene.HitTest(sx, sy, m.hitSlop()); i >= 0 {
			h := m.scene.Hits[i]
			m.selected = h.Index
			if h.Link != "" {
				if err := m.opts.Open(h.Link); err != nil {
					m.setStatus("Open failed: "+err.Error(), true)
				} else {
					m.setStatus("Opened "+h.Link, false)
				}
			}
		}
	}
	return m
}

func (m *Model) hoverAt(sx, sy float64, inside bool) {
	i := -1
	if inside {
		i = m.scene.HitTest(sx, sy, m.hitSlop())
	}
	switch {
	case i < 0:
		if m.hover >= 0 {
			m.hover = -1
			m.tip.Leave()
			m.refreshTip()
		}
	case i != m.hover:
		m.hover = i
		m.tip.Enter(m.scene.Hits[i].Fields, sx, sy)
	default:
		m.tip.Move(sx, sy)
	}
}

// View renders the viewer.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	if m.showSummary {
		b.WriteString(m.summary.View())
		b.WriteByte('\n')
		b.WriteString(m.theme.Status.Render("s/esc: back to chart · ↑/↓: scroll"))
		return b.String()
	}
	b.WriteString(m.chartView())
	b.WriteByte('\n')
	b.WriteString(m.statusView())
	b.WriteByte('\n')
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) headerView() string {
	cfg := m.chart.Config()
	title := cfg.Title
	if title == "" {
		title = string(cfg.Kind)
	}
	left := m.theme.Header.Render("proteoview · " + title)
	right := ""
	if m.opts.Source != "" {
		right = m.opts.Source
	}
	if ctrl := m.chart.Controller(); ctrl != nil {
		t := ctrl.Transform()
		right = strings.TrimSpace(fmt.Sprintf("%s  ×%.2f", right, t.K))
	}
	gap := m.width - lipgloss.Width(left) - 1
	if gap <= 0 {
		return left
	}
	return left + " " + m.theme.Status.Render(padLeft(truncate(right, gap), gap))
}

func (m Model) chartView() string {
	vp := m.layout()
	canvas, _ := Rasterize(m.scene, vp.Cols, vp.Rows)

	if i := m.selectedHit(); i >= 0 {
		x, y := m.scene.Hits[i].Anchor()
		dx, dy := vp.dotsX(x), vp.dotsY(y)
		for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {0, 0}} {
			canvas.Set(dx+d[0], dy+d[1], chart.ColorHighlight)
		}
	}
	if m.tip.Visible && len(m.tip.Fields) > 0 {
		col, row := vp.Cell(m.tip.X, m.tip.Y)
		canvas.Box(col, row, tooltipLines(m.tip.Fields, m.opts.TooltipWidth))
	}
	return canvas.Render(m.theme)
}

func tooltipLines(fields []tooltip.Field, width int) []string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, " "+truncate(f.Label+": "+f.Value, width-2)+" ")
	}
	return lines
}

func (m Model) statusView() string {
	if m.searching {
		return m.search.View()
	}
	if m.status != "" {
		if m.statusErr {
			return m.theme.Error.Render(truncate(m.status, m.width))
		}
		return m.theme.Status.Render(truncate(m.status, m.width))
	}
	return m.legendView()
}

// legendView lists category counts for classified charts.
func (m Model) legendView() string {
	v, ok := m.chart.(*chart.Volcano)
	if !ok || !v.Classified() {
		return ""
	}
	counts := v.Counts()
	parts := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		parts = append(parts, m.theme.CategoryStyle(c).Render("●")+" "+fmt.Sprintf("%s %d", c.Label(), counts[c]))
	}
	return strings.Join(parts, "   ")
}
