package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	Reset    key.Binding
	Next     key.Binding
	Prev     key.Binding
	Open     key.Binding
	Copy     key.Binding
	CopyLink key.Binding
	Search   key.Binding
	Summary  key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "pan left")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "pan right")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "pan up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "pan down")),
		Reset:    key.NewBinding(key.WithKeys("r", "0"), key.WithHelp("r", "reset zoom")),
		Next:     key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next point")),
		Prev:     key.NewBinding(key.WithKeys("N", "shift+tab"), key.WithHelp("N", "previous point")),
		Open:     key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open record")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		CopyLink: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy link")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find id")),
		Summary:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summary")),
		Reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Reset, k.Next, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Reset},
		{k.Left, k.Right, k.Up, k.Down},
		{k.Next, k.Prev, k.Search, k.Open},
		{k.Copy, k.CopyLink, k.Summary, k.Reload},
		{k.Help, k.Quit},
	}
}
