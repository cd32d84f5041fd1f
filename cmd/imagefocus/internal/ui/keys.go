package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Previous key.Binding
	Next     key.Binding
	Reset    key.Binding
	Exit     key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	PanLeft  key.Binding
	PanDown  key.Binding
	PanUp    key.Binding
	PanRight key.Binding
	Mouse    key.Binding
	Rotate   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "select up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "select down"),
	),
	Focus: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "focus"),
	),
	Previous: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next"),
	),
	Reset: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "reset"),
	),
	Exit: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "exit"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	PanLeft: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "pan left"),
	),
	PanDown: key.NewBinding(
		key.WithKeys("j"),
		key.WithHelp("j", "pan down"),
	),
	PanUp: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "pan up"),
	),
	PanRight: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "pan right"),
	),
	Mouse: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move mouse"),
	),
	Rotate: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rotate viewport"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Previous, k.Next, k.Exit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus, k.Exit},
		{k.Previous, k.Next, k.Reset, k.Mouse, k.Rotate},
		{k.ZoomIn, k.ZoomOut, k.PanLeft, k.PanDown, k.PanUp, k.PanRight},
		{k.Help, k.Quit},
	}
}
