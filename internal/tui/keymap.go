package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the terminal UI. It implements
// help.KeyMap.
type KeyMap struct {
	Eval        key.Binding
	Compare     key.Binding
	NextBackend key.Binding
	Clear       key.Binding
	HistoryPrev key.Binding
	HistoryNext key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Eval: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "evaluate"),
		),
		Compare: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "compare backends"),
		),
		NextBackend: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next backend"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		HistoryPrev: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous input"),
		),
		HistoryNext: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next input"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Eval, k.Compare, k.NextBackend, k.Clear, k.Quit}
}

// FullHelp returns all bindings grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Eval, k.Compare, k.NextBackend},
		{k.HistoryPrev, k.HistoryNext, k.ScrollUp, k.ScrollDown},
		{k.Clear, k.Quit},
	}
}
