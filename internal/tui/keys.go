package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of both review screens.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Skip       key.Binding
	Cancel     key.Binding
	ToggleAll  key.Binding
	SwitchPane key.Binding
	Remove     key.Binding
	RemoveAll  key.Binding
	Reset      key.Binding
	Commit     key.Binding
	Help       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "pause review"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all languages"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "remove"),
		),
		RemoveAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "remove all"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Commit: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

type chooseKeys struct{ KeyMap }

func (k chooseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Skip, k.ToggleAll, k.Cancel, k.Help}
}

func (k chooseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Select}, {k.Skip, k.ToggleAll, k.Cancel}}
}

type editKeys struct{ KeyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Remove, k.SwitchPane, k.Commit, k.Cancel, k.Help}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.SwitchPane},
		{k.Select, k.Remove, k.RemoveAll, k.Reset},
		{k.ToggleAll, k.Commit, k.Cancel},
	}
}
