package cli

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Expand   key.Binding
	Search   key.Binding
	Type     key.Binding
	Export   key.Binding
	Import   key.Binding
	Help     key.Binding
	Quit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "check")),
		Expand:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Type:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "type")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Import:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Expand, k.Search, k.Type, k.Export, k.Import, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Toggle, k.Expand},
		{k.Search, k.Type},
		{k.Export, k.Import},
		{k.Help, k.Quit},
	}
}
