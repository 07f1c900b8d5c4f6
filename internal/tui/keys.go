package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevWeek key.Binding
	NextWeek key.Binding
	Up       key.Binding
	Down     key.Binding
	NextRole key.Binding
	PrevRole key.Binding
	Today    key.Binding
	Jump     key.Binding
	Reload   key.Binding
	Link     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevWeek: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev week")),
		NextWeek: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next week")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		NextRole: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next role")),
		PrevRole: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev role")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		Jump:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to date")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Link:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "link sales")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevWeek, k.NextWeek, k.NextRole, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevWeek, k.NextWeek, k.Today, k.Jump},
		{k.Up, k.Down, k.NextRole, k.PrevRole},
		{k.Reload, k.Link, k.Help, k.Quit},
	}
}
