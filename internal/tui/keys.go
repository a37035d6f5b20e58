package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevTab   key.Binding
	NextTab   key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Edit      key.Binding
	Discard   key.Binding
	Stage     key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PrevTab:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous tab")),
		NextTab:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next tab")),
		PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous month")),
		NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		Edit:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "check-in form")),
		Discard:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "discard draft")),
		Stage:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle stage")),
		Refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "re-ask advisor")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevMonth, k.NextMonth, k.Edit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	tabs := key.NewBinding(key.WithKeys("o", "h", "r", "s", "a"), key.WithHelp("o h r s a", "jump to tab"))
	return [][]key.Binding{
		{tabs, k.PrevTab, k.NextTab, k.PrevMonth, k.NextMonth},
		{k.Edit, k.Discard, k.Stage, k.Refresh, k.Help, k.Quit},
	}
}
