package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Filter   key.Binding
	Sort     key.Binding
	PrevCol  key.Binding
	NextCol  key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Open     key.Binding
	Back     key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		PrevCol:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		NextCol:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		PrevPage: key.NewBinding(key.WithKeys("[", "p"), key.WithHelp("[", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("]", "n"), key.WithHelp("]", "next page")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open row")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Sort, k.NextCol, k.NextPage, k.PrevPage, k.Open, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Filter, k.Sort, k.PrevCol, k.NextCol},
		{k.PrevPage, k.NextPage, k.Open, k.Back},
		{k.Reload, k.Quit},
	}
}
