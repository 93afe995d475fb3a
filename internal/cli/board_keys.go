package cli

import "github.com/charmbracelet/bubbles/key"

type boardKeyMap struct {
	Prev      key.Binding
	Next      key.Binding
	Today     key.Binding
	Tomorrow  key.Binding
	NextWeek  key.Binding
	NextMonth key.Binding
	ZoomDay   key.Binding
	ZoomWeek  key.Binding
	ZoomMonth key.Binding
	Up        key.Binding
	Down      key.Binding
	NextItem  key.Binding
	PrevItem  key.Binding
	Grab      key.Binding
	Drop      key.Binding
	Cancel    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultBoardKeys() boardKeyMap {
	return boardKeyMap{
		Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Tomorrow:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "tomorrow")),
		NextWeek:  key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "next week")),
		NextMonth: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "next month")),
		ZoomDay:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "day")),
		ZoomWeek:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "week")),
		ZoomMonth: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "month")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "lane up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "lane down")),
		NextItem:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next order")),
		PrevItem:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous order")),
		Grab:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick up / drop")),
		Drop:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Up, k.Down, k.NextItem, k.Grab, k.Cancel, k.Help, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Today, k.Tomorrow, k.NextWeek, k.NextMonth},
		{k.ZoomDay, k.ZoomWeek, k.ZoomMonth, k.Refresh},
		{k.Up, k.Down, k.NextItem, k.PrevItem},
		{k.Grab, k.Drop, k.Cancel, k.Help, k.Quit},
	}
}
