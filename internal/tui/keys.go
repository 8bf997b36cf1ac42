package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Toggle   key.Binding
	All      key.Binding
	Type     key.Binding
	Search   key.Binding
	Preview  key.Binding
	Import   key.Binding
	Refresh  key.Binding
	Back     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Connect  key.Binding
	Restart  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Expand: key.NewBinding(
			key.WithKeys("right", "l", "enter"),
			key.WithHelp("→/enter", "open"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "close"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "file type"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preview table"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Restart: key.NewBinding(
			key.WithKeys("enter", "n"),
			key.WithHelp("enter", "new import"),
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
}

// stepKeys adapts the key map to help.KeyMap for one wizard step.
type stepKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (s stepKeys) ShortHelp() []key.Binding  { return s.short }
func (s stepKeys) FullHelp() [][]key.Binding { return s.full }

func (k keyMap) connection() stepKeys {
	return stepKeys{
		short: []key.Binding{k.Next, k.Connect, k.Help, k.Quit},
		full:  [][]key.Binding{{k.Next, k.Prev, k.Connect}, {k.Help, k.Quit}},
	}
}

func (k keyMap) selection() stepKeys {
	return stepKeys{
		short: []key.Binding{k.Toggle, k.Expand, k.All, k.Search, k.Type, k.Import, k.Back, k.Help},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Expand, k.Collapse},
			{k.Toggle, k.All, k.Type, k.Search},
			{k.Preview, k.Refresh, k.Import, k.Back, k.Quit},
		},
	}
}

func (k keyMap) importing() stepKeys {
	return stepKeys{
		short: []key.Binding{k.Back, k.Help, k.Quit},
		full:  [][]key.Binding{{k.Back, k.Help, k.Quit}},
	}
}

func (k keyMap) success() stepKeys {
	return stepKeys{
		short: []key.Binding{k.Restart, k.Quit},
		full:  [][]key.Binding{{k.Restart, k.Quit}},
	}
}
