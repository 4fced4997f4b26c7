package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the key bindings of the gallery screen.
type keyMap struct {
	NextPane   key.Binding
	PrevFacet  key.Binding
	NextFacet  key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Clear      key.Binding
	Reshuffle  key.Binding
	Export     key.Binding
	Back       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	StartBuild key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		PrevFacet:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev facet")),
		NextFacet:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next facet")),
		Up:         key.NewBinding(key.WithKeys("up", "k")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "toggle")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Reshuffle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "reshuffle")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		StartBuild: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "scan")),
	}
}

// helpLine renders bindings as "key: action • key: action".
func helpLine(bindings ...key.Binding) string {
	var s string
	for i, b := range bindings {
		if i > 0 {
			s += " • "
		}
		h := b.Help()
		s += h.Key + ": " + h.Desc
	}
	return s
}
