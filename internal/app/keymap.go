package app

import "github.com/charmbracelet/bubbles/key"

// keyMap is the declarative key.Binding table for the workbench,
// covering paging, tab switching, pin, jump, tail-follow, pinned-only,
// severity cycle, and regex/case toggles.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	CloseTab    key.Binding
	Filter      key.Binding
	FilterDone  key.Binding
	RegexToggle key.Binding
	CaseToggle  key.Binding
	LevelCycle  key.Binding
	Pin         key.Binding
	PinnedOnly  key.Binding
	Follow      key.Binding
	Jump        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
		PageUp:      key.NewBinding(key.WithKeys("pgup")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown")),
		Top:         key.NewBinding(key.WithKeys("home", "g")),
		Bottom:      key.NewBinding(key.WithKeys("end", "G")),
		NextTab:     key.NewBinding(key.WithKeys("tab")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab")),
		CloseTab:    key.NewBinding(key.WithKeys("ctrl+w")),
		Filter:      key.NewBinding(key.WithKeys("/")),
		FilterDone:  key.NewBinding(key.WithKeys("enter", "esc")),
		RegexToggle: key.NewBinding(key.WithKeys("ctrl+r")),
		CaseToggle:  key.NewBinding(key.WithKeys("ctrl+u")),
		LevelCycle:  key.NewBinding(key.WithKeys("l")),
		Pin:         key.NewBinding(key.WithKeys("p")),
		PinnedOnly:  key.NewBinding(key.WithKeys("P")),
		Follow:      key.NewBinding(key.WithKeys("f")),
		Jump:        key.NewBinding(key.WithKeys(":")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}
