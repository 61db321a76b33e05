package dashboard

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Refresh  key.Binding
	NextRole key.Binding
	PrevRole key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextRole: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next role"),
		),
		PrevRole: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "prev role"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// hints lists the bindings shown in the footer. Role switching is hidden
// when only one role is tracked.
func (k keyMap) hints(multiRole bool) []key.Binding {
	if multiRole {
		return []key.Binding{k.Refresh, k.NextRole, k.PrevRole, k.Quit}
	}
	return []key.Binding{k.Refresh, k.Quit}
}
