package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextFocus  key.Binding
	PrevFocus  key.Binding
	Generate   key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	AddPage    key.Binding
	DeletePage key.Binding
	Copy       key.Binding
	ToggleChat key.Binding
	Reload     key.Binding
	Save       key.Binding
	StyleNext  key.Binding
	StylePrev  key.Binding
	Send       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextFocus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevFocus:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Generate:   key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("^g", "generate")),
		NextPage:   key.NewBinding(key.WithKeys("pgdown", "ctrl+n"), key.WithHelp("^n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("pgup", "ctrl+p"), key.WithHelp("^p", "prev page")),
		AddPage:    key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("^a", "add page")),
		DeletePage: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("^d", "delete page")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^y", "copy text")),
		ToggleChat: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^t", "chat")),
		Reload:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^r", "reload")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^s", "save now")),
		StyleNext:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next style")),
		StylePrev:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev style")),
		Send:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Quit:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "save & quit")),
	}
}

// help renders the key hints for the current mode
func (k keyMap) help(editing bool) string {
	var bindings []key.Binding
	if editing {
		bindings = []key.Binding{k.NextFocus, k.NextPage, k.PrevPage, k.AddPage, k.DeletePage, k.Copy, k.ToggleChat, k.Save, k.Quit}
	} else {
		bindings = []key.Binding{k.NextFocus, k.StyleNext, k.Generate, k.Save, k.Quit}
	}

	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return HelpStyle.Render(out)
}
