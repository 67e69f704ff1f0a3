package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Submit  key.Binding
	Connect key.Binding
	Encrypt key.Binding
	Decrypt key.Binding
	Send    key.Binding
	Copy    key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
	Approve key.Binding
	Decline key.Binding
}

var Keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("⇧tab", "prev field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("⏎", "encrypt / send"),
	),
	Connect: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("^o", "connect"),
	),
	Encrypt: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("^e", "encrypt"),
	),
	Decrypt: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("^d", "decrypt"),
	),
	Send: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("^s", "send"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("^y", "copy handle"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("^x", "dismiss notice"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("^g", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("^c", "quit"),
	),
	Approve: key.NewBinding(
		key.WithKeys("y", "Y", "enter"),
		key.WithHelp("y", "approve"),
	),
	Decline: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "decline"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Encrypt, k.Decrypt, k.Send, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit},
		{k.Connect, k.Encrypt, k.Decrypt, k.Send},
		{k.Copy, k.Dismiss, k.Help, k.Quit},
	}
}
