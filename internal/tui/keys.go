package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/lox/blackjack/internal/game"
)

// KeyMap defines the table's key bindings.
type KeyMap struct {
	Hit      key.Binding
	Stand    key.Binding
	Double   key.Binding
	Split    key.Binding
	Shortcut key.Binding
	Deal     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Hit:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hit")),
		Stand:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stand")),
		Double:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "double")),
		Split:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "split")),
		Shortcut: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "next")),
		Deal:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "deal")),
		ScrollUp: key.NewBinding(key.WithKeys("up", "pgup"), key.WithHelp("↑/pgup", "scroll log")),
		ScrollDn: key.NewBinding(key.WithKeys("down", "pgdown"), key.WithHelp("↓/pgdn", "scroll log")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// update enables the bindings the engine would currently accept so the help
// line only lists live keys.
func (k *KeyMap) update(el game.Eligibility, locked bool) {
	k.Hit.SetEnabled(el.Hit && !locked)
	k.Stand.SetEnabled(el.Stand && !locked)
	k.Double.SetEnabled(el.Double && !locked)
	k.Split.SetEnabled(el.Split && !locked)
	k.Deal.SetEnabled(el.Deal && !locked)
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hit, k.Stand, k.Double, k.Split, k.Shortcut, k.Deal, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Hit, k.Stand, k.Double, k.Split},
		{k.Shortcut, k.Deal},
		{k.ScrollUp, k.ScrollDn, k.Help, k.Quit},
	}
}
