package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// Keymap defines all key bindings for the TUI.
type Keymap struct {
	// Surface
	Toggle key.Binding
	Close  key.Binding
	Blur   key.Binding
	Focus  key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Actions
	Open     key.Binding
	Copy     key.Binding
	LoadMore key.Binding
	Quit     key.Binding
}

// DefaultKeymap returns the default key bindings. label is the platform
// shortcut label shown for the toggle binding.
func DefaultKeymap(label string) Keymap {
	return Keymap{
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp(label, "search"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Blur: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "to results"),
		),
		Focus: key.NewBinding(
			key.WithKeys("/", "tab"),
			key.WithHelp("/", "edit query"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c", "y"),
			key.WithHelp("c", "copy link"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// InputHelp returns the bindings shown while the query input has focus.
func (k Keymap) InputHelp() []key.Binding {
	return []key.Binding{k.Blur, k.Close, k.Quit}
}

// ListHelp returns the bindings shown while the result list has focus.
func (k Keymap) ListHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Copy, k.LoadMore, k.Focus, k.Close}
}

// ClosedHelp returns the bindings shown while the surface is closed.
func (k Keymap) ClosedHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Quit}
}
