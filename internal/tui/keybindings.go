package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Key is an abstract key event understood by the selection menus.
type Key int

// Keys understood by the menus. Not every menu reacts to every key.
const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyToggle
	KeyConfirm
	KeyCancel
	KeyBack
	KeySelectAll
	KeyClearAll
)

var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyToggle:    "toggle",
	KeyConfirm:   "confirm",
	KeyCancel:    "cancel",
	KeyBack:      "back",
	KeySelectAll: "select-all",
	KeyClearAll:  "clear-all",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// KeyMap binds terminal keys to menu keys.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Back      key.Binding
	SelectAll key.Binding
	ClearAll  key.Binding
}

// Keys are the keybindings for both selection menus.
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "back"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "all"),
	),
	ClearAll: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
}

// KeyFromMsg maps a terminal key press to a menu key. Unbound keys map to
// KeyNone.
func KeyFromMsg(msg tea.KeyMsg) Key {
	switch {
	case key.Matches(msg, Keys.Up):
		return KeyUp
	case key.Matches(msg, Keys.Down):
		return KeyDown
	case key.Matches(msg, Keys.Toggle):
		return KeyToggle
	case key.Matches(msg, Keys.Confirm):
		return KeyConfirm
	case key.Matches(msg, Keys.Cancel):
		return KeyCancel
	case key.Matches(msg, Keys.Back):
		return KeyBack
	case key.Matches(msg, Keys.SelectAll):
		return KeySelectAll
	case key.Matches(msg, Keys.ClearAll):
		return KeyClearAll
	}

	return KeyNone
}

// helpPairs flattens bindings into the key/description pairs RenderHelp takes.
func helpPairs(bindings ...key.Binding) []string {
	pairs := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		h := b.Help()
		pairs = append(pairs, h.Key, h.Desc)
	}
	return pairs
}
