package sidebar

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the sidebar bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Menu     key.Binding
	Create   key.Binding
	Rename   key.Binding
	Copy     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
		Menu:     key.NewBinding(key.WithKeys("m", "."), key.WithHelp("m", "menu")),
		Create:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy name")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// NewKeyMap applies overrides keyed by action name. A value may list
// several keys separated by commas.
func NewKeyMap(overrides map[string]string) KeyMap {
	km := DefaultKeyMap()
	bindings := map[string]*key.Binding{
		"up":        &km.Up,
		"down":      &km.Down,
		"move_up":   &km.MoveUp,
		"move_down": &km.MoveDown,
		"menu":      &km.Menu,
		"create":    &km.Create,
		"rename":    &km.Rename,
		"copy":      &km.Copy,
		"submit":    &km.Submit,
		"cancel":    &km.Cancel,
	}

	for action, value := range overrides {
		b, ok := bindings[action]
		if !ok {
			continue
		}
		keys := splitKeys(value)
		if len(keys) == 0 {
			continue
		}
		b.SetKeys(keys...)
		b.SetHelp(keys[0], b.Help().Desc)
	}
	return km
}

func splitKeys(value string) []string {
	var keys []string
	for _, k := range strings.Split(value, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Menu, k.Create, k.Rename}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Menu, k.Create, k.Rename, k.Copy},
		{k.Submit, k.Cancel},
	}
}
