package keybind

import (
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Keybind is a set of key strings bound to one action, such as "ctrl+d" or
// "pgdn", plus the text shown for it in help lines.
type Keybind struct {
	keys []string
	help Help
}

type Option func(*Keybind)

func NewKeybind(options ...Option) Keybind {
	k := &Keybind{}
	for _, option := range options {
		option(k)
	}
	return *k
}

func WithKeys(keys ...string) Option {
	return func(k *Keybind) {
		k.keys = normalizeKeys(keys...)
	}
}

func WithHelp(key, desc string) Option {
	return func(k *Keybind) {
		k.help = Help{Key: key, Desc: desc}
	}
}

func (k Keybind) Keys() []string {
	return k.keys
}

// SetKeys replaces the bound keys. No keys disables the keybind.
func (k *Keybind) SetKeys(keys ...string) {
	k.keys = normalizeKeys(keys...)
}

// SetHelp replaces the help text.
func (k *Keybind) SetHelp(key, desc string) {
	k.help = Help{Key: key, Desc: desc}
}

// Enabled reports whether any key is bound.
func (k Keybind) Enabled() bool {
	return len(k.keys) > 0
}

func (k Keybind) Help() Help {
	return k.help
}

type Help struct {
	Key  string
	Desc string
}

// String renders the help as "key desc".
func (h Help) String() string {
	if h.Key == "" {
		return h.Desc
	}
	return h.Key + " " + h.Desc
}

// HelpLine joins the help of the enabled keybinds with sep.
func HelpLine(sep string, keybinds ...Keybind) string {
	parts := make([]string, 0, len(keybinds))
	for _, k := range keybinds {
		if !k.Enabled() || k.help == (Help{}) {
			continue
		}
		parts = append(parts, k.help.String())
	}
	return strings.Join(parts, sep)
}

// Matches reports whether event triggers any of the keybinds.
func Matches(event *tcell.EventKey, keybinds ...Keybind) bool {
	if event == nil {
		return false
	}

	key := EventString(event)
	for _, keybind := range keybinds {
		if slices.Contains(keybind.keys, key) {
			return true
		}
	}
	return false
}

func normalizeKeys(keys ...string) []string {
	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		if key = normalizeKey(key); key != "" && !slices.Contains(normalized, key) {
			normalized = append(normalized, key)
		}
	}
	return normalized
}

// modifier order used in normalized key strings.
var modifiers = []string{"ctrl", "alt", "shift", "meta"}

func normalizeKey(key string) string {
	parts := strings.Split(strings.TrimSpace(key), "+")
	mods := make(map[string]bool, len(parts))
	primary := ""
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "":
		case "ctrl", "control":
			mods["ctrl"] = true
		case "alt", "option":
			mods["alt"] = true
		case "shift":
			mods["shift"] = true
		case "meta", "cmd":
			mods["meta"] = true
		default:
			primary = normalizePrimaryKey(part)
		}
	}
	if primary == "" {
		return ""
	}
	if primary == "backtab" {
		mods["shift"] = true
		primary = "tab"
	}
	if len(mods) > 0 && len([]rune(primary)) == 1 {
		primary = strings.ToLower(primary)
	}
	return join(mods, primary)
}

func normalizePrimaryKey(key string) string {
	if len([]rune(key)) == 1 {
		return key
	}
	switch key = strings.ToLower(key); key {
	case "escape":
		return "esc"
	case "return":
		return "enter"
	case "pageup":
		return "pgup"
	case "pagedown":
		return "pgdn"
	case "space":
		return " "
	}
	return key
}

func join(mods map[string]bool, primary string) string {
	var b strings.Builder
	for _, m := range modifiers {
		if mods[m] {
			b.WriteString(m)
			b.WriteByte('+')
		}
	}
	b.WriteString(primary)
	return b.String()
}

// EventString returns the normalized key string of event.
func EventString(event *tcell.EventKey) string {
	if event == nil {
		return ""
	}

	mods := make(map[string]bool, 4)
	m := event.Modifiers()
	mods["ctrl"] = m&tcell.ModCtrl != 0
	mods["alt"] = m&tcell.ModAlt != 0
	mods["shift"] = m&tcell.ModShift != 0
	mods["meta"] = m&tcell.ModMeta != 0

	key := event.Key()
	primary := keyName(key)
	switch {
	case primary != "":
		if key == tcell.KeyBacktab {
			mods["shift"] = true
		}
	case key == tcell.KeyRune:
		primary = string(event.Rune())
		if mods["ctrl"] || mods["alt"] || mods["meta"] {
			primary = strings.ToLower(primary)
		}
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		mods["ctrl"] = true
		primary = string(rune('a' + (key - tcell.KeyCtrlA)))
	default:
		return normalizeKey(event.Name())
	}
	return join(mods, primary)
}

func keyName(key tcell.Key) string {
	switch key {
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyTab, tcell.KeyBacktab:
		return "tab"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyDelete:
		return "delete"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyInsert:
		return "insert"
	default:
		return ""
	}
}
