package session

import (
	"fmt"
	"strings"

	"golang.org/x/mobile/event/key"

	"github.com/example/xrayview/internal/render"
)

// KeyShortcut describes a keyboard combination that triggers an action.
// Printable keys are matched by Rune with Shift ignored, so '?' and 'G'
// work on any layout; other keys are matched by Code.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

func runes(rs ...rune) shortcutList {
	out := make(shortcutList, len(rs))
	for i, r := range rs {
		out[i] = KeyShortcut{Rune: r}
	}
	return out
}

func codes(cs ...key.Code) shortcutList {
	out := make(shortcutList, len(cs))
	for i, c := range cs {
		out[i] = KeyShortcut{Code: c}
	}
	return out
}

func ctrl(c key.Code) shortcutList {
	return shortcutList{{Code: c, Modifiers: key.ModControl}}
}

type action struct {
	name string
	help string
	keys []KeyShortcut
	fn   func()
}

// keymap resolves key events to named actions.
type keymap struct {
	actions  map[string]action
	order    []string
	shortcut map[KeyShortcut]string
}

func newKeymap() *keymap {
	return &keymap{actions: map[string]action{}, shortcut: map[KeyShortcut]string{}}
}

func (k *keymap) register(name, help string, keys KeyboardShortcuts, fn func()) {
	a := action{name: name, help: help, fn: fn}
	if keys != nil {
		a.keys = keys.KeyboardShortcuts()
		for _, sc := range a.keys {
			k.shortcut[sc] = name
		}
	}
	if _, ok := k.actions[name]; !ok {
		k.order = append(k.order, name)
	}
	k.actions[name] = a
}

// lookup returns the action bound to e, trying the key code with all
// modifiers first and the rune without Shift second.
func (k *keymap) lookup(e key.Event) (action, bool) {
	if name, ok := k.shortcut[KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}]; ok {
		return k.actions[name], true
	}
	if e.Rune > 0 {
		ks := KeyShortcut{Rune: e.Rune, Modifiers: e.Modifiers &^ key.ModShift}
		if name, ok := k.shortcut[ks]; ok {
			return k.actions[name], true
		}
	}
	return action{}, false
}

// help lists registered actions in registration order.
func (k *keymap) help() []render.HelpLine {
	var lines []render.HelpLine
	for _, name := range k.order {
		a := k.actions[name]
		if a.help == "" || len(a.keys) == 0 {
			continue
		}
		var labels []string
		for _, sc := range a.keys {
			labels = append(labels, describe(sc))
		}
		lines = append(lines, render.HelpLine{Keys: strings.Join(labels, ", "), Action: a.help})
	}
	return lines
}

var codeNames = map[key.Code]string{
	key.CodeEscape:        "Esc",
	key.CodeLeftArrow:     "Left",
	key.CodeRightArrow:    "Right",
	key.CodePageUp:        "PgUp",
	key.CodePageDown:      "PgDn",
	key.CodeDeleteForward: "Delete",
	key.CodeF11:           "F11",
}

func describe(sc KeyShortcut) string {
	var b strings.Builder
	if sc.Modifiers&key.ModControl != 0 {
		b.WriteString("Ctrl+")
	}
	if sc.Modifiers&key.ModAlt != 0 {
		b.WriteString("Alt+")
	}
	switch {
	case sc.Rune > 0:
		b.WriteRune(sc.Rune)
	case codeNames[sc.Code] != "":
		b.WriteString(codeNames[sc.Code])
	case sc.Code >= key.CodeA && sc.Code <= key.CodeZ:
		b.WriteRune(rune('A' + sc.Code - key.CodeA))
	default:
		fmt.Fprintf(&b, "%v", sc.Code)
	}
	return b.String()
}
