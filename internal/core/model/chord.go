package model

import (
	"fmt"
	"strings"
)

// Chord is one hotkey activation: a key token plus modifier flags, or a
// gamepad button. Gamepad chords carry no modifiers.
type Chord struct {
	Key     string
	Ctrl    bool
	Alt     bool
	Shift   bool
	Win     bool
	Gamepad bool
}

// Key token prefixes that mark a gamepad button. "xbox:" is an alias kept
// for configs written against pad-branded docs.
const (
	gamepadPrefix = "gamepad:"
	xboxPrefix    = "xbox:"
)

func newChord(owner string, raw rawChord) (Chord, error) {
	key := strings.TrimSpace(raw.Key)
	if key == "" {
		return Chord{}, fmt.Errorf("%s: keybind key cannot be empty", owner)
	}

	chord := Chord{
		Key:   key,
		Ctrl:  raw.Ctrl,
		Alt:   raw.Alt,
		Shift: raw.Shift,
		Win:   raw.Win,
	}

	lower := strings.ToLower(key)
	for _, prefix := range []string{gamepadPrefix, xboxPrefix} {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		button := strings.TrimSpace(key[len(prefix):])
		if button == "" {
			return Chord{}, fmt.Errorf("%s: gamepad keybind is missing a button name", owner)
		}
		if chord.Ctrl || chord.Alt || chord.Shift || chord.Win {
			return Chord{}, fmt.Errorf("%s: gamepad keybind %q cannot carry modifier flags", owner, key)
		}
		chord.Gamepad = true
		chord.Key = strings.ToUpper(button)
		return chord, nil
	}

	return chord, nil
}

// Matches reports whether a keyboard event with the given key token and
// modifier state activates this chord. All four modifier flags must match
// exactly; key comparison is case-insensitive.
func (c Chord) Matches(key string, ctrl, alt, shift, win bool) bool {
	if c.Gamepad {
		return false
	}
	return strings.EqualFold(c.Key, key) &&
		c.Ctrl == ctrl && c.Alt == alt && c.Shift == shift && c.Win == win
}

// MatchesButton reports whether a gamepad button press activates this chord.
func (c Chord) MatchesButton(button string) bool {
	return c.Gamepad && strings.EqualFold(c.Key, button)
}

// String renders the chord in shortcut notation, e.g. "Ctrl+Shift+Q" or
// "Gamepad:A".
func (c Chord) String() string {
	if c.Gamepad {
		return "Gamepad:" + c.Key
	}
	var parts []string
	if c.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if c.Alt {
		parts = append(parts, "Alt")
	}
	if c.Shift {
		parts = append(parts, "Shift")
	}
	if c.Win {
		parts = append(parts, "Super")
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}
