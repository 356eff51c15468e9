// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: player/keymap.go
// Summary: Key bindings for playback navigation.
// Notes: Key names are tcell's (Right, Home, Esc, F11, Ctrl-N); a single
// character binds that rune.

package player

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Action is a navigation command.
type Action int

const (
	ActionNone Action = iota
	ActionNext
	ActionPrev
	ActionFirst
	ActionLast
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionPrev:
		return "prev"
	case ActionFirst:
		return "first"
	case ActionLast:
		return "last"
	case ActionQuit:
		return "quit"
	}
	return "none"
}

// ErrUnknownKey is returned for a binding name tcell does not know.
var ErrUnknownKey = errors.New("player: unknown key name")

// Bindings lists key names per action.
type Bindings struct {
	Next  []string
	Prev  []string
	First []string
	Last  []string
	Quit  []string
}

// DefaultBindings returns the stock bindings.
func DefaultBindings() Bindings {
	return Bindings{
		Next:  []string{"Right", " ", "Enter"},
		Prev:  []string{"Left"},
		First: []string{"Home"},
		Last:  []string{"End"},
		Quit:  []string{"q", "Esc"},
	}
}

type keySpec struct {
	key tcell.Key
	ch  rune
}

// KeyMap resolves key events to actions. It is immutable once built and
// safe to copy.
type KeyMap struct {
	actions map[keySpec]Action
	names   map[Action][]string
}

var keysByName = func() map[string]tcell.Key {
	out := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		out[strings.ToLower(name)] = k
	}
	return out
}()

func parseKey(name string) (keySpec, error) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return keySpec{key: tcell.KeyRune, ch: r}, nil
	}
	switch strings.ToLower(name) {
	case "space":
		return keySpec{key: tcell.KeyRune, ch: ' '}, nil
	case "escape":
		return keySpec{key: tcell.KeyEsc}, nil
	}
	if k, ok := keysByName[strings.ToLower(name)]; ok {
		return keySpec{key: k}, nil
	}
	return keySpec{}, fmt.Errorf("%w %q", ErrUnknownKey, name)
}

// NewKeyMap parses b. When two actions claim the same key the earlier one in
// next, prev, first, last, quit order wins.
func NewKeyMap(b Bindings) (KeyMap, error) {
	km := KeyMap{actions: make(map[keySpec]Action), names: make(map[Action][]string)}
	groups := []struct {
		action Action
		names  []string
	}{
		{ActionNext, b.Next},
		{ActionPrev, b.Prev},
		{ActionFirst, b.First},
		{ActionLast, b.Last},
		{ActionQuit, b.Quit},
	}
	for _, g := range groups {
		for _, name := range g.names {
			ks, err := parseKey(name)
			if err != nil {
				return KeyMap{}, err
			}
			if _, taken := km.actions[ks]; taken {
				continue
			}
			km.actions[ks] = g.action
			km.names[g.action] = append(km.names[g.action], name)
		}
	}
	return km, nil
}

// DefaultKeyMap returns the key map for DefaultBindings.
func DefaultKeyMap() KeyMap {
	km, _ := NewKeyMap(DefaultBindings())
	return km
}

// Lookup returns the action bound to ev. Ctrl-C always quits.
func (k KeyMap) Lookup(ev *tcell.EventKey) Action {
	ks := keySpec{key: ev.Key()}
	if ks.key == tcell.KeyRune {
		ks.ch = ev.Rune()
	}
	if a, ok := k.actions[ks]; ok {
		return a
	}
	if ks.key == tcell.KeyCtrlC {
		return ActionQuit
	}
	return ActionNone
}

// Labels returns the display names bound to a, in binding order.
func (k KeyMap) Labels(a Action) []string {
	names := k.names[a]
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = displayName(name)
	}
	return out
}

func displayName(name string) string {
	switch strings.ToLower(name) {
	case "right":
		return "→"
	case "left":
		return "←"
	case "up":
		return "↑"
	case "down":
		return "↓"
	case " ", "space":
		return "Space"
	}
	return name
}
