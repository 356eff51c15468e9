// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: player/keymap_test.go
// Summary: Key binding parsing and lookup.
// Usage: Executed during `go test` to guard against regressions.

package player

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestDefaultKeyMapLookup(t *testing.T) {
	km := DefaultKeyMap()
	cases := []struct {
		ev   *tcell.EventKey
		want Action
	}{
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), ActionNext},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), ActionNext},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), ActionNext},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), ActionPrev},
		{tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), ActionFirst},
		{tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), ActionLast},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), ActionNone},
	}
	for _, tc := range cases {
		if got := km.Lookup(tc.ev); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.ev.Name(), got, tc.want)
		}
	}
}

func TestKeyMapLabels(t *testing.T) {
	km := DefaultKeyMap()
	if got := km.Labels(ActionNext); !reflect.DeepEqual(got, []string{"→", "Space", "Enter"}) {
		t.Fatalf("next labels %v", got)
	}
	if got := km.Labels(ActionQuit); !reflect.DeepEqual(got, []string{"q", "Esc"}) {
		t.Fatalf("quit labels %v", got)
	}
}

func TestNewKeyMapRejectsUnknownNames(t *testing.T) {
	_, err := NewKeyMap(Bindings{Next: []string{"NoSuchKey"}})
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestNewKeyMapFirstBindingWins(t *testing.T) {
	km, err := NewKeyMap(Bindings{Next: []string{"q", "F5"}, Quit: []string{"q"}})
	if err != nil {
		t.Fatalf("NewKeyMap: %v", err)
	}
	if got := km.Lookup(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)); got != ActionNext {
		t.Fatalf("q resolved to %v", got)
	}
	if got := km.Lookup(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)); got != ActionNext {
		t.Fatalf("F5 resolved to %v", got)
	}
	if len(km.Labels(ActionQuit)) != 0 {
		t.Fatalf("quit kept a shadowed binding")
	}
}
