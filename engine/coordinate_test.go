// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/coordinate_test.go
// Summary: Exercises coordinate evaluation and the dual JSON form.
// Usage: Executed during `go test` to guard against regressions.

package engine

import (
	"encoding/json"
	"testing"
)

func TestAnimatedCoordinateClamps(t *testing.T) {
	c := Animated(10, 20, 5, 15)
	for f := 0; f <= 5; f++ {
		if got := c.Evaluate(f); got != 10 {
			t.Fatalf("frame %d: got %d want 10", f, got)
		}
	}
	for f := 15; f < 30; f++ {
		if got := c.Evaluate(f); got != 20 {
			t.Fatalf("frame %d: got %d want 20", f, got)
		}
	}
	if got := c.Evaluate(10); got != 15 {
		t.Fatalf("midpoint: got %d want 15", got)
	}
}

func TestAnimatedCoordinateRoundsAndReverses(t *testing.T) {
	down := Animated(20, 10, 0, 4)
	want := []uint16{20, 18, 15, 13, 10}
	for f, w := range want {
		if got := down.Evaluate(f); got != w {
			t.Fatalf("frame %d: got %d want %d", f, got, w)
		}
	}
}

func TestZeroSpanAnimationDoesNotDivide(t *testing.T) {
	c := Animated(3, 9, 4, 4)
	if got := c.Evaluate(4); got != 3 {
		t.Fatalf("at start: got %d want 3", got)
	}
	if got := c.Evaluate(5); got != 9 {
		t.Fatalf("after start: got %d want 9", got)
	}
	inverted := Animated(3, 9, 6, 2)
	if got := inverted.Evaluate(4); got != 9 {
		t.Fatalf("inverted span: got %d want 9", got)
	}
}

func TestFixedCoordinateFloorsAndClamps(t *testing.T) {
	cases := map[float64]uint16{
		0:       0,
		4.99:    4,
		-3:      0,
		70000.0: 65535,
	}
	for in, want := range cases {
		if got := Fixed(in).Evaluate(0); got != want {
			t.Fatalf("Fixed(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestCoordinateJSONAcceptsBothForms(t *testing.T) {
	cases := []struct {
		in   string
		want Coordinate
	}{
		{`7`, Fixed(7)},
		{`2.5`, Fixed(2.5)},
		{`-4`, Fixed(0)},
		{`{"fixed": 12.25}`, Fixed(12.25)},
		{`{"animated": {"from": 1, "to": 9, "start_frame": 0, "end_frame": 8}}`, Animated(1, 9, 0, 8)},
	}
	for _, tc := range cases {
		var c Coordinate
		if err := json.Unmarshal([]byte(tc.in), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if c != tc.want {
			t.Fatalf("unmarshal %s: got %+v want %+v", tc.in, c, tc.want)
		}
	}

	for _, bad := range []string{`"5"`, `{}`, `{"fixed": 1, "animated": {"from": 0, "to": 1, "start_frame": 0, "end_frame": 1}}`, `{"fixd": 1}`} {
		var c Coordinate
		if err := json.Unmarshal([]byte(bad), &c); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}

func TestCoordinateJSONWritesTaggedForm(t *testing.T) {
	data, err := json.Marshal(Position{X: Fixed(3), Y: Animated(0, 4, 1, 2)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"x":{"fixed":3},"y":{"animated":{"from":0,"to":4,"start_frame":1,"end_frame":2}}}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
}

func TestFrameRangeIsHalfOpen(t *testing.T) {
	r := FrameRange{Start: 2, End: 4}
	for f, want := range map[int]bool{1: false, 2: true, 3: true, 4: false} {
		if r.Contains(f) != want {
			t.Fatalf("Contains(%d) = %v", f, !want)
		}
	}
}
