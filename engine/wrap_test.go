// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/wrap_test.go
// Summary: Word wrap edge cases.

package engine

import "testing"

func rowsOf(rows [][]rune) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

func TestWrapLine(t *testing.T) {
	cases := []struct {
		line   string
		width  int
		indent int
		want   []string
	}{
		{"Hello World", 5, 0, []string{"Hello", "World"}},
		{"abcdefgh", 3, 0, []string{"abc", "def", "gh "}},
		{"a  b", 2, 0, []string{"a ", "b "}},
		{"1. first second", 9, 3, []string{"1. first ", "   second"}},
		{"- xxxxxx", 2, 2, []string{"- ", " x", " x", " x", " x", " x", " x"}},
		{"", 4, 0, []string{""}},
	}
	for _, tc := range cases {
		got := rowsOf(wrapLine(tc.line, tc.width, tc.indent))
		if len(got) != len(tc.want) {
			t.Fatalf("%q@%d: rows %q want %q", tc.line, tc.width, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%q@%d: row %d = %q want %q", tc.line, tc.width, i, got[i], tc.want[i])
			}
		}
	}
}

func TestListIndent(t *testing.T) {
	for line, want := range map[string]int{
		"- item":   2,
		"12. item": 3,
		"12.item":  0,
		"-item":    0,
		"plain":    0,
	} {
		if got := listIndent(line); got != want {
			t.Fatalf("listIndent(%q) = %d want %d", line, got, want)
		}
	}
}

func TestWrapCellKeepsExplicitLines(t *testing.T) {
	got := rowsOf(wrapCell("ab\ncd", 4))
	if len(got) != 2 || got[0] != "ab  " || got[1] != "cd  " {
		t.Fatalf("rows %q", got)
	}
	if rows := wrapCell("anything", 0); len(rows) != 1 || rows[0] != nil {
		t.Fatalf("zero width rows %q", rowsOf(rows))
	}
}
