// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/preview/ansi.go
// Summary: Renders a grid as text with SGR escape sequences.

package preview

import (
	"fmt"
	"strings"

	"github.com/framegrace/texelshow/protocol"
)

func sgr(s protocol.Style) string {
	parts := []string{"0"}
	if s.Bold {
		parts = append(parts, "1")
	}
	if s.Dim {
		parts = append(parts, "2")
	}
	parts = append(parts, colorParams(s.Fg, 30, 38)...)
	parts = append(parts, colorParams(s.Bg, 40, 48)...)
	return "\x1b[" + strings.Join(parts, ";") + "m"
}

func colorParams(c protocol.Color, base, extended int) []string {
	switch c.Model {
	case protocol.ColorModelANSI16:
		return []string{fmt.Sprint(base + int(c.Value))}
	case protocol.ColorModelANSI256:
		return []string{fmt.Sprint(extended), "5", fmt.Sprint(c.Value)}
	case protocol.ColorModelRGB:
		r, g, b := c.Components()
		return []string{fmt.Sprint(extended), "2", fmt.Sprint(r), fmt.Sprint(g), fmt.Sprint(b)}
	}
	return nil
}

// renderANSI writes one line per row, emitting an escape sequence only when
// the style changes and resetting at the end of each row.
func renderANSI(g *protocol.Grid) string {
	var b strings.Builder
	for _, row := range g.Rows() {
		current := protocol.Style{}
		for _, c := range row {
			if c.Style != current {
				b.WriteString(sgr(c.Style))
				current = c.Style
			}
			ch := c.Ch
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		if !current.IsDefault() {
			b.WriteString("\x1b[0m")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
