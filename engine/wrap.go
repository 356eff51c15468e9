// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/wrap.go
// Summary: Word wrapping with hanging indents for list items.

package engine

import "strings"

// listIndent returns the continuation indent for a list line: 2 for "- "
// bullets, 3 for "N. " numbered items, otherwise 0.
func listIndent(line string) int {
	if strings.HasPrefix(line, "- ") {
		return 2
	}
	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && strings.HasPrefix(line[digits:], ". ") {
		return 3
	}
	return 0
}

// wrapLine splits one line into rows of exactly width runes. Breaks happen
// at the last space that fits, or hard at the width when a word is longer
// than a row. Continuation rows start at column min(indent, width-1); the
// first row always starts at column 0. An empty line yields one zero-length
// row.
func wrapLine(line string, width, indent int) [][]rune {
	if width <= 0 {
		return [][]rune{nil}
	}
	chars := []rune(line)
	if len(chars) == 0 {
		return [][]rune{nil}
	}
	var rows [][]rune
	pos := 0
	first := true
	for pos < len(chars) {
		col0 := 0
		if !first {
			col0 = min(indent, width-1)
		}
		avail := width - col0
		remaining := chars[pos:]

		row := make([]rune, 0, width)
		for range col0 {
			row = append(row, ' ')
		}

		if len(remaining) <= avail {
			row = append(row, remaining...)
			rows = append(rows, padRow(row, width))
			break
		}

		rowLen, advance := avail, avail
		for i := avail - 1; i >= 0; i-- {
			if remaining[i] == ' ' {
				rowLen, advance = i, i+1
				break
			}
		}
		row = append(row, remaining[:rowLen]...)
		rows = append(rows, padRow(row, width))
		pos += advance
		for pos < len(chars) && chars[pos] == ' ' {
			pos++
		}
		first = false
	}
	return rows
}

func padRow(row []rune, width int) []rune {
	for len(row) < width {
		row = append(row, ' ')
	}
	return row
}

// wrapCell wraps table cell content without list indentation.
func wrapCell(content string, width int) [][]rune {
	if width == 0 {
		return [][]rune{nil}
	}
	var rows [][]rune
	for _, line := range strings.Split(content, "\n") {
		rows = append(rows, wrapLine(line, width, 0)...)
	}
	return rows
}
