// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/font.go
// Summary: Five-row block font used by header objects.

package engine

// GlyphHeight is the number of rows in every glyph.
const GlyphHeight = 5

// Glyph rows use '#' for a filled pixel and ' ' for an empty one. All rows
// of a glyph share the same width.
type Glyph [GlyphHeight]string

// Width returns the glyph width in cells.
func (g Glyph) Width() int {
	return len(g[0])
}

var font = map[rune]Glyph{
	'A': {" ### ", "#   #", "#####", "#   #", "#   #"},
	'B': {"#### ", "#   #", "#### ", "#   #", "#### "},
	'C': {" ### ", "#   #", "#    ", "#   #", " ### "},
	'D': {"#### ", "#   #", "#   #", "#   #", "#### "},
	'E': {"#####", "#    ", "###  ", "#    ", "#####"},
	'F': {"#####", "#    ", "###  ", "#    ", "#    "},
	'G': {" ### ", "#    ", "#  ##", "#   #", " ### "},
	'H': {"#   #", "#   #", "#####", "#   #", "#   #"},
	'I': {"###", " # ", " # ", " # ", "###"},
	'J': {"  ###", "   # ", "   # ", "#  # ", " ##  "},
	'K': {"#   #", "#  # ", "###  ", "#  # ", "#   #"},
	'L': {"#    ", "#    ", "#    ", "#    ", "#####"},
	'M': {"#   #", "## ##", "# # #", "#   #", "#   #"},
	'N': {"#   #", "##  #", "# # #", "#  ##", "#   #"},
	'O': {" ### ", "#   #", "#   #", "#   #", " ### "},
	'P': {"#### ", "#   #", "#### ", "#    ", "#    "},
	'Q': {" ### ", "#   #", "# # #", "#  # ", " ## #"},
	'R': {"#### ", "#   #", "#### ", "#  # ", "#   #"},
	'S': {" ####", "#    ", " ### ", "    #", "#### "},
	'T': {"#####", "  #  ", "  #  ", "  #  ", "  #  "},
	'U': {"#   #", "#   #", "#   #", "#   #", " ### "},
	'V': {"#   #", "#   #", "#   #", " # # ", "  #  "},
	'W': {"#   #", "#   #", "# # #", "## ##", "#   #"},
	'X': {"#   #", " # # ", "  #  ", " # # ", "#   #"},
	'Y': {"#   #", " # # ", "  #  ", "  #  ", "  #  "},
	'Z': {"#####", "   # ", "  #  ", " #   ", "#####"},
	'0': {" ### ", "#   #", "#   #", "#   #", " ### "},
	'1': {" # ", "## ", " # ", " # ", "###"},
	'2': {" ### ", "#   #", "  ## ", " #   ", "#####"},
	'3': {" ### ", "#   #", "  ## ", "#   #", " ### "},
	'4': {"#  # ", "#  # ", "#####", "   # ", "   # "},
	'5': {"#####", "#    ", "#### ", "    #", "#### "},
	'6': {" ### ", "#    ", "#### ", "#   #", " ### "},
	'7': {"#####", "   # ", "  #  ", " #   ", " #   "},
	'8': {" ### ", "#   #", " ### ", "#   #", " ### "},
	'9': {" ### ", "#   #", " ####", "   # ", " ### "},
	' ': {"   ", "   ", "   ", "   ", "   "},
	'!': {"#", "#", "#", " ", "#"},
	'.': {" ", " ", " ", " ", "#"},
	'-': {"     ", "     ", "#####", "     ", "     "},
	'?': {" ### ", "#   #", "  ## ", "     ", "  #  "},
	':': {" ", "#", " ", "#", " "},
}

func upperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

// LookupGlyph returns the glyph for r after ASCII upper-casing.
func LookupGlyph(r rune) (Glyph, bool) {
	g, ok := font[upperASCII(r)]
	return g, ok
}

// TextWidth returns the rendered width of text in the block font: the sum
// of recognised glyph widths plus one gap column between consecutive glyphs.
// Unknown characters contribute nothing.
func TextWidth(text string) int {
	width, count := 0, 0
	for _, r := range text {
		if g, ok := LookupGlyph(r); ok {
			width += g.Width()
			count++
		}
	}
	if count > 1 {
		width += count - 1
	}
	return width
}
