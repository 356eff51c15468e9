// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: player/style.go
// Summary: Converts presentation cell styles into tcell styles.

package player

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelshow/protocol"
)

func styleFromCell(s protocol.Style) tcell.Style {
	return styleFromEntry(s.Entry())
}

func styleFromEntry(entry protocol.StyleEntry) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(colorFromModel(entry.FgModel, entry.FgValue)).
		Background(colorFromModel(entry.BgModel, entry.BgValue))
	if entry.AttrFlags&protocol.AttrBold != 0 {
		style = style.Bold(true)
	}
	if entry.AttrFlags&protocol.AttrDim != 0 {
		style = style.Dim(true)
	}
	return style
}

func colorFromModel(model protocol.ColorModel, value uint32) tcell.Color {
	switch model {
	case protocol.ColorModelRGB:
		r := int32(value >> 16 & 0xFF)
		g := int32(value >> 8 & 0xFF)
		b := int32(value & 0xFF)
		return tcell.NewRGBColor(r, g, b)
	case protocol.ColorModelANSI16, protocol.ColorModelANSI256:
		return tcell.PaletteColor(int(value))
	default:
		return tcell.ColorDefault
	}
}
