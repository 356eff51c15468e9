// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/shapes.go
// Summary: Horizontal lines, rectangles and block-font headers.

package engine

import (
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelshow/protocol"
)

// HLine repeats Ch across [XStart, XEnd) on row Y.
type HLine struct {
	Y      Coordinate     `json:"y"`
	XStart Coordinate     `json:"x_start"`
	XEnd   Coordinate     `json:"x_end"`
	Ch     Char           `json:"ch"`
	Style  protocol.Style `json:"style"`
	Frames FrameRange     `json:"frames"`
	ZOrder int32          `json:"z_order"`
}

func (l *HLine) Kind() Kind              { return KindHLine }
func (l *HLine) frameRange() *FrameRange { return &l.Frames }
func (l *HLine) coordinates() []*Coordinate {
	return []*Coordinate{&l.Y, &l.XStart, &l.XEnd}
}

func (l *HLine) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !l.Frames.Contains(frame) {
		return ops
	}
	y := int(l.Y.Evaluate(frame))
	end := int(l.XEnd.Evaluate(frame))
	for x := int(l.XStart.Evaluate(frame)); x < end; x++ {
		ops = pushOp(ops, x, y, rune(l.Ch), l.Style, l.ZOrder)
	}
	return ops
}

// Rect draws a single-line box with an optional title set into the top edge.
type Rect struct {
	Position Position       `json:"position"`
	Width    Coordinate     `json:"width"`
	Height   Coordinate     `json:"height"`
	Title    string         `json:"title,omitempty"`
	Style    protocol.Style `json:"style"`
	Frames   FrameRange     `json:"frames"`
	ZOrder   int32          `json:"z_order"`
}

func (r *Rect) Kind() Kind              { return KindRect }
func (r *Rect) frameRange() *FrameRange { return &r.Frames }
func (r *Rect) coordinates() []*Coordinate {
	return []*Coordinate{&r.Position.X, &r.Position.Y, &r.Width, &r.Height}
}

func (r *Rect) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !r.Frames.Contains(frame) {
		return ops
	}
	x, y := r.Position.At(frame)
	w := int(r.Width.Evaluate(frame))
	h := int(r.Height.Evaluate(frame))
	st, z := r.Style, r.ZOrder

	// Top edge.
	ops = pushOp(ops, x, y, '┌', st, z)
	for i := 1; i < w-1; i++ {
		ops = pushOp(ops, x+i, y, '─', st, z)
	}
	if w > 1 {
		ops = pushOp(ops, x+w-1, y, '┐', st, z)
	}

	for j := 1; j < h-1; j++ {
		ops = pushOp(ops, x, y+j, '│', st, z)
		if w > 1 {
			ops = pushOp(ops, x+w-1, y+j, '│', st, z)
		}
	}

	if h > 1 {
		by := y + h - 1
		ops = pushOp(ops, x, by, '└', st, z)
		for i := 1; i < w-1; i++ {
			ops = pushOp(ops, x+i, by, '─', st, z)
		}
		if w > 1 {
			ops = pushOp(ops, x+w-1, by, '┘', st, z)
		}
	}

	// The title sits one layer above the border so it wins the tie. It is
	// clipped by display width; a wide rune that would reach the right
	// corner is dropped along with the rest.
	if r.Title != "" && w > 0 {
		tx := x + 2
		for _, ch := range r.Title {
			cw := runewidth.RuneWidth(ch)
			if cw == 0 {
				continue
			}
			if tx+cw-1 >= x+w-1 {
				break
			}
			ops = pushOp(ops, tx, y, ch, st, z+1)
			tx += cw
		}
	}
	return ops
}

// Header renders Text in the five-row block font. Filled pixels use Ch;
// with a background colour the empty pixels and inter-glyph gaps are
// painted too.
type Header struct {
	Text     string         `json:"text"`
	Position Position       `json:"position"`
	Style    protocol.Style `json:"style"`
	Frames   FrameRange     `json:"frames"`
	ZOrder   int32          `json:"z_order"`
	Ch       Char           `json:"ch"`
}

func (h *Header) Kind() Kind              { return KindHeader }
func (h *Header) frameRange() *FrameRange { return &h.Frames }
func (h *Header) coordinates() []*Coordinate {
	return []*Coordinate{&h.Position.X, &h.Position.Y}
}

func (h *Header) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !h.Frames.Contains(frame) {
		return ops
	}
	bx, by := h.Position.At(frame)
	hasBg := h.Style.Bg.IsSet()
	blank := protocol.Style{Bg: h.Style.Bg}
	cursor := 0
	for _, r := range h.Text {
		g, ok := LookupGlyph(r)
		if !ok {
			continue
		}
		w := g.Width()
		for row, line := range g {
			for col, px := range []byte(line) {
				switch {
				case px == '#':
					ops = pushOp(ops, bx+cursor+col, by+row, rune(h.Ch), h.Style, h.ZOrder)
				case hasBg:
					ops = pushOp(ops, bx+cursor+col, by+row, ' ', blank, h.ZOrder)
				}
			}
		}
		if hasBg {
			for row := 0; row < GlyphHeight; row++ {
				ops = pushOp(ops, bx+cursor+w, by+row, ' ', blank, h.ZOrder)
			}
		}
		cursor += w + 1
	}
	return ops
}

// Group collects member indices for editing. It draws nothing.
type Group struct {
	Members []int      `json:"members"`
	Frames  FrameRange `json:"frames"`
	ZOrder  int32      `json:"z_order"`
}

func (g *Group) Kind() Kind                                             { return KindGroup }
func (g *Group) frameRange() *FrameRange                                { return &g.Frames }
func (g *Group) coordinates() []*Coordinate                             { return nil }
func (g *Group) Resolve(_ int, ops []protocol.DrawOp) []protocol.DrawOp { return ops }
