// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/label.go
// Summary: Text labels with word wrap, list indents and optional frames.

package engine

import (
	"strings"

	"github.com/framegrace/texelshow/protocol"
)

// Label draws text at a position. With a positive width the text wraps into
// that box; a positive height truncates or pads the row count. When the
// style carries a background the whole box is filled, otherwise only
// non-space characters are painted.
type Label struct {
	Text       string          `json:"text"`
	Position   Position        `json:"position"`
	Width      Coordinate      `json:"width"`
	Height     Coordinate      `json:"height"`
	Framed     bool            `json:"framed,omitempty"`
	FrameStyle *protocol.Style `json:"frame_style,omitempty"`
	Style      protocol.Style  `json:"style"`
	Frames     FrameRange      `json:"frames"`
	ZOrder     int32           `json:"z_order"`
}

func (l *Label) Kind() Kind              { return KindLabel }
func (l *Label) frameRange() *FrameRange { return &l.Frames }
func (l *Label) coordinates() []*Coordinate {
	return []*Coordinate{&l.Position.X, &l.Position.Y, &l.Width, &l.Height}
}

func (l *Label) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !l.Frames.Contains(frame) {
		return ops
	}
	bx, by := l.Position.At(frame)
	w := int(l.Width.Evaluate(frame))
	h := int(l.Height.Evaluate(frame))
	hasBg := l.Style.Bg.IsSet()
	border := l.Style
	if l.FrameStyle != nil {
		border = *l.FrameStyle
	}

	if w > 0 {
		rows := l.rows(w, h)
		for r, row := range rows {
			emitW := len(row)
			if hasBg {
				emitW = w
			}
			for col := 0; col < emitW; col++ {
				ch := ' '
				if col < len(row) {
					ch = row[col]
				}
				if ch == ' ' && !hasBg {
					continue
				}
				ops = pushOp(ops, bx+col, by+r, ch, l.Style, l.ZOrder)
			}
		}
		if l.Framed {
			ops = drawFrame(ops, max(bx-1, 0), max(by-1, 0), w+2, len(rows)+2, border, l.ZOrder)
		}
		return ops
	}

	rows, maxLen := 0, 0
	for _, line := range strings.Split(l.Text, "\n") {
		if h > 0 && rows >= h {
			break
		}
		n := 0
		for _, ch := range line {
			if ch != ' ' || hasBg {
				ops = pushOp(ops, bx+n, by+rows, ch, l.Style, l.ZOrder)
			}
			n++
		}
		maxLen = max(maxLen, n)
		rows++
	}
	if l.Framed {
		fh := rows
		if h > 0 {
			fh = h
		}
		ops = drawFrame(ops, max(bx-1, 0), max(by-1, 0), maxLen+2, fh+2, border, l.ZOrder)
	}
	return ops
}

// rows wraps the text into width-w rows, truncated or padded to h when h > 0.
func (l *Label) rows(w, h int) [][]rune {
	var rows [][]rune
outer:
	for _, line := range strings.Split(l.Text, "\n") {
		if h > 0 && len(rows) >= h {
			break
		}
		for _, row := range wrapLine(line, w, listIndent(line)) {
			if h > 0 && len(rows) >= h {
				break outer
			}
			rows = append(rows, row)
		}
	}
	for h > 0 && len(rows) < h {
		rows = append(rows, nil)
	}
	return rows
}

// WrappedRows returns the rows a label occupies at frame, as strings.
func (l *Label) WrappedRows(frame int) []string {
	w := int(l.Width.Evaluate(frame))
	h := int(l.Height.Evaluate(frame))
	var out []string
	if w == 0 {
		for i, line := range strings.Split(l.Text, "\n") {
			if h > 0 && i >= h {
				break
			}
			out = append(out, line)
		}
		return out
	}
	for _, row := range l.rows(w, h) {
		out = append(out, string(padRow(row, w)))
	}
	return out
}

// drawFrame outlines a w by h box with single-line box-drawing characters.
func drawFrame(ops []protocol.DrawOp, x, y, w, h int, st protocol.Style, z int32) []protocol.DrawOp {
	if w < 2 || h < 2 {
		return ops
	}
	right, bottom := x+w-1, y+h-1
	ops = pushOp(ops, x, y, '┌', st, z)
	ops = pushOp(ops, right, y, '┐', st, z)
	ops = pushOp(ops, x, bottom, '└', st, z)
	ops = pushOp(ops, right, bottom, '┘', st, z)
	for i := 1; i < w-1; i++ {
		ops = pushOp(ops, x+i, y, '─', st, z)
		ops = pushOp(ops, x+i, bottom, '─', st, z)
	}
	for j := 1; j < h-1; j++ {
		ops = pushOp(ops, x, y+j, '│', st, z)
		ops = pushOp(ops, right, y+j, '│', st, z)
	}
	return ops
}
