// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/arrow.go
// Summary: Straight and L-shaped arrows between two points.

package engine

import "github.com/framegrace/texelshow/protocol"

// Arrow connects (X1,Y1) to (X2,Y2). Diagonal arrows route through a single
// corner: horizontal first when |dx| >= |dy|, vertical first otherwise.
type Arrow struct {
	X1     Coordinate     `json:"x1"`
	Y1     Coordinate     `json:"y1"`
	X2     Coordinate     `json:"x2"`
	Y2     Coordinate     `json:"y2"`
	Head   bool           `json:"head"`
	HeadCh *Char          `json:"head_ch,omitempty"`
	BodyCh *Char          `json:"body_ch,omitempty"`
	Style  protocol.Style `json:"style"`
	Frames FrameRange     `json:"frames"`
	ZOrder int32          `json:"z_order"`
}

func (a *Arrow) Kind() Kind              { return KindArrow }
func (a *Arrow) frameRange() *FrameRange { return &a.Frames }
func (a *Arrow) coordinates() []*Coordinate {
	return []*Coordinate{&a.X1, &a.Y1, &a.X2, &a.Y2}
}

// headFamilies lists right, left, down and up heads of each style. A custom
// head picks its direction from whichever family it belongs to.
var headFamilies = [][4]rune{
	{'▶', '◀', '▼', '▲'},
	{'>', '<', 'v', '^'},
	{'→', '←', '↓', '↑'},
}

const (
	dirRight = iota
	dirLeft
	dirDown
	dirUp
)

func (a *Arrow) head(dir int) rune {
	if a.HeadCh != nil {
		custom := rune(*a.HeadCh)
		for _, fam := range headFamilies {
			for _, ch := range fam {
				if ch == custom {
					return fam[dir]
				}
			}
		}
		return custom
	}
	return headFamilies[0][dir]
}

func (a *Arrow) hHead(sx int) rune {
	if sx >= 0 {
		return a.head(dirRight)
	}
	return a.head(dirLeft)
}

func (a *Arrow) vHead(sy int) rune {
	if sy >= 0 {
		return a.head(dirDown)
	}
	return a.head(dirUp)
}

func (a *Arrow) hBody() rune {
	if a.BodyCh != nil {
		return rune(*a.BodyCh)
	}
	return '─'
}

func (a *Arrow) vBody() rune {
	if a.BodyCh == nil {
		return '│'
	}
	switch ch := rune(*a.BodyCh); ch {
	case '─':
		return '│'
	case '═':
		return '║'
	default:
		return ch
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (a *Arrow) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	if !a.Frames.Contains(frame) {
		return ops
	}
	x1, y1 := int(a.X1.Evaluate(frame)), int(a.Y1.Evaluate(frame))
	x2, y2 := int(a.X2.Evaluate(frame)), int(a.Y2.Evaluate(frame))
	dx, dy := x2-x1, y2-y1
	sx, sy := sign(dx), sign(dy)
	emit := func(x, y int, ch rune) {
		ops = pushOp(ops, x, y, ch, a.Style, a.ZOrder)
	}
	tip := func(head rune, body rune) rune {
		if a.Head {
			return head
		}
		return body
	}

	switch {
	case dx == 0 && dy == 0:
		emit(x1, y1, '*')
	case dx == 0:
		for y := y1; y != y2; y += sy {
			emit(x1, y, a.vBody())
		}
		emit(x2, y2, tip(a.vHead(sy), a.vBody()))
	case dy == 0:
		for x := x1; x != x2; x += sx {
			emit(x, y1, a.hBody())
		}
		emit(x2, y2, tip(a.hHead(sx), a.hBody()))
	case abs(dx) >= abs(dy):
		for x := x1; x != x2; x += sx {
			emit(x, y1, a.hBody())
		}
		var corner rune
		switch {
		case sx > 0 && sy > 0:
			corner = '┐'
		case sx > 0 && sy < 0:
			corner = '┘'
		case sx < 0 && sy > 0:
			corner = '┌'
		default:
			corner = '└'
		}
		emit(x2, y1, corner)
		for y := y1 + sy; y != y2; y += sy {
			emit(x2, y, a.vBody())
		}
		emit(x2, y2, tip(a.vHead(sy), a.vBody()))
	default:
		for y := y1; y != y2; y += sy {
			emit(x1, y, a.vBody())
		}
		var corner rune
		switch {
		case sx > 0 && sy > 0:
			corner = '└'
		case sx > 0 && sy < 0:
			corner = '┌'
		case sx < 0 && sy > 0:
			corner = '┘'
		default:
			corner = '┐'
		}
		emit(x1, y2, corner)
		for x := x1 + sx; x != x2; x += sx {
			emit(x, y2, a.hBody())
		}
		emit(x2, y2, tip(a.hHead(sx), a.hBody()))
	}
	return ops
}
