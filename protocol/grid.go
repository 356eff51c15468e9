// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/grid.go
// Summary: Fixed-size cell grid with frame application and replay.

package protocol

import (
	"errors"
	"fmt"
)

var ErrFrameIndex = errors.New("protocol: frame index out of range")

// Grid is a width×height cell matrix stored row-major.
type Grid struct {
	Width  int
	Height int
	cells  []Cell
}

// NewGrid allocates a grid of blank cells.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{Width: width, Height: height, cells: make([]Cell, width*height)}
	g.Clear()
	return g
}

// Clear resets every cell to BlankCell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = BlankCell
	}
}

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the cell at (x, y), or BlankCell when out of bounds.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return BlankCell
	}
	return g.cells[y*g.Width+x]
}

// Set writes a cell; out-of-bounds writes are dropped.
func (g *Grid) Set(x, y int, c Cell) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.Width+x] = c
	return true
}

// Row returns the backing slice for row y. Callers must not retain it across writes.
func (g *Grid) Row(y int) []Cell {
	if y < 0 || y >= g.Height {
		return nil
	}
	return g.cells[y*g.Width : (y+1)*g.Width]
}

// Rows copies the grid into a fresh row-major matrix.
func (g *Grid) Rows() [][]Cell {
	out := make([][]Cell, g.Height)
	for y := 0; y < g.Height; y++ {
		row := make([]Cell, g.Width)
		copy(row, g.Row(y))
		out[y] = row
	}
	return out
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{Width: g.Width, Height: g.Height, cells: make([]Cell, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// Equal reports whether both grids have the same size and contents.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.Width != other.Width || g.Height != other.Height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the characters only, one line per row.
func (g *Grid) String() string {
	buf := make([]rune, 0, (g.Width+1)*g.Height)
	for y := 0; y < g.Height; y++ {
		for _, c := range g.Row(y) {
			buf = append(buf, c.Ch)
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

// Apply updates the grid with a frame. Full frames replace the contents
// (cells outside the grid are ignored, missing cells become blank); diff
// frames overwrite only the listed cells.
func (g *Grid) Apply(f Frame) {
	switch f.Kind {
	case FrameFull:
		g.Clear()
		for y, row := range f.Cells {
			for x, c := range row {
				g.Set(x, y, c)
			}
		}
	case FrameDiff:
		for _, ch := range f.Changes {
			g.Set(int(ch.X), int(ch.Y), ch.Cell)
		}
	}
}

// ReplayTo rebuilds the grid as it appears after frame index n.
func ReplayTo(p *PlayablePresentation, n int) (*Grid, error) {
	if p == nil || n < 0 || n >= len(p.Frames) {
		return nil, fmt.Errorf("%w: %d", ErrFrameIndex, n)
	}
	g := NewGrid(int(p.Contract.Width), int(p.Contract.Height))
	for i := 0; i <= n; i++ {
		g.Apply(p.Frames[i])
	}
	return g, nil
}
