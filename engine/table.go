// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/table.go
// Summary: Bordered tables with proportional columns and wrapped cells.
// Notes: Column fractions are taken as authored; they are not renormalised on load.

package engine

import (
	"math"
	"slices"

	"github.com/framegrace/texelshow/protocol"
)

// TableCell is one cell's content and optional style override.
type TableCell struct {
	Content string          `json:"content"`
	Style   *protocol.Style `json:"style,omitempty"`
}

// Table lays out Rows by len(ColWidths) cells across Width columns. Each
// column receives floor(avail*fraction) content columns and the last column
// absorbs the remainder, so the row width is exact.
type Table struct {
	Position   Position       `json:"position"`
	Width      Coordinate     `json:"width"`
	Height     Coordinate     `json:"height"`
	ColWidths  []float64      `json:"col_widths"`
	Rows       int            `json:"rows"`
	Cells      [][]TableCell  `json:"cells"`
	HeaderBold bool           `json:"header_bold"`
	Borders    bool           `json:"borders"`
	Style      protocol.Style `json:"style"`
	Frames     FrameRange     `json:"frames"`
	ZOrder     int32          `json:"z_order"`
}

func (t *Table) Kind() Kind              { return KindTable }
func (t *Table) frameRange() *FrameRange { return &t.Frames }
func (t *Table) coordinates() []*Coordinate {
	return []*Coordinate{&t.Position.X, &t.Position.Y, &t.Width, &t.Height}
}

// Columns returns the number of columns.
func (t *Table) Columns() int {
	return len(t.ColWidths)
}

// NormalizeCells resizes Cells to exactly Rows by Columns.
func (t *Table) NormalizeCells() {
	ncols := len(t.ColWidths)
	rows := max(t.Rows, 0)
	if len(t.Cells) > rows {
		t.Cells = t.Cells[:rows]
	}
	for len(t.Cells) < rows {
		t.Cells = append(t.Cells, nil)
	}
	for i, row := range t.Cells {
		if len(row) > ncols {
			row = row[:ncols]
		}
		for len(row) < ncols {
			row = append(row, TableCell{})
		}
		t.Cells[i] = row
	}
}

// Layout returns the content width and the x offset (from the table's left
// edge) of every column for a table total columns wide.
func (t *Table) Layout(total int) (widths, starts []int) {
	ncols := len(t.ColWidths)
	if ncols == 0 || total <= 0 {
		return nil, nil
	}
	avail := total
	if t.Borders {
		avail = max(total-(ncols+1), 0)
	}
	widths = make([]int, 0, ncols)
	used := 0
	for i, frac := range t.ColWidths {
		var w int
		if i == ncols-1 {
			w = max(avail-used, 0)
		} else {
			raw := int(math.Max(math.Floor(float64(avail)*frac), 0))
			w = min(raw, max(avail-used, 0))
		}
		widths = append(widths, w)
		used += w
	}
	starts = make([]int, 0, ncols)
	x := 0
	if t.Borders {
		x = 1
	}
	for i, cw := range widths {
		starts = append(starts, x)
		x += cw
		if t.Borders && i+1 < ncols {
			x++
		}
	}
	return widths, starts
}

func (t *Table) cell(row, col int) (TableCell, bool) {
	if row < 0 || row >= len(t.Cells) || col < 0 || col >= len(t.Cells[row]) {
		return TableCell{}, false
	}
	return t.Cells[row][col], true
}

// rowHeight is the tallest wrapped cell in row, at least one line.
func (t *Table) rowHeight(row int, widths []int) int {
	height := 1
	for col, cw := range widths {
		if cw == 0 {
			continue
		}
		c, _ := t.cell(row, col)
		height = max(height, len(wrapCell(c.Content, cw)))
	}
	return height
}

// ColumnSpan returns the [start, end) x span of a column's content at frame.
func (t *Table) ColumnSpan(frame, col int) (int, int, bool) {
	widths, starts := t.Layout(int(t.Width.Evaluate(frame)))
	if col < 0 || col >= len(widths) {
		return 0, 0, false
	}
	x := int(t.Position.X.Evaluate(frame)) + starts[col]
	return x, x + widths[col], true
}

// RowSpan returns the [start, end) y span of a row's content at frame,
// excluding border lines.
func (t *Table) RowSpan(frame, row int) (int, int, bool) {
	widths, _ := t.Layout(int(t.Width.Evaluate(frame)))
	y := int(t.Position.Y.Evaluate(frame))
	if t.Borders {
		y++
	}
	for r := 0; r < t.Rows; r++ {
		rh := t.rowHeight(r, widths)
		if r == row {
			return y, y + rh, true
		}
		y += rh
		if t.Borders {
			y++
		}
	}
	return 0, 0, false
}

// CellRef addresses one table cell.
type CellRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// TableOverlay carries editing highlights. Highlight is a column index to
// draw in red, or negative for none. A cursor or any selection switches the
// table into cell mode, where everything unselected is dimmed.
type TableOverlay struct {
	Highlight   int
	Selected    []CellRef
	Cursor      *CellRef
	BlinkHidden bool
}

// NoOverlay is the plain playback overlay.
var NoOverlay = TableOverlay{Highlight: -1}

func (o TableOverlay) cellMode() bool {
	return o.Cursor != nil || len(o.Selected) > 0
}

var (
	dimWhite = protocol.Style{Fg: protocol.Named(protocol.White), Dim: true}
	redFg    = protocol.Style{Fg: protocol.Named(protocol.Red)}
)

func (t *Table) Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp {
	return t.resolve(frame, NoOverlay, ops)
}

// ResolveWithOverlay resolves the table with editing highlights and, when the
// cursor is visible, a bold white block over the cursor cell one hundred
// layers above the table.
func (t *Table) ResolveWithOverlay(frame int, overlay TableOverlay, ops []protocol.DrawOp) []protocol.DrawOp {
	ops = t.resolve(frame, overlay, ops)
	if overlay.Cursor != nil && !overlay.BlinkHidden && t.Frames.Contains(frame) {
		ops = t.drawCursor(frame, *overlay.Cursor, ops)
	}
	return ops
}

func (t *Table) drawCursor(frame int, cur CellRef, ops []protocol.DrawOp) []protocol.DrawOp {
	x0, x1, ok := t.ColumnSpan(frame, cur.Col)
	if !ok {
		return ops
	}
	y0, y1, ok := t.RowSpan(frame, cur.Row)
	if !ok {
		return ops
	}
	st := protocol.Style{Fg: protocol.Named(protocol.White), Bold: true}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			ops = pushOp(ops, x, y, ' ', st, t.ZOrder+100)
		}
	}
	return ops
}

func (t *Table) resolve(frame int, overlay TableOverlay, ops []protocol.DrawOp) []protocol.DrawOp {
	if !t.Frames.Contains(frame) {
		return ops
	}
	baseX, baseY := t.Position.At(frame)
	total := int(t.Width.Evaluate(frame))
	ncols, nrows := len(t.ColWidths), t.Rows
	if total == 0 || ncols == 0 || nrows <= 0 {
		return ops
	}
	widths, starts := t.Layout(total)
	cellMode := overlay.cellMode()

	heights := make([]int, nrows)
	offsets := make([]int, nrows)
	y := 0
	if t.Borders {
		y = 1
	}
	for r := range nrows {
		heights[r] = t.rowHeight(r, widths)
		offsets[r] = y
		y += heights[r]
		if t.Borders {
			y++
		}
	}

	cellStyle := func(row, col int) protocol.Style {
		base := t.Style
		if c, ok := t.cell(row, col); ok && c.Style != nil {
			base = *c.Style
		}
		header := row == 0 && t.HeaderBold
		switch {
		case col == overlay.Highlight || slices.Contains(overlay.Selected, CellRef{Row: row, Col: col}):
			return protocol.Style{Fg: protocol.Named(protocol.Red), Bg: base.Bg, Bold: header || base.Bold}
		case cellMode:
			return dimWhite
		case header:
			base.Bold = true
			return base
		}
		return base
	}
	// col < 0 stands for the outer left edge, which never highlights.
	borderStyle := func(col int) protocol.Style {
		highlighted := overlay.Highlight >= 0 && col == overlay.Highlight
		switch {
		case cellMode && !highlighted:
			return dimWhite
		case highlighted:
			return redFg
		}
		return t.Style
	}

	z := t.ZOrder
	if t.Borders {
		for br := 0; br <= nrows; br++ {
			by := baseY
			if br > 0 {
				by = baseY + offsets[br-1] + heights[br-1]
			}
			bx := baseX
			for ci := range ncols {
				var corner rune
				switch {
				case br == 0 && ci == 0:
					corner = '┌'
				case br == 0:
					corner = '┬'
				case br == nrows && ci == 0:
					corner = '└'
				case br == nrows:
					corner = '┴'
				case ci == 0:
					corner = '├'
				default:
					corner = '┼'
				}
				cornerCol := ci
				if ci == 0 {
					cornerCol = -1
				}
				ops = pushOp(ops, bx, by, corner, borderStyle(cornerCol), z)
				bx++
				dash := borderStyle(ci)
				for range widths[ci] {
					ops = pushOp(ops, bx, by, '─', dash, z)
					bx++
				}
			}
			last := '┤'
			switch br {
			case 0:
				last = '┐'
			case nrows:
				last = '┘'
			}
			ops = pushOp(ops, bx, by, last, borderStyle(ncols-1), z)
		}

		for r := range nrows {
			ry := baseY + offsets[r]
			for line := range heights[r] {
				ly := ry + line
				ops = pushOp(ops, baseX, ly, '│', borderStyle(-1), z)
				for ci := range ncols {
					ops = pushOp(ops, baseX+starts[ci]+widths[ci], ly, '│', borderStyle(ci), z)
				}
			}
		}
	}

	for r := range nrows {
		ry := baseY + offsets[r]
		for ci := range ncols {
			cw := widths[ci]
			if cw == 0 {
				continue
			}
			cx := baseX + starts[ci]
			c, _ := t.cell(r, ci)
			st := cellStyle(r, ci)
			for li, row := range wrapCell(c.Content, cw) {
				for xi, ch := range row {
					if ch != ' ' || st.Bg.IsSet() {
						ops = pushOp(ops, cx+xi, ry+li, ch, st, z)
					}
				}
			}
		}
	}
	return ops
}

// AddColumn inserts an empty column at idx (clamped to the end). Existing
// fractions shrink by n/(n+1) and the new column takes 1/(n+1).
func (t *Table) AddColumn(idx int) {
	n := len(t.ColWidths)
	scale := float64(n) / float64(n+1)
	for i := range t.ColWidths {
		t.ColWidths[i] *= scale
	}
	idx = min(max(idx, 0), n)
	t.ColWidths = slices.Insert(t.ColWidths, idx, 1/float64(n+1))
	for i, row := range t.Cells {
		for len(row) < n {
			row = append(row, TableCell{})
		}
		t.Cells[i] = slices.Insert(row, idx, TableCell{})
	}
	t.NormalizeCells()
}

// RemoveColumn deletes column idx and rescales the remaining fractions to
// fill the removed share. The last column cannot be removed.
func (t *Table) RemoveColumn(idx int) {
	n := len(t.ColWidths)
	if n <= 1 || idx < 0 || idx >= n {
		return
	}
	removed := t.ColWidths[idx]
	t.ColWidths = slices.Delete(t.ColWidths, idx, idx+1)
	if remaining := 1 - removed; remaining > 0.001 {
		for i := range t.ColWidths {
			t.ColWidths[i] /= remaining
		}
	} else {
		for i := range t.ColWidths {
			t.ColWidths[i] = 1 / float64(len(t.ColWidths))
		}
	}
	for i, row := range t.Cells {
		if idx < len(row) {
			t.Cells[i] = slices.Delete(row, idx, idx+1)
		}
	}
}

// AddRow appends an empty row.
func (t *Table) AddRow() {
	t.Rows++
	t.NormalizeCells()
}

// RemoveRow deletes row idx. The last row cannot be removed.
func (t *Table) RemoveRow(idx int) {
	if t.Rows <= 1 || idx < 0 || idx >= t.Rows {
		return
	}
	if idx < len(t.Cells) {
		t.Cells = slices.Delete(t.Cells, idx, idx+1)
	}
	t.Rows--
	t.NormalizeCells()
}

// SetCell replaces the content of one cell.
func (t *Table) SetCell(row, col int, content string) bool {
	if row < 0 || row >= t.Rows || col < 0 || col >= len(t.ColWidths) {
		return false
	}
	t.NormalizeCells()
	t.Cells[row][col].Content = content
	return true
}
