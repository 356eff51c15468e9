// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/frame_delta.go
// Summary: Compact binary encoding of a frame as a style table plus styled row spans.

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"
)

// FrameDeltaFlags describes how a delta is applied.
type FrameDeltaFlags uint8

const (
	FrameDeltaNone FrameDeltaFlags = 0
	// FrameDeltaFull marks a delta that covers every row of the grid.
	FrameDeltaFull FrameDeltaFlags = 1 << 0
)

// ColorModel represents how colours are encoded for a style.
type ColorModel uint8

const (
	ColorModelDefault ColorModel = iota
	ColorModelANSI16
	ColorModelANSI256
	ColorModelRGB
)

// StyleEntry captures the styling information applied to spans. Values are raw
// integers; it is up to higher layers to translate to tcell.Style.
type StyleEntry struct {
	AttrFlags uint16
	FgModel   ColorModel
	FgValue   uint32
	BgModel   ColorModel
	BgValue   uint32
}

const (
	AttrBold uint16 = 1 << iota
	AttrUnderline
	AttrReverse
	AttrBlink
	AttrDim
	AttrItalic
)

// CellSpan covers a contiguous set of cells on a row that share the same style.
// Each rune of Text occupies exactly one cell.
type CellSpan struct {
	StartCol   uint16
	Text       string
	StyleIndex uint16
}

// RowDelta captures updates for a single row.
type RowDelta struct {
	Row   uint16
	Spans []CellSpan
}

// FrameDelta is the binary payload for one frame.
type FrameDelta struct {
	Index  uint32
	Flags  FrameDeltaFlags
	Styles []StyleEntry
	Rows   []RowDelta
}

var (
	ErrDeltaTooLarge = errors.New("protocol: frame delta exceeds limits")
	errInvalidSpan   = errors.New("protocol: invalid span")
)

type positionedCell struct {
	x, y int
	cell Cell
}

// DeltaFromFrame converts a frame into its span representation. Diff changes
// are emitted in row-major order.
func DeltaFromFrame(index int, f Frame) (FrameDelta, error) {
	delta := FrameDelta{Index: uint32(index)}
	var cells []positionedCell
	switch f.Kind {
	case FrameFull:
		delta.Flags = FrameDeltaFull
		for y, row := range f.Cells {
			for x, c := range row {
				cells = append(cells, positionedCell{x: x, y: y, cell: c})
			}
		}
	case FrameDiff:
		cells = make([]positionedCell, len(f.Changes))
		for i, ch := range f.Changes {
			cells[i] = positionedCell{x: int(ch.X), y: int(ch.Y), cell: ch.Cell}
		}
		sort.SliceStable(cells, func(i, j int) bool {
			if cells[i].y != cells[j].y {
				return cells[i].y < cells[j].y
			}
			return cells[i].x < cells[j].x
		})
	default:
		return delta, errUnknownFrameType
	}
	styleIndex := make(map[Style]uint16)
	var rowSpans []CellSpan
	currentRow := -1
	var text []rune
	var span CellSpan
	nextCol := -1

	flushSpan := func() {
		if len(text) > 0 {
			span.Text = string(text)
			rowSpans = append(rowSpans, span)
		}
		text = text[:0]
		nextCol = -1
	}
	flushRow := func() {
		flushSpan()
		if currentRow >= 0 {
			delta.Rows = append(delta.Rows, RowDelta{Row: uint16(currentRow), Spans: rowSpans})
		}
		rowSpans = nil
	}

	for _, pc := range cells {
		if pc.x > 0xFFFF || pc.y > 0xFFFF {
			return delta, ErrDeltaTooLarge
		}
		if pc.y != currentRow {
			flushRow()
			currentRow = pc.y
		}
		idx, ok := styleIndex[pc.cell.Style]
		if !ok {
			if len(delta.Styles) >= 0xFFFF {
				return delta, ErrDeltaTooLarge
			}
			idx = uint16(len(delta.Styles))
			styleIndex[pc.cell.Style] = idx
			delta.Styles = append(delta.Styles, pc.cell.Style.Entry())
		}
		if pc.x != nextCol || idx != span.StyleIndex {
			flushSpan()
			span = CellSpan{StartCol: uint16(pc.x), StyleIndex: idx}
		}
		text = append(text, pc.cell.Ch)
		nextCol = pc.x + 1
	}
	flushRow()
	return delta, nil
}

// Frame expands the delta back into a frame. Full deltas are laid onto a
// contract-sized blank grid.
func (d FrameDelta) Frame(contract TerminalContract) (Frame, error) {
	styleAt := func(i uint16) (Style, error) {
		if int(i) >= len(d.Styles) {
			return Style{}, errInvalidSpan
		}
		return d.Styles[i].Style(), nil
	}

	if d.Flags&FrameDeltaFull != 0 {
		g := NewGrid(int(contract.Width), int(contract.Height))
		for _, row := range d.Rows {
			for _, span := range row.Spans {
				st, err := styleAt(span.StyleIndex)
				if err != nil {
					return Frame{}, err
				}
				col := int(span.StartCol)
				for _, r := range span.Text {
					g.Set(col, int(row.Row), Cell{Ch: r, Style: st})
					col++
				}
			}
		}
		return FullFrame(g.Rows()), nil
	}

	var changes []CellChange
	for _, row := range d.Rows {
		for _, span := range row.Spans {
			st, err := styleAt(span.StyleIndex)
			if err != nil {
				return Frame{}, err
			}
			col := span.StartCol
			for _, r := range span.Text {
				changes = append(changes, CellChange{X: col, Y: row.Row, Cell: Cell{Ch: r, Style: st}})
				col++
			}
		}
	}
	return DiffFrame(changes), nil
}

// EncodeFrameDelta serialises the delta into a compact binary representation.
func EncodeFrameDelta(delta FrameDelta) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	if err := binary.Write(buf, binary.LittleEndian, delta.Index); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(delta.Flags))

	if len(delta.Styles) > 0xFFFF || len(delta.Rows) > 0xFFFF {
		return nil, ErrDeltaTooLarge
	}

	if err := binary.Write(buf, binary.LittleEndian, uint16(len(delta.Styles))); err != nil {
		return nil, err
	}
	for _, style := range delta.Styles {
		if err := binary.Write(buf, binary.LittleEndian, style.AttrFlags); err != nil {
			return nil, err
		}
		if err := buf.WriteByte(byte(style.FgModel)); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, style.FgValue); err != nil {
			return nil, err
		}
		if err := buf.WriteByte(byte(style.BgModel)); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, style.BgValue); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint16(len(delta.Rows))); err != nil {
		return nil, err
	}
	for _, row := range delta.Rows {
		if len(row.Spans) > 0xFFFF {
			return nil, ErrDeltaTooLarge
		}
		if err := binary.Write(buf, binary.LittleEndian, row.Row); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, uint16(len(row.Spans))); err != nil {
			return nil, err
		}
		for _, span := range row.Spans {
			textBytes := []byte(span.Text)
			if len(textBytes) > 0xFFFF {
				return nil, errInvalidSpan
			}
			if err := binary.Write(buf, binary.LittleEndian, span.StartCol); err != nil {
				return nil, err
			}
			if err := binary.Write(buf, binary.LittleEndian, uint16(len(textBytes))); err != nil {
				return nil, err
			}
			if err := binary.Write(buf, binary.LittleEndian, span.StyleIndex); err != nil {
				return nil, err
			}
			if len(textBytes) > 0 {
				if _, err := buf.Write(textBytes); err != nil {
					return nil, err
				}
			}
		}
	}

	return buf.Bytes(), nil
}

// DecodeFrameDelta reverses EncodeFrameDelta.
func DecodeFrameDelta(b []byte) (FrameDelta, error) {
	var delta FrameDelta
	if len(b) < 5 { // index(4)+flags(1)
		return delta, errPayloadShort
	}
	delta.Index = binary.LittleEndian.Uint32(b[:4])
	delta.Flags = FrameDeltaFlags(b[4])
	b = b[5:]

	if len(b) < 2 {
		return delta, errPayloadShort
	}
	styleCount := binary.LittleEndian.Uint16(b[:2])
	b = b[2:]
	delta.Styles = make([]StyleEntry, styleCount)
	for i := 0; i < int(styleCount); i++ {
		if len(b) < 12 { // attr(2) + fgModel(1)+fg(4)+bgModel(1)+bg(4)
			return delta, errPayloadShort
		}
		delta.Styles[i].AttrFlags = binary.LittleEndian.Uint16(b[:2])
		delta.Styles[i].FgModel = ColorModel(b[2])
		delta.Styles[i].FgValue = binary.LittleEndian.Uint32(b[3:7])
		delta.Styles[i].BgModel = ColorModel(b[7])
		delta.Styles[i].BgValue = binary.LittleEndian.Uint32(b[8:12])
		b = b[12:]
	}

	if len(b) < 2 {
		return delta, errPayloadShort
	}
	rowCount := binary.LittleEndian.Uint16(b[:2])
	b = b[2:]
	delta.Rows = make([]RowDelta, rowCount)
	for i := 0; i < int(rowCount); i++ {
		if len(b) < 4 {
			return delta, errPayloadShort
		}
		row := binary.LittleEndian.Uint16(b[:2])
		spanCount := binary.LittleEndian.Uint16(b[2:4])
		b = b[4:]
		spans := make([]CellSpan, spanCount)
		for s := 0; s < int(spanCount); s++ {
			if len(b) < 6 {
				return delta, errPayloadShort
			}
			startCol := binary.LittleEndian.Uint16(b[:2])
			textLen := binary.LittleEndian.Uint16(b[2:4])
			styleIndex := binary.LittleEndian.Uint16(b[4:6])
			b = b[6:]
			if len(b) < int(textLen) {
				return delta, errPayloadShort
			}
			text := string(b[:textLen])
			b = b[textLen:]
			spans[s] = CellSpan{StartCol: startCol, Text: text, StyleIndex: styleIndex}
		}
		delta.Rows[i] = RowDelta{Row: row, Spans: spans}
	}
	if len(b) != 0 {
		return delta, errExtraBytes
	}

	return delta, nil
}
