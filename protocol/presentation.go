// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/presentation.go
// Summary: Boundary types between compiler, renderer and player.
// Usage: DrawOp/ResolvedScene stay in memory; PlayablePresentation is the on-disk artifact.

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DrawOp paints one character at an absolute cell position.
type DrawOp struct {
	X     uint16
	Y     uint16
	Ch    rune
	Style Style
	Z     int32
}

// ResolvedScene is the flat, ordered op list for one frame.
type ResolvedScene struct {
	Width  uint16
	Height uint16
	Ops    []DrawOp
}

// TerminalContract is the grid size a presentation was compiled for.
type TerminalContract struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

// Cell is one grid position. The zero Cell is not blank; use BlankCell.
type Cell struct {
	Ch    rune
	Style Style
}

// BlankCell is a space with the default style.
var BlankCell = Cell{Ch: ' '}

type cellJSON struct {
	Ch    string `json:"ch"`
	Style *Style `json:"style,omitempty"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{Ch: string(c.Ch)}
	if !c.Style.IsDefault() {
		st := c.Style
		out.Style = &st
	}
	return json.Marshal(out)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var in cellJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r, size := utf8.DecodeRuneInString(in.Ch)
	if size == 0 || size != len(in.Ch) {
		return fmt.Errorf("protocol: cell character must be exactly one rune, got %q", in.Ch)
	}
	c.Ch = r
	c.Style = Style{}
	if in.Style != nil {
		c.Style = *in.Style
	}
	return nil
}

// CellChange records one changed cell in a diff frame.
type CellChange struct {
	X    uint16 `json:"x"`
	Y    uint16 `json:"y"`
	Cell Cell   `json:"cell"`
}

// FrameKind distinguishes full grids from diffs.
type FrameKind uint8

const (
	FrameFull FrameKind = iota
	FrameDiff
)

func (k FrameKind) String() string {
	if k == FrameDiff {
		return "diff"
	}
	return "full"
}

// Frame is either a full grid (Cells, row-major) or a list of changes
// against the previous frame.
type Frame struct {
	Kind    FrameKind
	Cells   [][]Cell
	Changes []CellChange
}

// FullFrame wraps a grid snapshot.
func FullFrame(cells [][]Cell) Frame {
	return Frame{Kind: FrameFull, Cells: cells}
}

// DiffFrame wraps a change list.
func DiffFrame(changes []CellChange) Frame {
	return Frame{Kind: FrameDiff, Changes: changes}
}

var errUnknownFrameType = errors.New("protocol: unknown frame type")

type frameJSON struct {
	Type    string       `json:"type"`
	Cells   [][]Cell     `json:"cells,omitempty"`
	Changes []CellChange `json:"changes,omitempty"`
}

func (f Frame) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FrameFull:
		cells := f.Cells
		if cells == nil {
			cells = [][]Cell{}
		}
		return json.Marshal(struct {
			Type  string   `json:"type"`
			Cells [][]Cell `json:"cells"`
		}{Type: "full", Cells: cells})
	case FrameDiff:
		changes := f.Changes
		if changes == nil {
			changes = []CellChange{}
		}
		return json.Marshal(struct {
			Type    string       `json:"type"`
			Changes []CellChange `json:"changes"`
		}{Type: "diff", Changes: changes})
	default:
		return nil, errUnknownFrameType
	}
}

func (f *Frame) UnmarshalJSON(data []byte) error {
	var in frameJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Type {
	case "full":
		*f = FullFrame(in.Cells)
	case "diff":
		*f = DiffFrame(in.Changes)
	default:
		return fmt.Errorf("%w %q", errUnknownFrameType, in.Type)
	}
	return nil
}

// Marker labels a frame for navigation.
type Marker struct {
	FrameIndex int    `json:"frame_index"`
	Label      string `json:"label"`
}

// PlayablePresentation is the compiled, replayable output of the pipeline.
type PlayablePresentation struct {
	Contract TerminalContract `json:"contract"`
	Frames   []Frame          `json:"frames"`
	Markers  []Marker         `json:"markers,omitempty"`
}
