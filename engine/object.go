// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/object.go
// Summary: Scene object interface, shared draw helpers and the type-tagged JSON envelope.

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/framegrace/texelshow/protocol"
)

// Kind names an object type as it appears in the "type" field of a source file.
type Kind string

const (
	KindLabel  Kind = "label"
	KindHLine  Kind = "h_line"
	KindRect   Kind = "rect"
	KindHeader Kind = "header"
	KindGroup  Kind = "group"
	KindArrow  Kind = "arrow"
	KindTable  Kind = "table"
	KindCode   Kind = "code"
	KindQRCode Kind = "qr_code"
	KindImage  Kind = "image"
)

// Kinds lists every object kind in source order.
var Kinds = []Kind{KindLabel, KindHLine, KindRect, KindHeader, KindGroup, KindArrow, KindTable, KindCode, KindQRCode, KindImage}

// Object is one authored scene element. Resolve appends the draw operations
// the object contributes at frame and must not depend on anything but its
// own fields and frame.
type Object interface {
	Kind() Kind
	Resolve(frame int, ops []protocol.DrawOp) []protocol.DrawOp

	frameRange() *FrameRange
	coordinates() []*Coordinate
}

// Visible reports whether obj is inside its frame range at frame.
func Visible(obj Object, frame int) bool {
	return obj.frameRange().Contains(frame)
}

// Frames returns the visibility range of obj.
func Frames(obj Object) FrameRange {
	return *obj.frameRange()
}

// SetFrames replaces the visibility range of obj.
func SetFrames(obj Object, r FrameRange) {
	*obj.frameRange() = r
}

// pushOp appends an op when the position fits the u16 cell space.
func pushOp(ops []protocol.DrawOp, x, y int, ch rune, st protocol.Style, z int32) []protocol.DrawOp {
	if x < 0 || y < 0 || x > math.MaxUint16 || y > math.MaxUint16 {
		return ops
	}
	return append(ops, protocol.DrawOp{X: uint16(x), Y: uint16(y), Ch: ch, Style: st, Z: z})
}

// Char is a single character serialised as a one-rune JSON string.
type Char rune

var errChar = errors.New("engine: expected a single character")

func (c Char) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(rune(c)))
}

func (c *Char) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if utf8.RuneCountInString(s) != 1 {
		return fmt.Errorf("%w, got %q", errChar, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	*c = Char(r)
	return nil
}

func charPtr(r rune) *Char {
	c := Char(r)
	return &c
}

// ErrUnknownKind is returned when a source object has an unrecognised type tag.
var ErrUnknownKind = errors.New("engine: unknown object type")

// requiredFields mirrors the fields a source object cannot omit.
var requiredFields = map[Kind][]string{
	KindLabel:  {"text", "position", "frames"},
	KindHLine:  {"y", "x_start", "x_end", "frames"},
	KindRect:   {"position", "width", "height", "frames"},
	KindHeader: {"text", "position", "frames"},
	KindGroup:  {"members", "frames"},
	KindArrow:  {"x1", "y1", "x2", "y2", "frames"},
	KindTable:  {"position", "col_widths", "rows", "frames"},
	KindCode:   {"text", "position", "frames"},
	KindQRCode: {"content", "position", "frames"},
	KindImage:  {"path", "position", "width", "height", "frames"},
}

// newDefault returns an object of kind carrying every serde-style default,
// ready to have a source record decoded over it.
func newDefault(kind Kind) (Object, bool) {
	switch kind {
	case KindLabel:
		return &Label{Width: Fixed(0), Height: Fixed(0)}, true
	case KindHLine:
		return &HLine{Ch: '─'}, true
	case KindRect:
		return &Rect{}, true
	case KindHeader:
		return &Header{Ch: '█'}, true
	case KindGroup:
		return &Group{}, true
	case KindArrow:
		return &Arrow{Head: true}, true
	case KindTable:
		return &Table{Width: Fixed(30), Height: Fixed(0), Borders: true}, true
	case KindCode:
		return &Code{Width: Fixed(0), Height: Fixed(0)}, true
	case KindQRCode:
		return &QRCode{Level: "medium", QuietZone: true}, true
	case KindImage:
		return &Image{}, true
	}
	return nil, false
}

// DecodeObject decodes one type-tagged source record.
func DecodeObject(data []byte) (Object, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	rawKind, ok := fields["type"]
	if !ok {
		return nil, fmt.Errorf("%w: missing type", ErrUnknownKind)
	}
	var kind Kind
	if err := json.Unmarshal(rawKind, &kind); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, err)
	}
	obj, ok := newDefault(kind)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	for _, name := range requiredFields[kind] {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%s: missing field %q", kind, name)
		}
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if t, ok := obj.(*Table); ok {
		t.NormalizeCells()
	}
	return obj, nil
}

// EncodeObject writes obj with its "type" tag first.
func EncodeObject(obj Object) ([]byte, error) {
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(obj.Kind())
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+len(tag)+10)
	out = append(out, `{"type":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
	}
	out = append(out, body[1:]...)
	return out, nil
}
