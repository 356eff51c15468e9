// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/defaults.go
// Summary: Starter objects for the editor and one-line object summaries.

package engine

import (
	"fmt"
	"strings"
)

// NewObject returns a starter object of kind visible from frame to the end
// of the presentation.
func NewObject(kind Kind, frame, frameCount int) (Object, error) {
	frames := FrameRange{Start: frame, End: frameCount}
	origin := Position{X: Fixed(0), Y: Fixed(0)}
	switch kind {
	case KindLabel:
		return &Label{Text: "New Label", Position: origin, Width: Fixed(0), Height: Fixed(0), Frames: frames}, nil
	case KindHLine:
		return &HLine{Y: Fixed(0), XStart: Fixed(0), XEnd: Fixed(20), Ch: '─', Frames: frames}, nil
	case KindRect:
		return &Rect{Position: origin, Width: Fixed(10), Height: Fixed(5), Frames: frames}, nil
	case KindHeader:
		return &Header{Text: "TITLE", Position: origin, Ch: '█', Frames: frames}, nil
	case KindGroup:
		return &Group{Members: []int{}, Frames: frames}, nil
	case KindArrow:
		return &Arrow{X1: Fixed(5), Y1: Fixed(5), X2: Fixed(20), Y2: Fixed(5), Head: true, Frames: frames}, nil
	case KindTable:
		t := &Table{
			Position:  origin,
			Width:     Fixed(30),
			Height:    Fixed(0),
			ColWidths: []float64{0.5, 0.5},
			Rows:      2,
			Borders:   true,
			Frames:    frames,
		}
		t.NormalizeCells()
		return t, nil
	case KindCode:
		return &Code{Text: "package main\n", Position: origin, Language: "go", Width: Fixed(0), Height: Fixed(0), Frames: frames}, nil
	case KindQRCode:
		return &QRCode{Content: "https://example.com", Position: origin, Level: "medium", QuietZone: true, Frames: frames}, nil
	case KindImage:
		return &Image{Path: "image.png", Position: origin, Width: Fixed(20), Height: Fixed(10), Frames: frames}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Summary is a one-line description of obj as shown in object lists.
// Coordinates are reported at frame 0.
func Summary(obj Object) string {
	switch o := obj.(type) {
	case *Label:
		return fmt.Sprintf("Label: %q", truncateRunes(firstLine(o.Text), 15))
	case *HLine:
		return fmt.Sprintf("HLine: y=%d x=%d..%d", o.Y.Evaluate(0), o.XStart.Evaluate(0), o.XEnd.Evaluate(0))
	case *Rect:
		return fmt.Sprintf("Rect: %dx%d", o.Width.Evaluate(0), o.Height.Evaluate(0))
	case *Header:
		return fmt.Sprintf("Header: %q", truncateRunes(o.Text, 10))
	case *Group:
		return fmt.Sprintf("Group: %d members", len(o.Members))
	case *Arrow:
		return fmt.Sprintf("Arrow: (%d,%d)→(%d,%d)", o.X1.Evaluate(0), o.Y1.Evaluate(0), o.X2.Evaluate(0), o.Y2.Evaluate(0))
	case *Table:
		return fmt.Sprintf("Table: %dr×%dc", o.Rows, len(o.ColWidths))
	case *Code:
		lang := o.Language
		if lang == "" {
			lang = "auto"
		}
		return fmt.Sprintf("Code: %s, %d lines", lang, strings.Count(strings.TrimSuffix(o.Text, "\n"), "\n")+1)
	case *QRCode:
		return fmt.Sprintf("QRCode: %q", truncateRunes(o.Content, 20))
	case *Image:
		return fmt.Sprintf("Image: %s %dx%d", o.Path, o.Width.Evaluate(0), o.Height.Evaluate(0))
	}
	return string(obj.Kind())
}
