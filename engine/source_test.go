// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/source_test.go
// Summary: Source document parsing, saving and validation.
// Usage: Executed during `go test` to guard against regressions.

package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/framegrace/texelshow/protocol"
)

const sampleSource = `{
  "width": 40,
  "height": 12,
  "frame_count": 3,
  "objects": [
    {"type": "label", "text": "Hi", "position": {"x": 1, "y": {"fixed": 2}}, "frames": {"start": 0, "end": 3},
     "style": {"fg": "yellow", "bg": {"r": 1, "g": 2, "b": 3}, "bold": true}},
    {"type": "arrow", "x1": 0, "y1": 0, "x2": {"animated": {"from": 0, "to": 10, "start_frame": 0, "end_frame": 2}}, "y2": 0,
     "frames": {"start": 1, "end": 3}, "z_order": 4},
    {"type": "group", "members": [0, 1], "frames": {"start": 0, "end": 3}}
  ],
  "markers": [{"frame_index": 1, "label": "middle"}]
}`

func TestParseSource(t *testing.T) {
	src, err := ParseSource([]byte(sampleSource))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if src.Width != 40 || src.Height != 12 || src.FrameCount != 3 || len(src.Objects) != 3 {
		t.Fatalf("unexpected document %+v", src)
	}
	l := src.Objects[0].(*Label)
	if l.Style.Fg != protocol.Named(protocol.Yellow) || l.Style.Bg != protocol.RGB(1, 2, 3) || !l.Style.Bold {
		t.Fatalf("label style %+v", l.Style)
	}
	a := src.Objects[1].(*Arrow)
	if !a.Head || a.X2.Kind != CoordAnimated || a.ZOrder != 4 {
		t.Fatalf("arrow %+v", a)
	}
	if len(src.Markers) != 1 || src.Markers[0].Label != "middle" {
		t.Fatalf("markers %+v", src.Markers)
	}
	if err := src.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseSourceRejectsMissingFields(t *testing.T) {
	for _, field := range []string{"width", "height", "frame_count", "objects"} {
		doc := map[string]string{
			"width":       `"width": 10`,
			"height":      `"height": 5`,
			"frame_count": `"frame_count": 1`,
			"objects":     `"objects": []`,
		}
		delete(doc, field)
		parts := make([]string, 0, len(doc))
		for _, p := range doc {
			parts = append(parts, p)
		}
		if _, err := ParseSource([]byte("{" + strings.Join(parts, ",") + "}")); err == nil {
			t.Fatalf("document without %s parsed", field)
		}
	}
}

func TestParseSourceReportsObjectIndex(t *testing.T) {
	_, err := ParseSource([]byte(`{"width":1,"height":1,"frame_count":1,"objects":[
		{"type":"group","members":[],"frames":{"start":0,"end":1}},
		{"type":"blob","frames":{"start":0,"end":1}}]}`))
	if err == nil {
		t.Fatalf("unknown type parsed")
	}
	if !errors.Is(err, ErrUnknownKind) || !strings.Contains(err.Error(), "objects[1]") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParseSourceYAML(t *testing.T) {
	doc := `
width: 20
height: 6
frame_count: 2
objects:
  - type: h_line
    y: 1
    x_start: 0
    x_end: {fixed: 5}
    ch: "="
    frames: {start: 0, end: 2}
`
	src, err := ParseSourceYAML([]byte(doc))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	l := src.Objects[0].(*HLine)
	if l.Ch != '=' || l.XEnd.Evaluate(0) != 5 {
		t.Fatalf("line %+v", l)
	}
}

func TestSaveAndReadRoundTrip(t *testing.T) {
	src, err := ParseSource([]byte(sampleSource))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dir := t.TempDir()
	for _, name := range []string{"deck.json", "deck.yaml"} {
		path := filepath.Join(dir, name)
		if err := src.Save(path); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		back, err := ReadSource(path)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		want := Compile(src)
		got := Compile(back)
		if len(got) != len(want) {
			t.Fatalf("%s: %d scenes, want %d", name, len(got), len(want))
		}
		for i := range want {
			if len(got[i].Ops) != len(want[i].Ops) {
				t.Fatalf("%s frame %d: %d ops, want %d", name, i, len(got[i].Ops), len(want[i].Ops))
			}
			for j := range want[i].Ops {
				if got[i].Ops[j] != want[i].Ops[j] {
					t.Fatalf("%s frame %d op %d differs", name, i, j)
				}
			}
		}
	}
}

func TestReadSourceWrapsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"width":`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ReadSource(path)
	if err == nil || !strings.Contains(err.Error(), "broken.json") {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := ReadSource(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file error %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	src := Blank(10, 5, 2)
	src.AddObject(&Group{Members: []int{0, 7}, Frames: all(2)})
	src.AddObject(&Table{Width: Fixed(10), ColWidths: []float64{-0.5, 1}, Rows: 1, Frames: all(2)})
	src.AddObject(&QRCode{Content: "x", Level: "extreme", Frames: all(2)})
	src.AddObject(&HLine{XEnd: Animated(0, 3, -1, 1), Frames: all(2)})
	src.Markers = []protocol.Marker{{FrameIndex: 2, Label: "late"}}

	err := src.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		if !errors.As(e, &ve) {
			t.Fatalf("unexpected error type %T", e)
		}
		fields = append(fields, ve.Field)
	}
	want := []string{"content", "coordinate", "markers"}
	if strings.Join(fields, ",") != strings.Join(want, ",") {
		t.Fatalf("fields = %v", fields)
	}

	fields = fields[:0]
	for _, w := range src.Warnings() {
		fields = append(fields, w.Field)
	}
	want = []string{"members", "members", "col_widths"}
	if strings.Join(fields, ",") != strings.Join(want, ",") {
		t.Fatalf("warning fields = %v", fields)
	}
}

func TestStaleGroupMembersCompile(t *testing.T) {
	src := Blank(10, 3, 1)
	src.AddObject(&Label{Text: "hi", Width: Fixed(4), Frames: all(1)})
	src.AddObject(&Group{Members: []int{0, 7}, Frames: all(1)})
	if err := src.Validate(); err != nil {
		t.Fatalf("stale member rejected: %v", err)
	}
	if len(src.Warnings()) != 1 {
		t.Fatalf("warnings %v", src.Warnings())
	}
	if ops := Compile(src)[0].Ops; len(ops) != 2 {
		t.Fatalf("ops %+v", ops)
	}
	b, err := src.GroupBounds(1)
	if err != nil || b.W != 4 {
		t.Fatalf("bounds %+v, %v", b, err)
	}
}
