// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/engine_test.go
// Summary: Compilation is deterministic and independent of worker count.
// Usage: Executed during `go test` to guard against regressions.

package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/framegrace/texelshow/protocol"
)

func richDeck(frames int) *SourcePresentation {
	src := Blank(60, 20, frames)
	src.AddObject(&Header{Text: "HI", Position: Position{X: Fixed(1), Y: Fixed(1)}, Ch: '█', Frames: all(frames)})
	src.AddObject(&Label{Text: "moving text that wraps", Position: Position{X: Animated(0, 30, 0, frames-1), Y: Fixed(8)}, Width: Fixed(10), Frames: all(frames), ZOrder: 2})
	src.AddObject(&Rect{Position: Position{X: Fixed(0), Y: Fixed(0)}, Width: Fixed(60), Height: Fixed(20), Title: "deck", Frames: all(frames)})
	tbl, _ := NewObject(KindTable, 0, frames)
	tbl.(*Table).SetCell(0, 0, "cell")
	src.AddObject(tbl)
	src.AddObject(&Arrow{X1: Fixed(40), Y1: Fixed(2), X2: Fixed(50), Y2: Animated(2, 12, 0, frames), Head: true, Frames: all(frames)})
	src.AddObject(&Code{Text: "func main() {\n\tprintln(1)\n}\n", Language: "go", Position: Position{X: Fixed(30), Y: Fixed(14)}, Frames: all(frames)})
	src.AddObject(&QRCode{Content: "texelshow", Level: "low", Position: Position{X: Fixed(0), Y: Fixed(0)}, Frames: FrameRange{Start: frames - 1, End: frames}})
	return src
}

func TestCompileProducesOneScenePerFrame(t *testing.T) {
	src := richDeck(6)
	scenes := Compile(src)
	if len(scenes) != 6 {
		t.Fatalf("got %d scenes", len(scenes))
	}
	for i, sc := range scenes {
		if sc.Width != 60 || sc.Height != 20 {
			t.Fatalf("scene %d size %dx%d", i, sc.Width, sc.Height)
		}
		if len(sc.Ops) == 0 {
			t.Fatalf("scene %d is empty", i)
		}
	}
	if len(Compile(Blank(10, 10, 0))) != 0 {
		t.Fatalf("zero-frame deck produced scenes")
	}
}

func TestCompileIsDeterministicAcrossWorkers(t *testing.T) {
	src := richDeck(12)
	want := New(Options{Workers: 1}).Compile(src)
	for _, workers := range []int{2, 5, 0} {
		got, err := New(Options{Workers: workers}).CompileContext(context.Background(), src)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("workers=%d: scenes differ from sequential compile", workers)
		}
	}
}

func TestCompileFollowsObjectOrder(t *testing.T) {
	src := Blank(10, 2, 1)
	src.AddObject(&HLine{Y: Fixed(0), XStart: Fixed(0), XEnd: Fixed(2), Ch: 'a', Frames: all(1)})
	src.AddObject(&HLine{Y: Fixed(0), XStart: Fixed(0), XEnd: Fixed(2), Ch: 'b', Frames: all(1)})
	ops := Compile(src)[0].Ops
	want := []rune{'a', 'a', 'b', 'b'}
	for i, op := range ops {
		if op.Ch != want[i] {
			t.Fatalf("op %d = %q", i, op.Ch)
		}
	}
}

func TestCompileContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{Workers: 2}).CompileContext(ctx, richDeck(50))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestSceneMatchesCompile(t *testing.T) {
	src := richDeck(4)
	e := New(Options{})
	scenes := e.Compile(src)
	if sc := e.Scene(src, 2); !reflect.DeepEqual(sc, scenes[2]) {
		t.Fatalf("single scene differs from compiled frame")
	}
}

func TestCodeHighlightsAndHonoursWidth(t *testing.T) {
	c := &Code{Text: "package main\n\nfunc f() {}\n", Language: "go", Width: Fixed(8), LineNumbers: true, Frames: all(1)}
	ops := New(Options{CodeTheme: "monokai"}).Scene(&SourcePresentation{Width: 20, Height: 5, FrameCount: 1, Objects: []Object{c}}, 0).Ops
	colored := false
	for _, op := range ops {
		if op.X >= 8 {
			t.Fatalf("op past width: %+v", op)
		}
		if op.Style.Fg.Model == protocol.ColorModelRGB {
			colored = true
		}
	}
	if !colored {
		t.Fatalf("no highlighted ops")
	}
	cells := paint(ops)
	if cells[cellKey{0, 0}] != '1' || cells[cellKey{0, 2}] != '3' {
		t.Fatalf("line numbers missing: %v", cells)
	}
	if cells[cellKey{2, 0}] != 'p' {
		t.Fatalf("code does not start after the gutter: %q", cells[cellKey{2, 0}])
	}
}

func TestDetectLanguage(t *testing.T) {
	if got := DetectLanguage("python", ""); got != "Python" {
		t.Fatalf("explicit language resolved to %q", got)
	}
	if got := DetectLanguage("no-such-language", "plain words"); got == "" {
		t.Fatalf("empty lexer name")
	}
}

func TestQRCodeDrawsHalfBlocks(t *testing.T) {
	q := &QRCode{Content: "hello", Level: "low", QuietZone: false, Frames: all(1)}
	w, h, err := q.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if w != 21 || h != 11 {
		t.Fatalf("version 1 code is %dx%d cells", w, h)
	}
	for _, op := range q.Resolve(0, nil) {
		switch op.Ch {
		case '█', '▀', '▄':
		default:
			t.Fatalf("unexpected rune %q", op.Ch)
		}
		if int(op.X) >= w || int(op.Y) >= h {
			t.Fatalf("op outside code: %+v", op)
		}
	}

	quiet := &QRCode{Content: "hello", Level: "low", QuietZone: true, Frames: all(1)}
	qw, _, _ := quiet.Size()
	if qw <= w {
		t.Fatalf("quiet zone did not add a border: %d <= %d", qw, w)
	}
}

func TestImageDrawsHalfBlockPixels(t *testing.T) {
	px := image.NewRGBA(image.Rect(0, 0, 2, 4))
	px.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	px.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	px.SetRGBA(1, 3, color.RGBA{G: 255, A: 255})
	im := &Image{Path: "x.png", Width: Fixed(2), Height: Fixed(2), Frames: all(1)}
	im.SetPixels(px)
	ops := im.Resolve(0, nil)
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops for 2 non-transparent cells, got %d", len(ops))
	}
	if ops[0].Style.Fg != protocol.RGB(255, 0, 0) || ops[0].Style.Bg != protocol.RGB(0, 0, 255) {
		t.Fatalf("first cell style %+v", ops[0].Style)
	}
	if ops[1].X != 1 || ops[1].Y != 1 || ops[1].Style.Fg.IsSet() {
		t.Fatalf("second cell %+v", ops[1])
	}
}
