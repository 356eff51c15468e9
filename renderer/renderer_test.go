// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: renderer/renderer_test.go
// Summary: Rasterization order, diff exactness and replay round trips.
// Usage: Executed during `go test` to guard against regressions.

package renderer

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/framegrace/texelshow/protocol"
)

var contract = protocol.TerminalContract{Width: 8, Height: 4}

func op(x, y int, ch rune, z int32) protocol.DrawOp {
	return protocol.DrawOp{X: uint16(x), Y: uint16(y), Ch: ch, Z: z}
}

func TestRasterizeHonoursZAndEmissionOrder(t *testing.T) {
	scene := protocol.ResolvedScene{Width: 8, Height: 4, Ops: []protocol.DrawOp{
		op(0, 0, 'c', 5),
		op(0, 0, 'a', 0),
		op(0, 0, 'b', 5),
		op(1, 0, 'x', 1),
		op(1, 0, 'y', 1),
		op(2, 0, 'h', 3),
		op(2, 0, 'l', -3),
	}}
	g := Rasterize(scene, contract)
	if got := g.At(0, 0).Ch; got != 'b' {
		t.Fatalf("later op of equal z should win, got %q", got)
	}
	if got := g.At(1, 0).Ch; got != 'y' {
		t.Fatalf("emission order tie-break, got %q", got)
	}
	if got := g.At(2, 0).Ch; got != 'h' {
		t.Fatalf("higher z should win, got %q", got)
	}
	if scene.Ops[0].Ch != 'c' {
		t.Fatalf("scene ops were reordered in place")
	}
}

func TestRasterizeDropsOutOfBounds(t *testing.T) {
	scene := protocol.ResolvedScene{Ops: []protocol.DrawOp{op(8, 0, 'x', 0), op(0, 4, 'y', 0), op(7, 3, 'z', 0)}}
	g := Rasterize(scene, contract)
	if g.At(7, 3).Ch != 'z' {
		t.Fatalf("in-bounds op missing")
	}
	blank := 0
	for _, row := range g.Rows() {
		for _, c := range row {
			if c == protocol.BlankCell {
				blank++
			}
		}
	}
	if blank != 8*4-1 {
		t.Fatalf("%d blank cells", blank)
	}
}

func TestRenderFirstFrameIsFull(t *testing.T) {
	scenes := []protocol.ResolvedScene{
		{Ops: []protocol.DrawOp{op(1, 1, 'a', 0)}},
		{Ops: []protocol.DrawOp{op(1, 1, 'a', 0)}},
		{Ops: []protocol.DrawOp{op(2, 1, 'b', 0)}},
	}
	p := Render(scenes, contract)
	if len(p.Frames) != 3 || p.Frames[0].Kind != protocol.FrameFull {
		t.Fatalf("frames %+v", p.Frames)
	}
	if p.Frames[1].Kind != protocol.FrameDiff || len(p.Frames[1].Changes) != 0 {
		t.Fatalf("identical frame produced changes %+v", p.Frames[1])
	}
	want := []protocol.CellChange{
		{X: 1, Y: 1, Cell: protocol.BlankCell},
		{X: 2, Y: 1, Cell: protocol.Cell{Ch: 'b'}},
	}
	if !reflect.DeepEqual(p.Frames[2].Changes, want) {
		t.Fatalf("changes %+v", p.Frames[2].Changes)
	}
	if len(Render(nil, contract).Frames) != 0 {
		t.Fatalf("empty scene list produced frames")
	}
}

func TestDiffDetectsStyleOnlyChanges(t *testing.T) {
	a := protocol.NewGrid(3, 1)
	b := a.Clone()
	b.Set(1, 0, protocol.Cell{Ch: ' ', Style: protocol.Style{Bold: true}})
	for _, changes := range [][]protocol.CellChange{
		Diff(a, b),
		DiffWithDigests(a, b, RowDigests(a), RowDigests(b)),
	} {
		if len(changes) != 1 || changes[0].X != 1 {
			t.Fatalf("changes %+v", changes)
		}
	}
}

func randomScenes(rng *rand.Rand, frames int) []protocol.ResolvedScene {
	runes := []rune("ab─│█ ")
	colors := []protocol.Color{{}, protocol.Named(protocol.Red), protocol.RGB(10, 20, 30)}
	scenes := make([]protocol.ResolvedScene, frames)
	for f := range scenes {
		n := rng.Intn(30)
		for range n {
			scenes[f].Ops = append(scenes[f].Ops, protocol.DrawOp{
				X:     uint16(rng.Intn(10)),
				Y:     uint16(rng.Intn(6)),
				Ch:    runes[rng.Intn(len(runes))],
				Style: protocol.Style{Fg: colors[rng.Intn(len(colors))], Bold: rng.Intn(2) == 0},
				Z:     int32(rng.Intn(3)),
			})
		}
	}
	return scenes
}

func TestReplayMatchesRasterizedGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scenes := randomScenes(rng, 25)
	for _, rowHash := range []bool{false, true} {
		p := New(Options{Workers: 3, RowHash: rowHash}).Render(scenes, contract, nil)
		for n := range scenes {
			g, err := protocol.ReplayTo(p, n)
			if err != nil {
				t.Fatalf("replay %d: %v", n, err)
			}
			if want := Rasterize(scenes[n], contract); !g.Equal(want) {
				t.Fatalf("rowHash=%v frame %d: replay differs\n%s\nwant\n%s", rowHash, n, g, want)
			}
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	scenes := randomScenes(rand.New(rand.NewSource(11)), 15)
	want := New(Options{Workers: 1}).Render(scenes, contract, nil)
	for _, opts := range []Options{{Workers: 4}, {Workers: 4, RowHash: true}, {}} {
		if got := New(opts).Render(scenes, contract, nil); !reflect.DeepEqual(got, want) {
			t.Fatalf("options %+v changed the output", opts)
		}
	}
}

func TestRenderCopiesMarkers(t *testing.T) {
	markers := []protocol.Marker{{FrameIndex: 0, Label: "intro"}}
	p := New(Options{}).Render([]protocol.ResolvedScene{{}}, contract, markers)
	markers[0].Label = "changed"
	if len(p.Markers) != 1 || p.Markers[0].Label != "intro" {
		t.Fatalf("markers %+v", p.Markers)
	}
}

func TestRenderContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).RenderContext(ctx, make([]protocol.ResolvedScene, 10), contract, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	scenes := []protocol.ResolvedScene{{}, {Ops: []protocol.DrawOp{op(0, 0, 'x', 0), op(1, 0, 'y', 0)}}}
	s := Summarize(Render(scenes, contract))
	if s != (Stats{Frames: 2, FullFrames: 1, ChangedCells: 2}) {
		t.Fatalf("stats %+v", s)
	}
}
