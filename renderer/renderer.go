// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: renderer/renderer.go
// Summary: Turns resolved scenes into a playable presentation.
// Usage: Called after engine compilation by the compile and serve commands.
// Notes: Rasterization runs concurrently per frame; diffs are computed in
// frame order because each depends on the previous grid.

package renderer

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelshow/protocol"
)

// Options tune rendering.
type Options struct {
	// Workers bounds concurrent rasterization; values below 1 mean GOMAXPROCS.
	Workers int
	// RowHash enables the row digest shortcut in the diff pass.
	RowHash bool
}

// Renderer rasterizes and diffs scenes.
type Renderer struct {
	opts Options
}

// New returns a renderer with opts.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render produces a playable presentation with default options.
func Render(scenes []protocol.ResolvedScene, contract protocol.TerminalContract) *protocol.PlayablePresentation {
	p, _ := New(Options{RowHash: true}).RenderContext(context.Background(), scenes, contract, nil)
	return p
}

// Render produces a playable presentation carrying a copy of markers.
func (r *Renderer) Render(scenes []protocol.ResolvedScene, contract protocol.TerminalContract, markers []protocol.Marker) *protocol.PlayablePresentation {
	p, _ := r.RenderContext(context.Background(), scenes, contract, markers)
	return p
}

type raster struct {
	grid    *protocol.Grid
	digests []uint64
}

// RenderContext rasterizes every scene and encodes frame 0 as a full frame
// and every later frame as a diff against the previous grid. The only error
// is the context's.
func (r *Renderer) RenderContext(ctx context.Context, scenes []protocol.ResolvedScene, contract protocol.TerminalContract, markers []protocol.Marker) (*protocol.PlayablePresentation, error) {
	rasters := make([]raster, len(scenes))
	workers := r.opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range scenes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			grid := Rasterize(scenes[i], contract)
			rasters[i].grid = grid
			if r.opts.RowHash {
				rasters[i].digests = RowDigests(grid)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frames := make([]protocol.Frame, 0, len(scenes))
	for i := range rasters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i == 0 {
			frames = append(frames, protocol.FullFrame(rasters[0].grid.Rows()))
			continue
		}
		prev, cur := rasters[i-1], rasters[i]
		frames = append(frames, protocol.DiffFrame(diff(prev.grid, cur.grid, prev.digests, cur.digests)))
		// The previous grid is no longer needed.
		rasters[i-1] = raster{}
	}
	return &protocol.PlayablePresentation{
		Contract: contract,
		Frames:   frames,
		Markers:  slices.Clone(markers),
	}, nil
}

// Stats summarises a playable presentation.
type Stats struct {
	Frames       int
	FullFrames   int
	ChangedCells int
}

// Summarize counts frames and diff cells in p.
func Summarize(p *protocol.PlayablePresentation) Stats {
	var s Stats
	for _, f := range p.Frames {
		s.Frames++
		if f.Kind == protocol.FrameFull {
			s.FullFrames++
			continue
		}
		s.ChangedCells += len(f.Changes)
	}
	return s
}
