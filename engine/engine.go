// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: engine/engine.go
// Summary: Compiles a source presentation into one resolved scene per frame.
// Usage: Called by the compile, serve and edit commands before rendering.
// Notes: Frames are independent, so they may be resolved concurrently. Op
// order within a frame always follows object order.

package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/framegrace/texelshow/protocol"
)

// Options tune compilation. The zero value resolves frames on every CPU with
// the default code theme.
type Options struct {
	// Workers bounds concurrent frame resolution; values below 1 mean GOMAXPROCS.
	Workers int
	// CodeTheme is the chroma style for code blocks that do not name one.
	CodeTheme string
}

// preparer is implemented by objects that precompute expensive state once
// per compile. prepare returns a resolver to use in place of the object.
type preparer interface {
	prepare(Options) Object
}

// Engine is the semantic compiler.
type Engine struct {
	opts Options
}

// New returns an engine with opts.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Compile resolves every frame of src. It never fails; use CompileContext to
// bound the work with a context.
func Compile(src *SourcePresentation) []protocol.ResolvedScene {
	scenes, _ := New(Options{}).CompileContext(context.Background(), src)
	return scenes
}

// Compile resolves every frame of src.
func (e *Engine) Compile(src *SourcePresentation) []protocol.ResolvedScene {
	scenes, _ := e.CompileContext(context.Background(), src)
	return scenes
}

// CompileContext resolves every frame of src concurrently. The only error is
// the context's.
func (e *Engine) CompileContext(ctx context.Context, src *SourcePresentation) ([]protocol.ResolvedScene, error) {
	resolvers := e.resolvers(src)
	scenes := make([]protocol.ResolvedScene, src.FrameCount)

	workers := e.opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for frame := range src.FrameCount {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scenes[frame] = resolveFrame(src, resolvers, frame)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scenes, nil
}

// Scene resolves a single frame.
func (e *Engine) Scene(src *SourcePresentation, frame int) protocol.ResolvedScene {
	return resolveFrame(src, e.resolvers(src), frame)
}

func (e *Engine) resolvers(src *SourcePresentation) []Object {
	out := make([]Object, len(src.Objects))
	for i, obj := range src.Objects {
		if p, ok := obj.(preparer); ok {
			out[i] = p.prepare(e.opts)
			continue
		}
		out[i] = obj
	}
	return out
}

func resolveFrame(src *SourcePresentation, resolvers []Object, frame int) protocol.ResolvedScene {
	var ops []protocol.DrawOp
	for _, obj := range resolvers {
		ops = obj.Resolve(frame, ops)
	}
	return protocol.ResolvedScene{Width: src.Width, Height: src.Height, Ops: ops}
}
