// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/compile.go
// Summary: compile command: source file to playable presentation file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alecthomas/chroma/v2/styles"

	"github.com/framegrace/texelshow/engine"
	"github.com/framegrace/texelshow/internal/cache"
	"github.com/framegrace/texelshow/internal/sysinfo"
	"github.com/framegrace/texelshow/internal/watch"
	"github.com/framegrace/texelshow/protocol"
	"github.com/framegrace/texelshow/renderer"
)

var errUnknownTheme = errors.New("unknown code theme")

func runCompile(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	workers := fs.Int("workers", 0, "Concurrent frame workers (0 uses the configured value)")
	theme := fs.String("theme", "", "Default chroma style for code blocks")
	noCache := fs.Bool("no-cache", false, "Neither read nor write the compile cache")
	watchFiles := fs.Bool("watch", false, "Recompile whenever the source or its images change")
	stats := fs.Bool("stats", false, "Print diff and memory statistics")
	verbose := fs.Bool("verbose", false, "Log progress to stderr")

	positional, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("%w: compile <source> <output>", errUsage)
	}
	srcPath, outPath := positional[0], positional[1]

	setupLogging(*verbose, stderr)
	st := loadSettings()
	if *workers > 0 {
		st.workers = *workers
	}
	if *theme != "" {
		if _, ok := styles.Registry[*theme]; !ok {
			return fmt.Errorf("%w: %q", errUnknownTheme, *theme)
		}
		st.codeTheme = *theme
	}
	b := newBuilder(st, !*noCache)
	defer b.Close()

	compileOnce := func() error {
		p, cached, err := b.build(ctx, srcPath)
		if err != nil {
			return err
		}
		if err := protocol.SaveFile(outPath, p); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		note := ""
		if cached {
			note = " (cached)"
		}
		fmt.Fprintf(stderr, "Compiled %d frames from %s -> %s%s\n", len(p.Frames), srcPath, outPath, note)
		if *stats {
			printStats(ctx, stderr, p, b.cache)
		}
		return nil
	}

	if err := compileOnce(); err != nil {
		if !*watchFiles {
			return err
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	if !*watchFiles {
		return nil
	}
	return watchAndRun(ctx, srcPath, nil, st.watchDelay, stderr, func([]string) {
		if err := compileOnce(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	})
}

func printStats(ctx context.Context, w io.Writer, p *protocol.PlayablePresentation, c *cache.Cache) {
	s := renderer.Summarize(p)
	cells := int(p.Contract.Width) * int(p.Contract.Height)
	fmt.Fprintf(w, "Frames: %d (%d full), changed cells: %d", s.Frames, s.FullFrames, s.ChangedCells)
	if diffs := s.Frames - s.FullFrames; diffs > 0 && cells > 0 {
		fmt.Fprintf(w, ", %.1f%% of the grid per diff", 100*float64(s.ChangedCells)/float64(diffs*cells))
	}
	fmt.Fprintln(w)
	if snap, err := sysinfo.Sample(); err == nil {
		fmt.Fprintf(w, "Memory: %s\n", snap)
	}
	if c != nil {
		if cs, err := c.Stats(ctx); err == nil {
			fmt.Fprintf(w, "Cache: %d entries, %s\n", cs.Entries, sysinfo.FormatBytes(uint64(cs.Bytes)))
		}
	}
}

// watchAndRun calls fn with the changed paths after every settled change to
// srcPath, the images it referenced when watching began or any of extra,
// until ctx is done.
func watchAndRun(ctx context.Context, srcPath string, extra []string, delay time.Duration, stderr io.Writer, fn func([]string)) error {
	paths := []string{srcPath}
	if src, err := engine.ReadSource(srcPath); err == nil {
		paths = append(paths, src.ImagePaths(filepath.Dir(srcPath))...)
	}
	paths = append(paths, extra...)
	w, err := watch.New(paths, delay)
	if err != nil {
		return err
	}
	defer w.Close()
	fmt.Fprintf(stderr, "Watching %s for changes\n", srcPath)
	return w.Run(ctx, fn)
}
