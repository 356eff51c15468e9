// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/play.go
// Summary: play command: interactive playback in the terminal.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/framegrace/texelshow/internal/panics"
	"github.com/framegrace/texelshow/player"
	"github.com/framegrace/texelshow/protocol"
)

var errNotTerminal = errors.New("play needs an interactive terminal")

func runPlay(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)
	noCache := fs.Bool("no-cache", false, "Compile sources without the compile cache")
	verbose := fs.Bool("verbose", false, "Log progress to stderr")

	positional, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: play <file>", errUsage)
	}

	setupLogging(*verbose, stderr)
	st := loadSettings()
	keys, err := player.NewKeyMap(st.bindings)
	if err != nil {
		return fmt.Errorf("player key bindings: %w", err)
	}

	b := newBuilder(st, !*noCache)
	p, err := b.loadPlayable(ctx, positional[0])
	b.Close()
	if err != nil {
		return err
	}
	if err := checkTerminal(p.Contract); err != nil {
		return err
	}
	guard := panics.NewLogger(panicLogPath())
	return player.Play(ctx, p, keys, guard)
}

// panicLogPath places the panic log next to the compile cache. An empty
// path disables persistence.
func panicLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "texelshow")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "panic.log")
}

// checkTerminal fails early, before the screen is taken over, when stdout
// is not a terminal or is too small.
func checkTerminal(c protocol.TerminalContract) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errNotTerminal
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}
	needW, needH := int(c.Width), int(c.Height)+2
	if w < needW || h < needH {
		return fmt.Errorf("%w: need %dx%d, have %dx%d", player.ErrTerminalTooSmall, needW, needH, w, h)
	}
	return nil
}
