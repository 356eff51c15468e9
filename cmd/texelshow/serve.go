// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/serve.go
// Summary: serve command: HTTP preview with recompilation on change.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/framegrace/texelshow/config"
	"github.com/framegrace/texelshow/internal/preview"
	"github.com/framegrace/texelshow/protocol"
)

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "Listen address (default from config)")
	noCache := fs.Bool("no-cache", false, "Compile without the compile cache")
	verbose := fs.Bool("verbose", false, "Log requests and progress to stderr")

	positional, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) != 1 {
		return fmt.Errorf("%w: serve <file>", errUsage)
	}
	path := positional[0]

	setupLogging(*verbose, stderr)
	st := loadSettings()
	if *addr == "" {
		*addr = st.addr
	}

	store := preview.NewStore()
	source, err := isSource(path)
	if err != nil {
		return err
	}
	if !source {
		p, err := protocol.LoadFile(path)
		if err != nil {
			return err
		}
		store.Set(p)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)

	if source {
		sess := &serveSession{path: path, useCache: !*noCache, st: st, store: store}
		sess.b = newBuilder(st, sess.useCache)
		watchDone := make(chan struct{})
		defer func() {
			cancel()
			<-watchDone
			sess.b.Close()
		}()
		sess.rebuild(ctx)
		if err := store.Snapshot().Err; err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		var extra []string
		if cfgPath, err := config.Path(); err == nil {
			if _, err := os.Stat(filepath.Dir(cfgPath)); err == nil {
				sess.cfgPath, _ = filepath.Abs(cfgPath)
				extra = append(extra, cfgPath)
			}
		}
		go func() {
			defer close(watchDone)
			errCh <- watchAndRun(ctx, path, extra, st.watchDelay, stderr, func(changed []string) {
				sess.changed(ctx, changed)
			})
		}()
	}

	srv := preview.NewServer(*addr, store)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Fprintf(stderr, "Serving %s on http://%s\n", path, srv.Addr())

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// serveSession recompiles a served source. Its methods run on the watcher
// goroutine after the initial build.
type serveSession struct {
	path     string
	cfgPath  string
	useCache bool
	st       settings
	b        *builder
	store    *preview.Store
}

func (s *serveSession) rebuild(ctx context.Context) {
	p, _, err := s.b.build(ctx, s.path)
	if err != nil {
		log.Printf("Compile: %v", err)
		s.store.SetError(err)
		return
	}
	s.store.Set(p)
}

// changed reloads the configuration when the config file is among the
// changed paths, then recompiles.
func (s *serveSession) changed(ctx context.Context, paths []string) {
	if s.cfgPath != "" && slices.Contains(paths, s.cfgPath) {
		if err := config.Reload(); err != nil {
			log.Printf("Config: Reload failed, keeping previous settings: %v", err)
		} else {
			log.Printf("Config: Reloaded, rebuilding with new compile settings")
			s.st = loadSettings()
			s.b.Close()
			s.b = newBuilder(s.st, s.useCache)
		}
	}
	s.rebuild(ctx)
}
