// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/settings.go
// Summary: Resolves configuration into command settings.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/framegrace/texelshow/config"
	"github.com/framegrace/texelshow/player"
)

type settings struct {
	workers    int
	codeTheme  string
	cache      bool
	cacheKeep  int
	rowHash    bool
	watchDelay time.Duration
	bindings   player.Bindings
	addr       string
	cfg        config.Config
}

func setupLogging(verbose bool, stderr io.Writer) {
	if verbose {
		log.SetOutput(stderr)
		log.SetFlags(log.Ltime)
		return
	}
	log.SetOutput(io.Discard)
}

func loadSettings() settings {
	cfg := config.System()
	if err := config.Err(); err != nil {
		log.Printf("Config: Using defaults after load error: %v", err)
	}
	def := player.DefaultBindings()
	return settings{
		workers:    cfg.GetInt(config.SectionCompile, "workers", 0),
		codeTheme:  cfg.GetString(config.SectionCompile, "code_theme", "monokai"),
		cache:      cfg.GetBool(config.SectionCompile, "cache", true),
		cacheKeep:  cfg.GetInt(config.SectionCompile, "cache_keep", 200),
		rowHash:    cfg.GetBool(config.SectionCompile, "row_hash", true),
		watchDelay: time.Duration(cfg.GetFloat(config.SectionCompile, "watch_delay", 0.15) * float64(time.Second)),
		bindings: player.Bindings{
			Next:  cfg.GetStringSlice(config.SectionPlayer, "next", def.Next),
			Prev:  cfg.GetStringSlice(config.SectionPlayer, "prev", def.Prev),
			First: cfg.GetStringSlice(config.SectionPlayer, "first", def.First),
			Last:  cfg.GetStringSlice(config.SectionPlayer, "last", def.Last),
			Quit:  cfg.GetStringSlice(config.SectionPlayer, "quit", def.Quit),
		},
		addr: cfg.GetString(config.SectionPreview, "addr", "127.0.0.1:7070"),
		cfg:  cfg,
	}
}

func runConfig(stdout io.Writer) error {
	setupLogging(false, os.Stderr)
	path, err := config.Path()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	cfg := config.System()
	if err := config.Err(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(stdout, "# %s\n", path)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", data)
	return nil
}
