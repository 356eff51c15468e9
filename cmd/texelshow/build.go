// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/build.go
// Summary: Source to playable pipeline shared by compile, play and serve.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/framegrace/texelshow/config"
	"github.com/framegrace/texelshow/engine"
	"github.com/framegrace/texelshow/internal/cache"
	"github.com/framegrace/texelshow/internal/sysinfo"
	"github.com/framegrace/texelshow/protocol"
	"github.com/framegrace/texelshow/renderer"
)

// cacheFormat is mixed into every cache key; bump it when compiled output
// changes for the same input.
const cacheFormat = "texelshow/1"

type builder struct {
	engine    *engine.Engine
	renderer  *renderer.Renderer
	theme     string
	cache     *cache.Cache
	cacheKeep int
}

func newBuilder(st settings, useCache bool) *builder {
	workers := sysinfo.Workers(st.workers)
	b := &builder{
		engine:    engine.New(engine.Options{Workers: workers, CodeTheme: st.codeTheme}),
		renderer:  renderer.New(renderer.Options{Workers: workers, RowHash: st.rowHash}),
		theme:     st.codeTheme,
		cacheKeep: st.cacheKeep,
	}
	if useCache && st.cache {
		b.cache = openCache(st.cfg)
	}
	return b
}

func openCache(cfg config.Config) *cache.Cache {
	path, err := config.CachePath(cfg)
	if err != nil {
		log.Printf("Cache: Disabled, no cache path: %v", err)
		return nil
	}
	c, err := cache.Open(path)
	if err != nil {
		log.Printf("Cache: Disabled, open %s failed: %v", path, err)
		return nil
	}
	return c
}

func (b *builder) Close() {
	if b.cache != nil {
		b.cache.Close()
	}
}

// cacheKey digests everything the compiled output depends on: the source
// document, the default code theme and the bytes of every image.
func (b *builder) cacheKey(src *engine.SourcePresentation, baseDir string) (string, error) {
	doc, err := src.Encode(false)
	if err != nil {
		return "", err
	}
	parts := [][]byte{[]byte(cacheFormat), doc, []byte(b.theme)}
	for _, p := range src.ImagePaths(baseDir) {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("image %s: %w", p, err)
		}
		parts = append(parts, data)
	}
	return cache.Key(parts...), nil
}

// build compiles the source at path, consulting the cache when enabled. The
// boolean reports a cache hit.
func (b *builder) build(ctx context.Context, path string) (*protocol.PlayablePresentation, bool, error) {
	start := time.Now()
	src, err := engine.ReadSource(path)
	if err != nil {
		return nil, false, err
	}
	if err := src.Validate(); err != nil {
		return nil, false, fmt.Errorf("validate source %s: %w", path, err)
	}
	for _, w := range src.Warnings() {
		log.Printf("Compile: %s: %v", path, w)
	}
	baseDir := filepath.Dir(path)

	var key string
	if b.cache != nil {
		if key, err = b.cacheKey(src, baseDir); err != nil {
			return nil, false, err
		}
		p, ok, err := b.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Cache: Lookup failed: %v", err)
		} else if ok {
			log.Printf("Compile: Cache hit for %s", path)
			return p, true, nil
		}
	}

	if err := src.LoadAssets(baseDir); err != nil {
		return nil, false, err
	}
	scenes, err := b.engine.CompileContext(ctx, src)
	if err != nil {
		return nil, false, err
	}
	log.Printf("Compile: Resolved %d frames in %s", len(scenes), time.Since(start).Round(time.Millisecond))
	p, err := b.renderer.RenderContext(ctx, scenes, src.Contract(), src.Markers)
	if err != nil {
		return nil, false, err
	}
	log.Printf("Compile: Rendered %d frames in %s", len(p.Frames), time.Since(start).Round(time.Millisecond))

	if b.cache != nil {
		if err := b.cache.Put(ctx, key, p); err != nil {
			log.Printf("Cache: Store failed: %v", err)
		} else if b.cacheKeep > 0 {
			if n, err := b.cache.Prune(ctx, b.cacheKeep); err != nil {
				log.Printf("Cache: Prune failed: %v", err)
			} else if n > 0 {
				log.Printf("Cache: Pruned %d entries", n)
			}
		}
	}
	return p, false, nil
}

// isSource reports whether path holds an authored source rather than a
// compiled presentation.
func isSource(path string) (bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true, nil
	case protocol.BinaryExt:
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	_, hasObjects := doc["objects"]
	_, hasFrames := doc["frames"]
	return hasObjects || !hasFrames, nil
}

// loadPlayable returns a presentation from either a compiled file or a
// source.
func (b *builder) loadPlayable(ctx context.Context, path string) (*protocol.PlayablePresentation, error) {
	src, err := isSource(path)
	if err != nil {
		return nil, err
	}
	if !src {
		return protocol.LoadFile(path)
	}
	p, _, err := b.build(ctx, path)
	return p, err
}
