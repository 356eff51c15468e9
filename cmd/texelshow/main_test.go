// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/main_test.go
// Summary: End-to-end command tests over temporary files.
// Usage: Executed during `go test` to guard against regressions.

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/framegrace/texelshow/config"
	"github.com/framegrace/texelshow/engine"
	"github.com/framegrace/texelshow/internal/preview"
	"github.com/framegrace/texelshow/protocol"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, stderr)
	}
	return out
}

func TestUnknownCommand(t *testing.T) {
	if _, _, err := runCmd(t, "frobnicate"); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, _, err := runCmd(t); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error without arguments, got %v", err)
	}
}

func TestParseArgsAllowsInterspersedFlags(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "")
	workers := fs.Int("workers", 0, "")
	pos, err := parseArgs(fs, []string{"in.json", "--verbose", "out.tsp", "--workers", "3"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !reflect.DeepEqual(pos, []string{"in.json", "out.tsp"}) || !*verbose || *workers != 3 {
		t.Fatalf("positional %v verbose %v workers %d", pos, *verbose, *workers)
	}
}

func TestEditBuildsAGroup(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.json")

	if got := mustRun(t, "edit", deck, "add", "rect"); got != "0\n" {
		t.Fatalf("add rect printed %q", got)
	}
	mustRun(t, "edit", deck, "add", "label")
	mustRun(t, "edit", deck, "add", "group")
	mustRun(t, "edit", deck, "group-add", "2", "0", "1")
	mustRun(t, "edit", deck, "group-move", "2", "3", "1")

	list := mustRun(t, "edit", deck, "list")
	if !strings.HasPrefix(list, "80x24, 1 frames\n") || !strings.Contains(list, "Group: 2 members") {
		t.Fatalf("list output:\n%s", list)
	}

	src, err := engine.ReadSource(deck)
	if err != nil {
		t.Fatalf("ReadSource: %v", err)
	}
	if x, y := engine.Origin(src.Objects[0]); x != 3 || y != 1 {
		t.Fatalf("rect origin (%v,%v)", x, y)
	}
}

func TestEditErrorsLeaveFileUntouched(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.yaml")
	mustRun(t, "edit", deck, "add", "rect")
	before, _ := os.ReadFile(deck)

	if _, _, err := runCmd(t, "edit", deck, "remove", "5"); !errors.Is(err, engine.ErrObjectIndex) {
		t.Fatalf("expected ErrObjectIndex, got %v", err)
	}
	if _, _, err := runCmd(t, "edit", deck, "group-add", "0", "0"); !errors.Is(err, engine.ErrNotGroup) {
		t.Fatalf("expected ErrNotGroup, got %v", err)
	}
	if _, _, err := runCmd(t, "edit", deck, "move", "0", "x", "1"); err == nil {
		t.Fatalf("non-numeric delta accepted")
	}
	if _, _, err := runCmd(t, "edit", deck, "move", "0", "1"); !errors.Is(err, errUsage) {
		t.Fatalf("short argument list accepted: %v", err)
	}
	after, _ := os.ReadFile(deck)
	if !bytes.Equal(before, after) {
		t.Fatalf("failed edits rewrote the file")
	}
	if _, _, err := runCmd(t, "edit", filepath.Join(dir, "missing.json"), "list"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("list created a missing file: %v", err)
	}
}

func TestEditTablesFramesAndMarkers(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.json")
	mustRun(t, "edit", deck, "add", "table")
	mustRun(t, "edit", deck, "set-cell", "0", "1", "1", "total")
	mustRun(t, "edit", deck, "add-column", "0", "0")
	mustRun(t, "edit", deck, "add-row", "0")
	mustRun(t, "edit", deck, "insert-frame", "0")
	mustRun(t, "edit", deck, "marker", "1", "summary")

	src, err := engine.ReadSource(deck)
	if err != nil {
		t.Fatalf("ReadSource: %v", err)
	}
	tbl := src.Objects[0].(*engine.Table)
	if tbl.Columns() != 3 || tbl.Rows != 3 {
		t.Fatalf("table is %dx%d", tbl.Rows, tbl.Columns())
	}
	if tbl.Cells[1][2].Content != "total" {
		t.Fatalf("cell content moved: %+v", tbl.Cells[1])
	}
	if src.FrameCount != 2 || len(src.Markers) != 1 || src.Markers[0].FrameIndex != 1 {
		t.Fatalf("frames %d markers %+v", src.FrameCount, src.Markers)
	}

	if _, _, err := runCmd(t, "edit", deck, "set-cell", "0", "9", "0", "x"); err == nil {
		t.Fatalf("out of range cell accepted")
	}
	mustRun(t, "edit", deck, "remove-frame", "1")
	src, _ = engine.ReadSource(deck)
	if src.FrameCount != 1 || len(src.Markers) != 0 {
		t.Fatalf("after remove-frame: frames %d markers %+v", src.FrameCount, src.Markers)
	}
}

func writeDeck(t *testing.T, path string) {
	t.Helper()
	src := engine.Blank(20, 5, 3)
	src.AddObject(&engine.Label{
		Text:     "hello",
		Position: engine.Position{X: engine.Animated(0, 10, 0, 2), Y: engine.Fixed(1)},
		Frames:   engine.FrameRange{Start: 0, End: 3},
	})
	src.Markers = []protocol.Marker{{FrameIndex: 2, Label: "end"}}
	if err := src.Save(path); err != nil {
		t.Fatalf("save deck: %v", err)
	}
}

func TestCompileWritesPresentationAndCaches(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.yaml")
	out := filepath.Join(dir, "out", "deck.tsp")
	writeDeck(t, deck)

	_, stderr, err := runCmd(t, "compile", deck, out, "--stats")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "Compiled 3 frames from "+deck+" -> "+out) || strings.Contains(stderr, "(cached)") {
		t.Fatalf("summary line:\n%s", stderr)
	}
	if !strings.Contains(stderr, "Frames: 3 (1 full)") {
		t.Fatalf("stats missing:\n%s", stderr)
	}
	p, err := protocol.LoadFile(out)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(p.Frames) != 3 || len(p.Markers) != 1 {
		t.Fatalf("frames %d markers %d", len(p.Frames), len(p.Markers))
	}
	last, _ := protocol.ReplayTo(p, 2)
	if last.At(10, 1).Ch != 'h' {
		t.Fatalf("label not at its final position:\n%s", last)
	}

	_, stderr, err = runCmd(t, "compile", deck, out)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if !strings.Contains(stderr, "(cached)") {
		t.Fatalf("second compile missed the cache:\n%s", stderr)
	}
	_, stderr, _ = runCmd(t, "compile", "--no-cache", deck, out)
	if strings.Contains(stderr, "(cached)") {
		t.Fatalf("--no-cache used the cache")
	}
}

func TestCompileReportsValidationErrors(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "bad.json")
	doc := `{"width":10,"height":5,"frame_count":1,"objects":[{"type":"group","members":[],"frames":{"start":-1,"end":1},"z_order":0}]}`
	if err := os.WriteFile(deck, []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCmd(t, "compile", deck, filepath.Join(dir, "out.json"))
	var verr *engine.ValidationError
	if !errors.As(err, &verr) || verr.Field != "frames" {
		t.Fatalf("expected a frames validation error, got %v", err)
	}
}

const staleGroupDeck = `{"width":10,"height":3,"frame_count":1,"objects":[
	{"type":"label","text":"hi","position":{"x":1,"y":1},"frames":{"start":0,"end":1},"z_order":0},
	{"type":"group","members":[0,7],"frames":{"start":0,"end":1},"z_order":0}]}`

func TestCompileToleratesStaleGroupMembers(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(deck, []byte(staleGroupDeck), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := filepath.Join(dir, "out.json")
	if _, stderr, err := runCmd(t, "compile", "--no-cache", deck, out); err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	p, err := protocol.LoadFile(out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g, _ := protocol.ReplayTo(p, 0); g.At(1, 1).Ch != 'h' {
		t.Fatalf("label missing from the compiled frame")
	}
}

func TestEditWorksOnDecksWithStaleGroupMembers(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(deck, []byte(staleGroupDeck), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if list := mustRun(t, "edit", deck, "list"); !strings.Contains(list, "Group") {
		t.Fatalf("list output %q", list)
	}
	if out := mustRun(t, "edit", deck, "validate"); !strings.Contains(out, "index 7 out of range") {
		t.Fatalf("validate did not warn: %q", out)
	}
	mustRun(t, "edit", deck, "move", "0", "2", "0")
	src, err := engine.ReadSource(deck)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if x, _ := engine.Origin(src.Objects[0]); x != 3 {
		t.Fatalf("label x = %v", x)
	}
}

func TestCompileRejectsUnknownTheme(t *testing.T) {
	dir := isolate(t)
	_, _, err := runCmd(t, "compile", "--theme", "no-such-theme", filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"))
	if !errors.Is(err, errUnknownTheme) {
		t.Fatalf("expected errUnknownTheme, got %v", err)
	}
}

func TestIsSource(t *testing.T) {
	dir := isolate(t)
	deck := filepath.Join(dir, "deck.json")
	writeDeck(t, deck)
	compiled := filepath.Join(dir, "deck.out.json")
	mustRun(t, "compile", "--no-cache", deck, compiled)

	cases := []struct {
		path string
		want bool
	}{
		{deck, true},
		{compiled, false},
		{filepath.Join(dir, "x.yaml"), true},
		{filepath.Join(dir, "x.tsp"), false},
	}
	for _, tc := range cases {
		got, err := isSource(tc.path)
		if err != nil {
			t.Fatalf("%s: %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("isSource(%s) = %v", tc.path, got)
		}
	}
}

func TestConfigCommandPrintsDefaults(t *testing.T) {
	isolate(t)
	out := mustRun(t, "config")
	if !strings.Contains(out, `"code_theme": "monokai"`) {
		t.Fatalf("config output:\n%s", out)
	}
}

func TestServeSessionReloadsConfig(t *testing.T) {
	dir := isolate(t)
	previous := config.System()
	t.Cleanup(func() { config.SetSystem(previous) })

	deck := filepath.Join(dir, "deck.yaml")
	writeDeck(t, deck)
	st := loadSettings()
	store := preview.NewStore()
	sess := &serveSession{path: deck, useCache: false, st: st, store: store, b: newBuilder(st, false)}
	defer func() { sess.b.Close() }()

	cfgPath := filepath.Join(dir, "config", "texelshow", "texelshow.json")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := `{"compile": {"code_theme": "dracula", "watch_delay": 0.4}}`
	if err := os.WriteFile(cfgPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	sess.cfgPath = cfgPath

	sess.changed(context.Background(), []string{deck})
	if sess.b.theme != st.codeTheme {
		t.Fatalf("source change reloaded the config")
	}
	sess.changed(context.Background(), []string{cfgPath})
	if sess.b.theme != "dracula" || sess.st.watchDelay != 400*time.Millisecond {
		t.Fatalf("theme %q delay %v after config change", sess.b.theme, sess.st.watchDelay)
	}
	snap := store.Snapshot()
	if snap.Err != nil || snap.Presentation == nil || len(snap.Presentation.Frames) != 3 {
		t.Fatalf("store after rebuild: %+v", snap)
	}
}

func TestCompilePrunesCacheAndReportsStats(t *testing.T) {
	dir := isolate(t)
	previous := config.System()
	t.Cleanup(func() { config.SetSystem(previous) })
	cfg := config.Clone(previous)
	compile := cfg.Section(config.SectionCompile)
	compile["cache_keep"] = 1
	compile["cache_path"] = filepath.Join(dir, "scenes.db")
	config.SetSystem(cfg)

	deck := filepath.Join(dir, "deck.yaml")
	writeDeck(t, deck)
	out := filepath.Join(dir, "deck.json")
	mustRun(t, "compile", deck, out)

	src, err := engine.ReadSource(deck)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	src.FrameCount = 2
	src.Objects[0].(*engine.Label).Frames.End = 2
	src.Markers = nil
	if err := src.Save(deck); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, stderr, err := runCmd(t, "compile", "--stats", deck, out)
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "Cache: 1 entries") {
		t.Fatalf("cache was not pruned to one entry:\n%s", stderr)
	}
}
