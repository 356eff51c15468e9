// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/preview/server_test.go
// Summary: Preview routes over an in-memory store.
// Usage: Executed during `go test` to guard against regressions.

package preview

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/framegrace/texelshow/protocol"
)

func samplePresentation() *protocol.PlayablePresentation {
	red := protocol.Style{Fg: protocol.Named(protocol.Red)}
	return &protocol.PlayablePresentation{
		Contract: protocol.TerminalContract{Width: 3, Height: 1},
		Frames: []protocol.Frame{
			protocol.FullFrame([][]protocol.Cell{{{Ch: 'a', Style: red}, {Ch: 'b'}, {Ch: ' '}}}),
			protocol.DiffFrame([]protocol.CellChange{{X: 2, Y: 0, Cell: protocol.Cell{Ch: 'c'}}}),
		},
		Markers: []protocol.Marker{{FrameIndex: 1, Label: "second"}},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestHealthReflectsStore(t *testing.T) {
	store := NewStore()
	router := NewRouter(store)

	var resp HealthResponse
	rr := get(t, router, "/health")
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "empty" || resp.Version != 0 {
		t.Fatalf("empty store health %+v", resp)
	}

	store.Set(samplePresentation())
	store.SetError(errors.New("parse failed"))
	rr = get(t, router, "/health")
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Frames != 2 || resp.Version != 1 || resp.LastError != "parse failed" {
		t.Fatalf("health %+v", resp)
	}
}

func TestRoutesRequireAPresentation(t *testing.T) {
	router := NewRouter(NewStore())
	for _, path := range []string{"/presentation", "/markers", "/frames/0"} {
		if rr := get(t, router, path); rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: status %d", path, rr.Code)
		}
	}
}

func TestFrameRoutes(t *testing.T) {
	store := NewStore()
	store.Set(samplePresentation())
	router := NewRouter(store)

	rr := get(t, router, "/frames/1")
	if rr.Code != http.StatusOK || rr.Body.String() != "abc\n" {
		t.Fatalf("frame 1: %d %q", rr.Code, rr.Body.String())
	}
	rr = get(t, router, "/frames/0/ansi")
	if want := "\x1b[0;31ma\x1b[0mb \n"; rr.Body.String() != want {
		t.Fatalf("ansi frame %q, want %q", rr.Body.String(), want)
	}
	if rr := get(t, router, "/frames/9"); rr.Code != http.StatusNotFound {
		t.Fatalf("out of range status %d", rr.Code)
	}
	if rr := get(t, router, "/frames/x"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad index status %d", rr.Code)
	}
}

func TestPresentationRoutes(t *testing.T) {
	store := NewStore()
	want := samplePresentation()
	store.Set(want)
	router := NewRouter(store)

	for _, path := range []string{"/presentation", "/presentation.tsp"} {
		rr := get(t, router, path)
		got, err := protocol.Decode(rr.Body)
		if err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		a, _ := protocol.ReplayTo(want, 1)
		b, _ := protocol.ReplayTo(got, 1)
		if !a.Equal(b) {
			t.Fatalf("%s: replay differs", path)
		}
	}

	var markers []protocol.Marker
	if err := json.NewDecoder(get(t, router, "/markers").Body).Decode(&markers); err != nil {
		t.Fatalf("decode markers: %v", err)
	}
	if len(markers) != 1 || markers[0].Label != "second" {
		t.Fatalf("markers %+v", markers)
	}
}

func TestEventsStreamVersions(t *testing.T) {
	store := NewStore()
	srv := httptest.NewServer(NewRouter(store))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if line := lines.Text(); strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}
	if v := next(); v != "0" {
		t.Fatalf("initial version %q", v)
	}
	store.Set(samplePresentation())
	if v := next(); v != "1" {
		t.Fatalf("version after Set %q", v)
	}
}
