// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/preview/server.go
// Summary: HTTP preview of the latest compiled presentation.
// Usage: Started by the serve command; curl /frames/{n}/ansi in a terminal
// to see a frame.

package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/framegrace/texelshow/protocol"
)

// Server wraps an http.Server serving a Store.
type Server struct {
	httpServer *http.Server
}

// NewServer returns a server for store on addr.
func NewServer(addr string, store *Store) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(store),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start listens until Shutdown.
func (s *Server) Start() error {
	log.Printf("Preview: Listening on http://%s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// NewRouter builds the preview routes.
func NewRouter(store *Store) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/health", healthHandler(store))
	r.Group(func(r chi.Router) {
		r.Use(requirePresentation(store))
		r.Get("/presentation", presentationHandler(store, false))
		r.Get("/presentation.tsp", presentationHandler(store, true))
		r.Get("/markers", markersHandler(store))
		r.Get("/frames/{n}", frameHandler(store, false))
		r.Get("/frames/{n}/ansi", frameHandler(store, true))
	})
	r.Get("/events", eventsHandler(store))
	return r
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("Preview: %s %s %d (%s)", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Microsecond))
	})
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse reports the store state.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   uint64 `json:"version"`
	Frames    int    `json:"frames"`
	LastError string `json:"last_error,omitempty"`
	Updated   string `json:"updated,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func healthHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()
		resp := HealthResponse{Status: "ok", Version: snap.Version}
		if snap.Presentation != nil {
			resp.Frames = len(snap.Presentation.Frames)
		} else {
			resp.Status = "empty"
		}
		if snap.Err != nil {
			resp.Status = "error"
			resp.LastError = snap.Err.Error()
		}
		if !snap.Updated.IsZero() {
			resp.Updated = snap.Updated.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func requirePresentation(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store.Snapshot().Presentation == nil {
				writeError(w, http.StatusServiceUnavailable, "no presentation compiled yet", "NOT_READY")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentationHandler(store *Store, binary bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := store.Snapshot().Presentation
		if binary {
			w.Header().Set("Content-Type", "application/octet-stream")
			if err := protocol.WriteBinary(w, p); err != nil {
				log.Printf("Preview: Failed to write binary presentation: %v", err)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := protocol.WriteJSON(w, p); err != nil {
			log.Printf("Preview: Failed to write presentation: %v", err)
		}
	}
}

func markersHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markers := store.Snapshot().Presentation.Markers
		if markers == nil {
			markers = []protocol.Marker{}
		}
		writeJSON(w, http.StatusOK, markers)
	}
}

func frameHandler(store *Store, ansi bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "frame index must be an integer", "BAD_REQUEST")
			return
		}
		grid, err := protocol.ReplayTo(store.Snapshot().Presentation, n)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if ansi {
			fmt.Fprint(w, renderANSI(grid))
			return
		}
		fmt.Fprint(w, grid.String())
	}
}

// eventsHandler streams the store version as server-sent events so a
// browser or script can refetch after each recompilation.
func eventsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}
		updates, cancel := store.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		fmt.Fprintf(w, "data: %d\n\n", store.Snapshot().Version)
		flusher.Flush()
		for {
			select {
			case <-r.Context().Done():
				return
			case v := <-updates:
				fmt.Fprintf(w, "data: %d\n\n", v)
				flusher.Flush()
			}
		}
	}
}
