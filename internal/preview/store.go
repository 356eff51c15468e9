// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/preview/store.go
// Summary: Holds the latest compiled presentation for the preview server.

package preview

import (
	"sync"
	"time"

	"github.com/framegrace/texelshow/protocol"
)

// Store is the hand-off point between the compiler loop and HTTP handlers.
type Store struct {
	mu      sync.RWMutex
	pres    *protocol.PlayablePresentation
	version uint64
	lastErr error
	updated time.Time
	subs    map[chan uint64]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[chan uint64]struct{})}
}

// Snapshot is a consistent view of the store.
type Snapshot struct {
	Presentation *protocol.PlayablePresentation
	Version      uint64
	Err          error
	Updated      time.Time
}

// Set publishes a new presentation and clears the last error.
func (s *Store) Set(p *protocol.PlayablePresentation) {
	s.mu.Lock()
	s.pres = p
	s.version++
	s.lastErr = nil
	s.updated = time.Now()
	v := s.version
	subs := make([]chan uint64, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// SetError records a failed recompilation. The previous presentation stays
// available.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.updated = time.Now()
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Presentation: s.pres, Version: s.version, Err: s.lastErr, Updated: s.updated}
}

// Subscribe returns a channel that receives the version of every later
// Set. Slow readers miss intermediate versions. cancel releases it.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}
