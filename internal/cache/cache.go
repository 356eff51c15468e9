// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/cache/cache.go
// Summary: SQLite store of compiled presentations keyed by input digest.
// Usage: The compile command consults it before compiling and stores the
// result afterwards.
// Notes: Entries hold the binary container encoding. A schema version bump
// drops every entry.

package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelshow/protocol"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS presentations (
    key TEXT PRIMARY KEY,        -- hex sha256 of the compile inputs
    created INTEGER NOT NULL,    -- UnixNano
    accessed INTEGER NOT NULL,   -- UnixNano
    frames INTEGER NOT NULL,
    data BLOB NOT NULL           -- binary container
);

CREATE INDEX IF NOT EXISTS idx_presentations_accessed ON presentations(accessed);
`

// Cache is safe for concurrent use.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	return &Cache{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if current == schemaVersion {
		return nil
	}
	if current != 0 {
		log.Printf("Cache: Schema version %d is stale, dropping entries", current)
	}
	stmts := []string{
		"DELETE FROM presentations",
		"DELETE FROM schema_version",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed on '%s': %w", stmt, err)
		}
	}
	_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

// Key digests the compile inputs. Each part is length-prefixed so that
// different splits of the same bytes produce different keys.
func Key(parts ...[]byte) string {
	h := sha256.New()
	var scratch [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(p)))
		h.Write(scratch[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the presentation stored under key. A miss returns ok=false
// and no error.
func (c *Cache) Get(ctx context.Context, key string) (*protocol.PlayablePresentation, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM presentations WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	p, err := protocol.ReadBinary(bytes.NewReader(data))
	if err != nil {
		log.Printf("Cache: Dropping unreadable entry %s: %v", key, err)
		_, _ = c.db.ExecContext(ctx, "DELETE FROM presentations WHERE key = ?", key)
		return nil, false, nil
	}
	if _, err := c.db.ExecContext(ctx, "UPDATE presentations SET accessed = ? WHERE key = ?", c.now().UnixNano(), key); err != nil {
		log.Printf("Cache: Failed to touch entry %s: %v", key, err)
	}
	return p, true, nil
}

// Put stores p under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key string, p *protocol.PlayablePresentation) error {
	var buf bytes.Buffer
	if err := protocol.WriteBinary(&buf, p); err != nil {
		return fmt.Errorf("encode presentation: %w", err)
	}
	now := c.now().UnixNano()
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO presentations (key, created, accessed, frames, data) VALUES (?, ?, ?, ?, ?)",
		key, now, now, len(p.Frames), buf.Bytes())
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Prune keeps the keep most recently used entries and returns how many were
// removed.
func (c *Cache) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM presentations WHERE key NOT IN (SELECT key FROM presentations ORDER BY accessed DESC LIMIT ?)", keep)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return res.RowsAffected()
}

// Stats describes the cache contents.
type Stats struct {
	Entries int64
	Bytes   int64
}

// Stats counts entries and stored bytes.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM presentations").Scan(&s.Entries, &s.Bytes)
	return s, err
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
