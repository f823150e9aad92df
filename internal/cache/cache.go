// Package cache stores check results keyed by AST dump content hash,
// so unchanged files skip re-checking across driver runs. The store is
// a single sqlite database.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	hash        TEXT PRIMARY KEY,
	file        TEXT NOT NULL,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	ok          INTEGER NOT NULL,
	diagnostics TEXT NOT NULL,
	checked_at  TEXT NOT NULL
);
`

// Result is one cached check outcome. Diagnostics holds the rendered
// messages, one per line, empty when OK.
type Result struct {
	File        string
	OK          bool
	Diagnostics string
}

// Store is an open check cache. A Store tracks the run it was opened
// under, so results can be traced back to a driver invocation.
type Store struct {
	db    *sql.DB
	runID string
}

// Hash is the cache key for a dump's raw bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Open opens (creating if necessary) the cache at path and registers
// a new run.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	runID := uuid.NewString()
	if _, err := db.Exec(`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering cache run: %w", err)
	}
	return &Store{db: db, runID: runID}, nil
}

// RunID identifies this driver invocation in the cache.
func (s *Store) RunID() string {
	return s.runID
}

// Lookup returns the cached result for a content hash, if present.
func (s *Store) Lookup(hash string) (*Result, bool, error) {
	row := s.db.QueryRow(
		`SELECT file, ok, diagnostics FROM results WHERE hash = ?`, hash)
	var r Result
	var ok int
	if err := row.Scan(&r.File, &ok, &r.Diagnostics); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	r.OK = ok != 0
	return &r, true, nil
}

// Record stores a check result under a content hash, replacing any
// previous entry for the same hash.
func (s *Store) Record(hash string, r *Result) error {
	okInt := 0
	if r.OK {
		okInt = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO results (hash, file, run_id, ok, diagnostics, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET
		   file = excluded.file,
		   run_id = excluded.run_id,
		   ok = excluded.ok,
		   diagnostics = excluded.diagnostics,
		   checked_at = excluded.checked_at`,
		hash, r.File, s.runID, okInt, r.Diagnostics,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache record: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
