/*
Package sqlite provides a SQLite-backed implementation of record.Adapter.

PURPOSE:
  The whole Store snapshot is one JSON document, so the durable layout is a
  single-row document table rather than per-entity tables. Every save
  replaces the row in full; a read returns exactly what the last save
  wrote. Partial documents are impossible by construction.

WRITE POLICY:
  Last-write-wins. The slot keeps no version column and does no
  compare-and-swap; the application is single-user and single-process.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  slot, err := sqlite.New("./data/washbook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer slot.Close()

  keeper := record.NewKeeper(slot)
  store := keeper.Load(ctx)

  Use ":memory:" as the path for tests.

SEE ALSO:
  - record/adapter.go:    Interface definition
  - record/slot/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// slotKey names the single logical slot.
const slotKey = "washbook"

// Slot implements record.Adapter on a one-row SQLite table.
type Slot struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and ensures the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Slot, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Slot{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Slot) Close() error {
	return s.db.Close()
}

func (s *Slot) migrate() error {
	schema := `
	-- One row per logical slot; the wash book uses exactly one.
	CREATE TABLE IF NOT EXISTS snapshot (
		slot TEXT PRIMARY KEY,
		doc BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Read returns the stored document, or found == false when the slot has
// never been written.
func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM snapshot WHERE slot = ?`, slotKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return doc, true, nil
}

// Write replaces the slot contents with doc.
func (s *Slot) Write(ctx context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot (slot, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		slotKey, doc, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Clear empties the slot.
func (s *Slot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot WHERE slot = ?`, slotKey); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
