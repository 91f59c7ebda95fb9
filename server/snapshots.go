package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SnapshotStore persists the scene as one opaque JSON blob in a
// single-row SQLite table. The server never inspects the body beyond
// validating it is JSON; the scene format belongs to the client.
type SnapshotStore struct {
	db *sql.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshot (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	body     BLOB NOT NULL,
	saved_at TEXT NOT NULL
);`

// OpenSnapshotStore opens (creating if needed) the store at path.
// Use ":memory:" for an ephemeral store.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Save replaces the stored snapshot with body.
func (s *SnapshotStore) Save(ctx context.Context, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, body, saved_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET body = excluded.body, saved_at = excluded.saved_at`,
		body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil if none has been saved yet.
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshot WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return body, nil
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
