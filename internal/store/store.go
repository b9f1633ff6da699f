// Package store persists UI state snapshots across client restarts.
// Each state slice is one JSON value under a string key in a local SQLite
// database. Writes are write-through and fail-soft: a store failure degrades
// durability, never live functionality.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"agentdeck/internal/log"
)

// Snapshot keys. Each slice restores independently.
const (
	KeyChat     = "chat"
	KeyPipeline = "pipeline"
	KeyHistory  = "history"
	KeySummary  = "summary"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a keyed JSON snapshot store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging snapshot store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}
	log.Info(log.CatStore, "Snapshot store open", "path", path)
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory store. Used by tests and as the
// fallback when the on-disk store cannot be opened.
func OpenInMemory() (*Store, error) {
	return Open(":memory:")
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put serializes v under key. Failures are logged and swallowed.
func (s *Store) Put(key string, v any) {
	if s == nil || s.db == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.ErrorErr(log.CatStore, "Snapshot marshal failed", err, "key", key)
		return
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data),
	)
	if err != nil {
		log.ErrorErr(log.CatStore, "Snapshot write failed", err, "key", key)
	}
}

// Get deserializes the value under key into out. Returns false when the key
// is missing or unparsable; that is "no prior state", never an error.
func (s *Store) Get(key string, out any) bool {
	if s == nil || s.db == nil {
		return false
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		log.ErrorErr(log.CatStore, "Snapshot read failed", err, "key", key)
		return false
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		log.ErrorErr(log.CatStore, "Snapshot unparsable, ignoring", err, "key", key)
		return false
	}
	return true
}

// Delete removes the value under key. Failures are logged and swallowed.
func (s *Store) Delete(key string) {
	if s == nil || s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		log.ErrorErr(log.CatStore, "Snapshot delete failed", err, "key", key)
	}
}
