// Package store persists generated rationales on disk so a provider call
// is paid at most once per item and model. The store is optional; the
// pipeline runs identically without one, just at higher provider cost.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store holds generated rationales in a sqlite database
type Store struct {
	db *sql.DB
}

// Stats contains store statistics
type Stats struct {
	Entries     int
	OldestEntry time.Time
}

// Open initializes the rationale database at the given path
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open rationale database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize rationale schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get retrieves the stored rationale for a link and model.
// Returns: (rationale, found, error). Read errors are treated as misses.
func (s *Store) Get(link, model string) (string, bool, error) {
	var rationale string
	accessedAt := time.Now().Unix()

	err := s.db.QueryRow(
		"SELECT rationale FROM rationale_cache WHERE link = ? AND model = ?",
		link, model,
	).Scan(&rationale)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		slog.Warn("rationale store read error", "error", err, "link", truncate(link, 50))
		return "", false, nil
	}

	_, _ = s.db.Exec(
		"UPDATE rationale_cache SET accessed_at = ? WHERE link = ? AND model = ?",
		accessedAt, link, model,
	)

	return rationale, true, nil
}

// Put stores a generated rationale
func (s *Store) Put(link, model, rationale string) error {
	now := time.Now().Unix()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO rationale_cache
		(link, model, rationale, created_at, accessed_at)
		VALUES (?, ?, ?, ?, ?)
	`, link, model, rationale, now, now)

	if err != nil {
		slog.Warn("rationale store write error", "error", err, "link", truncate(link, 50))
		return err
	}

	return nil
}

// Clear removes all stored rationales
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM rationale_cache"); err != nil {
		return fmt.Errorf("failed to clear rationale store: %w", err)
	}
	return nil
}

// Stats returns store statistics
func (s *Store) Stats() (Stats, error) {
	var stats Stats

	err := s.db.QueryRow("SELECT COUNT(*) FROM rationale_cache").Scan(&stats.Entries)
	if err != nil {
		return stats, err
	}

	var oldestUnix sql.NullInt64
	err = s.db.QueryRow("SELECT MIN(created_at) FROM rationale_cache").Scan(&oldestUnix)
	if err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	if oldestUnix.Valid && oldestUnix.Int64 > 0 {
		stats.OldestEntry = time.Unix(oldestUnix.Int64, 0)
	}

	return stats, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
