// Package cachestore persists match results in a SQLite key/value table
// with per-entry expiry, surviving process restarts and serving as the
// fallback source while the upstream service is degraded.
package cachestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Nomadcxx/jellymatch/internal/match"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_cache_expires ON match_cache(expires_at);
`

// DefaultTTL bounds how long a persisted match result stays servable.
const DefaultTTL = 7 * 24 * time.Hour

// Store is a SQLite-backed result cache. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db   *sql.DB
	path string
	ttl  time.Duration
}

// Open creates or opens the store at path and ensures the schema. A
// non-positive ttl falls back to DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path, ttl: ttl}, nil
}

// Get returns the unexpired result for key. Expired rows read as misses
// and are left for Cleanup.
func (s *Store) Get(key string) (match.Result, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM match_cache WHERE key = ? AND expires_at > ?`,
		key, time.Now().Unix(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return match.Result{}, false, nil
	}
	if err != nil {
		return match.Result{}, false, fmt.Errorf("read cache entry: %w", err)
	}

	var res match.Result
	if err := json.Unmarshal([]byte(value), &res); err != nil {
		return match.Result{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return res, true, nil
}

// Set upserts the result under key with the store's TTL.
func (s *Store) Set(key string, res match.Result) error {
	value, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO match_cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		 created_at = excluded.created_at, expires_at = excluded.expires_at`,
		key, string(value), now.Unix(), now.Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM match_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired rows and returns how many were dropped.
func (s *Store) Cleanup() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM match_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup cache: %w", err)
	}
	return result.RowsAffected()
}

// Clear removes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM match_cache`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Stats summarizes the table.
type Stats struct {
	TotalEntries   int64  `json:"total_entries"`
	ExpiredEntries int64  `json:"expired_entries"`
	Path           string `json:"path"`
}

// Stats returns entry counts and the backing path.
func (s *Store) Stats() (Stats, error) {
	st := Stats{Path: s.path}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM match_cache`).Scan(&st.TotalEntries); err != nil {
		return Stats{}, fmt.Errorf("count cache entries: %w", err)
	}
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM match_cache WHERE expires_at <= ?`, time.Now().Unix(),
	).Scan(&st.ExpiredEntries)
	if err != nil {
		return Stats{}, fmt.Errorf("count expired entries: %w", err)
	}
	return st, nil
}

// Backup writes a consistent copy of the database to destPath.
func (s *Store) Backup(destPath string) error {
	if strings.TrimSpace(destPath) == "" {
		return errors.New("backup path required")
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("remove stale backup: %w", err)
		}
	}
	if _, err := s.db.Exec(`VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("backup cache: %w", err)
	}
	return nil
}

// Restore replaces the store's contents with the entries from a backup
// file produced by Backup. Unexpired entries win on key conflicts.
func (s *Store) Restore(srcPath string) error {
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("backup not readable: %w", err)
	}
	if _, err := s.db.Exec(`ATTACH DATABASE ? AS backup`, srcPath); err != nil {
		return fmt.Errorf("attach backup: %w", err)
	}
	defer s.db.Exec(`DETACH DATABASE backup`)

	_, err := s.db.Exec(
		`INSERT INTO match_cache (key, value, created_at, expires_at)
		 SELECT key, value, created_at, expires_at FROM backup.match_cache WHERE expires_at > ?
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		 created_at = excluded.created_at, expires_at = excluded.expires_at`,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("restore cache: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
