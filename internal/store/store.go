// Package store is the durable client-local state: per-assessment
// override domains and the offline progress cache. Everything
// authoritative lives server-side; losing this database loses nothing
// but local preferences.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle and exposes the repositories.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn, applies pragmas, and
// creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// OverrideRepo returns the override-domain repository.
func (s *Store) OverrideRepo() OverrideRepo {
	return &overrideRepo{db: s.db}
}

// ProgressRepo returns the cached-progress repository.
func (s *Store) ProgressRepo() ProgressRepo {
	return &progressRepo{db: s.db}
}

// Reset removes every row scoped to the given assessment. Used for the
// hard-reset path when the server reports the assessment gone.
func (s *Store) Reset(ctx context.Context, assessmentID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM override_domains WHERE assessment_id = ?`, assessmentID); err != nil {
		return fmt.Errorf("reset override domains: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM progress_cache WHERE assessment_id = ?`, assessmentID); err != nil {
		return fmt.Errorf("reset progress cache: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user interactive use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS override_domains (
			assessment_id TEXT NOT NULL,
			user_id       TEXT NOT NULL,
			domains       TEXT NOT NULL DEFAULT '[]',
			version       INTEGER NOT NULL DEFAULT 1,
			updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (assessment_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS progress_cache (
			assessment_id TEXT NOT NULL,
			user_id       TEXT NOT NULL,
			session_id    TEXT NOT NULL DEFAULT '',
			answered      INTEGER NOT NULL DEFAULT 0,
			total         INTEGER NOT NULL DEFAULT 0,
			updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (assessment_id, user_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GAPSCAN_DB environment variable
// 2. $XDG_DATA_HOME/gapscan/gapscan.db
// 3. ~/.local/share/gapscan/gapscan.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GAPSCAN_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "gapscan", "gapscan.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
