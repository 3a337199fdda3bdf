// Package state keeps the history of installed rules in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// InstallRecord is a single rule file copied into a destination.
type InstallRecord struct {
	ID           int64
	Destination  string
	RelativePath string
	ContentHash  string
	InstalledAt  time.Time
	PlatformOS   string
}

// Store manages the SQLite database for install history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const installColumns = `id, destination, relative_path, content_hash, installed_at, platform_os`

type scanner interface {
	Scan(dest ...any) error
}

func scanInstall(row scanner) (InstallRecord, error) {
	var r InstallRecord
	var installedAt string

	if err := row.Scan(&r.ID, &r.Destination, &r.RelativePath, &r.ContentHash, &installedAt, &r.PlatformOS); err != nil {
		return r, err
	}

	t, err := parseTime(installedAt)
	if err != nil {
		return r, fmt.Errorf("parsing installed_at: %w", err)
	}
	r.InstalledAt = t

	return r, nil
}

// RecordInstall stores one copied rule.
func (s *Store) RecordInstall(destination, relativePath, contentHash, platformOS string) error {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO install_history (destination, relative_path, content_hash, platform_os)
		VALUES (?, ?, ?, ?)
	`, destination, relativePath, contentHash, platformOS)
	if err != nil {
		return fmt.Errorf("recording install: %w", err)
	}

	return nil
}

// LatestInstall returns the most recent install of relativePath into
// destination. Returns nil if the rule was never installed there.
func (s *Store) LatestInstall(destination, relativePath string) (*InstallRecord, error) {
	row := s.db.QueryRowContext(context.Background(), `
		SELECT `+installColumns+`
		FROM install_history
		WHERE destination = ? AND relative_path = ?
		ORDER BY id DESC
		LIMIT 1
	`, destination, relativePath)

	r, err := scanInstall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil means "not found", distinct from error
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest install: %w", err)
	}

	return &r, nil
}

// RecentInstalls returns the N most recent install records, newest first.
func (s *Store) RecentInstalls(limit int) ([]InstallRecord, error) {
	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+installColumns+`
		FROM install_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying install history: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var records []InstallRecord
	for rows.Next() {
		r, err := scanInstall(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning install record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// PruneHistory keeps only the N most recent install records, deleting older ones.
func (s *Store) PruneHistory(keepN int) error {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM install_history
		WHERE id NOT IN (
			SELECT id FROM install_history
			ORDER BY id DESC
			LIMIT ?
		)
	`, keepN)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}

	return nil
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	currentVersion := s.getSchemaVersion()

	migrations := []func(*sql.Tx) error{
		migrateV1,
	}

	ctx := context.Background()
	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 on a fresh database.
func (s *Store) getSchemaVersion() int {
	ctx := context.Background()
	var tableName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

// parseTime parses a timestamp string from SQLite, trying multiple formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS install_history (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			destination     TEXT NOT NULL,
			relative_path   TEXT NOT NULL,
			content_hash    TEXT NOT NULL,
			installed_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			platform_os     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_install_history_target
			ON install_history(destination, relative_path, id DESC)`,
	}

	ctx := context.Background()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}
