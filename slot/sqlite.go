package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLite is a slot stored as one row of a key-value metadata table.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens, or creates, the database at path and returns the slot
// stored under key.
func OpenSQLite(path, key string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}
	return &SQLite{db: db, key: key}, nil
}

func (s *SQLite) Name() string { return "sqlite:" + s.key }

func (s *SQLite) Read(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", s.key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("cannot select %q: %w", s.key, err)
	}
	return blob, nil
}

func (s *SQLite) Write(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		s.key, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("cannot upsert %q: %w", s.key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
