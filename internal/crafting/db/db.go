// Package db keeps the companion's JSON documents and sync metadata in SQLite.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB is a SQLite database holding the documents and sync_metadata tables.
type DB struct {
	*sql.DB
}

// Open opens the SQLite file at path, creating its directory.
func Open(path string) (*DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}

	// WAL lets `crafting-bot status` read while `serve` writes.
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: stores already serialize their writes, and an
	// in-memory database exists per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{DB: sqlDB}, nil
}

// OpenAndInit opens the database and creates missing tables.
func OpenAndInit(ctx context.Context, path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return db, nil
}

// InTransaction runs fn in a transaction, committing only when fn succeeds.
func (db *DB) InTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument returns the body stored under key; false when there is none.
func (db *DB) GetDocument(ctx context.Context, key string) ([]byte, bool, error) {
	body, ok, err := db.lookup(ctx, `SELECT body FROM documents WHERE key = ?`, key)
	if err != nil {
		return nil, false, fmt.Errorf("querying document %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return []byte(body), true, nil
}

// PutDocument replaces the document stored under key.
func (db *DB) PutDocument(ctx context.Context, key string, body []byte) error {
	err := db.InTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (key, body, updated_at)
			VALUES (?, ?, datetime('now'))
			ON CONFLICT(key) DO UPDATE SET
				body = excluded.body,
				updated_at = excluded.updated_at
		`, key, string(body))
		return err
	})
	if err != nil {
		return fmt.Errorf("writing document %s: %w", key, err)
	}
	return nil
}

// GetSyncMetadata returns the metadata value for key, or "" when unset.
func (db *DB) GetSyncMetadata(ctx context.Context, key string) (string, error) {
	value, _, err := db.lookup(ctx, `SELECT value FROM sync_metadata WHERE key = ?`, key)
	if err != nil {
		return "", fmt.Errorf("querying sync metadata: %w", err)
	}
	return value, nil
}

// SetSyncMetadata records a metadata value such as catalog_last_sync.
func (db *DB) SetSyncMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_metadata (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("setting sync metadata: %w", err)
	}
	return nil
}

func (db *DB) lookup(ctx context.Context, query, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
