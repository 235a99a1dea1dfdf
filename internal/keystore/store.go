package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store is a flat, durable mapping of configuration keys to values.
type Store interface {
	// Get returns the value for key. ok is false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key. The write is durable when Set returns nil.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// SQLiteStore implements Store on the key_store table.
//
// The table is created by the embedded migrations; callers must run
// database.Migrate before using the store. Each statement autocommits and
// the connection runs with synchronous=FULL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a value by key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM key_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: reading %q: %w", ErrStorage, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces a value.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: writing %q: %w", ErrStorage, key, err)
	}
	return nil
}

// Delete removes a key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM key_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: deleting %q: %w", ErrStorage, key, err)
	}
	return nil
}

// Forget deletes keys so that they are prompted for again at the next boot.
func Forget(ctx context.Context, store Store, keys ...string) error {
	for _, k := range keys {
		if err := store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
