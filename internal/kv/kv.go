// Package kv implements the flat key-value persistence layer. Each domain
// store owns one namespaced key holding a JSON-serialized collection, and
// every read-modify-write cycle runs inside an explicit SQLite transaction
// so concurrent callers cannot clobber each other's writes.
package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Store wraps the SQLite-backed key-value table.
type Store struct {
	db *sql.DB
}

// New creates a Store over an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Tx is a transaction scope. All reads and writes through a Tx see a
// consistent snapshot and commit atomically.
type Tx struct {
	ctx context.Context
	tx  *sql.Tx
}

// WithTx runs fn inside a transaction. The transaction is rolled back if fn
// returns an error and committed otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{ctx: ctx, tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get unmarshals the value stored under key into out. A missing key or a
// corrupt value leaves out at its zero value: stores recover from bad JSON
// by treating the collection as empty rather than failing reads.
func (t *Tx) Get(key string, out any) error {
	var raw string
	err := t.tx.QueryRowContext(t.ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading key %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// Corrupt value: recover with the empty collection.
		return nil
	}
	return nil
}

// Put marshals v and stores it under key, replacing any previous value.
func (t *Tx) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding key %q: %w", key, err)
	}

	_, err = t.tx.ExecContext(t.ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is a no-op.
func (t *Tx) Delete(key string) error {
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}

// Get is the single-read convenience form of Tx.Get.
func (s *Store) Get(ctx context.Context, key string, out any) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		return tx.Get(key, out)
	})
}

// Put is the single-write convenience form of Tx.Put.
func (s *Store) Put(ctx context.Context, key string, v any) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		return tx.Put(key, v)
	})
}

// Keys returns all keys with the given prefix, sorted.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? || '%' ORDER BY key`, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
