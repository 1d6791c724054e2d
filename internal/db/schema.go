package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. All domain state lives in a single
// flat key-value table: each store owns one namespaced key holding a
// JSON-serialized collection.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates the key-value table if it doesn't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
