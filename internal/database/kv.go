package database

import (
	"database/sql"
	"strings"
)

// Get returns the value stored under key. ok is false when the key is absent.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key.
func (db *DB) Set(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return err
}

// Delete removes the given keys. Missing keys are ignored.
func (db *DB) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := "DELETE FROM kv WHERE key IN (?" + strings.Repeat(",?", len(keys)-1) + ")"
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	_, err := db.conn.Exec(query, args...)
	return err
}

// Keys returns all stored keys in lexical order.
func (db *DB) Keys() ([]string, error) {
	rows, err := db.conn.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats contains aggregate database statistics.
type Stats struct {
	Keys       int
	ValueBytes int64
	LastWrite  *string
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	err := db.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0), MAX(updated_at) FROM kv`,
	).Scan(&s.Keys, &s.ValueBytes, &s.LastWrite)
	if err != nil {
		return nil, err
	}
	return s, nil
}
