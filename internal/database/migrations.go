package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "key-value table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "track value update time",
		Up: func(tx *sql.Tx) error {
			var n int
			err := tx.QueryRow(
				`SELECT COUNT(*) FROM pragma_table_info('kv') WHERE name = 'updated_at'`,
			).Scan(&n)
			if err != nil || n > 0 {
				return err
			}
			_, err = tx.Exec(`ALTER TABLE kv ADD COLUMN updated_at TEXT`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
