package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// kv_store mirrors browser-style local storage: one opaque string value
	// per key, fully overwritten on every write.
	`CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS snapshot_log (
		id            TEXT PRIMARY KEY,
		kind          TEXT NOT NULL CHECK(kind IN ('export','import')),
		project_type  TEXT NOT NULL DEFAULT 'both'
		              CHECK(project_type IN ('both','map','map-lite')),
		checked_count INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_snapshot_log_created ON snapshot_log(created_at)`,

	// v2: remember which file a snapshot was written to or read from.
	`ALTER TABLE snapshot_log ADD COLUMN source TEXT NOT NULL DEFAULT ''`,
}
