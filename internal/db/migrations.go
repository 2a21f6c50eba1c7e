package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: recipients look up their open transfers by identity.
	`CREATE INDEX IF NOT EXISTS idx_events_pending_recipient
	     ON events(to_keeper) WHERE status = 'pending'`,
	// Migration 2: list items by current keeper.
	`CREATE INDEX IF NOT EXISTS idx_items_keeper ON items(keeper)`,
}

// Migrate ensures the schema and runs the database migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
