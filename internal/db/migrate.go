package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so the
// whole list is replayed on each open.
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

// The tables hold the last-known-good snapshot of the scheduling backend.
// seq preserves backend order, which the layout depends on.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS lanes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		hours_per_day REAL NOT NULL DEFAULT 0,
		order_position INTEGER NOT NULL DEFAULT 0,
		seq INTEGER NOT NULL
	)`,

	// lane_id has no foreign key: items on unknown lanes are kept so the
	// layout can report them.
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		lane_id TEXT,
		position INTEGER,
		start_at TEXT,
		end_at TEXT,
		start_date TEXT,
		end_date TEXT,
		locked INTEGER NOT NULL DEFAULT 0,
		priority TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		wo_number TEXT NOT NULL DEFAULT '',
		customer TEXT NOT NULL DEFAULT '',
		assembly TEXT NOT NULL DEFAULT '',
		revision TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS downtime_overrides (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		lane_id TEXT NOT NULL REFERENCES lanes(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		is_down INTEGER NOT NULL DEFAULT 0,
		total_hours REAL NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL,
		CHECK (end_date >= start_date)
	)`,

	`CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		generation INTEGER NOT NULL,
		fetched_at TEXT NOT NULL,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL
	)`,

	`ALTER TABLE snapshot_meta ADD COLUMN source TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_items_lane ON items(lane_id)`,
	`CREATE INDEX IF NOT EXISTS idx_downtime_lane ON downtime_overrides(lane_id, start_date)`,
}
