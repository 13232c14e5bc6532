package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
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
	`CREATE TABLE IF NOT EXISTS customers (
		id           TEXT PRIMARY KEY,
		first_name   TEXT NOT NULL,
		last_name    TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		phone        TEXT NOT NULL DEFAULT '',
		address      TEXT NOT NULL DEFAULT '',
		city         TEXT NOT NULL DEFAULT '',
		postal_code  TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS estimates (
		id                    TEXT PRIMARY KEY,
		customer_id           TEXT REFERENCES customers(id) ON DELETE SET NULL,
		title                 TEXT NOT NULL,
		status                TEXT NOT NULL DEFAULT 'draft'
		                      CHECK(status IN ('draft','sent','accepted','rejected','converted')),
		subtotal              REAL NOT NULL DEFAULT 0,
		discount_amount       REAL NOT NULL DEFAULT 0,
		total_after_discount  REAL NOT NULL DEFAULT 0,
		tax_amount            REAL NOT NULL DEFAULT 0,
		final_total           REAL NOT NULL DEFAULT 0,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS estimate_groups (
		id               TEXT PRIMARY KEY,
		estimate_id      TEXT NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		parent_group_id  TEXT REFERENCES estimate_groups(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		order_index      INTEGER,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS estimate_items (
		id                TEXT PRIMARY KEY,
		estimate_id       TEXT NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		group_id          TEXT REFERENCES estimate_groups(id) ON DELETE CASCADE,
		title             TEXT NOT NULL DEFAULT '',
		description       TEXT NOT NULL DEFAULT '',
		quantity          REAL NOT NULL DEFAULT 1,
		unit              TEXT NOT NULL DEFAULT '',
		material_cost     REAL,
		labor_cost        REAL,
		equipment_cost    REAL,
		other_cost        REAL,
		subcontract_cost  REAL,
		item_id           TEXT,
		costbook_item_id  TEXT,
		order_index       INTEGER,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id           TEXT PRIMARY KEY,
		estimate_id  TEXT NOT NULL UNIQUE REFERENCES estimates(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending'
		             CHECK(status IN ('pending','in_progress','complete')),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_estimates_customer ON estimates(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_status ON estimates(status)`,
	`CREATE INDEX IF NOT EXISTS idx_groups_estimate ON estimate_groups(estimate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_groups_parent ON estimate_groups(parent_group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_estimate ON estimate_items(estimate_id)`,
	`CREATE INDEX IF NOT EXISTS idx_items_group ON estimate_items(group_id)`,

	// Columns added after the first release.
	`ALTER TABLE estimates ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,
}
