package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL holds the three persisted tables: the profile record, the
// rolling try history, and the per-day snapshot. Snapshots are immutable
// once written for a day, which the primary key enforces.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id            TEXT PRIMARY KEY,
		nickname           TEXT NOT NULL,
		age                INT NOT NULL,
		weight_kg          DOUBLE PRECISION NOT NULL,
		height_cm          DOUBLE PRECISION NOT NULL,
		gender             TEXT NOT NULL,
		occupation         TEXT NOT NULL DEFAULT '',
		lifestyle_rhythm   TEXT NOT NULL DEFAULT '',
		exercise_frequency TEXT NOT NULL DEFAULT '',
		alcohol_frequency  TEXT NOT NULL DEFAULT '',
		interests          TEXT[] NOT NULL DEFAULT '{}',
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS tries (
		user_id   TEXT NOT NULL,
		try_date  DATE NOT NULL,
		domain    TEXT NOT NULL,
		kind      TEXT NOT NULL DEFAULT 'daily',
		PRIMARY KEY (user_id, try_date, kind)
	)`,

	`CREATE TABLE IF NOT EXISTS snapshots (
		user_id       TEXT NOT NULL,
		snapshot_date DATE NOT NULL,
		payload       JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, snapshot_date)
	)`,
}

// EnsureSchema creates the tables on startup when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, ddl := range schemaDDL {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
