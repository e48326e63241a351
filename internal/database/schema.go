package database

import (
	"context"
	"fmt"
)

// schemaStatements create the panel store and run history. They are
// idempotent and run in order.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS panel_rows (
		player_key         INTEGER     NOT NULL,
		season             INTEGER     NOT NULL,
		gw                 INTEGER     NOT NULL,
		full_name          TEXT        NOT NULL DEFAULT '',
		position           TEXT        NOT NULL DEFAULT '',
		team_name          TEXT        NOT NULL DEFAULT '',
		opponent_team_name TEXT        NOT NULL DEFAULT '',
		was_home           BOOLEAN,
		price              NUMERIC(6,1),
		stats              JSONB       NOT NULL DEFAULT '{}'::jsonb,
		extra              JSONB       NOT NULL DEFAULT '{}'::jsonb,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (player_key, season, gw)
	)`,
	`CREATE INDEX IF NOT EXISTS panel_rows_season_gw_idx ON panel_rows (season, gw)`,
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id          UUID        PRIMARY KEY,
		kind        TEXT        NOT NULL,
		status      TEXT        NOT NULL,
		model_type  TEXT        NOT NULL DEFAULT '',
		season      INTEGER     NOT NULL DEFAULT 0,
		gw          INTEGER     NOT NULL DEFAULT 0,
		rows_in     INTEGER     NOT NULL DEFAULT 0,
		rows_out    INTEGER     NOT NULL DEFAULT 0,
		metrics     JSONB,
		error       TEXT        NOT NULL DEFAULT '',
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS pipeline_runs_kind_started_idx ON pipeline_runs (kind, started_at DESC)`,
}

// EnsureSchema creates the tables when they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
