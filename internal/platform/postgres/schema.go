// Package postgres owns the database schema. The schema is small enough
// that idempotent DDL at startup beats a migration tool.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the full DDL. Every statement is idempotent so EnsureSchema can
// run on every boot.
const Schema = `
CREATE TABLE IF NOT EXISTS topic_history (
	id           UUID PRIMARY KEY,
	title        TEXT NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	source_url   TEXT NOT NULL DEFAULT '',
	score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	keywords     TEXT[] NOT NULL DEFAULT '{}',
	selected_for TEXT NOT NULL,
	fetched_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topic_history_fetched_at ON topic_history (fetched_at DESC);

CREATE TABLE IF NOT EXISTS topic_blocklist (
	phrase     TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	id         UUID PRIMARY KEY,
	run_date   TEXT NOT NULL,
	status     TEXT NOT NULL,
	stages     JSONB NOT NULL,
	topic      JSONB,
	script     JSONB,
	artifact   JSONB,
	post       JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_date_status ON pipeline_runs (run_date, status);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_created_at ON pipeline_runs (created_at DESC);
`

// EnsureSchema applies the DDL.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
