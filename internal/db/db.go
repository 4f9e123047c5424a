// Package db provides PostgreSQL storage for scraped resume payloads and
// their structured processing results.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS resumes (
	id           BIGSERIAL PRIMARY KEY,
	source_url   TEXT NOT NULL UNIQUE,
	schema_ver   TEXT NOT NULL,
	run_id       TEXT NOT NULL DEFAULT '',
	parse_mode   TEXT NOT NULL DEFAULT '',
	payload_mode TEXT NOT NULL DEFAULT '',
	raw_html     TEXT,
	cleaned_text TEXT,
	parsed       JSONB,
	processed    JSONB,
	warnings     JSONB NOT NULL DEFAULT '[]'::jsonb,
	scraped_at   TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_resumes_run_id ON resumes (run_id);
CREATE INDEX IF NOT EXISTS idx_resumes_created_at ON resumes (created_at);
CREATE INDEX IF NOT EXISTS idx_resumes_processed ON resumes ((processed IS NOT NULL));
`

// Migrate creates the resumes table and its indexes if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Drop removes the resumes table and all stored data
func (db *DB) Drop(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, `DROP TABLE IF EXISTS resumes`); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}
