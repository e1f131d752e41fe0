// Package db provides PostgreSQL persistence for campaigns, candidates,
// and the distribution ledger.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema is applied idempotently on Migrate. The primary key on
// distributions (job_id, candidate_id) is what backs the ledger's
// at-most-once guarantee.
const schema = `
CREATE TABLE IF NOT EXISTS candidates (
    id            UUID PRIMARY KEY,
    business_name TEXT NOT NULL,
    email         TEXT NOT NULL DEFAULT '',
    phone         TEXT NOT NULL DEFAULT '',
    website       TEXT NOT NULL DEFAULT '',
    specialties   TEXT[] NOT NULL DEFAULT '{}',
    tags          TEXT[] NOT NULL DEFAULT '{}',
    licensed      BOOLEAN,
    insured       BOOLEAN,
    bonded        BOOLEAN,
    rating        DOUBLE PRECISION,
    rating_count  INT NOT NULL DEFAULT 0,
    years_active  INT NOT NULL DEFAULT 0,
    postal_code   TEXT NOT NULL DEFAULT '',
    region        TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS campaigns (
    id          UUID PRIMARY KEY,
    job_id      UUID NOT NULL,
    status      TEXT NOT NULL,
    target      INT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    deadline    TIMESTAMPTZ NOT NULL,
    plan        JSONB,
    checkpoints JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS campaigns_status_idx ON campaigns (status);
CREATE INDEX IF NOT EXISTS campaigns_job_idx ON campaigns (job_id);

CREATE TABLE IF NOT EXISTS distributions (
    job_id            UUID NOT NULL,
    candidate_id      UUID NOT NULL,
    channel           TEXT NOT NULL,
    score             DOUBLE PRECISION NOT NULL,
    status            TEXT NOT NULL DEFAULT 'sent',
    sent_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    follow_ups        INT NOT NULL DEFAULT 0,
    last_follow_up_at TIMESTAMPTZ,
    responded_at      TIMESTAMPTZ,
    PRIMARY KEY (job_id, candidate_id)
);

CREATE INDEX IF NOT EXISTS distributions_status_idx ON distributions (job_id, status);

CREATE TABLE IF NOT EXISTS manual_tiers (
    candidate_id UUID PRIMARY KEY,
    tier         TEXT NOT NULL,
    reason       TEXT NOT NULL DEFAULT '',
    actor        TEXT NOT NULL DEFAULT '',
    set_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate applies the schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
