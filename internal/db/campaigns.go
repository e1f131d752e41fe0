package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/instabids/outreach/internal/types"
)

// GetCampaign retrieves a campaign by ID, nil if unknown.
func (db *DB) GetCampaign(ctx context.Context, id uuid.UUID) (*types.Campaign, error) {
	return scanCampaign(db.pool.QueryRow(ctx,
		`SELECT id, job_id, status, target, started_at, deadline, plan, checkpoints,
		        created_at, updated_at
		 FROM campaigns WHERE id = $1`,
		id,
	))
}

// SaveCampaign upserts full campaign state. Plan and checkpoints travel
// as JSONB; checkpoints are small and always rewritten as a unit.
func (db *DB) SaveCampaign(ctx context.Context, c *types.Campaign) error {
	planJSON, err := json.Marshal(c.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	checkpointsJSON, err := json.Marshal(c.Checkpoints)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoints: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO campaigns (id, job_id, status, target, started_at, deadline, plan, checkpoints, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		     status = $3,
		     plan = $7,
		     checkpoints = $8,
		     updated_at = $10`,
		c.ID, c.JobID, c.Status, c.Target, c.StartedAt, c.Deadline,
		planJSON, checkpointsJSON, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save campaign %s: %w", c.ID, err)
	}
	return nil
}

// ListCampaigns returns campaigns, optionally filtered by status, oldest
// first.
func (db *DB) ListCampaigns(ctx context.Context, status types.CampaignStatus) ([]types.Campaign, error) {
	query := `SELECT id, job_id, status, target, started_at, deadline, plan, checkpoints,
	                 created_at, updated_at
	          FROM campaigns`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	out := make([]types.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCampaign(row pgx.Row) (*types.Campaign, error) {
	var c types.Campaign
	var planJSON, checkpointsJSON []byte

	err := row.Scan(&c.ID, &c.JobID, &c.Status, &c.Target, &c.StartedAt, &c.Deadline,
		&planJSON, &checkpointsJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan campaign: %w", err)
	}

	if len(planJSON) > 0 && string(planJSON) != "null" {
		if err := json.Unmarshal(planJSON, &c.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
	}
	if len(checkpointsJSON) > 0 {
		if err := json.Unmarshal(checkpointsJSON, &c.Checkpoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkpoints: %w", err)
		}
	}
	return &c, nil
}
