package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/instabids/outreach/internal/ledger"
	"github.com/instabids/outreach/internal/types"
)

const distributionColumns = `job_id, candidate_id, channel, score, status, sent_at,
       follow_ups, last_follow_up_at, responded_at`

func scanDistribution(row pgx.Row) (*types.DistributionRecord, error) {
	var rec types.DistributionRecord
	err := row.Scan(&rec.JobID, &rec.CandidateID, &rec.Channel, &rec.Score, &rec.Status,
		&rec.SentAt, &rec.FollowUps, &rec.LastFollowUpAt, &rec.RespondedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordAttempt inserts the distribution record for the pair, relying on
// the primary key so concurrent attempts race in the database rather
// than in application code. The loser gets the winner's record with
// AlreadyDistributedError.
func (db *DB) RecordAttempt(ctx context.Context, jobID, candidateID uuid.UUID, channel types.Channel, score float64) (*types.DistributionRecord, error) {
	rec, err := scanDistribution(db.pool.QueryRow(ctx,
		`INSERT INTO distributions (job_id, candidate_id, channel, score)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id, candidate_id) DO NOTHING
		 RETURNING `+distributionColumns,
		jobID, candidateID, channel, score,
	))
	if err == nil {
		return rec, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	// Conflict: the pair already has a record.
	existing, err := db.getDistribution(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Insert conflicted but the row is gone: records are never
		// deleted, so this is a bug, not a state to recover from.
		return nil, fmt.Errorf("distribution for job %s candidate %s conflicted but not found", jobID, candidateID)
	}
	return existing, &ledger.AlreadyDistributedError{JobID: jobID, CandidateID: candidateID, Record: existing}
}

func (db *DB) getDistribution(ctx context.Context, jobID, candidateID uuid.UUID) (*types.DistributionRecord, error) {
	rec, err := scanDistribution(db.pool.QueryRow(ctx,
		`SELECT `+distributionColumns+` FROM distributions
		 WHERE job_id = $1 AND candidate_id = $2`,
		jobID, candidateID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}
	return rec, nil
}

// UpdateStatus applies a forward-only transition; the legality check
// runs inside the UPDATE so there is no read-then-write window.
func (db *DB) UpdateStatus(ctx context.Context, jobID, candidateID uuid.UUID, to types.DistributionStatus) (*types.DistributionRecord, error) {
	rec, err := scanDistribution(db.pool.QueryRow(ctx,
		`UPDATE distributions
		 SET status = $3,
		     responded_at = CASE WHEN $3 = 'responded' THEN NOW() ELSE responded_at END
		 WHERE job_id = $1 AND candidate_id = $2
		   AND ((status = 'sent'   AND $3 IN ('opened', 'responded', 'declined'))
		     OR (status = 'opened' AND $3 IN ('responded', 'declined')))
		 RETURNING `+distributionColumns,
		jobID, candidateID, to,
	))
	if err == nil {
		return rec, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to update distribution: %w", err)
	}

	existing, err := db.getDistribution(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &ledger.NotFoundError{JobID: jobID, CandidateID: candidateID}
	}
	return nil, &ledger.IllegalTransitionError{From: existing.Status, To: to}
}

// MarkFollowUp increments the follow-up counter for the pair.
func (db *DB) MarkFollowUp(ctx context.Context, jobID, candidateID uuid.UUID) (*types.DistributionRecord, error) {
	rec, err := scanDistribution(db.pool.QueryRow(ctx,
		`UPDATE distributions
		 SET follow_ups = follow_ups + 1, last_follow_up_at = NOW()
		 WHERE job_id = $1 AND candidate_id = $2
		 RETURNING `+distributionColumns,
		jobID, candidateID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ledger.NotFoundError{JobID: jobID, CandidateID: candidateID}
		}
		return nil, fmt.Errorf("failed to mark follow-up: %w", err)
	}
	return rec, nil
}

// FollowUpCandidates returns stale sent records under the follow-up cap,
// highest score at send first, oldest first on ties.
func (db *DB) FollowUpCandidates(ctx context.Context, jobID uuid.UUID, maxAge time.Duration, maxFollowUps int) ([]types.DistributionRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+distributionColumns+` FROM distributions
		 WHERE job_id = $1 AND status = 'sent'
		   AND sent_at < NOW() - $2::interval
		   AND follow_ups < $3
		 ORDER BY score DESC, sent_at ASC`,
		jobID, maxAge, maxFollowUps,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-up candidates: %w", err)
	}
	defer rows.Close()
	return collectDistributions(rows)
}

// CountByStatus counts the job's records in a given status.
func (db *DB) CountByStatus(ctx context.Context, jobID uuid.UUID, status types.DistributionStatus) (int, error) {
	var n int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM distributions WHERE job_id = $1 AND status = $2`,
		jobID, status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count distributions: %w", err)
	}
	return n, nil
}

// ListByJob returns all distribution records for a job, oldest first.
func (db *DB) ListByJob(ctx context.Context, jobID uuid.UUID) ([]types.DistributionRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+distributionColumns+` FROM distributions
		 WHERE job_id = $1 ORDER BY sent_at ASC, candidate_id ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	defer rows.Close()
	return collectDistributions(rows)
}

// ListAll returns every distribution record, for analytics.
func (db *DB) ListAll(ctx context.Context) ([]types.DistributionRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+distributionColumns+` FROM distributions ORDER BY sent_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	defer rows.Close()
	return collectDistributions(rows)
}

func collectDistributions(rows pgx.Rows) ([]types.DistributionRecord, error) {
	out := make([]types.DistributionRecord, 0)
	for rows.Next() {
		rec, err := scanDistribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
