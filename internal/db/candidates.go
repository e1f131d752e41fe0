package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/repo"
	"github.com/instabids/outreach/internal/types"
)

// tierExpr derives the trust tier in SQL with the same thresholds as
// tier.Reclassify: a manual override wins, otherwise responses across
// two or more distinct campaigns make trusted and any prior contact
// makes warm.
const tierExpr = `
SELECT c.id, c.business_name, c.email, c.phone, c.website, c.specialties, c.tags,
       c.licensed, c.insured, c.bonded, c.rating, c.rating_count, c.years_active,
       c.postal_code, c.region,
       COALESCE(m.tier,
                CASE WHEN e.responded >= 2 THEN 'trusted'
                     WHEN e.contacted >= 1 THEN 'warm'
                     ELSE 'cold' END) AS tier
FROM candidates c
LEFT JOIN manual_tiers m ON m.candidate_id = c.id
LEFT JOIN LATERAL (
    SELECT COUNT(DISTINCT d.job_id) AS contacted,
           COUNT(DISTINCT d.job_id) FILTER (WHERE d.status = 'responded') AS responded
    FROM distributions d WHERE d.candidate_id = c.id
) e ON true`

// SaveCandidate upserts a candidate lead.
func (db *DB) SaveCandidate(ctx context.Context, c *types.Candidate) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO candidates (id, business_name, email, phone, website, specialties, tags,
		                         licensed, insured, bonded, rating, rating_count, years_active,
		                         postal_code, region)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO UPDATE SET
		     business_name = $2, email = $3, phone = $4, website = $5,
		     specialties = $6, tags = $7, licensed = $8, insured = $9, bonded = $10,
		     rating = $11, rating_count = $12, years_active = $13,
		     postal_code = $14, region = $15`,
		c.ID, c.BusinessName, c.Email, c.Phone, c.Website, c.Specialties, c.Tags,
		c.Licensed, c.Insured, c.Bonded, c.Rating, c.RatingCount, c.YearsActive,
		c.PostalCode, c.Region,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", c.ID, err)
	}
	return nil
}

// Find returns candidates matching the filter ordered by quality proxy
// (rating, then rating count) descending.
func (db *DB) Find(ctx context.Context, f repo.Filter) ([]types.Candidate, error) {
	query := `SELECT id, business_name, email, phone, website, specialties, tags,
	                 licensed, insured, bonded, rating, rating_count, years_active,
	                 postal_code, region
	          FROM (` + tierExpr + `) sub WHERE true`
	args := []any{}

	if f.Region != "" {
		args = append(args, f.Region)
		query += fmt.Sprintf(" AND LOWER(region) = LOWER($%d)", len(args))
	}
	if f.Specialty != "" {
		args = append(args, f.Specialty)
		query += fmt.Sprintf(" AND ($%d = ANY(specialties) OR $%d = ANY(tags))", len(args), len(args))
	}
	if len(f.TierIn) > 0 {
		names := make([]string, 0, len(f.TierIn))
		for _, t := range f.TierIn {
			names = append(names, t.String())
		}
		args = append(args, names)
		query += fmt.Sprintf(" AND tier = ANY($%d)", len(args))
	}
	query += " ORDER BY rating DESC NULLS LAST, rating_count DESC, id ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	defer rows.Close()

	out := make([]types.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// EngagementFor assembles a candidate's engagement history from the
// ledger plus any manual override.
func (db *DB) EngagementFor(ctx context.Context, candidateID uuid.UUID) (types.EngagementHistory, error) {
	var h types.EngagementHistory
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT job_id),
		        COUNT(DISTINCT job_id) FILTER (WHERE status = 'responded')
		 FROM distributions WHERE candidate_id = $1`,
		candidateID,
	).Scan(&h.ContactedCampaigns, &h.RespondedCampaigns)
	if err != nil {
		return h, fmt.Errorf("failed to load engagement: %w", err)
	}

	var tierName string
	err = db.pool.QueryRow(ctx,
		`SELECT tier FROM manual_tiers WHERE candidate_id = $1`,
		candidateID,
	).Scan(&tierName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return h, nil
		}
		return h, fmt.Errorf("failed to load manual tier: %w", err)
	}
	t, err := types.ParseTier(tierName)
	if err != nil {
		return h, err
	}
	h.ManualTier = &t
	return h, nil
}

// SetManualTier records an operator tier override (onboarding or
// demotion) with its audit fields.
func (db *DB) SetManualTier(ctx context.Context, candidateID uuid.UUID, tier types.TrustTier, reason, actor string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO manual_tiers (candidate_id, tier, reason, actor)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (candidate_id) DO UPDATE SET
		     tier = $2, reason = $3, actor = $4, set_at = NOW()`,
		candidateID, tier.String(), reason, actor,
	)
	if err != nil {
		return fmt.Errorf("failed to set manual tier: %w", err)
	}
	return nil
}

// AvailabilityForJob counts candidates per tier not yet contacted for
// the job, the capacity input to planning and escalation.
func (db *DB) AvailabilityForJob(ctx context.Context, jobID uuid.UUID) (planning.Availability, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT tier, COUNT(*) FROM (`+tierExpr+`) sub
		 WHERE sub.id NOT IN (SELECT candidate_id FROM distributions WHERE job_id = $1)
		 GROUP BY tier`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count availability: %w", err)
	}
	defer rows.Close()

	avail := make(planning.Availability)
	for rows.Next() {
		var tierName string
		var n int
		if err := rows.Scan(&tierName, &n); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		t, err := types.ParseTier(tierName)
		if err != nil {
			return nil, err
		}
		avail[t] = n
	}
	return avail, rows.Err()
}

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var c types.Candidate
	err := row.Scan(&c.ID, &c.BusinessName, &c.Email, &c.Phone, &c.Website,
		&c.Specialties, &c.Tags, &c.Licensed, &c.Insured, &c.Bonded,
		&c.Rating, &c.RatingCount, &c.YearsActive, &c.PostalCode, &c.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}
	return &c, nil
}
