// Package campaign owns the escalation scheduler: per-campaign
// checkpoints, progress evaluation against the deadline window, and
// escalation when a campaign falls behind pace.
package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

// Store persists campaign state across process restarts.
type Store interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (*types.Campaign, error)
	SaveCampaign(ctx context.Context, c *types.Campaign) error
}

// DefaultCheckpoints is the standard checkpoint schedule, as percentages
// of the deadline window.
var DefaultCheckpoints = []int{25, 50, 75, 100}

// New creates a campaign for a job with its checkpoints precomputed.
// Checkpoints are immutable once scheduled; only their actual/on-track
// fields change afterwards.
func New(j *types.Job, plan *types.OutreachPlan, percents []int, now time.Time) *types.Campaign {
	if len(percents) == 0 {
		percents = DefaultCheckpoints
	}
	c := &types.Campaign{
		ID:        uuid.New(),
		JobID:     j.ID,
		Status:    types.CampaignForming,
		Target:    j.TargetResponses,
		StartedAt: now,
		Deadline:  j.Deadline,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}

	window := j.Deadline.Sub(now)
	for _, pct := range percents {
		c.Checkpoints = append(c.Checkpoints, types.Checkpoint{
			Percent:      pct,
			At:           now.Add(window * time.Duration(pct) / 100),
			ExpectedBids: float64(j.TargetResponses) * float64(pct) / 100,
		})
	}
	return c
}
