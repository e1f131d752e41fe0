package types

import (
	"time"

	"github.com/google/uuid"
)

// TierAllocation is the planner's draw from one trust tier.
type TierAllocation struct {
	Tier      TrustTier `json:"tier"`
	Requested int       `json:"requested"`
	// Rate is the expected response rate applied to this tier.
	Rate float64 `json:"rate"`
	// Expected is Requested × Rate.
	Expected float64 `json:"expected"`
	// Exhausted marks that the repository had fewer candidates than the
	// planner wanted from this tier.
	Exhausted bool `json:"exhausted,omitempty"`
}

// OutreachPlan is the per-job allocation of contacts across trust tiers.
type OutreachPlan struct {
	JobID             uuid.UUID        `json:"job_id"`
	Allocations       []TierAllocation `json:"allocations"`
	TotalContacts     int              `json:"total_contacts"`
	ExpectedResponses float64          `json:"expected_responses"`
	// Confidence is expected responses over the target, as a percentage.
	Confidence float64 `json:"confidence"`
	// UnderProvisioned is set when expected responses fall short of the
	// target beyond rounding, i.e. every tier was exhausted.
	UnderProvisioned bool `json:"under_provisioned,omitempty"`
}

// Requested returns the planned contact count for one tier.
func (p *OutreachPlan) Requested(tier TrustTier) int {
	for _, a := range p.Allocations {
		if a.Tier == tier {
			return a.Requested
		}
	}
	return 0
}

// CampaignStatus is the escalation scheduler's state for one campaign.
type CampaignStatus string

const (
	CampaignForming   CampaignStatus = "forming"
	CampaignActive    CampaignStatus = "active"
	CampaignOnTrack   CampaignStatus = "on_track"
	CampaignBehind    CampaignStatus = "behind"
	CampaignCompleted CampaignStatus = "completed"
	CampaignExpired   CampaignStatus = "expired"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Terminal reports whether no further scheduler evaluation applies.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignExpired || s == CampaignCancelled
}

// Checkpoint is a scheduled comparison point between actual and expected
// progress. Percent, At and ExpectedBids are fixed when the campaign is
// created; only the actual/on-track fields are updated as time passes.
type Checkpoint struct {
	Percent      int       `json:"percent"`
	At           time.Time `json:"at"`
	ExpectedBids float64   `json:"expected_bids"`
	ActualBids   int       `json:"actual_bids"`
	Evaluated    bool      `json:"evaluated"`
	OnTrack      bool      `json:"on_track"`
	Escalated    bool      `json:"escalated,omitempty"`
}

// Campaign is the bounded-time outreach effort for one job.
type Campaign struct {
	ID          uuid.UUID      `json:"id"`
	JobID       uuid.UUID      `json:"job_id"`
	Status      CampaignStatus `json:"status"`
	Target      int            `json:"target"`
	StartedAt   time.Time      `json:"started_at"`
	Deadline    time.Time      `json:"deadline"`
	Plan        *OutreachPlan  `json:"plan,omitempty"`
	Checkpoints []Checkpoint   `json:"checkpoints"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NextCheckpoint returns the earliest unevaluated checkpoint, or nil.
func (c *Campaign) NextCheckpoint() *Checkpoint {
	for i := range c.Checkpoints {
		if !c.Checkpoints[i].Evaluated {
			return &c.Checkpoints[i]
		}
	}
	return nil
}

// FinalCheckpoint reports whether cp is the last scheduled checkpoint.
func (c *Campaign) FinalCheckpoint(cp *Checkpoint) bool {
	if len(c.Checkpoints) == 0 {
		return false
	}
	return cp.Percent == c.Checkpoints[len(c.Checkpoints)-1].Percent
}

// EscalationAction is the scheduler's output when a campaign is behind
// pace at a checkpoint.
type EscalationAction struct {
	CampaignID        uuid.UUID `json:"campaign_id"`
	CheckpointPercent int       `json:"checkpoint_percent"`
	// AdditionalNeeded is how many more candidates to contact, computed
	// from the response gap and the source tier's response rate.
	AdditionalNeeded int       `json:"additional_needed"`
	FromTier         TrustTier `json:"from_tier"`
	// WidenChannels asks dispatch to enable a secondary contact channel.
	WidenChannels bool `json:"widen_channels"`
	// ManualReview is set when the final checkpoint passed with the
	// campaign still behind; the campaign expires instead of looping.
	ManualReview bool   `json:"manual_review"`
	Reason       string `json:"reason"`
}
