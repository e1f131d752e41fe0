package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/ledger"
	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/types"
)

// DefaultSlack is the on-track tolerance: a campaign counts as on track
// while actual responses are at least 75% of the expected pace. An
// inherited business assumption, configurable rather than derived.
const DefaultSlack = 0.75

// Scheduler evaluates campaign checkpoints and emits escalation actions.
// Evaluations are idempotent: a checkpoint that was already evaluated is
// skipped, so repeated ticks never double-escalate.
type Scheduler struct {
	store  Store
	ledger ledger.Ledger
	rates  planning.RateTable
	slack  float64
	now    func() time.Time
}

// Config tunes a Scheduler. Zero values fall back to defaults.
type Config struct {
	Rates planning.RateTable
	Slack float64
	Now   func() time.Time
}

// NewScheduler builds a scheduler over a campaign store and a ledger.
func NewScheduler(store Store, l ledger.Ledger, cfg Config) *Scheduler {
	if cfg.Rates == nil {
		cfg.Rates = planning.DefaultRates()
	}
	if cfg.Slack <= 0 {
		cfg.Slack = DefaultSlack
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		store:  store,
		ledger: l,
		rates:  cfg.Rates,
		slack:  cfg.Slack,
		now:    cfg.Now,
	}
}

// Evaluate runs one scheduler pass for a campaign: counts responses,
// evaluates due checkpoints, and returns the escalation action when the
// campaign is behind pace. avail is the per-tier candidate capacity the
// repository can still supply.
//
// Target reached completes the campaign immediately regardless of the
// checkpoint schedule. A campaign still behind at its final checkpoint
// expires and is flagged for manual review instead of looping.
func (s *Scheduler) Evaluate(ctx context.Context, campaignID uuid.UUID, avail planning.Availability) (*types.EscalationAction, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &NotFoundError{CampaignID: campaignID}
	}
	if c.Status.Terminal() {
		return nil, nil
	}

	actual, err := s.ledger.CountByStatus(ctx, c.JobID, types.StatusResponded)
	if err != nil {
		return nil, fmt.Errorf("counting responses for job %s: %w", c.JobID, err)
	}

	now := s.now()
	if c.Status == types.CampaignForming {
		c.Status = types.CampaignActive
	}

	// Early exit on success, regardless of the checkpoint schedule.
	if actual >= c.Target {
		c.Status = types.CampaignCompleted
		c.UpdatedAt = now
		if err := s.store.SaveCampaign(ctx, c); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var action *types.EscalationAction
	evaluatedAny := false
	behind := false

	for i := range c.Checkpoints {
		cp := &c.Checkpoints[i]
		if cp.Evaluated || cp.At.After(now) {
			continue
		}
		cp.Evaluated = true
		cp.ActualBids = actual
		cp.OnTrack = float64(actual) >= cp.ExpectedBids*s.slack
		evaluatedAny = true

		if cp.OnTrack {
			continue
		}
		behind = true
		cp.Escalated = true
		action = s.escalate(c, cp, actual, avail)
	}

	switch {
	case action != nil && action.ManualReview:
		c.Status = types.CampaignExpired
	case now.After(c.Deadline):
		c.Status = types.CampaignExpired
	case behind:
		c.Status = types.CampaignBehind
	case evaluatedAny:
		c.Status = types.CampaignOnTrack
	}

	c.UpdatedAt = now
	if err := s.store.SaveCampaign(ctx, c); err != nil {
		return nil, err
	}
	return action, nil
}

// escalate builds the action for a missed checkpoint: more candidates
// from the next-best available tier and a wider channel mix, or expiry
// with manual review at the final checkpoint.
func (s *Scheduler) escalate(c *types.Campaign, cp *types.Checkpoint, actual int, avail planning.Availability) *types.EscalationAction {
	action := &types.EscalationAction{
		CampaignID:        c.ID,
		CheckpointPercent: cp.Percent,
		WidenChannels:     true,
		Reason: fmt.Sprintf("%d responses against %.1f expected at %d%% of deadline window",
			actual, cp.ExpectedBids, cp.Percent),
	}

	if c.FinalCheckpoint(cp) {
		action.ManualReview = true
		action.Reason += "; final checkpoint missed"
		return action
	}

	gap := cp.ExpectedBids - float64(actual)
	tier, n, err := planning.TopUp(gap, avail, s.rates)
	if err != nil {
		var exhausted *planning.TierExhaustedError
		if errors.As(err, &exhausted) {
			action.ManualReview = true
			action.Reason += "; all tiers exhausted"
			return action
		}
	}
	action.FromTier = tier
	action.AdditionalNeeded = n
	return action
}

// Cancel stops future escalation for a campaign. Already-recorded
// distribution records keep their history for analytics and dedup.
func (s *Scheduler) Cancel(ctx context.Context, campaignID uuid.UUID) error {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if c == nil {
		return &NotFoundError{CampaignID: campaignID}
	}
	if c.Status.Terminal() {
		return nil
	}
	c.Status = types.CampaignCancelled
	c.UpdatedAt = s.now()
	return s.store.SaveCampaign(ctx, c)
}

// NotFoundError reports an unknown campaign.
type NotFoundError struct {
	CampaignID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return "campaign not found: " + e.CampaignID.String()
}
