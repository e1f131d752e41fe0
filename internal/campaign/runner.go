package campaign

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/planning"
)

// AvailabilityFunc reports how many candidates per tier the repository
// can still supply for a campaign's job.
type AvailabilityFunc func(ctx context.Context, campaignID uuid.UUID) (planning.Availability, error)

// Runner drives periodic scheduler ticks for running campaigns. Each
// tick is independent and idempotent, so a crashed or duplicated tick
// cannot double-escalate. Campaigns share no mutable state with each
// other except through the store and ledger.
type Runner struct {
	sched    *Scheduler
	avail    AvailabilityFunc
	interval time.Duration

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

// NewRunner builds a runner ticking each watched campaign at interval.
func NewRunner(sched *Scheduler, avail AvailabilityFunc, interval time.Duration) *Runner {
	return &Runner{
		sched:    sched,
		avail:    avail,
		interval: interval,
		cancels:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// Watch starts ticking a campaign until it reaches a terminal state or
// the context is cancelled.
func (r *Runner) Watch(ctx context.Context, campaignID uuid.UUID) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if _, running := r.cancels[campaignID]; running {
		r.mu.Unlock()
		cancel()
		return
	}
	r.cancels[campaignID] = cancel
	r.mu.Unlock()

	go r.loop(ctx, campaignID)
}

// Stop halts ticks for one campaign. Ledger history is left untouched.
func (r *Runner) Stop(campaignID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[campaignID]; ok {
		cancel()
		delete(r.cancels, campaignID)
	}
}

func (r *Runner) loop(ctx context.Context, campaignID uuid.UUID) {
	defer r.Stop(campaignID)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		avail, err := r.avail(ctx, campaignID)
		if err != nil {
			log.Printf("campaign %s: availability lookup failed: %v", campaignID, err)
			continue
		}
		action, err := r.sched.Evaluate(ctx, campaignID, avail)
		if err != nil {
			log.Printf("campaign %s: evaluation failed: %v", campaignID, err)
			continue
		}
		if action != nil {
			log.Printf("campaign %s: escalation at %d%%: need %d from %s (manual review: %v)",
				campaignID, action.CheckpointPercent, action.AdditionalNeeded, action.FromTier, action.ManualReview)
		}

		c, err := r.sched.store.GetCampaign(ctx, campaignID)
		if err != nil || c == nil {
			return
		}
		if c.Status.Terminal() {
			return
		}
	}
}
