package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/ledger"
	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/types"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testJob(target int) *types.Job {
	return &types.Job{
		ID:              uuid.New(),
		Category:        "kitchen remodel",
		Urgency:         types.UrgencyWithinMonth,
		TargetResponses: target,
		Deadline:        t0.Add(96 * time.Hour),
	}
}

// testPlan mirrors a typical allocation: a handful of trusted and warm
// contacts topped up with a wider cold pool.
func testPlan(j *types.Job) *types.OutreachPlan {
	return &types.OutreachPlan{
		JobID: j.ID,
		Allocations: []types.TierAllocation{
			{Tier: types.TierTrusted, Requested: 3, Rate: 0.90, Expected: 2.7},
			{Tier: types.TierWarm, Requested: 4, Rate: 0.50, Expected: 2.0},
			{Tier: types.TierCold, Requested: 8, Rate: 0.33, Expected: 2.64},
		},
		TotalContacts:     15,
		ExpectedResponses: 7.34,
	}
}

type fixture struct {
	store  *MemoryStore
	ledger *ledger.Memory
	sched  *Scheduler
	c      *types.Campaign
	job    *types.Job
	clock  *time.Time
}

func newFixture(t *testing.T, target int) *fixture {
	t.Helper()
	clock := t0
	f := &fixture{
		store: NewMemoryStore(),
		clock: &clock,
	}
	f.ledger = ledger.NewMemory().WithClock(func() time.Time { return *f.clock })
	f.sched = NewScheduler(f.store, f.ledger, Config{
		Now: func() time.Time { return *f.clock },
	})
	f.job = testJob(target)
	f.c = New(f.job, testPlan(f.job), nil, t0)
	if err := f.store.SaveCampaign(context.Background(), f.c); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) respond(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		id := uuid.New()
		if _, err := f.ledger.RecordAttempt(ctx, f.job.ID, id, types.ChannelEmail, 80); err != nil {
			t.Fatal(err)
		}
		if _, err := f.ledger.UpdateStatus(ctx, f.job.ID, id, types.StatusResponded); err != nil {
			t.Fatal(err)
		}
	}
}

func (f *fixture) reload(t *testing.T) *types.Campaign {
	t.Helper()
	c, err := f.store.GetCampaign(context.Background(), f.c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("campaign vanished from store")
	}
	return c
}

func TestNewPrecomputesCheckpoints(t *testing.T) {
	j := testJob(5)
	c := New(j, testPlan(j), nil, t0)

	if c.Status != types.CampaignForming {
		t.Errorf("status = %v, want forming", c.Status)
	}
	if len(c.Checkpoints) != 4 {
		t.Fatalf("got %d checkpoints, want 4", len(c.Checkpoints))
	}
	wantAt := []time.Time{
		t0.Add(24 * time.Hour),
		t0.Add(48 * time.Hour),
		t0.Add(72 * time.Hour),
		t0.Add(96 * time.Hour),
	}
	wantExpected := []float64{1.25, 2.5, 3.75, 5}
	for i, cp := range c.Checkpoints {
		if !cp.At.Equal(wantAt[i]) {
			t.Errorf("checkpoint %d at %v, want %v", i, cp.At, wantAt[i])
		}
		if cp.ExpectedBids != wantExpected[i] {
			t.Errorf("checkpoint %d expected %v, want %v", i, cp.ExpectedBids, wantExpected[i])
		}
	}
}

func TestEvaluateActivatesFormingCampaign(t *testing.T) {
	f := newFixture(t, 5)
	*f.clock = t0.Add(time.Hour)

	action, err := f.sched.Evaluate(context.Background(), f.c.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if action != nil {
		t.Errorf("unexpected action before first checkpoint: %+v", action)
	}
	if got := f.reload(t).Status; got != types.CampaignActive {
		t.Errorf("status = %v, want active", got)
	}
}

func TestEvaluateOnTrackWithinSlack(t *testing.T) {
	f := newFixture(t, 5)
	f.respond(t, 1)
	*f.clock = t0.Add(25 * time.Hour)

	// Expected 1.25 at 25%; one response clears 1.25 * 0.75.
	action, err := f.sched.Evaluate(context.Background(), f.c.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if action != nil {
		t.Errorf("on-track campaign escalated: %+v", action)
	}
	c := f.reload(t)
	if c.Status != types.CampaignOnTrack {
		t.Errorf("status = %v, want on_track", c.Status)
	}
	cp := c.Checkpoints[0]
	if !cp.Evaluated || !cp.OnTrack || cp.ActualBids != 1 {
		t.Errorf("checkpoint state = %+v", cp)
	}
}

func TestEvaluateEscalatesWhenBehind(t *testing.T) {
	f := newFixture(t, 5)
	f.respond(t, 1)
	*f.clock = t0.Add(25 * time.Hour)
	if _, err := f.sched.Evaluate(context.Background(), f.c.ID, nil); err != nil {
		t.Fatal(err)
	}

	// Still one response at the 50% checkpoint: 1 < 2.5 * 0.75.
	*f.clock = t0.Add(49 * time.Hour)
	avail := planning.Availability{types.TierWarm: 4, types.TierCold: 8}
	action, err := f.sched.Evaluate(context.Background(), f.c.ID, avail)
	if err != nil {
		t.Fatal(err)
	}
	if action == nil {
		t.Fatal("expected escalation action")
	}
	if action.CheckpointPercent != 50 {
		t.Errorf("checkpoint percent = %d, want 50", action.CheckpointPercent)
	}
	// Gap 1.5 responses from the warm tier: ceil(1.5 / 0.5) = 3.
	if action.FromTier != types.TierWarm || action.AdditionalNeeded != 3 {
		t.Errorf("action = %d from %s, want 3 from warm", action.AdditionalNeeded, action.FromTier)
	}
	if !action.WidenChannels {
		t.Error("escalation should widen channels")
	}
	if action.ManualReview {
		t.Error("mid-campaign escalation should not flag manual review")
	}
	if got := f.reload(t).Status; got != types.CampaignBehind {
		t.Errorf("status = %v, want behind", got)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	f := newFixture(t, 5)
	f.respond(t, 1)
	*f.clock = t0.Add(49 * time.Hour)
	avail := planning.Availability{types.TierWarm: 4}

	first, err := f.sched.Evaluate(context.Background(), f.c.ID, avail)
	if err != nil {
		t.Fatal(err)
	}
	if first == nil {
		t.Fatal("expected escalation on first pass")
	}

	second, err := f.sched.Evaluate(context.Background(), f.c.ID, avail)
	if err != nil {
		t.Fatal(err)
	}
	if second != nil {
		t.Errorf("re-evaluating the same checkpoints escalated again: %+v", second)
	}

	escalated := 0
	for _, cp := range f.reload(t).Checkpoints {
		if cp.Escalated {
			escalated++
		}
	}
	if escalated != 1 {
		t.Errorf("escalated checkpoints = %d, want only the 50%% miss", escalated)
	}
}

func TestEvaluateCompletesEarly(t *testing.T) {
	f := newFixture(t, 5)
	f.respond(t, 5)
	*f.clock = t0.Add(2 * time.Hour)

	action, err := f.sched.Evaluate(context.Background(), f.c.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if action != nil {
		t.Errorf("completed campaign escalated: %+v", action)
	}
	if got := f.reload(t).Status; got != types.CampaignCompleted {
		t.Errorf("status = %v, want completed", got)
	}

	// Terminal campaigns are left alone on later ticks.
	*f.clock = t0.Add(200 * time.Hour)
	action, err = f.sched.Evaluate(context.Background(), f.c.ID, nil)
	if err != nil || action != nil {
		t.Errorf("terminal campaign evaluated: action %+v err %v", action, err)
	}
}

func TestEvaluateFinalCheckpointMissExpires(t *testing.T) {
	f := newFixture(t, 5)
	f.respond(t, 2)
	*f.clock = t0.Add(97 * time.Hour)

	action, err := f.sched.Evaluate(context.Background(), f.c.ID, planning.Availability{types.TierCold: 20})
	if err != nil {
		t.Fatal(err)
	}
	if action == nil {
		t.Fatal("expected final-checkpoint action")
	}
	if !action.ManualReview {
		t.Error("missed final checkpoint should flag manual review")
	}
	if action.CheckpointPercent != 100 {
		t.Errorf("checkpoint percent = %d, want 100", action.CheckpointPercent)
	}
	if got := f.reload(t).Status; got != types.CampaignExpired {
		t.Errorf("status = %v, want expired", got)
	}
}

func TestEvaluateAllTiersExhausted(t *testing.T) {
	f := newFixture(t, 5)
	*f.clock = t0.Add(25 * time.Hour)

	action, err := f.sched.Evaluate(context.Background(), f.c.ID, planning.Availability{})
	if err != nil {
		t.Fatal(err)
	}
	if action == nil {
		t.Fatal("expected escalation action")
	}
	if !action.ManualReview {
		t.Error("exhausted tiers should fall back to manual review")
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	if err := f.sched.Cancel(ctx, f.c.ID); err != nil {
		t.Fatal(err)
	}
	if got := f.reload(t).Status; got != types.CampaignCancelled {
		t.Errorf("status = %v, want cancelled", got)
	}

	// Cancelling again is a no-op, and evaluation skips the campaign.
	if err := f.sched.Cancel(ctx, f.c.ID); err != nil {
		t.Fatal(err)
	}
	action, err := f.sched.Evaluate(ctx, f.c.ID, nil)
	if err != nil || action != nil {
		t.Errorf("cancelled campaign evaluated: action %+v err %v", action, err)
	}
}

func TestEvaluateUnknownCampaign(t *testing.T) {
	f := newFixture(t, 5)
	_, err := f.sched.Evaluate(context.Background(), uuid.New(), nil)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMemoryStoreCopiesCheckpoints(t *testing.T) {
	store := NewMemoryStore()
	j := testJob(5)
	c := New(j, nil, nil, t0)
	if err := store.SaveCampaign(context.Background(), c); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetCampaign(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	got.Checkpoints[0].Evaluated = true

	again, err := store.GetCampaign(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Checkpoints[0].Evaluated {
		t.Error("mutating a returned campaign leaked into the store")
	}
}
