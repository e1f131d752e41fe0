package campaign

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/types"
)

func TestRunnerStopsOnTerminalCampaign(t *testing.T) {
	f := newFixture(t, 5)
	f.respond(t, 5)

	avail := func(context.Context, uuid.UUID) (planning.Availability, error) {
		return planning.Availability{}, nil
	}
	runner := NewRunner(f.sched, avail, 5*time.Millisecond)
	runner.Watch(context.Background(), f.c.ID)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("campaign never completed")
		case <-time.After(10 * time.Millisecond):
		}
		if f.reload(t).Status == types.CampaignCompleted {
			return
		}
	}
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	f := newFixture(t, 5)
	avail := func(context.Context, uuid.UUID) (planning.Availability, error) {
		return planning.Availability{}, nil
	}
	runner := NewRunner(f.sched, avail, time.Hour)
	runner.Watch(context.Background(), f.c.ID)

	runner.Stop(f.c.ID)
	runner.Stop(f.c.ID)
	runner.Stop(uuid.New())
}
