package planning

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

func flexibleJob(target int) *types.Job {
	return &types.Job{ID: uuid.New(), Urgency: types.UrgencyFlexible, TargetResponses: target}
}

func TestPlanDrawsTrustedFirst(t *testing.T) {
	avail := Availability{
		types.TierTrusted: 10,
		types.TierWarm:    10,
		types.TierCold:    10,
	}
	plan := Plan(flexibleJob(5), 5, avail, DefaultRates())

	// ceil(5 / 0.9) = 6 trusted contacts cover the target alone.
	if got := plan.Requested(types.TierTrusted); got != 6 {
		t.Errorf("trusted draw = %d, want 6", got)
	}
	if got := plan.Requested(types.TierWarm); got != 0 {
		t.Errorf("warm draw = %d, want 0", got)
	}
	if got := plan.Requested(types.TierCold); got != 0 {
		t.Errorf("cold draw = %d, want 0", got)
	}
	if plan.TotalContacts != 6 {
		t.Errorf("total contacts = %d, want 6", plan.TotalContacts)
	}
	if plan.UnderProvisioned {
		t.Error("plan should not be under-provisioned")
	}
	if plan.ExpectedResponses < 5 {
		t.Errorf("expected responses = %v, want >= target", plan.ExpectedResponses)
	}
}

func TestPlanRedistributesShortfall(t *testing.T) {
	avail := Availability{
		types.TierTrusted: 2,
		types.TierWarm:    3,
		types.TierCold:    10,
	}
	plan := Plan(flexibleJob(5), 5, avail, DefaultRates())

	if got := plan.Requested(types.TierTrusted); got != 2 {
		t.Errorf("trusted draw = %d, want full tier of 2", got)
	}
	if got := plan.Requested(types.TierWarm); got != 3 {
		t.Errorf("warm draw = %d, want full tier of 3", got)
	}
	// Remaining gap after trusted (1.8) and warm (1.5): 1.7 responses,
	// ceil(1.7 / 0.33) = 6 cold contacts.
	if got := plan.Requested(types.TierCold); got != 6 {
		t.Errorf("cold draw = %d, want 6", got)
	}

	for _, a := range plan.Allocations {
		switch a.Tier {
		case types.TierTrusted, types.TierWarm:
			if !a.Exhausted {
				t.Errorf("tier %s should be marked exhausted", a.Tier)
			}
		case types.TierCold:
			if a.Exhausted {
				t.Error("cold tier had capacity, should not be exhausted")
			}
		}
	}
	if plan.UnderProvisioned {
		t.Error("redistribution covered the target, should not be under-provisioned")
	}
}

func TestPlanUnderProvisionedWhenAllExhausted(t *testing.T) {
	avail := Availability{
		types.TierTrusted: 1,
		types.TierWarm:    1,
		types.TierCold:    1,
	}
	plan := Plan(flexibleJob(5), 5, avail, DefaultRates())

	if !plan.UnderProvisioned {
		t.Error("expected under-provisioned plan")
	}
	if plan.TotalContacts != 3 {
		t.Errorf("total contacts = %d, want 3", plan.TotalContacts)
	}
	wantExpected := 0.9 + 0.5 + 0.33
	if math.Abs(plan.ExpectedResponses-wantExpected) > 1e-9 {
		t.Errorf("expected responses = %v, want %v", plan.ExpectedResponses, wantExpected)
	}
	wantConfidence := wantExpected / 5 * 100
	if math.Abs(plan.Confidence-wantConfidence) > 1e-9 {
		t.Errorf("confidence = %v, want %v", plan.Confidence, wantConfidence)
	}
}

func TestPlanOverProvisionsUrgentJobs(t *testing.T) {
	avail := Availability{types.TierTrusted: 50}

	emergency := &types.Job{ID: uuid.New(), Urgency: types.UrgencyEmergency}
	plan := Plan(emergency, 4, avail, DefaultRates())
	// Emergency factor 1.5: ceil(6 / 0.9) = 7.
	if got := plan.Requested(types.TierTrusted); got != 7 {
		t.Errorf("emergency trusted draw = %d, want 7", got)
	}

	weekly := &types.Job{ID: uuid.New(), Urgency: types.UrgencyWithinWeek}
	plan = Plan(weekly, 4, avail, DefaultRates())
	// Within-week factor 1.25: ceil(5 / 0.9) = 6.
	if got := plan.Requested(types.TierTrusted); got != 6 {
		t.Errorf("within-week trusted draw = %d, want 6", got)
	}
}

func TestPlanNilRatesUsesDefaults(t *testing.T) {
	avail := Availability{types.TierTrusted: 10}
	plan := Plan(flexibleJob(3), 3, avail, nil)
	if got := plan.Requested(types.TierTrusted); got != 4 {
		t.Errorf("trusted draw = %d, want ceil(3/0.9) = 4", got)
	}
}

func TestTopUp(t *testing.T) {
	rates := DefaultRates()

	tier, n, err := TopUp(2, Availability{types.TierTrusted: 5, types.TierCold: 10}, rates)
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if tier != types.TierTrusted || n != 3 {
		t.Errorf("top-up = %d from %s, want 3 from trusted", n, tier)
	}

	tier, n, err = TopUp(2, Availability{types.TierCold: 10}, rates)
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if tier != types.TierCold || n != 7 {
		t.Errorf("top-up = %d from %s, want ceil(2/0.33) = 7 from cold", n, tier)
	}

	// Capacity caps the draw.
	tier, n, err = TopUp(2, Availability{types.TierCold: 4}, rates)
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}
	if tier != types.TierCold || n != 4 {
		t.Errorf("top-up = %d from %s, want capped 4 from cold", n, tier)
	}
}

func TestTopUpExhausted(t *testing.T) {
	_, _, err := TopUp(3, Availability{}, DefaultRates())
	var exhausted *TierExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected TierExhaustedError, got %v", err)
	}
	if exhausted.Needed != 3 {
		t.Errorf("Needed = %d, want 3", exhausted.Needed)
	}
}

func TestTopUpZeroGapIsNoop(t *testing.T) {
	_, n, err := TopUp(0, Availability{}, DefaultRates())
	if err != nil || n != 0 {
		t.Errorf("zero gap: n = %d, err = %v, want 0 and nil", n, err)
	}
}
