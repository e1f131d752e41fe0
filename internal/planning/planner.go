// Package planning computes tiered outreach plans for jobs.
//
// The planner solves for an integer allocation across trust tiers whose
// expected responses meet or exceed the job's target, exhausting
// higher-trust tiers first since their response rate is higher and
// dispatch cost is flat per contact.
package planning

import (
	"fmt"
	"math"

	"github.com/instabids/outreach/internal/types"
)

// RateTable maps each trust tier to its expected response rate. The
// defaults are inherited business assumptions, kept configurable rather
// than treated as derived truths.
type RateTable map[types.TrustTier]float64

// DefaultRates returns the standard response-rate table.
func DefaultRates() RateTable {
	return RateTable{
		types.TierTrusted: 0.90,
		types.TierWarm:    0.50,
		types.TierCold:    0.33,
	}
}

// Availability is how many candidates the repository can supply per tier.
type Availability map[types.TrustTier]int

// TierExhaustedError reports that no tier had capacity left for a
// requested draw. It is an expected condition, not a failure: callers
// fall back to a smaller plan or flag for manual review.
type TierExhaustedError struct {
	Needed int
}

func (e *TierExhaustedError) Error() string {
	return fmt.Sprintf("all trust tiers exhausted, %d more candidates needed", e.Needed)
}

// Over-provisioning multipliers applied to the target for urgent jobs,
// so tight timelines start with a deeper pool.
func urgencyFactor(u types.Urgency) float64 {
	switch u {
	case types.UrgencyEmergency:
		return 1.5
	case types.UrgencyWithinWeek:
		return 1.25
	default:
		return 1.0
	}
}

// Plan allocates contacts across tiers so that expected responses cover
// the job's target. When a tier runs out of candidates the shortfall is
// redistributed to the next tier down; if every tier is exhausted the
// plan comes back under-provisioned with reduced confidence instead of
// an error.
func Plan(j *types.Job, target int, avail Availability, rates RateTable) *types.OutreachPlan {
	if rates == nil {
		rates = DefaultRates()
	}

	remaining := float64(target) * urgencyFactor(j.Urgency)
	plan := &types.OutreachPlan{JobID: j.ID}

	for _, t := range types.Tiers() {
		rate := rates[t]
		if rate <= 0 {
			continue
		}
		need := 0
		if remaining > 0 {
			need = int(math.Ceil(remaining / rate))
		}
		take := need
		exhausted := false
		if take > avail[t] {
			take = avail[t]
			exhausted = need > 0
		}
		expected := float64(take) * rate
		plan.Allocations = append(plan.Allocations, types.TierAllocation{
			Tier:      t,
			Requested: take,
			Rate:      rate,
			Expected:  expected,
			Exhausted: exhausted,
		})
		plan.TotalContacts += take
		plan.ExpectedResponses += expected
		remaining -= expected
	}

	if target > 0 {
		plan.Confidence = plan.ExpectedResponses / float64(target) * 100
	}
	// Allow one response of rounding slack before flagging.
	plan.UnderProvisioned = plan.ExpectedResponses < float64(target)-1
	return plan
}

// TopUp computes an escalation draw: how many candidates from the
// next-best available tier cover a response gap. Returns
// TierExhaustedError when no tier has capacity left.
func TopUp(gap float64, avail Availability, rates RateTable) (types.TrustTier, int, error) {
	if rates == nil {
		rates = DefaultRates()
	}
	if gap <= 0 {
		return types.TierCold, 0, nil
	}
	for _, t := range types.Tiers() {
		rate := rates[t]
		if rate <= 0 || avail[t] <= 0 {
			continue
		}
		need := int(math.Ceil(gap / rate))
		if need > avail[t] {
			need = avail[t]
		}
		return t, need, nil
	}
	return types.TierCold, 0, &TierExhaustedError{
		Needed: int(math.Ceil(gap)),
	}
}
