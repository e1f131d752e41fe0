// Package scoring ranks contractor candidates against a job's requirements.
//
// Score is pure and deterministic: identical inputs always produce an
// identical result, including the factor breakdown, so snapshot tests can
// pin its behavior. Missing inputs degrade to a neutral contribution
// instead of failing the candidate.
package scoring

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/tier"
	"github.com/instabids/outreach/internal/types"
)

// Factor names used as breakdown keys.
const (
	FactorSizeMatch      = "size_match"
	FactorBudget         = "budget_alignment"
	FactorUrgency        = "urgency_responsiveness"
	FactorQuality        = "quality_preference"
	FactorLocation       = "location_proximity"
	FactorSpecialization = "specialization"
	FactorRequirements   = "requirements"
	FactorContactability = "contactability"
	FactorReputation     = "reputation"
)

// factorOrder fixes the order reasons are emitted in.
var factorOrder = []string{
	FactorSizeMatch,
	FactorBudget,
	FactorUrgency,
	FactorQuality,
	FactorLocation,
	FactorSpecialization,
	FactorRequirements,
	FactorContactability,
	FactorReputation,
}

const baseScore = 50.0

// Recommendation tiers derived purely from the total score.
const (
	RecommendExcellent = "excellent"
	RecommendGood      = "good"
	RecommendFair      = "fair"
	RecommendPoor      = "poor"
)

// Result is the scoring output for one candidate against one job.
type Result struct {
	CandidateID    uuid.UUID          `json:"candidate_id"`
	Total          float64            `json:"total"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Reasons        []string           `json:"reasons"`
	Recommendation string             `json:"recommendation"`
}

// Score computes the weighted match score of a candidate for a job.
// Total starts at 50 and each factor adds or subtracts independently;
// the sum is clamped to [0,100].
func Score(c *types.Candidate, j *types.Job) Result {
	breakdown := map[string]float64{
		FactorSizeMatch:      sizeMatch(c, j),
		FactorBudget:         budgetAlignment(c, j),
		FactorUrgency:        urgencyBonus(c, j),
		FactorQuality:        qualityMatch(c, j),
		FactorLocation:       locationProximity(c, j),
		FactorSpecialization: specializationOverlap(c, j),
		FactorRequirements:   requirementsMet(c, j),
		FactorContactability: contactabilityPenalty(c),
		FactorReputation:     reputationPenalty(c),
	}

	total := baseScore
	for _, delta := range breakdown {
		total += delta
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return Result{
		CandidateID:    c.ID,
		Total:          total,
		Breakdown:      breakdown,
		Reasons:        reasons(breakdown),
		Recommendation: recommend(total, breakdown),
	}
}

// sizeMatch rewards an exact match to the job's preferred provider size
// and penalizes mismatches in proportion to how far apart the categories
// are (one step -10, two -15, three -20).
func sizeMatch(c *types.Candidate, j *types.Job) float64 {
	if j.PreferredSize == "" {
		return 0
	}
	size := tier.ClassifySize(c)
	distance := types.SizeDistance(size, j.PreferredSize)
	switch distance {
	case 0:
		return 20
	case 1:
		return -10
	case 2:
		return -15
	default:
		return -20
	}
}

// priceTier buckets for budget alignment.
const (
	tierValue = iota
	tierStandard
	tierPremium
)

// impliedPriceTier estimates where a candidate prices from rating volume:
// a high rating sustained over many reviews reads as a premium shop.
func impliedPriceTier(c *types.Candidate) (int, bool) {
	if c.Rating == nil || c.RatingCount == 0 {
		return 0, false
	}
	r := *c.Rating
	switch {
	case r >= 4.5 && c.RatingCount >= 20:
		return tierPremium, true
	case r >= 4.0 && c.RatingCount >= 5:
		return tierStandard, true
	default:
		return tierValue, true
	}
}

func budgetTier(mid float64) (int, bool) {
	if mid <= 0 {
		return 0, false
	}
	switch {
	case mid >= 15000:
		return tierPremium, true
	case mid >= 5000:
		return tierStandard, true
	default:
		return tierValue, true
	}
}

func budgetAlignment(c *types.Candidate, j *types.Job) float64 {
	candidateTier, ok := impliedPriceTier(c)
	if !ok {
		return 0
	}
	jobTier, ok := budgetTier(j.BudgetMidpoint())
	if !ok {
		return 0
	}
	diff := candidateTier - jobTier
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		if candidateTier == tierPremium {
			return 10
		}
		if candidateTier == tierStandard {
			return 7
		}
		return 5
	case 1:
		return 0
	default:
		return -5
	}
}

// urgencyBonus rewards reachable, well-rated candidates on urgent jobs.
// Flexible timelines get nothing.
func urgencyBonus(c *types.Candidate, j *types.Job) float64 {
	switch j.Urgency {
	case types.UrgencyEmergency:
		reachable := c.Phone != "" || c.Website != ""
		if reachable && c.Rating != nil && *c.Rating >= 4.5 {
			return 10
		}
		if reachable {
			return 5
		}
		return 0
	case types.UrgencyWithinWeek:
		if c.Phone != "" {
			return 3
		}
		return 0
	default:
		return 0
	}
}

func qualityMatch(c *types.Candidate, j *types.Job) float64 {
	if c.Rating == nil {
		return 0
	}
	r := *c.Rating
	switch j.QualityStance {
	case types.QualityFirst:
		if r >= 4.8 {
			return 15
		}
		if r < 4.0 {
			return -10
		}
		return 0
	case types.BudgetConscious:
		// Mid-range ratings suggest solid work at sane prices.
		if r >= 3.8 && r <= 4.6 {
			return 8
		}
		if r > 4.6 {
			return 3
		}
		return 0
	case types.QualityBalanced:
		if r >= 4.5 {
			return 5
		}
		return 0
	default:
		return 0
	}
}

func locationProximity(c *types.Candidate, j *types.Job) float64 {
	if c.PostalCode == "" || j.PostalCode == "" {
		return 0
	}
	if c.PostalCode == j.PostalCode {
		return 10
	}
	if len(c.PostalCode) >= 3 && len(j.PostalCode) >= 3 && c.PostalCode[:3] == j.PostalCode[:3] {
		return 7
	}
	return 3
}

// specializationOverlap counts keyword overlap between the job's category
// and specialties and the candidate's specialties and tags, +5 per
// distinct match capped at +10.
func specializationOverlap(c *types.Candidate, j *types.Job) float64 {
	jobTerms := make(map[string]struct{})
	for _, t := range strings.Fields(strings.ToLower(j.Category)) {
		jobTerms[t] = struct{}{}
	}
	for _, s := range j.Specialties {
		jobTerms[strings.ToLower(s)] = struct{}{}
	}
	if len(jobTerms) == 0 {
		return 0
	}

	candidateTerms := make(map[string]struct{})
	for _, s := range c.Specialties {
		candidateTerms[strings.ToLower(s)] = struct{}{}
	}
	for _, t := range c.Tags {
		candidateTerms[strings.ToLower(t)] = struct{}{}
	}

	matches := 0
	for term := range jobTerms {
		if _, ok := candidateTerms[term]; ok {
			matches++
		}
	}
	score := float64(matches) * 5
	if score > 10 {
		score = 10
	}
	return score
}

// requirementsMet grants +5 per verified special requirement. Unknown is
// not non-compliant, so unmet requirements are never penalized here.
func requirementsMet(c *types.Candidate, j *types.Job) float64 {
	score := 0.0
	for _, r := range j.Requirements {
		if c.Satisfies(r) {
			score += 5
		}
	}
	return score
}

func contactabilityPenalty(c *types.Candidate) float64 {
	if !c.HasContactChannel() {
		return -10
	}
	return 0
}

func reputationPenalty(c *types.Candidate) float64 {
	penalty := 0.0
	if c.Rating != nil && *c.Rating < 3.0 {
		penalty -= 15
	}
	if c.RatingCount == 0 {
		// No reviews at all: possibly a fake or brand-new listing.
		penalty -= 5
	}
	return penalty
}

func reasons(breakdown map[string]float64) []string {
	out := make([]string, 0, len(factorOrder))
	for _, factor := range factorOrder {
		delta := breakdown[factor]
		if delta == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("%s: %+.0f", factor, delta))
	}
	return out
}

func recommend(total float64, breakdown map[string]float64) string {
	switch {
	case total >= 85:
		return RecommendExcellent
	case total >= 70:
		return RecommendGood
	case total >= 55:
		return RecommendFair
	}
	if worst := dominantNegative(breakdown); worst != "" {
		return fmt.Sprintf("%s (%s)", RecommendPoor, worst)
	}
	return RecommendPoor
}

// dominantNegative names the factor that cost the candidate the most,
// scanning in fixed order so ties resolve deterministically.
func dominantNegative(breakdown map[string]float64) string {
	worst := ""
	worstDelta := 0.0
	for _, factor := range factorOrder {
		if delta := breakdown[factor]; delta < worstDelta {
			worst = factor
			worstDelta = delta
		}
	}
	return worst
}
