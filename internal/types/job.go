// Package types defines the core domain model shared across the outreach engine.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Urgency classifies how quickly a job needs responses.
type Urgency string

const (
	UrgencyEmergency   Urgency = "emergency"
	UrgencyWithinWeek  Urgency = "within_week"
	UrgencyWithinMonth Urgency = "within_month"
	UrgencyFlexible    Urgency = "flexible"
)

// ProviderSize is the derived size category of a contractor business.
// It is recomputed from candidate attributes, never stored as authoritative.
type ProviderSize string

const (
	SizeSmallLocal    ProviderSize = "small_local"
	SizeMidSized      ProviderSize = "mid_sized"
	SizeLargeRegional ProviderSize = "large_regional"
	SizeNational      ProviderSize = "national"
)

// sizeOrder gives the ordinal position of each size category, used for
// graduated mismatch penalties in scoring.
var sizeOrder = map[ProviderSize]int{
	SizeSmallLocal:    0,
	SizeMidSized:      1,
	SizeLargeRegional: 2,
	SizeNational:      3,
}

// SizeDistance returns how many categories apart two provider sizes are.
// Unknown sizes count as maximally distant from nothing (distance 0).
func SizeDistance(a, b ProviderSize) int {
	ai, aok := sizeOrder[a]
	bi, bok := sizeOrder[b]
	if !aok || !bok {
		return 0
	}
	if ai > bi {
		return ai - bi
	}
	return bi - ai
}

// QualityStance expresses a job's quality-vs-price preference.
type QualityStance string

const (
	QualityFirst    QualityStance = "quality_first"
	QualityBalanced QualityStance = "balanced"
	BudgetConscious QualityStance = "budget_conscious"
)

// Requirement is a special requirement a job can impose on candidates.
type Requirement string

const (
	RequireLicensed Requirement = "licensed"
	RequireInsured  Requirement = "insured"
	RequireBonded   Requirement = "bonded"
)

// Job is a posted bid card seeking multiple contractor responses.
// Identity is immutable; field changes come only from scope-change
// workflows. Jobs are archived, never deleted.
type Job struct {
	ID              uuid.UUID     `json:"id"`
	Category        string        `json:"category"`
	BudgetMin       float64       `json:"budget_min"`
	BudgetMax       float64       `json:"budget_max"`
	Urgency         Urgency       `json:"urgency"`
	PostalCode      string        `json:"postal_code"`
	Region          string        `json:"region"`
	Specialties     []string      `json:"specialties"`
	Requirements    []Requirement `json:"requirements"`
	PreferredSize   ProviderSize  `json:"preferred_size,omitempty"`
	QualityStance   QualityStance `json:"quality_stance,omitempty"`
	TargetResponses int           `json:"target_responses"`
	Deadline        time.Time     `json:"deadline"`
	CreatedAt       time.Time     `json:"created_at"`
	ArchivedAt      *time.Time    `json:"archived_at,omitempty"`
}

// BudgetMidpoint returns the midpoint of the job's budget range,
// or 0 when no budget was given.
func (j *Job) BudgetMidpoint() float64 {
	if j.BudgetMin <= 0 && j.BudgetMax <= 0 {
		return 0
	}
	return (j.BudgetMin + j.BudgetMax) / 2
}
