package types

import (
	"github.com/google/uuid"
)

// Candidate is a contractor lead: a prospective provider for a job,
// not necessarily a bid submitter yet.
type Candidate struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Website      string    `json:"website,omitempty"`
	Specialties  []string  `json:"specialties,omitempty"`
	Tags         []string  `json:"tags,omitempty"`

	// Verification flags. nil means unknown, which is not the same as
	// non-compliant and is never penalized.
	Licensed *bool `json:"licensed,omitempty"`
	Insured  *bool `json:"insured,omitempty"`
	Bonded   *bool `json:"bonded,omitempty"`

	// Rating is nil when the candidate has no rating at all.
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount int      `json:"rating_count"`
	YearsActive int      `json:"years_active"`

	PostalCode string `json:"postal_code,omitempty"`
	Region     string `json:"region,omitempty"`
}

// HasContactChannel reports whether the candidate can be reached at all.
func (c *Candidate) HasContactChannel() bool {
	return c.Email != "" || c.Phone != "" || c.Website != ""
}

// Satisfies reports whether a verification requirement is known to be met.
func (c *Candidate) Satisfies(r Requirement) bool {
	switch r {
	case RequireLicensed:
		return c.Licensed != nil && *c.Licensed
	case RequireInsured:
		return c.Insured != nil && *c.Insured
	case RequireBonded:
		return c.Bonded != nil && *c.Bonded
	}
	return false
}

// EngagementHistory summarizes a candidate's observed behavior across
// campaigns. It is the sole input to trust tier reclassification.
type EngagementHistory struct {
	ContactedCampaigns int `json:"contacted_campaigns"`
	// RespondedCampaigns counts distinct campaigns with at least one
	// response. Repeat responses inside one campaign do not add.
	RespondedCampaigns int `json:"responded_campaigns"`
	// ManualTier, when set, is an operator override (onboarding or an
	// explicit demotion) and takes precedence over the derived tier.
	ManualTier *TrustTier `json:"manual_tier,omitempty"`
}
