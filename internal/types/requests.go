package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateCampaignRequest is the operator API payload to start an outreach
// campaign for a job.
type CreateCampaignRequest struct {
	Job JobInput `json:"job" validate:"required"`
}

// JobInput is the intake shape of a bid card.
type JobInput struct {
	Category        string        `json:"category" validate:"required,min=2"`
	BudgetMin       float64       `json:"budget_min" validate:"gte=0"`
	BudgetMax       float64       `json:"budget_max" validate:"gte=0"`
	Urgency         Urgency       `json:"urgency" validate:"required,oneof=emergency within_week within_month flexible"`
	PostalCode      string        `json:"postal_code,omitempty"`
	Region          string        `json:"region,omitempty"`
	Specialties     []string      `json:"specialties,omitempty"`
	Requirements    []Requirement `json:"requirements,omitempty" validate:"dive,oneof=licensed insured bonded"`
	PreferredSize   ProviderSize  `json:"preferred_size,omitempty" validate:"omitempty,oneof=small_local mid_sized large_regional national"`
	QualityStance   QualityStance `json:"quality_stance,omitempty" validate:"omitempty,oneof=quality_first balanced budget_conscious"`
	TargetResponses int           `json:"target_responses" validate:"required,gte=1"`
	Deadline        time.Time     `json:"deadline" validate:"required"`
}

// Validate validates the CreateCampaignRequest using the validator.
func (r *CreateCampaignRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Job.BudgetMax > 0 && r.Job.BudgetMin > r.Job.BudgetMax {
		return fmt.Errorf("budget_min %.2f exceeds budget_max %.2f", r.Job.BudgetMin, r.Job.BudgetMax)
	}
	if !r.Job.Deadline.After(time.Now()) {
		return fmt.Errorf("deadline must be in the future")
	}
	return nil
}

// ToJob materializes the input as a Job with a fresh identity.
func (r *JobInput) ToJob(now time.Time) *Job {
	return &Job{
		ID:              uuid.New(),
		Category:        r.Category,
		BudgetMin:       r.BudgetMin,
		BudgetMax:       r.BudgetMax,
		Urgency:         r.Urgency,
		PostalCode:      r.PostalCode,
		Region:          r.Region,
		Specialties:     r.Specialties,
		Requirements:    r.Requirements,
		PreferredSize:   r.PreferredSize,
		QualityStance:   r.QualityStance,
		TargetResponses: r.TargetResponses,
		Deadline:        r.Deadline,
		CreatedAt:       now,
	}
}

// DemoteRequest is the operator payload for an explicit manual tier
// demotion, the only permitted downward tier transition.
type DemoteRequest struct {
	Tier   string `json:"tier" validate:"required,oneof=cold warm trusted"`
	Reason string `json:"reason" validate:"required,min=3"`
	Actor  string `json:"actor" validate:"required"`
}

// Validate validates the DemoteRequest using the validator.
func (r *DemoteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
