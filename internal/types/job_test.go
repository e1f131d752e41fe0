package types

import (
	"strings"
	"testing"
	"time"
)

func TestBudgetMidpoint(t *testing.T) {
	j := &Job{BudgetMin: 5000, BudgetMax: 15000}
	if mid := j.BudgetMidpoint(); mid != 10000 {
		t.Errorf("midpoint = %v, want 10000", mid)
	}
	j = &Job{}
	if mid := j.BudgetMidpoint(); mid != 0 {
		t.Errorf("midpoint with no budget = %v, want 0", mid)
	}
}

func TestCandidateSatisfies(t *testing.T) {
	yes, no := true, false
	c := &Candidate{Licensed: &yes, Insured: &no}

	if !c.Satisfies(RequireLicensed) {
		t.Error("verified license should satisfy")
	}
	if c.Satisfies(RequireInsured) {
		t.Error("known-false insurance should not satisfy")
	}
	// Unknown is not the same as non-compliant, but it cannot satisfy.
	if c.Satisfies(RequireBonded) {
		t.Error("unknown bonding should not satisfy")
	}
}

func TestHasContactChannel(t *testing.T) {
	if (&Candidate{}).HasContactChannel() {
		t.Error("empty candidate should have no channel")
	}
	if !(&Candidate{Website: "https://example.com"}).HasContactChannel() {
		t.Error("website counts as a channel")
	}
}

func validCreateRequest() CreateCampaignRequest {
	return CreateCampaignRequest{
		Job: JobInput{
			Category:        "kitchen remodel",
			BudgetMin:       5000,
			BudgetMax:       15000,
			Urgency:         UrgencyWithinWeek,
			TargetResponses: 5,
			Deadline:        time.Now().Add(72 * time.Hour),
		},
	}
}

func TestCreateCampaignRequestValidate(t *testing.T) {
	req := validCreateRequest()
	if err := req.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	req = validCreateRequest()
	req.Job.Category = ""
	if err := req.Validate(); err == nil {
		t.Error("missing category should fail validation")
	}

	req = validCreateRequest()
	req.Job.Urgency = "someday"
	if err := req.Validate(); err == nil {
		t.Error("unknown urgency should fail validation")
	}

	req = validCreateRequest()
	req.Job.BudgetMin = 20000
	err := req.Validate()
	if err == nil {
		t.Fatal("inverted budget range should fail validation")
	}
	if !strings.Contains(err.Error(), "budget_min") {
		t.Errorf("unexpected error: %v", err)
	}

	req = validCreateRequest()
	req.Job.Deadline = time.Now().Add(-time.Hour)
	if err := req.Validate(); err == nil {
		t.Error("past deadline should fail validation")
	}

	req = validCreateRequest()
	req.Job.TargetResponses = 0
	if err := req.Validate(); err == nil {
		t.Error("zero target should fail validation")
	}
}

func TestToJobAssignsIdentity(t *testing.T) {
	req := validCreateRequest()
	now := time.Now()
	j := req.Job.ToJob(now)
	if j.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a fresh job id")
	}
	if !j.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", j.CreatedAt, now)
	}
	if j.Category != req.Job.Category || j.TargetResponses != req.Job.TargetResponses {
		t.Error("job fields not carried over from input")
	}
}

func TestDemoteRequestValidate(t *testing.T) {
	req := DemoteRequest{Tier: "warm", Reason: "spam reports", Actor: "ops@example.com"}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid demote rejected: %v", err)
	}
	req.Tier = "banned"
	if err := req.Validate(); err == nil {
		t.Error("unknown tier should fail validation")
	}
}

func TestCampaignStatusTerminal(t *testing.T) {
	for _, s := range []CampaignStatus{CampaignCompleted, CampaignExpired, CampaignCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []CampaignStatus{CampaignForming, CampaignActive, CampaignOnTrack, CampaignBehind} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
