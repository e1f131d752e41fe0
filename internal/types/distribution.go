package types

import (
	"time"

	"github.com/google/uuid"
)

// Channel is a contact channel used to reach a candidate.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelForm  Channel = "form"
)

// DistributionStatus is the lifecycle state of one contact attempt.
type DistributionStatus string

const (
	StatusSent      DistributionStatus = "sent"
	StatusOpened    DistributionStatus = "opened"
	StatusResponded DistributionStatus = "responded"
	StatusDeclined  DistributionStatus = "declined"
)

// DistributionRecord is the unique record of one contact attempt for one
// (job, candidate) pair. At most one record exists per pair; the ledger
// enforces this, a second dispatch attempt is a no-op returning the
// existing record.
type DistributionRecord struct {
	JobID       uuid.UUID          `json:"job_id"`
	CandidateID uuid.UUID          `json:"candidate_id"`
	Channel     Channel            `json:"channel"`
	// Score is the candidate's score at time of send, used to order
	// follow-up candidates.
	Score          float64            `json:"score"`
	Status         DistributionStatus `json:"status"`
	SentAt         time.Time          `json:"sent_at"`
	FollowUps      int                `json:"follow_ups"`
	LastFollowUpAt *time.Time         `json:"last_follow_up_at,omitempty"`
	RespondedAt    *time.Time         `json:"responded_at,omitempty"`
}
