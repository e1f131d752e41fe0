// Package ledger guarantees at-most-once contact per (job, candidate)
// pair and tracks response state transitions.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

// AlreadyDistributedError reports that a distribution record already
// exists for the pair. It is an expected condition: the existing record
// rides along so callers can treat the duplicate attempt as a no-op.
type AlreadyDistributedError struct {
	JobID       uuid.UUID
	CandidateID uuid.UUID
	Record      *types.DistributionRecord
}

func (e *AlreadyDistributedError) Error() string {
	return fmt.Sprintf("candidate %s already distributed for job %s", e.CandidateID, e.JobID)
}

// IllegalTransitionError reports a backwards or undefined status
// transition. This is an invariant violation, not a recoverable state.
type IllegalTransitionError struct {
	From types.DistributionStatus
	To   types.DistributionStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal distribution transition %s -> %s", e.From, e.To)
}

// NotFoundError reports that no record exists for the pair.
type NotFoundError struct {
	JobID       uuid.UUID
	CandidateID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no distribution record for job %s candidate %s", e.JobID, e.CandidateID)
}

// CanTransition reports whether a status change moves forward.
// sent -> opened | responded | declined; opened -> responded | declined.
// responded and declined are terminal.
func CanTransition(from, to types.DistributionStatus) bool {
	switch from {
	case types.StatusSent:
		return to == types.StatusOpened || to == types.StatusResponded || to == types.StatusDeclined
	case types.StatusOpened:
		return to == types.StatusResponded || to == types.StatusDeclined
	default:
		return false
	}
}

// Ledger records contact attempts and their state transitions.
//
// RecordAttempt must be atomic with respect to pair uniqueness: two
// concurrent attempts for the same pair yield exactly one record, with
// the loser receiving AlreadyDistributedError plus the winner's record.
type Ledger interface {
	RecordAttempt(ctx context.Context, jobID, candidateID uuid.UUID, channel types.Channel, score float64) (*types.DistributionRecord, error)
	UpdateStatus(ctx context.Context, jobID, candidateID uuid.UUID, to types.DistributionStatus) (*types.DistributionRecord, error)
	MarkFollowUp(ctx context.Context, jobID, candidateID uuid.UUID) (*types.DistributionRecord, error)

	// FollowUpCandidates returns unresponsive records for the job older
	// than maxAge with fewer than maxFollowUps follow-ups, highest score
	// at send first.
	FollowUpCandidates(ctx context.Context, jobID uuid.UUID, maxAge time.Duration, maxFollowUps int) ([]types.DistributionRecord, error)

	CountByStatus(ctx context.Context, jobID uuid.UUID, status types.DistributionStatus) (int, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]types.DistributionRecord, error)
}
