package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

type pairKey struct {
	job       uuid.UUID
	candidate uuid.UUID
}

// Memory is an in-memory Ledger. Writes are serialized under one mutex,
// which makes the check-and-insert in RecordAttempt atomic.
type Memory struct {
	mu      sync.Mutex
	records map[pairKey]*types.DistributionRecord
	now     func() time.Time
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[pairKey]*types.DistributionRecord),
		now:     time.Now,
	}
}

// WithClock overrides the ledger clock, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// RecordAttempt creates the record for the pair, or returns the existing
// record with AlreadyDistributedError if one exists.
func (m *Memory) RecordAttempt(_ context.Context, jobID, candidateID uuid.UUID, channel types.Channel, score float64) (*types.DistributionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{job: jobID, candidate: candidateID}
	if existing, ok := m.records[key]; ok {
		rec := *existing
		return &rec, &AlreadyDistributedError{JobID: jobID, CandidateID: candidateID, Record: &rec}
	}

	rec := &types.DistributionRecord{
		JobID:       jobID,
		CandidateID: candidateID,
		Channel:     channel,
		Score:       score,
		Status:      types.StatusSent,
		SentAt:      m.now(),
	}
	m.records[key] = rec
	out := *rec
	return &out, nil
}

// UpdateStatus applies a forward-only status transition.
func (m *Memory) UpdateStatus(_ context.Context, jobID, candidateID uuid.UUID, to types.DistributionStatus) (*types.DistributionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[pairKey{job: jobID, candidate: candidateID}]
	if !ok {
		return nil, &NotFoundError{JobID: jobID, CandidateID: candidateID}
	}
	if !CanTransition(rec.Status, to) {
		return nil, &IllegalTransitionError{From: rec.Status, To: to}
	}
	rec.Status = to
	if to == types.StatusResponded {
		t := m.now()
		rec.RespondedAt = &t
	}
	out := *rec
	return &out, nil
}

// MarkFollowUp increments the follow-up counter for the pair.
func (m *Memory) MarkFollowUp(_ context.Context, jobID, candidateID uuid.UUID) (*types.DistributionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[pairKey{job: jobID, candidate: candidateID}]
	if !ok {
		return nil, &NotFoundError{JobID: jobID, CandidateID: candidateID}
	}
	rec.FollowUps++
	t := m.now()
	rec.LastFollowUpAt = &t
	out := *rec
	return &out, nil
}

// FollowUpCandidates returns stale sent records below the follow-up cap,
// highest score first; equal scores surface the longest-waiting lead.
func (m *Memory) FollowUpCandidates(_ context.Context, jobID uuid.UUID, maxAge time.Duration, maxFollowUps int) ([]types.DistributionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	out := make([]types.DistributionRecord, 0)
	for key, rec := range m.records {
		if key.job != jobID {
			continue
		}
		if rec.Status != types.StatusSent {
			continue
		}
		if !rec.SentAt.Before(cutoff) {
			continue
		}
		if rec.FollowUps >= maxFollowUps {
			continue
		}
		out = append(out, *rec)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].SentAt.Before(out[b].SentAt)
	})
	return out, nil
}

// CountByStatus counts the job's records in a given status.
func (m *Memory) CountByStatus(_ context.Context, jobID uuid.UUID, status types.DistributionStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key, rec := range m.records {
		if key.job == jobID && rec.Status == status {
			n++
		}
	}
	return n, nil
}

// ListAll returns every record in the ledger, for analytics.
func (m *Memory) ListAll(_ context.Context) ([]types.DistributionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.DistributionRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].SentAt.Equal(out[b].SentAt) {
			return out[a].SentAt.Before(out[b].SentAt)
		}
		return out[a].CandidateID.String() < out[b].CandidateID.String()
	})
	return out, nil
}

// ListByJob returns all records for a job, oldest first.
func (m *Memory) ListByJob(_ context.Context, jobID uuid.UUID) ([]types.DistributionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.DistributionRecord, 0)
	for key, rec := range m.records {
		if key.job == jobID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].SentAt.Equal(out[b].SentAt) {
			return out[a].SentAt.Before(out[b].SentAt)
		}
		return out[a].CandidateID.String() < out[b].CandidateID.String()
	})
	return out, nil
}
