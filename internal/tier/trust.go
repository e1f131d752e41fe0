package tier

import (
	"sync"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

// Reclassify derives a candidate's trust tier from engagement history.
//
// cold: never contacted. warm: contacted in at least one prior campaign
// (zero or one responses). trusted: responses across two or more distinct
// campaigns, or a manual onboarding. A manual override, when present, is
// authoritative in both directions; nothing else ever lowers a tier.
func Reclassify(h types.EngagementHistory) types.TrustTier {
	if h.ManualTier != nil {
		return *h.ManualTier
	}
	if h.RespondedCampaigns >= 2 {
		return types.TierTrusted
	}
	if h.ContactedCampaigns >= 1 {
		return types.TierWarm
	}
	return types.TierCold
}

// Tracker accumulates engagement history across campaigns and answers
// tier lookups lazily. Responses inside the same campaign only count
// once toward promotion, so a single chatty contact cannot game its way
// to trusted.
type Tracker struct {
	mu        sync.RWMutex
	contacted map[uuid.UUID]map[uuid.UUID]struct{} // candidate -> campaigns contacted
	responded map[uuid.UUID]map[uuid.UUID]struct{} // candidate -> campaigns with a response
	manual    map[uuid.UUID]types.TrustTier
}

// NewTracker returns an empty engagement tracker.
func NewTracker() *Tracker {
	return &Tracker{
		contacted: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		responded: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		manual:    make(map[uuid.UUID]types.TrustTier),
	}
}

// NoteContact records that a candidate was contacted in a campaign.
func (t *Tracker) NoteContact(campaignID, candidateID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	addToSet(t.contacted, candidateID, campaignID)
}

// NoteResponse records a response from a candidate in a campaign and
// returns the candidate's tier after the update.
func (t *Tracker) NoteResponse(campaignID, candidateID uuid.UUID) types.TrustTier {
	t.mu.Lock()
	defer t.mu.Unlock()
	addToSet(t.contacted, candidateID, campaignID)
	addToSet(t.responded, candidateID, campaignID)
	return Reclassify(t.historyLocked(candidateID))
}

// SetManual records an operator override: onboarding straight to trusted
// or an explicit demotion.
func (t *Tracker) SetManual(candidateID uuid.UUID, tier types.TrustTier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manual[candidateID] = tier
}

// ClearManual removes an operator override, reverting to derived tier.
func (t *Tracker) ClearManual(candidateID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.manual, candidateID)
}

// TierOf returns the candidate's current trust tier.
func (t *Tracker) TierOf(candidateID uuid.UUID) types.TrustTier {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Reclassify(t.historyLocked(candidateID))
}

// HistoryOf returns a snapshot of the candidate's engagement history.
func (t *Tracker) HistoryOf(candidateID uuid.UUID) types.EngagementHistory {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.historyLocked(candidateID)
}

func (t *Tracker) historyLocked(candidateID uuid.UUID) types.EngagementHistory {
	h := types.EngagementHistory{
		ContactedCampaigns: len(t.contacted[candidateID]),
		RespondedCampaigns: len(t.responded[candidateID]),
	}
	if manual, ok := t.manual[candidateID]; ok {
		m := manual
		h.ManualTier = &m
	}
	return h
}

func addToSet(m map[uuid.UUID]map[uuid.UUID]struct{}, key, member uuid.UUID) {
	set, ok := m[key]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		m[key] = set
	}
	set[member] = struct{}{}
}
