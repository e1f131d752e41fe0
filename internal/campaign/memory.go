package campaign

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

// MemoryStore is an in-memory campaign store for tests and single-node
// runs.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID]types.Campaign
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{campaigns: make(map[uuid.UUID]types.Campaign)}
}

// GetCampaign returns a copy of the campaign, or nil if unknown.
func (m *MemoryStore) GetCampaign(_ context.Context, id uuid.UUID) (*types.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, nil
	}
	out := c
	out.Checkpoints = append([]types.Checkpoint(nil), c.Checkpoints...)
	return &out, nil
}

// SaveCampaign stores the campaign state.
func (m *MemoryStore) SaveCampaign(_ context.Context, c *types.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *c
	stored.Checkpoints = append([]types.Checkpoint(nil), c.Checkpoints...)
	m.campaigns[c.ID] = stored
	return nil
}

// ListCampaigns returns all campaigns, optionally filtered by status.
func (m *MemoryStore) ListCampaigns(_ context.Context, status types.CampaignStatus) ([]types.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		if status != "" && c.Status != status {
			continue
		}
		c.Checkpoints = append([]types.Checkpoint(nil), c.Checkpoints...)
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].ID.String() < out[b].ID.String()
	})
	return out, nil
}
