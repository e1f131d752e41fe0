// Package repo defines the candidate repository contract and an
// in-memory implementation used in tests and single-node runs.
package repo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/instabids/outreach/internal/types"
)

// Filter narrows a candidate pool query.
type Filter struct {
	Specialty string
	Region    string
	TierIn    []types.TrustTier
	Limit     int
}

// Source returns filtered candidate pools ordered by quality proxy
// (rating, then rating count) descending.
type Source interface {
	Find(ctx context.Context, f Filter) ([]types.Candidate, error)
}

// Memory is an in-memory candidate source.
type Memory struct {
	mu         sync.RWMutex
	candidates []types.Candidate
	tiers      func(c *types.Candidate) types.TrustTier
}

// NewMemory builds an in-memory source. tierOf resolves each candidate's
// trust tier for tier filtering; a nil func treats everyone as cold.
func NewMemory(tierOf func(c *types.Candidate) types.TrustTier) *Memory {
	if tierOf == nil {
		tierOf = func(*types.Candidate) types.TrustTier { return types.TierCold }
	}
	return &Memory{tiers: tierOf}
}

// Add registers candidates with the source.
func (m *Memory) Add(candidates ...types.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, candidates...)
}

// Find returns candidates matching the filter, best-rated first.
func (m *Memory) Find(_ context.Context, f Filter) ([]types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tierSet := make(map[types.TrustTier]struct{}, len(f.TierIn))
	for _, t := range f.TierIn {
		tierSet[t] = struct{}{}
	}

	out := make([]types.Candidate, 0)
	for i := range m.candidates {
		c := m.candidates[i]
		if f.Region != "" && !strings.EqualFold(c.Region, f.Region) {
			continue
		}
		if f.Specialty != "" && !hasSpecialty(&c, f.Specialty) {
			continue
		}
		if len(tierSet) > 0 {
			if _, ok := tierSet[m.tiers(&c)]; !ok {
				continue
			}
		}
		out = append(out, c)
	}

	sort.Slice(out, func(a, b int) bool {
		ra, rb := ratingOf(&out[a]), ratingOf(&out[b])
		if ra != rb {
			return ra > rb
		}
		if out[a].RatingCount != out[b].RatingCount {
			return out[a].RatingCount > out[b].RatingCount
		}
		return out[a].ID.String() < out[b].ID.String()
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func hasSpecialty(c *types.Candidate, specialty string) bool {
	for _, s := range c.Specialties {
		if strings.EqualFold(s, specialty) {
			return true
		}
	}
	for _, t := range c.Tags {
		if strings.EqualFold(t, specialty) {
			return true
		}
	}
	return false
}

func ratingOf(c *types.Candidate) float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}
