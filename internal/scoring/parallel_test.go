package scoring

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/instabids/outreach/internal/types"
)

func TestScoreAllSortsByTotalDescending(t *testing.T) {
	j := remodelJob()
	pool := []types.Candidate{
		{ID: uuid.New(), BusinessName: "No Channel Shop"},
		*strongCandidate(),
		{ID: uuid.New(), BusinessName: "Mid Shop", Email: "mid@example.com", Rating: floatPtr(4.0), RatingCount: 10},
	}

	results, err := ScoreAll(context.Background(), pool, j)
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if len(results) != len(pool) {
		t.Fatalf("got %d results, want %d", len(results), len(pool))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Total > results[i-1].Total {
			t.Errorf("results out of order at %d: %v after %v", i, results[i].Total, results[i-1].Total)
		}
	}
}

func TestScoreAllMatchesSequentialScore(t *testing.T) {
	j := remodelJob()
	pool := make([]types.Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		c := strongCandidate()
		c.RatingCount = i * 10
		pool = append(pool, *c)
	}

	results, err := ScoreAll(context.Background(), pool, j)
	if err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}

	byID := make(map[uuid.UUID]Result, len(results))
	for _, r := range results {
		byID[r.CandidateID] = r
	}
	for i := range pool {
		want := Score(&pool[i], j)
		got := byID[pool[i].ID]
		if got.Total != want.Total {
			t.Errorf("candidate %s: parallel total %v != sequential %v", pool[i].ID, got.Total, want.Total)
		}
	}
}

func TestScoreAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := []types.Candidate{*strongCandidate()}
	if _, err := ScoreAll(ctx, pool, remodelJob()); err == nil {
		t.Error("expected error from cancelled context")
	}
}
