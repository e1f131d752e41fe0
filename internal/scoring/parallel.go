package scoring

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/instabids/outreach/internal/types"
)

// maxScoreWorkers bounds the scoring fan-out. Scoring is CPU-bound and
// pure, so candidates can be scored independently.
const maxScoreWorkers = 8

// ScoreAll scores every candidate in the pool concurrently and returns
// results sorted by total descending. Ties break on candidate ID so the
// ordering is stable across runs.
func ScoreAll(ctx context.Context, candidates []types.Candidate, j *types.Job) ([]Result, error) {
	results := make([]Result, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxScoreWorkers)
	for i := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Score(&candidates[i], j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Total != results[b].Total {
			return results[a].Total > results[b].Total
		}
		return results[a].CandidateID.String() < results[b].CandidateID.String()
	})
	return results, nil
}
