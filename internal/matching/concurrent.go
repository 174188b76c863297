package matching

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

// MatchConcurrent behaves like Match but spreads candidates over up to
// workers goroutines. Output order and content are identical to Match.
// A non-positive workers value uses GOMAXPROCS.
func MatchConcurrent(ctx context.Context, candidates []apprenticeship.Candidate, openings []apprenticeship.Opening, policy Policy, workers int) ([]Result, error) {
	r, err := prepare(candidates, openings, policy)
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns exactly one slot.
			results[i] = r.matchAt(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
