package probe

import (
	"context"

	"golang.org/x/sync/errgroup"

	xlog "github.com/streamqa/hlscheck/internal/log"
	"github.com/streamqa/hlscheck/internal/metrics"
	"github.com/streamqa/hlscheck/internal/result"
)

// DefaultWorkers is the default width of the test worker pool.
const DefaultWorkers = 5

// RunBatch tests every target under a bounded worker pool and returns the
// results in completion order. Callers must correlate results to targets
// via the URL field, never by index. One stream's failure never aborts
// another stream's test.
func RunBatch(ctx context.Context, t *Tester, targets []Target, workers int) []*result.TestResult {
	logger := xlog.WithComponent("orchestrator")

	if workers < 1 {
		workers = DefaultWorkers
	}

	results := make(chan *result.TestResult, len(targets))

	var g errgroup.Group
	g.SetLimit(workers)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			// Each result is owned by this worker until the send below.
			results <- t.Test(ctx, target)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	out := make([]*result.TestResult, 0, len(targets))
	for res := range results {
		metrics.RecordVerdict(res.Status.String())
		logger.Info().
			Str("stream", res.URL).
			Str("verdict", res.Status.String()).
			Int("completed", len(out)+1).
			Int("total", len(targets)).
			Msg("stream completed")
		out = append(out, res)
	}
	return out
}
