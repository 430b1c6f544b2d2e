package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome of one layout in a batch.
type BatchItem struct {
	Name   string
	Result *Result
	Err    error
}

// Batch runs Execute for every job with at most concurrency jobs in flight.
// Items are returned in job order.
//
// A failing job does not stop the others; its error is recorded in its
// item. The returned error is non-nil only when ctx is cancelled, in which
// case jobs that had not started carry the context error.
func (r *Runner) Batch(ctx context.Context, jobs []Options, concurrency int) ([]BatchItem, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	items := make([]BatchItem, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		items[i].Name = job.Name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result, items[i].Err = r.Execute(gctx, job)
			return nil
		})
	}

	_ = g.Wait()
	return items, ctx.Err()
}

// Failed returns the items that carry an error.
func Failed(items []BatchItem) []BatchItem {
	var out []BatchItem
	for _, it := range items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}
