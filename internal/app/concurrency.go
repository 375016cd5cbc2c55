package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartialResult holds a result or an error for partial success patterns.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartial executes functions concurrently with bounded
// parallelism and collects every result, failures included. No function
// is canceled because a sibling failed; callers decide what a per-item
// error means. A limit <= 0 means unbounded.
//
// Example:
//
//	results := ParallelPartial(ctx, 4, pushFuncs...)
//	for _, r := range results {
//	    if r.Err != nil {
//	        logger.Warn("push failed", slog.Any("error", r.Err))
//	    }
//	}
func ParallelPartial[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, fn := range fns {
		g.Go(func() error {
			value, err := fn(ctx)
			results[i] = PartialResult[T]{Value: value, Err: err}

			// Errors are captured per item, never propagated: a failed
			// sibling must not cancel the rest of the batch.
			return nil
		})
	}

	_ = g.Wait()

	return results
}
