package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Collect calls fn for every item with at most limit calls in flight and
// returns the results in the order of items, regardless of completion order.
func Collect[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			out[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
