// Package workpool runs a batch of independent work items with a hard
// cap on in-flight goroutines. A freed slot is handed to the next
// pending item immediately; there is no fixed batching and no idle slot
// while work remains.
package workpool

import (
	"context"
	"sync"
)

// Run executes fn for every item, at most limit at a time. Results are
// returned in item order; a per-item error lands in the matching slot and
// never aborts the batch. A limit below one is treated as one. Run stops
// submitting new items once ctx is cancelled, but lets in-flight items
// finish.
func Run[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, []error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	slots := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, item := range items {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		slots <- struct{}{}
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-slots }()
			results[i], errs[i] = fn(ctx, item)
		}(i, item)
	}
	wg.Wait()

	return results, errs
}
