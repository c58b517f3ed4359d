package valuator

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// ValueBatch prices a slice of items on a bounded worker pool. The catalog is
// read-only during valuation, so workers share it without locking. Order of
// the result is unspecified; callers rank with FilterAndRank. workers <= 0
// selects one worker per CPU.
func (v *Valuator) ValueBatch(ctx context.Context, items []domain.Item, workers int) ([]domain.ValuedItem, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*domain.ValuedItem, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if valued, ok := v.ValueItem(items[i]); ok {
				results[i] = &valued
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	priced := make([]domain.ValuedItem, 0, len(items))
	for _, r := range results {
		if r != nil {
			priced = append(priced, *r)
		}
	}

	v.logger.Debug("batch valued",
		"items", len(items),
		"priced", len(priced),
		"workers", workers)

	return priced, nil
}

// FilterAndRank drops results below the chaos threshold, sorts the remainder
// by estimated value descending, and truncates to topN. topN <= 0 means no
// truncation. The input slice is not modified.
func FilterAndRank(results []domain.ValuedItem, minValue float64, topN int) []domain.ValuedItem {
	kept := make([]domain.ValuedItem, 0, len(results))
	for _, r := range results {
		if r.EstimatedValue >= minValue {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].EstimatedValue > kept[j].EstimatedValue
	})

	if topN > 0 && len(kept) > topN {
		kept = kept[:topN]
	}
	return kept
}
