package aggregate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/sales"
)

// DefaultConcurrency bounds parallel window fetches when no limit is set.
const DefaultConcurrency = 4

// Fetcher retrieves the records owned by actorIDs within [start, end] inclusive.
type Fetcher interface {
	FetchRecordsByActorAndWindow(ctx context.Context, actorIDs []string, start, end time.Time) ([]*sales.Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, actorIDs []string, start, end time.Time) ([]*sales.Record, error)

// FetchRecordsByActorAndWindow calls f.
func (f FetcherFunc) FetchRecordsByActorAndWindow(ctx context.Context, actorIDs []string, start, end time.Time) ([]*sales.Record, error) {
	return f(ctx, actorIDs, start, end)
}

// WindowResult is the outcome of aggregating one week. Err is set when the
// week's fetch failed; Stats is nil in that case.
type WindowResult struct {
	Week  bizweek.Week
	Stats map[string]WeeklyStat
	Err   error
}

// BatchOpts configures AggregateWeeks.
type BatchOpts struct {
	Concurrency int // maximum parallel fetches, DefaultConcurrency if <= 0
}

// AggregateWeeks fetches and aggregates each week independently, issuing
// the fetches concurrently. Results are returned in the order of weeks.
// A failed fetch only marks its own window; cancelling ctx aborts the
// fetches still in flight.
func AggregateWeeks(ctx context.Context, f Fetcher, actorIDs []string, weeks []bizweek.Week, classify Classifier, opts BatchOpts) []WindowResult {
	results := make([]WindowResult, len(weeks))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, w := range weeks {
		results[i].Week = w
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			records, err := f.FetchRecordsByActorAndWindow(ctx, actorIDs, w.Start, w.End)
			if err != nil {
				results[i].Err = fmt.Errorf("fetching %s: %w", w, err)
				return nil
			}
			results[i].Stats = Aggregate(records, w, classify)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed returns the results whose fetch failed.
func Failed(results []WindowResult) []WindowResult {
	var failed []WindowResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
