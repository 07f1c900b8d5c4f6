// Package throttle limits how often a named job may run.
package throttle

import (
	"context"
	"fmt"
	"time"
)

// Store persists the last successful run of each job.
type Store interface {
	// LastRun returns the last run time of job, or the zero time if it never ran.
	LastRun(ctx context.Context, job string) (time.Time, error)

	// SetLastRun records t as the last run time of job.
	SetLastRun(ctx context.Context, job string, t time.Time) error
}

// Gate runs a job only when its minimum interval has elapsed.
type Gate struct {
	store    Store
	interval time.Duration
	now      func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate creates a gate enforcing interval between runs.
func NewGate(store Store, interval time.Duration, opts ...Option) *Gate {
	g := &Gate{store: store, interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Due reports whether job may run now.
func (g *Gate) Due(ctx context.Context, job string) (bool, error) {
	last, err := g.store.LastRun(ctx, job)
	if err != nil {
		return false, fmt.Errorf("reading last run of %s: %w", job, err)
	}
	return last.IsZero() || g.now().Sub(last) >= g.interval, nil
}

// Run calls fn if job is due. The run is recorded only when fn succeeds.
// It returns false without error when the job was skipped.
func (g *Gate) Run(ctx context.Context, job string, fn func(ctx context.Context) error) (bool, error) {
	due, err := g.Due(ctx, job)
	if err != nil || !due {
		return false, err
	}

	started := g.now()
	if err := fn(ctx); err != nil {
		return true, err
	}
	if err := g.store.SetLastRun(ctx, job, started); err != nil {
		return true, fmt.Errorf("recording run of %s: %w", job, err)
	}
	return true, nil
}
