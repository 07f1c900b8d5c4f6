// Package linker credits SDRs with the sales their meetings produced.
package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/sales"
	"github.com/javiermolinar/vendas/internal/throttle"
)

// JobName prefixes the auto-link job keys in the throttle store.
const JobName = "link"

// JobKey returns the throttle key of the auto-link job for week, such as
// "link/2025-W34". Each week is throttled on its own.
func JobKey(week bizweek.Week) string {
	return JobName + "/" + week.String()
}

// Store is the subset of sales.Repository the linker needs.
type Store interface {
	ListRecordsByWindow(ctx context.Context, start, end time.Time) ([]*sales.Record, error)
	LinkRecords(ctx context.Context, saleID, meetingID string) error
}

// Linker pairs approved sales with converted meetings of the same week.
type Linker struct {
	store  Store
	gate   *throttle.Gate
	logger *slog.Logger
}

// New creates a Linker. gate may be nil when throttled runs are not used.
func New(store Store, gate *throttle.Gate, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{store: store, gate: gate, logger: logger}
}

// Link matches every approved, uncredited sale in week with the earliest
// converted meeting held by the same salesperson that is not linked yet.
// It returns the number of links made.
func (l *Linker) Link(ctx context.Context, week bizweek.Week) (int, error) {
	records, err := l.store.ListRecordsByWindow(ctx, week.Start, week.End)
	if err != nil {
		return 0, fmt.Errorf("listing records for %s: %w", week, err)
	}

	// Records come ordered by timestamp, so each queue is earliest first.
	meetings := make(map[string][]*sales.Record)
	var pending []*sales.Record
	for _, r := range records {
		switch {
		case r.IsConvertedMeeting() && !r.IsLinked() && r.Counterpart() != "":
			holder := r.Counterpart()
			meetings[holder] = append(meetings[holder], r)
		case r.IsApprovedSale() && !r.IsLinked() && r.CounterpartID == nil:
			pending = append(pending, r)
		}
	}

	linked := 0
	for _, sale := range pending {
		for len(meetings[sale.ActorID]) > 0 {
			m := meetings[sale.ActorID][0]
			meetings[sale.ActorID] = meetings[sale.ActorID][1:]

			err := l.store.LinkRecords(ctx, sale.ID, m.ID)
			if errors.Is(err, sales.ErrAlreadyLinked) {
				l.logger.Warn("skipping record linked concurrently", "sale", sale.ID, "meeting", m.ID)
				continue
			}
			if err != nil {
				return linked, fmt.Errorf("linking sale %s: %w", sale.ID, err)
			}

			linked++
			l.logger.Info("linked sale to meeting",
				"week", week.String(),
				"sale", sale.ID,
				"meeting", m.ID,
				"sdr", m.ActorID,
				"value", sale.Value.StringFixed(2),
			)
			break
		}
	}

	l.logger.Debug("link pass finished", "week", week.String(), "candidates", len(pending), "linked", linked)
	return linked, nil
}

// LinkThrottled runs Link unless a successful run for the same week
// happened within the gate's interval. ran is false when the run was skipped.
func (l *Linker) LinkThrottled(ctx context.Context, week bizweek.Week) (ran bool, linked int, err error) {
	if l.gate == nil {
		linked, err = l.Link(ctx, week)
		return true, linked, err
	}

	ran, err = l.gate.Run(ctx, JobKey(week), func(ctx context.Context) error {
		var linkErr error
		linked, linkErr = l.Link(ctx, week)
		return linkErr
	})
	if !ran && err == nil {
		l.logger.Debug("link skipped, ran recently", "week", week.String())
	}
	return ran, linked, err
}
