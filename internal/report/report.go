// Package report builds weekly and monthly performance reports per role.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/aggregate"
	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/cache"
	"github.com/javiermolinar/vendas/internal/commission"
	"github.com/javiermolinar/vendas/internal/refresh"
	"github.com/javiermolinar/vendas/internal/sales"
)

// Store is the subset of sales.Repository the reports read from.
type Store interface {
	aggregate.Fetcher
	ListActors(ctx context.Context, role sales.Role) ([]*sales.Actor, error)
}

// Row is one actor's line in a weekly report.
type Row struct {
	aggregate.WeeklyStat
	Name   string
	Payout decimal.Decimal
	Score  int
}

// WeekReport holds a role's figures for one business week.
type WeekReport struct {
	Role  sales.Role
	Week  bizweek.Week
	Rows  []Row
	Total aggregate.WeeklyStat
	Err   error // set on monthly reports when the week could not be fetched
}

// Payout returns the sum of every row's payout.
func (r WeekReport) Payout() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.Rows {
		total = total.Add(row.Payout)
	}
	return total
}

// Options configures a Service.
type Options struct {
	CacheSize   int
	Freshness   time.Duration
	Debounce    time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Service computes reports, caching weekly results until they expire or
// are invalidated.
type Service struct {
	store       Store
	cal         *bizweek.Calendar
	plan        *commission.Plan
	rules       commission.ScoreRules
	cache       *cache.Weekly[WeekReport]
	coalescer   *refresh.Coalescer
	concurrency int
	logger      *slog.Logger
}

// NewService creates a report service.
func NewService(store Store, cal *bizweek.Calendar, plan *commission.Plan, rules commission.ScoreRules, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		store:       store,
		cal:         cal,
		plan:        plan,
		rules:       rules,
		cache:       cache.New[WeekReport](opts.CacheSize, opts.Freshness),
		concurrency: opts.Concurrency,
		logger:      logger,
	}
	s.coalescer = refresh.NewCoalescer(opts.Debounce, s.evict)
	return s
}

// Week returns the report of role for the business week containing ref.
func (s *Service) Week(ctx context.Context, role sales.Role, ref time.Time) (WeekReport, error) {
	week := s.cal.Resolve(ref)
	key := cache.KeyFor(role, week)
	if r, ok := s.cache.Get(key); ok {
		s.logger.Debug("report cache hit", "key", key.String())
		return r, nil
	}
	return s.load(ctx, role, week)
}

// Refresh recomputes the report of role for the business week containing
// ref from the store, replacing any cached copy. Records written by other
// processes never invalidate this cache, so an explicit reload goes here.
func (s *Service) Refresh(ctx context.Context, role sales.Role, ref time.Time) (WeekReport, error) {
	week := s.cal.Resolve(ref)
	s.cache.Remove(cache.KeyFor(role, week))
	return s.load(ctx, role, week)
}

func (s *Service) load(ctx context.Context, role sales.Role, week bizweek.Week) (WeekReport, error) {
	roster, err := s.store.ListActors(ctx, "")
	if err != nil {
		return WeekReport{}, fmt.Errorf("listing actors: %w", err)
	}

	records, err := s.store.FetchRecordsByActorAndWindow(ctx, aggregate.OwnerIDs(role, roster), week.Start, week.End)
	if err != nil {
		return WeekReport{}, fmt.Errorf("fetching %s: %w", week, err)
	}

	stats := aggregate.Aggregate(records, week, aggregate.ForRole(role, roster))
	r := s.build(role, week, stats, roster)
	s.cache.Add(cache.KeyFor(role, week), r)
	return r, nil
}

// Month returns one report per business week overlapping the month,
// fetched concurrently. A week that fails carries its error in Err and
// does not affect the others.
func (s *Service) Month(ctx context.Context, role sales.Role, year int, month time.Month) ([]WeekReport, error) {
	roster, err := s.store.ListActors(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing actors: %w", err)
	}

	weeks := s.cal.MonthWeeks(year, month)
	results := aggregate.AggregateWeeks(ctx, s.store, aggregate.OwnerIDs(role, roster), weeks,
		aggregate.ForRole(role, roster), aggregate.BatchOpts{Concurrency: s.concurrency})

	reports := make([]WeekReport, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			s.logger.Warn("week fetch failed", "role", string(role), "week", res.Week.String(), "error", res.Err)
			reports = append(reports, WeekReport{Role: role, Week: res.Week, Err: res.Err})
			continue
		}
		r := s.build(role, res.Week, res.Stats, roster)
		s.cache.Add(cache.KeyFor(role, res.Week), r)
		reports = append(reports, r)
	}
	return reports, nil
}

// Invalidate schedules removal of every role's cached report for week.
// Repeated calls for the same week within the debounce delay collapse
// into one removal.
func (s *Service) Invalidate(week bizweek.Week) {
	s.coalescer.Schedule(weekKey(week.Year, week.Number))
}

// Pending returns the number of weeks waiting to be invalidated.
func (s *Service) Pending() int {
	return s.coalescer.Pending()
}

// Purge drops every cached report and pending invalidation.
func (s *Service) Purge() {
	s.coalescer.Flush()
	s.cache.Purge()
}

// Flush applies pending invalidations immediately.
func (s *Service) Flush() {
	s.coalescer.Flush()
}

// Close flushes pending invalidations and stops the coalescer. Later
// invalidations are ignored.
func (s *Service) Close() {
	s.coalescer.Flush()
	s.coalescer.Stop()
}

func (s *Service) evict(key string) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		s.logger.Error("bad invalidation key", "key", key, "error", err)
		return
	}
	n := s.cache.RemoveWeek(year, week)
	s.logger.Debug("invalidated cached reports", "week", key, "removed", n)
}

func weekKey(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (s *Service) build(role sales.Role, week bizweek.Week, stats map[string]aggregate.WeeklyStat, roster []*sales.Actor) WeekReport {
	names := make(map[string]string, len(roster))
	var members []string
	for _, a := range roster {
		names[a.ID] = a.Name
		if a.Role == role {
			members = append(members, a.ID)
		}
	}
	stats = aggregate.Fill(stats, week, members)

	rows := make([]Row, 0, len(stats))
	for _, st := range aggregate.Sorted(stats) {
		name, ok := names[st.ActorID]
		if !ok {
			name = st.ActorID
		}
		rows = append(rows, Row{
			WeeklyStat: st,
			Name:       name,
			Payout:     s.plan.Payout(st),
			Score:      s.rules.Score(st),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	return WeekReport{
		Role:  role,
		Week:  week,
		Rows:  rows,
		Total: aggregate.Total(stats, week),
	}
}
