package linker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/logging"
	"github.com/javiermolinar/vendas/internal/sales"
	"github.com/javiermolinar/vendas/internal/throttle"
)

type fakeStore struct {
	records map[string]*sales.Record
	linkErr error
	links   int
}

func newFakeStore(records ...*sales.Record) *fakeStore {
	s := &fakeStore{records: make(map[string]*sales.Record)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeStore) ListRecordsByWindow(_ context.Context, start, end time.Time) ([]*sales.Record, error) {
	var out []*sales.Record
	for _, r := range s.records {
		if !r.OccurredAt.Before(start) && !r.OccurredAt.After(end) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *fakeStore) LinkRecords(_ context.Context, saleID, meetingID string) error {
	if s.linkErr != nil {
		return s.linkErr
	}
	sale, meeting := s.records[saleID], s.records[meetingID]
	if sale.IsLinked() || meeting.IsLinked() {
		return sales.ErrAlreadyLinked
	}
	sdr := meeting.ActorID
	sale.CounterpartID = &sdr
	sale.LinkedID = &meeting.ID
	meeting.LinkedID = &sale.ID
	meeting.Value = sale.Value
	s.links++
	return nil
}

var week = bizweek.New(time.UTC).Resolve(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC))

func converted(id, sdr, salesperson string, at time.Time) *sales.Record {
	return &sales.Record{
		ID:            id,
		Kind:          sales.KindMeeting,
		ActorID:       sdr,
		CounterpartID: &salesperson,
		Outcome:       sales.OutcomeConverted,
		Value:         decimal.Zero,
		OccurredAt:    at,
	}
}

func approved(id, salesperson, value string, at time.Time) *sales.Record {
	return &sales.Record{
		ID:         id,
		Kind:       sales.KindSale,
		ActorID:    salesperson,
		Outcome:    sales.OutcomeApproved,
		Value:      decimal.RequireFromString(value),
		OccurredAt: at,
	}
}

func TestLink_EarliestMeetingFirst(t *testing.T) {
	day := week.Start
	late := converted("m-late", "sdr-2", "sp-1", day.Add(30*time.Hour))
	early := converted("m-early", "sdr-1", "sp-1", day.Add(10*time.Hour))
	sale := approved("s-1", "sp-1", "1200", day.Add(48*time.Hour))
	store := newFakeStore(late, early, sale)

	n, err := New(store, nil, logging.Discard()).Link(context.Background(), week)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("linked %d, want 1", n)
	}
	if sale.Counterpart() != "sdr-1" {
		t.Errorf("sale credited to %q, want sdr-1", sale.Counterpart())
	}
	if !early.Value.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("meeting value = %s, want 1200", early.Value)
	}
	if late.IsLinked() {
		t.Error("later meeting must stay unlinked")
	}
}

func TestLink_Skips(t *testing.T) {
	day := week.Start
	credited := approved("s-credited", "sp-1", "50", day.Add(time.Hour))
	sdr := "sdr-9"
	credited.CounterpartID = &sdr

	pending := approved("s-pending", "sp-1", "50", day.Add(time.Hour))
	pending.Outcome = sales.OutcomePending

	otherSeller := approved("s-other", "sp-2", "50", day.Add(time.Hour))
	nextWeek := converted("m-next", "sdr-1", "sp-2", week.End.Add(time.Millisecond))
	attended := converted("m-attended", "sdr-1", "sp-1", day.Add(2*time.Hour))
	attended.Outcome = sales.OutcomeAttended

	store := newFakeStore(credited, pending, otherSeller, nextWeek, attended)

	n, err := New(store, nil, logging.Discard()).Link(context.Background(), week)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if n != 0 {
		t.Errorf("linked %d, want 0", n)
	}
}

func TestLink_EachMeetingUsedOnce(t *testing.T) {
	day := week.Start
	m := converted("m-1", "sdr-1", "sp-1", day.Add(time.Hour))
	s1 := approved("s-1", "sp-1", "10", day.Add(2*time.Hour))
	s2 := approved("s-2", "sp-1", "20", day.Add(3*time.Hour))
	store := newFakeStore(m, s1, s2)

	n, err := New(store, nil, logging.Discard()).Link(context.Background(), week)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("linked %d, want 1", n)
	}
	if s2.IsLinked() {
		t.Error("second sale must wait for another converted meeting")
	}
}

func TestLink_StoreError(t *testing.T) {
	day := week.Start
	store := newFakeStore(
		converted("m-1", "sdr-1", "sp-1", day.Add(time.Hour)),
		approved("s-1", "sp-1", "10", day.Add(2*time.Hour)),
	)
	errDown := errors.New("db down")
	store.linkErr = errDown

	_, err := New(store, nil, logging.Discard()).Link(context.Background(), week)
	if !errors.Is(err, errDown) {
		t.Errorf("got error %v, want %v", err, errDown)
	}
}

type memRuns struct {
	mu   sync.Mutex
	runs map[string]time.Time
}

func (m *memRuns) LastRun(_ context.Context, job string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[job], nil
}

func (m *memRuns) SetLastRun(_ context.Context, job string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = make(map[string]time.Time)
	}
	m.runs[job] = t
	return nil
}

func TestLinkThrottled(t *testing.T) {
	day := week.Start
	store := newFakeStore(
		converted("m-1", "sdr-1", "sp-1", day.Add(time.Hour)),
		approved("s-1", "sp-1", "10", day.Add(2*time.Hour)),
	)
	now := time.Date(2025, 8, 21, 9, 0, 0, 0, time.UTC)
	gate := throttle.NewGate(&memRuns{}, 15*time.Minute, throttle.WithClock(func() time.Time { return now }))
	l := New(store, gate, logging.Discard())

	ran, n, err := l.LinkThrottled(context.Background(), week)
	if err != nil || !ran || n != 1 {
		t.Fatalf("first run: ran=%v linked=%d err=%v", ran, n, err)
	}

	now = now.Add(5 * time.Minute)
	ran, _, err = l.LinkThrottled(context.Background(), week)
	if err != nil || ran {
		t.Errorf("second run should be throttled: ran=%v err=%v", ran, err)
	}
}

func TestLinkThrottled_PerWeek(t *testing.T) {
	next := week.Next()
	store := newFakeStore(
		converted("m-1", "sdr-1", "sp-1", week.Start.Add(time.Hour)),
		approved("s-1", "sp-1", "10", week.Start.Add(2*time.Hour)),
		converted("m-2", "sdr-1", "sp-1", next.Start.Add(time.Hour)),
		approved("s-2", "sp-1", "20", next.Start.Add(2*time.Hour)),
	)
	now := time.Date(2025, 8, 21, 9, 0, 0, 0, time.UTC)
	runs := &memRuns{}
	gate := throttle.NewGate(runs, 15*time.Minute, throttle.WithClock(func() time.Time { return now }))
	l := New(store, gate, logging.Discard())

	if ran, n, err := l.LinkThrottled(context.Background(), week); err != nil || !ran || n != 1 {
		t.Fatalf("first week: ran=%v linked=%d err=%v", ran, n, err)
	}
	now = now.Add(time.Minute)
	if ran, n, err := l.LinkThrottled(context.Background(), next); err != nil || !ran || n != 1 {
		t.Errorf("a recent run of another week should not throttle: ran=%v linked=%d err=%v", ran, n, err)
	}

	if _, ok := runs.runs[JobKey(week)]; !ok {
		t.Errorf("no run recorded under %q", JobKey(week))
	}
	if got := JobKey(week); got != "link/2025-W34" {
		t.Errorf("JobKey() = %q, want link/2025-W34", got)
	}
}
