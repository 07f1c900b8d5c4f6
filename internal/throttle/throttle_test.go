package throttle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu   sync.Mutex
	runs map[string]time.Time
	err  error
}

func (s *memStore) LastRun(_ context.Context, job string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return time.Time{}, s.err
	}
	return s.runs[job], nil
}

func (s *memStore) SetLastRun(_ context.Context, job string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runs == nil {
		s.runs = make(map[string]time.Time)
	}
	s.runs[job] = t
	return nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestGate_Run(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)}
	store := &memStore{}
	gate := NewGate(store, 15*time.Minute, WithClock(clock.Now))

	calls := 0
	job := func(context.Context) error { calls++; return nil }

	ran, err := gate.Run(ctx, "link", job)
	if err != nil || !ran {
		t.Fatalf("first run: ran=%v err=%v", ran, err)
	}

	clock.now = clock.now.Add(10 * time.Minute)
	ran, err = gate.Run(ctx, "link", job)
	if err != nil || ran {
		t.Fatalf("second run should be throttled: ran=%v err=%v", ran, err)
	}

	clock.now = clock.now.Add(5 * time.Minute)
	ran, err = gate.Run(ctx, "link", job)
	if err != nil || !ran {
		t.Fatalf("third run should be due: ran=%v err=%v", ran, err)
	}

	if calls != 2 {
		t.Errorf("job ran %d times, want 2", calls)
	}
}

func TestGate_FailedRunNotRecorded(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	gate := NewGate(store, time.Hour)
	errJob := errors.New("job failed")

	ran, err := gate.Run(ctx, "link", func(context.Context) error { return errJob })
	if !ran || !errors.Is(err, errJob) {
		t.Fatalf("got ran=%v err=%v, want true, %v", ran, err, errJob)
	}

	due, err := gate.Due(ctx, "link")
	if err != nil || !due {
		t.Errorf("failed run must not throttle: due=%v err=%v", due, err)
	}
}

func TestGate_StoreError(t *testing.T) {
	errStore := errors.New("store down")
	gate := NewGate(&memStore{err: errStore}, time.Hour)

	ran, err := gate.Run(context.Background(), "link", func(context.Context) error {
		t.Error("job must not run when the store fails")
		return nil
	})
	if ran || !errors.Is(err, errStore) {
		t.Errorf("got ran=%v err=%v, want false, %v", ran, err, errStore)
	}
}

func TestGate_JobsIndependent(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(&memStore{}, time.Hour)
	noop := func(context.Context) error { return nil }

	if ran, _ := gate.Run(ctx, "a", noop); !ran {
		t.Fatal("job a should run")
	}
	if ran, _ := gate.Run(ctx, "b", noop); !ran {
		t.Error("job b must not be throttled by job a")
	}
}
