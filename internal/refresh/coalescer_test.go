package refresh

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	fired chan string
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan string, 16)}
}

func (r *recorder) fn(key string) {
	r.mu.Lock()
	r.calls = append(r.calls, key)
	r.mu.Unlock()
	r.fired <- key
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestCoalescer_CollapsesBursts(t *testing.T) {
	rec := newRecorder()
	c := NewCoalescer(30*time.Millisecond, rec.fn)

	for i := 0; i < 5; i++ {
		c.Schedule("2025-W34")
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}

	select {
	case key := <-rec.fired:
		if key != "2025-W34" {
			t.Errorf("fired %q, want 2025-W34", key)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	time.Sleep(60 * time.Millisecond)
	if calls := rec.snapshot(); len(calls) != 1 {
		t.Errorf("got %d calls, want 1: %v", len(calls), calls)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestCoalescer_Flush(t *testing.T) {
	rec := newRecorder()
	c := NewCoalescer(time.Hour, rec.fn)

	c.Schedule("b")
	c.Schedule("a")
	c.Schedule("b")
	c.Flush()

	calls := rec.snapshot()
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Errorf("got calls %v, want [a b]", calls)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}

	c.Flush()
	if got := len(rec.snapshot()); got != 2 {
		t.Errorf("second Flush ran %d extra callbacks", got-2)
	}
}

func TestCoalescer_Stop(t *testing.T) {
	rec := newRecorder()
	c := NewCoalescer(10*time.Millisecond, rec.fn)

	c.Schedule("a")
	c.Stop()
	c.Schedule("b")

	time.Sleep(50 * time.Millisecond)
	if calls := rec.snapshot(); len(calls) != 0 {
		t.Errorf("got calls %v after Stop, want none", calls)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}
