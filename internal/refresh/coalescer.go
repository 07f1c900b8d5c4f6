// Package refresh coalesces bursts of change notifications into one
// callback per key.
package refresh

import (
	"sort"
	"sync"
	"time"
)

// Coalescer delays a callback per key and collapses repeated schedules of
// the same key into a single call. At most one timer is pending per key.
type Coalescer struct {
	delay time.Duration
	fn    func(key string)

	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
}

type entry struct {
	timer *time.Timer
}

// NewCoalescer creates a Coalescer that calls fn delay after the last
// Schedule of a key.
func NewCoalescer(delay time.Duration, fn func(key string)) *Coalescer {
	return &Coalescer{
		delay:   delay,
		fn:      fn,
		pending: make(map[string]*entry),
	}
}

// Schedule arms (or re-arms) the timer for key.
func (c *Coalescer) Schedule(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}

	if e, ok := c.pending[key]; ok {
		e.timer.Stop()
	}
	e := &entry{}
	e.timer = time.AfterFunc(c.delay, func() { c.fire(key, e) })
	c.pending[key] = e
}

// Flush runs the callback now for every pending key, in key order, and
// empties the queue.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.pending))
	for k, e := range c.pending {
		e.timer.Stop()
		keys = append(keys, k)
	}
	clear(c.pending)
	c.mu.Unlock()

	sort.Strings(keys)
	for _, k := range keys {
		c.fn(k)
	}
}

// Pending returns the number of keys waiting for their timer.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop cancels every pending timer without running callbacks. Later
// schedules are ignored.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.pending {
		e.timer.Stop()
	}
	clear(c.pending)
	c.stopped = true
}

func (c *Coalescer) fire(key string, e *entry) {
	c.mu.Lock()
	if c.pending[key] != e {
		// Re-armed, flushed or stopped since this timer was created.
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	c.fn(key)
}
