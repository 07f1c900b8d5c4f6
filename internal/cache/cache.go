// Package cache keeps recently computed weekly results for a short time.
package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/sales"
)

// Defaults used when options are zero.
const (
	DefaultSize      = 256
	DefaultFreshness = 5 * time.Minute
)

// Key identifies one role's results for one business week.
type Key struct {
	Role sales.Role
	Year int
	Week int
}

// KeyFor builds the key of week for role.
func KeyFor(role sales.Role, week bizweek.Week) Key {
	return Key{Role: role, Year: week.Year, Week: week.Number}
}

// String renders the key as "sdr/2025-W34".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d-W%02d", k.Role, k.Year, k.Week)
}

// Weekly is a size-bounded cache whose entries expire after the freshness window.
type Weekly[V any] struct {
	lru *expirable.LRU[Key, V]
}

// New creates a cache holding up to size entries for freshness.
func New[V any](size int, freshness time.Duration) *Weekly[V] {
	if size <= 0 {
		size = DefaultSize
	}
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &Weekly[V]{lru: expirable.NewLRU[Key, V](size, nil, freshness)}
}

// Get returns the cached value for key if it is still fresh.
func (c *Weekly[V]) Get(key Key) (V, bool) {
	return c.lru.Get(key)
}

// Add stores value under key, resetting its freshness.
func (c *Weekly[V]) Add(key Key, value V) {
	c.lru.Add(key, value)
}

// Remove drops key. It reports whether the key was present.
func (c *Weekly[V]) Remove(key Key) bool {
	return c.lru.Remove(key)
}

// RemoveWeek drops the entries of every role for the given week.
func (c *Weekly[V]) RemoveWeek(year, week int) int {
	removed := 0
	for _, k := range c.lru.Keys() {
		if k.Year == year && k.Week == week && c.lru.Remove(k) {
			removed++
		}
	}
	return removed
}

// Purge drops every entry.
func (c *Weekly[V]) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached entries, including expired ones not yet evicted.
func (c *Weekly[V]) Len() int {
	return c.lru.Len()
}
