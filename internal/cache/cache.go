// Package cache holds completed pipeline outcomes keyed by fingerprint.
package cache

import (
	"log/slog"

	gocache "github.com/patrickmn/go-cache"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// Outcome is what a pipeline run produced: a value or the error it failed with.
// Both are replayed verbatim on later lookups.
type Outcome[V any] struct {
	Value V
	Err   error
}

// Cache is an unbounded, process-lifetime map from fingerprint to Outcome.
// Entries never expire; Clear is the only way to drop them. Safe for concurrent use.
type Cache[V any] struct {
	items *gocache.Cache
}

// New returns an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{items: gocache.New(gocache.NoExpiration, 0)}
}

// Get returns the outcome stored under key.
func (c *Cache[V]) Get(key string) (Outcome[V], bool) {
	raw, found := c.items.Get(key)
	if !found {
		return Outcome[V]{}, false
	}
	o, ok := raw.(Outcome[V])
	if !ok {
		slog.Error("wrong type in pipeline cache", logfields.Fingerprint(key))
		return Outcome[V]{}, false
	}
	return o, true
}

// Put stores an outcome, replacing any previous entry for key.
func (c *Cache[V]) Put(key string, o Outcome[V]) {
	c.items.Set(key, o, gocache.NoExpiration)
}

// Len reports the number of cached outcomes.
func (c *Cache[V]) Len() int {
	return c.items.ItemCount()
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.items.Flush()
}
