// Package cache holds the short-lived view of event structures and photo
// listings so browsing does not hammer the object store. Indexing runs
// invalidate their event's entries on completion.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultExpiration = 5 * time.Minute
	cleanupInterval   = 10 * time.Minute
)

type EventCache struct {
	store *gocache.Cache
}

func New() *EventCache {
	return &EventCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Key builds a namespaced cache key, e.g. Key("event", id, "photos").
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func (c *EventCache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *EventCache) Set(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// InvalidateEvent drops every entry belonging to one event and returns the
// number of entries removed.
func (c *EventCache) InvalidateEvent(eventID string) int {
	prefix := Key("event", eventID) + ":"
	removed := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			removed++
		}
	}
	return removed
}

// Flush drops everything.
func (c *EventCache) Flush() {
	c.store.Flush()
}

// Stats reports the cache size for the admin endpoint.
type Stats struct {
	Items int `json:"items"`
}

func (c *EventCache) Stats() Stats {
	return Stats{Items: c.store.ItemCount()}
}
