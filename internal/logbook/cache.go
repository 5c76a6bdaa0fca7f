package logbook

import (
	"sync"
	"time"
)

// snapshotCache bounds remote call volume under repeated UI refreshes.
// Entries older than the TTL are treated as absent; there is no background
// refresh. Invalidation after a successful append makes the writer's own
// entry visible without waiting for expiry.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[int]cachedSnapshot
}

type cachedSnapshot struct {
	snapshot  Snapshot
	fetchedAt time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[int]cachedSnapshot),
	}
}

func (c *snapshotCache) get(issueNumber int, now time.Time) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.entries[issueNumber]
	if !ok || now.After(cached.fetchedAt.Add(c.ttl)) {
		return Snapshot{}, false
	}
	return cached.snapshot, true
}

func (c *snapshotCache) store(issueNumber int, snapshot Snapshot, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[issueNumber] = cachedSnapshot{snapshot: snapshot, fetchedAt: fetchedAt}
}

func (c *snapshotCache) invalidate(issueNumber int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, issueNumber)
}
