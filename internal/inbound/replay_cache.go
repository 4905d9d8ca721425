package inbound

import (
	"sync"
	"time"
)

// ReplayCache remembers envelope ids for a retention window so a
// resubmitted message can be rejected. Insert-if-absent runs under a
// single lock; eviction of expired ids is amortized over inserts
// instead of running on a background goroutine.
type ReplayCache struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
	inserts   uint64
}

// NewReplayCache creates a cache with the given retention. Retentions
// below the protocol minimum of 10 minutes are raised to it.
func NewReplayCache(retention time.Duration) *ReplayCache {
	if retention < 10*time.Minute {
		retention = 10 * time.Minute
	}
	return &ReplayCache{
		seen:      make(map[string]time.Time),
		retention: retention,
	}
}

// Remember records id at now and reports whether it was new. A false
// return means the id was already seen within the retention window.
func (c *ReplayCache) Remember(id string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if at, ok := c.seen[id]; ok && now.Sub(at) < c.retention {
		return false
	}
	c.seen[id] = now

	c.inserts++
	if c.inserts%512 == 0 {
		cutoff := now.Add(-c.retention)
		for k, at := range c.seen {
			if at.Before(cutoff) {
				delete(c.seen, k)
			}
		}
	}
	return true
}

// Len reports the number of tracked ids, expired entries included
// until the next eviction sweep.
func (c *ReplayCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
