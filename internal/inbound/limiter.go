package inbound

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SenderLimiter applies a token bucket per sender DID. It runs after
// signature verification, so the key it buckets on is authenticated.
// Idle senders are dropped once they have not been seen for idleTTL.
type SenderLimiter struct {
	mu      sync.Mutex
	byDID   map[string]*senderBucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	checks  uint64
}

type senderBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewSenderLimiter returns a limiter, or nil when rps or burst is not
// positive; a nil limiter admits everything.
func NewSenderLimiter(rps float64, burst int, idleTTL time.Duration) *SenderLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &SenderLimiter{
		byDID:   make(map[string]*senderBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
	}
}

// Allow consumes one token for the sender at now.
func (l *SenderLimiter) Allow(senderDID string, now time.Time) bool {
	if l == nil || senderDID == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byDID[senderDID]
	if !ok {
		b = &senderBucket{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.byDID[senderDID] = b
	}
	b.lastSeen = now
	allowed := b.bucket.AllowN(now, 1)

	l.checks++
	if l.checks%256 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byDID {
			if v.lastSeen.Before(cutoff) {
				delete(l.byDID, k)
			}
		}
	}
	return allowed
}
