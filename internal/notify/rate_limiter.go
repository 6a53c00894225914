package notify

import (
	"sync"
	"time"
)

// RateLimiter spaces webhook deliveries so bursts of pipeline summaries do
// not trip the chat service's per-minute quota.
type RateLimiter struct {
	mu       sync.Mutex
	nextSend time.Time
	interval time.Duration
}

func NewRateLimiter(sendsPerSecond int) *RateLimiter {
	if sendsPerSecond <= 0 {
		sendsPerSecond = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(sendsPerSecond)}
}

// WaitTurn blocks until the caller may send.
func (r *RateLimiter) WaitTurn() {
	r.mu.Lock()
	slot := time.Now()
	if r.nextSend.After(slot) {
		slot = r.nextSend
	}
	r.nextSend = slot.Add(r.interval)
	r.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		time.Sleep(wait)
	}
}
