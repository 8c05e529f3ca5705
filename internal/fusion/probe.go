package fusion

import (
	"sync"
	"time"
)

type probeResult struct {
	err error
	at  time.Time
}

// probeCache remembers the last liveness check for ttl. Concurrent probes may
// race to store; the last one wins.
type probeCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	last *probeResult
}

func (c *probeCache) lookup(now time.Time) (probeResult, bool) {
	if c.ttl <= 0 {
		return probeResult{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil || now.Sub(c.last.at) >= c.ttl {
		return probeResult{}, false
	}
	return *c.last, true
}

func (c *probeCache) store(r probeResult) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.last = &r
	c.mu.Unlock()
}
