package web

import (
	"sync"
	"time"
)

const (
	// sessionTTL is how long per-session state survives without a request.
	sessionTTL = 30 * time.Minute
	// sessionCap bounds each per-session cache. The session cookie is
	// client-supplied, so these caches must not grow with attacker-chosen
	// keys.
	sessionCap = 4096
)

// sessionCache holds per-session state in memory, keyed by the session
// cookie. Idle entries expire after the TTL; when the cache is full the least
// recently used entry is evicted.
type sessionCache[T any] struct {
	mu  sync.Mutex
	ttl time.Duration
	max int
	m   map[string]*sessionEntry[T]
}

type sessionEntry[T any] struct {
	value T
	seen  time.Time
}

func newSessionCache[T any](ttl time.Duration, max int) *sessionCache[T] {
	return &sessionCache[T]{
		ttl: ttl,
		max: max,
		m:   make(map[string]*sessionEntry[T]),
	}
}

// get returns the entry for key, building it on first use.
func (c *sessionCache[T]) get(key string, build func() T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if e, ok := c.m[key]; ok {
		e.seen = now
		return e.value
	}

	if len(c.m) >= c.max {
		c.evictLocked(now)
	}
	e := &sessionEntry[T]{value: build(), seen: now}
	c.m[key] = e
	return e.value
}

// evictLocked drops expired entries, then the least recently used while the
// cache is still full.
func (c *sessionCache[T]) evictLocked(now time.Time) {
	for k, e := range c.m {
		if now.Sub(e.seen) > c.ttl {
			delete(c.m, k)
		}
	}
	for len(c.m) >= c.max {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.m {
			if oldestKey == "" || e.seen.Before(oldest) {
				oldestKey, oldest = k, e.seen
			}
		}
		delete(c.m, oldestKey)
	}
}

func (c *sessionCache[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
