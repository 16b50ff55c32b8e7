// Package ratelimiter keeps one token bucket per caller key.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter manages rate limiting for multiple callers.
// Buckets idle for longer than the expiration time are dropped.
type UserRateLimiter struct {
	limiters   map[string]*entry
	mu         sync.Mutex
	limit      rate.Limit
	burst      int
	expiration time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a limiter refilling rps tokens per second up to burst.
func New(rps float64, burst int, expiration time.Duration) *UserRateLimiter {
	url := &UserRateLimiter{
		limiters:   make(map[string]*entry),
		limit:      rate.Limit(rps),
		burst:      burst,
		expiration: expiration,
		stop:       make(chan struct{}),
	}
	go url.janitor()
	return url
}

func (url *UserRateLimiter) janitor() {
	ticker := time.NewTicker(url.expiration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			url.evict(time.Now())
		case <-url.stop:
			return
		}
	}
}

func (url *UserRateLimiter) evict(now time.Time) {
	url.mu.Lock()
	defer url.mu.Unlock()
	for key, e := range url.limiters {
		if now.Sub(e.lastSeen) > url.expiration {
			delete(url.limiters, key)
		}
	}
}

// Allow checks if a request should be allowed for a given key
func (url *UserRateLimiter) Allow(key string) bool {
	url.mu.Lock()
	e, ok := url.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(url.limit, url.burst)}
		url.limiters[key] = e
	}
	e.lastSeen = time.Now()
	url.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked keys.
func (url *UserRateLimiter) Len() int {
	url.mu.Lock()
	defer url.mu.Unlock()
	return len(url.limiters)
}

// Stop ends the eviction goroutine. Safe to call more than once.
func (url *UserRateLimiter) Stop() {
	url.stopOnce.Do(func() { close(url.stop) })
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }
func Rps1000() *UserRateLimiter      { return New(1000, 1000, time.Hour) }

// Writes allows a short burst of posts and then one every few seconds.
func Writes() *UserRateLimiter { return New(1.0/3, 5, time.Hour) }
