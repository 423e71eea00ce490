// Package ratelimit throttles API clients with an in-memory token
// bucket per key.
package ratelimit

import (
	"sync"
	"time"
)

// Info is the limiter state after one Allow call.
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// TokenBucket refills Capacity tokens every Period, one bucket per key.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	period   time.Duration
	now      func() time.Time

	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// Config holds the token bucket settings.
type Config struct {
	// Capacity is the burst size and the number of tokens per Period.
	Capacity int
	Period   time.Duration
	// CleanupInterval drops idle buckets; zero disables the sweeper.
	CleanupInterval time.Duration
}

// DefaultConfig allows 120 requests per minute.
func DefaultConfig() Config {
	return Config{
		Capacity:        120,
		Period:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewTokenBucket creates a limiter. Call Close to stop its sweeper.
func NewTokenBucket(config Config) *TokenBucket {
	if config.Capacity < 1 {
		config.Capacity = 1
	}
	if config.Period <= 0 {
		config.Period = time.Minute
	}
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		capacity: config.Capacity,
		period:   config.Period,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		tb.cleanup = time.NewTicker(config.CleanupInterval)
		go tb.cleanupLoop()
	}
	return tb
}

// Allow takes one token from key's bucket.
func (tb *TokenBucket) Allow(key string) Info {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, lastRefill: now}
		tb.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		refill := int(float64(tb.capacity) * elapsed.Seconds() / tb.period.Seconds())
		if refill > 0 {
			b.tokens = min(tb.capacity, b.tokens+refill)
			b.lastRefill = now
		}
	}

	info := Info{Limit: tb.capacity, ResetAt: b.lastRefill.Add(tb.period)}
	if b.tokens > 0 {
		b.tokens--
		info.Remaining = b.tokens
		info.Allowed = true
	}
	return info
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

func (tb *TokenBucket) cleanupLoop() {
	for {
		select {
		case <-tb.cleanup.C:
			tb.sweep()
		case <-tb.done:
			return
		}
	}
}

// sweep forgets buckets idle for two periods; they would be full again.
func (tb *TokenBucket) sweep() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	for key, b := range tb.buckets {
		if now.Sub(b.lastRefill) > 2*tb.period {
			delete(tb.buckets, key)
		}
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (tb *TokenBucket) Close() error {
	tb.once.Do(func() {
		close(tb.done)
		if tb.cleanup != nil {
			tb.cleanup.Stop()
		}
	})
	return nil
}
