package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryCache keeps entries in process. Expired entries are dropped on
// read and by a background sweep.
type MemoryCache struct {
	data   sync.Map
	config CacheConfig
	cancel context.CancelFunc
	now    func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryCache creates a memory cache with the default configuration.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultCacheConfig())
}

// NewMemoryCacheWithConfig creates a memory cache and starts its sweeper.
// Call Close to stop it.
func NewMemoryCacheWithConfig(config CacheConfig) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{
		config: config,
		cancel: cancel,
		now:    time.Now,
	}
	go mc.sweep(ctx, time.Minute)
	return mc
}

// Get returns the stored value for key.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := m.config.Prefix + key
	v, ok := m.data.Load(full)
	if !ok {
		return nil, &MissError{Key: key}
	}
	entry := v.(memoryEntry)
	if entry.expired(m.now()) {
		m.data.Delete(full)
		return nil, &MissError{Key: key}
	}
	return entry.value, nil
}

// Set stores a copy of value.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.data.Store(m.config.Prefix+key, entry)
	return nil
}

// Delete removes key.
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.config.Prefix + key)
	return nil
}

// Clear removes every entry under the prefix.
func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), m.config.Prefix) {
			m.data.Delete(k)
		}
		return true
	})
	return nil
}

// Len counts live entries.
func (m *MemoryCache) Len() int {
	now := m.now()
	n := 0
	m.data.Range(func(_, v any) bool {
		if !v.(memoryEntry).expired(now) {
			n++
		}
		return true
	})
	return n
}

// Close stops the sweeper.
func (m *MemoryCache) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return nil
}

func (m *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.purge()
		}
	}
}

func (m *MemoryCache) purge() {
	now := m.now()
	m.data.Range(func(k, v any) bool {
		if v.(memoryEntry).expired(now) {
			m.data.Delete(k)
		}
		return true
	})
}
