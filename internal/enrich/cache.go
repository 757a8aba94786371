package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mapcrown/mapcrown/internal/platform/cache"
)

// Cache stores JSON-serializable lookups for the lifetime of a session.
type Cache interface {
	// Get decodes the value for key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// MemoryCache is an in-process Cache with optional expiry.
type MemoryCache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]memoryItem
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

// NewMemoryCache creates a MemoryCache. A zero ttl never expires entries.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, items: make(map[string]memoryItem)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !it.expires.IsZero() && m.now().After(it.expires) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(it.data, dst); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	it := memoryItem{data: data}
	if m.ttl > 0 {
		it.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[key] = it
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// RedisCache is a Cache backed by Redis with a fixed TTL.
type RedisCache struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewRedisCache wraps c.
func NewRedisCache(c *cache.Cache, ttl time.Duration) *RedisCache {
	return &RedisCache{c: c, ttl: ttl}
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	err := r.c.GetJSON(ctx, key, dst)
	if errors.Is(err, cache.ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, v any) error {
	return r.c.SetJSON(ctx, key, v, r.ttl)
}
