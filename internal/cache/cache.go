package cache

import (
	"context"
	"sync"
	"time"
)

// Cache defines the interface for time-boxed memoization of upstream responses.
// Values are opaque JSON blobs so one cache implementation serves both the
// geocoding and forecast layers. Get returns cached data if present and not
// expired, Set stores data with TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// InMemoryCache implements Cache using a mutex-guarded map with TTL-based
// expiration. Last write wins; expired entries are removed on access. Safe for
// concurrent use by multiple dashboard sessions.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]cacheEntry
	now  func() time.Time
}

// cacheEntry stores a cached value with its expiration timestamp.
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache using the wall clock.
func NewInMemoryCache() *InMemoryCache {
	return NewInMemoryCacheWithClock(time.Now)
}

// NewInMemoryCacheWithClock creates an in-memory cache with an injectable clock.
// Tests use this to exercise expiry without sleeping.
func NewInMemoryCacheWithClock(now func() time.Time) *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]cacheEntry),
		now:  now,
	}
}

// Get retrieves the cached value for the key if present and not expired.
// Returns (value, true, nil) on cache hit, (nil, false, nil) on miss or expiration.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}

	if c.now().After(entry.expiresAt) {
		delete(c.data, key)
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores a value in the cache with the specified TTL duration.
// The entry expires after TTL elapses and is removed on next Get access.
func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
