package maps

import (
	"context"
	"regexp"
	"strconv"
	"sync"
	"time"

	redisclient "github.com/richxcame/visit-pricing/pkg/redis"
	"github.com/richxcame/visit-pricing/pkg/tracing"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// CacheKey builds the distance cache key for an ordered pair of locations
func CacheKey(prefix, origin, destination string) string {
	return prefix + unsafeKeyChars.ReplaceAllString("dist_"+origin+"_"+destination, "_")
}

// DistanceCache stores meters by key with a TTL
type DistanceCache interface {
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, meters int64, ttl time.Duration) error
}

// RedisCache keeps distances in Redis as decimal text
type RedisCache struct {
	client redisclient.ClientInterface
}

// NewRedisCache wraps a Redis client
func NewRedisCache(client redisclient.ClientInterface) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached meters. A miss is (0, false, nil).
func (c *RedisCache) Get(ctx context.Context, key string) (int64, bool, error) {
	var raw string
	err := tracing.TraceRedisCommand(ctx, "maps", "GET", key, func(ctx context.Context) error {
		var err error
		raw, err = c.client.GetString(ctx, key)
		return err
	})
	if redisclient.IsMiss(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	meters, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return meters, true, nil
}

// Set stores meters as text with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, meters int64, ttl time.Duration) error {
	return tracing.TraceRedisCommand(ctx, "maps", "SET", key, func(ctx context.Context) error {
		return c.client.SetWithExpiration(ctx, key, strconv.FormatInt(meters, 10), ttl)
	})
}

type memoryEntry struct {
	meters    int64
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache used when Redis is not configured
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached meters if the entry has not expired
func (c *MemoryCache) Get(_ context.Context, key string) (int64, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return 0, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[key]; still && current == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return 0, false, nil
	}
	return entry.meters, true, nil
}

// Set stores meters until now+ttl
func (c *MemoryCache) Set(_ context.Context, key string, meters int64, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{meters: meters, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
