package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ForecastCacheEntry wraps a cached response payload with metadata
type ForecastCacheEntry struct {
	Payload   json.RawMessage `json:"payload"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ForecastCacheStats tracks cache performance metrics
type ForecastCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisForecastCache caches computed forecast and evaluation responses in
// Redis, keyed by series slug and parameter fingerprint.
type RedisForecastCache struct {
	redis  redis.Cmdable
	ttl    time.Duration
	stats  *ForecastCacheStats
	prefix string
}

// NewRedisForecastCache creates a new Redis-based forecast cache
func NewRedisForecastCache(client redis.Cmdable, ttl time.Duration) *RedisForecastCache {
	return &RedisForecastCache{
		redis:  client,
		ttl:    ttl,
		stats:  &ForecastCacheStats{},
		prefix: "forecast:",
	}
}

// Key builds the cache key for one series and parameter fingerprint.
func (c *RedisForecastCache) Key(slug, fingerprint string) string {
	return c.prefix + slug + ":" + fingerprint
}

// Get retrieves a cached payload. A stale entry counts as a miss.
func (c *RedisForecastCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	data, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		// Cache miss
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}
	if err != nil {
		log.Printf("Redis error getting forecast %s: %v", key, err)
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	var entry ForecastCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		log.Printf("Error deserializing cached forecast %s: %v", key, err)
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	// Forecasts recompute cheaply, so a stale entry is dropped rather than
	// served past its expiry.
	if time.Now().After(entry.ExpiresAt) {
		if err := c.redis.Del(ctx, key).Err(); err != nil {
			log.Printf("Redis error deleting stale forecast %s: %v", key, err)
		}
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()

	return entry.Payload, true
}

// Set stores a payload under key with the configured TTL
func (c *RedisForecastCache) Set(ctx context.Context, key string, payload json.RawMessage) {
	now := time.Now()
	entry := ForecastCacheEntry{
		Payload:   payload,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Error serializing forecast %s: %v", key, err)
		return
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("Redis error setting forecast %s: %v", key, err)
		return
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
}

// Invalidate removes all cached entries for one series. Called after new
// observations land so readers never see a forecast computed from old data.
func (c *RedisForecastCache) Invalidate(ctx context.Context, slug string) error {
	return c.deletePattern(ctx, c.prefix+slug+":*")
}

// Clear removes all cached forecast entries
func (c *RedisForecastCache) Clear(ctx context.Context) error {
	return c.deletePattern(ctx, c.prefix+"*")
}

func (c *RedisForecastCache) deletePattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}

	log.Printf("Cleared %d forecast cache entries", len(keys))
	return nil
}

// GetStats returns current cache statistics
func (c *RedisForecastCache) GetStats() ForecastCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return ForecastCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

// LogStats logs current cache performance statistics
func (c *RedisForecastCache) LogStats() {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}

	log.Printf("Forecast Cache Stats - Hits: %d, Misses: %d, Sets: %d, Hit Rate: %.2f%%",
		stats.Hits, stats.Misses, stats.Sets, hitRate)
}
