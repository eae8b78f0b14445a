package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test Redis instance using miniredis
func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	cleanup := func() {
		client.Close()
		s.Close()
	}

	return client, cleanup
}

func TestNewRedisForecastCache(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ttl := 5 * time.Minute
	cache := NewRedisForecastCache(client, ttl)

	assert.NotNil(t, cache)
	assert.Equal(t, ttl, cache.ttl)
	assert.NotNil(t, cache.stats)
	assert.Equal(t, "forecast:", cache.prefix)
}

func TestRedisForecastCache_Key(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, time.Minute)
	assert.Equal(t, "forecast:widgets:w8-h12", cache.Key("widgets", "w8-h12"))
}

func TestRedisForecastCache_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)
	ctx := context.Background()

	payload := json.RawMessage(`{"series":"widgets","forecast":[10,10,10]}`)
	key := cache.Key("widgets", "w2-h3")
	cache.Set(ctx, key, payload)

	retrieved, found := cache.Get(ctx, key)

	assert.True(t, found)
	assert.JSONEq(t, string(payload), string(retrieved))

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestRedisForecastCache_Get_Miss(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)

	retrieved, found := cache.Get(context.Background(), cache.Key("nope", "w8"))

	assert.False(t, found)
	assert.Nil(t, retrieved)

	stats := cache.GetStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisForecastCache_Get_InvalidJSON(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)
	ctx := context.Background()

	client.Set(ctx, "forecast:broken:w8", "invalid json", 5*time.Minute)

	retrieved, found := cache.Get(ctx, "forecast:broken:w8")

	assert.False(t, found)
	assert.Nil(t, retrieved)

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisForecastCache_Get_StaleEntryIsAMiss(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)
	ctx := context.Background()

	staleEntry := ForecastCacheEntry{
		Payload:   json.RawMessage(`{"series":"widgets"}`),
		CachedAt:  time.Now().Add(-10 * time.Minute),
		ExpiresAt: time.Now().Add(-5 * time.Minute),
	}
	data, err := json.Marshal(staleEntry)
	require.NoError(t, err)
	client.Set(ctx, "forecast:widgets:w8", string(data), 5*time.Minute)

	retrieved, found := cache.Get(ctx, "forecast:widgets:w8")

	assert.False(t, found)
	assert.Nil(t, retrieved)

	// Stale entry is deleted on read
	err = client.Get(ctx, "forecast:widgets:w8").Err()
	assert.Equal(t, redis.Nil, err)
}

func TestRedisForecastCache_Invalidate(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, cache.Key("widgets", "w2-h3"), json.RawMessage(`{"a":1}`))
	cache.Set(ctx, cache.Key("widgets", "w8-h12"), json.RawMessage(`{"b":2}`))
	cache.Set(ctx, cache.Key("gadgets", "w2-h3"), json.RawMessage(`{"c":3}`))

	err := cache.Invalidate(ctx, "widgets")
	require.NoError(t, err)

	_, found := cache.Get(ctx, cache.Key("widgets", "w2-h3"))
	assert.False(t, found)
	_, found = cache.Get(ctx, cache.Key("widgets", "w8-h12"))
	assert.False(t, found)

	// Other series are untouched
	_, found = cache.Get(ctx, cache.Key("gadgets", "w2-h3"))
	assert.True(t, found)
}

func TestRedisForecastCache_Clear(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)
	ctx := context.Background()

	cache.Set(ctx, cache.Key("widgets", "w2"), json.RawMessage(`{"a":1}`))
	cache.Set(ctx, cache.Key("gadgets", "w8"), json.RawMessage(`{"b":2}`))

	err := cache.Clear(ctx)
	require.NoError(t, err)

	_, found := cache.Get(ctx, cache.Key("widgets", "w2"))
	assert.False(t, found)
	_, found = cache.Get(ctx, cache.Key("gadgets", "w8"))
	assert.False(t, found)
}

func TestRedisForecastCache_ClearEmptyIsNoError(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisForecastCache(client, 5*time.Minute)

	assert.NoError(t, cache.Clear(context.Background()))
}
