package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/gsttally/internal/config"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRateKey(t *testing.T) {
	assert.Equal(t, "Kaynes|GST-ITEM-18", RateKey(" Kaynes ", "GST-ITEM-18 "))
}

func TestMemoryRateCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRateCache(time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	res := taxdomain.Resolution{TemplateName: "GST-18%-TEST", Rate: 18}
	c.Set(ctx, "k", res)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, res, got)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Millisecond)
	c.Set("b", 2, time.Hour)

	require.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)

	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisRateCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisRateCache(client, time.Minute, zap.NewNop())

	_, ok := c.Get(ctx, "Kaynes|A")
	assert.False(t, ok)

	res := taxdomain.Resolution{TemplateName: "GST-5", Rate: 5}
	c.Set(ctx, "Kaynes|A", res)
	c.Set(ctx, "Kaynes|B", taxdomain.Resolution{Fallback: taxdomain.FallbackNoTemplate})
	assert.True(t, mr.Exists(rateKeyPrefix+"Kaynes|A"))

	got, ok := c.Get(ctx, "Kaynes|A")
	require.True(t, ok)
	assert.Equal(t, res, got)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, "Kaynes|A")
	assert.False(t, ok)
}

func TestRedisRateCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	require.NoError(t, mr.Set("unrelated", "keep"))
	c := NewRedisRateCache(client, time.Minute, zap.NewNop())

	c.Set(ctx, "Kaynes|A", taxdomain.Resolution{Rate: 18})
	c.Set(ctx, "Kaynes|B", taxdomain.Resolution{Rate: 5})
	c.Invalidate(ctx)

	assert.False(t, mr.Exists(rateKeyPrefix+"Kaynes|A"))
	assert.False(t, mr.Exists(rateKeyPrefix+"Kaynes|B"))
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisRateCacheTreatsOutageAsMiss(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisRateCache(client, time.Minute, zap.NewNop())
	mr.Close()

	_, ok := c.Get(ctx, "Kaynes|A")
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		c.Set(ctx, "Kaynes|A", taxdomain.Resolution{Rate: 18})
		c.Invalidate(ctx)
	})
}

func TestNewRateCacheBackendSelection(t *testing.T) {
	_, client := newRedis(t)

	mem := NewRateCache(rateCacheParams{Config: config.Config{}, Log: zap.NewNop()})
	assert.IsType(t, &memoryRateCache{}, mem)

	red := NewRateCache(rateCacheParams{
		Config: config.Config{Cache: config.CacheConfig{Backend: "redis"}},
		Client: client,
		Log:    zap.NewNop(),
	})
	assert.IsType(t, &redisRateCache{}, red)

	fallback := NewRateCache(rateCacheParams{
		Config: config.Config{Cache: config.CacheConfig{Backend: "redis"}},
		Log:    zap.NewNop(),
	})
	assert.IsType(t, &memoryRateCache{}, fallback)
}
