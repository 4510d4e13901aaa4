package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"go.uber.org/zap"
)

const (
	defaultRateTTL = 10 * time.Minute
	rateKeyPrefix  = "gsttally:rate:"
)

type memoryRateCache struct {
	entries Cache[string, taxdomain.Resolution]
	ttl     time.Duration
}

// NewMemoryRateCache caches rate resolutions in process.
func NewMemoryRateCache(ttl time.Duration) taxdomain.RateCache {
	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	return &memoryRateCache{
		entries: NewTTLCache[string, taxdomain.Resolution](),
		ttl:     ttl,
	}
}

func (c *memoryRateCache) Get(_ context.Context, key string) (taxdomain.Resolution, bool) {
	return c.entries.Get(key)
}

func (c *memoryRateCache) Set(_ context.Context, key string, res taxdomain.Resolution) {
	c.entries.Set(key, res, c.ttl)
}

func (c *memoryRateCache) Invalidate(context.Context) {
	c.entries.Purge()
}

type redisRateCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisRateCache shares rate resolutions across replicas. Redis failures
// behave as cache misses.
func NewRedisRateCache(client *redis.Client, ttl time.Duration, log *zap.Logger) taxdomain.RateCache {
	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &redisRateCache{client: client, ttl: ttl, log: log.Named("cache.rate")}
}

func (c *redisRateCache) Get(ctx context.Context, key string) (taxdomain.Resolution, bool) {
	raw, err := c.client.Get(ctx, rateKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("rate cache get failed", zap.String("key", key), zap.Error(err))
		}
		return taxdomain.Resolution{}, false
	}
	var res taxdomain.Resolution
	if err := json.Unmarshal(raw, &res); err != nil {
		return taxdomain.Resolution{}, false
	}
	return res, true
}

func (c *redisRateCache) Set(ctx context.Context, key string, res taxdomain.Resolution) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, rateKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("rate cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisRateCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, rateKeyPrefix+"*", 100).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("rate cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("rate cache invalidate failed", zap.Error(err))
	}
}

// RateKey builds the cache key for an item resolved under a company.
func RateKey(company, itemCode string) string {
	return strings.TrimSpace(company) + "|" + strings.TrimSpace(itemCode)
}
