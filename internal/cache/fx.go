package cache

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/gsttally/internal/config"
	taxdomain "github.com/smallbiznis/gsttally/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewRateCache),
)

type rateCacheParams struct {
	fx.In

	Config config.Config
	Client *redis.Client `optional:"true"`
	Log    *zap.Logger
}

// NewRateCache picks the rate cache backend from configuration. The redis
// backend falls back to memory when no client is available.
func NewRateCache(p rateCacheParams) taxdomain.RateCache {
	backend := strings.ToLower(strings.TrimSpace(p.Config.Cache.Backend))
	if backend == "redis" {
		if p.Client != nil {
			return NewRedisRateCache(p.Client, p.Config.Cache.RateTTL, p.Log)
		}
		p.Log.Warn("redis rate cache requested without redis client; using memory")
	}
	return NewMemoryRateCache(p.Config.Cache.RateTTL)
}
