package redisclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/gsttally/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

// New returns a connected client, or nil when no redis address is configured.
func New(p Params) (*redis.Client, error) {
	if !p.Config.Redis.Enabled() {
		p.Log.Info("redis disabled; using in-process cache and no document locks")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     strings.TrimSpace(p.Config.Redis.Addr),
		Password: strings.TrimSpace(p.Config.Redis.Password),
		DB:       p.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", p.Config.Redis.Addr, err)
	}

	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				p.Log.Info("closing redis client")
				return client.Close()
			},
		})
	}
	return client, nil
}
