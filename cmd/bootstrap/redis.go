package bootstrap

import (
	"context"
	"log/slog"

	"storefront-core/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedisClient,
	),
)

// NewRedisClient returns nil when redis is unreachable; rate limiting then
// fails open rather than blocking startup.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Warn("redis unreachable, rate limiting disabled", "addr", cfg.Redis.Addr, "error", err)
		return nil
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client
}
