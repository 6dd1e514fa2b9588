package database

import (
	"context"
	"log/slog"
	"time"

	"rbac/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redis when an address is configured. It returns nil when redis is
// not configured or unreachable; callers treat nil as "rate limiting disabled".
func NewRedisClient(cfg config.RedisConfig, log *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info("redis not configured; rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable; rate limiting disabled", slog.String("addr", cfg.Addr), slog.Any("error", err))
		_ = client.Close()
		return nil
	}
	return client
}
