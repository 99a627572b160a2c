package database

import (
	"context"
	"fmt"
	"net"

	"event-admission/config"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and pings a Redis client. Redis only backs the stats
// cache, so callers may treat a failure here as non-fatal.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
