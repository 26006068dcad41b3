// Package cache provides Redis connection management and page-level caching.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis at the given address. A nil client is returned
// when Redis is unreachable; callers treat that as "caching disabled" rather
// than a fatal error.
func InitRedis(addr string, log *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, continuing without caching", slog.String("addr", addr), slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}

	log.Info("Connected to Redis", slog.String("addr", addr))
	return client
}
