package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tickerduel/stockpick_backend/config"
)

// NewRedisClient opens the shared client backing the quote cache and the
// session store, verifying connectivity with a bounded ping.
func NewRedisClient(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("redis ping failed", slog.String("addr", client.Options().Addr), slog.String("err", err.Error()))
		panic(err)
	}
	slog.Info("redis connected")

	return client
}
