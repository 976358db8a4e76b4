package common

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"routegraph/dashboard/internal/logging"
)

// NewRedisClient builds the shared client used by the push transport and the
// identity storage. A failed ping is logged; the pool keeps reconnecting.
func NewRedisClient(addr, password string) *redis.Client {
	logging.Info("initializing Redis client", "addr", addr)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Error("failed to ping Redis", "addr", addr, "error", err)
		return client
	}

	logging.Info("connected to Redis", "addr", addr)
	return client
}
