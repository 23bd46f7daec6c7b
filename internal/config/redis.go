package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns a client for the lock backend, or nil when REDIS_ADDR is unset.
func NewRedis(env Env) (*redis.Client, error) {
	if env.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: env.RedisAddr, Password: env.RedisPassword})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
