// Package cache connects to the Redis instance backing logout revocations and
// the dashboard cache.
package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/campus-records-api/pkg/config"
)

const pingTimeout = 5 * time.Second

// Options maps the Redis section of the configuration onto client options.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// NewRedis opens a client and verifies it answers PING before returning it.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
