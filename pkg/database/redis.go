package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the profile cache and the per-user rate limiter. Both sit on
// the request path and degrade gracefully, so operations fail fast instead
// of waiting on a slow server.
const (
	defaultRedisDialTimeout = 2 * time.Second
	defaultRedisOpTimeout   = 250 * time.Millisecond
)

// RedisConfig holds Redis connection configuration. Zero timeouts use the
// package defaults.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c RedisConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		// Request-path callers never retry.
		MaxRetries: -1,
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = defaultRedisDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = defaultRedisOpTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = defaultRedisOpTimeout
	}
	return opts
}

// NewRedisClient creates a Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(cfg.options())

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
