package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telegram-event-reminder/internal/config"

	"github.com/go-redis/redis/v8"
)

// Nil is returned by Get when the key does not exist.
const Nil = redis.Nil

type RedisClient interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

var _ RedisClient = (*Client)(nil)

// Client is the go-redis backed RedisClient shared by the state store,
// the rate limiter and the company cache.
type Client struct {
	cli *redis.Client
}

// NewClient connects and pings; a Redis that is down fails startup.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	opt, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return &Client{cli: c}, nil
}

// Options accepts either a redis:// (rediss://) URL or a plain host:port.
// Explicit password and db settings win over the ones in the URL.
func Options(cfg *config.RedisConfig) (*redis.Options, error) {
	var opt *redis.Options
	if strings.Contains(cfg.URL, "://") {
		o, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		opt = o
	} else {
		opt = &redis.Options{Addr: cfg.URL}
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}
	return opt, nil
}

func (c *Client) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.cli.Set(ctx, key, value, ttl).Err()
}

// Get returns Nil when key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.cli.Get(ctx, key).Result()
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.cli.Incr(ctx, key).Result()
}

func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.cli.Expire(ctx, key, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.cli.Del(ctx, keys...).Err()
}

func (c *Client) Close() error { return c.cli.Close() }
