package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/visit-pricing/pkg/config"
)

const connectTimeout = 5 * time.Second

// ClientInterface is the slice of Redis the distance cache and health checks need
type ClientInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ ClientInterface = (*Client)(nil)

// Client embeds go-redis so callers keep access to the full command set
type Client struct {
	*redis.Client
}

// NewRedisClient connects to cfg and fails fast when the server does not answer PING
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	c := &Client{Client: redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: connectTimeout,
	})}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.RedisAddr(), err)
	}
	return c, nil
}

// SetWithExpiration stores value under key for expiration
func (c *Client) SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Set(ctx, key, value, expiration).Err()
}

// GetString reads key. Use IsMiss to tell an absent key from a failure.
func (c *Client) GetString(ctx context.Context, key string) (string, error) {
	return c.Get(ctx, key).Result()
}

// Ping round-trips to the server
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// IsMiss reports whether err signals a missing key
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
