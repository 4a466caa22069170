package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Client wraps the Redis client with logging and common operations. It is a
// startup dependency: Start verifies the connection, Stop closes it.
type Client struct {
	rdb    *redis.Client
	addr   string
	logger ectologger.Logger
}

// NewClient creates a new Redis client. No connection is made until Start.
func NewClient(cfg Config, logger ectologger.Logger) *Client {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{
		rdb:    rdb,
		addr:   addr,
		logger: logger,
	}
}

func (c *Client) GetName() string {
	return "redis"
}

func (c *Client) DependsOn() []string {
	return nil
}

func (c *Client) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", c.addr, err)
	}

	c.logger.Infof("Connected to Redis at %s", c.addr)
	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get retrieves a value by key
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Set sets a value with optional expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del deletes one or more keys
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists checks if a key exists
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, key).Result()
	return result > 0, err
}

// IsNil reports whether err is the redis "key does not exist" reply.
func IsNil(err error) bool {
	return err == redis.Nil
}
