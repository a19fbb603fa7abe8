package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get and GetJSON when the key does not exist.
var ErrMiss = errors.New("redis: key not found")

type RedisClient struct {
	client *redis.Client
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(c *redis.Client) *RedisClient {
	return &RedisClient{client: c}
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// CheckRateLimit counts a hit against key in a fixed window. It reports
// whether the hit is allowed and, if not, how many seconds remain.
func (r *RedisClient) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	current, err := r.client.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return true, 0, err
	}

	if current >= limit {
		ttl, _ := r.client.TTL(ctx, key).Result()
		return false, int(ttl.Seconds()), nil
	}

	pipe := r.client.Pipeline()
	pipe.Incr(ctx, key)
	if current == 0 {
		pipe.Expire(ctx, key, window)
	}
	_, err = pipe.Exec(ctx)

	return true, 0, err
}

func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return v, err
}

func (r *RedisClient) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, expiration).Err()
}

func (r *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	b, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
