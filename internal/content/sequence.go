package content

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequence hands out monotonically increasing item numbers. Factories
// shared by concurrent sessions draw every item ID from one Sequence.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// LocalSequence is an in-process atomic counter starting at 1.
type LocalSequence struct {
	n atomic.Int64
}

func (s *LocalSequence) Next(context.Context) (int64, error) {
	return s.n.Add(1), nil
}

// RedisSequence draws numbers from a Redis INCR key, so factories in
// several processes share one item-id space.
type RedisSequence struct {
	client *redis.Client
	key    string
}

// ParseRedisURL validates a Redis connection URL.
func ParseRedisURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// NewRedisSequence connects to Redis and pings it.
func NewRedisSequence(ctx context.Context, url, key string) (*RedisSequence, error) {
	opts, err := ParseRedisURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &RedisSequence{client: client, key: key}, nil
}

func (s *RedisSequence) Next(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", s.key, err)
	}
	return n, nil
}

// Close shuts down the Redis client.
func (s *RedisSequence) Close() error {
	return s.client.Close()
}

// HealthCheck verifies the Redis connection is alive.
func (s *RedisSequence) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// itemID formats an item identifier as <prefix>_<n>.
func itemID(prefix string, n int64) string {
	return fmt.Sprintf("%s_%d", prefix, n)
}
