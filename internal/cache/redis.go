package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/event-portal/internal/application"
)

const rateLimitPrefix = "ratelimit:"

// redisClient is the subset of *redis.Client used here.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore implements application.ReportCache and the rate limiter on Redis.
type RedisStore struct {
	client redisClient
	limit  int
	window time.Duration
}

var _ application.ReportCache = (*RedisStore)(nil)

// NewRedisClient parses url and returns a connected client.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps client. limit requests are allowed per window and key.
func NewRedisStore(client redisClient, limit int, window time.Duration) *RedisStore {
	limit, window = normalizeLimit(limit, window)
	return &RedisStore{client: client, limit: limit, window: window}
}

// Get returns the cached payload for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores payload under key for ttl.
func (s *RedisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Allow counts one request for key and returns *application.RateLimitError
// once the window budget is spent. A counter found without an expiry gets
// one, so a failed EXPIRE on the first request cannot pin the key forever.
func (s *RedisStore) Allow(ctx context.Context, key string) error {
	redisKey := rateLimitPrefix + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("cache: increment %s: %w", redisKey, err)
	}

	ttl := time.Duration(-1)
	if count > 1 {
		if ttl, err = s.client.TTL(ctx, redisKey).Result(); err != nil {
			return fmt.Errorf("cache: ttl %s: %w", redisKey, err)
		}
	}
	if ttl < 0 {
		if err := s.client.Expire(ctx, redisKey, s.window).Err(); err != nil {
			return fmt.Errorf("cache: expire %s: %w", redisKey, err)
		}
		ttl = s.window
	}

	if count <= int64(s.limit) {
		return nil
	}
	return &application.RateLimitError{RetryAfter: ttl}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func normalizeLimit(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = 20
	}
	if window <= 0 {
		window = time.Minute
	}
	return limit, window
}
