package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig tunes key naming and expiry.
type RedisConfig struct {
	// Prefix is prepended to every key, e.g. "session:abc:".
	Prefix string
	// TTLs expires individual keys; keys without an entry never expire.
	TTLs map[string]time.Duration
}

// RedisStore persists records as plain Redis strings.
type RedisStore struct {
	client redis.Cmdable
	cfg    RedisConfig
}

// NewRedisStore wraps a go-redis client.
func NewRedisStore(client redis.Cmdable, cfg RedisConfig) *RedisStore {
	if client == nil {
		panic("persistence: redis client required")
	}
	return &RedisStore{client: client, cfg: cfg}
}

func (s *RedisStore) redisKey(key string) string {
	return s.cfg.Prefix + key
}

// Load fetches key. A missing key is ("", false, nil).
func (s *RedisStore) Load(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	v, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("persistence: redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Save writes key, applying its configured TTL.
func (s *RedisStore) Save(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Set(ctx, s.redisKey(key), value, s.cfg.TTLs[key]).Err(); err != nil {
		return fmt.Errorf("persistence: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("persistence: redis del %s: %w", key, err)
	}
	return nil
}

var _ Port = (*RedisStore)(nil)
