package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/pkg/database"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still carries the holder's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX and an expiry
type RedisLocker struct {
	redis *database.Redis
}

// NewRedisLocker creates a new Redis lock provider
func NewRedisLocker(redis *database.Redis) *RedisLocker {
	return &RedisLocker{redis: redis}
}

// Acquire takes the lock for key. The returned release func is safe to call
// after the lock expired.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	redisKey := "lock:" + key
	holder := uuid.New().String()

	ok, err := l.redis.Client.SetNX(ctx, redisKey, holder, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return func() {}, false, nil
	}

	release := func() {
		// The request context may already be cancelled.
		_ = releaseScript.Run(context.Background(), l.redis.Client, []string{redisKey}, holder).Err()
	}

	return release, true, nil
}

// StateNonceStore records spent OAuth state nonces in Redis
type StateNonceStore struct {
	redis *database.Redis
}

// NewStateNonceStore creates a new state nonce store
func NewStateNonceStore(redis *database.Redis) *StateNonceStore {
	return &StateNonceStore{redis: redis}
}

// Consume marks nonce as used. It reports false if it was already used.
func (s *StateNonceStore) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}

	key := fmt.Sprintf("oauth:state:%s", nonce)
	ok, err := s.redis.Client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record state nonce: %w", err)
	}

	return ok, nil
}

// RedisCache implements Cache on plain Redis strings
type RedisCache struct {
	redis *database.Redis
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(redis *database.Redis) *RedisCache {
	return &RedisCache{redis: redis}
}

// Get returns the cached value for key
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.redis.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache: %w", err)
	}
	return v, true, nil
}

// Set stores value under key for ttl
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.redis.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
