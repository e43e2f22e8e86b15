package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/jobdesk/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimitError is returned by Allow when the window is full
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, try again in %v", e.RetryAfter.Round(time.Second))
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}

// Allow records a request for key using a sliding window log. It returns the
// number of requests still allowed in the window, or a *RateLimitError.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	now := r.now()
	redisKey := rateLimitKey(key)

	count, err := r.trim(ctx, redisKey, now, window)
	if err != nil {
		return 0, err
	}

	if count >= int64(limit) {
		retryAfter := window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestAt := time.UnixMilli(int64(oldest[0].Score))
			retryAfter = window - now.Sub(oldestAt)
		}
		return 0, &RateLimitError{RetryAfter: retryAfter}
	}

	pipe := r.redis.Client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.New().String(),
	})
	pipe.Expire(ctx, redisKey, window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to record request: %w", err)
	}

	return limit - int(count) - 1, nil
}

// trim drops entries older than the window and counts the rest
func (r *RateLimiter) trim(ctx context.Context, redisKey string, now time.Time, window time.Duration) (int64, error) {
	windowStart := now.Add(-window).UnixMilli()

	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart)).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return count, nil
}
