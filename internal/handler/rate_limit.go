package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/jobdesk/internal/dto"
	"github.com/prperemyshlev/jobdesk/internal/service"
	"go.uber.org/zap"
)

// RateLimiter records a request and returns how many remain in the window
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(limiter RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		remaining, err := limiter.Allow(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		var limited *service.RateLimitError
		switch {
		case errors.As(err, &limited):
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))

			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: limited.Error(),
			})
			c.Abort()
			return
		case err != nil:
			// Redis being down should not take the API with it
			logger.Warn("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

// IPBasedKey extracts rate limit key from client IP. Forwarding headers count
// only when the engine's trusted proxies allow them.
func IPBasedKey(c *gin.Context) string {
	return fmt.Sprintf("ip:%s:%s", c.ClientIP(), c.FullPath())
}

// ProfileKey limits each authenticated user per route. Must run after AuthMiddleware.
func ProfileKey(c *gin.Context) string {
	userID := currentUserID(c)
	if userID == "" {
		return IPBasedKey(c)
	}
	return fmt.Sprintf("user:%s:%s", userID, c.FullPath())
}
