package handler

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// query parameters never written to the access log
var redactedParams = []string{"code", "state"}

// LoggerMiddleware creates a structured logging middleware
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := redactQuery(c.Request.URL.RawQuery)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("size", c.Writer.Size()),
		}
		if userID := currentUserID(c); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		logger.Info("HTTP request", fields...)
	}
}

func redactQuery(raw string) string {
	if raw == "" {
		return raw
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return "[unparseable]"
	}

	changed := false
	for _, p := range redactedParams {
		if values.Has(p) {
			values.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return values.Encode()
}
