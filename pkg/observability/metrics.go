package observability

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/prperemyshlev/jobdesk"

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// Counter is a named int64 counter on the global meter provider. It degrades
// to a no-op instrument when creation fails.
type Counter struct {
	inner metric.Int64Counter
}

// NewCounter creates a counter on the global meter
func NewCounter(name, description string) *Counter {
	c, err := otel.Meter(meterName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return &Counter{inner: noop.Int64Counter{}}
	}
	return &Counter{inner: c}
}

// Add increments the counter by n with string attributes given as key/value pairs
func (c *Counter) Add(ctx context.Context, n int64, kv ...string) {
	if n == 0 {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = append(attrs, attribute.String(kv[i], kv[i+1]))
	}
	c.inner.Add(ctx, n, metric.WithAttributes(attrs...))
}
