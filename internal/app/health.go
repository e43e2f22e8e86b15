package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type dependency struct {
	name  string
	check func(ctx context.Context) error
}

// HealthChecker pings storage and reports the applied schema version
type HealthChecker struct {
	deps   []dependency
	schema func(ctx context.Context) (uint, bool, error)
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		deps: []dependency{
			{name: "postgres", check: infra.Postgres().Ping},
			{name: "redis", check: infra.Redis().Ping},
		},
		schema: infra.Postgres().SchemaVersion,
	}
}

type healthReport struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	SchemaVersion *uint             `json:"schema_version,omitempty"`
}

type checkResult struct {
	name string
	err  error
}

func (h *HealthChecker) check(ctx context.Context) healthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	results := make(chan checkResult, len(h.deps))
	for _, dep := range h.deps {
		go func(dep dependency) {
			results <- checkResult{name: dep.name, err: dep.check(ctx)}
		}(dep)
	}

	report := healthReport{Status: "pass", Checks: make(map[string]string, len(h.deps)+1)}
	for range h.deps {
		r := <-results
		report.record(r.name, r.err)
	}

	version, dirty, err := h.schema(ctx)
	if err == nil && dirty {
		err = fmt.Errorf("migration %d is dirty", version)
	}
	if err == nil {
		report.SchemaVersion = &version
	}
	report.record("schema", err)

	return report
}

func (r *healthReport) record(name string, err error) {
	if err != nil {
		r.Status = "fail"
		r.Checks[name] = err.Error()
		return
	}
	r.Checks[name] = "pass"
}

func (h *HealthChecker) Handler(c *gin.Context) {
	report := h.check(c.Request.Context())
	if report.Status != "pass" {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}

	c.JSON(http.StatusOK, report)
}
