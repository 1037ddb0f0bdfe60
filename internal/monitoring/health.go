package monitoring

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fixmarket/fixmarket/internal/cache"
	"github.com/fixmarket/fixmarket/internal/database"
	"github.com/fixmarket/fixmarket/internal/gazetteer"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	LatencyMs *int64       `json:"latency_ms,omitempty"`
}

// HealthResponse is the complete health check payload
type HealthResponse struct {
	Status     HealthStatus               `json:"status"`
	Service    string                     `json:"service"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
	Goroutines int                        `json:"goroutines"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthChecker aggregates component checks. The database is critical;
// Redis and the gazetteer only degrade the service when unavailable.
type HealthChecker struct {
	db        *database.DB
	redis     *cache.RedisService
	gazetteer *gazetteer.Gazetteer
	startedAt time.Time
}

func NewHealthChecker(db *database.DB, redis *cache.RedisService, g *gazetteer.Gazetteer) *HealthChecker {
	return &HealthChecker{
		db:        db,
		redis:     redis,
		gazetteer: g,
		startedAt: time.Now(),
	}
}

func (h *HealthChecker) checkDatabase() ComponentHealth {
	if h.db == nil {
		return ComponentHealth{Status: HealthStatusUnhealthy, Message: "not configured"}
	}

	start := time.Now()
	if err := h.db.Health(); err != nil {
		return ComponentHealth{Status: HealthStatusUnhealthy, Message: err.Error()}
	}
	latency := time.Since(start).Milliseconds()
	return ComponentHealth{Status: HealthStatusHealthy, LatencyMs: &latency}
}

func (h *HealthChecker) checkRedis() ComponentHealth {
	if h.redis == nil {
		return ComponentHealth{Status: HealthStatusDegraded, Message: "not configured"}
	}

	start := time.Now()
	if !h.redis.HealthCheck() {
		return ComponentHealth{Status: HealthStatusDegraded, Message: "ping failed"}
	}
	latency := time.Since(start).Milliseconds()
	return ComponentHealth{Status: HealthStatusHealthy, LatencyMs: &latency}
}

func (h *HealthChecker) checkGazetteer() ComponentHealth {
	// An empty gazetteer degrades autocomplete and reverse lookup but the
	// service keeps running.
	if h.gazetteer == nil || h.gazetteer.Len() == 0 {
		return ComponentHealth{Status: HealthStatusDegraded, Message: "dataset empty"}
	}
	return ComponentHealth{Status: HealthStatusHealthy}
}

// Check runs all component checks and derives the aggregate status.
func (h *HealthChecker) Check() HealthResponse {
	components := map[string]ComponentHealth{
		"database":  h.checkDatabase(),
		"redis":     h.checkRedis(),
		"gazetteer": h.checkGazetteer(),
	}

	status := HealthStatusHealthy
	if components["redis"].Status != HealthStatusHealthy ||
		components["gazetteer"].Status != HealthStatusHealthy {
		status = HealthStatusDegraded
	}
	if components["database"].Status == HealthStatusUnhealthy {
		status = HealthStatusUnhealthy
	}

	return HealthResponse{
		Status:     status,
		Service:    "fixmarket",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Components: components,
	}
}

// Handler serves the health payload. Unhealthy maps to 503 so load
// balancers can eject the instance.
func (h *HealthChecker) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := h.Check()
		status := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, response)
	}
}
