package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-client/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	backend string
	started time.Time
}

// NewMetricsHandler constructs a metrics handler. backend is the base URL
// reported by Health.
func NewMetricsHandler(metrics *service.MetricsService, backend string) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, backend: backend, started: time.Now()}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports liveness, the backend the gateway forwards to and, when
// metrics are enabled, a counter snapshot.
func (h *MetricsHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":         "ok",
		"backend":        h.backend,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
