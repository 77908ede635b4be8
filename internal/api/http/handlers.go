package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gil906/Python-solver-stepbystep/internal/domain/catalog"
	"github.com/gil906/Python-solver-stepbystep/internal/domain/run"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/monitoring"
	"github.com/gil906/Python-solver-stepbystep/internal/logging"
	"github.com/gil906/Python-solver-stepbystep/internal/sandbox"
)

// Handlers groups the HTTP handler dependencies
type Handlers struct {
	runs    *run.Service
	catalog *catalog.Catalog
	pool    *sandbox.Pool
	metrics *monitoring.Metrics
	logger  *logging.Logger
	started time.Time
}

// NewHandlers creates the handler set
func NewHandlers(runs *run.Service, cat *catalog.Catalog, pool *sandbox.Pool, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	return &Handlers{
		runs:    runs,
		catalog: cat,
		pool:    pool,
		metrics: metrics,
		logger:  logger,
		started: time.Now(),
	}
}

// Root returns service information
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "python-tracer",
		"status":  "running",
		"endpoints": gin.H{
			"run":      "POST /api/run",
			"runs":     "GET /api/runs",
			"examples": "GET /examples",
			"stats":    "GET /api/stats",
			"stream":   "GET /stream (websocket)",
			"metrics":  "GET /metrics",
		},
	})
}

// Health returns service health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"sandbox":        h.pool.Stats(),
	})
}
