package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gil906/Python-solver-stepbystep/internal/domain/run"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/tracing"
	"github.com/gil906/Python-solver-stepbystep/internal/sandbox"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/export"
)

// ExecuteRun traces a program and returns the full result in one response.
// The body shape is fixed: trace, truncated, timedOut, stdout, and error
// when present. A missing or malformed body counts as empty code; only a
// present non-string "code" is rejected.
func (h *Handlers) ExecuteRun(c *gin.Context) {
	var req struct {
		Code interface{} `json:"code"`
	}
	_ = c.ShouldBindJSON(&req)

	code, ok := req.Code.(string)
	if req.Code != nil && !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid code payload",
			"trace":     []trace.Step{},
			"stdout":    "",
			"timedOut":  false,
			"truncated": false,
		})
		return
	}

	rec, cached, err := h.runs.Execute(c.Request.Context(), code)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, sandbox.ErrTimeout) {
			status = http.StatusTooManyRequests
		}
		h.logger.Warn("run rejected",
			zap.Error(err),
			zap.String("trace_id", string(tracing.GetTraceID(c.Request.Context()))),
		)
		c.JSON(status, gin.H{
			"error":     "Server is at capacity, try again shortly",
			"trace":     []trace.Step{},
			"stdout":    "",
			"timedOut":  false,
			"truncated": false,
		})
		return
	}

	// Run identity travels in headers so the body stays exactly the
	// shape visualization clients already parse.
	c.Header("X-Run-Id", rec.ID)
	if cached {
		c.Header("X-Run-Cache", "hit")
	}
	c.JSON(http.StatusOK, rec.Result)
}

// ListRuns returns recorded run summaries, newest first
func (h *Handlers) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid limit: " + raw,
			})
			return
		}
		limit = n
	}

	runs := h.runs.List(limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runs":    runs,
		"count":   len(runs),
	})
}

// GetRun returns one recorded run with its full trace
func (h *Handlers) GetRun(c *gin.Context) {
	rec, err := h.runs.Get(c.Param("id"))
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"run":     rec,
	})
}

// DeleteRun removes a recorded run
func (h *Handlers) DeleteRun(c *gin.Context) {
	runID := c.Param("id")
	if _, err := h.runs.Get(runID); err != nil {
		h.respondRunError(c, err)
		return
	}

	if err := h.runs.Delete(runID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Run deleted",
	})
}

// ExportRun downloads one run's trace as JSON, YAML, or TOML
func (h *Handlers) ExportRun(c *gin.Context) {
	rec, err := h.runs.Get(c.Param("id"))
	if err != nil {
		h.respondRunError(c, err)
		return
	}

	format, err := export.Parse(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, &rec.Result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", rec.ID, format.Ext()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetStats returns aggregate execution statistics
func (h *Handlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"runs":    h.runs.Stats(),
		"sandbox": h.pool.Stats(),
		"http":    h.metrics.GetSnapshot(),
	})
}

func (h *Handlers) respondRunError(c *gin.Context, err error) {
	if errors.Is(err, run.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Run not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
