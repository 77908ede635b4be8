package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each Metrics owns its registry,
// so tests can build as many as they like without collisions.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram
	RunSteps    prometheus.Histogram
	RunsActive  prometheus.Gauge
	CacheHits   prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Rolled-up values for the JSON stats API
	mu   sync.RWMutex
	roll rollup
}

type rollup struct {
	totalRequests int64
	totalErrors   int64
	activeRuns    int64
	totalDuration float64
	requestCount  int64
}

// Snapshot holds current metric values for the JSON stats API
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	ActiveRuns    int64   `json:"active_runs"`
	AvgRequestMs  float64 `json:"avg_request_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracer_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracer_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracer_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracer_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Run metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracer_runs_total",
				Help: "Total number of traced runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracer_run_duration_seconds",
				Help:    "Wall-clock duration of traced runs",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 3, 5},
			},
		),
		RunSteps: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracer_run_steps",
				Help:    "Recorded steps per run",
				Buckets: []float64{1, 10, 25, 50, 100, 250, 500, 1000, 2000},
			},
		),
		RunsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracer_runs_active",
				Help: "Number of runs currently executing",
			},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tracer_cache_hits_total",
				Help: "Runs served from the recorded-trace cache",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracer_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracer_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracer_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// Handler serves this collector's registry in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.roll.totalRequests++
	m.roll.totalDuration += duration.Seconds()
	m.roll.requestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.roll.totalErrors++
	}
	m.mu.Unlock()
}

// RecordRun records a finished run
func (m *Metrics) RecordRun(outcome string, duration time.Duration, steps int) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(duration.Seconds())
	m.RunSteps.Observe(float64(steps))
}

// IncCacheHits counts a run served from the recorded-trace cache
func (m *Metrics) IncCacheHits() {
	m.CacheHits.Inc()
}

// IncRunsActive marks a run as executing
func (m *Metrics) IncRunsActive() {
	m.RunsActive.Inc()
	m.mu.Lock()
	m.roll.activeRuns++
	m.mu.Unlock()
}

// DecRunsActive marks a run as finished
func (m *Metrics) DecRunsActive() {
	m.RunsActive.Dec()
	m.mu.Lock()
	m.roll.activeRuns--
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// GetSnapshot returns current rolled-up values for the JSON stats API
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		TotalRequests: m.roll.totalRequests,
		TotalErrors:   m.roll.totalErrors,
		ActiveRuns:    m.roll.activeRuns,
		UptimeSeconds: time.Since(m.startTime).Seconds(),
	}
	if m.roll.requestCount > 0 {
		snap.AvgRequestMs = m.roll.totalDuration / float64(m.roll.requestCount) * 1000
	}
	return snap
}
