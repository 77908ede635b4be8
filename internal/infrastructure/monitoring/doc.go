/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the tracer
service, tracking HTTP requests, traced runs, WebSocket traffic, and system
metrics. Every Metrics value owns a private registry, so independent
collectors never collide.

# Features

- HTTP request metrics (latency, throughput, size)
- Run metrics (outcome counts, duration, steps per run)
- Trace cache metrics (hits, active runs)
- WebSocket connection metrics
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record run outcomes
	metrics.RecordRun("completed", elapsed, steps)
	metrics.IncCacheHits()

# Metrics Endpoint

Expose metrics via the collector's own handler:

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
