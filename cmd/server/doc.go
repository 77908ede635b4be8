// Package main is the entry point for the trace service.
//
// This application serves the step-by-step execution API: it accepts a
// program over HTTP or WebSocket, runs it inside the sandbox, and returns
// the recorded trace for visualization.
//
// Architecture:
//
//	Frontend (visualizer) → HTTP/WS API → Sandbox pool → Trace workers
//
// The server provides:
//   - REST API for one-shot traced runs
//   - WebSocket streaming of steps as they happen
//   - Recorded-run storage with export (JSON, YAML, TOML)
//   - Bundled example programs
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -data ./data/runs
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
