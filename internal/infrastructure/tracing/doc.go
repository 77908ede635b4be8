/*
Package tracing provides request tracing for debugging production issues.

# Overview

This package implements lightweight request tracing across the HTTP
surface. It follows OpenTelemetry concepts but with a minimal
implementation tailored to the system's needs.

# Features

- Trace context propagation via HTTP headers
- Span creation and management with parent-child relationships
- Automatic trace ID generation
- HTTP middleware for automatic instrumentation
- Low overhead with buffered span collection

# Usage

	// Create tracer
	tracer := tracing.New("tracer", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("key", "value")

Handlers correlate their own log lines with the active trace:

	logger.Warn("run rejected", zap.String("trace_id", string(tracing.GetTraceID(ctx))))

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

# Performance

The tracing system is designed for minimal overhead:
- Buffered span collection (1000 spans)
- Async span processing
- Spans land in the structured log, no external collector needed
*/
package tracing
