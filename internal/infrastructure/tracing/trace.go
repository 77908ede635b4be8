package tracing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gil906/Python-solver-stepbystep/internal/shared/id"
)

// TraceID identifies one request flow end to end.
type TraceID string

// SpanID identifies one operation inside a trace.
type SpanID string

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// Span is one timed operation in a trace.
type Span struct {
	TraceID    TraceID
	SpanID     SpanID
	ParentID   SpanID
	Name       string
	Service    string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Tags       map[string]string
	Error      error
	StatusCode int
}

// Tracer collects finished spans and writes them to the log. Collection
// is buffered and asynchronous so request paths never block on span
// processing.
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
}

// New creates a tracer logging spans for the named service.
func New(service string, logger *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		logger:  logger,
		spans:   make(chan *Span, 1000),
	}
	go t.drain()
	return t
}

// StartSpan opens a span under the trace carried by ctx, starting a new
// trace when there is none. The returned context carries the span so
// children parent themselves correctly.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}
	parentID, _ := ctx.Value(spanIDKey).(SpanID)

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.NewRequestID()),
		ParentID:  parentID,
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}

	ctx = context.WithValue(ctx, traceIDKey, traceID)
	ctx = context.WithValue(ctx, spanIDKey, span.SpanID)
	return span, ctx
}

// Finish stamps the span's end time and duration.
func (s *Span) Finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// SetTag adds a tag to the span.
func (s *Span) SetTag(key, value string) { s.Tags[key] = value }

// SetError records a failure on the span.
func (s *Span) SetError(err error) {
	s.Error = err
	s.StatusCode = 500
}

// SetStatus sets the HTTP status code.
func (s *Span) SetStatus(code int) { s.StatusCode = code }

// Submit queues a finished span. A full buffer drops the span rather
// than stalling the caller.
func (t *Tracer) Submit(span *Span) {
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

func (t *Tracer) drain() {
	for span := range t.spans {
		t.write(span)
	}
}

func (t *Tracer) write(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", span.Service),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}

	if span.Error != nil {
		fields = append(fields, zap.Error(span.Error))
		t.logger.Error("span completed with error", fields...)
		return
	}
	t.logger.Info("span completed", fields...)
}

// ExtractTraceContext reads propagated trace identity from headers.
func ExtractTraceContext(headers map[string]string) (TraceID, SpanID) {
	return TraceID(headers["X-Trace-ID"]), SpanID(headers["X-Span-ID"])
}

// GetTraceID retrieves the trace ID from context, empty when untraced.
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}
