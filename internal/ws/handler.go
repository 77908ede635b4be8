package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gil906/Python-solver-stepbystep/internal/domain/run"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/monitoring"
	"github.com/gil906/Python-solver-stepbystep/internal/logging"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/recorder"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// runDeadline bounds one traced run end to end, including queue time in
// the sandbox pool. The sandbox enforces its own much tighter wall clock.
const runDeadline = 30 * time.Second

// Message is an inbound client message.
type Message struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// Handler manages WebSocket connections
type Handler struct {
	runs    *run.Service
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(runs *run.Service, log *logging.Logger) *Handler {
	return &Handler{runs: runs, log: log}
}

// WithMetrics attaches the metrics collector.
func (h *Handler) WithMetrics(m *monitoring.Metrics) *Handler {
	h.metrics = m
	return h
}

// HandleConnection handles WebSocket upgrade and messages. Runs execute in
// the read loop, so every write to the connection happens on one goroutine.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	h.log.Debug("websocket connected", zap.String("conn_id", connID))

	// Get request context for propagation
	reqCtx := c.Request.Context()

	// Send welcome message
	h.send(conn, map[string]interface{}{
		"type":      "system",
		"message":   "Connected to trace service",
		"conn_id":   connID,
		"timestamp": time.Now().Unix(),
	})

	// Listen for messages
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read error", zap.String("conn_id", connID), zap.Error(err))
			}
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "run":
			h.handleRun(conn, msg, reqCtx)
		case "ping":
			h.send(conn, map[string]interface{}{"type": "pong"})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

// handleRun traces one program, streaming each step as it is recorded.
// A cached run replays its stored steps through the same message shape.
func (h *Handler) handleRun(conn *websocket.Conn, msg Message, reqCtx context.Context) {
	if msg.Code == "" {
		h.sendError(conn, "empty code")
		return
	}

	ctx, cancel := context.WithTimeout(reqCtx, runDeadline)
	defer cancel()

	h.send(conn, map[string]interface{}{
		"type":      "run_start",
		"timestamp": time.Now().Unix(),
	})

	index := 0
	sink := recorder.SinkFunc(func(st trace.Step) error {
		err := h.send(conn, map[string]interface{}{
			"type":  "step",
			"index": index,
			"step":  st,
		})
		index++
		return err
	})

	rec, cached, err := h.runs.ExecuteStream(ctx, msg.Code, sink)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}

	// Steps already went out one by one, so the result carries none.
	res := rec.Result
	res.Trace = []trace.Step{}

	h.send(conn, map[string]interface{}{
		"type":      "result",
		"run_id":    rec.ID,
		"cached":    cached,
		"result":    res,
		"timestamp": time.Now().Unix(),
	})
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	if h.metrics != nil {
		if m, ok := data.(map[string]interface{}); ok {
			if t, ok := m["type"].(string); ok {
				h.metrics.RecordWSMessage("out", t)
			}
		}
	}
	return conn.WriteJSON(data)
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) error {
	return h.send(conn, map[string]interface{}{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
