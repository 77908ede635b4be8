package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	api "github.com/gil906/Python-solver-stepbystep/internal/api/http"
	"github.com/gil906/Python-solver-stepbystep/internal/api/middleware"
	"github.com/gil906/Python-solver-stepbystep/internal/domain/catalog"
	"github.com/gil906/Python-solver-stepbystep/internal/domain/run"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/config"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/monitoring"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/tracing"
	"github.com/gil906/Python-solver-stepbystep/internal/logging"
	"github.com/gil906/Python-solver-stepbystep/internal/sandbox"
	"github.com/gil906/Python-solver-stepbystep/internal/ws"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	runs    *run.Service
	pool    *sandbox.Pool
	store   *run.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing tracer server",
		zap.String("port", cfg.Server.Port),
		zap.Int("pool_size", cfg.Sandbox.PoolSize),
		zap.Bool("in_process", cfg.Sandbox.InProcess),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Initialize request tracing
	tracer := tracing.New("tracer", logger.Logger)

	// Load the bundled example programs
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load example catalog: %w", err)
	}
	logger.Info("Example catalog loaded", zap.Int("examples", cat.Len()))

	// Initialize the run store
	store, err := run.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	// Build the sandbox. Subprocess workers are the default; in-process
	// execution exists for environments where spawning is not an option.
	sandboxCfg := sandbox.Config{
		MaxSteps:       cfg.Sandbox.MaxSteps,
		Timeout:        cfg.Sandbox.Timeout(),
		MaxStdoutBytes: cfg.Sandbox.MaxStdoutBytes,
		WorkerBin:      cfg.Sandbox.WorkerBin,
	}
	var runner sandbox.Runner
	if cfg.Sandbox.InProcess {
		runner = sandbox.NewEngine(sandboxCfg)
	} else {
		runner = sandbox.NewHost(sandboxCfg, logger)
	}
	pool := sandbox.NewPool(runner, cfg.Sandbox.PoolSize)

	// Run service over the pool
	runs := run.NewService(pool, store, logger).
		WithMetrics(metrics).
		WithRetention(cfg.Storage.MaxRuns)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := api.NewHandlers(runs, cat, pool, metrics, logger)
	wsHandler := ws.NewHandler(runs, logger).WithMetrics(metrics)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Execution. The per-IP limiter above still lets many addresses pile
	// onto the sandbox at once, so execution carries its own global cap.
	runLimit := middleware.GlobalRateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	if cfg.RateLimit.Enabled {
		router.POST("/api/run", runLimit, handlers.ExecuteRun)
	} else {
		router.POST("/api/run", handlers.ExecuteRun)
	}

	// Recorded runs
	router.GET("/api/runs", handlers.ListRuns)
	router.GET("/api/runs/:id", handlers.GetRun)
	router.DELETE("/api/runs/:id", handlers.DeleteRun)
	router.GET("/api/runs/:id/export", handlers.ExportRun)
	router.GET("/api/stats", handlers.GetStats)

	// Example programs
	router.GET("/examples", handlers.ListExamples)
	router.GET("/examples/:id", handlers.GetExample)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		httpSrv: &http.Server{Handler: router},
		runs:    runs,
		pool:    pool,
		store:   store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.config.Server.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.config.Server.MaxConns)
	}

	s.logger.Info("Starting HTTP server",
		zap.String("addr", addr),
		zap.Int("max_conns", s.config.Server.MaxConns),
	)

	if err := s.httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
	}

	if err := s.pool.Close(); err != nil {
		s.logger.Error("Failed to close sandbox pool", zap.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close run store", zap.Error(err))
	}

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
