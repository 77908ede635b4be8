package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Sandbox   SandboxConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string `envconfig:"PORT" default:"8000"`
	Host     string `envconfig:"HOST" default:"0.0.0.0"`
	MaxConns int    `envconfig:"MAX_CONNS" default:"256"`
}

// SandboxConfig holds execution sandbox configuration.
type SandboxConfig struct {
	MaxSteps       int    `envconfig:"SANDBOX_MAX_STEPS" default:"2000"`
	TimeoutMs      int    `envconfig:"SANDBOX_TIMEOUT_MS" default:"3000"`
	MaxStdoutBytes int    `envconfig:"SANDBOX_MAX_STDOUT_BYTES" default:"65536"`
	WorkerBin      string `envconfig:"SANDBOX_WORKER_BIN" default:""`
	PoolSize       int    `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
	InProcess      bool   `envconfig:"SANDBOX_IN_PROCESS" default:"false"`
}

// Timeout returns the run timeout as a duration.
func (s SandboxConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// StorageConfig holds trace persistence configuration.
type StorageConfig struct {
	DataDir string `envconfig:"DATA_DIR" default:"./data/runs"`
	MaxRuns int    `envconfig:"MAX_STORED_RUNS" default:"500"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     "8000",
			Host:     "0.0.0.0",
			MaxConns: 256,
		},
		Sandbox: SandboxConfig{
			MaxSteps:       trace.MaxSteps,
			TimeoutMs:      3000,
			MaxStdoutBytes: trace.MaxStdoutBytes,
			PoolSize:       4,
		},
		Storage: StorageConfig{
			DataDir: "./data/runs",
			MaxRuns: 500,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
