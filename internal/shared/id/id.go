// Package id provides centralized ID generation for the backend.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: run listings come back in creation order
//   - Prefixed types: Type-specific prefixes for debugging (run_*, req_*)
//   - Type safety: Separate types prevent ID misuse
//   - Performance: ~2μs per ULID
//
// Design Principles:
//   - ULIDs only: Single ID format across the system
//   - K-sortable: Timeline queries without timestamps
//   - Debuggable: Prefixes make logs readable
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// RunID identifies a recorded execution
type RunID string

// RequestID identifies an API request
type RequestID string

// WorkerID identifies a sandbox worker launch
type WorkerID string

// ============================================================================
// ID Prefixes (for debugging and type identification)
// ============================================================================

const (
	RunPrefix     = "run"
	RequestPrefix = "req"
	WorkerPrefix  = "wrk"
)

// ============================================================================
// ULID Generator (Primary)
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	// Default generator with cryptographically secure entropy
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewRunID generates a new run ID
func NewRunID() RunID {
	return RunID(Default().GenerateWithPrefix(RunPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewWorkerID generates a new worker ID
func NewWorkerID() WorkerID {
	return WorkerID(Default().GenerateWithPrefix(WorkerPrefix))
}

// ============================================================================
// Type Conversion and Validation
// ============================================================================

// String methods for ID types
func (id RunID) String() string     { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id WorkerID) String() string  { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Timestamp extracts the timestamp from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
