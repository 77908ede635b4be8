package sandbox

import (
	"fmt"
	"time"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

// Config controls the budgets applied to a single run.
type Config struct {
	// MaxSteps caps the recorded trace length.
	MaxSteps int

	// Timeout is the wall-clock budget for the whole run.
	Timeout time.Duration

	// MaxStdoutBytes caps captured program output.
	MaxStdoutBytes int

	// WorkerBin is the worker executable the Host spawns. Empty means
	// re-exec the current binary with the worker flag.
	WorkerBin string

	// KillGrace is how long the Host waits after the deadline for the
	// worker to exit on its own before killing it.
	KillGrace time.Duration
}

// DefaultConfig returns the standard budgets.
func DefaultConfig() Config {
	return Config{
		MaxSteps:       trace.MaxSteps,
		Timeout:        3 * time.Second,
		MaxStdoutBytes: trace.MaxStdoutBytes,
		KillGrace:      500 * time.Millisecond,
	}
}

// User-facing messages. These strings are part of the API contract;
// clients match on them.
const (
	timeoutMessage  = "Execution timed out"
	noResultMessage = "No result produced"
)

func stepLimitMessage(limit int) string {
	return fmt.Sprintf("Visualization limited to %d steps", limit)
}

// StdoutBuffer collects program output up to a byte cap. Writes past the
// cap are dropped but still reported as fully written so print keeps
// working inside the traced program.
type StdoutBuffer struct {
	buf []byte
	cap int
}

// NewStdoutBuffer returns a buffer that retains at most max bytes.
func NewStdoutBuffer(max int) *StdoutBuffer {
	return &StdoutBuffer{cap: max}
}

func (b *StdoutBuffer) Write(p []byte) (int, error) {
	room := b.cap - len(b.buf)
	if room > 0 {
		if room > len(p) {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	return len(p), nil
}

// String returns everything captured so far.
func (b *StdoutBuffer) String() string { return string(b.buf) }

// Len reports the number of bytes retained.
func (b *StdoutBuffer) Len() int { return len(b.buf) }
