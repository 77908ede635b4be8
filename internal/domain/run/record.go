package run

import (
	"time"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

// Outcome classifies how a run finished.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeError     Outcome = "error"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeTruncated Outcome = "truncated"
)

// classify derives the outcome from a finished result. Truncated runs
// also carry an error message, so the order here matters.
func classify(res *trace.Result) Outcome {
	switch {
	case res.TimedOut:
		return OutcomeTimeout
	case res.Truncated:
		return OutcomeTruncated
	case res.Error != "":
		return OutcomeError
	default:
		return OutcomeCompleted
	}
}

// cacheable reports whether an identical future submission may reuse
// this outcome. Timeouts depend on the machine, not the program.
func cacheable(o Outcome) bool {
	return o != OutcomeTimeout
}

// Record is a finished run retained for replay.
type Record struct {
	ID         string       `json:"id"`
	CodeHash   string       `json:"code_hash"`
	Code       string       `json:"code"`
	Outcome    Outcome      `json:"outcome"`
	Steps      int          `json:"steps"`
	DurationMs float64      `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
	Result     trace.Result `json:"result"`
}

// Summary is the listing view of a Record, without the trace payload.
type Summary struct {
	ID         string    `json:"id"`
	CodeHash   string    `json:"code_hash"`
	Outcome    Outcome   `json:"outcome"`
	Steps      int       `json:"steps"`
	DurationMs float64   `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summarize strips the record down to its listing view.
func (r *Record) Summarize() Summary {
	return Summary{
		ID:         r.ID,
		CodeHash:   r.CodeHash,
		Outcome:    r.Outcome,
		Steps:      r.Steps,
		DurationMs: r.DurationMs,
		CreatedAt:  r.CreatedAt,
	}
}
