package sandbox

import (
	"context"
	"errors"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/interp"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/parser"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/recorder"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/snapshot"
)

// Runner executes one program under budget and reports its trace.
// Engine runs in-process; Host isolates each run in a worker subprocess.
type Runner interface {
	Execute(ctx context.Context, code string) trace.Result
	ExecuteStream(ctx context.Context, code string, sink recorder.Sink) trace.Result
}

// Engine is the in-process pipeline: parse, interpret, record.
type Engine struct {
	cfg Config
}

var _ Runner = (*Engine)(nil)

// NewEngine returns an Engine. Zero budget fields fall back to defaults.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxStdoutBytes <= 0 {
		cfg.MaxStdoutBytes = def.MaxStdoutBytes
	}
	return &Engine{cfg: cfg}
}

// Execute runs code to completion and returns the finished result.
// Program failures, truncation and timeouts are reported inside the
// Result; they are outcomes, not Go errors.
func (e *Engine) Execute(ctx context.Context, code string) trace.Result {
	return e.ExecuteStream(ctx, code, nil)
}

// ExecuteStream is Execute with a live step sink. The worker uses it to
// stream steps to the parent while the program is still running.
func (e *Engine) ExecuteStream(ctx context.Context, code string, sink recorder.Sink) trace.Result {
	mod, err := parser.Parse(code)
	if err != nil {
		return trace.Result{Trace: []trace.Step{}, Error: err.Error()}
	}

	stdout := NewStdoutBuffer(e.cfg.MaxStdoutBytes)
	gov := NewGovernor(e.cfg)

	in := interp.New(interp.Config{Stdout: stdout})
	rec := recorder.New(snapshot.New(in), gov, sink)
	in.SetHooks(rec)

	stop := gov.Watch(ctx, in.Interrupt)
	runErr := in.Run(mod)
	stop()

	res := trace.Result{
		Trace:  rec.Steps(),
		Stdout: stdout.String(),
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, ErrStepLimit):
		res.Truncated = true
		res.Error = stepLimitMessage(e.cfg.MaxSteps)
	case errors.Is(runErr, interp.ErrInterrupted):
		if gov.TimedOut() {
			res.TimedOut = true
			res.Error = timeoutMessage
		} else {
			res.Error = "execution canceled"
		}
	default:
		var raised *interp.RaisedError
		if errors.As(runErr, &raised) {
			res.Error = raised.Traceback()
		} else {
			res.Error = runErr.Error()
		}
	}

	// A trace that fills the whole budget reports truncation even when
	// the program finished on its own.
	if len(res.Trace) >= e.cfg.MaxSteps {
		res.Truncated = true
	}

	return res
}
