package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/resilience"
	"github.com/gil906/Python-solver-stepbystep/internal/logging"
	"github.com/gil906/Python-solver-stepbystep/internal/shared/id"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/recorder"
)

// Host runs each program in a one-shot worker subprocess. The worker
// applies the budgets itself and normally exits on its own; the Host's
// deadline of Timeout+KillGrace is the backstop that kills a worker too
// wedged to honor them. Steps streamed before the kill become the
// partial trace in the result.
//
// Launches go through a circuit breaker: when the worker binary is
// missing or unrunnable, repeated spawn attempts are suspended instead
// of failing one by one.
type Host struct {
	cfg     Config
	log     *logging.Logger
	breaker *resilience.Breaker
}

var _ Runner = (*Host)(nil)

// NewHost returns a Host spawning cfg.WorkerBin for each run. Zero
// budget fields fall back to defaults; an empty WorkerBin resolves to a
// tracehost binary next to the current executable.
func NewHost(cfg Config, log *logging.Logger) *Host {
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
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = def.KillGrace
	}

	breaker := resilience.New("sandbox-worker", resilience.Settings{
		Timeout: 10 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("worker breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Host{cfg: cfg, log: log, breaker: breaker}
}

func (h *Host) workerBin() string {
	if h.cfg.WorkerBin != "" {
		return h.cfg.WorkerBin
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), "tracehost")
	}
	return "tracehost"
}

// Execute runs code in a fresh worker and returns the finished result.
func (h *Host) Execute(ctx context.Context, code string) trace.Result {
	return h.ExecuteStream(ctx, code, nil)
}

// ExecuteStream is Execute with a live step sink, fed as step frames
// arrive from the worker. Sink failures stop the forwarding but not the
// run.
func (h *Host) ExecuteStream(ctx context.Context, code string, sink recorder.Sink) trace.Result {
	v, err := h.breaker.Execute(func() (interface{}, error) {
		return h.runWorker(ctx, code, sink)
	})
	if err != nil {
		return h.failure(err)
	}
	return v.(trace.Result)
}

// runWorker spawns one worker and shepherds it to completion. The error
// covers launch failures only; everything after a successful start is
// reported inside the result, so a crashing program cannot trip the
// breaker.
func (h *Host) runWorker(ctx context.Context, code string, sink recorder.Sink) (trace.Result, error) {
	wid := id.NewWorkerID()
	runCtx, cancel := context.WithTimeout(ctx, h.cfg.Timeout+h.cfg.KillGrace)
	defer cancel()

	cmd := exec.CommandContext(runCtx, h.workerBin())
	cmd.WaitDelay = h.cfg.KillGrace

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return trace.Result{}, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return trace.Result{}, fmt.Errorf("worker stdout: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return trace.Result{}, fmt.Errorf("worker start: %w", err)
	}

	req := workRequest{
		Code:      code,
		MaxSteps:  h.cfg.MaxSteps,
		TimeoutMs: int(h.cfg.Timeout / time.Millisecond),
	}
	if data, err := sonic.Marshal(req); err == nil {
		data = append(data, '\n')
		_, _ = stdin.Write(data)
	}
	_ = stdin.Close()

	steps := []trace.Step{}
	var final *trace.Result

	r := bufio.NewReader(stdout)
	for final == nil {
		f, err := readFrame(r)
		if err != nil {
			break
		}
		switch f.T {
		case frameStep:
			if f.Step == nil {
				continue
			}
			steps = append(steps, *f.Step)
			if sink != nil {
				if serr := sink.Step(*f.Step); serr != nil {
					sink = nil
				}
			}
		case frameResult:
			final = f.Result
		}
	}

	waitErr := cmd.Wait()
	if stderr.Len() > 0 {
		h.log.Warn("worker stderr",
			zap.String("worker_id", string(wid)),
			zap.String("output", stderr.String()))
	}

	if final != nil {
		res := *final
		res.Trace = steps
		return res, nil
	}

	// The worker died before producing a result frame. Keep the steps
	// that made it across the pipe.
	res := trace.Result{Trace: steps}
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.Error = timeoutMessage
	case runCtx.Err() != nil:
		res.Error = "execution canceled"
	default:
		res.Error = noResultMessage
		if waitErr != nil {
			h.log.Warn("worker exited abnormally",
				zap.String("worker_id", string(wid)),
				zap.Error(waitErr))
		}
	}
	return res, nil
}

func (h *Host) failure(err error) trace.Result {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		h.log.Warn("worker launches suspended", zap.Error(err))
	} else {
		h.log.Error("worker launch failed", zap.Error(err))
	}
	return trace.Result{Trace: []trace.Step{}, Error: noResultMessage}
}
