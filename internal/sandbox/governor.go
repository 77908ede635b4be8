package sandbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStepLimit is returned by Tick once the step budget is exhausted.
var ErrStepLimit = errors.New("step limit reached")

// Governor enforces the budgets of a single run. Tick runs on the
// interpreter goroutine; the watchdog armed by Watch is the only other
// goroutine that touches it, through atomics.
type Governor struct {
	maxSteps int
	timeout  time.Duration

	steps    int
	timedOut atomic.Bool
	canceled atomic.Bool
}

// NewGovernor returns a Governor for one run under cfg's budgets.
func NewGovernor(cfg Config) *Governor {
	return &Governor{maxSteps: cfg.MaxSteps, timeout: cfg.Timeout}
}

// Tick consumes one step of budget. It refuses without counting once the
// cap is reached, so a recorded trace stops exactly at the cap.
func (g *Governor) Tick() error {
	if g.steps >= g.maxSteps {
		return ErrStepLimit
	}
	g.steps++
	return nil
}

// Steps reports how many steps the run has consumed.
func (g *Governor) Steps() int { return g.steps }

// Exhausted reports whether the whole step budget was consumed.
func (g *Governor) Exhausted() bool { return g.steps >= g.maxSteps }

// TimedOut reports whether the wall-clock budget fired.
func (g *Governor) TimedOut() bool { return g.timedOut.Load() }

// Canceled reports whether the surrounding context was canceled first.
func (g *Governor) Canceled() bool { return g.canceled.Load() }

// Watch arms the wall-clock budget. When the budget elapses, or ctx is
// canceled first, interrupt is invoked once with a reason. The returned
// stop function disarms the watchdog and must be called when the run ends.
//
// The flag stores happen before interrupt fires, so whoever observes the
// interruption also observes the matching flag.
func (g *Governor) Watch(ctx context.Context, interrupt func(reason string)) (stop func()) {
	timer := time.NewTimer(g.timeout)
	done := make(chan struct{})

	go func() {
		select {
		case <-timer.C:
			g.timedOut.Store(true)
			interrupt(timeoutMessage)
		case <-ctx.Done():
			g.canceled.Store(true)
			interrupt("execution canceled")
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			timer.Stop()
			close(done)
		})
	}
}
