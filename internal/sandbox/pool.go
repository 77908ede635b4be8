package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/recorder"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// acquireTimeout bounds how long a run may queue for a worker slot.
const acquireTimeout = 5 * time.Second

// Pool bounds how many runs execute concurrently. Workers are one-shot
// processes, so the pool holds permits rather than live runtimes.
type Pool struct {
	runner  Runner
	permits chan struct{}
	size    int
	mu      sync.RWMutex
	closed  bool
}

// NewPool wraps runner with a concurrency bound.
func NewPool(runner Runner, size int) *Pool {
	if size <= 0 {
		size = 4
	}

	p := &Pool{
		runner:  runner,
		permits: make(chan struct{}, size),
		size:    size,
	}
	for i := 0; i < size; i++ {
		p.permits <- struct{}{}
	}
	return p
}

// Acquire takes a worker slot, waiting up to the acquisition timeout.
func (p *Pool) Acquire(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-p.permits:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(acquireTimeout):
		return ErrTimeout
	}
}

// Release returns a worker slot.
func (p *Pool) Release() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}
	select {
	case p.permits <- struct{}{}:
	default:
	}
}

// Execute runs code once a worker slot is free. The error reports
// admission failure only; run outcomes live inside the Result.
func (p *Pool) Execute(ctx context.Context, code string) (trace.Result, error) {
	return p.ExecuteStream(ctx, code, nil)
}

// ExecuteStream is Execute with a live step sink.
func (p *Pool) ExecuteStream(ctx context.Context, code string, sink recorder.Sink) (trace.Result, error) {
	if err := p.Acquire(ctx); err != nil {
		return trace.Result{}, err
	}
	defer p.Release()

	return p.runner.ExecuteStream(ctx, code, sink), nil
}

// Close stops admitting new runs. In-flight runs finish on their own.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.permits)
	return nil
}

// Stats returns pool statistics.
func (p *Pool) Stats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"size":      p.size,
		"available": len(p.permits),
		"in_use":    p.size - len(p.permits),
		"closed":    p.closed,
	}
}
