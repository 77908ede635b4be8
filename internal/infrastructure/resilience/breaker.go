package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// MaxRequests is the maximum number of probe requests allowed in half-open state
	MaxRequests uint32
	// Interval is the cyclic period of the closed state to clear internal counts
	Interval time.Duration
	// Timeout is the period of the open state until transitioning to half-open
	Timeout time.Duration
	// ReadyToTrip is called with counts when a request fails in closed state
	ReadyToTrip func(counts Counts) bool
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the current generation
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker guards one downstream dependency. Every state change starts a
// new generation; outcomes reported by requests admitted under an older
// generation are discarded, so a slow request finishing after a trip
// cannot corrupt the fresh counts.
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	deadline   time.Time
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}
	if settings.Interval == 0 {
		settings.Interval = 60 * time.Second
	}
	if settings.Timeout == 0 {
		settings.Timeout = 60 * time.Second
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures > 5
		}
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		deadline: time.Now().Add(settings.Interval),
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(time.Now())
	return b.state
}

// Counts returns a copy of the current generation's counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Execute runs the given request if the circuit breaker accepts it. A
// panic inside the request counts as a failure and is re-raised.
func (b *Breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	gen, err := b.admit()
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			b.settle(gen, false)
			panic(r)
		}
	}()

	result, err := req()
	b.settle(gen, err == nil)
	return result, err
}

// admit decides whether a request may proceed and records it against the
// current generation.
func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(time.Now())

	switch {
	case b.state == StateOpen:
		return b.generation, ErrCircuitOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		return b.generation, ErrTooManyRequests
	}

	b.counts.Requests++
	return b.generation, nil
}

// settle records a request outcome. Outcomes from an older generation
// are dropped.
func (b *Breaker) settle(gen uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refresh(now)
	if gen != b.generation {
		return
	}

	if success {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
			b.transition(StateClosed, now)
		}
		return
	}

	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0
	switch b.state {
	case StateClosed:
		if b.settings.ReadyToTrip(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

// refresh applies the time-based transitions: closed counts expire with
// the interval, an expired open state becomes half-open.
func (b *Breaker) refresh(now time.Time) {
	switch b.state {
	case StateClosed:
		if !b.deadline.IsZero() && b.deadline.Before(now) {
			b.newGeneration(now)
		}
	case StateOpen:
		if b.deadline.Before(now) {
			b.transition(StateHalfOpen, now)
		}
	}
}

// transition moves to a new state and starts a fresh generation.
func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.newGeneration(now)

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// newGeneration clears the counts and arms the deadline for the current
// state. Half-open has no deadline; it resolves through probe outcomes.
func (b *Breaker) newGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.deadline = now.Add(b.settings.Interval)
	case StateOpen:
		b.deadline = now.Add(b.settings.Timeout)
	case StateHalfOpen:
		b.deadline = time.Time{}
	}
}
