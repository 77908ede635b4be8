// Package recorder turns interpreter events into trace steps. It sits
// between the evaluator's hook interface and the step model: every event
// becomes exactly one Step carrying a freshly sampled snapshot of all
// visible state.
package recorder

import (
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/interp"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
	"github.com/gil906/Python-solver-stepbystep/internal/trace/snapshot"
)

// Governor admits or refuses each step before it is recorded. A non-nil
// error aborts the run and surfaces unchanged from the interpreter.
type Governor interface {
	Tick() error
}

// Sink receives each step as soon as it is recorded. The subprocess host
// streams steps through one so a killed worker still leaves a usable
// partial trace behind.
type Sink interface {
	Step(st trace.Step) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(st trace.Step) error

// Step calls f(st).
func (f SinkFunc) Step(st trace.Step) error { return f(st) }

// Recorder implements interp.Hooks. One recorder serves one run.
type Recorder struct {
	ser   *snapshot.Serializer
	gov   Governor
	sink  Sink
	steps []trace.Step
}

// New builds a recorder. gov and sink may be nil.
func New(ser *snapshot.Serializer, gov Governor, sink Sink) *Recorder {
	return &Recorder{ser: ser, gov: gov, sink: sink}
}

// OnEvent records one step. The governor is consulted first, so a budget
// refusal leaves the trace exactly at its cap.
func (r *Recorder) OnEvent(ev *interp.Event) error {
	if r.gov != nil {
		if err := r.gov.Tick(); err != nil {
			return err
		}
	}
	st := r.buildStep(ev)
	r.steps = append(r.steps, st)
	if r.sink != nil {
		if err := r.sink.Step(st); err != nil {
			return err
		}
	}
	return nil
}

// Steps returns the recorded trace. The slice is owned by the recorder
// until the run finishes.
func (r *Recorder) Steps() []trace.Step {
	if r.steps == nil {
		return []trace.Step{}
	}
	return r.steps
}

// Len reports how many steps have been recorded so far.
func (r *Recorder) Len() int { return len(r.steps) }

// buildStep samples all state visible at the event into one Step. The walk
// order is fixed (innermost locals, then globals, then the stack outermost
// first, then the return value) so ref assignment is deterministic across
// identical runs.
func (r *Recorder) buildStep(ev *interp.Event) trace.Step {
	heap := make(map[string]trace.Object)
	inner := ev.Stack[len(ev.Stack)-1]

	st := trace.Step{
		Event:   ev.Kind.String(),
		Line:    ev.Line,
		Locals:  r.describeEnv(inner.Env, heap),
		Globals: r.describeEnv(ev.Globals, heap),
		Heap:    heap,
	}

	st.Stack = make([]trace.Frame, 0, len(ev.Stack))
	for _, fr := range ev.Stack {
		st.Stack = append(st.Stack, trace.Frame{
			Function: fr.Function,
			Line:     fr.Line,
			Locals:   r.describeEnv(fr.Env, heap),
		})
	}

	if ev.Kind == interp.EventReturn && ev.Return != nil {
		v := r.ser.Describe(ev.Return, heap)
		st.Return = &v
	}
	if ev.Exc != nil {
		st.Exception = &trace.Exception{Type: ev.Exc.Type, Value: ev.Exc.Value}
	}
	return st
}

// describeEnv serializes one environment's own bindings in insertion
// order, hiding dunder names and the builtins binding the same way the
// namespace display always has.
func (r *Recorder) describeEnv(env *object.Env, heap map[string]trace.Object) map[string]trace.Value {
	out := make(map[string]trace.Value)
	for _, name := range env.Names() {
		if name == "__builtins__" || snapshot.IsDunder(name) {
			continue
		}
		v, ok := env.Local(name)
		if !ok {
			continue
		}
		out[name] = r.ser.Describe(v, heap)
	}
	return out
}
