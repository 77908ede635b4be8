// Package interp is the minipy tree-walking evaluator. It executes one
// module at a time and reports every call, line, return, and exception
// through a Hooks callback, which is how the trace recorder observes a run.
//
// The evaluator is single-goroutine; Interrupt is the only method safe to
// call from outside and is how the watchdog stops a runaway program between
// events.
package interp

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/ast"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
)

const (
	userFilename = "<user_code>"
	moduleName   = "<module>"
	maxCallDepth = 200
)

// EventKind discriminates execution events.
type EventKind int

const (
	EventCall EventKind = iota
	EventLine
	EventReturn
	EventException
)

func (k EventKind) String() string {
	switch k {
	case EventCall:
		return "call"
	case EventLine:
		return "line"
	case EventReturn:
		return "return"
	case EventException:
		return "exception"
	default:
		return "unknown"
	}
}

// ExcInfo describes an exception at an EventException.
type ExcInfo struct {
	Type  string
	Value string
}

// Frame is one live call-stack entry. Line tracks the statement currently
// executing; Env holds the frame's local bindings.
type Frame struct {
	Function string
	Line     int
	Env      *object.Env
	globals  map[string]bool
}

// Event is passed to Hooks.OnEvent. Stack is the live stack, outermost
// first; it is only valid for the duration of the callback.
type Event struct {
	Kind    EventKind
	Line    int
	Stack   []*Frame
	Globals *object.Env
	Return  object.Value // EventReturn only
	Exc     *ExcInfo     // EventException only
}

// Hooks observes execution events. A non-nil error from OnEvent aborts the
// run; it is returned from Run unwrapped and is never catchable by the
// traced program.
type Hooks interface {
	OnEvent(ev *Event) error
}

// Config configures an interpreter instance.
type Config struct {
	Hooks  Hooks
	Stdout io.Writer
}

// Interp evaluates one program. Not reusable across runs.
type Interp struct {
	hooks    Hooks
	stdout   io.Writer
	module   *object.Env
	builtins map[string]object.Value
	stack    []*Frame
	suppress int // >0 while running __repr__ for the serializer

	interrupted atomic.Bool
	reason      atomic.Pointer[string]

	active *RaisedError // exception being handled, for bare raise
}

// New returns an interpreter. Stdout defaults to io.Discard.
func New(cfg Config) *Interp {
	out := cfg.Stdout
	if out == nil {
		out = io.Discard
	}
	in := &Interp{
		hooks:  cfg.Hooks,
		stdout: out,
		module: object.NewEnv(nil),
	}
	in.builtins = in.setupBuiltins()
	return in
}

// SetHooks installs the event hooks. Call before Run; the recorder needs
// the interpreter first to resolve user __repr__ methods.
func (in *Interp) SetHooks(h Hooks) { in.hooks = h }

// Interrupt stops the run at the next event boundary. The first reason
// given wins and is surfaced in the ErrInterrupted error.
func (in *Interp) Interrupt(reason string) {
	r := reason
	in.reason.CompareAndSwap(nil, &r)
	in.interrupted.Store(true)
}

// Globals exposes the module environment, for snapshotting.
func (in *Interp) Globals() *object.Env { return in.module }

// Stack exposes the live call stack, outermost first.
func (in *Interp) Stack() []*Frame { return in.stack }

// Run executes mod to completion. The returned error is nil for a clean
// run, a *RaisedError for an uncaught exception (whose terminal event has
// already been emitted), an error wrapping ErrInterrupted after Interrupt,
// or the hook's own error when a hook aborted the run.
func (in *Interp) Run(mod *ast.Module) error {
	in.module.Assign("__name__", object.Str{Value: "__main__"})

	frame := &Frame{Function: moduleName, Line: mod.Pos(), Env: in.module}
	in.stack = append(in.stack, frame)
	defer func() { in.stack = in.stack[:0] }()

	err := in.emit(EventCall, frame.Line, nil, nil)
	if err == nil {
		err = in.execBlock(mod.Stmts)
	}
	if err == nil {
		err = in.emit(EventReturn, frame.Line, object.TheNone, nil)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var ha *hookAbort
	if errors.As(err, &ha) {
		return ha.err
	}
	return err
}

func (in *Interp) curFrame() *Frame {
	return in.stack[len(in.stack)-1]
}

func (in *Interp) interruptErr() error {
	reason := ""
	if p := in.reason.Load(); p != nil {
		reason = *p
	}
	return &interruptError{reason: reason}
}

// emit delivers one event to the hooks. Interrupts are honored here even
// when emission is suppressed, so the watchdog always lands between events.
func (in *Interp) emit(kind EventKind, line int, ret object.Value, exc *ExcInfo) error {
	if in.interrupted.Load() {
		return in.interruptErr()
	}
	if in.suppress > 0 || in.hooks == nil {
		return nil
	}
	ev := &Event{
		Kind:    kind,
		Line:    line,
		Stack:   in.stack,
		Globals: in.module,
		Return:  ret,
		Exc:     exc,
	}
	if err := in.hooks.OnEvent(ev); err != nil {
		return &hookAbort{err: err}
	}
	return nil
}

// raisef creates a RaisedError at the current line and emits its exception
// event in the current frame. An abort from the hook takes precedence over
// the exception itself.
func (in *Interp) raisef(typ, format string, args ...any) error {
	return in.raiseAt(in.curFrame().Line, typ, fmt.Sprintf(format, args...))
}

func (in *Interp) raiseAt(line int, typ, msg string) error {
	raised := &RaisedError{Type: typ, Msg: msg, Line: line, Trace: in.traceback()}
	if err := in.emit(EventException, line, nil, &ExcInfo{Type: typ, Value: msg}); err != nil {
		return err
	}
	return raised
}

// reemit records the exception event in the current frame as a raised error
// propagates across a call boundary, mirroring how a host tracer sees the
// same exception once per frame.
func (in *Interp) reemit(raised *RaisedError) error {
	line := in.curFrame().Line
	if err := in.emit(EventException, line, nil, &ExcInfo{Type: raised.Type, Value: raised.Msg}); err != nil {
		return err
	}
	return raised
}

func (in *Interp) traceback() []TracebackEntry {
	tb := make([]TracebackEntry, len(in.stack))
	for i, fr := range in.stack {
		tb[i] = TracebackEntry{Function: fr.Function, Line: fr.Line}
	}
	return tb
}

func asRaised(err error) *RaisedError {
	var raised *RaisedError
	if errors.As(err, &raised) {
		return raised
	}
	return nil
}

// callFunction invokes a user-defined function: binds arguments, pushes a
// frame, emits call and return events, and pops. On a raised error the
// frame pops without a return event; the caller re-emits the exception in
// its own frame.
func (in *Interp) callFunction(fn *object.Function, args []object.Value) (object.Value, error) {
	if len(in.stack) >= maxCallDepth {
		return nil, in.raisef("RecursionError", "maximum recursion depth exceeded")
	}
	if len(args) != len(fn.Params) {
		return nil, in.raisef("TypeError", "%s", arityMessage(fn, len(args)))
	}

	env := object.NewEnv(fn.Env)
	for i, p := range fn.Params {
		env.Assign(p, args[i])
	}

	frame := &Frame{Function: fn.Name, Line: fn.Line, Env: env}
	in.stack = append(in.stack, frame)
	pop := func() { in.stack = in.stack[:len(in.stack)-1] }

	if err := in.emit(EventCall, fn.Line, nil, nil); err != nil {
		pop()
		return nil, err
	}

	err := in.execBlock(fn.Body)
	ret := object.Value(object.TheNone)
	var rc *returnControl
	if errors.As(err, &rc) {
		ret = rc.value
		err = nil
	}
	if err == nil {
		err = in.emit(EventReturn, frame.Line, ret, nil)
	}
	pop()
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func arityMessage(fn *object.Function, given int) string {
	want := len(fn.Params)
	if given > want {
		return fmt.Sprintf("%s() takes %d positional arguments but %d were given",
			fn.Name, want, given)
	}
	missing := fn.Params[given:]
	noun := "argument"
	if len(missing) > 1 {
		noun = "arguments"
	}
	quoted := make([]string, len(missing))
	for i, p := range missing {
		quoted[i] = "'" + p + "'"
	}
	var names string
	switch len(quoted) {
	case 1:
		names = quoted[0]
	case 2:
		names = quoted[0] + " and " + quoted[1]
	default:
		names = strings.Join(quoted[:len(quoted)-1], ", ") + ", and " + quoted[len(quoted)-1]
	}
	return fmt.Sprintf("%s() missing %d required positional %s: %s",
		fn.Name, len(missing), noun, names)
}

// callUser dispatches a call to fn with the exception re-emit that a call
// boundary requires.
func (in *Interp) callUser(fn *object.Function, args []object.Value) (object.Value, error) {
	v, err := in.callFunction(fn, args)
	if raised := asRaised(err); raised != nil {
		return nil, in.reemit(raised)
	}
	return v, err
}

// InstanceRepr runs a user __repr__ with event emission suppressed, for the
// value serializer. ok is false when the class defines no __repr__; err is
// non-nil when the repr itself failed, in which case the caller substitutes
// a placeholder.
func (in *Interp) InstanceRepr(inst *object.Instance) (string, bool, error) {
	fn, ok := inst.Class.Methods["__repr__"]
	if !ok {
		return "", false, nil
	}
	in.suppress++
	defer func() { in.suppress-- }()

	v, err := in.callFunction(fn, []object.Value{inst})
	if err != nil {
		return "", true, err
	}
	s, isStr := v.(object.Str)
	if !isStr {
		return "", true, fmt.Errorf("__repr__ returned non-string (type %s)", v.TypeName())
	}
	return s.Value, true, nil
}

// reprHook adapts InstanceRepr for object.Repr, swallowing failures so a
// broken __repr__ inside a container falls back to the default form.
func (in *Interp) reprHook() object.ReprFunc {
	return func(inst *object.Instance) (string, bool) {
		s, ok, err := in.InstanceRepr(inst)
		if err != nil || !ok {
			return "", false
		}
		return s, true
	}
}

// strValue renders v for print and str(), consulting user __repr__ and
// propagating its failure as the raised error it was.
func (in *Interp) strValue(v object.Value) (string, error) {
	if inst, ok := v.(*object.Instance); ok {
		s, hasRepr, err := in.InstanceRepr(inst)
		if err != nil {
			if raised := asRaised(err); raised != nil {
				return "", raised
			}
			return "", err
		}
		if hasRepr {
			return s, nil
		}
	}
	return object.AsString(v, in.reprHook()), nil
}
