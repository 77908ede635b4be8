package interp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
)

// RaisedError is a Python-level exception travelling up the evaluator. It is
// the only error try/except can catch; everything else aborts the run.
type RaisedError struct {
	Type  string
	Msg   string
	Line  int
	Trace []TracebackEntry
}

// TracebackEntry is one frame of the stack at raise time, outermost first.
type TracebackEntry struct {
	Function string
	Line     int
}

func (e *RaisedError) Error() string {
	if e.Msg == "" {
		return e.Type
	}
	return e.Type + ": " + e.Msg
}

// Traceback renders the error as a Python-style traceback block.
func (e *RaisedError) Traceback() string {
	var b strings.Builder
	b.WriteString("Traceback (most recent call last):\n")
	for _, fr := range e.Trace {
		fmt.Fprintf(&b, "  File \"%s\", line %d, in %s\n", userFilename, fr.Line, fr.Function)
	}
	b.WriteString(e.Error())
	b.WriteString("\n")
	return b.String()
}

// Value returns the exception as a runtime value, for `except ... as name`.
func (e *RaisedError) Value() *object.ExcValue {
	return &object.ExcValue{Type: e.Type, Msg: e.Msg}
}

// ErrInterrupted is returned by Run when Interrupt fired; the reason is
// wrapped alongside it.
var ErrInterrupted = errors.New("interpreter interrupted")

// interruptError carries the Interrupt reason and unwraps to
// ErrInterrupted.
type interruptError struct {
	reason string
}

func (e *interruptError) Error() string {
	if e.reason == "" {
		return ErrInterrupted.Error()
	}
	return e.reason
}

func (e *interruptError) Unwrap() error { return ErrInterrupted }

// hookAbort wraps an error returned by an event hook. It propagates through
// the evaluator without being catchable by user code.
type hookAbort struct {
	err error
}

func (e *hookAbort) Error() string { return e.err.Error() }
func (e *hookAbort) Unwrap() error { return e.err }

// Loop and function control flow are modelled as sentinel errors that the
// enclosing construct consumes.
var (
	errBreak    = errors.New("break outside loop")
	errContinue = errors.New("continue outside loop")
)

// returnControl unwinds to the active call frame carrying the return value.
type returnControl struct {
	value object.Value
}

func (e *returnControl) Error() string { return "return outside function" }
