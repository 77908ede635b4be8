// Package trace defines the wire model of one recorded execution: an
// ordered sequence of steps, each carrying the full visible program state
// at that moment. The model is what the API returns and the frontend
// replays; field names here are the public contract.
package trace

// Event kinds a Step can carry.
const (
	EventCall      = "call"
	EventLine      = "line"
	EventReturn    = "return"
	EventException = "exception"
)

// Limits every run is recorded under.
const (
	// MaxSteps bounds the trace length; hitting it marks the result
	// truncated.
	MaxSteps = 2000
	// MaxItems bounds the breadth of any serialized container.
	MaxItems = 24
	// MaxStdoutBytes bounds captured standard output.
	MaxStdoutBytes = 64 * 1024
)

// Result is the complete outcome of one run. Immutable once returned.
type Result struct {
	Trace     []Step `json:"trace"`
	Truncated bool   `json:"truncated"`
	TimedOut  bool   `json:"timedOut"`
	Stdout    string `json:"stdout"`
	Error     string `json:"error,omitempty"`
}

// Step records one execution event with the full state snapshot taken at
// that instant. Locals are those of the innermost frame; Stack lists every
// live frame outermost first.
type Step struct {
	Event     string            `json:"event"`
	Line      int               `json:"line"`
	Locals    map[string]Value  `json:"locals"`
	Globals   map[string]Value  `json:"globals"`
	Stack     []Frame           `json:"stack"`
	Return    *Value            `json:"return_value,omitempty"`
	Exception *Exception        `json:"exception,omitempty"`
	Heap      map[string]Object `json:"heap"`
}

// Frame is one call-stack entry within a Step.
type Frame struct {
	Function string           `json:"function"`
	Line     int              `json:"line"`
	Locals   map[string]Value `json:"locals"`
}

// Exception identifies the exception observed at an exception event.
type Exception struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Value is a shallow descriptor of one value. Scalars are inlined and have
// no Ref; composites carry a Ref into the Step's Heap and no nested
// structure. A Value with only Truncated set is the breadth-cap marker.
type Value struct {
	Repr      string   `json:"repr,omitempty"`
	Type      string   `json:"type,omitempty"`
	Ref       string   `json:"ref,omitempty"`
	Numeric   *float64 `json:"numeric,omitempty"`
	Truncated bool     `json:"truncated,omitempty"`
}

// Object is the full breakdown of one composite value in a Step's heap.
// Exactly one of Items, Entries, or Attributes is populated, matching Kind;
// plain sequences and sets use Items, mappings use Entries, and everything
// else describes itself through Attributes.
type Object struct {
	Type       string           `json:"type"`
	Kind       string           `json:"kind"`
	Repr       string           `json:"repr"`
	Length     *int             `json:"length,omitempty"`
	Items      []Value          `json:"items,omitempty"`
	Entries    []Entry          `json:"entries,omitempty"`
	Attributes map[string]Value `json:"attributes,omitempty"`
}

// Container kinds an Object can have.
const (
	KindSequence = "sequence"
	KindMapping  = "mapping"
	KindSet      = "set"
	KindObject   = "object"
)

// Entry is one key/value pair of a mapping Object. An Entry with only
// Truncated set is the breadth-cap marker.
type Entry struct {
	Key       *Value `json:"key,omitempty"`
	Value     *Value `json:"value,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Marker is the element appended in place of a container's tail once the
// breadth cap is reached.
func Marker() Value { return Value{Truncated: true} }

// Scalar builds an inline descriptor.
func Scalar(repr, typ string) Value {
	return Value{Repr: repr, Type: typ}
}

// ScalarNum builds an inline descriptor for a numeric scalar.
func ScalarNum(repr, typ string, n float64) Value {
	return Value{Repr: repr, Type: typ, Numeric: &n}
}

// RefTo builds the shallow descriptor pointing at a heap object.
func RefTo(repr, typ, ref string) Value {
	return Value{Repr: repr, Type: typ, Ref: ref}
}

// IntPtr is a convenience for Object.Length.
func IntPtr(n int) *int { return &n }
