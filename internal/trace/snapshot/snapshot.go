// Package snapshot converts live interpreter values into the bounded
// descriptor graph a trace step carries. Refs are issued once per run at
// first sighting, so the same object keeps the same ref across every step
// it appears in; each step gets its own freshly sampled heap.
package snapshot

import (
	"strconv"
	"strings"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
	"github.com/gil906/Python-solver-stepbystep/internal/trace"
)

// ReprCaller renders user-defined __repr__ methods on the serializer's
// behalf. ok is false when the class defines none; a non-nil error means
// the repr itself failed and a placeholder should stand in.
type ReprCaller interface {
	InstanceRepr(inst *object.Instance) (s string, ok bool, err error)
}

// Serializer owns the run-scoped identity table. Not safe for concurrent
// use; one run is serialized from a single goroutine.
type Serializer struct {
	caller ReprCaller
	refs   map[object.Value]string
	next   int
}

func New(caller ReprCaller) *Serializer {
	return &Serializer{
		caller: caller,
		refs:   make(map[object.Value]string),
		next:   1,
	}
}

// refFor returns the stable ref for a composite, assigning the next id on
// first sighting. Composites are pointer values, so interface equality is
// object identity.
func (s *Serializer) refFor(v object.Value) string {
	if ref, ok := s.refs[v]; ok {
		return ref
	}
	ref := strconv.Itoa(s.next)
	s.next++
	s.refs[v] = ref
	return ref
}

// Describe returns the shallow descriptor for v and registers every
// composite reachable from it in heap. Scalars inline; composites carry
// only a ref.
func (s *Serializer) Describe(v object.Value, heap map[string]trace.Object) trace.Value {
	switch t := v.(type) {
	case object.None:
		return trace.Scalar("None", "NoneType")
	case object.Bool:
		if t.Value {
			return trace.Scalar("True", "bool")
		}
		return trace.Scalar("False", "bool")
	case object.Int:
		return trace.ScalarNum(strconv.FormatInt(t.Value, 10), "int", float64(t.Value))
	case object.Float:
		return trace.ScalarNum(object.FormatFloat(t.Value), "float", t.Value)
	case object.Str:
		return trace.Scalar(object.QuoteString(t.Value), "str")
	case *object.Function:
		return trace.Scalar("<function "+t.Name+">", "function")
	case *object.Builtin:
		if t.IsType {
			return trace.Scalar("<class '"+t.Name+"'>", "type")
		}
		return trace.Scalar("<built-in function "+t.Name+">", "builtin_function_or_method")
	case *object.Class:
		return trace.Scalar("<class '"+t.Name+"'>", "type")
	case *object.BoundMethod:
		return trace.Scalar("<bound method "+t.Recv.Class.Name+"."+t.Fn.Name+">", "method")
	case *object.Range:
		return trace.Scalar(s.preview(v), "range")
	case *object.ExcValue:
		return trace.Scalar(s.preview(v), t.Type)
	}

	if !object.IsComposite(v) {
		return trace.Scalar(s.preview(v), v.TypeName())
	}

	ref := s.refFor(v)
	if _, done := heap[ref]; !done {
		// an in-progress placeholder breaks reference cycles: any
		// sighting during the breakdown below reuses the ref
		heap[ref] = trace.Object{}
		heap[ref] = s.describeObject(v, heap)
	}
	return trace.RefTo(s.preview(v), v.TypeName(), ref)
}

func (s *Serializer) describeObject(v object.Value, heap map[string]trace.Object) trace.Object {
	switch t := v.(type) {
	case *object.List:
		return trace.Object{
			Type:   "list",
			Kind:   trace.KindSequence,
			Repr:   s.preview(v),
			Length: trace.IntPtr(len(t.Elems)),
			Items:  s.describeItems(t.Elems, heap),
		}
	case *object.Tuple:
		return trace.Object{
			Type:   "tuple",
			Kind:   trace.KindSequence,
			Repr:   s.preview(v),
			Length: trace.IntPtr(len(t.Elems)),
			Items:  s.describeItems(t.Elems, heap),
		}
	case *object.Set:
		return trace.Object{
			Type:   "set",
			Kind:   trace.KindSet,
			Repr:   s.preview(v),
			Length: trace.IntPtr(t.Len()),
			Items:  s.describeItems(t.Elems(), heap),
		}
	case *object.Dict:
		return trace.Object{
			Type:    "dict",
			Kind:    trace.KindMapping,
			Repr:    s.preview(v),
			Length:  trace.IntPtr(t.Len()),
			Entries: s.describeEntries(t, heap),
		}
	case *object.Instance:
		return trace.Object{
			Type:       t.Class.Name,
			Kind:       trace.KindObject,
			Repr:       s.instanceRepr(t),
			Attributes: s.describeAttributes(t, heap),
		}
	default:
		return trace.Object{
			Type: v.TypeName(),
			Kind: trace.KindObject,
			Repr: s.preview(v),
		}
	}
}

func (s *Serializer) describeItems(elems []object.Value, heap map[string]trace.Object) []trace.Value {
	n := len(elems)
	capped := n > trace.MaxItems
	if capped {
		n = trace.MaxItems
	}
	items := make([]trace.Value, 0, n+1)
	for _, e := range elems[:n] {
		items = append(items, s.Describe(e, heap))
	}
	if capped {
		items = append(items, trace.Marker())
	}
	return items
}

func (s *Serializer) describeEntries(d *object.Dict, heap map[string]trace.Object) []trace.Entry {
	keys := d.Keys()
	vals := d.Values()
	n := len(keys)
	capped := n > trace.MaxItems
	if capped {
		n = trace.MaxItems
	}
	entries := make([]trace.Entry, 0, n+1)
	for i := 0; i < n; i++ {
		k := s.Describe(keys[i], heap)
		v := s.Describe(vals[i], heap)
		entries = append(entries, trace.Entry{Key: &k, Value: &v})
	}
	if capped {
		entries = append(entries, trace.Entry{Truncated: true})
	}
	return entries
}

// describeAttributes samples instance attributes in first-assignment order,
// hiding dunder names the same way module globals hide them.
func (s *Serializer) describeAttributes(inst *object.Instance, heap map[string]trace.Object) map[string]trace.Value {
	attrs := make(map[string]trace.Value)
	count := 0
	for _, name := range inst.AttrNames() {
		if IsDunder(name) {
			continue
		}
		if count >= trace.MaxItems {
			attrs["..."] = trace.Marker()
			break
		}
		v, ok := inst.Attr(name)
		if !ok {
			continue
		}
		attrs[name] = s.Describe(v, heap)
		count++
	}
	return attrs
}

// IsDunder reports whether a name is double-underscore spelled and should
// stay out of serialized namespaces.
func IsDunder(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}
