// Package object defines the minipy runtime value types and the environment
// chain. Values form a sealed sum type; composites are pointers so their
// identity survives aliasing, which is what the trace's ref table keys on.
package object

import (
	"fmt"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/ast"
)

// Value is the sealed interface implemented by every runtime value.
type Value interface {
	// TypeName is the Python-style type name, as reported by type().
	TypeName() string
	value()
}

// --- Scalars ---

type None struct{}

type Bool struct {
	Value bool
}

type Int struct {
	Value int64
}

type Float struct {
	Value float64
}

type Str struct {
	Value string
}

func (None) TypeName() string  { return "NoneType" }
func (Bool) TypeName() string  { return "bool" }
func (Int) TypeName() string   { return "int" }
func (Float) TypeName() string { return "float" }
func (Str) TypeName() string   { return "str" }

func (None) value()  {}
func (Bool) value()  {}
func (Int) value()   {}
func (Float) value() {}
func (Str) value()   {}

// --- Composites ---

type List struct {
	Elems []Value
}

type Tuple struct {
	Elems []Value
}

// Dict preserves insertion order, as Python dicts do; the index maps hash
// keys (see hash.go) to positions.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[string]int
}

// Set preserves insertion order so traces render deterministically.
type Set struct {
	elems []Value
	index map[string]int
}

// Range is the lazy sequence produced by range(); it iterates without
// materializing.
type Range struct {
	Start, Stop, Step int64
}

// Function is a user-defined function. Env is the defining environment, so
// nested definitions see enclosing names.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Stmt
	Env    *Env
	Line   int
}

// BuiltinFunc is the implementation of a builtin function or method.
type BuiltinFunc func(args []Value) (Value, error)

// Builtin is a builtin function, or a builtin type constructor when IsType
// is set (int, str, list, ...).
type Builtin struct {
	Name   string
	IsType bool
	Fn     BuiltinFunc
}

// Class is a user-defined class: methods plus class-level attributes.
type Class struct {
	Name    string
	Methods map[string]*Function
	Attrs   *Dict
	Line    int
}

// Instance is one object of a user-defined class with insertion-ordered
// attributes.
type Instance struct {
	Class *Class
	names []string
	attrs map[string]Value
}

// BoundMethod pairs an instance with one of its class's functions.
type BoundMethod struct {
	Recv *Instance
	Fn   *Function
}

// ExcValue is a raised or constructed exception value. It is scalar-like:
// the trace inlines it rather than placing it on the heap.
type ExcValue struct {
	Type string
	Msg  string
}

func (*List) TypeName() string     { return "list" }
func (*Tuple) TypeName() string    { return "tuple" }
func (*Dict) TypeName() string     { return "dict" }
func (*Set) TypeName() string      { return "set" }
func (*Range) TypeName() string    { return "range" }
func (*Function) TypeName() string { return "function" }
func (*Builtin) TypeName() string  { return "builtin_function_or_method" }
func (*Class) TypeName() string    { return "type" }
func (i *Instance) TypeName() string {
	return i.Class.Name
}
func (*BoundMethod) TypeName() string { return "method" }
func (e *ExcValue) TypeName() string  { return e.Type }

func (*List) value()        {}
func (*Tuple) value()       {}
func (*Dict) value()        {}
func (*Set) value()         {}
func (*Range) value()       {}
func (*Function) value()    {}
func (*Builtin) value()     {}
func (*Class) value()       {}
func (*Instance) value()    {}
func (*BoundMethod) value() {}
func (*ExcValue) value()    {}

// TheNone is the shared None value.
var TheNone = None{}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Set inserts or replaces the entry for key. Replacement keeps the original
// insertion position, as Python does.
func (d *Dict) Set(key, val Value) error {
	hk, err := hashKey(key)
	if err != nil {
		return err
	}
	if pos, ok := d.index[hk]; ok {
		d.vals[pos] = val
		return nil
	}
	d.index[hk] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, val)
	return nil
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key Value) (Value, bool, error) {
	hk, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	pos, ok := d.index[hk]
	if !ok {
		return nil, false, nil
	}
	return d.vals[pos], true, nil
}

// Delete removes the entry for key, reporting whether it existed.
func (d *Dict) Delete(key Value) (bool, error) {
	hk, err := hashKey(key)
	if err != nil {
		return false, err
	}
	pos, ok := d.index[hk]
	if !ok {
		return false, nil
	}
	d.keys = append(d.keys[:pos], d.keys[pos+1:]...)
	d.vals = append(d.vals[:pos], d.vals[pos+1:]...)
	delete(d.index, hk)
	for k, p := range d.index {
		if p > pos {
			d.index[k] = p - 1
		}
	}
	return true, nil
}

// Clear removes every entry.
func (d *Dict) Clear() {
	d.keys = nil
	d.vals = nil
	d.index = make(map[string]int)
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (d *Dict) Keys() []Value { return d.keys }

// Values returns the values in insertion order, aligned with Keys.
func (d *Dict) Values() []Value { return d.vals }

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// Add inserts v if absent.
func (s *Set) Add(v Value) error {
	hk, err := hashKey(v)
	if err != nil {
		return err
	}
	if _, ok := s.index[hk]; ok {
		return nil
	}
	s.index[hk] = len(s.elems)
	s.elems = append(s.elems, v)
	return nil
}

// Has reports membership.
func (s *Set) Has(v Value) (bool, error) {
	hk, err := hashKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.index[hk]
	return ok, nil
}

// Remove deletes v, reporting whether it was present.
func (s *Set) Remove(v Value) (bool, error) {
	hk, err := hashKey(v)
	if err != nil {
		return false, err
	}
	pos, ok := s.index[hk]
	if !ok {
		return false, nil
	}
	s.elems = append(s.elems[:pos], s.elems[pos+1:]...)
	delete(s.index, hk)
	for k, p := range s.index {
		if p > pos {
			s.index[k] = p - 1
		}
	}
	return true, nil
}

// Clear removes every element.
func (s *Set) Clear() {
	s.elems = nil
	s.index = make(map[string]int)
}

// Elems returns the elements in insertion order. Shared slice; do not
// mutate.
func (s *Set) Elems() []Value { return s.elems }

// Len returns the number of values the range yields.
func (r *Range) Len() int64 {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	}
	if r.Stop >= r.Start {
		return 0
	}
	step := -r.Step
	return (r.Start - r.Stop + step - 1) / step
}

// At returns the i-th value without bounds checking beyond Len.
func (r *Range) At(i int64) int64 {
	return r.Start + i*r.Step
}

// NewInstance returns an attribute-less instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, attrs: make(map[string]Value)}
}

// GetAttr returns the instance attribute name, falling back to class-level
// attributes. Methods are resolved by the interpreter, not here.
func (i *Instance) GetAttr(name string) (Value, bool) {
	if v, ok := i.attrs[name]; ok {
		return v, true
	}
	if i.Class.Attrs != nil {
		if v, ok, _ := i.Class.Attrs.Get(Str{Value: name}); ok {
			return v, true
		}
	}
	return nil, false
}

// SetAttr binds an instance attribute, preserving first-assignment order.
func (i *Instance) SetAttr(name string, v Value) {
	if _, ok := i.attrs[name]; !ok {
		i.names = append(i.names, name)
	}
	i.attrs[name] = v
}

// AttrNames returns attribute names in first-assignment order.
func (i *Instance) AttrNames() []string { return i.names }

// Attr returns the instance-level attribute only.
func (i *Instance) Attr(name string) (Value, bool) {
	v, ok := i.attrs[name]
	return v, ok
}

// IsComposite reports whether v lives on the trace heap. Everything else,
// functions and ranges included, is inlined as a repr-only descriptor.
func IsComposite(v Value) bool {
	switch v.(type) {
	case *List, *Tuple, *Dict, *Set, *Instance:
		return true
	}
	return false
}

// Truthy implements Python truth testing.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case None:
		return false
	case Bool:
		return t.Value
	case Int:
		return t.Value != 0
	case Float:
		return t.Value != 0
	case Str:
		return t.Value != ""
	case *List:
		return len(t.Elems) > 0
	case *Tuple:
		return len(t.Elems) > 0
	case *Dict:
		return t.Len() > 0
	case *Set:
		return t.Len() > 0
	case *Range:
		return t.Len() > 0
	default:
		return true
	}
}

// Length returns len(v) for sized values.
func Length(v Value) (int64, error) {
	switch t := v.(type) {
	case Str:
		return int64(len([]rune(t.Value))), nil
	case *List:
		return int64(len(t.Elems)), nil
	case *Tuple:
		return int64(len(t.Elems)), nil
	case *Dict:
		return int64(t.Len()), nil
	case *Set:
		return int64(t.Len()), nil
	case *Range:
		return t.Len(), nil
	default:
		return 0, fmt.Errorf("object of type '%s' has no len()", v.TypeName())
	}
}
