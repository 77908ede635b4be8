package object

import "fmt"

// AsInt extracts an integer, treating bools as 0/1 the way Python does.
func AsInt(v Value) (int64, bool) {
	switch t := v.(type) {
	case Int:
		return t.Value, true
	case Bool:
		if t.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsFloat extracts a float from any numeric value.
func AsFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case Float:
		return t.Value, true
	case Int:
		return float64(t.Value), true
	case Bool:
		if t.Value {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// IsNumeric reports whether v takes part in arithmetic.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case Int, Float, Bool:
		return true
	}
	return false
}

// Equals implements Python ==: numeric cross-type equality, structural
// equality for containers, identity for everything else.
func Equals(a, b Value) bool {
	if ai, aok := AsInt(a); aok {
		if bi, bok := AsInt(b); bok {
			return ai == bi
		}
	}
	if IsNumeric(a) && IsNumeric(b) {
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		return af == bf
	}

	switch at := a.(type) {
	case None:
		_, ok := b.(None)
		return ok
	case Str:
		bt, ok := b.(Str)
		return ok && at.Value == bt.Value
	case *List:
		bt, ok := b.(*List)
		return ok && elemsEqual(at.Elems, bt.Elems)
	case *Tuple:
		bt, ok := b.(*Tuple)
		return ok && elemsEqual(at.Elems, bt.Elems)
	case *Dict:
		bt, ok := b.(*Dict)
		if !ok || at.Len() != bt.Len() {
			return false
		}
		keys, vals := at.Keys(), at.Values()
		for i := range keys {
			bv, found, err := bt.Get(keys[i])
			if err != nil || !found || !Equals(vals[i], bv) {
				return false
			}
		}
		return true
	case *Set:
		bt, ok := b.(*Set)
		if !ok || at.Len() != bt.Len() {
			return false
		}
		for hk := range at.index {
			if _, found := bt.index[hk]; !found {
				return false
			}
		}
		return true
	case *Range:
		bt, ok := b.(*Range)
		return ok && at.Start == bt.Start && at.Stop == bt.Stop && at.Step == bt.Step
	default:
		return a == b
	}
}

func elemsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equals(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Less implements Python <. Comparable pairs: numbers, strings, and
// same-typed sequences compared lexicographically.
func Less(a, b Value) (bool, error) {
	if IsNumeric(a) && IsNumeric(b) {
		if ai, aok := AsInt(a); aok {
			if bi, bok := AsInt(b); bok {
				return ai < bi, nil
			}
		}
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		return af < bf, nil
	}

	switch at := a.(type) {
	case Str:
		if bt, ok := b.(Str); ok {
			return at.Value < bt.Value, nil
		}
	case *List:
		if bt, ok := b.(*List); ok {
			return elemsLess(at.Elems, bt.Elems)
		}
	case *Tuple:
		if bt, ok := b.(*Tuple); ok {
			return elemsLess(at.Elems, bt.Elems)
		}
	}
	return false, fmt.Errorf("'<' not supported between instances of '%s' and '%s'",
		a.TypeName(), b.TypeName())
}

func elemsLess(a, b []Value) (bool, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if Equals(a[i], b[i]) {
			continue
		}
		return Less(a[i], b[i])
	}
	return len(a) < len(b), nil
}
