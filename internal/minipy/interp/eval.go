package interp

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/ast"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
)

// maxRepeat bounds sequence repetition so a single `*` cannot allocate the
// worker to death before the memory limit trips.
const maxRepeat = 1 << 26

func (in *Interp) evalExpr(expr ast.Expr) (object.Value, error) {
	switch t := expr.(type) {
	case *ast.IntLit:
		return object.Int{Value: t.Value}, nil
	case *ast.FloatLit:
		return object.Float{Value: t.Value}, nil
	case *ast.StrLit:
		return object.Str{Value: t.Value}, nil
	case *ast.BoolLit:
		return object.Bool{Value: t.Value}, nil
	case *ast.NoneLit:
		return object.TheNone, nil

	case *ast.Ident:
		return in.lookupName(t.Name)

	case *ast.ListLit:
		elems, err := in.evalExprs(t.Elems)
		if err != nil {
			return nil, err
		}
		return &object.List{Elems: elems}, nil

	case *ast.TupleLit:
		elems, err := in.evalExprs(t.Elems)
		if err != nil {
			return nil, err
		}
		return &object.Tuple{Elems: elems}, nil

	case *ast.DictLit:
		d := object.NewDict()
		for i := range t.Keys {
			k, err := in.evalExpr(t.Keys[i])
			if err != nil {
				return nil, err
			}
			v, err := in.evalExpr(t.Values[i])
			if err != nil {
				return nil, err
			}
			if err := d.Set(k, v); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
		}
		return d, nil

	case *ast.SetLit:
		s := object.NewSet()
		for _, e := range t.Elems {
			v, err := in.evalExpr(e)
			if err != nil {
				return nil, err
			}
			if err := s.Add(v); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
		}
		return s, nil

	case *ast.Unary:
		return in.evalUnary(t)

	case *ast.Binary:
		a, err := in.evalExpr(t.Left)
		if err != nil {
			return nil, err
		}
		b, err := in.evalExpr(t.Right)
		if err != nil {
			return nil, err
		}
		return in.evalBinary(t.Op, a, b)

	case *ast.BoolOp:
		left, err := in.evalExpr(t.Left)
		if err != nil {
			return nil, err
		}
		// and/or return an operand, not a bool
		if t.Op == "and" {
			if !object.Truthy(left) {
				return left, nil
			}
			return in.evalExpr(t.Right)
		}
		if object.Truthy(left) {
			return left, nil
		}
		return in.evalExpr(t.Right)

	case *ast.Subscript:
		return in.evalSubscript(t)

	case *ast.Slice:
		return in.evalSlice(t)

	case *ast.Attribute:
		return in.evalAttribute(t)

	case *ast.Call:
		return in.evalCall(t)

	default:
		return nil, fmt.Errorf("interp: unhandled expression %T", expr)
	}
}

func (in *Interp) evalExprs(exprs []ast.Expr) ([]object.Value, error) {
	out := make([]object.Value, len(exprs))
	for i, e := range exprs {
		v, err := in.evalExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (in *Interp) lookupName(name string) (object.Value, error) {
	frame := in.curFrame()
	if frame.globals[name] {
		if v, ok := in.module.Get(name); ok {
			return v, nil
		}
	} else if v, ok := frame.Env.Get(name); ok {
		return v, nil
	}
	if v, ok := in.builtins[name]; ok {
		return v, nil
	}
	return nil, in.raisef("NameError", "name '%s' is not defined", name)
}

// pyErr converts an error from an object-layer helper into a raised
// exception of the given type. Errors that already carry Python or control
// semantics pass through untouched.
func (in *Interp) pyErr(err error, typ string) error {
	if err == nil {
		return nil
	}
	if asRaised(err) != nil || errors.Is(err, ErrInterrupted) {
		return err
	}
	var ha *hookAbort
	if errors.As(err, &ha) {
		return err
	}
	return in.raisef(typ, "%s", err.Error())
}

func (in *Interp) evalUnary(t *ast.Unary) (object.Value, error) {
	v, err := in.evalExpr(t.Operand)
	if err != nil {
		return nil, err
	}
	switch t.Op {
	case ast.OpNot:
		return object.Bool{Value: !object.Truthy(v)}, nil
	case ast.OpNeg:
		if i, ok := object.AsInt(v); ok {
			return object.Int{Value: -i}, nil
		}
		if f, ok := v.(object.Float); ok {
			return object.Float{Value: -f.Value}, nil
		}
		return nil, in.raisef("TypeError", "bad operand type for unary -: '%s'", v.TypeName())
	default:
		return nil, fmt.Errorf("interp: unhandled unary operator %q", t.Op)
	}
}

// --- Binary operators ---

func (in *Interp) evalBinary(op ast.BinaryOp, a, b object.Value) (object.Value, error) {
	switch op {
	case ast.OpAdd:
		return in.evalAdd(a, b)
	case ast.OpMul:
		if v, ok, err := in.evalRepeat(a, b); ok || err != nil {
			return v, err
		}
		return in.evalArith(op, a, b)
	case ast.OpSub, ast.OpDiv, ast.OpFloorDiv, ast.OpMod, ast.OpPow:
		return in.evalArith(op, a, b)
	case ast.OpEq:
		return object.Bool{Value: object.Equals(a, b)}, nil
	case ast.OpNotEq:
		return object.Bool{Value: !object.Equals(a, b)}, nil
	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return in.evalCompare(op, a, b)
	case ast.OpIn:
		ok, err := in.evalIn(a, b)
		if err != nil {
			return nil, err
		}
		return object.Bool{Value: ok}, nil
	case ast.OpNotIn:
		ok, err := in.evalIn(a, b)
		if err != nil {
			return nil, err
		}
		return object.Bool{Value: !ok}, nil
	default:
		return nil, fmt.Errorf("interp: unhandled binary operator %q", op)
	}
}

func (in *Interp) evalAdd(a, b object.Value) (object.Value, error) {
	if object.IsNumeric(a) && object.IsNumeric(b) {
		return in.evalArith(ast.OpAdd, a, b)
	}
	switch x := a.(type) {
	case object.Str:
		if y, ok := b.(object.Str); ok {
			return object.Str{Value: x.Value + y.Value}, nil
		}
		return nil, in.raisef("TypeError",
			`can only concatenate str (not "%s") to str`, b.TypeName())
	case *object.List:
		if y, ok := b.(*object.List); ok {
			elems := make([]object.Value, 0, len(x.Elems)+len(y.Elems))
			elems = append(elems, x.Elems...)
			elems = append(elems, y.Elems...)
			return &object.List{Elems: elems}, nil
		}
		return nil, in.raisef("TypeError",
			`can only concatenate list (not "%s") to list`, b.TypeName())
	case *object.Tuple:
		if y, ok := b.(*object.Tuple); ok {
			elems := make([]object.Value, 0, len(x.Elems)+len(y.Elems))
			elems = append(elems, x.Elems...)
			elems = append(elems, y.Elems...)
			return &object.Tuple{Elems: elems}, nil
		}
		return nil, in.raisef("TypeError",
			`can only concatenate tuple (not "%s") to tuple`, b.TypeName())
	}
	return nil, in.raisef("TypeError",
		"unsupported operand type(s) for +: '%s' and '%s'", a.TypeName(), b.TypeName())
}

// evalRepeat handles seq * int and int * seq. ok is false when neither
// operand is a repeatable sequence.
func (in *Interp) evalRepeat(a, b object.Value) (object.Value, bool, error) {
	seq, count := a, b
	if _, isInt := object.AsInt(a); isInt {
		seq, count = b, a
	}
	n, isInt := object.AsInt(count)
	if !isInt {
		return nil, false, nil
	}
	if n < 0 {
		n = 0
	}
	switch s := seq.(type) {
	case object.Str:
		if len(s.Value) > 0 && n > maxRepeat/int64(len(s.Value)) {
			return nil, true, in.raisef("OverflowError", "repeated string is too long")
		}
		return object.Str{Value: strings.Repeat(s.Value, int(n))}, true, nil
	case *object.List:
		elems, err := in.repeatElems(s.Elems, n)
		if err != nil {
			return nil, true, err
		}
		return &object.List{Elems: elems}, true, nil
	case *object.Tuple:
		elems, err := in.repeatElems(s.Elems, n)
		if err != nil {
			return nil, true, err
		}
		return &object.Tuple{Elems: elems}, true, nil
	}
	return nil, false, nil
}

func (in *Interp) repeatElems(elems []object.Value, n int64) ([]object.Value, error) {
	if len(elems) > 0 && n > maxRepeat/int64(len(elems)) {
		return nil, in.raisef("MemoryError", "")
	}
	out := make([]object.Value, 0, n*int64(len(elems)))
	for i := int64(0); i < n; i++ {
		out = append(out, elems...)
	}
	return out, nil
}

func (in *Interp) evalArith(op ast.BinaryOp, a, b object.Value) (object.Value, error) {
	ai, aInt := object.AsInt(a)
	bi, bInt := object.AsInt(b)
	if aInt && bInt {
		return in.intArith(op, ai, bi)
	}
	if object.IsNumeric(a) && object.IsNumeric(b) {
		af, _ := object.AsFloat(a)
		bf, _ := object.AsFloat(b)
		return in.floatArith(op, af, bf)
	}
	spelling := string(op)
	if op == ast.OpPow {
		spelling = "** or pow()"
	}
	return nil, in.raisef("TypeError",
		"unsupported operand type(s) for %s: '%s' and '%s'", spelling, a.TypeName(), b.TypeName())
}

// intArith implements int op int. Ints are 64-bit and wrap silently on
// overflow rather than widening to bignums.
func (in *Interp) intArith(op ast.BinaryOp, a, b int64) (object.Value, error) {
	switch op {
	case ast.OpAdd:
		return object.Int{Value: a + b}, nil
	case ast.OpSub:
		return object.Int{Value: a - b}, nil
	case ast.OpMul:
		return object.Int{Value: a * b}, nil
	case ast.OpDiv:
		if b == 0 {
			return nil, in.raisef("ZeroDivisionError", "division by zero")
		}
		return object.Float{Value: float64(a) / float64(b)}, nil
	case ast.OpFloorDiv:
		if b == 0 {
			return nil, in.raisef("ZeroDivisionError", "integer division or modulo by zero")
		}
		return object.Int{Value: floorDiv(a, b)}, nil
	case ast.OpMod:
		if b == 0 {
			return nil, in.raisef("ZeroDivisionError", "integer modulo by zero")
		}
		return object.Int{Value: pythonMod(a, b)}, nil
	case ast.OpPow:
		if b < 0 {
			return object.Float{Value: math.Pow(float64(a), float64(b))}, nil
		}
		return object.Int{Value: intPow(a, b)}, nil
	}
	return nil, fmt.Errorf("interp: unhandled int operator %q", op)
}

func (in *Interp) floatArith(op ast.BinaryOp, a, b float64) (object.Value, error) {
	switch op {
	case ast.OpAdd:
		return object.Float{Value: a + b}, nil
	case ast.OpSub:
		return object.Float{Value: a - b}, nil
	case ast.OpMul:
		return object.Float{Value: a * b}, nil
	case ast.OpDiv:
		if b == 0 {
			return nil, in.raisef("ZeroDivisionError", "float division by zero")
		}
		return object.Float{Value: a / b}, nil
	case ast.OpFloorDiv:
		if b == 0 {
			return nil, in.raisef("ZeroDivisionError", "float floor division by zero")
		}
		return object.Float{Value: math.Floor(a / b)}, nil
	case ast.OpMod:
		if b == 0 {
			return nil, in.raisef("ZeroDivisionError", "float modulo")
		}
		return object.Float{Value: pythonFmod(a, b)}, nil
	case ast.OpPow:
		return object.Float{Value: math.Pow(a, b)}, nil
	}
	return nil, fmt.Errorf("interp: unhandled float operator %q", op)
}

// floorDiv rounds toward negative infinity, as Python's // does.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// pythonMod gives the remainder the sign of the divisor.
func pythonMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func pythonFmod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func (in *Interp) evalCompare(op ast.BinaryOp, a, b object.Value) (object.Value, error) {
	var res bool
	var err error
	switch op {
	case ast.OpLt:
		res, err = object.Less(a, b)
	case ast.OpGt:
		res, err = object.Less(b, a)
	case ast.OpLtEq:
		res, err = object.Less(a, b)
		if err == nil && !res {
			res = object.Equals(a, b)
		}
	case ast.OpGtEq:
		res, err = object.Less(b, a)
		if err == nil && !res {
			res = object.Equals(a, b)
		}
	}
	if err != nil {
		return nil, in.raisef("TypeError",
			"'%s' not supported between instances of '%s' and '%s'",
			op, a.TypeName(), b.TypeName())
	}
	return object.Bool{Value: res}, nil
}

func (in *Interp) evalIn(needle, haystack object.Value) (bool, error) {
	switch c := haystack.(type) {
	case *object.List:
		return containsValue(c.Elems, needle), nil
	case *object.Tuple:
		return containsValue(c.Elems, needle), nil
	case object.Str:
		s, ok := needle.(object.Str)
		if !ok {
			return false, in.raisef("TypeError",
				"'in <string>' requires string as left operand, not %s", needle.TypeName())
		}
		return strings.Contains(c.Value, s.Value), nil
	case *object.Dict:
		_, found, err := c.Get(needle)
		if err != nil {
			return false, in.pyErr(err, "TypeError")
		}
		return found, nil
	case *object.Set:
		found, err := c.Has(needle)
		if err != nil {
			return false, in.pyErr(err, "TypeError")
		}
		return found, nil
	case *object.Range:
		i, ok := object.AsInt(needle)
		if !ok {
			f, isFloat := needle.(object.Float)
			if !isFloat || f.Value != math.Trunc(f.Value) {
				return false, nil
			}
			i = int64(f.Value)
		}
		return rangeContains(c, i), nil
	default:
		return false, in.raisef("TypeError",
			"argument of type '%s' is not iterable", haystack.TypeName())
	}
}

func containsValue(elems []object.Value, v object.Value) bool {
	for _, e := range elems {
		if object.Equals(e, v) {
			return true
		}
	}
	return false
}

func rangeContains(r *object.Range, i int64) bool {
	if r.Step > 0 {
		return i >= r.Start && i < r.Stop && (i-r.Start)%r.Step == 0
	}
	return i <= r.Start && i > r.Stop && (r.Start-i)%(-r.Step) == 0
}

// --- Subscripts and slices ---

func (in *Interp) evalSubscript(t *ast.Subscript) (object.Value, error) {
	target, err := in.evalExpr(t.Target)
	if err != nil {
		return nil, err
	}
	idx, err := in.evalExpr(t.Index)
	if err != nil {
		return nil, err
	}

	switch c := target.(type) {
	case *object.List:
		i, err := in.seqIndex(idx, int64(len(c.Elems)), "list")
		if err != nil {
			return nil, err
		}
		return c.Elems[i], nil
	case *object.Tuple:
		i, err := in.seqIndex(idx, int64(len(c.Elems)), "tuple")
		if err != nil {
			return nil, err
		}
		return c.Elems[i], nil
	case object.Str:
		runes := []rune(c.Value)
		i, ok := object.AsInt(idx)
		if !ok {
			return nil, in.raisef("TypeError", "string indices must be integers")
		}
		n := int64(len(runes))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, in.raisef("IndexError", "string index out of range")
		}
		return object.Str{Value: string(runes[i])}, nil
	case *object.Dict:
		v, found, err := c.Get(idx)
		if err != nil {
			return nil, in.pyErr(err, "TypeError")
		}
		if !found {
			return nil, in.raisef("KeyError", "%s", object.Repr(idx, in.reprHook()))
		}
		return v, nil
	case *object.Range:
		i, ok := object.AsInt(idx)
		if !ok {
			return nil, in.raisef("TypeError",
				"range indices must be integers or slices, not %s", idx.TypeName())
		}
		n := c.Len()
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, in.raisef("IndexError", "range object index out of range")
		}
		return object.Int{Value: c.At(i)}, nil
	default:
		return nil, in.raisef("TypeError",
			"'%s' object is not subscriptable", target.TypeName())
	}
}

func (in *Interp) seqIndex(idx object.Value, n int64, kind string) (int64, error) {
	i, ok := object.AsInt(idx)
	if !ok {
		return 0, in.raisef("TypeError",
			"%s indices must be integers or slices, not %s", kind, idx.TypeName())
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, in.raisef("IndexError", "%s index out of range", kind)
	}
	return i, nil
}

func (in *Interp) evalSlice(t *ast.Slice) (object.Value, error) {
	target, err := in.evalExpr(t.Target)
	if err != nil {
		return nil, err
	}
	n, sliceable := sliceLen(target)
	if !sliceable {
		if _, isDict := target.(*object.Dict); isDict {
			return nil, in.raisef("TypeError", "unhashable type: 'slice'")
		}
		return nil, in.raisef("TypeError",
			"'%s' object is not subscriptable", target.TypeName())
	}

	lo, hi, err := in.sliceBounds(t, n)
	if err != nil {
		return nil, err
	}
	switch c := target.(type) {
	case *object.List:
		return &object.List{Elems: append([]object.Value(nil), c.Elems[lo:hi]...)}, nil
	case *object.Tuple:
		return &object.Tuple{Elems: append([]object.Value(nil), c.Elems[lo:hi]...)}, nil
	case object.Str:
		runes := []rune(c.Value)
		return object.Str{Value: string(runes[lo:hi])}, nil
	}
	return nil, fmt.Errorf("interp: unhandled slice target %T", target)
}

func sliceLen(v object.Value) (int64, bool) {
	switch c := v.(type) {
	case *object.List:
		return int64(len(c.Elems)), true
	case *object.Tuple:
		return int64(len(c.Elems)), true
	case object.Str:
		return int64(len([]rune(c.Value))), true
	}
	return 0, false
}

// sliceBounds clamps both bounds into [0, n] with Python's negative-index
// wrapping; an inverted pair yields the empty slice.
func (in *Interp) sliceBounds(t *ast.Slice, n int64) (int64, int64, error) {
	lo := int64(0)
	hi := n
	if t.Low != nil {
		v, err := in.evalExpr(t.Low)
		if err != nil {
			return 0, 0, err
		}
		i, ok := object.AsInt(v)
		if !ok {
			return 0, 0, in.raisef("TypeError",
				"slice indices must be integers or None or have an __index__ method")
		}
		lo = i
	}
	if t.High != nil {
		v, err := in.evalExpr(t.High)
		if err != nil {
			return 0, 0, err
		}
		i, ok := object.AsInt(v)
		if !ok {
			return 0, 0, in.raisef("TypeError",
				"slice indices must be integers or None or have an __index__ method")
		}
		hi = i
	}
	if lo < 0 {
		lo += n
	}
	if hi < 0 {
		hi += n
	}
	lo = clampIndex(lo, n)
	hi = clampIndex(hi, n)
	if lo > hi {
		hi = lo
	}
	return lo, hi, nil
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// --- Attribute access ---

func (in *Interp) evalAttribute(t *ast.Attribute) (object.Value, error) {
	target, err := in.evalExpr(t.Target)
	if err != nil {
		return nil, err
	}
	switch obj := target.(type) {
	case *object.Instance:
		if v, ok := obj.Attr(t.Name); ok {
			return v, nil
		}
		if m, ok := obj.Class.Methods[t.Name]; ok {
			return &object.BoundMethod{Recv: obj, Fn: m}, nil
		}
		if v, ok := obj.GetAttr(t.Name); ok {
			return v, nil
		}
		return nil, in.raisef("AttributeError",
			"'%s' object has no attribute '%s'", obj.Class.Name, t.Name)
	case *object.Class:
		if m, ok := obj.Methods[t.Name]; ok {
			return m, nil
		}
		if v, ok, _ := obj.Attrs.Get(object.Str{Value: t.Name}); ok {
			return v, nil
		}
		return nil, in.raisef("AttributeError",
			"type object '%s' has no attribute '%s'", obj.Name, t.Name)
	default:
		if m, ok := in.builtinMethod(target, t.Name); ok {
			return m, nil
		}
		return nil, in.raisef("AttributeError",
			"'%s' object has no attribute '%s'", target.TypeName(), t.Name)
	}
}

// --- Calls ---

func (in *Interp) evalCall(t *ast.Call) (object.Value, error) {
	fn, err := in.evalExpr(t.Func)
	if err != nil {
		return nil, err
	}
	args, err := in.evalExprs(t.Args)
	if err != nil {
		return nil, err
	}

	switch f := fn.(type) {
	case *object.Builtin:
		v, err := f.Fn(args)
		if err != nil {
			return nil, in.pyErr(err, "TypeError")
		}
		return v, nil
	case *object.Function:
		return in.callUser(f, args)
	case *object.BoundMethod:
		return in.callUser(f.Fn, append([]object.Value{f.Recv}, args...))
	case *object.Class:
		return in.instantiate(f, args)
	default:
		return nil, in.raisef("TypeError", "'%s' object is not callable", fn.TypeName())
	}
}

func (in *Interp) instantiate(cls *object.Class, args []object.Value) (object.Value, error) {
	inst := object.NewInstance(cls)
	init, ok := cls.Methods["__init__"]
	if !ok {
		if len(args) > 0 {
			return nil, in.raisef("TypeError", "%s() takes no arguments", cls.Name)
		}
		return inst, nil
	}
	v, err := in.callUser(init, append([]object.Value{inst}, args...))
	if err != nil {
		return nil, err
	}
	if _, isNone := v.(object.None); !isNone {
		return nil, in.raisef("TypeError",
			"__init__() should return None, not '%s'", v.TypeName())
	}
	return inst, nil
}

// materialize snapshots any iterable into a slice. The error is a plain one
// for non-iterables; callers raise it with the message that fits the
// operation.
func (in *Interp) materialize(v object.Value) ([]object.Value, error) {
	switch s := v.(type) {
	case *object.List:
		return append([]object.Value(nil), s.Elems...), nil
	case *object.Tuple:
		return append([]object.Value(nil), s.Elems...), nil
	case object.Str:
		runes := []rune(s.Value)
		out := make([]object.Value, len(runes))
		for i, r := range runes {
			out[i] = object.Str{Value: string(r)}
		}
		return out, nil
	case *object.Dict:
		return append([]object.Value(nil), s.Keys()...), nil
	case *object.Set:
		return append([]object.Value(nil), s.Elems()...), nil
	case *object.Range:
		n := s.Len()
		out := make([]object.Value, 0, n)
		for i := int64(0); i < n; i++ {
			if i%4096 == 0 && in.interrupted.Load() {
				return nil, in.interruptErr()
			}
			out = append(out, object.Int{Value: s.At(i)})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("'%s' object is not iterable", v.TypeName())
	}
}
