package interp

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
)

// excNames are the exception types user code can construct, raise, and name
// in except clauses. Exception doubles as the catch-all base.
var excNames = map[string]bool{
	"Exception":         true,
	"ValueError":        true,
	"TypeError":         true,
	"KeyError":          true,
	"IndexError":        true,
	"ZeroDivisionError": true,
	"NameError":         true,
	"AttributeError":    true,
	"RuntimeError":      true,
	"RecursionError":    true,
	"OverflowError":     true,
	"MemoryError":       true,
	"StopIteration":     true,
}

func isExceptionName(name string) bool { return excNames[name] }

func (in *Interp) setupBuiltins() map[string]object.Value {
	b := make(map[string]object.Value)
	reg := func(name string, fn object.BuiltinFunc) {
		b[name] = &object.Builtin{Name: name, Fn: fn}
	}
	regType := func(name string, fn object.BuiltinFunc) {
		b[name] = &object.Builtin{Name: name, IsType: true, Fn: fn}
	}

	reg("print", in.builtinPrint)
	reg("len", in.builtinLen)
	reg("abs", in.builtinAbs)
	reg("min", in.builtinMinMax("min", false))
	reg("max", in.builtinMinMax("max", true))
	reg("sum", in.builtinSum)
	reg("sorted", in.builtinSorted)
	reg("round", in.builtinRound)
	reg("enumerate", in.builtinEnumerate)
	reg("zip", in.builtinZip)
	regType("type", in.builtinType)

	regType("int", in.builtinInt)
	regType("float", in.builtinFloat)
	regType("str", in.builtinStr)
	regType("bool", in.builtinBool)
	regType("list", in.builtinList)
	regType("dict", in.builtinDict)
	regType("set", in.builtinSet)
	regType("tuple", in.builtinTuple)
	regType("range", in.builtinRange)

	for name := range excNames {
		regType(name, in.excCtor(name))
	}
	return b
}

// --- argument plumbing ---

func (in *Interp) wantArgs(name string, args []object.Value, n int) error {
	if len(args) == n {
		return nil
	}
	phrase := "exactly one argument"
	if n != 1 {
		phrase = "exactly " + strconv.Itoa(n) + " arguments"
	}
	return in.raisef("TypeError", "%s() takes %s (%d given)", name, phrase, len(args))
}

func (in *Interp) wantArgRange(name string, args []object.Value, lo, hi int) error {
	if len(args) < lo {
		return in.raisef("TypeError",
			"%s expected at least %d argument, got %d", name, lo, len(args))
	}
	if len(args) > hi {
		return in.raisef("TypeError",
			"%s expected at most %d arguments, got %d", name, hi, len(args))
	}
	return nil
}

func (in *Interp) iterArg(v object.Value) ([]object.Value, error) {
	elems, err := in.materialize(v)
	if err != nil {
		return nil, in.pyErr(err, "TypeError")
	}
	return elems, nil
}

// --- core builtins ---

func (in *Interp) builtinPrint(args []object.Value) (object.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := in.strValue(a)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	// the capture writer enforces the stdout byte budget and never fails
	_, _ = io.WriteString(in.stdout, strings.Join(parts, " ")+"\n")
	return object.TheNone, nil
}

func (in *Interp) builtinLen(args []object.Value) (object.Value, error) {
	if err := in.wantArgs("len", args, 1); err != nil {
		return nil, err
	}
	n, err := object.Length(args[0])
	if err != nil {
		return nil, in.pyErr(err, "TypeError")
	}
	return object.Int{Value: n}, nil
}

func (in *Interp) builtinAbs(args []object.Value) (object.Value, error) {
	if err := in.wantArgs("abs", args, 1); err != nil {
		return nil, err
	}
	if i, ok := object.AsInt(args[0]); ok {
		if i < 0 {
			i = -i
		}
		return object.Int{Value: i}, nil
	}
	if f, ok := args[0].(object.Float); ok {
		return object.Float{Value: math.Abs(f.Value)}, nil
	}
	return nil, in.raisef("TypeError", "bad operand type for abs(): '%s'", args[0].TypeName())
}

func (in *Interp) builtinMinMax(name string, wantMax bool) object.BuiltinFunc {
	return func(args []object.Value) (object.Value, error) {
		var items []object.Value
		switch {
		case len(args) == 0:
			return nil, in.raisef("TypeError", "%s expected at least 1 argument, got 0", name)
		case len(args) == 1:
			elems, err := in.iterArg(args[0])
			if err != nil {
				return nil, err
			}
			if len(elems) == 0 {
				return nil, in.raisef("ValueError", "%s() arg is an empty sequence", name)
			}
			items = elems
		default:
			items = args
		}

		sym := "<"
		if wantMax {
			sym = ">"
		}
		best := items[0]
		for _, v := range items[1:] {
			a, b := v, best
			if wantMax {
				a, b = best, v
			}
			better, err := object.Less(a, b)
			if err != nil {
				return nil, in.raisef("TypeError",
					"'%s' not supported between instances of '%s' and '%s'",
					sym, v.TypeName(), best.TypeName())
			}
			if better {
				best = v
			}
		}
		return best, nil
	}
}

func (in *Interp) builtinSum(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("sum", args, 1, 2); err != nil {
		return nil, err
	}
	elems, err := in.iterArg(args[0])
	if err != nil {
		return nil, err
	}
	acc := object.Value(object.Int{Value: 0})
	if len(args) == 2 {
		acc = args[1]
	}
	for _, v := range elems {
		if _, isStr := v.(object.Str); isStr {
			return nil, in.raisef("TypeError",
				"sum() can't sum strings [use ''.join(seq) instead]")
		}
		acc, err = in.evalArith("+", acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// sortStable orders elems in place with Python's `<`, preserving the order
// of equal elements.
func (in *Interp) sortStable(elems []object.Value) error {
	var sortErr error
	sort.SliceStable(elems, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		less, err := object.Less(elems[i], elems[j])
		if err != nil {
			sortErr = err
			return false
		}
		return less
	})
	return in.pyErr(sortErr, "TypeError")
}

func (in *Interp) builtinSorted(args []object.Value) (object.Value, error) {
	if err := in.wantArgs("sorted", args, 1); err != nil {
		return nil, err
	}
	elems, err := in.iterArg(args[0])
	if err != nil {
		return nil, err
	}
	if err := in.sortStable(elems); err != nil {
		return nil, err
	}
	return &object.List{Elems: elems}, nil
}

func (in *Interp) builtinRound(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("round", args, 1, 2); err != nil {
		return nil, err
	}
	x := args[0]
	if !object.IsNumeric(x) {
		return nil, in.raisef("TypeError",
			"type %s doesn't define __round__ method", x.TypeName())
	}

	digits := int64(0)
	hasDigits := len(args) == 2
	if hasDigits {
		d, ok := object.AsInt(args[1])
		if !ok {
			return nil, in.raisef("TypeError",
				"'%s' object cannot be interpreted as an integer", args[1].TypeName())
		}
		digits = d
	}

	if i, ok := object.AsInt(x); ok {
		if !hasDigits || digits >= 0 {
			return object.Int{Value: i}, nil
		}
		shift := intPow(10, -digits)
		return object.Int{Value: int64(math.RoundToEven(float64(i)/float64(shift))) * shift}, nil
	}

	f := x.(object.Float).Value
	if !hasDigits {
		if math.IsNaN(f) {
			return nil, in.raisef("ValueError", "cannot convert float NaN to integer")
		}
		if math.IsInf(f, 0) {
			return nil, in.raisef("OverflowError", "cannot convert float infinity to integer")
		}
		return object.Int{Value: int64(math.RoundToEven(f))}, nil
	}
	shift := math.Pow(10, float64(digits))
	return object.Float{Value: math.RoundToEven(f*shift) / shift}, nil
}

func (in *Interp) builtinEnumerate(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("enumerate", args, 1, 2); err != nil {
		return nil, err
	}
	start := int64(0)
	if len(args) == 2 {
		s, ok := object.AsInt(args[1])
		if !ok {
			return nil, in.raisef("TypeError",
				"'%s' object cannot be interpreted as an integer", args[1].TypeName())
		}
		start = s
	}
	elems, err := in.iterArg(args[0])
	if err != nil {
		return nil, err
	}
	out := make([]object.Value, len(elems))
	for i, v := range elems {
		out[i] = &object.Tuple{Elems: []object.Value{object.Int{Value: start + int64(i)}, v}}
	}
	return &object.List{Elems: out}, nil
}

func (in *Interp) builtinZip(args []object.Value) (object.Value, error) {
	cols := make([][]object.Value, len(args))
	n := -1
	for i, a := range args {
		elems, err := in.iterArg(a)
		if err != nil {
			return nil, err
		}
		cols[i] = elems
		if n < 0 || len(elems) < n {
			n = len(elems)
		}
	}
	if n < 0 {
		n = 0
	}
	out := make([]object.Value, n)
	for i := 0; i < n; i++ {
		row := make([]object.Value, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		out[i] = &object.Tuple{Elems: row}
	}
	return &object.List{Elems: out}, nil
}

func (in *Interp) builtinType(args []object.Value) (object.Value, error) {
	if err := in.wantArgs("type", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *object.Instance:
		return v.Class, nil
	case *object.ExcValue:
		if t, ok := in.builtins[v.Type]; ok {
			return t, nil
		}
	default:
		if t, ok := in.builtins[v.TypeName()]; ok {
			return t, nil
		}
	}
	// types with no constructor of their own (NoneType, function, ...)
	name := args[0].TypeName()
	return &object.Builtin{
		Name:   name,
		IsType: true,
		Fn: func([]object.Value) (object.Value, error) {
			return nil, in.raisef("TypeError", "cannot create '%s' instances", name)
		},
	}, nil
}

// --- constructors ---

func (in *Interp) builtinInt(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("int", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.Int{Value: 0}, nil
	}
	switch v := args[0].(type) {
	case object.Int:
		return v, nil
	case object.Bool:
		i, _ := object.AsInt(v)
		return object.Int{Value: i}, nil
	case object.Float:
		if math.IsNaN(v.Value) {
			return nil, in.raisef("ValueError", "cannot convert float NaN to integer")
		}
		if math.IsInf(v.Value, 0) {
			return nil, in.raisef("OverflowError", "cannot convert float infinity to integer")
		}
		return object.Int{Value: int64(math.Trunc(v.Value))}, nil
	case object.Str:
		s := strings.TrimSpace(v.Value)
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, in.raisef("ValueError",
				"invalid literal for int() with base 10: %s", object.QuoteString(v.Value))
		}
		return object.Int{Value: i}, nil
	default:
		return nil, in.raisef("TypeError",
			"int() argument must be a string, a bytes-like object or a real number, not '%s'",
			args[0].TypeName())
	}
}

func (in *Interp) builtinFloat(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("float", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.Float{Value: 0}, nil
	}
	switch v := args[0].(type) {
	case object.Float:
		return v, nil
	case object.Int:
		return object.Float{Value: float64(v.Value)}, nil
	case object.Bool:
		i, _ := object.AsInt(v)
		return object.Float{Value: float64(i)}, nil
	case object.Str:
		s := strings.TrimSpace(v.Value)
		f, err := parseFloatLiteral(s)
		if err != nil {
			return nil, in.raisef("ValueError",
				"could not convert string to float: %s", object.QuoteString(v.Value))
		}
		return object.Float{Value: f}, nil
	default:
		return nil, in.raisef("TypeError",
			"float() argument must be a string or a real number, not '%s'", args[0].TypeName())
	}
}

func parseFloatLiteral(s string) (float64, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")) {
	case "inf", "infinity":
		if strings.HasPrefix(s, "-") {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	case "nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func (in *Interp) builtinStr(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("str", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.Str{Value: ""}, nil
	}
	s, err := in.strValue(args[0])
	if err != nil {
		return nil, err
	}
	return object.Str{Value: s}, nil
}

func (in *Interp) builtinBool(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("bool", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.Bool{Value: false}, nil
	}
	return object.Bool{Value: object.Truthy(args[0])}, nil
}

func (in *Interp) builtinList(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("list", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return &object.List{}, nil
	}
	elems, err := in.iterArg(args[0])
	if err != nil {
		return nil, err
	}
	return &object.List{Elems: elems}, nil
}

func (in *Interp) builtinTuple(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("tuple", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return &object.Tuple{}, nil
	}
	elems, err := in.iterArg(args[0])
	if err != nil {
		return nil, err
	}
	return &object.Tuple{Elems: elems}, nil
}

func (in *Interp) builtinSet(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("set", args, 0, 1); err != nil {
		return nil, err
	}
	s := object.NewSet()
	if len(args) == 0 {
		return s, nil
	}
	elems, err := in.iterArg(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range elems {
		if err := s.Add(v); err != nil {
			return nil, in.pyErr(err, "TypeError")
		}
	}
	return s, nil
}

func (in *Interp) builtinDict(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("dict", args, 0, 1); err != nil {
		return nil, err
	}
	d := object.NewDict()
	if len(args) == 0 {
		return d, nil
	}
	switch src := args[0].(type) {
	case *object.Dict:
		for i, k := range src.Keys() {
			if err := d.Set(k, src.Values()[i]); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
		}
		return d, nil
	default:
		elems, err := in.iterArg(args[0])
		if err != nil {
			return nil, err
		}
		for i, pair := range elems {
			kv, err := in.materialize(pair)
			if err != nil {
				return nil, in.raisef("TypeError",
					"cannot convert dictionary update sequence element #%d to a sequence", i)
			}
			if len(kv) != 2 {
				return nil, in.raisef("ValueError",
					"dictionary update sequence element #%d has length %d; 2 is required", i, len(kv))
			}
			if err := d.Set(kv[0], kv[1]); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
		}
		return d, nil
	}
}

func (in *Interp) builtinRange(args []object.Value) (object.Value, error) {
	if err := in.wantArgRange("range", args, 1, 3); err != nil {
		return nil, err
	}
	nums := make([]int64, len(args))
	for i, a := range args {
		n, ok := object.AsInt(a)
		if !ok {
			return nil, in.raisef("TypeError",
				"'%s' object cannot be interpreted as an integer", a.TypeName())
		}
		nums[i] = n
	}
	switch len(nums) {
	case 1:
		return &object.Range{Start: 0, Stop: nums[0], Step: 1}, nil
	case 2:
		return &object.Range{Start: nums[0], Stop: nums[1], Step: 1}, nil
	default:
		if nums[2] == 0 {
			return nil, in.raisef("ValueError", "range() arg 3 must not be zero")
		}
		return &object.Range{Start: nums[0], Stop: nums[1], Step: nums[2]}, nil
	}
}

// excCtor builds the constructor for one exception type. The message is the
// str() of the argument, or a tuple-ish listing for several.
func (in *Interp) excCtor(name string) object.BuiltinFunc {
	return func(args []object.Value) (object.Value, error) {
		switch len(args) {
		case 0:
			return &object.ExcValue{Type: name}, nil
		case 1:
			msg, err := in.strValue(args[0])
			if err != nil {
				return nil, err
			}
			return &object.ExcValue{Type: name, Msg: msg}, nil
		default:
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = object.Repr(a, in.reprHook())
			}
			return &object.ExcValue{Type: name, Msg: "(" + strings.Join(parts, ", ") + ")"}, nil
		}
	}
}

// --- methods on builtin types ---

// builtinMethod resolves attribute access on builtin values to a bound
// method closure, or reports that no such method exists.
func (in *Interp) builtinMethod(recv object.Value, name string) (object.Value, bool) {
	var fn object.BuiltinFunc
	switch r := recv.(type) {
	case object.Str:
		fn = in.strMethod(r, name)
	case *object.List:
		fn = in.listMethod(r, name)
	case *object.Dict:
		fn = in.dictMethod(r, name)
	case *object.Set:
		fn = in.setMethod(r, name)
	case *object.Tuple:
		fn = in.tupleMethod(r, name)
	}
	if fn == nil {
		return nil, false
	}
	return &object.Builtin{Name: name, Fn: fn}, true
}

func (in *Interp) wantStr(meth string, pos int, v object.Value) (string, error) {
	s, ok := v.(object.Str)
	if !ok {
		return "", in.raisef("TypeError",
			"%s() argument %d must be str, not %s", meth, pos, v.TypeName())
	}
	return s.Value, nil
}

func (in *Interp) strMethod(recv object.Str, name string) object.BuiltinFunc {
	s := recv.Value
	switch name {
	case "upper":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("upper", args, 0); err != nil {
				return nil, err
			}
			return object.Str{Value: strings.ToUpper(s)}, nil
		}
	case "lower":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("lower", args, 0); err != nil {
				return nil, err
			}
			return object.Str{Value: strings.ToLower(s)}, nil
		}
	case "strip":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgRange("strip", args, 0, 1); err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return object.Str{Value: strings.TrimSpace(s)}, nil
			}
			cutset, err := in.wantStr("strip", 1, args[0])
			if err != nil {
				return nil, err
			}
			return object.Str{Value: strings.Trim(s, cutset)}, nil
		}
	case "split":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgRange("split", args, 0, 1); err != nil {
				return nil, err
			}
			var parts []string
			if len(args) == 0 {
				parts = strings.Fields(s)
			} else {
				sep, err := in.wantStr("split", 1, args[0])
				if err != nil {
					return nil, err
				}
				if sep == "" {
					return nil, in.raisef("ValueError", "empty separator")
				}
				parts = strings.Split(s, sep)
			}
			out := make([]object.Value, len(parts))
			for i, p := range parts {
				out[i] = object.Str{Value: p}
			}
			return &object.List{Elems: out}, nil
		}
	case "join":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("join", args, 1); err != nil {
				return nil, err
			}
			elems, err := in.iterArg(args[0])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(elems))
			for i, e := range elems {
				es, ok := e.(object.Str)
				if !ok {
					return nil, in.raisef("TypeError",
						"sequence item %d: expected str instance, %s found", i, e.TypeName())
				}
				parts[i] = es.Value
			}
			return object.Str{Value: strings.Join(parts, s)}, nil
		}
	case "replace":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgRange("replace", args, 2, 3); err != nil {
				return nil, err
			}
			old, err := in.wantStr("replace", 1, args[0])
			if err != nil {
				return nil, err
			}
			repl, err := in.wantStr("replace", 2, args[1])
			if err != nil {
				return nil, err
			}
			count := -1
			if len(args) == 3 {
				c, ok := object.AsInt(args[2])
				if !ok {
					return nil, in.raisef("TypeError",
						"'%s' object cannot be interpreted as an integer", args[2].TypeName())
				}
				count = int(c)
			}
			return object.Str{Value: strings.Replace(s, old, repl, count)}, nil
		}
	case "find":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("find", args, 1); err != nil {
				return nil, err
			}
			sub, err := in.wantStr("find", 1, args[0])
			if err != nil {
				return nil, err
			}
			return object.Int{Value: runeIndex(s, sub)}, nil
		}
	case "count":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("count", args, 1); err != nil {
				return nil, err
			}
			sub, err := in.wantStr("count", 1, args[0])
			if err != nil {
				return nil, err
			}
			if sub == "" {
				return object.Int{Value: int64(len([]rune(s)) + 1)}, nil
			}
			return object.Int{Value: int64(strings.Count(s, sub))}, nil
		}
	case "startswith":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("startswith", args, 1); err != nil {
				return nil, err
			}
			prefix, err := in.wantStr("startswith", 1, args[0])
			if err != nil {
				return nil, err
			}
			return object.Bool{Value: strings.HasPrefix(s, prefix)}, nil
		}
	case "endswith":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("endswith", args, 1); err != nil {
				return nil, err
			}
			suffix, err := in.wantStr("endswith", 1, args[0])
			if err != nil {
				return nil, err
			}
			return object.Bool{Value: strings.HasSuffix(s, suffix)}, nil
		}
	case "isdigit":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("isdigit", args, 0); err != nil {
				return nil, err
			}
			return object.Bool{Value: allRunes(s, unicode.IsDigit)}, nil
		}
	case "isalpha":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("isalpha", args, 0); err != nil {
				return nil, err
			}
			return object.Bool{Value: allRunes(s, unicode.IsLetter)}, nil
		}
	}
	return nil
}

func runeIndex(s, sub string) int64 {
	byteIdx := strings.Index(s, sub)
	if byteIdx < 0 {
		return -1
	}
	return int64(len([]rune(s[:byteIdx])))
}

func allRunes(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

func (in *Interp) listMethod(recv *object.List, name string) object.BuiltinFunc {
	switch name {
	case "append":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("append", args, 1); err != nil {
				return nil, err
			}
			recv.Elems = append(recv.Elems, args[0])
			return object.TheNone, nil
		}
	case "pop":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgRange("pop", args, 0, 1); err != nil {
				return nil, err
			}
			n := int64(len(recv.Elems))
			if n == 0 {
				return nil, in.raisef("IndexError", "pop from empty list")
			}
			i := n - 1
			if len(args) == 1 {
				idx, ok := object.AsInt(args[0])
				if !ok {
					return nil, in.raisef("TypeError",
						"'%s' object cannot be interpreted as an integer", args[0].TypeName())
				}
				i = idx
				if i < 0 {
					i += n
				}
				if i < 0 || i >= n {
					return nil, in.raisef("IndexError", "pop index out of range")
				}
			}
			v := recv.Elems[i]
			recv.Elems = append(recv.Elems[:i], recv.Elems[i+1:]...)
			return v, nil
		}
	case "insert":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("insert", args, 2); err != nil {
				return nil, err
			}
			idx, ok := object.AsInt(args[0])
			if !ok {
				return nil, in.raisef("TypeError",
					"'%s' object cannot be interpreted as an integer", args[0].TypeName())
			}
			n := int64(len(recv.Elems))
			if idx < 0 {
				idx += n
			}
			idx = clampIndex(idx, n)
			recv.Elems = append(recv.Elems, nil)
			copy(recv.Elems[idx+1:], recv.Elems[idx:])
			recv.Elems[idx] = args[1]
			return object.TheNone, nil
		}
	case "remove":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("remove", args, 1); err != nil {
				return nil, err
			}
			for i, e := range recv.Elems {
				if object.Equals(e, args[0]) {
					recv.Elems = append(recv.Elems[:i], recv.Elems[i+1:]...)
					return object.TheNone, nil
				}
			}
			return nil, in.raisef("ValueError", "list.remove(x): x not in list")
		}
	case "extend":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("extend", args, 1); err != nil {
				return nil, err
			}
			elems, err := in.iterArg(args[0])
			if err != nil {
				return nil, err
			}
			recv.Elems = append(recv.Elems, elems...)
			return object.TheNone, nil
		}
	case "index":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("index", args, 1); err != nil {
				return nil, err
			}
			for i, e := range recv.Elems {
				if object.Equals(e, args[0]) {
					return object.Int{Value: int64(i)}, nil
				}
			}
			return nil, in.raisef("ValueError",
				"%s is not in list", object.Repr(args[0], in.reprHook()))
		}
	case "count":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("count", args, 1); err != nil {
				return nil, err
			}
			n := int64(0)
			for _, e := range recv.Elems {
				if object.Equals(e, args[0]) {
					n++
				}
			}
			return object.Int{Value: n}, nil
		}
	case "sort":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("sort", args, 0); err != nil {
				return nil, err
			}
			if err := in.sortStable(recv.Elems); err != nil {
				return nil, err
			}
			return object.TheNone, nil
		}
	case "reverse":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("reverse", args, 0); err != nil {
				return nil, err
			}
			for i, j := 0, len(recv.Elems)-1; i < j; i, j = i+1, j-1 {
				recv.Elems[i], recv.Elems[j] = recv.Elems[j], recv.Elems[i]
			}
			return object.TheNone, nil
		}
	case "clear":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("clear", args, 0); err != nil {
				return nil, err
			}
			recv.Elems = nil
			return object.TheNone, nil
		}
	case "copy":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("copy", args, 0); err != nil {
				return nil, err
			}
			return &object.List{Elems: append([]object.Value(nil), recv.Elems...)}, nil
		}
	}
	return nil
}

func (in *Interp) dictMethod(recv *object.Dict, name string) object.BuiltinFunc {
	switch name {
	case "get":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgRange("get", args, 1, 2); err != nil {
				return nil, err
			}
			v, found, err := recv.Get(args[0])
			if err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			if found {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return object.TheNone, nil
		}
	case "keys":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("keys", args, 0); err != nil {
				return nil, err
			}
			return &object.List{Elems: append([]object.Value(nil), recv.Keys()...)}, nil
		}
	case "values":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("values", args, 0); err != nil {
				return nil, err
			}
			return &object.List{Elems: append([]object.Value(nil), recv.Values()...)}, nil
		}
	case "items":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("items", args, 0); err != nil {
				return nil, err
			}
			keys := recv.Keys()
			vals := recv.Values()
			out := make([]object.Value, len(keys))
			for i := range keys {
				out[i] = &object.Tuple{Elems: []object.Value{keys[i], vals[i]}}
			}
			return &object.List{Elems: out}, nil
		}
	case "pop":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgRange("pop", args, 1, 2); err != nil {
				return nil, err
			}
			v, found, err := recv.Get(args[0])
			if err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			if found {
				if _, err := recv.Delete(args[0]); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return nil, in.raisef("KeyError", "%s", object.Repr(args[0], in.reprHook()))
		}
	case "update":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("update", args, 1); err != nil {
				return nil, err
			}
			other, ok := args[0].(*object.Dict)
			if !ok {
				return nil, in.raisef("TypeError",
					"'%s' object is not a mapping", args[0].TypeName())
			}
			for i, k := range other.Keys() {
				if err := recv.Set(k, other.Values()[i]); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
			}
			return object.TheNone, nil
		}
	case "clear":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("clear", args, 0); err != nil {
				return nil, err
			}
			recv.Clear()
			return object.TheNone, nil
		}
	case "copy":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("copy", args, 0); err != nil {
				return nil, err
			}
			d := object.NewDict()
			for i, k := range recv.Keys() {
				if err := d.Set(k, recv.Values()[i]); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
			}
			return d, nil
		}
	}
	return nil
}

func (in *Interp) setMethod(recv *object.Set, name string) object.BuiltinFunc {
	switch name {
	case "add":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("add", args, 1); err != nil {
				return nil, err
			}
			if err := recv.Add(args[0]); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			return object.TheNone, nil
		}
	case "remove":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("remove", args, 1); err != nil {
				return nil, err
			}
			found, err := recv.Remove(args[0])
			if err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			if !found {
				return nil, in.raisef("KeyError", "%s", object.Repr(args[0], in.reprHook()))
			}
			return object.TheNone, nil
		}
	case "discard":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("discard", args, 1); err != nil {
				return nil, err
			}
			if _, err := recv.Remove(args[0]); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			return object.TheNone, nil
		}
	case "union":
		return in.setCombine(recv, func(out, other *object.Set) error {
			for _, e := range other.Elems() {
				if err := out.Add(e); err != nil {
					return err
				}
			}
			return nil
		})
	case "intersection":
		return in.setCombine(recv, nil)
	case "difference":
		return in.setDifference(recv)
	case "clear":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("clear", args, 0); err != nil {
				return nil, err
			}
			recv.Clear()
			return object.TheNone, nil
		}
	case "copy":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("copy", args, 0); err != nil {
				return nil, err
			}
			out := object.NewSet()
			for _, e := range recv.Elems() {
				if err := out.Add(e); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
			}
			return out, nil
		}
	}
	return nil
}

// setCombine covers union (extend != nil) and intersection (extend == nil).
func (in *Interp) setCombine(recv *object.Set, extend func(out, other *object.Set) error) object.BuiltinFunc {
	return func(args []object.Value) (object.Value, error) {
		name := "union"
		if extend == nil {
			name = "intersection"
		}
		if err := in.wantArgs(name, args, 1); err != nil {
			return nil, err
		}
		other, ok := args[0].(*object.Set)
		if !ok {
			return nil, in.raisef("TypeError", "'%s' object is not a set", args[0].TypeName())
		}
		out := object.NewSet()
		if extend != nil {
			for _, e := range recv.Elems() {
				if err := out.Add(e); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
			}
			if err := extend(out, other); err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			return out, nil
		}
		for _, e := range recv.Elems() {
			has, err := other.Has(e)
			if err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			if has {
				if err := out.Add(e); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
			}
		}
		return out, nil
	}
}

func (in *Interp) setDifference(recv *object.Set) object.BuiltinFunc {
	return func(args []object.Value) (object.Value, error) {
		if err := in.wantArgs("difference", args, 1); err != nil {
			return nil, err
		}
		other, ok := args[0].(*object.Set)
		if !ok {
			return nil, in.raisef("TypeError", "'%s' object is not a set", args[0].TypeName())
		}
		out := object.NewSet()
		for _, e := range recv.Elems() {
			has, err := other.Has(e)
			if err != nil {
				return nil, in.pyErr(err, "TypeError")
			}
			if !has {
				if err := out.Add(e); err != nil {
					return nil, in.pyErr(err, "TypeError")
				}
			}
		}
		return out, nil
	}
}

func (in *Interp) tupleMethod(recv *object.Tuple, name string) object.BuiltinFunc {
	switch name {
	case "count":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("count", args, 1); err != nil {
				return nil, err
			}
			n := int64(0)
			for _, e := range recv.Elems {
				if object.Equals(e, args[0]) {
					n++
				}
			}
			return object.Int{Value: n}, nil
		}
	case "index":
		return func(args []object.Value) (object.Value, error) {
			if err := in.wantArgs("index", args, 1); err != nil {
				return nil, err
			}
			for i, e := range recv.Elems {
				if object.Equals(e, args[0]) {
					return object.Int{Value: int64(i)}, nil
				}
			}
			return nil, in.raisef("ValueError", "tuple.index(x): x not in tuple")
		}
	}
	return nil
}
