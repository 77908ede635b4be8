package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReprFunc renders an instance with a user-defined __repr__. It reports
// false when the class defines none, letting Repr fall back to the default
// form.
type ReprFunc func(*Instance) (string, bool)

// Repr renders v the way Python's repr() does, with cycle detection so
// self-referential containers come out as [...] instead of recursing.
func Repr(v Value, hook ReprFunc) string {
	return repr(v, hook, make(map[Value]bool))
}

// AsString renders v the way Python's str() does: strings bare, everything
// else as repr.
func AsString(v Value, hook ReprFunc) string {
	if s, ok := v.(Str); ok {
		return s.Value
	}
	if e, ok := v.(*ExcValue); ok {
		return e.Msg
	}
	return Repr(v, hook)
}

func repr(v Value, hook ReprFunc, seen map[Value]bool) string {
	switch t := v.(type) {
	case None:
		return "None"
	case Bool:
		if t.Value {
			return "True"
		}
		return "False"
	case Int:
		return strconv.FormatInt(t.Value, 10)
	case Float:
		return FormatFloat(t.Value)
	case Str:
		return QuoteString(t.Value)
	case *List:
		if seen[v] {
			return "[...]"
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			parts[i] = repr(el, hook, seen)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Tuple:
		if seen[v] {
			return "(...)"
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			parts[i] = repr(el, hook, seen)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *Dict:
		if seen[v] {
			return "{...}"
		}
		seen[v] = true
		defer delete(seen, v)
		keys, vals := t.Keys(), t.Values()
		parts := make([]string, len(keys))
		for i := range keys {
			parts[i] = repr(keys[i], hook, seen) + ": " + repr(vals[i], hook, seen)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Set:
		if t.Len() == 0 {
			return "set()"
		}
		if seen[v] {
			return "{...}"
		}
		seen[v] = true
		defer delete(seen, v)
		parts := make([]string, t.Len())
		for i, el := range t.Elems() {
			parts[i] = repr(el, hook, seen)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Range:
		if t.Step != 1 {
			return fmt.Sprintf("range(%d, %d, %d)", t.Start, t.Stop, t.Step)
		}
		return fmt.Sprintf("range(%d, %d)", t.Start, t.Stop)
	case *Function:
		return fmt.Sprintf("<function %s>", t.Name)
	case *Builtin:
		if t.IsType {
			return fmt.Sprintf("<class '%s'>", t.Name)
		}
		return fmt.Sprintf("<built-in function %s>", t.Name)
	case *Class:
		return fmt.Sprintf("<class '%s'>", t.Name)
	case *Instance:
		if hook != nil {
			if s, ok := hook(t); ok {
				return s
			}
		}
		return fmt.Sprintf("<%s object>", t.Class.Name)
	case *BoundMethod:
		return fmt.Sprintf("<bound method %s.%s>", t.Recv.Class.Name, t.Fn.Name)
	case *ExcValue:
		if t.Msg == "" {
			return t.Type + "()"
		}
		return t.Type + "(" + QuoteString(t.Msg) + ")"
	default:
		return fmt.Sprintf("<%s>", v.TypeName())
	}
}

// FormatFloat renders a float the way Python's repr does: shortest roundtrip
// digits, a trailing .0 on integral values, nan and inf spelled lowercase.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// QuoteString renders a string literal with Python quoting rules: single
// quotes unless the value contains one and no double quote.
func QuoteString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte(quote)
	return b.String()
}
