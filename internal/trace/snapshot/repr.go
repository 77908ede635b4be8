package snapshot

import (
	"strconv"
	"strings"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
)

// Preview bounds. Containers show at most previewItems elements and nest at
// most previewDepth levels; long strings are cut to previewStrHead runes
// with an ellipsis before quoting.
const (
	previewDepth   = 2
	previewItems   = 6
	previewStrMax  = 60
	previewStrHead = 57
)

// preview renders the compact display string for v. It is intentionally
// lossier than a full repr: wide containers end in "...", deep nesting
// collapses to "...", and a broken __repr__ becomes a placeholder instead
// of an error.
func (s *Serializer) preview(v object.Value) string {
	return s.previewDepth(v, 0)
}

func (s *Serializer) previewDepth(v object.Value, depth int) string {
	if depth > previewDepth {
		return "..."
	}
	switch t := v.(type) {
	case object.None:
		return "None"
	case object.Bool:
		if t.Value {
			return "True"
		}
		return "False"
	case object.Int:
		return strconv.FormatInt(t.Value, 10)
	case object.Float:
		return object.FormatFloat(t.Value)
	case object.Str:
		runes := []rune(t.Value)
		if len(runes) > previewStrMax {
			return object.QuoteString(string(runes[:previewStrHead]) + "...")
		}
		return object.QuoteString(t.Value)
	case *object.List:
		return s.previewSeq(t.Elems, "[", "]", depth)
	case *object.Tuple:
		return s.previewSeq(t.Elems, "(", ")", depth)
	case *object.Set:
		return s.previewSeq(t.Elems(), "{", "}", depth)
	case *object.Dict:
		return s.previewDict(t, depth)
	case *object.Instance:
		return s.instanceRepr(t)
	case *object.Function:
		return "<function " + t.Name + ">"
	case *object.Builtin:
		if t.IsType {
			return "<class '" + t.Name + "'>"
		}
		return "<built-in function " + t.Name + ">"
	case *object.Class:
		return "<class '" + t.Name + "'>"
	case *object.BoundMethod:
		return "<bound method " + t.Recv.Class.Name + "." + t.Fn.Name + ">"
	case *object.Range:
		if t.Step == 1 {
			return "range(" + strconv.FormatInt(t.Start, 10) + ", " + strconv.FormatInt(t.Stop, 10) + ")"
		}
		return "range(" + strconv.FormatInt(t.Start, 10) + ", " + strconv.FormatInt(t.Stop, 10) +
			", " + strconv.FormatInt(t.Step, 10) + ")"
	case *object.ExcValue:
		if t.Msg == "" {
			return t.Type + "()"
		}
		return t.Type + "(" + object.QuoteString(t.Msg) + ")"
	default:
		return "<" + v.TypeName() + ">"
	}
}

func (s *Serializer) previewSeq(elems []object.Value, open, close string, depth int) string {
	parts := make([]string, 0, previewItems+1)
	for i, e := range elems {
		if i >= previewItems {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, s.previewDepth(e, depth+1))
	}
	return open + strings.Join(parts, ", ") + close
}

func (s *Serializer) previewDict(d *object.Dict, depth int) string {
	keys := d.Keys()
	vals := d.Values()
	parts := make([]string, 0, previewItems+1)
	for i := range keys {
		if i >= previewItems {
			parts = append(parts, "...")
			break
		}
		parts = append(parts,
			s.previewDepth(keys[i], depth+1)+": "+s.previewDepth(vals[i], depth+1))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// instanceRepr resolves a user-defined __repr__ through the caller; with no
// caller or no __repr__ it falls back to the default form, and a repr that
// raises becomes a placeholder rather than an error.
func (s *Serializer) instanceRepr(inst *object.Instance) string {
	if s.caller != nil {
		r, ok, err := s.caller.InstanceRepr(inst)
		if err != nil {
			return "<unrepr " + inst.Class.Name + ">"
		}
		if ok {
			return r
		}
	}
	return "<" + inst.Class.Name + " object>"
}
