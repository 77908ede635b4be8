package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// hashKey maps a hashable value to a string key for dict and set indexes.
// The encoding folds types the way Python's hash does: True and 1 and 1.0
// all land on the same key. Identity-hashed values (instances, functions)
// use their pointer, which never leaks into output because dicts and sets
// iterate in insertion order.
func hashKey(v Value) (string, error) {
	switch t := v.(type) {
	case None:
		return "n", nil
	case Bool:
		if t.Value {
			return "i:1", nil
		}
		return "i:0", nil
	case Int:
		return "i:" + strconv.FormatInt(t.Value, 10), nil
	case Float:
		if t.Value == math.Trunc(t.Value) && !math.IsInf(t.Value, 0) &&
			t.Value >= math.MinInt64 && t.Value <= math.MaxInt64 {
			return "i:" + strconv.FormatInt(int64(t.Value), 10), nil
		}
		return "f:" + strconv.FormatUint(math.Float64bits(t.Value), 16), nil
	case Str:
		return "s:" + t.Value, nil
	case *Tuple:
		parts := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			hk, err := hashKey(el)
			if err != nil {
				return "", err
			}
			parts[i] = hk
		}
		return "t:(" + strings.Join(parts, ",") + ")", nil
	case *Instance, *Function, *Builtin, *Class, *BoundMethod, *ExcValue:
		return fmt.Sprintf("o:%p", v), nil
	default:
		return "", fmt.Errorf("unhashable type: '%s'", v.TypeName())
	}
}
