package interp

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/ast"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/parser"
)

// eventLog records every event the interpreter delivers, optionally
// returning abort once the given number of events has been seen.
type eventLog struct {
	kinds  []string
	lines  []int
	depths []int
	rets   []string
	excs   []string
	abort  error
	after  int
}

func (l *eventLog) OnEvent(ev *Event) error {
	l.kinds = append(l.kinds, ev.Kind.String())
	l.lines = append(l.lines, ev.Line)
	l.depths = append(l.depths, len(ev.Stack))
	if ev.Kind == EventReturn {
		l.rets = append(l.rets, object.Repr(ev.Return, nil))
	}
	if ev.Kind == EventException && ev.Exc != nil {
		l.excs = append(l.excs, ev.Exc.Type+": "+ev.Exc.Value)
	}
	if l.abort != nil && len(l.kinds) >= l.after {
		return l.abort
	}
	return nil
}

type hookFunc func(*Event) error

func (f hookFunc) OnEvent(ev *Event) error { return f(ev) }

func parse(t *testing.T, source string) *ast.Module {
	t.Helper()
	mod, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return mod
}

func runSrc(t *testing.T, source string) (string, error) {
	t.Helper()
	mod := parse(t, source)
	var out strings.Builder
	err := New(Config{Stdout: &out}).Run(mod)
	return out.String(), err
}

func runOK(t *testing.T, source string) string {
	t.Helper()
	out, err := runSrc(t, source)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out
}

func runRaised(t *testing.T, source string) *RaisedError {
	t.Helper()
	_, err := runSrc(t, source)
	var raised *RaisedError
	if !errors.As(err, &raised) {
		t.Fatalf("Expected an uncaught exception, got %v", err)
	}
	return raised
}

func runLogged(t *testing.T, source string) (*eventLog, error) {
	t.Helper()
	mod := parse(t, source)
	log := &eventLog{}
	return log, New(Config{Hooks: log}).Run(mod)
}

func globalOf(t *testing.T, in *Interp, name string) object.Value {
	t.Helper()
	v, ok := in.Globals().Get(name)
	if !ok {
		t.Fatalf("Expected global %q to be bound", name)
	}
	return v
}

// --- expressions and operators ---

func TestArithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print(7 // 2, -7 // 2, 7 % 3, -7 % 3)", "3 -4 1 2\n"},
		{"print(7 / 2, 10 / 4, 9 / 3)", "3.5 2.5 3.0\n"},
		{"print(2 ** 10, 2 ** -2, (-2) ** 2, -2 ** 2)", "1024 0.25 4 -4\n"},
		{"print(1 + 2 * 3, (1 + 2) * 3)", "7 9\n"},
		{"print(7.5 // 2, 7.5 % 2, -7.5 // 2, -7.5 % 2)", "3.0 1.5 -4.0 0.5\n"},
		{"print(1 + 2.5, 2 * 1.5)", "3.5 3.0\n"},
		{"print(True + True, True * 3, abs(-5))", "2 3 5\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestFloatFormatting(t *testing.T) {
	got := runOK(t, "print(3.0, 2.5, 1e3, 0.1 + 0.2)")
	want := "3.0 2.5 1000.0 0.30000000000000004\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got = runOK(t, "print(float('nan'), float('inf'), -float('inf'))")
	if got != "nan inf -inf\n" {
		t.Errorf("Expected lowercase nan/inf, got %q", got)
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print(1 < 2, 2 <= 2, 3 > 4, 3 >= 4, 1 == 1.0, 1 != 2)", "True True False False True True\n"},
		{"print('a' < 'b', [1, 2] < [1, 3], (1, 2) == (1, 2))", "True True True\n"},
		{"print(None == None, None == 0, [1] == [1])", "True False True\n"},
		{"print(not True, not 0, not 'a', not [])", "False True False True\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestBoolOperatorsReturnOperands(t *testing.T) {
	got := runOK(t, "print(0 or 'x', 1 and 'y', 0 and 'z', None or 5)")
	if got != "x y 0 5\n" {
		t.Errorf("Expected operand values from and/or, got %q", got)
	}
}

func TestShortCircuit(t *testing.T) {
	source := `def boom():
    raise ValueError('no')

print(False and boom(), True or boom())`
	if got := runOK(t, source); got != "False True\n" {
		t.Errorf("Expected short-circuit to skip boom(), got %q", got)
	}
}

func TestMembership(t *testing.T) {
	got := runOK(t, "print(1 in [1], 1 not in [1], 'k' in {'k': 1}, 2 in {1, 2}, 'ell' in 'hello')")
	if got != "True False True True True\n" {
		t.Errorf("Expected membership results, got %q", got)
	}
}

// --- strings ---

func TestStringOps(t *testing.T) {
	source := `s = 'hello'
print(s.upper(), s + ' ' + 'world', s * 2)
print(s[1], s[-1], s[1:3], s[:2], s[3:])
print(len(s), len('héllo'))`
	want := "HELLO hello world hellohello\n" +
		"e o el he llo\n" +
		"5 5\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStringMethods(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print('a,b,c'.split(','))", "['a', 'b', 'c']\n"},
		{"print('a b  c'.split())", "['a', 'b', 'c']\n"},
		{"print('-'.join(['x', 'y']))", "x-y\n"},
		{"print('  pad  '.strip())", "pad\n"},
		{"print('hello'.replace('l', 'L'))", "heLLo\n"},
		{"print('hello'.find('lo'), 'hello'.find('z'), 'hello'.count('l'))", "3 -1 2\n"},
		{"print('abc'.startswith('ab'), 'abc'.endswith('z'))", "True False\n"},
		{"print('123'.isdigit(), 'abc'.isalpha(), ''.isdigit())", "True True False\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestStringAugAssign(t *testing.T) {
	if got := runOK(t, "s = 'a'\ns += 'b'\nprint(s)"); got != "ab\n" {
		t.Errorf("Expected %q, got %q", "ab\n", got)
	}
}

// --- lists ---

func TestListMethods(t *testing.T) {
	source := `x = [3, 1]
x.append(2)
x.sort()
print(x)
print(x.pop(), x)
x.insert(0, 9)
x.remove(1)
print(x, x.index(2), x.count(9))
x.extend([5, 6])
y = x.copy()
y.reverse()
print(x, y)`
	want := "[1, 2, 3]\n" +
		"3 [1, 2]\n" +
		"[9, 2] 1 1\n" +
		"[9, 2, 5, 6] [6, 5, 2, 9]\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestListIndexingAndConcat(t *testing.T) {
	source := `x = [1, 2]
x[0] = 9
x[-1] = 8
print(x, [1, 2] + [3], [0] * 3)`
	if got := runOK(t, source); got != "[9, 8] [1, 2, 3] [0, 0, 0]\n" {
		t.Errorf("Expected list mutation and concat, got %q", got)
	}
}

func TestListAliasing(t *testing.T) {
	source := `a = [1]
b = a
a += [2]
a[0] = 0
print(a, b, a == b)`
	if got := runOK(t, source); got != "[0, 2] [0, 2] True\n" {
		t.Errorf("Expected += to extend the shared list, got %q", got)
	}
}

func TestSubscriptAugAssign(t *testing.T) {
	source := `d = {'n': 1}
d['n'] += 2
x = [1, 2]
x[0] += 10
print(d['n'], x)`
	if got := runOK(t, source); got != "3 [11, 2]\n" {
		t.Errorf("Expected augmented subscript assignment, got %q", got)
	}
}

// --- dicts and sets ---

func TestDictOps(t *testing.T) {
	source := `d = {'a': 1, 'b': 2}
d['c'] = 3
print(d)
print(d['a'], d.get('z'), d.get('z', 9))
print(d.keys(), d.values())
print(d.items())
print(d.pop('a'), d)
d.update({'b': 20, 'd': 4})
print(d, len(d))`
	want := "{'a': 1, 'b': 2, 'c': 3}\n" +
		"1 None 9\n" +
		"['a', 'b', 'c'] [1, 2, 3]\n" +
		"[('a', 1), ('b', 2), ('c', 3)]\n" +
		"1 {'b': 2, 'c': 3}\n" +
		"{'b': 20, 'c': 3, 'd': 4} 3\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDictInsertionOrder(t *testing.T) {
	// replacing a value keeps the key's original position
	source := `d = {'x': 1, 'y': 2}
d['x'] = 10
print(d)`
	if got := runOK(t, source); got != "{'x': 10, 'y': 2}\n" {
		t.Errorf("Expected key order preserved on replace, got %q", got)
	}
}

func TestSetOps(t *testing.T) {
	source := `s = {3, 1, 2, 1}
print(len(s), sorted(s))
s.add(4)
s.discard(9)
s.remove(1)
print(sorted(s))
a = {1, 2, 3}
b = {2, 3, 4}
print(sorted(a.union(b)), sorted(a.intersection(b)), sorted(a.difference(b)))
print(set([1, 1, 2]), set())`
	want := "3 [1, 2, 3]\n" +
		"[2, 3, 4]\n" +
		"[1, 2, 3, 4] [2, 3] [1]\n" +
		"{1, 2} set()\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// --- tuples ---

func TestTuples(t *testing.T) {
	source := `t = (1, 2, 3)
print(t[0], t[-1], len(t))
print(t + (4,), t * 2, (1,), ())
print(t.count(2), t.index(3))
a, b = 1, 2
a, b = b, a
print(a, b)`
	want := "1 3 3\n" +
		"(1, 2, 3, 4) (1, 2, 3, 1, 2, 3) (1,) ()\n" +
		"1 2\n" +
		"2 1\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// --- slices ---

func TestSlices(t *testing.T) {
	source := `x = [0, 1, 2, 3, 4]
print(x[1:3], x[:2], x[3:], x[:])
print(x[-2:], x[:-3], x[10:], x[3:1])
print('hello'[1:4], (1, 2, 3)[1:])`
	want := "[1, 2] [0, 1] [3, 4] [0, 1, 2, 3, 4]\n" +
		"[3, 4] [0, 1] [] []\n" +
		"ell (2, 3)\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// --- control flow ---

func TestControlFlow(t *testing.T) {
	source := `total = 0
for i in range(5):
    if i == 3:
        continue
    total = total + i
n = 0
while True:
    n = n + 1
    if n == 3:
        break
print(total, n)`
	if got := runOK(t, source); got != "7 3\n" {
		t.Errorf("Expected loop result %q, got %q", "7 3\n", got)
	}
}

func TestElifChain(t *testing.T) {
	source := `x = 5
if x < 3:
    print('small')
elif x < 10:
    print('mid')
else:
    print('big')`
	if got := runOK(t, source); got != "mid\n" {
		t.Errorf("Expected elif branch, got %q", got)
	}
}

func TestForTargets(t *testing.T) {
	source := `out = []
for ch in 'abc':
    out.append(ch.upper())
d = {'x': 1, 'y': 2}
ks = []
for k in d:
    ks.append(k)
for k, v in d.items():
    print(k, v)
print(out, ks)`
	want := "x 1\ny 2\n['A', 'B', 'C'] ['x', 'y']\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestForLoopOverLiveList(t *testing.T) {
	// lists are iterated by index, so growth during the loop is visited
	source := `x = [1, 2]
out = []
for v in x:
    out.append(v)
    if v == 1:
        x.append(3)
print(out)`
	if got := runOK(t, source); got != "[1, 2, 3]\n" {
		t.Errorf("Expected live list iteration, got %q", got)
	}
}

func TestRangeSemantics(t *testing.T) {
	source := `print(range(3), range(2, 8, 2))
print(list(range(2, 8, 2)), list(range(5, 0, -2)))
print(list(range(3, 3)), list(range(5, 2)))
r = range(2, 10, 2)
print(r[1], r[-1], len(r))`
	want := "range(0, 3) range(2, 8, 2)\n" +
		"[2, 4, 6] [5, 3, 1]\n" +
		"[] []\n" +
		"4 8 4\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// --- functions ---

func TestFunctions(t *testing.T) {
	source := `def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)

def make_adder(n):
    def add(x):
        return x + n
    return add

def noop():
    pass

add3 = make_adder(3)
print(fact(5), add3(4), noop())`
	if got := runOK(t, source); got != "120 7 None\n" {
		t.Errorf("Expected %q, got %q", "120 7 None\n", got)
	}
}

func TestClosureSharesState(t *testing.T) {
	source := `def counter():
    n = [0]
    def bump():
        n[0] = n[0] + 1
        return n[0]
    return bump

c = counter()
print(c(), c(), c())`
	if got := runOK(t, source); got != "1 2 3\n" {
		t.Errorf("Expected closure to share state, got %q", got)
	}
}

func TestFunctionArity(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{
			"too many",
			"def f(a, b):\n    return a\nf(1, 2, 3)",
			"f() takes 2 positional arguments but 3 were given",
		},
		{
			"one missing",
			"def f(a, b):\n    return a\nf(1)",
			"f() missing 1 required positional argument: 'b'",
		},
		{
			"two missing",
			"def f(a, b):\n    return a\nf()",
			"f() missing 2 required positional arguments: 'a' and 'b'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raised := runRaised(t, tt.source)
			if raised.Type != "TypeError" {
				t.Errorf("Expected TypeError, got %s", raised.Type)
			}
			if raised.Msg != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, raised.Msg)
			}
		})
	}
}

func TestRecursionLimit(t *testing.T) {
	raised := runRaised(t, "def f():\n    return f()\nf()")
	if raised.Type != "RecursionError" {
		t.Errorf("Expected RecursionError, got %s", raised.Type)
	}
	if raised.Msg != "maximum recursion depth exceeded" {
		t.Errorf("Expected recursion message, got %q", raised.Msg)
	}
}

func TestGlobalStatement(t *testing.T) {
	source := `count = 0

def bump():
    global count
    count = count + 1

bump()
bump()
print(count)`
	if got := runOK(t, source); got != "2\n" {
		t.Errorf("Expected global rebinding, got %q", got)
	}
}

func TestAssignmentIsLocalWithoutGlobal(t *testing.T) {
	source := `x = 1

def f():
    x = 2

f()
print(x)`
	if got := runOK(t, source); got != "1\n" {
		t.Errorf("Expected module x untouched, got %q", got)
	}
}

// --- classes ---

func TestClasses(t *testing.T) {
	source := `class Point:
    def __init__(self, x, y):
        self.x = x
        self.y = y
    def dist2(self):
        return self.x * self.x + self.y * self.y
    def __repr__(self):
        return 'Point(' + str(self.x) + ', ' + str(self.y) + ')'

p = Point(3, 4)
print(p.x, p.dist2())
print(p)
p.x = 10
print(p.dist2())
m = p.dist2
print(m(), m)`
	want := "3 25\n" +
		"Point(3, 4)\n" +
		"116\n" +
		"116 <bound method Point.dist2>\n"
	if got := runOK(t, source); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestClassAttributes(t *testing.T) {
	source := `class C:
    kind = 'widget'
    def tag(self):
        return self.kind

c = C()
print(c.kind, C.kind, c.tag(), C)`
	if got := runOK(t, source); got != "widget widget widget <class 'C'>\n" {
		t.Errorf("Expected class attribute lookup, got %q", got)
	}
}

func TestDefaultInstanceRepr(t *testing.T) {
	source := `class D:
    def __init__(self):
        self.v = 1

print(D())`
	if got := runOK(t, source); got != "<D object>\n" {
		t.Errorf("Expected default instance repr, got %q", got)
	}
}

func TestClassErrors(t *testing.T) {
	t.Run("no init takes no arguments", func(t *testing.T) {
		raised := runRaised(t, "class E:\n    pass\nE(5)")
		if raised.Type != "TypeError" || raised.Msg != "E() takes no arguments" {
			t.Errorf("Expected E() takes no arguments, got %s: %s", raised.Type, raised.Msg)
		}
	})
	t.Run("init must return None", func(t *testing.T) {
		raised := runRaised(t, "class F:\n    def __init__(self):\n        return 5\nF()")
		if raised.Type != "TypeError" || raised.Msg != "__init__() should return None, not 'int'" {
			t.Errorf("Expected __init__ return check, got %s: %s", raised.Type, raised.Msg)
		}
	})
	t.Run("missing attribute", func(t *testing.T) {
		raised := runRaised(t, "class G:\n    pass\nG().nope")
		if raised.Type != "AttributeError" || raised.Msg != "'G' object has no attribute 'nope'" {
			t.Errorf("Expected attribute error, got %s: %s", raised.Type, raised.Msg)
		}
	})
}

func TestInstanceRepr(t *testing.T) {
	source := `class A:
    def __repr__(self):
        return 'A!'

class B:
    def __init__(self):
        self.v = 1

class C:
    def __repr__(self):
        return 42

a = A()
b = B()
c = C()`
	mod := parse(t, source)
	in := New(Config{})
	if err := in.Run(mod); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	inst := func(name string) *object.Instance {
		v := globalOf(t, in, name)
		i, ok := v.(*object.Instance)
		if !ok {
			t.Fatalf("Expected %q to be an instance, got %T", name, v)
		}
		return i
	}

	s, ok, err := in.InstanceRepr(inst("a"))
	if err != nil || !ok || s != "A!" {
		t.Errorf("Expected custom repr A!, got %q ok=%v err=%v", s, ok, err)
	}
	_, ok, err = in.InstanceRepr(inst("b"))
	if err != nil || ok {
		t.Errorf("Expected no __repr__ on B, got ok=%v err=%v", ok, err)
	}
	_, ok, err = in.InstanceRepr(inst("c"))
	if !ok || err == nil {
		t.Fatalf("Expected failing __repr__ on C, got ok=%v err=%v", ok, err)
	}
	if err.Error() != "__repr__ returned non-string (type int)" {
		t.Errorf("Expected non-string repr error, got %q", err.Error())
	}
}

func TestBrokenReprInPrint(t *testing.T) {
	raised := runRaised(t, "class Bad:\n    def __repr__(self):\n        raise ValueError('nope')\nprint(Bad())")
	if raised.Type != "ValueError" || raised.Msg != "nope" {
		t.Errorf("Expected raised repr error to propagate, got %s: %s", raised.Type, raised.Msg)
	}

	raised = runRaised(t, "class Odd:\n    def __repr__(self):\n        return 7\nprint(Odd())")
	if raised.Type != "TypeError" || raised.Msg != "__repr__ returned non-string (type int)" {
		t.Errorf("Expected non-string repr TypeError, got %s: %s", raised.Type, raised.Msg)
	}
}

// --- exceptions ---

func TestTryExcept(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"matching handler",
			"try:\n    x = 1 / 0\nexcept ZeroDivisionError:\n    print('caught')\nprint('after')",
			"caught\nafter\n",
		},
		{
			"exception value binding",
			"try:\n    raise ValueError('boom')\nexcept ValueError as e:\n    print(e, type(e), [e])",
			"boom <class 'ValueError'> [ValueError('boom')]\n",
		},
		{
			"internal errors carry messages",
			"try:\n    nope\nexcept NameError as e:\n    print(e)",
			"name 'nope' is not defined\n",
		},
		{
			"first matching handler wins",
			"try:\n    x = {}['k']\nexcept ValueError:\n    print('wrong')\nexcept KeyError:\n    print('right')",
			"right\n",
		},
		{
			"Exception catches everything",
			"try:\n    raise TypeError('x')\nexcept Exception:\n    print('generic')",
			"generic\n",
		},
		{
			"bare except catches everything",
			"try:\n    x = 1 / 0\nexcept:\n    print('any')",
			"any\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runOK(t, tt.source); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUnmatchedHandlerPropagates(t *testing.T) {
	raised := runRaised(t, "try:\n    raise ValueError('v')\nexcept KeyError:\n    print('no')")
	if raised.Type != "ValueError" || raised.Msg != "v" {
		t.Errorf("Expected ValueError to escape, got %s: %s", raised.Type, raised.Msg)
	}
}

func TestFinally(t *testing.T) {
	t.Run("runs on clean exit", func(t *testing.T) {
		got := runOK(t, "try:\n    print('body')\nfinally:\n    print('cleanup')")
		if got != "body\ncleanup\n" {
			t.Errorf("Expected body then cleanup, got %q", got)
		}
	})
	t.Run("runs before handler in outer try", func(t *testing.T) {
		source := `try:
    try:
        raise ValueError('x')
    finally:
        print('cleanup')
except ValueError:
    print('caught')`
		if got := runOK(t, source); got != "cleanup\ncaught\n" {
			t.Errorf("Expected cleanup then caught, got %q", got)
		}
	})
	t.Run("return in finally replaces pending return", func(t *testing.T) {
		source := `def f():
    try:
        return 1
    finally:
        return 2

print(f())`
		if got := runOK(t, source); got != "2\n" {
			t.Errorf("Expected finally's return to win, got %q", got)
		}
	})
	t.Run("break in finally swallows the exception", func(t *testing.T) {
		source := `for i in range(3):
    try:
        raise ValueError('x')
    finally:
        break
print('done')`
		if got := runOK(t, source); got != "done\n" {
			t.Errorf("Expected exception swallowed by break, got %q", got)
		}
	})
}

func TestBareRaise(t *testing.T) {
	t.Run("re-raises the active exception", func(t *testing.T) {
		raised := runRaised(t, "try:\n    raise ValueError('inner')\nexcept ValueError:\n    raise")
		if raised.Type != "ValueError" || raised.Msg != "inner" {
			t.Errorf("Expected re-raised ValueError, got %s: %s", raised.Type, raised.Msg)
		}
	})
	t.Run("outside a handler", func(t *testing.T) {
		raised := runRaised(t, "raise")
		if raised.Type != "RuntimeError" || raised.Msg != "No active exception to re-raise" {
			t.Errorf("Expected RuntimeError, got %s: %s", raised.Type, raised.Msg)
		}
	})
}

func TestRaiseForms(t *testing.T) {
	t.Run("bare type", func(t *testing.T) {
		raised := runRaised(t, "raise ValueError")
		if raised.Type != "ValueError" || raised.Msg != "" {
			t.Errorf("Expected message-less ValueError, got %s: %q", raised.Type, raised.Msg)
		}
		if raised.Error() != "ValueError" {
			t.Errorf("Expected error string %q, got %q", "ValueError", raised.Error())
		}
	})
	t.Run("non-exception value", func(t *testing.T) {
		raised := runRaised(t, "raise 42")
		if raised.Type != "TypeError" || raised.Msg != "exceptions must derive from BaseException" {
			t.Errorf("Expected derive check, got %s: %s", raised.Type, raised.Msg)
		}
	})
	t.Run("constructed value", func(t *testing.T) {
		raised := runRaised(t, "e = KeyError('gone')\nraise e")
		if raised.Type != "KeyError" || raised.Msg != "gone" {
			t.Errorf("Expected KeyError gone, got %s: %s", raised.Type, raised.Msg)
		}
	})
}

func TestUncaughtTraceback(t *testing.T) {
	source := `def inner():
    raise ValueError('boom')

def outer():
    inner()

outer()`
	raised := runRaised(t, source)
	if raised.Type != "ValueError" || raised.Msg != "boom" {
		t.Errorf("Expected ValueError boom, got %s: %s", raised.Type, raised.Msg)
	}
	if raised.Line != 2 {
		t.Errorf("Expected raise line 2, got %d", raised.Line)
	}
	if raised.Error() != "ValueError: boom" {
		t.Errorf("Expected error string %q, got %q", "ValueError: boom", raised.Error())
	}

	want := "Traceback (most recent call last):\n" +
		"  File \"<user_code>\", line 7, in <module>\n" +
		"  File \"<user_code>\", line 5, in outer\n" +
		"  File \"<user_code>\", line 2, in inner\n" +
		"ValueError: boom\n"
	if got := raised.Traceback(); got != want {
		t.Errorf("Expected traceback:\n%s\ngot:\n%s", want, got)
	}
}

// --- runtime error messages ---

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantType string
		wantMsg  string
	}{
		{"undefined name", "ghost", "NameError", "name 'ghost' is not defined"},
		{"int plus str", "x = 1 + 'a'", "TypeError", "unsupported operand type(s) for +: 'int' and 'str'"},
		{"str concat", "x = 'a' + 1", "TypeError", `can only concatenate str (not "int") to str`},
		{"list concat", "x = [1] + (2,)", "TypeError", `can only concatenate list (not "tuple") to list`},
		{"unary minus", "x = -'a'", "TypeError", "bad operand type for unary -: 'str'"},
		{"len of int", "len(5)", "TypeError", "object of type 'int' has no len()"},
		{"subscript int", "x = 5[0]", "TypeError", "'int' object is not subscriptable"},
		{"call int", "x = 5(1)", "TypeError", "'int' object is not callable"},
		{"iterate int", "for i in 5:\n    pass", "TypeError", "'int' object is not iterable"},
		{"order mixed types", "x = 1 < 'a'", "TypeError", "'<' not supported between instances of 'int' and 'str'"},
		{"list index", "x = [1, 2][5]", "IndexError", "list index out of range"},
		{"string index", "x = 'ab'[9]", "IndexError", "string index out of range"},
		{"range index", "x = range(3)[10]", "IndexError", "range object index out of range"},
		{"missing key int", "x = {1: 2}[3]", "KeyError", "3"},
		{"missing key str", "d = {}\nx = d['x']", "KeyError", "'x'"},
		{"int division", "x = 1 / 0", "ZeroDivisionError", "division by zero"},
		{"floor division", "x = 1 // 0", "ZeroDivisionError", "integer division or modulo by zero"},
		{"int modulo", "x = 1 % 0", "ZeroDivisionError", "integer modulo by zero"},
		{"float division", "x = 1.0 / 0", "ZeroDivisionError", "float division by zero"},
		{"string left operand", "x = 1 in 'abc'", "TypeError", "'in <string>' requires string as left operand, not int"},
		{"membership in int", "x = 1 in 5", "TypeError", "argument of type 'int' is not iterable"},
		{"string indices", "x = 'a'['b']", "TypeError", "string indices must be integers"},
		{"list indices", "x = [1]['a']", "TypeError", "list indices must be integers or slices, not str"},
		{"tuple item assignment", "t = (1,)\nt[0] = 9", "TypeError", "'tuple' object does not support item assignment"},
		{"list assignment range", "x = [1]\nx[5] = 0", "IndexError", "list assignment index out of range"},
		{"unhashable set element", "x = {[1]}", "TypeError", "unhashable type: 'list'"},
		{"unhashable dict key", "x = {[1]: 2}", "TypeError", "unhashable type: 'list'"},
		{"dict slice", "x = {}[1:2]", "TypeError", "unhashable type: 'slice'"},
		{"too many to unpack", "a, b = [1, 2, 3]", "ValueError", "too many values to unpack (expected 2)"},
		{"not enough to unpack", "a, b, c = [1, 2]", "ValueError", "not enough values to unpack (expected 3, got 2)"},
		{"unpack non-iterable", "a, b = 5", "TypeError", "cannot unpack non-iterable int object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raised := runRaised(t, tt.source)
			if raised.Type != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, raised.Type)
			}
			if raised.Msg != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, raised.Msg)
			}
		})
	}
}

func TestStringRepeatOverflow(t *testing.T) {
	raised := runRaised(t, "x = 'ab' * 100000000")
	if raised.Type != "OverflowError" || raised.Msg != "repeated string is too long" {
		t.Errorf("Expected string repeat overflow, got %s: %s", raised.Type, raised.Msg)
	}

	raised = runRaised(t, "x = [1] * 100000000")
	if raised.Type != "MemoryError" {
		t.Errorf("Expected MemoryError for list repeat, got %s: %s", raised.Type, raised.Msg)
	}
}

// --- builtins ---

func TestBuiltinAggregates(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print(len([1, 2]), len('abc'), len({'a': 1}), len((1,)), len({1, 2}))", "2 3 1 1 2\n"},
		{"print(abs(-5), abs(2.5), abs(-2.5))", "5 2.5 2.5\n"},
		{"print(min(3, 1, 2), max([4, 9]), min('b', 'a'), max(2.5, 2))", "1 9 a 2.5\n"},
		{"print(sum([1, 2, 3]), sum([1, 2], 10), sum([0.5, 0.5]))", "6 13 1.0\n"},
		{"print(sorted([3, 1, 2]), sorted(['b', 'a']), sorted([2, 1, 1.0]))", "[1, 2, 3] ['a', 'b'] [1, 1.0, 2]\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestRound(t *testing.T) {
	// ties round to the nearest even value, as Python does
	got := runOK(t, "print(round(2.5), round(3.5), round(-0.5), round(2.675, 2), round(7), round(123, -1), round(2, 5))")
	want := "2 4 0 2.67 7 120 2\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestEnumerateZip(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print(enumerate(['a', 'b']))", "[(0, 'a'), (1, 'b')]\n"},
		{"print(enumerate('ab', 1))", "[(1, 'a'), (2, 'b')]\n"},
		{"print(zip([1, 2, 3], 'xy'))", "[(1, 'x'), (2, 'y')]\n"},
		{"print(zip())", "[]\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestConversions(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print(int('42'), int(' -7 '), int(3.9), int(-3.9), int(True), int())", "42 -7 3 -3 1 0\n"},
		{"print(float('2.5'), float(3), float('inf'))", "2.5 3.0 inf\n"},
		{"print(str(42), str(3.0), str(None), str([1]), str('x'), str())", "42 3.0 None [1] x \n"},
		{"print(bool(0), bool(''), bool([]), bool(None), bool(3), bool('a'), bool([0]))", "False False False False True True True\n"},
		{"print(list('abc'), list((1, 2)), list(range(3)), list())", "['a', 'b', 'c'] [1, 2] [0, 1, 2] []\n"},
		{"print(tuple([1, 2]), tuple())", "(1, 2) ()\n"},
		{"print(dict([('a', 1), ('b', 2)]), dict({'x': 9}), dict())", "{'a': 1, 'b': 2} {'x': 9} {}\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestTypeBuiltin(t *testing.T) {
	got := runOK(t, "print(type(1), type('a'), type([]), type(None))")
	want := "<class 'int'> <class 'str'> <class 'list'> <class 'NoneType'>\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got = runOK(t, "class P:\n    pass\nprint(type(P()))")
	if got != "<class 'P'>\n" {
		t.Errorf("Expected instance type, got %q", got)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantType string
		wantMsg  string
	}{
		{"int literal", "int('x')", "ValueError", "invalid literal for int() with base 10: 'x'"},
		{"float literal", "float('x')", "ValueError", "could not convert string to float: 'x'"},
		{"len arity", "len(1, 2)", "TypeError", "len() takes exactly one argument (2 given)"},
		{"min empty", "min([])", "ValueError", "min() arg is an empty sequence"},
		{"sum strings", "sum(['a'])", "TypeError", "sum() can't sum strings [use ''.join(seq) instead]"},
		{"range step", "range(1, 2, 0)", "ValueError", "range() arg 3 must not be zero"},
		{"abs operand", "abs('x')", "TypeError", "bad operand type for abs(): 'str'"},
		{"join non-str", "','.join([1])", "TypeError", "sequence item 0: expected str instance, int found"},
		{"dict pair shape", "dict([[1, 2, 3]])", "ValueError", "dictionary update sequence element #0 has length 3; 2 is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raised := runRaised(t, tt.source)
			if raised.Type != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, raised.Type)
			}
			if raised.Msg != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, raised.Msg)
			}
		})
	}
}

// --- printing and repr ---

func TestPrintBasics(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print('a', 1, None, True)", "a 1 None True\n"},
		{"print()", "\n"},
		{"print([1, 'x'])", "[1, 'x']\n"},
		{"print('x\\ny')", "x\ny\n"},
		{"print(print('inner'))", "inner\nNone\n"},
	}
	for _, tt := range tests {
		if got := runOK(t, tt.source); got != tt.want {
			t.Errorf("Expected %q from %q, got %q", tt.want, tt.source, got)
		}
	}
}

func TestReprQuoting(t *testing.T) {
	got := runOK(t, `print(['a"b', "c'd", 'plain'])`)
	want := `['a"b', "c'd", 'plain']` + "\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCyclicRepr(t *testing.T) {
	source := `x = [1]
x.append(x)
d = {}
d['self'] = d
print(x, d)`
	if got := runOK(t, source); got != "[1, [...]] {'self': {...}}\n" {
		t.Errorf("Expected cycle markers, got %q", got)
	}
}

func TestFunctionReprs(t *testing.T) {
	source := `def fact(n):
    return n

print(fact, len)`
	if got := runOK(t, source); got != "<function fact> <built-in function len>\n" {
		t.Errorf("Expected function reprs, got %q", got)
	}
}

// --- event stream ---

func TestEventSequenceModule(t *testing.T) {
	log, err := runLogged(t, "x = 1\ny = 2")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Join(log.kinds, " "); got != "call line line return" {
		t.Errorf("Expected kinds %q, got %q", "call line line return", got)
	}
	if got := fmt.Sprint(log.lines); got != "[1 1 2 2]" {
		t.Errorf("Expected lines [1 1 2 2], got %v", log.lines)
	}
	for i, d := range log.depths {
		if d != 1 {
			t.Errorf("Expected depth 1 at event %d, got %d", i, d)
		}
	}
	if got := fmt.Sprint(log.rets); got != "[None]" {
		t.Errorf("Expected module return None, got %v", log.rets)
	}
}

func TestEventSequenceFunctionCall(t *testing.T) {
	log, err := runLogged(t, "def f():\n    return 1\nx = f()")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Join(log.kinds, " "); got != "call line line call line return return" {
		t.Errorf("Expected call/return nesting, got %q", got)
	}
	if got := fmt.Sprint(log.lines); got != "[1 1 3 1 2 2 3]" {
		t.Errorf("Expected lines [1 1 3 1 2 2 3], got %v", log.lines)
	}
	if got := fmt.Sprint(log.depths); got != "[1 1 1 2 2 2 1]" {
		t.Errorf("Expected depths [1 1 1 2 2 2 1], got %v", log.depths)
	}
	if got := fmt.Sprint(log.rets); got != "[1 None]" {
		t.Errorf("Expected returns [1 None], got %v", log.rets)
	}
}

func TestEventSequenceUncaughtException(t *testing.T) {
	log, err := runLogged(t, "def f():\n    raise ValueError('boom')\nf()")
	var raised *RaisedError
	if !errors.As(err, &raised) {
		t.Fatalf("Expected RaisedError, got %v", err)
	}
	if got := strings.Join(log.kinds, " "); got != "call line line call line exception exception" {
		t.Errorf("Expected exception re-emitted per frame, got %q", got)
	}
	if got := fmt.Sprint(log.depths); got != "[1 1 1 2 2 2 1]" {
		t.Errorf("Expected depths [1 1 1 2 2 2 1], got %v", log.depths)
	}
	if got := fmt.Sprint(log.excs); got != "[ValueError: boom ValueError: boom]" {
		t.Errorf("Expected exception info on both events, got %v", log.excs)
	}
}

func TestEventSequenceCaughtException(t *testing.T) {
	log, err := runLogged(t, "try:\n    raise ValueError('x')\nexcept ValueError:\n    y = 1")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Join(log.kinds, " "); got != "call line line exception line line return" {
		t.Errorf("Expected handler line after exception, got %q", got)
	}
	if got := fmt.Sprint(log.lines); got != "[1 1 2 2 3 4 4]" {
		t.Errorf("Expected lines [1 1 2 2 3 4 4], got %v", log.lines)
	}
}

func TestEventSequenceLoop(t *testing.T) {
	// the loop header line is re-emitted before every iteration check
	log, err := runLogged(t, "for i in range(2):\n    x = i")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Join(log.kinds, " "); got != "call line line line line line return" {
		t.Errorf("Expected header re-emission, got %q", got)
	}
	if got := fmt.Sprint(log.lines); got != "[1 1 2 1 2 1 1]" {
		t.Errorf("Expected lines [1 1 2 1 2 1 1], got %v", log.lines)
	}
}

// --- interrupts and hook aborts ---

func TestInterruptBeforeRun(t *testing.T) {
	mod := parse(t, "x = 1")
	in := New(Config{})
	in.Interrupt("stop requested")
	err := in.Run(mod)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	if err.Error() != "stop requested" {
		t.Errorf("Expected reason as message, got %q", err.Error())
	}
}

func TestInterruptMidRun(t *testing.T) {
	mod := parse(t, "x = 1\ny = 2\nz = 3")
	var in *Interp
	count := 0
	in = New(Config{Hooks: hookFunc(func(ev *Event) error {
		count++
		if count == 2 {
			in.Interrupt("deadline")
		}
		return nil
	})})
	err := in.Run(mod)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	if err.Error() != "deadline" {
		t.Errorf("Expected reason %q, got %q", "deadline", err.Error())
	}
	if count != 2 {
		t.Errorf("Expected no events after the interrupt, got %d", count)
	}
}

func TestInterruptFirstReasonWins(t *testing.T) {
	mod := parse(t, "x = 1")
	in := New(Config{})
	in.Interrupt("first")
	in.Interrupt("second")
	err := in.Run(mod)
	if err == nil || err.Error() != "first" {
		t.Errorf("Expected first reason to win, got %v", err)
	}
}

func TestHookAbort(t *testing.T) {
	mod := parse(t, "x = 1\ny = 2\nz = 3")
	sentinel := errors.New("sink full")
	log := &eventLog{abort: sentinel, after: 3}
	err := New(Config{Hooks: log}).Run(mod)
	if err != sentinel {
		t.Fatalf("Expected the hook error back unwrapped, got %v", err)
	}
	if len(log.kinds) != 3 {
		t.Errorf("Expected exactly 3 events before the abort, got %d", len(log.kinds))
	}
}

// --- module state ---

func TestModuleGlobals(t *testing.T) {
	mod := parse(t, "x = 41\nx = x + 1")
	in := New(Config{})
	if err := in.Run(mod); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if i, ok := object.AsInt(globalOf(t, in, "x")); !ok || i != 42 {
		t.Errorf("Expected x == 42, got %v", globalOf(t, in, "x"))
	}
	name, ok := globalOf(t, in, "__name__").(object.Str)
	if !ok || name.Value != "__main__" {
		t.Errorf("Expected __name__ == '__main__', got %v", globalOf(t, in, "__name__"))
	}
	if len(in.Stack()) != 0 {
		t.Errorf("Expected empty stack after run, got %d frames", len(in.Stack()))
	}
}
