package object

// Env is one scope in the lexical chain: the module environment for
// top-level code, one child per call frame. Bindings keep insertion order so
// variable snapshots, and therefore trace ref assignment, are deterministic.
type Env struct {
	names  []string
	vars   map[string]Value
	parent *Env
}

// NewEnv returns an empty environment chained to parent (nil for the module
// scope).
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]Value), parent: parent}
}

// Get resolves name through the chain.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign binds name in this scope, shadowing any outer binding.
func (e *Env) Assign(name string, v Value) {
	if _, ok := e.vars[name]; !ok {
		e.names = append(e.names, name)
	}
	e.vars[name] = v
}

// Local returns the binding in this scope only.
func (e *Env) Local(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Names returns this scope's own names in first-assignment order.
func (e *Env) Names() []string { return e.names }
