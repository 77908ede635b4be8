package interp

import (
	"errors"
	"fmt"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/ast"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/object"
)

func (in *Interp) execBlock(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := in.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// execStmt emits the statement's line event, then runs it. Loop headers
// re-emit their line on every subsequent iteration from inside the loop
// body below.
func (in *Interp) execStmt(stmt ast.Stmt) error {
	frame := in.curFrame()
	frame.Line = stmt.Pos()
	if err := in.emit(EventLine, frame.Line, nil, nil); err != nil {
		return err
	}

	switch t := stmt.(type) {
	case *ast.ExprStmt:
		_, err := in.evalExpr(t.Value)
		return err

	case *ast.Assign:
		v, err := in.evalExpr(t.Value)
		if err != nil {
			return err
		}
		return in.assignTo(t.Target, v)

	case *ast.AugAssign:
		return in.execAugAssign(t)

	case *ast.If:
		cond, err := in.evalExpr(t.Cond)
		if err != nil {
			return err
		}
		if object.Truthy(cond) {
			return in.execBlock(t.Body)
		}
		return in.execBlock(t.Else)

	case *ast.While:
		return in.execWhile(t)

	case *ast.For:
		return in.execFor(t)

	case *ast.FuncDef:
		fn := &object.Function{
			Name:   t.Name,
			Params: t.Params,
			Body:   t.Body,
			Env:    frame.Env,
			Line:   t.Line,
		}
		in.assignName(t.Name, fn)
		return nil

	case *ast.ClassDef:
		return in.execClassDef(t)

	case *ast.Return:
		ret := object.Value(object.TheNone)
		if t.Value != nil {
			v, err := in.evalExpr(t.Value)
			if err != nil {
				return err
			}
			ret = v
		}
		return &returnControl{value: ret}

	case *ast.Break:
		return errBreak

	case *ast.Continue:
		return errContinue

	case *ast.Pass:
		return nil

	case *ast.Global:
		if frame.globals == nil {
			frame.globals = make(map[string]bool)
		}
		for _, name := range t.Names {
			frame.globals[name] = true
		}
		return nil

	case *ast.Try:
		return in.execTry(t)

	case *ast.Raise:
		return in.execRaise(t)

	default:
		return fmt.Errorf("interp: unhandled statement %T", stmt)
	}
}

func (in *Interp) execWhile(t *ast.While) error {
	frame := in.curFrame()
	first := true
	for {
		if !first {
			frame.Line = t.Line
			if err := in.emit(EventLine, t.Line, nil, nil); err != nil {
				return err
			}
		}
		first = false

		cond, err := in.evalExpr(t.Cond)
		if err != nil {
			return err
		}
		if !object.Truthy(cond) {
			return nil
		}
		switch err := in.execBlock(t.Body); {
		case err == nil || errors.Is(err, errContinue):
		case errors.Is(err, errBreak):
			return nil
		default:
			return err
		}
	}
}

func (in *Interp) execFor(t *ast.For) error {
	frame := in.curFrame()
	iter, err := in.evalExpr(t.Iter)
	if err != nil {
		return err
	}
	next, err := in.sequencer(iter)
	if err != nil {
		return err
	}

	first := true
	for {
		if !first {
			frame.Line = t.Line
			if err := in.emit(EventLine, t.Line, nil, nil); err != nil {
				return err
			}
		}
		first = false

		v, ok := next()
		if !ok {
			return nil
		}
		if err := in.assignTo(t.Target, v); err != nil {
			return err
		}
		switch err := in.execBlock(t.Body); {
		case err == nil || errors.Is(err, errContinue):
		case errors.Is(err, errBreak):
			return nil
		default:
			return err
		}
	}
}

// sequencer returns a pull function over v. Lists are read live by index,
// so a loop that appends to its own list keeps going; tuples, dicts, sets,
// and strings iterate over a snapshot taken here.
func (in *Interp) sequencer(v object.Value) (func() (object.Value, bool), error) {
	switch s := v.(type) {
	case *object.List:
		i := 0
		return func() (object.Value, bool) {
			if i >= len(s.Elems) {
				return nil, false
			}
			e := s.Elems[i]
			i++
			return e, true
		}, nil
	case *object.Tuple:
		return sliceSeq(append([]object.Value(nil), s.Elems...)), nil
	case object.Str:
		runes := []rune(s.Value)
		i := 0
		return func() (object.Value, bool) {
			if i >= len(runes) {
				return nil, false
			}
			r := object.Str{Value: string(runes[i])}
			i++
			return r, true
		}, nil
	case *object.Dict:
		return sliceSeq(append([]object.Value(nil), s.Keys()...)), nil
	case *object.Set:
		return sliceSeq(append([]object.Value(nil), s.Elems()...)), nil
	case *object.Range:
		i := int64(0)
		n := s.Len()
		return func() (object.Value, bool) {
			if i >= n {
				return nil, false
			}
			e := object.Int{Value: s.At(i)}
			i++
			return e, true
		}, nil
	default:
		return nil, in.raisef("TypeError", "'%s' object is not iterable", v.TypeName())
	}
}

func sliceSeq(elems []object.Value) func() (object.Value, bool) {
	i := 0
	return func() (object.Value, bool) {
		if i >= len(elems) {
			return nil, false
		}
		e := elems[i]
		i++
		return e, true
	}
}

// --- Assignment targets ---

func (in *Interp) assignTo(target ast.Expr, v object.Value) error {
	switch t := target.(type) {
	case *ast.Ident:
		in.assignName(t.Name, v)
		return nil
	case *ast.TupleLit:
		return in.unpackAssign(t, v)
	case *ast.Subscript:
		return in.assignSubscript(t, v)
	case *ast.Attribute:
		return in.assignAttribute(t, v)
	default:
		// the parser validates targets; anything else is an evaluator bug
		return fmt.Errorf("interp: invalid assignment target %T", target)
	}
}

func (in *Interp) assignName(name string, v object.Value) {
	frame := in.curFrame()
	if frame.globals[name] {
		in.module.Assign(name, v)
		return
	}
	frame.Env.Assign(name, v)
}

func (in *Interp) unpackAssign(t *ast.TupleLit, v object.Value) error {
	elems, err := in.materialize(v)
	if err != nil {
		if asRaised(err) != nil || errors.Is(err, ErrInterrupted) {
			return err
		}
		return in.raisef("TypeError", "cannot unpack non-iterable %s object", v.TypeName())
	}
	want := len(t.Elems)
	if len(elems) < want {
		return in.raisef("ValueError",
			"not enough values to unpack (expected %d, got %d)", want, len(elems))
	}
	if len(elems) > want {
		return in.raisef("ValueError", "too many values to unpack (expected %d)", want)
	}
	for i, sub := range t.Elems {
		if err := in.assignTo(sub, elems[i]); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interp) assignSubscript(t *ast.Subscript, v object.Value) error {
	target, err := in.evalExpr(t.Target)
	if err != nil {
		return err
	}
	idx, err := in.evalExpr(t.Index)
	if err != nil {
		return err
	}
	switch c := target.(type) {
	case *object.List:
		i, ok := object.AsInt(idx)
		if !ok {
			return in.raisef("TypeError",
				"list indices must be integers or slices, not %s", idx.TypeName())
		}
		n := int64(len(c.Elems))
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return in.raisef("IndexError", "list assignment index out of range")
		}
		c.Elems[i] = v
		return nil
	case *object.Dict:
		if err := c.Set(idx, v); err != nil {
			return in.raisef("TypeError", "%s", err.Error())
		}
		return nil
	default:
		return in.raisef("TypeError",
			"'%s' object does not support item assignment", target.TypeName())
	}
}

func (in *Interp) assignAttribute(t *ast.Attribute, v object.Value) error {
	target, err := in.evalExpr(t.Target)
	if err != nil {
		return err
	}
	switch obj := target.(type) {
	case *object.Instance:
		obj.SetAttr(t.Name, v)
		return nil
	case *object.Class:
		if err := obj.Attrs.Set(object.Str{Value: t.Name}, v); err != nil {
			return in.raisef("TypeError", "%s", err.Error())
		}
		return nil
	default:
		return in.raisef("AttributeError",
			"'%s' object has no attribute '%s'", target.TypeName(), t.Name)
	}
}

// execAugAssign evaluates target then value once each and stores the
// result. list += extends in place so aliases observe the change.
func (in *Interp) execAugAssign(t *ast.AugAssign) error {
	cur, err := in.evalExpr(t.Target)
	if err != nil {
		return err
	}
	rhs, err := in.evalExpr(t.Value)
	if err != nil {
		return err
	}

	if lst, ok := cur.(*object.List); ok && t.Op == ast.OpAdd {
		switch r := rhs.(type) {
		case *object.List:
			lst.Elems = append(lst.Elems, r.Elems...)
			return nil
		case *object.Tuple:
			lst.Elems = append(lst.Elems, r.Elems...)
			return nil
		}
	}

	res, err := in.evalBinary(t.Op, cur, rhs)
	if err != nil {
		return err
	}
	return in.assignTo(t.Target, res)
}

// --- Class definitions ---

// execClassDef evaluates a class body eagerly: def statements become
// methods, plain assignments become class attributes. The body does not
// run as its own traced frame.
func (in *Interp) execClassDef(t *ast.ClassDef) error {
	cls := &object.Class{
		Name:    t.Name,
		Methods: make(map[string]*object.Function),
		Attrs:   object.NewDict(),
		Line:    t.Line,
	}
	env := in.curFrame().Env
	for _, stmt := range t.Body {
		switch s := stmt.(type) {
		case *ast.FuncDef:
			cls.Methods[s.Name] = &object.Function{
				Name:   s.Name,
				Params: s.Params,
				Body:   s.Body,
				Env:    env,
				Line:   s.Line,
			}
		case *ast.Assign:
			name, ok := s.Target.(*ast.Ident)
			if !ok {
				return fmt.Errorf("interp: invalid class attribute target %T", s.Target)
			}
			v, err := in.evalExpr(s.Value)
			if err != nil {
				return err
			}
			if err := cls.Attrs.Set(object.Str{Value: name.Name}, v); err != nil {
				return in.raisef("TypeError", "%s", err.Error())
			}
		case *ast.Pass:
		default:
			return fmt.Errorf("interp: unhandled class body statement %T", stmt)
		}
	}
	in.assignName(t.Name, cls)
	return nil
}

// --- try / raise ---

func (in *Interp) execTry(t *ast.Try) error {
	err := in.execBlock(t.Body)
	if raised := asRaised(err); raised != nil {
		err = in.dispatchExcept(t, raised)
	}
	if len(t.Finally) > 0 {
		if ferr := in.execBlock(t.Finally); ferr != nil {
			// an outcome of the finally block replaces the pending one
			err = ferr
		}
	}
	return err
}

func (in *Interp) dispatchExcept(t *ast.Try, raised *RaisedError) error {
	frame := in.curFrame()
	for i := range t.Handlers {
		h := &t.Handlers[i]
		if !matchesExcept(h.Type, raised.Type) {
			continue
		}
		frame.Line = h.Line
		if err := in.emit(EventLine, h.Line, nil, nil); err != nil {
			return err
		}
		if h.Name != "" {
			in.assignName(h.Name, raised.Value())
		}
		prev := in.active
		in.active = raised
		err := in.execBlock(h.Body)
		in.active = prev
		return err
	}
	return raised
}

// matchesExcept reports whether a handler clause catches the given
// exception type. Exception is the catch-all base, as is a bare except.
func matchesExcept(clause, typ string) bool {
	return clause == "" || clause == "Exception" || clause == typ
}

func (in *Interp) execRaise(t *ast.Raise) error {
	if t.Exc == nil {
		if in.active == nil {
			return in.raisef("RuntimeError", "No active exception to re-raise")
		}
		return in.raiseAt(t.Line, in.active.Type, in.active.Msg)
	}
	v, err := in.evalExpr(t.Exc)
	if err != nil {
		return err
	}
	switch e := v.(type) {
	case *object.ExcValue:
		return in.raiseAt(t.Line, e.Type, e.Msg)
	case *object.Builtin:
		if e.IsType && isExceptionName(e.Name) {
			return in.raiseAt(t.Line, e.Name, "")
		}
	}
	return in.raisef("TypeError", "exceptions must derive from BaseException")
}
