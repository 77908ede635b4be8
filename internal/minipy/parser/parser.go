// Package parser turns minipy source into an ast.Module.
//
// It is a plain recursive-descent parser over the lexer's token stream, one
// function per grammar production, stopping at the first error the way
// CPython's compiler does.
package parser

import (
	"fmt"
	"strconv"

	"github.com/gil906/Python-solver-stepbystep/internal/minipy/ast"
	"github.com/gil906/Python-solver-stepbystep/internal/minipy/lexer"
)

// SyntaxError is a compile failure. Programs that fail to parse never
// execute, so this is the only error Parse returns.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s (line %d)", e.Msg, e.Line)
}

type parser struct {
	tokens []lexer.Token
	pos    int

	// placement validation, as Python performs at compile time
	funcDepth int
	loopDepth int
}

// Parse tokenizes and parses source. The returned error is always a
// *SyntaxError.
func Parse(source string) (*ast.Module, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			return nil, &SyntaxError{Msg: le.Msg, Line: le.Line}
		}
		return nil, &SyntaxError{Msg: err.Error(), Line: 1}
	}

	p := &parser{tokens: tokens}
	mod, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) accept(t lexer.TokenType) bool {
	if p.peek() == t {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(t lexer.TokenType, what string) (lexer.Token, error) {
	tok := p.current()
	if tok.Type != t {
		return tok, p.errorf(tok, "expected %s", what)
	}
	return p.advance(), nil
}

func (p *parser) errorf(tok lexer.Token, format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: tok.Line}
}

func (p *parser) invalid(tok lexer.Token) error {
	switch tok.Type {
	case lexer.TokEOF:
		return p.errorf(tok, "unexpected end of input")
	case lexer.TokNewline:
		return p.errorf(tok, "invalid syntax")
	case lexer.TokIndent:
		return p.errorf(tok, "unexpected indent")
	case lexer.TokDedent:
		return p.errorf(tok, "unexpected unindent")
	default:
		return p.errorf(tok, "invalid syntax near %q", tok.Lit)
	}
}

func (p *parser) parseModule() (*ast.Module, error) {
	mod := &ast.Module{}
	for p.peek() != lexer.TokEOF {
		if p.accept(lexer.TokNewline) {
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		mod.Stmts = append(mod.Stmts, stmt)
	}
	return mod, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch p.peek() {
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokDef:
		return p.parseFuncDef()
	case lexer.TokClass:
		return p.parseClassDef()
	case lexer.TokTry:
		return p.parseTry()
	case lexer.TokIndent:
		return nil, p.invalid(p.current())
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt parses one statement that fits on a line and its
// terminating NEWLINE.
func (p *parser) parseSimpleStmt() (ast.Stmt, error) {
	tok := p.current()
	var stmt ast.Stmt
	var err error

	switch tok.Type {
	case lexer.TokReturn:
		if p.funcDepth == 0 {
			return nil, p.errorf(tok, "'return' outside function")
		}
		p.advance()
		ret := &ast.Return{Line: tok.Line}
		if startsExpr(p.peek()) {
			ret.Value, err = p.parseExprOrTuple()
			if err != nil {
				return nil, err
			}
		}
		stmt = ret
	case lexer.TokBreak:
		if p.loopDepth == 0 {
			return nil, p.errorf(tok, "'break' outside loop")
		}
		p.advance()
		stmt = &ast.Break{Line: tok.Line}
	case lexer.TokContinue:
		if p.loopDepth == 0 {
			return nil, p.errorf(tok, "'continue' not properly in loop")
		}
		p.advance()
		stmt = &ast.Continue{Line: tok.Line}
	case lexer.TokPass:
		p.advance()
		stmt = &ast.Pass{Line: tok.Line}
	case lexer.TokGlobal:
		p.advance()
		g := &ast.Global{Line: tok.Line}
		for {
			name, err := p.expect(lexer.TokIdent, "name after 'global'")
			if err != nil {
				return nil, err
			}
			g.Names = append(g.Names, name.Lit)
			if !p.accept(lexer.TokComma) {
				break
			}
		}
		stmt = g
	case lexer.TokRaise:
		p.advance()
		r := &ast.Raise{Line: tok.Line}
		if startsExpr(p.peek()) {
			r.Exc, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		stmt = r
	default:
		stmt, err = p.parseExprLike(tok)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokNewline, "end of line"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseExprLike parses assignments, augmented assignments, and bare
// expression statements, including tuple-unpacking targets.
func (p *parser) parseExprLike(tok lexer.Token) (ast.Stmt, error) {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek() == lexer.TokComma {
		first, err = p.continueTuple(first)
		if err != nil {
			return nil, err
		}
	}

	switch p.peek() {
	case lexer.TokAssign:
		p.advance()
		value, err := p.parseExprOrTuple()
		if err != nil {
			return nil, err
		}
		if err := p.checkTarget(first); err != nil {
			return nil, err
		}
		return &ast.Assign{Line: tok.Line, Target: first, Value: value}, nil
	case lexer.TokPlusEq, lexer.TokMinusEq, lexer.TokStarEq,
		lexer.TokSlashEq, lexer.TokSlashSlashEq, lexer.TokPercentEq:
		op := augOps[p.advance().Type]
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, ok := first.(*ast.TupleLit); ok {
			return nil, p.errorf(tok, "invalid augmented assignment target")
		}
		if err := p.checkTarget(first); err != nil {
			return nil, err
		}
		return &ast.AugAssign{Line: tok.Line, Target: first, Op: op, Value: value}, nil
	default:
		return &ast.ExprStmt{Line: tok.Line, Value: first}, nil
	}
}

var augOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokPlusEq:       ast.OpAdd,
	lexer.TokMinusEq:      ast.OpSub,
	lexer.TokStarEq:       ast.OpMul,
	lexer.TokSlashEq:      ast.OpDiv,
	lexer.TokSlashSlashEq: ast.OpFloorDiv,
	lexer.TokPercentEq:    ast.OpMod,
}

func (p *parser) checkTarget(e ast.Expr) error {
	switch t := e.(type) {
	case *ast.Ident, *ast.Subscript, *ast.Attribute:
		return nil
	case *ast.TupleLit:
		for _, el := range t.Elems {
			if err := p.checkTarget(el); err != nil {
				return err
			}
		}
		return nil
	default:
		return &SyntaxError{Msg: "cannot assign to expression", Line: e.Pos()}
	}
}

// continueTuple extends first into a TupleLit across commas, allowing a
// trailing comma.
func (p *parser) continueTuple(first ast.Expr) (ast.Expr, error) {
	elems := []ast.Expr{first}
	for p.accept(lexer.TokComma) {
		if !startsExpr(p.peek()) {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	return &ast.TupleLit{Line: first.Pos(), Elems: elems}, nil
}

func (p *parser) parseExprOrTuple() (ast.Expr, error) {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek() == lexer.TokComma {
		return p.continueTuple(first)
	}
	return first, nil
}

// parseSuite parses the body after a compound-statement colon: either a
// single simple statement on the same line or an indented block.
func (p *parser) parseSuite() ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.TokColon, "':'"); err != nil {
		return nil, err
	}
	if !p.accept(lexer.TokNewline) {
		stmt, err := p.parseSimpleStmt()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{stmt}, nil
	}

	if p.peek() != lexer.TokIndent {
		return nil, p.errorf(p.current(), "expected an indented block")
	}
	p.advance()

	var stmts []ast.Stmt
	for p.peek() != lexer.TokDedent && p.peek() != lexer.TokEOF {
		if p.accept(lexer.TokNewline) {
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(lexer.TokDedent, "dedent"); err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, p.errorf(p.current(), "expected an indented block")
	}
	return stmts, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	tok := p.advance() // if or elif
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	stmt := &ast.If{Line: tok.Line, Cond: cond, Body: body}
	switch p.peek() {
	case lexer.TokElif:
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = []ast.Stmt{nested}
	case lexer.TokElse:
		p.advance()
		stmt.Else, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	tok := p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseSuite()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.While{Line: tok.Line, Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	tok := p.advance()

	target, err := p.parseForTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokIn, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseSuite()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.For{Line: tok.Line, Target: target, Iter: iter, Body: body}, nil
}

func (p *parser) parseForTarget() (ast.Expr, error) {
	name, err := p.expect(lexer.TokIdent, "loop variable")
	if err != nil {
		return nil, err
	}
	first := ast.Expr(&ast.Ident{Line: name.Line, Name: name.Lit})
	if p.peek() != lexer.TokComma {
		return first, nil
	}

	elems := []ast.Expr{first}
	for p.accept(lexer.TokComma) {
		if p.peek() != lexer.TokIdent {
			break
		}
		next := p.advance()
		elems = append(elems, &ast.Ident{Line: next.Line, Name: next.Lit})
	}
	return &ast.TupleLit{Line: name.Line, Elems: elems}, nil
}

func (p *parser) parseFuncDef() (ast.Stmt, error) {
	tok := p.advance()
	name, err := p.expect(lexer.TokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLParen, "'('"); err != nil {
		return nil, err
	}

	fn := &ast.FuncDef{Line: tok.Line, Name: name.Lit}
	seen := map[string]bool{}
	for p.peek() != lexer.TokRParen {
		param, err := p.expect(lexer.TokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		if seen[param.Lit] {
			return nil, p.errorf(param, "duplicate argument %q in function definition", param.Lit)
		}
		seen[param.Lit] = true
		fn.Params = append(fn.Params, param.Lit)
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokRParen, "')'"); err != nil {
		return nil, err
	}

	// a loop around the def does not license break inside it
	savedLoop := p.loopDepth
	p.funcDepth++
	p.loopDepth = 0
	fn.Body, err = p.parseSuite()
	p.funcDepth--
	p.loopDepth = savedLoop
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *parser) parseClassDef() (ast.Stmt, error) {
	tok := p.advance()
	name, err := p.expect(lexer.TokIdent, "class name")
	if err != nil {
		return nil, err
	}
	if p.accept(lexer.TokLParen) {
		if p.peek() != lexer.TokRParen {
			return nil, p.errorf(p.current(), "inheritance is not supported")
		}
		p.advance()
	}

	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	for _, stmt := range body {
		switch stmt.(type) {
		case *ast.FuncDef, *ast.Pass, *ast.Assign:
		default:
			return nil, &SyntaxError{Msg: "class bodies may only contain methods, assignments, and pass", Line: stmt.Pos()}
		}
	}
	return &ast.ClassDef{Line: tok.Line, Name: name.Lit, Body: body}, nil
}

func (p *parser) parseTry() (ast.Stmt, error) {
	tok := p.advance()
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}

	try := &ast.Try{Line: tok.Line, Body: body}
	for p.peek() == lexer.TokExcept {
		exc := p.advance()
		clause := ast.ExceptClause{Line: exc.Line}
		if p.peek() == lexer.TokIdent {
			clause.Type = p.advance().Lit
			if p.accept(lexer.TokAs) {
				name, err := p.expect(lexer.TokIdent, "name after 'as'")
				if err != nil {
					return nil, err
				}
				clause.Name = name.Lit
			}
		}
		clause.Body, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
		try.Handlers = append(try.Handlers, clause)
	}
	if p.accept(lexer.TokFinally) {
		try.Finally, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	if len(try.Handlers) == 0 && len(try.Finally) == 0 {
		return nil, p.errorf(p.current(), "expected 'except' or 'finally' block")
	}
	return try, nil
}

// --- Expressions, loosest binding first ---

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == lexer.TokOr {
		tok := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolOp{Line: tok.Line, Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek() == lexer.TokAnd {
		tok := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolOp{Line: tok.Line, Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.peek() == lexer.TokNot {
		tok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Line: tok.Line, Op: ast.OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

var compOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokEqEq:   ast.OpEq,
	lexer.TokBangEq: ast.OpNotEq,
	lexer.TokLt:     ast.OpLt,
	lexer.TokLtEq:   ast.OpLtEq,
	lexer.TokGt:     ast.OpGt,
	lexer.TokGtEq:   ast.OpGtEq,
	lexer.TokIn:     ast.OpIn,
}

func (p *parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	op, ok := p.comparisonOp()
	if !ok {
		return left, nil
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, chained := p.comparisonOp(); chained {
		return nil, p.errorf(p.current(), "chained comparisons are not supported")
	}
	return &ast.Binary{Line: left.Pos(), Op: op, Left: left, Right: right}, nil
}

// comparisonOp consumes and returns the next comparison operator, handling
// the two-token "not in" form.
func (p *parser) comparisonOp() (ast.BinaryOp, bool) {
	if op, ok := compOps[p.peek()]; ok {
		p.advance()
		return op, true
	}
	if p.peek() == lexer.TokNot && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == lexer.TokIn {
		p.advance()
		p.advance()
		return ast.OpNotIn, true
	}
	return "", false
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek() == lexer.TokPlus || p.peek() == lexer.TokMinus {
		tok := p.advance()
		op := ast.OpAdd
		if tok.Type == lexer.TokMinus {
			op = ast.OpSub
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Line: tok.Line, Op: op, Left: left, Right: right}
	}
	return left, nil
}

var mulOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokStar:       ast.OpMul,
	lexer.TokSlash:      ast.OpDiv,
	lexer.TokSlashSlash: ast.OpFloorDiv,
	lexer.TokPercent:    ast.OpMod,
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := mulOps[p.peek()]
		if !ok {
			return left, nil
		}
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Line: tok.Line, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.peek() == lexer.TokMinus {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Line: tok.Line, Op: ast.OpNeg, Operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower parses ** right-associatively; the exponent re-enters at unary
// so 2 ** -1 parses.
func (p *parser) parsePower() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.peek() == lexer.TokStarStar {
		tok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Line: tok.Line, Op: ast.OpPow, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek() {
		case lexer.TokLParen:
			tok := p.advance()
			call := &ast.Call{Line: tok.Line, Func: expr}
			for p.peek() != lexer.TokRParen {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if !p.accept(lexer.TokComma) {
					break
				}
			}
			if _, err := p.expect(lexer.TokRParen, "')'"); err != nil {
				return nil, err
			}
			expr = call
		case lexer.TokLBracket:
			expr, err = p.parseSubscript(expr)
			if err != nil {
				return nil, err
			}
		case lexer.TokDot:
			p.advance()
			name, err := p.expect(lexer.TokIdent, "attribute name")
			if err != nil {
				return nil, err
			}
			expr = &ast.Attribute{Line: name.Line, Target: expr, Name: name.Lit}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseSubscript(target ast.Expr) (ast.Expr, error) {
	tok := p.advance() // [

	var low ast.Expr
	var err error
	if p.peek() != lexer.TokColon {
		low, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if p.accept(lexer.TokColon) {
		slice := &ast.Slice{Line: tok.Line, Target: target, Low: low}
		if p.peek() != lexer.TokRBracket {
			slice.High, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lexer.TokRBracket, "']'"); err != nil {
			return nil, err
		}
		return slice, nil
	}

	if low == nil {
		return nil, p.invalid(p.current())
	}
	if _, err := p.expect(lexer.TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.Subscript{Line: tok.Line, Target: target, Index: low}, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.current()

	switch tok.Type {
	case lexer.TokInt:
		p.advance()
		v, err := strconv.ParseInt(tok.Lit, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal out of range")
		}
		return &ast.IntLit{Line: tok.Line, Value: v}, nil
	case lexer.TokFloat:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lit, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid float literal")
		}
		return &ast.FloatLit{Line: tok.Line, Value: v}, nil
	case lexer.TokString:
		p.advance()
		return &ast.StrLit{Line: tok.Line, Value: tok.Lit}, nil
	case lexer.TokTrue:
		p.advance()
		return &ast.BoolLit{Line: tok.Line, Value: true}, nil
	case lexer.TokFalse:
		p.advance()
		return &ast.BoolLit{Line: tok.Line, Value: false}, nil
	case lexer.TokNone:
		p.advance()
		return &ast.NoneLit{Line: tok.Line}, nil
	case lexer.TokIdent:
		p.advance()
		return &ast.Ident{Line: tok.Line, Name: tok.Lit}, nil
	case lexer.TokLParen:
		return p.parseParen()
	case lexer.TokLBracket:
		return p.parseList()
	case lexer.TokLBrace:
		return p.parseDictOrSet()
	default:
		return nil, p.invalid(tok)
	}
}

// parseParen handles grouping, tuples, and the empty tuple.
func (p *parser) parseParen() (ast.Expr, error) {
	tok := p.advance() // (
	if p.accept(lexer.TokRParen) {
		return &ast.TupleLit{Line: tok.Line}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek() != lexer.TokComma {
		if _, err := p.expect(lexer.TokRParen, "')'"); err != nil {
			return nil, err
		}
		return first, nil
	}

	elems := []ast.Expr{first}
	for p.accept(lexer.TokComma) {
		if p.peek() == lexer.TokRParen {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	if _, err := p.expect(lexer.TokRParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.TupleLit{Line: tok.Line, Elems: elems}, nil
}

func (p *parser) parseList() (ast.Expr, error) {
	tok := p.advance() // [
	list := &ast.ListLit{Line: tok.Line}
	for p.peek() != lexer.TokRBracket {
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, elem)
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	if _, err := p.expect(lexer.TokRBracket, "']'"); err != nil {
		return nil, err
	}
	return list, nil
}

// parseDictOrSet disambiguates after the first element: a colon means dict.
// {} is the empty dict, as in Python.
func (p *parser) parseDictOrSet() (ast.Expr, error) {
	tok := p.advance() // {
	if p.accept(lexer.TokRBrace) {
		return &ast.DictLit{Line: tok.Line}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.accept(lexer.TokColon) {
		dict := &ast.DictLit{Line: tok.Line}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		dict.Keys = append(dict.Keys, first)
		dict.Values = append(dict.Values, value)
		for p.accept(lexer.TokComma) {
			if p.peek() == lexer.TokRBrace {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokColon, "':'"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			dict.Keys = append(dict.Keys, k)
			dict.Values = append(dict.Values, v)
		}
		if _, err := p.expect(lexer.TokRBrace, "'}'"); err != nil {
			return nil, err
		}
		return dict, nil
	}

	set := &ast.SetLit{Line: tok.Line, Elems: []ast.Expr{first}}
	for p.accept(lexer.TokComma) {
		if p.peek() == lexer.TokRBrace {
			break
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		set.Elems = append(set.Elems, elem)
	}
	if _, err := p.expect(lexer.TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return set, nil
}

func startsExpr(t lexer.TokenType) bool {
	switch t {
	case lexer.TokInt, lexer.TokFloat, lexer.TokString, lexer.TokTrue,
		lexer.TokFalse, lexer.TokNone, lexer.TokIdent, lexer.TokLParen,
		lexer.TokLBracket, lexer.TokLBrace, lexer.TokMinus, lexer.TokNot:
		return true
	}
	return false
}
