// Package ast defines the minipy syntax tree.
//
// Nodes carry the 1-based source line they start on; the interpreter reports
// that line with every execution event, so positions here are what the trace
// ultimately shows.
package ast

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() int // 1-based source line
}

// Expr is the sealed interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the sealed interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// BinaryOp is a binary operator spelling.
type BinaryOp string

const (
	OpAdd      BinaryOp = "+"
	OpSub      BinaryOp = "-"
	OpMul      BinaryOp = "*"
	OpDiv      BinaryOp = "/"
	OpFloorDiv BinaryOp = "//"
	OpMod      BinaryOp = "%"
	OpPow      BinaryOp = "**"
	OpEq       BinaryOp = "=="
	OpNotEq    BinaryOp = "!="
	OpLt       BinaryOp = "<"
	OpLtEq     BinaryOp = "<="
	OpGt       BinaryOp = ">"
	OpGtEq     BinaryOp = ">="
	OpIn       BinaryOp = "in"
	OpNotIn    BinaryOp = "not in"
)

// UnaryOp is a unary operator spelling.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "not"
)

// Module is the root of a parsed program.
type Module struct {
	Stmts []Stmt
}

// Pos returns the line of the first statement, or 1 for an empty program.
func (m *Module) Pos() int {
	if len(m.Stmts) > 0 {
		return m.Stmts[0].Pos()
	}
	return 1
}

// --- Expressions ---

type IntLit struct {
	Line  int
	Value int64
}

type FloatLit struct {
	Line  int
	Value float64
}

type StrLit struct {
	Line  int
	Value string
}

type BoolLit struct {
	Line  int
	Value bool
}

type NoneLit struct {
	Line int
}

type Ident struct {
	Line int
	Name string
}

type ListLit struct {
	Line  int
	Elems []Expr
}

type TupleLit struct {
	Line  int
	Elems []Expr
}

type DictLit struct {
	Line   int
	Keys   []Expr
	Values []Expr
}

type SetLit struct {
	Line  int
	Elems []Expr
}

type Unary struct {
	Line    int
	Op      UnaryOp
	Operand Expr
}

type Binary struct {
	Line  int
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// BoolOp is short-circuiting and/or, kept apart from Binary because its
// operands must not be eagerly evaluated.
type BoolOp struct {
	Line  int
	Op    string // "and" or "or"
	Left  Expr
	Right Expr
}

type Subscript struct {
	Line   int
	Target Expr
	Index  Expr
}

// Slice is a[i:j] with either bound optional.
type Slice struct {
	Line   int
	Target Expr
	Low    Expr // nil means start
	High   Expr // nil means end
}

type Attribute struct {
	Line   int
	Target Expr
	Name   string
}

type Call struct {
	Line int
	Func Expr
	Args []Expr
}

func (n *IntLit) Pos() int    { return n.Line }
func (n *FloatLit) Pos() int  { return n.Line }
func (n *StrLit) Pos() int    { return n.Line }
func (n *BoolLit) Pos() int   { return n.Line }
func (n *NoneLit) Pos() int   { return n.Line }
func (n *Ident) Pos() int     { return n.Line }
func (n *ListLit) Pos() int   { return n.Line }
func (n *TupleLit) Pos() int  { return n.Line }
func (n *DictLit) Pos() int   { return n.Line }
func (n *SetLit) Pos() int    { return n.Line }
func (n *Unary) Pos() int     { return n.Line }
func (n *Binary) Pos() int    { return n.Line }
func (n *BoolOp) Pos() int    { return n.Line }
func (n *Subscript) Pos() int { return n.Line }
func (n *Slice) Pos() int     { return n.Line }
func (n *Attribute) Pos() int { return n.Line }
func (n *Call) Pos() int      { return n.Line }

func (n *IntLit) exprNode()    {}
func (n *FloatLit) exprNode()  {}
func (n *StrLit) exprNode()    {}
func (n *BoolLit) exprNode()   {}
func (n *NoneLit) exprNode()   {}
func (n *Ident) exprNode()     {}
func (n *ListLit) exprNode()   {}
func (n *TupleLit) exprNode()  {}
func (n *DictLit) exprNode()   {}
func (n *SetLit) exprNode()    {}
func (n *Unary) exprNode()     {}
func (n *Binary) exprNode()    {}
func (n *BoolOp) exprNode()    {}
func (n *Subscript) exprNode() {}
func (n *Slice) exprNode()     {}
func (n *Attribute) exprNode() {}
func (n *Call) exprNode()      {}

// --- Statements ---

type ExprStmt struct {
	Line  int
	Value Expr
}

// Assign covers name, subscript, attribute, and tuple-unpacking targets.
type Assign struct {
	Line   int
	Target Expr
	Value  Expr
}

type AugAssign struct {
	Line   int
	Target Expr
	Op     BinaryOp
	Value  Expr
}

// If holds one condition; elif chains parse as a nested If in Else.
type If struct {
	Line int
	Cond Expr
	Body []Stmt
	Else []Stmt
}

type While struct {
	Line int
	Cond Expr
	Body []Stmt
}

type For struct {
	Line   int
	Target Expr // Ident or TupleLit of Idents
	Iter   Expr
	Body   []Stmt
}

type FuncDef struct {
	Line   int
	Name   string
	Params []string
	Body   []Stmt
}

type ClassDef struct {
	Line int
	Name string
	Body []Stmt
}

type Return struct {
	Line  int
	Value Expr // nil for bare return
}

type Break struct {
	Line int
}

type Continue struct {
	Line int
}

type Pass struct {
	Line int
}

type Global struct {
	Line  int
	Names []string
}

// ExceptClause is one handler of a Try. Type is empty for a bare except.
type ExceptClause struct {
	Line int
	Type string
	Name string // bound exception name, empty if absent
	Body []Stmt
}

type Try struct {
	Line     int
	Body     []Stmt
	Handlers []ExceptClause
	Finally  []Stmt
}

type Raise struct {
	Line int
	Exc  Expr
}

func (n *ExprStmt) Pos() int  { return n.Line }
func (n *Assign) Pos() int    { return n.Line }
func (n *AugAssign) Pos() int { return n.Line }
func (n *If) Pos() int        { return n.Line }
func (n *While) Pos() int     { return n.Line }
func (n *For) Pos() int       { return n.Line }
func (n *FuncDef) Pos() int   { return n.Line }
func (n *ClassDef) Pos() int  { return n.Line }
func (n *Return) Pos() int    { return n.Line }
func (n *Break) Pos() int     { return n.Line }
func (n *Continue) Pos() int  { return n.Line }
func (n *Pass) Pos() int      { return n.Line }
func (n *Global) Pos() int    { return n.Line }
func (n *Try) Pos() int       { return n.Line }
func (n *Raise) Pos() int     { return n.Line }

func (n *ExprStmt) stmtNode()  {}
func (n *Assign) stmtNode()    {}
func (n *AugAssign) stmtNode() {}
func (n *If) stmtNode()        {}
func (n *While) stmtNode()     {}
func (n *For) stmtNode()       {}
func (n *FuncDef) stmtNode()   {}
func (n *ClassDef) stmtNode()  {}
func (n *Return) stmtNode()    {}
func (n *Break) stmtNode()     {}
func (n *Continue) stmtNode()  {}
func (n *Pass) stmtNode()      {}
func (n *Global) stmtNode()    {}
func (n *Try) stmtNode()       {}
func (n *Raise) stmtNode()     {}
