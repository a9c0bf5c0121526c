package ast

// Block is a brace-delimited statement list and the unit of block scoping.
type Block struct {
	Pos    Position
	EndPos Position
	Stmts  []Stmt
}

type Stmt interface {
	Node
	isStmt()
}

func (*LetStmt) isStmt()       {}
func (*AssignStmt) isStmt()    {}
func (*AugAssignStmt) isStmt() {}
func (*IfStmt) isStmt()        {}
func (*WhileStmt) isStmt()     {}
func (*ReturnStmt) isStmt()    {}
func (*BreakStmt) isStmt()     {}
func (*ContinueStmt) isStmt()  {}
func (*RevertStmt) isStmt()    {}
func (*AssertStmt) isStmt()    {}
func (*EmitStmt) isStmt()      {}
func (*UnsafeBlock) isStmt()   {}
func (*ExprStmt) isStmt()      {}

// LetStmt declares a local binding.
// Example: "let mut total: u256 = 0"
type LetStmt struct {
	Pos    Position
	EndPos Position
	Mut    bool
	Name   Ident
	Type   TypeExpr // optional
	Value  Expr     // optional
}

// AssignStmt is "target = value".
type AssignStmt struct {
	Pos    Position
	EndPos Position
	Target Expr
	Value  Expr
}

// AugAssignStmt is "target op= value"; Op is the binary operator without '='.
type AugAssignStmt struct {
	Pos    Position
	EndPos Position
	Target Expr
	Op     string
	Value  Expr
}

// IfStmt holds at most one of ElseIf and Else.
type IfStmt struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Then   *Block
	ElseIf *IfStmt
	Else   *Block
}

type WhileStmt struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Body   *Block
}

type ReturnStmt struct {
	Pos    Position
	EndPos Position
	Value  Expr // optional
}

type BreakStmt struct {
	Pos    Position
	EndPos Position
}

type ContinueStmt struct {
	Pos    Position
	EndPos Position
}

type RevertStmt struct {
	Pos    Position
	EndPos Position
}

type AssertStmt struct {
	Pos    Position
	EndPos Position
	Cond   Expr
}

// EmitStmt logs an event: "emit Transfer(sender: who, value: 1)".
type EmitStmt struct {
	Pos    Position
	EndPos Position
	Event  Ident
	Args   []*CallArg
}

// UnsafeBlock marks its body as an unsafe context.
type UnsafeBlock struct {
	Pos    Position
	EndPos Position
	Body   *Block
}

type ExprStmt struct {
	Pos    Position
	EndPos Position
	Expr   Expr
}
