package ast

import "math/big"

type Expr interface {
	Node
	isExpr()
}

func (*IntLit) isExpr()     {}
func (*BoolLit) isExpr()    {}
func (*NameExpr) isExpr()   {}
func (*SelfExpr) isExpr()   {}
func (*PathExpr) isExpr()   {}
func (*FieldExpr) isExpr()  {}
func (*IndexExpr) isExpr()  {}
func (*CallExpr) isExpr()   {}
func (*BinaryExpr) isExpr() {}
func (*UnaryExpr) isExpr()  {}
func (*TupleExpr) isExpr()  {}
func (*ParenExpr) isExpr()  {}

// IntLit is an integer literal. Value is always non-negative; a leading
// minus is a UnaryExpr.
type IntLit struct {
	Pos    Position
	EndPos Position
	Raw    string
	Value  *big.Int
}

type BoolLit struct {
	Pos    Position
	EndPos Position
	Value  bool
}

type NameExpr struct {
	Name Ident
}

type SelfExpr struct {
	Pos    Position
	EndPos Position
}

// PathExpr is a module-qualified name: "evm::caller".
type PathExpr struct {
	Segments []*Ident
}

// FieldExpr is "target.field"; tuple elements use "itemN" names.
type FieldExpr struct {
	Target Expr
	Field  Ident
}

type IndexExpr struct {
	EndPos Position
	Target Expr
	Index  Expr
}

// CallExpr covers function calls, method calls and casts; which one it is
// depends on what the callee resolves to.
type CallExpr struct {
	EndPos Position
	Callee Expr
	Args   []*CallArg
}

// CallArg is a call argument with an optional label: "value: 1".
type CallArg struct {
	Pos   Position
	Label *Ident
	Value Expr
}

type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

type UnaryExpr struct {
	Pos     Position
	Op      string // "-", "~" or "not"
	Operand Expr
}

// TupleExpr is "(a, b)"; the empty tuple "()" is the unit value.
type TupleExpr struct {
	Pos    Position
	EndPos Position
	Elems  []Expr
}

type ParenExpr struct {
	Pos    Position
	EndPos Position
	Inner  Expr
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Inner
	}
}
