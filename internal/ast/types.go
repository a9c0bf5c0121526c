package ast

// TypeExpr is a type annotation as written in source.
type TypeExpr interface {
	Node
	isTypeExpr()
}

func (*NamedType) isTypeExpr() {}
func (*TupleType) isTypeExpr() {}

// NamedType is a possibly generic type name: "u8", "Map<address, bool>".
type NamedType struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Args   []TypeExpr
}

// TupleType is "(u8, bool)"; "()" is unit.
type TupleType struct {
	Pos    Position
	EndPos Position
	Elems  []TypeExpr
}
