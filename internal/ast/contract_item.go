package ast

// ContractItem is one of *Field, *Function or *Event.
type ContractItem interface {
	Node
	isContractItem()
}

func (*Field) isContractItem()    {}
func (*Function) isContractItem() {}
func (*Event) isContractItem()    {}

// Field is a storage field of a contract.
// Example: "cool_users: Map<address, bool>"
type Field struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Type   TypeExpr
}
