package ast

// Module is a single source file: the unit of analysis.
type Module struct {
	Pos    Position
	EndPos Position
	Items  []ModuleItem
}

// ModuleItem is one of *Use, *Contract, *Function, *Event, *Const or
// *TypeAlias.
type ModuleItem interface {
	Node
	isModuleItem()
}

func (*Use) isModuleItem()       {}
func (*Contract) isModuleItem()  {}
func (*Function) isModuleItem()  {}
func (*Event) isModuleItem()     {}
func (*Const) isModuleItem()     {}
func (*TypeAlias) isModuleItem() {}

// Use imports a module or items of a module.
// Example: "use std::evm", "use std::evm::{caller, sload}"
type Use struct {
	Pos    Position
	EndPos Position
	Path   []*Ident
	Items  []*Ident // nil when the module itself is imported
}

// Contract is a storage-backed module with fields, events and functions.
type Contract struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Items  []ContractItem
}

// Event declares a log record that can be emitted.
// Example: "event Transfer { idx sender: address; value: u256 }"
type Event struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Fields []*EventField
}

type EventField struct {
	Pos     Position
	EndPos  Position
	Indexed bool
	Name    Ident
	Type    TypeExpr
}

// Const declares a module constant. Its value must fold at compile time.
// Example: "const MAX_SUPPLY: u256 = 1_000_000"
type Const struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Type   TypeExpr
	Value  Expr
}

// TypeAlias gives an existing type another name.
// Example: "type Balance = u256"
type TypeAlias struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Type   TypeExpr
}

// Function is a module-level or contract-level function.
type Function struct {
	Pos    Position
	EndPos Position

	// PubSpan and UnsafeSpan are nil when the modifier is absent.
	PubSpan    *Span
	UnsafeSpan *Span

	Name   Ident
	Params []*Param
	Return TypeExpr // nil for unit
	Body   *Block
}

func (f *Function) IsPub() bool    { return f.PubSpan != nil }
func (f *Function) IsUnsafe() bool { return f.UnsafeSpan != nil }

// TakesSelf reports whether any parameter is `self`.
func (f *Function) TakesSelf() bool {
	for _, p := range f.Params {
		if p.IsSelf {
			return true
		}
	}
	return false
}

// Param is a function parameter. A `self` parameter has no name or type.
type Param struct {
	Pos    Position
	EndPos Position
	IsSelf bool
	Name   Ident
	Type   TypeExpr
}
