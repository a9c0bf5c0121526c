package semantic

import (
	"ferrum/internal/ast"
	"ferrum/internal/stdlib"
	"ferrum/internal/types"
)

type SymbolKind int

const (
	SymbolType SymbolKind = iota
	SymbolModule
	SymbolContract
	SymbolFunction
	SymbolEvent
	SymbolField
	SymbolParameter
	SymbolLocal
	SymbolConstant
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolType:
		return "type"
	case SymbolModule:
		return "module"
	case SymbolContract:
		return "contract"
	case SymbolFunction:
		return "function"
	case SymbolEvent:
		return "event"
	case SymbolField:
		return "field"
	case SymbolParameter:
		return "parameter"
	case SymbolLocal:
		return "variable"
	case SymbolConstant:
		return "constant"
	}
	return "symbol"
}

// IsValue reports whether a symbol of this kind can be read as a value.
func (k SymbolKind) IsValue() bool {
	return k == SymbolParameter || k == SymbolLocal || k == SymbolConstant
}

type Visibility int

const (
	Private Visibility = iota
	Public
)

type Safety int

const (
	Safe Safety = iota
	Unsafe
)

func (s Safety) String() string {
	if s == Unsafe {
		return "unsafe"
	}
	return "safe"
}

// Symbol is a named declaration. Symbols are created by the builder and are
// read-only once the table is sealed.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Visibility Visibility
	Safety     Safety

	// Type is the resolved type of types, type aliases, contracts, fields,
	// parameters, constants and annotated locals. Unannotated locals are
	// typed by the checker.
	Type types.Type

	// Decl covers the whole declaration and NameSpan its name. Both are zero
	// for builtins and standard library items.
	Decl     ast.Span
	NameSpan ast.Span

	// VisibleFrom is the offset after which a local can be referenced.
	VisibleFrom int
	Mutable     bool

	Node     ast.Node
	Function *FunctionInfo
	Event    *EventInfo
	Contract *ContractInfo
	Module   *stdlib.ModuleDefinition
}

// IsBuiltin reports whether the symbol has no source declaration.
func (s *Symbol) IsBuiltin() bool { return s.Decl.IsZero() }

// IsAlias reports whether the symbol is a type alias.
func (s *Symbol) IsAlias() bool {
	_, ok := s.Node.(*ast.TypeAlias)
	return ok
}

// DeclHead is the part of the declaration that labels point at: a
// function's modifiers, keyword and name, or Decl for other symbols.
func (s *Symbol) DeclHead() ast.Span {
	if fn, ok := s.Node.(*ast.Function); ok {
		return ast.Span{Start: fn.Pos, End: fn.Name.EndPos}
	}
	return s.Decl
}

type ParamInfo struct {
	Name string
	Type types.Type
	Span ast.Span
}

// FunctionSig is the resolved signature of a user or standard function.
type FunctionSig struct {
	Params    []ParamInfo
	Return    types.Type
	TakesSelf bool
}

// FunctionInfo ties a function declaration to its scope and signature.
type FunctionInfo struct {
	Symbol   *Symbol
	Node     *ast.Function // nil for standard library functions
	Contract *ContractInfo // nil for module-level functions
	Scope    *Scope
	Sig      *FunctionSig

	// Malformed functions failed declaration checks; later passes skip
	// their bodies.
	Malformed bool
}

type EventFieldInfo struct {
	Name    string
	Type    types.Type
	Indexed bool
	Span    ast.Span
}

type EventInfo struct {
	Symbol *Symbol
	Node   *ast.Event
	Fields []EventFieldInfo
}

// ContractInfo holds the members of a contract in declaration order.
type ContractInfo struct {
	Symbol    *Symbol
	Node      *ast.Contract
	Scope     *Scope
	Fields    []*Symbol
	Functions []*FunctionInfo
}

func (c *ContractInfo) Name() string { return c.Symbol.Name }

// Member returns the contract-level symbol with the given name.
func (c *ContractInfo) Member(name string) *Symbol {
	return c.Scope.LookupLocal(name)
}

func (c *ContractInfo) Type() types.Contract {
	return types.Contract{Name: c.Name()}
}

func newStdFunction(def *stdlib.FunctionDefinition) *Symbol {
	sym := &Symbol{Name: def.Name, Kind: SymbolFunction, Visibility: Public}
	if def.Unsafe {
		sym.Safety = Unsafe
	}
	sig := &FunctionSig{Return: types.Unit{}}
	if def.ReturnType != nil {
		sig.Return = def.ReturnType
	}
	for _, p := range def.Parameters {
		sig.Params = append(sig.Params, ParamInfo{Name: p.Name, Type: p.Type})
	}
	sym.Function = &FunctionInfo{Symbol: sym, Sig: sig}
	return sym
}
