package semantic

import (
	"sort"

	"ferrum/internal/ast"
	"ferrum/internal/types"
)

type ScopeKind int

const (
	PreludeScope ScopeKind = iota
	ModuleScope
	ContractScope
	FunctionScope
	BlockScope
)

// Scope maps names to symbols. Lookups walk the parent chain.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope

	symbols map[string]*Symbol
	order   []*Symbol
	table   *SymbolTable
}

func newScope(kind ScopeKind, parent *Scope, table *SymbolTable) *Scope {
	return &Scope{
		Kind:    kind,
		Parent:  parent,
		symbols: make(map[string]*Symbol),
		table:   table,
	}
}

// Define binds sym in this scope. If the name is already bound here the
// existing symbol is returned and the binding is left unchanged.
func (s *Scope) Define(sym *Symbol) (existing *Symbol) {
	if s.table != nil && s.table.sealed {
		panic("semantic: define " + sym.Name + " after the symbol table was sealed")
	}
	if prev, ok := s.symbols[sym.Name]; ok {
		return prev
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym)
	return nil
}

func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Lookup resolves name in this scope or any enclosing one, ignoring
// declaration order.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupAt resolves name as seen from source offset. Locals are only
// visible after their declaring statement ends, so an earlier reference
// falls through to an outer binding.
func (s *Scope) LookupAt(name string, offset int) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.symbols[name]; ok && sym.VisibleFrom <= offset {
			return sym
		}
	}
	return nil
}

// Symbols returns the symbols of this scope in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return s.order
}

// VisibleNames returns the sorted names visible from offset whose symbols
// satisfy keep.
func (s *Scope) VisibleNames(offset int, keep func(*Symbol) bool) []string {
	seen := make(map[string]bool)
	var names []string
	for sc := s; sc != nil; sc = sc.Parent {
		for _, sym := range sc.order {
			if seen[sym.Name] || sym.VisibleFrom > offset || !keep(sym) {
				continue
			}
			seen[sym.Name] = true
			names = append(names, sym.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Contract returns the innermost enclosing contract, if any.
func (s *Scope) Contract() *ContractInfo {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Kind == ContractScope && s.table != nil {
			return s.table.contractScopes[sc]
		}
	}
	return nil
}

// SymbolTable is the result of the builder. It is sealed before the checker
// and the safety analyzer run, which may then share it concurrently.
type SymbolTable struct {
	File    string
	Module  *ast.Module
	Prelude *Scope
	Root    *Scope

	contracts      []*ContractInfo
	constants      []*Symbol
	contractScopes map[*Scope]*ContractInfo
	functions      []*FunctionInfo
	functionIndex  map[*ast.Function]*FunctionInfo
	events         map[*ast.Event]*EventInfo
	blocks         map[*ast.Block]*Scope
	typeExprs      map[ast.TypeExpr]types.Type
	sealed         bool
}

func newSymbolTable(m *ast.Module) *SymbolTable {
	t := &SymbolTable{
		Module:         m,
		File:           m.Pos.Filename,
		contractScopes: make(map[*Scope]*ContractInfo),
		functionIndex:  make(map[*ast.Function]*FunctionInfo),
		events:         make(map[*ast.Event]*EventInfo),
		blocks:         make(map[*ast.Block]*Scope),
		typeExprs:      make(map[ast.TypeExpr]types.Type),
	}
	t.Prelude = newScope(PreludeScope, nil, t)
	t.Root = newScope(ModuleScope, t.Prelude, t)
	return t
}

func (t *SymbolTable) seal() { t.sealed = true }

func (t *SymbolTable) Sealed() bool { return t.sealed }

// Contracts returns the contracts of the module in declaration order.
func (t *SymbolTable) Contracts() []*ContractInfo { return t.contracts }

// Constants returns the module constants in declaration order, including
// duplicates that lost their name.
func (t *SymbolTable) Constants() []*Symbol { return t.constants }

// Functions returns every function declared in the module, module-level and
// contract-level, in source order.
func (t *SymbolTable) Functions() []*FunctionInfo { return t.functions }

func (t *SymbolTable) Function(fn *ast.Function) *FunctionInfo { return t.functionIndex[fn] }

func (t *SymbolTable) Event(e *ast.Event) *EventInfo { return t.events[e] }

// BlockScope returns the scope created for b.
func (t *SymbolTable) BlockScope(b *ast.Block) *Scope { return t.blocks[b] }

// ResolvedType returns the type an annotation resolved to, or Unknown.
func (t *SymbolTable) ResolvedType(te ast.TypeExpr) types.Type {
	if rt, ok := t.typeExprs[te]; ok {
		return rt
	}
	return types.Unknown{}
}
