package semantic

import (
	"fmt"
	"sort"
	"strings"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/stdlib"
	"ferrum/internal/types"
)

// maxIndexedFields is the number of topics an event log can carry besides
// its signature.
const maxIndexedFields = 3

// Builder resolves declarations into a SymbolTable. It runs once per unit,
// before any other pass.
type Builder struct {
	table  *SymbolTable
	diags  *errors.Bag
	fields map[*ast.Field]*Symbol

	// Aliases resolve on first use so they may refer to later aliases.
	aliases   []*Symbol
	resolving map[*Symbol]bool
	cyclic    map[*Symbol]bool
}

// Build constructs and seals the symbol table for m.
func Build(m *ast.Module) (*SymbolTable, []errors.Diagnostic) {
	if m == nil {
		return nil, []errors.Diagnostic{errors.UnitAborted("", "no syntax tree")}
	}
	b := &Builder{
		table:  newSymbolTable(m),
		diags:  errors.NewBag(),
		fields: make(map[*ast.Field]*Symbol),

		resolving: make(map[*Symbol]bool),
		cyclic:    make(map[*Symbol]bool),
	}
	b.definePrelude()

	// Names first so declarations may refer to items declared later.
	for _, item := range m.Items {
		b.declareModuleItem(item)
	}
	for _, c := range b.table.contracts {
		b.declareContractMembers(c)
	}
	sort.SliceStable(b.table.functions, func(i, j int) bool {
		return b.table.functions[i].Node.Pos.Offset < b.table.functions[j].Node.Pos.Offset
	})

	for _, alias := range b.aliases {
		b.resolveAlias(alias)
	}
	b.resolveSignatures()

	for _, fn := range b.table.functions {
		if fn.Malformed || fn.Node.Body == nil {
			continue
		}
		b.buildBlock(fn.Node.Body, fn.Scope)
	}

	b.table.seal()
	return b.table, b.diags.Items()
}

func (b *Builder) report(d errors.Diagnostic) {
	b.diags.Add(d)
}

func (b *Builder) definePrelude() {
	for _, name := range types.PrimitiveNames() {
		sym := &Symbol{Name: name, Kind: SymbolType, Visibility: Public}
		if t, ok := types.Primitive(name); ok {
			sym.Type = t
		}
		b.table.Prelude.Define(sym)
	}
}

// define binds sym in scope and reports a duplicate declaration when the
// name is taken. The first declaration wins.
func (b *Builder) define(scope *Scope, sym *Symbol) bool {
	prev := scope.Define(sym)
	if prev == nil {
		return true
	}
	first := prev.NameSpan
	if first.IsZero() {
		first = prev.Decl
	}
	d := errors.NewDiagnostic(errors.DeclarationError, errors.ErrorDuplicateDeclaration,
		fmt.Sprintf("duplicate definition of %s `%s`", sym.Kind, sym.Name),
		sym.NameSpan, fmt.Sprintf("`%s` redefined here", sym.Name))
	if !first.IsZero() {
		d.WithSecondary(first, fmt.Sprintf("`%s` first defined here", sym.Name))
	} else {
		d.WithNote(fmt.Sprintf("`%s` is imported from the standard library", sym.Name))
	}
	b.report(d.Build())
	return false
}

func (b *Builder) declareModuleItem(item ast.ModuleItem) {
	switch node := item.(type) {
	case *ast.Use:
		b.declareUse(node)

	case *ast.Contract:
		sym := &Symbol{
			Name:       node.Name.Value,
			Kind:       SymbolContract,
			Visibility: Public,
			Type:       types.Contract{Name: node.Name.Value},
			Decl:       ast.SpanOf(node),
			NameSpan:   ast.SpanOf(&node.Name),
			Node:       node,
		}
		info := &ContractInfo{Symbol: sym, Node: node}
		info.Scope = newScope(ContractScope, b.table.Root, b.table)
		sym.Contract = info
		b.table.contractScopes[info.Scope] = info
		// A duplicate contract is still analyzed, under its own scope.
		b.define(b.table.Root, sym)
		b.table.contracts = append(b.table.contracts, info)

	case *ast.Function:
		b.declareFunction(node, b.table.Root, nil)

	case *ast.Event:
		b.declareEvent(node, b.table.Root)

	case *ast.Const:
		sym := &Symbol{
			Name:       node.Name.Value,
			Kind:       SymbolConstant,
			Visibility: Public,
			Decl:       ast.SpanOf(node),
			NameSpan:   ast.SpanOf(&node.Name),
			Node:       node,
		}
		b.define(b.table.Root, sym)
		b.table.constants = append(b.table.constants, sym)

	case *ast.TypeAlias:
		sym := &Symbol{
			Name:       node.Name.Value,
			Kind:       SymbolType,
			Visibility: Public,
			Decl:       ast.SpanOf(node),
			NameSpan:   ast.SpanOf(&node.Name),
			Node:       node,
		}
		b.define(b.table.Root, sym)
		b.aliases = append(b.aliases, sym)
	}
}

func (b *Builder) declareUse(u *ast.Use) {
	segments := make([]string, len(u.Path))
	for i, s := range u.Path {
		segments[i] = s.Value
	}
	path := strings.Join(segments, "::")
	pathSpan := ast.SpanOf(u.Path[0]).Join(ast.SpanOf(u.Path[len(u.Path)-1]))

	def := stdlib.GetModuleDefinition(path)
	if def == nil {
		b.report(errors.UnresolvedImport(path, pathSpan, errors.SimilarNames(path, stdlib.ModulePaths())))
		return
	}

	if u.Items == nil {
		last := u.Path[len(u.Path)-1]
		b.define(b.table.Root, &Symbol{
			Name:     last.Value,
			Kind:     SymbolModule,
			Decl:     ast.SpanOf(u),
			NameSpan: ast.SpanOf(last),
			Node:     u,
			Module:   def,
		})
		return
	}

	for _, item := range u.Items {
		fn, ok := def.Functions[item.Value]
		if !ok {
			b.report(errors.UnresolvedImport(path+"::"+item.Value, ast.SpanOf(item),
				errors.SimilarNames(item.Value, def.FunctionNames())))
			continue
		}
		sym := newStdFunction(fn)
		sym.NameSpan = ast.SpanOf(item)
		sym.Node = u
		b.define(b.table.Root, sym)
	}
}

func (b *Builder) declareFunction(fn *ast.Function, scope *Scope, contract *ContractInfo) *FunctionInfo {
	sym := &Symbol{
		Name:     fn.Name.Value,
		Kind:     SymbolFunction,
		Decl:     ast.SpanOf(fn),
		NameSpan: ast.SpanOf(&fn.Name),
		Node:     fn,
	}
	if fn.IsPub() {
		sym.Visibility = Public
	}
	if fn.IsUnsafe() {
		sym.Safety = Unsafe
	}

	info := &FunctionInfo{Symbol: sym, Node: fn, Contract: contract}
	info.Scope = newScope(FunctionScope, scope, b.table)
	sym.Function = info

	if contract != nil {
		if d, bad := checkExclusivity(fn); bad {
			b.report(d)
			info.Malformed = true
		}
	}

	b.define(scope, sym)
	b.table.functions = append(b.table.functions, info)
	b.table.functionIndex[fn] = info
	return info
}

func (b *Builder) declareEvent(e *ast.Event, scope *Scope) {
	sym := &Symbol{
		Name:       e.Name.Value,
		Kind:       SymbolEvent,
		Visibility: Public,
		Decl:       ast.SpanOf(e),
		NameSpan:   ast.SpanOf(&e.Name),
		Node:       e,
	}
	info := &EventInfo{Symbol: sym, Node: e}
	sym.Event = info
	b.table.events[e] = info
	b.define(scope, sym)
}

func (b *Builder) declareContractMembers(c *ContractInfo) {
	for _, item := range c.Node.Items {
		switch node := item.(type) {
		case *ast.Field:
			sym := &Symbol{
				Name:     node.Name.Value,
				Kind:     SymbolField,
				Decl:     ast.SpanOf(node),
				NameSpan: ast.SpanOf(&node.Name),
				Node:     node,
				Mutable:  true,
			}
			if b.define(c.Scope, sym) {
				c.Fields = append(c.Fields, sym)
				b.fields[node] = sym
			}
		case *ast.Function:
			info := b.declareFunction(node, c.Scope, c)
			c.Functions = append(c.Functions, info)
		case *ast.Event:
			b.declareEvent(node, c.Scope)
		}
	}
}

// resolveSignatures resolves every type annotation outside function bodies,
// in source order.
func (b *Builder) resolveSignatures() {
	constants := make(map[*ast.Const]*Symbol, len(b.table.constants))
	for _, sym := range b.table.constants {
		constants[sym.Node.(*ast.Const)] = sym
	}
	for _, item := range b.table.Module.Items {
		switch node := item.(type) {
		case *ast.Const:
			constants[node].Type = b.resolveType(node.Type, b.table.Root, false)
		case *ast.Function:
			b.resolveFunction(b.table.functionIndex[node])
		case *ast.Event:
			b.resolveEvent(b.table.events[node])
		case *ast.Contract:
			for _, member := range node.Items {
				b.resolveContractItem(member)
			}
		}
	}
}

func (b *Builder) resolveContractItem(item ast.ContractItem) {
	switch node := item.(type) {
	case *ast.Field:
		t := b.resolveType(node.Type, b.table.Root, true)
		if sym, ok := b.fields[node]; ok {
			sym.Type = t
		}
	case *ast.Function:
		b.resolveFunction(b.table.functionIndex[node])
	case *ast.Event:
		b.resolveEvent(b.table.events[node])
	}
}

func (b *Builder) resolveEvent(e *EventInfo) {
	indexed := 0
	seen := make(map[string]ast.Span)
	for _, f := range e.Node.Fields {
		span := ast.SpanOf(&f.Name)
		if first, dup := seen[f.Name.Value]; dup {
			b.report(errors.DuplicateDefinition("field", f.Name.Value, span, first))
			continue
		}
		seen[f.Name.Value] = span

		t := b.resolveType(f.Type, b.table.Root, false)
		if f.Indexed {
			indexed++
			if indexed == maxIndexedFields+1 {
				b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorTooManyIndexed,
					fmt.Sprintf("event `%s` has more than %d indexed fields", e.Symbol.Name, maxIndexedFields),
					ast.SpanOf(f), "this field exceeds the limit").
					WithHint(fmt.Sprintf("remove `idx` from all but %d fields", maxIndexedFields)).
					Build())
			}
		}
		e.Fields = append(e.Fields, EventFieldInfo{Name: f.Name.Value, Type: t, Indexed: f.Indexed, Span: span})
	}
}

func (b *Builder) resolveFunction(fn *FunctionInfo) {
	node := fn.Node
	sig := &FunctionSig{Return: types.Unit{}}
	fn.Sig = sig

	for i, p := range node.Params {
		if p.IsSelf {
			switch {
			case fn.Contract == nil:
				b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorInvalidSelf,
					"`self` is not allowed in functions outside of a contract",
					ast.SpanOf(p), "not allowed here").Build())
			case i != 0:
				b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorInvalidSelf,
					"`self` must be the first parameter",
					ast.SpanOf(p), "expected `self` first").Build())
			default:
				sig.TakesSelf = true
			}
			continue
		}

		t := b.resolveType(p.Type, fn.Scope, false)
		sym := &Symbol{
			Name:     p.Name.Value,
			Kind:     SymbolParameter,
			Type:     t,
			Decl:     ast.SpanOf(p),
			NameSpan: ast.SpanOf(&p.Name),
			Node:     p,
		}
		b.define(fn.Scope, sym)
		sig.Params = append(sig.Params, ParamInfo{Name: p.Name.Value, Type: t, Span: ast.SpanOf(p)})
	}

	if node.Return != nil {
		sig.Return = b.resolveType(node.Return, fn.Scope, false)
	}
}

// resolveType turns an annotation into a type, reporting unknown names and
// misplaced maps. The result is recorded in the table.
func (b *Builder) resolveType(te ast.TypeExpr, scope *Scope, field bool) types.Type {
	t := b.resolveTypeExpr(te, scope, field)
	b.table.typeExprs[te] = t
	return t
}

func (b *Builder) resolveTypeExpr(te ast.TypeExpr, scope *Scope, mapAllowed bool) types.Type {
	switch node := te.(type) {
	case *ast.TupleType:
		if len(node.Elems) == 0 {
			return types.Unit{}
		}
		elems := make([]types.Type, len(node.Elems))
		for i, el := range node.Elems {
			elems[i] = b.resolveType(el, scope, false)
		}
		return types.Tuple{Elems: elems}

	case *ast.NamedType:
		name := node.Name.Value
		sym := scope.Lookup(name)
		if sym == nil {
			b.report(errors.UndefinedType(name, ast.SpanOf(&node.Name),
				errors.SimilarNames(name, b.typeNames(scope))))
			return types.Unknown{}
		}

		if sym.Kind == SymbolType && sym.IsBuiltin() && name == types.MapTypeName {
			return b.resolveMap(node, scope, mapAllowed)
		}

		if sym.Kind != SymbolType && sym.Kind != SymbolContract {
			b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedType,
				fmt.Sprintf("expected type, found %s `%s`", sym.Kind, name),
				ast.SpanOf(&node.Name), "not a type").Build())
			return types.Unknown{}
		}
		if len(node.Args) > 0 {
			b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedType,
				fmt.Sprintf("type `%s` does not take type arguments", name),
				ast.SpanOf(node), "unexpected type arguments").Build())
			return types.Unknown{}
		}
		if !sym.IsAlias() {
			return sym.Type
		}
		if b.resolving[sym] {
			for pending := range b.resolving {
				b.cyclic[pending] = true
			}
			b.report(errors.RecursiveDefinition("type alias", name, ast.SpanOf(&node.Name), sym.NameSpan))
			return types.Unknown{}
		}
		t := b.resolveAlias(sym)
		if _, isMap := t.(types.Mapping); isMap && !mapAllowed {
			b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorInvalidMapType,
				"`Map` can only be used as the type of a contract field",
				ast.SpanOf(node), fmt.Sprintf("`%s` is a `%s`", name, t)).Build())
			return types.Unknown{}
		}
		return t
	}
	return types.Unknown{}
}

// resolveAlias resolves the target of a type alias once. An alias that
// reaches itself, and every alias on the way, resolves to Unknown.
func (b *Builder) resolveAlias(sym *Symbol) types.Type {
	if sym.Type != nil {
		return sym.Type
	}
	b.resolving[sym] = true
	t := b.resolveType(sym.Node.(*ast.TypeAlias).Type, b.table.Root, true)
	delete(b.resolving, sym)
	if b.cyclic[sym] {
		t = types.Unknown{}
	}
	sym.Type = t
	return t
}

func (b *Builder) resolveMap(node *ast.NamedType, scope *Scope, allowed bool) types.Type {
	span := ast.SpanOf(node)
	if !allowed {
		b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorInvalidMapType,
			"`Map` can only be used as the type of a contract field",
			span, "not allowed here").Build())
		return types.Unknown{}
	}
	if len(node.Args) != 2 {
		b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorInvalidMapType,
			fmt.Sprintf("`Map` expects 2 type arguments, found %d", len(node.Args)),
			span, "expected `Map<key, value>`").Build())
		return types.Unknown{}
	}

	key := b.resolveType(node.Args[0], scope, false)
	value := b.resolveType(node.Args[1], scope, true)
	if !types.IsUnknown(key) && !types.IsPrimitive(key) {
		b.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorInvalidMapType,
			fmt.Sprintf("`%s` cannot be used as a map key", key),
			ast.SpanOf(node.Args[0]), "expected an integer, `bool` or `address`").Build())
		return types.Unknown{}
	}
	return types.Mapping{Key: key, Value: value}
}

func (b *Builder) typeNames(scope *Scope) []string {
	return scope.VisibleNames(0, func(s *Symbol) bool {
		return s.Kind == SymbolType || s.Kind == SymbolContract
	})
}

// buildBlock creates the scope of a block and the scopes of every block
// nested in it, declaring locals as it goes.
func (b *Builder) buildBlock(block *ast.Block, parent *Scope) {
	scope := newScope(BlockScope, parent, b.table)
	b.table.blocks[block] = scope

	for _, stmt := range block.Stmts {
		switch s := stmt.(type) {
		case *ast.LetStmt:
			sym := &Symbol{
				Name:        s.Name.Value,
				Kind:        SymbolLocal,
				Decl:        ast.SpanOf(s),
				NameSpan:    ast.SpanOf(&s.Name),
				VisibleFrom: s.EndPos.Offset,
				Mutable:     s.Mut,
				Node:        s,
			}
			if s.Type != nil {
				sym.Type = b.resolveType(s.Type, scope, false)
			}
			b.define(scope, sym)
		case *ast.IfStmt:
			b.buildIf(s, scope)
		case *ast.WhileStmt:
			b.buildBlock(s.Body, scope)
		case *ast.UnsafeBlock:
			b.buildBlock(s.Body, scope)
		}
	}
}

func (b *Builder) buildIf(s *ast.IfStmt, scope *Scope) {
	b.buildBlock(s.Then, scope)
	switch {
	case s.ElseIf != nil:
		b.buildIf(s.ElseIf, scope)
	case s.Else != nil:
		b.buildBlock(s.Else, scope)
	}
}
