package semantic

import (
	"fmt"
	"math/big"
	"strings"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/stdlib"
	"ferrum/internal/types"
)

// Checker assigns a type to every expression and enforces the typing rules.
// A failed check reports one diagnostic and types the expression Unknown;
// checks involving an Unknown operand report nothing.
type Checker struct {
	table *SymbolTable
	diags *errors.Bag
	out   *TypedModule

	fn        *FunctionInfo
	scope     *Scope
	loopDepth int
	locals    []*Symbol
	used      map[*Symbol]bool
	std       map[*stdlib.FunctionDefinition]*Symbol

	evaluated  map[*Symbol]bool
	evaluating map[*Symbol]bool
}

// Check type-checks the module constants and every well-formed function of
// the table. The returned module has no call contexts; those come from the
// safety analyzer.
func Check(table *SymbolTable) (*TypedModule, []errors.Diagnostic) {
	if table == nil {
		return nil, nil
	}
	c := &Checker{
		table: table,
		diags: errors.NewBag(),
		out: &TypedModule{
			Module:     table.Module,
			Symbols:    table,
			ExprTypes:  make(map[ast.Expr]types.Type),
			Consts:     make(map[ast.Expr]*big.Int),
			LocalTypes: make(map[*Symbol]types.Type),
			Calls:      make(map[*ast.CallExpr]*CallInfo),
			Desugared:  make(map[*ast.AugAssignStmt]*ast.AssignStmt),
			Constants:  make(map[*Symbol]*big.Int),
		},
		std:        make(map[*stdlib.FunctionDefinition]*Symbol),
		evaluated:  make(map[*Symbol]bool),
		evaluating: make(map[*Symbol]bool),
	}
	for _, sym := range table.Constants() {
		c.constant(sym)
	}
	for _, fn := range table.Functions() {
		if fn.Malformed {
			continue
		}
		c.function(fn)
	}
	return c.out, c.diags.Items()
}

func (c *Checker) report(d errors.Diagnostic) {
	c.diags.Add(d)
}

func (c *Checker) function(fn *FunctionInfo) {
	c.fn = fn
	c.scope = fn.Scope
	c.loopDepth = 0
	c.locals = nil
	c.used = make(map[*Symbol]bool)

	c.block(fn.Node.Body)

	ret := fn.Sig.Return
	if _, unit := ret.(types.Unit); !unit && !types.IsUnknown(ret) && !blockTerminates(fn.Node.Body) {
		c.report(errors.MissingReturn(fn.Symbol.Name, ret.String(), fn.Symbol.NameSpan))
	}

	for _, local := range c.locals {
		if !c.used[local] && !strings.HasPrefix(local.Name, "_") {
			c.report(errors.UnusedVariable(local.Name, local.NameSpan))
		}
	}
}

func (c *Checker) block(b *ast.Block) {
	outer := c.scope
	c.scope = c.table.BlockScope(b)
	defer func() { c.scope = outer }()

	for _, stmt := range b.Stmts {
		c.stmt(stmt)
	}
}

func (c *Checker) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.let(s)

	case *ast.AssignStmt:
		target := c.place(s.Target)
		value := c.value(s.Value, target)
		c.expect(target, value, s.Value)

	case *ast.AugAssignStmt:
		c.augAssign(s)

	case *ast.IfStmt:
		c.condition(s.Cond)
		c.block(s.Then)
		if s.ElseIf != nil {
			c.stmt(s.ElseIf)
		}
		if s.Else != nil {
			c.block(s.Else)
		}

	case *ast.WhileStmt:
		c.condition(s.Cond)
		c.loopDepth++
		c.block(s.Body)
		c.loopDepth--

	case *ast.ReturnStmt:
		c.returnStmt(s)

	case *ast.BreakStmt:
		c.loopControl("break", ast.SpanOf(s))

	case *ast.ContinueStmt:
		c.loopControl("continue", ast.SpanOf(s))

	case *ast.RevertStmt:

	case *ast.AssertStmt:
		c.condition(s.Cond)

	case *ast.EmitStmt:
		c.emit(s)

	case *ast.UnsafeBlock:
		c.block(s.Body)

	case *ast.ExprStmt:
		c.value(s.Expr, nil)
	}
}

func (c *Checker) let(s *ast.LetStmt) {
	sym := c.scope.LookupLocal(s.Name.Value)
	if sym != nil && sym.Node != ast.Node(s) {
		// Duplicate binding: reported by the builder, checked but not recorded.
		sym = nil
	}

	var t types.Type
	if s.Type != nil {
		t = c.table.ResolvedType(s.Type)
	}
	switch {
	case s.Value != nil:
		vt := c.value(s.Value, t)
		if t == nil {
			t = vt
		} else {
			c.expect(t, vt, s.Value)
		}
	case t == nil:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorTypeMismatch,
			"type annotations needed",
			ast.SpanOf(&s.Name), fmt.Sprintf("consider giving `%s` a type", s.Name.Value)).Build())
		t = types.Unknown{}
	}

	if sym != nil {
		c.out.LocalTypes[sym] = t
		c.locals = append(c.locals, sym)
	}
}

func (c *Checker) condition(e ast.Expr) {
	t := c.value(e, types.Bool{})
	c.expect(types.Bool{}, t, e)
}

func (c *Checker) loopControl(keyword string, span ast.Span) {
	if c.loopDepth > 0 {
		return
	}
	c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorLoopControl,
		fmt.Sprintf("`%s` outside of a loop", keyword),
		span, fmt.Sprintf("cannot `%s` outside of a `while` loop", keyword)).Build())
}

func (c *Checker) returnStmt(s *ast.ReturnStmt) {
	want := c.fn.Sig.Return
	_, unit := want.(types.Unit)

	if s.Value == nil {
		if !unit && !types.IsUnknown(want) {
			c.report(errors.TypeMismatch(want.String(), types.Unit{}.String(), ast.SpanOf(s)))
		}
		return
	}

	got := c.value(s.Value, want)
	if unit && !types.IsUnknown(got) {
		if _, gotUnit := got.(types.Unit); !gotUnit {
			c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorTypeMismatch,
				"mismatched types",
				ast.SpanOf(s.Value), fmt.Sprintf("expected `()`, found `%s`", got)).
				WithHint(fmt.Sprintf("add a return type to `%s`: `-> %s`", c.fn.Symbol.Name, got)).
				Build())
		}
		return
	}
	c.expect(want, got, s.Value)
}

func (c *Checker) emit(s *ast.EmitStmt) {
	name := s.Event.Value
	sym := c.scope.LookupAt(name, s.Event.Pos.Offset)
	if sym == nil || sym.Kind != SymbolEvent {
		if sym == nil {
			events := c.scope.VisibleNames(s.Pos.Offset, func(s *Symbol) bool { return s.Kind == SymbolEvent })
			c.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedName,
				fmt.Sprintf("cannot find event `%s` in this scope", name),
				ast.SpanOf(&s.Event), "undefined").
				WithSuggestions(errors.SimilarNames(name, events)).Build())
		} else {
			c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorNotCallable,
				fmt.Sprintf("expected event, found %s `%s`", sym.Kind, name),
				ast.SpanOf(&s.Event), "not an event").Build())
		}
		for _, a := range s.Args {
			c.value(a.Value, nil)
		}
		return
	}

	params := make([]ParamInfo, len(sym.Event.Fields))
	for i, f := range sym.Event.Fields {
		params[i] = ParamInfo{Name: f.Name, Type: f.Type, Span: f.Span}
	}
	c.args(s.Args, params, name, ast.SpanOf(s))
}

// expect reports a mismatch between want and got at e. Unknown on either
// side matches anything.
func (c *Checker) expect(want, got types.Type, e ast.Expr) bool {
	if want == nil || types.IsUnknown(want) || types.IsUnknown(got) || types.Equal(want, got) {
		return true
	}
	c.report(errors.TypeMismatch(want.String(), got.String(), ast.SpanOf(e)))
	return false
}

// place checks an assignment target and returns its type.
func (c *Checker) place(e ast.Expr) types.Type {
	var t types.Type
	switch target := ast.Unparen(e).(type) {
	case *ast.NameExpr:
		t = c.assignName(target)
		c.record(e, t)

	case *ast.FieldExpr, *ast.IndexExpr:
		c.checkMutableRoot(target)
		t = c.expr(e, nil)

	default:
		c.expr(e, nil)
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidAssignTarget,
			"invalid left-hand side of assignment",
			ast.SpanOf(e), "cannot assign to this expression").Build())
		return types.Unknown{}
	}

	if types.ContainsMapping(t) {
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidMapType,
			"storage maps cannot be assigned as a whole",
			ast.SpanOf(e), fmt.Sprintf("has type `%s`", t)).
			WithHint("assign individual entries with `map[key] = value`").Build())
		return types.Unknown{}
	}
	return t
}

// assignName resolves a plain assignment target without counting it as a
// read.
func (c *Checker) assignName(n *ast.NameExpr) types.Type {
	name := n.Name.Value
	span := ast.SpanOf(&n.Name)
	sym := c.scope.LookupAt(name, n.Name.Pos.Offset)
	if sym == nil {
		c.report(errors.UndefinedName(name, span, errors.SimilarNames(name, c.valueNames(n.Name.Pos.Offset))))
		return types.Unknown{}
	}

	switch sym.Kind {
	case SymbolLocal:
		if !sym.Mutable {
			c.report(errors.AssignToImmutable(name, span, sym.NameSpan, false))
		}
		return c.localType(sym)
	case SymbolParameter:
		c.report(errors.AssignToImmutable(name, span, sym.NameSpan, true))
		return sym.Type
	case SymbolField:
		c.report(c.bareField(name, span))
		return types.Unknown{}
	default:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidAssignTarget,
			fmt.Sprintf("cannot assign to %s `%s`", sym.Kind, name),
			span, "not assignable").Build())
		return types.Unknown{}
	}
}

// checkMutableRoot reports assignments into an element of an immutable
// local. Storage reached through self is always writable.
func (c *Checker) checkMutableRoot(e ast.Expr) {
	for {
		switch n := ast.Unparen(e).(type) {
		case *ast.FieldExpr:
			e = n.Target
			continue
		case *ast.IndexExpr:
			e = n.Target
			continue
		case *ast.NameExpr:
			sym := c.scope.LookupAt(n.Name.Value, n.Name.Pos.Offset)
			if sym == nil {
				return
			}
			switch {
			case sym.Kind == SymbolLocal && !sym.Mutable:
				c.report(errors.AssignToImmutable(sym.Name, ast.SpanOf(&n.Name), sym.NameSpan, false))
			case sym.Kind == SymbolParameter:
				c.report(errors.AssignToImmutable(sym.Name, ast.SpanOf(&n.Name), sym.NameSpan, true))
			}
		}
		return
	}
}

// augAssign checks `a op= b` as `a = a op b`, typing the target once.
func (c *Checker) augAssign(s *ast.AugAssignStmt) {
	bin := &ast.BinaryExpr{Left: s.Target, Op: s.Op, Right: s.Value}
	c.out.Desugared[s] = &ast.AssignStmt{Pos: s.Pos, EndPos: s.EndPos, Target: s.Target, Value: bin}

	target := c.place(s.Target)
	c.markRead(s.Target)

	value := c.value(s.Value, target)
	result := c.binaryResult(bin, target, value)
	c.record(bin, result)
	c.expect(target, result, bin)
}

// markRead counts the root local of a place as used.
func (c *Checker) markRead(e ast.Expr) {
	if n, ok := ast.Unparen(e).(*ast.NameExpr); ok {
		if sym := c.scope.LookupAt(n.Name.Value, n.Name.Pos.Offset); sym != nil {
			c.used[sym] = true
		}
	}
}

func (c *Checker) localType(sym *Symbol) types.Type {
	if t, ok := c.out.LocalTypes[sym]; ok {
		return t
	}
	if sym.Type != nil {
		return sym.Type
	}
	return types.Unknown{}
}

func (c *Checker) valueNames(offset int) []string {
	return c.scope.VisibleNames(offset, func(s *Symbol) bool {
		return s.Kind.IsValue() || s.Kind == SymbolFunction
	})
}

func (c *Checker) bareField(name string, span ast.Span) errors.Diagnostic {
	return errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedName,
		fmt.Sprintf("cannot find value `%s` in this scope", name),
		span, "undefined").
		WithHint(fmt.Sprintf("contract fields are accessed through self: `self.%s`", name)).
		Build()
}
