package semantic

import (
	"fmt"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/stdlib"
	"ferrum/internal/types"
)

func (c *Checker) call(call *ast.CallExpr) types.Type {
	switch callee := ast.Unparen(call.Callee).(type) {
	case *ast.NameExpr:
		return c.callName(call, callee)
	case *ast.PathExpr:
		return c.callPath(call, callee)
	case *ast.FieldExpr:
		return c.callMember(call, callee)
	default:
		t := c.expr(call.Callee, nil)
		if !types.IsUnknown(t) {
			c.report(errors.NotCallable(fmt.Sprintf("a value of type `%s`", t), ast.SpanOf(call.Callee)))
		}
		c.looseArgs(call.Args)
		return types.Unknown{}
	}
}

func (c *Checker) callName(call *ast.CallExpr, callee *ast.NameExpr) types.Type {
	name := callee.Name.Value
	span := ast.SpanOf(&callee.Name)
	sym := c.scope.LookupAt(name, callee.Name.Pos.Offset)
	if sym == nil {
		candidates := c.scope.VisibleNames(callee.Name.Pos.Offset, func(s *Symbol) bool {
			return s.Kind == SymbolFunction || s.Kind == SymbolType || s.Kind == SymbolContract
		})
		c.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedName,
			fmt.Sprintf("cannot find function `%s` in this scope", name),
			span, "undefined").
			WithSuggestions(errors.SimilarNames(name, candidates)).Build())
		c.looseArgs(call.Args)
		return types.Unknown{}
	}

	switch sym.Kind {
	case SymbolType:
		return c.cast(call, sym)

	case SymbolContract:
		return c.contractValue(call, sym)

	case SymbolFunction:
		if fn := sym.Function; fn.Contract != nil && fn.Sig.TakesSelf {
			c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidSelf,
				fmt.Sprintf("`%s` takes `self` and must be called through it", name),
				span, "called without `self`").
				WithHint(fmt.Sprintf("call it as `self.%s()`", name)).Build())
			c.looseArgs(call.Args)
			return fn.Sig.Return
		}
		return c.callFunction(call, sym, CallFunction)

	case SymbolEvent:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorNotCallable,
			fmt.Sprintf("event `%s` is not callable", name),
			span, "not a function").
			WithHint(fmt.Sprintf("use `emit %s(...)` to log an event", name)).Build())

	case SymbolField:
		c.report(c.bareField(name, span))

	default:
		c.report(errors.NotCallable(fmt.Sprintf("%s `%s`", sym.Kind, name), span))
	}
	c.looseArgs(call.Args)
	return types.Unknown{}
}

func (c *Checker) callPath(call *ast.CallExpr, path *ast.PathExpr) types.Type {
	head := path.Segments[0]
	mod := c.scope.LookupAt(head.Value, head.Pos.Offset)

	switch {
	case mod == nil:
		c.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedName,
			fmt.Sprintf("cannot find module `%s` in this scope", head.Value),
			ast.SpanOf(head), "undefined").
			WithSuggestions(errors.SimilarNames(head.Value, c.moduleNames(head.Pos.Offset))).
			WithHint(fmt.Sprintf("import it with `use std::%s`", head.Value)).Build())
	case mod.Kind != SymbolModule:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorNotCallable,
			fmt.Sprintf("expected module, found %s `%s`", mod.Kind, head.Value),
			ast.SpanOf(head), "not a module").Build())
	case len(path.Segments) != 2:
		c.report(errors.NotCallable(fmt.Sprintf("`%s`", ast.ExprString(path)), ast.SpanOf(path)))
	default:
		fnName := path.Segments[1]
		def, ok := mod.Module.Functions[fnName.Value]
		if !ok {
			c.report(errors.NewDiagnostic(errors.DeclarationError, errors.ErrorUndefinedName,
				fmt.Sprintf("cannot find function `%s` in module `%s`", fnName.Value, mod.Module.Path),
				ast.SpanOf(fnName), "not found").
				WithSuggestions(errors.SimilarNames(fnName.Value, mod.Module.FunctionNames())).Build())
			break
		}
		return c.callFunction(call, c.stdSymbol(def), CallFunction)
	}
	c.looseArgs(call.Args)
	return types.Unknown{}
}

func (c *Checker) callMember(call *ast.CallExpr, member *ast.FieldExpr) types.Type {
	target := c.expr(member.Target, nil)
	name := member.Field.Value
	span := ast.SpanOf(&member.Field)

	ct, ok := target.(types.Contract)
	if !ok {
		if !types.IsUnknown(target) {
			c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorFieldNotFound,
				fmt.Sprintf("no function `%s` on type `%s`", name, target),
				span, "unknown function").Build())
		}
		c.looseArgs(call.Args)
		return types.Unknown{}
	}

	contract := c.contractByName(ct.Name)
	var sym *Symbol
	if contract != nil {
		sym = contract.Member(name)
	}
	if sym == nil || sym.Kind != SymbolFunction {
		var names []string
		if contract != nil {
			for _, fn := range contract.Functions {
				names = append(names, fn.Symbol.Name)
			}
		}
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorFieldNotFound,
			fmt.Sprintf("no function `%s` on contract `%s`", name, ct.Name),
			span, "unknown function").
			WithSuggestions(errors.SimilarNames(name, names)).Build())
		c.looseArgs(call.Args)
		return types.Unknown{}
	}

	if _, isSelf := ast.Unparen(member.Target).(*ast.SelfExpr); isSelf {
		return c.callFunction(call, sym, CallMethod)
	}
	if sym.Visibility != Public {
		c.report(errors.PrivateFunction(ct.Name, name, span, sym.DeclHead()))
	}
	return c.callFunction(call, sym, CallExternal)
}

func (c *Checker) callFunction(call *ast.CallExpr, sym *Symbol, kind CallKind) types.Type {
	sig := sym.Function.Sig
	c.args(call.Args, sig.Params, sym.Name, ast.SpanOf(call))
	c.out.Calls[call] = &CallInfo{Kind: kind, Target: sym, Type: sig.Return}
	return sig.Return
}

// args checks call or emit arguments against params. Labels are optional
// but must name the matching parameter.
func (c *Checker) args(args []*ast.CallArg, params []ParamInfo, name string, span ast.Span) {
	if len(args) != len(params) {
		c.report(errors.WrongArgumentCount(name, len(params), len(args), span))
	}
	for i, a := range args {
		var want types.Type
		if i < len(params) {
			want = params[i].Type
			if a.Label != nil && a.Label.Value != params[i].Name {
				c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorArgumentLabel,
					"argument label mismatch",
					ast.SpanOf(a.Label), fmt.Sprintf("expected `%s`", params[i].Name)).Build())
			}
		}
		got := c.value(a.Value, want)
		c.expect(want, got, a.Value)
	}
}

// looseArgs types arguments of a call whose target is unknown.
func (c *Checker) looseArgs(args []*ast.CallArg) {
	for _, a := range args {
		c.value(a.Value, nil)
	}
}

// cast checks an explicit conversion `T(expr)`.
func (c *Checker) cast(call *ast.CallExpr, sym *Symbol) types.Type {
	if sym.Type == nil {
		c.report(errors.NotCallable(fmt.Sprintf("type `%s`", sym.Name), ast.SpanOf(call.Callee)))
		c.looseArgs(call.Args)
		return types.Unknown{}
	}
	target := sym.Type
	if len(call.Args) != 1 {
		c.report(errors.WrongArgumentCount(sym.Name, 1, len(call.Args), ast.SpanOf(call)))
		c.looseArgs(call.Args)
		return target
	}
	arg := call.Args[0]
	if arg.Label != nil {
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorArgumentLabel,
			"conversions do not take labelled arguments",
			ast.SpanOf(arg.Label), "unexpected label").Build())
	}
	c.out.Calls[call] = &CallInfo{Kind: CallCast, Target: sym, Type: target}

	switch to := target.(type) {
	case types.Integer:
		if isUntypedLiteral(arg.Value) {
			c.value(arg.Value, to)
			if v, ok := c.out.Consts[arg.Value]; ok {
				c.out.Consts[call] = v
			}
			return to
		}
		from := c.value(arg.Value, nil)
		if types.IsUnknown(from) {
			return to
		}
		fromInt, ok := from.(types.Integer)
		if !ok {
			c.report(invalidCast(from, to, ast.SpanOf(arg.Value)))
			return to
		}
		if v, ok := c.out.Consts[arg.Value]; ok {
			c.out.Consts[call] = types.Cast(v, fromInt, to)
		}
		return to

	case types.Address:
		if isUntypedLiteral(arg.Value) {
			c.value(arg.Value, types.U256)
			return to
		}
		from := c.value(arg.Value, nil)
		switch from.(type) {
		case types.Unknown, types.Address, types.Contract:
		default:
			c.report(invalidCast(from, to, ast.SpanOf(arg.Value)))
		}
		return to

	default:
		from := c.value(arg.Value, nil)
		if !types.IsUnknown(from) && !types.Equal(from, to) {
			c.report(invalidCast(from, to, ast.SpanOf(arg.Value)))
		}
		return to
	}
}

func invalidCast(from, to types.Type, span ast.Span) errors.Diagnostic {
	return errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidCast,
		fmt.Sprintf("cannot convert `%s` to `%s`", from, to),
		span, fmt.Sprintf("has type `%s`", from)).Build()
}

// contractValue checks `Foo(addr)`, which refers to a deployed contract.
func (c *Checker) contractValue(call *ast.CallExpr, sym *Symbol) types.Type {
	t := sym.Contract.Type()
	params := []ParamInfo{{Name: "address", Type: types.Address{}}}
	c.args(call.Args, params, sym.Name, ast.SpanOf(call))
	c.out.Calls[call] = &CallInfo{Kind: CallContract, Target: sym, Type: t}
	return t
}

func (c *Checker) contractByName(name string) *ContractInfo {
	sym := c.table.Root.LookupLocal(name)
	if sym == nil || sym.Contract == nil {
		return nil
	}
	return sym.Contract
}

func (c *Checker) moduleNames(offset int) []string {
	var names []string
	for _, p := range stdlib.ModulePaths() {
		names = append(names, stdlib.GetModuleDefinition(p).Name)
	}
	return append(names, c.scope.VisibleNames(offset, func(s *Symbol) bool { return s.Kind == SymbolModule })...)
}

// stdSymbol returns one shared symbol per standard library function.
func (c *Checker) stdSymbol(def *stdlib.FunctionDefinition) *Symbol {
	if sym, ok := c.std[def]; ok {
		return sym
	}
	sym := newStdFunction(def)
	c.std[def] = sym
	return sym
}
