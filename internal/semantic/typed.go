package semantic

import (
	"fmt"
	"math/big"

	"ferrum/internal/ast"
	"ferrum/internal/types"
)

type CallKind int

const (
	// CallFunction calls a module-level, imported or same-contract function.
	CallFunction CallKind = iota
	// CallMethod calls a function of the current contract through self.
	CallMethod
	// CallExternal calls a pub function of another contract value.
	CallExternal
	// CallCast converts its single argument to Target.Type.
	CallCast
	// CallContract wraps an address into a contract value.
	CallContract
)

// CallInfo records what a call expression resolved to.
type CallInfo struct {
	Kind   CallKind
	Target *Symbol
	Type   types.Type // result type
}

// TypedModule is the output of analysis handed to code generation.
type TypedModule struct {
	Module  *ast.Module
	Symbols *SymbolTable

	// ExprTypes holds the type of every expression in every well-formed
	// function body.
	ExprTypes map[ast.Expr]types.Type
	// Consts holds the folded value of constant integer expressions.
	Consts map[ast.Expr]*big.Int
	// Constants holds the value of every module constant that folded.
	Constants map[*Symbol]*big.Int
	// LocalTypes holds the type of every local binding.
	LocalTypes map[*Symbol]types.Type
	Calls      map[*ast.CallExpr]*CallInfo
	// Desugared maps `a op= b` to its `a = a op b` form.
	Desugared map[*ast.AugAssignStmt]*ast.AssignStmt
	// CallContexts holds the safety context of every call site.
	CallContexts map[*ast.CallExpr]SafetyContext
}

// TypeOf returns the type recorded for e, or Unknown.
func (tm *TypedModule) TypeOf(e ast.Expr) types.Type {
	if t, ok := tm.ExprTypes[e]; ok {
		return t
	}
	return types.Unknown{}
}

// ConstValue returns the folded value of e, if any.
func (tm *TypedModule) ConstValue(e ast.Expr) (*big.Int, bool) {
	v, ok := tm.Consts[e]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(v), true
}

// Verify asserts the contract a typed module offers to code generation:
// every expression of every function body has a known type and every call
// site passed the safety analysis.
func Verify(tm *TypedModule) error {
	if tm == nil || tm.Symbols == nil {
		return fmt.Errorf("verify: nil module")
	}
	for _, fn := range tm.Symbols.Functions() {
		if fn.Malformed {
			return fmt.Errorf("verify: function %q is malformed", fn.Symbol.Name)
		}
		var err error
		// Callees name functions and types rather than values.
		callees := make(map[ast.Expr]bool)
		ast.Inspect(fn.Node, func(n ast.Node) bool {
			if err != nil {
				return false
			}
			e, ok := n.(ast.Expr)
			if !ok {
				return true
			}
			if call, isCall := e.(*ast.CallExpr); isCall {
				for c := call.Callee; ; {
					callees[c] = true
					p, paren := c.(*ast.ParenExpr)
					if !paren {
						break
					}
					c = p.Inner
				}
			}
			if callees[e] {
				return true
			}
			t, typed := tm.ExprTypes[e]
			if !typed || types.IsUnknown(t) {
				err = fmt.Errorf("verify: %s: expression `%s` has no known type",
					position(e.NodePos()), ast.ExprString(e))
				return false
			}
			if call, isCall := e.(*ast.CallExpr); isCall {
				if _, checked := tm.CallContexts[call]; !checked {
					err = fmt.Errorf("verify: %s: call `%s` was not safety checked",
						position(e.NodePos()), ast.ExprString(e))
					return false
				}
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	for sym, t := range tm.LocalTypes {
		if types.IsUnknown(t) {
			return fmt.Errorf("verify: %s: local `%s` has no known type", position(sym.NameSpan.Start), sym.Name)
		}
	}
	return nil
}

func position(p ast.Position) string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}
