package semantic

import (
	"fmt"
	"math/big"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/types"
)

// constant checks the initializer of a module constant and records its
// folded value. Constants are evaluated on first reference, so one may use
// another declared after it.
func (c *Checker) constant(sym *Symbol) {
	if c.evaluated[sym] {
		return
	}
	c.evaluated[sym] = true
	node := sym.Node.(*ast.Const)

	want, ok := sym.Type.(types.Integer)
	if !ok {
		if !types.IsUnknown(sym.Type) {
			c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorNonConstantValue,
				fmt.Sprintf("constant `%s` must have an integer type", sym.Name),
				ast.SpanOf(node.Type), fmt.Sprintf("found `%s`", sym.Type)).Build())
		}
		return
	}
	if e := c.nonConstant(node.Value); e != nil {
		c.report(errors.NonConstantValue(sym.Name, ast.SpanOf(e)))
		return
	}

	fn, scope := c.fn, c.scope
	c.fn, c.scope = nil, c.table.Root
	c.evaluating[sym] = true
	defer func() {
		c.fn, c.scope = fn, scope
		delete(c.evaluating, sym)
	}()

	reported := c.diags.Len()
	t := c.value(node.Value, want)
	if !c.expect(want, t, node.Value) || c.failedSince(reported) {
		return
	}
	v, folded := c.out.Consts[node.Value]
	if !folded {
		c.report(errors.NonConstantValue(sym.Name, ast.SpanOf(node.Value)))
		return
	}
	c.out.Constants[sym] = v
}

// failedSince reports whether an error was reported after the first n
// diagnostics.
func (c *Checker) failedSince(n int) bool {
	for _, d := range c.diags.Items()[n:] {
		if d.IsError() {
			return true
		}
	}
	return false
}

// constantRef types a reference to a constant and folds it. A constant that
// failed to evaluate is Unknown.
func (c *Checker) constantRef(n *ast.NameExpr, sym *Symbol) types.Type {
	if c.evaluating[sym] {
		c.report(errors.RecursiveDefinition("constant", sym.Name, ast.SpanOf(&n.Name), sym.NameSpan))
		return types.Unknown{}
	}
	c.constant(sym)
	v, ok := c.out.Constants[sym]
	if !ok {
		return types.Unknown{}
	}
	c.out.Consts[n] = new(big.Int).Set(v)
	return sym.Type
}

// nonConstant returns the first part of e that cannot be folded, or nil.
// Names are left to name resolution.
func (c *Checker) nonConstant(e ast.Expr) ast.Expr {
	switch node := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.NameExpr:
		return nil
	case *ast.ParenExpr:
		return c.nonConstant(node.Inner)
	case *ast.UnaryExpr:
		return c.nonConstant(node.Operand)
	case *ast.BinaryExpr:
		if bad := c.nonConstant(node.Left); bad != nil {
			return bad
		}
		return c.nonConstant(node.Right)
	case *ast.CallExpr:
		callee, ok := ast.Unparen(node.Callee).(*ast.NameExpr)
		if !ok {
			return e
		}
		sym := c.table.Root.LookupAt(callee.Name.Value, callee.Name.Pos.Offset)
		if sym == nil || sym.Kind != SymbolType || len(node.Args) != 1 {
			return e
		}
		return c.nonConstant(node.Args[0].Value)
	}
	return e
}
