package semantic

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/types"
)

// value checks e where a value is required. Storage maps are not values.
func (c *Checker) value(e ast.Expr, expected types.Type) types.Type {
	t := c.expr(e, expected)
	if types.ContainsMapping(t) {
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidMapType,
			"storage maps cannot be used as values",
			ast.SpanOf(e), fmt.Sprintf("has type `%s`", t)).
			WithHint("read a single entry with `map[key]`").Build())
		return types.Unknown{}
	}
	return t
}

// expr types e. expected is the type the context wants, or nil; it only
// guides untyped integer literals.
func (c *Checker) expr(e ast.Expr, expected types.Type) types.Type {
	var t types.Type
	switch node := e.(type) {
	case *ast.IntLit:
		t = c.intLit(node, expected)
	case *ast.BoolLit:
		t = types.Bool{}
	case *ast.NameExpr:
		t = c.name(node)
	case *ast.SelfExpr:
		t = c.self(node)
	case *ast.PathExpr:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorNotAValue,
			fmt.Sprintf("expected value, found path `%s`", ast.ExprString(node)),
			ast.SpanOf(node), "not a value").
			WithHint("module functions must be called").Build())
		t = types.Unknown{}
	case *ast.FieldExpr:
		t = c.field(node)
	case *ast.IndexExpr:
		t = c.index(node)
	case *ast.CallExpr:
		t = c.call(node)
	case *ast.BinaryExpr:
		t = c.binary(node, expected)
	case *ast.UnaryExpr:
		t = c.unary(node, expected)
	case *ast.TupleExpr:
		t = c.tuple(node, expected)
	case *ast.ParenExpr:
		t = c.expr(node.Inner, expected)
		if v, ok := c.out.Consts[node.Inner]; ok {
			c.out.Consts[node] = v
		}
	default:
		t = types.Unknown{}
	}
	c.record(e, t)
	return t
}

func (c *Checker) record(e ast.Expr, t types.Type) {
	c.out.ExprTypes[e] = t
}

func (c *Checker) intLit(lit *ast.IntLit, expected types.Type) types.Type {
	t := types.U256
	if it, ok := expected.(types.Integer); ok {
		t = it
	}
	if !t.Fits(lit.Value) {
		c.literalOutOfRange(lit.Value, t, ast.SpanOf(lit))
		return types.Unknown{}
	}
	c.out.Consts[lit] = lit.Value
	return t
}

func (c *Checker) literalOutOfRange(v *big.Int, t types.Integer, span ast.Span) {
	smallest := ""
	if s, ok := types.Smallest(v); ok {
		smallest = s.String()
	}
	c.report(errors.LiteralOutOfRange(v.String(), t.String(), smallest, span))
}

func (c *Checker) name(n *ast.NameExpr) types.Type {
	name := n.Name.Value
	span := ast.SpanOf(&n.Name)
	sym := c.scope.LookupAt(name, n.Name.Pos.Offset)
	if sym == nil {
		c.report(errors.UndefinedName(name, span, errors.SimilarNames(name, c.valueNames(n.Name.Pos.Offset))))
		return types.Unknown{}
	}

	switch sym.Kind {
	case SymbolLocal:
		c.used[sym] = true
		return c.localType(sym)
	case SymbolParameter:
		return sym.Type
	case SymbolConstant:
		return c.constantRef(n, sym)
	case SymbolField:
		c.report(c.bareField(name, span))
	default:
		c.report(errors.NotAValue(sym.Kind.String(), name, span))
	}
	return types.Unknown{}
}

func (c *Checker) self(s *ast.SelfExpr) types.Type {
	switch {
	case c.fn.Contract == nil:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidSelf,
			"`self` can only be used in contract functions",
			ast.SpanOf(s), "not available here").Build())
		return types.Unknown{}
	case !c.fn.Sig.TakesSelf:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidSelf,
			fmt.Sprintf("`self` is not available in `%s`", c.fn.Symbol.Name),
			ast.SpanOf(s), "not available here").
			WithHint("add `self` as the first parameter").Build())
		return types.Unknown{}
	}
	return c.fn.Contract.Type()
}

func (c *Checker) field(f *ast.FieldExpr) types.Type {
	target := c.expr(f.Target, nil)
	name := f.Field.Value
	span := ast.SpanOf(&f.Field)

	switch t := target.(type) {
	case types.Unknown:
		return t

	case types.Contract:
		if _, isSelf := ast.Unparen(f.Target).(*ast.SelfExpr); !isSelf {
			c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorFieldNotFound,
				fmt.Sprintf("fields of contract `%s` cannot be accessed from outside", t.Name),
				span, "not accessible").
				WithHint("call a `pub` function of the contract instead").Build())
			return types.Unknown{}
		}
		member := c.fn.Contract.Member(name)
		if member != nil && member.Kind == SymbolField {
			return member.Type
		}
		d := errors.NewDiagnostic(errors.TypeError, errors.ErrorFieldNotFound,
			fmt.Sprintf("no field `%s` on contract `%s`", name, t.Name),
			span, "unknown field")
		if member != nil && member.Kind == SymbolFunction {
			d.WithHint(fmt.Sprintf("`%s` is a function, call it with `self.%s()`", name, name))
		} else {
			d.WithSuggestions(errors.SimilarNames(name, fieldNames(c.fn.Contract)))
		}
		c.report(d.Build())
		return types.Unknown{}

	case types.Tuple:
		if idx, ok := tupleIndex(name); ok && idx < len(t.Elems) {
			return t.Elems[idx]
		}
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorFieldNotFound,
			fmt.Sprintf("no field `%s` on type `%s`", name, t),
			span, "unknown field").
			WithHint(fmt.Sprintf("tuple elements are named `item0` to `item%d`", len(t.Elems)-1)).Build())
		return types.Unknown{}

	default:
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorFieldNotFound,
			fmt.Sprintf("no field `%s` on type `%s`", name, t),
			span, "unknown field").Build())
		return types.Unknown{}
	}
}

// tupleIndex parses a tuple element name such as "item2".
func tupleIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, "item")
	if !ok || digits == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 || strconv.Itoa(idx) != digits {
		return 0, false
	}
	return idx, true
}

func fieldNames(contract *ContractInfo) []string {
	names := make([]string, len(contract.Fields))
	for i, f := range contract.Fields {
		names[i] = f.Name
	}
	return names
}

func (c *Checker) index(ix *ast.IndexExpr) types.Type {
	target := c.expr(ix.Target, nil)

	switch t := target.(type) {
	case types.Unknown:
		c.value(ix.Index, nil)
		return t
	case types.Mapping:
		key := c.value(ix.Index, t.Key)
		c.expect(t.Key, key, ix.Index)
		return t.Value
	default:
		c.value(ix.Index, nil)
		c.report(errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidIndex,
			fmt.Sprintf("cannot index into a value of type `%s`", t),
			ast.SpanOf(ix.Target), "cannot be indexed").Build())
		return types.Unknown{}
	}
}

func (c *Checker) tuple(tup *ast.TupleExpr, expected types.Type) types.Type {
	if len(tup.Elems) == 0 {
		return types.Unit{}
	}
	want, _ := expected.(types.Tuple)
	elems := make([]types.Type, len(tup.Elems))
	for i, el := range tup.Elems {
		var exp types.Type
		if len(want.Elems) == len(tup.Elems) {
			exp = want.Elems[i]
		}
		elems[i] = c.value(el, exp)
	}
	return types.Tuple{Elems: elems}
}

// isUntypedLiteral reports whether e is built only from integer literals
// and so takes its type from context.
func isUntypedLiteral(e ast.Expr) bool {
	switch n := ast.Unparen(e).(type) {
	case *ast.IntLit:
		return true
	case *ast.UnaryExpr:
		return (n.Op == "-" || n.Op == "~") && isUntypedLiteral(n.Operand)
	case *ast.BinaryExpr:
		return types.IsArithmeticOp(n.Op) && isUntypedLiteral(n.Left) && isUntypedLiteral(n.Right)
	}
	return false
}

func (c *Checker) binary(b *ast.BinaryExpr, expected types.Type) types.Type {
	if b.Op == "and" || b.Op == "or" {
		left := c.value(b.Left, types.Bool{})
		c.expect(types.Bool{}, left, b.Left)
		right := c.value(b.Right, types.Bool{})
		c.expect(types.Bool{}, right, b.Right)
		return types.Bool{}
	}

	hint := expected
	if types.IsComparisonOp(b.Op) {
		hint = nil
	}

	var left, right types.Type
	if isUntypedLiteral(b.Left) && !isUntypedLiteral(b.Right) {
		right = c.value(b.Right, hint)
		left = c.value(b.Left, right)
	} else {
		left = c.value(b.Left, hint)
		right = c.value(b.Right, left)
	}
	return c.binaryResult(b, left, right)
}

// binaryResult applies the operator typing rules to already typed operands
// and folds constants.
func (c *Checker) binaryResult(b *ast.BinaryExpr, left, right types.Type) types.Type {
	if types.IsUnknown(left) || types.IsUnknown(right) {
		return types.Unknown{}
	}

	if !types.Equal(left, right) || !supportsOperator(b.Op, left) {
		c.report(errors.InvalidOperands(b.Op, left.String(), right.String(),
			ast.SpanOf(b), ast.SpanOf(b.Left), ast.SpanOf(b.Right)))
		return types.Unknown{}
	}
	if types.IsComparisonOp(b.Op) {
		return types.Bool{}
	}

	it := left.(types.Integer)
	lv, lok := c.out.Consts[b.Left]
	rv, rok := c.out.Consts[b.Right]
	if lok && rok {
		v, err := types.Eval(b.Op, it, lv, rv)
		if err != nil {
			c.report(errors.ConstantRevert(revertReason(b.Op, err), ast.SpanOf(b)))
		} else {
			c.out.Consts[b] = v
		}
	}
	return it
}

func supportsOperator(op string, t types.Type) bool {
	switch op {
	case "==", "!=":
		switch t.(type) {
		case types.Integer, types.Bool, types.Address, types.Contract:
			return true
		}
		return false
	default:
		_, ok := t.(types.Integer)
		return ok
	}
}

func (c *Checker) unary(u *ast.UnaryExpr, expected types.Type) types.Type {
	switch u.Op {
	case "not":
		t := c.value(u.Operand, types.Bool{})
		c.expect(types.Bool{}, t, u.Operand)
		return types.Bool{}

	case "-":
		if lit, ok := ast.Unparen(u.Operand).(*ast.IntLit); ok {
			return c.negativeLiteral(u, lit, expected)
		}
		t := c.value(u.Operand, expected)
		if types.IsUnknown(t) {
			return t
		}
		it, ok := t.(types.Integer)
		if !ok || !it.Signed {
			c.report(c.invalidUnary(u, t, "negated"))
			return types.Unknown{}
		}
		if v, ok := c.out.Consts[u.Operand]; ok {
			neg, err := types.Negate(it, v)
			if err != nil {
				c.report(errors.ConstantRevert(revertReason("neg", err), ast.SpanOf(u)))
			} else {
				c.out.Consts[u] = neg
			}
		}
		return it

	case "~":
		t := c.value(u.Operand, expected)
		if types.IsUnknown(t) {
			return t
		}
		it, ok := t.(types.Integer)
		if !ok {
			c.report(c.invalidUnary(u, t, "inverted"))
			return types.Unknown{}
		}
		if v, ok := c.out.Consts[u.Operand]; ok {
			c.out.Consts[u] = types.Complement(it, v)
		}
		return it
	}
	return types.Unknown{}
}

// negativeLiteral types `-N` as a single literal so the most negative value
// of a signed type is accepted.
func (c *Checker) negativeLiteral(u *ast.UnaryExpr, lit *ast.IntLit, expected types.Type) types.Type {
	t := types.U256
	if it, ok := expected.(types.Integer); ok {
		t = it
	}
	for e := u.Operand; ; {
		c.record(e, t)
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			break
		}
		e = p.Inner
	}

	v := new(big.Int).Neg(lit.Value)
	if !t.Fits(v) {
		c.literalOutOfRange(v, t, ast.SpanOf(u))
		return types.Unknown{}
	}
	c.out.Consts[u] = v
	return t
}

func (c *Checker) invalidUnary(u *ast.UnaryExpr, t types.Type, verb string) errors.Diagnostic {
	d := errors.NewDiagnostic(errors.TypeError, errors.ErrorInvalidUnaryOperation,
		fmt.Sprintf("a value of type `%s` cannot be %s", t, verb),
		ast.SpanOf(u), fmt.Sprintf("`%s` applied to `%s`", u.Op, t))
	if it, ok := t.(types.Integer); ok && !it.Signed {
		d.WithHint(fmt.Sprintf("cast to `i%d` first", it.Bits))
	}
	return d.Build()
}
