package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"ferrum/grammar"
	"ferrum/internal/ast"
)

// lowerer converts the participle parse tree into the analyzer's AST,
// computing end positions and resolving binary operator precedence.
type lowerer struct {
	errors []ParseError
}

func (l *lowerer) errorf(p ast.Position, length int, format string, args ...any) {
	l.errors = append(l.errors, ParseError{Message: fmt.Sprintf(format, args...), Position: p, Length: length})
}

func (l *lowerer) module(f *grammar.File, path, source string) *ast.Module {
	mod := &ast.Module{
		Pos:    ast.Position{Filename: path, Line: 1, Column: 1},
		EndPos: endOfSource(path, source),
	}
	for _, it := range f.Items {
		switch {
		case it.Use != nil:
			mod.Items = append(mod.Items, l.use(it.Use))
		case it.Event != nil:
			mod.Items = append(mod.Items, l.event(it.Event))
		case it.Contract != nil:
			mod.Items = append(mod.Items, l.contract(it.Contract))
		case it.Function != nil:
			mod.Items = append(mod.Items, l.function(it.Function))
		case it.Const != nil:
			mod.Items = append(mod.Items, l.constant(it.Const))
		case it.Alias != nil:
			typ := l.typeExpr(it.Alias.Type)
			mod.Items = append(mod.Items, &ast.TypeAlias{
				Pos:    pos(it.Alias.Pos),
				EndPos: typ.NodeEndPos(),
				Name:   l.ident(it.Alias.Name),
				Type:   typ,
			})
		}
	}
	return mod
}

func (l *lowerer) constant(c *grammar.Const) *ast.Const {
	value := l.expr(c.Value)
	return &ast.Const{
		Pos:    pos(c.Pos),
		EndPos: value.NodeEndPos(),
		Name:   l.ident(c.Name),
		Type:   l.typeExpr(c.Type),
		Value:  value,
	}
}

func (l *lowerer) ident(n *grammar.Name) ast.Ident {
	return ast.Ident{Pos: pos(n.Pos), EndPos: after(n.Pos, n.Value), Value: n.Value}
}

func (l *lowerer) identPtr(n *grammar.Name) *ast.Ident {
	id := l.ident(n)
	return &id
}

func (l *lowerer) use(u *grammar.Use) *ast.Use {
	out := &ast.Use{
		Pos:    pos(u.Pos),
		EndPos: after(u.Head.Pos, u.Head.Value),
		Path:   []*ast.Ident{l.identPtr(u.Head)},
	}
	for i, seg := range u.Segments {
		if seg.Name != nil {
			out.Path = append(out.Path, l.identPtr(seg.Name))
			out.EndPos = after(seg.Name.Pos, seg.Name.Value)
			continue
		}
		if i != len(u.Segments)-1 {
			l.errorf(pos(seg.Pos), 1, "an import group must be the last segment of a use path")
		}
		for _, n := range seg.Group {
			out.Items = append(out.Items, l.identPtr(n))
		}
		out.EndPos = after(seg.Close.Pos, seg.Close.Value)
	}
	return out
}

func (l *lowerer) event(e *grammar.Event) *ast.Event {
	out := &ast.Event{
		Pos:    pos(e.Pos),
		EndPos: after(e.Close.Pos, e.Close.Value),
		Name:   l.ident(e.Name),
	}
	for _, f := range e.Fields {
		typ := l.typeExpr(f.Type)
		out.Fields = append(out.Fields, &ast.EventField{
			Pos:     pos(f.Pos),
			EndPos:  typ.NodeEndPos(),
			Indexed: f.Indexed,
			Name:    l.ident(f.Name),
			Type:    typ,
		})
	}
	return out
}

func (l *lowerer) contract(c *grammar.Contract) *ast.Contract {
	out := &ast.Contract{
		Pos:    pos(c.Pos),
		EndPos: after(c.Close.Pos, c.Close.Value),
		Name:   l.ident(c.Name),
	}
	for _, it := range c.Items {
		switch {
		case it.Event != nil:
			out.Items = append(out.Items, l.event(it.Event))
		case it.Function != nil:
			out.Items = append(out.Items, l.function(it.Function))
		case it.Field != nil:
			typ := l.typeExpr(it.Field.Type)
			out.Items = append(out.Items, &ast.Field{
				Pos:    pos(it.Field.Pos),
				EndPos: typ.NodeEndPos(),
				Name:   l.ident(it.Field.Name),
				Type:   typ,
			})
		}
	}
	return out
}

func (l *lowerer) function(f *grammar.Function) *ast.Function {
	out := &ast.Function{
		Pos:  pos(f.Pos),
		Name: l.ident(f.Name),
	}
	for _, m := range f.Modifiers {
		span := &ast.Span{Start: pos(m.Pos), End: after(m.Pos, m.Keyword)}
		target := &out.PubSpan
		if m.Keyword == "unsafe" {
			target = &out.UnsafeSpan
		}
		if *target != nil {
			l.errorf(span.Start, len(m.Keyword), "duplicate `%s` modifier", m.Keyword)
			continue
		}
		*target = span
	}
	for _, p := range f.Params {
		if p.Self {
			out.Params = append(out.Params, &ast.Param{Pos: pos(p.Pos), EndPos: after(p.Pos, "self"), IsSelf: true})
			continue
		}
		typ := l.typeExpr(p.Type)
		out.Params = append(out.Params, &ast.Param{
			Pos:    pos(p.Pos),
			EndPos: typ.NodeEndPos(),
			Name:   l.ident(p.Name),
			Type:   typ,
		})
	}
	if f.Return != nil {
		out.Return = l.typeExpr(f.Return)
	}
	out.Body = l.block(f.Body)
	out.EndPos = out.Body.EndPos
	return out
}

func (l *lowerer) typeExpr(t *grammar.Type) ast.TypeExpr {
	if t.Tuple != nil {
		out := &ast.TupleType{
			Pos:    pos(t.Tuple.Pos),
			EndPos: after(t.Tuple.Close.Pos, t.Tuple.Close.Value),
		}
		for _, el := range t.Tuple.Elems {
			out.Elems = append(out.Elems, l.typeExpr(el))
		}
		return out
	}
	n := t.Named
	out := &ast.NamedType{
		Pos:    pos(n.Pos),
		EndPos: after(n.Name.Pos, n.Name.Value),
		Name:   l.ident(n.Name),
	}
	for _, a := range n.Args {
		out.Args = append(out.Args, l.typeExpr(a))
	}
	if n.Close != nil {
		out.EndPos = after(n.Close.Pos, n.Close.Value)
	}
	return out
}

func (l *lowerer) block(b *grammar.Block) *ast.Block {
	out := &ast.Block{
		Pos:    pos(b.Pos),
		EndPos: after(b.Close.Pos, b.Close.Value),
	}
	for _, s := range b.Stmts {
		if stmt := l.stmt(s); stmt != nil {
			out.Stmts = append(out.Stmts, stmt)
		}
	}
	return out
}

func (l *lowerer) stmt(s *grammar.Statement) ast.Stmt {
	switch {
	case s.Let != nil:
		return l.let(s.Let)
	case s.If != nil:
		return l.ifStmt(s.If)
	case s.While != nil:
		body := l.block(s.While.Body)
		return &ast.WhileStmt{Pos: pos(s.While.Pos), EndPos: body.EndPos, Cond: l.expr(s.While.Cond), Body: body}
	case s.Return != nil:
		out := &ast.ReturnStmt{Pos: pos(s.Return.Pos), EndPos: after(s.Return.Pos, "return")}
		if s.Return.Value != nil {
			out.Value = l.expr(s.Return.Value)
			out.EndPos = out.Value.NodeEndPos()
		}
		return out
	case s.Break != nil:
		start, end := pos(s.Break.Pos), after(s.Break.Pos, s.Break.Value)
		switch s.Break.Value {
		case "break":
			return &ast.BreakStmt{Pos: start, EndPos: end}
		case "continue":
			return &ast.ContinueStmt{Pos: start, EndPos: end}
		default:
			return &ast.RevertStmt{Pos: start, EndPos: end}
		}
	case s.Assert != nil:
		cond := l.expr(s.Assert.Cond)
		return &ast.AssertStmt{Pos: pos(s.Assert.Pos), EndPos: cond.NodeEndPos(), Cond: cond}
	case s.Emit != nil:
		return &ast.EmitStmt{
			Pos:    pos(s.Emit.Pos),
			EndPos: after(s.Emit.Args.Close.Pos, s.Emit.Args.Close.Value),
			Event:  l.ident(s.Emit.Name),
			Args:   l.args(s.Emit.Args),
		}
	case s.Unsafe != nil:
		body := l.block(s.Unsafe.Body)
		return &ast.UnsafeBlock{Pos: pos(s.Unsafe.Pos), EndPos: body.EndPos, Body: body}
	case s.Expr != nil:
		return l.exprStmt(s.Expr)
	}
	return nil
}

func (l *lowerer) let(s *grammar.Let) *ast.LetStmt {
	out := &ast.LetStmt{
		Pos:  pos(s.Pos),
		Mut:  s.Mut,
		Name: l.ident(s.Name),
	}
	out.EndPos = out.Name.EndPos
	if s.Type != nil {
		out.Type = l.typeExpr(s.Type)
		out.EndPos = out.Type.NodeEndPos()
	}
	if s.Value != nil {
		out.Value = l.expr(s.Value)
		out.EndPos = out.Value.NodeEndPos()
	}
	return out
}

func (l *lowerer) ifStmt(s *grammar.If) *ast.IfStmt {
	out := &ast.IfStmt{
		Pos:  pos(s.Pos),
		Cond: l.expr(s.Cond),
		Then: l.block(s.Then),
	}
	out.EndPos = out.Then.EndPos
	switch {
	case s.ElseIf != nil:
		out.ElseIf = l.ifStmt(s.ElseIf)
		out.EndPos = out.ElseIf.EndPos
	case s.Else != nil:
		out.Else = l.block(s.Else)
		out.EndPos = out.Else.EndPos
	}
	return out
}

func (l *lowerer) exprStmt(s *grammar.ExprStmt) ast.Stmt {
	target := l.expr(s.Target)
	if s.Op == "" {
		return &ast.ExprStmt{Pos: pos(s.Pos), EndPos: target.NodeEndPos(), Expr: target}
	}
	value := l.expr(s.Value)
	if s.Op == "=" {
		return &ast.AssignStmt{Pos: pos(s.Pos), EndPos: value.NodeEndPos(), Target: target, Value: value}
	}
	return &ast.AugAssignStmt{
		Pos:    pos(s.Pos),
		EndPos: value.NodeEndPos(),
		Target: target,
		Op:     strings.TrimSuffix(s.Op, "="),
		Value:  value,
	}
}

func (l *lowerer) args(c *grammar.CallArgs) []*ast.CallArg {
	out := make([]*ast.CallArg, 0, len(c.Args))
	for _, a := range c.Args {
		arg := &ast.CallArg{Pos: pos(a.Pos), Value: l.expr(a.Value)}
		if a.Label != nil {
			arg.Label = l.identPtr(a.Label)
		}
		out = append(out, arg)
	}
	return out
}

func (l *lowerer) expr(e *grammar.Expr) ast.Expr {
	out := l.and(e.Left)
	for _, r := range e.Right {
		out = &ast.BinaryExpr{Left: out, Op: "or", Right: l.and(r)}
	}
	return out
}

func (l *lowerer) and(e *grammar.AndExpr) ast.Expr {
	out := l.not(e.Left)
	for _, r := range e.Right {
		out = &ast.BinaryExpr{Left: out, Op: "and", Right: l.not(r)}
	}
	return out
}

func (l *lowerer) not(e *grammar.NotExpr) ast.Expr {
	if e.Not != nil {
		return &ast.UnaryExpr{Pos: pos(e.Pos), Op: "not", Operand: l.not(e.Not)}
	}
	left := l.binary(e.Operand.Left)
	if e.Operand.Op == "" {
		return left
	}
	return &ast.BinaryExpr{Left: left, Op: e.Operand.Op, Right: l.binary(e.Operand.Right)}
}

var binaryPrec = map[string]int{
	"|":  1,
	"^":  2,
	"&":  3,
	"<<": 4, ">>": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (l *lowerer) binary(b *grammar.BinaryExpr) ast.Expr {
	operands := []ast.Expr{l.unary(b.Left)}
	var ops []string

	reduce := func() {
		n := len(operands)
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		operands = append(operands[:n-2], &ast.BinaryExpr{Left: operands[n-2], Op: op, Right: operands[n-1]})
	}

	for _, t := range b.Tails {
		for len(ops) > 0 && binaryPrec[ops[len(ops)-1]] >= binaryPrec[t.Op] {
			reduce()
		}
		ops = append(ops, t.Op)
		operands = append(operands, l.unary(t.Right))
	}
	for len(ops) > 0 {
		reduce()
	}
	return operands[0]
}

func (l *lowerer) unary(u *grammar.UnaryExpr) ast.Expr {
	if u.Op != "" {
		return &ast.UnaryExpr{Pos: pos(u.Pos), Op: u.Op, Operand: l.unary(u.Operand)}
	}
	base := l.postfix(u.Pow.Base)
	if u.Pow.Exponent == nil {
		return base
	}
	return &ast.BinaryExpr{Left: base, Op: "**", Right: l.unary(u.Pow.Exponent)}
}

func (l *lowerer) postfix(p *grammar.PostfixExpr) ast.Expr {
	out := l.primary(p.Primary)
	for _, op := range p.Ops {
		switch {
		case op.Field != nil:
			out = &ast.FieldExpr{Target: out, Field: l.ident(op.Field)}
		case op.Index != nil:
			out = &ast.IndexExpr{
				EndPos: after(op.Index.Close.Pos, op.Index.Close.Value),
				Target: out,
				Index:  l.expr(op.Index.Index),
			}
		case op.Call != nil:
			out = &ast.CallExpr{
				EndPos: after(op.Call.Close.Pos, op.Call.Close.Value),
				Callee: out,
				Args:   l.args(op.Call),
			}
		}
	}
	return out
}

func (l *lowerer) primary(p *grammar.Primary) ast.Expr {
	switch {
	case p.Int != nil:
		return l.intLit(p.Int.Pos, p.Int.Raw)
	case p.Bool != nil:
		return &ast.BoolLit{Pos: pos(p.Bool.Pos), EndPos: after(p.Bool.Pos, p.Bool.Value), Value: p.Bool.Value == "true"}
	case p.Self != nil:
		return &ast.SelfExpr{Pos: pos(p.Self.Pos), EndPos: after(p.Self.Pos, "self")}
	case p.Path != nil:
		if len(p.Path.Segments) == 1 {
			return &ast.NameExpr{Name: l.ident(p.Path.Segments[0])}
		}
		out := &ast.PathExpr{}
		for _, s := range p.Path.Segments {
			out.Segments = append(out.Segments, l.identPtr(s))
		}
		return out
	}

	paren := p.Paren
	start, end := pos(paren.Pos), after(paren.Close.Pos, paren.Close.Value)
	if len(paren.Elems) == 1 && !paren.Trailing {
		return &ast.ParenExpr{Pos: start, EndPos: end, Inner: l.expr(paren.Elems[0])}
	}
	out := &ast.TupleExpr{Pos: start, EndPos: end}
	for _, el := range paren.Elems {
		out.Elems = append(out.Elems, l.expr(el))
	}
	return out
}

func (l *lowerer) intLit(p lexer.Position, raw string) *ast.IntLit {
	out := &ast.IntLit{Pos: pos(p), EndPos: after(p, raw), Raw: raw, Value: new(big.Int)}

	digits, base := strings.ReplaceAll(raw, "_", ""), 10
	if strings.HasPrefix(digits, "0x") {
		digits, base = digits[2:], 16
	}
	if _, ok := out.Value.SetString(digits, base); !ok {
		l.errorf(out.Pos, len(raw), "invalid integer literal `%s`", raw)
		out.Value.SetInt64(0)
	}
	return out
}
