package semantic

import (
	"ferrum/internal/ast"
	"ferrum/internal/errors"
)

// SafetyContext is the safety state at a point in a function body.
type SafetyContext int

const (
	SafeContext SafetyContext = iota
	UnsafeContext
)

func (c SafetyContext) String() string {
	if c == UnsafeContext {
		return "unsafe"
	}
	return "safe"
}

// checkExclusivity rejects contract functions that are both pub and unsafe.
// The builder applies it while declaring contract members.
func checkExclusivity(fn *ast.Function) (errors.Diagnostic, bool) {
	if !fn.IsPub() || !fn.IsUnsafe() {
		return errors.Diagnostic{}, false
	}
	return errors.PubUnsafe(fn.PubSpan.Join(*fn.UnsafeSpan)), true
}

// safetyFrame is one level of the context stack; span is the `unsafe`
// keyword that opened it.
type safetyFrame struct {
	ctx  SafetyContext
	span ast.Span
}

// SafetyAnalyzer validates every call site against the safety of the
// callee. It needs no type information and runs alongside the checker.
type SafetyAnalyzer struct {
	table    *SymbolTable
	diags    *errors.Bag
	contexts map[*ast.CallExpr]SafetyContext

	fn    *FunctionInfo
	scope *Scope
	stack []safetyFrame
}

// CheckSafety analyzes every well-formed function of the table. It returns
// the context recorded for each call site.
func CheckSafety(table *SymbolTable) (map[*ast.CallExpr]SafetyContext, []errors.Diagnostic) {
	if table == nil {
		return nil, nil
	}
	s := &SafetyAnalyzer{
		table:    table,
		diags:    errors.NewBag(),
		contexts: make(map[*ast.CallExpr]SafetyContext),
	}
	for _, fn := range table.Functions() {
		if fn.Malformed {
			continue
		}
		s.function(fn)
	}
	return s.contexts, s.diags.Items()
}

func (s *SafetyAnalyzer) function(fn *FunctionInfo) {
	s.fn = fn
	s.stack = s.stack[:0]
	if fn.Node.IsUnsafe() {
		s.push(UnsafeContext, *fn.Node.UnsafeSpan)
	} else {
		s.push(SafeContext, ast.Span{})
	}
	s.block(fn.Node.Body)
}

func (s *SafetyAnalyzer) push(ctx SafetyContext, span ast.Span) {
	s.stack = append(s.stack, safetyFrame{ctx: ctx, span: span})
}

func (s *SafetyAnalyzer) pop() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *SafetyAnalyzer) current() safetyFrame {
	return s.stack[len(s.stack)-1]
}

func (s *SafetyAnalyzer) block(b *ast.Block) {
	outer := s.scope
	s.scope = s.table.BlockScope(b)
	defer func() { s.scope = outer }()

	for _, stmt := range b.Stmts {
		s.stmt(stmt)
	}
}

func (s *SafetyAnalyzer) stmt(stmt ast.Stmt) {
	switch node := stmt.(type) {
	case *ast.UnsafeBlock:
		keyword := unsafeKeywordSpan(node)
		if outer := s.current(); outer.ctx == UnsafeContext {
			s.diags.Add(errors.UnnecessaryUnsafe(keyword, outer.span))
		}
		s.push(UnsafeContext, keyword)
		s.block(node.Body)
		s.pop()

	case *ast.IfStmt:
		s.expr(node.Cond)
		s.block(node.Then)
		if node.ElseIf != nil {
			s.stmt(node.ElseIf)
		}
		if node.Else != nil {
			s.block(node.Else)
		}

	case *ast.WhileStmt:
		s.expr(node.Cond)
		s.block(node.Body)

	default:
		ast.Inspect(stmt, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpr); ok {
				s.call(call)
			}
			return true
		})
	}
}

func (s *SafetyAnalyzer) expr(e ast.Expr) {
	ast.Inspect(e, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			s.call(call)
		}
		return true
	})
}

func (s *SafetyAnalyzer) call(call *ast.CallExpr) {
	frame := s.current()
	s.contexts[call] = frame.ctx

	callee := s.resolveCallee(call.Callee)
	if callee == nil || callee.Safety != Unsafe || frame.ctx == UnsafeContext {
		return
	}
	decl := callee.DeclHead()
	var imported ast.Span
	if decl.IsZero() {
		imported = callee.NameSpan
	}
	s.diags.Add(errors.UnsafeCall(callee.Name, calleeSpan(call.Callee), decl, imported))
}

// resolveCallee finds the function a call may target without typing the
// callee. Only plain names, module paths and calls through self can reach
// unsafe functions; external calls target pub functions, which are never
// unsafe.
func (s *SafetyAnalyzer) resolveCallee(callee ast.Expr) *Symbol {
	switch c := ast.Unparen(callee).(type) {
	case *ast.NameExpr:
		sym := s.scope.LookupAt(c.Name.Value, c.Name.Pos.Offset)
		if sym != nil && sym.Kind == SymbolFunction {
			return sym
		}

	case *ast.PathExpr:
		if len(c.Segments) != 2 {
			return nil
		}
		mod := s.scope.LookupAt(c.Segments[0].Value, c.Segments[0].Pos.Offset)
		if mod == nil || mod.Kind != SymbolModule {
			return nil
		}
		if def, ok := mod.Module.Functions[c.Segments[1].Value]; ok {
			return newStdFunction(def)
		}

	case *ast.FieldExpr:
		if _, ok := ast.Unparen(c.Target).(*ast.SelfExpr); !ok || s.fn.Contract == nil {
			return nil
		}
		sym := s.fn.Contract.Member(c.Field.Value)
		if sym != nil && sym.Kind == SymbolFunction {
			return sym
		}
	}
	return nil
}

// calleeSpan is the span underlined for a call: the function name, or the
// whole path for module calls.
func calleeSpan(callee ast.Expr) ast.Span {
	if f, ok := ast.Unparen(callee).(*ast.FieldExpr); ok {
		return ast.SpanOf(&f.Field)
	}
	return ast.SpanOf(callee)
}

func unsafeKeywordSpan(u *ast.UnsafeBlock) ast.Span {
	const keyword = len("unsafe")
	end := u.Pos
	end.Offset += keyword
	end.Column += keyword
	return ast.Span{Start: u.Pos, End: end}
}
