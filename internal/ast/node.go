package ast

// Position tracks location information for error reporting and tooling.
// Line and Column are 1-based; Column counts runes.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Before reports whether p occurs strictly before q in the same file.
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Position
	End   Position
}

func (s Span) File() string { return s.Start.Filename }

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	out := s
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

func (s Span) IsZero() bool { return s.Start.Line == 0 }

type Node interface {
	NodePos() Position
	NodeEndPos() Position
}

// SpanOf returns the source range covered by n.
func SpanOf(n Node) Span {
	return Span{Start: n.NodePos(), End: n.NodeEndPos()}
}

// Ident represents any identifier like variable names, type names, etc.
type Ident struct {
	Pos    Position
	EndPos Position
	Value  string
}

func (i *Ident) NodePos() Position    { return i.Pos }
func (i *Ident) NodeEndPos() Position { return i.EndPos }

func (m *Module) NodePos() Position    { return m.Pos }
func (m *Module) NodeEndPos() Position { return m.EndPos }

func (u *Use) NodePos() Position    { return u.Pos }
func (u *Use) NodeEndPos() Position { return u.EndPos }

func (c *Contract) NodePos() Position    { return c.Pos }
func (c *Contract) NodeEndPos() Position { return c.EndPos }

func (f *Field) NodePos() Position    { return f.Pos }
func (f *Field) NodeEndPos() Position { return f.EndPos }

func (e *Event) NodePos() Position    { return e.Pos }
func (e *Event) NodeEndPos() Position { return e.EndPos }

func (ef *EventField) NodePos() Position    { return ef.Pos }
func (ef *EventField) NodeEndPos() Position { return ef.EndPos }

func (c *Const) NodePos() Position    { return c.Pos }
func (c *Const) NodeEndPos() Position { return c.EndPos }

func (a *TypeAlias) NodePos() Position    { return a.Pos }
func (a *TypeAlias) NodeEndPos() Position { return a.EndPos }

func (f *Function) NodePos() Position    { return f.Pos }
func (f *Function) NodeEndPos() Position { return f.EndPos }

func (p *Param) NodePos() Position    { return p.Pos }
func (p *Param) NodeEndPos() Position { return p.EndPos }

func (b *Block) NodePos() Position    { return b.Pos }
func (b *Block) NodeEndPos() Position { return b.EndPos }

func (t *NamedType) NodePos() Position    { return t.Pos }
func (t *NamedType) NodeEndPos() Position { return t.EndPos }

func (t *TupleType) NodePos() Position    { return t.Pos }
func (t *TupleType) NodeEndPos() Position { return t.EndPos }

func (l *LetStmt) NodePos() Position    { return l.Pos }
func (l *LetStmt) NodeEndPos() Position { return l.EndPos }

func (a *AssignStmt) NodePos() Position    { return a.Pos }
func (a *AssignStmt) NodeEndPos() Position { return a.EndPos }

func (a *AugAssignStmt) NodePos() Position    { return a.Pos }
func (a *AugAssignStmt) NodeEndPos() Position { return a.EndPos }

func (i *IfStmt) NodePos() Position    { return i.Pos }
func (i *IfStmt) NodeEndPos() Position { return i.EndPos }

func (w *WhileStmt) NodePos() Position    { return w.Pos }
func (w *WhileStmt) NodeEndPos() Position { return w.EndPos }

func (r *ReturnStmt) NodePos() Position    { return r.Pos }
func (r *ReturnStmt) NodeEndPos() Position { return r.EndPos }

func (b *BreakStmt) NodePos() Position    { return b.Pos }
func (b *BreakStmt) NodeEndPos() Position { return b.EndPos }

func (c *ContinueStmt) NodePos() Position    { return c.Pos }
func (c *ContinueStmt) NodeEndPos() Position { return c.EndPos }

func (r *RevertStmt) NodePos() Position    { return r.Pos }
func (r *RevertStmt) NodeEndPos() Position { return r.EndPos }

func (a *AssertStmt) NodePos() Position    { return a.Pos }
func (a *AssertStmt) NodeEndPos() Position { return a.EndPos }

func (e *EmitStmt) NodePos() Position    { return e.Pos }
func (e *EmitStmt) NodeEndPos() Position { return e.EndPos }

func (u *UnsafeBlock) NodePos() Position    { return u.Pos }
func (u *UnsafeBlock) NodeEndPos() Position { return u.EndPos }

func (e *ExprStmt) NodePos() Position    { return e.Pos }
func (e *ExprStmt) NodeEndPos() Position { return e.EndPos }

func (l *IntLit) NodePos() Position    { return l.Pos }
func (l *IntLit) NodeEndPos() Position { return l.EndPos }

func (l *BoolLit) NodePos() Position    { return l.Pos }
func (l *BoolLit) NodeEndPos() Position { return l.EndPos }

func (n *NameExpr) NodePos() Position    { return n.Name.Pos }
func (n *NameExpr) NodeEndPos() Position { return n.Name.EndPos }

func (s *SelfExpr) NodePos() Position    { return s.Pos }
func (s *SelfExpr) NodeEndPos() Position { return s.EndPos }

func (p *PathExpr) NodePos() Position    { return p.Segments[0].Pos }
func (p *PathExpr) NodeEndPos() Position { return p.Segments[len(p.Segments)-1].EndPos }

func (f *FieldExpr) NodePos() Position    { return f.Target.NodePos() }
func (f *FieldExpr) NodeEndPos() Position { return f.Field.EndPos }

func (i *IndexExpr) NodePos() Position    { return i.Target.NodePos() }
func (i *IndexExpr) NodeEndPos() Position { return i.EndPos }

func (c *CallExpr) NodePos() Position    { return c.Callee.NodePos() }
func (c *CallExpr) NodeEndPos() Position { return c.EndPos }

func (a *CallArg) NodePos() Position    { return a.Pos }
func (a *CallArg) NodeEndPos() Position { return a.Value.NodeEndPos() }

func (b *BinaryExpr) NodePos() Position    { return b.Left.NodePos() }
func (b *BinaryExpr) NodeEndPos() Position { return b.Right.NodeEndPos() }

func (u *UnaryExpr) NodePos() Position    { return u.Pos }
func (u *UnaryExpr) NodeEndPos() Position { return u.Operand.NodeEndPos() }

func (t *TupleExpr) NodePos() Position    { return t.Pos }
func (t *TupleExpr) NodeEndPos() Position { return t.EndPos }

func (p *ParenExpr) NodePos() Position    { return p.Pos }
func (p *ParenExpr) NodeEndPos() Position { return p.EndPos }
