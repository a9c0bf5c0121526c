package ast

// Inspect traverses the statements and expressions under n in source order,
// calling f for each node. If f returns false the children of that node are
// skipped. Type annotations are not visited.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *Module:
		for _, it := range n.Items {
			Inspect(it, f)
		}
	case *Contract:
		for _, it := range n.Items {
			Inspect(it, f)
		}
	case *Const:
		inspectExpr(n.Value, f)
	case *Function:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *LetStmt:
		inspectExpr(n.Value, f)
	case *AssignStmt:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *AugAssignStmt:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *IfStmt:
		inspectExpr(n.Cond, f)
		Inspect(n.Then, f)
		if n.ElseIf != nil {
			Inspect(n.ElseIf, f)
		}
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStmt:
		inspectExpr(n.Cond, f)
		Inspect(n.Body, f)
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *AssertStmt:
		inspectExpr(n.Cond, f)
	case *EmitStmt:
		for _, a := range n.Args {
			inspectExpr(a.Value, f)
		}
	case *UnsafeBlock:
		Inspect(n.Body, f)
	case *ExprStmt:
		inspectExpr(n.Expr, f)
	case *FieldExpr:
		inspectExpr(n.Target, f)
	case *IndexExpr:
		inspectExpr(n.Target, f)
		inspectExpr(n.Index, f)
	case *CallExpr:
		inspectExpr(n.Callee, f)
		for _, a := range n.Args {
			inspectExpr(a.Value, f)
		}
	case *BinaryExpr:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *UnaryExpr:
		inspectExpr(n.Operand, f)
	case *TupleExpr:
		for _, el := range n.Elems {
			inspectExpr(el, f)
		}
	case *ParenExpr:
		inspectExpr(n.Inner, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}
