package semantic

import (
	goerrors "errors"
	"fmt"

	"ferrum/internal/ast"
	"ferrum/internal/types"
)

// blockTerminates reports whether every path through b ends in a return or
// a revert.
func blockTerminates(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if stmtTerminates(s) {
			return true
		}
	}
	return false
}

func stmtTerminates(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt, *ast.RevertStmt:
		return true
	case *ast.UnsafeBlock:
		return blockTerminates(n.Body)
	case *ast.IfStmt:
		switch {
		case n.ElseIf != nil:
			return blockTerminates(n.Then) && stmtTerminates(n.ElseIf)
		case n.Else != nil:
			return blockTerminates(n.Then) && blockTerminates(n.Else)
		}
		return false
	case *ast.WhileStmt:
		// `while true` only exits through break.
		lit, ok := ast.Unparen(n.Cond).(*ast.BoolLit)
		return ok && lit.Value && !breaks(n.Body)
	}
	return false
}

// breaks reports whether b contains a break that exits the loop owning b.
func breaks(b *ast.Block) bool {
	for _, s := range b.Stmts {
		switch n := s.(type) {
		case *ast.BreakStmt:
			return true
		case *ast.IfStmt:
			for it := n; it != nil; it = it.ElseIf {
				if breaks(it.Then) || (it.Else != nil && breaks(it.Else)) {
					return true
				}
			}
		case *ast.UnsafeBlock:
			if breaks(n.Body) {
				return true
			}
		}
	}
	return false
}

var opVerbs = map[string]string{
	"+":  "add",
	"-":  "subtract",
	"*":  "multiply",
	"/":  "divide",
	"%":  "calculate the remainder",
	"**": "raise to a power",
	"<<": "shift left",
	">>": "shift right",
}

// revertReason describes why a constant operation reverts.
func revertReason(op string, err error) string {
	switch {
	case goerrors.Is(err, types.ErrDivisionByZero):
		if op == "%" {
			return "attempt to calculate the remainder with a divisor of zero"
		}
		return "attempt to divide by zero"
	case goerrors.Is(err, types.ErrNegativeExponent):
		return "attempt to raise to a negative power"
	case goerrors.Is(err, types.ErrNegativeShift):
		return "attempt to shift by a negative amount"
	case op == "neg":
		return "attempt to negate with overflow"
	}
	if verb, ok := opVerbs[op]; ok {
		return fmt.Sprintf("attempt to %s with overflow", verb)
	}
	return err.Error()
}
