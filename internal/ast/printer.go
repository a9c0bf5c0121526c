package ast

import (
	"strings"
)

// ExprString renders an expression back to source form, normalising
// whitespace. It is used in diagnostic messages.
func ExprString(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// TypeString renders a type annotation back to source form.
func TypeString(t TypeExpr) string {
	var b strings.Builder
	writeType(&b, t)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *IntLit:
		b.WriteString(e.Raw)
	case *BoolLit:
		if e.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case *NameExpr:
		b.WriteString(e.Name.Value)
	case *SelfExpr:
		b.WriteString("self")
	case *PathExpr:
		for i, s := range e.Segments {
			if i > 0 {
				b.WriteString("::")
			}
			b.WriteString(s.Value)
		}
	case *FieldExpr:
		writeExpr(b, e.Target)
		b.WriteString(".")
		b.WriteString(e.Field.Value)
	case *IndexExpr:
		writeExpr(b, e.Target)
		b.WriteString("[")
		writeExpr(b, e.Index)
		b.WriteString("]")
	case *CallExpr:
		writeExpr(b, e.Callee)
		writeArgs(b, e.Args)
	case *BinaryExpr:
		writeExpr(b, e.Left)
		b.WriteString(" " + e.Op + " ")
		writeExpr(b, e.Right)
	case *UnaryExpr:
		b.WriteString(e.Op)
		if e.Op == "not" {
			b.WriteString(" ")
		}
		writeExpr(b, e.Operand)
	case *TupleExpr:
		b.WriteString("(")
		for i, el := range e.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, el)
		}
		if len(e.Elems) == 1 {
			b.WriteString(",")
		}
		b.WriteString(")")
	case *ParenExpr:
		b.WriteString("(")
		writeExpr(b, e.Inner)
		b.WriteString(")")
	}
}

func writeArgs(b *strings.Builder, args []*CallArg) {
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if a.Label != nil {
			b.WriteString(a.Label.Value + ": ")
		}
		writeExpr(b, a.Value)
	}
	b.WriteString(")")
}

func writeType(b *strings.Builder, t TypeExpr) {
	switch t := t.(type) {
	case *NamedType:
		b.WriteString(t.Name.Value)
		if len(t.Args) > 0 {
			b.WriteString("<")
			for i, a := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				writeType(b, a)
			}
			b.WriteString(">")
		}
	case *TupleType:
		b.WriteString("(")
		for i, el := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeType(b, el)
		}
		b.WriteString(")")
	}
}
