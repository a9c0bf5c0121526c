package lsp

import (
	"sort"

	"fortio.org/safecast"

	"ferrum/internal/ast"
)

// SemanticToken is a single token before wire encoding. Line and StartChar
// are 0-based; TokenType indexes SemanticTokenTypes and TokenModifiers is a
// bitmask over SemanticTokenModifiers.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

const (
	modDeclaration = 1 << 0
	modReadonly    = 1 << 2
)

var tokenTypeIndex = func() map[string]int {
	m := make(map[string]int, len(SemanticTokenTypes))
	for i, t := range SemanticTokenTypes {
		m[t] = i
	}
	return m
}()

type tokenCollector struct {
	li     *lineIndex
	tokens []SemanticToken
}

func collectSemanticTokens(m *ast.Module, source string) []SemanticToken {
	if m == nil {
		return nil
	}
	c := &tokenCollector{li: newLineIndex(source)}
	for _, item := range m.Items {
		c.moduleItem(item)
	}
	sort.SliceStable(c.tokens, func(i, j int) bool {
		a, b := c.tokens[i], c.tokens[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.StartChar < b.StartChar
	})
	return c.tokens
}

func (c *tokenCollector) add(id *ast.Ident, tokenType string, mods int) {
	if id == nil || id.Value == "" {
		return
	}
	start := c.li.position(id.Pos)
	end := c.li.position(id.EndPos)
	if end.Line != start.Line || end.Character <= start.Character {
		return
	}
	c.tokens = append(c.tokens, SemanticToken{
		Line:           start.Line,
		StartChar:      start.Character,
		Length:         end.Character - start.Character,
		TokenType:      tokenTypeIndex[tokenType],
		TokenModifiers: mods,
	})
}

func (c *tokenCollector) moduleItem(item ast.ModuleItem) {
	switch n := item.(type) {
	case *ast.Use:
		for _, seg := range n.Path {
			c.add(seg, "namespace", 0)
		}
		for _, it := range n.Items {
			c.add(it, "function", 0)
		}
	case *ast.Contract:
		c.add(&n.Name, "type", modDeclaration)
		for _, member := range n.Items {
			switch m := member.(type) {
			case *ast.Field:
				c.add(&m.Name, "property", modDeclaration)
				c.typeExpr(m.Type)
			case *ast.Function:
				c.function(m)
			case *ast.Event:
				c.event(m)
			}
		}
	case *ast.Function:
		c.function(n)
	case *ast.Event:
		c.event(n)
	case *ast.Const:
		c.add(&n.Name, "variable", modDeclaration|modReadonly)
		c.typeExpr(n.Type)
		c.body(n.Value)
	case *ast.TypeAlias:
		c.add(&n.Name, "type", modDeclaration)
		c.typeExpr(n.Type)
	}
}

func (c *tokenCollector) event(e *ast.Event) {
	c.add(&e.Name, "type", modDeclaration)
	for _, f := range e.Fields {
		c.add(&f.Name, "property", modDeclaration)
		c.typeExpr(f.Type)
	}
}

func (c *tokenCollector) function(fn *ast.Function) {
	c.add(&fn.Name, "function", modDeclaration)
	for _, p := range fn.Params {
		if p.IsSelf {
			continue
		}
		c.add(&p.Name, "parameter", modDeclaration)
		c.typeExpr(p.Type)
	}
	if fn.Return != nil {
		c.typeExpr(fn.Return)
	}
	if fn.Body != nil {
		c.body(fn.Body)
	}
}

// body collects the tokens of the statements and expressions under n.
func (c *tokenCollector) body(n ast.Node) {
	callees := make(map[ast.Expr]bool)
	ast.Inspect(n, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.LetStmt:
			c.add(&node.Name, "variable", modDeclaration)
			if node.Type != nil {
				c.typeExpr(node.Type)
			}
		case *ast.EmitStmt:
			c.add(&node.Event, "type", 0)
			for _, a := range node.Args {
				c.add(a.Label, "property", 0)
			}
		case *ast.CallExpr:
			callees[ast.Unparen(node.Callee)] = true
			for _, a := range node.Args {
				c.add(a.Label, "parameter", 0)
			}
		case *ast.NameExpr:
			if callees[node] {
				c.add(&node.Name, "function", 0)
			} else {
				c.add(&node.Name, "variable", 0)
			}
		case *ast.PathExpr:
			for i, seg := range node.Segments {
				if i == len(node.Segments)-1 {
					c.add(seg, "function", 0)
				} else {
					c.add(seg, "namespace", 0)
				}
			}
		case *ast.FieldExpr:
			if callees[node] {
				c.add(&node.Field, "function", 0)
			} else {
				c.add(&node.Field, "property", 0)
			}
		case *ast.IntLit:
			c.addSpan(node.Pos, node.EndPos, "number")
		}
		return true
	})
}

func (c *tokenCollector) addSpan(start, end ast.Position, tokenType string) {
	c.add(&ast.Ident{Pos: start, EndPos: end, Value: tokenType}, tokenType, 0)
}

func (c *tokenCollector) typeExpr(te ast.TypeExpr) {
	switch t := te.(type) {
	case *ast.NamedType:
		c.add(&t.Name, "type", 0)
		for _, arg := range t.Args {
			c.typeExpr(arg)
		}
	case *ast.TupleType:
		for _, el := range t.Elems {
			c.typeExpr(el)
		}
	}
}

// encodeSemanticTokens produces the relative wire encoding of tokens.
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	var data []uint32
	var prevLine, prevStart uint32
	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaStart := tok.StartChar
		if deltaLine == 0 {
			deltaStart = tok.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, tok.Length, toUint32(tok.TokenType), toUint32(tok.TokenModifiers))
		prevLine = tok.Line
		prevStart = tok.StartChar
	}
	return data
}

func toUint32(v int) uint32 {
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0
	}
	return u
}
