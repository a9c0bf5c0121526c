package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"ferrum/grammar"
	"ferrum/internal/ast"
)

// ParseError is a syntax error reported by the front end.
type ParseError struct {
	Message  string
	Position ast.Position
	Length   int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// ParseSource parses source into a module. The module is nil when the
// grammar rejects the input; lowering problems are reported alongside a
// best-effort module.
func ParseSource(path string, source string) (*ast.Module, []ParseError) {
	file, err := grammar.Parse(path, source)
	if err != nil {
		return nil, []ParseError{convertError(path, err)}
	}

	l := &lowerer{}
	mod := l.module(file, path, source)
	return mod, l.errors
}

func convertError(path string, err error) ParseError {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return ParseError{
			Message:  err.Error(),
			Position: ast.Position{Filename: path, Line: 1, Column: 1},
			Length:   1,
		}
	}

	length := 1
	var unexpected *participle.UnexpectedTokenError
	if errors.As(err, &unexpected) && !unexpected.Unexpected.EOF() {
		length = max(1, utf8.RuneCountInString(unexpected.Unexpected.Value))
	}

	p := perr.Position()
	if p.Filename == "" {
		p.Filename = path
	}
	return ParseError{Message: perr.Message(), Position: pos(p), Length: length}
}

func pos(p lexer.Position) ast.Position {
	return ast.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// after returns the position just past text starting at p. Tokens never
// span lines.
func after(p lexer.Position, text string) ast.Position {
	return ast.Position{
		Filename: p.Filename,
		Offset:   p.Offset + len(text),
		Line:     p.Line,
		Column:   p.Column + utf8.RuneCountInString(text),
	}
}

func endOfSource(path, source string) ast.Position {
	line := 1 + strings.Count(source, "\n")
	last := source[strings.LastIndexByte(source, '\n')+1:]
	return ast.Position{
		Filename: path,
		Offset:   len(source),
		Line:     line,
		Column:   utf8.RuneCountInString(last) + 1,
	}
}
