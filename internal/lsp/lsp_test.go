package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/parser"
	"ferrum/internal/semantic"
)

const unsafeCall = `unsafe fn mod_priv() {}

pub fn call_it() {
    mod_priv()
}
`

const testURI = "file:///work/test.fe"

func analyzeSource(t *testing.T, src string) []errors.Diagnostic {
	t.Helper()
	m, perrs := parser.ParseSource("/work/test.fe", src)
	require.Empty(t, perrs)
	_, diags := semantic.Analyze(m)
	return diags
}

func TestPositionCountsUTF16Units(t *testing.T) {
	li := newLineIndex("a\n  𝄞x")
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, li.position(ast.Position{Line: 2, Column: 4}))
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, li.position(ast.Position{Line: 1, Column: 1}))
	// Past the last line keeps the rune column.
	assert.Equal(t, protocol.Position{Line: 5, Character: 2}, li.position(ast.Position{Line: 6, Column: 3}))
}

func TestRangeOfEmptyEndUsesStart(t *testing.T) {
	li := newLineIndex("abc")
	r := li.rangeOf(ast.Span{Start: ast.Position{Line: 1, Column: 2}})
	assert.Equal(t, r.Start, r.End)
}

func TestConvertDiagnostics(t *testing.T) {
	diags := analyzeSource(t, unsafeCall)
	require.Len(t, diags, 1)

	out := ConvertDiagnostics(testURI, unsafeCall, diags)
	require.Len(t, out, 1)
	d := out[0]

	assert.Equal(t, protocol.Position{Line: 3, Character: 4}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 3, Character: 12}, d.Range.End)
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	require.NotNil(t, d.Code)
	assert.Equal(t, diags[0].Code, d.Code.Value)
	require.NotNil(t, d.Source)
	assert.Equal(t, "ferrum", *d.Source)
	assert.True(t, strings.HasPrefix(d.Message, diags[0].Message+": call to unsafe function"))
	assert.Contains(t, d.Message, "\nHint: ")
	assert.Empty(t, d.Tags)

	require.Len(t, d.RelatedInformation, 1)
	related := d.RelatedInformation[0]
	assert.Equal(t, testURI, related.Location.URI)
	assert.Equal(t, protocol.UInteger(0), related.Location.Range.Start.Line)
	assert.Equal(t, "`mod_priv` is defined here", related.Message)
}

func TestConvertDiagnosticsTagsUnusedVariables(t *testing.T) {
	src := "fn f() {\n    let x: u8 = 1\n}\n"
	diags := analyzeSource(t, src)

	out := ConvertDiagnostics(testURI, src, diags)
	require.Len(t, out, len(diags))
	var found bool
	for i, d := range diags {
		if d.Code != errors.WarningUnusedVariable {
			continue
		}
		found = true
		assert.Equal(t, protocol.DiagnosticSeverityWarning, *out[i].Severity)
		assert.Equal(t, []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}, out[i].Tags)
	}
	assert.True(t, found, "expected an unused variable warning")
}

func TestEncodeSemanticTokens(t *testing.T) {
	tokens := []SemanticToken{
		{Line: 0, StartChar: 4, Length: 3, TokenType: 1, TokenModifiers: 1},
		{Line: 0, StartChar: 10, Length: 2, TokenType: 3},
		{Line: 2, StartChar: 2, Length: 5, TokenType: 4},
	}
	assert.Equal(t, []uint32{
		0, 4, 3, 1, 1,
		0, 6, 2, 3, 0,
		2, 2, 5, 4, 0,
	}, encodeSemanticTokens(tokens))
}

type decodedToken struct {
	line, char, length uint32
	tokenType          string
	declaration        bool
	readonly           bool
}

func decodeSemanticTokens(data []uint32) []decodedToken {
	var out []decodedToken
	var line, char uint32
	for i := 0; i+4 < len(data); i += 5 {
		if data[i] != 0 {
			char = 0
		}
		line += data[i]
		char += data[i+1]
		out = append(out, decodedToken{
			line:        line,
			char:        char,
			length:      data[i+2],
			tokenType:   SemanticTokenTypes[data[i+3]],
			declaration: data[i+4]&modDeclaration != 0,
			readonly:    data[i+4]&modReadonly != 0,
		})
	}
	return out
}

func findToken(t *testing.T, tokens []decodedToken, line, char uint32) decodedToken {
	t.Helper()
	for _, tok := range tokens {
		if tok.line == line && tok.char == char {
			return tok
		}
	}
	require.Failf(t, "token not found", "no token at %d:%d in %v", line, char, tokens)
	return decodedToken{}
}

type notification struct {
	method string
	params *protocol.PublishDiagnosticsParams
}

func recordingContext(sent *[]notification) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			p, _ := params.(*protocol.PublishDiagnosticsParams)
			*sent = append(*sent, notification{method: method, params: p})
		},
	}
}

func TestHandlerPublishesDiagnostics(t *testing.T) {
	h := NewFerrumHandler()
	var sent []notification
	ctx := recordingContext(&sent)

	require.NoError(t, h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "ferrum", Version: 1, Text: unsafeCall},
	}))
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, sent[0].method)
	require.NotNil(t, sent[0].params)
	assert.Equal(t, testURI, sent[0].params.URI)
	require.Len(t, sent[0].params.Diagnostics, 1)

	clean := "pub fn call_it() {}\n"
	require.NoError(t, h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: clean}},
	}))
	require.Len(t, sent, 2)
	assert.NotNil(t, sent[1].params.Diagnostics)
	assert.Empty(t, sent[1].params.Diagnostics)

	require.NoError(t, h.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))
	require.Len(t, sent, 3)
	assert.Empty(t, sent[2].params.Diagnostics)
}

func TestHandlerSemanticTokens(t *testing.T) {
	h := NewFerrumHandler()
	require.NoError(t, h.TextDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, Text: unsafeCall},
	}))

	res, err := h.TextDocumentSemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	tokens := decodeSemanticTokens(res.Data)

	decl := findToken(t, tokens, 0, 10)
	assert.Equal(t, "function", decl.tokenType)
	assert.Equal(t, uint32(8), decl.length)
	assert.True(t, decl.declaration)

	call := findToken(t, tokens, 3, 4)
	assert.Equal(t, "function", call.tokenType)
	assert.False(t, call.declaration)
}

func TestSemanticTokensForConstantsAndAliases(t *testing.T) {
	src := "const LIMIT: u8 = 3\ntype Small = u8\n"
	m, perrs := parser.ParseSource("/work/test.fe", src)
	require.Empty(t, perrs)
	tokens := decodeSemanticTokens(encodeSemanticTokens(collectSemanticTokens(m, src)))

	limit := findToken(t, tokens, 0, 6)
	assert.Equal(t, "variable", limit.tokenType)
	assert.True(t, limit.declaration)
	assert.True(t, limit.readonly)
	assert.Equal(t, "number", findToken(t, tokens, 0, 18).tokenType)

	small := findToken(t, tokens, 1, 5)
	assert.Equal(t, "type", small.tokenType)
	assert.True(t, small.declaration)
	assert.Equal(t, "type", findToken(t, tokens, 1, 13).tokenType)
}

func TestSemanticTokensForUnknownDocument(t *testing.T) {
	h := NewFerrumHandler()
	res, err := h.TextDocumentSemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.fe"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestURIToPath(t *testing.T) {
	path, err := uriToPath("file:///home/user/my%20contracts/vault.fe")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/my contracts/vault.fe", path)
}
