package lsp

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ferrum/internal/ast"
	"ferrum/internal/driver"
)

var log = commonlog.GetLogger("ferrum.lsp")

// SemanticTokenTypes is the token legend advertised to clients. The order
// is part of the wire format.
var SemanticTokenTypes = []string{
	"namespace",
	"type",
	"typeParameter",
	"function",
	"variable",
	"parameter",
	"property",
	"keyword",
	"number",
	"operator",
	"modifier",
}

var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"abstract",
}

type document struct {
	source string
	module *ast.Module
}

// FerrumHandler implements the language server on top of the analyzer.
type FerrumHandler struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func NewFerrumHandler() *FerrumHandler {
	return &FerrumHandler{docs: make(map[string]*document)}
}

// Initialize advertises the server's capabilities.
func (h *FerrumHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *FerrumHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *FerrumHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *FerrumHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (h *FerrumHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *FerrumHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// Full sync: the last change carries the whole document.
	for i := len(params.ContentChanges) - 1; i >= 0; i-- {
		switch change := params.ContentChanges[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		case *protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		case protocol.TextDocumentContentChangeEvent:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		case *protocol.TextDocumentContentChangeEvent:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		}
	}
	return nil
}

func (h *FerrumHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.docs, path)
	h.mu.Unlock()

	publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// TextDocumentSemanticTokensFull returns tokens for the last analyzed
// version of the document.
func (h *FerrumHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	h.mu.RLock()
	doc, ok := h.docs[path]
	h.mu.RUnlock()
	if !ok {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	data := encodeSemanticTokens(collectSemanticTokens(doc.module, doc.source))
	if data == nil {
		data = []uint32{}
	}
	return &protocol.SemanticTokens{Data: data}, nil
}

// update analyzes the new text of a document and publishes its
// diagnostics.
func (h *FerrumHandler) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	d := driver.New(driver.Options{})
	res, err := d.AnalyzeUnit(context.Background(), driver.Unit{Path: path, Source: text})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", path, err)
	}

	doc := &document{source: text}
	if res.Typed != nil {
		doc.module = res.Typed.Module
	}
	h.mu.Lock()
	if prev, ok := h.docs[path]; ok && doc.module == nil {
		// Keep highlighting the last good tree while the text does not parse.
		doc.module, doc.source = prev.module, prev.source
	}
	h.docs[path] = doc
	h.mu.Unlock()

	log.Debugf("%s: %d diagnostics", path, len(res.Diagnostics))
	publish(ctx, uri, ConvertDiagnostics(uri, text, res.Diagnostics))
	return nil
}

func publish(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// uriToPath converts a file URI to a platform-local path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	// /C:/dir on Windows
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
