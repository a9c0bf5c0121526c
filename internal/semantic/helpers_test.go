package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/parser"
)

const testFile = "test.fe"

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, perrs := parser.ParseSource(testFile, src)
	require.Empty(t, perrs, "source must parse")
	require.NotNil(t, m)
	return m
}

func analyze(t *testing.T, src string) (*TypedModule, []errors.Diagnostic) {
	t.Helper()
	return Analyze(parse(t, src))
}

func onlyErrors(diags []errors.Diagnostic) []errors.Diagnostic {
	var out []errors.Diagnostic
	for _, d := range diags {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

func codes(diags []errors.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

// requireClean fails when src produces any diagnostic, printing them.
func requireClean(t *testing.T, src string) *TypedModule {
	t.Helper()
	tm, diags := analyze(t, src)
	require.Empty(t, diags, render(src, diags))
	require.NoError(t, Verify(tm))
	return tm
}

func render(src string, diags []errors.Diagnostic) string {
	return errors.NewRenderer(errors.FileSet{testFile: src}).RenderAll(diags)
}

// findFunction returns the declaration of the named function.
func findFunction(t *testing.T, tm *TypedModule, name string) *ast.Function {
	t.Helper()
	for _, fn := range tm.Symbols.Functions() {
		if fn.Symbol.Name == name {
			return fn.Node
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}

// returnValue returns the value of the last return statement of fn.
func returnValue(t *testing.T, fn *ast.Function) ast.Expr {
	t.Helper()
	var value ast.Expr
	ast.Inspect(fn, func(n ast.Node) bool {
		if r, ok := n.(*ast.ReturnStmt); ok && r.Value != nil {
			value = r.Value
		}
		return true
	})
	require.NotNil(t, value)
	return value
}
