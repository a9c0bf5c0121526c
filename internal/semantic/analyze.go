package semantic

import (
	"ferrum/internal/ast"
	"ferrum/internal/errors"
)

// Analyze runs the builder, the checker and the safety analyzer on m one
// after another. Diagnostics come back in pass order: builder, checker,
// safety. A nil module aborts the unit with one diagnostic and no typed
// module.
func Analyze(m *ast.Module) (*TypedModule, []errors.Diagnostic) {
	table, diags := Build(m)
	if table == nil {
		return nil, diags
	}
	typed, checkDiags := Check(table)
	contexts, safetyDiags := CheckSafety(table)

	diags = append(diags, checkDiags...)
	diags = append(diags, safetyDiags...)
	return Assemble(typed, contexts), diags
}

// Assemble completes a checked module with the call contexts recorded by
// the safety analyzer.
func Assemble(typed *TypedModule, contexts map[*ast.CallExpr]SafetyContext) *TypedModule {
	typed.CallContexts = contexts
	return typed
}
