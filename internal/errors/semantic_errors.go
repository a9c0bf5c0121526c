package errors

import (
	"fmt"
	"strings"

	"ferrum/internal/ast"
)

// DiagnosticBuilder provides a fluent interface for building diagnostics
type DiagnosticBuilder struct {
	diag Diagnostic
}

// NewDiagnostic starts a diagnostic of the given kind. The severity follows
// from the kind.
func NewDiagnostic(kind Kind, code, message string, primary ast.Span, label string) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		diag: Diagnostic{
			Level:   kind.Level(),
			Kind:    kind,
			Code:    code,
			Message: message,
			Primary: Label{Span: primary, Message: label},
		},
	}
}

// WithSecondary attaches a related location.
func (b *DiagnosticBuilder) WithSecondary(span ast.Span, message string) *DiagnosticBuilder {
	b.diag.Secondary = append(b.diag.Secondary, Label{Span: span, Message: message})
	return b
}

func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.diag.Notes = append(b.diag.Notes, note)
	return b
}

// WithHint adds a note rendered as "= Hint: ...".
func (b *DiagnosticBuilder) WithHint(hint string) *DiagnosticBuilder {
	return b.WithNote("Hint: " + hint)
}

// WithSuggestions adds a did-you-mean hint when candidates is non-empty.
func (b *DiagnosticBuilder) WithSuggestions(candidates []string) *DiagnosticBuilder {
	if len(candidates) == 0 {
		return b
	}
	quoted := make([]string, len(candidates))
	for i, c := range candidates {
		quoted[i] = "`" + c + "`"
	}
	return b.WithHint("did you mean " + strings.Join(quoted, " or ") + "?")
}

func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.diag.clone()
}

// Common diagnostic constructors

// UnsafeCall reports a call to an unsafe function from a safe context. At
// most one of decl and imported is set; standard library functions called
// through their module path have neither.
func UnsafeCall(name string, call, decl, imported ast.Span) Diagnostic {
	b := NewDiagnostic(SafetyError, ErrorUnsafeCall,
		fmt.Sprintf("unsafe function `%s` can only be called in an unsafe function or block", name),
		call, "call to unsafe function")
	switch {
	case !decl.IsZero():
		b.WithSecondary(decl, fmt.Sprintf("`%s` is defined here", name))
	case !imported.IsZero():
		b.WithSecondary(imported, fmt.Sprintf("`%s` is imported here", name))
	}
	return b.WithHint("put this call in an `unsafe` block if you're confident that it's safe to use here").Build()
}

func PubUnsafe(modifiers ast.Span) Diagnostic {
	return NewDiagnostic(DeclarationError, ErrorPubUnsafe,
		"public contract functions can't be unsafe",
		modifiers, "a contract function can be either `pub` or `unsafe`, but not both").Build()
}

func DuplicateDefinition(what, name string, dup, first ast.Span) Diagnostic {
	return NewDiagnostic(DeclarationError, ErrorDuplicateDeclaration,
		fmt.Sprintf("duplicate definition of %s `%s`", what, name),
		dup, fmt.Sprintf("`%s` redefined here", name)).
		WithSecondary(first, fmt.Sprintf("`%s` first defined here", name)).
		Build()
}

func UndefinedName(name string, span ast.Span, similar []string) Diagnostic {
	return NewDiagnostic(DeclarationError, ErrorUndefinedName,
		fmt.Sprintf("cannot find value `%s` in this scope", name),
		span, "undefined").
		WithSuggestions(similar).
		Build()
}

func UndefinedType(name string, span ast.Span, similar []string) Diagnostic {
	return NewDiagnostic(DeclarationError, ErrorUndefinedType,
		fmt.Sprintf("cannot find type `%s` in this scope", name),
		span, "unknown type").
		WithSuggestions(similar).
		Build()
}

func UnresolvedImport(path string, span ast.Span, similar []string) Diagnostic {
	return NewDiagnostic(DeclarationError, ErrorUnresolvedImport,
		fmt.Sprintf("unresolved import `%s`", path),
		span, "not found").
		WithSuggestions(similar).
		Build()
}

func TypeMismatch(expected, actual string, span ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorTypeMismatch,
		"mismatched types",
		span, fmt.Sprintf("expected `%s`, found `%s`", expected, actual)).
		Build()
}

func WrongArgumentCount(name string, expected, actual int, call ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorWrongArgumentCount,
		fmt.Sprintf("`%s` takes %d %s but %d %s supplied",
			name, expected, plural(expected, "argument", "arguments"),
			actual, plural(actual, "was", "were")),
		call, fmt.Sprintf("expected %d %s", expected, plural(expected, "argument", "arguments"))).
		Build()
}

// LiteralOutOfRange reports an integer literal that does not fit typ.
// smallest is empty when no integer type can hold the value.
func LiteralOutOfRange(value, typ, smallest string, span ast.Span) Diagnostic {
	b := NewDiagnostic(TypeError, ErrorLiteralOutOfRange,
		fmt.Sprintf("literal out of range for `%s`", typ),
		span, fmt.Sprintf("`%s` does not fit into `%s`", value, typ))
	if smallest != "" {
		b.WithHint(fmt.Sprintf("the smallest type that can hold `%s` is `%s`", value, smallest))
	} else {
		b.WithNote("integer values are limited to 256 bits")
	}
	return b.Build()
}

// InvalidOperands reports a binary operation whose operand types differ or
// do not support the operator.
func InvalidOperands(op, left, right string, span, leftSpan, rightSpan ast.Span) Diagnostic {
	if left == right {
		return NewDiagnostic(TypeError, ErrorInvalidBinaryOperation,
			fmt.Sprintf("`%s` cannot be applied to `%s`", op, left),
			span, fmt.Sprintf("not supported for `%s`", left)).Build()
	}
	return NewDiagnostic(TypeError, ErrorInvalidBinaryOperation,
		fmt.Sprintf("`%s` cannot be applied to `%s` and `%s`", op, left, right),
		span, "operands must have the same type").
		WithSecondary(leftSpan, fmt.Sprintf("this has type `%s`", left)).
		WithSecondary(rightSpan, fmt.Sprintf("this has type `%s`", right)).
		WithHint("convert one side with an explicit cast").
		Build()
}

func AssignToImmutable(name string, span, decl ast.Span, param bool) Diagnostic {
	if param {
		return NewDiagnostic(TypeError, ErrorAssignToImmutable,
			fmt.Sprintf("cannot assign to immutable parameter `%s`", name),
			span, "cannot assign to a parameter").
			WithSecondary(decl, fmt.Sprintf("`%s` is declared here", name)).
			Build()
	}
	return NewDiagnostic(TypeError, ErrorAssignToImmutable,
		fmt.Sprintf("cannot assign twice to immutable variable `%s`", name),
		span, "cannot assign twice to immutable variable").
		WithSecondary(decl, fmt.Sprintf("`%s` is declared here", name)).
		WithHint(fmt.Sprintf("make the binding mutable: `let mut %s`", name)).
		Build()
}

func NotAValue(kind, name string, span ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorNotAValue,
		fmt.Sprintf("expected value, found %s `%s`", kind, name),
		span, "not a value").Build()
}

// RecursiveDefinition reports a constant or type alias that reaches itself.
// use is the reference that closes the cycle.
func RecursiveDefinition(kind, name string, use, decl ast.Span) Diagnostic {
	d := NewDiagnostic(DeclarationError, ErrorRecursiveDefinition,
		fmt.Sprintf("%s `%s` is defined in terms of itself", kind, name),
		use, "cycle closes here")
	if decl != use {
		d.WithSecondary(decl, fmt.Sprintf("`%s` is defined here", name))
	}
	return d.Build()
}

func NonConstantValue(name string, span ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorNonConstantValue,
		fmt.Sprintf("the value of constant `%s` is not known at compile time", name),
		span, "not a constant expression").
		WithNote("constants may use literals, other constants, operators and integer conversions").
		Build()
}

func NotCallable(what string, span ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorNotCallable,
		fmt.Sprintf("%s is not callable", what),
		span, "not a function").Build()
}

func PrivateFunction(contract, name string, call, decl ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorPrivateFunction,
		fmt.Sprintf("function `%s` of contract `%s` is private", name, contract),
		call, "private function").
		WithSecondary(decl, fmt.Sprintf("`%s` is defined here", name)).
		WithHint("mark it `pub` to call it from outside the contract").
		Build()
}

func MissingReturn(name, ret string, sig ast.Span) Diagnostic {
	return NewDiagnostic(TypeError, ErrorMissingReturn,
		fmt.Sprintf("function `%s` does not always return a value", name),
		sig, fmt.Sprintf("expected a `%s` to be returned on every path", ret)).
		Build()
}

func UnusedVariable(name string, span ast.Span) Diagnostic {
	return NewDiagnostic(Lint, WarningUnusedVariable,
		fmt.Sprintf("unused variable `%s`", name),
		span, "never used").
		WithHint(fmt.Sprintf("if this is intentional, prefix it with an underscore: `_%s`", name)).
		Build()
}

func UnnecessaryUnsafe(block, outer ast.Span) Diagnostic {
	b := NewDiagnostic(Lint, WarningUnnecessaryUnsafe,
		"unnecessary `unsafe` block",
		block, "unnecessary `unsafe` block")
	if !outer.IsZero() {
		b.WithSecondary(outer, "because it's nested under this `unsafe` context")
	}
	return b.Build()
}

func ConstantRevert(reason string, span ast.Span) Diagnostic {
	return NewDiagnostic(Lint, WarningConstantRevert,
		"this operation will revert at runtime",
		span, reason).
		Build()
}

// SyntaxError forwards a parse error from the front end.
func SyntaxError(message string, span ast.Span) Diagnostic {
	return NewDiagnostic(ForwardedSyntaxError, ErrorSyntax, message, span, "").Build()
}

// UnitAborted reports a unit that could not be analyzed at all. The span may
// be zero when no source location exists.
func UnitAborted(file, reason string) Diagnostic {
	span := ast.Span{Start: ast.Position{Filename: file}, End: ast.Position{Filename: file}}
	message := fmt.Sprintf("cannot analyze `%s`: %s", file, reason)
	if file == "" {
		message = "cannot analyze unit: " + reason
	}
	return NewDiagnostic(DeclarationError, ErrorUnitAborted, message, span, "").Build()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
