package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ferrum/internal/ast"
)

func span(file string, line, col, endLine, endCol int) ast.Span {
	return ast.Span{
		Start: ast.Position{Filename: file, Line: line, Column: col},
		End:   ast.Position{Filename: file, Line: endLine, Column: endCol},
	}
}

const unsafeCallSource = `use std::evm

pub fn call_it() {
    mod_priv()
}

// private helper
unsafe fn mod_priv() {}
`

func TestRenderUnsafeCall(t *testing.T) {
	d := UnsafeCall("mod_priv", span("a.fe", 4, 5, 4, 13), span("a.fe", 8, 1, 8, 19), ast.Span{})

	got := NewRenderer(FileSet{"a.fe": unsafeCallSource}).Render(d)

	want := "error: unsafe function `mod_priv` can only be called in an unsafe function or block\n" +
		"  ┌─ a.fe:4:5\n" +
		"  │\n" +
		"4 │     mod_priv()\n" +
		"  │     ^^^^^^^^ call to unsafe function\n" +
		"  ·\n" +
		"8 │ unsafe fn mod_priv() {}\n" +
		"  │ ------------------ `mod_priv` is defined here\n" +
		"  │\n" +
		"  = Hint: put this call in an `unsafe` block if you're confident that it's safe to use here\n"
	assert.Equal(t, want, got)
}

func TestRenderPubUnsafe(t *testing.T) {
	src := "contract Foo {\n    pub unsafe fn bar() {}\n}\n"
	d := PubUnsafe(span("foo.fe", 2, 5, 2, 15))

	got := NewRenderer(FileSet{"foo.fe": src}).Render(d)

	want := "error: public contract functions can't be unsafe\n" +
		"  ┌─ foo.fe:2:5\n" +
		"  │\n" +
		"2 │     pub unsafe fn bar() {}\n" +
		"  │     ^^^^^^^^^^ a contract function can be either `pub` or `unsafe`, but not both\n"
	assert.Equal(t, want, got)
}

func TestRenderLayout(t *testing.T) {
	src := "line one\nline two\n\tlet x = 1\n"
	src10 := ""
	for i := 1; i <= 10; i++ {
		src10 += "x\n"
	}

	tests := []struct {
		name  string
		files FileSet
		diag  Diagnostic
		want  string
	}{
		{
			name:  "adjacent lines share a snippet",
			files: FileSet{"a.fe": src},
			diag: NewDiagnostic(TypeError, ErrorTypeMismatch, "m", span("a.fe", 2, 6, 2, 9), "p").
				WithSecondary(span("a.fe", 1, 1, 1, 5), "s").Build(),
			want: "error: m\n" +
				"  ┌─ a.fe:2:6\n" +
				"  │\n" +
				"1 │ line one\n" +
				"  │ ---- s\n" +
				"2 │ line two\n" +
				"  │      ^^^ p\n",
		},
		{
			name:  "labels on one line reuse the source line",
			files: FileSet{"a.fe": src},
			diag: NewDiagnostic(TypeError, ErrorTypeMismatch, "m", span("a.fe", 1, 1, 1, 5), "p").
				WithSecondary(span("a.fe", 1, 6, 1, 9), "s").Build(),
			want: "error: m\n" +
				"  ┌─ a.fe:1:1\n" +
				"  │\n" +
				"1 │ line one\n" +
				"  │ ^^^^ p\n" +
				"  │      --- s\n",
		},
		{
			name:  "tabs expand to four columns",
			files: FileSet{"a.fe": src},
			diag:  NewDiagnostic(Lint, WarningUnusedVariable, "unused", span("a.fe", 3, 6, 3, 7), "here").Build(),
			want: "warning: unused\n" +
				"  ┌─ a.fe:3:6\n" +
				"  │\n" +
				"3 │     let x = 1\n" +
				"  │         ^ here\n",
		},
		{
			name:  "multi-line span underlines to end of line",
			files: FileSet{"a.fe": src},
			diag:  NewDiagnostic(TypeError, ErrorMissingReturn, "m", span("a.fe", 1, 6, 2, 3), "").Build(),
			want: "error: m\n" +
				"  ┌─ a.fe:1:6\n" +
				"  │\n" +
				"1 │ line one\n" +
				"  │      ^^^\n",
		},
		{
			name:  "gutter width follows the largest line number",
			files: FileSet{"b.fe": src10},
			diag: NewDiagnostic(TypeError, ErrorTypeMismatch, "m", span("b.fe", 10, 1, 10, 2), "p").
				WithSecondary(span("b.fe", 9, 1, 9, 2), "s").Build(),
			want: "error: m\n" +
				"   ┌─ b.fe:10:1\n" +
				"   │\n" +
				" 9 │ x\n" +
				"   │ - s\n" +
				"10 │ x\n" +
				"   │ ^ p\n",
		},
		{
			name:  "labels in another file get their own locator",
			files: FileSet{"a.fe": src, "b.fe": src10},
			diag: NewDiagnostic(TypeError, ErrorPrivateFunction, "m", span("a.fe", 2, 1, 2, 5), "p").
				WithSecondary(span("b.fe", 3, 1, 3, 2), "s").Build(),
			want: "error: m\n" +
				"  ┌─ a.fe:2:1\n" +
				"  │\n" +
				"2 │ line two\n" +
				"  │ ^^^^ p\n" +
				"  ┌─ b.fe:3:1\n" +
				"  │\n" +
				"3 │ x\n" +
				"  │ - s\n",
		},
		{
			name:  "zero spans are not rendered",
			files: FileSet{"a.fe": src},
			diag: NewDiagnostic(TypeError, ErrorTypeMismatch, "m", span("a.fe", 1, 1, 1, 2), "p").
				WithSecondary(ast.Span{}, "builtin").WithNote("n").Build(),
			want: "error: m\n" +
				"  ┌─ a.fe:1:1\n" +
				"  │\n" +
				"1 │ line one\n" +
				"  │ ^ p\n" +
				"  │\n" +
				"  = n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRenderer(tt.files).Render(tt.diag))
		})
	}
}

func TestRenderAllSeparatesWithBlankLine(t *testing.T) {
	files := FileSet{"a.fe": "ab\n"}
	d := NewDiagnostic(TypeError, ErrorTypeMismatch, "m", span("a.fe", 1, 1, 1, 2), "").Build()

	got := NewRenderer(files).RenderAll([]Diagnostic{d, d})

	one := "error: m\n  ┌─ a.fe:1:1\n  │\n1 │ ab\n  │ ^\n"
	assert.Equal(t, one+"\n"+one, got)
}

func TestRenderIsPure(t *testing.T) {
	files := FileSet{"a.fe": unsafeCallSource}
	d := UnsafeCall("mod_priv", span("a.fe", 4, 5, 4, 13), span("a.fe", 8, 1, 8, 19), ast.Span{})

	r := NewRenderer(files)
	assert.Equal(t, r.Render(d), r.Render(d))
	assert.Equal(t, r.Render(d), NewRenderer(files).Render(d))
}

func TestRenderWithColor(t *testing.T) {
	d := NewDiagnostic(TypeError, ErrorTypeMismatch, "m", span("a.fe", 1, 1, 1, 2), "p").Build()
	got := NewRenderer(FileSet{"a.fe": "ab\n"}).WithColor(true).Render(d)

	assert.Contains(t, got, "\x1b[")
	assert.NotContains(t, NewRenderer(FileSet{"a.fe": "ab\n"}).Render(d), "\x1b[")
}
