package driver

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferrum/internal/errors"
	"ferrum/internal/semantic"
)

const cleanSource = `fn add(a: u8, b: u8) -> u8 {
    return a + b
}
`

const unsafeSource = `unsafe fn mod_priv() {}

pub fn call_it() {
    mod_priv()
}
`

type recordingBackend struct {
	mu      sync.Mutex
	modules []*semantic.TypedModule
}

func (b *recordingBackend) Generate(_ context.Context, tm *semantic.TypedModule) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modules = append(b.modules, tm)
	return nil
}

type failingBackend struct{}

func (failingBackend) Generate(context.Context, *semantic.TypedModule) error {
	return fmt.Errorf("out of gas")
}

func TestAnalyzeCleanUnitReachesBackend(t *testing.T) {
	backend := &recordingBackend{}
	d := New(Options{Backend: backend})

	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "add.fe", Source: cleanSource})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.False(t, res.Failed())
	require.NotNil(t, res.Typed)
	require.NoError(t, semantic.Verify(res.Typed))

	require.Len(t, backend.modules, 1)
	assert.Same(t, res.Typed, backend.modules[0])
	assert.False(t, d.Engine().HasErrors())
}

func TestAnalyzeFailingUnitSkipsBackend(t *testing.T) {
	backend := &recordingBackend{}
	d := New(Options{Backend: backend})

	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "a.fe", Source: unsafeSource})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, errors.SafetyError, res.Diagnostics[0].Kind)
	assert.True(t, res.Failed())
	assert.Empty(t, backend.modules)
	assert.True(t, d.Engine().HasErrors())

	out := d.Engine().Render(false)
	assert.Contains(t, out, "  ┌─ a.fe:4:5\n")
	assert.Contains(t, out, "4 │     mod_priv()\n")
}

func TestBackendErrorIsReturned(t *testing.T) {
	d := New(Options{Backend: failingBackend{}})
	_, err := d.AnalyzeUnit(context.Background(), Unit{Path: "add.fe", Source: cleanSource})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of gas")
}

func TestSyntaxErrorsAreForwarded(t *testing.T) {
	d := New(Options{})
	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "bad.fe", Source: "fn broken( {\n"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Diagnostics)
	for _, diag := range res.Diagnostics {
		assert.Equal(t, errors.ForwardedSyntaxError, diag.Kind)
		assert.Equal(t, errors.ErrorSyntax, diag.Code)
	}
	assert.Nil(t, res.Typed)
}

func TestUnitWithoutTreeOrSourceIsAborted(t *testing.T) {
	d := New(Options{})
	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "empty.fe"})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, errors.ErrorUnitAborted, res.Diagnostics[0].Code)
	assert.True(t, res.Failed())
}

func TestAnalyzeUnitsKeepsInputOrder(t *testing.T) {
	var units []Unit
	for i := range 24 {
		src := cleanSource
		if i%3 == 0 {
			src = unsafeSource
		}
		units = append(units, Unit{Path: fmt.Sprintf("unit%02d.fe", i), Source: src})
	}

	d := New(Options{Jobs: 4})
	results, err := d.AnalyzeUnits(context.Background(), units)
	require.NoError(t, err)
	require.Len(t, results, len(units))

	for i, res := range results {
		assert.Equal(t, units[i].Path, res.Unit)
		assert.Equal(t, i%3 == 0, res.Failed(), res.Unit)
	}

	var order []string
	for _, diag := range d.Engine().Diagnostics() {
		order = append(order, diag.Primary.Span.File())
	}
	var want []string
	for i := 0; i < len(units); i += 3 {
		want = append(want, units[i].Path)
	}
	assert.Equal(t, want, order)

	sequential := New(Options{Jobs: 1})
	_, err = sequential.AnalyzeUnits(context.Background(), units)
	require.NoError(t, err)
	assert.Equal(t, sequential.Engine().Render(false), d.Engine().Render(false))
}

func TestPassOrderIsDeterministic(t *testing.T) {
	src := `fn f() {
    let y: u8 = true
    mod_priv()
}

fn f() {}

unsafe fn mod_priv() {}
`
	var first string
	for range 20 {
		d := New(Options{})
		_, err := d.AnalyzeUnit(context.Background(), Unit{Path: "order.fe", Source: src})
		require.NoError(t, err)

		var kinds []errors.Kind
		for _, diag := range d.Engine().Diagnostics() {
			kinds = append(kinds, diag.Kind)
		}
		require.Equal(t, []errors.Kind{
			errors.DeclarationError,
			errors.TypeError,
			errors.Lint,
			errors.SafetyError,
		}, kinds)

		out := d.Engine().Render(false)
		if first == "" {
			first = out
		}
		assert.Equal(t, first, out)
	}
}

func TestMaxDiagnosticsPerUnit(t *testing.T) {
	src := `fn f() -> u8 {
    return a + b + c + d
}
`
	d := New(Options{MaxDiagnostics: 2})
	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "many.fe", Source: src})
	require.NoError(t, err)
	assert.Len(t, res.Diagnostics, 2)
	assert.Equal(t, 2, d.Engine().Dropped("many.fe"))
	assert.True(t, d.Engine().HasErrors())
}

func TestDroppedErrorStillFailsUnit(t *testing.T) {
	// The checker's unused warning is committed before the safety error.
	src := `unsafe fn raw() {}

fn f() {
    let x: u8 = 1
    raw()
}
`
	backend := &recordingBackend{}
	d := New(Options{MaxDiagnostics: 1, Backend: backend})
	res, err := d.AnalyzeUnit(context.Background(), Unit{Path: "capped.fe", Source: src})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.False(t, res.Diagnostics[0].IsError())
	assert.Equal(t, 1, d.Engine().Dropped("capped.fe"))
	assert.True(t, res.Failed())
	assert.Empty(t, backend.modules)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(Options{})
	_, err := d.AnalyzeUnits(ctx, []Unit{{Path: "a.fe", Source: cleanSource}})
	assert.ErrorIs(t, err, context.Canceled)
}
