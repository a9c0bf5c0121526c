package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/types"
)

func build(t *testing.T, src string) (*SymbolTable, []errors.Diagnostic) {
	t.Helper()
	return Build(parse(t, src))
}

func TestBuildSealsTable(t *testing.T) {
	table, diags := build(t, `fn f() {}
`)
	require.Empty(t, diags)
	assert.True(t, table.Sealed())
	assert.Panics(t, func() {
		table.Root.Define(&Symbol{Name: "late", Kind: SymbolFunction})
	})
}

func TestBuildDeclaresModuleItems(t *testing.T) {
	table, diags := build(t, `use std::evm

event Ping {
    idx from: address
}

contract Vault {
    owner: address
    balances: Map<address, u256>

    pub fn deposit(self, amount: u256) {}
    unsafe fn sweep(self) {}
}

fn helper(a: u8, b: (u8, bool)) -> u8 {
    return a
}
`)
	require.Empty(t, diags, render("", diags))

	mod := table.Root.LookupLocal("evm")
	require.NotNil(t, mod)
	assert.Equal(t, SymbolModule, mod.Kind)
	assert.Equal(t, "std::evm", mod.Module.Path)

	ping := table.Root.LookupLocal("Ping")
	require.NotNil(t, ping)
	require.Len(t, ping.Event.Fields, 1)
	assert.True(t, ping.Event.Fields[0].Indexed)
	assert.Equal(t, types.Address{}, ping.Event.Fields[0].Type)

	require.Len(t, table.Contracts(), 1)
	vault := table.Contracts()[0]
	assert.Equal(t, "Vault", vault.Name())
	require.Len(t, vault.Fields, 2)
	assert.Equal(t, types.Mapping{Key: types.Address{}, Value: types.U256}, vault.Fields[1].Type)

	deposit := vault.Member("deposit")
	require.NotNil(t, deposit)
	assert.Equal(t, Public, deposit.Visibility)
	assert.True(t, deposit.Function.Sig.TakesSelf)
	assert.Equal(t, []ParamInfo{{Name: "amount", Type: types.U256, Span: deposit.Function.Sig.Params[0].Span}},
		deposit.Function.Sig.Params)

	sweep := vault.Member("sweep")
	require.NotNil(t, sweep)
	assert.Equal(t, Unsafe, sweep.Safety)
	assert.Equal(t, Private, sweep.Visibility)

	helper := table.Root.LookupLocal("helper")
	require.NotNil(t, helper)
	sig := helper.Function.Sig
	assert.Equal(t, types.U8, sig.Return)
	assert.Equal(t, types.Tuple{Elems: []types.Type{types.U8, types.Bool{}}}, sig.Params[1].Type)

	var names []string
	for _, fn := range table.Functions() {
		names = append(names, fn.Symbol.Name)
	}
	assert.Equal(t, []string{"deposit", "sweep", "helper"}, names)
}

func TestDuplicateBindsFirstDeclaration(t *testing.T) {
	table, diags := build(t, `fn f(a: u8) {}

fn f(b: bool) {}
`)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, errors.ErrorDuplicateDeclaration, d.Code)
	assert.Equal(t, 3, d.Primary.Span.Start.Line)
	require.Len(t, d.Secondary, 1)
	assert.Equal(t, 1, d.Secondary[0].Span.Start.Line)
	assert.Equal(t, "`f` first defined here", d.Secondary[0].Message)

	sym := table.Root.LookupLocal("f")
	assert.Equal(t, "a", sym.Function.Sig.Params[0].Name)
}

func TestLocalsVisibleAfterTheirStatement(t *testing.T) {
	src := `fn f() -> u8 {
    let x: u8 = 1
    let y: u8 = x
    return y
}
`
	table, diags := build(t, src)
	require.Empty(t, diags)

	body := table.Functions()[0].Node.Body
	scope := table.BlockScope(body)
	require.NotNil(t, scope)

	x := scope.LookupLocal("x")
	require.NotNil(t, x)
	assert.Equal(t, SymbolLocal, x.Kind)

	let := body.Stmts[0].(*ast.LetStmt)
	assert.Nil(t, scope.LookupAt("x", let.Value.NodePos().Offset), "initializer cannot see its own binding")
	assert.Same(t, x, scope.LookupAt("x", let.EndPos.Offset))
	assert.Same(t, x, scope.Lookup("x"))
}

func TestShadowingInNestedBlock(t *testing.T) {
	table, diags := build(t, `fn f(a: bool) {
    let x: u8 = 1
    if a {
        let x: bool = true
    }
}
`)
	require.Empty(t, diags)

	body := table.Functions()[0].Node.Body
	inner := body.Stmts[1].(*ast.IfStmt).Then
	outer := table.BlockScope(body).LookupLocal("x")
	shadow := table.BlockScope(inner).LookupLocal("x")
	require.NotNil(t, outer)
	require.NotNil(t, shadow)
	assert.NotSame(t, outer, shadow)
	assert.Same(t, shadow, table.BlockScope(inner).Lookup("x"))
}

func TestDuplicateLocalInSameBlock(t *testing.T) {
	_, diags := build(t, `fn f() {
    let x: u8 = 1
    let x: u8 = 2
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.DeclarationError, diags[0].Kind)
	assert.Equal(t, "duplicate definition of variable `x`", diags[0].Message)
}

func TestUndefinedTypeSuggestions(t *testing.T) {
	_, diags := build(t, `fn f(a: u25) {}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorUndefinedType, diags[0].Code)
	assert.Equal(t, []string{"Hint: did you mean `u256` or `u32`?"}, diags[0].Notes)
}

func TestExclusivityMarksFunctionMalformed(t *testing.T) {
	table, diags := build(t, `contract C {
    pub unsafe fn f(self) {}
    pub fn g(self) {}
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorPubUnsafe, diags[0].Code)

	fns := table.Functions()
	require.Len(t, fns, 2)
	assert.True(t, fns[0].Malformed)
	assert.False(t, fns[1].Malformed)
	assert.Nil(t, table.BlockScope(fns[0].Node.Body))
}

func TestTypeAliasesResolve(t *testing.T) {
	table, diags := build(t, `type Amount = Balance
type Balance = u256
type Ledger = Map<address, Amount>

contract Bank {
    accounts: Ledger
}

fn f(a: Amount) -> Balance {
    return a
}
`)
	require.Empty(t, diags, render("", diags))

	amount := table.Root.LookupLocal("Amount")
	require.NotNil(t, amount)
	assert.Equal(t, SymbolType, amount.Kind)
	assert.True(t, amount.IsAlias())
	assert.Equal(t, types.U256, amount.Type)

	bank := table.Contracts()[0]
	require.Len(t, bank.Fields, 1)
	assert.Equal(t, types.Mapping{Key: types.Address{}, Value: types.U256}, bank.Fields[0].Type)

	f := table.Root.LookupLocal("f").Function
	assert.Equal(t, types.U256, f.Sig.Params[0].Type)
	assert.Equal(t, types.U256, f.Sig.Return)
}

func TestRecursiveTypeAlias(t *testing.T) {
	src := `type A = B
type B = (A, u8)

fn f(x: B) {}
`
	table, diags := build(t, src)
	require.Len(t, diags, 1, render(src, diags))
	d := diags[0]
	assert.Equal(t, errors.ErrorRecursiveDefinition, d.Code)
	assert.Equal(t, "type alias `A` is defined in terms of itself", d.Message)
	assert.Equal(t, 2, d.Primary.Span.Start.Line)
	assert.Equal(t, 11, d.Primary.Span.Start.Column)
	require.Len(t, d.Secondary, 1)
	assert.Equal(t, 1, d.Secondary[0].Span.Start.Line)

	assert.Equal(t, types.Unknown{}, table.Root.LookupLocal("A").Type)
	assert.Equal(t, types.Unknown{}, table.Root.LookupLocal("B").Type)
	assert.Equal(t, types.Unknown{}, table.Root.LookupLocal("f").Function.Sig.Params[0].Type)
}

func TestMapAliasOutsideField(t *testing.T) {
	src := `type Ledger = Map<address, u256>

fn f(l: Ledger) {}
`
	table, diags := build(t, src)
	require.Len(t, diags, 1, render(src, diags))
	assert.Equal(t, errors.ErrorInvalidMapType, diags[0].Code)
	assert.Equal(t, "`Ledger` is a `Map<address, u256>`", diags[0].Primary.Message)
	assert.Equal(t, types.Unknown{}, table.Root.LookupLocal("f").Function.Sig.Params[0].Type)
}

func TestConstantIsModuleValue(t *testing.T) {
	table, diags := build(t, `const LIMIT: u8 = 10
const LIMIT: u16 = 11
`)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorDuplicateDeclaration, diags[0].Code)

	limit := table.Root.LookupLocal("LIMIT")
	require.NotNil(t, limit)
	assert.Equal(t, SymbolConstant, limit.Kind)
	assert.True(t, limit.Kind.IsValue())
	assert.Equal(t, types.U8, limit.Type)
	require.Len(t, table.Constants(), 2)
	assert.Equal(t, types.U16, table.Constants()[1].Type)
}
