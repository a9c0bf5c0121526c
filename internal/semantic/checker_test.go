package semantic

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ferrum/internal/ast"
	"ferrum/internal/errors"
	"ferrum/internal/types"
)

func TestCheckerDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []string
	}{
		{
			name: "duplicate function",
			src: `fn a() {}
fn a() {}
`,
			codes: []string{errors.ErrorDuplicateDeclaration},
		},
		{
			name: "literal does not fit cast target",
			src: `fn f() -> u8 {
    return u8(256)
}
`,
			codes: []string{errors.ErrorLiteralOutOfRange},
		},
		{
			name: "mixed operand types",
			src: `fn f(a: u8, b: u16) -> u8 {
    return a + b
}
`,
			codes: []string{errors.ErrorInvalidBinaryOperation},
		},
		{
			name: "unused local",
			src: `fn f() {
    let x: u8 = 1
}
`,
			codes: []string{errors.WarningUnusedVariable},
		},
		{
			name: "underscore local is not reported",
			src: `fn f() {
    let _x: u8 = 1
}
`,
		},
		{
			name: "constant overflow reverts",
			src: `fn f() -> u8 {
    let x: u8 = 255 + 1
    return x
}
`,
			codes: []string{errors.WarningConstantRevert},
		},
		{
			name: "constant division by zero reverts",
			src: `fn f() -> u32 {
    return 10 / 0
}
`,
			codes: []string{errors.WarningConstantRevert},
		},
		{
			name: "missing return on one path",
			src: `fn f(a: u8) -> u8 {
    if a > 1 {
        return a
    }
}
`,
			codes: []string{errors.ErrorMissingReturn},
		},
		{
			name: "every path returns",
			src: `fn f(a: u8) -> u8 {
    if a > 1 {
        return a
    } else {
        return 1
    }
}
`,
		},
		{
			name: "infinite loop needs no return",
			src: `fn f() -> u8 {
    while true {
    }
}
`,
		},
		{
			name: "break outside loop",
			src: `fn f() {
    break
}
`,
			codes: []string{errors.ErrorLoopControl},
		},
		{
			name: "loop control inside loop",
			src: `fn f(n: u8) {
    let mut i: u8 = 0
    while i < n {
        i += 1
        if i == 3 {
            continue
        }
        break
    }
}
`,
		},
		{
			name: "assign to parameter",
			src: `fn f(a: u8) {
    a = 1
}
`,
			codes: []string{errors.ErrorAssignToImmutable},
		},
		{
			name: "private function of another contract",
			src: `contract Other {
    fn secret(self) {}
}

contract Me {
    pub fn poke(self, at: address) {
        Other(at).secret()
    }
}
`,
			codes: []string{errors.ErrorPrivateFunction},
		},
		{
			name: "self without self parameter",
			src: `contract C {
    x: u8

    pub fn get() -> u8 {
        return self.x
    }
}
`,
			codes: []string{errors.ErrorInvalidSelf},
		},
		{
			name: "self outside contract",
			src: `fn f(self) {}
`,
			codes: []string{errors.ErrorInvalidSelf},
		},
		{
			name: "method called without self",
			src: `contract C {
    fn helper(self) {}

    pub fn run(self) {
        helper()
    }
}
`,
			codes: []string{errors.ErrorInvalidSelf},
		},
		{
			name: "map parameter",
			src: `fn f(m: Map<u8, u8>) {}
`,
			codes: []string{errors.ErrorInvalidMapType},
		},
		{
			name: "map with tuple key",
			src: `contract C {
    m: Map<(u8, u8), u8>
}
`,
			codes: []string{errors.ErrorInvalidMapType},
		},
		{
			name: "unknown import",
			src: `use std::nope
`,
			codes: []string{errors.ErrorUnresolvedImport},
		},
		{
			name: "unknown imported item",
			src: `use std::evm::{callr}
`,
			codes: []string{errors.ErrorUnresolvedImport},
		},
		{
			name: "imported item",
			src: `use std::evm::{caller}

fn f() -> address {
    return caller()
}
`,
		},
		{
			name: "emit label mismatch",
			src: `event Ping {
    value: u256
}

fn f() {
    emit Ping(amount: 1)
}
`,
			codes: []string{errors.ErrorArgumentLabel},
		},
		{
			name: "too many indexed fields",
			src: `event Big {
    idx a: u8
    idx b: u8
    idx c: u8
    idx d: u8
}
`,
			codes: []string{errors.ErrorTooManyIndexed},
		},
		{
			name: "local used before its declaration",
			src: `fn f() -> u8 {
    let y: u8 = x
    let x: u8 = 1
    return y
}
`,
			codes: []string{errors.ErrorUndefinedName, errors.WarningUnusedVariable},
		},
		{
			name: "inner block shadows",
			src: `fn f(a: u8) -> u8 {
    let x: u8 = a
    if a > 0 {
        let x: u16 = 7
        return u8(x)
    }
    return x
}
`,
		},
		{
			name: "wrong argument count",
			src: `fn g(a: u8) {}

fn f() {
    g(1, 2)
}
`,
			codes: []string{errors.ErrorWrongArgumentCount},
		},
		{
			name: "bool into integer",
			src: `fn f() -> u8 {
    return true
}
`,
			codes: []string{errors.ErrorTypeMismatch},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := analyze(t, tt.src)
			if len(tt.codes) == 0 {
				assert.Empty(t, diags, render(tt.src, diags))
				return
			}
			assert.Equal(t, tt.codes, codes(diags), render(tt.src, diags))
		})
	}
}

func TestUndefinedNameSuggestsCloseMatch(t *testing.T) {
	src := `fn f(amount: u8) -> u8 {
    return amout
}
`
	_, diags := analyze(t, src)
	require.Len(t, diags, 1, render(src, diags))
	assert.Equal(t, errors.DeclarationError, diags[0].Kind)
	assert.Equal(t, []string{"Hint: did you mean `amount`?"}, diags[0].Notes)
}

func TestNegativeLiteralOutOfRangeSuggestsSignedType(t *testing.T) {
	src := `fn f() -> u8 {
    return u8(-1)
}
`
	_, diags := analyze(t, src)
	require.Len(t, diags, 1, render(src, diags))
	assert.Equal(t, errors.ErrorLiteralOutOfRange, diags[0].Code)
	assert.Equal(t, []string{"Hint: the smallest type that can hold `-1` is `i8`"}, diags[0].Notes)
}

func TestFailedExpressionsAreUnknown(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			name: "literal out of range",
			src: `fn f() -> u8 {
    return 300
}
`,
			code: errors.ErrorLiteralOutOfRange,
		},
		{
			name: "negative literal out of range",
			src: `fn f() -> u8 {
    return -1
}
`,
			code: errors.ErrorLiteralOutOfRange,
		},
		{
			name: "mismatched comparison",
			src: `fn f(a: u8, b: u16) -> bool {
    return a == b
}
`,
			code: errors.ErrorInvalidBinaryOperation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, diags := analyze(t, tt.src)
			require.Len(t, diags, 1, render(tt.src, diags))
			assert.Equal(t, tt.code, diags[0].Code)

			ret := returnValue(t, findFunction(t, tm, "f"))
			require.Contains(t, tm.ExprTypes, ret)
			assert.Equal(t, types.Unknown{}, tm.ExprTypes[ret])
			_, folded := tm.ConstValue(ret)
			assert.False(t, folded)
		})
	}
}

func TestWarningsDoNotFailAnalysis(t *testing.T) {
	src := `fn f() {
    let x: u8 = 1
}
`
	_, diags := analyze(t, src)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.Warning, diags[0].Level)
	assert.Empty(t, onlyErrors(diags))
}

func TestCastsFollowTwosComplement(t *testing.T) {
	tests := []struct {
		expr string
		ret  string
		want int64
	}{
		{"u16(i16(i8(-1)))", "u16", 65535},
		{"u16(u8(i8(-1)))", "u16", 255},
		{"i8(u8(200))", "i8", -56},
		{"u8(u16(300))", "u8", 44},
		{"i16(i8(-128))", "i16", -128},
		{"i64(u32(4294967295))", "i64", 4294967295},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			tm := requireClean(t, "fn f() -> "+tt.ret+" {\n    return "+tt.expr+"\n}\n")
			ret := returnValue(t, findFunction(t, tm, "f"))

			v, ok := tm.ConstValue(ret)
			require.True(t, ok)
			assert.Zero(t, big.NewInt(tt.want).Cmp(v), "got %s", v)

			typ, _ := types.Primitive(tt.ret)
			assert.Equal(t, typ, tm.TypeOf(ret))
			assert.Equal(t, CallCast, tm.Calls[ret.(*ast.CallExpr)].Kind)
		})
	}
}

func TestLiteralTakesTypeOfOtherOperand(t *testing.T) {
	tm := requireClean(t, `fn f(a: i32) -> bool {
    return 1 < a
}
`)
	bin := returnValue(t, findFunction(t, tm, "f")).(*ast.BinaryExpr)
	assert.Equal(t, types.I32, tm.TypeOf(bin.Left))
	assert.Equal(t, types.Bool{}, tm.TypeOf(bin))
}

func TestUntypedLiteralDefaultsToU256(t *testing.T) {
	tm := requireClean(t, `fn f() -> u256 {
    let x = 5
    return x
}
`)
	for sym, typ := range tm.LocalTypes {
		assert.Equal(t, "x", sym.Name)
		assert.Equal(t, types.U256, typ)
	}
}

func TestCallsAreClassified(t *testing.T) {
	tm := requireClean(t, `use std::evm

fn helper() -> u8 {
    return 1
}

contract Peer {
    pub fn ping(self) {}
}

contract Main {
    fn inner(self) -> u8 {
        return helper()
    }

    pub fn run(self, peer: address) -> address {
        let _n: u8 = self.inner()
        Peer(peer).ping()
        return address(evm::caller())
    }
}
`)
	kinds := make(map[string]CallKind)
	for call, info := range tm.Calls {
		kinds[ast.ExprString(call)] = info.Kind
	}
	assert.Equal(t, map[string]CallKind{
		"helper()":               CallFunction,
		"self.inner()":           CallMethod,
		"Peer(peer)":             CallContract,
		"Peer(peer).ping()":      CallExternal,
		"evm::caller()":          CallFunction,
		"address(evm::caller())": CallCast,
	}, kinds)
}
