package types

import (
	"errors"
	"math/big"
)

var (
	ErrOverflow         = errors.New("arithmetic overflow")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrNegativeExponent = errors.New("negative exponent")
	ErrNegativeShift    = errors.New("negative shift amount")
)

// ArithmeticOps are the binary operators defined on integers that produce
// an integer, and the operators accepted in augmented assignments.
var ArithmeticOps = []string{"+", "-", "*", "/", "%", "**", "<<", ">>", "|", "^", "&"}

// IsArithmeticOp reports whether op is one of ArithmeticOps.
func IsArithmeticOp(op string) bool {
	for _, o := range ArithmeticOps {
		if o == op {
			return true
		}
	}
	return false
}

// IsComparisonOp reports whether op compares two operands into a bool.
func IsComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

// Eval applies a binary arithmetic operator to two values of type t with
// checked semantics: +, -, * and ** fail with ErrOverflow when the exact
// result does not fit, / and % truncate toward zero, << discards the bits
// shifted out and >> is arithmetic for signed types.
func Eval(op string, t Integer, a, b *big.Int) (*big.Int, error) {
	switch op {
	case "+":
		return checked(t, new(big.Int).Add(a, b))
	case "-":
		return checked(t, new(big.Int).Sub(a, b))
	case "*":
		return checked(t, new(big.Int).Mul(a, b))
	case "/":
		if b.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return checked(t, new(big.Int).Quo(a, b))
	case "%":
		if b.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return new(big.Int).Rem(a, b), nil
	case "**":
		return pow(t, a, b)
	case "<<":
		if b.Sign() < 0 {
			return nil, ErrNegativeShift
		}
		if b.Cmp(big.NewInt(int64(t.Bits))) >= 0 {
			return new(big.Int), nil
		}
		return t.Wrap(new(big.Int).Lsh(a, uint(b.Uint64()))), nil
	case ">>":
		if b.Sign() < 0 {
			return nil, ErrNegativeShift
		}
		if b.Cmp(big.NewInt(int64(t.Bits))) >= 0 {
			if a.Sign() < 0 {
				return big.NewInt(-1), nil
			}
			return new(big.Int), nil
		}
		// Rsh rounds toward negative infinity, which is an arithmetic shift.
		return new(big.Int).Rsh(a, uint(b.Uint64())), nil
	case "|":
		return t.Wrap(new(big.Int).Or(a, b)), nil
	case "^":
		return t.Wrap(new(big.Int).Xor(a, b)), nil
	case "&":
		return t.Wrap(new(big.Int).And(a, b)), nil
	}
	return nil, errors.New("unsupported operator " + op)
}

func checked(t Integer, v *big.Int) (*big.Int, error) {
	if !t.Fits(v) {
		return nil, ErrOverflow
	}
	return v, nil
}

func pow(t Integer, base, exp *big.Int) (*big.Int, error) {
	if exp.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	// |base| >= 2 overflows 256 bits well before the exponent reaches 257,
	// so the exact power is only computed for small exponents.
	switch {
	case base.Sign() == 0:
		if exp.Sign() == 0 {
			return big.NewInt(1), nil
		}
		return new(big.Int), nil
	case base.CmpAbs(big.NewInt(1)) == 0:
		if base.Sign() < 0 && exp.Bit(0) == 1 {
			return checked(t, big.NewInt(-1))
		}
		return big.NewInt(1), nil
	case exp.Cmp(big.NewInt(int64(t.Bits))) > 0:
		return nil, ErrOverflow
	}
	return checked(t, new(big.Int).Exp(base, exp, nil))
}

// Negate returns -a for a signed type, failing when a is the minimum value.
func Negate(t Integer, a *big.Int) (*big.Int, error) {
	return checked(t, new(big.Int).Neg(a))
}

// Complement returns the bitwise complement ~a within t.
func Complement(t Integer, a *big.Int) *big.Int {
	return t.Wrap(new(big.Int).Not(a))
}

// Compare applies a comparison operator to two integers.
func Compare(op string, a, b *big.Int) bool {
	c := a.Cmp(b)
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}
