package types

import (
	"math/big"

	"fortio.org/safecast"
)

func (t Integer) width() uint {
	w, err := safecast.Conv[uint](t.Bits)
	if err != nil {
		panic(err)
	}
	return w
}

// modulus returns 2^Bits.
func (t Integer) modulus() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), t.width())
}

// Min returns the smallest value representable by t.
func (t Integer) Min() *big.Int {
	if !t.Signed {
		return new(big.Int)
	}
	return new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), t.width()-1))
}

// Max returns the largest value representable by t.
func (t Integer) Max() *big.Int {
	if !t.Signed {
		return new(big.Int).Sub(t.modulus(), big.NewInt(1))
	}
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), t.width()-1), big.NewInt(1))
}

// Fits reports whether v is representable by t without loss.
func (t Integer) Fits(v *big.Int) bool {
	return v.Cmp(t.Min()) >= 0 && v.Cmp(t.Max()) <= 0
}

// Wrap reduces v to the value of its low Bits bits interpreted as t:
// modulo 2^Bits for unsigned types, two's complement for signed types.
func (t Integer) Wrap(v *big.Int) *big.Int {
	m := t.modulus()
	out := new(big.Int).Mod(v, m) // Mod is Euclidean, out >= 0
	if t.Signed && out.Cmp(t.Max()) > 0 {
		out.Sub(out, m)
	}
	return out
}

// Cast converts a value of type from to type to with two's-complement
// semantics: widening a signed value sign-extends, widening an unsigned
// value zero-extends, narrowing keeps the low bits and an equal-width sign
// change reinterprets the bit pattern. Working on the mathematical value
// makes every case a single Wrap into the target type.
func Cast(v *big.Int, from, to Integer) *big.Int {
	return to.Wrap(from.Wrap(v))
}

// Smallest returns the narrowest integer type that holds v, preferring
// unsigned types for non-negative values. The second result is false when
// v does not fit in 256 bits.
func Smallest(v *big.Int) (Integer, bool) {
	for _, bits := range Widths {
		t := Integer{Bits: bits, Signed: v.Sign() < 0}
		if t.Fits(v) {
			return t, true
		}
	}
	return Integer{}, false
}
