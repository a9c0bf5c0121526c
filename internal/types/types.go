package types

import (
	"fmt"
	"strings"
)

// Type is a closed sum over the language's types. Every variant is a plain
// value; use Equal for comparisons since Tuple holds a slice.
type Type interface {
	String() string
	isType()
}

// Integer is a fixed-width integer type. Bits is one of 8, 16, 32, 64, 128
// or 256.
type Integer struct {
	Bits   int
	Signed bool
}

type Bool struct{}

type Address struct{}

// Mapping is a storage map. It only appears as a contract field type.
type Mapping struct {
	Key   Type
	Value Type
}

// Contract is the type of a value referring to a deployed contract.
type Contract struct {
	Name string
}

type Tuple struct {
	Elems []Type
}

type Unit struct{}

// Unknown marks an expression whose type could not be determined. It never
// survives into a tree handed to code generation.
type Unknown struct{}

func (Integer) isType()  {}
func (Bool) isType()     {}
func (Address) isType()  {}
func (Mapping) isType()  {}
func (Contract) isType() {}
func (Tuple) isType()    {}
func (Unit) isType()     {}
func (Unknown) isType()  {}

func (t Integer) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}
	return fmt.Sprintf("u%d", t.Bits)
}

func (Bool) String() string    { return "bool" }
func (Address) String() string { return "address" }
func (Unit) String() string    { return "()" }
func (Unknown) String() string { return "{unknown}" }

func (t Mapping) String() string {
	return fmt.Sprintf("Map<%s, %s>", t.Key, t.Value)
}

func (t Contract) String() string { return t.Name }

func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, el := range t.Elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Equal reports structural equality.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Integer:
		b, ok := b.(Integer)
		return ok && a == b
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Address:
		_, ok := b.(Address)
		return ok
	case Unit:
		_, ok := b.(Unit)
		return ok
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case Contract:
		b, ok := b.(Contract)
		return ok && a.Name == b.Name
	case Mapping:
		b, ok := b.(Mapping)
		return ok && Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case Tuple:
		b, ok := b.(Tuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsUnknown reports whether t is Unknown or contains Unknown.
func IsUnknown(t Type) bool {
	switch t := t.(type) {
	case nil, Unknown:
		return true
	case Mapping:
		return IsUnknown(t.Key) || IsUnknown(t.Value)
	case Tuple:
		for _, el := range t.Elems {
			if IsUnknown(el) {
				return true
			}
		}
	}
	return false
}

// IsPrimitive reports whether t may be used as a map key or event field:
// integers, bool and address.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case Integer, Bool, Address:
		return true
	}
	return false
}

// ContainsMapping reports whether a Mapping appears anywhere within t.
func ContainsMapping(t Type) bool {
	switch t := t.(type) {
	case Mapping:
		return true
	case Tuple:
		for _, el := range t.Elems {
			if ContainsMapping(el) {
				return true
			}
		}
	}
	return false
}
