package types

var (
	U8   = Integer{Bits: 8}
	U16  = Integer{Bits: 16}
	U32  = Integer{Bits: 32}
	U64  = Integer{Bits: 64}
	U128 = Integer{Bits: 128}
	U256 = Integer{Bits: 256}

	I8   = Integer{Bits: 8, Signed: true}
	I16  = Integer{Bits: 16, Signed: true}
	I32  = Integer{Bits: 32, Signed: true}
	I64  = Integer{Bits: 64, Signed: true}
	I128 = Integer{Bits: 128, Signed: true}
	I256 = Integer{Bits: 256, Signed: true}
)

// Widths lists the supported integer widths, narrowest first.
var Widths = []int{8, 16, 32, 64, 128, 256}

// AllIntegers lists every integer type, unsigned first.
var AllIntegers = []Integer{U8, U16, U32, U64, U128, U256, I8, I16, I32, I64, I128, I256}

// MapTypeName is the generic storage map type constructor.
const MapTypeName = "Map"

var primitives = map[string]Type{
	"bool":    Bool{},
	"address": Address{},
}

func init() {
	for _, t := range AllIntegers {
		primitives[t.String()] = t
	}
}

// Primitive returns the builtin type with the given name.
func Primitive(name string) (Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

// PrimitiveNames returns the names of all builtin types, including Map.
func PrimitiveNames() []string {
	names := make([]string, 0, len(primitives)+1)
	for _, t := range AllIntegers {
		names = append(names, t.String())
	}
	return append(names, "bool", "address", MapTypeName)
}
