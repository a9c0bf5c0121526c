package errors

// Error codes for the ferrum analyzer. Codes are carried in diagnostic data
// (JSON output, editor integration) but are not part of the rendered text.
//
// Error code ranges:
// E0001-E0099: Declaration errors
// E0100-E0199: Parser errors
// E0200-E0299: Type system errors
// E0300-E0399: Import/module errors
// E0400-E0499: Safety errors
// E0600-E0699: Flow control errors
// E0800-E0899: Warning codes
// E0900-E0999: Tooling errors

const (
	// E0001: Name resolution errors
	ErrorUndefinedName = "E0001"

	// E0002: Type name resolution errors
	ErrorUndefinedType = "E0002"

	// E0003: Duplicate declaration in one scope
	ErrorDuplicateDeclaration = "E0003"

	// E0004: `self` used where it is not allowed
	ErrorInvalidSelf = "E0004"

	// E0005: Events with too many indexed fields
	ErrorTooManyIndexed = "E0005"

	// E0006: Map used outside of a contract field, or malformed
	ErrorInvalidMapType = "E0006"

	// E0007: Constant or type alias defined in terms of itself
	ErrorRecursiveDefinition = "E0007"

	// E0100: Syntax errors forwarded from the parser
	ErrorSyntax = "E0100"

	// E0200: Type compatibility errors
	ErrorTypeMismatch = "E0200"

	// E0201: Binary operation type errors
	ErrorInvalidBinaryOperation = "E0201"

	// E0202: Unary operation type errors
	ErrorInvalidUnaryOperation = "E0202"

	// E0203: Cast target or operand errors
	ErrorInvalidCast = "E0203"

	// E0204: Literal does not fit its type
	ErrorLiteralOutOfRange = "E0204"

	// E0205: Function call arity errors
	ErrorWrongArgumentCount = "E0205"

	// E0206: Call argument label errors
	ErrorArgumentLabel = "E0206"

	// E0207: Callee is not a function
	ErrorNotCallable = "E0207"

	// E0208: Field or member access errors
	ErrorFieldNotFound = "E0208"

	// E0209: Index expression errors
	ErrorInvalidIndex = "E0209"

	// E0210: Assignment to an immutable binding
	ErrorAssignToImmutable = "E0210"

	// E0211: Assignment to something that is not a place
	ErrorInvalidAssignTarget = "E0211"

	// E0212: Calling a private function of another contract
	ErrorPrivateFunction = "E0212"

	// E0213: A unit value used where a value is required
	ErrorUnitValue = "E0213"

	// E0214: A function, type or module used as a value
	ErrorNotAValue = "E0214"

	// E0215: Constant initializer that does not fold
	ErrorNonConstantValue = "E0215"

	// E0300: Unknown module or module item in a use statement
	ErrorUnresolvedImport = "E0300"

	// E0400: Call to an unsafe function outside an unsafe context
	ErrorUnsafeCall = "E0400"

	// E0401: A contract function marked both pub and unsafe
	ErrorPubUnsafe = "E0401"

	// E0600: Missing return statement
	ErrorMissingReturn = "E0600"

	// E0601: break or continue outside a loop
	ErrorLoopControl = "E0601"

	// E0800: Unused local binding
	WarningUnusedVariable = "E0800"

	// E0801: unsafe block inside an unsafe context
	WarningUnnecessaryUnsafe = "E0801"

	// E0802: Constant operation that always reverts
	WarningConstantRevert = "E0802"

	// E0900: A unit that could not be analyzed at all
	ErrorUnitAborted = "E0900"
)

// descriptions summarize what each code means, for reports that list
// diagnostics without their source excerpts.
var descriptions = map[string]string{
	ErrorUndefinedName:          "a name is not declared in any enclosing scope",
	ErrorUndefinedType:          "a type annotation names an unknown type",
	ErrorDuplicateDeclaration:   "a name is declared twice in one scope",
	ErrorInvalidSelf:            "`self` outside a contract function that takes it",
	ErrorTooManyIndexed:         "an event has more than three `idx` fields",
	ErrorInvalidMapType:         "`Map` outside a contract field, or with bad type arguments",
	ErrorRecursiveDefinition:    "a constant or type alias refers to itself",
	ErrorSyntax:                 "the source does not parse",
	ErrorTypeMismatch:           "an expression has a different type than required",
	ErrorInvalidBinaryOperation: "the operand types of a binary operator differ or are unsupported",
	ErrorInvalidUnaryOperation:  "a unary operator does not apply to its operand type",
	ErrorInvalidCast:            "no explicit cast exists between the two types",
	ErrorLiteralOutOfRange:      "an integer literal does not fit its type",
	ErrorWrongArgumentCount:     "a call passes the wrong number of arguments",
	ErrorArgumentLabel:          "a call argument label does not name its parameter",
	ErrorNotCallable:            "the callee is not a function or a type",
	ErrorFieldNotFound:          "the accessed field or function does not exist",
	ErrorInvalidIndex:           "the target cannot be indexed with this key",
	ErrorAssignToImmutable:      "an assignment targets a binding not declared `mut`",
	ErrorInvalidAssignTarget:    "an assignment targets something that is not a place",
	ErrorPrivateFunction:        "a private function of another contract is called",
	ErrorUnitValue:              "an expression without a value is used as one",
	ErrorNotAValue:              "a function, type or module is used as a value",
	ErrorNonConstantValue:       "a constant initializer cannot be evaluated at compile time",
	ErrorUnresolvedImport:       "a `use` names an unknown module or item",
	ErrorUnsafeCall:             "an unsafe function is called from a safe context",
	ErrorPubUnsafe:              "a contract function is marked both `pub` and `unsafe`",
	ErrorMissingReturn:          "a function with a return type can finish without returning",
	ErrorLoopControl:            "`break` or `continue` outside a `while` loop",
	WarningUnusedVariable:       "a local binding is never read",
	WarningUnnecessaryUnsafe:    "an `unsafe` block inside an already unsafe context",
	WarningConstantRevert:       "a constant operation overflows or divides by zero",
	ErrorUnitAborted:            "the unit could not be analyzed at all",
}

// Describe returns the summary of code, or "" for an unknown code.
func Describe(code string) string {
	return descriptions[code]
}
