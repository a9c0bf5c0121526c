package stdlib

import (
	"sort"

	"ferrum/internal/types"
)

// ModuleDefinition defines a standard library module
type ModuleDefinition struct {
	Name      string                         // Module name (e.g., "evm")
	Path      string                         // Full module path (e.g., "std::evm")
	Functions map[string]*FunctionDefinition // Available functions in this module
}

// FunctionDefinition defines a function signature from a standard library module
type FunctionDefinition struct {
	Name       string
	Parameters []ParameterDefinition
	ReturnType types.Type // types.Unit{} for functions without a result
	Unsafe     bool       // Callable only from an unsafe context
}

// ParameterDefinition defines a function parameter
type ParameterDefinition struct {
	Name string
	Type types.Type
}

// NewFunction creates a safe function definition.
func NewFunction(name string, returnType types.Type, params ...ParameterDefinition) *FunctionDefinition {
	if returnType == nil {
		returnType = types.Unit{}
	}
	return &FunctionDefinition{Name: name, Parameters: params, ReturnType: returnType}
}

// NewUnsafeFunction creates a function definition that requires an unsafe context.
func NewUnsafeFunction(name string, returnType types.Type, params ...ParameterDefinition) *FunctionDefinition {
	fn := NewFunction(name, returnType, params...)
	fn.Unsafe = true
	return fn
}

func NewParam(name string, t types.Type) ParameterDefinition {
	return ParameterDefinition{Name: name, Type: t}
}

var standardModules = map[string]*ModuleDefinition{
	"std::evm": {
		Name: "evm",
		Path: "std::evm",
		Functions: map[string]*FunctionDefinition{
			"caller":       NewFunction("caller", types.Address{}),
			"balance":      NewFunction("balance", types.U256),
			"block_number": NewFunction("block_number", types.U256),
			"chain_id":     NewFunction("chain_id", types.U256),

			// Raw storage and memory access bypasses the type system.
			"sload":  NewUnsafeFunction("sload", types.U256, NewParam("slot", types.U256)),
			"sstore": NewUnsafeFunction("sstore", nil, NewParam("slot", types.U256), NewParam("value", types.U256)),
			"mload":  NewUnsafeFunction("mload", types.U256, NewParam("offset", types.U256)),
			"mstore": NewUnsafeFunction("mstore", nil, NewParam("offset", types.U256), NewParam("value", types.U256)),
		},
	},
	"std::math": {
		Name: "math",
		Path: "std::math",
		Functions: map[string]*FunctionDefinition{
			"min": NewFunction("min", types.U256, NewParam("a", types.U256), NewParam("b", types.U256)),
			"max": NewFunction("max", types.U256, NewParam("a", types.U256), NewParam("b", types.U256)),
		},
	},
}

// GetStandardModules returns all built-in standard library modules
func GetStandardModules() map[string]*ModuleDefinition {
	return standardModules
}

// IsKnownModule checks if a module path is a known standard library module
func IsKnownModule(modulePath string) bool {
	_, exists := standardModules[modulePath]
	return exists
}

// GetModuleDefinition returns the definition for a standard library module
func GetModuleDefinition(modulePath string) *ModuleDefinition {
	return standardModules[modulePath]
}

// ModulePaths returns the paths of all standard modules in sorted order.
func ModulePaths() []string {
	paths := make([]string, 0, len(standardModules))
	for p := range standardModules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FunctionNames returns the function names of a module in sorted order.
func (m *ModuleDefinition) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for n := range m.Functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
