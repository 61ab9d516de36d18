package qel

import (
	"go.qel.dev/qelc/pkg/qasm"
	"go.qel.dev/qelc/pkg/utils"
)

// ----------------------------------------------------------------------------
// Environment: the compile-time book-keeping threaded through lowering.
// Everything is keyed by name rather than by scope depth, and registered
// once per declaration, resolved by simple lookup thereafter.

// VarInfo records a declared variable's constness, qubit count, and type.
type VarInfo struct {
	IsConst bool
	Size    int
	Type    Node
}

// VarRegion is a variable's memory region: (start, end). End is informational;
// the lowerer reads a variable's qubit count from VarInfo.Size, not from here.
type VarRegion struct {
	Start int
	End   int
}

// Size returns the qubit count occupied by the region.
func (r VarRegion) Size() int { return r.End - r.Start }

// FunctionInfo records a function's declared parameter types and return type.
type FunctionInfo struct {
	ParamTypes []Node
	ReturnType Node
}

// Environment is the single mutable value the lowerer threads through AST
// traversal. Mutation is used for code-size reasons, not correctness — a
// purely functional formulation would be observationally equivalent.
type Environment struct {
	Program []qasm.Operation

	Functions    utils.OrderedMap[string, *Block] // nil Block = extern declaration
	FunctionInfo utils.OrderedMap[string, FunctionInfo]
	FunctionArgs utils.OrderedMap[string, []string]

	Vars    utils.OrderedMap[string, VarRegion]
	VarInfo utils.OrderedMap[string, VarInfo]

	// Iterators and Aliases are plain maps, not OrderedMaps: both are transient,
	// per-unroll-iteration bindings that are never iterated in bulk, only
	// looked up by name.
	Iterators map[string]int
	Aliases   map[string]string

	// NextQubit is the monotonically increasing free-qubit counter; it is
	// never decremented, only advanced.
	NextQubit int

	// LastReturnSize is the qubit count the most recently lowered Return left
	// sitting in the TMP_i family. A VariableDecl initialized from a function
	// call reads it immediately after inlining the callee's body, since the
	// callee's declared return type may not itself carry an explicit size
	// (see lowering.go's allocateFromInline).
	LastReturnSize int
}

// NewEnvironment returns an empty Environment ready for a fresh compilation.
func NewEnvironment() *Environment {
	return &Environment{
		Iterators: map[string]int{},
		Aliases:   map[string]string{},
	}
}

// ResolveAlias applies at most one level of alias substitution; alias chains
// are never followed transitively.
func (e *Environment) ResolveAlias(name string) string {
	if resolved, ok := e.Aliases[name]; ok {
		return resolved
	}
	return name
}

// Emit appends an operation to the accumulating output program.
func (e *Environment) Emit(op qasm.Operation) {
	e.Program = append(e.Program, op)
}
