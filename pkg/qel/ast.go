package qel

// ----------------------------------------------------------------------------
// AST node variants. Each variant is a struct implementing the Node marker
// interface, one struct per grammar production.

// Node is implemented by every AST node. It carries no methods of its own —
// dispatch happens by type switch in the lowerer.
type Node interface {
	node()
}

// Program is the root of a translation unit: an ordered sequence of top-level
// declarations (FunctionDef, Struct, VariableDecl, GateCall...).
type Program struct {
	Statements []Node
}

// Block is the ordered body of a function or loop.
type Block struct {
	Statements []Node
}

// FunctionDef declares a function. Body == nil means an extern declaration.
type FunctionDef struct {
	Name       string
	ReturnType Node // a Type node
	Params     []*VariableDecl
	Body       *Block
}

// DeclKind distinguishes let/const/parameter declarations.
type DeclKind int

const (
	DeclLet DeclKind = iota
	DeclConst
	DeclParam
)

// VariableDecl declares a name, optionally with a value and/or explicit type.
// At least one of Value/Type must be present unless Kind == DeclParam.
type VariableDecl struct {
	Name  string
	Value Node // optional
	Type  Node // optional; nil means deduce from Value
	Kind  DeclKind
}

// Assignment rebinds an existing l-value (VariableCall, ArrayAccess, or StructAccess).
type Assignment struct {
	LValue Node
	RValue Node
}

// Return yields a value from the enclosing function body.
type Return struct {
	Value Node
}

// For iterates Alias over Container's elements, unrolled entirely at compile time.
// Body == nil is a legal (empty) loop.
type For struct {
	Alias     string
	Container Node // Range, or a VariableCall naming an array
	Body      *Block
}

// Range is a compile-time bound pair, both ends integer literals.
type Range struct {
	Start Node // Num
	End   Node // Num
}

// FunctionCall invokes a previously declared function by name.
type FunctionCall struct {
	Callee string
	Args   []Node
}

// GateCall applies a named gate (from the fixed mnemonic set) to its operands.
type GateCall struct {
	Name string
	Args []Node
}

// Struct declares a named aggregate of member fields.
type Struct struct {
	Name    string
	Members []*VariableDecl
}

// VariableCall reads a previously bound identifier.
type VariableCall struct {
	Name string
}

// ArrayAccess reads a single element of an array-typed variable.
type ArrayAccess struct {
	Base  Node // VariableCall
	Index Node // Num, ExternArg, or IntCall
}

// StructAccess reads a named member of a struct-typed variable.
type StructAccess struct {
	Base   Node
	Member string
}

// Reference takes the address of its operand (unary `&`).
type Reference struct {
	Value Node
}

// Dereference indirects through its operand (unary `*`).
type Dereference struct {
	Value Node
}

// ArrayType describes a fixed-size family of Elem, sized by a compile-time constant.
type ArrayType struct {
	Elem Node
	Size Node // Num, compile-time computable
}

// PointerType describes a pointer-to-Pointee type.
type PointerType struct {
	Pointee Node
}

// TypeSpecifier distinguishes the built-in type leaves from a user-named (Custom) type.
type TypeSpecifier int

const (
	SpecQbit TypeSpecifier = iota
	SpecQdit
	SpecVoid
	SpecCustom
)

// Type names a scalar type: one of the built-in leaves, or a Custom (struct) name.
type Type struct {
	Name      string // populated only when Specifier == SpecCustom
	Specifier TypeSpecifier
}

// Num is a signed integer literal.
type Num struct {
	Value int64
}

// ArrayIndex is an already-resolved, non-negative literal index.
type ArrayIndex struct {
	Value uint64
}

// ExternArg is a `$<index>` placeholder, lowered to a `??<n>` operand for the
// backend to substitute at invocation time.
type ExternArg struct {
	Index Node // Num or IntCall
}

// IntCall references a for-loop iterator by name; resolves to a compile-time integer.
type IntCall struct {
	Name string
}

// BreakStmt parses, but every unrolled loop eliminates it structurally, so
// the lowerer rejects it outright rather than guess at unsupported early-exit
// semantics.
type BreakStmt struct{}

func (*Program) node()      {}
func (*Block) node()        {}
func (*FunctionDef) node()  {}
func (*VariableDecl) node() {}
func (*Assignment) node()   {}
func (*Return) node()       {}
func (*For) node()          {}
func (*Range) node()        {}
func (*FunctionCall) node() {}
func (*GateCall) node()     {}
func (*Struct) node()       {}
func (*VariableCall) node() {}
func (*ArrayAccess) node()  {}
func (*StructAccess) node() {}
func (*Reference) node()    {}
func (*Dereference) node()  {}
func (*ArrayType) node()    {}
func (*PointerType) node()  {}
func (*Type) node()         {}
func (*Num) node()          {}
func (*ArrayIndex) node()   {}
func (*ExternArg) node()    {}
func (*IntCall) node()      {}
func (*BreakStmt) node()    {}
