package ast

import "math/big"

// StmtKind discriminates the statement node variants (spec.md §3.8).
type StmtKind uint8

const (
	StmtProgram StmtKind = iota
	StmtFnDecl
	StmtFieldDecl   // struct/field declaration
	StmtActsDecl    // "acts for T { ... }"
	StmtClassDecl   // proto/class declaration
	StmtGlobalDecl  // top-level global variable
	StmtNest        // namespace directive
	StmtUseActs     // "use T with acts(Name)"
	StmtVarDecl     // let / set
	StmtIf
	StmtWhile
	StmtDoScope
	StmtDoWhile
	StmtManual
	StmtReturn
	StmtBreak
	StmtContinue
	StmtBlock
	StmtSwitch
	StmtExpr // expression-statement wrapper
)

// ExprKind discriminates the expression node variants (spec.md §3.8).
type ExprKind uint8

const (
	ExprIntLit ExprKind = iota
	ExprFloatLit
	ExprStringLit
	ExprBoolLit
	ExprNullLit
	ExprIdent
	ExprPath
	ExprUnary
	ExprBinary
	ExprAssign
	ExprPostfixInc
	ExprBorrow
	ExprEscape
	ExprIf
	ExprBlock
	ExprLoop
	ExprCall
	ExprArrayLit
	ExprFieldInit
	ExprIndex
	ExprField
	ExprCast
	ExprError
)

// CallForm discriminates call-argument shape (spec.md §4.3.4).
type CallForm uint8

const (
	CallPositional CallForm = iota
	CallLabeled
	CallPositionalNamedGroup
	CallMixedInvalid
)

// CastKind discriminates the three cast forms (spec.md §4.3.6).
type CastKind uint8

const (
	CastStrict  CastKind = iota // `as`
	CastOptTry                  // `as?`
	CastTrap                    // `as!`
)

// Stmt is one arena-resident statement node. Not every field applies to
// every Kind; callers dispatch on Kind first, exactly as the SIR builder
// and Tyck do throughout this codebase.
type Stmt struct {
	Kind StmtId
	K    StmtKind
	Span Span

	Name   string // fn/field/acts/class/global/var name
	IsMut  bool   // var-decl / self-receiver mutability
	IsC    bool   // c-abi attribute present
	Static bool   // global is `static`

	// FnDecl
	Params          []ParamId
	PositionalCount int
	Labels          []string
	HasDefault      []bool
	RetType         TypeNodeId
	Body            StmtId // StmtBlock

	// FieldDecl: members
	Members []FieldMemberId
	Layout  string // "" | "C"

	// VarDecl
	DeclType TypeNodeId // may be Invalid (inferred)
	Init     ExprId     // may be Invalid

	// If / While / DoWhile
	Cond      ExprId
	Then      StmtId
	Else      StmtId
	Body2     StmtId // while/do-while body

	// DoScope / Block: contiguous child statements
	Children []StmtId

	// Return
	Value ExprId

	// Switch
	Cases []SwitchCaseId
	Scrutinee ExprId

	// ExprStmt
	Expr ExprId

	// Nest / UseActs
	PathSegs  []PathSegId
	ActsNames []string

	// Generic/constraint decls (threaded through, not deeply modeled)
	GenericParams []GenericParamDeclId
	Constraints   []FnConstraintDeclId
}

// Expr is one arena-resident expression node. Every AST expression
// produces exactly one SIR value (spec.md §4.4.2); this node is the
// source of that lowering.
type Expr struct {
	Id   ExprId
	K    ExprKind
	Span Span

	// Literals
	IntVal    *big.Int
	FloatVal  float64
	StringVal string
	BoolVal   bool

	// Ident / Path / Field
	Name     string
	PathSegs []PathSegId

	// Unary / Binary / Assign / PostfixInc / Borrow / Escape
	Op       string
	IsMut    bool // &mut vs &
	A, B, C  ExprId

	// If
	CondExpr ExprId
	ThenExpr ExprId
	ElseExpr ExprId

	// Block
	BlockStmt StmtId // StmtBlock; tail value, if any, is BlockStmt's last child's Expr
	InValueContext bool

	// Loop: body is a StmtBlock
	LoopBody StmtId

	// Call
	Callee   ExprId
	CallForm CallForm
	Args     []ArgId

	// ArrayLit
	Elems []ExprId

	// FieldInit (struct literal)
	TypeName string
	Entries  []FieldInitEntryId

	// Index
	Base     ExprId
	IndexArg ExprId
	IsRange  bool

	// Cast
	Target   TypeNodeId
	CastKind CastKind
}

// Param is a function parameter node.
type Param struct {
	Id         ParamId
	Name       string
	Type       TypeNodeId
	IsSelf     bool
	IsLabeled  bool
	Label      string
	HasDefault bool
	Default    ExprId
}

// Arg is one call-argument node. Named-group children inline into the
// flat arg stream, with ChildBegin/ChildCount back-patched onto the
// parent group arg once its children are appended (spec.md §3.5).
type Arg struct {
	Id         ArgId
	Label      string // "" if positional
	Value      ExprId
	IsGroup    bool
	ChildBegin ArgId
	ChildCount int
}

// FieldMember is one struct field member declaration.
type FieldMember struct {
	Id   FieldMemberId
	Name string
	Type TypeNodeId
}

// SwitchCase is one arm of a switch statement.
type SwitchCase struct {
	Id     SwitchCaseId
	Values []ExprId // empty = default arm
	Body   StmtId
}

// FieldInitEntry is one `name: value` entry in a struct literal.
type FieldInitEntry struct {
	Id    FieldInitEntryId
	Name  string
	Value ExprId
}

// PathSeg is one `::`-separated segment of a qualified path.
type PathSeg struct {
	Id   PathSegId
	Name string
}

// TypeNode is the surface-syntax spelling of a type, pre-resolution.
type TypeNode struct {
	Id      TypeNodeId
	Name    string   // builtin or named identifier
	Path    []string // qualified path, if any
	IsOptional bool
	IsBorrow   bool
	IsMut      bool
	IsEscape   bool
	IsPtr      bool
	IsArray    bool
	HasSize    bool
	Size       int64
	Elem       TypeNodeId
}

// FnConstraintDecl and GenericParamDecl are threaded through for
// signature completeness but not deeply modeled; the spec's generic/
// proto surface is consumed structurally, not type-checked in v0.
type FnConstraintDecl struct {
	Id   FnConstraintDeclId
	Name string
}

type GenericParamDecl struct {
	Id   GenericParamDeclId
	Name string
}
