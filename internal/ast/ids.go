// Package ast defines the frozen, read-only AST schema the core consumes
// (spec.md §6.1). The real lexer/parser/name resolver are external
// collaborators out of this repository's scope; this package only pins
// down the stable shape they hand to Tyck and the SIR builder, using the
// same dense-arena-id convention as every other arena in this codebase
// (spec.md §3.1).
package ast

// StmtId, ExprId, and friends are dense, stable, opaque indices into their
// owning Arena slice. Invalid is the per-type "no node" sentinel.
type (
	StmtId             int32
	ExprId             int32
	TypeNodeId         int32
	ParamId            int32
	ArgId              int32
	FieldMemberId      int32
	SwitchCaseId       int32
	FieldInitEntryId   int32
	PathSegId          int32
	FnConstraintDeclId int32
	GenericParamDeclId int32
)

const (
	InvalidStmt             StmtId             = -1
	InvalidExpr             ExprId             = -1
	InvalidTypeNode         TypeNodeId         = -1
	InvalidParam            ParamId            = -1
	InvalidArg              ArgId              = -1
	InvalidFieldMember      FieldMemberId      = -1
	InvalidSwitchCase       SwitchCaseId       = -1
	InvalidFieldInitEntry   FieldInitEntryId   = -1
	InvalidPathSeg          PathSegId          = -1
	InvalidFnConstraintDecl FnConstraintDeclId = -1
	InvalidGenericParamDecl GenericParamDeclId = -1
)

// Span is a source location, opaque to this package; only the external
// SourceManager (spec.md §6.1) knows how to render one.
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}
