// Package sir implements the SIR builder: a pure lowering of a type-checked
// AST into an arena of place/effect-classified Values, Stmts, Blocks, and
// Funcs (spec.md §3.5, §4.4). Like internal/ast, every node family lives in
// its own dense arena addressed by an opaque, stable id.
package sir

// ValueId, StmtId, and friends are dense indices into their owning Module
// slice. Invalid is the per-type "no node" sentinel, following the same
// convention as internal/ast (spec.md §3.1).
type (
	ValueId      int32
	StmtId       int32
	BlockId      int32
	FuncId       int32
	FieldId      int32
	FieldMemberId int32
	ParamId      int32
	AttrId       int32
	ArgId        int32
	GlobalId     int32
	ActId        int32
	SwitchCaseId int32
)

const (
	InvalidValue      ValueId       = -1
	InvalidStmt       StmtId        = -1
	InvalidBlock      BlockId       = -1
	InvalidFunc       FuncId        = -1
	InvalidField      FieldId       = -1
	InvalidFieldMember FieldMemberId = -1
	InvalidParam      ParamId       = -1
	InvalidAttr       AttrId        = -1
	InvalidArg        ArgId         = -1
	InvalidGlobal     GlobalId      = -1
	InvalidAct        ActId         = -1
	InvalidSwitchCase SwitchCaseId  = -1
)
