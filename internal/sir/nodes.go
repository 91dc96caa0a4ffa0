package sir

import (
	"gaupel/internal/ast"
	"gaupel/internal/types"
)

// StmtKind discriminates the SIR statement variants (spec.md §3.5). commit
// and recast have no AST counterpart, and the builder in this package
// emits neither (see DESIGN.md).
type StmtKind uint8

const (
	StmtExprS StmtKind = iota
	StmtVarDecl
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
	StmtCommit
	StmtRecast
)

// Stmt is one arena-resident SIR statement node.
type Stmt struct {
	Id   StmtId
	K    StmtKind
	Span ast.Span

	Name  string
	IsMut bool

	DeclType types.Id
	Init     ValueId

	Cond  ValueId
	Then  BlockId
	Else  BlockId
	Body2 BlockId

	Body BlockId // do-scope / manual

	Value ValueId // return / break / expr-stmt / commit / recast target

	Scrutinee ValueId
	Cases     []SwitchCaseId
}

// Block is a contiguous slice into the module's stmt arena (spec.md §3.5).
type Block struct {
	Id    BlockId
	Begin StmtId
	Count int
}

// SwitchCase is one arm of a lowered switch statement.
type SwitchCase struct {
	Id     SwitchCaseId
	Values []ValueId
	Body   BlockId
}

// Param is one lowered function parameter.
type Param struct {
	Id         ParamId
	Name       string
	Type       types.Id
	IsSelf     bool
	Label      string
	HasDefault bool
	Default    ValueId
}

// Attr is a generic declaration attribute (e.g. a C-ABI or layout marker
// threaded through for completeness; not deeply modeled, spec.md §3.5).
type Attr struct {
	Id   AttrId
	Name string
	Args []string
}

// Arg is one lowered call argument. Named-group children inline into the
// flat arg stream, with ChildBegin/ChildCount back-patched onto the parent
// group arg once its children are appended (spec.md §3.5, §4.4.2).
type Arg struct {
	Id         ArgId
	Label      string
	Value      ValueId
	IsGroup    bool
	ChildBegin ArgId
	ChildCount int
}

// Func owns a parameter/attribute list and an entry block (spec.md §3.5).
type Func struct {
	Id            FuncId
	Name          string
	QualifiedName string
	DeclStmt      ast.StmtId
	Params        []ParamId
	Attrs         []AttrId
	RetType       types.Id
	EntryBlock    BlockId
	IsPure        bool
	HasAnyWrite   bool
}

// FieldMember is one lowered struct field member.
type FieldMember struct {
	Id   FieldMemberId
	Name string
	Type types.Id
}

// Field is a lowered struct/field declaration.
type Field struct {
	Id        FieldId
	Name      string
	OwnerType types.Id
	Members   []FieldMemberId
	Layout    string // "" | "C"
}

// Global is a lowered top-level global variable.
type Global struct {
	Id     GlobalId
	Name   string
	Type   types.Id
	IsMut  bool
	IsC    bool
	Static bool
	Init   ValueId
}

// Act is a lowered `acts for T { ... }` block: an owner type plus its
// member functions (operators and methods alike).
type Act struct {
	Id      ActId
	Name    string
	Owner   types.Id
	Methods []FuncId
}
