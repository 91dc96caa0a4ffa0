package ast

// Arena owns every node slice for one compilation unit's AST. It is
// consumed read-only by Tyck and the SIR builder (spec.md §1, §6.1).
type Arena struct {
	stmts            []Stmt
	exprs            []Expr
	typeNodes        []TypeNode
	params           []Param
	args             []Arg
	fieldMembers     []FieldMember
	switchCases      []SwitchCase
	fieldInitEntries []FieldInitEntry
	pathSegs         []PathSeg
	fnConstraints    []FnConstraintDecl
	genericParams    []GenericParamDecl

	program StmtId
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{program: InvalidStmt} }

// Program returns the root program statement id.
func (a *Arena) Program() StmtId { return a.program }

func (a *Arena) Stmt(id StmtId) Stmt               { return a.stmts[id] }
func (a *Arena) Expr(id ExprId) Expr               { return a.exprs[id] }
func (a *Arena) TypeNode(id TypeNodeId) TypeNode   { return a.typeNodes[id] }
func (a *Arena) Param(id ParamId) Param            { return a.params[id] }
func (a *Arena) Arg(id ArgId) Arg                  { return a.args[id] }
func (a *Arena) FieldMember(id FieldMemberId) FieldMember {
	return a.fieldMembers[id]
}
func (a *Arena) SwitchCase(id SwitchCaseId) SwitchCase { return a.switchCases[id] }
func (a *Arena) FieldInitEntry(id FieldInitEntryId) FieldInitEntry {
	return a.fieldInitEntries[id]
}
func (a *Arena) PathSeg(id PathSegId) PathSeg { return a.pathSegs[id] }

// Params, FieldMembers, Args, StmtChildren, PathSegs, SwitchCases,
// FieldInitEntries, FnConstraintDecls, GenericParamDecls: the bulk
// accessors spec.md §6.1 names, each resolving a node's id-slice field
// to the underlying records.
func (a *Arena) Params(ids []ParamId) []Param {
	out := make([]Param, len(ids))
	for i, id := range ids {
		out[i] = a.params[id]
	}
	return out
}

func (a *Arena) FieldMembers(ids []FieldMemberId) []FieldMember {
	out := make([]FieldMember, len(ids))
	for i, id := range ids {
		out[i] = a.fieldMembers[id]
	}
	return out
}

func (a *Arena) Args(ids []ArgId) []Arg {
	out := make([]Arg, len(ids))
	for i, id := range ids {
		out[i] = a.args[id]
	}
	return out
}

func (a *Arena) StmtChildren(id StmtId) []Stmt {
	s := a.stmts[id]
	out := make([]Stmt, len(s.Children))
	for i, c := range s.Children {
		out[i] = a.stmts[c]
	}
	return out
}

func (a *Arena) PathSegs(ids []PathSegId) []PathSeg {
	out := make([]PathSeg, len(ids))
	for i, id := range ids {
		out[i] = a.pathSegs[id]
	}
	return out
}

func (a *Arena) SwitchCases(ids []SwitchCaseId) []SwitchCase {
	out := make([]SwitchCase, len(ids))
	for i, id := range ids {
		out[i] = a.switchCases[id]
	}
	return out
}

func (a *Arena) FieldInitEntries(ids []FieldInitEntryId) []FieldInitEntry {
	out := make([]FieldInitEntry, len(ids))
	for i, id := range ids {
		out[i] = a.fieldInitEntries[id]
	}
	return out
}

func (a *Arena) FnConstraintDecls(ids []FnConstraintDeclId) []FnConstraintDecl {
	out := make([]FnConstraintDecl, len(ids))
	for i, id := range ids {
		out[i] = a.fnConstraints[id]
	}
	return out
}

func (a *Arena) GenericParamDecls(ids []GenericParamDeclId) []GenericParamDecl {
	out := make([]GenericParamDecl, len(ids))
	for i, id := range ids {
		out[i] = a.genericParams[id]
	}
	return out
}

// NumExprs reports the number of interned expressions, used by callers
// that need to size a dense ExprId-indexed vector (spec.md §3.4).
func (a *Arena) NumExprs() int { return len(a.exprs) }
func (a *Arena) NumStmts() int { return len(a.stmts) }
