package ast

import "math/big"

// Builder appends nodes to an Arena. It stands in for "the real parser"
// in tests and in cmd/gaupelc's fixture — it performs no lexing or
// grammar-driven parsing, it just lets Go code construct arena nodes
// directly, the way a resolved-AST producer would hand them to Tyck.
type Builder struct {
	a *Arena
}

// NewBuilder wraps a fresh Arena.
func NewBuilder() *Builder {
	return &Builder{a: NewArena()}
}

// Arena returns the arena under construction.
func (b *Builder) Arena() *Arena { return b.a }

func (b *Builder) AddStmt(s Stmt) StmtId {
	id := StmtId(len(b.a.stmts))
	s.Kind = id
	b.a.stmts = append(b.a.stmts, s)
	return id
}

func (b *Builder) AddExpr(e Expr) ExprId {
	id := ExprId(len(b.a.exprs))
	e.Id = id
	b.a.exprs = append(b.a.exprs, e)
	return id
}

func (b *Builder) AddTypeNode(t TypeNode) TypeNodeId {
	id := TypeNodeId(len(b.a.typeNodes))
	t.Id = id
	b.a.typeNodes = append(b.a.typeNodes, t)
	return id
}

func (b *Builder) AddParam(p Param) ParamId {
	id := ParamId(len(b.a.params))
	p.Id = id
	b.a.params = append(b.a.params, p)
	return id
}

func (b *Builder) AddArg(a Arg) ArgId {
	id := ArgId(len(b.a.args))
	a.Id = id
	b.a.args = append(b.a.args, a)
	return id
}

func (b *Builder) AddFieldMember(f FieldMember) FieldMemberId {
	id := FieldMemberId(len(b.a.fieldMembers))
	f.Id = id
	b.a.fieldMembers = append(b.a.fieldMembers, f)
	return id
}

func (b *Builder) AddSwitchCase(c SwitchCase) SwitchCaseId {
	id := SwitchCaseId(len(b.a.switchCases))
	c.Id = id
	b.a.switchCases = append(b.a.switchCases, c)
	return id
}

func (b *Builder) AddFieldInitEntry(e FieldInitEntry) FieldInitEntryId {
	id := FieldInitEntryId(len(b.a.fieldInitEntries))
	e.Id = id
	b.a.fieldInitEntries = append(b.a.fieldInitEntries, e)
	return id
}

func (b *Builder) AddPathSeg(name string) PathSegId {
	id := PathSegId(len(b.a.pathSegs))
	b.a.pathSegs = append(b.a.pathSegs, PathSeg{Id: id, Name: name})
	return id
}

// SetProgram marks id as the arena's root program statement.
func (b *Builder) SetProgram(id StmtId) { b.a.program = id }

// IntLit is a convenience constructor for an unsuffixed integer literal
// (type infer-integer, resolved later by Tyck — spec.md §4.3.3).
func (b *Builder) IntLit(v int64, span Span) ExprId {
	return b.AddExpr(Expr{K: ExprIntLit, Span: span, IntVal: big.NewInt(v)})
}

// Ident is a convenience constructor for a bare identifier reference.
func (b *Builder) Ident(name string, span Span) ExprId {
	return b.AddExpr(Expr{K: ExprIdent, Name: name, Span: span})
}
