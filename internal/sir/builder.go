package sir

import (
	"fmt"

	"gaupel/internal/ast"
	"gaupel/internal/symbols"
	"gaupel/internal/tyck"
	"gaupel/internal/types"
)

// Options configures one BuildSirModule call. All fields are owned by the
// caller for the duration of the compilation unit (spec.md §3.7).
type Options struct {
	Symbols     *symbols.Table
	Pool        *types.Pool
	NameResolve *ast.NameResolveResult
	Tyck        *tyck.TyckResult
}

// builder holds the per-call state for one BuildSirModule invocation. It
// never retains state across calls — every field is fresh per call, making
// BuildSirModule a pure function of its inputs (spec.md §4.4.1).
type builder struct {
	arena *ast.Arena
	nr    *ast.NameResolveResult
	tyck  *tyck.TyckResult
	pool  *types.Pool
	syms  *symbols.Table
	mod   *Module

	namespaceStack []string
}

// BuildSirModule lowers a type-checked AST into a SIR Module (spec.md
// §4.4.1). Pure over its inputs: the same (ast, tyck) pair always produces
// the same module.
func BuildSirModule(arena *ast.Arena, programRoot ast.StmtId, opts Options) *Module {
	b := &builder{arena: arena, nr: opts.NameResolve, tyck: opts.Tyck, pool: opts.Pool, syms: opts.Symbols, mod: newModule()}
	b.lowerTopLevel(programRoot, nil)
	return b.mod
}

func qualify(ns []string, name string) string {
	if len(ns) == 0 {
		return name
	}
	out := ""
	for _, s := range ns {
		out += s + "::"
	}
	return out + name
}

func (b *builder) lowerTopLevel(stmtId ast.StmtId, ns []string) {
	if stmtId == ast.InvalidStmt {
		return
	}
	s := b.arena.Stmt(stmtId)
	switch s.K {
	case ast.StmtProgram, ast.StmtBlock, ast.StmtDoScope:
		for _, child := range s.Children {
			b.lowerTopLevel(child, ns)
		}
	case ast.StmtNest:
		nested := append(append([]string(nil), ns...), s.Name)
		for _, child := range s.Children {
			b.lowerTopLevel(child, nested)
		}
	case ast.StmtFnDecl:
		b.lowerTopFn(stmtId, s, ns)
	case ast.StmtFieldDecl:
		b.lowerField(stmtId, s, ns)
	case ast.StmtActsDecl:
		b.lowerActs(stmtId, s, ns)
	case ast.StmtClassDecl:
		b.lowerClass(stmtId, s, ns)
	case ast.StmtGlobalDecl:
		b.lowerGlobal(stmtId, s, ns)
	}
}

func (b *builder) qualifiedFnName(stmtId ast.StmtId, s ast.Stmt, ns []string) string {
	if q, ok := b.tyck.FnQualifiedNames[stmtId]; ok {
		return q
	}
	return qualify(ns, s.Name)
}

func (b *builder) lowerParams(paramIds []ast.ParamId) []ParamId {
	out := make([]ParamId, len(paramIds))
	for i, pid := range paramIds {
		p := b.arena.Param(pid)
		def := InvalidValue
		if p.HasDefault && p.Default != ast.InvalidExpr {
			def = b.lowerExpr(p.Default)
		}
		out[i] = b.mod.addParam(Param{
			Name: p.Name, Type: b.resolveTypeNode(p.Type), IsSelf: p.IsSelf,
			Label: p.Label, HasDefault: p.HasDefault, Default: def,
		})
	}
	return out
}

func (b *builder) lowerTopFn(stmtId ast.StmtId, s ast.Stmt, ns []string) FuncId {
	qualified := b.qualifiedFnName(stmtId, s, ns)
	retType := b.resolveTypeNode(s.RetType)
	params := b.lowerParams(s.Params)

	entry := InvalidBlock
	hasWrite := false
	if s.Body != ast.InvalidStmt {
		entry = b.lowerBlock(s.Body)
		hasWrite = b.blockHasAnyWrite(entry)
	}

	return b.mod.addFunc(Func{
		Name: s.Name, QualifiedName: qualified, DeclStmt: stmtId,
		Params: params, RetType: retType, EntryBlock: entry, HasAnyWrite: hasWrite,
	})
}

func (b *builder) lowerField(stmtId ast.StmtId, s ast.Stmt, ns []string) FieldId {
	owner := b.pool.InternPath(append(append([]string(nil), ns...), s.Name))
	members := make([]FieldMemberId, len(s.Members))
	for i, mid := range s.Members {
		m := b.arena.FieldMember(mid)
		members[i] = b.mod.addFieldMember(FieldMember{Name: m.Name, Type: b.resolveTypeNode(m.Type)})
	}
	return b.mod.addField(Field{Name: s.Name, OwnerType: owner, Members: members, Layout: s.Layout})
}

func (b *builder) lowerClass(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	owner := b.pool.InternPath(append(append([]string(nil), ns...), s.Name))
	var methods []FuncId
	for _, child := range s.Children {
		cs := b.arena.Stmt(child)
		if cs.K == ast.StmtFnDecl {
			methods = append(methods, b.lowerTopFn(child, cs, append(ns, s.Name)))
		}
	}
	b.mod.addAct(Act{Name: s.Name, Owner: owner, Methods: methods})
}

func (b *builder) lowerActs(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	ownerSegs := make([]string, len(s.PathSegs))
	for i, segId := range s.PathSegs {
		ownerSegs[i] = b.arena.PathSeg(segId).Name
	}
	owner := b.pool.InternPath(ownerSegs)

	var methods []FuncId
	for _, child := range s.Children {
		fn := b.arena.Stmt(child)
		if fn.K == ast.StmtFnDecl {
			methods = append(methods, b.lowerTopFn(child, fn, append(ns, s.Name)))
		}
	}
	b.mod.addAct(Act{Name: s.Name, Owner: owner, Methods: methods})
}

func (b *builder) lowerGlobal(stmtId ast.StmtId, s ast.Stmt, ns []string) GlobalId {
	qualified := qualify(ns, s.Name)
	init := InvalidValue
	if s.Init != ast.InvalidExpr {
		init = b.lowerExpr(s.Init)
	}
	return b.mod.addGlobal(Global{
		Name: qualified, Type: b.resolveTypeNode(s.DeclType), IsMut: s.IsMut,
		IsC: s.IsC, Static: s.Static, Init: init,
	})
}

// lowerBlock lowers an ast.StmtBlock/StmtDoScope into a SIR Block: every
// direct child is fully resolved (including any nested blocks, appended to
// the module as their own contiguous ranges during that resolution) before
// this level's own children are appended in one batch — the only way to
// guarantee the resulting range is contiguous (spec.md §3.5, see
// Module.appendStmtBatch).
func (b *builder) lowerBlock(astBlockId ast.StmtId) BlockId {
	s := b.arena.Stmt(astBlockId)
	built := make([]Stmt, 0, len(s.Children))
	for _, childId := range s.Children {
		built = append(built, b.lowerStmt(childId))
	}
	begin, count := b.mod.appendStmtBatch(built)
	return b.mod.addBlock(Block{Begin: begin, Count: count})
}

func (b *builder) lowerStmt(id ast.StmtId) Stmt {
	s := b.arena.Stmt(id)
	out := Stmt{Span: s.Span, Name: s.Name, IsMut: s.IsMut}

	switch s.K {
	case ast.StmtExpr:
		out.K = StmtExprS
		out.Value = b.lowerExpr(s.Expr)

	case ast.StmtVarDecl:
		out.K = StmtVarDecl
		if s.DeclType != ast.InvalidTypeNode {
			out.DeclType = b.resolveTypeNode(s.DeclType)
		} else {
			out.DeclType = types.Invalid
		}
		out.Init = InvalidValue
		if s.Init != ast.InvalidExpr {
			out.Init = b.lowerExpr(s.Init)
		}

	case ast.StmtIf:
		out.K = StmtIf
		out.Cond = b.lowerExpr(s.Cond)
		out.Then = b.lowerBlock(s.Then)
		out.Else = InvalidBlock
		if s.Else != ast.InvalidStmt {
			out.Else = b.lowerBlock(s.Else)
		}

	case ast.StmtWhile:
		out.K = StmtWhile
		out.Cond = b.lowerExpr(s.Cond)
		out.Body2 = b.lowerBlock(s.Body2)

	case ast.StmtDoWhile:
		out.K = StmtDoWhile
		out.Body2 = b.lowerBlock(s.Body2)
		out.Cond = b.lowerExpr(s.Cond)

	case ast.StmtDoScope:
		out.K = StmtDoScope
		out.Body = b.lowerBlock(id)

	case ast.StmtBlock:
		out.K = StmtBlock
		out.Body = b.lowerBlock(id)

	case ast.StmtManual:
		out.K = StmtManual
		out.Body = b.lowerBlock(s.Body2)

	case ast.StmtReturn:
		out.K = StmtReturn
		out.Value = InvalidValue
		if s.Value != ast.InvalidExpr {
			out.Value = b.lowerExpr(s.Value)
		}

	case ast.StmtBreak:
		out.K = StmtBreak
		out.Value = InvalidValue
		if s.Value != ast.InvalidExpr {
			out.Value = b.lowerExpr(s.Value)
		}

	case ast.StmtContinue:
		out.K = StmtContinue

	case ast.StmtSwitch:
		out.K = StmtSwitch
		out.Scrutinee = b.lowerExpr(s.Scrutinee)
		out.Cases = make([]SwitchCaseId, len(s.Cases))
		for i, caseId := range s.Cases {
			cs := b.arena.SwitchCase(caseId)
			values := make([]ValueId, len(cs.Values))
			for j, v := range cs.Values {
				values[j] = b.lowerExpr(v)
			}
			out.Cases[i] = b.mod.addSwitchCase(SwitchCase{Values: values, Body: b.lowerBlock(cs.Body)})
		}

	default:
		// StmtFnDecl/StmtFieldDecl/StmtActsDecl/StmtClassDecl/StmtGlobalDecl/
		// StmtNest/StmtUseActs/StmtProgram cannot appear nested inside a
		// function body; nothing to lower here.
		out.K = StmtExprS
		out.Value = InvalidValue
	}
	return out
}

// blockHasAnyWrite reports whether any value reachable from a block has
// MayWrite or Unknown effect, recorded on Func as the "has_any_write"
// summary (spec.md §4.4.2).
func (b *builder) blockHasAnyWrite(id BlockId) bool {
	for _, s := range b.mod.BlockStmts(id) {
		if b.stmtHasAnyWrite(s) {
			return true
		}
	}
	return false
}

func (b *builder) stmtHasAnyWrite(s Stmt) bool {
	check := func(v ValueId) bool {
		return v != InvalidValue && b.mod.Value(v).Effect != Pure
	}
	switch s.K {
	case StmtExprS, StmtReturn, StmtBreak:
		return check(s.Value)
	case StmtVarDecl:
		return check(s.Init)
	case StmtIf:
		return check(s.Cond) || (s.Then != InvalidBlock && b.blockHasAnyWrite(s.Then)) || (s.Else != InvalidBlock && b.blockHasAnyWrite(s.Else))
	case StmtWhile:
		return check(s.Cond) || b.blockHasAnyWrite(s.Body2)
	case StmtDoWhile:
		return b.blockHasAnyWrite(s.Body2) || check(s.Cond)
	case StmtDoScope, StmtBlock, StmtManual:
		return b.blockHasAnyWrite(s.Body)
	case StmtSwitch:
		if check(s.Scrutinee) {
			return true
		}
		for _, caseId := range s.Cases {
			cs := b.mod.SwitchCase(caseId)
			for _, v := range cs.Values {
				if check(v) {
					return true
				}
			}
			if b.blockHasAnyWrite(cs.Body) {
				return true
			}
		}
	}
	return false
}

func floatText(f float64) string { return fmt.Sprintf("%v", f) }
