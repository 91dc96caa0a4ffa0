package tyck

import (
	"gaupel/internal/ast"
	"gaupel/internal/diag"
	"gaupel/internal/types"
)

// checkCAbiFunction validates the C-ABI constraints of spec.md §4.3.2:
// (a) no named-group params, (b) FFI-safe parameter/return types,
// (c) — globals are checked separately in precollectGlobal.
func (c *Checker) checkCAbiFunction(stmtId ast.StmtId, s ast.Stmt, qualified string) {
	if len(s.Labels) > 0 {
		c.res.Bag.Add(diag.CAbiNamedGroup(toDiagSpan(s.Span), qualified))
	}

	visiting := make(map[types.Id]bool)
	for _, pid := range s.Params {
		p := c.arena.Param(pid)
		ty := c.resolveTypeNode(p.Type)
		if !c.isFfiSafe(ty, visiting) {
			c.res.Bag.Add(diag.CAbiNotFfiSafe(toDiagSpan(s.Span), c.pool.ToString(ty)))
		}
	}

	ret := c.resolveTypeNode(s.RetType)
	retRec := c.pool.Get(ret)
	isUnit := retRec.Kind == types.KindBuiltin && retRec.Builtin == types.Unit
	if !isUnit && !c.isFfiSafe(ret, visiting) {
		c.res.Bag.Add(diag.CAbiNotFfiSafe(toDiagSpan(s.Span), c.pool.ToString(ret)))
	}
}

// isFfiSafe recognizes builtins (except unit, unless it's a return type —
// handled by the caller), ptr, and C-layout named types, transitively.
// Self-referential layouts are assumed safe once a type is already in the
// visiting set (spec.md §9(c), the un-tightened default).
func (c *Checker) isFfiSafe(id types.Id, visiting map[types.Id]bool) bool {
	if visiting[id] {
		return true
	}
	r := c.pool.Get(id)
	switch r.Kind {
	case types.KindBuiltin:
		return r.Builtin != types.Unit && r.Builtin != types.InferInteger && r.Builtin != types.Null
	case types.KindPtr:
		return true
	case types.KindNamed:
		meta, ok := c.fieldAbiMeta[id]
		if !ok || meta.Layout != "C" {
			return false
		}
		visiting[id] = true
		defer delete(visiting, id)
		s := c.arena.Stmt(meta.StmtId)
		for _, mid := range s.Members {
			m := c.arena.FieldMember(mid)
			if !c.isFfiSafe(c.resolveTypeNode(m.Type), visiting) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
