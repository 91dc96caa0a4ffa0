package tyck

import (
	"gaupel/internal/ast"
	"gaupel/internal/diag"
)

// checkOverloadSetConflicts runs once pass 1 has populated every qualified
// name's full candidate set (spec.md §4.3.4): no two declarations under the
// same qualified name may share a positional+labeled signature regardless
// of return type (return-type-only overloading is forbidden), and no two
// declarations may collide once mangled, even with distinct signatures. A
// C-ABI function can never be overloaded at all, since its exported symbol
// carries no mangled disambiguator (spec.md §4.3.2).
func (c *Checker) checkOverloadSetConflicts() {
	for qualified, candidates := range c.fnOverloadSets {
		if len(candidates) < 2 {
			continue
		}

		if c.anyIsCAbi(candidates) {
			c.res.Bag.Add(diag.CAbiOverload(toDiagSpan(c.arena.Stmt(candidates[0]).Span), qualified))
			continue
		}

		sigs := make([]signature, len(candidates))
		for i, stmtId := range candidates {
			sigs[i] = c.candidateSignature(stmtId)
			c.checkDuplicateLabels(sigs[i])
		}

		mangled := make(map[string]ast.StmtId, len(sigs))
		for i, sig := range sigs {
			for j := 0; j < i; j++ {
				if sameCallShape(sig, sigs[j]) {
					c.res.Bag.Add(diag.OverloadDeclConflict(toDiagSpan(c.arena.Stmt(sig.StmtId).Span), qualified))
				}
			}

			name := mangle(qualified, c.paramTypeNames(sig))
			if prior, seen := mangled[name]; seen && prior != sig.StmtId {
				c.res.Bag.Add(diag.OverloadMangleCollision(toDiagSpan(c.arena.Stmt(sig.StmtId).Span), qualified))
			}
			mangled[name] = sig.StmtId
		}
	}
}

func (c *Checker) anyIsCAbi(candidates []ast.StmtId) bool {
	for _, id := range candidates {
		if c.arena.Stmt(id).IsC {
			return true
		}
	}
	return false
}

func (c *Checker) paramTypeNames(sig signature) []string {
	names := make([]string, len(sig.ParamTypes))
	for i, t := range sig.ParamTypes {
		names[i] = c.pool.ToString(t)
	}
	return names
}

// sameCallShape compares positional arity/types and the labeled-param set
// (by name and type, ignoring default-ness and return type) — the shape a
// caller's argument list alone must disambiguate between.
func sameCallShape(a, b signature) bool {
	if a.PositionalCount != b.PositionalCount || len(a.ParamTypes) != len(b.ParamTypes) {
		return false
	}
	for i := range a.ParamTypes {
		if a.ParamTypes[i] != b.ParamTypes[i] {
			return false
		}
	}
	if len(a.Labels) != len(b.Labels) {
		return false
	}
	for i := range a.Labels {
		if a.Labels[i] != b.Labels[i] {
			return false
		}
	}
	return true
}

func (c *Checker) checkDuplicateLabels(sig signature) {
	seen := make(map[string]bool, len(sig.Labels))
	for _, label := range sig.Labels {
		if seen[label] {
			c.res.Bag.Add(diag.OverloadDuplicateLabel(toDiagSpan(c.arena.Stmt(sig.StmtId).Span), label))
			continue
		}
		seen[label] = true
	}
}
