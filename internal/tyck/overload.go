package tyck

import (
	"gaupel/internal/ast"
	"gaupel/internal/types"
)

// signature is a candidate's resolved call shape, recomputed from its
// FnDecl rather than read back out of the type pool, so overload matching
// can reason about labels/defaults directly (spec.md §4.3.4).
type signature struct {
	StmtId          ast.StmtId
	ParamTypes      []types.Id
	PositionalCount int
	Labels          []string
	HasDefault      []bool
	Ret             types.Id
}

func (c *Checker) candidateSignature(stmtId ast.StmtId) signature {
	s := c.arena.Stmt(stmtId)
	paramTypes := make([]types.Id, len(s.Params))
	labels := make([]string, 0)
	hasDefault := make([]bool, 0)
	for i, pid := range s.Params {
		p := c.arena.Param(pid)
		paramTypes[i] = c.resolveTypeNode(p.Type)
		if i >= s.PositionalCount {
			labels = append(labels, p.Label)
			hasDefault = append(hasDefault, p.HasDefault)
		}
	}
	return signature{
		StmtId:          stmtId,
		ParamTypes:      paramTypes,
		PositionalCount: s.PositionalCount,
		Labels:          labels,
		HasDefault:      hasDefault,
		Ret:             c.resolveTypeNode(s.RetType),
	}
}

// candidateSignatureSkipSelf drops the leading self parameter, for acts
// operator/method dispatch where self is the receiver, not a call arg.
func (c *Checker) candidateSignatureSkipSelf(stmtId ast.StmtId) signature {
	sig := c.candidateSignature(stmtId)
	if len(sig.ParamTypes) == 0 {
		return sig
	}
	sig.ParamTypes = sig.ParamTypes[1:]
	sig.PositionalCount--
	return sig
}

// flatArg is one call argument after named-group children have been
// inlined (spec.md §3.5's child_begin/child_count back-patching, already
// flattened by the producing builder into a contiguous Args slice here).
type flatArg struct {
	Label string
	Value ast.ExprId
}

func (c *Checker) flattenArgs(argIds []ast.ArgId) []flatArg {
	out := make([]flatArg, 0, len(argIds))
	for _, id := range argIds {
		a := c.arena.Arg(id)
		if a.IsGroup {
			continue
		}
		out = append(out, flatArg{Label: a.Label, Value: a.Value})
	}
	return out
}

// matchSignature tries sig against args using stage A (no defaults
// consumed) when allowDefaults is false, and stage B (named params may be
// omitted if they default) when true (spec.md §4.3.4).
func (c *Checker) matchSignature(sig signature, args []flatArg, allowDefaults bool) bool {
	var positional []flatArg
	labeled := make(map[string]flatArg)
	for _, a := range args {
		if a.Label == "" {
			positional = append(positional, a)
		} else {
			if _, dup := labeled[a.Label]; dup {
				return false
			}
			labeled[a.Label] = a
		}
	}

	if len(positional) != sig.PositionalCount {
		return false
	}
	for i, a := range positional {
		if !c.argAssignable(a.Value, sig.ParamTypes[i]) {
			return false
		}
	}

	seen := make(map[string]bool, len(labeled))
	for i, label := range sig.Labels {
		a, present := labeled[label]
		if !present {
			if allowDefaults && sig.HasDefault[i] {
				continue
			}
			return false
		}
		seen[label] = true
		if !c.argAssignable(a.Value, sig.ParamTypes[sig.PositionalCount+i]) {
			return false
		}
	}
	for label := range labeled {
		if !seen[label] {
			return false // labeled arg names a param the candidate doesn't have
		}
	}
	return true
}

// argAssignable checks an argument expression's (possibly still-pending)
// type against a parameter type, resolving a deferred integer literal in
// context when needed.
func (c *Checker) argAssignable(exprId ast.ExprId, paramType types.Id) bool {
	argType := c.res.typeOf(exprId)
	if _, pending := c.pendingIntExpr[exprId]; pending {
		expRec := c.pool.Get(paramType)
		if expRec.Kind == types.KindBuiltin && isIntegerBuiltin(expRec.Builtin) {
			return true // fit is checked for real once the candidate is committed
		}
		return false
	}
	return c.assignable(argType, paramType)
}

// resolveOverload runs the two-stage match of spec.md §4.3.4 over
// candidates and returns the first matching signature with the number of
// matches (0 for none). It adds no diagnostic; the caller adds its own
// (no-match vs ambiguous vs mixed-invalid carry different messages
// depending on call site).
func (c *Checker) resolveOverload(candidates []ast.StmtId, args []flatArg, skipSelf bool) (signature, int) {
	sigs := make([]signature, len(candidates))
	for i, stmtId := range candidates {
		if skipSelf {
			sigs[i] = c.candidateSignatureSkipSelf(stmtId)
		} else {
			sigs[i] = c.candidateSignature(stmtId)
		}
	}

	var matched []signature
	for _, sig := range sigs {
		if c.matchSignature(sig, args, false) {
			matched = append(matched, sig)
		}
	}
	if len(matched) == 0 {
		for _, sig := range sigs {
			if c.matchSignature(sig, args, true) {
				matched = append(matched, sig)
			}
		}
	}

	switch len(matched) {
	case 0:
		return signature{}, 0
	case 1:
		return matched[0], 1
	default:
		return matched[0], len(matched)
	}
}
