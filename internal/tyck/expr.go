package tyck

import (
	"strings"

	"gaupel/internal/ast"
	"gaupel/internal/diag"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// checkExpr is Tyck pass 2's expression dispatcher (spec.md §4.3.7). Every
// expression produces exactly one type, memoized into TyckResult.ExprTypes
// (spec.md §4.4.2); a still-pending infer-integer literal is left
// unmemoized here so later context can still resolve it.
func (c *Checker) checkExpr(id ast.ExprId) types.Id {
	if id == ast.InvalidExpr {
		return types.Invalid
	}
	e := c.arena.Expr(id)

	var result types.Id
	switch e.K {
	case ast.ExprIntLit:
		c.recordPendingInt(id, e.IntVal, e.Span, symbols.Invalid)
		return c.pool.BuiltinId(types.InferInteger)
	case ast.ExprFloatLit:
		result = c.pool.BuiltinId(types.F64)
	case ast.ExprStringLit:
		result = c.pool.BuiltinId(types.Text)
	case ast.ExprBoolLit:
		result = c.pool.BuiltinId(types.Bool)
	case ast.ExprNullLit:
		result = c.pool.BuiltinId(types.Null)
	case ast.ExprIdent:
		result = c.checkIdent(id, e)
	case ast.ExprPath:
		result = c.checkPath(id, e)
	case ast.ExprUnary:
		result = c.checkUnary(id, e)
	case ast.ExprBinary:
		result = c.checkBinary(id, e)
	case ast.ExprAssign:
		result = c.checkAssign(id, e)
	case ast.ExprPostfixInc:
		result = c.checkPostfixInc(id, e)
	case ast.ExprBorrow:
		result = c.checkBorrow(id, e)
	case ast.ExprEscape:
		result = c.checkEscape(id, e)
	case ast.ExprIf:
		result = c.checkIfExpr(id, e)
	case ast.ExprBlock:
		result = c.checkBlockExpr(id, e)
	case ast.ExprLoop:
		result = c.checkLoopExpr(id, e)
	case ast.ExprCall:
		result = c.checkCallExpr(id, e)
	case ast.ExprArrayLit:
		result = c.checkArrayLit(id, e)
	case ast.ExprFieldInit:
		result = c.checkFieldInit(id, e)
	case ast.ExprIndex:
		result = c.checkIndex(id, e)
	case ast.ExprField:
		result = c.checkField(id, e)
	case ast.ExprCast:
		result = c.checkCast(id, e)
	case ast.ExprError:
		result = c.pool.Error()
	default:
		result = c.pool.Error()
	}

	if _, pending := c.pendingIntExpr[id]; !pending {
		c.res.setType(id, result)
	}
	return result
}

func (c *Checker) isBool(t types.Id) bool {
	r := c.pool.Get(t)
	return r.Kind == types.KindBuiltin && r.Builtin == types.Bool
}

func (c *Checker) isUnit(t types.Id) bool {
	r := c.pool.Get(t)
	return r.Kind == types.KindBuiltin && r.Builtin == types.Unit
}

func (c *Checker) typeOfSymbol(exprId ast.ExprId, sym symbols.Id) types.Id {
	if p, ok := c.pendingIntSym[sym]; ok && !p.Resolved {
		c.linkPendingExpr(exprId, p)
		return c.pool.BuiltinId(types.InferInteger)
	}
	return c.syms.Symbol(sym).DeclaredType
}

func (c *Checker) checkIdent(id ast.ExprId, e ast.Expr) types.Id {
	if sym, ok := c.nr.Expr(id); ok {
		return c.typeOfSymbol(id, sym)
	}
	if sym, ok := c.syms.Lookup(e.Name); ok {
		return c.typeOfSymbol(id, sym)
	}
	c.res.Bag.Add(diag.NameNotFound(toDiagSpan(e.Span), e.Name))
	return c.pool.Error()
}

func (c *Checker) pathName(e ast.Expr) string {
	segs := make([]string, len(e.PathSegs))
	for i, s := range e.PathSegs {
		segs[i] = c.arena.PathSeg(s).Name
	}
	return strings.Join(segs, "::")
}

func (c *Checker) checkPath(id ast.ExprId, e ast.Expr) types.Id {
	qualified := c.pathName(e)
	if sym, ok := c.qualifiedSymbols[qualified]; ok && sym != symbols.Invalid {
		return c.typeOfSymbol(id, sym)
	}
	if sym, ok := c.nr.Expr(id); ok {
		return c.typeOfSymbol(id, sym)
	}
	c.res.Bag.Add(diag.NameNotFound(toDiagSpan(e.Span), qualified))
	return c.pool.Error()
}

func (c *Checker) checkUnary(id ast.ExprId, e ast.Expr) types.Id {
	operandT := c.checkExpr(e.A)

	switch e.Op {
	case "!":
		if c.isBool(operandT) {
			return operandT
		}
	case "-", "~":
		if _, pending := c.pendingIntExpr[e.A]; pending {
			return operandT
		}
		if c.pool.IsInteger(operandT) || c.pool.IsFloat(operandT) {
			return operandT
		}
	}

	owner := c.decayBorrow(operandT)
	candidates := c.actsOperatorCandidates(owner, e.Op, false)
	sig, n := c.resolveOverload(candidates, nil, true)
	switch n {
	case 1:
		c.res.ExprOverloadTarget[id] = sig.StmtId
		return sig.Ret
	case 0:
		c.res.Bag.Add(diag.OverloadNoMatch(toDiagSpan(e.Span), e.Op))
	default:
		c.res.Bag.Add(diag.OverloadAmbiguous(toDiagSpan(e.Span), e.Op))
	}
	return c.pool.Error()
}

func (c *Checker) comparable(a, b types.Id) bool {
	if a == c.pool.Error() || b == c.pool.Error() {
		return true
	}
	if a == b {
		return true
	}
	if c.pool.IsInteger(a) && c.pool.IsInteger(b) {
		return true
	}
	if c.pool.IsFloat(a) && c.pool.IsFloat(b) {
		return true
	}
	return false
}

func (c *Checker) checkBinary(id ast.ExprId, e ast.Expr) types.Id {
	lt := c.checkExpr(e.A)
	rt := c.checkExpr(e.B)

	_, lPending := c.pendingIntExpr[e.A]
	_, rPending := c.pendingIntExpr[e.B]
	if lPending && !rPending && c.pool.IsInteger(rt) {
		lt = c.resolveInferIntInContext(e.A, rt)
	}
	if rPending && !lPending && c.pool.IsInteger(lt) {
		rt = c.resolveInferIntInContext(e.B, lt)
	}

	switch e.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		if c.comparable(lt, rt) {
			return c.pool.BuiltinId(types.Bool)
		}
	case "&&", "||":
		if c.isBool(lt) && c.isBool(rt) {
			return c.pool.BuiltinId(types.Bool)
		}
	case "??":
		return c.checkNullCoalesce(e, lt, rt)
	default:
		if lt == rt && (c.pool.IsInteger(lt) || c.pool.IsFloat(lt)) {
			return lt
		}
	}

	owner := c.decayBorrow(lt)
	candidates := c.actsOperatorCandidates(owner, e.Op, false)
	sig, n := c.resolveOverload(candidates, []flatArg{{Value: e.B}}, true)
	switch n {
	case 1:
		c.res.ExprOverloadTarget[id] = sig.StmtId
		return sig.Ret
	case 0:
		c.res.Bag.Add(diag.OverloadNoMatch(toDiagSpan(e.Span), e.Op))
	default:
		c.res.Bag.Add(diag.OverloadAmbiguous(toDiagSpan(e.Span), e.Op))
	}
	return c.pool.Error()
}

func (c *Checker) checkNullCoalesce(e ast.Expr, lt, rt types.Id) types.Id {
	lRec := c.pool.Get(lt)
	if lRec.Kind != types.KindOptional {
		if lt == c.pool.Error() {
			return c.pool.Error()
		}
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), "optional", c.pool.ToString(lt)))
		return c.pool.Error()
	}
	elem := lRec.Inner
	if _, pending := c.pendingIntExpr[e.B]; pending {
		rt = c.resolveInferIntInContext(e.B, elem)
	}
	if rt != elem && !c.assignable(rt, elem) {
		c.res.Bag.Add(diag.NullCoalesceRhsMismatch(toDiagSpan(e.Span), c.pool.ToString(elem), c.pool.ToString(rt)))
		return c.pool.Error()
	}
	return elem
}

func (c *Checker) isPlace(id ast.ExprId) bool {
	e := c.arena.Expr(id)
	switch e.K {
	case ast.ExprIdent, ast.ExprIndex, ast.ExprField:
		return true
	}
	return false
}

func (c *Checker) placeMutability(id ast.ExprId) *bool {
	e := c.arena.Expr(id)
	if e.K != ast.ExprIdent {
		return nil
	}
	var sym symbols.Id
	if s, ok := c.nr.Expr(id); ok {
		sym = s
	} else if s, ok := c.syms.Lookup(e.Name); ok {
		sym = s
	} else {
		return nil
	}
	m := c.syms.IsMutable(sym)
	return &m
}

func (c *Checker) placeName(id ast.ExprId) string {
	e := c.arena.Expr(id)
	switch e.K {
	case ast.ExprIdent:
		return e.Name
	case ast.ExprField:
		return e.Name
	}
	return "<place>"
}

func (c *Checker) checkAssign(id ast.ExprId, e ast.Expr) types.Id {
	if !c.isPlace(e.A) {
		c.res.Bag.Add(diag.LhsMustBePlace(toDiagSpan(e.Span)))
		return c.pool.Error()
	}
	lt := c.checkExpr(e.A)
	if mut := c.placeMutability(e.A); mut != nil && !*mut {
		c.res.Bag.Add(diag.WriteToImmutable(toDiagSpan(e.Span), c.placeName(e.A)))
	}

	rt := c.checkExpr(e.B)
	if _, pending := c.pendingIntExpr[e.B]; pending {
		rt = c.resolveInferIntInContext(e.B, lt)
	}
	if rt != lt && !c.assignable(rt, lt) {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), c.pool.ToString(lt), c.pool.ToString(rt)))
		return c.pool.Error()
	}
	return lt
}

func (c *Checker) checkPostfixInc(id ast.ExprId, e ast.Expr) types.Id {
	if !c.isPlace(e.A) {
		c.res.Bag.Add(diag.LhsMustBePlace(toDiagSpan(e.Span)))
		return c.pool.Error()
	}
	t := c.checkExpr(e.A)
	if mut := c.placeMutability(e.A); mut != nil && !*mut {
		c.res.Bag.Add(diag.WriteToImmutable(toDiagSpan(e.Span), c.placeName(e.A)))
	}
	if !c.pool.IsInteger(t) && t != c.pool.Error() {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), "integer", c.pool.ToString(t)))
		return c.pool.Error()
	}
	return t
}

func (c *Checker) checkBorrow(id ast.ExprId, e ast.Expr) types.Id {
	if !c.isPlace(e.A) {
		c.res.Bag.Add(diag.BorrowRequiresPlace(toDiagSpan(e.Span)))
		return c.pool.Error()
	}
	t := c.checkExpr(e.A)
	if e.IsMut {
		if mut := c.placeMutability(e.A); mut != nil && !*mut {
			c.res.Bag.Add(diag.BorrowMutRequiresMutable(toDiagSpan(e.Span)))
		}
	}
	return c.pool.MakeBorrow(t, e.IsMut)
}

func (c *Checker) checkEscape(id ast.ExprId, e ast.Expr) types.Id {
	if !c.isPlace(e.A) {
		c.res.Bag.Add(diag.BorrowRequiresPlace(toDiagSpan(e.Span)))
		return c.pool.Error()
	}
	t := c.checkExpr(e.A)
	return c.pool.MakeEscape(t)
}

func (c *Checker) checkIfExpr(id ast.ExprId, e ast.Expr) types.Id {
	condT := c.checkExpr(e.CondExpr)
	if !c.isBool(condT) && condT != c.pool.Error() {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), "bool", c.pool.ToString(condT)))
	}

	thenT := c.checkExpr(e.ThenExpr)
	if e.ElseExpr == ast.InvalidExpr {
		return c.pool.BuiltinId(types.Unit)
	}
	elseT := c.checkExpr(e.ElseExpr)

	_, thenPending := c.pendingIntExpr[e.ThenExpr]
	_, elsePending := c.pendingIntExpr[e.ElseExpr]
	if thenPending && !elsePending && c.pool.IsInteger(elseT) {
		thenT = c.resolveInferIntInContext(e.ThenExpr, elseT)
	}
	if elsePending && !thenPending && c.pool.IsInteger(thenT) {
		elseT = c.resolveInferIntInContext(e.ElseExpr, thenT)
	}

	unified, ok := c.unify(thenT, elseT)
	if !ok {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), c.pool.ToString(thenT), c.pool.ToString(elseT)))
		return c.pool.Error()
	}
	return unified
}

// checkBlockExpr implements the slot-sensitivity caching rule of
// spec.md §4.3.7: a block-expression's tail type is cached separately
// when it is consumed in value context, since the same underlying block
// statement may also be visited as a plain statement elsewhere.
func (c *Checker) checkBlockExpr(id ast.ExprId, e ast.Expr) types.Id {
	if e.InValueContext {
		if t, ok := c.exprValueCtxCache[id]; ok {
			return t
		}
	}

	blockStmt := c.arena.Stmt(e.BlockStmt)
	tailType := c.pool.BuiltinId(types.Unit)
	c.syms.PushScope()
	for i, childId := range blockStmt.Children {
		c.checkStmt(childId)
		if i == len(blockStmt.Children)-1 {
			child := c.arena.Stmt(childId)
			if child.K == ast.StmtExpr {
				tailType = c.res.typeOf(child.Expr)
			}
		}
	}
	c.syms.PopScope()

	if e.InValueContext {
		c.exprValueCtxCache[id] = tailType
	}
	return tailType
}

func (c *Checker) checkLoopExpr(id ast.ExprId, e ast.Expr) types.Id {
	c.pushLoop()
	c.checkStmt(e.LoopBody)
	frame := c.popLoop()

	if frame.HasValueBreak {
		if frame.HasNullBreak {
			return c.pool.MakeOptional(frame.JoinedValue)
		}
		return frame.JoinedValue
	}
	if frame.HasNullBreak {
		return c.pool.BuiltinId(types.Null)
	}
	return c.pool.BuiltinId(types.Never)
}

func (c *Checker) calleeDisplayName(callee ast.Expr) string {
	if callee.K == ast.ExprPath {
		return c.pathName(callee)
	}
	return callee.Name
}

func (c *Checker) checkCallExpr(id ast.ExprId, e ast.Expr) types.Id {
	callee := c.arena.Expr(e.Callee)
	args := c.flattenArgs(e.Args)
	for _, a := range args {
		c.checkExpr(a.Value)
	}

	if e.CallForm == ast.CallMixedInvalid {
		c.res.Bag.Add(diag.OverloadMixedInvalid(toDiagSpan(e.Span), c.calleeDisplayName(callee)))
		return c.pool.Error()
	}

	if callee.K == ast.ExprField {
		baseType := c.decayBorrow(c.checkExpr(callee.A))
		candidates := c.actsMethodCandidates(baseType, callee.Name)
		return c.commitCall(id, e.Span, callee.Name, candidates, args, true)
	}

	name := c.calleeDisplayName(callee)
	candidates := c.fnOverloadSets[name]
	return c.commitCall(id, e.Span, name, candidates, args, false)
}

func (c *Checker) commitCall(id ast.ExprId, span ast.Span, name string, candidates []ast.StmtId, args []flatArg, skipSelf bool) types.Id {
	if len(candidates) == 0 {
		c.res.Bag.Add(diag.NameNotFound(toDiagSpan(span), name))
		return c.pool.Error()
	}
	sig, n := c.resolveOverload(candidates, args, skipSelf)
	switch n {
	case 0:
		c.res.Bag.Add(diag.OverloadNoMatch(toDiagSpan(span), name))
		return c.pool.Error()
	case 1:
		c.res.ExprOverloadTarget[id] = sig.StmtId
		paramTypes := sig.ParamTypes
		for i, a := range args {
			if _, pending := c.pendingIntExpr[a.Value]; pending && i < len(paramTypes) {
				c.resolveInferIntInContext(a.Value, paramTypes[i])
			}
		}
		return sig.Ret
	default:
		c.res.Bag.Add(diag.OverloadAmbiguous(toDiagSpan(span), name))
		return c.pool.Error()
	}
}

func (c *Checker) checkArrayLit(id ast.ExprId, e ast.Expr) types.Id {
	if len(e.Elems) == 0 {
		return c.pool.MakeArray(c.pool.BuiltinId(types.Never), true, 0)
	}
	elemType := c.checkExpr(e.Elems[0])
	for _, elId := range e.Elems[1:] {
		t := c.checkExpr(elId)
		if _, pending := c.pendingIntExpr[elId]; pending && c.pool.IsInteger(elemType) {
			t = c.resolveInferIntInContext(elId, elemType)
		}
		u, ok := c.unify(elemType, t)
		if !ok {
			c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), c.pool.ToString(elemType), c.pool.ToString(t)))
			continue
		}
		elemType = u
	}
	return c.pool.MakeArray(elemType, true, int64(len(e.Elems)))
}

func (c *Checker) checkFieldInit(id ast.ExprId, e ast.Expr) types.Id {
	owner := c.pool.InternIdent(e.TypeName)
	meta, ok := c.fieldAbiMeta[owner]

	memberType := make(map[string]types.Id)
	if ok {
		for _, mid := range c.arena.Stmt(meta.StmtId).Members {
			m := c.arena.FieldMember(mid)
			memberType[m.Name] = c.resolveTypeNode(m.Type)
		}
	}

	for _, entryId := range e.Entries {
		entry := c.arena.FieldInitEntry(entryId)
		valT := c.checkExpr(entry.Value)
		want, known := memberType[entry.Name]
		if !known {
			c.res.Bag.Add(diag.NameNotFound(toDiagSpan(e.Span), entry.Name))
			continue
		}
		if _, pending := c.pendingIntExpr[entry.Value]; pending {
			valT = c.resolveInferIntInContext(entry.Value, want)
		}
		if valT != want && !c.assignable(valT, want) {
			c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), c.pool.ToString(want), c.pool.ToString(valT)))
		}
	}

	c.res.ExprCtorOwnerType[id] = owner
	return owner
}

func (c *Checker) checkIndex(id ast.ExprId, e ast.Expr) types.Id {
	baseT := c.decayBorrow(c.checkExpr(e.Base))
	idxT := c.checkExpr(e.IndexArg)
	if _, pending := c.pendingIntExpr[e.IndexArg]; pending {
		idxT = c.resolveInferIntInContext(e.IndexArg, c.pool.BuiltinId(types.Usize))
	}
	if !c.pool.IsInteger(idxT) && idxT != c.pool.Error() {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), "integer", c.pool.ToString(idxT)))
	}

	rec := c.pool.Get(baseT)
	if rec.Kind != types.KindArray {
		if baseT == c.pool.Error() {
			return c.pool.Error()
		}
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(e.Span), "array", c.pool.ToString(baseT)))
		return c.pool.Error()
	}
	if e.IsRange {
		return c.pool.MakeArray(rec.Elem, false, 0)
	}
	return rec.Elem
}

func (c *Checker) checkField(id ast.ExprId, e ast.Expr) types.Id {
	baseT := c.decayBorrow(c.checkExpr(e.A))
	meta, ok := c.fieldAbiMeta[baseT]
	if !ok {
		if baseT == c.pool.Error() {
			return c.pool.Error()
		}
		c.res.Bag.Add(diag.NameNotFound(toDiagSpan(e.Span), e.Name))
		return c.pool.Error()
	}
	for _, mid := range c.arena.Stmt(meta.StmtId).Members {
		m := c.arena.FieldMember(mid)
		if m.Name == e.Name {
			return c.resolveTypeNode(m.Type)
		}
	}
	c.res.Bag.Add(diag.NameNotFound(toDiagSpan(e.Span), e.Name))
	return c.pool.Error()
}

func (c *Checker) castAllowed(from, to types.Id) bool {
	if from == c.pool.Error() || to == c.pool.Error() {
		return true
	}
	if from == to {
		return true
	}
	if (c.pool.IsInteger(from) || c.pool.IsFloat(from)) && (c.pool.IsInteger(to) || c.pool.IsFloat(to)) {
		return true
	}
	fromRec := c.pool.Get(from)
	toRec := c.pool.Get(to)
	if fromRec.Kind == types.KindPtr && toRec.Kind == types.KindPtr {
		return true
	}
	return false
}

func (c *Checker) checkCast(id ast.ExprId, e ast.Expr) types.Id {
	if e.A == ast.InvalidExpr {
		c.res.Bag.Add(diag.CastMissingOperand(toDiagSpan(e.Span)))
		return c.pool.Error()
	}
	if e.Target == ast.InvalidTypeNode {
		c.res.Bag.Add(diag.CastMissingTarget(toDiagSpan(e.Span)))
		return c.pool.Error()
	}

	fromT := c.checkExpr(e.A)
	toT := c.resolveTypeNode(e.Target)
	toRec := c.pool.Get(toT)
	fromRec := c.pool.Get(fromT)

	if fromRec.Kind == types.KindBuiltin && fromRec.Builtin == types.Null && toRec.Kind != types.KindOptional {
		c.res.Bag.Add(diag.CastNullToNonoptional(toDiagSpan(e.Span), c.pool.ToString(toT)))
		return c.pool.Error()
	}

	switch e.CastKind {
	case ast.CastOptTry:
		return c.pool.MakeOptional(toT)
	case ast.CastTrap:
		return toT
	default: // CastStrict
		if !c.castAllowed(fromT, toT) {
			c.res.Bag.Add(diag.CastNotAllowed(toDiagSpan(e.Span), c.pool.ToString(fromT), c.pool.ToString(toT)))
			return c.pool.Error()
		}
		return toT
	}
}
