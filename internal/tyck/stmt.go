package tyck

import (
	"gaupel/internal/ast"
	"gaupel/internal/diag"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// checkProgramBody is Tyck pass 2 (spec.md §4.3.2): full statement and
// expression checking, run strictly after precollect has populated every
// qualified name and overload set.
func (c *Checker) checkProgramBody(program ast.StmtId) {
	c.checkStmt(program)
}

func (c *Checker) checkStmt(id ast.StmtId) {
	if id == ast.InvalidStmt {
		return
	}
	s := c.arena.Stmt(id)

	switch s.K {
	case ast.StmtProgram, ast.StmtBlock, ast.StmtDoScope:
		c.syms.PushScope()
		c.pushActsSelection()
		for _, child := range s.Children {
			c.checkStmt(child)
		}
		c.popActsSelection()
		c.syms.PopScope()

	case ast.StmtNest:
		c.namespaceStack = append(c.namespaceStack, s.Name)
		for _, child := range s.Children {
			c.checkStmt(child)
		}
		c.namespaceStack = c.namespaceStack[:len(c.namespaceStack)-1]

	case ast.StmtUseActs:
		c.checkUseActs(s)

	case ast.StmtActsDecl, ast.StmtClassDecl:
		for _, child := range s.Children {
			c.checkStmt(child)
		}

	case ast.StmtFieldDecl:
		// precollect already recorded the layout metadata; member types
		// are checked for FFI safety only when a C-ABI function uses the
		// type. Nothing left to check against a body.

	case ast.StmtFnDecl:
		c.checkFnBody(id, s)

	case ast.StmtGlobalDecl:
		c.checkGlobalDecl(s)

	case ast.StmtVarDecl:
		c.checkVarDecl(s)

	case ast.StmtIf:
		c.checkIfStmt(s)

	case ast.StmtWhile:
		c.checkWhileStmt(s)

	case ast.StmtDoWhile:
		c.checkDoWhileStmt(s)

	case ast.StmtManual:
		c.checkStmt(s.Body2)

	case ast.StmtReturn:
		c.checkReturnStmt(s)

	case ast.StmtBreak:
		c.checkBreakStmt(s)

	case ast.StmtContinue:
		c.checkContinueStmt(s)

	case ast.StmtSwitch:
		c.checkSwitchStmt(s)

	case ast.StmtExpr:
		c.checkExpr(s.Expr)
	}
}

// checkUseActs resolves a `use T with acts(Name)` directive to a concrete
// acts block and restricts owner-type dispatch to it for the remainder of
// the current lexical scope (spec.md §4.3.5).
func (c *Checker) checkUseActs(s ast.Stmt) {
	if len(s.ActsNames) == 0 {
		return
	}
	ownerSegs := make([]string, len(s.PathSegs))
	for i, segId := range s.PathSegs {
		ownerSegs[i] = c.arena.PathSeg(segId).Name
	}
	owner := c.pool.InternPath(ownerSegs)

	declStmt, ok := c.actsDeclsByOwnerName[owner][s.ActsNames[0]]
	if !ok {
		return
	}
	c.selectActs(owner, declStmt)
}

func (c *Checker) checkGlobalDecl(s ast.Stmt) {
	qualified := qualify(c.namespaceStack, s.Name)
	sym, ok := c.qualifiedSymbols[qualified]
	if !ok || s.Init == ast.InvalidExpr {
		return
	}
	declType := c.syms.Symbol(sym).DeclaredType
	initT := c.checkExpr(s.Init)
	if _, pending := c.pendingIntExpr[s.Init]; pending {
		initT = c.resolveInferIntInContext(s.Init, declType)
	}
	if initT != declType && !c.assignable(initT, declType) {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(s.Span), c.pool.ToString(declType), c.pool.ToString(initT)))
	}
}

func (c *Checker) checkVarDecl(s ast.Stmt) {
	declType := types.Invalid
	if s.DeclType != ast.InvalidTypeNode {
		declType = c.resolveTypeNode(s.DeclType)
	}

	var initT types.Id = types.Invalid
	if s.Init != ast.InvalidExpr {
		initT = c.checkExpr(s.Init)
	}

	result := c.syms.Insert(symbols.KindVar, s.Name, declType, spanOf(s.Span))
	if result.IsDuplicate {
		c.res.Bag.Add(diag.DuplicateDecl(toDiagSpan(s.Span), s.Name))
		return
	}
	if result.IsShadowing {
		c.res.Bag.Add(diag.Shadowing(toDiagSpan(s.Span), s.Name))
	}
	c.syms.SetMutable(result.Id, s.IsMut)

	if declType == types.Invalid {
		if s.Init == ast.InvalidExpr {
			return
		}
		if _, pending := c.pendingIntExpr[s.Init]; pending {
			c.pendingIntSym[result.Id] = c.pendingIntExpr[s.Init]
			return
		}
		c.syms.UpdateDeclaredType(result.Id, initT)
		return
	}

	if s.Init == ast.InvalidExpr {
		return
	}
	if _, pending := c.pendingIntExpr[s.Init]; pending {
		initT = c.resolveInferIntInContext(s.Init, declType)
	}
	if initT != declType && !c.assignable(initT, declType) {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(s.Span), c.pool.ToString(declType), c.pool.ToString(initT)))
	}
}

func (c *Checker) checkCondBool(span ast.Span, condT types.Id) {
	if !c.isBool(condT) && condT != c.pool.Error() {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(span), "bool", c.pool.ToString(condT)))
	}
}

func (c *Checker) checkIfStmt(s ast.Stmt) {
	c.checkCondBool(s.Span, c.checkExpr(s.Cond))
	c.checkStmt(s.Then)
	if s.Else != ast.InvalidStmt {
		c.checkStmt(s.Else)
	}
}

func (c *Checker) checkWhileStmt(s ast.Stmt) {
	c.checkCondBool(s.Span, c.checkExpr(s.Cond))
	c.pushLoop()
	c.checkStmt(s.Body2)
	c.popLoop()
}

func (c *Checker) checkDoWhileStmt(s ast.Stmt) {
	c.pushLoop()
	c.checkStmt(s.Body2)
	c.popLoop()
	c.checkCondBool(s.Span, c.checkExpr(s.Cond))
}

func (c *Checker) checkReturnStmt(s ast.Stmt) {
	fn := c.currentFn()
	if fn == nil {
		c.res.Bag.Add(diag.ReturnOutsideFn(toDiagSpan(s.Span)))
		return
	}
	if s.Value == ast.InvalidExpr {
		if !c.isUnit(fn.RetType) {
			c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(s.Span), c.pool.ToString(fn.RetType), "unit"))
		}
		return
	}
	vt := c.checkExpr(s.Value)
	if _, pending := c.pendingIntExpr[s.Value]; pending {
		vt = c.resolveInferIntInContext(s.Value, fn.RetType)
	}
	if vt != fn.RetType && !c.assignable(vt, fn.RetType) {
		c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(s.Span), c.pool.ToString(fn.RetType), c.pool.ToString(vt)))
	}
}

func (c *Checker) checkBreakStmt(s ast.Stmt) {
	loop := c.currentLoop()
	if loop == nil {
		c.res.Bag.Add(diag.BreakOutsideLoop(toDiagSpan(s.Span)))
		return
	}
	loop.HasAnyBreak = true
	if s.Value == ast.InvalidExpr {
		return
	}

	vt := c.checkExpr(s.Value)
	vRec := c.pool.Get(vt)
	if vRec.Kind == types.KindBuiltin && vRec.Builtin == types.Null {
		loop.HasNullBreak = true
		return
	}

	loop.HasValueBreak = true
	if loop.JoinedValue == types.Invalid {
		loop.JoinedValue = vt
		return
	}
	if u, ok := c.unify(loop.JoinedValue, vt); ok {
		loop.JoinedValue = u
		return
	}
	c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(s.Span), c.pool.ToString(loop.JoinedValue), c.pool.ToString(vt)))
}

func (c *Checker) checkContinueStmt(s ast.Stmt) {
	if c.currentLoop() == nil {
		c.res.Bag.Add(diag.ContinueOutsideLoop(toDiagSpan(s.Span)))
	}
}

func (c *Checker) checkSwitchStmt(s ast.Stmt) {
	scrutT := c.checkExpr(s.Scrutinee)
	for _, caseId := range s.Cases {
		cs := c.arena.SwitchCase(caseId)
		for _, valId := range cs.Values {
			valT := c.checkExpr(valId)
			if _, pending := c.pendingIntExpr[valId]; pending && c.pool.IsInteger(scrutT) {
				valT = c.resolveInferIntInContext(valId, scrutT)
			}
			if valT != scrutT && !c.assignable(valT, scrutT) {
				c.res.Bag.Add(diag.TypeMismatch(toDiagSpan(s.Span), c.pool.ToString(scrutT), c.pool.ToString(valT)))
			}
		}
		c.checkStmt(cs.Body)
	}
}

// checkFnBody type-checks one function declaration's body against its
// already-precollected signature (spec.md §4.3.2). A Body of
// ast.InvalidStmt marks an extern/FFI declaration with no body to check.
func (c *Checker) checkFnBody(id ast.StmtId, s ast.Stmt) {
	retType := c.resolveTypeNode(s.RetType)
	if s.Body == ast.InvalidStmt {
		return
	}

	c.pushFn(retType, false, false)
	c.syms.PushScope()
	c.pushActsSelection()

	for _, pid := range s.Params {
		p := c.arena.Param(pid)
		pt := c.resolveTypeNode(p.Type)
		result := c.syms.Insert(symbols.KindVar, p.Name, pt, spanOf(s.Span))
		c.syms.SetMutable(result.Id, p.IsSelf && s.IsMut)
	}

	c.checkStmt(s.Body)

	retRec := c.pool.Get(retType)
	needsReturn := !(retRec.Kind == types.KindBuiltin && (retRec.Builtin == types.Unit || retRec.Builtin == types.Never))
	if needsReturn && !c.bodyGuaranteesReturn(s.Body) {
		c.res.Bag.Add(diag.MissingReturn(toDiagSpan(s.Span), s.Name))
	}

	c.popActsSelection()
	c.syms.PopScope()
	c.popFn()
}

// bodyGuaranteesReturn is a conservative syntactic terminator check, not a
// full CFG reachability analysis: a block/do-scope defers to its last
// statement, and an if only counts if both arms do.
func (c *Checker) bodyGuaranteesReturn(id ast.StmtId) bool {
	if id == ast.InvalidStmt {
		return false
	}
	s := c.arena.Stmt(id)
	switch s.K {
	case ast.StmtReturn:
		return true
	case ast.StmtBlock, ast.StmtDoScope:
		if len(s.Children) == 0 {
			return false
		}
		return c.bodyGuaranteesReturn(s.Children[len(s.Children)-1])
	case ast.StmtIf:
		if s.Else == ast.InvalidStmt {
			return false
		}
		return c.bodyGuaranteesReturn(s.Then) && c.bodyGuaranteesReturn(s.Else)
	default:
		return false
	}
}
