package sir

import (
	"gaupel/internal/ast"
	"gaupel/internal/symbols"
)

// lowerExpr lowers one AST expression into exactly one SIR value (spec.md
// §4.4.2). Type comes straight from the already-computed Tyck cache; the
// builder never re-derives a type.
func (b *builder) lowerExpr(id ast.ExprId) ValueId {
	e := b.arena.Expr(id)
	ty := b.tyck.ExprTypes[id]

	base := Value{Type: ty, Span: e.Span, Place: NotPlace, Effect: Pure}

	switch e.K {
	case ast.ExprIntLit:
		base.Kind, base.Text = ValIntLit, e.IntVal.String()
		return b.mod.addValue(base)

	case ast.ExprFloatLit:
		base.Kind, base.Text = ValFloatLit, floatText(e.FloatVal)
		return b.mod.addValue(base)

	case ast.ExprStringLit:
		base.Kind, base.Text = ValStringLit, e.StringVal
		return b.mod.addValue(base)

	case ast.ExprBoolLit:
		base.Kind = ValBoolLit
		if e.BoolVal {
			base.Text = "true"
		} else {
			base.Text = "false"
		}
		return b.mod.addValue(base)

	case ast.ExprNullLit:
		base.Kind = ValNullLit
		return b.mod.addValue(base)

	case ast.ExprIdent:
		sym, _ := b.nr.Expr(id)
		base.Kind, base.Place, base.Sym, base.Text = ValLocal, Local, sym, e.Name
		return b.mod.addValue(base)

	case ast.ExprPath:
		sym, _ := b.nr.Expr(id)
		base.Kind, base.Place, base.Sym, base.Text = ValLocal, Local, sym, b.pathName(e)
		return b.mod.addValue(base)

	case ast.ExprUnary:
		return b.lowerUnary(id, e, base)

	case ast.ExprBinary:
		return b.lowerBinary(id, e, base)

	case ast.ExprAssign:
		lhs := b.lowerExpr(e.A)
		rhs := b.lowerExpr(e.B)
		base.Kind, base.A, base.B = ValAssign, lhs, rhs
		base.Effect = JoinEffect(MayWrite, JoinEffect(b.mod.Value(lhs).Effect, b.mod.Value(rhs).Effect))
		base.OriginSym = b.rootSymbolOf(b.mod.Value(lhs))
		return b.mod.addValue(base)

	case ast.ExprPostfixInc:
		a := b.lowerExpr(e.A)
		base.Kind, base.Op, base.A = ValPostfixInc, e.Op, a
		base.Effect = JoinEffect(MayWrite, b.mod.Value(a).Effect)
		base.OriginSym = b.rootSymbolOf(b.mod.Value(a))
		return b.mod.addValue(base)

	case ast.ExprBorrow:
		a := b.lowerExpr(e.A)
		base.Kind, base.A, base.BorrowIsMut = ValBorrow, a, e.IsMut
		base.Effect = b.mod.Value(a).Effect
		return b.mod.addValue(base)

	case ast.ExprEscape:
		a := b.lowerExpr(e.A)
		base.Kind, base.A = ValEscape, a
		base.Effect = JoinEffect(MayWrite, b.mod.Value(a).Effect)
		return b.mod.addValue(base)

	case ast.ExprIf:
		cond := b.lowerExpr(e.CondExpr)
		thenV := b.lowerExpr(e.ThenExpr)
		elseV := InvalidValue
		eff := JoinEffect(b.mod.Value(cond).Effect, b.mod.Value(thenV).Effect)
		if e.ElseExpr != ast.InvalidExpr {
			elseV = b.lowerExpr(e.ElseExpr)
			eff = JoinEffect(eff, b.mod.Value(elseV).Effect)
		}
		base.Kind, base.A, base.B, base.C, base.Effect = ValIf, cond, thenV, elseV, eff
		return b.mod.addValue(base)

	case ast.ExprBlock:
		return b.lowerBlockExprValue(id, e, base)

	case ast.ExprLoop:
		bodyBlock := b.lowerBlock(e.LoopBody)
		base.Kind, base.LoopBody = ValLoopExpr, bodyBlock
		if b.blockHasAnyWrite(bodyBlock) {
			base.Effect = Unknown
		}
		return b.mod.addValue(base)

	case ast.ExprCall:
		return b.lowerCall(id, e, base)

	case ast.ExprArrayLit:
		elems := make([]ValueId, len(e.Elems))
		eff := Pure
		for i, elId := range e.Elems {
			elems[i] = b.lowerExpr(elId)
			eff = JoinEffect(eff, b.mod.Value(elems[i]).Effect)
		}
		base.Kind, base.Elems, base.Effect = ValArrayLit, elems, eff
		return b.mod.addValue(base)

	case ast.ExprFieldInit:
		entries := make([]FieldInitEntry, len(e.Entries))
		eff := Pure
		for i, entryId := range e.Entries {
			entry := b.arena.FieldInitEntry(entryId)
			v := b.lowerExpr(entry.Value)
			entries[i] = FieldInitEntry{Name: entry.Name, Value: v}
			eff = JoinEffect(eff, b.mod.Value(v).Effect)
		}
		base.Kind, base.Entries, base.Effect = ValFieldInit, entries, eff
		if owner, ok := b.tyck.ExprCtorOwnerType[id]; ok {
			base.CtorOwnerType, base.CallIsCtor = owner, true
		}
		return b.mod.addValue(base)

	case ast.ExprIndex:
		baseVal := b.lowerExpr(e.Base)
		idxVal := b.lowerExpr(e.IndexArg)
		base.Kind, base.A, base.B = ValIndex, baseVal, idxVal
		base.Effect = JoinEffect(b.mod.Value(baseVal).Effect, b.mod.Value(idxVal).Effect)
		if e.IsRange {
			base.Place = NotPlace
		} else {
			base.Place = Index
		}
		return b.mod.addValue(base)

	case ast.ExprField:
		baseVal := b.lowerExpr(e.A)
		base.Kind, base.A, base.Text, base.Place = ValField, baseVal, e.Name, Field
		base.Effect = b.mod.Value(baseVal).Effect
		return b.mod.addValue(base)

	case ast.ExprCast:
		a := b.lowerExpr(e.A)
		base.Kind, base.A, base.CastTo = ValCast, a, b.resolveTypeNode(e.Target)
		base.Effect = b.mod.Value(a).Effect
		return b.mod.addValue(base)

	case ast.ExprError:
		base.Kind = ValError
		return b.mod.addValue(base)
	}

	base.Kind = ValError
	return b.mod.addValue(base)
}

func (b *builder) pathName(e ast.Expr) string {
	segs := b.arena.PathSegs(e.PathSegs)
	name := ""
	for i, s := range segs {
		if i > 0 {
			name += "::"
		}
		name += s.Name
	}
	return name
}

// rootSymbolOf walks through a place value's base chain to find the symbol
// it ultimately writes through (spec.md §3.5's origin_sym).
func (b *builder) rootSymbolOf(v Value) symbols.Id {
	switch v.Kind {
	case ValLocal:
		return v.Sym
	case ValField, ValIndex, ValBorrow:
		return b.rootSymbolOf(b.mod.Value(v.A))
	default:
		return symbols.Invalid
	}
}

func (b *builder) lowerUnary(id ast.ExprId, e ast.Expr, base Value) ValueId {
	a := b.lowerExpr(e.A)
	if target, ok := b.tyck.ExprOverloadTarget[id]; ok {
		return b.emitOverloadCall(base, target, e.Op, []ValueId{a}, nil)
	}
	base.Kind, base.Op, base.A = ValUnary, e.Op, a
	base.Effect = b.mod.Value(a).Effect
	return b.mod.addValue(base)
}

func (b *builder) lowerBinary(id ast.ExprId, e ast.Expr, base Value) ValueId {
	lhs := b.lowerExpr(e.A)
	rhs := b.lowerExpr(e.B)
	if target, ok := b.tyck.ExprOverloadTarget[id]; ok {
		return b.emitOverloadCall(base, target, e.Op, []ValueId{lhs, rhs}, nil)
	}
	base.Kind, base.Op, base.A, base.B = ValBinary, e.Op, lhs, rhs
	base.Effect = JoinEffect(b.mod.Value(lhs).Effect, b.mod.Value(rhs).Effect)
	return b.mod.addValue(base)
}

// emitOverloadCall builds the ValCall a resolved acts operator/method
// dispatch lowers to: the receiver (and any further positional operand)
// becomes the implicit-self-injected argument list, in the candidate's
// parameter order (spec.md §4.3.5, §4.4.2).
func (b *builder) emitOverloadCall(base Value, target ast.StmtId, op string, selfAndArgs []ValueId, labels []string) ValueId {
	argVals := make([]Arg, len(selfAndArgs))
	eff := Unknown
	for i, v := range selfAndArgs {
		label := ""
		if labels != nil && i < len(labels) {
			label = labels[i]
		}
		argVals[i] = Arg{Label: label, Value: v}
		eff = JoinEffect(eff, b.mod.Value(v).Effect)
	}
	begin, count := b.mod.appendArgBatch(argVals)

	sym, _ := b.nr.Stmt(target)
	base.Kind, base.Op = ValCall, op
	base.CalleeDeclStmt = target
	base.CalleeSym = sym
	base.Effect = eff
	base.ArgBegin, base.ArgCount = begin, count
	return b.mod.addValue(base)
}

func (b *builder) lowerBlockExprValue(id ast.ExprId, e ast.Expr, base Value) ValueId {
	s := b.arena.Stmt(e.BlockStmt)
	built := make([]Stmt, 0, len(s.Children))
	var tail ValueId = InvalidValue
	for i, childId := range s.Children {
		built = append(built, b.lowerStmt(childId))
		if i == len(s.Children)-1 && b.arena.Stmt(childId).K == ast.StmtExpr {
			tail = built[len(built)-1].Value
		}
	}
	begin, count := b.mod.appendStmtBatch(built)
	blockId := b.mod.addBlock(Block{Begin: begin, Count: count})

	eff := Pure
	for _, st := range built {
		if b.stmtHasAnyWrite(st) {
			eff = JoinEffect(eff, MayWrite)
		}
	}
	base.Kind, base.Block, base.Tail, base.Effect = ValBlockExpr, blockId, tail, eff
	return b.mod.addValue(base)
}

// lowerCall handles plain calls (callee resolved via fn-overload sets) and
// dot-method calls (callee an ExprField, dispatched via the acts method
// map); both commit through the same TyckResult.ExprOverloadTarget entry
// (spec.md §4.3.4/§4.3.5, §4.4.2).
func (b *builder) lowerCall(id ast.ExprId, e ast.Expr, base Value) ValueId {
	callee := b.arena.Expr(e.Callee)

	var selfVal ValueId = InvalidValue
	if callee.K == ast.ExprField {
		selfVal = b.lowerExpr(callee.A)
	}

	args, groupAt := b.lowerArgStream(e.Args)

	target, hasTarget := b.tyck.ExprOverloadTarget[id]
	eff := Unknown
	for _, a := range args {
		if a.Value != InvalidValue {
			eff = JoinEffect(eff, b.mod.Value(a.Value).Effect)
		}
	}

	if selfVal != InvalidValue {
		shifted := make(map[int]int, len(groupAt))
		for idx, count := range groupAt {
			shifted[idx+1] = count
		}
		groupAt = shifted
		args = append([]Arg{{Label: "", Value: selfVal}}, args...)
		eff = JoinEffect(eff, b.mod.Value(selfVal).Effect)
	}

	begin, count := b.appendArgsWithGroups(args, groupAt)
	base.Kind, base.ArgBegin, base.ArgCount, base.Effect = ValCall, begin, count, eff

	if hasTarget {
		base.CalleeDeclStmt = target
		sym, _ := b.nr.Stmt(target)
		base.CalleeSym = sym
	}
	if owner, ok := b.tyck.ExprCtorOwnerType[id]; ok {
		base.CtorOwnerType, base.CallIsCtor = owner, true
	}
	return b.mod.addValue(base)
}

// lowerArgStream lowers an already-flat AST arg stream (group markers plus
// their contiguous labeled children, spec.md §3.5) into SIR's own flat Arg
// slice. Group markers carry their position and original child count so the
// caller can back-patch an absolute ChildBegin once the batch has been
// appended to the module and a base offset is known.
func (b *builder) lowerArgStream(argIds []ast.ArgId) ([]Arg, map[int]int) {
	out := make([]Arg, 0, len(argIds))
	groupAt := make(map[int]int) // index in out -> original ChildCount
	for _, aid := range argIds {
		a := b.arena.Arg(aid)
		if a.IsGroup {
			groupAt[len(out)] = a.ChildCount
			out = append(out, Arg{IsGroup: true, Value: InvalidValue})
			continue
		}
		out = append(out, Arg{Label: a.Label, Value: b.lowerExpr(a.Value)})
	}
	return out, groupAt
}

// appendArgsWithGroups appends a lowered arg slice as one contiguous batch
// and back-patches every group marker's ChildBegin to the absolute id of
// the position right after it.
func (b *builder) appendArgsWithGroups(args []Arg, groupAt map[int]int) (ArgId, int) {
	begin, count := b.mod.appendArgBatch(args)
	for idx, childCount := range groupAt {
		if childCount > 0 {
			b.mod.setArgChildRange(begin+ArgId(idx), begin+ArgId(idx+1), childCount)
		}
	}
	return begin, count
}
