package tyck

import (
	"math/big"

	"gaupel/internal/ast"
	"gaupel/internal/diag"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// integerBounds gives the [min, max] representable range for a signed/
// unsigned integer builtin, used by fit-checking (spec.md §4.3.3).
func integerBounds(b types.Builtin) (min, max *big.Int) {
	bits := map[types.Builtin]int{
		types.I8: 8, types.I16: 16, types.I32: 32, types.I64: 64, types.I128: 128,
		types.U8: 8, types.U16: 16, types.U32: 32, types.U64: 64, types.U128: 128,
		types.Isize: 64, types.Usize: 64,
	}[b]
	unsigned := map[types.Builtin]bool{
		types.U8: true, types.U16: true, types.U32: true, types.U64: true, types.U128: true, types.Usize: true,
	}[b]

	if unsigned {
		lo := big.NewInt(0)
		hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
		return lo, hi
	}
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)))
	return lo, hi
}

func fitsBuiltin(v *big.Int, b types.Builtin) bool {
	lo, hi := integerBounds(b)
	return v.Cmp(lo) >= 0 && v.Cmp(hi) <= 0
}

// recordPendingInt anchors a fresh infer-integer literal at its
// expression id, and optionally at a bound symbol (spec.md §3.4).
func (c *Checker) recordPendingInt(exprId ast.ExprId, value *big.Int, span ast.Span, sym symbols.Id) {
	p := &pendingInt{Value: value, Span: span, ExprIds: []ast.ExprId{exprId}}
	c.pendingIntExpr[exprId] = p
	if sym != symbols.Invalid {
		c.pendingIntSym[sym] = p
	}
	c.res.setType(exprId, c.pool.BuiltinId(types.InferInteger))
}

// linkPendingExpr records that exprId also observes an already-pending
// literal (e.g. reading a variable before its inferred type is known), so
// it gets back-patched alongside every other observer once p resolves.
func (c *Checker) linkPendingExpr(exprId ast.ExprId, p *pendingInt) {
	c.pendingIntExpr[exprId] = p
	p.ExprIds = append(p.ExprIds, exprId)
}

// resolveInferIntInContext resolves the pending literal that exprId
// itself observes (the literal, or an identifier linked to it) to an
// expected integer type and verifies the literal's value fits (spec.md
// §4.3.3). Float contexts are rejected with an explicit
// no-implicit-conversion diagnostic. The expected type is not propagated
// into composite expressions: an if-expression or block-expression over
// pending literals is not itself pending, so its branch literals are left
// to finalizePendingIntegers.
func (c *Checker) resolveInferIntInContext(exprId ast.ExprId, expected types.Id) types.Id {
	pending, ok := c.pendingIntExpr[exprId]
	if !ok {
		return c.res.typeOf(exprId)
	}
	if pending.Resolved {
		return pending.ResolvedType
	}

	expRec := c.pool.Get(expected)
	if expRec.Kind == types.KindBuiltin && isFloatBuiltin(expRec.Builtin) {
		c.res.Bag.Add(diag.IntToFloat(toDiagSpan(pending.Span), "infer-integer", c.pool.ToString(expected)))
		c.settlePendingInt(pending, c.pool.Error())
		return pending.ResolvedType
	}
	if expRec.Kind != types.KindBuiltin || !isIntegerBuiltin(expRec.Builtin) {
		return c.res.typeOf(exprId)
	}
	if !fitsBuiltin(pending.Value, expRec.Builtin) {
		c.res.Bag.Add(diag.IntLiteralDoesNotFit(toDiagSpan(pending.Span), pending.Value.String(), c.pool.ToString(expected)))
		c.settlePendingInt(pending, c.pool.Error())
		return pending.ResolvedType
	}

	c.settlePendingInt(pending, expected)
	return expected
}

// settlePendingInt marks a pending literal resolved and back-patches the
// type of every ExprId that ever observed it.
func (c *Checker) settlePendingInt(p *pendingInt, resolved types.Id) {
	p.Resolved = true
	p.ResolvedType = resolved
	for _, id := range p.ExprIds {
		c.res.setType(id, resolved)
	}
}

// finalizePendingIntegers runs strictly after the full second pass
// (spec.md §5 ordering): any still-unresolved pending integer is
// finalized to the smallest signed type that fits.
func (c *Checker) finalizePendingIntegers() {
	for _, p := range c.pendingIntExpr {
		if p.Resolved {
			continue
		}
		c.settlePendingInt(p, c.smallestSignedFit(p.Value))
	}
	for sym, p := range c.pendingIntSym {
		if p.ResolvedType != types.Invalid {
			c.syms.UpdateDeclaredType(sym, p.ResolvedType)
		}
	}
}

func (c *Checker) smallestSignedFit(v *big.Int) types.Id {
	for _, b := range types.SignedIntegerFitOrder() {
		if fitsBuiltin(v, b) {
			return c.pool.BuiltinId(b)
		}
	}
	// Exceeds i128: still report the largest signed type; overflow is
	// caught structurally by fitsBuiltin returning false for every
	// candidate, which cannot actually happen for a parsed i128-range
	// literal, but keeps this function total.
	return c.pool.BuiltinId(types.I128)
}

func isIntegerBuiltin(b types.Builtin) bool {
	switch b {
	case types.I8, types.I16, types.I32, types.I64, types.I128,
		types.U8, types.U16, types.U32, types.U64, types.U128,
		types.Isize, types.Usize, types.InferInteger:
		return true
	}
	return false
}

func isFloatBuiltin(b types.Builtin) bool {
	switch b {
	case types.F32, types.F64, types.F128:
		return true
	}
	return false
}
