package tyck

import "gaupel/internal/types"

// assignable implements spec.md §4.3.6's assignability rules: null -> T?
// always; T -> T? never (must be explicit); T -> T identical; never ->
// any; infer-integer -> any integer (subject to fit, checked elsewhere).
// error absorbs: anything involving error is assignable to anything.
func (c *Checker) assignable(from, to types.Id) bool {
	if from == types.Invalid || to == types.Invalid {
		return false
	}
	if from == c.pool.Error() || to == c.pool.Error() {
		return true
	}
	if from == to {
		return true
	}

	fromRec := c.pool.Get(from)
	toRec := c.pool.Get(to)

	if fromRec.Kind == types.KindBuiltin && fromRec.Builtin == types.Never {
		return true
	}
	if fromRec.Kind == types.KindBuiltin && fromRec.Builtin == types.Null {
		return toRec.Kind == types.KindOptional
	}
	if fromRec.Kind == types.KindBuiltin && fromRec.Builtin == types.InferInteger {
		return c.pool.IsInteger(to)
	}
	// Any other case, including T -> T? for non-null, non-identical T,
	// is never implicitly assignable: optional-wrapping is explicit.
	return false
}

// unify implements if-expr branch unification (spec.md §4.3.7): identity
// for equal types, elevates never to the other side, and promotes
// T + null / null + T? to T?.
func (c *Checker) unify(a, b types.Id) (types.Id, bool) {
	if a == b {
		return a, true
	}
	if a == c.pool.Error() || b == c.pool.Error() {
		return c.pool.Error(), true
	}

	aRec := c.pool.Get(a)
	bRec := c.pool.Get(b)

	aNever := aRec.Kind == types.KindBuiltin && aRec.Builtin == types.Never
	bNever := bRec.Kind == types.KindBuiltin && bRec.Builtin == types.Never
	if aNever {
		return b, true
	}
	if bNever {
		return a, true
	}

	aNull := aRec.Kind == types.KindBuiltin && aRec.Builtin == types.Null
	bNull := bRec.Kind == types.KindBuiltin && bRec.Builtin == types.Null
	if aNull && bRec.Kind == types.KindOptional {
		return b, true
	}
	if bNull && aRec.Kind == types.KindOptional {
		return a, true
	}
	if aNull {
		return c.pool.MakeOptional(b), true
	}
	if bNull {
		return c.pool.MakeOptional(a), true
	}
	if aRec.Kind == types.KindOptional && aRec.Inner == b {
		return a, true
	}
	if bRec.Kind == types.KindOptional && bRec.Inner == a {
		return b, true
	}

	return types.Invalid, false
}

// decayBorrow reads through a borrow type for expression-type purposes
// (spec.md §4.3.6): a read of `&T`/`&mut T` has type T.
func (c *Checker) decayBorrow(id types.Id) types.Id {
	r := c.pool.Get(id)
	if r.Kind == types.KindBorrow {
		return r.Pointee
	}
	return id
}
