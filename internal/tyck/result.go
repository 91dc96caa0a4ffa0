// Package tyck implements the type checker: two-pass program checking
// with deferred integer resolution, overload resolution, acts-based
// operator/method dispatch, optional/null/borrow rules, and control-flow
// typing (spec.md §4.3).
package tyck

import (
	"gaupel/internal/ast"
	"gaupel/internal/diag"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// TyckResult is check_program's public contract (spec.md §4.3.1).
type TyckResult struct {
	Ok    bool
	Bag   *diag.Bag
	Errors []diag.Diagnostic // convenience alias for Bag.All(), error-severity only

	ExprTypes          []types.Id                 // dense ExprId -> type
	ExprOverloadTarget map[ast.ExprId]ast.StmtId  // ExprId -> chosen callee FnDecl StmtId
	ExprCtorOwnerType  map[ast.ExprId]types.Id    // ExprId -> owner type, for a field-init (constructor) expression
	FnQualifiedNames   map[ast.StmtId]string      // FnDecl StmtId -> qualified name
}

func newResult(numExprs int) *TyckResult {
	exprTypes := make([]types.Id, numExprs)
	for i := range exprTypes {
		exprTypes[i] = types.Invalid
	}
	return &TyckResult{
		Ok:                 true,
		Bag:                diag.NewBag(),
		ExprTypes:          exprTypes,
		ExprOverloadTarget: make(map[ast.ExprId]ast.StmtId),
		ExprCtorOwnerType:  make(map[ast.ExprId]types.Id),
		FnQualifiedNames:   make(map[ast.StmtId]string),
	}
}

func (r *TyckResult) setType(id ast.ExprId, t types.Id) {
	if int(id) >= len(r.ExprTypes) {
		grown := make([]types.Id, id+1)
		copy(grown, r.ExprTypes)
		for i := len(r.ExprTypes); i < len(grown); i++ {
			grown[i] = types.Invalid
		}
		r.ExprTypes = grown
	}
	r.ExprTypes[id] = t
}

func (r *TyckResult) typeOf(id ast.ExprId) types.Id {
	if id == ast.InvalidExpr || int(id) >= len(r.ExprTypes) {
		return types.Invalid
	}
	return r.ExprTypes[id]
}

// Options configures a check_program run. Symbols and Pool are owned by
// the caller for the duration of the compilation unit (spec.md §5).
type Options struct {
	Symbols     *symbols.Table
	Pool        *types.Pool
	NameResolve *ast.NameResolveResult
	Lang        string // "en" | "ko", for diagnostic rendering convenience
}
