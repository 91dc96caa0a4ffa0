package tyck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaupel/internal/ast"
	"gaupel/internal/symbols"
	"gaupel/internal/tyck"
	"gaupel/internal/types"
)

func sp() ast.Span { return ast.Span{File: "t.gau", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1} }

// buildAddAndMain constructs:
//
//	fn add(a: i32, b: i32) -> i32 { return a + b }
//	fn main() -> unit { let x = 1; let y: i32 = x; let z = add(1, 2) }
func buildAddAndMain(b *ast.Builder) (programId ast.StmtId, callExpr, xInit, zInit ast.ExprId) {
	i32Node := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	i32Node2 := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	i32NodeRet := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	unitNode := b.AddTypeNode(ast.TypeNode{Name: "unit"})

	paramA := b.AddParam(ast.Param{Name: "a", Type: i32Node})
	paramB := b.AddParam(ast.Param{Name: "b", Type: i32Node2})

	aIdent := b.Ident("a", sp())
	bIdent := b.Ident("b", sp())
	sumExpr := b.AddExpr(ast.Expr{K: ast.ExprBinary, Op: "+", A: aIdent, B: bIdent, Span: sp()})
	returnStmt := b.AddStmt(ast.Stmt{K: ast.StmtReturn, Value: sumExpr, Span: sp()})
	addBody := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{returnStmt}, Span: sp()})
	addFn := b.AddStmt(ast.Stmt{
		K: ast.StmtFnDecl, Name: "add", Span: sp(),
		Params: []ast.ParamId{paramA, paramB}, PositionalCount: 2,
		RetType: i32NodeRet, Body: addBody,
	})

	xInitExpr := b.IntLit(1, sp())
	xDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "x", DeclType: ast.InvalidTypeNode, Init: xInitExpr, Span: sp()})

	yDeclType := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	xIdentForY := b.Ident("x", sp())
	yDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "y", DeclType: yDeclType, Init: xIdentForY, Span: sp()})

	addCallee := b.Ident("add", sp())
	arg1 := b.IntLit(1, sp())
	arg2 := b.IntLit(2, sp())
	argId1 := b.AddArg(ast.Arg{Value: arg1})
	argId2 := b.AddArg(ast.Arg{Value: arg2})
	callExprId := b.AddExpr(ast.Expr{
		K: ast.ExprCall, Callee: addCallee, CallForm: ast.CallPositional,
		Args: []ast.ArgId{argId1, argId2}, Span: sp(),
	})
	zDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "z", DeclType: ast.InvalidTypeNode, Init: callExprId, Span: sp()})

	mainBody := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{xDecl, yDecl, zDecl}, Span: sp()})
	mainFn := b.AddStmt(ast.Stmt{K: ast.StmtFnDecl, Name: "main", RetType: unitNode, Body: mainBody, Span: sp()})

	programId = b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{addFn, mainFn}, Span: sp()})
	b.SetProgram(programId)
	return programId, callExprId, xInitExpr, arg1
}

func TestOverloadResolutionByPositionalTypes(t *testing.T) {
	b := ast.NewBuilder()
	program, callExpr, _, _ := buildAddAndMain(b)

	pool := types.NewPool()
	syms := symbols.New()
	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{Pool: pool, Symbols: syms, NameResolve: ast.NewNameResolveResult()})

	require.True(t, res.Ok, "expected no diagnostics, got: %+v", res.Bag.All())
	_, ok := res.ExprOverloadTarget[callExpr]
	assert.True(t, ok, "expected add(1, 2) to resolve to a committed overload")
	assert.Equal(t, pool.BuiltinId(types.I32), res.ExprTypes[callExpr])
}

func TestDeferredIntegerLiteralFinalizesToDeclaredType(t *testing.T) {
	b := ast.NewBuilder()
	program, _, xInit, _ := buildAddAndMain(b)

	pool := types.NewPool()
	syms := symbols.New()
	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{Pool: pool, Symbols: syms, NameResolve: ast.NewNameResolveResult()})

	require.True(t, res.Ok)
	assert.Equal(t, pool.BuiltinId(types.I32), res.ExprTypes[xInit])
}

func TestNullCoalesceRhsMismatchIsReported(t *testing.T) {
	b := ast.NewBuilder()

	optionalI32 := b.AddTypeNode(ast.TypeNode{Name: "i32", IsOptional: true})
	maybeDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "maybe", DeclType: optionalI32, Init: ast.InvalidExpr, Span: sp()})

	maybeIdent := b.Ident("maybe", sp())
	rhsText := b.AddExpr(ast.Expr{K: ast.ExprStringLit, StringVal: "oops", Span: sp()})
	coalesce := b.AddExpr(ast.Expr{K: ast.ExprBinary, Op: "??", A: maybeIdent, B: rhsText, Span: sp()})
	exprStmt := b.AddStmt(ast.Stmt{K: ast.StmtExpr, Expr: coalesce, Span: sp()})

	unitNode := b.AddTypeNode(ast.TypeNode{Name: "unit"})
	body := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{maybeDecl, exprStmt}, Span: sp()})
	fn := b.AddStmt(ast.Stmt{K: ast.StmtFnDecl, Name: "f", RetType: unitNode, Body: body, Span: sp()})
	program := b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{fn}, Span: sp()})
	b.SetProgram(program)

	pool := types.NewPool()
	syms := symbols.New()
	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{Pool: pool, Symbols: syms, NameResolve: ast.NewNameResolveResult()})

	require.False(t, res.Ok)
	found := false
	for _, d := range res.Errors {
		if d.Code == "null-coalesce-rhs-mismatch" {
			found = true
		}
	}
	assert.True(t, found, "expected a null-coalesce-rhs-mismatch diagnostic")
}

func TestBreakOutsideLoopIsReported(t *testing.T) {
	b := ast.NewBuilder()
	breakStmt := b.AddStmt(ast.Stmt{K: ast.StmtBreak, Value: ast.InvalidExpr, Span: sp()})
	unitNode := b.AddTypeNode(ast.TypeNode{Name: "unit"})
	body := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{breakStmt}, Span: sp()})
	fn := b.AddStmt(ast.Stmt{K: ast.StmtFnDecl, Name: "f", RetType: unitNode, Body: body, Span: sp()})
	program := b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{fn}, Span: sp()})
	b.SetProgram(program)

	pool := types.NewPool()
	syms := symbols.New()
	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{Pool: pool, Symbols: syms, NameResolve: ast.NewNameResolveResult()})

	require.False(t, res.Ok)
	assert.Equal(t, "break-outside-loop", res.Errors[0].Code)
}

func TestOverloadDeclConflictOnIdenticalCallShape(t *testing.T) {
	b := ast.NewBuilder()

	buildDup := func() ast.StmtId {
		i32Node := b.AddTypeNode(ast.TypeNode{Name: "i32"})
		i32Ret := b.AddTypeNode(ast.TypeNode{Name: "i32"})
		param := b.AddParam(ast.Param{Name: "a", Type: i32Node})
		aIdent := b.Ident("a", sp())
		ret := b.AddStmt(ast.Stmt{K: ast.StmtReturn, Value: aIdent, Span: sp()})
		body := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{ret}, Span: sp()})
		return b.AddStmt(ast.Stmt{
			K: ast.StmtFnDecl, Name: "dup", Span: sp(),
			Params: []ast.ParamId{param}, PositionalCount: 1,
			RetType: i32Ret, Body: body,
		})
	}

	fn1 := buildDup()
	fn2 := buildDup()
	program := b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{fn1, fn2}, Span: sp()})
	b.SetProgram(program)

	pool := types.NewPool()
	syms := symbols.New()
	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{Pool: pool, Symbols: syms, NameResolve: ast.NewNameResolveResult()})

	require.False(t, res.Ok)
	found := false
	for _, d := range res.Errors {
		if d.Code == "overload-decl-conflict" {
			found = true
		}
	}
	assert.True(t, found, "expected an overload-decl-conflict diagnostic, got: %+v", res.Errors)
}
