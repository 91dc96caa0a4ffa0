package sir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaupel/internal/ast"
	"gaupel/internal/sir"
	"gaupel/internal/symbols"
	"gaupel/internal/tyck"
	"gaupel/internal/types"
)

func sp() ast.Span { return ast.Span{File: "t.gau", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1} }

// buildAddAndMain mirrors internal/tyck's own fixture:
//
//	fn add(a: i32, b: i32) -> i32 { return a + b; }
//	fn main() -> unit { let x = 1; let y: i32 = x; let z = add(1, 2); }
func buildAddAndMain(b *ast.Builder) ast.StmtId {
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

	programId := b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{addFn, mainFn}, Span: sp()})
	b.SetProgram(programId)
	return programId
}

func checkAndBuild(t *testing.T, b *ast.Builder, program ast.StmtId) (*tyck.TyckResult, *sir.Module) {
	t.Helper()
	pool := types.NewPool()
	syms := symbols.New()
	nr := ast.NewNameResolveResult()
	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{Pool: pool, Symbols: syms, NameResolve: nr})
	require.True(t, res.Ok, "expected no diagnostics, got: %+v", res.Bag.All())

	mod := sir.BuildSirModule(b.Arena(), program, sir.Options{Pool: pool, Symbols: syms, NameResolve: nr, Tyck: res})
	return res, mod
}

func TestBuildSirModuleLowersBothFuncs(t *testing.T) {
	b := ast.NewBuilder()
	program := buildAddAndMain(b)
	_, mod := checkAndBuild(t, b, program)

	require.Equal(t, 2, mod.NumFuncs())
	assert.Equal(t, "add", mod.Func(0).Name)
	assert.Equal(t, "main", mod.Func(1).Name)
	assert.Len(t, mod.Func(0).Params, 2)
}

func TestBuildSirModuleBinaryAddLowersToValBinary(t *testing.T) {
	b := ast.NewBuilder()
	program := buildAddAndMain(b)
	_, mod := checkAndBuild(t, b, program)

	addFn := mod.Func(0)
	stmts := mod.BlockStmts(addFn.EntryBlock)
	require.Len(t, stmts, 1)
	require.Equal(t, sir.StmtReturn, stmts[0].K)

	sumVal := mod.Value(stmts[0].Value)
	assert.Equal(t, sir.ValBinary, sumVal.Kind)
	assert.Equal(t, "+", sumVal.Op)
	assert.Equal(t, sir.Pure, sumVal.Effect)

	lhs := mod.Value(sumVal.A)
	assert.Equal(t, sir.ValLocal, lhs.Kind)
	assert.Equal(t, sir.Local, lhs.Place)
}

func TestBuildSirModuleCallLowersWithResolvedCallee(t *testing.T) {
	b := ast.NewBuilder()
	program := buildAddAndMain(b)
	_, mod := checkAndBuild(t, b, program)

	mainFn := mod.Func(1)
	stmts := mod.BlockStmts(mainFn.EntryBlock)
	require.Len(t, stmts, 3)

	zDecl := stmts[2]
	require.Equal(t, sir.StmtVarDecl, zDecl.K)

	callVal := mod.Value(zDecl.Init)
	assert.Equal(t, sir.ValCall, callVal.Kind)
	assert.Equal(t, sir.Unknown, callVal.Effect)
	assert.Equal(t, 2, callVal.ArgCount)
	assert.NotEqual(t, ast.InvalidStmt, callVal.CalleeDeclStmt)
}

func TestBuildSirModuleAssignIsMayWriteWithOriginSym(t *testing.T) {
	b := ast.NewBuilder()

	i32Node := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	unitNode := b.AddTypeNode(ast.TypeNode{Name: "unit"})

	xInit := b.IntLit(1, sp())
	xDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "x", IsMut: true, DeclType: i32Node, Init: xInit, Span: sp()})

	xIdent := b.Ident("x", sp())
	two := b.IntLit(2, sp())
	assignExpr := b.AddExpr(ast.Expr{K: ast.ExprAssign, Op: "=", A: xIdent, B: two, Span: sp()})
	assignStmt := b.AddStmt(ast.Stmt{K: ast.StmtExpr, Expr: assignExpr, Span: sp()})

	body := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{xDecl, assignStmt}, Span: sp()})
	fn := b.AddStmt(ast.Stmt{K: ast.StmtFnDecl, Name: "main", RetType: unitNode, Body: body, Span: sp()})
	program := b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{fn}, Span: sp()})
	b.SetProgram(program)

	_, mod := checkAndBuild(t, b, program)

	mainFn := mod.Func(0)
	require.True(t, mainFn.HasAnyWrite)

	stmts := mod.BlockStmts(mainFn.EntryBlock)
	require.Len(t, stmts, 2)

	assignVal := mod.Value(stmts[1].Value)
	assert.Equal(t, sir.ValAssign, assignVal.Kind)
	assert.Equal(t, sir.MayWrite, assignVal.Effect)
	assert.NotEqual(t, symbols.Invalid, assignVal.OriginSym)
}
