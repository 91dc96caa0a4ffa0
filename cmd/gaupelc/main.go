// Command gaupelc is a thin demo driver: it wires a hand-built
// ast.Builder fixture through Tyck and the SIR builder, separately
// drives a hand-built OIR function through the fixed optimization
// pipeline, and prints colorized diagnostics and pass statistics. It
// exists so the three core packages have one real, compiling consumer
// — it is not a parser front end, and it never reads a file from disk.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"gaupel/internal/ast"
	"gaupel/internal/oir"
	"gaupel/internal/sir"
	"gaupel/internal/symbols"
	"gaupel/internal/tyck"
	"gaupel/internal/types"
)

func main() {
	runFrontend()
	fmt.Println()
	runOptimizer()
}

// runFrontend builds the canonical "add + main" fixture used throughout
// this repository's own tests, type-checks it, lowers it to SIR, and
// prints the result.
func runFrontend() {
	color.Cyan("== gaupelc: Tyck + SIR fixture ==")

	b := ast.NewBuilder()
	program := buildAddAndMainFixture(b)

	pool := types.NewPool()
	syms := symbols.New()
	nr := ast.NewNameResolveResult()

	res := tyck.CheckProgram(b.Arena(), program, tyck.Options{
		Pool: pool, Symbols: syms, NameResolve: nr,
	})

	if !res.Ok {
		color.Red("type check failed:")
		for _, d := range res.Bag.All() {
			fmt.Printf("  [%s] %s\n", d.Code, d.Message("en"))
		}
		os.Exit(1)
	}
	color.Green("✓ type check passed (%d diagnostics)", len(res.Bag.All()))

	mod := sir.BuildSirModule(b.Arena(), program, sir.Options{
		Pool: pool, Symbols: syms, NameResolve: nr, Tyck: res,
	})

	for _, f := range mod.Funcs() {
		fmt.Printf("  fn %s: %d params, %d value(s), entry block %d\n",
			f.Name, len(f.Params), mod.NumValues(), f.EntryBlock)
	}
}

// buildAddAndMainFixture constructs:
//
//	fn add(a: i32, b: i32) -> i32 { return a + b; }
//	fn main() -> unit { let x = 1; let y: i32 = x; let z = add(1, 2); }
//
// the same shape internal/sir's own builder tests use, standing in for
// "the real parser's output" without being one.
func buildAddAndMainFixture(b *ast.Builder) ast.StmtId {
	sp := ast.Span{File: "fixture.gau", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 1}

	i32A := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	i32B := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	i32Ret := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	unitNode := b.AddTypeNode(ast.TypeNode{Name: "unit"})

	paramA := b.AddParam(ast.Param{Name: "a", Type: i32A})
	paramB := b.AddParam(ast.Param{Name: "b", Type: i32B})

	sumExpr := b.AddExpr(ast.Expr{K: ast.ExprBinary, Op: "+", A: b.Ident("a", sp), B: b.Ident("b", sp), Span: sp})
	returnStmt := b.AddStmt(ast.Stmt{K: ast.StmtReturn, Value: sumExpr, Span: sp})
	addBody := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{returnStmt}, Span: sp})
	addFn := b.AddStmt(ast.Stmt{
		K: ast.StmtFnDecl, Name: "add", Span: sp,
		Params: []ast.ParamId{paramA, paramB}, PositionalCount: 2,
		RetType: i32Ret, Body: addBody,
	})

	xInit := b.IntLit(1, sp)
	xDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "x", DeclType: ast.InvalidTypeNode, Init: xInit, Span: sp})

	yDeclType := b.AddTypeNode(ast.TypeNode{Name: "i32"})
	yDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "y", DeclType: yDeclType, Init: b.Ident("x", sp), Span: sp})

	arg1 := b.AddArg(ast.Arg{Value: b.IntLit(1, sp)})
	arg2 := b.AddArg(ast.Arg{Value: b.IntLit(2, sp)})
	callExpr := b.AddExpr(ast.Expr{
		K: ast.ExprCall, Callee: b.Ident("add", sp), CallForm: ast.CallPositional,
		Args: []ast.ArgId{arg1, arg2}, Span: sp,
	})
	zDecl := b.AddStmt(ast.Stmt{K: ast.StmtVarDecl, Name: "z", DeclType: ast.InvalidTypeNode, Init: callExpr, Span: sp})

	mainBody := b.AddStmt(ast.Stmt{K: ast.StmtBlock, Children: []ast.StmtId{xDecl, yDecl, zDecl}, Span: sp})
	mainFn := b.AddStmt(ast.Stmt{K: ast.StmtFnDecl, Name: "main", RetType: unitNode, Body: mainBody, Span: sp})

	program := b.AddStmt(ast.Stmt{K: ast.StmtProgram, Children: []ast.StmtId{addFn, mainFn}, Span: sp})
	b.SetProgram(program)
	return program
}

// runOptimizer hand-builds a small OIR function — a loop carrying an
// invariant computation behind a redundant join — and prints the pass
// trace and final counters. On this fixture only global_mem2reg_ssa,
// gvn_cse, licm and dce_pure_insts change anything; the other stages run
// and find nothing to do.
func runOptimizer() {
	color.Cyan("== gaupelc: OIR pipeline demo ==")

	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)
	boolTy := pool.BuiltinId(types.Bool)

	bld := oir.NewBuilder()
	bld.AddFunc("sum_to_n")
	entry := bld.AddBlock()
	n := bld.AddParam(entry, i32)
	zero := bld.ConstInt("0", i32)
	slot := bld.AllocaLocal("acc", i32)
	bld.Store(slot, nil, zero)

	left := bld.AddBlock()
	right := bld.AddBlock()
	join := bld.AddBlock()
	header := bld.AddBlock()
	body := bld.AddBlock()
	exit := bld.AddBlock()

	bld.SetBlock(entry)
	entryCond := bld.ConstBool(true, boolTy)
	bld.SetCondBr(entryCond, left, nil, right, nil)

	bld.SetBlock(left)
	bld.SetBr(join, nil)
	bld.SetBlock(right)
	bld.SetBr(join, nil)

	bld.SetBlock(join)
	bld.SetBr(header, []oir.ValueId{zero})

	bld.SetBlock(header)
	i := bld.AddParam(header, i32)
	loopCond := bld.ConstBool(true, boolTy)
	bld.SetCondBr(loopCond, body, nil, exit, nil)

	bld.SetBlock(body)
	step := bld.Binop("+", n, bld.ConstInt("1", i32), i32) // invariant: n doesn't change in the loop
	acc := bld.Load(slot, nil, i32)
	next := bld.Binop("+", acc, step, i32)
	bld.Store(slot, nil, next)
	bld.SetBr(header, []oir.ValueId{i})

	bld.SetBlock(exit)
	result := bld.Load(slot, nil, i32)
	bld.SetRet(true, result)

	m := bld.Module()
	if violations := oir.Verify(m); len(violations) > 0 {
		color.Red("fixture failed verification before optimization:")
		for _, v := range violations {
			fmt.Printf("  %s\n", v)
		}
		os.Exit(1)
	}

	pipeline := oir.NewPipeline()
	if violations := pipeline.Run(m); len(violations) > 0 {
		color.Red("pipeline left the module unverifiable:")
		for _, v := range violations {
			fmt.Printf("  %s\n", v)
		}
		os.Exit(1)
	}
	color.Green("✓ pipeline converged, module still verifies")

	for _, st := range pipeline.Trace {
		fmt.Printf("  %-28s kept %d\n", st.Name, st.Kept)
	}

	s := m.Stats
	fmt.Println(color.YellowString("  stats:"))
	fmt.Printf("    critical_edges_split   = %d\n", s.CriticalEdgesSplit)
	fmt.Printf("    loop_canonicalized     = %d\n", s.LoopCanonicalized)
	fmt.Printf("    mem2reg_promoted_slots = %d\n", s.Mem2regPromotedSlots)
	fmt.Printf("    mem2reg_phi_params     = %d\n", s.Mem2regPhiParams)
	fmt.Printf("    gvn_cse_eliminated     = %d\n", s.GvnCseEliminated)
	fmt.Printf("    licm_hoisted           = %d\n", s.LicmHoisted)
	fmt.Printf("    escape_pack_elided     = %d\n", s.EscapePackElided)
	fmt.Printf("    dce_removed            = %d\n", s.DceRemoved)
}
