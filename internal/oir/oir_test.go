package oir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"gaupel/internal/oir"
	"gaupel/internal/types"
)

func TestBuilderProducesVerifiableModule(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	bld := oir.NewBuilder()
	bld.AddFunc("add")
	entry := bld.AddBlock()
	a := bld.AddParam(entry, i32)
	b := bld.AddParam(entry, i32)
	sum := bld.Binop("+", a, b, i32)
	bld.SetRet(true, sum)

	m := bld.Module()
	require.Empty(t, oir.Verify(m))
}

func TestVerifyDetectsUseBeforeDef(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)
	boolTy := pool.BuiltinId(types.Bool)

	bld := oir.NewBuilder()
	bld.AddFunc("bad")
	entry := bld.AddBlock()
	cond := bld.ConstBool(true, boolTy)

	block1 := bld.AddBlock()
	v := bld.ConstInt("7", i32)
	bld.SetRet(true, v)

	block2 := bld.AddBlock()
	two := bld.ConstInt("2", i32)
	sum := bld.Binop("+", v, two, i32) // v is defined on a sibling branch, not available here
	bld.SetRet(true, sum)

	bld.SetBlock(entry)
	bld.SetCondBr(cond, block1, nil, block2, nil)

	violations := oir.Verify(bld.Module())
	require.NotEmpty(t, violations)
}

func TestVerifyDetectsEdgeArityMismatch(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	bld := oir.NewBuilder()
	bld.AddFunc("badarity")
	entry := bld.AddBlock()
	target := bld.AddBlock()
	tp := bld.AddParam(target, i32)
	bld.SetRet(true, tp)

	bld.SetBlock(entry)
	bld.SetBr(target, nil) // target wants one arg, this edge carries none

	violations := oir.Verify(bld.Module())
	require.NotEmpty(t, violations)
}

func TestCanonicalizeLoopsInsertsPreheader(t *testing.T) {
	pool := types.NewPool()
	boolTy := pool.BuiltinId(types.Bool)

	bld := oir.NewBuilder()
	fn := bld.AddFunc("loopy")
	start := bld.AddBlock()
	a := bld.AddBlock()
	b := bld.AddBlock()
	header := bld.AddBlock()
	body := bld.AddBlock()
	exit := bld.AddBlock()

	bld.SetBlock(a)
	bld.SetBr(header, nil)
	bld.SetBlock(b)
	bld.SetBr(header, nil)

	bld.SetBlock(header)
	loopCond := bld.ConstBool(true, boolTy)
	bld.SetCondBr(loopCond, body, nil, exit, nil)

	bld.SetBlock(body)
	bld.SetBr(header, nil)

	bld.SetBlock(exit)
	bld.SetRet(false, oir.InvalidValue)

	bld.SetBlock(start)
	startCond := bld.ConstBool(true, boolTy)
	bld.SetCondBr(startCond, a, nil, b, nil)

	m := bld.Module()
	f := m.Func(fn)

	dom := oir.ComputeDominance(m, f)
	loops := oir.FindLoops(m, f, dom)
	require.Len(t, loops, 1)
	_, ok := loops[0].HasCanonicalPreheader(m, dom)
	require.False(t, ok, "header starts with two outside predecessors, not one")

	violations := oir.RunFixedPipeline(m)
	require.Empty(t, violations)

	f = m.Func(fn)
	dom = oir.ComputeDominance(m, f)
	loops = oir.FindLoops(m, f, dom)
	require.Len(t, loops, 1)
	_, ok = loops[0].HasCanonicalPreheader(m, dom)
	require.True(t, ok, "canonicalize_loops should have merged both preds into one preheader")
}

func TestGlobalMem2regPromotesSlotAcrossBranches(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)
	boolTy := pool.BuiltinId(types.Bool)

	bld := oir.NewBuilder()
	bld.AddFunc("promote")
	entry := bld.AddBlock()
	slot := bld.AllocaLocal("x", i32)
	one := bld.ConstInt("1", i32)
	bld.Store(slot, nil, one)
	cond := bld.ConstBool(true, boolTy)

	thenBB := bld.AddBlock()
	two := bld.ConstInt("2", i32)
	bld.Store(slot, nil, two)

	elseBB := bld.AddBlock()

	merge := bld.AddBlock()
	loaded := bld.Load(slot, nil, i32)
	bld.SetRet(true, loaded)

	bld.SetBlock(thenBB)
	bld.SetBr(merge, nil)
	bld.SetBlock(elseBB)
	bld.SetBr(merge, nil)
	bld.SetBlock(entry)
	bld.SetCondBr(cond, thenBB, nil, elseBB, nil)

	m := bld.Module()
	violations := oir.RunFixedPipeline(m)
	require.Empty(t, violations)
	require.GreaterOrEqual(t, m.Stats.Mem2regPromotedSlots, 1)
	require.GreaterOrEqual(t, m.Stats.Mem2regPhiParams, 1)
}

func TestSplitCriticalEdges(t *testing.T) {
	pool := types.NewPool()
	boolTy := pool.BuiltinId(types.Bool)

	bld := oir.NewBuilder()
	bld.AddFunc("crit")
	entry := bld.AddBlock()
	shared := bld.AddBlock()
	other := bld.AddBlock()
	exit := bld.AddBlock()

	bld.SetBlock(shared)
	bld.SetBr(exit, nil)
	bld.SetBlock(other)
	bld.SetBr(shared, nil) // shared now has two predecessors: entry and other
	bld.SetBlock(exit)
	bld.SetRet(false, oir.InvalidValue)

	bld.SetBlock(entry)
	cond := bld.ConstBool(true, boolTy)
	bld.SetCondBr(cond, shared, nil, other, nil) // entry has two successors: shared and other

	m := bld.Module()
	violations := oir.RunFixedPipeline(m)
	require.Empty(t, violations)
	require.GreaterOrEqual(t, m.Stats.CriticalEdgesSplit, 1)
}

func TestLicmHoistsLoopInvariantComputation(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)
	boolTy := pool.BuiltinId(types.Bool)

	bld := oir.NewBuilder()
	bld.AddFunc("invariant")
	entry := bld.AddBlock()
	x := bld.AddParam(entry, i32)
	zero := bld.ConstInt("0", i32)

	preheader := bld.AddBlock()
	header := bld.AddBlock()
	body := bld.AddBlock()
	exit := bld.AddBlock()

	bld.SetBlock(entry)
	bld.SetBr(preheader, nil)

	bld.SetBlock(preheader)
	bld.SetBr(header, []oir.ValueId{zero})

	bld.SetBlock(header)
	i := bld.AddParam(header, i32)
	loopCond := bld.ConstBool(true, boolTy)
	bld.SetCondBr(loopCond, body, nil, exit, nil)

	bld.SetBlock(body)
	one := bld.ConstInt("1", i32)
	_ = bld.Binop("+", x, one, i32) // invariant: x is defined outside the loop body
	bld.SetBr(header, []oir.ValueId{i})

	bld.SetBlock(exit)
	bld.SetRet(true, i)

	m := bld.Module()
	violations := oir.RunFixedPipeline(m)
	require.Empty(t, violations)
	require.GreaterOrEqual(t, m.Stats.LicmHoisted, 1)
}

type corruptingPass struct{}

func (corruptingPass) Name() string        { return "test_corrupt" }
func (corruptingPass) Description() string { return "deliberately breaks V1 for rollback testing" }
func (corruptingPass) Apply(m *oir.Module) bool {
	f := m.Func(0)
	if len(f.Blocks) == 0 {
		return false
	}
	bid := f.Blocks[0]
	blk := m.Block(bid)
	blk.Term = oir.Terminator{Kind: oir.TermRet, HasValue: true, Value: oir.ValueId(999999)}
	blk.HasTerm = true
	m.SetBlock(bid, blk)
	return true
}

func TestGuardedPassRollsBackOnVerifierViolation(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	bld := oir.NewBuilder()
	bld.AddFunc("f")
	bld.AddBlock()
	v := bld.ConstInt("1", i32)
	bld.SetRet(true, v)

	m := bld.Module()
	before := m.Clone()

	kept := oir.RunGuardedPassOnce(corruptingPass{}, m, true)
	require.False(t, kept)
	require.Empty(t, oir.Verify(m))

	diff := cmp.Diff(before, m, cmp.AllowUnexported(oir.Module{}, oir.Value{}, oir.Inst{}, oir.Block{}, oir.Func{}, oir.Terminator{}))
	require.Empty(t, diff, "module must be byte-for-byte restored after a rolled-back pass")
}

func TestPipelineIsIdempotent(t *testing.T) {
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	bld := oir.NewBuilder()
	bld.AddFunc("idem")
	entry := bld.AddBlock()
	a := bld.ConstInt("2", i32)
	b := bld.ConstInt("3", i32)
	sum := bld.Binop("+", a, b, i32)
	bld.SetRet(true, sum)

	m := bld.Module()
	require.Empty(t, oir.RunFixedPipeline(m))

	after := m.Clone()
	require.Empty(t, oir.RunFixedPipeline(m))

	diff := cmp.Diff(after, m, cmp.AllowUnexported(oir.Module{}, oir.Value{}, oir.Inst{}, oir.Block{}, oir.Func{}, oir.Terminator{}))
	require.Empty(t, diff, "re-running the pipeline on an already-optimized module must be a no-op")
}
