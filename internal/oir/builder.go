package oir

import "gaupel/internal/types"

// Builder constructs an OIR Module imperatively. SIR → OIR lowering is
// an external collaborator outside this spec's scope (spec.md §2); this
// builder is the construction surface fixtures and the demo driver use
// to hand-assemble an OIR module directly, the way internal/ast's
// Builder hand-assembles an AST.
type Builder struct {
	mod    *Module
	curFn  FuncId
	curBlk BlockId
}

// NewBuilder creates a builder over a fresh, empty module.
func NewBuilder() *Builder {
	return &Builder{mod: NewModule(), curFn: InvalidFunc, curBlk: InvalidBlock}
}

// Module returns the module under construction.
func (b *Builder) Module() *Module { return b.mod }

// AddFunc starts a new function and makes it current.
func (b *Builder) AddFunc(name string) FuncId {
	id := b.mod.addFunc(Func{Name: name})
	b.curFn = id
	return id
}

// AddBlock appends a new, empty block to the current function and
// makes it current.
func (b *Builder) AddBlock() BlockId {
	id := b.mod.addBlock(Block{})
	fn := b.mod.Func(b.curFn)
	fn.Blocks = append(fn.Blocks, id)
	b.mod.SetFunc(b.curFn, fn)
	b.curBlk = id
	return id
}

// SetBlock switches the current insertion block (e.g. to finish an
// earlier block after building a later one).
func (b *Builder) SetBlock(id BlockId) { b.curBlk = id }

// AddParam appends a typed block parameter to the given block and
// returns its value id.
func (b *Builder) AddParam(blk BlockId, ty types.Id) ValueId {
	blkRec := b.mod.Block(blk)
	idx := int32(len(blkRec.Params))
	v := b.mod.addValue(Value{Type: ty, Effect: EffPure, DefBlock: blk, DefParamIdx: idx})
	blkRec.Params = append(blkRec.Params, v)
	b.mod.SetBlock(blk, blkRec)
	return v
}

func (b *Builder) emit(inst Inst, resultType types.Id, producesResult bool) (InstId, ValueId) {
	iid := InstId(len(b.mod.insts)) // pre-assign so the Value's DefInst matches addInst's id
	result := InvalidValue
	if producesResult {
		result = b.mod.addValue(Value{Type: resultType, Effect: inst.Effect, DefInst: iid, DefParamIdx: -1})
	}
	inst.Result = result
	gotId := b.mod.addInst(inst)
	blk := b.mod.Block(b.curBlk)
	blk.Insts = append(blk.Insts, gotId)
	b.mod.SetBlock(b.curBlk, blk)
	return gotId, result
}

// ConstInt appends a const-int instruction and returns its result value.
func (b *Builder) ConstInt(text string, ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstConstInt, Effect: EffPure, IntVal: text}, ty, true)
	return v
}

// ConstBool appends a const-bool instruction.
func (b *Builder) ConstBool(val bool, ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstConstBool, Effect: EffPure, BoolVal: val}, ty, true)
	return v
}

// ConstNull appends a const-null instruction.
func (b *Builder) ConstNull(ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstConstNull, Effect: EffPure}, ty, true)
	return v
}

// AllocaLocal appends a stack-slot allocation and returns the value
// naming that slot (used as the Slot operand of Load/Store).
func (b *Builder) AllocaLocal(name string, ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstAllocaLocal, Effect: EffPure, SlotName: name, SlotType: ty}, ty, true)
	return v
}

// Unary appends a unary-op instruction.
func (b *Builder) Unary(op string, a ValueId, ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstUnary, Effect: EffPure, Op: op, A: a}, ty, true)
	return v
}

// Binop appends a binary-op instruction.
func (b *Builder) Binop(op string, a, bOperand ValueId, ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstBinop, Effect: EffPure, Op: op, A: a, B: bOperand}, ty, true)
	return v
}

// Cast appends a cast instruction.
func (b *Builder) Cast(a ValueId, to types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstCast, Effect: EffPure, A: a, CastTo: to}, to, true)
	return v
}

// Call appends a call instruction. Calls are conservatively Call-effect
// and never considered constant or loop-invariant without proof.
func (b *Builder) Call(fn FuncId, args []ValueId, retType types.Id, hasResult bool) ValueId {
	_, v := b.emit(Inst{Kind: InstCall, Effect: EffCall, CalleeFunc: fn, Args: append([]ValueId(nil), args...)}, retType, hasResult)
	return v
}

// Load appends a load from a slot (optionally through a field/index
// projection path).
func (b *Builder) Load(slot ValueId, path []string, ty types.Id) ValueId {
	eff := EffMayReadMem
	_, v := b.emit(Inst{Kind: InstLoad, Effect: eff, Slot: slot, Path: append([]string(nil), path...)}, ty, true)
	return v
}

// Store appends a store to a slot. Stores produce no result.
func (b *Builder) Store(slot ValueId, path []string, val ValueId) InstId {
	id, _ := b.emit(Inst{Kind: InstStore, Effect: EffMayWriteMem, Slot: slot, Path: append([]string(nil), path...), Value: val}, types.Invalid, false)
	return id
}

// FuncRef appends a reference to another function.
func (b *Builder) FuncRef(fn FuncId, ty types.Id) ValueId {
	_, v := b.emit(Inst{Kind: InstFuncRef, Effect: EffPure, RefFunc: fn}, ty, true)
	return v
}

// SetRet sets the current block's terminator to a return.
func (b *Builder) SetRet(hasValue bool, val ValueId) {
	blk := b.mod.Block(b.curBlk)
	blk.Term = Terminator{Kind: TermRet, HasValue: hasValue, Value: val}
	blk.HasTerm = true
	b.mod.SetBlock(b.curBlk, blk)
}

// SetBr sets the current block's terminator to an unconditional branch.
func (b *Builder) SetBr(target BlockId, args []ValueId) {
	blk := b.mod.Block(b.curBlk)
	blk.Term = Terminator{Kind: TermBr, Target: target, Args: append([]ValueId(nil), args...)}
	blk.HasTerm = true
	b.mod.SetBlock(b.curBlk, blk)
}

// SetCondBr sets the current block's terminator to a conditional branch.
func (b *Builder) SetCondBr(cond ValueId, thenBB BlockId, thenArgs []ValueId, elseBB BlockId, elseArgs []ValueId) {
	blk := b.mod.Block(b.curBlk)
	blk.Term = Terminator{
		Kind: TermCondBr, Cond: cond,
		ThenBB: thenBB, ThenArgs: append([]ValueId(nil), thenArgs...),
		ElseBB: elseBB, ElseArgs: append([]ValueId(nil), elseArgs...),
	}
	blk.HasTerm = true
	b.mod.SetBlock(b.curBlk, blk)
}
