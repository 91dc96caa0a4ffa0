package oir

import "gaupel/internal/types"

// EffectTag classifies an instruction's side effect (spec.md §3.6).
type EffectTag uint8

const (
	EffPure EffectTag = iota
	EffMayReadMem
	EffMayWriteMem
	EffCall
	EffMayTrap
)

// Value is one arena-resident SSA value. Exactly one of two shapes
// applies (spec.md §3.6's def_a/def_b convention): either it is an
// instruction result (DefInst valid, DefParamIdx < 0) or a block
// parameter (DefBlock valid, DefParamIdx >= 0, naming its position in
// that block's Params).
type Value struct {
	Id     ValueId
	Type   types.Id
	Effect EffectTag

	DefInst     InstId
	DefBlock    BlockId
	DefParamIdx int32
}

// IsBlockParam reports whether this value is a block parameter rather
// than an instruction result.
func (v Value) IsBlockParam() bool { return v.DefParamIdx >= 0 }

// InstKind discriminates the tagged-union Inst payloads (spec.md §3.6).
type InstKind uint8

const (
	InstConstInt InstKind = iota
	InstConstBool
	InstConstText
	InstConstNull
	InstAllocaLocal
	InstUnary
	InstBinop
	InstCast
	InstCall
	InstIndex
	InstField
	InstLoad
	InstStore
	InstFuncRef
	InstGlobalRef
)

// Inst is one arena-resident instruction. Not every field applies to
// every Kind; callers dispatch on Kind first.
type Inst struct {
	Id     InstId
	Kind   InstKind
	Effect EffectTag
	Result ValueId // InvalidValue if the inst produces no value (store, etc.)

	// const-int / const-bool / const-text
	IntVal  string
	BoolVal bool
	TextVal string

	// alloca-local
	SlotName string
	SlotType types.Id

	// unary / binop / cast
	Op     string
	A, B   ValueId
	CastTo types.Id

	// call
	CalleeFunc FuncId
	Args       []ValueId

	// index / field
	Base    ValueId
	IndexOp ValueId
	Field   string

	// load / store: Slot is the alloca-local result value that names the
	// memory location; Path is its field/[*]-index projection chain.
	Slot  ValueId
	Path  []string
	Value ValueId // store's written operand

	// func-ref / global-ref
	RefFunc   FuncId
	RefGlobal string
}

// TermKind discriminates the tagged-union Terminator payloads.
type TermKind uint8

const (
	TermRet TermKind = iota
	TermBr
	TermCondBr
)

// Terminator is one block's control-flow exit (spec.md §3.6).
type Terminator struct {
	Kind TermKind

	// Ret
	HasValue bool
	Value    ValueId

	// Br
	Target BlockId
	Args   []ValueId

	// CondBr
	Cond     ValueId
	ThenBB   BlockId
	ThenArgs []ValueId
	ElseBB   BlockId
	ElseArgs []ValueId
}

// Successors returns every block this terminator may transfer control
// to, in a stable order.
func (t Terminator) Successors() []BlockId {
	switch t.Kind {
	case TermBr:
		return []BlockId{t.Target}
	case TermCondBr:
		return []BlockId{t.ThenBB, t.ElseBB}
	default:
		return nil
	}
}

// EdgeArgs returns the argument vector this terminator passes across
// the edge to the given successor, matching Successors' order. Callers
// must only pass a target returned by Successors.
func (t Terminator) EdgeArgs(target BlockId) []ValueId {
	switch t.Kind {
	case TermBr:
		return t.Args
	case TermCondBr:
		if target == t.ThenBB {
			return t.ThenArgs
		}
		return t.ElseArgs
	default:
		return nil
	}
}

// Block is a basic block: a typed-parameter list (phi-equivalents), a
// sequence of instructions, and (once set) a terminator.
type Block struct {
	Id      BlockId
	Params  []ValueId
	Insts   []InstId
	Term    Terminator
	HasTerm bool
}

// Func owns an ordered list of block ids; Blocks[0] is the entry block.
type Func struct {
	Id     FuncId
	Name   string
	Blocks []BlockId
}
