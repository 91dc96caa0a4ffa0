package oir

import "strconv"

// maxRewriteHops bounds rewriteOperands' fixed point (spec.md §4.6.3):
// a replacement table built correctly never needs more than a handful
// of hops to settle, so a runaway chain is a bug, not patience.
const maxRewriteHops = 64

// rewriteOperands follows repl (old value -> new value) to a fixed
// point and returns the final replacement for v, or v itself if it has
// no entry. Passes build repl once per sweep and call this per operand
// rather than mutating repl in place, so insertion order never matters.
func rewriteOperands(repl map[ValueId]ValueId, v ValueId) ValueId {
	cur := v
	for hop := 0; hop < maxRewriteHops; hop++ {
		next, ok := repl[cur]
		if !ok || next == cur {
			return cur
		}
		cur = next
	}
	return cur
}

// rewriteInstOperands applies rewriteOperands to every value-typed
// operand field an instruction carries, returning a copy with the
// substitutions made.
func rewriteInstOperands(inst Inst, repl map[ValueId]ValueId) Inst {
	switch inst.Kind {
	case InstUnary, InstCast:
		inst.A = rewriteOperands(repl, inst.A)
	case InstBinop:
		inst.A = rewriteOperands(repl, inst.A)
		inst.B = rewriteOperands(repl, inst.B)
	case InstCall:
		if len(inst.Args) > 0 {
			args := make([]ValueId, len(inst.Args))
			for i, a := range inst.Args {
				args[i] = rewriteOperands(repl, a)
			}
			inst.Args = args
		}
	case InstIndex:
		inst.Base = rewriteOperands(repl, inst.Base)
		inst.IndexOp = rewriteOperands(repl, inst.IndexOp)
	case InstField:
		inst.Base = rewriteOperands(repl, inst.Base)
	case InstLoad:
		inst.Slot = rewriteOperands(repl, inst.Slot)
	case InstStore:
		inst.Slot = rewriteOperands(repl, inst.Slot)
		inst.Value = rewriteOperands(repl, inst.Value)
	}
	return inst
}

func rewriteTermOperands(t Terminator, repl map[ValueId]ValueId) Terminator {
	switch t.Kind {
	case TermRet:
		if t.HasValue {
			t.Value = rewriteOperands(repl, t.Value)
		}
	case TermBr:
		t.Args = rewriteValueSlice(t.Args, repl)
	case TermCondBr:
		t.Cond = rewriteOperands(repl, t.Cond)
		t.ThenArgs = rewriteValueSlice(t.ThenArgs, repl)
		t.ElseArgs = rewriteValueSlice(t.ElseArgs, repl)
	}
	return t
}

func rewriteValueSlice(vs []ValueId, repl map[ValueId]ValueId) []ValueId {
	if len(vs) == 0 {
		return vs
	}
	out := make([]ValueId, len(vs))
	for i, v := range vs {
		out[i] = rewriteOperands(repl, v)
	}
	return out
}

// buildUseCount returns a dense, ValueId-indexed use-count vector for
// every function in m: useCount[v] is the number of operand positions
// across the whole module that reference v. dce_pure_insts consults
// this to decide whether a pure instruction's result is still needed.
func buildUseCount(m *Module) []int {
	counts := make([]int, m.NumValues())
	bump := func(v ValueId) {
		if v != InvalidValue {
			counts[v]++
		}
	}
	for _, f := range m.Funcs() {
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			for _, iid := range blk.Insts {
				inst := m.Inst(iid)
				switch inst.Kind {
				case InstUnary, InstCast:
					bump(inst.A)
				case InstBinop:
					bump(inst.A)
					bump(inst.B)
				case InstCall:
					for _, a := range inst.Args {
						bump(a)
					}
				case InstIndex:
					bump(inst.Base)
					bump(inst.IndexOp)
				case InstField:
					bump(inst.Base)
				case InstLoad:
					bump(inst.Slot)
				case InstStore:
					bump(inst.Slot)
					bump(inst.Value)
				}
			}
			if blk.Term.HasValue {
				bump(blk.Term.Value)
			}
			if blk.Term.Kind == TermCondBr {
				bump(blk.Term.Cond)
			}
			for _, a := range blk.Term.Args {
				bump(a)
			}
			for _, a := range blk.Term.ThenArgs {
				bump(a)
			}
			for _, a := range blk.Term.ElseArgs {
				bump(a)
			}
		}
	}
	return counts
}

// isConstInst reports whether an instruction result is a compile-time
// constant. Block parameters are never constants, even when every edge
// feeding them happens to carry the same constant value — spec.md
// §4.6.3 restricts constant-ness to instruction results only, to avoid
// the extra fixed point a parameter-aware version would need.
func isConstInst(inst Inst) bool {
	switch inst.Kind {
	case InstConstInt, InstConstBool, InstConstText, InstConstNull:
		return true
	default:
		return false
	}
}

// constKey builds a structural equality key for a pure, side-effect
// free instruction, used by gvn_cse to recognize redundant computations.
// Instructions outside this switch are never considered for CSE.
func constKey(inst Inst) (string, bool) {
	switch inst.Kind {
	case InstConstInt:
		return "int:" + inst.IntVal, true
	case InstConstBool:
		if inst.BoolVal {
			return "bool:true", true
		}
		return "bool:false", true
	case InstConstText:
		return "text:" + inst.TextVal, true
	case InstConstNull:
		return "null", true
	case InstUnary:
		return "un:" + inst.Op + ":" + strconv.Itoa(int(inst.A)), true
	case InstBinop:
		return "bin:" + inst.Op + ":" + strconv.Itoa(int(inst.A)) + ":" + strconv.Itoa(int(inst.B)), true
	case InstCast:
		return "cast:" + strconv.Itoa(int(inst.CastTo)) + ":" + strconv.Itoa(int(inst.A)), true
	default:
		return "", false
	}
}
