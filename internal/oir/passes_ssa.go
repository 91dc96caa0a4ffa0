package oir

import (
	"strconv"

	"gaupel/internal/types"
)

// normalizePhiEdgeCastsPass inserts an explicit cast in the source block
// whenever a branch argument's type doesn't already match its target
// block parameter's type, so every edge satisfies V3 exactly rather than
// by coincidence.
type normalizePhiEdgeCastsPass struct{}

func (normalizePhiEdgeCastsPass) Name() string { return "normalize_phi_edge_casts" }
func (normalizePhiEdgeCastsPass) Description() string {
	return "inserts a cast wherever a branch argument's type doesn't match its target parameter"
}

func (normalizePhiEdgeCastsPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			touched := false
			switch blk.Term.Kind {
			case TermBr:
				if normalizeEdge(m, &blk, blk.Term.Target, &blk.Term.Args) {
					touched = true
				}
			case TermCondBr:
				c1 := normalizeEdge(m, &blk, blk.Term.ThenBB, &blk.Term.ThenArgs)
				c2 := normalizeEdge(m, &blk, blk.Term.ElseBB, &blk.Term.ElseArgs)
				touched = c1 || c2
			}
			if touched {
				m.SetBlock(bid, blk)
				changed = true
			}
		}
	}
	return changed
}

func normalizeEdge(m *Module, blk *Block, target BlockId, args *[]ValueId) bool {
	if target == InvalidBlock || len(*args) == 0 {
		return false
	}
	tblk := m.Block(target)
	if len(*args) != len(tblk.Params) {
		return false
	}
	changed := false
	out := *args
	for i, a := range out {
		if a == InvalidValue {
			continue
		}
		wantTy := m.Value(tblk.Params[i]).Type
		if m.Value(a).Type == wantTy {
			continue
		}
		iid := InstId(len(m.insts))
		rv := m.addValue(Value{Type: wantTy, Effect: EffPure, DefInst: iid, DefParamIdx: -1})
		m.addInst(Inst{Kind: InstCast, Effect: EffPure, A: a, CastTo: wantTy, Result: rv})
		blk.Insts = append(blk.Insts, iid)
		out[i] = rv
		changed = true
	}
	if changed {
		*args = out
	}
	return changed
}

// localLoadForwardPass forwards a load to the value most recently
// stored to the same slot path earlier in the same block, conservatively
// dropping its forwarding table across any call (which may write through
// an aliased handle it cannot see).
type localLoadForwardPass struct{}

func (localLoadForwardPass) Name() string { return "local_load_forward" }
func (localLoadForwardPass) Description() string {
	return "forwards a load to the value stored earlier in the same block"
}

func (localLoadForwardPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		for _, bid := range f.Blocks {
			if localLoadForwardBlock(m, bid) {
				changed = true
			}
		}
	}
	return changed
}

func localLoadForwardBlock(m *Module, bid BlockId) bool {
	blk := m.Block(bid)
	last := make(map[string]ValueId)
	kept := make([]InstId, 0, len(blk.Insts))
	removed := false
	for _, iid := range blk.Insts {
		inst := m.Inst(iid)
		switch inst.Kind {
		case InstStore:
			last[slotKey(inst.Slot, inst.Path)] = inst.Value
			kept = append(kept, iid)
		case InstLoad:
			if sv, ok := last[slotKey(inst.Slot, inst.Path)]; ok {
				replaceValueEverywhere(m, inst.Result, sv)
				removed = true
				continue
			}
			kept = append(kept, iid)
		case InstCall:
			last = make(map[string]ValueId)
			kept = append(kept, iid)
		default:
			kept = append(kept, iid)
		}
	}
	if removed {
		blk.Insts = kept
		m.SetBlock(bid, blk)
	}
	return removed
}

func slotKey(slot ValueId, path []string) string {
	s := strconv.Itoa(int(slot))
	for _, p := range path {
		s += "." + p
	}
	return s
}

// replaceValueEverywhere rewrites every operand referencing old, across
// every function, to new.
func replaceValueEverywhere(m *Module, old, newv ValueId) {
	if old == newv {
		return
	}
	repl := map[ValueId]ValueId{old: newv}
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			for _, iid := range blk.Insts {
				m.SetInst(iid, rewriteInstOperands(m.Inst(iid), repl))
			}
			blk.Term = rewriteTermOperands(blk.Term, repl)
			m.SetBlock(bid, blk)
		}
	}
}

// globalMem2regSSAPass promotes alloca-local slots whose address never
// escapes into pure SSA values, inserting block parameters at each
// slot's iterated dominance frontier (spec.md §8.3.4).
type globalMem2regSSAPass struct{}

func (globalMem2regSSAPass) Name() string { return "global_mem2reg_ssa" }
func (globalMem2regSSAPass) Description() string {
	return "promotes non-escaping alloca-local slots into block-parameter SSA values"
}

func (globalMem2regSSAPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		if len(f.Blocks) == 0 {
			continue
		}
		for _, slot := range findPromotableSlots(m, f) {
			dom := ComputeDominance(m, f)
			ty := m.Value(slot).Type
			if promoteSlot(m, &f, slot, ty, dom) {
				changed = true
				m.Stats.Mem2regPromotedSlots++
			}
		}
		m.SetFunc(fid, f)
	}
	return changed
}

func findPromotableSlots(m *Module, f Func) []ValueId {
	allocas := make(map[ValueId]bool)
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		for _, iid := range blk.Insts {
			inst := m.Inst(iid)
			if inst.Kind == InstAllocaLocal {
				allocas[inst.Result] = true
			}
		}
	}
	disallowed := make(map[ValueId]bool)
	mark := func(v ValueId) {
		if allocas[v] {
			disallowed[v] = true
		}
	}
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		for _, iid := range blk.Insts {
			inst := m.Inst(iid)
			switch inst.Kind {
			case InstLoad:
				if len(inst.Path) != 0 {
					disallowed[inst.Slot] = true
				}
			case InstStore:
				if len(inst.Path) != 0 {
					disallowed[inst.Slot] = true
				}
				mark(inst.Value)
			case InstUnary, InstCast:
				mark(inst.A)
			case InstBinop:
				mark(inst.A)
				mark(inst.B)
			case InstCall:
				for _, a := range inst.Args {
					mark(a)
				}
			case InstIndex:
				mark(inst.Base)
				mark(inst.IndexOp)
			case InstField:
				mark(inst.Base)
			}
		}
		if blk.Term.Kind == TermRet && blk.Term.HasValue {
			mark(blk.Term.Value)
		}
		if blk.Term.Kind == TermCondBr {
			mark(blk.Term.Cond)
		}
		for _, a := range blk.Term.Args {
			mark(a)
		}
		for _, a := range blk.Term.ThenArgs {
			mark(a)
		}
		for _, a := range blk.Term.ElseArgs {
			mark(a)
		}
	}
	var out []ValueId
	for v := range allocas {
		if !disallowed[v] {
			out = append(out, v)
		}
	}
	sortValueIds(out)
	return out
}

func sortValueIds(s []ValueId) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func domTreeChildren(dom *Dominance, blocks []BlockId) map[BlockId][]BlockId {
	out := make(map[BlockId][]BlockId)
	for _, b := range blocks {
		p, ok := dom.Idom(b)
		if !ok || p == b {
			continue
		}
		out[p] = append(out[p], b)
	}
	return out
}

func promoteSlot(m *Module, f *Func, slot ValueId, slotType types.Id, dom *Dominance) bool {
	defBlocks := make(map[BlockId]bool)
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		for _, iid := range blk.Insts {
			inst := m.Inst(iid)
			if inst.Kind == InstStore && inst.Slot == slot {
				defBlocks[bid] = true
			}
		}
	}
	if len(defBlocks) == 0 {
		return false
	}

	paramIdx := make(map[BlockId]int)
	worklist := make([]BlockId, 0, len(defBlocks))
	for b := range defBlocks {
		worklist = append(worklist, b)
	}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, df := range dom.Frontier(b) {
			if _, ok := paramIdx[df]; ok {
				continue
			}
			blk := m.Block(df)
			idx := len(blk.Params)
			pv := m.addValue(Value{Type: slotType, Effect: EffPure, DefBlock: df, DefParamIdx: int32(idx)})
			blk.Params = append(blk.Params, pv)
			m.SetBlock(df, blk)
			paramIdx[df] = idx
			m.Stats.Mem2regPhiParams++
			if !defBlocks[df] {
				worklist = append(worklist, df)
			}
		}
	}

	entry := f.Blocks[0]
	entryBlk := m.Block(entry)
	poisonIid := InstId(len(m.insts))
	poisonVal := m.addValue(Value{Type: slotType, Effect: EffPure, DefInst: poisonIid, DefParamIdx: -1})
	m.addInst(Inst{Kind: InstConstNull, Effect: EffPure, Result: poisonVal})
	entryBlk.Insts = append([]InstId{poisonIid}, entryBlk.Insts...)
	m.SetBlock(entry, entryBlk)

	children := domTreeChildren(dom, f.Blocks)
	var walk func(b BlockId, cur ValueId)
	walk = func(b BlockId, cur ValueId) {
		blk := m.Block(b)
		if idx, ok := paramIdx[b]; ok {
			cur = blk.Params[idx]
		}
		kept := make([]InstId, 0, len(blk.Insts))
		for _, iid := range blk.Insts {
			inst := m.Inst(iid)
			if inst.Kind == InstStore && inst.Slot == slot {
				cur = inst.Value
				continue
			}
			if inst.Kind == InstLoad && inst.Slot == slot {
				replaceValueEverywhere(m, inst.Result, cur)
				continue
			}
			kept = append(kept, iid)
		}
		blk.Insts = kept
		m.SetBlock(b, blk)

		blk = m.Block(b)
		term := blk.Term
		// CondBr's two edges are handled independently rather than via a
		// Successors()-driven loop: when ThenBB == ElseBB (both arms
		// target the same block), a target-equality check would patch
		// the same arg list twice and leave the other edge's arity short.
		switch term.Kind {
		case TermBr:
			if _, ok := paramIdx[term.Target]; ok {
				term.Args = append(term.Args, cur)
			}
		case TermCondBr:
			if _, ok := paramIdx[term.ThenBB]; ok {
				term.ThenArgs = append(term.ThenArgs, cur)
			}
			if _, ok := paramIdx[term.ElseBB]; ok {
				term.ElseArgs = append(term.ElseArgs, cur)
			}
		}
		blk.Term = term
		m.SetBlock(b, blk)

		for _, c := range children[b] {
			walk(c, cur)
		}
	}
	walk(entry, poisonVal)
	return true
}
