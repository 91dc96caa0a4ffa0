package oir

// simplifyCFGPass removes blocks unreachable from the entry block and
// folds any block B into its sole predecessor A when A ends in an
// unconditional branch to B and B takes no parameters.
type simplifyCFGPass struct{}

func (simplifyCFGPass) Name() string { return "simplify_cfg" }
func (simplifyCFGPass) Description() string {
	return "drops unreachable blocks and folds trivial single-predecessor chains"
}

func (simplifyCFGPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		if simplifyCFGFunc(m, &f) {
			changed = true
			m.SetFunc(fid, f)
		}
	}
	return changed
}

func simplifyCFGFunc(m *Module, f *Func) bool {
	changed := false
	if len(f.Blocks) == 0 {
		return false
	}
	_, succs, rpo := buildCFG(m, *f)
	if len(rpo) < len(f.Blocks) {
		reachable := make(map[BlockId]bool, len(rpo))
		for _, b := range rpo {
			reachable[b] = true
		}
		kept := make([]BlockId, 0, len(rpo))
		for _, b := range f.Blocks {
			if reachable[b] {
				kept = append(kept, b)
			}
		}
		f.Blocks = kept
		changed = true
	}

	for {
		predCount := make(map[BlockId]int)
		for _, b := range f.Blocks {
			for _, s := range succs[b] {
				predCount[s]++
			}
		}
		folded := false
		for _, a := range f.Blocks {
			ablk := m.Block(a)
			if ablk.Term.Kind != TermBr {
				continue
			}
			target := ablk.Term.Target
			if target == a || predCount[target] != 1 {
				continue
			}
			tblk := m.Block(target)
			if len(tblk.Params) != 0 {
				continue
			}
			ablk.Insts = append(ablk.Insts, tblk.Insts...)
			ablk.Term = tblk.Term
			m.SetBlock(a, ablk)
			newBlocks := make([]BlockId, 0, len(f.Blocks)-1)
			for _, b := range f.Blocks {
				if b != target {
					newBlocks = append(newBlocks, b)
				}
			}
			f.Blocks = newBlocks
			changed = true
			folded = true
			break
		}
		if !folded {
			break
		}
		_, succs, _ = buildCFG(m, *f)
	}
	return changed
}

// splitCriticalEdgesPass inserts an edge block wherever a multi-successor
// block branches into a multi-predecessor block, so later passes never
// have to reason about an edge that is neither the unique exit of its
// source nor the unique entry of its target.
type splitCriticalEdgesPass struct{}

func (splitCriticalEdgesPass) Name() string { return "split_critical_edges" }
func (splitCriticalEdgesPass) Description() string {
	return "splits every critical edge with a forwarding block"
}

func (splitCriticalEdgesPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		if splitCriticalEdgesFunc(m, &f) {
			changed = true
			m.SetFunc(fid, f)
		}
	}
	return changed
}

func splitCriticalEdgesFunc(m *Module, f *Func) bool {
	preds, _, _ := buildCFG(m, *f)
	changed := false
	for _, bid := range append([]BlockId(nil), f.Blocks...) {
		blk := m.Block(bid)
		if blk.Term.Kind != TermCondBr {
			continue
		}
		touched := false
		if len(preds[blk.Term.ThenBB]) > 1 {
			nb := insertEdgeBlock(m, f, blk.Term.ThenBB, blk.Term.ThenArgs)
			blk.Term.ThenBB = nb
			blk.Term.ThenArgs = nil
			touched = true
		}
		if len(preds[blk.Term.ElseBB]) > 1 {
			nb := insertEdgeBlock(m, f, blk.Term.ElseBB, blk.Term.ElseArgs)
			blk.Term.ElseBB = nb
			blk.Term.ElseArgs = nil
			touched = true
		}
		if touched {
			m.SetBlock(bid, blk)
			m.Stats.CriticalEdgesSplit++
			changed = true
		}
	}
	return changed
}

func insertEdgeBlock(m *Module, f *Func, target BlockId, args []ValueId) BlockId {
	nb := m.addBlock(Block{
		Term:    Terminator{Kind: TermBr, Target: target, Args: append([]ValueId(nil), args...)},
		HasTerm: true,
	})
	f.Blocks = append(f.Blocks, nb)
	return nb
}

// canonicalizeLoopsPass inserts a dedicated preheader for every natural
// loop that lacks one, satisfying V4 (spec.md §4.5.3, §4.6.1).
type canonicalizeLoopsPass struct{}

func (canonicalizeLoopsPass) Name() string { return "canonicalize_loops" }
func (canonicalizeLoopsPass) Description() string {
	return "gives every natural loop a single, unconditionally-branching preheader"
}

func (canonicalizeLoopsPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		if canonicalizeLoopsFunc(m, &f) {
			changed = true
			m.SetFunc(fid, f)
		}
	}
	return changed
}

func canonicalizeLoopsFunc(m *Module, f *Func) bool {
	changed := false
	for {
		dom := ComputeDominance(m, *f)
		loops := FindLoops(m, *f, dom)
		progressed := false
		for _, l := range loops {
			if _, ok := l.HasCanonicalPreheader(m, dom); ok {
				continue
			}
			canonicalizeLoop(m, f, l, dom)
			m.Stats.LoopCanonicalized++
			progressed = true
			changed = true
			break // structural edit invalidates dom/loops; restart the scan
		}
		if !progressed {
			break
		}
	}
	return changed
}

func canonicalizeLoop(m *Module, f *Func, l *Loop, dom *Dominance) {
	header := m.Block(l.Header)
	params := make([]ValueId, len(header.Params))
	nb := m.addBlock(Block{})
	for i, hp := range header.Params {
		hv := m.Value(hp)
		params[i] = m.addValue(Value{Type: hv.Type, Effect: EffPure, DefBlock: nb, DefParamIdx: int32(i)})
	}
	nbRec := m.Block(nb)
	nbRec.Params = params
	nbRec.Term = Terminator{Kind: TermBr, Target: l.Header, Args: append([]ValueId(nil), params...)}
	nbRec.HasTerm = true
	m.SetBlock(nb, nbRec)
	f.Blocks = append(f.Blocks, nb)

	for _, p := range dom.Preds(l.Header) {
		if l.Body[p] {
			continue
		}
		blk := m.Block(p)
		switch blk.Term.Kind {
		case TermBr:
			if blk.Term.Target == l.Header {
				blk.Term.Target = nb
			}
		case TermCondBr:
			if blk.Term.ThenBB == l.Header {
				blk.Term.ThenBB = nb
			}
			if blk.Term.ElseBB == l.Header {
				blk.Term.ElseBB = nb
			}
		}
		m.SetBlock(p, blk)
	}
}
