package oir

// Loop describes one natural loop: the header block every backedge
// targets, the set of blocks reachable from a latch without leaving the
// loop, and the latches (backedge sources) themselves (spec.md §4.5.3).
type Loop struct {
	Header  BlockId
	Body    map[BlockId]bool
	Latches []BlockId
}

// FindLoops detects every natural loop in f by scanning for backedges
// (an edge b -> s where s dominates b) and merging backedges that share
// a header into one loop.
func FindLoops(m *Module, f Func, dom *Dominance) []*Loop {
	headerLatches := make(map[BlockId][]BlockId)
	var headerOrder []BlockId
	for _, b := range f.Blocks {
		blk := m.Block(b)
		for _, s := range blk.Term.Successors() {
			if dom.Dominates(s, b) {
				if _, ok := headerLatches[s]; !ok {
					headerOrder = append(headerOrder, s)
				}
				headerLatches[s] = append(headerLatches[s], b)
			}
		}
	}
	loops := make([]*Loop, 0, len(headerOrder))
	for _, h := range headerOrder {
		latches := headerLatches[h]
		loops = append(loops, &Loop{Header: h, Body: loopBody(h, latches, dom), Latches: latches})
	}
	return loops
}

func loopBody(header BlockId, latches []BlockId, dom *Dominance) map[BlockId]bool {
	body := map[BlockId]bool{header: true}
	var stack []BlockId
	for _, l := range latches {
		if !body[l] {
			body[l] = true
			stack = append(stack, l)
		}
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range dom.Preds(b) {
			if !body[p] {
				body[p] = true
				stack = append(stack, p)
			}
		}
	}
	return body
}

// HasCanonicalPreheader reports whether the loop's header has exactly
// one predecessor outside the loop body, and that predecessor is a
// single-successor unconditional branch straight into the header — the
// preheader fixpoint required by V4 (spec.md §4.5.3, §4.6.1's
// canonicalize_loops).
func (l *Loop) HasCanonicalPreheader(m *Module, dom *Dominance) (BlockId, bool) {
	var outside []BlockId
	for _, p := range dom.Preds(l.Header) {
		if !l.Body[p] {
			outside = append(outside, p)
		}
	}
	if len(outside) != 1 {
		return InvalidBlock, false
	}
	ph := outside[0]
	blk := m.Block(ph)
	if blk.Term.Kind != TermBr || blk.Term.Target != l.Header {
		return InvalidBlock, false
	}
	if len(dom.Succs(ph)) != 1 {
		return InvalidBlock, false
	}
	return ph, true
}

// IsLoopInvariant reports whether value v (if it is an instruction
// result) is defined strictly outside the loop body — the precondition
// licm uses before it may hoist an instruction into the preheader.
func (l *Loop) IsLoopInvariant(sites map[ValueId]defSite, v ValueId) bool {
	if v == InvalidValue {
		return true
	}
	site, ok := sites[v]
	if !ok {
		return true // constants/params/refs with no function-local def site
	}
	return !l.Body[site.block]
}
