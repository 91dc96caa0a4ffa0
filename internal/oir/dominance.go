package oir

// Dominance holds the dominator-tree and dominance-frontier data for one
// function's blocks (spec.md §4.5.2), computed once and reused by the
// verifier and by the loop-dependent passes.
type Dominance struct {
	entry    BlockId
	idom     map[BlockId]BlockId
	rpo      []BlockId
	preds    map[BlockId][]BlockId
	succs    map[BlockId][]BlockId
	frontier map[BlockId][]BlockId
}

func buildCFG(m *Module, f Func) (preds, succs map[BlockId][]BlockId, rpo []BlockId) {
	preds = make(map[BlockId][]BlockId)
	succs = make(map[BlockId][]BlockId)
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		ss := blk.Term.Successors()
		succs[bid] = ss
		for _, s := range ss {
			preds[s] = append(preds[s], bid)
		}
	}
	if len(f.Blocks) == 0 {
		return preds, succs, nil
	}
	visited := make(map[BlockId]bool, len(f.Blocks))
	var post []BlockId
	var dfs func(BlockId)
	dfs = func(b BlockId) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range succs[b] {
			dfs(s)
		}
		post = append(post, b)
	}
	dfs(f.Blocks[0])
	rpo = make([]BlockId, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return preds, succs, rpo
}

// ComputeDominance runs the iterative Cooper/Harvey/Kennedy dominator
// algorithm over f's reachable blocks, then derives dominance frontiers
// from the resulting immediate-dominator tree (spec.md §4.5.2).
func ComputeDominance(m *Module, f Func) *Dominance {
	preds, succs, rpo := buildCFG(m, f)
	d := &Dominance{preds: preds, succs: succs, rpo: rpo, idom: make(map[BlockId]BlockId)}
	if len(rpo) == 0 {
		d.frontier = make(map[BlockId][]BlockId)
		return d
	}
	d.entry = rpo[0]

	rpoIndex := make(map[BlockId]int, len(rpo))
	for i, b := range rpo {
		rpoIndex[b] = i
	}
	intersect := func(a, bb BlockId) BlockId {
		for a != bb {
			for rpoIndex[a] > rpoIndex[bb] {
				a = d.idom[a]
			}
			for rpoIndex[bb] > rpoIndex[a] {
				bb = d.idom[bb]
			}
		}
		return a
	}

	d.idom[d.entry] = d.entry
	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == d.entry {
				continue
			}
			newIdom := InvalidBlock
			for _, p := range preds[b] {
				if _, ok := d.idom[p]; !ok {
					continue
				}
				if newIdom == InvalidBlock {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p)
			}
			if cur, ok := d.idom[b]; !ok || cur != newIdom {
				d.idom[b] = newIdom
				changed = true
			}
		}
	}

	d.frontier = make(map[BlockId][]BlockId)
	for _, b := range rpo {
		ps := preds[b]
		if len(ps) < 2 {
			continue
		}
		for _, p := range ps {
			if _, ok := d.idom[p]; !ok {
				continue
			}
			runner := p
			for runner != d.idom[b] {
				d.frontier[runner] = appendBlockUnique(d.frontier[runner], b)
				runner = d.idom[runner]
			}
		}
	}
	return d
}

func appendBlockUnique(s []BlockId, b BlockId) []BlockId {
	for _, x := range s {
		if x == b {
			return s
		}
	}
	return append(s, b)
}

// Idom returns b's immediate dominator, if b is reachable.
func (d *Dominance) Idom(b BlockId) (BlockId, bool) {
	id, ok := d.idom[b]
	return id, ok
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (d *Dominance) Dominates(a, b BlockId) bool {
	cur := b
	for {
		if cur == a {
			return true
		}
		p, ok := d.idom[cur]
		if !ok || p == cur {
			return false
		}
		cur = p
	}
}

// Frontier returns b's dominance frontier, in unspecified order.
func (d *Dominance) Frontier(b BlockId) []BlockId { return d.frontier[b] }

// Preds returns b's CFG predecessors.
func (d *Dominance) Preds(b BlockId) []BlockId { return d.preds[b] }

// Succs returns b's CFG successors.
func (d *Dominance) Succs(b BlockId) []BlockId { return d.succs[b] }

// ReversePostorder returns every reachable block in the order used to
// compute the fixpoint, entry first.
func (d *Dominance) ReversePostorder() []BlockId { return d.rpo }
