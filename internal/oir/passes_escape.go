package oir

// optimizeEscapeHandlesPass elides a cast that re-wraps an
// escape-hinted value in its own type — a no-op escape-boundary
// handle left behind by earlier lowering that provably does nothing.
type optimizeEscapeHandlesPass struct{}

func (optimizeEscapeHandlesPass) Name() string { return "optimize_escape_handles" }
func (optimizeEscapeHandlesPass) Description() string {
	return "elides redundant same-type casts on escape-hinted values"
}

func (optimizeEscapeHandlesPass) Apply(m *Module) bool {
	hints := m.EscapeHints()
	if len(hints) == 0 {
		return false
	}
	marked := make(map[ValueId]bool, len(hints))
	for _, v := range hints {
		marked[v] = true
	}
	changed := false
	for _, f := range m.Funcs() {
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			kept := make([]InstId, 0, len(blk.Insts))
			for _, iid := range blk.Insts {
				inst := m.Inst(iid)
				if inst.Kind == InstCast && marked[inst.A] && inst.CastTo == m.Value(inst.A).Type {
					replaceValueEverywhere(m, inst.Result, inst.A)
					m.Stats.EscapePackElided++
					changed = true
					continue
				}
				kept = append(kept, iid)
			}
			if len(kept) != len(blk.Insts) {
				blk.Insts = kept
				m.SetBlock(bid, blk)
			}
		}
	}
	return changed
}
