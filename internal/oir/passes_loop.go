package oir

// licmPass hoists a pure instruction out of a loop body into its
// preheader once every operand it reads is defined outside the loop —
// it only considers loops that already have a canonical preheader, so
// it must run after canonicalize_loops in the pipeline.
type licmPass struct{}

func (licmPass) Name() string { return "licm" }
func (licmPass) Description() string {
	return "hoists loop-invariant pure instructions into their loop's preheader"
}

func (licmPass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		if len(f.Blocks) == 0 {
			continue
		}
		dom := ComputeDominance(m, f)
		for _, l := range FindLoops(m, f, dom) {
			ph, ok := l.HasCanonicalPreheader(m, dom)
			if !ok {
				continue
			}
			if licmLoop(m, f, l, ph) {
				changed = true
			}
		}
	}
	return changed
}

func licmLoop(m *Module, f Func, l *Loop, preheader BlockId) bool {
	changed := false
	for pass := 0; pass < 8; pass++ {
		sites := buildDefSites(m, f)
		progressed := false
		for bid := range l.Body {
			if bid == preheader {
				continue
			}
			blk := m.Block(bid)
			phBlk := m.Block(preheader)
			kept := make([]InstId, 0, len(blk.Insts))
			for _, iid := range blk.Insts {
				inst := m.Inst(iid)
				if isHoistable(inst) && allOperandsInvariant(inst, l, sites) {
					phBlk.Insts = append(phBlk.Insts, iid)
					m.Stats.LicmHoisted++
					progressed = true
					continue
				}
				kept = append(kept, iid)
			}
			blk.Insts = kept
			m.SetBlock(bid, blk)
			m.SetBlock(preheader, phBlk)
		}
		if progressed {
			changed = true
		} else {
			break
		}
	}
	return changed
}

func isHoistable(inst Inst) bool {
	if inst.Effect != EffPure {
		return false
	}
	switch inst.Kind {
	case InstConstInt, InstConstBool, InstConstText, InstConstNull, InstUnary, InstBinop, InstCast:
		return true
	default:
		return false
	}
}

func allOperandsInvariant(inst Inst, l *Loop, sites map[ValueId]defSite) bool {
	switch inst.Kind {
	case InstUnary, InstCast:
		return l.IsLoopInvariant(sites, inst.A)
	case InstBinop:
		return l.IsLoopInvariant(sites, inst.A) && l.IsLoopInvariant(sites, inst.B)
	default:
		return true
	}
}
