package oir

import "strconv"

// constFoldPass replaces an operation whose operands are constants with
// a single constant instruction carrying the same result id, so no
// use-site rewriting is needed. It folds integer `+`, `-` and `*` (on
// values that parse as int64), boolean `&&` and `||`, unary `-` on an
// integer and unary `!` on a bool. Division, remainder, comparisons,
// casts and `??` are not folded.
type constFoldPass struct{}

func (constFoldPass) Name() string { return "const_fold" }
func (constFoldPass) Description() string {
	return "evaluates operations over constant operands at compile time"
}

func (constFoldPass) Apply(m *Module) bool {
	changed := false
	defOf := buildDefInst(m)
	for _, f := range m.Funcs() {
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			for _, iid := range blk.Insts {
				inst := m.Inst(iid)
				if inst.Result == InvalidValue || isConstInst(inst) {
					continue
				}
				folded, ok := tryFold(defOf, inst)
				if !ok {
					continue
				}
				folded.Id = inst.Id
				folded.Result = inst.Result
				m.SetInst(iid, folded)
				defOf[inst.Result] = folded
				changed = true
			}
		}
	}
	return changed
}

func buildDefInst(m *Module) map[ValueId]Inst {
	out := make(map[ValueId]Inst)
	for _, f := range m.Funcs() {
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			for _, iid := range blk.Insts {
				inst := m.Inst(iid)
				if inst.Result != InvalidValue {
					out[inst.Result] = inst
				}
			}
		}
	}
	return out
}

func tryFold(defOf map[ValueId]Inst, inst Inst) (Inst, bool) {
	switch inst.Kind {
	case InstBinop:
		a, aok := defOf[inst.A]
		b, bok := defOf[inst.B]
		if !aok || !bok {
			return Inst{}, false
		}
		if a.Kind == InstConstInt && b.Kind == InstConstInt {
			av, err1 := strconv.ParseInt(a.IntVal, 10, 64)
			bv, err2 := strconv.ParseInt(b.IntVal, 10, 64)
			if err1 != nil || err2 != nil {
				return Inst{}, false
			}
			var r int64
			switch inst.Op {
			case "+":
				r = av + bv
			case "-":
				r = av - bv
			case "*":
				r = av * bv
			default:
				return Inst{}, false
			}
			return Inst{Kind: InstConstInt, Effect: EffPure, IntVal: strconv.FormatInt(r, 10)}, true
		}
		if a.Kind == InstConstBool && b.Kind == InstConstBool {
			var r bool
			switch inst.Op {
			case "&&":
				r = a.BoolVal && b.BoolVal
			case "||":
				r = a.BoolVal || b.BoolVal
			default:
				return Inst{}, false
			}
			return Inst{Kind: InstConstBool, Effect: EffPure, BoolVal: r}, true
		}
	case InstUnary:
		a, aok := defOf[inst.A]
		if !aok {
			return Inst{}, false
		}
		if a.Kind == InstConstInt && inst.Op == "-" {
			av, err := strconv.ParseInt(a.IntVal, 10, 64)
			if err != nil {
				return Inst{}, false
			}
			return Inst{Kind: InstConstInt, Effect: EffPure, IntVal: strconv.FormatInt(-av, 10)}, true
		}
		if a.Kind == InstConstBool && inst.Op == "!" {
			return Inst{Kind: InstConstBool, Effect: EffPure, BoolVal: !a.BoolVal}, true
		}
	}
	return Inst{}, false
}

// gvnCsePass eliminates a pure instruction that recomputes a value
// already available under dominance — a dominator-tree-scoped value
// table rather than a whole-function one, since a sibling branch's
// identical computation is not necessarily available on this path.
type gvnCsePass struct{}

func (gvnCsePass) Name() string { return "gvn_cse" }
func (gvnCsePass) Description() string {
	return "eliminates pure instructions that recompute an already-available value"
}

func (gvnCsePass) Apply(m *Module) bool {
	changed := false
	for fid := FuncId(0); int(fid) < m.NumFuncs(); fid++ {
		f := m.Func(fid)
		if len(f.Blocks) == 0 {
			continue
		}
		dom := ComputeDominance(m, f)
		if gvnCseFunc(m, f, dom) {
			changed = true
		}
	}
	return changed
}

func gvnCseFunc(m *Module, f Func, dom *Dominance) bool {
	children := domTreeChildren(dom, f.Blocks)
	table := make(map[string]ValueId)
	changed := false
	var walk func(b BlockId)
	walk = func(b BlockId) {
		blk := m.Block(b)
		var undo []string
		kept := make([]InstId, 0, len(blk.Insts))
		for _, iid := range blk.Insts {
			inst := m.Inst(iid)
			key, ok := constKey(inst)
			if !ok || inst.Result == InvalidValue {
				kept = append(kept, iid)
				continue
			}
			key += ":" + strconv.Itoa(int(m.Value(inst.Result).Type))
			if existing, found := table[key]; found {
				replaceValueEverywhere(m, inst.Result, existing)
				m.Stats.GvnCseEliminated++
				changed = true
				continue
			}
			table[key] = inst.Result
			undo = append(undo, key)
			kept = append(kept, iid)
		}
		blk.Insts = kept
		m.SetBlock(b, blk)
		for _, c := range children[b] {
			walk(c)
		}
		for _, k := range undo {
			delete(table, k)
		}
	}
	walk(f.Blocks[0])
	return changed
}

// dcePureInstsPass removes a pure instruction once nothing references
// its result — block parameters are left alone, since retiring one
// requires rewriting every incoming edge's argument list too.
type dcePureInstsPass struct{}

func (dcePureInstsPass) Name() string { return "dce_pure_insts" }
func (dcePureInstsPass) Description() string {
	return "removes pure instructions whose result has no remaining use"
}

func (dcePureInstsPass) Apply(m *Module) bool {
	changed := false
	counts := buildUseCount(m)
	for _, f := range m.Funcs() {
		for _, bid := range f.Blocks {
			blk := m.Block(bid)
			kept := make([]InstId, 0, len(blk.Insts))
			for _, iid := range blk.Insts {
				inst := m.Inst(iid)
				if inst.Effect == EffPure && inst.Result != InvalidValue && counts[inst.Result] == 0 {
					m.Stats.DceRemoved++
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
