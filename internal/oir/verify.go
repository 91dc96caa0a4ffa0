package oir

import (
	"fmt"

	"github.com/pkg/errors"

	"gaupel/internal/types"
)

// Violation is one structural defect the verifier found. It implements
// error so callers can treat a verifier run as a plain []error.
type Violation struct {
	Func   string
	Detail string
}

func (v Violation) Error() string { return fmt.Sprintf("%s: %s", v.Func, v.Detail) }

func violationf(fn, format string, args ...any) error {
	return Violation{Func: fn, Detail: errors.Errorf(format, args...).Error()}
}

// defSite records where a value is defined: either as the result of an
// instruction at a known ordinal within its block, or as a block
// parameter (available from that block's entry).
type defSite struct {
	block   BlockId
	ordinal int
	isParam bool
}

func buildDefSites(m *Module, f Func) map[ValueId]defSite {
	sites := make(map[ValueId]defSite)
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		for _, p := range blk.Params {
			sites[p] = defSite{block: bid, ordinal: -1, isParam: true}
		}
		for i, iid := range blk.Insts {
			inst := m.Inst(iid)
			if inst.Result != InvalidValue {
				sites[inst.Result] = defSite{block: bid, ordinal: i}
			}
		}
	}
	return sites
}

func available(dom *Dominance, sites map[ValueId]defSite, useBlock BlockId, useOrdinal int, val ValueId) bool {
	site, ok := sites[val]
	if !ok {
		return false
	}
	if site.block == useBlock {
		if site.isParam {
			return true
		}
		return site.ordinal < useOrdinal
	}
	return dom.Dominates(site.block, useBlock)
}

// Verify runs every structural check — V1 through V4 — over the whole
// module and returns every violation found (spec.md §4.5.1). Loop
// fixpoint (V4) is required: a fully-formed module must already be in
// canonical loop form.
func Verify(m *Module) []error {
	return VerifyPipelineInvariants(m, true)
}

// VerifyPipelineInvariants runs V1-V3 unconditionally and V4 only when
// requireLoopFixpoint is set — mid-pipeline passes that haven't reached
// canonicalize_loops yet may legitimately lack preheaders.
func VerifyPipelineInvariants(m *Module, requireLoopFixpoint bool) []error {
	var out []error
	for _, f := range m.Funcs() {
		out = append(out, verifyValuesAndOperands(m, f)...)
		dom := ComputeDominance(m, f)
		out = append(out, VerifyFunctionDominance(m, f, dom)...)
		out = append(out, verifyEdgeArgs(m, f)...)
		if requireLoopFixpoint {
			out = append(out, VerifyFunctionLoopFixpoint(m, f, dom)...)
		}
	}
	return out
}

// verifyValuesAndOperands checks V1: every value carries a resolvable
// type and every referenced id is in range.
func verifyValuesAndOperands(m *Module, f Func) []error {
	var out []error
	checkValue := func(ctx string, id ValueId) {
		if id == InvalidValue {
			return
		}
		if id < 0 || int(id) >= m.NumValues() {
			out = append(out, violationf(f.Name, "%s: value id %d out of range (V1)", ctx, id))
			return
		}
		if m.Value(id).Type == types.Invalid {
			out = append(out, violationf(f.Name, "%s: value %d has no resolvable type (V1)", ctx, id))
		}
	}
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		for _, pid := range blk.Params {
			checkValue("block param", pid)
		}
		for _, iid := range blk.Insts {
			inst := m.Inst(iid)
			switch inst.Kind {
			case InstUnary, InstCast:
				checkValue("operand", inst.A)
			case InstBinop:
				checkValue("operand a", inst.A)
				checkValue("operand b", inst.B)
			case InstCall:
				for _, a := range inst.Args {
					checkValue("call arg", a)
				}
			case InstLoad:
				checkValue("slot", inst.Slot)
			case InstStore:
				checkValue("slot", inst.Slot)
				checkValue("stored value", inst.Value)
			case InstIndex:
				checkValue("base", inst.Base)
				checkValue("index", inst.IndexOp)
			case InstField:
				checkValue("base", inst.Base)
			}
			if inst.Result != InvalidValue {
				checkValue("result", inst.Result)
			}
		}
		if !blk.HasTerm {
			out = append(out, violationf(f.Name, "block %d has no terminator", bid))
			continue
		}
		switch blk.Term.Kind {
		case TermRet:
			if blk.Term.HasValue {
				checkValue("ret value", blk.Term.Value)
			}
		case TermCondBr:
			checkValue("cond", blk.Term.Cond)
		}
	}
	return out
}

// VerifyFunctionDominance checks V2: every operand is available at its
// use site — a block-param value's use block must be dominated by the
// defining block, an instruction result's use must be strictly later in
// the same block or in a strictly-dominated block.
func VerifyFunctionDominance(m *Module, f Func, dom *Dominance) []error {
	var out []error
	sites := buildDefSites(m, f)
	check := func(useBlock BlockId, useOrdinal int, val ValueId, ctx string) {
		if val == InvalidValue {
			return
		}
		if !available(dom, sites, useBlock, useOrdinal, val) {
			out = append(out, violationf(f.Name, "%s: value %d used in block %d is not available there (V2)", ctx, val, useBlock))
		}
	}
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		for i, iid := range blk.Insts {
			inst := m.Inst(iid)
			switch inst.Kind {
			case InstUnary, InstCast:
				check(bid, i, inst.A, "operand")
			case InstBinop:
				check(bid, i, inst.A, "operand a")
				check(bid, i, inst.B, "operand b")
			case InstCall:
				for _, a := range inst.Args {
					check(bid, i, a, "call arg")
				}
			case InstLoad:
				check(bid, i, inst.Slot, "slot")
			case InstStore:
				check(bid, i, inst.Slot, "slot")
				check(bid, i, inst.Value, "stored value")
			case InstIndex:
				check(bid, i, inst.Base, "base")
				check(bid, i, inst.IndexOp, "index")
			case InstField:
				check(bid, i, inst.Base, "base")
			}
		}
		term := len(blk.Insts)
		switch blk.Term.Kind {
		case TermRet:
			if blk.Term.HasValue {
				check(bid, term, blk.Term.Value, "ret value")
			}
		case TermBr:
			for _, a := range blk.Term.Args {
				check(bid, term, a, "edge arg")
			}
		case TermCondBr:
			check(bid, term, blk.Term.Cond, "cond")
			for _, a := range blk.Term.ThenArgs {
				check(bid, term, a, "then edge arg")
			}
			for _, a := range blk.Term.ElseArgs {
				check(bid, term, a, "else edge arg")
			}
		}
	}
	return out
}

// verifyEdgeArgs checks V3: every branch's edge-argument vector matches
// its target block's parameter arity and, element-wise, type.
func verifyEdgeArgs(m *Module, f Func) []error {
	var out []error
	checkEdge := func(from, target BlockId, args []ValueId) {
		if target == InvalidBlock {
			return
		}
		tblk := m.Block(target)
		if len(args) != len(tblk.Params) {
			out = append(out, violationf(f.Name, "edge %d->%d: %d args vs %d params (V3)", from, target, len(args), len(tblk.Params)))
			return
		}
		for i, a := range args {
			if a == InvalidValue {
				continue
			}
			if m.Value(a).Type != m.Value(tblk.Params[i]).Type {
				out = append(out, violationf(f.Name, "edge %d->%d: arg %d type mismatch (V3)", from, target, i))
			}
		}
	}
	for _, bid := range f.Blocks {
		blk := m.Block(bid)
		switch blk.Term.Kind {
		case TermBr:
			checkEdge(bid, blk.Term.Target, blk.Term.Args)
		case TermCondBr:
			checkEdge(bid, blk.Term.ThenBB, blk.Term.ThenArgs)
			checkEdge(bid, blk.Term.ElseBB, blk.Term.ElseArgs)
		}
	}
	return out
}

// VerifyFunctionLoopFixpoint checks V4: every natural loop has exactly
// one outside predecessor of its header, reached by a single-successor
// unconditional branch (the preheader fixpoint).
func VerifyFunctionLoopFixpoint(m *Module, f Func, dom *Dominance) []error {
	var out []error
	for _, l := range FindLoops(m, f, dom) {
		if _, ok := l.HasCanonicalPreheader(m, dom); !ok {
			out = append(out, violationf(f.Name, "loop header %d lacks a canonical preheader (V4)", l.Header))
		}
	}
	return out
}
