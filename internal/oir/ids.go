// Package oir implements the Optimization IR: a module-level SSA-form
// control-flow IR (block parameters as phi-equivalents), its structural
// verifier, dominance/loop analysis, and a guarded, invariant-checked
// optimization pipeline (spec.md §3.6, §4.5, §4.6). Like internal/ast and
// internal/sir, every node family lives in its own dense arena addressed
// by an opaque, stable id.
package oir

// ValueId, InstId, and friends are dense indices into their owning
// Module slice. Invalid is the per-type "no node" sentinel, following
// the same convention as internal/ast and internal/sir.
type (
	ValueId int32
	InstId  int32
	BlockId int32
	FuncId  int32
)

const (
	InvalidValue ValueId = -1
	InvalidInst  InstId  = -1
	InvalidBlock BlockId = -1
	InvalidFunc  FuncId  = -1
)
