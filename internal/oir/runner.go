package oir

// Pass is one optimization transform in the pipeline (spec.md §4.6).
// Apply mutates m in place and reports whether it changed anything;
// Name feeds pass tracing and Description documents intent, mirroring
// the optimization-pass shape this package's pipeline generalizes.
type Pass interface {
	Name() string
	Description() string
	Apply(m *Module) bool
}

// RunGuardedPassOnce attempts pass exactly once. It snapshots m first;
// if Apply reports no change, the snapshot is discarded and the
// original module stands. If Apply changed the module, the result is
// verified; a violation restores the snapshot and reports no change,
// otherwise the new state is kept. This snapshot/verify/rollback cycle
// is the correctness gate — no malformed IR escapes into a later stage
// (spec.md §4.6.2, §9).
func RunGuardedPassOnce(pass Pass, m *Module, requireLoopFixpoint bool) bool {
	snap := m.Clone()
	if !pass.Apply(m) {
		return false
	}
	if violations := VerifyPipelineInvariants(m, requireLoopFixpoint); len(violations) > 0 {
		m.restoreFrom(snap)
		return false
	}
	return true
}

// RunGuardedPassFixpoint repeats pass, guarded, until it stops changing
// the module or maxIters attempts are spent; it returns the number of
// attempts that were kept.
func RunGuardedPassFixpoint(pass Pass, m *Module, requireLoopFixpoint bool, maxIters int) int {
	kept := 0
	for kept < maxIters {
		if !RunGuardedPassOnce(pass, m, requireLoopFixpoint) {
			break
		}
		kept++
	}
	return kept
}
