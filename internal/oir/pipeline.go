package oir

// maxPassFixpointIters bounds how many guarded attempts a fixpoint stage
// gets before the pipeline moves on regardless (spec.md §4.6.1's stages
// are expected to converge in a handful of iterations on realistic
// input; a runaway here is a pass bug, not legitimate work).
const maxPassFixpointIters = 16

// stageKind selects whether a pipeline stage runs once or to a guarded
// fixpoint.
type stageKind uint8

const (
	stageOnce stageKind = iota
	stageFixpoint
)

type stage struct {
	pass Pass
	kind stageKind
}

// Pipeline runs the fixed, ordered optimization schedule over an OIR
// module. Each stage is snapshot-guarded (spec.md §4.6.2): a stage that
// leaves the module unverifiable is rolled back and treated as a no-op,
// never as a pipeline failure.
type Pipeline struct {
	stages []stage
	// Trace records, in order, the name of every stage that actually
	// changed the module and how many guarded attempts it kept.
	Trace []StageResult
}

// StageResult records one stage's outcome for diagnostics.
type StageResult struct {
	Name string
	Kept int
}

// NewPipeline builds the 13-stage schedule named in spec.md §4.6.1:
// simplify_cfg, split_critical_edges, canonicalize_loops,
// normalize_phi_edge_casts, const_fold, local_load_forward,
// global_mem2reg_ssa, gvn_cse, licm, then a second pass of
// canonicalize_loops, local_load_forward, and normalize_phi_edge_casts
// to re-canonicalize what mem2reg and licm introduced, and finally
// optimize_escape_handles, dce_pure_insts, and a closing simplify_cfg.
func NewPipeline() *Pipeline {
	return &Pipeline{
		stages: []stage{
			{simplifyCFGPass{}, stageFixpoint},
			{splitCriticalEdgesPass{}, stageOnce},
			{canonicalizeLoopsPass{}, stageFixpoint},
			{normalizePhiEdgeCastsPass{}, stageOnce},
			{constFoldPass{}, stageFixpoint},
			{localLoadForwardPass{}, stageFixpoint},
			{globalMem2regSSAPass{}, stageOnce},
			{gvnCsePass{}, stageFixpoint},
			{licmPass{}, stageOnce},
			{canonicalizeLoopsPass{}, stageFixpoint},
			{localLoadForwardPass{}, stageFixpoint},
			{normalizePhiEdgeCastsPass{}, stageOnce},
			{optimizeEscapeHandlesPass{}, stageOnce},
			{dcePureInstsPass{}, stageFixpoint},
			{simplifyCFGPass{}, stageFixpoint},
		},
	}
}

// Run drives every stage over m in order. requireLoopFixpoint gates V4:
// passes before the first canonicalize_loops stage run with it
// relaxed, since a module fresh off the builder may not yet be in
// canonical loop form; from then on this pipeline always requires it,
// since canonicalize_loops itself is the first stage that establishes
// it and every later stage is obliged to preserve it.
func (p *Pipeline) Run(m *Module) []error {
	p.Trace = p.Trace[:0]
	sawCanonicalize := false
	for _, st := range p.stages {
		requireLoopFixpoint := sawCanonicalize
		var kept int
		switch st.kind {
		case stageFixpoint:
			kept = RunGuardedPassFixpoint(st.pass, m, requireLoopFixpoint, maxPassFixpointIters)
		default:
			if RunGuardedPassOnce(st.pass, m, requireLoopFixpoint) {
				kept = 1
			}
		}
		if st.pass.Name() == "canonicalize_loops" {
			sawCanonicalize = true
		}
		if kept > 0 {
			p.Trace = append(p.Trace, StageResult{Name: st.pass.Name(), Kept: kept})
		}
	}
	return VerifyPipelineInvariants(m, true)
}

// RunFixedPipeline runs the fixed 13-stage schedule over m once,
// discarding the trace. It is the convenience entry point callers that
// don't need per-stage diagnostics reach for.
func RunFixedPipeline(m *Module) []error {
	return NewPipeline().Run(m)
}
