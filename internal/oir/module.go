package oir

// Stats accumulates optimization counters across one pipeline run
// (spec.md §6.2).
type Stats struct {
	CriticalEdgesSplit     int
	Mem2regPhiParams       int
	Mem2regPromotedSlots   int
	GvnCseEliminated       int
	LicmHoisted            int
	LoopCanonicalized      int
	EscapePackElided       int
	EscapeBoundaryRewrites int
	DceRemoved             int
}

// Module owns every OIR arena produced for one compilation unit
// (spec.md §3.6, §3.7). Type Pool, Symbol Table, and this module are
// exclusively owned by the compilation driver for the duration of a
// compilation unit; passes mutate only the arenas here.
type Module struct {
	values []Value
	insts  []Inst
	blocks []Block
	funcs  []Func

	// EscapeHints is a side table marking values that participate in
	// escape-boundary optimization (spec.md §3.6).
	escapeHints map[ValueId]bool

	Stats Stats
}

// NewModule creates an empty OIR module.
func NewModule() *Module {
	return &Module{escapeHints: make(map[ValueId]bool)}
}

func (m *Module) addValue(v Value) ValueId {
	v.Id = ValueId(len(m.values))
	m.values = append(m.values, v)
	return v.Id
}

func (m *Module) addInst(i Inst) InstId {
	i.Id = InstId(len(m.insts))
	m.insts = append(m.insts, i)
	return i.Id
}

func (m *Module) addBlock(b Block) BlockId {
	b.Id = BlockId(len(m.blocks))
	m.blocks = append(m.blocks, b)
	return b.Id
}

func (m *Module) addFunc(f Func) FuncId {
	f.Id = FuncId(len(m.funcs))
	m.funcs = append(m.funcs, f)
	return f.Id
}

func (m *Module) Value(id ValueId) Value { return m.values[id] }
func (m *Module) Inst(id InstId) Inst    { return m.insts[id] }
func (m *Module) Block(id BlockId) Block { return m.blocks[id] }
func (m *Module) Func(id FuncId) Func    { return m.funcs[id] }

func (m *Module) SetValue(id ValueId, v Value) { v.Id = id; m.values[id] = v }
func (m *Module) SetInst(id InstId, i Inst)     { i.Id = id; m.insts[id] = i }
func (m *Module) SetBlock(id BlockId, b Block)  { b.Id = id; m.blocks[id] = b }
func (m *Module) SetFunc(id FuncId, f Func)      { f.Id = id; m.funcs[id] = f }

func (m *Module) NumValues() int { return len(m.values) }
func (m *Module) NumInsts() int  { return len(m.insts) }
func (m *Module) NumBlocks() int { return len(m.blocks) }
func (m *Module) NumFuncs() int  { return len(m.funcs) }

// Funcs returns every function, in declaration order.
func (m *Module) Funcs() []Func { return m.funcs }

// MarkEscape records a value as an escape-boundary participant.
func (m *Module) MarkEscape(id ValueId) { m.escapeHints[id] = true }

// IsEscapeHint reports whether a value was marked as an escape-boundary
// participant.
func (m *Module) IsEscapeHint(id ValueId) bool { return m.escapeHints[id] }

// EscapeHints returns every marked value id, in ascending order.
func (m *Module) EscapeHints() []ValueId {
	out := make([]ValueId, 0, len(m.escapeHints))
	for id := range m.escapeHints {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Clone returns a deep, fully independent copy of the module. This is
// the snapshot mechanism the guarded pass runner uses for rollback
// (spec.md §3.7, §4.6.2, §9): every slice-of-slice field is copied so
// that mutating the clone can never be observed by the original.
func (m *Module) Clone() *Module {
	out := &Module{
		values:      make([]Value, len(m.values)),
		insts:       make([]Inst, len(m.insts)),
		blocks:      make([]Block, len(m.blocks)),
		funcs:       make([]Func, len(m.funcs)),
		escapeHints: make(map[ValueId]bool, len(m.escapeHints)),
		Stats:       m.Stats,
	}
	copy(out.values, m.values)

	for i, inst := range m.insts {
		inst.Args = append([]ValueId(nil), inst.Args...)
		inst.Path = append([]string(nil), inst.Path...)
		out.insts[i] = inst
	}
	for i, b := range m.blocks {
		b.Params = append([]ValueId(nil), b.Params...)
		b.Insts = append([]InstId(nil), b.Insts...)
		b.Term.Args = append([]ValueId(nil), b.Term.Args...)
		b.Term.ThenArgs = append([]ValueId(nil), b.Term.ThenArgs...)
		b.Term.ElseArgs = append([]ValueId(nil), b.Term.ElseArgs...)
		out.blocks[i] = b
	}
	for i, f := range m.funcs {
		f.Blocks = append([]BlockId(nil), f.Blocks...)
		out.funcs[i] = f
	}
	for id, v := range m.escapeHints {
		out.escapeHints[id] = v
	}
	return out
}

// restoreFrom replaces m's contents with snap's, in place. Used by the
// guarded pass runner to roll back a pass attempt that left the module
// in a state the verifier rejects.
func (m *Module) restoreFrom(snap *Module) { *m = *snap }
