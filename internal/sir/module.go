package sir

// Module owns every SIR arena produced for one compilation unit (spec.md
// §3.5, §3.7). It is built once by BuildSirModule and consumed read-only by
// the OIR lowering stage beyond this package's scope.
type Module struct {
	values      []Value
	stmts       []Stmt
	blocks      []Block
	funcs       []Func
	fields      []Field
	fieldMembers []FieldMember
	params      []Param
	attrs       []Attr
	args        []Arg
	globals     []Global
	acts        []Act
	switchCases []SwitchCase
}

func newModule() *Module { return &Module{} }

func (m *Module) addValue(v Value) ValueId {
	v.Id = ValueId(len(m.values))
	m.values = append(m.values, v)
	return v.Id
}

// appendStmtBatch appends a fully-constructed run of sibling statements in
// one shot, so the resulting range is contiguous — the representation a
// Block requires (spec.md §3.5). Nested blocks referenced by these
// statements (if/while/do-scope bodies, etc.) must already have been
// appended by the time this is called, exactly as recursive-descent
// lowering naturally produces.
func (m *Module) appendStmtBatch(stmts []Stmt) (StmtId, int) {
	begin := StmtId(len(m.stmts))
	for _, s := range stmts {
		s.Id = StmtId(len(m.stmts))
		m.stmts = append(m.stmts, s)
	}
	return begin, len(stmts)
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

func (m *Module) addField(f Field) FieldId {
	f.Id = FieldId(len(m.fields))
	m.fields = append(m.fields, f)
	return f.Id
}

func (m *Module) addFieldMember(fm FieldMember) FieldMemberId {
	fm.Id = FieldMemberId(len(m.fieldMembers))
	m.fieldMembers = append(m.fieldMembers, fm)
	return fm.Id
}

func (m *Module) addParam(p Param) ParamId {
	p.Id = ParamId(len(m.params))
	m.params = append(m.params, p)
	return p.Id
}

func (m *Module) addAttr(a Attr) AttrId {
	a.Id = AttrId(len(m.attrs))
	m.attrs = append(m.attrs, a)
	return a.Id
}

func (m *Module) addArg(a Arg) ArgId {
	a.Id = ArgId(len(m.args))
	m.args = append(m.args, a)
	return a.Id
}

// appendArgBatch appends a fully-flattened call argument stream in one
// shot, mirroring appendStmtBatch's contiguity guarantee for blocks: a
// group marker's children sit at the positions immediately following it in
// the same batch (spec.md §3.5), so ChildBegin can be computed as an
// absolute id once the batch's base offset is known.
func (m *Module) appendArgBatch(args []Arg) (ArgId, int) {
	begin := ArgId(len(m.args))
	for _, a := range args {
		a.Id = ArgId(len(m.args))
		m.args = append(m.args, a)
	}
	return begin, len(args)
}

// setArgChildRange back-patches a group marker's ChildBegin/ChildCount
// after the batch containing it has been appended.
func (m *Module) setArgChildRange(id ArgId, begin ArgId, count int) {
	m.args[id].ChildBegin = begin
	m.args[id].ChildCount = count
}

func (m *Module) addGlobal(g Global) GlobalId {
	g.Id = GlobalId(len(m.globals))
	m.globals = append(m.globals, g)
	return g.Id
}

func (m *Module) addAct(a Act) ActId {
	a.Id = ActId(len(m.acts))
	m.acts = append(m.acts, a)
	return a.Id
}

func (m *Module) addSwitchCase(sc SwitchCase) SwitchCaseId {
	sc.Id = SwitchCaseId(len(m.switchCases))
	m.switchCases = append(m.switchCases, sc)
	return sc.Id
}

func (m *Module) Value(id ValueId) Value { return m.values[id] }
func (m *Module) Stmt(id StmtId) Stmt    { return m.stmts[id] }
func (m *Module) Block(id BlockId) Block { return m.blocks[id] }
func (m *Module) Func(id FuncId) Func    { return m.funcs[id] }
func (m *Module) Field(id FieldId) Field { return m.fields[id] }
func (m *Module) FieldMember(id FieldMemberId) FieldMember { return m.fieldMembers[id] }
func (m *Module) Param(id ParamId) Param { return m.params[id] }
func (m *Module) Attr(id AttrId) Attr    { return m.attrs[id] }
func (m *Module) Arg(id ArgId) Arg       { return m.args[id] }
func (m *Module) Global(id GlobalId) Global { return m.globals[id] }
func (m *Module) Act(id ActId) Act       { return m.acts[id] }
func (m *Module) SwitchCase(id SwitchCaseId) SwitchCase { return m.switchCases[id] }

func (m *Module) NumFuncs() int  { return len(m.funcs) }
func (m *Module) NumValues() int { return len(m.values) }
func (m *Module) NumStmts() int  { return len(m.stmts) }

// BlockStmts returns the statements covered by a block's contiguous range,
// in order.
func (m *Module) BlockStmts(id BlockId) []Stmt {
	b := m.blocks[id]
	out := make([]Stmt, b.Count)
	for i := 0; i < b.Count; i++ {
		out[i] = m.stmts[int(b.Begin)+i]
	}
	return out
}

// Funcs returns every lowered function, in declaration order.
func (m *Module) Funcs() []Func { return m.funcs }

// Globals returns every lowered global, in declaration order.
func (m *Module) Globals() []Global { return m.globals }

// Fields returns every lowered field/struct declaration, in declaration
// order.
func (m *Module) Fields() []Field { return m.fields }

// Acts returns every lowered acts block, in declaration order.
func (m *Module) Acts() []Act { return m.acts }
