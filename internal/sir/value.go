package sir

import (
	"gaupel/internal/ast"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// ValueKind discriminates the SIR value variants (spec.md §3.5).
type ValueKind uint8

const (
	ValIntLit ValueKind = iota
	ValFloatLit
	ValStringLit
	ValBoolLit
	ValNullLit
	ValLocal
	ValUnary
	ValBinary
	ValAssign
	ValPostfixInc
	ValBorrow
	ValEscape
	ValIf
	ValBlockExpr
	ValLoopExpr
	ValCall
	ValArrayLit
	ValFieldInit
	ValIndex
	ValField
	ValCast
	ValError
)

// PlaceClass classifies whether a value denotes an assignable location and
// what shape it has (spec.md §3.5).
type PlaceClass uint8

const (
	NotPlace PlaceClass = iota
	Local
	Index
	Field
)

// EffectClass is the three-point effect lattice values join over (spec.md
// §3.5): Pure < MayWrite < Unknown, combined by rank-max.
type EffectClass uint8

const (
	Pure EffectClass = iota
	MayWrite
	Unknown
)

// JoinEffect combines two effect classes by rank-max (spec.md §3.5(b)/(c)):
// a composite's effect is never milder than any of its operands'.
func JoinEffect(a, b EffectClass) EffectClass {
	if a > b {
		return a
	}
	return b
}

// Value is one arena-resident SIR value (spec.md §3.5). Not every field
// applies to every Kind; callers dispatch on Kind first.
type Value struct {
	Id     ValueId
	Kind   ValueKind
	Type   types.Id
	Place  PlaceClass
	Effect EffectClass
	Span   ast.Span

	Op   string // unary/binary/postfix-inc operator spelling
	Text string // literal text (string/int/float source spelling), field/ident name

	Sym       symbols.Id // resolved symbol, for locals/idents
	OriginSym symbols.Id // for assign/postfix-inc: the place's root symbol

	CastTo types.Id

	BorrowIsMut bool

	CalleeSym      symbols.Id
	CalleeDeclStmt ast.StmtId
	CtorOwnerType  types.Id
	CallIsCtor     bool

	A, B, C ValueId // child operands; kind-specific meaning

	ArgBegin ArgId
	ArgCount int

	// BlockExpr: A unused, Block/Tail carry the lowered block and its tail
	Block BlockId
	Tail  ValueId

	// Loop
	LoopBody BlockId

	// ArrayLit
	Elems []ValueId

	// FieldInit
	Entries []FieldInitEntry
}

// FieldInitEntry is one `name: value` entry in a lowered struct literal.
type FieldInitEntry struct {
	Name  string
	Value ValueId
}
