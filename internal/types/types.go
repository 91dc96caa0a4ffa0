// Package types implements the type pool: the structurally-interning store
// for every type that can appear in a compilation unit.
package types

import "fmt"

// Id is a dense, stable, opaque index into the pool's type table.
type Id int32

// Invalid is the sentinel for "no type" / "not yet computed".
const Invalid Id = -1

// Kind discriminates the variants a Type can take.
type Kind uint8

const (
	KindError Kind = iota
	KindBuiltin
	KindNamed
	KindPtr
	KindBorrow
	KindEscape
	KindOptional
	KindArray
	KindFn
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindBuiltin:
		return "builtin"
	case KindNamed:
		return "named"
	case KindPtr:
		return "ptr"
	case KindBorrow:
		return "borrow"
	case KindEscape:
		return "escape"
	case KindOptional:
		return "optional"
	case KindArray:
		return "array"
	case KindFn:
		return "fn"
	default:
		return "unknown"
	}
}

// Builtin enumerates the fixed builtin type set.
type Builtin uint8

const (
	I8 Builtin = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	Isize
	Usize
	F32
	F64
	F128
	Bool
	Char
	Text
	Unit
	Never
	Null
	InferInteger
)

var builtinNames = map[Builtin]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128",
	Isize: "isize", Usize: "usize",
	F32: "f32", F64: "f64", F128: "f128",
	Bool: "bool", Char: "char", Text: "text", Unit: "unit",
	Never: "never", Null: "null", InferInteger: "infer-integer",
}

func (b Builtin) String() string { return builtinNames[b] }

// signedIntegers, in fit-order smallest-to-largest, used by deferred
// integer finalization (spec.md §4.3.3): the smallest signed type that
// fits a pending literal's value.
var signedIntegerFitOrder = []Builtin{I8, I16, I32, I64, I128}

// SignedIntegerFitOrder returns the finalization search order.
func SignedIntegerFitOrder() []Builtin {
	out := make([]Builtin, len(signedIntegerFitOrder))
	copy(out, signedIntegerFitOrder)
	return out
}

var integerBuiltins = map[Builtin]bool{
	I8: true, I16: true, I32: true, I64: true, I128: true,
	U8: true, U16: true, U32: true, U64: true, U128: true,
	Isize: true, Usize: true, InferInteger: true,
}

var floatBuiltins = map[Builtin]bool{F32: true, F64: true, F128: true}

// Record is the structural content of one interned type.
type Record struct {
	Kind Kind

	// KindBuiltin
	Builtin Builtin

	// KindNamed: canonical qualified name, e.g. "a::b::C"
	Name string

	// KindPtr / KindBorrow
	Pointee Id
	IsMut   bool

	// KindEscape / KindOptional
	Inner Id

	// KindArray
	Elem    Id
	HasSize bool
	Size    int64

	// KindFn
	Ret               Id
	Params            []Id
	PositionalCount   int
	Labels            []string
	HasDefault        []bool
}

// Pool interns and stores Type records. Exactly one Pool is owned per
// compilation unit, shared read/write across Tyck, the SIR builder, and
// (read-only) the OIR side (spec.md §5).
type Pool struct {
	mu       guardMutex
	records  []Record
	byKey    map[string]Id
	builtins map[Builtin]Id
	errorId  Id
}

// NewPool creates an empty pool and interns the builtin and error types.
func NewPool() *Pool {
	p := &Pool{
		byKey:    make(map[string]Id),
		builtins: make(map[Builtin]Id),
	}
	p.errorId = p.intern(Record{Kind: KindError}, "error")
	for b := range builtinNames {
		p.builtins[b] = p.intern(Record{Kind: KindBuiltin, Builtin: b}, "builtin:"+b.String())
	}
	return p
}

func (p *Pool) intern(r Record, key string) Id {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.byKey[key]; ok {
		return id
	}
	id := Id(len(p.records))
	p.records = append(p.records, r)
	p.byKey[key] = id
	return id
}

// Error returns the interned error type. error absorbs propagation:
// any operation returning a type produces Error on error inputs.
func (p *Pool) Error() Id { return p.errorId }

// BuiltinId returns the interned id for a builtin kind.
func (p *Pool) BuiltinId(b Builtin) Id { return p.builtins[b] }

// Get dereferences an id. Calling Get(Invalid) is undefined; callers must
// check ids before dereferencing, per spec.md §4.1.
func (p *Pool) Get(id Id) Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records[id]
}

// IsInteger reports whether id names an integer builtin (including the
// infer-integer placeholder).
func (p *Pool) IsInteger(id Id) bool {
	r := p.Get(id)
	return r.Kind == KindBuiltin && integerBuiltins[r.Builtin]
}

// IsFloat reports whether id names a float builtin.
func (p *Pool) IsFloat(id Id) bool {
	r := p.Get(id)
	return r.Kind == KindBuiltin && floatBuiltins[r.Builtin]
}

// MakeOptional interns optional(inner). optional(T?) collapses to T? — no
// double-optional (spec.md §4.1).
func (p *Pool) MakeOptional(inner Id) Id {
	if r := p.Get(inner); r.Kind == KindOptional {
		return inner
	}
	key := fmt.Sprintf("opt:%d", inner)
	return p.intern(Record{Kind: KindOptional, Inner: inner}, key)
}

// MakeArray interns array(elem, has_size, size?).
func (p *Pool) MakeArray(elem Id, hasSize bool, size int64) Id {
	key := fmt.Sprintf("arr:%d:%v:%d", elem, hasSize, size)
	return p.intern(Record{Kind: KindArray, Elem: elem, HasSize: hasSize, Size: size}, key)
}

// MakeBorrow interns borrow(pointee, is_mut).
func (p *Pool) MakeBorrow(pointee Id, isMut bool) Id {
	key := fmt.Sprintf("borrow:%d:%v", pointee, isMut)
	return p.intern(Record{Kind: KindBorrow, Pointee: pointee, IsMut: isMut}, key)
}

// MakeEscape interns escape(pointee).
func (p *Pool) MakeEscape(pointee Id) Id {
	key := fmt.Sprintf("escape:%d", pointee)
	return p.intern(Record{Kind: KindEscape, Pointee: pointee}, key)
}

// MakePtr interns ptr(pointee, is_mut).
func (p *Pool) MakePtr(pointee Id, isMut bool) Id {
	key := fmt.Sprintf("ptr:%d:%v", pointee, isMut)
	return p.intern(Record{Kind: KindPtr, Pointee: pointee, IsMut: isMut}, key)
}

// MakeFn interns fn(ret, params, positional_count, labels, has_default).
// positional_count is recorded separately from len(params); any params
// beyond it form the trailing named group (spec.md §4.1).
func (p *Pool) MakeFn(ret Id, params []Id, positionalCount int, labels []string, hasDefault []bool) Id {
	key := fmt.Sprintf("fn:%d:%v:%d:%v:%v", ret, params, positionalCount, labels, hasDefault)
	return p.intern(Record{
		Kind:            KindFn,
		Ret:             ret,
		Params:          append([]Id(nil), params...),
		PositionalCount: positionalCount,
		Labels:          append([]string(nil), labels...),
		HasDefault:      append([]bool(nil), hasDefault...),
	}, key)
}

// InternIdent interns a named-user type by a single identifier.
func (p *Pool) InternIdent(name string) Id { return p.InternPath([]string{name}) }

// InternPath interns a named-user type by canonical qualified name
// (interning by name, not by declaration site — spec.md §3.2(b)).
func (p *Pool) InternPath(segs []string) Id {
	name := joinPath(segs)
	key := "named:" + name
	return p.intern(Record{Kind: KindNamed, Name: name}, key)
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}

// ToString renders id for diagnostics.
func (p *Pool) ToString(id Id) string {
	if id == Invalid {
		return "<invalid>"
	}
	r := p.Get(id)
	switch r.Kind {
	case KindError:
		return "<error>"
	case KindBuiltin:
		return r.Builtin.String()
	case KindNamed:
		return r.Name
	case KindPtr:
		mut := ""
		if r.IsMut {
			mut = "mut "
		}
		return fmt.Sprintf("*%s%s", mut, p.ToString(r.Pointee))
	case KindBorrow:
		mut := ""
		if r.IsMut {
			mut = "mut "
		}
		return fmt.Sprintf("&%s%s", mut, p.ToString(r.Pointee))
	case KindEscape:
		return fmt.Sprintf("&&%s", p.ToString(r.Pointee))
	case KindOptional:
		return p.ToString(r.Inner) + "?"
	case KindArray:
		if r.HasSize {
			return fmt.Sprintf("[%s; %d]", p.ToString(r.Elem), r.Size)
		}
		return fmt.Sprintf("[%s]", p.ToString(r.Elem))
	case KindFn:
		s := "fn("
		for i, param := range r.Params {
			if i > 0 {
				s += ", "
			}
			if i >= r.PositionalCount {
				label := ""
				if idx := i - r.PositionalCount; idx < len(r.Labels) {
					label = r.Labels[idx] + ": "
				}
				s += label
			}
			s += p.ToString(param)
		}
		return s + ") -> " + p.ToString(r.Ret)
	default:
		return "<unknown>"
	}
}

// Equal reports whether two ids name the same interned type. Because
// interning is structural, equality is just id equality.
func (p *Pool) Equal(a, b Id) bool { return a == b }
