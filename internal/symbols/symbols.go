// Package symbols implements the lexically-scoped symbol table: a
// name -> symbol-id mapping with scope push/pop, shadowing detection, and
// a mutability side-table (spec.md §3.3/§4.2).
package symbols

import (
	"github.com/sasha-s/go-deadlock"

	"gaupel/internal/types"
)

// Id is a dense, stable index into the table's symbol vector.
type Id int32

// Invalid is the "no symbol" sentinel.
const Invalid Id = -1

// Kind is the kind of entity a symbol names.
type Kind uint8

const (
	KindVar Kind = iota
	KindFn
	KindType
	KindAct
	KindField
)

// Span is a source location, opaque to this package (owned by the
// external source manager per spec.md §6.1).
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Symbol is one entry in the table.
type Symbol struct {
	Kind          Kind
	Name          string
	DeclaredType  types.Id
	DeclSpan      Span
}

// InsertResult reports the outcome of an Insert call.
type InsertResult struct {
	Ok          bool
	Id          Id
	IsDuplicate bool
	IsShadowing bool
}

type scope struct {
	names map[string]Id
}

// Table is a stack of lexical scopes over a dense symbol vector. One Table
// is owned per compilation unit.
type Table struct {
	mu       deadlock.Mutex
	symbols  []Symbol
	mutable  map[Id]bool
	scopes   []*scope
}

// New creates a table with a single root (global) scope already pushed.
func New() *Table {
	t := &Table{mutable: make(map[Id]bool)}
	t.PushScope()
	return t
}

// PushScope opens a new, innermost lexical scope.
func (t *Table) PushScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scopes = append(t.scopes, &scope{names: make(map[string]Id)})
}

// PopScope closes the innermost lexical scope. Symbols it declared remain
// addressable by id (arenas are grow-only) but fall out of name lookup.
func (t *Table) PopScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.scopes) == 0 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Insert adds a symbol to the current (innermost) scope. It fails with
// IsDuplicate if the name already exists in the current scope; it reports
// IsShadowing (but still inserts) if the name exists only in an enclosing
// scope.
func (t *Table) Insert(kind Kind, name string, declaredType types.Id, span Span) InsertResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.scopes[len(t.scopes)-1]
	if _, exists := cur.names[name]; exists {
		return InsertResult{Ok: false, Id: Invalid, IsDuplicate: true}
	}

	shadowing := false
	for i := len(t.scopes) - 2; i >= 0; i-- {
		if _, exists := t.scopes[i].names[name]; exists {
			shadowing = true
			break
		}
	}

	id := Id(len(t.symbols))
	t.symbols = append(t.symbols, Symbol{
		Kind:         kind,
		Name:         name,
		DeclaredType: declaredType,
		DeclSpan:     span,
	})
	cur.names[name] = id

	return InsertResult{Ok: true, Id: id, IsShadowing: shadowing}
}

// Lookup walks scopes innermost-to-outermost; the first match wins.
func (t *Table) Lookup(name string) (Id, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if id, ok := t.scopes[i].names[name]; ok {
			return id, true
		}
	}
	return Invalid, false
}

// LookupInCurrent looks up name only in the innermost scope.
func (t *Table) LookupInCurrent(name string) (Id, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.scopes[len(t.scopes)-1]
	id, ok := cur.names[name]
	return id, ok
}

// UpdateDeclaredType rewrites a symbol's declared type in place. Used by
// deferred integer resolution (spec.md §4.3.3) to back-patch a symbol's
// type once its pending infer-integer literal resolves.
func (t *Table) UpdateDeclaredType(id Id, ty types.Id) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols[id].DeclaredType = ty
}

// Symbol dereferences an id.
func (t *Table) Symbol(id Id) Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.symbols[id]
}

// SetMutable records the mutability bit for a symbol in the side-table.
func (t *Table) SetMutable(id Id, mutable bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mutable[id] = mutable
}

// IsMutable reports the mutability bit for a symbol (false if never set).
func (t *Table) IsMutable(id Id) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mutable[id]
}

// Depth reports the current scope-stack depth, mainly for tests.
func (t *Table) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.scopes)
}
