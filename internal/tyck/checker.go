package tyck

import (
	"math/big"

	"gaupel/internal/ast"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// pendingInt is one unresolved infer-integer literal (spec.md §3.4). A
// single literal can be reached through more than one ExprId — once
// through the literal expression itself, again through every identifier
// expression that reads a variable bound to it before its type is known
// — so ExprIds tracks every slot that needs to be back-patched together
// once the literal resolves.
type pendingInt struct {
	Value        *big.Int
	Resolved     bool
	ResolvedType types.Id
	Span         ast.Span
	ExprIds      []ast.ExprId
}

// loopFrame tracks one active loop-expression's break/flow facts
// (spec.md §3.4, §4.3.7).
type loopFrame struct {
	MayNaturalEnd bool
	HasAnyBreak   bool
	HasValueBreak bool
	HasNullBreak  bool
	JoinedValue   types.Id
}

// fnContext is the active function's checking context (spec.md §3.4).
type fnContext struct {
	InFn      bool
	RetType   types.Id
	IsPure    bool
	IsComptime bool
}

// actsSelection names which acts set is visible for an owner type in a
// lexical region: either the default set, or a specific named decl.
type actsSelection struct {
	Named   bool
	DeclStmt ast.StmtId
}

// actsOperatorKey / actsMethodKey index the acts maps (spec.md §3.4).
type actsOperatorKey struct {
	Owner     types.Id
	Op        string
	IsPostfix bool
}

// field ABI metadata (spec.md §3.4).
type fieldAbiMeta struct {
	StmtId ast.StmtId
	Layout string // "" | "C"
	Align  int
}

// Checker holds all per-compilation-unit Tyck state (spec.md §3.4). One
// Checker is constructed per call to CheckProgram and discarded after.
type Checker struct {
	arena *ast.Arena
	nr    *ast.NameResolveResult
	pool  *types.Pool
	syms  *symbols.Table
	res   *TyckResult
	lang  string

	// expr_types lives on TyckResult directly (dense ExprId -> type);
	// the remaining per-run caches live here.
	exprValueCtxCache map[ast.ExprId]types.Id // slot-sensitive cache (block-exprs, value context)

	pendingIntSym  map[symbols.Id]*pendingInt
	pendingIntExpr map[ast.ExprId]*pendingInt

	loopStack []*loopFrame
	fnStack   []*fnContext

	actsSelectionStack []map[types.Id]actsSelection
	symbolActsOverride map[symbols.Id]actsSelection

	actsOperatorMap map[actsOperatorKey][]ast.StmtId
	actsMethodMap   map[types.Id]map[string][]ast.StmtId

	// fnDeclActsOwner maps an acts-attached FnDecl back to its enclosing
	// StmtActsDecl, so a named acts-selection scope can filter candidates
	// down to one specific acts block (spec.md §4.3.5).
	fnDeclActsOwner map[ast.StmtId]ast.StmtId

	// actsDeclsByOwnerName resolves `use T with acts(Name)` to a concrete
	// StmtActsDecl id.
	actsDeclsByOwnerName map[types.Id]map[string]ast.StmtId

	fieldAbiMeta map[types.Id]fieldAbiMeta

	namespaceStack  []string
	importAliasStack []map[string]string

	// overload sets: qualified fn name -> candidate FnDecl stmt ids
	fnOverloadSets map[string][]ast.StmtId

	// global scope qualified name -> symbol id, built in pass 1
	qualifiedSymbols map[string]symbols.Id
}

// newChecker allocates a checker bound to one arena/pool/symbol-table for
// the duration of check_program.
func newChecker(arena *ast.Arena, nr *ast.NameResolveResult, pool *types.Pool, syms *symbols.Table, lang string) *Checker {
	return &Checker{
		arena: arena,
		nr:    nr,
		pool:  pool,
		syms:  syms,
		lang:  lang,

		exprValueCtxCache: make(map[ast.ExprId]types.Id),
		pendingIntSym:     make(map[symbols.Id]*pendingInt),
		pendingIntExpr:    make(map[ast.ExprId]*pendingInt),

		symbolActsOverride: make(map[symbols.Id]actsSelection),
		actsOperatorMap:    make(map[actsOperatorKey][]ast.StmtId),
		actsMethodMap:      make(map[types.Id]map[string][]ast.StmtId),
		fnDeclActsOwner:      make(map[ast.StmtId]ast.StmtId),
		actsDeclsByOwnerName: make(map[types.Id]map[string]ast.StmtId),
		fieldAbiMeta:         make(map[types.Id]fieldAbiMeta),

		fnOverloadSets:   make(map[string][]ast.StmtId),
		qualifiedSymbols: make(map[string]symbols.Id),
	}
}

// CheckProgram is Tyck's public contract (spec.md §4.3.1). All per-run
// caches are hard-reset on entry, making the call idempotent at call
// granularity.
func CheckProgram(arena *ast.Arena, program ast.StmtId, opts Options) *TyckResult {
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}
	c := newChecker(arena, opts.NameResolve, opts.Pool, opts.Symbols, lang)
	c.res = newResult(arena.NumExprs())

	c.precollect(program)
	c.checkOverloadSetConflicts()
	c.checkProgramBody(program)
	c.finalizePendingIntegers()

	c.res.Ok = !c.res.Bag.HasErrors()
	for _, d := range c.res.Bag.All() {
		if d.Severity.String() == "error" {
			c.res.Errors = append(c.res.Errors, d)
		}
	}
	return c.res
}

func (c *Checker) pushLoop() *loopFrame {
	f := &loopFrame{MayNaturalEnd: true, JoinedValue: types.Invalid}
	c.loopStack = append(c.loopStack, f)
	return f
}

func (c *Checker) popLoop() *loopFrame {
	n := len(c.loopStack)
	f := c.loopStack[n-1]
	c.loopStack = c.loopStack[:n-1]
	return f
}

func (c *Checker) currentLoop() *loopFrame {
	if len(c.loopStack) == 0 {
		return nil
	}
	return c.loopStack[len(c.loopStack)-1]
}

func (c *Checker) pushFn(ret types.Id, isPure, isComptime bool) {
	c.fnStack = append(c.fnStack, &fnContext{InFn: true, RetType: ret, IsPure: isPure, IsComptime: isComptime})
}

func (c *Checker) popFn() {
	c.fnStack = c.fnStack[:len(c.fnStack)-1]
}

func (c *Checker) currentFn() *fnContext {
	if len(c.fnStack) == 0 {
		return nil
	}
	return c.fnStack[len(c.fnStack)-1]
}
