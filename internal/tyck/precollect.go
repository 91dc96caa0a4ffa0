package tyck

import (
	"strings"

	"github.com/iancoleman/strcase"

	"gaupel/internal/ast"
	"gaupel/internal/diag"
	"gaupel/internal/symbols"
	"gaupel/internal/types"
)

// precollect is Tyck pass 1 (spec.md §4.3.2): build qualified names for
// every function/field/proto/class/acts/global declaration and insert
// them into the global scope, before any expression is checked.
func (c *Checker) precollect(program ast.StmtId) {
	c.walkTopLevel(program, nil)
}

// walkTopLevel recursively walks nest namespace directives, accumulating
// namespace segments, and dispatches each leaf declaration.
func (c *Checker) walkTopLevel(stmtId ast.StmtId, ns []string) {
	s := c.arena.Stmt(stmtId)
	switch s.K {
	case ast.StmtProgram, ast.StmtBlock, ast.StmtDoScope:
		for _, child := range s.Children {
			c.walkTopLevel(child, ns)
		}
	case ast.StmtNest:
		nested := append(append([]string(nil), ns...), s.Name)
		for _, child := range s.Children {
			c.walkTopLevel(child, nested)
		}
	case ast.StmtFnDecl:
		c.precollectFn(stmtId, s, ns)
	case ast.StmtFieldDecl:
		c.precollectField(stmtId, s, ns)
	case ast.StmtActsDecl:
		c.precollectActs(stmtId, s, ns)
	case ast.StmtClassDecl:
		c.precollectClass(stmtId, s, ns)
	case ast.StmtGlobalDecl:
		c.precollectGlobal(stmtId, s, ns)
	}
}

func qualify(ns []string, name string) string {
	if len(ns) == 0 {
		return name
	}
	return strings.Join(ns, "::") + "::" + name
}

// mangle produces a stable, collision-checkable projected name for an
// overload candidate: qualified name plus a snake_case-normalized
// positional-type signature.
func mangle(qualifiedName string, paramTypeNames []string) string {
	return strcase.ToSnake(qualifiedName) + "__" + strcase.ToSnake(strings.Join(paramTypeNames, "_"))
}

func (c *Checker) resolveTypeNode(id ast.TypeNodeId) types.Id {
	if id == ast.InvalidTypeNode {
		return c.pool.BuiltinId(types.Unit)
	}
	n := c.arena.TypeNode(id)
	var base types.Id
	switch {
	case n.IsArray:
		base = c.pool.MakeArray(c.resolveTypeNode(n.Elem), n.HasSize, n.Size)
	case len(n.Path) > 0:
		base = c.pool.InternPath(n.Path)
	default:
		if b, ok := builtinByName[n.Name]; ok {
			base = c.pool.BuiltinId(b)
		} else {
			base = c.pool.InternIdent(n.Name)
		}
	}
	if n.IsEscape {
		base = c.pool.MakeEscape(base)
	}
	if n.IsBorrow {
		base = c.pool.MakeBorrow(base, n.IsMut)
	}
	if n.IsPtr {
		base = c.pool.MakePtr(base, n.IsMut)
	}
	if n.IsOptional {
		base = c.pool.MakeOptional(base)
	}
	return base
}

var builtinByName = map[string]types.Builtin{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	"isize": types.Isize, "usize": types.Usize,
	"f32": types.F32, "f64": types.F64, "f128": types.F128,
	"bool": types.Bool, "char": types.Char, "text": types.Text, "unit": types.Unit,
	"never": types.Never, "null": types.Null,
}

func (c *Checker) precollectFn(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	qualified := qualify(ns, s.Name)

	paramTypes := make([]types.Id, len(s.Params))
	labels := make([]string, 0)
	hasDefault := make([]bool, 0)
	for i, pid := range s.Params {
		p := c.arena.Param(pid)
		paramTypes[i] = c.resolveTypeNode(p.Type)
		if i >= s.PositionalCount {
			labels = append(labels, p.Label)
			hasDefault = append(hasDefault, p.HasDefault)
		}
	}
	retType := c.resolveTypeNode(s.RetType)
	fnType := c.pool.MakeFn(retType, paramTypes, s.PositionalCount, labels, hasDefault)

	kind := symbols.KindFn
	result := c.syms.Insert(kind, qualified, fnType, spanOf(s.Span))
	// Overloads share a qualified name deliberately; conflicting or
	// colliding signatures are flagged later, once every candidate under
	// this name has been precollected, by checkOverloadSetConflicts.
	c.qualifiedSymbols[qualified] = result.Id
	c.res.FnQualifiedNames[stmtId] = qualified
	c.fnOverloadSets[qualified] = append(c.fnOverloadSets[qualified], stmtId)

	if s.IsC {
		c.checkCAbiFunction(stmtId, s, qualified)
	}
}

func (c *Checker) precollectField(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	qualified := qualify(ns, s.Name)
	owner := c.pool.InternPath(append(append([]string(nil), ns...), s.Name))
	c.syms.Insert(symbols.KindType, qualified, owner, spanOf(s.Span))
	c.fieldAbiMeta[owner] = fieldAbiMeta{StmtId: stmtId, Layout: s.Layout}
}

func (c *Checker) precollectClass(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	qualified := qualify(ns, s.Name)
	owner := c.pool.InternPath(append(append([]string(nil), ns...), s.Name))
	c.syms.Insert(symbols.KindType, qualified, owner, spanOf(s.Span))
	for _, child := range s.Children {
		if c.arena.Stmt(child).K == ast.StmtFnDecl {
			c.precollectFn(child, c.arena.Stmt(child), append(ns, s.Name))
		}
	}
}

func (c *Checker) precollectGlobal(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	qualified := qualify(ns, s.Name)
	declType := c.resolveTypeNode(s.DeclType)
	result := c.syms.Insert(symbols.KindVar, qualified, declType, spanOf(s.Span))
	if result.IsDuplicate {
		c.res.Bag.Add(diag.DuplicateDecl(toDiagSpan(s.Span), qualified))
	}
	c.syms.SetMutable(result.Id, s.IsMut)

	if s.IsC && !s.Static {
		c.res.Bag.Add(diag.CAbiGlobalNotStatic(toDiagSpan(s.Span), qualified))
	}
}

// precollectActs indexes operator and method declarations attached to an
// owner type (spec.md §4.3.5). s.PathSegs names the owner type path;
// s.ActsNames[0], if present, is this acts set's own name (for
// `use T with acts(Name)` selection); s.Children holds the nested
// operator/method FnDecl stmts.
func (c *Checker) precollectActs(stmtId ast.StmtId, s ast.Stmt, ns []string) {
	ownerSegs := make([]string, len(s.PathSegs))
	for i, segId := range s.PathSegs {
		ownerSegs[i] = c.arena.PathSeg(segId).Name
	}
	owner := c.pool.InternPath(ownerSegs)
	if c.actsDeclsByOwnerName[owner] == nil {
		c.actsDeclsByOwnerName[owner] = make(map[string]ast.StmtId)
	}
	c.actsDeclsByOwnerName[owner][s.Name] = stmtId

	for _, child := range s.Children {
		fn := c.arena.Stmt(child)
		if fn.K != ast.StmtFnDecl {
			continue
		}
		c.precollectFn(child, fn, append(ns, s.Name))
		c.fnDeclActsOwner[child] = stmtId

		if isOperatorName(fn.Name) {
			op, postfix := parseOperatorName(fn.Name)
			key := actsOperatorKey{Owner: owner, Op: op, IsPostfix: postfix}
			c.actsOperatorMap[key] = append(c.actsOperatorMap[key], child)
		} else {
			if c.actsMethodMap[owner] == nil {
				c.actsMethodMap[owner] = make(map[string][]ast.StmtId)
			}
			c.actsMethodMap[owner][fn.Name] = append(c.actsMethodMap[owner][fn.Name], child)
		}
	}
}

// isOperatorName / parseOperatorName recognize the "op$+"-style encoding
// a resolved-AST producer uses for acts operator declarations (the
// surface grammar for `acts for T { fn +(...) }` is outside this
// repository's scope; this is the stable post-resolution name shape).
func isOperatorName(name string) bool {
	return strings.HasPrefix(name, "op$")
}

func parseOperatorName(name string) (op string, isPostfix bool) {
	rest := strings.TrimPrefix(name, "op$")
	if strings.HasSuffix(rest, "$postfix") {
		return strings.TrimSuffix(rest, "$postfix"), true
	}
	return rest, false
}

func spanOf(s ast.Span) symbols.Span {
	return symbols.Span{File: s.File, StartLine: s.StartLine, StartCol: s.StartCol, EndLine: s.EndLine, EndCol: s.EndCol}
}

func toDiagSpan(s ast.Span) diag.Span {
	return diag.Span{File: s.File, StartLine: s.StartLine, StartCol: s.StartCol, EndLine: s.EndLine, EndCol: s.EndCol}
}
