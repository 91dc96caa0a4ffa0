package sir

import (
	"gaupel/internal/ast"
	"gaupel/internal/types"
)

var builtinByName = map[string]types.Builtin{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	"isize": types.Isize, "usize": types.Usize,
	"f32": types.F32, "f64": types.F64, "f128": types.F128,
	"bool": types.Bool, "char": types.Char, "text": types.Text, "unit": types.Unit,
	"never": types.Never, "null": types.Null,
}

// resolveTypeNode mirrors internal/tyck's own copy of this pure mapping
// (TypeNode surface syntax -> an interned types.Id): both components need
// it and neither owns the other, so it is duplicated rather than
// cross-imported (spec.md §3.7 keeps Tyck and the SIR builder as peers
// sharing only the type pool).
func (b *builder) resolveTypeNode(id ast.TypeNodeId) types.Id {
	if id == ast.InvalidTypeNode {
		return b.pool.BuiltinId(types.Unit)
	}
	n := b.arena.TypeNode(id)
	var base types.Id
	switch {
	case n.IsArray:
		base = b.pool.MakeArray(b.resolveTypeNode(n.Elem), n.HasSize, n.Size)
	case len(n.Path) > 0:
		base = b.pool.InternPath(n.Path)
	default:
		if bi, ok := builtinByName[n.Name]; ok {
			base = b.pool.BuiltinId(bi)
		} else {
			base = b.pool.InternIdent(n.Name)
		}
	}
	if n.IsEscape {
		base = b.pool.MakeEscape(base)
	}
	if n.IsBorrow {
		base = b.pool.MakeBorrow(base, n.IsMut)
	}
	if n.IsPtr {
		base = b.pool.MakePtr(base, n.IsMut)
	}
	if n.IsOptional {
		base = b.pool.MakeOptional(base)
	}
	return base
}
