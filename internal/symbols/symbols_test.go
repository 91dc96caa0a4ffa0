package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gaupel/internal/types"
)

func TestInsertDuplicateInCurrentScope(t *testing.T) {
	tbl := New()
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	r1 := tbl.Insert(KindVar, "x", i32, Span{})
	assert.True(t, r1.Ok)
	assert.False(t, r1.IsDuplicate)

	r2 := tbl.Insert(KindVar, "x", i32, Span{})
	assert.False(t, r2.Ok)
	assert.True(t, r2.IsDuplicate)
}

func TestShadowingAcrossScopes(t *testing.T) {
	tbl := New()
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	tbl.Insert(KindVar, "x", i32, Span{})
	tbl.PushScope()
	defer tbl.PopScope()

	r := tbl.Insert(KindVar, "x", i32, Span{})
	assert.True(t, r.Ok)
	assert.True(t, r.IsShadowing)
}

func TestLookupWalksInnermostFirst(t *testing.T) {
	tbl := New()
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)
	text := pool.BuiltinId(types.Text)

	outer := tbl.Insert(KindVar, "x", i32, Span{})
	tbl.PushScope()
	defer tbl.PopScope()
	inner := tbl.Insert(KindVar, "x", text, Span{})

	found, ok := tbl.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, inner.Id, found)
	assert.NotEqual(t, outer.Id, found)
}

func TestPopScopeFallsOutOfLookup(t *testing.T) {
	tbl := New()
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	tbl.PushScope()
	tbl.Insert(KindVar, "y", i32, Span{})
	tbl.PopScope()

	_, ok := tbl.Lookup("y")
	assert.False(t, ok)
}

func TestMutabilitySideTable(t *testing.T) {
	tbl := New()
	pool := types.NewPool()
	i32 := pool.BuiltinId(types.I32)

	r := tbl.Insert(KindVar, "m", i32, Span{})
	tbl.SetMutable(r.Id, true)
	assert.True(t, tbl.IsMutable(r.Id))
}
