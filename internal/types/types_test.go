package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralInterning(t *testing.T) {
	p := NewPool()

	i32 := p.BuiltinId(I32)
	a1 := p.MakeArray(i32, true, 4)
	a2 := p.MakeArray(i32, true, 4)
	assert.Equal(t, a1, a2, "two constructions of the same array type must share one id")

	b1 := p.MakeBorrow(i32, true)
	b2 := p.MakeBorrow(i32, true)
	assert.Equal(t, b1, b2)

	n1 := p.InternPath([]string{"a", "b", "C"})
	n2 := p.InternPath([]string{"a", "b", "C"})
	assert.Equal(t, n1, n2, "named-user types intern by canonical qualified name")
}

func TestOptionalCollapse(t *testing.T) {
	p := NewPool()
	i32 := p.BuiltinId(I32)
	opt1 := p.MakeOptional(i32)
	opt2 := p.MakeOptional(opt1)
	assert.Equal(t, opt1, opt2, "optional(T?) must collapse to T?, no double-optional")
}

func TestErrorAbsorption(t *testing.T) {
	p := NewPool()
	require.NotEqual(t, Invalid, p.Error())
	assert.Equal(t, KindError, p.Get(p.Error()).Kind)
}

func TestFnRecordsPositionalCountSeparately(t *testing.T) {
	p := NewPool()
	i32 := p.BuiltinId(I32)
	text := p.BuiltinId(Text)
	fn := p.MakeFn(i32, []Id{i32, text}, 1, []string{"label"}, []bool{false})
	rec := p.Get(fn)
	assert.Equal(t, 1, rec.PositionalCount)
	assert.Len(t, rec.Params, 2)
	assert.Equal(t, []string{"label"}, rec.Labels)
}

func TestToStringRoundTrip(t *testing.T) {
	p := NewPool()
	i32 := p.BuiltinId(I32)
	opt := p.MakeOptional(i32)
	assert.Equal(t, "i32?", p.ToString(opt))

	borrow := p.MakeBorrow(i32, true)
	assert.Equal(t, "&mut i32", p.ToString(borrow))
}
