package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBagIsAdditive(t *testing.T) {
	b := NewBag()
	b.Add(TypeMismatch(Span{}, "i32", "text"))
	b.Add(NameNotFound(Span{}, "foo"))
	assert.Len(t, b.All(), 2)
	assert.True(t, b.HasErrors())
}

func TestBagStampsUnitId(t *testing.T) {
	b1 := NewBag()
	b2 := NewBag()
	assert.NotEmpty(t, b1.UnitId)
	assert.NotEqual(t, b1.UnitId, b2.UnitId)
}

func TestResetKeepsUnitId(t *testing.T) {
	b := NewBag()
	id := b.UnitId
	b.Add(ReturnOutsideFn(Span{}))
	b.Reset()
	assert.Equal(t, id, b.UnitId)
	assert.Empty(t, b.All())
}

func TestBilingualTemplates(t *testing.T) {
	d := TypeMismatch(Span{}, "i32", "text")
	en := d.Message("en")
	ko := d.Message("ko")
	assert.Contains(t, en, "i32")
	assert.Contains(t, en, "text")
	assert.NotEqual(t, en, ko)
	assert.NotEmpty(t, ko)
}

func TestUnknownCodeFallsBackToCodeString(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Code: Code("not-a-real-code")}
	assert.Equal(t, "not-a-real-code", d.Message("en"))
}
