package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderAppendsDenseIds(t *testing.T) {
	b := NewBuilder()
	e1 := b.IntLit(1, Span{})
	e2 := b.IntLit(2, Span{})
	assert.Equal(t, ExprId(0), e1)
	assert.Equal(t, ExprId(1), e2)
	assert.Equal(t, 2, b.Arena().NumExprs())
}

func TestStmtChildrenResolves(t *testing.T) {
	b := NewBuilder()
	inner := b.AddStmt(Stmt{K: StmtReturn})
	block := b.AddStmt(Stmt{K: StmtBlock, Children: []StmtId{inner}})
	children := b.Arena().StmtChildren(block)
	assert.Len(t, children, 1)
	assert.Equal(t, StmtReturn, children[0].K)
}

func TestNameResolveResultLookup(t *testing.T) {
	r := NewNameResolveResult()
	r.ExprToResolved[ExprId(3)] = 7
	sym, ok := r.Expr(ExprId(3))
	assert.True(t, ok)
	assert.EqualValues(t, 7, sym)

	_, ok = r.Expr(ExprId(99))
	assert.False(t, ok)
}
