package tyck

import (
	"gaupel/internal/ast"
	"gaupel/internal/types"
)

// pushActsSelection opens a new lexical acts-selection scope, used for the
// body of a `use T with acts(Name)` block (spec.md §4.3.5).
func (c *Checker) pushActsSelection() {
	c.actsSelectionStack = append(c.actsSelectionStack, make(map[types.Id]actsSelection))
}

func (c *Checker) popActsSelection() {
	c.actsSelectionStack = c.actsSelectionStack[:len(c.actsSelectionStack)-1]
}

// selectActs records that, within the current lexical scope, owner
// resolves to one specific named acts block.
func (c *Checker) selectActs(owner types.Id, declStmt ast.StmtId) {
	if len(c.actsSelectionStack) == 0 {
		c.pushActsSelection()
	}
	top := c.actsSelectionStack[len(c.actsSelectionStack)-1]
	top[owner] = actsSelection{Named: true, DeclStmt: declStmt}
}

// currentActsSelection walks the selection stack innermost-first; the
// first scope naming owner wins. No match means the default (unrestricted)
// set is visible.
func (c *Checker) currentActsSelection(owner types.Id) (actsSelection, bool) {
	for i := len(c.actsSelectionStack) - 1; i >= 0; i-- {
		if sel, ok := c.actsSelectionStack[i][owner]; ok {
			return sel, true
		}
	}
	return actsSelection{}, false
}

// actsOperatorCandidates returns the FnDecl stmt ids visible for
// (owner, op, is_postfix) in the current lexical acts-selection scope.
func (c *Checker) actsOperatorCandidates(owner types.Id, op string, postfix bool) []ast.StmtId {
	all := c.actsOperatorMap[actsOperatorKey{Owner: owner, Op: op, IsPostfix: postfix}]
	return c.filterByActsSelection(owner, all)
}

// actsMethodCandidates returns the FnDecl stmt ids visible for
// (owner, name) in the current lexical acts-selection scope.
func (c *Checker) actsMethodCandidates(owner types.Id, name string) []ast.StmtId {
	byName := c.actsMethodMap[owner]
	if byName == nil {
		return nil
	}
	return c.filterByActsSelection(owner, byName[name])
}

func (c *Checker) filterByActsSelection(owner types.Id, all []ast.StmtId) []ast.StmtId {
	sel, ok := c.currentActsSelection(owner)
	if !ok || !sel.Named {
		return all
	}
	out := make([]ast.StmtId, 0, len(all))
	for _, fnId := range all {
		if c.fnDeclActsOwner[fnId] == sel.DeclStmt {
			out = append(out, fnId)
		}
	}
	return out
}
