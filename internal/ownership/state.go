// Package ownership implements §4.7: a flow-sensitive, block-structured
// pass over the resolved AST that tracks each binding's move state,
// enforces borrow exclusivity, and verifies `@resource` values are
// consumed before they leave their declaring scope.
//
// The scope-stack shape generalizes the same pattern internal/resolve
// and internal/types already use for their own nested environments
// (the teacher's own invariant-checking passes over a linear structure,
// `internal/core/contracts.go`, validate a flat result set rather than
// a nested scope; the stack shape here is this package's own, adapted
// to a scope-nested language).
package ownership

import "github.com/rask-lang/rask-sub001/internal/ast"

// State is a binding's move state.
type State int

const (
	Initialized State = iota
	Moved
	PartiallyMoved
)

// binding is one tracked local/parameter.
type binding struct {
	Mode       ast.ParamMode
	State      State
	IsResource bool
	declScope  int // nesting depth at which this binding was introduced
}

// scope is one nested block/function level of the ownership stack.
type scope struct {
	parent *scope
	depth  int
	vars   map[string]*binding
}

func newScope(parent *scope) *scope {
	d := 0
	if parent != nil {
		d = parent.depth + 1
	}
	return &scope{parent: parent, depth: d, vars: make(map[string]*binding)}
}

func (s *scope) define(name string, b *binding) { s.vars[name] = b }

// find looks up name in this scope or an ancestor, returning the
// binding and the scope that owns it.
func (s *scope) find(name string) (*binding, *scope) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, cur
		}
	}
	return nil, nil
}
