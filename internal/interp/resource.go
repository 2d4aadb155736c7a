package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/diag"
)

// resourceState is a tracked @resource binding's runtime consumption
// state, mirroring internal/ownership's compile-time State but
// checked against actual control flow instead of static reachability
// (a resource moved into one match arm but not another is only
// distinguishable at runtime).
type resourceState int

const (
	resLive resourceState = iota
	resConsumed
)

// resourceScope is one block's worth of tracked resources, chained to
// its enclosing scope the same way Env is.
type resourceScope struct {
	parent *resourceScope
	items  map[string]*resourceState
}

func newResourceScope(parent *resourceScope) *resourceScope {
	return &resourceScope{parent: parent, items: make(map[string]*resourceState)}
}

// track registers name as a live resource declared directly in this
// scope.
func (s *resourceScope) track(name string) {
	st := resLive
	s.items[name] = &st
}

// consume marks name (found in this scope or an ancestor) as
// consumed. Reports false if name isn't a tracked resource at all.
func (s *resourceScope) consume(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if st, ok := cur.items[name]; ok {
			*st = resConsumed
			return true
		}
	}
	return false
}

// checkUnconsumed reports a diagnostic for every resource declared
// directly in s (not its ancestors) that is still live, per §4.7/§4.13
// ("unconsumed affine resources at scope pop = diagnostic error").
func (s *resourceScope) checkUnconsumed(bag *diag.Bag) {
	for name, st := range s.items {
		if *st == resLive {
			bag.Add(diag.Diagnostic{
				Severity: diag.Error,
				Code:     diag.EOwnNotConsumed,
				Message:  fmt.Sprintf("resource %q was not consumed before leaving its scope", name),
			})
		}
	}
}
