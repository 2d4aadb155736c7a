package resolve

// ScopeKind is one of the three nesting levels §4.5 names.
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

// scope is one entry in the resolver's scope stack.
type scope struct {
	kind   ScopeKind
	parent *scope
	names  map[string]SymbolId
}

func newScope(kind ScopeKind, parent *scope) *scope {
	return &scope{kind: kind, parent: parent, names: make(map[string]SymbolId)}
}

// define binds name to id in this scope. Shadowing a name already
// bound in this exact scope is allowed for let/const bindings
// (isValue == true) but forbidden for functions/types (§4.5); it
// returns false when the binding is rejected.
func (s *scope) define(name string, id SymbolId, isValue bool) bool {
	if _, exists := s.names[name]; exists && !isValue {
		return false
	}
	s.names[name] = id
	return true
}

// lookup searches this scope and its ancestors for name.
func (s *scope) lookup(name string) (SymbolId, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if id, ok := cur.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}
