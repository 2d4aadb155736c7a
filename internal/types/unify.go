package types

import "fmt"

// Subst maps a type variable id to its current binding. It is
// threaded through the whole checker run and consulted every time a
// Type might contain resolved variables.
type Subst struct {
	bindings map[int]Type
}

// NewSubst creates an empty substitution.
func NewSubst() *Subst { return &Subst{bindings: make(map[int]Type)} }

// Apply follows variable bindings in t to a fixed point.
func (s *Subst) Apply(t Type) Type {
	for {
		v, ok := t.(*Var)
		if !ok {
			break
		}
		bound, ok := s.bindings[v.Id]
		if !ok {
			break
		}
		t = bound
	}
	switch n := t.(type) {
	case *Generic:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.Apply(a)
		}
		return &Generic{Base: s.Apply(n.Base), Args: args}
	case *Tuple:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = s.Apply(e)
		}
		return &Tuple{Elems: elems}
	case *Array:
		return &Array{Elem: s.Apply(n.Elem), Len: n.Len}
	case *Slice:
		return &Slice{Elem: s.Apply(n.Elem)}
	case *Ptr:
		return &Ptr{Pointee: s.Apply(n.Pointee)}
	case *Fn:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = s.Apply(p)
		}
		return &Fn{Params: params, Ret: s.Apply(n.Ret)}
	default:
		return t
	}
}

// bind records v := t, unless that would create a self-referential
// binding (an infinite type, §7 ETypeInfiniteType) or violate v's
// numeric family restriction (an int/float literal variable binding to
// something other than a matching primitive kind).
func (s *Subst) bind(v *Var, t Type) error {
	if occurs(v, t, s) {
		return fmt.Errorf("type variable ?%d occurs in %s", v.Id, t.String())
	}
	if v.Family != FamNone {
		switch bt := t.(type) {
		case *Primitive:
			if v.Family == FamInt && !bt.Kind.isInteger() {
				return fmt.Errorf("type mismatch: integer literal vs %s", bt.String())
			}
			if v.Family == FamFloat && !bt.Kind.isFloat() {
				return fmt.Errorf("type mismatch: float literal vs %s", bt.String())
			}
		case *Var:
			if bt.Family == FamNone {
				bt.Family = v.Family
			} else if bt.Family != v.Family {
				return fmt.Errorf("type mismatch: incompatible literal families")
			}
		default:
			return fmt.Errorf("type mismatch: numeric literal vs %s", t.String())
		}
	}
	s.bindings[v.Id] = t
	return nil
}

func occurs(v *Var, t Type, s *Subst) bool {
	t = s.Apply(t)
	switch n := t.(type) {
	case *Var:
		return n.Id == v.Id
	case *Generic:
		if occurs(v, n.Base, s) {
			return true
		}
		for _, a := range n.Args {
			if occurs(v, a, s) {
				return true
			}
		}
		return false
	case *Tuple:
		for _, e := range n.Elems {
			if occurs(v, e, s) {
				return true
			}
		}
		return false
	case *Array:
		return occurs(v, n.Elem, s)
	case *Slice:
		return occurs(v, n.Elem, s)
	case *Ptr:
		return occurs(v, n.Pointee, s)
	case *Fn:
		for _, p := range n.Params {
			if occurs(v, p, s) {
				return true
			}
		}
		return occurs(v, n.Ret, s)
	default:
		return false
	}
}

// Unify generates an equality constraint between a and b, immediately
// binding any unresolved variables (§4.6). Either side being an
// ErrorType always unifies successfully, suppressing error cascades.
func (s *Subst) Unify(a, b Type) error {
	a, b = s.Apply(a), s.Apply(b)

	if _, ok := a.(*ErrorType); ok {
		return nil
	}
	if _, ok := b.(*ErrorType); ok {
		return nil
	}

	if av, ok := a.(*Var); ok {
		if bv, ok := b.(*Var); ok && av.Id == bv.Id {
			return nil
		}
		return s.bind(av, b)
	}
	if bv, ok := b.(*Var); ok {
		return s.bind(bv, a)
	}

	switch an := a.(type) {
	case *Primitive:
		bn, ok := b.(*Primitive)
		if !ok || an.Kind != bn.Kind {
			return widenOrMismatch(a, b)
		}
		return nil
	case *StringType:
		if _, ok := b.(*StringType); !ok {
			return fmt.Errorf("type mismatch: string vs %s", b.String())
		}
		return nil
	case *Named:
		bn, ok := b.(*Named)
		if !ok || an.Name != bn.Name {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		return nil
	case *Generic:
		bn, ok := b.(*Generic)
		if !ok || len(an.Args) != len(bn.Args) {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		if err := s.Unify(an.Base, bn.Base); err != nil {
			return err
		}
		for i := range an.Args {
			if err := s.Unify(an.Args[i], bn.Args[i]); err != nil {
				return err
			}
		}
		return nil
	case *Tuple:
		bn, ok := b.(*Tuple)
		if !ok || len(an.Elems) != len(bn.Elems) {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		for i := range an.Elems {
			if err := s.Unify(an.Elems[i], bn.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case *Array:
		bn, ok := b.(*Array)
		if !ok || an.Len != bn.Len {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		return s.Unify(an.Elem, bn.Elem)
	case *Slice:
		bn, ok := b.(*Slice)
		if !ok {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		return s.Unify(an.Elem, bn.Elem)
	case *Ptr:
		bn, ok := b.(*Ptr)
		if !ok {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		return s.Unify(an.Pointee, bn.Pointee)
	case *Fn:
		bn, ok := b.(*Fn)
		if !ok || len(an.Params) != len(bn.Params) {
			return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
		}
		for i := range an.Params {
			if err := s.Unify(an.Params[i], bn.Params[i]); err != nil {
				return err
			}
		}
		return s.Unify(an.Ret, bn.Ret)
	default:
		return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
	}
}

// widenOrMismatch allows implicit numeric widening when b is a
// specific integer/float kind strictly larger than a's, matching
// §4.6's assignment-compatibility rule. It is only reached for two
// distinct Primitive kinds.
func widenOrMismatch(a, b Type) error {
	ap, bp := a.(*Primitive), b.(*Primitive)
	sameFamily := (ap.Kind.isInteger() && bp.Kind.isInteger()) || (ap.Kind.isFloat() && bp.Kind.isFloat())
	if sameFamily && bp.Kind.width() > ap.Kind.width() {
		return nil
	}
	if sameFamily && ap.Kind.width() > bp.Kind.width() {
		return nil
	}
	return fmt.Errorf("type mismatch: %s vs %s", a.String(), b.String())
}
