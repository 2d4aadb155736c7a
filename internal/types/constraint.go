package types

import "fmt"

// ConstraintKind distinguishes the two deferred structural obligations
// §4.6 describes: a receiver type must eventually carry a given field,
// or must eventually carry a given callable method.
type ConstraintKind int

const (
	HasField ConstraintKind = iota
	HasMethod
)

// Constraint is a structural obligation that cannot be checked the
// moment it is generated, because the receiver's type may still be an
// unresolved Var. It is retried after every round of substitution
// until it either succeeds, fails outright, or the whole set reaches a
// fixed point with it still unresolved (§4.6: "deferred ... retried
// after each round of substitution").
type Constraint struct {
	Kind     ConstraintKind
	Receiver Type
	Name     string
	Args     []Type // HasMethod only
	Ret      Type   // HasMethod only: the call's expected result type
	Field    Type   // HasField only: the expected field type

	span   Span
	reason string
}

// Span is the minimal location payload a constraint needs to produce a
// diagnostic when it never resolves; it holds a file name and a
// line/column range (source.Span holds byte offsets) and does not
// import source, keeping this package's dependency graph
// one-directional.
type Span struct {
	File               string
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Solver accumulates deferred constraints and retries them against an
// Arena + Subst until no more progress is made.
type Solver struct {
	arena   *Arena
	subst   *Subst
	pending []*Constraint
}

// NewSolver creates a constraint solver bound to a and s.
func NewSolver(a *Arena, s *Subst) *Solver {
	return &Solver{arena: a, subst: s}
}

// Defer records a constraint to be checked once its receiver type is
// more resolved than it is right now.
func (sv *Solver) Defer(c Constraint) { sv.pending = append(sv.pending, &c) }

// Solve retries every pending constraint until a round makes no
// progress, then reports the ones still unresolved as errors.
func (sv *Solver) Solve() []error {
	for {
		progressed := false
		remaining := sv.pending[:0]
		for _, c := range sv.pending {
			ok, resolved, err := sv.tryResolve(c)
			if err != nil {
				return []error{err}
			}
			if resolved {
				progressed = true
				continue
			}
			if ok {
				progressed = true
			}
			remaining = append(remaining, c)
		}
		sv.pending = remaining
		if !progressed {
			break
		}
	}

	var errs []error
	for _, c := range sv.pending {
		errs = append(errs, sv.unresolvedErr(c))
	}
	return errs
}

// tryResolve attempts to discharge c against the current substitution.
// resolved=true means c is fully settled (success) and should be
// dropped; ok=true (without resolved) means the receiver made progress
// toward concreteness but the constraint can't be checked yet.
func (sv *Solver) tryResolve(c *Constraint) (ok, resolved bool, err error) {
	recv := sv.subst.Apply(c.Receiver)
	if _, isVar := recv.(*Var); isVar {
		return false, false, nil
	}

	td, ok := sv.lookupTypeDef(recv)
	if !ok {
		// A primitive/tuple/slice/etc receiver never carries named
		// fields or methods of its own.
		return true, false, fmt.Errorf("%s has no %s %q", recv.String(), kindWord(c.Kind), c.Name)
	}

	// §4.6 step 4: a Generic receiver's arguments stand in for the
	// TypeDef's own type parameters (T, K, V, ...) everywhere they
	// appear in a field or method signature, e.g. Vec<i32>.push's
	// `value: T` param becomes `value: i32`.
	tparams := typeParamSubst(td, recv)

	switch c.Kind {
	case HasField:
		f, found := td.FieldByName(c.Name)
		if !found {
			return true, false, fmt.Errorf("%s has no field %q", recv.String(), c.Name)
		}
		if err := sv.subst.Unify(c.Field, substTypeParams(f.Type, tparams)); err != nil {
			return true, false, err
		}
		return true, true, nil
	case HasMethod:
		m, found := td.MethodByName(c.Name)
		if !found {
			if v, vok := td.VariantByName(c.Name); vok {
				_ = v
				return true, true, nil
			}
			return true, false, fmt.Errorf("%s has no method %q", recv.String(), c.Name)
		}
		if len(m.Params) != len(c.Args) {
			return true, false, fmt.Errorf("%s.%s takes %d argument(s), got %d", recv.String(), c.Name, len(m.Params), len(c.Args))
		}
		for i, p := range m.Params {
			if err := sv.subst.Unify(c.Args[i], substTypeParams(p, tparams)); err != nil {
				return true, false, err
			}
		}
		if err := sv.subst.Unify(c.Ret, substTypeParams(m.Ret, tparams)); err != nil {
			return true, false, err
		}
		return true, true, nil
	}
	return true, false, fmt.Errorf("unknown constraint kind")
}

// typeParamSubst builds the name->Type map a Generic receiver implies
// for td's declared type parameters. A non-Generic receiver (a plain
// Named, e.g. a zero-type-param stub like File) yields an empty map,
// so substTypeParams is a no-op for it.
func typeParamSubst(td *TypeDef, recv Type) map[string]Type {
	g, ok := recv.(*Generic)
	if !ok || len(td.TypeParams) != len(g.Args) {
		return nil
	}
	m := make(map[string]Type, len(td.TypeParams))
	for i, name := range td.TypeParams {
		m[name] = g.Args[i]
	}
	return m
}

// substTypeParams replaces every bare Named reference to one of subst's
// keys with its bound type, recursing through the composite Type
// shapes a stub or user-declared signature can be built from.
func substTypeParams(t Type, subst map[string]Type) Type {
	if len(subst) == 0 {
		return t
	}
	switch n := t.(type) {
	case *Named:
		if repl, ok := subst[n.Name]; ok {
			return repl
		}
		return t
	case *Generic:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = substTypeParams(a, subst)
		}
		return &Generic{Base: substTypeParams(n.Base, subst), Args: args}
	case *Tuple:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = substTypeParams(e, subst)
		}
		return &Tuple{Elems: elems}
	case *Array:
		return &Array{Elem: substTypeParams(n.Elem, subst), Len: n.Len}
	case *Slice:
		return &Slice{Elem: substTypeParams(n.Elem, subst)}
	case *Ptr:
		return &Ptr{Pointee: substTypeParams(n.Pointee, subst)}
	case *Fn:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = substTypeParams(p, subst)
		}
		return &Fn{Params: params, Ret: substTypeParams(n.Ret, subst)}
	default:
		return t
	}
}

// StdlibLookup supplies §4.6 method-resolution step 3: "the
// standard-library stub registry for builtin generics". internal/types
// has no dependency on internal/stdlib (that package imports this one
// to build TypeDef values from its catalog, so the reverse import would
// cycle); instead internal/stdlib's init() assigns this hook, and any
// entry point that type-checks a program must blank-import
// internal/stdlib first so Vec/Map/Pool/Option/Result/... method calls
// don't all fail with "has no method". Left nil, lookupTypeDef simply
// falls back to "receiver has no named members" for any name the arena
// itself doesn't declare.
var StdlibLookup func(name string) (*TypeDef, bool)

func (sv *Solver) lookupTypeDef(t Type) (*TypeDef, bool) {
	switch n := t.(type) {
	case *Named:
		if n.Name != "" {
			return sv.resolveNamed(n.Name)
		}
	case *Generic:
		return sv.lookupTypeDef(n.Base)
	case *StringType:
		return sv.resolveNamed("string")
	}
	return nil, false
}

// resolveNamed tries the compilation's own arena first (user-declared
// structs/enums/unions shadow builtins by declaration), then the
// stdlib stub registry.
func (sv *Solver) resolveNamed(name string) (*TypeDef, bool) {
	if td, ok := sv.arena.Lookup(name); ok {
		return td, true
	}
	if StdlibLookup != nil {
		return StdlibLookup(name)
	}
	return nil, false
}

func kindWord(k ConstraintKind) string {
	if k == HasField {
		return "field"
	}
	return "method"
}

func (sv *Solver) unresolvedErr(c *Constraint) error {
	recv := sv.subst.Apply(c.Receiver)
	return fmt.Errorf("cannot infer enough to resolve %s %q on %s", kindWord(c.Kind), c.Name, recv.String())
}
