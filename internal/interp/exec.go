package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/types"
)

// exec runs one statement, returning any non-local exit it produced.
func (in *Interp) exec(env *Env, rs *resourceScope, s ast.Stmt) (signal, error) {
	switch n := s.(type) {
	case *ast.LetStmt:
		return in.execLet(env, rs, n)

	case *ast.ConstStmt:
		v, sig, err := in.eval(env, rs, n.Init)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		env.Define(n.Name, v)
		return noSignal, nil

	case *ast.AssignStmt:
		v, sig, err := in.eval(env, rs, n.Value)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		in.maybeConsumeIdent(rs, n.Value)
		return noSignal, in.assign(env, rs, n.Target, v)

	case *ast.ReturnStmt:
		if n.Value == nil {
			return signal{kind: sigReturn, value: Unit()}, nil
		}
		v, sig, err := in.eval(env, rs, n.Value)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		in.maybeConsumeIdent(rs, n.Value)
		return signal{kind: sigReturn, value: v}, nil

	case *ast.LoopControlStmt:
		var v Value
		if n.Value != nil {
			var sig signal
			var err error
			v, sig, err = in.eval(env, rs, n.Value)
			if err != nil || sig.kind != sigNone {
				return sig, err
			}
		} else {
			v = Unit()
		}
		switch n.Kind {
		case ast.CtrlBreak:
			return signal{kind: sigBreak, value: v}, nil
		case ast.CtrlContinue:
			return signal{kind: sigContinue, value: v}, nil
		default:
			return signal{kind: sigDeliver, value: v}, nil
		}

	case *ast.WhileStmt:
		for {
			cond, sig, err := in.eval(env, rs, n.Cond)
			if err != nil || sig.kind != sigNone {
				return sig, err
			}
			if !cond.Truthy() {
				return noSignal, nil
			}
			_, sig, err = in.evalBlock(env, rs, n.Body)
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigReturn || sig.kind == sigDeliver {
				return sig, nil
			}
		}

	case *ast.WhileLetStmt:
		for {
			scrut, sig, err := in.eval(env, rs, n.Scrut)
			if err != nil || sig.kind != sigNone {
				return sig, err
			}
			loopEnv := NewEnv(env)
			if !matchPattern(loopEnv, n.Pattern, scrut) {
				return noSignal, nil
			}
			_, sig, err = in.evalBlock(loopEnv, rs, n.Body)
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigReturn || sig.kind == sigDeliver {
				return sig, nil
			}
		}

	case *ast.ForStmt:
		iter, sig, err := in.eval(env, rs, n.Iter)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		elems, ok := iterate(iter)
		if !ok {
			return noSignal, fmt.Errorf("interp: %s is not iterable", iter.String())
		}
		for _, el := range elems {
			loopEnv := NewEnv(env)
			matchPattern(loopEnv, n.Pattern, el)
			_, sig, err := in.evalBlock(loopEnv, rs, n.Body)
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigReturn || sig.kind == sigDeliver {
				return sig, nil
			}
		}
		return noSignal, nil

	case *ast.LoopStmt:
		for {
			_, sig, err := in.evalBlock(env, rs, n.Body)
			if err != nil {
				return noSignal, err
			}
			if sig.kind == sigBreak {
				return noSignal, nil
			}
			if sig.kind == sigReturn || sig.kind == sigDeliver {
				return sig, nil
			}
		}

	case *ast.EnsureStmt:
		in.ensures = append(in.ensures, &ensureFrame{body: n.Body, catch: n.Catch, env: env})
		return noSignal, nil

	case *ast.ComptimeStmt:
		_, sig, err := in.evalBlock(env, rs, n.Body)
		return sig, err

	case *ast.ExprStmt:
		_, sig, err := in.eval(env, rs, n.X)
		return sig, err

	default:
		return noSignal, fmt.Errorf("interp: unhandled statement %T", s)
	}
}

func (in *Interp) execLet(env *Env, rs *resourceScope, n *ast.LetStmt) (signal, error) {
	var v Value
	if n.Init != nil {
		var sig signal
		var err error
		v, sig, err = in.eval(env, rs, n.Init)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		in.maybeConsumeIdent(rs, n.Init)
	}
	if len(n.Bind.Names) == 1 {
		name := n.Bind.Names[0]
		if name != "_" {
			env.Define(name, v)
			if rs != nil && isResourceTyped(in.arena, n.Type, n.Init) {
				rs.track(name)
			}
		}
		return noSignal, nil
	}
	for i, name := range n.Bind.Names {
		if name == "_" {
			continue
		}
		if v.Kind == KindTuple && i < len(v.Tuple) {
			env.Define(name, v.Tuple[i])
		}
	}
	return noSignal, nil
}

// maybeConsumeIdent marks a bare identifier reference as consumed when
// it appears in a move position (a return value, an assignment's
// right-hand side, a call argument): §4.7's ownership pass already
// proved these moves are sound at compile time, so the runtime
// tracker only needs to keep its own live/consumed bookkeeping in
// sync with them, not re-derive move legality.
func (in *Interp) maybeConsumeIdent(rs *resourceScope, e ast.Expr) {
	if rs == nil {
		return
	}
	if id, ok := e.(*ast.IdentExpr); ok {
		rs.consume(id.Name)
	}
}

func (in *Interp) assign(env *Env, rs *resourceScope, target ast.Expr, v Value) error {
	switch t := target.(type) {
	case *ast.IdentExpr:
		if !env.Assign(t.Name, v) {
			env.Define(t.Name, v)
		}
		return nil
	case *ast.FieldExpr:
		recv, _, err := in.eval(env, rs, t.Receiver)
		if err != nil {
			return err
		}
		if recv.Kind != KindStruct {
			return fmt.Errorf("interp: cannot assign field %q on %s", t.Name, recv.String())
		}
		recv.Struct.Fields[t.Name] = v
		return nil
	case *ast.IndexExpr:
		recv, _, err := in.eval(env, rs, t.Receiver)
		if err != nil {
			return err
		}
		idx, _, err := in.eval(env, rs, t.Index)
		if err != nil {
			return err
		}
		return assignIndex(recv, idx, v)
	default:
		return fmt.Errorf("interp: invalid assignment target %T", target)
	}
}

func assignIndex(recv, idx, v Value) error {
	switch recv.Kind {
	case KindVec:
		if idx.I < 0 || idx.I >= int64(len(recv.Vec.Elems)) {
			return fmt.Errorf("interp: index %d out of range", idx.I)
		}
		recv.Vec.Elems[idx.I] = v
		return nil
	case KindArray:
		if idx.I < 0 || idx.I >= int64(len(recv.Array)) {
			return fmt.Errorf("interp: index %d out of range", idx.I)
		}
		recv.Array[idx.I] = v
		return nil
	case KindMap:
		key := KeyOf(idx)
		recv.Map.Keys[key] = idx
		recv.Map.Values[key] = v
		return nil
	default:
		return fmt.Errorf("interp: cannot index-assign %s", recv.String())
	}
}

// isResourceTyped reports whether a `let` binding's declared (or,
// failing that, its initializer's struct-literal) type names an
// `@resource` struct, the same rule internal/ownership's checker
// applies statically (internal/ownership/check.go's
// namedTypeIsResource).
func isResourceTyped(arena *types.Arena, declared ast.TypeExpr, init ast.Expr) bool {
	if arena == nil {
		return false
	}
	te := declared
	if te == nil {
		if sl, ok := init.(*ast.StructLitExpr); ok {
			te = sl.Type
		}
	}
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok {
		return false
	}
	td, ok := arena.Lookup(named.Name)
	if !ok {
		return false
	}
	sd, ok := td.Decl.(*ast.StructDecl)
	if !ok {
		return false
	}
	for _, attr := range sd.Attrs {
		if attr.Name == "resource" {
			return true
		}
	}
	return false
}

func iterate(v Value) ([]Value, bool) {
	switch v.Kind {
	case KindVec:
		return v.Vec.Elems, true
	case KindArray:
		return v.Array, true
	case KindTuple:
		return v.Tuple, true
	case KindMap:
		out := make([]Value, 0, len(v.Map.Keys))
		for k, kv := range v.Map.Keys {
			out = append(out, Value{Kind: KindTuple, Tuple: []Value{kv, v.Map.Values[k]}})
		}
		return out, true
	default:
		return nil, false
	}
}
