package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
)

// eval evaluates an expression, threading a non-local exit signal up
// from any nested block (if/match/loop bodies can all contain a
// return/break/continue/deliver).
func (in *Interp) eval(env *Env, rs *resourceScope, e ast.Expr) (Value, signal, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		v, err := evalLiteral(n)
		return v, noSignal, err

	case *ast.IdentExpr:
		if slot, ok := env.Lookup(n.Name); ok {
			return *slot, noSignal, nil
		}
		if fn, ok := in.funcs[n.Name]; ok {
			return Value{Kind: KindClosure, Closure: &Closure{Name: fn.Name, Params: toParams(fn.Params), Body: fn.Body}}, noSignal, nil
		}
		if n.Name == "None" {
			return NoneValue(), noSignal, nil
		}
		if info, ok := in.variants[n.Name]; ok && len(info.FieldNames) == 0 {
			return Value{Kind: KindEnum, Enum: &EnumVal{TypeName: info.TypeName, Variant: n.Name, Tag: info.Tag}}, noSignal, nil
		}
		return Value{}, noSignal, fmt.Errorf("interp: undefined name %q", n.Name)

	case *ast.BinaryExpr:
		return in.evalBinary(env, rs, n)

	case *ast.UnaryExpr:
		v, sig, err := in.eval(env, rs, n.Operand)
		if err != nil || sig.kind != sigNone {
			return v, sig, err
		}
		return evalUnary(n.Op, v), noSignal, nil

	case *ast.CallExpr:
		return in.evalCall(env, rs, n)

	case *ast.MethodCallExpr:
		return in.evalMethodCall(env, rs, n)

	case *ast.FieldExpr:
		recv, sig, err := in.eval(env, rs, n.Receiver)
		if err != nil || sig.kind != sigNone {
			return recv, sig, err
		}
		if n.Optional && recv.Kind == KindOption && recv.Option == nil {
			return NoneValue(), noSignal, nil
		}
		if recv.Kind == KindStruct {
			if fv, ok := recv.Struct.Fields[n.Name]; ok {
				return fv, noSignal, nil
			}
		}
		return Value{}, noSignal, fmt.Errorf("interp: %q has no field %q", recv.String(), n.Name)

	case *ast.IndexExpr:
		recv, sig, err := in.eval(env, rs, n.Receiver)
		if err != nil || sig.kind != sigNone {
			return recv, sig, err
		}
		idx, sig, err := in.eval(env, rs, n.Index)
		if err != nil || sig.kind != sigNone {
			return idx, sig, err
		}
		return indexValue(recv, idx)

	case *ast.StructLitExpr:
		return in.evalStructLit(env, rs, n)

	case *ast.ArrayExpr:
		elems := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			v, sig, err := in.eval(env, rs, el)
			if err != nil || sig.kind != sigNone {
				return v, sig, err
			}
			elems[i] = v
		}
		return Value{Kind: KindVec, Vec: &VecCell{Elems: elems}}, noSignal, nil

	case *ast.ArrayRepeatExpr:
		v, sig, err := in.eval(env, rs, n.Value)
		if err != nil || sig.kind != sigNone {
			return v, sig, err
		}
		cnt, sig, err := in.eval(env, rs, n.Count)
		if err != nil || sig.kind != sigNone {
			return cnt, sig, err
		}
		elems := make([]Value, cnt.I)
		for i := range elems {
			elems[i] = v
		}
		return Value{Kind: KindArray, Array: elems}, noSignal, nil

	case *ast.TupleExpr:
		elems := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			v, sig, err := in.eval(env, rs, el)
			if err != nil || sig.kind != sigNone {
				return v, sig, err
			}
			elems[i] = v
		}
		return Value{Kind: KindTuple, Tuple: elems}, noSignal, nil

	case *ast.RangeExpr:
		return in.evalRange(env, rs, n)

	case *ast.BlockExpr:
		return in.evalBlock(env, rs, n)

	case *ast.IfExpr:
		return in.evalIf(env, rs, n)

	case *ast.IfLetExpr:
		scrut, sig, err := in.eval(env, rs, n.Scrut)
		if err != nil || sig.kind != sigNone {
			return scrut, sig, err
		}
		branchEnv := NewEnv(env)
		if matchPattern(branchEnv, n.Pattern, scrut) {
			return in.evalBlock(branchEnv, rs, n.Then)
		}
		if n.Else != nil {
			return in.eval(env, rs, n.Else)
		}
		return Unit(), noSignal, nil

	case *ast.IsExpr:
		v, sig, err := in.eval(env, rs, n.Value)
		if err != nil || sig.kind != sigNone {
			return v, sig, err
		}
		ok := matchPattern(NewEnv(env), n.Pattern, v)
		return Bool(ok), noSignal, nil

	case *ast.MatchExpr:
		return in.evalMatch(env, rs, n)

	case *ast.TryExpr:
		return in.evalTry(env, rs, n)

	case *ast.UnwrapExpr:
		v, sig, err := in.eval(env, rs, n.X)
		if err != nil || sig.kind != sigNone {
			return v, sig, err
		}
		return unwrapValue(v)

	case *ast.NullCoalesceExpr:
		left, sig, err := in.eval(env, rs, n.Left)
		if err != nil || sig.kind != sigNone {
			return left, sig, err
		}
		if left.Kind == KindOption {
			if left.Option != nil {
				return *left.Option, noSignal, nil
			}
			return in.eval(env, rs, n.Right)
		}
		return left, noSignal, nil

	case *ast.ClosureExpr:
		return Value{Kind: KindClosure, Closure: &Closure{Params: toParams(n.Params), Body: n.Body, Env: env}}, noSignal, nil

	case *ast.CastExpr:
		v, sig, err := in.eval(env, rs, n.X)
		if err != nil || sig.kind != sigNone {
			return v, sig, err
		}
		return castValue(v, n.Type), noSignal, nil

	case *ast.SpawnExpr:
		return in.evalSpawn(env, n)

	case *ast.UnsafeExpr:
		return in.evalBlock(env, rs, n.Body)

	case *ast.ComptimeExpr:
		return in.evalBlock(env, rs, n.Body)

	case *ast.BlockCallExpr:
		return in.evalBlockCall(env, rs, n)

	case *ast.AssertExpr:
		cond, sig, err := in.eval(env, rs, n.Cond)
		if err != nil || sig.kind != sigNone {
			return cond, sig, err
		}
		if !cond.Truthy() {
			msg := "assertion failed"
			if n.Msg != nil {
				if mv, _, err := in.eval(env, rs, n.Msg); err == nil {
					msg = mv.String()
				}
			}
			return Value{}, noSignal, fmt.Errorf("interp: %s", msg)
		}
		return Unit(), noSignal, nil

	case *ast.CheckExpr:
		cond, sig, err := in.eval(env, rs, n.Cond)
		if err != nil || sig.kind != sigNone {
			return cond, sig, err
		}
		if !cond.Truthy() {
			msg := "check failed"
			if n.Msg != nil {
				if mv, _, err := in.eval(env, rs, n.Msg); err == nil {
					msg = mv.String()
				}
			}
			in.diags.Add(diag.Diagnostic{Severity: diag.Error, Message: msg})
		}
		return Unit(), noSignal, nil

	case *ast.UsingExpr:
		// A capability scope (Multitasking/Async) changes how spawn
		// schedules its body (§5); the interpreter itself always runs
		// spawned work on a real goroutine, so evaluating the body
		// unchanged is sufficient here.
		return in.evalBlock(env, rs, n.Body)

	case *ast.WithAsExpr:
		return in.evalWithAs(env, rs, n)

	case *ast.SelectExpr:
		return in.evalSelect(env, rs, n)

	default:
		return Value{}, noSignal, fmt.Errorf("interp: unhandled expression %T", e)
	}
}

func toParams(ps []ast.Param) []Param {
	out := make([]Param, 0, len(ps))
	for _, p := range ps {
		if p.Mode == ast.ModeSelf {
			continue
		}
		out = append(out, Param{Name: p.Name})
	}
	return out
}

func (in *Interp) evalBinary(env *Env, rs *resourceScope, n *ast.BinaryExpr) (Value, signal, error) {
	if n.Op == ast.OpLogAnd {
		l, sig, err := in.eval(env, rs, n.Left)
		if err != nil || sig.kind != sigNone {
			return l, sig, err
		}
		if !l.Truthy() {
			return Bool(false), noSignal, nil
		}
		return in.eval(env, rs, n.Right)
	}
	if n.Op == ast.OpLogOr {
		l, sig, err := in.eval(env, rs, n.Left)
		if err != nil || sig.kind != sigNone {
			return l, sig, err
		}
		if l.Truthy() {
			return Bool(true), noSignal, nil
		}
		return in.eval(env, rs, n.Right)
	}

	l, sig, err := in.eval(env, rs, n.Left)
	if err != nil || sig.kind != sigNone {
		return l, sig, err
	}
	r, sig, err := in.eval(env, rs, n.Right)
	if err != nil || sig.kind != sigNone {
		return r, sig, err
	}
	if n.Op == ast.OpNe {
		eq, err := evalEq(l, r)
		return Bool(!eq.B), noSignal, err
	}
	v, err := evalArith(n.Op, l, r)
	return v, noSignal, err
}

func (in *Interp) evalIf(env *Env, rs *resourceScope, n *ast.IfExpr) (Value, signal, error) {
	cond, sig, err := in.eval(env, rs, n.Cond)
	if err != nil || sig.kind != sigNone {
		return cond, sig, err
	}
	if cond.Truthy() {
		return in.evalBlock(env, rs, n.Then)
	}
	if n.Else != nil {
		return in.eval(env, rs, n.Else)
	}
	return Unit(), noSignal, nil
}

func (in *Interp) evalStructLit(env *Env, rs *resourceScope, n *ast.StructLitExpr) (Value, signal, error) {
	typeName := typeExprName(n.Type)
	fields := make(map[string]Value, len(n.Fields))
	for _, f := range n.Fields {
		v, sig, err := in.eval(env, rs, f.Value)
		if err != nil || sig.kind != sigNone {
			return v, sig, err
		}
		in.maybeConsumeIdent(rs, f.Value)
		fields[f.Name] = v
	}
	return Value{Kind: KindStruct, Struct: &StructVal{TypeName: typeName, Fields: fields}}, noSignal, nil
}

func (in *Interp) evalRange(env *Env, rs *resourceScope, n *ast.RangeExpr) (Value, signal, error) {
	start, sig, err := in.eval(env, rs, n.Start)
	if err != nil || sig.kind != sigNone {
		return start, sig, err
	}
	end, sig, err := in.eval(env, rs, n.End)
	if err != nil || sig.kind != sigNone {
		return end, sig, err
	}
	lo, hi := start.I, end.I
	if n.Inclusive {
		hi++
	}
	elems := make([]Value, 0, max64(hi-lo, 0))
	for i := lo; i < hi; i++ {
		elems = append(elems, Int(i))
	}
	return Value{Kind: KindVec, Vec: &VecCell{Elems: elems}}, noSignal, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func (in *Interp) evalMatch(env *Env, rs *resourceScope, n *ast.MatchExpr) (Value, signal, error) {
	scrut, sig, err := in.eval(env, rs, n.Scrutinee)
	if err != nil || sig.kind != sigNone {
		return scrut, sig, err
	}
	for _, arm := range n.Arms {
		armEnv := NewEnv(env)
		if !matchPattern(armEnv, arm.Pattern, scrut) {
			continue
		}
		if arm.Guard != nil {
			g, gsig, gerr := in.eval(armEnv, rs, arm.Guard)
			if gerr != nil || gsig.kind != sigNone {
				return g, gsig, gerr
			}
			if !g.Truthy() {
				continue
			}
		}
		return in.eval(armEnv, rs, arm.Body)
	}
	return Value{}, noSignal, fmt.Errorf("interp: no match arm matched %s", scrut.String())
}

func (in *Interp) evalTry(env *Env, rs *resourceScope, n *ast.TryExpr) (Value, signal, error) {
	v, sig, err := in.eval(env, rs, n.X)
	if err != nil || sig.kind != sigNone {
		return v, sig, err
	}
	switch v.Kind {
	case KindOption:
		if v.Option == nil {
			return Value{}, signal{kind: sigReturn, value: NoneValue()}, nil
		}
		return *v.Option, noSignal, nil
	case KindResult:
		if !v.Result.IsOk {
			return Value{}, signal{kind: sigReturn, value: Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: v.Result.Err}}}, nil
		}
		return v.Result.Ok, noSignal, nil
	default:
		return v, noSignal, nil
	}
}

func unwrapValue(v Value) (Value, signal, error) {
	switch v.Kind {
	case KindOption:
		if v.Option == nil {
			return Value{}, noSignal, fmt.Errorf("interp: unwrap called on None")
		}
		return *v.Option, noSignal, nil
	case KindResult:
		if !v.Result.IsOk {
			return Value{}, noSignal, fmt.Errorf("interp: unwrap called on Err(%s)", v.Result.Err.String())
		}
		return v.Result.Ok, noSignal, nil
	default:
		return v, noSignal, nil
	}
}

func (in *Interp) evalWithAs(env *Env, rs *resourceScope, n *ast.WithAsExpr) (Value, signal, error) {
	res, sig, err := in.eval(env, rs, n.Resource)
	if err != nil || sig.kind != sigNone {
		return res, sig, err
	}
	bodyEnv := NewEnv(env)
	bodyEnv.Define(n.Name, res)
	bodyRS := newResourceScope(rs)
	bodyRS.track(n.Name)
	v, bsig, berr := in.execStmts(bodyEnv, bodyRS, n.Body.Stmts, n.Body.Tail)
	closeResource(res)
	bodyRS.consume(n.Name)
	bodyRS.checkUnconsumed(in.diags)
	return v, bsig, berr
}

func indexValue(recv, idx Value) (Value, signal, error) {
	switch recv.Kind {
	case KindVec:
		if idx.I < 0 || idx.I >= int64(len(recv.Vec.Elems)) {
			return Value{}, noSignal, fmt.Errorf("interp: index %d out of range (len %d)", idx.I, len(recv.Vec.Elems))
		}
		return recv.Vec.Elems[idx.I], noSignal, nil
	case KindArray:
		if idx.I < 0 || idx.I >= int64(len(recv.Array)) {
			return Value{}, noSignal, fmt.Errorf("interp: index %d out of range (len %d)", idx.I, len(recv.Array))
		}
		return recv.Array[idx.I], noSignal, nil
	case KindMap:
		key := KeyOf(idx)
		if v, ok := recv.Map.Values[key]; ok {
			return v, noSignal, nil
		}
		return Value{}, noSignal, fmt.Errorf("interp: no map entry for key %s", idx.String())
	case KindString:
		r := []rune(recv.S)
		if idx.I < 0 || idx.I >= int64(len(r)) {
			return Value{}, noSignal, fmt.Errorf("interp: string index %d out of range", idx.I)
		}
		return Char(r[idx.I]), noSignal, nil
	default:
		return Value{}, noSignal, fmt.Errorf("interp: cannot index %s", recv.String())
	}
}
