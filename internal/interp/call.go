package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

func (in *Interp) evalArgs(env *Env, rs *resourceScope, exprs []ast.Expr) ([]Value, signal, error) {
	out := make([]Value, len(exprs))
	for i, e := range exprs {
		v, sig, err := in.eval(env, rs, e)
		if err != nil || sig.kind != sigNone {
			return nil, sig, err
		}
		in.maybeConsumeIdent(rs, e)
		out[i] = v
	}
	return out, noSignal, nil
}

func (in *Interp) evalCall(env *Env, rs *resourceScope, n *ast.CallExpr) (Value, signal, error) {
	return in.evalCallExtra(env, rs, n, nil)
}

// evalCallExtra evaluates a CallExpr, appending extra (the trailing
// closure from a `name(args) { ... }` block-call form, if any) after
// the explicit argument list.
func (in *Interp) evalCallExtra(env *Env, rs *resourceScope, n *ast.CallExpr, extra *Value) (Value, signal, error) {
	args, sig, err := in.evalArgs(env, rs, n.Args)
	if err != nil || sig.kind != sigNone {
		return Value{}, sig, err
	}
	if extra != nil {
		args = append(args, *extra)
	}

	if id, ok := n.Callee.(*ast.IdentExpr); ok {
		if slot, ok := env.Lookup(id.Name); ok {
			v, err := in.callValue(*slot, args)
			return v, noSignal, err
		}
		if fn, ok := in.funcs[id.Name]; ok {
			v, err := in.callFuncDecl(fn, args, nil)
			return v, noSignal, err
		}
		if v, ok := constructOptionOrResult(id.Name, args); ok {
			return v, noSignal, nil
		}
		if info, ok := in.variants[id.Name]; ok {
			return Value{Kind: KindEnum, Enum: &EnumVal{TypeName: info.TypeName, Variant: id.Name, Tag: info.Tag, Fields: args}}, noSignal, nil
		}
		if v, handled, err := callFreeBuiltin(id.Name, args); handled {
			return v, noSignal, err
		}
		return Value{}, noSignal, fmt.Errorf("interp: undefined function %q", id.Name)
	}

	callee, sig, err := in.eval(env, rs, n.Callee)
	if err != nil || sig.kind != sigNone {
		return callee, sig, err
	}
	v, err := in.callValue(callee, args)
	return v, noSignal, err
}

// constructOptionOrResult builds the Value for a `Some(x)`/`Ok(x)`/`Err(x)`
// call expression — the construction-side counterpart to
// matchConstructor's pattern-side handling of the same four names.
func constructOptionOrResult(name string, args []Value) (Value, bool) {
	switch name {
	case "Some":
		if len(args) != 1 {
			return Value{}, false
		}
		return SomeValue(args[0]), true
	case "Ok":
		if len(args) != 1 {
			return Value{}, false
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: args[0]}}, true
	case "Err":
		if len(args) != 1 {
			return Value{}, false
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: args[0]}}, true
	default:
		return Value{}, false
	}
}

func (in *Interp) callValue(callee Value, args []Value) (Value, error) {
	if callee.Kind != KindClosure {
		return Value{}, fmt.Errorf("interp: value %s is not callable", callee.String())
	}
	return in.callClosure(callee.Closure, args)
}

func (in *Interp) evalMethodCall(env *Env, rs *resourceScope, n *ast.MethodCallExpr) (Value, signal, error) {
	return in.evalMethodCallExtra(env, rs, n, nil)
}

func (in *Interp) evalMethodCallExtra(env *Env, rs *resourceScope, n *ast.MethodCallExpr, extra *Value) (Value, signal, error) {
	recv, sig, err := in.eval(env, rs, n.Receiver)
	if err != nil || sig.kind != sigNone {
		return recv, sig, err
	}
	args, sig, err := in.evalArgs(env, rs, n.Args)
	if err != nil || sig.kind != sigNone {
		return Value{}, sig, err
	}
	if extra != nil {
		args = append(args, *extra)
	}

	if recv.Kind == KindStruct {
		if fn, ok := in.funcs[recv.Struct.TypeName+"."+n.Name]; ok {
			v, err := in.callMethod(fn, recv, args)
			return v, noSignal, err
		}
	}
	if recv.Kind == KindEnum {
		if fn, ok := in.funcs[recv.Enum.TypeName+"."+n.Name]; ok {
			v, err := in.callMethod(fn, recv, args)
			return v, noSignal, err
		}
	}
	if recv.Kind == KindModule && n.Name == "step" {
		v, err := in.evalBuildStep(recv.Build, args)
		return v, noSignal, err
	}
	v, handled, err := in.builtinCall(recv, n.Name, args)
	if handled {
		return v, noSignal, err
	}
	return Value{}, noSignal, fmt.Errorf("interp: %s has no method %q", recv.String(), n.Name)
}

func (in *Interp) evalBlockCall(env *Env, rs *resourceScope, n *ast.BlockCallExpr) (Value, signal, error) {
	trailer := Value{Kind: KindClosure, Closure: &Closure{Params: toParams(n.Trailer.Params), Body: n.Trailer.Body, Env: env}}
	switch call := n.Call.(type) {
	case *ast.CallExpr:
		return in.evalCallExtra(env, rs, call, &trailer)
	case *ast.MethodCallExpr:
		return in.evalMethodCallExtra(env, rs, call, &trailer)
	default:
		return Value{}, noSignal, fmt.Errorf("interp: block-call trailer attached to unsupported expression %T", n.Call)
	}
}
