package interp

import "github.com/rask-lang/rask-sub001/internal/ast"

// matchPattern tests v against pat, binding any names pat introduces
// directly into env as a side effect (match arms, if-let, while-let,
// for loops all share this one matcher).
func matchPattern(env *Env, pat ast.Pattern, v Value) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true

	case *ast.BindPattern:
		if p.Name != "_" {
			env.Define(p.Name, v)
		}
		return true

	case *ast.LiteralPattern:
		lit, ok := p.Value.(*ast.LiteralExpr)
		if !ok {
			return false
		}
		want, err := evalLiteral(lit)
		if err != nil {
			return false
		}
		eq, _ := evalEq(want, v)
		return eq.B

	case *ast.TuplePattern:
		if v.Kind != KindTuple || len(p.Elems) != len(v.Tuple) {
			return false
		}
		for i, sub := range p.Elems {
			if !matchPattern(env, sub, v.Tuple[i]) {
				return false
			}
		}
		return true

	case *ast.ConstructorPattern:
		return matchConstructor(env, p, v)

	default:
		return false
	}
}

func matchConstructor(env *Env, p *ast.ConstructorPattern, v Value) bool {
	variant := lastSegment(p.Name)

	switch variant {
	case "Some":
		if v.Kind != KindOption || v.Option == nil {
			return false
		}
		return bindFields(env, p, []Value{*v.Option})
	case "None":
		return v.Kind == KindOption && v.Option == nil
	case "Ok":
		if v.Kind != KindResult || !v.Result.IsOk {
			return false
		}
		return bindFields(env, p, []Value{v.Result.Ok})
	case "Err":
		if v.Kind != KindResult || v.Result.IsOk {
			return false
		}
		return bindFields(env, p, []Value{v.Result.Err})
	default:
		if v.Kind != KindEnum || v.Enum.Variant != variant {
			return false
		}
		return bindFields(env, p, v.Enum.Fields)
	}
}

func bindFields(env *Env, p *ast.ConstructorPattern, fields []Value) bool {
	if len(p.Fields) == 0 {
		return true
	}
	if len(p.Fields) != len(fields) {
		return false
	}
	for i, sub := range p.Fields {
		if !matchPattern(env, sub, fields[i]) {
			return false
		}
	}
	return true
}

func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}
