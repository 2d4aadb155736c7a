package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

// evalArith implements the arithmetic/comparison/bitwise operators
// that internal/desugar's pass would otherwise rewrite to a
// "method.X" call for a non-scalar receiver; the interpreter runs
// directly off the typed AST (desugar's rewrite targets MIR, not this
// phase) so it evaluates BinaryExpr natively for every numeric and
// string operand it can appear on.
func evalArith(op ast.BinaryOp, l, r Value) (Value, error) {
	if l.Kind == KindString && op == ast.OpAdd {
		return Str(l.S + r.S), nil
	}
	if l.Kind == KindFloat || r.Kind == KindFloat {
		a, b := asFloat(l), asFloat(r)
		switch op {
		case ast.OpAdd:
			return Float(a + b), nil
		case ast.OpSub:
			return Float(a - b), nil
		case ast.OpMul:
			return Float(a * b), nil
		case ast.OpDiv:
			return Float(a / b), nil
		case ast.OpEq:
			return Bool(a == b), nil
		case ast.OpLt:
			return Bool(a < b), nil
		case ast.OpLe:
			return Bool(a <= b), nil
		case ast.OpGt:
			return Bool(a > b), nil
		case ast.OpGe:
			return Bool(a >= b), nil
		default:
			return Value{}, fmt.Errorf("interp: operator %d not defined on float", op)
		}
	}

	a, b := asInt(l), asInt(r)
	switch op {
	case ast.OpAdd:
		return Int(a + b), nil
	case ast.OpSub:
		return Int(a - b), nil
	case ast.OpMul:
		return Int(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return Value{}, fmt.Errorf("interp: division by zero")
		}
		return Int(a / b), nil
	case ast.OpRem:
		if b == 0 {
			return Value{}, fmt.Errorf("interp: division by zero")
		}
		return Int(a % b), nil
	case ast.OpBitAnd:
		return Int(a & b), nil
	case ast.OpBitOr:
		return Int(a | b), nil
	case ast.OpBitXor:
		return Int(a ^ b), nil
	case ast.OpShl:
		return Int(a << uint(b)), nil
	case ast.OpShr:
		return Int(a >> uint(b)), nil
	case ast.OpEq:
		return evalEq(l, r)
	case ast.OpLt:
		return Bool(a < b), nil
	case ast.OpLe:
		return Bool(a <= b), nil
	case ast.OpGt:
		return Bool(a > b), nil
	case ast.OpGe:
		return Bool(a >= b), nil
	default:
		return Value{}, fmt.Errorf("interp: unhandled binary operator %d", op)
	}
}

func evalEq(l, r Value) (Value, error) {
	if l.Kind != r.Kind {
		return Bool(false), nil
	}
	switch l.Kind {
	case KindInt:
		return Bool(l.I == r.I), nil
	case KindFloat:
		return Bool(l.F == r.F), nil
	case KindBool:
		return Bool(l.B == r.B), nil
	case KindChar:
		return Bool(l.C == r.C), nil
	case KindString:
		return Bool(l.S == r.S), nil
	case KindUnit:
		return Bool(true), nil
	case KindStruct:
		return Bool(structsEqual(l.Struct, r.Struct)), nil
	case KindEnum:
		return Bool(enumsEqual(l.Enum, r.Enum)), nil
	case KindOption:
		if l.Option == nil || r.Option == nil {
			return Bool(l.Option == nil && r.Option == nil), nil
		}
		return evalEq(*l.Option, *r.Option)
	default:
		return Bool(false), nil
	}
}

func structsEqual(a, b *StructVal) bool {
	if a.TypeName != b.TypeName || len(a.Fields) != len(b.Fields) {
		return false
	}
	for k, av := range a.Fields {
		bv, ok := b.Fields[k]
		if !ok {
			return false
		}
		eq, _ := evalEq(av, bv)
		if !eq.B {
			return false
		}
	}
	return true
}

func enumsEqual(a, b *EnumVal) bool {
	if a.TypeName != b.TypeName || a.Variant != b.Variant || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		eq, _ := evalEq(a.Fields[i], b.Fields[i])
		if !eq.B {
			return false
		}
	}
	return true
}

func evalUnary(op ast.UnaryOp, v Value) Value {
	switch op {
	case ast.OpNeg:
		if v.Kind == KindFloat {
			return Float(-v.F)
		}
		return Int(-v.I)
	case ast.OpBitNot:
		return Int(^v.I)
	case ast.OpNot:
		return Bool(!v.Truthy())
	default:
		return v
	}
}

func asInt(v Value) int64 {
	switch v.Kind {
	case KindInt:
		return v.I
	case KindChar:
		return int64(v.C)
	case KindBool:
		if v.B {
			return 1
		}
		return 0
	case KindFloat:
		return int64(v.F)
	default:
		return 0
	}
}

func asFloat(v Value) float64 {
	if v.Kind == KindFloat {
		return v.F
	}
	return float64(asInt(v))
}

// castValue implements `expr as Type` for the primitive target types;
// casting to a named (struct/enum) type is a type-checker-enforced
// no-op at this representation since Value already carries its
// dynamic type.
func castValue(v Value, target ast.TypeExpr) Value {
	named, ok := target.(*ast.NamedTypeExpr)
	if !ok {
		return v
	}
	switch named.Name {
	case "i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128":
		return Int(asInt(v))
	case "f32", "f64":
		return Float(asFloat(v))
	case "char":
		return Char(rune(asInt(v)))
	case "bool":
		return Bool(v.Truthy())
	case "string":
		return Str(v.String())
	default:
		return v
	}
}
