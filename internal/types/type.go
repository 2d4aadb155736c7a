// Package types implements §4.6: a constraint-based Hindley–Milner
// variant with limited bidirectional propagation over the resolved
// AST, plus the TypeDef arena (struct/enum/union/trait shapes) the
// layout engine, monomorphizer, and MIR builder all key off of.
//
// The arena's id-keyed map shape generalizes the teacher's
// ResultSet/core.Result indexing (`internal/types/core.go`): there, a
// fast-lookup index maps a composite key to an analysis result; here
// it maps a TypeDefId to the declared shape that backs it.
package types

import "fmt"

// Type is any semantic type the checker manipulates. Unlike
// ast.TypeExpr (syntax as written), a Type is the checker's internal,
// unification-ready representation.
type Type interface {
	isType()
	String() string
}

// Kind enumerates primitive scalar kinds.
type Kind int

const (
	I8 Kind = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Bool
	Char
	Unit
	Never
)

var kindNames = map[Kind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128",
	F32: "f32", F64: "f64", Bool: "bool", Char: "char", Unit: "()", Never: "never",
}

// isInteger reports whether k is one of the fixed-width integer kinds.
func (k Kind) isInteger() bool {
	switch k {
	case I8, I16, I32, I64, I128, U8, U16, U32, U64, U128:
		return true
	default:
		return false
	}
}

// isFloat reports whether k is a floating-point kind.
func (k Kind) isFloat() bool { return k == F32 || k == F64 }

// width returns a coarse ranking used for implicit numeric widening
// (§4.6: "implicit numeric widening only when the destination is a
// specific integer/float type larger than the source").
func (k Kind) width() int {
	switch k {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	case I128, U128:
		return 16
	default:
		return 0
	}
}

// Primitive is a builtin scalar type.
type Primitive struct{ Kind Kind }

func (*Primitive) isType()          {}
func (p *Primitive) String() string { return kindNames[p.Kind] }

// StringType is the builtin string type (an opaque pointer per §4.8).
type StringType struct{}

func (*StringType) isType()          {}
func (*StringType) String() string { return "string" }

// VarFamily narrows what a type variable is allowed to bind to. A
// plain inference variable (FamNone) unifies with anything; a literal
// variable minted for an untyped int/float literal is restricted to
// its numeric family so `1` can't silently unify with `bool`.
type VarFamily int

const (
	FamNone VarFamily = iota
	FamInt
	FamFloat
)

// Var is an unresolved type variable `?n` minted during inference.
type Var struct {
	Id     int
	Family VarFamily
}

func (*Var) isType()          {}
func (v *Var) String() string { return fmt.Sprintf("?%d", v.Id) }

// Named refers to a declared struct/enum/union/trait by its TypeDefId.
type Named struct {
	Def  TypeDefId
	Name string
}

func (*Named) isType()          {}
func (n *Named) String() string { return n.Name }

// Generic is an uninstantiated or partially-instantiated generic
// reference, `Base<Args...>` (§4.9).
type Generic struct {
	Base Type
	Args []Type
}

func (*Generic) isType() {}
func (g *Generic) String() string {
	s := g.Base.String() + "<"
	for i, a := range g.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// Tuple is `(A, B, C)`.
type Tuple struct{ Elems []Type }

func (*Tuple) isType() {}
func (t *Tuple) String() string {
	s := "("
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}

// Array is `[T; N]`.
type Array struct {
	Elem Type
	Len  int
}

func (*Array) isType()          {}
func (a *Array) String() string { return fmt.Sprintf("[%s; %d]", a.Elem.String(), a.Len) }

// Slice is `[T]`.
type Slice struct{ Elem Type }

func (*Slice) isType()          {}
func (s *Slice) String() string { return "[" + s.Elem.String() + "]" }

// Ptr is a raw pointer `*T`.
type Ptr struct{ Pointee Type }

func (*Ptr) isType()          {}
func (p *Ptr) String() string { return "*" + p.Pointee.String() }

// Fn is a function type `fn(Params) -> Ret`.
type Fn struct {
	Params []Type
	Ret    Type
}

func (*Fn) isType() {}
func (f *Fn) String() string {
	s := "fn("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + f.Ret.String()
}

// ErrorType is a poisoned type: it unifies with anything and suppresses
// cascading diagnostics from an already-reported failure (§4.6).
type ErrorType struct{}

func (*ErrorType) isType()          {}
func (*ErrorType) String() string { return "<error>" }

// UnitType is the canonical `()` type.
var UnitType Type = &Primitive{Kind: Unit}

// NeverT is the canonical `never` type.
var NeverT Type = &Primitive{Kind: Never}
