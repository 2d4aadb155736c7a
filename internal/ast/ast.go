// Package ast defines the Rask abstract syntax tree (§3 AST): the
// declaration, statement, and expression node set the parser builds and
// every later phase walks.
//
// Each pass owns its own walker — a flat type switch over the node
// interfaces below — rather than relying on inheritance or a visitor
// interface baked into the tree itself, per §9's "deep dispatch" note.
package ast

import "github.com/rask-lang/rask-sub001/internal/source"

// Node is implemented by every declaration, statement, and expression.
type Node interface {
	NodeId() source.NodeId
	Span() source.Span
}

// Base is embedded by every concrete node to provide NodeId()/Span().
type Base struct {
	Id       source.NodeId
	SpanVal  source.Span
}

func (b Base) NodeId() source.NodeId { return b.Id }
func (b Base) Span() source.Span     { return b.SpanVal }

// ---- Declarations ----

// Decl is any top-level or nested declaration.
type Decl interface {
	Node
	declNode()
}

// Modifier records a declaration-order-preserving modifier keyword
// (`export`, `unsafe`, ...), per §4.2's "preserve modifier order".
type Modifier string

// Attribute is an `@name` or `@name(args)` annotation attached to a
// declaration.
type Attribute struct {
	Name string
	Args []string
	Span source.Span
}

// Param is a function parameter: its binding mode, name, and type
// expression.
type Param struct {
	Mode ParamMode
	Name string
	Type TypeExpr
	Span source.Span
}

// ParamMode is one of the five binding modes from §3.
type ParamMode int

const (
	ModeOwn ParamMode = iota
	ModeTake
	ModeRead
	ModeMut
	ModeSelf
)

// FuncDecl declares a function (free function, method inside an impl
// block, or closure-lowered top-level helper).
type FuncDecl struct {
	Base
	Name       string
	TypeParams []string
	Params     []Param
	Ret        TypeExpr // nil means unit
	Body       *BlockExpr
	Modifiers  []Modifier
	Attrs      []Attribute
	Doc        string
}

func (*FuncDecl) declNode() {}

// FieldDecl is one struct field or union field.
type FieldDecl struct {
	Name string
	Type TypeExpr
	Span source.Span
	Doc  string
}

// StructDecl declares a struct type.
type StructDecl struct {
	Base
	Name       string
	TypeParams []string
	Fields     []FieldDecl
	Modifiers  []Modifier
	Attrs      []Attribute
	Doc        string
}

func (*StructDecl) declNode() {}

// EnumVariant is one variant of an enum: a name plus optional payload
// fields (empty for a unit variant).
type EnumVariant struct {
	Name   string
	Fields []FieldDecl
	Span   source.Span
}

// EnumDecl declares a sum type.
type EnumDecl struct {
	Base
	Name       string
	TypeParams []string
	Variants   []EnumVariant
	Attrs      []Attribute
	Doc        string
}

func (*EnumDecl) declNode() {}

// UnionDecl declares an untagged union: all fields share offset 0.
type UnionDecl struct {
	Base
	Name   string
	Fields []FieldDecl
	Doc    string
}

func (*UnionDecl) declNode() {}

// TraitDecl declares a trait: a set of method signatures a type can
// implement.
type TraitDecl struct {
	Base
	Name       string
	TypeParams []string
	Methods    []*FuncDecl
	Doc        string
}

func (*TraitDecl) declNode() {}

// ImplDecl declares an `impl Trait for Type` or an inherent `impl Type`
// block.
type ImplDecl struct {
	Base
	Trait      string // "" for an inherent impl
	TargetType TypeExpr
	TypeParams []string
	Methods    []*FuncDecl
}

func (*ImplDecl) declNode() {}

// ConstDecl declares a top-level constant.
type ConstDecl struct {
	Base
	Name string
	Type TypeExpr
	Init Expr
	Doc  string
}

func (*ConstDecl) declNode() {}

// ImportDecl imports one or more names from another package.
type ImportDecl struct {
	Base
	Package string
	Names   []string // empty + Wildcard means `import pkg.*`
	Wildcard bool
}

func (*ImportDecl) declNode() {}

// ExportDecl re-exports a name from the current package.
type ExportDecl struct {
	Base
	Name string
}

func (*ExportDecl) declNode() {}

// TestDecl declares a `test "name" { ... }` block.
type TestDecl struct {
	Base
	Name string
	Body *BlockExpr
}

func (*TestDecl) declNode() {}

// BenchmarkDecl declares a `benchmark "name" { ... }` block.
type BenchmarkDecl struct {
	Base
	Name string
	Body *BlockExpr
}

func (*BenchmarkDecl) declNode() {}

// ---- Type expressions (pre-resolution syntax, distinct from
// internal/types.Type which is the post-resolution semantic type) ----

// TypeExpr is the syntactic spelling of a type as written in source.
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedTypeExpr is `Name` or `Name<Args...>`.
type NamedTypeExpr struct {
	Base
	Name string
	Args []TypeExpr
}

func (*NamedTypeExpr) typeExprNode() {}

// TupleTypeExpr is `(A, B, C)`.
type TupleTypeExpr struct {
	Base
	Elems []TypeExpr
}

func (*TupleTypeExpr) typeExprNode() {}

// ArrayTypeExpr is `[T; N]`.
type ArrayTypeExpr struct {
	Base
	Elem TypeExpr
	Len  int
}

func (*ArrayTypeExpr) typeExprNode() {}

// SliceTypeExpr is `[T]`.
type SliceTypeExpr struct {
	Base
	Elem TypeExpr
}

func (*SliceTypeExpr) typeExprNode() {}

// RefTypeExpr is `*T` (raw pointer) or a function type `fn(Args) -> Ret`.
type RefTypeExpr struct {
	Base
	Pointee TypeExpr
	IsFn    bool
	Params  []TypeExpr
	Ret     TypeExpr
}

func (*RefTypeExpr) typeExprNode() {}
