package ast

import "github.com/rask-lang/rask-sub001/internal/source"

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind distinguishes the primitive literal forms.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitRawString
	LitChar
	LitBool
	LitNull
	LitNone
)

// LiteralExpr is a literal value as written in source (the lexeme is
// kept verbatim; the type checker parses it against the inferred
// target type).
type LiteralExpr struct {
	Base
	Kind LiteralKind
	Text string
}

func (*LiteralExpr) exprNode() {}

// IdentExpr references a name; the resolver fills in its SymbolId.
type IdentExpr struct {
	Base
	Name string
}

func (*IdentExpr) exprNode() {}

// BinaryOp enumerates binary operators as written in source, before
// desugar rewrites the arithmetic/comparison/bitwise ones to method
// calls (§3, §4.3).
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogAnd // stays a BinaryExpr after desugar
	OpLogOr  // stays a BinaryExpr after desugar
)

// MethodNameFor returns the method desugar rewrites op to, and whether
// op is eligible for the rewrite at all (logical and/or are not).
func MethodNameFor(op BinaryOp) (string, bool) {
	switch op {
	case OpAdd:
		return "add", true
	case OpSub:
		return "sub", true
	case OpMul:
		return "mul", true
	case OpDiv:
		return "div", true
	case OpRem:
		return "rem", true
	case OpBitAnd:
		return "bit_and", true
	case OpBitOr:
		return "bit_or", true
	case OpBitXor:
		return "bit_xor", true
	case OpShl:
		return "shl", true
	case OpShr:
		return "shr", true
	case OpEq:
		return "eq", true
	case OpLt:
		return "lt", true
	case OpLe:
		return "le", true
	case OpGt:
		return "gt", true
	case OpGe:
		return "ge", true
	default:
		return "", false
	}
}

// BinaryExpr is `left OP right`, before or after desugar (post-desugar,
// only OpLogAnd/OpLogOr survive as BinaryExpr — the desugar pass
// rewrites OpNe to `!(a.eq(b))`).
type BinaryExpr struct {
	Base
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryOp enumerates unary operators as written in source.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpBitNot
	OpNot // logical !, preserved after desugar
)

// UnaryExpr is `OP operand`.
type UnaryExpr struct {
	Base
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// MethodCallExpr is `receiver.name(args...)`, possibly with explicit
// generic arguments `receiver.name::<T>(args...)`.
type MethodCallExpr struct {
	Base
	Receiver  Expr
	Name      string
	TypeArgs  []TypeExpr
	Args      []Expr
}

func (*MethodCallExpr) exprNode() {}

// FieldExpr is `receiver.name` (or `receiver?.name` when Optional is
// set).
type FieldExpr struct {
	Base
	Receiver Expr
	Name     string
	Optional bool
}

func (*FieldExpr) exprNode() {}

// IndexExpr is `receiver[index]`.
type IndexExpr struct {
	Base
	Receiver Expr
	Index    Expr
}

func (*IndexExpr) exprNode() {}

// StructLitField is one `name: value` entry in a struct literal.
type StructLitField struct {
	Name  string
	Value Expr
	Span  source.Span
}

// StructLitExpr is `Type { field: value, ... }`.
type StructLitExpr struct {
	Base
	Type   TypeExpr
	Fields []StructLitField
}

func (*StructLitExpr) exprNode() {}

// ArrayExpr is `[e1, e2, ...]`.
type ArrayExpr struct {
	Base
	Elems []Expr
}

func (*ArrayExpr) exprNode() {}

// ArrayRepeatExpr is `[value; count]`.
type ArrayRepeatExpr struct {
	Base
	Value Expr
	Count Expr
}

func (*ArrayRepeatExpr) exprNode() {}

// TupleExpr is `(e1, e2, ...)`.
type TupleExpr struct {
	Base
	Elems []Expr
}

func (*TupleExpr) exprNode() {}

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	Base
	Start, End Expr
	Inclusive  bool
}

func (*RangeExpr) exprNode() {}

// BlockExpr is `{ stmts...; tail? }`; its value is the tail
// expression's value, or unit if there is none.
type BlockExpr struct {
	Base
	Stmts []Stmt
	Tail  Expr // nil if the block has no trailing expression
}

func (*BlockExpr) exprNode() {}

// IfExpr is `if cond { then } else { else }` (else branch optional).
type IfExpr struct {
	Base
	Cond Expr
	Then *BlockExpr
	Else Expr // *BlockExpr or *IfExpr, nil if no else
}

func (*IfExpr) exprNode() {}

// IfLetExpr is `if let pat = expr { then } else { else }`.
type IfLetExpr struct {
	Base
	Pattern Pattern
	Scrut   Expr
	Then    *BlockExpr
	Else    Expr
}

func (*IfLetExpr) exprNode() {}

// GuardPatternExpr is a `pat if cond` guard used inside match arms.
type GuardPatternExpr struct {
	Base
	Pattern Pattern
	Cond    Expr
}

func (*GuardPatternExpr) exprNode() {}

// IsExpr is `value is Pattern`, a boolean-producing pattern test.
type IsExpr struct {
	Base
	Value   Expr
	Pattern Pattern
}

func (*IsExpr) exprNode() {}

// MatchArm is one `pattern => body` arm of a match expression.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // nil if unguarded
	Body    Expr
	Span    source.Span
}

// MatchExpr is `match scrutinee { arms... }`.
type MatchExpr struct {
	Base
	Scrutinee Expr
	Arms      []MatchArm
}

func (*MatchExpr) exprNode() {}

// TryExpr is `expr?`I: propagate Result::Err/Option::None early.
type TryExpr struct {
	Base
	X Expr
}

func (*TryExpr) exprNode() {}

// UnwrapExpr is `expr!!` or `expr.unwrap()` surface form: panics on
// None/Err.
type UnwrapExpr struct {
	Base
	X Expr
}

func (*UnwrapExpr) exprNode() {}

// NullCoalesceExpr is `a ?? b`: a if non-null/non-None, else b.
type NullCoalesceExpr struct {
	Base
	Left, Right Expr
}

func (*NullCoalesceExpr) exprNode() {}

// ClosureExpr is a closure literal.
type ClosureExpr struct {
	Base
	Params []Param
	Ret    TypeExpr
	Body   Expr // *BlockExpr for `{...}` bodies, any Expr for `=> expr` bodies
}

func (*ClosureExpr) exprNode() {}

// CastExpr is `expr as Type`.
type CastExpr struct {
	Base
	X    Expr
	Type TypeExpr
}

func (*CastExpr) exprNode() {}

// SpawnExpr is `spawn { ... }` or `spawn expr`.
type SpawnExpr struct {
	Base
	Body Expr
}

func (*SpawnExpr) exprNode() {}

// UnsafeExpr is `unsafe { ... }`.
type UnsafeExpr struct {
	Base
	Body *BlockExpr
}

func (*UnsafeExpr) exprNode() {}

// ComptimeExpr is `comptime { ... }` used as an expression.
type ComptimeExpr struct {
	Base
	Body *BlockExpr
}

func (*ComptimeExpr) exprNode() {}

// BlockCallExpr is a trailing-closure call form: `name(args) { ... }`
// or `recv.name(args) { ... }`. Call is the CallExpr or MethodCallExpr
// the trailer attaches to.
type BlockCallExpr struct {
	Base
	Call    Expr
	Trailer *ClosureExpr
}

func (*BlockCallExpr) exprNode() {}

// AssertExpr is `assert(cond, msg?)`: aborts the test immediately on
// failure (§4.13, §7).
type AssertExpr struct {
	Base
	Cond Expr
	Msg  Expr
}

func (*AssertExpr) exprNode() {}

// CheckExpr is `check(cond, msg?)`: records a failure but continues
// (§4.13, §7).
type CheckExpr struct {
	Base
	Cond Expr
	Msg  Expr
}

func (*CheckExpr) exprNode() {}

// UsingExpr is `using Capability { body }` (e.g. `using Multitasking`).
type UsingExpr struct {
	Base
	Capability string
	Body       *BlockExpr
}

func (*UsingExpr) exprNode() {}

// WithAsExpr is `with resource as name { body }`, a scoped resource
// binding that auto-consumes on block exit.
type WithAsExpr struct {
	Base
	Resource Expr
	Name     string
	Body     *BlockExpr
}

func (*WithAsExpr) exprNode() {}

// SelectArm is one arm of a `select { ... }` over channel operations.
type SelectArm struct {
	Pattern Pattern
	Chan    Expr
	Body    Expr
	Span    source.Span
}

// SelectExpr is `select { arm, arm, ... }`.
type SelectExpr struct {
	Base
	Arms []SelectArm
}

func (*SelectExpr) exprNode() {}
