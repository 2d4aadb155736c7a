package ast

import "github.com/rask-lang/rask-sub001/internal/source"

// Stmt is any statement.
type Stmt interface {
	Node
	stmtNode()
}

// Binding is a single-name or tuple-destructuring pattern on the
// left-hand side of a `let`/`const` statement.
type Binding struct {
	Names []string // len > 1 means a tuple binding
	Span  source.Span
}

// LetStmt declares a local binding, optionally mutable.
type LetStmt struct {
	Base
	Bind TypedBinding
	Mut  bool
	Type TypeExpr // nil if inferred
	Init Expr     // nil for `let x: T` with deferred init
}

func (*LetStmt) stmtNode() {}

// TypedBinding pairs a Binding with its optional declared type.
type TypedBinding = Binding

// ConstStmt declares a block-local constant.
type ConstStmt struct {
	Base
	Name string
	Type TypeExpr
	Init Expr
}

func (*ConstStmt) stmtNode() {}

// AssignStmt is `lhs = rhs` or a compound assignment, already desugared
// in spirit (desugar handles the operator form; AssignStmt itself only
// ever carries plain `=` after desugar, per §4.3 invariant).
type AssignStmt struct {
	Base
	Target Expr
	Value  Expr
}

func (*AssignStmt) stmtNode() {}

// ReturnStmt returns an optional value from the enclosing function.
type ReturnStmt struct {
	Base
	Value Expr // nil for bare `return`
}

func (*ReturnStmt) stmtNode() {}

// LoopControlKind distinguishes break/continue/deliver.
type LoopControlKind int

const (
	CtrlBreak LoopControlKind = iota
	CtrlContinue
	CtrlDeliver
)

// LoopControlStmt is break/continue/deliver, each with an optional
// carried value (§4.10: "break/continue carry optional values").
type LoopControlStmt struct {
	Base
	Kind  LoopControlKind
	Value Expr
}

func (*LoopControlStmt) stmtNode() {}

// WhileStmt is a `while cond { body }` loop.
type WhileStmt struct {
	Base
	Cond Expr
	Body *BlockExpr
}

func (*WhileStmt) stmtNode() {}

// WhileLetStmt is `while let pat = expr { body }`.
type WhileLetStmt struct {
	Base
	Pattern Pattern
	Scrut   Expr
	Body    *BlockExpr
}

func (*WhileLetStmt) stmtNode() {}

// ForStmt is `for pat in iter { body }`.
type ForStmt struct {
	Base
	Pattern Pattern
	Iter    Expr
	Body    *BlockExpr
}

func (*ForStmt) stmtNode() {}

// LoopStmt is an unconditional `loop { body }`.
type LoopStmt struct {
	Base
	Body *BlockExpr
}

func (*LoopStmt) stmtNode() {}

// EnsureStmt registers a cleanup block (§4.10, §5).
type EnsureStmt struct {
	Base
	Body  *BlockExpr
	Catch *BlockExpr // non-nil if `ensure { ... } catch { ... }`
}

func (*EnsureStmt) stmtNode() {}

// ComptimeStmt evaluates its body at compile time (§4.13).
type ComptimeStmt struct {
	Base
	Body *BlockExpr
}

func (*ComptimeStmt) stmtNode() {}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Base
	X Expr
}

func (*ExprStmt) stmtNode() {}

// ---- Patterns (used by match arms, if-let, while-let, for) ----

// Pattern is any match/binding pattern.
type Pattern interface {
	Node
	patternNode()
}

// BindPattern binds the scrutinee to a fresh name (`x`, or `_` to
// discard).
type BindPattern struct {
	Base
	Name string
}

func (*BindPattern) patternNode() {}

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	Base
	Value Expr
}

func (*LiteralPattern) patternNode() {}

// ConstructorPattern matches an enum variant (or struct), destructuring
// its payload fields.
type ConstructorPattern struct {
	Base
	Name     string // possibly `Type.Variant`
	Fields   []Pattern
	FieldNames []string // parallel to Fields when matching struct-like payloads
}

func (*ConstructorPattern) patternNode() {}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Base
	Elems []Pattern
}

func (*TuplePattern) patternNode() {}

// WildcardPattern matches anything without binding (`_`).
type WildcardPattern struct {
	Base
}

func (*WildcardPattern) patternNode() {}
