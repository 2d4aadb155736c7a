package desugar

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/source"
)

// expr recurses into e's children and, for the node itself, applies
// the operator-to-method rewrite (§3, §4.3):
//
//	a OP b    -> a.method(b)     for the arithmetic/comparison/bitwise ops
//	a != b    -> !(a.eq(b))
//	-a / ~a   -> a.neg() / a.bit_not()
//	a && b, a || b, !a  -> unchanged (still a BinaryExpr/UnaryExpr)
func (d *desugarer) expr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		n.Left = d.expr(n.Left)
		n.Right = d.expr(n.Right)
		return d.rewriteBinary(n)
	case *ast.UnaryExpr:
		n.Operand = d.expr(n.Operand)
		return d.rewriteUnary(n)
	case *ast.NullCoalesceExpr:
		n.Left = d.expr(n.Left)
		n.Right = d.expr(n.Right)
		return n
	case *ast.CallExpr:
		n.Callee = d.expr(n.Callee)
		d.exprs(n.Args)
		return n
	case *ast.MethodCallExpr:
		n.Receiver = d.expr(n.Receiver)
		d.exprs(n.Args)
		return n
	case *ast.FieldExpr:
		n.Receiver = d.expr(n.Receiver)
		return n
	case *ast.IndexExpr:
		n.Receiver = d.expr(n.Receiver)
		n.Index = d.expr(n.Index)
		return n
	case *ast.StructLitExpr:
		for i := range n.Fields {
			n.Fields[i].Value = d.expr(n.Fields[i].Value)
		}
		return n
	case *ast.ArrayExpr:
		d.exprs(n.Elems)
		return n
	case *ast.ArrayRepeatExpr:
		n.Value = d.expr(n.Value)
		n.Count = d.expr(n.Count)
		return n
	case *ast.TupleExpr:
		d.exprs(n.Elems)
		return n
	case *ast.RangeExpr:
		if n.Start != nil {
			n.Start = d.expr(n.Start)
		}
		if n.End != nil {
			n.End = d.expr(n.End)
		}
		return n
	case *ast.BlockExpr:
		d.blockExpr(n)
		return n
	case *ast.IfExpr:
		n.Cond = d.expr(n.Cond)
		d.blockExpr(n.Then)
		if n.Else != nil {
			n.Else = d.expr(n.Else)
		}
		return n
	case *ast.IfLetExpr:
		n.Scrut = d.expr(n.Scrut)
		d.blockExpr(n.Then)
		if n.Else != nil {
			n.Else = d.expr(n.Else)
		}
		return n
	case *ast.GuardPatternExpr:
		n.Cond = d.expr(n.Cond)
		return n
	case *ast.IsExpr:
		n.Value = d.expr(n.Value)
		return n
	case *ast.MatchExpr:
		n.Scrutinee = d.expr(n.Scrutinee)
		for i := range n.Arms {
			if n.Arms[i].Guard != nil {
				n.Arms[i].Guard = d.expr(n.Arms[i].Guard)
			}
			n.Arms[i].Body = d.expr(n.Arms[i].Body)
		}
		return n
	case *ast.TryExpr:
		n.X = d.expr(n.X)
		return n
	case *ast.UnwrapExpr:
		n.X = d.expr(n.X)
		return n
	case *ast.ClosureExpr:
		n.Body = d.expr(n.Body)
		return n
	case *ast.CastExpr:
		n.X = d.expr(n.X)
		return n
	case *ast.SpawnExpr:
		n.Body = d.expr(n.Body)
		return n
	case *ast.UnsafeExpr:
		d.blockExpr(n.Body)
		return n
	case *ast.ComptimeExpr:
		d.blockExpr(n.Body)
		return n
	case *ast.BlockCallExpr:
		n.Call = d.expr(n.Call)
		if n.Trailer != nil {
			n.Trailer.Body = d.expr(n.Trailer.Body)
		}
		return n
	case *ast.AssertExpr:
		n.Cond = d.expr(n.Cond)
		if n.Msg != nil {
			n.Msg = d.expr(n.Msg)
		}
		return n
	case *ast.CheckExpr:
		n.Cond = d.expr(n.Cond)
		if n.Msg != nil {
			n.Msg = d.expr(n.Msg)
		}
		return n
	case *ast.UsingExpr:
		d.blockExpr(n.Body)
		return n
	case *ast.WithAsExpr:
		n.Resource = d.expr(n.Resource)
		d.blockExpr(n.Body)
		return n
	case *ast.SelectExpr:
		for i := range n.Arms {
			n.Arms[i].Chan = d.expr(n.Arms[i].Chan)
			n.Arms[i].Body = d.expr(n.Arms[i].Body)
		}
		return n
	default:
		// LiteralExpr, IdentExpr carry no sub-expressions.
		return e
	}
}

func (d *desugarer) exprs(es []ast.Expr) {
	for i, e := range es {
		es[i] = d.expr(e)
	}
}

// rewriteBinary applies the operator-to-method rewrite to a BinaryExpr
// whose operands have already been recursively desugared.
func (d *desugarer) rewriteBinary(n *ast.BinaryExpr) ast.Expr {
	if n.Op == ast.OpLogAnd || n.Op == ast.OpLogOr {
		return n
	}
	if n.Op == ast.OpNe {
		eq := d.methodCall(n.Left, "eq", n.Right, n.Span())
		return &ast.UnaryExpr{
			Base:    ast.NewBase(d.newId(), n.Span()),
			Op:      ast.OpNot,
			Operand: eq,
		}
	}
	name, ok := ast.MethodNameFor(n.Op)
	if !ok {
		return n
	}
	return d.methodCall(n.Left, name, n.Right, n.Span())
}

// rewriteUnary applies the operator-to-method rewrite to a UnaryExpr
// whose operand has already been recursively desugared.
func (d *desugarer) rewriteUnary(n *ast.UnaryExpr) ast.Expr {
	var name string
	switch n.Op {
	case ast.OpNeg:
		name = "neg"
	case ast.OpBitNot:
		name = "bit_not"
	default: // OpNot: logical !, preserved
		return n
	}
	return &ast.MethodCallExpr{
		Base:     ast.NewBase(d.newId(), n.Span()),
		Receiver: n.Operand,
		Name:     name,
	}
}

func (d *desugarer) methodCall(recv ast.Expr, name string, arg ast.Expr, span source.Span) *ast.MethodCallExpr {
	return &ast.MethodCallExpr{
		Base:     ast.NewBase(d.newId(), span),
		Receiver: recv,
		Name:     name,
		Args:     []ast.Expr{arg},
	}
}
