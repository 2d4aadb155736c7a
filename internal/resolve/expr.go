package resolve

import "github.com/rask-lang/rask-sub001/internal/ast"

// expr resolves every identifier reachable from e and recurses into
// its children, per §4.5's resolution targets (identifier, field
// access receiver, method call receiver, pattern constructor).
func (r *resolver) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		if id, ok := r.cur.lookup(n.Name); ok {
			r.resolutions[n.NodeId()] = id
		} else {
			r.errorf(n.Span(), "E0201", "undefined name %q", n.Name)
		}
	case *ast.BinaryExpr:
		r.expr(n.Left)
		r.expr(n.Right)
	case *ast.UnaryExpr:
		r.expr(n.Operand)
	case *ast.NullCoalesceExpr:
		r.expr(n.Left)
		r.expr(n.Right)
	case *ast.CallExpr:
		r.expr(n.Callee)
		r.exprs(n.Args)
	case *ast.MethodCallExpr:
		r.expr(n.Receiver)
		r.exprs(n.Args)
	case *ast.FieldExpr:
		r.expr(n.Receiver)
	case *ast.IndexExpr:
		r.expr(n.Receiver)
		r.expr(n.Index)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			r.expr(f.Value)
		}
	case *ast.ArrayExpr:
		r.exprs(n.Elems)
	case *ast.ArrayRepeatExpr:
		r.expr(n.Value)
		r.expr(n.Count)
	case *ast.TupleExpr:
		r.exprs(n.Elems)
	case *ast.RangeExpr:
		if n.Start != nil {
			r.expr(n.Start)
		}
		if n.End != nil {
			r.expr(n.End)
		}
	case *ast.BlockExpr:
		r.blockExpr(n)
	case *ast.IfExpr:
		r.expr(n.Cond)
		r.blockExpr(n.Then)
		if n.Else != nil {
			r.expr(n.Else)
		}
	case *ast.IfLetExpr:
		r.expr(n.Scrut)
		r.push(ScopeBlock)
		r.pattern(n.Pattern)
		for _, s := range n.Then.Stmts {
			r.stmt(s)
		}
		if n.Then.Tail != nil {
			r.expr(n.Then.Tail)
		}
		r.pop()
		if n.Else != nil {
			r.expr(n.Else)
		}
	case *ast.GuardPatternExpr:
		r.push(ScopeBlock)
		r.pattern(n.Pattern)
		r.expr(n.Cond)
		r.pop()
	case *ast.IsExpr:
		r.expr(n.Value)
		r.push(ScopeBlock)
		r.pattern(n.Pattern)
		r.pop()
	case *ast.MatchExpr:
		r.expr(n.Scrutinee)
		for _, arm := range n.Arms {
			r.push(ScopeBlock)
			r.pattern(arm.Pattern)
			if arm.Guard != nil {
				r.expr(arm.Guard)
			}
			r.expr(arm.Body)
			r.pop()
		}
	case *ast.TryExpr:
		r.expr(n.X)
	case *ast.UnwrapExpr:
		r.expr(n.X)
	case *ast.ClosureExpr:
		r.push(ScopeFunction)
		for _, p := range n.Params {
			if p.Name != "" {
				id := r.newSymbol(p.Name, SymParam, nil, "")
				r.cur.define(p.Name, id, true)
			}
		}
		r.expr(n.Body)
		r.pop()
	case *ast.CastExpr:
		r.expr(n.X)
	case *ast.SpawnExpr:
		r.expr(n.Body)
	case *ast.UnsafeExpr:
		r.blockExpr(n.Body)
	case *ast.ComptimeExpr:
		r.blockExpr(n.Body)
	case *ast.BlockCallExpr:
		r.expr(n.Call)
		if n.Trailer != nil {
			r.expr(n.Trailer)
		}
	case *ast.AssertExpr:
		r.expr(n.Cond)
		if n.Msg != nil {
			r.expr(n.Msg)
		}
	case *ast.CheckExpr:
		r.expr(n.Cond)
		if n.Msg != nil {
			r.expr(n.Msg)
		}
	case *ast.UsingExpr:
		r.blockExpr(n.Body)
	case *ast.WithAsExpr:
		r.expr(n.Resource)
		r.push(ScopeBlock)
		id := r.newSymbol(n.Name, SymLocal, nil, "")
		r.cur.define(n.Name, id, true)
		for _, s := range n.Body.Stmts {
			r.stmt(s)
		}
		if n.Body.Tail != nil {
			r.expr(n.Body.Tail)
		}
		r.pop()
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			r.expr(arm.Chan)
			r.push(ScopeBlock)
			r.pattern(arm.Pattern)
			r.expr(arm.Body)
			r.pop()
		}
	default:
		// LiteralExpr carries no sub-expressions or names.
	}
}

func (r *resolver) exprs(es []ast.Expr) {
	for _, e := range es {
		r.expr(e)
	}
}
