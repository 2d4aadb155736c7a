package resolve

import "github.com/rask-lang/rask-sub001/internal/ast"

func (r *resolver) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		if n.Init != nil {
			r.expr(n.Init)
		}
		for _, name := range n.Bind.Names {
			if name != "_" {
				r.bindLocal(name)
			}
		}
	case *ast.ConstStmt:
		r.expr(n.Init)
		r.bindLocal(n.Name)
	case *ast.AssignStmt:
		r.expr(n.Target)
		r.expr(n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			r.expr(n.Value)
		}
	case *ast.LoopControlStmt:
		if n.Value != nil {
			r.expr(n.Value)
		}
	case *ast.WhileStmt:
		r.expr(n.Cond)
		r.blockExpr(n.Body)
	case *ast.WhileLetStmt:
		r.expr(n.Scrut)
		r.push(ScopeBlock)
		r.pattern(n.Pattern)
		for _, s := range n.Body.Stmts {
			r.stmt(s)
		}
		if n.Body.Tail != nil {
			r.expr(n.Body.Tail)
		}
		r.pop()
	case *ast.ForStmt:
		r.expr(n.Iter)
		r.push(ScopeBlock)
		r.pattern(n.Pattern)
		for _, s := range n.Body.Stmts {
			r.stmt(s)
		}
		if n.Body.Tail != nil {
			r.expr(n.Body.Tail)
		}
		r.pop()
	case *ast.LoopStmt:
		r.blockExpr(n.Body)
	case *ast.EnsureStmt:
		r.blockExpr(n.Body)
		if n.Catch != nil {
			r.blockExpr(n.Catch)
		}
	case *ast.ComptimeStmt:
		r.blockExpr(n.Body)
	case *ast.ExprStmt:
		r.expr(n.X)
	}
}
