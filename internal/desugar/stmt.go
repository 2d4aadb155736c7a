package desugar

import "github.com/rask-lang/rask-sub001/internal/ast"

func (d *desugarer) blockExpr(b *ast.BlockExpr) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		d.stmt(s)
	}
	if b.Tail != nil {
		b.Tail = d.expr(b.Tail)
	}
}

func (d *desugarer) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		if n.Init != nil {
			n.Init = d.expr(n.Init)
		}
	case *ast.ConstStmt:
		n.Init = d.expr(n.Init)
	case *ast.AssignStmt:
		n.Target = d.expr(n.Target)
		n.Value = d.expr(n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
	case *ast.LoopControlStmt:
		if n.Value != nil {
			n.Value = d.expr(n.Value)
		}
	case *ast.WhileStmt:
		n.Cond = d.expr(n.Cond)
		d.blockExpr(n.Body)
	case *ast.WhileLetStmt:
		n.Scrut = d.expr(n.Scrut)
		d.blockExpr(n.Body)
	case *ast.ForStmt:
		n.Iter = d.expr(n.Iter)
		d.blockExpr(n.Body)
	case *ast.LoopStmt:
		d.blockExpr(n.Body)
	case *ast.EnsureStmt:
		d.blockExpr(n.Body)
		if n.Catch != nil {
			d.blockExpr(n.Catch)
		}
	case *ast.ComptimeStmt:
		d.blockExpr(n.Body)
	case *ast.ExprStmt:
		n.X = d.expr(n.X)
	}
}
