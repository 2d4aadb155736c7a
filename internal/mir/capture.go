package mir

import "github.com/rask-lang/rask-sub001/internal/ast"

// freeIdents returns every identifier name referenced anywhere inside
// e, in first-encountered order with duplicates removed. lowerClosure
// filters this against the enclosing Builder's own scope chain to
// determine which names must be captured.
func freeIdents(e ast.Expr) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)
	var walkBlock func(*ast.BlockExpr)

	walkBlock = func(b *ast.BlockExpr) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			walkStmt(s)
		}
		walkExpr(b.Tail)
	}

	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.LetStmt:
			walkExpr(n.Init)
		case *ast.ConstStmt:
			walkExpr(n.Init)
		case *ast.AssignStmt:
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.ReturnStmt:
			walkExpr(n.Value)
		case *ast.LoopControlStmt:
			walkExpr(n.Value)
		case *ast.WhileStmt:
			walkExpr(n.Cond)
			walkBlock(n.Body)
		case *ast.WhileLetStmt:
			walkExpr(n.Scrut)
			walkBlock(n.Body)
		case *ast.ForStmt:
			walkExpr(n.Iter)
			walkBlock(n.Body)
		case *ast.LoopStmt:
			walkBlock(n.Body)
		case *ast.EnsureStmt:
			walkBlock(n.Body)
			walkBlock(n.Catch)
		case *ast.ComptimeStmt:
			walkBlock(n.Body)
		case *ast.ExprStmt:
			walkExpr(n.X)
		}
	}

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case nil:
		case *ast.IdentExpr:
			add(n.Name)
		case *ast.BinaryExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.UnaryExpr:
			walkExpr(n.Operand)
		case *ast.CallExpr:
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.MethodCallExpr:
			walkExpr(n.Receiver)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.FieldExpr:
			walkExpr(n.Receiver)
		case *ast.IndexExpr:
			walkExpr(n.Receiver)
			walkExpr(n.Index)
		case *ast.StructLitExpr:
			for _, f := range n.Fields {
				walkExpr(f.Value)
			}
		case *ast.ArrayExpr:
			for _, el := range n.Elems {
				walkExpr(el)
			}
		case *ast.ArrayRepeatExpr:
			walkExpr(n.Value)
			walkExpr(n.Count)
		case *ast.TupleExpr:
			for _, el := range n.Elems {
				walkExpr(el)
			}
		case *ast.RangeExpr:
			walkExpr(n.Start)
			walkExpr(n.End)
		case *ast.BlockExpr:
			walkBlock(n)
		case *ast.IfExpr:
			walkExpr(n.Cond)
			walkBlock(n.Then)
			walkExpr(n.Else)
		case *ast.IfLetExpr:
			walkExpr(n.Scrut)
			walkBlock(n.Then)
			walkExpr(n.Else)
		case *ast.IsExpr:
			walkExpr(n.Value)
		case *ast.MatchExpr:
			walkExpr(n.Scrutinee)
			for _, arm := range n.Arms {
				walkExpr(arm.Guard)
				walkExpr(arm.Body)
			}
		case *ast.TryExpr:
			walkExpr(n.X)
		case *ast.UnwrapExpr:
			walkExpr(n.X)
		case *ast.NullCoalesceExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.ClosureExpr:
			switch body := n.Body.(type) {
			case *ast.BlockExpr:
				walkBlock(body)
			default:
				walkExpr(body)
			}
		case *ast.CastExpr:
			walkExpr(n.X)
		case *ast.SpawnExpr:
			walkExpr(n.Body)
		case *ast.UnsafeExpr:
			walkBlock(n.Body)
		case *ast.ComptimeExpr:
			walkBlock(n.Body)
		case *ast.BlockCallExpr:
			walkExpr(n.Call)
			walkExpr(n.Trailer)
		case *ast.AssertExpr:
			walkExpr(n.Cond)
			walkExpr(n.Msg)
		case *ast.CheckExpr:
			walkExpr(n.Cond)
			walkExpr(n.Msg)
		case *ast.UsingExpr:
			walkBlock(n.Body)
		case *ast.WithAsExpr:
			walkExpr(n.Resource)
			walkBlock(n.Body)
		case *ast.SelectExpr:
			for _, arm := range n.Arms {
				walkExpr(arm.Chan)
				walkExpr(arm.Body)
			}
		}
	}

	walkExpr(e)
	return out
}
