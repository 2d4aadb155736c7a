// Package desugar implements §4.3: an in-place AST rewrite that
// normalizes operator syntax to method-call form ahead of name
// resolution and type checking.
//
// The pass walks every declaration reachable from a file, rewriting
// expressions as it goes and leaving statements, patterns, and type
// expressions untouched (they carry no operators eligible for
// rewrite). It is idempotent: a BinaryExpr that survives one pass
// (logical and/or) is never itself a rewrite target, and a rewritten
// node is a MethodCallExpr or a preserved UnaryExpr, neither of which
// matches the rewrite rules again.
package desugar

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/source"
)

// Desugar rewrites every declaration in f in place, minting fresh
// NodeIds for synthesized nodes from ids. Callers share one allocator
// across a package's files so synthesized ids never collide with each
// other or with parser-assigned ids (ids should be seeded at
// source.DesugarIDBase).
func Desugar(f *ast.File, ids *source.IDAllocator) {
	d := &desugarer{ids: ids}
	for _, decl := range f.Decls {
		d.decl(decl)
	}
}

type desugarer struct {
	ids *source.IDAllocator
}

func (d *desugarer) newId() source.NodeId { return d.ids.Next() }

func (d *desugarer) decl(decl ast.Decl) {
	switch n := decl.(type) {
	case *ast.FuncDecl:
		if n.Body != nil {
			d.blockExpr(n.Body)
		}
	case *ast.ImplDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				d.blockExpr(m.Body)
			}
		}
	case *ast.TraitDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				d.blockExpr(m.Body)
			}
		}
	case *ast.ConstDecl:
		n.Init = d.expr(n.Init)
	case *ast.TestDecl:
		d.blockExpr(n.Body)
	case *ast.BenchmarkDecl:
		d.blockExpr(n.Body)
	case *ast.StructDecl, *ast.EnumDecl, *ast.UnionDecl, *ast.ImportDecl, *ast.ExportDecl:
		// no expressions to desugar
	}
}
