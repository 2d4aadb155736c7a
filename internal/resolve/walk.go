package resolve

import "github.com/rask-lang/rask-sub001/internal/ast"

func (r *resolver) walkDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		r.walkFunc(n.Params, n.Body)
	case *ast.ImplDecl:
		for _, m := range n.Methods {
			r.walkFunc(m.Params, m.Body)
		}
	case *ast.TraitDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				r.walkFunc(m.Params, m.Body)
			}
		}
	case *ast.ConstDecl:
		r.expr(n.Init)
	case *ast.TestDecl:
		r.walkFunc(nil, n.Body)
	case *ast.BenchmarkDecl:
		r.walkFunc(nil, n.Body)
	}
}

// walkFunc pushes a function scope, binds params, walks the body, and
// pops the scope.
func (r *resolver) walkFunc(params []ast.Param, body *ast.BlockExpr) {
	if body == nil {
		return
	}
	r.push(ScopeFunction)
	defer r.pop()

	for _, p := range params {
		if p.Name == "" {
			continue
		}
		id := r.newSymbol(p.Name, SymParam, nil, "")
		r.cur.define(p.Name, id, true)
	}
	r.blockExpr(body)
}

func (r *resolver) push(kind ScopeKind) { r.cur = newScope(kind, r.cur) }
func (r *resolver) pop()                { r.cur = r.cur.parent }

func (r *resolver) blockExpr(b *ast.BlockExpr) {
	if b == nil {
		return
	}
	r.push(ScopeBlock)
	defer r.pop()

	for _, s := range b.Stmts {
		r.stmt(s)
	}
	if b.Tail != nil {
		r.expr(b.Tail)
	}
}

func (r *resolver) bindLocal(name string) SymbolId {
	id := r.newSymbol(name, SymLocal, nil, "")
	r.cur.define(name, id, true) // let/const allow shadowing within a scope, per §4.5
	return id
}
