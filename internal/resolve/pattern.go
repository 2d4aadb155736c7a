package resolve

import "github.com/rask-lang/rask-sub001/internal/ast"

// pattern binds every name a pattern introduces and, for constructor
// patterns, best-effort resolves the constructor name against an
// in-scope type/variant (§4.5's "pattern constructor" resolution
// target). A constructor name that does not resolve here is not an
// error on its own: full enum-variant resolution also consults the
// type checker's method table (§4.6), which runs after this pass.
func (r *resolver) pattern(p ast.Pattern) {
	switch n := p.(type) {
	case *ast.BindPattern:
		if n.Name != "_" {
			r.bindLocal(n.Name)
		}
	case *ast.LiteralPattern:
		r.expr(n.Value)
	case *ast.ConstructorPattern:
		if id, ok := r.cur.lookup(n.Name); ok {
			r.resolutions[n.NodeId()] = id
		} else if id, ok := r.cur.lookup(firstDotSegment(n.Name)); ok {
			r.resolutions[n.NodeId()] = id
		}
		for _, f := range n.Fields {
			r.pattern(f)
		}
	case *ast.TuplePattern:
		for _, e := range n.Elems {
			r.pattern(e)
		}
	case *ast.WildcardPattern:
		// binds nothing
	}
}

func firstDotSegment(s string) string {
	for i, c := range s {
		if c == '.' {
			return s[:i]
		}
	}
	return s
}
