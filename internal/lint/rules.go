package lint

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
)

// unusedImportRule flags an `import pkg.Name` whose Name is never
// referenced as a bare identifier anywhere else in the file. It is a
// best-effort syntactic scan over the identifiers the file's own
// expressions and type references use, not a resolver-backed check —
// a genuinely sound unused-import diagnostic belongs to
// internal/resolve, which already has the symbol table this rule only
// approximates.
type unusedImportRule struct{}

func (unusedImportRule) ID() string  { return "unused-import" }
func (unusedImportRule) Doc() string { return "imported name is never referenced in the file" }

func (unusedImportRule) Check(file *ast.File) []diag.Diagnostic {
	used := collectIdentUses(file)

	var out []diag.Diagnostic
	for _, d := range file.Decls {
		imp, ok := d.(*ast.ImportDecl)
		if !ok || imp.Wildcard {
			continue
		}
		for _, name := range imp.Names {
			if used[name] {
				continue
			}
			out = append(out, diag.Diagnostic{
				Severity: diag.Warning,
				Code:     "lint.unused-import",
				Message:  fmt.Sprintf("imported name %q is never used", name),
				Labels: []diag.Label{{
					Span:  imp.Span(),
					Style: diag.Primary,
				}},
			})
		}
	}
	return out
}

// emptyBlockRule flags a free function or impl method body that is a
// single empty block with no tail expression — almost always a stub
// left behind mid-edit. Closure bodies are not checked.
type emptyBlockRule struct{}

func (emptyBlockRule) ID() string  { return "empty-block" }
func (emptyBlockRule) Doc() string { return "function body has no statements and no tail expression" }

func (emptyBlockRule) Check(file *ast.File) []diag.Diagnostic {
	var out []diag.Diagnostic
	var visit func(d ast.Decl)
	visit = func(d ast.Decl) {
		switch n := d.(type) {
		case *ast.FuncDecl:
			if n.Body != nil && len(n.Body.Stmts) == 0 && n.Body.Tail == nil {
				out = append(out, diag.Diagnostic{
					Severity: diag.Note,
					Code:     "lint.empty-block",
					Message:  fmt.Sprintf("function %q has an empty body", n.Name),
					Labels:   []diag.Label{{Span: n.Span(), Style: diag.Primary}},
				})
			}
		case *ast.ImplDecl:
			for _, m := range n.Methods {
				visit(m)
			}
		}
	}
	for _, d := range file.Decls {
		visit(d)
	}
	return out
}

// collectIdentUses walks the subset of expression forms common enough
// to matter for unused-import detection, returning the set of bare
// identifier names referenced anywhere in file. It intentionally does
// not attempt full exhaustive AST coverage (per-rule walkers here are
// narrower than internal/resolve's canonical one); an identifier used
// only inside a form this walker doesn't descend into produces a false
// "unused" warning rather than a crash, which is an acceptable
// trade-off for a lint hint.
func collectIdentUses(file *ast.File) map[string]bool {
	used := make(map[string]bool)
	var visitExpr func(e ast.Expr)
	var visitStmt func(s ast.Stmt)
	var visitBlock func(b *ast.BlockExpr)

	visitExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.IdentExpr:
			used[n.Name] = true
		case *ast.BinaryExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.UnaryExpr:
			visitExpr(n.Operand)
		case *ast.CallExpr:
			visitExpr(n.Callee)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.MethodCallExpr:
			visitExpr(n.Receiver)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.FieldExpr:
			visitExpr(n.Receiver)
		case *ast.IndexExpr:
			visitExpr(n.Receiver)
			visitExpr(n.Index)
		case *ast.StructLitExpr:
			for _, f := range n.Fields {
				visitExpr(f.Value)
			}
		case *ast.ArrayExpr:
			for _, el := range n.Elems {
				visitExpr(el)
			}
		case *ast.TupleExpr:
			for _, el := range n.Elems {
				visitExpr(el)
			}
		case *ast.RangeExpr:
			visitExpr(n.Start)
			visitExpr(n.End)
		case *ast.BlockExpr:
			visitBlock(n)
		case *ast.IfExpr:
			visitExpr(n.Cond)
			visitBlock(n.Then)
			if n.Else != nil {
				visitExpr(n.Else)
			}
		case *ast.MatchExpr:
			visitExpr(n.Scrutinee)
			for _, arm := range n.Arms {
				visitExpr(arm.Body)
			}
		case *ast.TryExpr:
			visitExpr(n.X)
		case *ast.UnwrapExpr:
			visitExpr(n.X)
		case *ast.ClosureExpr:
			visitExpr(n.Body)
		case *ast.CastExpr:
			visitExpr(n.X)
		case *ast.SpawnExpr:
			visitExpr(n.Body)
		case *ast.AssertExpr:
			visitExpr(n.Cond)
		case *ast.CheckExpr:
			visitExpr(n.Cond)
		}
	}

	visitStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.LetStmt:
			visitExpr(n.Init)
		case *ast.AssignStmt:
			visitExpr(n.Target)
			visitExpr(n.Value)
		case *ast.ReturnStmt:
			visitExpr(n.Value)
		case *ast.WhileStmt:
			visitExpr(n.Cond)
			visitBlock(n.Body)
		case *ast.ForStmt:
			visitExpr(n.Iter)
			visitBlock(n.Body)
		case *ast.LoopStmt:
			visitBlock(n.Body)
		case *ast.ExprStmt:
			visitExpr(n.X)
		}
	}

	visitBlock = func(b *ast.BlockExpr) {
		if b == nil {
			return
		}
		for _, s := range b.Stmts {
			visitStmt(s)
		}
		visitExpr(b.Tail)
	}

	var visitDecl func(d ast.Decl)
	visitDecl = func(d ast.Decl) {
		switch n := d.(type) {
		case *ast.FuncDecl:
			visitBlock(n.Body)
		case *ast.ImplDecl:
			for _, m := range n.Methods {
				visitDecl(m)
			}
		case *ast.ConstDecl:
			visitExpr(n.Init)
		}
	}
	for _, d := range file.Decls {
		visitDecl(d)
	}
	return used
}
