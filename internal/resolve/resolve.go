package resolve

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/source"
)

// resolver holds the mutable state threaded through one package's
// resolution pass.
type resolver struct {
	symbols     []Symbol
	resolutions map[source.NodeId]SymbolId
	module      *scope
	cur         *scope
	diags       *diag.Bag
}

// Resolve resolves one package's declarations against themselves plus
// the declarations of imported packages keyed by package name (§4.5).
// It returns the symbol table and resolution map even when diagnostics
// were produced, so later phases can still walk what did resolve.
func Resolve(file *ast.File, imports map[string]*ast.File) (*Result, []diag.Diagnostic) {
	r := &resolver{
		resolutions: make(map[source.NodeId]SymbolId),
		diags:       diag.NewBag(0),
	}
	r.module = newScope(ScopeModule, nil)
	r.cur = r.module

	r.hoist(file, "")
	for pkg, impFile := range imports {
		r.hoist(impFile, pkg)
	}
	for _, d := range file.Decls {
		if imp, ok := d.(*ast.ImportDecl); ok {
			r.bindUnqualifiedImport(imp, imp.Package)
		}
	}

	for _, d := range file.Decls {
		r.walkDecl(d)
	}

	return &Result{Symbols: r.symbols, Resolutions: r.resolutions}, r.diags.Items()
}

func (r *resolver) newSymbol(name string, kind SymbolKind, decl ast.Decl, pkg string) SymbolId {
	id := SymbolId(len(r.symbols))
	r.symbols = append(r.symbols, Symbol{Id: id, Name: name, Kind: kind, Decl: decl, Package: pkg})
	return id
}

func (r *resolver) errorf(span source.Span, code, format string, args ...any) {
	r.diags.Add(diag.Diagnostic{
		Severity: diag.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Labels:   []diag.Label{{Span: span, Style: diag.Primary}},
	})
}
