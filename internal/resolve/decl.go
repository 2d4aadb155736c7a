package resolve

import "github.com/rask-lang/rask-sub001/internal/ast"

// declNameKind returns the name a top-level declaration hoists under
// and the SymbolKind to record it as. ImplDecl/ImportDecl/ExportDecl
// have no name of their own to hoist (handled separately).
func declNameKind(d ast.Decl) (string, SymbolKind, bool) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		return n.Name, SymFunc, true
	case *ast.StructDecl:
		return n.Name, SymStruct, true
	case *ast.EnumDecl:
		return n.Name, SymEnum, true
	case *ast.UnionDecl:
		return n.Name, SymUnion, true
	case *ast.TraitDecl:
		return n.Name, SymTrait, true
	case *ast.ConstDecl:
		return n.Name, SymConst, true
	default:
		return "", 0, false
	}
}

// hoist pre-registers every function/type/const name in a file's
// top-level declarations so forward references resolve (§4.5). pkg
// is "" for the package being resolved itself, or an imported
// package's name, in which case every name is additionally bound
// under a `pkg$Name` prefix.
func (r *resolver) hoist(file *ast.File, pkg string) {
	implTargets := map[string]bool{}
	if pkg != "" {
		for _, d := range file.Decls {
			if impl, ok := d.(*ast.ImplDecl); ok {
				if named, ok := impl.TargetType.(*ast.NamedTypeExpr); ok {
					implTargets[named.Name] = true
				}
			}
		}
	}

	for _, d := range file.Decls {
		name, kind, ok := declNameKind(d)
		if !ok {
			continue
		}
		if pkg == "" {
			id := r.newSymbol(name, kind, d, "")
			if !r.module.define(name, id, false) {
				r.errorf(d.Span(), "E0202", "%s %q is already declared in this package", kind, name)
			}
			continue
		}

		prefixed := pkg + "$" + name
		id := r.newSymbol(prefixed, kind, d, pkg)
		r.module.define(prefixed, id, false)

		// §4.5: impl blocks always add an unprefixed copy so method
		// tables register against both the prefixed and unprefixed type.
		// TODO: once method-table lookup moves off this dual-registration,
		// drop the bare-name define() below and rely solely on the
		// prefixed + unqualified-import forms.
		if implTargets[name] {
			r.module.define(name, id, false)
		}
	}
}

// bindUnqualifiedImport additionally binds the bare name(s) an
// unqualified `import pkg.Sym` or `import pkg.*` introduces.
func (r *resolver) bindUnqualifiedImport(imp *ast.ImportDecl, pkg string) {
	if imp.Package != pkg {
		return
	}
	if imp.Wildcard {
		for name, id := range snapshotPrefixed(r.module, pkg) {
			r.module.define(name, id, false)
		}
		return
	}
	for _, name := range imp.Names {
		if id, ok := r.module.lookup(pkg + "$" + name); ok {
			r.module.define(name, id, false)
		}
	}
}

// snapshotPrefixed returns every bare name -> SymbolId currently
// registered under the `pkg$` prefix, for wildcard-import binding.
func snapshotPrefixed(s *scope, pkg string) map[string]SymbolId {
	out := map[string]SymbolId{}
	prefix := pkg + "$"
	for name, id := range s.names {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			out[name[len(prefix):]] = id
		}
	}
	return out
}
