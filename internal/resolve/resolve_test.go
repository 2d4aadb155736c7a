package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/resolve"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func parseFile(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func TestResolveLocalIdentifier(t *testing.T) {
	f := parseFile(t, `func f(a: i32) -> i32 { let b = a; b }`)
	result, errs := resolve.Resolve(f, nil)
	assert.Empty(t, errs)

	fn := f.Decls[0].(*ast.FuncDecl)
	letStmt := fn.Body.Stmts[0].(*ast.LetStmt)
	tailIdent := fn.Body.Tail.(*ast.IdentExpr)

	aRef := letStmt.Init.(*ast.IdentExpr)
	aSym, ok := result.Resolutions[aRef.NodeId()]
	require.True(t, ok)
	assert.Equal(t, "a", result.Symbol(aSym).Name)

	bSym, ok := result.Resolutions[tailIdent.NodeId()]
	require.True(t, ok)
	assert.Equal(t, "b", result.Symbol(bSym).Name)
}

func TestResolveUndefinedNameIsDiagnostic(t *testing.T) {
	f := parseFile(t, `func f() -> i32 { undefined_name }`)
	_, errs := resolve.Resolve(f, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "E0201", errs[0].Code)
}

func TestResolveForwardReferenceToFunction(t *testing.T) {
	f := parseFile(t, `
func caller() -> i32 {
	callee()
}

func callee() -> i32 {
	1
}
`)
	_, errs := resolve.Resolve(f, nil)
	assert.Empty(t, errs, "%v", errs)
}

func TestResolveDuplicateTopLevelFuncIsError(t *testing.T) {
	f := parseFile(t, `
func dup() -> i32 { 1 }
func dup() -> i32 { 2 }
`)
	_, errs := resolve.Resolve(f, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "E0202", errs[0].Code)
}

func TestResolveLetShadowingAllowedWithinBlock(t *testing.T) {
	f := parseFile(t, `
func f(a: i32) -> i32 {
	let x = a;
	let x = x + 1;
	x
}
`)
	_, errs := resolve.Resolve(f, nil)
	assert.Empty(t, errs, "%v", errs)
}

func TestResolveImportedPackagePrefixedAndUnqualified(t *testing.T) {
	mathPkg := parseFile(t, `func square(a: i32) -> i32 { a }`)
	f := parseFile(t, `
import math.{square}

func f() -> i32 {
	square(2)
}
`)
	_, errs := resolve.Resolve(f, map[string]*ast.File{"math": mathPkg})
	assert.Empty(t, errs, "%v", errs)
}

func TestResolveQualifiedOnlyImportDoesNotBindBareName(t *testing.T) {
	mathPkg := parseFile(t, `func square(a: i32) -> i32 { a }`)
	f := parseFile(t, `
import math

func f() -> i32 {
	square(2)
}
`)
	_, errs := resolve.Resolve(f, map[string]*ast.File{"math": mathPkg})
	require.Len(t, errs, 1)
	assert.Equal(t, "E0201", errs[0].Code)
}

func TestResolveClosureParamsScopedToClosure(t *testing.T) {
	f := parseFile(t, `
func f() -> i32 {
	let add = fn(x: i32, y: i32) => x + y;
	1
}
`)
	_, errs := resolve.Resolve(f, nil)
	assert.Empty(t, errs, "%v", errs)
}
