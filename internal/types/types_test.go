package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
	_ "github.com/rask-lang/rask-sub001/internal/stdlib"
	"github.com/rask-lang/rask-sub001/internal/types"
)

func parseFile(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func TestBuildArenaStructFieldsAndMethods(t *testing.T) {
	f := parseFile(t, `
struct Point { x: i32, y: i32 }
impl Point {
	func magnitude(self) -> i32 { self.x }
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	td, ok := arena.Lookup("Point")
	require.True(t, ok)
	assert.Equal(t, types.DefStruct, td.Kind)

	xField, ok := td.FieldByName("x")
	require.True(t, ok)
	assert.Equal(t, "i32", xField.Type.String())

	m, ok := td.MethodByName("magnitude")
	require.True(t, ok)
	assert.True(t, m.TakesSelf)
	assert.Equal(t, "i32", m.Ret.String())
}

func TestBuildArenaEnumVariants(t *testing.T) {
	f := parseFile(t, `
enum Shape {
	Circle { radius: f64 },
	Square { side: f64 },
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	td, ok := arena.Lookup("Shape")
	require.True(t, ok)
	require.Len(t, td.Variants, 2)

	circle, ok := td.VariantByName("Circle")
	require.True(t, ok)
	assert.Equal(t, 0, circle.Tag)
	require.Len(t, circle.Fields, 1)
	assert.Equal(t, "radius", circle.Fields[0].Name)
	assert.Equal(t, "f64", circle.Fields[0].Type.String())

	square, ok := td.VariantByName("Square")
	require.True(t, ok)
	assert.Equal(t, 1, square.Tag)
}

func TestBuildArenaImplForUndeclaredTypeIsError(t *testing.T) {
	f := parseFile(t, `
impl Ghost {
	func boo(self) {}
}
`)
	_, errs := types.BuildArena(f.Decls)
	require.Len(t, errs, 1)
}

func TestUnifyExactPrimitivesSucceed(t *testing.T) {
	s := types.NewSubst()
	err := s.Unify(&types.Primitive{Kind: types.I32}, &types.Primitive{Kind: types.I32})
	assert.NoError(t, err)
}

func TestUnifyMismatchedPrimitivesFailUnlessWidening(t *testing.T) {
	s := types.NewSubst()
	err := s.Unify(&types.Primitive{Kind: types.Bool}, &types.Primitive{Kind: types.Char})
	assert.Error(t, err)
}

func TestUnifyAllowsNumericWidening(t *testing.T) {
	s := types.NewSubst()
	// destination (i64) is wider than the source (i32): compatible.
	err := s.Unify(&types.Primitive{Kind: types.I32}, &types.Primitive{Kind: types.I64})
	assert.NoError(t, err)
}

func TestUnifyRejectsNarrowingAcrossFamilies(t *testing.T) {
	s := types.NewSubst()
	err := s.Unify(&types.Primitive{Kind: types.I32}, &types.Primitive{Kind: types.F32})
	assert.Error(t, err)
}

func TestUnifyBindsVariableThenAppliesFollowsIt(t *testing.T) {
	s := types.NewSubst()
	v := &types.Var{Id: 0}
	require.NoError(t, s.Unify(v, &types.Primitive{Kind: types.I64}))
	assert.Equal(t, "i64", s.Apply(v).String())
}

func TestUnifyOccursCheckRejectsInfiniteType(t *testing.T) {
	s := types.NewSubst()
	v := &types.Var{Id: 0}
	self := &types.Ptr{Pointee: v}
	err := s.Unify(v, self)
	assert.Error(t, err)
}

func TestUnifyErrorTypeSuppressesCascade(t *testing.T) {
	s := types.NewSubst()
	err := s.Unify(&types.ErrorType{}, &types.Primitive{Kind: types.Bool})
	assert.NoError(t, err)
}

func TestCheckFileSimpleArithmeticFunction(t *testing.T) {
	f := parseFile(t, `
func add(a: i32, b: i32) -> i32 {
	a + b
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.Empty(t, diags)
}

func TestCheckFileReturnTypeMismatchIsDiagnostic(t *testing.T) {
	f := parseFile(t, `
func broken() -> bool {
	1
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	require.NotEmpty(t, diags)
}

func TestCheckFileLetBindingInfersFromInit(t *testing.T) {
	f := parseFile(t, `
func f() -> i32 {
	let x = 1;
	let y: i32 = x;
	y
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.Empty(t, diags)
}

func TestCheckFileStructLiteralFieldMismatchIsDiagnostic(t *testing.T) {
	f := parseFile(t, `
struct Point { x: i32, y: i32 }
func f() -> Point {
	Point { x: true, y: 2 }
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.NotEmpty(t, diags)
}

func TestCheckFileMatchArmsMustAgree(t *testing.T) {
	f := parseFile(t, `
func f(n: i32) -> i32 {
	match n {
		0 => 1,
		_ => 2,
	}
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.Empty(t, diags)
}

// TestCheckFileStdlibMethodCallResolvesViaStubRegistry covers §4.6 step
// 3: a method call on a builtin generic with no arena declaration of
// its own (Vec<T>) must resolve through internal/stdlib's registry,
// not fail with "has no method".
func TestCheckFileStdlibMethodCallResolvesViaStubRegistry(t *testing.T) {
	f := parseFile(t, `
func f(v: Vec<i32>) -> i64 {
	v.push(1);
	v.len()
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.Empty(t, diags, "%v", diags)
}

// TestCheckFileOptionMethodCallResolvesViaStubRegistry covers the same
// fallback for an enum-shaped stub (Option<T>), whose HasMethod
// resolution additionally must not be confused by its Some/None
// variant "methods".
func TestCheckFileOptionMethodCallResolvesViaStubRegistry(t *testing.T) {
	f := parseFile(t, `
func f(o: Option<i32>) -> bool {
	o.is_some()
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.Empty(t, diags, "%v", diags)
}

// TestCheckFileNoneInfersFromReturnType is the spec.md §8 scenario 2
// regression: a bare `None` tail expression must unify against the
// function's declared Option<i32> return type rather than failing to
// infer its type argument.
func TestCheckFileNoneInfersFromReturnType(t *testing.T) {
	f := parseFile(t, `
func f() -> Option<i32> {
	None
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	_, diags := types.CheckFile(f, arena)
	assert.Empty(t, diags, "%v", diags)
}
