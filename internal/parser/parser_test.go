package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func parse(t *testing.T, text string) parser.Result {
	t.Helper()
	ids := &source.IDAllocator{}
	return parser.ParseFile(&source.File{Path: "<test>", Text: text}, ids)
}

func parseOK(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parse(t, text)
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func TestParseFuncDecl(t *testing.T) {
	f := parseOK(t, `func add(x: i32, y: i32) -> i32 { x + y }`)
	require.Len(t, f.Decls, 1)
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "x", fn.Params[0].Name)
	assert.Equal(t, ast.ModeOwn, fn.Params[0].Mode)
	require.NotNil(t, fn.Ret)
	require.NotNil(t, fn.Body.Tail)
}

func TestParseFuncDeclWithParamModes(t *testing.T) {
	f := parseOK(t, `func update(self, take a: i32, read b: i32, mut c: i32) { }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Params, 4)
	assert.Equal(t, ast.ModeSelf, fn.Params[0].Mode)
	assert.Equal(t, ast.ModeTake, fn.Params[1].Mode)
	assert.Equal(t, ast.ModeRead, fn.Params[2].Mode)
	assert.Equal(t, ast.ModeMut, fn.Params[3].Mode)
}

func TestParseDocCommentAttachesToFunc(t *testing.T) {
	f := parseOK(t, "/// computes the sum\nfunc add(x: i32, y: i32) -> i32 { x + y }")
	fn := f.Decls[0].(*ast.FuncDecl)
	assert.Equal(t, "computes the sum", fn.Doc)
}

func TestParseAttributeBeforeDecl(t *testing.T) {
	f := parseOK(t, "@inline\nfunc noop() { }")
	fn := f.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Attrs, 1)
	assert.Equal(t, "inline", fn.Attrs[0].Name)
}

func TestParseStructDecl(t *testing.T) {
	f := parseOK(t, `struct Point { x: i32, y: i32 }`)
	s := f.Decls[0].(*ast.StructDecl)
	assert.Equal(t, "Point", s.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "x", s.Fields[0].Name)
	assert.Equal(t, "y", s.Fields[1].Name)
}

func TestParseGenericStructDecl(t *testing.T) {
	f := parseOK(t, `struct Box<T> { value: T }`)
	s := f.Decls[0].(*ast.StructDecl)
	assert.Equal(t, []string{"T"}, s.TypeParams)
}

func TestParseEnumDeclBraceAndTupleVariants(t *testing.T) {
	f := parseOK(t, `
enum Shape {
	Circle(f64),
	Rect { w: f64, h: f64 },
	Point,
}
`)
	e := f.Decls[0].(*ast.EnumDecl)
	require.Len(t, e.Variants, 3)
	assert.Equal(t, "Circle", e.Variants[0].Name)
	require.Len(t, e.Variants[0].Fields, 1)
	assert.Equal(t, "Rect", e.Variants[1].Name)
	require.Len(t, e.Variants[1].Fields, 2)
	assert.Equal(t, "Point", e.Variants[2].Name)
	assert.Empty(t, e.Variants[2].Fields)
}

func TestParseTraitAndImpl(t *testing.T) {
	f := parseOK(t, `
trait Shape {
	func area(self) -> f64
}

impl Shape for Circle {
	func area(self) -> f64 { self.r }
}
`)
	require.Len(t, f.Decls, 2)
	tr := f.Decls[0].(*ast.TraitDecl)
	assert.Equal(t, "Shape", tr.Name)
	require.Len(t, tr.Methods, 1)
	assert.Nil(t, tr.Methods[0].Body)

	impl := f.Decls[1].(*ast.ImplDecl)
	assert.Equal(t, "Shape", impl.Trait)
	named := impl.TargetType.(*ast.NamedTypeExpr)
	assert.Equal(t, "Circle", named.Name)
}

func TestParseImportDecl(t *testing.T) {
	f := parseOK(t, `import std.collections.{Map, Set}`)
	im := f.Decls[0].(*ast.ImportDecl)
	assert.Equal(t, "std.collections", im.Package)
	assert.Equal(t, []string{"Map", "Set"}, im.Names)
}

func TestParseImportWildcard(t *testing.T) {
	f := parseOK(t, `import std.io.*`)
	im := f.Decls[0].(*ast.ImportDecl)
	assert.True(t, im.Wildcard)
}

func TestParseBinaryPrecedence(t *testing.T) {
	f := parseOK(t, `func f() -> i32 { 1 + 2 * 3 }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	top := fn.Body.Tail.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, top.Op)
	_, leftIsLit := top.Left.(*ast.LiteralExpr)
	assert.True(t, leftIsLit)
	right := top.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, right.Op)
}

func TestParseLogicalAndComparisonPrecedence(t *testing.T) {
	f := parseOK(t, `func f() -> bool { a < b && c == d }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	top := fn.Body.Tail.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpLogAnd, top.Op)
}

func TestParseGenericCallVsComparison(t *testing.T) {
	f := parseOK(t, `func f() -> bool { a < b }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	top := fn.Body.Tail.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpLt, top.Op)
}

func TestParseGenericMethodCallExpr(t *testing.T) {
	f := parseOK(t, `func f() { box.make::<i32>(1) }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.MethodCallExpr)
	require.True(t, ok)
	require.Len(t, call.TypeArgs, 1)
}

func TestParseStructLitInExprPosition(t *testing.T) {
	f := parseOK(t, `func f() -> Point { Point { x: 1, y: 2 } }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	lit := fn.Body.Tail.(*ast.StructLitExpr)
	require.Len(t, lit.Fields, 2)
	assert.Equal(t, "x", lit.Fields[0].Name)
}

func TestParseStructLitSuppressedInIfCondition(t *testing.T) {
	f := parseOK(t, `
func f() -> i32 {
	if cond {
		1
	} else {
		2
	}
}
`)
	fn := f.Decls[0].(*ast.FuncDecl)
	ifExpr := fn.Body.Tail.(*ast.IfExpr)
	_, isIdent := ifExpr.Cond.(*ast.IdentExpr)
	assert.True(t, isIdent)
}

func TestParseIfLet(t *testing.T) {
	f := parseOK(t, `
func f() -> i32 {
	if let Some(x) = opt {
		x
	} else {
		0
	}
}
`)
	fn := f.Decls[0].(*ast.FuncDecl)
	iflet := fn.Body.Tail.(*ast.IfLetExpr)
	ctor := iflet.Pattern.(*ast.ConstructorPattern)
	assert.Equal(t, "Some", ctor.Name)
}

func TestParseMatchExprWithGuardAndVariants(t *testing.T) {
	f := parseOK(t, `
func f(x: Shape) -> f64 {
	match x {
		Circle(r) if r > 0.0 => r,
		Rect { w: w, h: h } => w * h,
		_ => 0.0,
	}
}
`)
	fn := f.Decls[0].(*ast.FuncDecl)
	m := fn.Body.Tail.(*ast.MatchExpr)
	require.Len(t, m.Arms, 3)
	assert.NotNil(t, m.Arms[0].Guard)
	ctor := m.Arms[1].Pattern.(*ast.ConstructorPattern)
	assert.Equal(t, "Rect", ctor.Name)
	_, wild := m.Arms[2].Pattern.(*ast.WildcardPattern)
	assert.True(t, wild)
}

func TestParseWhileLetAndForLoop(t *testing.T) {
	f := parseOK(t, `
func f() {
	while let Some(x) = next() { }
	for item in items { }
}
`)
	fn := f.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)
	_, isWhileLet := fn.Body.Stmts[0].(*ast.ExprStmt).X.(*ast.WhileLetStmt)
	assert.True(t, isWhileLet)
	_, isFor := fn.Body.Stmts[1].(*ast.ExprStmt).X.(*ast.ForStmt)
	assert.True(t, isFor)
}

func TestParseLetWithTupleDestructure(t *testing.T) {
	f := parseOK(t, `func f() { let (a, b) = pair }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	assert.Equal(t, []string{"a", "b"}, let.Bind.Names)
}

func TestParseCompoundAssignDesugarsToBinary(t *testing.T) {
	f := parseOK(t, `func f() { x += 1 }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	assign := fn.Body.Stmts[0].(*ast.AssignStmt)
	bin := assign.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseTrailingClosureCall(t *testing.T) {
	f := parseOK(t, `func f() { items.each() { x } }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	_, ok := stmt.X.(*ast.BlockCallExpr)
	assert.True(t, ok)
}

func TestParseClosureExpr(t *testing.T) {
	f := parseOK(t, `func f() { let add = fn(x: i32, y: i32) -> i32 => x + y }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	closure := let.Init.(*ast.ClosureExpr)
	require.Len(t, closure.Params, 2)
}

func TestParsePointerAndArrayTypes(t *testing.T) {
	f := parseOK(t, `func f(p: *i32, a: [i32; 4], s: [i32]) { }`)
	fn := f.Decls[0].(*ast.FuncDecl)
	_, isRef := fn.Params[0].Type.(*ast.RefTypeExpr)
	assert.True(t, isRef)
	arr := fn.Params[1].Type.(*ast.ArrayTypeExpr)
	assert.Equal(t, 4, arr.Len)
	_, isSlice := fn.Params[2].Type.(*ast.SliceTypeExpr)
	assert.True(t, isSlice)
}

func TestParseUsingAndWithAs(t *testing.T) {
	f := parseOK(t, `
func f() {
	using fs { }
	with file as f { }
}
`)
	fn := f.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)
}

func TestParseErrorRecoverySkipsBadDeclAndContinues(t *testing.T) {
	res := parse(t, "123\nfunc ok() { }")
	require.NotEmpty(t, res.Errors)
	require.Len(t, res.File.Decls, 1)
	fn, ok := res.File.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "ok", fn.Name)
}

func TestParseStopsAtMaxErrors(t *testing.T) {
	src := ""
	for i := 0; i < parser.MaxErrors+10; i++ {
		src += "123\n"
	}
	res := parse(t, src)
	assert.LessOrEqual(t, len(res.Errors), parser.MaxErrors)
}
