package desugar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/desugar"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func desugarFunc(t *testing.T, text string) *ast.FuncDecl {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	desugar.Desugar(res.File, source.NewIDAllocator(source.DesugarIDBase))
	return res.File.Decls[0].(*ast.FuncDecl)
}

func TestDesugarArithmeticToMethodCall(t *testing.T) {
	fn := desugarFunc(t, `func f(a: i32, b: i32, c: i32) -> i32 { a + b * c }`)
	outer := fn.Body.Tail.(*ast.MethodCallExpr)
	assert.Equal(t, "add", outer.Name)
	_, leftIsIdent := outer.Receiver.(*ast.IdentExpr)
	assert.True(t, leftIsIdent)
	inner := outer.Args[0].(*ast.MethodCallExpr)
	assert.Equal(t, "mul", inner.Name)
}

func TestDesugarNotEqualToNotEq(t *testing.T) {
	fn := desugarFunc(t, `func f(a: i32, b: i32) -> bool { a != b }`)
	not := fn.Body.Tail.(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNot, not.Op)
	eq := not.Operand.(*ast.MethodCallExpr)
	assert.Equal(t, "eq", eq.Name)
}

func TestDesugarUnaryNegAndBitNot(t *testing.T) {
	fn := desugarFunc(t, `func f(a: i32) -> i32 { -a }`)
	call := fn.Body.Tail.(*ast.MethodCallExpr)
	assert.Equal(t, "neg", call.Name)
	assert.Empty(t, call.Args)

	fn = desugarFunc(t, `func f(a: i32) -> i32 { ~a }`)
	call = fn.Body.Tail.(*ast.MethodCallExpr)
	assert.Equal(t, "bit_not", call.Name)
}

func TestDesugarPreservesLogicalAndLogicalNot(t *testing.T) {
	fn := desugarFunc(t, `func f(a: bool, b: bool) -> bool { !a && b }`)
	and := fn.Body.Tail.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpLogAnd, and.Op)
	not := and.Left.(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNot, not.Op)
}

func TestDesugarRecursesIntoNestedBlocksAndControlFlow(t *testing.T) {
	fn := desugarFunc(t, `
func f(a: i32, b: i32) -> i32 {
	if a < b {
		a + b
	} else {
		a - b
	}
}
`)
	ifExpr := fn.Body.Tail.(*ast.IfExpr)
	_, condIsCall := ifExpr.Cond.(*ast.MethodCallExpr)
	assert.True(t, condIsCall)
	thenCall := ifExpr.Then.Tail.(*ast.MethodCallExpr)
	assert.Equal(t, "add", thenCall.Name)
	elseCall := ifExpr.Else.(*ast.BlockExpr).Tail.(*ast.MethodCallExpr)
	assert.Equal(t, "sub", elseCall.Name)
}

func TestDesugarMintsIdsAboveDesugarIDBase(t *testing.T) {
	fn := desugarFunc(t, `func f(a: i32, b: i32) -> i32 { a + b }`)
	call := fn.Body.Tail.(*ast.MethodCallExpr)
	assert.GreaterOrEqual(t, uint32(call.NodeId()), uint32(source.DesugarIDBase))
}

func TestDesugarIsIdempotent(t *testing.T) {
	fn := desugarFunc(t, `func f(a: i32, b: i32) -> i32 { a + b }`)
	before := fn.Body.Tail.(*ast.MethodCallExpr)

	desugar.Desugar(&ast.File{Decls: []ast.Decl{fn}}, source.NewIDAllocator(source.DesugarIDBase+1000))

	after := fn.Body.Tail.(*ast.MethodCallExpr)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, "add", after.Name)
}
