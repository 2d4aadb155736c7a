package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/codegen"
	"github.com/rask-lang/rask-sub001/internal/mir"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func parseFile(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func TestBuildResolvesUserFunctionCall(t *testing.T) {
	f := parseFile(t, `
func double(n: i32) -> i32 {
	n + n
}
func f(n: i32) -> i32 {
	double(n)
}
`)
	prog := mir.BuildFile(f, nil)
	mod, err := codegen.Build(prog, nil)
	require.NoError(t, err)

	fn, ok := findFn(mod, "f")
	require.True(t, ok)
	require.Len(t, fn.Calls, 1)
	assert.Equal(t, "double", fn.Calls[0].Target.Name)
	assert.False(t, fn.Calls[0].Target.IsRuntime)
}

func TestBuildResolvesStdlibMethodCallThroughDispatchTable(t *testing.T) {
	f := parseFile(t, `
func f(v: Vec<i32>) -> i64 {
	v.push(1);
	v.len()
}
`)
	prog := mir.BuildFile(f, nil)
	mod, err := codegen.Build(prog, nil)
	require.NoError(t, err)

	fn, ok := findFn(mod, "f")
	require.True(t, ok)
	require.Len(t, fn.Calls, 2)
	assert.Equal(t, "rask_vec_push", fn.Calls[0].Target.Entry.CRuntime)
	assert.True(t, fn.Calls[0].Target.IsRuntime)
	assert.Equal(t, "rask_vec_len", fn.Calls[1].Target.Entry.CRuntime)
}

func TestBuildUserMethodShadowsStdlibEntryOfTheSameName(t *testing.T) {
	f := parseFile(t, `
struct Point { x: i32, y: i32 }
impl Point {
	func len(self) -> i32 {
		self.x
	}
}
func f(p: Point) -> i32 {
	p.len()
}
`)
	prog := mir.BuildFile(f, nil)
	mod, err := codegen.Build(prog, nil)
	require.NoError(t, err)

	fn, ok := findFn(mod, "f")
	require.True(t, ok)
	require.Len(t, fn.Calls, 1)
	assert.False(t, fn.Calls[0].Target.IsRuntime, "Point.len must win over any stdlib method named len")
	assert.Equal(t, "Point.len", fn.Calls[0].Target.Name)
}

func TestDebugBackendExecutesArithmeticAndCalls(t *testing.T) {
	f := parseFile(t, `
func double(n: i32) -> i32 {
	n + n
}
func f(n: i32) -> i32 {
	double(n) + 1
}
`)
	prog := mir.BuildFile(f, nil)
	mod, err := codegen.Build(prog, nil)
	require.NoError(t, err)

	backend := codegen.NewDebugBackend(nil)
	result, err := backend.Run(mod, "f", []int64{20})
	require.NoError(t, err)
	assert.Equal(t, int64(41), result)
}

func TestDebugBackendExecutesIfBranch(t *testing.T) {
	f := parseFile(t, `
func f(n: i32) -> i32 {
	if n > 0 {
		1
	} else {
		-1
	}
}
`)
	prog := mir.BuildFile(f, nil)
	mod, err := codegen.Build(prog, nil)
	require.NoError(t, err)

	backend := codegen.NewDebugBackend(nil)

	pos, err := backend.Run(mod, "f", []int64{5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pos)

	neg, err := backend.Run(mod, "f", []int64{-5})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), neg)
}

func TestDebugBackendCallsRuntimeStubForDispatchedMethod(t *testing.T) {
	f := parseFile(t, `
func f(v: Vec<i32>) -> i64 {
	v.len()
}
`)
	prog := mir.BuildFile(f, nil)
	mod, err := codegen.Build(prog, nil)
	require.NoError(t, err)

	var sawArg int64 = -1
	backend := codegen.NewDebugBackend(map[string]codegen.RuntimeFunc{
		"rask_vec_len": func(args []int64) int64 {
			sawArg = args[0]
			return 7
		},
	})
	result, err := backend.Run(mod, "f", []int64{42})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result)
	assert.Equal(t, int64(42), sawArg)
}

func findFn(mod *codegen.Module, name string) (*codegen.Function, bool) {
	for _, f := range mod.Functions {
		if f.MIR.Name == name {
			return f, true
		}
	}
	return nil, false
}
