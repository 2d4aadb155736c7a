package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/interp"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/types"
)

func parseFile(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func newInterp(t *testing.T, text string) *interp.Interp {
	t.Helper()
	f := parseFile(t, text)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)
	return interp.New(f, arena)
}

func TestArithmeticAndCall(t *testing.T) {
	in := newInterp(t, `
func add(a: i32, b: i32) -> i32 {
	a + b
}
`)
	v, err := in.CallFunction("add", []interp.Value{interp.Int(2), interp.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.I)
}

func TestIfElseBranches(t *testing.T) {
	in := newInterp(t, `
func classify(n: i32) -> i32 {
	if n > 0 {
		1
	} else {
		0
	}
}
`)
	pos, err := in.CallFunction("classify", []interp.Value{interp.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pos.I)

	nonpos, err := in.CallFunction("classify", []interp.Value{interp.Int(-5)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), nonpos.I)
}

func TestWhileLoopAccumulates(t *testing.T) {
	in := newInterp(t, `
func sum_to(n: i32) -> i32 {
	let mut total = 0
	let mut i = 0
	while i < n {
		total = total + i
		i = i + 1
	}
	total
}
`)
	v, err := in.CallFunction("sum_to", []interp.Value{interp.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.I)
}

func TestLoopBreakExitsOnCondition(t *testing.T) {
	in := newInterp(t, `
func first_over(limit: i32) -> i32 {
	let mut i = 0
	loop {
		i = i + 1
		if i > limit {
			break
		}
	}
	i
}
`)
	v, err := in.CallFunction("first_over", []interp.Value{interp.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.I)
}

func TestMatchOnEnumVariant(t *testing.T) {
	in := newInterp(t, `
enum Shape {
	Circle(i32),
	Square(i32),
}

func area(s: Shape) -> i32 {
	match s {
		Circle(r) => r * r,
		Square(side) => side * side,
	}
}
`)
	circle := interp.Value{Kind: interp.KindEnum, Enum: &interp.EnumVal{
		TypeName: "Shape", Variant: "Circle", Fields: []interp.Value{interp.Int(3)},
	}}
	v, err := in.CallFunction("area", []interp.Value{circle})
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.I)
}

func TestOptionSomeNoneMatch(t *testing.T) {
	in := newInterp(t, `
func describe(o: Option<i32>) -> i32 {
	match o {
		Some(v) => v,
		None => -1,
	}
}
`)
	some, err := in.CallFunction("describe", []interp.Value{interp.SomeValue(interp.Int(7))})
	require.NoError(t, err)
	assert.Equal(t, int64(7), some.I)

	none, err := in.CallFunction("describe", []interp.Value{interp.NoneValue()})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), none.I)
}

func TestTryOperatorEarlyReturnsNone(t *testing.T) {
	in := newInterp(t, `
func half(n: i32) -> Option<i32> {
	if n % 2 == 0 {
		Some(n / 2)
	} else {
		None
	}
}

func quarter(n: i32) -> Option<i32> {
	let h = half(n)?
	let q = half(h)?
	Some(q)
}
`)
	ok, err := in.CallFunction("quarter", []interp.Value{interp.Int(8)})
	require.NoError(t, err)
	require.NotNil(t, ok.Option)
	assert.Equal(t, int64(2), ok.Option.I)

	fail, err := in.CallFunction("quarter", []interp.Value{interp.Int(6)})
	require.NoError(t, err)
	assert.Nil(t, fail.Option)
}

func TestClosureCapturesEnclosingBinding(t *testing.T) {
	in := newInterp(t, `
func make_adder(base: i32) -> i32 {
	let add = fn(x: i32) -> i32 => base + x
	add(10)
}
`)
	v, err := in.CallFunction("make_adder", []interp.Value{interp.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, int64(15), v.I)
}

func TestVecBuiltinMethods(t *testing.T) {
	in := newInterp(t, `
func build() -> i32 {
	let mut v = [1, 2]
	v.push(3)
	v.len()
}
`)
	v, err := in.CallFunction("build", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.I)
}

func TestUnconsumedResourceIsRuntimeDiagnostic(t *testing.T) {
	in := newInterp(t, `
@resource
struct Handle { fd: i32 }

func leak() {
	let h = Handle { fd: 1 }
}
`)
	_, err := in.CallFunction("leak", nil)
	require.NoError(t, err)

	var codes []string
	for _, d := range in.Diagnostics() {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, diag.EOwnNotConsumed)
}

func TestResourceConsumedViaReturnHasNoDiagnostic(t *testing.T) {
	in := newInterp(t, `
@resource
struct Handle { fd: i32 }

func make() -> Handle {
	let h = Handle { fd: 1 }
	h
}
`)
	_, err := in.CallFunction("make", nil)
	require.NoError(t, err)
	assert.Empty(t, in.Diagnostics())
}

func TestSpawnAndJoinReturnsComputedValue(t *testing.T) {
	in := newInterp(t, `
func compute() -> i32 {
	let handle = spawn {
		2 + 2
	}
	handle.join()
}
`)
	v, err := in.CallFunction("compute", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.I)
}

func TestEnsureBlockRunsOnNormalExit(t *testing.T) {
	in := newInterp(t, `
func with_cleanup() -> i32 {
	let mut total = 0
	{
		ensure {
			total = total + 100
		}
		total = total + 1
	}
	total
}
`)
	v, err := in.CallFunction("with_cleanup", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(101), v.I)
}
