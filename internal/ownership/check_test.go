package ownership_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/ownership"
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

func codesOf(diags []diag.Diagnostic) []string {
	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestUseAfterMoveIsAnError(t *testing.T) {
	f := parseFile(t, `
func f() {
	let a = 1
	let b = a
	let c = a
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Contains(t, codesOf(res.Diagnostics), diag.EOwnUseAfterMove)
}

func TestSimpleMoveThenNoFurtherUseIsFine(t *testing.T) {
	f := parseFile(t, `
func f() {
	let a = 1
	let b = a
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Empty(t, res.Diagnostics)
}

func TestMovingIntoTakeParamThenUsingAgainIsAnError(t *testing.T) {
	f := parseFile(t, `
func consume(take a: i32) {}

func f() {
	let x = 1
	consume(x)
	let y = x
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Contains(t, codesOf(res.Diagnostics), diag.EOwnUseAfterMove)
}

func TestReadBorrowDoesNotMove(t *testing.T) {
	f := parseFile(t, `
func inspect(read a: i32) {}

func f() {
	let x = 1
	inspect(x)
	let y = x
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Empty(t, res.Diagnostics)
}

func TestDoubleMutBorrowInOneCallIsAConflict(t *testing.T) {
	f := parseFile(t, `
func use_mut(mut a: i32, mut b: i32) {}

func f() {
	let x = 1
	use_mut(x, x)
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Contains(t, codesOf(res.Diagnostics), diag.EOwnBorrowConflict)
}

func TestMutAndReadBorrowInOneCallIsAConflict(t *testing.T) {
	f := parseFile(t, `
func mixed(mut a: i32, read b: i32) {}

func f() {
	let x = 1
	mixed(x, x)
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Contains(t, codesOf(res.Diagnostics), diag.EOwnBorrowConflict)
}

func TestUnconsumedResourceAtScopeExitIsAnError(t *testing.T) {
	f := parseFile(t, `
@resource
struct Handle { fd: i32 }

func f() {
	let h = Handle { fd: 1 }
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Contains(t, codesOf(res.Diagnostics), diag.EOwnNotConsumed)
}

func TestResourceMovedOutViaReturnIsConsumed(t *testing.T) {
	f := parseFile(t, `
@resource
struct Handle { fd: i32 }

func make() -> Handle {
	let h = Handle { fd: 1 }
	h
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Empty(t, res.Diagnostics)
}

func TestWithAsAutoConsumesResource(t *testing.T) {
	f := parseFile(t, `
@resource
struct Handle { fd: i32 }

func make() -> Handle { Handle { fd: 1 } }

func f() {
	with make() as h {
		let y = 1
	}
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)

	res := ownership.Check(f, arena)
	assert.Empty(t, res.Diagnostics)
}
