package mono_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/mono"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/types"
)

func parseAndBuild(t *testing.T, text string) (*ast.File, *types.Arena) {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	arena, errs := types.BuildArena(res.File.Decls)
	require.Empty(t, errs)
	return res.File, arena
}

func TestReachableNamesIsSortedAndComplete(t *testing.T) {
	f, arena := parseAndBuild(t, `
func b() -> i32 { 1 }
func a() -> i32 { b() }

func main() {
	a()
}
`)
	res := mono.Run(f, arena)
	assert.Equal(t, []string{"a", "b", "main"}, res.ReachableNames())
}

func TestMainIsReachableAndNonGenericCalleesAreMarked(t *testing.T) {
	f, arena := parseAndBuild(t, `
func helper() -> i32 { 1 }

func main() {
	helper()
}
`)
	res := mono.Run(f, arena)
	assert.Empty(t, res.Errors)
	assert.True(t, res.Reachable["main"])
	assert.True(t, res.Reachable["helper"])
}

func TestUnreachableFunctionIsNotMarked(t *testing.T) {
	f, arena := parseAndBuild(t, `
func dead() -> i32 { 1 }

func main() {}
`)
	res := mono.Run(f, arena)
	assert.True(t, res.Reachable["main"])
	assert.False(t, res.Reachable["dead"])
}

func TestEntryAttributeFunctionIsAnEntryPoint(t *testing.T) {
	f, arena := parseAndBuild(t, `
@entry
func start() {
	let x = 1
}
`)
	res := mono.Run(f, arena)
	assert.True(t, res.Reachable["start"])
}

func TestTestDeclBodyIsWalkedForReachability(t *testing.T) {
	f, arena := parseAndBuild(t, `
func helper() -> i32 { 1 }

test "calls helper" {
	helper()
}
`)
	res := mono.Run(f, arena)
	assert.True(t, res.Reachable["helper"])
}

func TestGenericFunctionCallWithLiteralArgSpecializesOnInt(t *testing.T) {
	f, arena := parseAndBuild(t, `
func identity<T>(x: T) -> T { x }

func main() {
	identity(42)
}
`)
	res := mono.Run(f, arena)
	require.Empty(t, res.Errors)
	require.Len(t, res.FuncSpecs, 1)
	assert.Equal(t, "identity", res.FuncSpecs[0].Name)
	assert.Equal(t, "i64", res.FuncSpecs[0].Args[0].String())
}

func TestGenericFunctionCalledAtTwoArgTypesProducesTwoSpecializations(t *testing.T) {
	f, arena := parseAndBuild(t, `
func identity<T>(x: T) -> T { x }

func main() {
	identity(42)
	identity("hi")
}
`)
	res := mono.Run(f, arena)
	require.Empty(t, res.Errors)
	require.Len(t, res.FuncSpecs, 2)
}

func TestSameArgTypeReusesOneSpecialization(t *testing.T) {
	f, arena := parseAndBuild(t, `
func identity<T>(x: T) -> T { x }

func main() {
	identity(1)
	identity(2)
}
`)
	res := mono.Run(f, arena)
	require.Empty(t, res.Errors)
	require.Len(t, res.FuncSpecs, 1)
}

func TestUninferableGenericCallIsReportedAsAnError(t *testing.T) {
	f, arena := parseAndBuild(t, `
func identity<T>(x: T) -> T { x }

func wrap(x: i32) -> i32 {
	identity(x)
}

func main() {
	wrap(1)
}
`)
	res := mono.Run(f, arena)
	assert.NotEmpty(t, res.Errors)
}

func TestGenericStructInstantiationIsSpecialized(t *testing.T) {
	f, arena := parseAndBuild(t, `
struct Box<T> { value: T }

func main() {
	let b: Box<i32> = Box { value: 1 }
}
`)
	res := mono.Run(f, arena)
	require.Empty(t, res.Errors)
	require.Len(t, res.TypeSpecs, 1)
	assert.Equal(t, "Box", res.TypeSpecs[0].Name)
	assert.Equal(t, "i32", res.TypeSpecs[0].Def.Fields[0].Type.String())
}

func TestMethodCallWithExplicitTypeArgsSpecializes(t *testing.T) {
	f, arena := parseAndBuild(t, `
struct Container { n: i32 }

impl Container {
	func get<T>(self) -> T { panic("stub") }
}

func main() {
	let c = Container { n: 1 }
	c.get::<i32>()
}
`)
	res := mono.Run(f, arena)
	require.Empty(t, res.Errors)
	require.Len(t, res.FuncSpecs, 1)
	assert.Equal(t, "get", res.FuncSpecs[0].Name)
}
