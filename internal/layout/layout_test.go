package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/layout"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/types"
)

func arenaFrom(t *testing.T, text string) *types.Arena {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	arena, errs := types.BuildArena(res.File.Decls)
	require.Empty(t, errs)
	return arena
}

func namedOf(t *testing.T, arena *types.Arena, name string) *types.Named {
	t.Helper()
	td, ok := arena.Lookup(name)
	require.True(t, ok)
	return &types.Named{Def: td.Id, Name: name}
}

func TestScalarsAreAllEightByteCells(t *testing.T) {
	for _, k := range []types.Kind{types.I8, types.U8, types.I32, types.Bool, types.Char, types.F32, types.F64, types.I64} {
		l, err := layout.NewEngine(types.NewArena()).Of(&types.Primitive{Kind: k})
		require.NoError(t, err)
		assert.Equal(t, 8, l.Size)
		assert.Equal(t, 8, l.Align)
	}
}

func TestI128IsSixteenSixteen(t *testing.T) {
	l, err := layout.NewEngine(types.NewArena()).Of(&types.Primitive{Kind: types.I128})
	require.NoError(t, err)
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 16, l.Align)
}

func TestUnitAndNeverAreZeroOne(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(types.UnitType)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Size)
	assert.Equal(t, 1, l.Align)

	l, err = e.Of(types.NeverT)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Size)
	assert.Equal(t, 1, l.Align)
}

func TestStringAndSliceAreOpaquePointers(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(&types.StringType{})
	require.NoError(t, err)
	assert.Equal(t, 8, l.Size)
	assert.Equal(t, 8, l.Align)

	l, err = e.Of(&types.Slice{Elem: &types.Primitive{Kind: types.I32}})
	require.NoError(t, err)
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 8, l.Align)
}

func TestTupleOffsetsAndPadding(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(&types.Tuple{Elems: []types.Type{
		&types.Primitive{Kind: types.I32},
		&types.Primitive{Kind: types.I64},
	}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 8}, l.Offsets)
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 8, l.Align)
}

func TestArrayMultipliesElementSize(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(&types.Array{Elem: &types.Primitive{Kind: types.I32}, Len: 4})
	require.NoError(t, err)
	assert.Equal(t, 32, l.Size)
	assert.Equal(t, 8, l.Align)
}

func TestStructFieldsInSourceOrderNoReordering(t *testing.T) {
	arena := arenaFrom(t, `struct Point { x: i8, y: i128, z: i64 }`)
	e := layout.NewEngine(arena)
	l, err := e.Of(namedOf(t, arena, "Point"))
	require.NoError(t, err)
	// x at 0 (size 8), y padded up to 16-align at 16, z after y's 16 bytes at 32;
	// total (40) then pads up to the struct's own 16-byte alignment.
	assert.Equal(t, []int{0, 16, 32}, l.Offsets)
	assert.Equal(t, 48, l.Size)
	assert.Equal(t, 16, l.Align)
}

func TestUnionAllFieldsAtOffsetZero(t *testing.T) {
	arena := arenaFrom(t, `union Raw { small: i8, big: i128 }`)
	e := layout.NewEngine(arena)
	l, err := e.Of(namedOf(t, arena, "Raw"))
	require.NoError(t, err)
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 16, l.Align)
	assert.Empty(t, l.Offsets)
}

func TestEnumUnitVariantsAreTagOnly(t *testing.T) {
	arena := arenaFrom(t, `enum Color { Red, Green, Blue }`)
	e := layout.NewEngine(arena)
	l, err := e.Of(namedOf(t, arena, "Color"))
	require.NoError(t, err)
	assert.Equal(t, 1, l.TagSize)
	assert.Equal(t, 1, l.Size)
	assert.Equal(t, 1, l.Align)
}

func TestEnumWithPayloadPadsToPayloadAlignment(t *testing.T) {
	arena := arenaFrom(t, `
enum Shape {
	Unit,
	Circle { radius: i64 },
}
`)
	e := layout.NewEngine(arena)
	l, err := e.Of(namedOf(t, arena, "Shape"))
	require.NoError(t, err)
	assert.Equal(t, 1, l.TagSize)
	assert.Equal(t, 8, l.PayloadOffset)
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 8, l.Align)
}

func TestOptionOfOrdinaryTypeIsTagPlusPayload(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(&types.Generic{
		Base: &types.Named{Name: "Option"},
		Args: []types.Type{&types.Primitive{Kind: types.I32}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, l.TagSize)
	assert.Equal(t, 8, l.PayloadOffset)
	assert.Equal(t, 16, l.Size)
}

func TestOptionOfHandleUsesNicheOptimization(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(&types.Generic{
		Base: &types.Named{Name: "Option"},
		Args: []types.Type{&types.Named{Name: "Handle"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, l.Size)
	assert.Equal(t, 8, l.Align)
	assert.Equal(t, 0, l.TagSize, "niche-optimized Option<Handle> carries no separate tag")
}

func TestResultIsTagPlusMaxOfOkAndErr(t *testing.T) {
	e := layout.NewEngine(types.NewArena())
	l, err := e.Of(&types.Generic{
		Base: &types.Named{Name: "Result"},
		Args: []types.Type{&types.Primitive{Kind: types.I32}, &types.StringType{}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, l.TagSize)
	assert.Equal(t, 16, l.Size)
}

func TestGenericUserStructSubstitutesTypeParam(t *testing.T) {
	arena := arenaFrom(t, `struct Box<T> { value: T }`)
	e := layout.NewEngine(arena)
	td, ok := arena.Lookup("Box")
	require.True(t, ok)
	l, err := e.Of(&types.Generic{
		Base: &types.Named{Def: td.Id, Name: "Box"},
		Args: []types.Type{&types.Primitive{Kind: types.I64}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, l.Size)
	assert.Equal(t, 8, l.Align)
}

func TestCyclicStructWithoutIndirectionIsAnError(t *testing.T) {
	arena := arenaFrom(t, `struct Node { next: Node }`)
	e := layout.NewEngine(arena)
	_, err := e.Of(namedOf(t, arena, "Node"))
	assert.Error(t, err)
}

func TestTraitObjectIsFatPointer(t *testing.T) {
	arena := arenaFrom(t, `trait Shape { func area(self) -> i64 }`)
	e := layout.NewEngine(arena)
	l, err := e.Of(namedOf(t, arena, "Shape"))
	require.NoError(t, err)
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 8, l.Align)
}
