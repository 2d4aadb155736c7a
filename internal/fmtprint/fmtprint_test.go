package fmtprint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/fmtprint"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func parseOK(t *testing.T, text string) *parser.Result {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return &res
}

func TestFileRendersFuncDecl(t *testing.T) {
	res := parseOK(t, `func add(x: i32, y: i32) -> i32 { x + y }`)
	out := fmtprint.File(res.File)
	assert.Equal(t, "func add(x: i32, y: i32) -> i32 {\n\tx + y\n}\n", out)
}

func TestFileRendersStructDecl(t *testing.T) {
	res := parseOK(t, `
struct Point {
	x: i32,
	y: i32,
}
`)
	out := fmtprint.File(res.File)
	assert.Equal(t, "struct Point {\n\tx: i32,\n\ty: i32,\n}\n", out)
}

func TestFileRenderingIsIdempotent(t *testing.T) {
	res := parseOK(t, `
import math.{Sqrt}

func hypot(a: f64, b: f64) -> f64 {
	let s = a * a + b * b
	Sqrt(s)
}
`)
	first := fmtprint.File(res.File)

	reparsed := parseOK(t, first)
	second := fmtprint.File(reparsed.File)

	assert.Equal(t, first, second)
}

func TestFileRendersEnumDecl(t *testing.T) {
	res := parseOK(t, `
enum Shape {
	Circle(f64),
	Square(f64),
	Point,
}
`)
	out := fmtprint.File(res.File)
	assert.Equal(t, "enum Shape {\n\tCircle(f64),\n\tSquare(f64),\n\tPoint,\n}\n", out)
}
