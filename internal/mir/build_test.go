package mir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/mir"
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

func TestBuildFileSimpleFunctionHasReturnTerminator(t *testing.T) {
	f := parseFile(t, `
func add(a: i32, b: i32) -> i32 {
	a + b
}
`)
	prog := mir.BuildFile(f, nil)
	fn, ok := prog.FuncByName("add")
	require.True(t, ok)
	require.NotEmpty(t, fn.Blocks)
	entry := fn.Blocks[fn.Entry]
	assert.Equal(t, mir.TermReturn, entry.Term.Kind)
	assert.NotNil(t, entry.Term.Value)
}

func TestBuildFileIfExprProducesBranchAndJoin(t *testing.T) {
	f := parseFile(t, `
func f(n: i32) -> i32 {
	if n > 0 {
		1
	} else {
		2
	}
}
`)
	prog := mir.BuildFile(f, nil)
	fn, ok := prog.FuncByName("f")
	require.True(t, ok)

	var sawBranch bool
	for _, bl := range fn.Blocks {
		if bl.Term.Kind == mir.TermBranch {
			sawBranch = true
		}
	}
	assert.True(t, sawBranch, "if-expr must lower to a TermBranch")
	assert.GreaterOrEqual(t, len(fn.Blocks), 4, "entry + then + else + join")
}

func TestBuildFileWhileLoopBackEdgeReachesHeader(t *testing.T) {
	f := parseFile(t, `
func f() -> i32 {
	let mut i = 0;
	while i < 10 {
		i = i + 1;
	}
	i
}
`)
	prog := mir.BuildFile(f, nil)
	fn, ok := prog.FuncByName("f")
	require.True(t, ok)

	var gotos, branches int
	for _, bl := range fn.Blocks {
		switch bl.Term.Kind {
		case mir.TermGoto:
			gotos++
		case mir.TermBranch:
			branches++
		}
	}
	assert.GreaterOrEqual(t, branches, 1)
	assert.GreaterOrEqual(t, gotos, 2, "loop body back-edge plus the pre-header goto")
}

func TestBuildFileMatchExprLowersToSwitch(t *testing.T) {
	f := parseFile(t, `
func f(n: i32) -> i32 {
	match n {
		0 => 1,
		_ => 2,
	}
}
`)
	prog := mir.BuildFile(f, nil)
	fn, ok := prog.FuncByName("f")
	require.True(t, ok)

	var sawSwitch bool
	for _, bl := range fn.Blocks {
		if bl.Term.Kind == mir.TermSwitch {
			sawSwitch = true
			assert.NotEmpty(t, bl.Term.Cases)
		}
	}
	assert.True(t, sawSwitch)
}

func TestBuildFileSpawnClosureCapturesOuterLocal(t *testing.T) {
	f := parseFile(t, `
func f(x: i32) -> i32 {
	spawn {
		x
	};
	0
}
`)
	prog := mir.BuildFile(f, nil)
	_, ok := prog.FuncByName("f")
	require.True(t, ok)

	var sawCreate, sawCapture bool
	for _, fn := range prog.Functions {
		for _, bl := range fn.Blocks {
			for _, st := range bl.Stmts {
				if st.Kind == mir.StClosureCreate {
					sawCreate = true
					assert.NotEmpty(t, st.Args, "closure capturing x must pass it in")
				}
				if st.Kind == mir.StLoadCapture {
					sawCapture = true
				}
			}
		}
	}
	assert.True(t, sawCreate)
	assert.True(t, sawCapture)
}

func TestBuildFileConsumesOwnershipCleanups(t *testing.T) {
	f := parseFile(t, `
func f() -> i32 {
	ensure {
		1
	}
	2
}
`)
	arena, errs := types.BuildArena(f.Decls)
	require.Empty(t, errs)
	own := ownership.Check(f, arena)

	prog := mir.BuildFile(f, own)
	fn, ok := prog.FuncByName("f")
	require.True(t, ok)

	var pushes, pops int
	for _, bl := range fn.Blocks {
		for _, st := range bl.Stmts {
			switch st.Kind {
			case mir.StEnsurePush:
				pushes++
			case mir.StEnsurePop:
				pops++
			}
		}
	}
	assert.Equal(t, 1, pushes)
	assert.Equal(t, 1, pops)
}
