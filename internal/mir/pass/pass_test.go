package pass_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/mir"
	"github.com/rask-lang/rask-sub001/internal/mir/pass"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func parseFile(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func TestClosureEscapeMarksSpawnedClosureAsEscaping(t *testing.T) {
	f := parseFile(t, `
func make_adder(x: i32) -> i32 {
	spawn {
		x
	};
	0
}
`)
	prog := mir.BuildFile(f, nil)
	pass.Run(prog, &pass.ClosureEscape{})

	var found bool
	for _, fn := range prog.Functions {
		for _, bl := range fn.Blocks {
			for _, st := range bl.Stmts {
				if st.Kind == mir.StClosureCreate {
					found = true
					assert.True(t, st.Escapes, "a spawned closure is handed to runtime.spawn, so it escapes its creating block")
				}
			}
		}
	}
	assert.True(t, found)
}

func TestPoolCheckCoalesceFusesRepeatedAccess(t *testing.T) {
	fn := &mir.Function{Name: "f"}
	bl := &mir.Block{Id: 0}
	pool := mir.UseLocal(0)
	handle := mir.UseLocal(1)
	bl.Stmts = []mir.Statement{
		{Kind: mir.StPoolCheckedAccess, Dst: 2, Pool: pool, Handle: handle},
		{Kind: mir.StPoolCheckedAccess, Dst: 3, Pool: pool, Handle: handle},
	}
	bl.Term = mir.Terminator{Kind: mir.TermReturn}
	fn.Blocks = []*mir.Block{bl}

	p := &pass.PoolCheckCoalesce{}
	changed := p.Run(fn)
	require.Equal(t, 1, changed)

	require.Len(t, bl.Stmts, 2)
	assert.Equal(t, mir.StAssign, bl.Stmts[1].Kind)
	assert.Equal(t, mir.LocalId(2), bl.Stmts[1].RV.Args[0].Local)
}

func TestStringAppendRewriteFusesSelfConcatReassign(t *testing.T) {
	fn := &mir.Function{Name: "f"}
	bl := &mir.Block{Id: 0}
	self := mir.UseLocal(0)
	other := mir.UseLocal(1)
	bl.Stmts = []mir.Statement{
		{Kind: mir.StCall, Dst: 2, Callee: "method.concat", Args: []mir.Operand{self, other}},
		{Kind: mir.StAssign, Dst: 0, RV: &mir.RValue{Op: mir.RvUse, Args: []mir.Operand{mir.UseLocal(2)}}},
	}
	bl.Term = mir.Terminator{Kind: mir.TermReturn}
	fn.Blocks = []*mir.Block{bl}

	p := &pass.StringAppendRewrite{}
	changed := p.Run(fn)
	require.Equal(t, 1, changed)

	require.Len(t, bl.Stmts, 1)
	assert.Equal(t, "string_append", bl.Stmts[0].Callee)
	assert.Equal(t, mir.LocalId(0), bl.Stmts[0].Dst)
}

func TestYieldPointLoweringSplitsBlockAndRecordsStateMachine(t *testing.T) {
	fn := &mir.Function{Name: "f"}
	bl := &mir.Block{Id: 0}
	bl.Stmts = []mir.Statement{
		{Kind: mir.StCall, Dst: 1, Callee: "method.accept", Args: []mir.Operand{mir.UseLocal(0)}},
		{Kind: mir.StCall, Dst: 2, Callee: "method.len", Args: []mir.Operand{mir.UseLocal(1)}},
	}
	bl.Term = mir.Terminator{Kind: mir.TermReturn, Value: func() *mir.Operand { o := mir.UseLocal(2); return &o }()}
	fn.Blocks = []*mir.Block{bl}

	p := &pass.YieldPointLowering{}
	changed := p.Run(fn)
	require.Equal(t, 1, changed)

	require.Len(t, bl.Stmts, 1, "the yield-point call must end up last in its block")
	assert.Equal(t, mir.TermGoto, bl.Term.Kind)
	require.Len(t, fn.Blocks, 2)
	assert.Equal(t, mir.TermReturn, fn.Blocks[1].Term.Kind)

	sm, ok := fn.StateMachine.(*pass.StateMachine)
	require.True(t, ok)
	assert.Contains(t, sm.YieldBlocks, mir.BlockId(0))
}
