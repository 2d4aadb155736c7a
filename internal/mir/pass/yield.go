package pass

import "github.com/rask-lang/rask-sub001/internal/mir"

// yieldPointCallees names the stub methods (§4.6's stdlib registry)
// that YieldPointLowering treats as yield points. The callee names are
// matched in every function the pass runs over, spawned closure or not.
var yieldPointCallees = map[string]bool{
	"method.accept": true,
	"method.read":   true,
	"method.recv":   true,
	"method.send":   true,
}

// YieldPointLowering is §4.11 pass 4: in a function containing one or
// more yield-point calls, every such call is made the last statement
// of its block by moving the statements after it into a new block
// reached by a plain Goto, and the blocks that end in a yield point are
// recorded in a StateMachine attached to the function. pass.Run applies
// it to every function, not only spawned closures. It builds no poll
// function, no state struct and no hand-off to a scheduler.
type YieldPointLowering struct{}

func (*YieldPointLowering) Name() string { return "yield-point-lowering" }

// StateMachine is the artifact this pass stores in a qualifying
// function's mir.Function.StateMachine field.
type StateMachine struct {
	FuncName    string
	YieldBlocks []mir.BlockId // blocks whose last statement is a yield-point call
}

func (p *YieldPointLowering) Run(fn *mir.Function) int {
	var yieldBlocks []mir.BlockId
	// Indexing (rather than ranging) also visits the blocks splitAfter
	// appends, so a later yield point moved into one is found there.
	for bi := 0; bi < len(fn.Blocks); bi++ {
		bl := fn.Blocks[bi]
		for i, st := range bl.Stmts {
			if st.Kind != mir.StCall || !yieldPointCallees[st.Callee] {
				continue
			}
			// A yield point must be the last statement before this
			// block's terminator so the scheduler can resume cleanly
			// at the following block; split the block if it isn't.
			if i != len(bl.Stmts)-1 {
				p.splitAfter(fn, bl, i)
			}
			yieldBlocks = append(yieldBlocks, bl.Id)
			break
		}
	}
	if len(yieldBlocks) > 0 {
		fn.StateMachine = &StateMachine{FuncName: fn.Name, YieldBlocks: yieldBlocks}
	}
	return len(yieldBlocks)
}

// splitAfter moves every statement following index i in bl into a new
// block reached by a Goto, so that the yield-point call at i becomes
// bl's final statement.
func (p *YieldPointLowering) splitAfter(fn *mir.Function, bl *mir.Block, i int) {
	rest := append([]mir.Statement{}, bl.Stmts[i+1:]...)
	tail := &mir.Block{Id: mir.BlockId(len(fn.Blocks)), Stmts: rest, Term: bl.Term, Done: bl.Done}
	fn.Blocks = append(fn.Blocks, tail)
	bl.Stmts = bl.Stmts[:i+1]
	bl.Term = mir.Terminator{Kind: mir.TermGoto, Target: tail.Id}
	bl.Done = true
}
