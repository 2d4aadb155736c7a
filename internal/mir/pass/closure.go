package pass

import "github.com/rask-lang/rask-sub001/internal/mir"

// ClosureEscape is §4.11 pass 1: decide whether each closure literal's
// environment can live on the stack (never leaves the block that
// created it) or must be heap-allocated (returned, or passed to
// another block), and for the stack-eligible case insert a
// ClosureDrop immediately after its last use within that block.
//
// An escaping (heap-allocated) closure gets no ClosureDrop from this
// pass on any path.
type ClosureEscape struct{}

func (*ClosureEscape) Name() string { return "closure-escape" }

func (p *ClosureEscape) Run(fn *mir.Function) int {
	changed := 0
	for _, bl := range fn.Blocks {
		for i := range bl.Stmts {
			st := &bl.Stmts[i]
			if st.Kind != mir.StClosureCreate {
				continue
			}
			escapes := usedOutsideBlock(fn, bl, st.Dst) || handedToSpawn(fn, st.Dst)
			if escapes != st.Escapes {
				st.Escapes = escapes
				changed++
			}
			if !escapes {
				insertDropAfterLastUse(bl, i, st.Dst)
			}
		}
	}
	return changed
}

func usedOutsideBlock(fn *mir.Function, owner *mir.Block, dst mir.LocalId) bool {
	if owner.Term.Value != nil && refsLocal(*owner.Term.Value, dst) {
		return true
	}
	for _, bl := range fn.Blocks {
		if bl == owner {
			continue
		}
		for _, st := range bl.Stmts {
			if stmtRefs(st, dst) {
				return true
			}
		}
		if bl.Term.Value != nil && refsLocal(*bl.Term.Value, dst) {
			return true
		}
	}
	return false
}

// handedToSpawn reports whether dst is ever passed as an argument to
// runtime.spawn: the scheduler retains the closure past the lifetime
// of the block that created it, so it always heap-escapes even when
// the StCall sits right next to its StClosureCreate.
func handedToSpawn(fn *mir.Function, dst mir.LocalId) bool {
	for _, bl := range fn.Blocks {
		for _, st := range bl.Stmts {
			if st.Kind == mir.StCall && st.Callee == "runtime.spawn" && stmtRefs(st, dst) {
				return true
			}
		}
	}
	return false
}

func stmtRefs(st mir.Statement, id mir.LocalId) bool {
	for _, a := range st.Args {
		if refsLocal(a, id) {
			return true
		}
	}
	return refsLocal(st.Target, id) || refsLocal(st.Value, id) || refsLocal(st.Pool, id) || refsLocal(st.Handle, id)
}

func refsLocal(op mir.Operand, id mir.LocalId) bool {
	return !op.IsConstant() && op.Local == id
}

// insertDropAfterLastUse splices a ClosureDrop right after dst's final
// reference within bl.Stmts[after+1:], or immediately (right after
// creation) if it is never referenced again in this block.
func insertDropAfterLastUse(bl *mir.Block, after int, dst mir.LocalId) {
	lastUse := after
	for i := after + 1; i < len(bl.Stmts); i++ {
		if stmtRefs(bl.Stmts[i], dst) {
			lastUse = i
		}
	}
	drop := mir.Statement{Kind: mir.StClosureDrop, Value: mir.UseLocal(dst)}
	insertAt := lastUse + 1
	bl.Stmts = append(bl.Stmts[:insertAt], append([]mir.Statement{drop}, bl.Stmts[insertAt:]...)...)
}
