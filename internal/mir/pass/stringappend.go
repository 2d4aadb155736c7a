package pass

import "github.com/rask-lang/rask-sub001/internal/mir"

// StringAppendRewrite is §4.11 pass 3: `s = s.concat(other)` — a
// string method call immediately reassigned back onto its own
// receiver — reallocates a whole new buffer when the runtime could
// instead grow the receiver's buffer in place. This pass recognizes
// exactly that call-then-self-reassign shape and rewrites it to a
// single in-place `string_append` call, eliminating both the
// intermediate temporary and the reassignment.
type StringAppendRewrite struct{}

func (*StringAppendRewrite) Name() string { return "string-append-rewrite" }

func (p *StringAppendRewrite) Run(fn *mir.Function) int {
	changed := 0
	for _, bl := range fn.Blocks {
		out := make([]mir.Statement, 0, len(bl.Stmts))
		for i := 0; i < len(bl.Stmts); i++ {
			st := bl.Stmts[i]
			if rewritten, ok := p.tryFuse(bl.Stmts, i); ok {
				out = append(out, rewritten)
				i++ // consume the following reassignment too
				changed++
				continue
			}
			out = append(out, st)
		}
		bl.Stmts = out
	}
	return changed
}

func (p *StringAppendRewrite) tryFuse(stmts []mir.Statement, i int) (mir.Statement, bool) {
	call := stmts[i]
	if call.Kind != mir.StCall || call.Callee != "method.concat" || len(call.Args) != 2 {
		return mir.Statement{}, false
	}
	if i+1 >= len(stmts) {
		return mir.Statement{}, false
	}
	next := stmts[i+1]
	recv := call.Args[0]
	if next.Kind != mir.StAssign || recv.IsConstant() || next.Dst != recv.Local {
		return mir.Statement{}, false
	}
	if next.RV == nil || next.RV.Op != mir.RvUse || len(next.RV.Args) != 1 {
		return mir.Statement{}, false
	}
	if src := next.RV.Args[0]; src.IsConstant() || src.Local != call.Dst {
		return mir.Statement{}, false
	}
	return mir.Statement{
		Kind:   mir.StCall,
		Dst:    recv.Local,
		Callee: "string_append",
		Args:   call.Args,
		Loc:    call.Loc,
	}, true
}
