package pass

import "github.com/rask-lang/rask-sub001/internal/mir"

// PoolCheckCoalesce is §4.11 pass 2: within a straight-line run of
// statements, a second PoolCheckedAccess against the same (pool,
// handle) pair as an earlier one in the same block re-proves nothing
// the generation check already proved, so it is rewritten to reuse the
// first access's result. Any call or store between the two accesses
// invalidates the cached result, since either could mutate the pool.
type PoolCheckCoalesce struct{}

func (*PoolCheckCoalesce) Name() string { return "pool-check-coalesce" }

type poolKey struct {
	pool, handle mir.LocalId
}

func (p *PoolCheckCoalesce) Run(fn *mir.Function) int {
	changed := 0
	for _, bl := range fn.Blocks {
		seen := make(map[poolKey]mir.LocalId)
		out := make([]mir.Statement, 0, len(bl.Stmts))
		for _, st := range bl.Stmts {
			if st.Kind == mir.StPoolCheckedAccess && !st.Pool.IsConstant() && !st.Handle.IsConstant() {
				k := poolKey{pool: st.Pool.Local, handle: st.Handle.Local}
				if prev, ok := seen[k]; ok {
					out = append(out, mir.Statement{
						Kind: mir.StAssign,
						Dst:  st.Dst,
						RV:   &mir.RValue{Op: mir.RvUse, Args: []mir.Operand{mir.UseLocal(prev)}},
						Loc:  st.Loc,
					})
					changed++
					continue
				}
				seen[k] = st.Dst
				out = append(out, st)
				continue
			}
			if invalidatesPoolCache(st) {
				seen = make(map[poolKey]mir.LocalId)
			}
			out = append(out, st)
		}
		bl.Stmts = out
	}
	return changed
}

// invalidatesPoolCache is conservative: any call or store could remove
// or mutate a pool slot, so it drops every cached access rather than
// trying to prove which pool(s) it actually touched.
func invalidatesPoolCache(st mir.Statement) bool {
	switch st.Kind {
	case mir.StCall, mir.StClosureCall, mir.StStore, mir.StArrayStore, mir.StResourceConsume:
		return true
	default:
		return false
	}
}
