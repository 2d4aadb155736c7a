// Package pass implements §4.11's MIR optimization passes: each one is
// a self-contained rewrite over a *mir.Function, run in the fixed
// order Default lists.
//
// The named-stage-pipeline shape mirrors the teacher's own
// Pipeline.Apply (internal/core/pipeline.go): a fixed ordered sequence
// of steps, each one free to mutate its input in place and report what
// it changed, rather than a single monolithic rewrite.
package pass

import "github.com/rask-lang/rask-sub001/internal/mir"

// Pass rewrites fn in place and reports how many sites it changed, for
// diagnostics/benchmarking (§4.11 names exactly four passes; Run's
// per-pass totals let a caller log each one's yield without
// re-deriving it).
type Pass interface {
	Name() string
	Run(fn *mir.Function) int
}

// Run applies passes, in the order given, to every function in
// prog, returning a per-pass-name count of changed sites summed across
// every function.
func Run(prog *mir.Program, passes ...Pass) map[string]int {
	totals := make(map[string]int, len(passes))
	for _, p := range passes {
		for _, fn := range prog.Functions {
			totals[p.Name()] += p.Run(fn)
		}
	}
	return totals
}

// Default is the full §4.11 pipeline in its specified order: closure
// stack/heap classification, pool generation-check coalescing,
// self-concat-to-append rewriting, and yield-point state-machine
// lowering.
func Default() []Pass {
	return []Pass{
		&ClosureEscape{},
		&PoolCheckCoalesce{},
		&StringAppendRewrite{},
		&YieldPointLowering{},
	}
}
