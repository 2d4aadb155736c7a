package interp

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

// BenchResult is one `benchmark "name" { ... }` run's timing summary
// (§4.13: "min/max/mean/median", doubling-iteration warmup policy).
type BenchResult struct {
	Name       string
	Iterations int
	Min, Max   time.Duration
	Mean       time.Duration
	Median     time.Duration
}

// Human renders Mean using the teacher's byte/count-formatting library
// repurposed for duration-scale reporting (`rask benchmark`'s
// human-readable summary line).
func (r BenchResult) Human() string {
	return humanize.Comma(int64(r.Mean)) + "ns/iter (" + humanize.Comma(int64(r.Iterations)) + " iterations)"
}

const (
	benchWarmupIters = 3
	benchTargetTime  = 100 * time.Millisecond
	benchMaxIters    = 10_000
)

// RunBenchmark times bd.Body: §4.13's policy is 3 warmup iterations,
// then doubling the iteration count until total elapsed time reaches
// benchTargetTime or benchMaxIters is hit, whichever comes first.
func (in *Interp) RunBenchmark(bd *ast.BenchmarkDecl) (BenchResult, error) {
	run := func() (time.Duration, error) {
		start := time.Now()
		env := NewEnv(nil)
		rs := newResourceScope(nil)
		if _, _, err := in.evalBlock(env, rs, bd.Body); err != nil {
			return 0, err
		}
		return time.Since(start), nil
	}

	for i := 0; i < benchWarmupIters; i++ {
		if _, err := run(); err != nil {
			return BenchResult{}, err
		}
	}

	var samples []time.Duration
	iters := 1
	var total time.Duration
	for {
		for i := 0; i < iters-len(samples); i++ {
			d, err := run()
			if err != nil {
				return BenchResult{}, err
			}
			samples = append(samples, d)
			total += d
		}
		if total >= benchTargetTime || len(samples) >= benchMaxIters {
			break
		}
		iters *= 2
		if iters > benchMaxIters {
			iters = benchMaxIters
		}
	}

	return BenchResult{Name: bd.Name, Iterations: len(samples)}.summarize(samples), nil
}

func (r BenchResult) summarize(samples []time.Duration) BenchResult {
	if len(samples) == 0 {
		return r
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	r.Min = sorted[0]
	r.Max = sorted[len(sorted)-1]
	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	r.Mean = total / time.Duration(len(sorted))
	r.Median = sorted[len(sorted)/2]
	return r
}
