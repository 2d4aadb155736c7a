package interp

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
)

// TestResult is one `test "name" { ... }` run's outcome (§7: "assert
// stops the test, check records and continues").
type TestResult struct {
	Name    string
	Passed  bool
	Failure error
	Checks  []diag.Diagnostic
}

// RunTest executes td's body in a fresh interpreter clone so one
// failing test's diagnostics never leak into another's.
func (in *Interp) RunTest(td *ast.TestDecl) TestResult {
	clone := in.clone()
	env := NewEnv(nil)
	rs := newResourceScope(nil)
	_, _, err := clone.evalBlock(env, rs, td.Body)
	return TestResult{Name: td.Name, Passed: err == nil, Failure: err, Checks: clone.Diagnostics()}
}

// RunAllTests runs every TestDecl in file and returns one TestResult
// per test, in declaration order.
func (in *Interp) RunAllTests(file *ast.File) []TestResult {
	var out []TestResult
	for _, d := range file.Decls {
		if td, ok := d.(*ast.TestDecl); ok {
			out = append(out, in.RunTest(td))
		}
	}
	return out
}

// RunAllBenchmarks runs every BenchmarkDecl in file.
func (in *Interp) RunAllBenchmarks(file *ast.File) ([]BenchResult, error) {
	var out []BenchResult
	for _, d := range file.Decls {
		if bd, ok := d.(*ast.BenchmarkDecl); ok {
			r, err := in.RunBenchmark(bd)
			if err != nil {
				return out, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}
