package cli

import (
	"github.com/rask-lang/rask-sub001/internal/diag"
)

// Output is what every subcommand produces before the CLI layer
// renders it, mirroring the teacher's dispatcher.go Output{Results,
// ExitCode, Error} shape. ExitCode follows §6 exactly: 0 success, 1
// user error (diagnostics present), 2 internal error (a Go error
// the pipeline itself could not recover from, not a language
// diagnostic).
type Output struct {
	Diagnostics []diag.Diagnostic
	Text        string // rendered success output (describe, explain, fmt --check diff, ...)
	ExitCode    int
	Error       error
}

// Dispatch runs fn and converts its result into the Output shared exit-
// code policy. fn returns diagnostics it collected (possibly none) and
// text to print on success; a non-nil error means an internal failure
// rather than a language diagnostic.
func Dispatch(fn func() ([]diag.Diagnostic, string, error)) Output {
	diags, text, err := fn()
	if err != nil {
		return Output{Diagnostics: diags, ExitCode: 2, Error: err}
	}
	if hasErrors(diags) {
		return Output{Diagnostics: diags, ExitCode: 1}
	}
	return Output{Diagnostics: diags, Text: text, ExitCode: 0}
}

func hasErrors(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}
