package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/fmtprint"
	"github.com/rask-lang/rask-sub001/internal/interp"
	"github.com/rask-lang/rask-sub001/internal/lexer"
	"github.com/rask-lang/rask-sub001/internal/lint"
	"github.com/rask-lang/rask-sub001/internal/mir"
	"github.com/rask-lang/rask-sub001/internal/mono"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

// Lex runs only the lexer (§6's `rask lex <file>`), printing one line
// per token.
func Lex(path, text string) ([]diag.Diagnostic, string, error) {
	res := lexer.New(&source.File{Path: path, Text: text}).Scan()
	var sb strings.Builder
	for _, tok := range res.Tokens {
		fmt.Fprintf(&sb, "%s %q [%d,%d)\n", tok.Kind, tok.Text, tok.Span.Start, tok.Span.End)
	}
	return res.Errors, sb.String(), nil
}

// Fmt canonically re-renders file (`rask fmt <file> [--check]`). With
// check set, it never rewrites anything: it reports a unified diff
// between text and the canonical rendering as an Error diagnostic when
// the two differ (the exit-code-1 path `--check` callers script against
// in CI), and returns clean otherwise. Without check, the canonical
// rendering is returned as Text for the caller to write back to path.
func Fmt(path, text string, check bool) ([]diag.Diagnostic, string, error) {
	res := parser.ParseFile(&source.File{Path: path, Text: text}, &source.IDAllocator{})
	if res.File == nil {
		return res.Errors, "", fmt.Errorf("cli: %s failed to parse", path)
	}
	if len(res.Errors) > 0 {
		return res.Errors, "", nil
	}

	out := fmtprint.File(res.File)
	if !check {
		return nil, out, nil
	}
	if out == text {
		return nil, "", nil
	}
	diffText, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(text),
		B:        difflib.SplitLines(out),
		FromFile: path,
		ToFile:   path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return nil, "", fmt.Errorf("cli: fmt: %w", err)
	}
	return []diag.Diagnostic{{
		Severity: diag.Error,
		Code:     "fmt.not-formatted",
		Message:  fmt.Sprintf("%s is not formatted", path),
	}}, diffText, nil
}

// Parse runs the lexer and parser (`rask parse <file>`), printing the
// top-level declaration kinds and names in source order.
func Parse(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	return filterPhase(fe.Diags, diag.EParseUnexpected, diag.EParseMissingDelim, diag.ELexUnexpectedChar, diag.ELexInvalidEscape, diag.ELexInvalidNumber, diag.ELexUnterminated), describeDecls(fe.File), nil
}

// Resolve runs through name resolution (`rask resolve <file>`).
func Resolve(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	return filterPhase(fe.Diags, diag.EResolveUndefined, diag.EResolveDuplicate, diag.EResolveAmbiguous, diag.EResolvePrivate), "", nil
}

// Typecheck runs through the type checker (`rask typecheck <file>`).
func Typecheck(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	return filterPhase(fe.Diags, diag.ETypeMismatch, diag.ETypeArity, diag.ETypeNotCallable, diag.ETypeNoSuchMember, diag.ETypeInfiniteType, diag.ETypeCannotInfer), "", nil
}

// Ownership runs the full frontend including ownership checking
// (`rask ownership <file>`).
func Ownership(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	return fe.Diags, "", err
}

// Mono runs the frontend then monomorphization (`rask mono <file>`),
// reporting how many call-site specializations were produced.
func Mono(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	mr := mono.Run(fe.File, fe.Arena)
	return fe.Diags, fmt.Sprintf("%d function(s) reachable, %d specialization(s)\n", len(mr.Reachable), len(mr.FuncSpecs)), nil
}

// Mir runs the frontend through MIR construction (`rask mir <file>`),
// reporting per-function block counts.
func Mir(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	prog := mir.BuildFile(fe.File, fe.Own)
	var sb strings.Builder
	for _, fn := range prog.Functions {
		fmt.Fprintf(&sb, "%s: %d block(s)\n", fn.Name, len(fn.Blocks))
	}
	return fe.Diags, sb.String(), nil
}

// Comptime runs the frontend over the file (`rask comptime <file>`) and
// returns its diagnostics. It evaluates no comptime block, and its
// output text is always empty.
func Comptime(path, text string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	return fe.Diags, "", nil
}

// Run executes file's `main` function (`rask run <file> [-- args]`).
func Run(path, text string, args []string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	in := NewInterp(fe)
	argv := make([]interp.Value, len(args))
	for i, a := range args {
		argv[i] = interp.Str(a)
	}
	v, runErr := in.CallFunction("main", argv)
	diags := append(fe.Diags, in.Diagnostics()...)
	if runErr != nil {
		return diags, "", fmt.Errorf("cli: run: %w", runErr)
	}
	return diags, v.String(), nil
}

// Test runs every `test "name" { ... }` block in the file matching
// namePattern, or all of them when namePattern is empty
// (`rask test <file> [-f pat]`).
func Test(path, text, namePattern string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	in := NewInterp(fe)
	results := in.RunAllTests(fe.File)

	var sb strings.Builder
	passed, failed := 0, 0
	for _, r := range results {
		if namePattern != "" && !strings.Contains(r.Name, namePattern) {
			continue
		}
		if r.Passed {
			passed++
			fmt.Fprintf(&sb, "ok   %s\n", r.Name)
		} else {
			failed++
			fmt.Fprintf(&sb, "FAIL %s: %v\n", r.Name, r.Failure)
		}
	}
	fmt.Fprintf(&sb, "%d passed, %d failed\n", passed, failed)

	diags := fe.Diags
	if failed > 0 {
		diags = append(diags, diag.Diagnostic{Severity: diag.Error, Message: fmt.Sprintf("%d test(s) failed", failed)})
	}
	return diags, sb.String(), nil
}

// Benchmark runs every `benchmark "name" { ... }` block matching
// namePattern (`rask benchmark <file> [-f pat]`).
func Benchmark(path, text, namePattern string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	in := NewInterp(fe)
	results, benchErr := in.RunAllBenchmarks(fe.File)
	if benchErr != nil {
		return fe.Diags, "", fmt.Errorf("cli: benchmark: %w", benchErr)
	}

	var sb strings.Builder
	for _, r := range results {
		if namePattern != "" && !strings.Contains(r.Name, namePattern) {
			continue
		}
		fmt.Fprintf(&sb, "%s\t%s (%d iterations)\n", r.Name, r.Human(), r.Iterations)
	}
	return fe.Diags, sb.String(), nil
}

// TestSpecs runs every test block in files (path -> source text, as
// `rask test-specs [dir]` discovers them under dir), aggregating
// pass/fail counts across files.
func TestSpecs(files map[string]string) ([]diag.Diagnostic, string, error) {
	var allDiags []diag.Diagnostic
	var sb strings.Builder
	totalPassed, totalFailed := 0, 0
	for path, text := range files {
		diags, out, err := Test(path, text, "")
		if err != nil {
			return allDiags, sb.String(), err
		}
		allDiags = append(allDiags, diags...)
		fmt.Fprintf(&sb, "-- %s --\n%s", path, out)
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "ok   ") {
				totalPassed++
			} else if strings.HasPrefix(line, "FAIL ") {
				totalFailed++
			}
		}
	}
	fmt.Fprintf(&sb, "%d file(s): %d passed, %d failed\n", len(files), totalPassed, totalFailed)
	return allDiags, sb.String(), nil
}

// Build runs a `build.rk` manifest's `func build(ctx: BuildContext)`
// (`rask build [dir]`), per §6.
func Build(dir, manifestText string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(dir+"/build.rk", manifestText)
	if err != nil {
		return fe.Diags, "", err
	}
	if fe.HasErrors() {
		return fe.Diags, "", nil
	}
	in := NewInterp(fe)
	bc, buildErr := in.RunBuildScript(dir)
	if buildErr != nil {
		return fe.Diags, "", fmt.Errorf("cli: build: %w", buildErr)
	}
	var sb strings.Builder
	for _, w := range bc.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", w)
	}
	fmt.Fprintf(&sb, "%d dependency(ies), %d link librar(ies), %d written source(s)\n",
		len(bc.Dependencies), len(bc.LinkLibraries), len(bc.WrittenSources))
	return fe.Diags, sb.String(), nil
}

// Lint runs the lint rule registry over file (`rask lint <file>
// [--rule pat] [--exclude pat]`).
func Lint(path, text string, includePatterns, excludePatterns []string) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	lintDiags := lint.DefaultRegistry.Run(fe.File, includePatterns, excludePatterns)
	return append(fe.Diags, lintDiags...), "", nil
}

// Describe runs the full frontend and prints a per-declaration summary
// (`rask describe <file> [--all]`); with all set, every phase's
// diagnostics are included (rather than only the first failing one)
// and the summary is prefixed with the source's humanized byte size,
// per §4.13a's "describe's byte-size layout summaries".
func Describe(path, text string, all bool) ([]diag.Diagnostic, string, error) {
	fe, err := RunFrontend(path, text)
	if err != nil {
		return fe.Diags, "", err
	}
	diags := fe.Diags
	out := describeDecls(fe.File)
	if all {
		out = fmt.Sprintf("%s (%s)\n%s", path, humanize.Bytes(uint64(len(text))), out)
	} else {
		diags = filterFirstError(diags)
	}
	return diags, out, nil
}

// Explain looks up code in the stable error-code table
// (`rask explain <code>`).
func Explain(code string) (string, bool) {
	msg, ok := diag.ExplainTable[code]
	return msg, ok
}

func describeDecls(f *ast.File) string {
	var sb strings.Builder
	for _, d := range f.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			fmt.Fprintf(&sb, "func %s\n", n.Name)
		case *ast.StructDecl:
			fmt.Fprintf(&sb, "struct %s\n", n.Name)
		case *ast.EnumDecl:
			fmt.Fprintf(&sb, "enum %s\n", n.Name)
		case *ast.ImportDecl:
			fmt.Fprintf(&sb, "import %s\n", n.Package)
		case *ast.TestDecl:
			fmt.Fprintf(&sb, "test %q\n", n.Name)
		case *ast.BenchmarkDecl:
			fmt.Fprintf(&sb, "benchmark %q\n", n.Name)
		}
	}
	return sb.String()
}

func filterPhase(diags []diag.Diagnostic, codes ...string) []diag.Diagnostic {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	var out []diag.Diagnostic
	for _, d := range diags {
		if d.Code == "" || set[d.Code] {
			out = append(out, d)
		}
	}
	return out
}

func filterFirstError(diags []diag.Diagnostic) []diag.Diagnostic {
	for i, d := range diags {
		if d.Severity == diag.Error {
			return diags[:i+1]
		}
	}
	return diags
}
