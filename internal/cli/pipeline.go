// Package cli wires §6's external interfaces together: one pipeline
// that drives a source file through every phase up to (and, for
// interpreter-backed commands, past) ownership checking, and one
// dispatcher that turns the result into an exit code, generalized
// from the teacher's internal/cli package — its Runner orchestrating
// scan→manipulate→write and its dispatcher.go computing a process
// Output{Results, ExitCode, Error} from that — into a
// parse→resolve→typecheck→own→{mono→mir→codegen | interp} chain ending
// in the same Output shape.
package cli

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/codegen"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/interp"
	"github.com/rask-lang/rask-sub001/internal/layout"
	"github.com/rask-lang/rask-sub001/internal/mir"
	"github.com/rask-lang/rask-sub001/internal/mono"
	"github.com/rask-lang/rask-sub001/internal/ownership"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/resolve"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/types"
)

// Frontend is every artifact produced by running a file through the
// lexer/parser/resolver/checker/ownership phases, the shared prefix
// every subcommand other than `lex`/`parse` needs.
type Frontend struct {
	File     *ast.File
	Arena    *types.Arena
	Subst    *types.Subst
	Own      *ownership.Result
	Diags    []diag.Diagnostic
	LineMap  *source.LineMap
	SrcFile  *source.File
}

// RunFrontend drives text through every phase up to and including
// ownership checking, accumulating every phase's diagnostics rather
// than stopping at the first one (§7's "collect diagnostics per
// phase"). It stops early only when a phase cannot produce an AST/arena
// for the next one to consume at all (a parse or arena-build failure).
func RunFrontend(path, text string) (*Frontend, error) {
	sf := &source.File{Path: path, Text: text}
	fe := &Frontend{SrcFile: sf, LineMap: source.NewLineMap(text)}

	ids := &source.IDAllocator{}
	res := parser.ParseFile(sf, ids)
	fe.File = res.File
	fe.Diags = append(fe.Diags, res.Errors...)
	if fe.File == nil {
		return fe, fmt.Errorf("cli: %s failed to parse", path)
	}

	arena, errs := types.BuildArena(fe.File.Decls)
	for _, e := range errs {
		fe.Diags = append(fe.Diags, diag.Diagnostic{Severity: diag.Error, Message: e.Error()})
	}
	fe.Arena = arena
	if arena == nil {
		return fe, fmt.Errorf("cli: %s failed to build its type arena", path)
	}

	rres, rdiags := resolve.Resolve(fe.File, nil)
	fe.Diags = append(fe.Diags, rdiags...)
	_ = rres

	subst, tdiags := types.CheckFile(fe.File, arena)
	fe.Subst = subst
	fe.Diags = append(fe.Diags, tdiags...)

	own := ownership.Check(fe.File, arena)
	fe.Own = own
	fe.Diags = append(fe.Diags, own.Diagnostics...)

	return fe, nil
}

// HasErrors reports whether fe accumulated any Error-severity
// diagnostic across every phase that ran.
func (fe *Frontend) HasErrors() bool {
	for _, d := range fe.Diags {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Backend carries a file all the way through monomorphization, MIR
// construction, and native codegen (§4.9-§4.12) — the chain
// `rask mono`/`rask mir`/a hypothetical native-codegen subcommand need,
// as opposed to the interpreter-only chain `run`/`test`/`benchmark`/
// `build` use instead.
type Backend struct {
	MonoResult *mono.Result
	Program    *mir.Program
	Module     *codegen.Module
}

// RunBackend lowers fe (which must already have a non-nil Arena and
// Own result) through mono, MIR construction, and codegen.
func RunBackend(fe *Frontend) (*Backend, error) {
	be := &Backend{}
	be.MonoResult = mono.Run(fe.File, fe.Arena)
	be.Program = mir.BuildFile(fe.File, fe.Own)

	eng := layout.NewEngine(fe.Arena)
	mod, err := codegen.Build(be.Program, eng)
	if err != nil {
		return be, fmt.Errorf("cli: codegen: %w", err)
	}
	be.Module = mod
	return be, nil
}

// NewInterp builds an interpreter over fe's checked AST, ready for
// `run`/`test`/`benchmark`/`build.rk` execution.
func NewInterp(fe *Frontend) *interp.Interp {
	return interp.New(fe.File, fe.Arena)
}
