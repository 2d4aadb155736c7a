// Package interp implements §4.13: a tree-walking interpreter over the
// typed AST, used directly by `rask run`/`rask test`/`rask benchmark`/
// `rask build`. No compiler phase calls it: a `comptime` block is
// evaluated only when the interpreter reaches it while running a
// function, as an ordinary block.
//
// The evaluator shape follows internal/ownership's dependency-free,
// single-struct-walks-the-tree design (arena + diag.Bag + a nested
// scope stack) rather than the teacher's provider-injected
// UniversalEvaluator — this interpreter has exactly one "language" to
// evaluate, so there is no provider seam to inject; what it does keep
// from the teacher is the same scope-chain-of-maps shape
// internal/ownership's checker and internal/types' Checker both use
// for their own nested environments.
package interp

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/types"
)

// sigKind distinguishes a non-local exit threaded back up through
// nested expression/statement evaluation.
type sigKind int

const (
	sigNone sigKind = iota
	sigReturn
	sigBreak
	sigContinue
	sigDeliver
)

// signal carries a non-local exit (return/break/continue/deliver) and
// its optional value (§4.10: "break/continue carry optional values")
// up through Eval/Exec without unwinding via panic.
type signal struct {
	kind  sigKind
	value Value
}

var noSignal = signal{kind: sigNone}

// Interp is one interpreter instance: the function/impl tables it was
// built from, the type arena for @resource/method lookups, and a
// diagnostics sink. Evaluating a closure inside a spawned task clones
// this struct (shallow: the tables are immutable after construction)
// so the clone can run concurrently without sharing mutable
// interpreter state, per §4.13 ("each spawned task clones the
// interpreter's function/type tables... into a fresh interpreter").
type Interp struct {
	funcs    map[string]*ast.FuncDecl
	arena    *types.Arena
	diags    *diag.Bag
	variants map[string]enumVariantInfo // bare variant name -> owning type/tag

	ensures []*ensureFrame // active ensure-cleanup stack, innermost last
}

// enumVariantInfo resolves a bare variant name used as a constructor
// call (e.g. `Circle(3)`) or bare value (e.g. a no-payload `Idle`) back
// to its declaring enum, mirroring how internal/codegen's name table
// resolves tagged-union constructors ahead of lowering.
type enumVariantInfo struct {
	TypeName   string
	Tag        int
	FieldNames []string
}

// ensureFrame is one active `ensure { ... } catch { ... }` registration,
// run in LIFO order when its owning scope exits (§4.10, §5).
type ensureFrame struct {
	body  *ast.BlockExpr
	catch *ast.BlockExpr
	env   *Env
}

// New builds an interpreter over file's declarations, resolving
// top-level functions and impl-block methods into one flat call table
// keyed the same way internal/mir names them ("<Type>.<method>" for
// methods, the bare name for free functions) so method dispatch and
// free-function dispatch share one lookup path.
func New(file *ast.File, arena *types.Arena) *Interp {
	in := &Interp{funcs: make(map[string]*ast.FuncDecl), arena: arena, diags: diag.NewBag(0), variants: make(map[string]enumVariantInfo)}
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			in.funcs[n.Name] = n
		case *ast.ImplDecl:
			typeName := typeExprName(n.TargetType)
			for _, m := range n.Methods {
				in.funcs[typeName+"."+m.Name] = m
			}
		case *ast.EnumDecl:
			for i, v := range n.Variants {
				names := make([]string, len(v.Fields))
				for j, f := range v.Fields {
					names[j] = f.Name
				}
				in.variants[v.Name] = enumVariantInfo{TypeName: n.Name, Tag: i, FieldNames: names}
			}
		}
	}
	return in
}

// Diagnostics returns every diagnostic accumulated so far (resource
// leaks, failed `check`s).
func (in *Interp) Diagnostics() []diag.Diagnostic { return in.diags.Items() }

// clone returns a fresh Interp sharing in's immutable function/type
// tables but with its own diagnostics bag and ensure stack, for a
// spawned OS thread or green task to run independently.
func (in *Interp) clone() *Interp {
	return &Interp{funcs: in.funcs, arena: in.arena, diags: diag.NewBag(0), variants: in.variants}
}

func typeExprName(te ast.TypeExpr) string {
	if n, ok := te.(*ast.NamedTypeExpr); ok {
		return n.Name
	}
	return ""
}

// CallFunction invokes a named top-level function (or "Type.method")
// with already-evaluated arguments, binding params positionally.
func (in *Interp) CallFunction(name string, args []Value) (Value, error) {
	fn, ok := in.funcs[name]
	if !ok {
		return Value{}, fmt.Errorf("interp: no such function %q", name)
	}
	return in.callFuncDecl(fn, args, nil)
}

func (in *Interp) callFuncDecl(fn *ast.FuncDecl, args []Value, captured *Env) (Value, error) {
	return in.callFuncDeclSelf(fn, nil, args, captured)
}

// callMethod invokes fn (a resolved "Type.method" impl) with self
// bound under the name "self", matching how method bodies reference
// their receiver in source.
func (in *Interp) callMethod(fn *ast.FuncDecl, self Value, args []Value) (Value, error) {
	return in.callFuncDeclSelf(fn, &self, args, nil)
}

func (in *Interp) callFuncDeclSelf(fn *ast.FuncDecl, self *Value, args []Value, captured *Env) (Value, error) {
	env := NewEnv(captured)
	if self != nil {
		env.Define("self", *self)
	}
	offset := 0
	for i, p := range fn.Params {
		if p.Mode == ast.ModeSelf {
			offset++
			continue
		}
		if i-offset < len(args) {
			env.Define(p.Name, args[i-offset])
		}
	}
	rs := newResourceScope(nil)
	v, sig, err := in.evalBlock(env, rs, fn.Body)
	if err != nil {
		return Value{}, err
	}
	if sig.kind == sigReturn {
		return sig.value, nil
	}
	return v, nil
}

// callClosure invokes a closure value, binding params positionally
// over its captured environment.
func (in *Interp) callClosure(cl *Closure, args []Value) (Value, error) {
	env := NewEnv(cl.Env)
	for i, p := range cl.Params {
		if i < len(args) {
			env.Define(p.Name, args[i])
		}
	}
	rs := newResourceScope(nil)
	switch body := cl.Body.(type) {
	case *ast.BlockExpr:
		v, sig, err := in.evalBlock(env, rs, body)
		if err != nil {
			return Value{}, err
		}
		if sig.kind == sigReturn {
			return sig.value, nil
		}
		return v, nil
	default:
		v, sig, err := in.eval(env, rs, cl.Body)
		if err != nil {
			return Value{}, err
		}
		if sig.kind == sigReturn {
			return sig.value, nil
		}
		return v, nil
	}
}

// evalBlock runs a block's statements in a fresh nested scope, checks
// unconsumed resources on the way out, and runs any ensure frames
// registered directly in it in LIFO order regardless of how the block
// is exited (normal fall-through, return, break/continue, or error).
func (in *Interp) evalBlock(env *Env, parentRS *resourceScope, b *ast.BlockExpr) (Value, signal, error) {
	blockEnv := NewEnv(env)
	rs := newResourceScope(parentRS)
	startEnsures := len(in.ensures)

	v, sig, err := in.execStmts(blockEnv, rs, b.Stmts, b.Tail)

	in.runEnsures(startEnsures)
	rs.checkUnconsumed(in.diags)
	return v, sig, err
}

func (in *Interp) execStmts(env *Env, rs *resourceScope, stmts []ast.Stmt, tail ast.Expr) (Value, signal, error) {
	for _, s := range stmts {
		sig, err := in.exec(env, rs, s)
		if err != nil || sig.kind != sigNone {
			return Unit(), sig, err
		}
	}
	if tail != nil {
		v, sig, err := in.eval(env, rs, tail)
		if err == nil && sig.kind == sigNone {
			in.maybeConsumeIdent(rs, tail)
		}
		return v, sig, err
	}
	return Unit(), noSignal, nil
}

// runEnsures pops every ensure frame registered since start and runs
// its body, innermost-registered first (§4.10/§5 LIFO cleanup order).
// A cleanup body's own diagnostics (e.g. an unconsumed resource inside
// it) still land in in.diags; an error raised inside a cleanup body
// is recorded as a diagnostic rather than aborting the remaining
// cleanups, since ensure blocks exist precisely to run even when the
// scope is unwinding from a failure.
func (in *Interp) runEnsures(start int) {
	for len(in.ensures) > start {
		last := len(in.ensures) - 1
		fr := in.ensures[last]
		in.ensures = in.ensures[:last]
		if _, _, err := in.evalBlock(fr.env, nil, fr.body); err != nil {
			in.diags.Add(diag.Diagnostic{Severity: diag.Error, Message: fmt.Sprintf("ensure block failed: %v", err)})
		}
	}
}
