// Package mono implements §4.9: starting from a program's entry
// points, walk the reachable call graph and synthesize one concrete
// copy of every generic function and generic struct/enum instantiation
// it reaches, keyed by (name, canonical type arguments) so repeated
// instantiations at the same arguments share one copy.
//
// The worklist-over-a-reachability-frontier shape generalizes the
// teacher's staged `Pipeline.Apply` (`internal/core/pipeline.go`):
// there a fixed sequence of named steps processes one input through to
// a result; here an open-ended worklist of (site, args) pairs feeds
// itself as new generic references are discovered, but the same
// "cache what's already done, process what's new" discipline applies.
package mono

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/types"
)

// maxInstantiationDepth bounds the specialization worklist: a generic
// function or type that keeps requesting new, ever-different argument
// sets (an infinite type, or runaway recursive generic instantiation)
// is a monomorphization error, not a hang.
const maxInstantiationDepth = 256

// FuncSpecialization is one concrete copy of a generic function.
type FuncSpecialization struct {
	Name string
	Args []types.Type
	Decl *ast.FuncDecl
}

// Key is this specialization's cache key, `name<arg1,arg2>`.
func (s FuncSpecialization) Key() string { return canonicalKey(s.Name, s.Args) }

// TypeSpecialization is one concrete copy of a generic struct/enum: a
// TypeDef whose field/variant types have had the type parameters
// substituted with concrete arguments.
type TypeSpecialization struct {
	Name string
	Args []types.Type
	Def  *types.TypeDef
}

// Key is this specialization's cache key, `name<arg1,arg2>`.
func (s TypeSpecialization) Key() string { return canonicalKey(s.Name, s.Args) }

// Result is the monomorphizer's output: everything reachable from the
// program's entry points.
type Result struct {
	// Reachable holds the name of every non-generic function/method
	// reached from an entry point (transitively), including a
	// non-generic entry-point function itself.
	Reachable map[string]bool
	FuncSpecs []FuncSpecialization
	TypeSpecs []TypeSpecialization
	Errors    []error
}

// ReachableNames returns every reachable function/method name, sorted,
// for deterministic CLI/debug reporting (the underlying set is built
// during a single-pass worklist walk and carries no ordering of its
// own).
func (r *Result) ReachableNames() []string {
	names := maps.Keys(r.Reachable)
	sort.Strings(names)
	return names
}

// Monomorphizer walks the reachable call graph of a resolved,
// type-checked program and specializes every generic reference it
// finds.
type Monomorphizer struct {
	arena       *types.Arena
	funcsByName map[string]*ast.FuncDecl

	reachable map[string]bool
	funcCache map[string]*FuncSpecialization
	typeCache map[string]*TypeSpecialization
	funcOrder []string
	typeOrder []string

	specCount   int
	depthErrSet bool
	errs        []error
}

// Run monomorphizes file starting from its entry points (§4.9: main,
// tests, @entry).
func Run(file *ast.File, arena *types.Arena) *Result {
	m := &Monomorphizer{
		arena:       arena,
		funcsByName: make(map[string]*ast.FuncDecl),
		reachable:   make(map[string]bool),
		funcCache:   make(map[string]*FuncSpecialization),
		typeCache:   make(map[string]*TypeSpecialization),
	}

	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			m.funcsByName[n.Name] = n
		case *ast.ImplDecl:
			for _, fn := range n.Methods {
				m.funcsByName[fn.Name] = fn
			}
		}
	}

	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			if n.Name == "main" || hasEntryAttr(n.Attrs) {
				m.visitFunc(n, nil)
			}
		case *ast.TestDecl:
			m.visitBlock(n.Body, nil)
		case *ast.BenchmarkDecl:
			m.visitBlock(n.Body, nil)
		}
	}

	funcSpecs := make([]FuncSpecialization, len(m.funcOrder))
	for i, k := range m.funcOrder {
		funcSpecs[i] = *m.funcCache[k]
	}
	typeSpecs := make([]TypeSpecialization, len(m.typeOrder))
	for i, k := range m.typeOrder {
		typeSpecs[i] = *m.typeCache[k]
	}

	return &Result{Reachable: m.reachable, FuncSpecs: funcSpecs, TypeSpecs: typeSpecs, Errors: m.errs}
}

func hasEntryAttr(attrs []ast.Attribute) bool {
	for _, a := range attrs {
		if a.Name == "entry" {
			return true
		}
	}
	return false
}

// overBudget reports whether the specialization count has exceeded
// maxInstantiationDepth, recording the error exactly once. Every new
// (not-yet-cached) specialization request — function or type — consumes
// one unit of budget before this engine recurses into its body, so a
// generic reference that keeps minting distinct argument sets (an
// infinite type, or runaway recursive instantiation) is bounded instead
// of recursing the host Go stack into the ground.
func (m *Monomorphizer) overBudget() bool {
	if m.specCount <= maxInstantiationDepth {
		return false
	}
	if !m.depthErrSet {
		m.depthErrSet = true
		m.errs = append(m.errs, fmt.Errorf("mono: specialization count exceeded %d; a generic reference may be infinitely recursive", maxInstantiationDepth))
	}
	return true
}

// visitFunc marks fn reachable (specializing it if generic, under
// args) and walks its body for further call sites.
func (m *Monomorphizer) visitFunc(fn *ast.FuncDecl, args []types.Type) {
	if len(fn.TypeParams) == 0 {
		if m.reachable[fn.Name] {
			return
		}
		m.reachable[fn.Name] = true
		m.visitBlock(fn.Body, nil)
		return
	}

	subst := bindTypeParams(fn.TypeParams, args)
	spec := FuncSpecialization{Name: fn.Name, Args: args, Decl: fn}
	key := spec.Key()
	if _, ok := m.funcCache[key]; ok {
		return
	}
	m.specCount++
	if m.overBudget() {
		return
	}
	m.funcCache[key] = &spec
	m.funcOrder = append(m.funcOrder, key)
	m.visitBlock(fn.Body, subst)
}

// visitBlock walks every statement/expression in b looking for call
// sites and generic type instantiations, resolving type-parameter
// placeholders against subst (the enclosing generic function's current
// binding, or nil at module scope).
func (m *Monomorphizer) visitBlock(b *ast.BlockExpr, subst map[string]types.Type) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		m.stmt(s, subst)
	}
	if b.Tail != nil {
		m.expr(b.Tail, subst)
	}
}

func (m *Monomorphizer) stmt(s ast.Stmt, subst map[string]types.Type) {
	switch n := s.(type) {
	case *ast.LetStmt:
		if n.Type != nil {
			m.typeExpr(n.Type, subst)
		}
		if n.Init != nil {
			m.expr(n.Init, subst)
		}
	case *ast.ConstStmt:
		if n.Init != nil {
			m.expr(n.Init, subst)
		}
	case *ast.AssignStmt:
		m.expr(n.Target, subst)
		m.expr(n.Value, subst)
	case *ast.ReturnStmt:
		if n.Value != nil {
			m.expr(n.Value, subst)
		}
	case *ast.LoopControlStmt:
		if n.Value != nil {
			m.expr(n.Value, subst)
		}
	case *ast.WhileStmt:
		m.expr(n.Cond, subst)
		m.visitBlock(n.Body, subst)
	case *ast.WhileLetStmt:
		m.expr(n.Scrut, subst)
		m.visitBlock(n.Body, subst)
	case *ast.ForStmt:
		m.expr(n.Iter, subst)
		m.visitBlock(n.Body, subst)
	case *ast.LoopStmt:
		m.visitBlock(n.Body, subst)
	case *ast.EnsureStmt:
		m.visitBlock(n.Body, subst)
		if n.Catch != nil {
			m.visitBlock(n.Catch, subst)
		}
	case *ast.ComptimeStmt:
		m.visitBlock(n.Body, subst)
	case *ast.ExprStmt:
		m.expr(n.X, subst)
	}
}

func (m *Monomorphizer) expr(e ast.Expr, subst map[string]types.Type) {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		m.expr(n.Left, subst)
		m.expr(n.Right, subst)
	case *ast.UnaryExpr:
		m.expr(n.Operand, subst)
	case *ast.NullCoalesceExpr:
		m.expr(n.Left, subst)
		m.expr(n.Right, subst)
	case *ast.CallExpr:
		m.expr(n.Callee, subst)
		for _, a := range n.Args {
			m.expr(a, subst)
		}
		m.callSite(n, subst)
	case *ast.MethodCallExpr:
		m.expr(n.Receiver, subst)
		for _, a := range n.Args {
			m.expr(a, subst)
		}
		m.methodCallSite(n, subst)
	case *ast.FieldExpr:
		m.expr(n.Receiver, subst)
	case *ast.IndexExpr:
		m.expr(n.Receiver, subst)
		m.expr(n.Index, subst)
	case *ast.StructLitExpr:
		m.typeExpr(n.Type, subst)
		for _, f := range n.Fields {
			m.expr(f.Value, subst)
		}
	case *ast.ArrayExpr:
		for _, el := range n.Elems {
			m.expr(el, subst)
		}
	case *ast.ArrayRepeatExpr:
		m.expr(n.Value, subst)
		m.expr(n.Count, subst)
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			m.expr(el, subst)
		}
	case *ast.RangeExpr:
		if n.Start != nil {
			m.expr(n.Start, subst)
		}
		if n.End != nil {
			m.expr(n.End, subst)
		}
	case *ast.BlockExpr:
		m.visitBlock(n, subst)
	case *ast.IfExpr:
		m.expr(n.Cond, subst)
		m.visitBlock(n.Then, subst)
		if n.Else != nil {
			m.expr(n.Else, subst)
		}
	case *ast.IfLetExpr:
		m.expr(n.Scrut, subst)
		m.visitBlock(n.Then, subst)
		if n.Else != nil {
			m.expr(n.Else, subst)
		}
	case *ast.GuardPatternExpr:
		m.expr(n.Cond, subst)
	case *ast.IsExpr:
		m.expr(n.Value, subst)
	case *ast.MatchExpr:
		m.expr(n.Scrutinee, subst)
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				m.expr(arm.Guard, subst)
			}
			m.expr(arm.Body, subst)
		}
	case *ast.TryExpr:
		m.expr(n.X, subst)
	case *ast.UnwrapExpr:
		m.expr(n.X, subst)
	case *ast.ClosureExpr:
		m.expr(n.Body, subst)
	case *ast.CastExpr:
		m.expr(n.X, subst)
		m.typeExpr(n.Type, subst)
	case *ast.SpawnExpr:
		m.expr(n.Body, subst)
	case *ast.UnsafeExpr:
		m.visitBlock(n.Body, subst)
	case *ast.ComptimeExpr:
		m.visitBlock(n.Body, subst)
	case *ast.BlockCallExpr:
		m.expr(n.Call, subst)
		if n.Trailer != nil {
			m.expr(n.Trailer, subst)
		}
	case *ast.AssertExpr:
		m.expr(n.Cond, subst)
	case *ast.CheckExpr:
		m.expr(n.Cond, subst)
	case *ast.UsingExpr:
		m.visitBlock(n.Body, subst)
	case *ast.WithAsExpr:
		m.expr(n.Resource, subst)
		m.visitBlock(n.Body, subst)
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			m.expr(arm.Chan, subst)
			m.expr(arm.Body, subst)
		}
	}
}

// callSite handles a direct call: a non-generic callee is visited as
// reachable; a generic one (Rask's CallExpr carries no type-argument
// list) is specialized on the type arguments inferArgsFromCall reads
// off its literal arguments, and when they cannot all be inferred an
// error is recorded and the callee is not visited.
func (m *Monomorphizer) callSite(call *ast.CallExpr, subst map[string]types.Type) {
	id, ok := call.Callee.(*ast.IdentExpr)
	if !ok {
		return
	}
	fn, ok := m.funcsByName[id.Name]
	if !ok || len(fn.TypeParams) == 0 {
		if ok {
			m.visitFunc(fn, nil)
		}
		return
	}
	if args, ok := inferArgsFromCall(fn, call.Args, 0, subst); ok {
		m.visitFunc(fn, args)
	} else {
		m.errs = append(m.errs, fmt.Errorf("mono: call to generic function %q has no inferable type arguments", id.Name))
	}
}

func (m *Monomorphizer) methodCallSite(call *ast.MethodCallExpr, subst map[string]types.Type) {
	fn, ok := m.funcsByName[call.Name]
	if !ok || len(fn.TypeParams) == 0 {
		if ok {
			m.visitFunc(fn, nil)
		}
		return
	}
	if len(call.TypeArgs) == len(fn.TypeParams) {
		args := make([]types.Type, len(call.TypeArgs))
		for i, te := range call.TypeArgs {
			args[i] = m.resolveTypeExpr(te, subst)
		}
		m.visitFunc(fn, args)
		return
	}
	if args, ok := inferArgsFromCall(fn, call.Args, 1, subst); ok { // skip the implicit self parameter
		m.visitFunc(fn, args)
		return
	}
	m.errs = append(m.errs, fmt.Errorf("mono: call to generic method %q has no inferable type arguments", call.Name))
}

// inferArgsFromCall performs the narrow, syntax-level inference §4.9
// needs when a generic call carries no explicit type-argument list: a
// literal argument in a position whose declared parameter type is
// exactly one of fn's type parameters pins that parameter directly.
// Every other argument form (a struct literal, an identifier
// reference, a call result) is left
// unresolved; the caller falls back to reporting the site uninferable
// rather than guessing.
func inferArgsFromCall(fn *ast.FuncDecl, args []ast.Expr, paramOffset int, subst map[string]types.Type) ([]types.Type, bool) {
	bound := make(map[string]types.Type)
	for i := paramOffset; i < len(fn.Params); i++ {
		ai := i - paramOffset
		if ai >= len(args) {
			break
		}
		name, ok := typeParamName(fn.Params[i].Type, fn.TypeParams)
		if !ok {
			continue
		}
		if t, ok := literalApparentType(args[ai]); ok {
			bound[name] = t
		}
	}
	result := make([]types.Type, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		t, ok := bound[tp]
		if !ok {
			return nil, false
		}
		result[i] = t
	}
	return result, true
}

func typeParamName(te ast.TypeExpr, params []string) (string, bool) {
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok || len(named.Args) != 0 {
		return "", false
	}
	for _, p := range params {
		if p == named.Name {
			return p, true
		}
	}
	return "", false
}

// literalApparentType reads a concrete type directly off a literal
// expression's surface form, per §4.6's defaulting rule for untyped
// numeric literals (int -> i64, float -> f64). Any other expression,
// a struct literal included, yields no type.
func literalApparentType(e ast.Expr) (types.Type, bool) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		switch n.Kind {
		case ast.LitInt:
			return &types.Primitive{Kind: types.I64}, true
		case ast.LitFloat:
			return &types.Primitive{Kind: types.F64}, true
		case ast.LitString, ast.LitRawString:
			return &types.StringType{}, true
		case ast.LitBool:
			return &types.Primitive{Kind: types.Bool}, true
		case ast.LitChar:
			return &types.Primitive{Kind: types.Char}, true
		}
	}
	return nil, false
}

// typeExpr resolves te (following subst for any bare type-parameter
// name) and, if it names a generic struct/enum with concrete
// arguments, enqueues a type specialization.
func (m *Monomorphizer) typeExpr(te ast.TypeExpr, subst map[string]types.Type) {
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok || len(named.Args) == 0 {
		return
	}
	td, ok := m.arena.Lookup(named.Name)
	if !ok || len(td.TypeParams) == 0 {
		return
	}
	args := make([]types.Type, len(named.Args))
	for i, a := range named.Args {
		args[i] = m.resolveTypeExpr(a, subst)
	}
	m.specializeType(td, args)
}

func (m *Monomorphizer) resolveTypeExpr(te ast.TypeExpr, subst map[string]types.Type) types.Type {
	named, ok := te.(*ast.NamedTypeExpr)
	if ok && len(named.Args) == 0 {
		if t, ok := subst[named.Name]; ok {
			return t
		}
	}
	return typeExprToType(te, m.arena, subst)
}

func (m *Monomorphizer) specializeType(td *types.TypeDef, args []types.Type) {
	if len(td.TypeParams) != len(args) {
		return
	}
	spec := TypeSpecialization{Name: td.Name, Args: args}
	key := spec.Key()
	if _, ok := m.typeCache[key]; ok {
		return
	}
	m.specCount++
	if m.overBudget() {
		return
	}

	inner := bindTypeParams(td.TypeParams, args)
	concrete := &types.TypeDef{Id: td.Id, Kind: td.Kind, Name: td.Name, Decl: td.Decl}
	for _, f := range td.Fields {
		concrete.Fields = append(concrete.Fields, types.Field{Name: f.Name, Type: substType(f.Type, inner)})
	}
	for _, v := range td.Variants {
		nv := types.Variant{Name: v.Name, Tag: v.Tag}
		for _, f := range v.Fields {
			nv.Fields = append(nv.Fields, types.Field{Name: f.Name, Type: substType(f.Type, inner)})
		}
		concrete.Variants = append(concrete.Variants, nv)
	}
	for _, meth := range td.Methods {
		nm := types.Method{Name: meth.Name, TakesSelf: meth.TakesSelf, Ret: substType(meth.Ret, inner)}
		for _, p := range meth.Params {
			nm.Params = append(nm.Params, substType(p, inner))
		}
		concrete.Methods = append(concrete.Methods, nm)
	}

	spec.Def = concrete
	m.typeCache[key] = &spec
	m.typeOrder = append(m.typeOrder, key)
}

func bindTypeParams(params []string, args []types.Type) map[string]types.Type {
	if len(params) == 0 {
		return nil
	}
	b := make(map[string]types.Type, len(params))
	for i, p := range params {
		if i < len(args) {
			b[p] = args[i]
		}
	}
	return b
}

// substType replaces a generic type-parameter placeholder (a bare
// Named with no arena-declared def, e.g. `T`) with its binding,
// recursively, mirroring internal/layout's own applySubst — the same
// substitution shape recurring because both packages work the same
// problem (a generic body, made concrete) from different ends of the
// pipeline.
func substType(t types.Type, subst map[string]types.Type) types.Type {
	if t == nil || len(subst) == 0 {
		return t
	}
	switch n := t.(type) {
	case *types.Named:
		if repl, ok := subst[n.Name]; ok {
			return repl
		}
		return t
	case *types.Generic:
		args := make([]types.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = substType(a, subst)
		}
		return &types.Generic{Base: substType(n.Base, subst), Args: args}
	case *types.Tuple:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = substType(el, subst)
		}
		return &types.Tuple{Elems: elems}
	case *types.Array:
		return &types.Array{Elem: substType(n.Elem, subst), Len: n.Len}
	case *types.Slice:
		return &types.Slice{Elem: substType(n.Elem, subst)}
	case *types.Ptr:
		return &types.Ptr{Pointee: substType(n.Pointee, subst)}
	default:
		return t
	}
}

// typeExprToType converts a syntactic type expression into a semantic
// Type, following subst for bare type-parameter names first. This is
// the same conversion internal/types' build.go performs while
// building the arena; it is duplicated narrowly here (rather than
// exported from internal/types) because mono additionally needs to
// thread a live type-parameter substitution through the conversion,
// which the arena-building pass never needs.
func typeExprToType(te ast.TypeExpr, a *types.Arena, subst map[string]types.Type) types.Type {
	if te == nil {
		return types.UnitType
	}
	switch n := te.(type) {
	case *ast.NamedTypeExpr:
		if len(n.Args) == 0 {
			if t, ok := subst[n.Name]; ok {
				return t
			}
		}
		if t, ok := primitiveByName(n.Name); ok {
			return t
		}
		if n.Name == "string" {
			return &types.StringType{}
		}
		if td, ok := a.Lookup(n.Name); ok {
			if len(n.Args) == 0 {
				return &types.Named{Def: td.Id, Name: n.Name}
			}
			args := make([]types.Type, len(n.Args))
			for i, arg := range n.Args {
				args[i] = typeExprToType(arg, a, subst)
			}
			return &types.Generic{Base: &types.Named{Def: td.Id, Name: n.Name}, Args: args}
		}
		if len(n.Args) == 0 {
			return &types.Named{Name: n.Name}
		}
		args := make([]types.Type, len(n.Args))
		for i, arg := range n.Args {
			args[i] = typeExprToType(arg, a, subst)
		}
		return &types.Generic{Base: &types.Named{Name: n.Name}, Args: args}
	case *ast.TupleTypeExpr:
		elems := make([]types.Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = typeExprToType(e, a, subst)
		}
		return &types.Tuple{Elems: elems}
	case *ast.ArrayTypeExpr:
		return &types.Array{Elem: typeExprToType(n.Elem, a, subst), Len: n.Len}
	case *ast.SliceTypeExpr:
		return &types.Slice{Elem: typeExprToType(n.Elem, a, subst)}
	case *ast.RefTypeExpr:
		if n.IsFn {
			params := make([]types.Type, len(n.Params))
			for i, p := range n.Params {
				params[i] = typeExprToType(p, a, subst)
			}
			ret := types.Type(types.UnitType)
			if n.Ret != nil {
				ret = typeExprToType(n.Ret, a, subst)
			}
			return &types.Fn{Params: params, Ret: ret}
		}
		return &types.Ptr{Pointee: typeExprToType(n.Pointee, a, subst)}
	default:
		return &types.ErrorType{}
	}
}

func primitiveByName(name string) (types.Type, bool) {
	switch name {
	case "i8":
		return &types.Primitive{Kind: types.I8}, true
	case "i16":
		return &types.Primitive{Kind: types.I16}, true
	case "i32":
		return &types.Primitive{Kind: types.I32}, true
	case "i64":
		return &types.Primitive{Kind: types.I64}, true
	case "i128":
		return &types.Primitive{Kind: types.I128}, true
	case "u8":
		return &types.Primitive{Kind: types.U8}, true
	case "u16":
		return &types.Primitive{Kind: types.U16}, true
	case "u32":
		return &types.Primitive{Kind: types.U32}, true
	case "u64":
		return &types.Primitive{Kind: types.U64}, true
	case "u128":
		return &types.Primitive{Kind: types.U128}, true
	case "f32":
		return &types.Primitive{Kind: types.F32}, true
	case "f64":
		return &types.Primitive{Kind: types.F64}, true
	case "bool":
		return &types.Primitive{Kind: types.Bool}, true
	case "char":
		return &types.Primitive{Kind: types.Char}, true
	}
	return nil, false
}

// canonicalKey formats a deterministic cache key for a (name, args)
// specialization request.
func canonicalKey(name string, args []types.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}
