package types

import (
	"fmt"
	"strconv"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
)

// env is a name -> Type scope, mirroring the resolver's own scope
// stack shape (module/function/block) but keyed on the checker's own
// inferred types rather than SymbolId, since a binding's type is only
// known once its initializer has been walked.
type env struct {
	parent *env
	vars   map[string]Type
}

func newEnv(parent *env) *env { return &env{parent: parent, vars: make(map[string]Type)} }

func (e *env) define(name string, t Type) { e.vars[name] = t }

func (e *env) lookup(name string) (Type, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Checker walks a resolved package's declarations, generating and
// immediately or lazily (via Solver) discharging type constraints
// (§4.6).
type Checker struct {
	arena  *Arena
	subst  *Subst
	solver *Solver
	diags  *diag.Bag

	funcs map[string]*Fn // top-level function signatures, keyed by declared name
	cur   *env
	ret   Type // current function's declared return type, for return-stmt checks

	nextVar    int
	intVars    []*Var
	floatVars  []*Var
}

// NewChecker creates a checker that resolves named types against
// arena.
func NewChecker(arena *Arena) *Checker {
	return &Checker{
		arena: arena,
		subst: NewSubst(),
		diags: diag.NewBag(0),
		funcs: make(map[string]*Fn),
	}
}

func (c *Checker) fresh() *Var {
	v := &Var{Id: c.nextVar}
	c.nextVar++
	return v
}

func (c *Checker) freshInt() *Var {
	v := c.fresh()
	v.Family = FamInt
	c.intVars = append(c.intVars, v)
	return v
}

func (c *Checker) freshFloat() *Var {
	v := c.fresh()
	v.Family = FamFloat
	c.floatVars = append(c.floatVars, v)
	return v
}

func (c *Checker) typeExpr(te ast.TypeExpr) Type { return typeExprToType(te, c.arena) }

// CheckFile type-checks every function/test/benchmark body in file
// against arena's declared shapes, returning the final substitution
// (useful for later phases that need each expression's resolved type)
// and any diagnostics produced.
func CheckFile(file *ast.File, arena *Arena) (*Subst, []diag.Diagnostic) {
	c := NewChecker(arena)
	c.solver = NewSolver(arena, c.subst)

	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			c.funcs[n.Name] = c.funcSig(n)
		case *ast.ImplDecl:
			for _, m := range n.Methods {
				c.funcs[m.Name] = c.funcSig(m)
			}
		}
	}

	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			c.checkFuncBody(n.Params, n.Ret, n.Body)
		case *ast.ImplDecl:
			for _, m := range n.Methods {
				c.checkFuncBody(m.Params, m.Ret, m.Body)
			}
		case *ast.ConstDecl:
			c.cur = newEnv(nil)
			got := c.checkExpr(n.Init)
			if n.Type != nil {
				if err := c.subst.Unify(got, c.typeExpr(n.Type)); err != nil {
					c.errorf(diag.ETypeMismatch, "%v", err)
				}
			}
		case *ast.TestDecl:
			c.checkFuncBody(nil, nil, n.Body)
		case *ast.BenchmarkDecl:
			c.checkFuncBody(nil, nil, n.Body)
		}
	}

	for _, err := range c.solver.Solve() {
		c.diags.Add(diag.Diagnostic{Severity: diag.Error, Code: diag.ETypeNoSuchMember, Message: err.Error()})
	}
	c.applyDefaults()

	return c.subst, c.diags.Items()
}

func (c *Checker) funcSig(fn *ast.FuncDecl) *Fn {
	params := make([]Type, 0, len(fn.Params))
	for _, p := range fn.Params {
		if p.Mode == ast.ModeSelf {
			continue
		}
		params = append(params, c.typeExpr(p.Type))
	}
	ret := Type(UnitType)
	if fn.Ret != nil {
		ret = c.typeExpr(fn.Ret)
	}
	return &Fn{Params: params, Ret: ret}
}

func (c *Checker) checkFuncBody(params []ast.Param, retExpr ast.TypeExpr, body *ast.BlockExpr) {
	if body == nil {
		return
	}
	prevEnv, prevRet := c.cur, c.ret
	c.cur = newEnv(nil)
	c.ret = Type(UnitType)
	if retExpr != nil {
		c.ret = c.typeExpr(retExpr)
	}

	for _, p := range params {
		if p.Name == "" {
			continue
		}
		if p.Mode == ast.ModeSelf {
			c.cur.define(p.Name, &Named{Name: "Self"})
			continue
		}
		c.cur.define(p.Name, c.typeExpr(p.Type))
	}

	got := c.checkBlock(body)
	if err := c.subst.Unify(got, c.ret); err != nil {
		c.errorf(diag.ETypeMismatch, "%v", err)
	}

	c.cur, c.ret = prevEnv, prevRet
}

// errorf records a diagnostic. Precise span plumbing is left to the
// driver that threads source.Span through the rest of the pipeline;
// this package only needs to report the code and message.
func (c *Checker) errorf(code, format string, args ...any) {
	c.diags.Add(diag.Diagnostic{Severity: diag.Error, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *Checker) checkBlock(b *ast.BlockExpr) Type {
	if b == nil {
		return UnitType
	}
	prevEnv := c.cur
	c.cur = newEnv(prevEnv)
	defer func() { c.cur = prevEnv }()

	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.Tail != nil {
		return c.checkExpr(b.Tail)
	}
	return UnitType
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		var t Type
		if n.Init != nil {
			t = c.checkExpr(n.Init)
		} else {
			t = c.fresh()
		}
		if n.Type != nil {
			declared := c.typeExpr(n.Type)
			if err := c.subst.Unify(t, declared); err != nil {
				c.errorf(diag.ETypeMismatch, "%v", err)
			}
			t = declared
		}
		if len(n.Bind.Names) == 1 {
			if n.Bind.Names[0] != "_" {
				c.cur.define(n.Bind.Names[0], t)
			}
			return
		}
		tup, ok := c.subst.Apply(t).(*Tuple)
		for i, name := range n.Bind.Names {
			if name == "_" {
				continue
			}
			if ok && i < len(tup.Elems) {
				c.cur.define(name, tup.Elems[i])
			} else {
				c.cur.define(name, c.fresh())
			}
		}
	case *ast.ConstStmt:
		t := c.checkExpr(n.Init)
		if n.Type != nil {
			if err := c.subst.Unify(t, c.typeExpr(n.Type)); err != nil {
				c.errorf(diag.ETypeMismatch, "%v", err)
			}
		}
		c.cur.define(n.Name, t)
	case *ast.AssignStmt:
		target := c.checkExpr(n.Target)
		val := c.checkExpr(n.Value)
		if err := c.subst.Unify(target, val); err != nil {
			c.errorf(diag.ETypeMismatch, "%v", err)
		}
	case *ast.ReturnStmt:
		t := Type(UnitType)
		if n.Value != nil {
			t = c.checkExpr(n.Value)
		}
		if c.ret != nil {
			if err := c.subst.Unify(t, c.ret); err != nil {
				c.errorf(diag.ETypeMismatch, "%v", err)
			}
		}
	case *ast.LoopControlStmt:
		if n.Value != nil {
			c.checkExpr(n.Value)
		}
	case *ast.WhileStmt:
		c.checkBool(n.Cond)
		c.checkBlock(n.Body)
	case *ast.WhileLetStmt:
		scrut := c.checkExpr(n.Scrut)
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.checkPattern(n.Pattern, scrut)
		for _, st := range n.Body.Stmts {
			c.checkStmt(st)
		}
		if n.Body.Tail != nil {
			c.checkExpr(n.Body.Tail)
		}
		c.cur = prevEnv
	case *ast.ForStmt:
		iter := c.checkExpr(n.Iter)
		elem := c.iterElemType(iter)
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.checkPattern(n.Pattern, elem)
		for _, st := range n.Body.Stmts {
			c.checkStmt(st)
		}
		if n.Body.Tail != nil {
			c.checkExpr(n.Body.Tail)
		}
		c.cur = prevEnv
	case *ast.LoopStmt:
		c.checkBlock(n.Body)
	case *ast.EnsureStmt:
		c.checkBlock(n.Body)
		if n.Catch != nil {
			c.checkBlock(n.Catch)
		}
	case *ast.ComptimeStmt:
		c.checkBlock(n.Body)
	case *ast.ExprStmt:
		c.checkExpr(n.X)
	}
}

// iterElemType unwraps the element type of something iterated over by
// `for`: a Slice/Array yields its Elem directly, a Range yields its
// single generic argument, anything else yields a fresh var (the
// precise stdlib Iterator contract is out of scope here).
func (c *Checker) iterElemType(t Type) Type {
	switch n := c.subst.Apply(t).(type) {
	case *Slice:
		return n.Elem
	case *Array:
		return n.Elem
	case *Generic:
		if named, ok := n.Base.(*Named); ok && named.Name == "Range" && len(n.Args) == 1 {
			return n.Args[0]
		}
	}
	return c.fresh()
}

func (c *Checker) checkBool(e ast.Expr) {
	t := c.checkExpr(e)
	if err := c.subst.Unify(t, &Primitive{Kind: Bool}); err != nil {
		c.errorf(diag.ETypeMismatch, "%v", err)
	}
}

func (c *Checker) checkExpr(e ast.Expr) Type {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return c.checkLiteral(n)
	case *ast.IdentExpr:
		if t, ok := c.cur.lookup(n.Name); ok {
			return t
		}
		if fn, ok := c.funcs[n.Name]; ok {
			return fn
		}
		return &ErrorType{}
	case *ast.BinaryExpr:
		return c.checkBinary(n)
	case *ast.UnaryExpr:
		t := c.checkExpr(n.Operand)
		if n.Op == ast.OpNot {
			c.mustUnify(t, &Primitive{Kind: Bool}, n)
			return &Primitive{Kind: Bool}
		}
		return t
	case *ast.NullCoalesceExpr:
		left := c.checkExpr(n.Left)
		right := c.checkExpr(n.Right)
		c.mustUnify(left, right, n)
		return left
	case *ast.CallExpr:
		return c.checkCall(n)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(n)
	case *ast.FieldExpr:
		return c.checkField(n)
	case *ast.IndexExpr:
		recv := c.checkExpr(n.Receiver)
		c.checkExpr(n.Index)
		switch r := c.subst.Apply(recv).(type) {
		case *Slice:
			return r.Elem
		case *Array:
			return r.Elem
		default:
			return c.fresh()
		}
	case *ast.StructLitExpr:
		return c.checkStructLit(n)
	case *ast.ArrayExpr:
		if len(n.Elems) == 0 {
			return &Array{Elem: c.fresh(), Len: 0}
		}
		elem := c.checkExpr(n.Elems[0])
		for _, e := range n.Elems[1:] {
			c.mustUnify(elem, c.checkExpr(e), e)
		}
		return &Array{Elem: elem, Len: len(n.Elems)}
	case *ast.ArrayRepeatExpr:
		val := c.checkExpr(n.Value)
		c.checkExpr(n.Count)
		length := 0
		if lit, ok := n.Count.(*ast.LiteralExpr); ok && lit.Kind == ast.LitInt {
			if v, err := strconv.Atoi(lit.Text); err == nil {
				length = v
			}
		}
		return &Array{Elem: val, Len: length}
	case *ast.TupleExpr:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = c.checkExpr(e)
		}
		return &Tuple{Elems: elems}
	case *ast.RangeExpr:
		var elem Type = &Primitive{Kind: I64}
		if n.Start != nil {
			elem = c.checkExpr(n.Start)
		}
		if n.End != nil {
			c.mustUnify(elem, c.checkExpr(n.End), n)
		}
		return &Generic{Base: &Named{Name: "Range"}, Args: []Type{elem}}
	case *ast.BlockExpr:
		return c.checkBlock(n)
	case *ast.IfExpr:
		c.checkBool(n.Cond)
		then := c.checkBlock(n.Then)
		if n.Else != nil {
			els := c.checkExpr(n.Else)
			c.mustUnify(then, els, n)
		}
		return then
	case *ast.IfLetExpr:
		scrut := c.checkExpr(n.Scrut)
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.checkPattern(n.Pattern, scrut)
		var then Type = UnitType
		for _, st := range n.Then.Stmts {
			c.checkStmt(st)
		}
		if n.Then.Tail != nil {
			then = c.checkExpr(n.Then.Tail)
		}
		c.cur = prevEnv
		if n.Else != nil {
			els := c.checkExpr(n.Else)
			c.mustUnify(then, els, n)
		}
		return then
	case *ast.GuardPatternExpr:
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.checkPattern(n.Pattern, c.fresh())
		c.checkBool(n.Cond)
		c.cur = prevEnv
		return &Primitive{Kind: Bool}
	case *ast.IsExpr:
		scrut := c.checkExpr(n.Value)
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.checkPattern(n.Pattern, scrut)
		c.cur = prevEnv
		return &Primitive{Kind: Bool}
	case *ast.MatchExpr:
		return c.checkMatch(n)
	case *ast.TryExpr:
		return c.checkExpr(n.X)
	case *ast.UnwrapExpr:
		return c.checkExpr(n.X)
	case *ast.ClosureExpr:
		return c.checkClosure(n)
	case *ast.CastExpr:
		c.checkExpr(n.X)
		return c.typeExpr(n.Type)
	case *ast.SpawnExpr:
		c.checkExpr(n.Body)
		return &Generic{Base: &Named{Name: "Task"}, Args: []Type{c.fresh()}}
	case *ast.UnsafeExpr:
		return c.checkBlock(n.Body)
	case *ast.ComptimeExpr:
		return c.checkBlock(n.Body)
	case *ast.BlockCallExpr:
		t := c.checkExpr(n.Call)
		if n.Trailer != nil {
			c.checkExpr(n.Trailer)
		}
		return t
	case *ast.AssertExpr:
		c.checkBool(n.Cond)
		if n.Msg != nil {
			c.checkExpr(n.Msg)
		}
		return UnitType
	case *ast.CheckExpr:
		c.checkBool(n.Cond)
		if n.Msg != nil {
			c.checkExpr(n.Msg)
		}
		return UnitType
	case *ast.UsingExpr:
		return c.checkBlock(n.Body)
	case *ast.WithAsExpr:
		res := c.checkExpr(n.Resource)
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.cur.define(n.Name, res)
		var t Type = UnitType
		for _, st := range n.Body.Stmts {
			c.checkStmt(st)
		}
		if n.Body.Tail != nil {
			t = c.checkExpr(n.Body.Tail)
		}
		c.cur = prevEnv
		return t
	case *ast.SelectExpr:
		var result Type = UnitType
		for i, arm := range n.Arms {
			c.checkExpr(arm.Chan)
			prevEnv := c.cur
			c.cur = newEnv(prevEnv)
			c.checkPattern(arm.Pattern, c.fresh())
			t := c.checkExpr(arm.Body)
			c.cur = prevEnv
			if i == 0 {
				result = t
			} else {
				c.mustUnify(result, t, n)
			}
		}
		return result
	default:
		return &ErrorType{}
	}
}

func (c *Checker) checkLiteral(n *ast.LiteralExpr) Type {
	switch n.Kind {
	case ast.LitInt:
		return c.freshInt()
	case ast.LitFloat:
		return c.freshFloat()
	case ast.LitString, ast.LitRawString:
		return &StringType{}
	case ast.LitChar:
		return &Primitive{Kind: Char}
	case ast.LitBool:
		return &Primitive{Kind: Bool}
	case ast.LitNull, ast.LitNone:
		return &Generic{Base: &Named{Name: "Option"}, Args: []Type{c.fresh()}}
	default:
		return &ErrorType{}
	}
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) Type {
	left := c.checkExpr(n.Left)
	right := c.checkExpr(n.Right)
	switch n.Op {
	case ast.OpLogAnd, ast.OpLogOr:
		c.mustUnify(left, &Primitive{Kind: Bool}, n)
		c.mustUnify(right, &Primitive{Kind: Bool}, n)
		return &Primitive{Kind: Bool}
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		c.mustUnify(left, right, n)
		return &Primitive{Kind: Bool}
	default:
		c.mustUnify(left, right, n)
		return left
	}
}

func (c *Checker) mustUnify(a, b Type, n ast.Node) {
	if err := c.subst.Unify(a, b); err != nil {
		c.errorf(diag.ETypeMismatch, "%v", err)
	}
}

func (c *Checker) checkCall(n *ast.CallExpr) Type {
	calleeT := c.checkExpr(n.Callee)
	args := make([]Type, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.checkExpr(a)
	}
	fn, ok := c.subst.Apply(calleeT).(*Fn)
	if !ok {
		c.errorf(diag.ETypeNotCallable, "call target is not a function")
		return c.fresh()
	}
	if len(fn.Params) != len(args) {
		c.errorf(diag.ETypeArity, "call takes %d argument(s), got %d", len(fn.Params), len(args))
		return fn.Ret
	}
	for i, p := range fn.Params {
		c.mustUnify(args[i], p, n)
	}
	return fn.Ret
}

func (c *Checker) checkMethodCall(n *ast.MethodCallExpr) Type {
	recv := c.checkExpr(n.Receiver)
	args := make([]Type, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.checkExpr(a)
	}
	ret := c.fresh()
	c.solver.Defer(Constraint{Kind: HasMethod, Receiver: recv, Name: n.Name, Args: args, Ret: ret})
	return ret
}

func (c *Checker) checkField(n *ast.FieldExpr) Type {
	recv := c.checkExpr(n.Receiver)
	field := c.fresh()
	c.solver.Defer(Constraint{Kind: HasField, Receiver: recv, Name: n.Name, Field: field})
	return field
}

func (c *Checker) checkStructLit(n *ast.StructLitExpr) Type {
	ty := c.typeExpr(n.Type)
	named, ok := ty.(*Named)
	if !ok {
		if g, gok := ty.(*Generic); gok {
			named, ok = g.Base.(*Named)
		}
	}
	if ok && named != nil {
		if td, found := c.arena.Lookup(named.Name); found {
			for _, f := range n.Fields {
				got := c.checkExpr(f.Value)
				if decl, has := td.FieldByName(f.Name); has {
					c.mustUnify(got, decl.Type, n)
				}
			}
			return ty
		}
	}
	for _, f := range n.Fields {
		c.checkExpr(f.Value)
	}
	return ty
}

func (c *Checker) checkMatch(n *ast.MatchExpr) Type {
	scrut := c.checkExpr(n.Scrutinee)
	var result Type
	for i, arm := range n.Arms {
		prevEnv := c.cur
		c.cur = newEnv(prevEnv)
		c.checkPattern(arm.Pattern, scrut)
		if arm.Guard != nil {
			c.checkBool(arm.Guard)
		}
		t := c.checkExpr(arm.Body)
		c.cur = prevEnv
		if i == 0 {
			result = t
		} else {
			c.mustUnify(result, t, n)
		}
	}
	if result == nil {
		result = UnitType
	}
	return result
}

func (c *Checker) checkClosure(n *ast.ClosureExpr) Type {
	prevEnv, prevRet := c.cur, c.ret
	c.cur = newEnv(prevEnv)
	params := make([]Type, len(n.Params))
	for i, p := range n.Params {
		pt := c.fresh()
		if p.Type != nil {
			pt = c.typeExpr(p.Type)
		}
		params[i] = Type(pt)
		if p.Name != "" {
			c.cur.define(p.Name, pt)
		}
	}
	ret := Type(c.fresh())
	if n.Ret != nil {
		ret = c.typeExpr(n.Ret)
	}
	c.ret = ret
	got := c.checkExpr(n.Body)
	c.mustUnify(got, ret, n)
	c.cur, c.ret = prevEnv, prevRet
	return &Fn{Params: params, Ret: ret}
}

// checkPattern binds every name a pattern introduces against scrutType,
// best-effort narrowing constructor payload fields when scrutType
// resolves to a known enum (mirrors the resolver's own best-effort
// constructor lookup).
func (c *Checker) checkPattern(p ast.Pattern, scrutType Type) {
	switch n := p.(type) {
	case *ast.BindPattern:
		if n.Name != "_" {
			c.cur.define(n.Name, scrutType)
		}
	case *ast.LiteralPattern:
		c.mustUnify(scrutType, c.checkExpr(n.Value), n)
	case *ast.ConstructorPattern:
		variantName := n.Name
		if named, ok := c.subst.Apply(scrutType).(*Named); ok {
			if td, found := c.arena.Lookup(named.Name); found {
				if v, vok := td.VariantByName(lastDotSegment(variantName)); vok {
					for i, f := range n.Fields {
						if i < len(v.Fields) {
							c.checkPattern(f, v.Fields[i].Type)
							continue
						}
						c.checkPattern(f, c.fresh())
					}
					return
				}
			}
		}
		for _, f := range n.Fields {
			c.checkPattern(f, c.fresh())
		}
	case *ast.TuplePattern:
		tup, ok := c.subst.Apply(scrutType).(*Tuple)
		for i, e := range n.Elems {
			if ok && i < len(tup.Elems) {
				c.checkPattern(e, tup.Elems[i])
			} else {
				c.checkPattern(e, c.fresh())
			}
		}
	case *ast.WildcardPattern:
		// binds nothing
	}
}

func lastDotSegment(s string) string {
	last := s
	cur := ""
	for _, ch := range s {
		if ch == '.' {
			last = cur
			cur = ""
			continue
		}
		cur += string(ch)
	}
	if cur != "" {
		last = cur
	}
	return last
}

// applyDefaults binds any integer/float literal variable that never
// unified with a concrete type to i64/f64 respectively (§4.6:
// "defaulting unresolved type variables to i64/f64/string").
func (c *Checker) applyDefaults() {
	for _, v := range c.intVars {
		if _, stillVar := c.subst.Apply(v).(*Var); stillVar {
			c.subst.bindings[v.Id] = &Primitive{Kind: I64}
		}
	}
	for _, v := range c.floatVars {
		if _, stillVar := c.subst.Apply(v).(*Var); stillVar {
			c.subst.bindings[v.Id] = &Primitive{Kind: F64}
		}
	}
}
