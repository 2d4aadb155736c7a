package ownership

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/types"
)

// Result is the ownership pass's output: any diagnostics produced, plus
// the ensure-cleanup order the MIR builder needs to emit
// EnsurePush/EnsurePop pairs (§4.10).
type Result struct {
	Diagnostics []diag.Diagnostic
	// Cleanups maps a BlockExpr's NodeId to the ensure statements
	// registered directly in it, in declaration order; the MIR builder
	// runs them in reverse (LIFO) on exit.
	Cleanups map[source.NodeId][]*ast.EnsureStmt
}

// checker walks one package's function bodies against arena, which
// supplies the @resource-ness of named struct types.
type checker struct {
	arena       *types.Arena
	diags       *diag.Bag
	cur         *scope
	funcsByName map[string]*ast.FuncDecl
	cleanups    map[source.NodeId][]*ast.EnsureStmt
	fnReturnsSelf bool // not set or read anywhere in this package
}

// Check runs the ownership pass over every function-like body in file.
func Check(file *ast.File, arena *types.Arena) *Result {
	c := &checker{
		arena:       arena,
		diags:       diag.NewBag(0),
		funcsByName: make(map[string]*ast.FuncDecl),
		cleanups:    make(map[source.NodeId][]*ast.EnsureStmt),
	}

	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			c.funcsByName[n.Name] = n
		case *ast.ImplDecl:
			for _, m := range n.Methods {
				c.funcsByName[m.Name] = m
			}
		}
	}

	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			c.checkFunc(n.Params, n.Body)
		case *ast.ImplDecl:
			for _, m := range n.Methods {
				c.checkFunc(m.Params, m.Body)
			}
		case *ast.TestDecl:
			c.checkFunc(nil, n.Body)
		case *ast.BenchmarkDecl:
			c.checkFunc(nil, n.Body)
		}
	}

	return &Result{Diagnostics: c.diags.Items(), Cleanups: c.cleanups}
}

func (c *checker) errorf(code, format string, args ...any) {
	c.diags.Add(diag.Diagnostic{Severity: diag.Error, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) checkFunc(params []ast.Param, body *ast.BlockExpr) {
	if body == nil {
		return
	}
	prev := c.cur
	c.cur = newScope(nil)
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		c.cur.define(p.Name, &binding{
			Mode:       p.Mode,
			State:      Initialized,
			IsResource: namedTypeIsResource(c.arena, p.Type),
			declScope:  c.cur.depth,
		})
	}
	c.block(body, true)
	c.cur = prev
}

// block walks b's statements in a new scope, registering each ensure
// statement directly in b under b's NodeId, then checks that every
// resource bound directly in that scope was consumed. isFuncBody does
// not change this; the parameter scope checkFunc sets up is not checked.
func (c *checker) block(b *ast.BlockExpr, isFuncBody bool) {
	if b == nil {
		return
	}
	prev := c.cur
	c.cur = newScope(prev)
	own := c.cur

	for _, s := range b.Stmts {
		if es, ok := s.(*ast.EnsureStmt); ok {
			c.cleanups[b.NodeId()] = append(c.cleanups[b.NodeId()], es)
		}
		c.stmt(s)
	}
	if b.Tail != nil {
		c.tailExpr(b.Tail, own)
	}

	c.checkUnconsumedResources(own)
	c.cur = prev
}

// tailExpr walks a block's trailing expression, treating a bare
// identifier tail as a move out of the block (the value becomes the
// block's result, same as an explicit return).
func (c *checker) tailExpr(e ast.Expr, own *scope) {
	if id, ok := e.(*ast.IdentExpr); ok {
		c.useIdent(id, true)
		return
	}
	c.expr(e)
}

func (c *checker) checkUnconsumedResources(s *scope) {
	for name, b := range s.vars {
		if b.IsResource && b.State == Initialized {
			c.errorf(diag.EOwnNotConsumed, "resource %q is not consumed before leaving its scope", name)
		}
	}
}

func (c *checker) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		var isResource bool
		if n.Type != nil {
			isResource = namedTypeIsResource(c.arena, n.Type)
		} else if sl, ok := n.Init.(*ast.StructLitExpr); ok {
			isResource = namedTypeIsResource(c.arena, sl.Type)
		}
		if n.Init != nil {
			c.expr(n.Init)
			if id, ok := n.Init.(*ast.IdentExpr); ok {
				c.moveIdent(id)
			}
		}
		for _, name := range n.Bind.Names {
			if name == "_" {
				continue
			}
			c.cur.define(name, &binding{State: Initialized, IsResource: isResource, declScope: c.cur.depth})
		}
	case *ast.ConstStmt:
		if n.Init != nil {
			c.expr(n.Init)
		}
		c.cur.define(n.Name, &binding{State: Initialized, declScope: c.cur.depth})
	case *ast.AssignStmt:
		c.expr(n.Value)
		if id, ok := n.Value.(*ast.IdentExpr); ok {
			c.moveIdent(id)
		}
		if id, ok := n.Target.(*ast.IdentExpr); ok {
			if b, _ := c.cur.find(id.Name); b != nil {
				b.State = Initialized
			}
		} else {
			c.expr(n.Target)
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.expr(n.Value)
			if id, ok := n.Value.(*ast.IdentExpr); ok {
				c.useIdent(id, true)
			}
		}
	case *ast.LoopControlStmt:
		if n.Value != nil {
			c.expr(n.Value)
		}
	case *ast.WhileStmt:
		c.expr(n.Cond)
		c.block(n.Body, false)
	case *ast.WhileLetStmt:
		c.expr(n.Scrut)
		c.inlineBody(n.Pattern, n.Body)
	case *ast.ForStmt:
		c.expr(n.Iter)
		c.inlineBody(n.Pattern, n.Body)
	case *ast.LoopStmt:
		c.block(n.Body, false)
	case *ast.EnsureStmt:
		// block() has already recorded this ensure in the enclosing
		// block's cleanup list.
		c.block(n.Body, false)
		if n.Catch != nil {
			c.block(n.Catch, false)
		}
	case *ast.ComptimeStmt:
		c.block(n.Body, false)
	case *ast.ExprStmt:
		c.expr(n.X)
	}
}

func (c *checker) inlineBody(pat ast.Pattern, body *ast.BlockExpr) {
	prev := c.cur
	c.cur = newScope(prev)
	bindPattern(c.cur, pat)
	for _, s := range body.Stmts {
		c.stmt(s)
	}
	if body.Tail != nil {
		c.expr(body.Tail)
	}
	c.checkUnconsumedResources(c.cur)
	c.cur = prev
}

func bindPattern(s *scope, p ast.Pattern) {
	switch n := p.(type) {
	case *ast.BindPattern:
		if n.Name != "_" {
			s.define(n.Name, &binding{State: Initialized, declScope: s.depth})
		}
	case *ast.ConstructorPattern:
		for _, f := range n.Fields {
			bindPattern(s, f)
		}
	case *ast.TuplePattern:
		for _, e := range n.Elems {
			bindPattern(s, e)
		}
	}
}

// expr walks e for nested identifier uses/moves/borrows. It does not
// itself decide whether e's own top-level identifier is moved (the
// caller — stmt/tailExpr — does that with full context about the
// binding form being used).
func (c *checker) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		c.useIdent(n, false)
	case *ast.BinaryExpr:
		c.expr(n.Left)
		c.expr(n.Right)
	case *ast.UnaryExpr:
		c.expr(n.Operand)
	case *ast.NullCoalesceExpr:
		c.expr(n.Left)
		c.expr(n.Right)
	case *ast.CallExpr:
		c.call(n.Callee, n.Args)
	case *ast.MethodCallExpr:
		c.expr(n.Receiver)
		c.methodArgs(n.Name, n.Args)
	case *ast.FieldExpr:
		c.expr(n.Receiver)
	case *ast.IndexExpr:
		c.expr(n.Receiver)
		c.expr(n.Index)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			c.expr(f.Value)
		}
	case *ast.ArrayExpr:
		for _, el := range n.Elems {
			c.expr(el)
		}
	case *ast.ArrayRepeatExpr:
		c.expr(n.Value)
		c.expr(n.Count)
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			c.expr(el)
		}
	case *ast.RangeExpr:
		if n.Start != nil {
			c.expr(n.Start)
		}
		if n.End != nil {
			c.expr(n.End)
		}
	case *ast.BlockExpr:
		c.block(n, false)
	case *ast.IfExpr:
		c.expr(n.Cond)
		c.block(n.Then, false)
		if n.Else != nil {
			c.expr(n.Else)
		}
	case *ast.IfLetExpr:
		c.expr(n.Scrut)
		c.inlineBody(n.Pattern, n.Then)
		if n.Else != nil {
			c.expr(n.Else)
		}
	case *ast.GuardPatternExpr:
		c.expr(n.Cond)
	case *ast.IsExpr:
		c.expr(n.Value)
	case *ast.MatchExpr:
		c.expr(n.Scrutinee)
		for _, arm := range n.Arms {
			prev := c.cur
			c.cur = newScope(prev)
			bindPattern(c.cur, arm.Pattern)
			if arm.Guard != nil {
				c.expr(arm.Guard)
			}
			c.expr(arm.Body)
			c.checkUnconsumedResources(c.cur)
			c.cur = prev
		}
	case *ast.TryExpr:
		c.expr(n.X)
	case *ast.UnwrapExpr:
		c.expr(n.X)
	case *ast.ClosureExpr:
		prev := c.cur
		c.cur = newScope(prev)
		for _, p := range n.Params {
			if p.Name != "" {
				c.cur.define(p.Name, &binding{Mode: p.Mode, State: Initialized, declScope: c.cur.depth})
			}
		}
		c.expr(n.Body)
		c.checkUnconsumedResources(c.cur)
		c.cur = prev
	case *ast.CastExpr:
		c.expr(n.X)
	case *ast.SpawnExpr:
		c.expr(n.Body)
	case *ast.UnsafeExpr:
		c.block(n.Body, false)
	case *ast.ComptimeExpr:
		c.block(n.Body, false)
	case *ast.BlockCallExpr:
		c.expr(n.Call)
		if n.Trailer != nil {
			c.expr(n.Trailer)
		}
	case *ast.AssertExpr:
		c.expr(n.Cond)
		if n.Msg != nil {
			c.expr(n.Msg)
		}
	case *ast.CheckExpr:
		c.expr(n.Cond)
		if n.Msg != nil {
			c.expr(n.Msg)
		}
	case *ast.UsingExpr:
		c.block(n.Body, false)
	case *ast.WithAsExpr:
		c.expr(n.Resource)
		prev := c.cur
		c.cur = newScope(prev)
		c.cur.define(n.Name, &binding{State: Initialized, declScope: c.cur.depth})
		for _, s := range n.Body.Stmts {
			c.stmt(s)
		}
		if n.Body.Tail != nil {
			c.expr(n.Body.Tail)
		}
		// with-as auto-consumes its resource on block exit (§5); don't
		// flag it as unconsumed even if the body never called close.
		c.cur = prev
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			c.expr(arm.Chan)
			prev := c.cur
			c.cur = newScope(prev)
			bindPattern(c.cur, arm.Pattern)
			c.expr(arm.Body)
			c.checkUnconsumedResources(c.cur)
			c.cur = prev
		}
	}
}

// useIdent records a use of name, diagnosing use-after-move; isMove
// additionally transitions the binding to Moved (a `take`/implicit
// consuming use: return, new-binding assignment, or matching
// parameter mode at a call site — callers decide which applies).
func (c *checker) useIdent(id *ast.IdentExpr, isMove bool) {
	b, _ := c.cur.find(id.Name)
	if b == nil {
		return // free/global name; nothing to track
	}
	if b.State == Moved {
		c.errorf(diag.EOwnUseAfterMove, "%q is used after being moved", id.Name)
		return
	}
	if isMove {
		b.State = Moved
	}
}

func (c *checker) moveIdent(id *ast.IdentExpr) { c.useIdent(id, true) }

// call checks a direct function call: each argument passed to a
// `take`/`own` parameter moves its source identifier; each argument
// passed to a `read`/`mut` parameter borrows it, and two conflicting
// borrows of the same name within one call's argument list are an
// error (§4.7's borrow-conflict rule, applied at call granularity).
func (c *checker) call(callee ast.Expr, args []ast.Expr) {
	c.expr(callee)
	var fn *ast.FuncDecl
	if id, ok := callee.(*ast.IdentExpr); ok {
		fn = c.funcsByName[id.Name]
	}
	c.checkArgBorrows(fn, args, 0)
}

func (c *checker) methodArgs(name string, args []ast.Expr) {
	fn := c.funcsByName[name]
	c.checkArgBorrows(fn, args, 1) // skip the implicit self parameter
}

func (c *checker) checkArgBorrows(fn *ast.FuncDecl, args []ast.Expr, paramOffset int) {
	type activeBorrow struct {
		mut bool
	}
	borrowed := make(map[string]activeBorrow)

	for i, a := range args {
		c.expr(a)
		id, ok := a.(*ast.IdentExpr)
		if !ok {
			continue
		}
		mode := ast.ModeRead
		if fn != nil && i+paramOffset < len(fn.Params) {
			mode = fn.Params[i+paramOffset].Mode
		}
		switch mode {
		case ast.ModeTake, ast.ModeOwn:
			if prior, exists := borrowed[id.Name]; exists {
				c.errorf(diag.EOwnBorrowConflict, "%q cannot be moved while borrowed", id.Name)
				_ = prior
			}
			c.moveIdent(id)
		case ast.ModeMut:
			if prior, exists := borrowed[id.Name]; exists {
				c.errorf(diag.EOwnBorrowConflict, "%q is borrowed mutably more than once", id.Name)
				_ = prior
			}
			borrowed[id.Name] = activeBorrow{mut: true}
			c.useIdent(id, false)
		case ast.ModeRead:
			if prior, exists := borrowed[id.Name]; exists && prior.mut {
				c.errorf(diag.EOwnBorrowConflict, "%q is borrowed immutably while a mutable borrow is active", id.Name)
			}
			borrowed[id.Name] = activeBorrow{mut: borrowed[id.Name].mut}
			c.useIdent(id, false)
		default:
			c.useIdent(id, false)
		}
	}
}

// namedTypeIsResource reports whether te names a struct declared with
// an `@resource` attribute.
func namedTypeIsResource(arena *types.Arena, te ast.TypeExpr) bool {
	named, ok := te.(*ast.NamedTypeExpr)
	if !ok {
		return false
	}
	td, ok := arena.Lookup(named.Name)
	if !ok {
		return false
	}
	sd, ok := td.Decl.(*ast.StructDecl)
	if !ok {
		return false
	}
	for _, attr := range sd.Attrs {
		if attr.Name == "resource" {
			return true
		}
	}
	return false
}
