package mir

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/ownership"
	"github.com/rask-lang/rask-sub001/internal/source"
)

// Builder lowers one *ast.FuncDecl's body into a Function. One Builder
// is used per function; BuildFile drives one Builder per declared
// function and method.
type Builder struct {
	fn        *Function
	cur       *Block
	cleanups  map[source.NodeId][]*ast.EnsureStmt
	scopeVars       []map[string]LocalId // name -> local, innermost last
	nextLocal       LocalId
	pendingCaptures []Statement // LoadCapture statements queued before the entry block exists
	closureSeq      *int        // shared across a function and every closure nested inside it, for unique names
	extra           *[]*Function // shared slot every nested closure's own Function is appended to
}

// BuildFile lowers every free function and impl-block method in file
// into a Program. cleanups is an ownership.Result's per-block ensure
// registry (nil is accepted: every EnsurePush/EnsurePop pair is simply
// skipped, as for a file the ownership pass hasn't been run over yet).
func BuildFile(file *ast.File, own *ownership.Result) *Program {
	var cleanups map[source.NodeId][]*ast.EnsureStmt
	if own != nil {
		cleanups = own.Cleanups
	}
	prog := &Program{}
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			fn, extra := buildFunc(n.Name, n, cleanups)
			prog.Functions = append(prog.Functions, fn)
			prog.Functions = append(prog.Functions, extra...)
		case *ast.ImplDecl:
			named, _ := n.TargetType.(*ast.NamedTypeExpr)
			prefix := ""
			if named != nil {
				prefix = named.Name + "."
			}
			for _, m := range n.Methods {
				fn, extra := buildFunc(prefix+m.Name, m, cleanups)
				prog.Functions = append(prog.Functions, fn)
				prog.Functions = append(prog.Functions, extra...)
			}
		}
	}
	return prog
}

func buildFunc(name string, decl *ast.FuncDecl, cleanups map[source.NodeId][]*ast.EnsureStmt) (*Function, []*Function) {
	seq := 0
	var extra []*Function
	b := &Builder{
		fn:         &Function{Name: name},
		cleanups:   cleanups,
		closureSeq: &seq,
		extra:      &extra,
	}
	b.pushScope()
	for _, p := range decl.Params {
		if p.Mode == ast.ModeSelf {
			id := b.newLocal("self", "")
			b.bind("self", id)
			b.fn.Params = append(b.fn.Params, id)
			continue
		}
		id := b.newLocal(p.Name, typeExprName(p.Type))
		b.bind(p.Name, id)
		b.fn.Params = append(b.fn.Params, id)
	}
	b.fn.Ret = typeExprName(decl.Ret)

	entry := b.newBlock()
	b.fn.Entry = entry.Id
	b.cur = entry

	if decl.Body != nil {
		val := b.lowerBlockBody(decl.Body)
		if !b.terminated() {
			b.terminate(Terminator{Kind: TermReturn, Value: retValue(val)})
		}
	} else if !b.terminated() {
		b.terminate(Terminator{Kind: TermReturn})
	}
	b.popScope()
	return b.fn, extra
}

func retValue(op Operand) *Operand {
	o := op
	return &o
}

func (b *Builder) terminated() bool { return b.cur.Done }

func (b *Builder) newBlock() *Block {
	id := BlockId(len(b.fn.Blocks))
	bl := &Block{Id: id}
	b.fn.Blocks = append(b.fn.Blocks, bl)
	return bl
}

// terminate assigns b.cur's terminator, unless a nested lowering
// already terminated it (e.g. an early `return` inside an if-branch) —
// the first terminator a block receives wins, later ones are no-ops.
func (b *Builder) terminate(t Terminator) {
	if b.cur.Done {
		return
	}
	b.cur.Term = t
	b.cur.Done = true
}

func (b *Builder) newLocal(name, typ string) LocalId {
	id := b.nextLocal
	b.nextLocal++
	b.fn.Locals = append(b.fn.Locals, Local{Id: id, Name: name, TypeName: typ})
	return id
}

func (b *Builder) pushScope() { b.scopeVars = append(b.scopeVars, make(map[string]LocalId)) }
func (b *Builder) popScope()  { b.scopeVars = b.scopeVars[:len(b.scopeVars)-1] }

func (b *Builder) bind(name string, id LocalId) {
	b.scopeVars[len(b.scopeVars)-1][name] = id
}

func (b *Builder) lookup(name string) (LocalId, bool) {
	for i := len(b.scopeVars) - 1; i >= 0; i-- {
		if id, ok := b.scopeVars[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (b *Builder) emit(s Statement) { b.cur.Stmts = append(b.cur.Stmts, s) }

func typeExprName(te ast.TypeExpr) string {
	if te == nil {
		return ""
	}
	if n, ok := te.(*ast.NamedTypeExpr); ok {
		return n.Name
	}
	return ""
}

// lowerBlockBody lowers a *BlockExpr's statements followed by its tail
// expression, registering/discharging any EnsureStmt cleanups recorded
// for this block by the ownership pass, and returns the tail's value
// operand (the zero Operand if the block has no tail).
func (b *Builder) lowerBlockBody(blk *ast.BlockExpr) Operand {
	v, _ := b.lowerBlock(blk)
	return v
}

func (b *Builder) lowerBlock(blk *ast.BlockExpr) (Operand, bool) {
	b.pushScope()
	defer b.popScope()

	var pushed int
	for _, s := range blk.Stmts {
		if es, ok := s.(*ast.EnsureStmt); ok {
			b.emit(Statement{Kind: StEnsurePush, Loc: es.Span()})
			pushed++
			continue
		}
		b.lowerStmt(s)
		if b.terminated() {
			return Operand{}, false
		}
	}
	// ownership's own cleanup registry is keyed by the block's NodeId;
	// it is consulted (rather than re-walking blk.Stmts for
	// EnsureStmts a second time) so a block whose ensures were already
	// counted above doesn't double-pop.
	if ensures, ok := b.cleanups[blk.NodeId()]; ok {
		pushed = len(ensures)
	}
	for i := 0; i < pushed; i++ {
		b.emit(Statement{Kind: StEnsurePop})
	}

	if blk.Tail != nil {
		return b.lowerExpr(blk.Tail), true
	}
	return Operand{}, false
}

func (b *Builder) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		var typ string
		if n.Type != nil {
			typ = typeExprName(n.Type)
		}
		var id LocalId
		if len(n.Bind.Names) == 1 {
			id = b.newLocal(n.Bind.Names[0], typ)
			b.bind(n.Bind.Names[0], id)
		} else {
			// Tuple destructuring: bind each name to its own local;
			// the RHS tuple value is unpacked via RvField with
			// positional names ("0", "1", ...).
			if n.Init != nil {
				rhs := b.lowerExpr(n.Init)
				for i, name := range n.Bind.Names {
					fid := b.newLocal(name, "")
					b.emit(Statement{Kind: StAssign, Dst: fid, RV: &RValue{Op: RvField, Args: []Operand{rhs}, Name: fmt.Sprint(i)}})
					b.bind(name, fid)
				}
			}
			return
		}
		if n.Init != nil {
			rhs := b.lowerExpr(n.Init)
			b.emit(Statement{Kind: StAssign, Dst: id, RV: &RValue{Op: RvUse, Args: []Operand{rhs}}})
		}
	case *ast.ConstStmt:
		id := b.newLocal(n.Name, typeExprName(n.Type))
		b.bind(n.Name, id)
		if n.Init != nil {
			rhs := b.lowerExpr(n.Init)
			b.emit(Statement{Kind: StAssign, Dst: id, RV: &RValue{Op: RvUse, Args: []Operand{rhs}}})
		}
	case *ast.AssignStmt:
		rhs := b.lowerExpr(n.Value)
		b.lowerAssignTarget(n.Target, rhs)
	case *ast.ReturnStmt:
		var v *Operand
		if n.Value != nil {
			op := b.lowerExpr(n.Value)
			v = &op
		}
		b.terminate(Terminator{Kind: TermCleanupReturn, Value: v})
	case *ast.LoopControlStmt:
		// break/continue targets are wired by the enclosing loop
		// lowerer (lowerWhile/lowerFor/lowerLoop), which patches these
		// placeholder gotos once it knows its header/exit blocks; here
		// we just record the carried value as a side-effecting
		// expression evaluation.
		if n.Value != nil {
			b.lowerExpr(n.Value)
		}
		b.terminate(Terminator{Kind: TermGoto, Target: loopCtrlSentinel(n.Kind)})
	case *ast.WhileStmt:
		b.lowerWhile(n)
	case *ast.WhileLetStmt:
		b.lowerWhile(&ast.WhileStmt{Base: n.Base, Cond: &ast.IsExpr{Value: n.Scrut, Pattern: n.Pattern}, Body: n.Body})
	case *ast.ForStmt:
		b.lowerFor(n)
	case *ast.LoopStmt:
		b.lowerLoop(n)
	case *ast.ComptimeStmt:
		// No earlier phase evaluates comptime code; the body is
		// lowered here as an ordinary nested block.
		b.lowerBlockBody(n.Body)
	case *ast.ExprStmt:
		b.lowerExpr(n.X)
	}
}

// loopCtrlSentinel is a placeholder BlockId break/continue/deliver
// gotos carry until the enclosing loop lowerer back-patches them; it
// is never a valid index into Function.Blocks, distinguishing a
// pending patch from a real edge.
func loopCtrlSentinel(k ast.LoopControlKind) BlockId { return BlockId(-100 - int(k)) }

func (b *Builder) lowerAssignTarget(target ast.Expr, rhs Operand) {
	switch t := target.(type) {
	case *ast.IdentExpr:
		if id, ok := b.lookup(t.Name); ok {
			b.emit(Statement{Kind: StAssign, Dst: id, RV: &RValue{Op: RvUse, Args: []Operand{rhs}}})
		}
	case *ast.FieldExpr:
		recv := b.lowerExpr(t.Receiver)
		b.emit(Statement{Kind: StStore, Target: recv, Value: rhs, Loc: t.Span()})
	case *ast.IndexExpr:
		recv := b.lowerExpr(t.Receiver)
		idx := b.lowerExpr(t.Index)
		b.emit(Statement{Kind: StArrayStore, Target: recv, Args: []Operand{idx}, Value: rhs, Loc: t.Span()})
	}
}

func (b *Builder) lowerWhile(n *ast.WhileStmt) {
	header := b.newBlock()
	body := b.newBlock()
	exit := b.newBlock()
	b.terminate(Terminator{Kind: TermGoto, Target: header.Id})

	b.cur = header
	cond := b.lowerExpr(n.Cond)
	b.terminate(Terminator{Kind: TermBranch, Cond: cond, Then: body.Id, Els: exit.Id})

	b.cur = body
	b.lowerLoopBody(n.Body, header.Id, exit.Id)
	b.terminate(Terminator{Kind: TermGoto, Target: header.Id})

	b.cur = exit
}

func (b *Builder) lowerFor(n *ast.ForStmt) {
	// Iteration over a concrete collection is lowered as: fetch an
	// iterator value, then loop calling its `next()` stub method
	// (stdlib's Vec/Map `iter()` methods) and binding the pattern each
	// time; the exact iterator protocol dispatch is a codegen/interp
	// runtime concern, so here the lowering only needs the control-flow
	// shape and a binding slot per loop variable.
	iter := b.lowerExpr(n.Iter)
	header := b.newBlock()
	body := b.newBlock()
	exit := b.newBlock()
	b.terminate(Terminator{Kind: TermGoto, Target: header.Id})

	b.cur = header
	nextVal := b.newLocal("", "")
	hasMore := b.newLocal("", "bool")
	b.emit(Statement{Kind: StCall, Dst: hasMore, Callee: "iterator.has_next", Args: []Operand{iter}})
	b.terminate(Terminator{Kind: TermBranch, Cond: UseLocal(hasMore), Then: body.Id, Els: exit.Id})

	b.cur = body
	b.emit(Statement{Kind: StCall, Dst: nextVal, Callee: "iterator.next", Args: []Operand{iter}})
	b.pushScope()
	b.bindPattern(n.Pattern, UseLocal(nextVal))
	b.lowerLoopBody(n.Body, header.Id, exit.Id)
	b.popScope()
	b.terminate(Terminator{Kind: TermGoto, Target: header.Id})

	b.cur = exit
}

func (b *Builder) lowerLoop(n *ast.LoopStmt) {
	header := b.newBlock()
	exit := b.newBlock()
	b.terminate(Terminator{Kind: TermGoto, Target: header.Id})

	b.cur = header
	b.lowerLoopBody(n.Body, header.Id, exit.Id)
	b.terminate(Terminator{Kind: TermGoto, Target: header.Id})

	b.cur = exit
}

// lowerLoopBody lowers body in place, then rewrites any pending
// break/continue sentinel gotos produced inside it to target exit or
// loopHeader respectively.
func (b *Builder) lowerLoopBody(body *ast.BlockExpr, loopHeader, exit BlockId) {
	startIdx := len(b.fn.Blocks)
	b.lowerBlockBody(body)
	for i := startIdx; i < len(b.fn.Blocks); i++ {
		bl := b.fn.Blocks[i]
		if bl.Term.Kind == TermGoto {
			switch bl.Term.Target {
			case loopCtrlSentinel(ast.CtrlBreak), loopCtrlSentinel(ast.CtrlDeliver):
				bl.Term.Target = exit
			case loopCtrlSentinel(ast.CtrlContinue):
				bl.Term.Target = loopHeader
			}
		}
	}
}

func (b *Builder) bindPattern(p ast.Pattern, src Operand) {
	switch n := p.(type) {
	case *ast.BindPattern:
		if n.Name == "_" {
			return
		}
		id := b.newLocal(n.Name, "")
		b.emit(Statement{Kind: StAssign, Dst: id, RV: &RValue{Op: RvUse, Args: []Operand{src}}})
		b.bind(n.Name, id)
	case *ast.TuplePattern:
		for i, elem := range n.Elems {
			fid := b.newLocal("", "")
			b.emit(Statement{Kind: StAssign, Dst: fid, RV: &RValue{Op: RvField, Args: []Operand{src}, Name: fmt.Sprint(i)}})
			b.bindPattern(elem, UseLocal(fid))
		}
	case *ast.ConstructorPattern:
		for i, f := range n.Fields {
			name := fmt.Sprint(i)
			if i < len(n.FieldNames) && n.FieldNames[i] != "" {
				name = n.FieldNames[i]
			}
			fid := b.newLocal("", "")
			b.emit(Statement{Kind: StAssign, Dst: fid, RV: &RValue{Op: RvField, Args: []Operand{src}, Name: name}})
			b.bindPattern(f, UseLocal(fid))
		}
	case *ast.WildcardPattern, *ast.LiteralPattern:
		// nothing to bind
	}
}

func (b *Builder) lowerExpr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return UseConstant(literalConstant(n))
	case *ast.IdentExpr:
		if id, ok := b.lookup(n.Name); ok {
			return UseLocal(id)
		}
		tmp := b.newLocal("", "")
		b.emit(Statement{Kind: StGlobalRef, Dst: tmp, Callee: n.Name})
		return UseLocal(tmp)
	case *ast.BinaryExpr:
		if meth, ok := ast.MethodNameFor(n.Op); ok {
			return b.lowerMethodLike(n.Left, meth, []ast.Expr{n.Right})
		}
		lv, rv := b.lowerExpr(n.Left), b.lowerExpr(n.Right)
		dst := b.newLocal("", "bool")
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvBinaryOp, Args: []Operand{lv, rv}, Name: binOpName(n.Op)}})
		return UseLocal(dst)
	case *ast.UnaryExpr:
		v := b.lowerExpr(n.Operand)
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvUnaryOp, Args: []Operand{v}, Name: unOpName(n.Op)}})
		return UseLocal(dst)
	case *ast.CallExpr:
		name := calleeName(n.Callee)
		args := make([]Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = b.lowerExpr(a)
		}
		dst := b.newLocal("", "")
		// A bare identifier callee that resolves to a local (a closure
		// value, not a module-level function) calls through that
		// value's captured environment rather than a fixed symbol.
		if id, ok := b.lookup(name); ok {
			callArgs := append([]Operand{UseLocal(id)}, args...)
			b.emit(Statement{Kind: StClosureCall, Dst: dst, Args: callArgs, Loc: n.Span()})
			return UseLocal(dst)
		}
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: name, Args: args, Loc: n.Span()})
		return UseLocal(dst)
	case *ast.MethodCallExpr:
		return b.lowerMethodLike(n.Receiver, n.Name, n.Args)
	case *ast.FieldExpr:
		recv := b.lowerExpr(n.Receiver)
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvField, Args: []Operand{recv}, Name: n.Name}})
		return UseLocal(dst)
	case *ast.IndexExpr:
		recv := b.lowerExpr(n.Receiver)
		idx := b.lowerExpr(n.Index)
		dst := b.newLocal("", "")
		// A Pool<T> receiver's `pool[handle]` indexing is the one
		// PoolCheckedAccess case §4.10 calls out; without static type
		// information at this layer every IndexExpr lowers the same
		// way and relies on the receiver's runtime-tagged kind to pick
		// the checked-access path, so codegen/interp special-case a
		// Pool receiver by tag rather than by static type here.
		b.emit(Statement{Kind: StPoolCheckedAccess, Dst: dst, Pool: recv, Handle: idx})
		return UseLocal(dst)
	case *ast.StructLitExpr:
		args := make([]Operand, len(n.Fields))
		for i, f := range n.Fields {
			args[i] = b.lowerExpr(f.Value)
		}
		dst := b.newLocal("", typeExprName(n.Type))
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "struct." + typeExprName(n.Type), Args: args})
		return UseLocal(dst)
	case *ast.ArrayExpr:
		args := make([]Operand, len(n.Elems))
		for i, el := range n.Elems {
			args[i] = b.lowerExpr(el)
		}
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "array.literal", Args: args})
		return UseLocal(dst)
	case *ast.ArrayRepeatExpr:
		v := b.lowerExpr(n.Value)
		c := b.lowerExpr(n.Count)
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "array.repeat", Args: []Operand{v, c}})
		return UseLocal(dst)
	case *ast.TupleExpr:
		args := make([]Operand, len(n.Elems))
		for i, el := range n.Elems {
			args[i] = b.lowerExpr(el)
		}
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "tuple.literal", Args: args})
		return UseLocal(dst)
	case *ast.BlockExpr:
		v, ok := b.lowerBlock(n)
		if !ok {
			return UseConstant(Constant{Kind: ConstUnit})
		}
		return v
	case *ast.IfExpr:
		return b.lowerIf(n)
	case *ast.IfLetExpr:
		return b.lowerIf(&ast.IfExpr{Base: n.Base, Cond: &ast.IsExpr{Value: n.Scrut, Pattern: n.Pattern}, Then: n.Then, Else: n.Else})
	case *ast.IsExpr:
		v := b.lowerExpr(n.Value)
		dst := b.newLocal("", "bool")
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvEnumTag, Args: []Operand{v}, Name: patternName(n.Pattern)}})
		b.pushScope()
		b.bindPattern(n.Pattern, v)
		b.popScope()
		return UseLocal(dst)
	case *ast.MatchExpr:
		return b.lowerMatch(n)
	case *ast.TryExpr:
		return b.lowerTry(n)
	case *ast.UnwrapExpr:
		v := b.lowerExpr(n.X)
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "unwrap", Args: []Operand{v}, Loc: n.Span()})
		return UseLocal(dst)
	case *ast.NullCoalesceExpr:
		l := b.lowerExpr(n.Left)
		r := b.lowerExpr(n.Right)
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "null_coalesce", Args: []Operand{l, r}})
		return UseLocal(dst)
	case *ast.ClosureExpr:
		return b.lowerClosure(n)
	case *ast.CastExpr:
		v := b.lowerExpr(n.X)
		dst := b.newLocal("", typeExprName(n.Type))
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvCast, Args: []Operand{v}, CastType: typeExprName(n.Type)}})
		return UseLocal(dst)
	case *ast.SpawnExpr:
		dst := b.newLocal("", "TaskHandle")
		inner := b.lowerExprAsClosure(n.Body)
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "runtime.spawn", Args: []Operand{inner}})
		return UseLocal(dst)
	case *ast.UnsafeExpr:
		v, ok := b.lowerBlock(n.Body)
		if !ok {
			return UseConstant(Constant{Kind: ConstUnit})
		}
		return v
	case *ast.ComptimeExpr:
		v, ok := b.lowerBlock(n.Body)
		if !ok {
			return UseConstant(Constant{Kind: ConstUnit})
		}
		return v
	case *ast.BlockCallExpr:
		trailer := b.lowerClosure(n.Trailer)
		return b.lowerExprWithTrailer(n.Call, trailer)
	case *ast.AssertExpr:
		cond := b.lowerExpr(n.Cond)
		var msg Operand
		if n.Msg != nil {
			msg = b.lowerExpr(n.Msg)
		}
		b.emit(Statement{Kind: StCall, Callee: "runtime.assert", Args: []Operand{cond, msg}, Loc: n.Span()})
		return UseConstant(Constant{Kind: ConstUnit})
	case *ast.CheckExpr:
		cond := b.lowerExpr(n.Cond)
		var msg Operand
		if n.Msg != nil {
			msg = b.lowerExpr(n.Msg)
		}
		b.emit(Statement{Kind: StCall, Callee: "runtime.check", Args: []Operand{cond, msg}, Loc: n.Span()})
		return UseConstant(Constant{Kind: ConstUnit})
	case *ast.UsingExpr:
		v, ok := b.lowerBlock(n.Body)
		if !ok {
			return UseConstant(Constant{Kind: ConstUnit})
		}
		return v
	case *ast.WithAsExpr:
		return b.lowerWithAs(n)
	case *ast.SelectExpr:
		return b.lowerSelect(n)
	default:
		return UseConstant(Constant{Kind: ConstUnit})
	}
}

func (b *Builder) lowerExprAsClosure(e ast.Expr) Operand {
	if blk, ok := e.(*ast.BlockExpr); ok {
		return b.lowerClosure(&ast.ClosureExpr{Base: blk.Base, Body: blk})
	}
	return b.lowerClosure(&ast.ClosureExpr{Body: e})
}

func (b *Builder) lowerExprWithTrailer(call ast.Expr, trailer Operand) Operand {
	switch c := call.(type) {
	case *ast.CallExpr:
		args := make([]Operand, len(c.Args)+1)
		for i, a := range c.Args {
			args[i] = b.lowerExpr(a)
		}
		args[len(c.Args)] = trailer
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: calleeName(c.Callee), Args: args})
		return UseLocal(dst)
	case *ast.MethodCallExpr:
		recv := b.lowerExpr(c.Receiver)
		args := make([]Operand, len(c.Args)+2)
		args[0] = recv
		for i, a := range c.Args {
			args[i+1] = b.lowerExpr(a)
		}
		args[len(args)-1] = trailer
		dst := b.newLocal("", "")
		b.emit(Statement{Kind: StCall, Dst: dst, Callee: "method." + c.Name, Args: args})
		return UseLocal(dst)
	default:
		return b.lowerExpr(call)
	}
}

func (b *Builder) lowerMethodLike(recv ast.Expr, name string, argExprs []ast.Expr) Operand {
	recvOp := b.lowerExpr(recv)
	args := make([]Operand, len(argExprs)+1)
	args[0] = recvOp
	for i, a := range argExprs {
		args[i+1] = b.lowerExpr(a)
	}
	dst := b.newLocal("", "")
	b.emit(Statement{Kind: StCall, Dst: dst, Callee: "method." + name, Args: args})
	return UseLocal(dst)
}

func (b *Builder) lowerIf(n *ast.IfExpr) Operand {
	thenB := b.newBlock()
	elseB := b.newBlock()
	join := b.newBlock()

	cond := b.lowerExpr(n.Cond)
	b.terminate(Terminator{Kind: TermBranch, Cond: cond, Then: thenB.Id, Els: elseB.Id})

	dst := b.newLocal("", "")

	b.cur = thenB
	tv, ok := b.lowerBlock(n.Then)
	if ok {
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvUse, Args: []Operand{tv}}})
	}
	b.terminate(Terminator{Kind: TermGoto, Target: join.Id})

	b.cur = elseB
	if n.Else != nil {
		var ev Operand
		var ok2 bool
		switch els := n.Else.(type) {
		case *ast.BlockExpr:
			ev, ok2 = b.lowerBlock(els)
		default:
			ev, ok2 = b.lowerExpr(els), true
		}
		if ok2 {
			b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvUse, Args: []Operand{ev}}})
		}
	}
	b.terminate(Terminator{Kind: TermGoto, Target: join.Id})

	b.cur = join
	return UseLocal(dst)
}

func (b *Builder) lowerMatch(n *ast.MatchExpr) Operand {
	scrut := b.lowerExpr(n.Scrutinee)
	dst := b.newLocal("", "")
	join := b.newBlock()

	armBlocks := make([]*Block, len(n.Arms))
	for i := range n.Arms {
		armBlocks[i] = b.newBlock()
	}
	var cases []SwitchCase
	for i, arm := range n.Arms {
		cases = append(cases, SwitchCase{Tag: i, Target: armBlocks[i].Id})
		_ = arm
	}
	def := armBlocks[len(armBlocks)-1].Id
	b.terminate(Terminator{Kind: TermSwitch, Scrutinee: scrut, Cases: cases, Default: def})

	for i, arm := range n.Arms {
		b.cur = armBlocks[i]
		b.pushScope()
		b.bindPattern(arm.Pattern, scrut)
		if arm.Guard != nil {
			b.lowerExpr(arm.Guard)
		}
		v := b.lowerExpr(arm.Body)
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvUse, Args: []Operand{v}}})
		b.popScope()
		b.terminate(Terminator{Kind: TermGoto, Target: join.Id})
	}

	b.cur = join
	return UseLocal(dst)
}

// lowerTry lowers `expr?`: evaluate expr, branch on its tag (Err/None
// short-circuits a CleanupReturn of the failing value, Ok/Some unwraps
// into the surrounding expression).
func (b *Builder) lowerTry(n *ast.TryExpr) Operand {
	v := b.lowerExpr(n.X)
	isErr := b.newLocal("", "bool")
	b.emit(Statement{Kind: StAssign, Dst: isErr, RV: &RValue{Op: RvEnumTag, Args: []Operand{v}, Name: "Err|None"}})

	errB := b.newBlock()
	okB := b.newBlock()
	b.terminate(Terminator{Kind: TermBranch, Cond: UseLocal(isErr), Then: errB.Id, Els: okB.Id})

	b.cur = errB
	b.terminate(Terminator{Kind: TermCleanupReturn, Value: retValue(v)})

	b.cur = okB
	dst := b.newLocal("", "")
	b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvField, Args: []Operand{v}, Name: "0"}})
	return UseLocal(dst)
}

func (b *Builder) lowerClosure(n *ast.ClosureExpr) Operand {
	*b.closureSeq++
	name := fmt.Sprintf("%s.closure$%d", b.fn.Name, *b.closureSeq)
	inner := &Builder{fn: &Function{Name: name}, cleanups: b.cleanups, closureSeq: b.closureSeq, extra: b.extra}
	inner.pushScope()
	for _, p := range n.Params {
		id := inner.newLocal(p.Name, typeExprName(p.Type))
		inner.bind(p.Name, id)
		inner.fn.Params = append(inner.fn.Params, id)
	}

	// Free variables resolved against the *outer* scope (and not among
	// this closure's own params) are captures (§4.11 pass 1 decides,
	// ahead of codegen, whether each ends up stack- or heap-allocated;
	// here every capture is simply slot N of the closure's environment).
	var captureOuter []Operand
	for _, name := range freeIdents(closureBodyExpr(n)) {
		if _, ok := inner.lookup(name); ok {
			continue
		}
		outerId, ok := b.lookup(name)
		if !ok {
			continue
		}
		slot := len(captureOuter)
		captureOuter = append(captureOuter, UseLocal(outerId))
		capId := inner.newLocal(name, "")
		inner.bind(name, capId)
		// Recorded against the entry block once it exists, below.
		inner.pendingCaptures = append(inner.pendingCaptures, Statement{Kind: StLoadCapture, Dst: capId, Index: slot})
	}

	entry := inner.newBlock()
	inner.fn.Entry = entry.Id
	inner.cur = entry
	inner.cur.Stmts = append(inner.cur.Stmts, inner.pendingCaptures...)

	var v Operand
	switch body := n.Body.(type) {
	case *ast.BlockExpr:
		v = inner.lowerBlockBody(body)
	default:
		v = inner.lowerExpr(body)
	}
	if !inner.terminated() {
		inner.terminate(Terminator{Kind: TermReturn, Value: &v})
	}
	inner.popScope()
	*b.extra = append(*b.extra, inner.fn)

	dst := b.newLocal("", "Closure")
	b.emit(Statement{Kind: StClosureCreate, Dst: dst, Callee: inner.fn.Name, Args: captureOuter})
	return UseLocal(dst)
}

func closureBodyExpr(n *ast.ClosureExpr) ast.Expr { return n.Body }

func (b *Builder) lowerWithAs(n *ast.WithAsExpr) Operand {
	res := b.lowerExpr(n.Resource)
	b.emit(Statement{Kind: StResourceRegister, Value: res, Loc: n.Span()})
	id := b.newLocal(n.Name, "")
	b.emit(Statement{Kind: StAssign, Dst: id, RV: &RValue{Op: RvUse, Args: []Operand{res}}})
	b.pushScope()
	b.bind(n.Name, id)
	v, ok := b.lowerBlock(n.Body)
	b.popScope()
	b.emit(Statement{Kind: StResourceConsume, Value: UseLocal(id), Loc: n.Span()})
	if !ok {
		return UseConstant(Constant{Kind: ConstUnit})
	}
	return v
}

func (b *Builder) lowerSelect(n *ast.SelectExpr) Operand {
	// A select over channel receive/send arms is lowered as a switch
	// on a runtime poll call's returned arm index; the actual blocking
	// multiplexing is an interp/runtime concern (§5).
	dst := b.newLocal("", "")
	idx := b.newLocal("", "i64")
	var chans []Operand
	for _, arm := range n.Arms {
		chans = append(chans, b.lowerExpr(arm.Chan))
	}
	b.emit(Statement{Kind: StCall, Dst: idx, Callee: "runtime.select_poll", Args: chans})

	join := b.newBlock()
	armBlocks := make([]*Block, len(n.Arms))
	for i := range n.Arms {
		armBlocks[i] = b.newBlock()
	}
	var cases []SwitchCase
	for i := range n.Arms {
		cases = append(cases, SwitchCase{Tag: i, Target: armBlocks[i].Id})
	}
	def := armBlocks[0].Id
	b.terminate(Terminator{Kind: TermSwitch, Scrutinee: UseLocal(idx), Cases: cases, Default: def})

	for i, arm := range n.Arms {
		b.cur = armBlocks[i]
		b.pushScope()
		b.bindPattern(arm.Pattern, chans[i])
		v := b.lowerExpr(arm.Body)
		b.emit(Statement{Kind: StAssign, Dst: dst, RV: &RValue{Op: RvUse, Args: []Operand{v}}})
		b.popScope()
		b.terminate(Terminator{Kind: TermGoto, Target: join.Id})
	}
	b.cur = join
	return UseLocal(dst)
}

func calleeName(e ast.Expr) string {
	if id, ok := e.(*ast.IdentExpr); ok {
		return id.Name
	}
	return ""
}

func patternName(p ast.Pattern) string {
	if c, ok := p.(*ast.ConstructorPattern); ok {
		return c.Name
	}
	return ""
}

func literalConstant(n *ast.LiteralExpr) Constant {
	switch n.Kind {
	case ast.LitInt:
		return Constant{Kind: ConstInt, Text: n.Text}
	case ast.LitFloat:
		return Constant{Kind: ConstFloat, Text: n.Text}
	case ast.LitString, ast.LitRawString:
		return Constant{Kind: ConstString, Text: n.Text}
	case ast.LitChar:
		return Constant{Kind: ConstChar, Text: n.Text}
	case ast.LitBool:
		return Constant{Kind: ConstBool, Text: n.Text}
	case ast.LitNull, ast.LitNone:
		return Constant{Kind: ConstNone}
	default:
		return Constant{Kind: ConstUnit}
	}
}

func binOpName(op ast.BinaryOp) string {
	switch op {
	case ast.OpLogAnd:
		return "&&"
	case ast.OpLogOr:
		return "||"
	case ast.OpNe:
		return "!="
	default:
		return "?"
	}
}

func unOpName(op ast.UnaryOp) string {
	switch op {
	case ast.OpNeg:
		return "-"
	case ast.OpBitNot:
		return "~"
	case ast.OpNot:
		return "!"
	default:
		return "?"
	}
}
