package codegen

import (
	"fmt"
	"strconv"

	"github.com/rask-lang/rask-sub001/internal/mir"
)

// frame is one activation of DebugBackend.Run: the cell value of
// every local live in the function currently executing, plus any
// captures it was invoked with (a closure's captured environment).
//
// DebugBackend only models the scalar cell representation §4.12
// describes: aggregate field/array/enum access, resource tracking,
// and ensure-cleanup ordering are internal/interp's job (§4.13), not
// this package's — RvField/RvArrayIdx/RvEnumTag and the
// StResource*/StEnsure* statement kinds are accepted as no-ops here
// so control-flow and call-resolution tests can still run end to end
// over functions that contain them.
type frame struct {
	fn       *Function
	cells    map[int]int64
	captures []int64
}

func newFrame(fn *Function, args []int64, captures []int64) *frame {
	fr := &frame{fn: fn, cells: make(map[int]int64), captures: captures}
	for i, id := range fn.MIR.Params {
		if i < len(args) {
			fr.cells[int(id)] = args[i]
		}
	}
	return fr
}

func (fr *frame) val(o mir.Operand) int64 {
	if o.IsConstant() {
		return constantVal(*o.Constant)
	}
	return fr.cells[int(o.Local)]
}

func constantVal(c mir.Constant) int64 {
	switch c.Kind {
	case mir.ConstBool:
		if c.Text == "true" {
			return 1
		}
		return 0
	case mir.ConstInt, mir.ConstChar:
		n, _ := strconv.ParseInt(c.Text, 0, 64)
		return n
	case mir.ConstNone:
		return 0
	default:
		// ConstFloat/ConstString/ConstUnit have no faithful int64
		// representation in this debug model; callers that need real
		// float/string values belong in internal/interp instead.
		return 0
	}
}

// run executes fr's function body to completion, calling back into
// d for any StCall/StClosureCall it hits, and returns the function's
// result cell.
func (fr *frame) run(mod *Module, d *DebugBackend) (int64, error) {
	callByStmt := make(map[*mir.Statement]*Call, len(fr.fn.Calls))
	for _, c := range fr.fn.Calls {
		callByStmt[c.Stmt] = c
	}

	blockByID := make(map[mir.BlockId]*mir.Block, len(fr.fn.MIR.Blocks))
	for _, bl := range fr.fn.MIR.Blocks {
		blockByID[bl.Id] = bl
	}

	cur := blockByID[fr.fn.MIR.Entry]
	for steps := 0; ; steps++ {
		if steps > 1_000_000 {
			return 0, fmt.Errorf("codegen/debugbackend: %s exceeded step budget (likely a non-terminating loop)", fr.fn.MIR.Name)
		}
		for i := range cur.Stmts {
			st := &cur.Stmts[i]
			if err := fr.exec(mod, d, st, callByStmt[st]); err != nil {
				return 0, err
			}
		}
		switch cur.Term.Kind {
		case mir.TermGoto:
			cur = blockByID[cur.Term.Target]
		case mir.TermBranch:
			if fr.val(cur.Term.Cond) != 0 {
				cur = blockByID[cur.Term.Then]
			} else {
				cur = blockByID[cur.Term.Els]
			}
		case mir.TermSwitch:
			tag := fr.val(cur.Term.Scrutinee)
			next := cur.Term.Default
			for _, c := range cur.Term.Cases {
				if int64(c.Tag) == tag {
					next = c.Target
					break
				}
			}
			cur = blockByID[next]
		case mir.TermReturn, mir.TermCleanupReturn:
			if cur.Term.Value == nil {
				return 0, nil
			}
			return fr.val(*cur.Term.Value), nil
		case mir.TermUnreachable:
			return 0, fmt.Errorf("codegen/debugbackend: %s hit an unreachable terminator", fr.fn.MIR.Name)
		default:
			return 0, fmt.Errorf("codegen/debugbackend: unknown terminator kind %d", cur.Term.Kind)
		}
	}
}

func (fr *frame) exec(mod *Module, d *DebugBackend, st *mir.Statement, call *Call) error {
	switch st.Kind {
	case mir.StAssign:
		fr.cells[int(st.Dst)] = fr.evalRValue(st.RV)
	case mir.StCall:
		return fr.execCall(mod, d, st, call)
	case mir.StClosureCreate:
		// The closure's target function name is carried in Callee;
		// captures are the operand values evaluated in the creating
		// frame. DebugBackend packs both into a synthetic registry
		// keyed by the destination cell's own value (its own LocalId,
		// reused as a fabricated "closure handle") so StClosureCall
		// can recover them without a real heap.
		d.registerClosure(int64(st.Dst), st.Callee, fr.evalArgs(st.Args))
		fr.cells[int(st.Dst)] = int64(st.Dst)
	case mir.StClosureCall:
		if len(st.Args) == 0 {
			return fmt.Errorf("codegen/debugbackend: closure call with no receiver operand")
		}
		handle := fr.val(st.Args[0])
		target, captures, ok := d.lookupClosure(handle)
		if !ok {
			return fmt.Errorf("codegen/debugbackend: unresolved closure handle %d", handle)
		}
		callArgs := fr.evalArgs(st.Args[1:])
		fn := findFunction(mod, target)
		if fn == nil {
			return fmt.Errorf("codegen/debugbackend: closure target %q not found", target)
		}
		sub := newFrame(fn, callArgs, captures)
		res, err := sub.run(mod, d)
		if err != nil {
			return err
		}
		fr.cells[int(st.Dst)] = res
	case mir.StLoadCapture:
		if st.Index < len(fr.captures) {
			fr.cells[int(st.Dst)] = fr.captures[st.Index]
		}
	case mir.StGlobalRef:
		// Module-level const/function references resolve through
		// internal/interp's environment in the real pipeline;
		// DebugBackend has no global table, so this is a documented
		// no-op (cell stays zero) rather than a guess.
	case mir.StStore, mir.StArrayStore:
		fr.cells[int(st.Target.Local)] = fr.val(st.Value)
	case mir.StPoolCheckedAccess:
		if rt, ok := d.Runtime["rask_pool_get"]; ok {
			fr.cells[int(st.Dst)] = rt([]int64{fr.val(st.Pool), fr.val(st.Handle)})
		}
	case mir.StResourceRegister, mir.StResourceConsume, mir.StResourceScopeCheck,
		mir.StEnsurePush, mir.StEnsurePop:
		// Ownership/cleanup bookkeeping belongs to internal/ownership
		// and internal/interp's resource tracker, not codegen's debug
		// execution model.
	}
	return nil
}

func (fr *frame) evalArgs(ops []mir.Operand) []int64 {
	out := make([]int64, len(ops))
	for i, o := range ops {
		out[i] = fr.val(o)
	}
	return out
}

func (fr *frame) execCall(mod *Module, d *DebugBackend, st *mir.Statement, call *Call) error {
	if call == nil {
		if v, ok := evalArithIntrinsic(st.Callee, fr.evalArgs(st.Args)); ok {
			fr.cells[int(st.Dst)] = v
			return nil
		}
		return fmt.Errorf("codegen/debugbackend: %q has no resolved call target (intrinsic arithmetic expects exactly 2 scalar args)", st.Callee)
	}
	args := fr.evalArgs(st.Args)
	if call.Target.IsRuntime {
		rt, ok := d.Runtime[call.Target.Entry.CRuntime]
		if !ok {
			return fmt.Errorf("codegen/debugbackend: no stub registered for runtime function %q", call.Target.Entry.CRuntime)
		}
		fr.cells[int(st.Dst)] = rt(args)
		return nil
	}
	fn := findFunction(mod, call.Target.Name)
	if fn == nil {
		return fmt.Errorf("codegen/debugbackend: user function %q not found", call.Target.Name)
	}
	sub := newFrame(fn, args, nil)
	res, err := sub.run(mod, d)
	if err != nil {
		return err
	}
	fr.cells[int(st.Dst)] = res
	return nil
}

func evalArithIntrinsic(callee string, args []int64) (int64, bool) {
	if !arithIntrinsicMethods[methodName(callee)] || len(args) != 2 {
		return 0, false
	}
	a, b := args[0], args[1]
	switch methodName(callee) {
	case "add":
		return a + b, true
	case "sub":
		return a - b, true
	case "mul":
		return a * b, true
	case "div":
		if b == 0 {
			return 0, true
		}
		return a / b, true
	case "rem":
		if b == 0 {
			return 0, true
		}
		return a % b, true
	case "bit_and":
		return a & b, true
	case "bit_or":
		return a | b, true
	case "bit_xor":
		return a ^ b, true
	case "shl":
		return a << uint(b), true
	case "shr":
		return a >> uint(b), true
	case "eq":
		return boolCell(a == b), true
	case "lt":
		return boolCell(a < b), true
	case "le":
		return boolCell(a <= b), true
	case "gt":
		return boolCell(a > b), true
	case "ge":
		return boolCell(a >= b), true
	}
	return 0, false
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (fr *frame) evalRValue(rv *mir.RValue) int64 {
	if rv == nil {
		return 0
	}
	switch rv.Op {
	case mir.RvUse, mir.RvRef, mir.RvDeref:
		if len(rv.Args) == 0 {
			return 0
		}
		return fr.val(rv.Args[0])
	case mir.RvBinaryOp:
		if len(rv.Args) != 2 {
			return 0
		}
		a, b := fr.val(rv.Args[0]), fr.val(rv.Args[1])
		switch rv.Name {
		case "&&":
			return boolCell(a != 0 && b != 0)
		case "||":
			return boolCell(a != 0 || b != 0)
		case "!=":
			return boolCell(a != b)
		}
		return 0
	case mir.RvUnaryOp:
		if len(rv.Args) == 0 {
			return 0
		}
		v := fr.val(rv.Args[0])
		switch rv.Name {
		case "-":
			return -v
		case "~":
			return ^v
		case "!":
			return boolCell(v == 0)
		}
		return 0
	case mir.RvCast:
		if len(rv.Args) == 0 {
			return 0
		}
		return fr.val(rv.Args[0]) // the shared 64-bit cell already holds the value; narrowing is a real backend's concern
	default:
		// RvField/RvEnumTag/RvArrayIdx need aggregate layout knowledge
		// this scalar-only debug model doesn't carry.
		return 0
	}
}
