// Package codegen implements §4.12: lowering monomorphized MIR into a
// target-independent intermediate — function signatures, block ids,
// value references, instructions — and resolving every call site
// (user function or stdlib/runtime builtin) to a codegen FuncId
// through a per-module name table. Instruction selection, register
// allocation, and object-file emission are delegated to whatever
// Backend is plugged in; this package only builds the IR and the
// dispatch decisions a backend consumes.
//
// The pass-over-MIR shape mirrors internal/mir/pass's "one function,
// walk its blocks, accumulate a result" structure; the name-table
// construction generalizes internal/registry's alias-then-lookup
// shape (register every known name once, resolve by name afterwards)
// from package names to callee names.
package codegen

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/layout"
	"github.com/rask-lang/rask-sub001/internal/mir"
)

// FuncId identifies one callable entity in a Module: either a
// lowered user function/closure, or a stdlib/runtime dispatch entry.
type FuncId int

// CallTarget is what a Call instruction's Callee resolves to.
type CallTarget struct {
	Id       FuncId
	Name     string // the resolved symbol: a user function name or a DispatchEntry.CRuntime
	IsRuntime bool
	Entry    DispatchEntry // valid iff IsRuntime
}

// Call is a resolved call site: the original MIR statement's operands
// plus the CallTarget the name table settled on.
type Call struct {
	Stmt   *mir.Statement
	Target CallTarget
}

// Function is one codegen-level function: the underlying lowered MIR
// body, its resolved calls, and its ABI-facing spill layout for
// aggregate locals (every scalar already lives in the shared 64-bit
// cell representation §4.12 specifies, so only aggregates need a
// stack-slot entry here).
type Function struct {
	MIR   *mir.Function
	Calls []*Call

	// SpillSlots maps a Local whose type is an aggregate (not scalar,
	// not one of layout's opaque-pointer stdlib types) to its stack
	// offset within the function's spill frame, per §4.12's "aggregates
	// live in stack slots referenced by pointer."
	SpillSlots map[mir.LocalId]int
	FrameSize  int
}

// Module is every lowered function in a compilation unit, plus the
// name table used to resolve their calls.
type Module struct {
	Functions []*Function
	Names     *NameTable
}

// NameTable maps every callable name reachable from a Module to a
// FuncId: user-defined functions/closures first, then the builtin
// dispatch table, with user definitions shadowing a same-named
// runtime entry per §4.12 ("user-defined functions registered
// afterwards shadow any matching runtime entry").
type NameTable struct {
	byName map[string]CallTarget
	next   FuncId
}

func newNameTable() *NameTable {
	return &NameTable{byName: make(map[string]CallTarget)}
}

// registerUser adds a user-defined function/closure, overwriting any
// dispatch-table entry already registered under the same name.
func (nt *NameTable) registerUser(name string) CallTarget {
	id := nt.next
	nt.next++
	t := CallTarget{Id: id, Name: name}
	nt.byName[name] = t
	return t
}

// resolve looks up callee (optionally qualified by the receiver's
// static type name for an ambiguous "method.X" call), registering a
// fresh runtime CallTarget the first time a given dispatch entry is
// used so repeated calls to the same stdlib method share one FuncId.
//
// A "method.X" callee is tried three ways, in order: as a bare name
// (a free function or closure reference never has this shape, but a
// direct StGlobalRef-style callee could); as "<recvType>.X", matching
// how BuildFile names an impl block's methods (so a user-defined
// `impl Point { func add(...) }` shadows any same-named stdlib entry,
// per §4.12); then the stdlib/runtime dispatch table.
func (nt *NameTable) resolve(callee, recvType string) (CallTarget, error) {
	if t, ok := nt.byName[callee]; ok {
		return t, nil
	}
	if recvType != "" {
		if mname := methodName(callee); mname != callee {
			if t, ok := nt.byName[recvType+"."+mname]; ok {
				return t, nil
			}
		}
	}
	entry, ok := lookupDispatch(callee, recvType)
	if !ok {
		return CallTarget{}, fmt.Errorf("codegen: no user function or dispatch entry for callee %q (receiver %q)", callee, recvType)
	}
	key := entry.CRuntime
	if t, ok := nt.byName[key]; ok {
		return t, nil
	}
	id := nt.next
	nt.next++
	t := CallTarget{Id: id, Name: entry.CRuntime, IsRuntime: true, Entry: entry}
	nt.byName[key] = t
	return t, nil
}

// Build lowers prog into a Module: registers every user function's
// name first (so later-seen dispatch entries never shadow a
// same-named user definition, regardless of declaration order), then
// resolves every StCall/StClosureCall callee to a CallTarget and
// computes each function's aggregate spill layout.
//
// eng is accepted (rather than computing layouts ad hoc) so a caller
// that already ran §4.8 layout over the monomorphized type arena can
// share that Engine's cache; this pass itself only needs a local's
// spill slot to exist at a stable address; MIR locals carry a
// type *name*, not the types.Type eng.Of needs, so today every
// non-scalar, non-opaque local gets a conservative single-slot
// reservation rather than eng's real size/align — wiring the concrete
// types.Type through the MIR builder is the natural next step once a
// caller needs exact aggregate frame sizes.
func Build(prog *mir.Program, eng *layout.Engine) (*Module, error) {
	nt := newNameTable()
	for _, fn := range prog.Functions {
		nt.registerUser(fn.Name)
	}

	mod := &Module{Names: nt}
	for _, fn := range prog.Functions {
		cf, err := buildFunction(fn, nt)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, cf)
	}
	return mod, nil
}

func buildFunction(fn *mir.Function, nt *NameTable) (*Function, error) {
	cf := &Function{MIR: fn, SpillSlots: make(map[mir.LocalId]int)}
	locals := make(map[mir.LocalId]mir.Local, len(fn.Locals))
	for _, l := range fn.Locals {
		locals[l.Id] = l
	}

	for _, bl := range fn.Blocks {
		for i := range bl.Stmts {
			st := &bl.Stmts[i]
			switch st.Kind {
			case mir.StCall:
				recvType := ""
				if len(st.Args) > 0 && !st.Args[0].IsConstant() {
					recvType = locals[st.Args[0].Local].TypeName
				}
				// internal/mir desugars `a + b` etc. into a
				// "method.add"-shaped StCall (ast.MethodNameFor) even
				// for primitive operands; on a scalar receiver these
				// are native arithmetic/comparison instructions, not
				// stdlib/runtime calls, so they never go through the
				// name table at all.
				if isScalarArithIntrinsic(st.Callee, recvType) {
					continue
				}
				target, err := nt.resolve(st.Callee, recvType)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", fn.Name, err)
				}
				cf.Calls = append(cf.Calls, &Call{Stmt: st, Target: target})
			// StClosureCall invokes whatever closure value its first
			// argument evaluates to at runtime — there is no static
			// symbol to resolve through the name table; the backend
			// dispatches through the closure's own stored entry point.
			}
		}
	}

	offset := 0
	for _, l := range fn.Locals {
		if l.TypeName == "" || isScalarOrOpaque(l.TypeName) {
			continue
		}
		cf.SpillSlots[l.Id] = offset
		offset += 8 // conservative: real size/align comes from eng once a concrete types.Type is threaded through; §4.12's ABI only needs an address here.
	}
	cf.FrameSize = offset
	return cf, nil
}

var scalarNames = map[string]bool{
	"bool": true, "char": true, "i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "f32": true, "f64": true,
	"()": true, "never": true,
}

// arithIntrinsicMethods mirrors ast.MethodNameFor's target set: every
// BinaryOp that desugars to a method call rather than surviving as an
// RvBinaryOp.
var arithIntrinsicMethods = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "rem": true,
	"bit_and": true, "bit_or": true, "bit_xor": true, "shl": true, "shr": true,
	"eq": true, "lt": true, "le": true, "gt": true, "ge": true,
}

// isScalarArithIntrinsic treats an arithmetic/comparison method call
// as a native instruction whenever its receiver is a known scalar, or
// when the receiver's type name isn't available at all. internal/mir
// only records a Local's TypeName from its declared source type (a
// parameter or `let` annotation); an intermediate value like a call
// result or another binary op's destination carries no TypeName, so
// `double(n) + 1`'s "+" has an empty recvType despite operating on
// i32s. Since none of §4.6's stdlib stubs define add/sub/mul/etc.,
// treating an unknown receiver as scalar is safe for every case this
// compiler can currently produce; a future operator-overloaded
// user struct sharing one of these exact method names would need
// Local.TypeName threaded through for intermediate values to be
// told apart from a scalar, which mir.Builder doesn't do today.
func isScalarArithIntrinsic(callee, recvType string) bool {
	return arithIntrinsicMethods[methodName(callee)] && (recvType == "" || scalarNames[recvType])
}

func isScalarOrOpaque(typeName string) bool {
	if scalarNames[typeName] {
		return true
	}
	switch typeName {
	case "Vec", "Map", "Set", "Pool", "File", "TcpListener", "TcpConnection",
		"ThreadHandle", "TaskHandle", "Sender", "Receiver", "Shared", "string":
		return true
	}
	return false
}
