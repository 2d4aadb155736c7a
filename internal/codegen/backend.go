package codegen

import "fmt"

// Backend is §4.12's instruction-selection/register-allocation/object-
// emission seam: Build only produces the target-independent IR and
// resolved call table; everything below that line is a Backend's
// job. The only Backend this package ships is DebugBackend — no
// object-file-emitting library was available to wire in, so golden
// tests run a function through the IR directly instead.
type Backend interface {
	Name() string
	// Run executes the named function within mod, passing args as raw
	// 64-bit cells (§4.12's shared scalar representation) and
	// returning its result cell (0 for a unit-returning function).
	Run(mod *Module, fnName string, args []int64) (int64, error)
}

// RuntimeFunc is a native implementation of one dispatch-table entry,
// keyed by DispatchEntry.CRuntime, for DebugBackend to call in place
// of the real linked C symbol.
type RuntimeFunc func(args []int64) int64

// DebugBackend interprets a Module's MIR bodies directly over an
// all-int64 cell representation, calling into a supplied runtime stub
// table instead of linked native code. It exists for golden-output
// testing of codegen's call resolution and control-flow lowering
// without an object-file toolchain in the loop.
type DebugBackend struct {
	Runtime map[string]RuntimeFunc

	// closures fakes a heap for StClosureCreate/StClosureCall: a real
	// backend stores a function pointer plus capture block behind the
	// handle it hands back; this one just keys a Go map by that
	// handle since there's no actual memory to address.
	closures map[int64]closureEntry
}

type closureEntry struct {
	target   string
	captures []int64
}

func NewDebugBackend(runtime map[string]RuntimeFunc) *DebugBackend {
	return &DebugBackend{Runtime: runtime, closures: make(map[int64]closureEntry)}
}

func (d *DebugBackend) registerClosure(handle int64, target string, captures []int64) {
	d.closures[handle] = closureEntry{target: target, captures: captures}
}

func (d *DebugBackend) lookupClosure(handle int64) (string, []int64, bool) {
	e, ok := d.closures[handle]
	return e.target, e.captures, ok
}

func (*DebugBackend) Name() string { return "debug" }

func (d *DebugBackend) Run(mod *Module, fnName string, args []int64) (int64, error) {
	target := findFunction(mod, fnName)
	if target == nil {
		return 0, fmt.Errorf("codegen/debugbackend: no function %q in module", fnName)
	}
	fr := newFrame(target, args, nil)
	return fr.run(mod, d)
}

func findFunction(mod *Module, name string) *Function {
	for _, f := range mod.Functions {
		if f.MIR.Name == name {
			return f
		}
	}
	return nil
}
