package interp

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// BuildContext backs build.rk's `func build(ctx: BuildContext)` entry
// point (§6). It is not a Value itself — the interpreter exposes it to
// the running Rask program through a KindModule marker whose methods
// builtinCall routes here — but it accumulates exactly the state the
// CLI reads back out after `build` returns: link libraries, search
// paths, declared dependencies, and discovered tool versions.
type BuildContext struct {
	Dir string // the build.rk's directory, used to resolve relative paths

	WrittenSources map[string]string
	WrittenFiles   map[string][]byte
	Dependencies   []string
	Warnings       []string
	LinkLibraries  []string
	SearchPaths    []string
	ExtraObjects   []string
	ToolVersions   map[string]string
	CrossCompiling bool
}

func NewBuildContext(dir string) *BuildContext {
	return &BuildContext{
		Dir:            dir,
		WrittenSources: make(map[string]string),
		WrittenFiles:   make(map[string][]byte),
		ToolVersions:   make(map[string]string),
	}
}

func (bc *BuildContext) WriteSource(name, code string) { bc.WrittenSources[name] = code }

func (bc *BuildContext) WriteFile(name string, data []byte) { bc.WrittenFiles[name] = data }

func (bc *BuildContext) DeclareDependency(path string) {
	bc.Dependencies = append(bc.Dependencies, path)
}

func (bc *BuildContext) Env(name string) (string, bool) { return os.LookupEnv(name) }

func (bc *BuildContext) Warning(msg string) { bc.Warnings = append(bc.Warnings, msg) }

func (bc *BuildContext) Exec(prog string, args []string) error {
	cmd := exec.Command(prog, args...)
	cmd.Dir = bc.Dir
	return cmd.Run()
}

func (bc *BuildContext) ExecOutput(prog string, args []string) (string, error) {
	cmd := exec.Command(prog, args...)
	cmd.Dir = bc.Dir
	out, err := cmd.Output()
	return string(out), err
}

func (bc *BuildContext) FindProgram(name string) (string, bool) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return p, true
}

func (bc *BuildContext) IsCrossCompiling() bool { return bc.CrossCompiling }

func (bc *BuildContext) CompileC(sources []string, flags []string) error {
	for _, src := range sources {
		obj := src + ".o"
		args := append(append([]string{}, flags...), "-c", src, "-o", obj)
		cmd := exec.Command("cc", args...)
		cmd.Dir = bc.Dir
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("interp: compiling %s: %w", src, err)
		}
		bc.ExtraObjects = append(bc.ExtraObjects, obj)
	}
	return nil
}

func (bc *BuildContext) LinkLibrary(name string) { bc.LinkLibraries = append(bc.LinkLibraries, name) }

func (bc *BuildContext) LinkSearchPath(path string) {
	bc.SearchPaths = append(bc.SearchPaths, path)
}

func (bc *BuildContext) PkgConfig(name string) error {
	out, err := exec.Command("pkg-config", "--libs", "--cflags", name).Output()
	if err != nil {
		return fmt.Errorf("interp: pkg-config %s: %w", name, err)
	}
	bc.LinkLibraries = append(bc.LinkLibraries, string(out))
	return nil
}

func (bc *BuildContext) ToolVersion(prog, flag string) (string, error) {
	out, err := exec.Command(prog, flag).Output()
	if err != nil {
		return "", err
	}
	v := string(out)
	bc.ToolVersions[prog] = v
	return v, nil
}

// StepIsCached reports whether a step's body can be skipped: true when
// every file in outputs is newer than every file in inputs (the caller,
// which owns the interpreter, runs the `step` closure otherwise), per §6's "input
// hashing and cache" — a mtime comparison stands in for a hash
// comparison here since build.rk steps are expected to be
// idempotent given identical inputs either way.
func (bc *BuildContext) StepIsCached(inputs, outputs []string) bool {
	if len(outputs) == 0 {
		return false
	}
	oldestOutput, err := latestMod(outputs)
	if err != nil {
		return false
	}
	for _, in := range inputs {
		st, err := os.Stat(filepath.Join(bc.Dir, in))
		if err != nil {
			return false
		}
		if st.ModTime().After(oldestOutput) {
			return false
		}
	}
	return true
}

func latestMod(paths []string) (t timeWrapper, err error) {
	var latest timeWrapper
	for i, p := range paths {
		st, e := os.Stat(p)
		if e != nil {
			return latest, e
		}
		mt := timeWrapper(st.ModTime().UnixNano())
		if i == 0 || mt < latest {
			latest = mt
		}
	}
	return latest, nil
}

// timeWrapper avoids importing time just for one comparison helper.
type timeWrapper int64

func (t timeWrapper) After(u timeWrapper) bool { return t > u }

// buildCtxMethod dispatches a build.rk-level `ctx.<method>(...)` call to
// its BuildContext implementation (§6). `step`'s caching check happens
// here too; running the step's body closure back through the
// interpreter is the caller's job (evalMethodCallExtra passes the
// already-evaluated closure result through when the step isn't cached).
func buildCtxMethod(recv Value, name string, args []Value) (Value, bool, error) {
	bc := recv.Build
	switch name {
	case "write_source":
		bc.WriteSource(args[0].S, args[1].S)
		return Unit(), true, nil
	case "write_file":
		bc.WriteFile(args[0].S, []byte(args[1].S))
		return Unit(), true, nil
	case "declare_dependency":
		bc.DeclareDependency(args[0].S)
		return Unit(), true, nil
	case "env":
		v, ok := bc.Env(args[0].S)
		if !ok {
			return NoneValue(), true, nil
		}
		return SomeValue(Str(v)), true, nil
	case "warning":
		bc.Warning(args[0].S)
		return Unit(), true, nil
	case "exec":
		err := bc.Exec(args[0].S, vecOfStrings(args[1]))
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Unit()}}, true, nil
	case "exec_output":
		out, err := bc.ExecOutput(args[0].S, vecOfStrings(args[1]))
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Str(out)}}, true, nil
	case "find_program":
		p, ok := bc.FindProgram(args[0].S)
		if !ok {
			return NoneValue(), true, nil
		}
		return SomeValue(Str(p)), true, nil
	case "is_cross_compiling":
		return Bool(bc.IsCrossCompiling()), true, nil
	case "compile_c":
		err := bc.CompileC(vecOfStrings(args[0]), vecOfStrings(args[1]))
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Unit()}}, true, nil
	case "link_library":
		bc.LinkLibrary(args[0].S)
		return Unit(), true, nil
	case "link_search_path":
		bc.LinkSearchPath(args[0].S)
		return Unit(), true, nil
	case "pkg_config":
		err := bc.PkgConfig(args[0].S)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Unit()}}, true, nil
	case "tool_version":
		v, err := bc.ToolVersion(args[0].S, args[1].S)
		if err != nil {
			return Value{Kind: KindResult, Result: &ResultVal{IsOk: false, Err: Str(err.Error())}}, true, nil
		}
		return Value{Kind: KindResult, Result: &ResultVal{IsOk: true, Ok: Str(v)}}, true, nil
	default:
		return Value{}, false, nil
	}
}

// RunBuildScript invokes build.rk's top-level `build(ctx)` function
// against a fresh BuildContext rooted at dir, returning the populated
// context for the CLI to read link libraries, search paths, declared
// dependencies, and tool versions back out of.
func (in *Interp) RunBuildScript(dir string) (*BuildContext, error) {
	fn, ok := in.funcs["build"]
	if !ok {
		return nil, fmt.Errorf("interp: build.rk has no top-level build(ctx) function")
	}
	bc := NewBuildContext(dir)
	ctxVal := Value{Kind: KindModule, Build: bc, TypeName: "BuildContext"}
	if _, err := in.callFuncDecl(fn, []Value{ctxVal}, nil); err != nil {
		return bc, err
	}
	return bc, nil
}

// evalBuildStep implements `ctx.step(name, inputs, outputs) { body }`:
// skip running body when every output is already newer than every
// input (§6's cached build step), otherwise run it via the attached
// trailing closure.
func (in *Interp) evalBuildStep(bc *BuildContext, args []Value) (Value, error) {
	if len(args) < 4 {
		return Unit(), fmt.Errorf("interp: step requires (name, inputs, outputs, body)")
	}
	inputs := vecOfStrings(args[1])
	outputs := vecOfStrings(args[2])
	if bc.StepIsCached(inputs, outputs) {
		return Unit(), nil
	}
	body := args[3]
	if body.Kind != KindClosure {
		return Unit(), fmt.Errorf("interp: step body is not callable")
	}
	return in.callClosure(body.Closure, nil)
}

// vecOfStrings unpacks a Vec<string> argument into a Go []string;
// `step`'s inputs/outputs and `exec`'s argv all take this shape.
func vecOfStrings(v Value) []string {
	if v.Kind != KindVec {
		return nil
	}
	out := make([]string, len(v.Vec.Elems))
	for i, e := range v.Vec.Elems {
		out[i] = e.S
	}
	return out
}
