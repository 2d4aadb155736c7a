// Package stdlib implements the standard-library stub registry (§6
// "Stub registry format"): the struct/enum/impl declarations and free
// functions the frontend consults to populate builtin generic types
// (Vec, Map, Pool, string, Option, Result, File, TcpListener,
// TcpConnection, Channel, Sender, Receiver, Shared, Instant, Duration,
// Rng) without those types ever appearing as ordinary source
// declarations.
//
// The registry follows the same process-wide, mutex-protected catalog
// shape as the teacher's language-provider catalog
// (providers/catalog/catalog.go): every stub is registered once, on the
// first Lookup or Names call (guarded by a sync.Once), and looked up by
// name afterwards. §9's "module-level mutable state" note calls this
// out explicitly for the stub registry. internal/types does not import
// this package: typedef.go's init() installs the types.StdlibLookup
// hook, so importers pull this package in for that side effect.
package stdlib

import (
	"sort"
	"sync"

	"github.com/rask-lang/rask-sub001/internal/source"
)

// Param is one `(name, type)` entry in a stub method's parameter list,
// per §6's exact method shape.
type Param struct {
	Name string
	Type StubTypeExpr
}

// StubTypeExpr is a stub's syntactic type reference: either a bare
// builtin/struct name or a type-parameter name (`T`, `K`, `V`, ...)
// from the owning StubType's TypeParams, optionally instantiated with
// its own arguments (e.g. `Option<T>` appearing inside `Vec<T>`'s
// `pop` return type).
type StubTypeExpr struct {
	Name string
	Args []StubTypeExpr
}

// T builds a bare, argument-less type reference.
func T(name string) StubTypeExpr { return StubTypeExpr{Name: name} }

// G builds a generic instantiation `name<args...>`.
func G(name string, args ...StubTypeExpr) StubTypeExpr {
	return StubTypeExpr{Name: name, Args: args}
}

// StubMethod is one method entry, carrying exactly the fields §6
// names: `(name, takes_self, params, ret_ty, source_file, name_span)`,
// plus the doc comment block attached to it.
type StubMethod struct {
	Name       string
	TakesSelf  bool
	Params     []Param
	Ret        StubTypeExpr
	SourceFile string
	NameSpan   source.Span
	Doc        string
}

// StubField is one field of a stub struct/enum-variant payload.
type StubField struct {
	Name string
	Type StubTypeExpr
	Doc  string
}

// StubVariant is one enum-shaped stub's variant (Option::Some/None,
// Result::Ok/Err).
type StubVariant struct {
	Name   string
	Fields []StubField
}

// StubKind distinguishes a struct-shaped stub from an enum-shaped one;
// method resolution (§4.6 step 3) only needs fields+methods either way,
// but enum-shaped stubs additionally expose variant constructors to the
// resolver and interpreter.
type StubKind int

const (
	StubStruct StubKind = iota
	StubEnum
)

// StubType is one stdlib declaration: a struct or enum shape plus its
// impl-block methods, exactly the unit §6 says is "consumed by the
// frontend to populate builtin type methods".
type StubType struct {
	Name       string
	Kind       StubKind
	TypeParams []string
	Fields     []StubField
	Variants   []StubVariant
	Methods    []StubMethod
	Doc        string
	SourceFile string
}

var (
	mu      sync.RWMutex
	byName  = make(map[string]*StubType)
	loadOne sync.Once
)

// Register adds or replaces a stub declaration in the process-wide
// catalog. Safe for concurrent use.
func Register(st *StubType) {
	if st == nil || st.Name == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	byName[st.Name] = st
}

// Lookup retrieves a stub declaration by its builtin name, loading the
// builtin catalog on first access per §9.
func Lookup(name string) (*StubType, bool) {
	loadOne.Do(registerBuiltins)
	mu.RLock()
	defer mu.RUnlock()
	st, ok := byName[name]
	return st, ok
}

// Names returns every registered stub name, sorted, mainly for
// `describe --all` and tests.
func Names() []string {
	loadOne.Do(registerBuiltins)
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
