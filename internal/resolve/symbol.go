// Package resolve implements §4.5: the name resolver that turns a
// package's declarations (plus, optionally, imported packages) into a
// symbol table and a NodeId -> SymbolId resolution map.
//
// The scope-stack shape here generalizes the teacher's matcher scope
// stack (hierarchical scopes pushed/popped around a structural walk)
// from "scopes over a query's structural nesting" to "scopes over
// module/function/block nesting".
package resolve

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/source"
)

// SymbolId is the dense key identifying one declared name.
type SymbolId uint32

// SymbolKind distinguishes what a symbol names.
type SymbolKind int

const (
	SymFunc SymbolKind = iota
	SymStruct
	SymEnum
	SymUnion
	SymTrait
	SymConst
	SymLocal
	SymParam
	SymImport
)

func (k SymbolKind) String() string {
	switch k {
	case SymFunc:
		return "func"
	case SymStruct:
		return "struct"
	case SymEnum:
		return "enum"
	case SymUnion:
		return "union"
	case SymTrait:
		return "trait"
	case SymConst:
		return "const"
	case SymLocal:
		return "local"
	case SymParam:
		return "param"
	case SymImport:
		return "import"
	default:
		return "symbol"
	}
}

// Symbol is one resolved declaration.
type Symbol struct {
	Id      SymbolId
	Name    string // as bound in its scope (may differ from Decl's own name for `PKG$Name` copies)
	Kind    SymbolKind
	Decl    ast.Decl // nil for parameter/local bindings that have no Decl of their own
	Package string   // "" for the current package
}

// Result is the name resolver's output: the full symbol table plus a
// map from every resolved NodeId (identifier, field access, method
// call receiver, or pattern constructor) to the SymbolId it names.
type Result struct {
	Symbols     []Symbol
	Resolutions map[source.NodeId]SymbolId
}

func (r *Result) Symbol(id SymbolId) Symbol { return r.Symbols[id] }
