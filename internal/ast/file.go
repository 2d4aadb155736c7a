package ast

import "github.com/rask-lang/rask-sub001/internal/source"

// File is one parsed source file: its top-level declarations in source
// order, plus the parse errors already folded into diag.Bag by the
// caller.
type File struct {
	Path  string
	Decls []Decl
}

// NewBase constructs the embeddable Base every concrete node carries.
// Exported so internal/parser and internal/desugar (which mints fresh
// nodes) can both build nodes without reaching into unexported fields.
func NewBase(id source.NodeId, span source.Span) Base {
	return Base{Id: id, SpanVal: span}
}
