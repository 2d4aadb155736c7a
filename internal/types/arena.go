package types

import "github.com/rask-lang/rask-sub001/internal/ast"

// TypeDefId is the dense key into the arena.
type TypeDefId uint32

// TypeDefKind distinguishes which declaration shape a TypeDef models.
type TypeDefKind int

const (
	DefStruct TypeDefKind = iota
	DefEnum
	DefUnion
	DefTrait
)

// Field is one field of a struct/union, or one payload field of an
// enum variant.
type Field struct {
	Name string
	Type Type
}

// Method is one method's signature, as consulted by method resolution
// (§4.6): "methods defined on the type's TypeDef".
type Method struct {
	Name      string
	TakesSelf bool
	Params    []Type
	Ret       Type
}

// Variant is one enum variant: a tag index plus its payload fields.
type Variant struct {
	Name   string
	Tag    int
	Fields []Field
}

// TypeDef is the declared shape behind a Named type: its fields (for
// struct/union), variants (for enum), and methods gathered from impl
// blocks.
type TypeDef struct {
	Id         TypeDefId
	Kind       TypeDefKind
	Name       string
	TypeParams []string
	Fields     []Field
	Variants   []Variant
	Methods    []Method
	Decl       ast.Decl
}

// FieldByName looks up a field by name.
func (td *TypeDef) FieldByName(name string) (Field, bool) {
	for _, f := range td.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MethodByName looks up a method by name.
func (td *TypeDef) MethodByName(name string) (Method, bool) {
	for _, m := range td.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// VariantByName looks up an enum variant by name.
func (td *TypeDef) VariantByName(name string) (Variant, bool) {
	for _, v := range td.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// Arena owns every TypeDef declared in a compilation, keyed densely
// by TypeDefId so the layout engine's cache and the monomorphizer's
// specialization cache can both use plain slice/map indexing.
type Arena struct {
	defs []*TypeDef
	byName map[string]TypeDefId
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{byName: make(map[string]TypeDefId)}
}

// Declare registers a new TypeDef and returns its id.
func (a *Arena) Declare(kind TypeDefKind, name string, decl ast.Decl) *TypeDef {
	id := TypeDefId(len(a.defs))
	td := &TypeDef{Id: id, Kind: kind, Name: name, Decl: decl}
	a.defs = append(a.defs, td)
	a.byName[name] = id
	return td
}

// Get retrieves a TypeDef by id.
func (a *Arena) Get(id TypeDefId) *TypeDef { return a.defs[id] }

// Lookup retrieves a TypeDef by declared name.
func (a *Arena) Lookup(name string) (*TypeDef, bool) {
	id, ok := a.byName[name]
	if !ok {
		return nil, false
	}
	return a.defs[id], true
}

// All returns every declared TypeDef in declaration order.
func (a *Arena) All() []*TypeDef { return a.defs }
