package types

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

var primByName = map[string]Kind{
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "i128": I128,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "u128": U128,
	"f32": F32, "f64": F64, "bool": Bool, "char": Char,
}

// BuildArena declares a TypeDef for every struct/enum/union in decls
// (a forward pass, so mutually-referential types resolve), then fills
// in field/variant/method shapes on a second pass, and finally merges
// impl-block methods onto their target's TypeDef.
func BuildArena(decls []ast.Decl) (*Arena, []error) {
	a := NewArena()
	var errs []error

	for _, d := range decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			a.Declare(DefStruct, n.Name, n)
		case *ast.EnumDecl:
			a.Declare(DefEnum, n.Name, n)
		case *ast.UnionDecl:
			a.Declare(DefUnion, n.Name, n)
		case *ast.TraitDecl:
			a.Declare(DefTrait, n.Name, n)
		}
	}

	resolveTypeExpr := func(te ast.TypeExpr) Type { return typeExprToType(te, a) }

	for _, d := range decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			td, _ := a.Lookup(n.Name)
			td.TypeParams = n.TypeParams
			for _, f := range n.Fields {
				td.Fields = append(td.Fields, Field{Name: f.Name, Type: resolveTypeExpr(f.Type)})
			}
		case *ast.UnionDecl:
			td, _ := a.Lookup(n.Name)
			for _, f := range n.Fields {
				td.Fields = append(td.Fields, Field{Name: f.Name, Type: resolveTypeExpr(f.Type)})
			}
		case *ast.EnumDecl:
			td, _ := a.Lookup(n.Name)
			td.TypeParams = n.TypeParams
			for i, v := range n.Variants {
				variant := Variant{Name: v.Name, Tag: i}
				for _, f := range v.Fields {
					variant.Fields = append(variant.Fields, Field{Name: f.Name, Type: resolveTypeExpr(f.Type)})
				}
				td.Variants = append(td.Variants, variant)
			}
		}
	}

	for _, d := range decls {
		impl, ok := d.(*ast.ImplDecl)
		if !ok {
			continue
		}
		named, ok := impl.TargetType.(*ast.NamedTypeExpr)
		if !ok {
			errs = append(errs, fmt.Errorf("types: impl target %s is not a named type", impl.TargetType))
			continue
		}
		td, ok := a.Lookup(named.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("types: impl for undeclared type %q", named.Name))
			continue
		}
		for _, m := range impl.Methods {
			method := Method{Name: m.Name, Ret: UnitType}
			if m.Ret != nil {
				method.Ret = resolveTypeExpr(m.Ret)
			}
			for _, p := range m.Params {
				if p.Mode == ast.ModeSelf {
					method.TakesSelf = true
					continue
				}
				method.Params = append(method.Params, resolveTypeExpr(p.Type))
			}
			td.Methods = append(td.Methods, method)
		}
	}

	return a, errs
}

// typeExprToType converts a syntactic type expression into a
// semantic Type, resolving named references against the arena.
func typeExprToType(te ast.TypeExpr, a *Arena) Type {
	if te == nil {
		return UnitType
	}
	switch n := te.(type) {
	case *ast.NamedTypeExpr:
		if k, ok := primByName[n.Name]; ok {
			return &Primitive{Kind: k}
		}
		if n.Name == "string" {
			return &StringType{}
		}
		if td, ok := a.Lookup(n.Name); ok {
			if len(n.Args) == 0 {
				return &Named{Def: td.Id, Name: n.Name}
			}
			args := make([]Type, len(n.Args))
			for i, arg := range n.Args {
				args[i] = typeExprToType(arg, a)
			}
			return &Generic{Base: &Named{Def: td.Id, Name: n.Name}, Args: args}
		}
		// Builtin stdlib generics (Vec, Map, Option, ...) and otherwise
		// undeclared names resolve to an opaque named placeholder; the
		// stdlib stub registry (internal/stdlib) supplies their methods,
		// via the StdlibLookup hook constraint.go's resolveNamed consults
		// when the arena has no matching declaration.
		if len(n.Args) == 0 {
			return &Named{Name: n.Name}
		}
		args := make([]Type, len(n.Args))
		for i, arg := range n.Args {
			args[i] = typeExprToType(arg, a)
		}
		return &Generic{Base: &Named{Name: n.Name}, Args: args}
	case *ast.TupleTypeExpr:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = typeExprToType(e, a)
		}
		return &Tuple{Elems: elems}
	case *ast.ArrayTypeExpr:
		return &Array{Elem: typeExprToType(n.Elem, a), Len: n.Len}
	case *ast.SliceTypeExpr:
		return &Slice{Elem: typeExprToType(n.Elem, a)}
	case *ast.RefTypeExpr:
		if n.IsFn {
			params := make([]Type, len(n.Params))
			for i, p := range n.Params {
				params[i] = typeExprToType(p, a)
			}
			ret := Type(UnitType)
			if n.Ret != nil {
				ret = typeExprToType(n.Ret, a)
			}
			return &Fn{Params: params, Ret: ret}
		}
		return &Ptr{Pointee: typeExprToType(n.Pointee, a)}
	default:
		return &ErrorType{}
	}
}
