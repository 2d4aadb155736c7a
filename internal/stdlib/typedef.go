package stdlib

import (
	"github.com/rask-lang/rask-sub001/internal/types"
)

// init wires this package's catalog into the type checker's method
// resolution fallback (§4.6 step 3): internal/types never imports
// internal/stdlib directly (that would cycle, since this file imports
// internal/types to build TypeDef values from the catalog), so it
// exposes a settable hook instead and any entry point that needs
// builtin-generic method resolution blank-imports this package to
// populate it, the same pattern database/sql uses for drivers.
func init() {
	types.StdlibLookup = LookupTypeDef
}

var primKinds = map[string]types.Kind{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	"f32": types.F32, "f64": types.F64, "bool": types.Bool, "char": types.Char,
}

var defCache = make(map[string]*types.TypeDef)

// LookupTypeDef converts a catalog entry into a *types.TypeDef the
// constraint solver can consult exactly like a user-declared struct or
// enum's arena entry. Results are cached by name: the solver calls this
// once per distinct receiver name per compilation, and every caller
// must see the same TypeDef pointer for a given name so repeated
// HasMethod constraints against the same builtin type share one
// identity.
func LookupTypeDef(name string) (*types.TypeDef, bool) {
	if td, ok := defCache[name]; ok {
		return td, true
	}
	st, ok := Lookup(name)
	if !ok {
		return nil, false
	}
	td := &types.TypeDef{
		Name:       st.Name,
		TypeParams: st.TypeParams,
	}
	switch st.Kind {
	case StubEnum:
		td.Kind = types.DefEnum
		for i, v := range st.Variants {
			variant := types.Variant{Name: v.Name, Tag: i}
			for _, f := range v.Fields {
				variant.Fields = append(variant.Fields, types.Field{Name: f.Name, Type: toType(f.Type)})
			}
			td.Variants = append(td.Variants, variant)
		}
	default:
		td.Kind = types.DefStruct
		for _, f := range st.Fields {
			td.Fields = append(td.Fields, types.Field{Name: f.Name, Type: toType(f.Type)})
		}
	}
	for _, m := range st.Methods {
		method := types.Method{Name: m.Name, TakesSelf: m.TakesSelf, Ret: toType(m.Ret)}
		for _, p := range m.Params {
			method.Params = append(method.Params, toType(p.Type))
		}
		td.Methods = append(td.Methods, method)
	}
	defCache[name] = td
	return td, true
}

// toType converts a stub's syntactic type reference into a semantic
// types.Type, mirroring internal/types/build.go's typeExprToType: known
// primitives and "string" resolve directly, a bare name matching one of
// the owning type's parameters (or any other unrecognized bare name,
// including another stub type) becomes an opaque Named, and any name
// carrying arguments becomes a Generic.
func toType(se StubTypeExpr) types.Type {
	if se.Name == "" || se.Name == "()" {
		return types.UnitType
	}
	if k, ok := primKinds[se.Name]; ok {
		return &types.Primitive{Kind: k}
	}
	if se.Name == "string" && len(se.Args) == 0 {
		return &types.StringType{}
	}
	if len(se.Args) == 0 {
		return &types.Named{Name: se.Name}
	}
	args := make([]types.Type, len(se.Args))
	for i, a := range se.Args {
		args[i] = toType(a)
	}
	return &types.Generic{Base: &types.Named{Name: se.Name}, Args: args}
}
