// Package layout implements §4.8: given a semantic Type, compute its
// (size, align) and, for aggregates, each field's byte offset. The
// arithmetic itself has no teacher analog — bytemath.go in the source
// corpus lends its name to the concern, not its body — so the shape
// here (a memoizing Engine keyed by canonical type string, guarded
// against cyclic types lacking indirection) follows the same
// cache-then-compute idiom internal/types' Arena and internal/mono's
// specialization cache already use.
package layout

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/types"
)

// Layout is a value's size/alignment, plus (for tuples, structs, and
// enum/Option/Result payloads) the byte offset of each field in
// declaration order.
type Layout struct {
	Size  int
	Align int

	// Offsets holds one entry per field, parallel to the struct's
	// TypeDef.Fields / the tuple's Elems / an enum variant's payload
	// Fields. Empty for scalar and opaque-pointer types.
	Offsets []int

	// TagSize is 1 or 2 for an enum/Option/Result, 0 otherwise
	// (including the niche-optimized Option<Handle>).
	TagSize int
	// PayloadOffset is where the (possibly multi-field) payload begins,
	// meaningful only when TagSize > 0.
	PayloadOffset int
}

// opaquePointerTypes are builtin generic/named stdlib types the
// codegen ABI always represents as a single heap pointer or packed
// handle, per §2's value-representation note and §4.8's Handle rule.
var opaquePointerTypes = map[string]bool{
	"Vec": true, "Map": true, "Set": true, "Pool": true,
	"File": true, "TcpListener": true, "TcpConnection": true,
	"ThreadHandle": true, "TaskHandle": true,
	"Sender": true, "Receiver": true, "Shared": true,
}

// Engine computes and caches layouts against one compilation's type
// arena.
type Engine struct {
	arena   *types.Arena
	cache   map[string]*Layout
	inStack map[string]bool
}

// NewEngine creates a layout engine backed by arena.
func NewEngine(arena *types.Arena) *Engine {
	return &Engine{arena: arena, cache: make(map[string]*Layout), inStack: make(map[string]bool)}
}

// Of computes t's layout.
func (e *Engine) Of(t types.Type) (*Layout, error) {
	return e.layout(t, nil)
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// layout resolves t against subst (a generic type-parameter binding
// in scope, or nil), then computes and caches its layout. Every
// recursive descent — into a field, a tuple element, an array element,
// a generic argument — re-enters through here, so the cycle guard and
// the memo cache both see the fully-resolved type at every level.
func (e *Engine) layout(t types.Type, subst map[string]types.Type) (*Layout, error) {
	t = applySubst(t, subst)
	key := t.String()

	if l, ok := e.cache[key]; ok {
		return l, nil
	}
	if e.inStack[key] {
		return nil, fmt.Errorf("layout: type %s is cyclic without an indirection", key)
	}
	e.inStack[key] = true
	l, err := e.compute(t)
	delete(e.inStack, key)
	if err != nil {
		return nil, err
	}
	e.cache[key] = l
	return l, nil
}

// compute lays out t, which has already been substituted and is not
// (yet) cached. Nested types it needs to recurse into are still
// resolved through layout, not computed directly.
func (e *Engine) compute(t types.Type) (*Layout, error) {
	switch n := t.(type) {
	case *types.Primitive:
		switch n.Kind {
		case types.Unit, types.Never:
			return &Layout{Size: 0, Align: 1}, nil
		case types.I128, types.U128:
			return &Layout{Size: 16, Align: 16}, nil
		default:
			return &Layout{Size: 8, Align: 8}, nil
		}
	case *types.StringType:
		return &Layout{Size: 8, Align: 8}, nil
	case *types.Slice:
		return &Layout{Size: 16, Align: 8}, nil
	case *types.Ptr:
		return &Layout{Size: 8, Align: 8}, nil
	case *types.Fn:
		return &Layout{Size: 8, Align: 8}, nil
	case *types.Tuple:
		size, align, offsets, err := e.layoutSequence(n.Elems, nil)
		if err != nil {
			return nil, err
		}
		return &Layout{Size: size, Align: align, Offsets: offsets}, nil
	case *types.Array:
		el, err := e.layout(n.Elem, nil)
		if err != nil {
			return nil, err
		}
		return &Layout{Size: el.Size * n.Len, Align: el.Align}, nil
	case *types.Named:
		return e.layoutNamed(n, nil)
	case *types.Generic:
		return e.layoutGeneric(n)
	default:
		return nil, fmt.Errorf("layout: cannot lay out unresolved type %s", t.String())
	}
}

// layoutSequence lays out fieldTypes left to right under subst,
// inserting per-field alignment padding, and rounds the total to the
// max field alignment (§4.8's tuple/struct rule).
func (e *Engine) layoutSequence(fieldTypes []types.Type, subst map[string]types.Type) (size, align int, offsets []int, err error) {
	align = 1
	offset := 0
	offsets = make([]int, len(fieldTypes))
	for i, ft := range fieldTypes {
		fl, ferr := e.layout(ft, subst)
		if ferr != nil {
			return 0, 0, nil, ferr
		}
		offset = alignUp(offset, fl.Align)
		offsets[i] = offset
		offset += fl.Size
		if fl.Align > align {
			align = fl.Align
		}
	}
	return alignUp(offset, align), align, offsets, nil
}

func fieldTypesOf(fields []types.Field) []types.Type {
	ts := make([]types.Type, len(fields))
	for i, f := range fields {
		ts[i] = f.Type
	}
	return ts
}

// layoutNamed resolves n against the arena and lays out its
// declaration. explicitArgs is the Generic's argument list when n was
// reached through a Generic{Base: n, Args: ...}; it seeds the
// type-parameter substitution for n's own body.
func (e *Engine) layoutNamed(n *types.Named, explicitArgs []types.Type) (*Layout, error) {
	if n.Name == "Handle" || opaquePointerTypes[n.Name] {
		return &Layout{Size: 8, Align: 8}, nil
	}

	td, ok := e.arena.Lookup(n.Name)
	if !ok {
		return nil, fmt.Errorf("layout: unknown type %q", n.Name)
	}

	var inner map[string]types.Type
	if len(explicitArgs) > 0 && len(td.TypeParams) == len(explicitArgs) {
		inner = make(map[string]types.Type, len(td.TypeParams))
		for i, p := range td.TypeParams {
			inner[p] = explicitArgs[i]
		}
	}

	switch td.Kind {
	case types.DefStruct:
		size, align, offsets, err := e.layoutSequence(fieldTypesOf(td.Fields), inner)
		if err != nil {
			return nil, err
		}
		return &Layout{Size: size, Align: align, Offsets: offsets}, nil
	case types.DefUnion:
		size, align := 0, 1
		for _, f := range td.Fields {
			fl, err := e.layout(f.Type, inner)
			if err != nil {
				return nil, err
			}
			if fl.Size > size {
				size = fl.Size
			}
			if fl.Align > align {
				align = fl.Align
			}
		}
		return &Layout{Size: alignUp(size, align), Align: align}, nil
	case types.DefEnum:
		return e.layoutEnum(td.Variants, inner)
	case types.DefTrait:
		// A trait object is a fat pointer: {data ptr, vtable ptr}.
		return &Layout{Size: 16, Align: 8}, nil
	default:
		return nil, fmt.Errorf("layout: unknown type %q", n.Name)
	}
}

// layoutEnum implements §4.8's enum rule: a tag (u8 for <= 256
// variants, else u16), padding up to the widest variant payload's
// alignment, then the payload itself, with the whole enum's size
// rounded up to its own alignment.
func (e *Engine) layoutEnum(variants []types.Variant, subst map[string]types.Type) (*Layout, error) {
	tagSize := 1
	if len(variants) > 256 {
		tagSize = 2
	}

	payloadSize, payloadAlign := 0, 1
	for _, v := range variants {
		size, align, _, err := e.layoutSequence(fieldTypesOf(v.Fields), subst)
		if err != nil {
			return nil, err
		}
		if size > payloadSize {
			payloadSize = size
		}
		if align > payloadAlign {
			payloadAlign = align
		}
	}

	structAlign := payloadAlign
	if tagSize > structAlign {
		structAlign = tagSize
	}
	payloadOffset := alignUp(tagSize, payloadAlign)
	total := alignUp(payloadOffset+payloadSize, structAlign)

	return &Layout{Size: total, Align: structAlign, TagSize: tagSize, PayloadOffset: payloadOffset}, nil
}

// layoutGeneric handles Option/Result niche rules plus user-defined
// generic structs/enums (§4.8, §4.9).
func (e *Engine) layoutGeneric(n *types.Generic) (*Layout, error) {
	base, ok := n.Base.(*types.Named)
	if !ok {
		return nil, fmt.Errorf("layout: unsupported generic base %s", n.Base.String())
	}

	switch base.Name {
	case "Option":
		inner := n.Args[0]
		if isHandleType(inner) {
			// Niche optimization: Option<Handle> reuses Handle's own
			// representation with a sentinel value for None (§4.8).
			return &Layout{Size: 8, Align: 8}, nil
		}
		innerLayout, err := e.layout(inner, nil)
		if err != nil {
			return nil, err
		}
		align := innerLayout.Align
		if align < 1 {
			align = 1
		}
		offset := alignUp(1, align)
		return &Layout{
			Size: alignUp(offset+innerLayout.Size, align), Align: align,
			TagSize: 1, PayloadOffset: offset,
		}, nil
	case "Result":
		okLayout, err := e.layout(n.Args[0], nil)
		if err != nil {
			return nil, err
		}
		errLayout, err := e.layout(n.Args[1], nil)
		if err != nil {
			return nil, err
		}
		payloadSize := okLayout.Size
		if errLayout.Size > payloadSize {
			payloadSize = errLayout.Size
		}
		payloadAlign := okLayout.Align
		if errLayout.Align > payloadAlign {
			payloadAlign = errLayout.Align
		}
		if payloadAlign < 1 {
			payloadAlign = 1
		}
		offset := alignUp(1, payloadAlign)
		return &Layout{
			Size: alignUp(offset+payloadSize, payloadAlign), Align: payloadAlign,
			TagSize: 1, PayloadOffset: offset,
		}, nil
	case "Handle":
		return &Layout{Size: 8, Align: 8}, nil
	}

	if opaquePointerTypes[base.Name] {
		return &Layout{Size: 8, Align: 8}, nil
	}

	// A user-defined generic struct/enum: lay out the concrete,
	// argument-substituted body. §4.9 expects this to run on an
	// already-monomorphized TypeDef copy; computing it directly here
	// as well keeps the engine usable (and testable) standalone.
	return e.layoutNamed(base, n.Args)
}

// isHandleType reports whether t is (or is instantiated from) the
// builtin Handle type.
func isHandleType(t types.Type) bool {
	switch n := t.(type) {
	case *types.Named:
		return n.Name == "Handle"
	case *types.Generic:
		if base, ok := n.Base.(*types.Named); ok {
			return base.Name == "Handle"
		}
	}
	return false
}

// applySubst replaces a generic type parameter's placeholder Named
// reference (one with no arena-declared def, e.g. `T`) with its
// concrete binding from subst, recursively.
func applySubst(t types.Type, subst map[string]types.Type) types.Type {
	if len(subst) == 0 {
		return t
	}
	switch n := t.(type) {
	case *types.Named:
		if repl, ok := subst[n.Name]; ok {
			return repl
		}
		return t
	case *types.Generic:
		args := make([]types.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = applySubst(a, subst)
		}
		return &types.Generic{Base: applySubst(n.Base, subst), Args: args}
	case *types.Tuple:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = applySubst(el, subst)
		}
		return &types.Tuple{Elems: elems}
	case *types.Array:
		return &types.Array{Elem: applySubst(n.Elem, subst), Len: n.Len}
	case *types.Slice:
		return &types.Slice{Elem: applySubst(n.Elem, subst)}
	case *types.Ptr:
		return &types.Ptr{Pointee: applySubst(n.Pointee, subst)}
	default:
		return t
	}
}
